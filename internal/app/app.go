package app

import (
	"time"

	"github.com/nakamura-shuta/tij/internal/cache"
	"github.com/nakamura-shuta/tij/internal/dirty"
	"github.com/nakamura-shuta/tij/internal/model"
)

// App is the single root value owning all UI-facing state (spec.md §3,
// "Ownership"). There is no other process-wide mutable state; the
// terminal handle and jj executor are held by the caller (internal/tui,
// internal/protocol) and passed in, never stored here.
type App struct {
	RepoRoot string

	Views *ViewStack
	Mode  Mode
	Notif NotificationCenter

	Dirty dirty.Set
	Cache *cache.PreviewCache

	Commits    model.CommitGraph
	Bookmarks  []model.Bookmark
	Operations []model.Operation
	Status     []model.FileStatus
	Conflicts  []model.Conflict

	// ProtectedBookmarks is re-read whenever DirtyFlags.OperationLog is
	// set (spec.md §9 "Protected bookmark list"); internal/protocol
	// consults it before allowing an unforced bookmark move/delete/push.
	ProtectedBookmarks []string

	// DeprecationsShown records deprecation warning text already
	// surfaced once this session (spec.md §9), so repeats are swallowed.
	DeprecationsShown map[string]bool
}

// New constructs an App rooted at repoRoot with a fresh view stack,
// input mode None, and an empty preview cache of the given capacity.
func New(repoRoot string, cacheCapacity int) *App {
	return &App{
		RepoRoot:          repoRoot,
		Views:             NewViewStack(),
		Mode:              Mode{Kind: ModeNone},
		Cache:             cache.New(cacheCapacity),
		DeprecationsShown: make(map[string]bool),
	}
}

// HandleEsc implements spec.md §4.5's Esc-precedence invariant: if a
// non-None mode is active, Esc always returns to (view, None) and is
// fully consumed — it never reaches the view stack or the global
// handler, and it never pops the view stack. Returns true if Esc was
// consumed here.
func (a *App) HandleEsc() bool {
	if a.Mode.None() {
		return false
	}
	a.Mode = Reset()
	return true
}

// Back implements the `q` key: pop the current view if input mode is
// None and the stack has more than the root Log view. Returns false when
// there is nothing to pop (caller should treat that as "quit").
func (a *App) Back() bool {
	if !a.Mode.None() {
		return false
	}
	_, ok := a.Views.Pop()
	return ok
}

// PushView opens a new view, focusing focusChangeID if non-empty.
func (a *App) PushView(kind ViewKind, focusChangeID string) {
	a.Views.Push(kind, focusChangeID)
}

// MarkDirty unions flags into the pending dirty set. Called by every
// mutation protocol's Refresh step (spec.md §4.6 step 6).
func (a *App) MarkDirty(flags dirty.Flag) {
	a.Dirty.Union(flags)
}

// Notify posts a notification, stamping PostedAt with now.
func (a *App) Notify(severity Severity, message string, now time.Time) {
	a.Notif.Post(severity, message, now)
}

// SelectedCommit returns the commit in a.Commits at the top view's
// selection index, if any, whatever kind of view is on top.
func (a *App) SelectedCommit() (model.Commit, bool) {
	v := a.Views.Top()
	if v.Selection < 0 || v.Selection >= len(a.Commits.Commits) {
		return model.Commit{}, false
	}
	return a.Commits.Commits[v.Selection], true
}

// SelectByChangeID moves the current view's selection to the row holding
// changeID, if present — used after a refresh to preserve selection by
// change id rather than by index (spec.md §4.4 "Order policy").
func (a *App) SelectByChangeID(changeID string) {
	if idx := a.Commits.IndexOf(changeID); idx >= 0 {
		a.Views.Top().Selection = idx
	}
}

// NoteDeprecation records a deprecation warning and reports whether it is
// new this session (spec.md §9: surfaced once per session as an info
// notification).
func (a *App) NoteDeprecation(text string) bool {
	if a.DeprecationsShown[text] {
		return false
	}
	a.DeprecationsShown[text] = true
	return true
}
