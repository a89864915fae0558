package protocol

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nakamura-shuta/tij/internal/app"
	"github.com/nakamura-shuta/tij/internal/dirty"
	"github.com/nakamura-shuta/tij/internal/jj"
)

// InitiateAbandon gathers the selected change and moves a into a
// ConfirmYN prompt. Abandon has no dry-run preview of its own (spec.md
// §4.6 lists dry-run only for push and certain rebases).
func (p *Protocols) InitiateAbandon(a *app.App, changeID string) {
	beginConfirm(a, app.PendingAction{Kind: app.PendingAbandon, ChangeID: changeID}, "", "")
}

// ConfirmAbandon executes the pending abandon and refreshes.
func (p *Protocols) ConfirmAbandon(ctx context.Context, a *app.App) {
	changeID := a.Mode.Pending.ChangeID
	a.Mode = app.Reset()

	_, err := p.execute(func() (jj.Captured, error) { return p.Service.Abandon(ctx, changeID, false) })
	if err != nil {
		severity, msg, _, _ := classifyFailure(err)
		a.Notify(severity, msg, time.Now())
		return
	}
	a.MarkDirty(dirty.Log | dirty.Status)
	p.refreshAndNotify(ctx, a, "", app.SeveritySuccess, fmt.Sprintf("Abandoned %s", changeID))
}

// InitiateSquash gathers source/into and moves a into ConfirmYN.
func (p *Protocols) InitiateSquash(a *app.App, source, into string) {
	beginConfirm(a, app.PendingAction{Kind: app.PendingSquash, ChangeID: source, Destination: into}, "", "")
}

func (p *Protocols) ConfirmSquash(ctx context.Context, a *app.App) {
	pending := a.Mode.Pending
	a.Mode = app.Reset()

	_, err := p.execute(func() (jj.Captured, error) { return p.Service.Squash(ctx, pending.ChangeID, pending.Destination, false) })
	if err != nil {
		severity, msg, _, _ := classifyFailure(err)
		a.Notify(severity, msg, time.Now())
		return
	}
	a.MarkDirty(dirty.Log | dirty.Status)
	p.refreshAndNotify(ctx, a, "", app.SeveritySuccess, "Squashed")
}

// InitiateRestore/ConfirmRestore revert a path (or whole change) to its
// parent's content.
func (p *Protocols) InitiateRestore(a *app.App, changeID string, paths []string) {
	beginConfirm(a, app.PendingAction{Kind: app.PendingRestore, ChangeID: changeID, Revisions: paths}, "", "")
}

func (p *Protocols) ConfirmRestore(ctx context.Context, a *app.App) {
	pending := a.Mode.Pending
	a.Mode = app.Reset()

	_, err := p.execute(func() (jj.Captured, error) { return p.Service.Restore(ctx, pending.ChangeID, pending.Revisions) })
	if err != nil {
		severity, msg, _, _ := classifyFailure(err)
		a.Notify(severity, msg, time.Now())
		return
	}
	a.MarkDirty(dirty.Status | dirty.PreviewAll)
	p.refreshAndNotify(ctx, a, "", app.SeveritySuccess, "Restored")
}

// Absorb distributes working-copy changes into introducing ancestors. No
// confirmation prompt — it is non-destructive by design (it only ever
// moves hunks into commits that already own that code).
func (p *Protocols) Absorb(ctx context.Context, a *app.App) {
	_, err := p.Service.Absorb(ctx, false)
	if err != nil {
		severity, msg, _, _ := classifyFailure(err)
		a.Notify(severity, msg, time.Now())
		return
	}
	a.MarkDirty(dirty.Log | dirty.Status | dirty.PreviewAll)
	p.refreshAndNotify(ctx, a, "", app.SeveritySuccess, "Absorbed")
}

// SimplifyParents drops redundant parent edges. No confirmation needed —
// it cannot change file content, only the graph shape.
func (p *Protocols) SimplifyParents(ctx context.Context, a *app.App, changeID string) {
	_, err := p.Service.SimplifyParents(ctx, changeID)
	if err != nil {
		severity, msg, _, _ := classifyFailure(err)
		a.Notify(severity, msg, time.Now())
		return
	}
	a.MarkDirty(dirty.Log)
	p.refreshAndNotify(ctx, a, "", app.SeveritySuccess, "Simplified parents")
}

// New creates an empty change on top of parents; no confirmation.
func (p *Protocols) New(ctx context.Context, a *app.App, parents ...string) {
	_, err := p.Service.New(ctx, parents...)
	if err != nil {
		severity, msg, _, _ := classifyFailure(err)
		a.Notify(severity, msg, time.Now())
		return
	}
	a.MarkDirty(dirty.Log | dirty.Status)
	p.refreshAndNotify(ctx, a, "", app.SeveritySuccess, "New change created")
}

// Edit switches the working copy to an existing change; no confirmation —
// it never discards content, only moves which commit @ points at.
func (p *Protocols) Edit(ctx context.Context, a *app.App, changeID string) {
	_, err := p.Service.Edit(ctx, changeID)
	if err != nil {
		severity, msg, _, _ := classifyFailure(err)
		a.Notify(severity, msg, time.Now())
		return
	}
	a.MarkDirty(dirty.Log | dirty.Status)
	p.refreshAndNotify(ctx, a, "", app.SeveritySuccess, fmt.Sprintf("Editing %s", changeID))
}

// Commit finalizes @ with message, creating a new working-copy child.
func (p *Protocols) Commit(ctx context.Context, a *app.App, message string) {
	_, err := p.Service.Commit(ctx, message)
	if err != nil {
		severity, msg, _, _ := classifyFailure(err)
		a.Notify(severity, msg, time.Now())
		return
	}
	a.MarkDirty(dirty.Log | dirty.Status | dirty.Bookmarks)
	p.refreshAndNotify(ctx, a, "", app.SeveritySuccess, "Committed")
}

// DescribeQuick runs `jj describe -m` directly with an inline message
// (the "quick" path of spec.md §4.6's Describe protocol).
func (p *Protocols) DescribeQuick(ctx context.Context, a *app.App, changeID, message string) {
	_, err := p.Service.Describe(ctx, changeID, message)
	if err != nil {
		severity, msg, _, _ := classifyFailure(err)
		a.Notify(severity, msg, time.Now())
		return
	}
	a.MarkDirty(dirty.Log | dirty.PreviewAll)
	p.refreshAndNotify(ctx, a, "", app.SeveritySuccess, "Description updated")
}

// DescribeEditorResult applies the outcome of an external editor session:
// the edited buffer, or a failure notification without crashing (spec.md
// §4.6: "Editor failure is a notification, not a crash; on non-zero editor
// exit, the buffer is discarded"). The tui layer does not call it and
// spawns no $EDITOR; its ctrl+e describe edits the buffer in an in-app
// textarea and submits through DescribeQuick.
func (p *Protocols) DescribeEditorResult(ctx context.Context, a *app.App, changeID string, editedBuffer string, editorErr error) {
	if editorErr != nil {
		a.Notify(app.SeverityWarn, fmt.Sprintf("editor exited with error, description discarded: %v", editorErr), time.Now())
		return
	}
	p.DescribeQuick(ctx, a, changeID, strings.TrimRight(editedBuffer, "\n"))
}

// Split opens jj's interactive split workflow. No confirmation — like
// DiffEdit, the editor invocation itself is the confirmation surface.
func (p *Protocols) Split(ctx context.Context, a *app.App, changeID string) {
	_, err := p.Service.Split(ctx, changeID)
	if err != nil {
		severity, msg, _, _ := classifyFailure(err)
		a.Notify(severity, msg, time.Now())
		return
	}
	a.MarkDirty(dirty.Log | dirty.Status | dirty.PreviewAll)
	p.refreshAndNotify(ctx, a, "", app.SeveritySuccess, "Split")
}

// DiffEdit opens jj's diff-edit workflow. No confirmation — the editor
// invocation itself is the confirmation surface.
func (p *Protocols) DiffEdit(ctx context.Context, a *app.App, changeID string) {
	_, err := p.Service.DiffEdit(ctx, changeID)
	if err != nil {
		severity, msg, _, _ := classifyFailure(err)
		a.Notify(severity, msg, time.Now())
		return
	}
	a.MarkDirty(dirty.Status | dirty.PreviewAll)
	p.refreshAndNotify(ctx, a, "", app.SeveritySuccess, "Diff edit applied")
}

// Resolve runs the configured merge tool on a conflicted path.
func (p *Protocols) Resolve(ctx context.Context, a *app.App, path string) {
	_, err := p.Service.Resolve(ctx, path)
	if err != nil {
		severity, msg, _, _ := classifyFailure(err)
		a.Notify(severity, msg, time.Now())
		return
	}
	a.MarkDirty(dirty.Status | dirty.PreviewAll)
	p.refreshAndNotify(ctx, a, "", app.SeveritySuccess, "Resolved "+path)
}

// InitiateDuplicate gathers the change to duplicate (and an optional
// destination branch selected via SelectBranch).
func (p *Protocols) InitiateDuplicate(a *app.App, changeID, destination string) {
	beginConfirm(a, app.PendingAction{Kind: app.PendingDuplicate, ChangeID: changeID, Destination: destination}, "", "")
}

// ConfirmDuplicate executes the duplicate and implements spec.md §4.6's
// prefix-select branching: after success, try to find the new change in
// the current revset by change-id prefix; notify accordingly.
// extractNewChangeID is supplied by the caller (tui layer) since only it
// knows how to read a new change id prefix out of jj's own stdout summary.
func (p *Protocols) ConfirmDuplicate(ctx context.Context, a *app.App, extractNewChangeID func(stdout string) string) {
	pending := a.Mode.Pending
	a.Mode = app.Reset()

	cap, err := p.execute(func() (jj.Captured, error) { return p.Service.Duplicate(ctx, pending.ChangeID, pending.Destination) })
	if err != nil {
		severity, msg, _, _ := classifyFailure(err)
		a.Notify(severity, msg, time.Now())
		return
	}
	newID := extractNewChangeID(string(cap.Stdout))

	a.MarkDirty(dirty.Log)
	if err := p.Refresh.Run(ctx, a, ""); err != nil {
		a.Notify(app.SeverityError, fmt.Sprintf("refresh failed: %v", err), time.Now())
		return
	}

	if newID != "" {
		for _, c := range a.Commits.Commits {
			if strings.HasPrefix(c.ChangeID, newID) {
				a.SelectByChangeID(c.ChangeID)
				a.Notify(app.SeveritySuccess, fmt.Sprintf("Duplicated as %s", newID), time.Now())
				return
			}
		}
	}
	a.Notify(app.SeveritySuccess, "Duplicated successfully (not in current revset)", time.Now())
}
