package protocol

import (
	"context"
	"fmt"
	"time"

	"github.com/nakamura-shuta/tij/internal/app"
	"github.com/nakamura-shuta/tij/internal/dirty"
	"github.com/nakamura-shuta/tij/internal/model"
)

// InitiateBookmarkMove gathers name/target and classifies protection risk
// up front — a protected target elevates the ConfirmYN prompt to a
// warning variant instead of discovering the rejection only after Execute.
func (p *Protocols) InitiateBookmarkMove(a *app.App, name, target string, allowBackwards bool) {
	warning := ""
	if model.IsProtected(name, protectedList(a)) {
		warning = fmt.Sprintf("%s is a protected bookmark", name)
	}
	beginConfirm(a, app.PendingAction{
		Kind: app.PendingBookmarkMove, Bookmark: name, Destination: target, Force: allowBackwards,
	}, "", warning)
}

// ConfirmBookmarkMove executes the move. Success triggers both the
// bookmarks and log dirty flags (spec.md §4.6: "the DAG annotations
// change when the pointer moves").
func (p *Protocols) ConfirmBookmarkMove(ctx context.Context, a *app.App) {
	pending := a.Mode.Pending
	a.Mode = app.Reset()

	_, err := p.Service.BookmarkSet(ctx, pending.Bookmark, pending.Destination, pending.Force)
	if err != nil {
		severity, msg, _, _ := classifyFailure(err)
		a.Notify(severity, msg, time.Now())
		return
	}
	a.MarkDirty(dirty.Bookmarks | dirty.Log)
	p.refreshAndNotify(ctx, a, "", app.SeveritySuccess, fmt.Sprintf("Moved %s", pending.Bookmark))
}

func (p *Protocols) InitiateBookmarkDelete(a *app.App, name string) {
	warning := ""
	if model.IsProtected(name, protectedList(a)) {
		warning = fmt.Sprintf("%s is a protected bookmark", name)
	}
	beginConfirm(a, app.PendingAction{Kind: app.PendingBookmarkDelete, Bookmark: name}, "", warning)
}

func (p *Protocols) ConfirmBookmarkDelete(ctx context.Context, a *app.App) {
	name := a.Mode.Pending.Bookmark
	a.Mode = app.Reset()

	_, err := p.Service.BookmarkDelete(ctx, name)
	if err != nil {
		severity, msg, _, _ := classifyFailure(err)
		a.Notify(severity, msg, time.Now())
		return
	}
	a.MarkDirty(dirty.Bookmarks | dirty.Log)
	p.refreshAndNotify(ctx, a, "", app.SeveritySuccess, fmt.Sprintf("Deleted %s", name))
}

// BookmarkTrack/Untrack are non-destructive (they only change which remote
// updates are watched) so they execute without a confirm step.
func (p *Protocols) BookmarkTrack(ctx context.Context, a *app.App, name, remote string) {
	_, err := p.Service.BookmarkTrack(ctx, name, remote)
	if err != nil {
		severity, msg, _, _ := classifyFailure(err)
		a.Notify(severity, msg, time.Now())
		return
	}
	a.MarkDirty(dirty.Bookmarks)
	p.refreshAndNotify(ctx, a, "", app.SeveritySuccess, fmt.Sprintf("Tracking %s@%s", name, remote))
}

func (p *Protocols) BookmarkUntrack(ctx context.Context, a *app.App, name, remote string) {
	_, err := p.Service.BookmarkUntrack(ctx, name, remote)
	if err != nil {
		severity, msg, _, _ := classifyFailure(err)
		a.Notify(severity, msg, time.Now())
		return
	}
	a.MarkDirty(dirty.Bookmarks)
	p.refreshAndNotify(ctx, a, "", app.SeveritySuccess, fmt.Sprintf("Untracked %s@%s", name, remote))
}

func protectedList(a *app.App) []string {
	if len(a.ProtectedBookmarks) > 0 {
		return a.ProtectedBookmarks
	}
	return model.DefaultProtectedBookmarks
}
