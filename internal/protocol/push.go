package protocol

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nakamura-shuta/tij/internal/app"
	"github.com/nakamura-shuta/tij/internal/dirty"
	"github.com/nakamura-shuta/tij/internal/model"
)

// InitiatePush composes the push flow's orthogonal axes (spec.md §4.6):
// {by bookmark | by change | by revisions | bulk} × {remote | default} ×
// {dry-run first | forced}. bookmarks/bulkMode together select the first
// axis (bulkMode non-empty wins); remote is the second axis. The pending
// remote is stored on app.PendingAction.Remote — the *same* field both the
// dry-run below and ConfirmPush read, which is what guarantees
// push-remote consistency (spec.md §8's testable property).
func (p *Protocols) InitiatePush(ctx context.Context, a *app.App, bookmarks []string, remote, bulkMode string, allowNew bool) {
	warning := ""
	for _, b := range bookmarks {
		if model.IsProtected(b, protectedList(a)) {
			warning = fmt.Sprintf("%s is protected; push will be refused unless forced", b)
			break
		}
	}

	pushBookmarks := bookmarks
	if bulkMode != "" {
		pushBookmarks = nil // bulk flags select their own set server-side
	}

	cap, err := p.Service.GitPush(ctx, remote, pushBookmarks, allowNew, true)
	preview := ""
	if err != nil {
		severity, msg, retryable, _ := classifyFailure(err)
		if !retryable && severity == app.SeverityError {
			a.Notify(severity, msg, time.Now())
			return
		}
		if warning == "" {
			warning = msg
		}
	} else {
		preview = string(cap.Stdout)
		if strings.Contains(preview, "non-fast-forward") || strings.Contains(preview, "force") {
			if warning == "" {
				warning = "push requires force"
			}
		}
	}

	beginConfirm(a, app.PendingAction{
		Kind:     app.PendingPush,
		Bookmark: strings.Join(bookmarks, ","),
		Remote:   remote,
		BulkMode: bulkMode,
		Force:    allowNew,
	}, preview, warning)
}

// ConfirmPush executes the push using the same pending.Remote the dry-run
// above read, then clears the pending action on every exit path (success,
// failure, or — via app.Reset in the caller's Esc handling — cancel).
func (p *Protocols) ConfirmPush(ctx context.Context, a *app.App) {
	pending := a.Mode.Pending
	a.Mode = app.Reset() // push_target_remote cleared here, on every exit path

	var bookmarks []string
	if pending.Bookmark != "" {
		bookmarks = strings.Split(pending.Bookmark, ",")
	}
	if pending.BulkMode != "" {
		bookmarks = nil
	}

	_, err := p.Service.GitPush(ctx, pending.Remote, bookmarks, pending.Force, false)
	if err != nil {
		severity, msg, _, _ := classifyFailure(err)
		a.Notify(severity, msg, time.Now())
		return
	}
	a.MarkDirty(dirty.Bookmarks)
	p.refreshAndNotify(ctx, a, "", app.SeveritySuccess, "Pushed")
}

// Fetch executes a `jj git fetch`; not destructive to
// local history (it only updates remote-tracking refs) so there is no
// confirm step, matching the key map's unconfirmed `F` binding.
func (p *Protocols) Fetch(ctx context.Context, a *app.App, remote string) {
	_, err := p.Service.GitFetch(ctx, remote)
	if err != nil {
		severity, msg, _, _ := classifyFailure(err)
		a.Notify(severity, msg, time.Now())
		return
	}
	a.MarkDirty(dirty.Bookmarks | dirty.Log)
	p.refreshAndNotify(ctx, a, "", app.SeveritySuccess, "Fetched")
}
