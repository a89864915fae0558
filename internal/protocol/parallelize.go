package protocol

import (
	"context"
	"strings"
	"time"

	"github.com/nakamura-shuta/tij/internal/app"
	"github.com/nakamura-shuta/tij/internal/dirty"
)

// InitiateParallelize gathers a two-point selection (from, to) as a
// from::to revision range, per spec.md §4.6.
func (p *Protocols) InitiateParallelize(a *app.App, from, to string) {
	beginConfirm(a, app.PendingAction{Kind: app.PendingParallelize, Revisions: []string{from + "::" + to}}, "", "")
}

// ConfirmParallelize executes the pending parallelize. jj reports an
// unrelated-revision selection as "nothing to parallelize" on stdout with
// exit 0; spec.md §4.6/§8 requires this be surfaced as `info`, not
// `success`, and — per testable scenario 6 — no refresh should run in
// that case.
func (p *Protocols) ConfirmParallelize(ctx context.Context, a *app.App) {
	pending := a.Mode.Pending
	a.Mode = app.Reset()

	cap, err := p.Service.Parallelize(ctx, pending.Revisions)
	if err != nil {
		severity, msg, _, _ := classifyFailure(err)
		a.Notify(severity, msg, time.Now())
		return
	}

	if strings.Contains(string(cap.Stdout), "Nothing to parallelize") || strings.Contains(string(cap.Stdout), "nothing to parallelize") {
		a.Notify(app.SeverityInfo, "nothing to parallelize", time.Now())
		return
	}

	a.MarkDirty(dirty.Log)
	p.refreshAndNotify(ctx, a, "", app.SeveritySuccess, "Parallelized")
}
