package protocol

import (
	"context"
	"fmt"
	"time"

	"github.com/nakamura-shuta/tij/internal/app"
	"github.com/nakamura-shuta/tij/internal/dirty"
	"github.com/nakamura-shuta/tij/internal/jj"
	"github.com/nakamura-shuta/tij/internal/version"
)

// InitiateRebase gathers revisions/destination/mode and runs a dry-run
// preview before handing control to the user (spec.md §4.6: "for push and
// certain rebases" the dry-run step applies). skipEmptied is pre-filtered
// against the installed jj's version so the UI never even offers a flag
// known to be unsupported.
func (p *Protocols) InitiateRebase(ctx context.Context, a *app.App, revisions []string, destination, modeFlag string, skipEmptied bool) {
	if skipEmptied && !p.JJVersion.Supports(version.FlagSkipEmptied) {
		skipEmptied = false
	}

	cap, err := p.Service.Rebase(ctx, revisions, destination, skipEmptied, true)
	preview := ""
	warning := ""
	if err != nil {
		severity, msg, _, _ := classifyFailure(err)
		if severity == app.SeverityError {
			a.Notify(severity, msg, time.Now())
			return
		}
		warning = msg
	} else {
		preview = string(cap.Stdout)
	}

	beginConfirm(a, app.PendingAction{
		Kind:           app.PendingRebase,
		Revisions:      revisions,
		Destination:    destination,
		RebaseModeFlag: modeFlag,
		SkipEmptied:    skipEmptied,
	}, preview, warning)
}

// ConfirmRebase executes the pending rebase, implementing the
// `--skip-emptied`/`-b` fallback ladder (spec.md §4.6, testable scenario
// 3): if the first attempt fails with FlagUnsupported, retry once without
// the offending flag and report the fallback as a `warn` notification
// rather than `success`.
func (p *Protocols) ConfirmRebase(ctx context.Context, a *app.App) {
	pending := a.Mode.Pending
	a.Mode = app.Reset()

	cap, err := p.execute(func() (jj.Captured, error) {
		return p.Service.Rebase(ctx, pending.Revisions, pending.Destination, pending.SkipEmptied, false)
	})
	_ = cap

	if err == nil {
		a.MarkDirty(dirty.Log)
		p.refreshAndNotify(ctx, a, "", app.SeveritySuccess, "Rebased")
		return
	}

	severity, msg, retryable, flag := classifyFailure(err)
	if !retryable || (flag != "--skip-emptied" && flag != "-b") {
		a.Notify(severity, msg, time.Now())
		return
	}

	// Fallback: retry once without the offending flag.
	retrySkipEmptied := pending.SkipEmptied
	if flag == "--skip-emptied" {
		retrySkipEmptied = false
	}
	_, retryErr := p.execute(func() (jj.Captured, error) {
		return p.Service.Rebase(ctx, pending.Revisions, pending.Destination, retrySkipEmptied, false)
	})
	if retryErr != nil {
		severity2, msg2, _, _ := classifyFailure(retryErr)
		a.Notify(severity2, msg2, time.Now())
		return
	}

	a.MarkDirty(dirty.Log)
	if err := p.Refresh.Run(ctx, a, ""); err != nil {
		a.Notify(app.SeverityError, fmt.Sprintf("refresh failed: %v", err), time.Now())
		return
	}
	a.Notify(app.SeverityWarn, fmt.Sprintf("rebased after falling back without %s", flag), time.Now())
}
