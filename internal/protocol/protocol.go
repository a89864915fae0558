// Package protocol implements the mutation protocol template from
// spec.md §4.6: Gather → Dry-run → Classify risk → Confirm → Execute →
// Refresh, parameterized per destructive or remote operation. Every
// exported Initiate* function performs Gather/Dry-run/Classify and leaves
// the App in a Confirm-ready input mode; every Confirm* function performs
// Execute/Refresh/Notify once the user answers.
package protocol

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/flock"

	"github.com/nakamura-shuta/tij/internal/app"
	"github.com/nakamura-shuta/tij/internal/dirty"
	"github.com/nakamura-shuta/tij/internal/jj"
	"github.com/nakamura-shuta/tij/internal/refresh"
	"github.com/nakamura-shuta/tij/internal/version"
)

// Protocols bundles the collaborators every protocol function needs. One
// instance lives for the process lifetime, constructed in main.go.
type Protocols struct {
	Service   *jj.Service
	Refresh   *refresh.Orchestrator
	JJVersion *version.JJVersion
	lockPath  string
}

// New builds a Protocols. lockPath is the advisory lock file guarding the
// Execute step against a second tij process racing the same repo
// (grounded on monkey-w1n5t0n-gastown's gofrs/flock use).
func New(svc *jj.Service, orch *refresh.Orchestrator, jv *version.JJVersion, lockPath string) *Protocols {
	return &Protocols{Service: svc, Refresh: orch, JJVersion: jv, lockPath: lockPath}
}

// execute runs fn (an internal/jj.Service mutation call) under the
// cross-process advisory lock. The single-threaded event-loop model
// (spec.md §5) already serializes tij's own goroutines; this only guards
// against a second tij process mutating the same repo concurrently.
func (p *Protocols) execute(fn func() (jj.Captured, error)) (jj.Captured, error) {
	fl := flock.New(p.lockPath)
	if err := fl.Lock(); err != nil {
		// Lock failure degrades to running unlocked rather than hanging
		// the UI forever — a missing/unwritable lock file must not
		// block every mutation.
		return fn()
	}
	defer fl.Unlock()
	return fn()
}

// refreshAndNotify runs the orchestrator, then posts successMsg only if
// the refresh succeeded (spec.md §4.6 step 5: "a success notification
// must never fire past a refresh failure"). On refresh failure the
// notification is the refresh's own error, not the mutation's success.
func (p *Protocols) refreshAndNotify(ctx context.Context, a *app.App, revset string, severity app.Severity, successMsg string) {
	if err := p.Refresh.Run(ctx, a, revset); err != nil {
		a.Notify(app.SeverityError, fmt.Sprintf("refresh failed: %v", err), time.Now())
		return
	}
	a.Notify(severity, successMsg, time.Now())
}

// classifyFailure maps a jj.Error to the notification severity/message
// policy of spec.md §7. flagRetryable reports whether the caller should
// retry without the offending flag (FlagUnsupported only).
func classifyFailure(err error) (severity app.Severity, message string, flagRetryable bool, flag string) {
	je, ok := err.(*jj.Error)
	if !ok {
		return app.SeverityError, err.Error(), false, ""
	}
	switch je.Kind {
	case jj.KindFlagUnsupported:
		return app.SeverityWarn, fmt.Sprintf("%s unsupported by installed jj, retrying without it", je.Flag), true, je.Flag
	case jj.KindImmutable:
		return app.SeverityError, fmt.Sprintf("commit %s is immutable", je.Name), false, ""
	case jj.KindProtected:
		return app.SeverityError, fmt.Sprintf("bookmark %s is protected", je.Name), false, ""
	case jj.KindConflict:
		return app.SeverityError, je.Error(), false, ""
	case jj.KindSnapshotRefused:
		return app.SeverityWarn, "refused to snapshot some paths", false, ""
	default:
		return app.SeverityError, je.Error(), false, ""
	}
}

// beginConfirm transitions a into ConfirmYN, carrying pending and an
// optional dry-run preview/warning (spec.md §4.6 step 4).
func beginConfirm(a *app.App, pending app.PendingAction, preview, warning string) {
	a.Mode = app.Mode{
		Kind:          app.ModeConfirmYN,
		Pending:       pending,
		DryRunPreview: preview,
		Warning:       warning,
	}
}
