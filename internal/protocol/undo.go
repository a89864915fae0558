package protocol

import (
	"context"
	"time"

	"github.com/nakamura-shuta/tij/internal/app"
	"github.com/nakamura-shuta/tij/internal/dirty"
)

// Undo runs `jj op undo` (or undo of a specific opID). No confirm step —
// undo is the escape hatch and spec.md's key map binds it to a single
// unconfirmed `u`.
func (p *Protocols) Undo(ctx context.Context, a *app.App, opID string) {
	_, err := p.Service.Undo(ctx, opID)
	if err != nil {
		severity, msg, _, _ := classifyFailure(err)
		a.Notify(severity, msg, time.Now())
		return
	}
	a.MarkDirty(dirty.All)
	p.refreshAndNotify(ctx, a, "", app.SeveritySuccess, "Undone")
}

// Redo restores the operation that undo most recently moved past, via
// `jj op restore <next op>`. nextOpID is resolved by the caller from the
// operation log (the op immediately after the current @ operation).
func (p *Protocols) Redo(ctx context.Context, a *app.App, nextOpID string) {
	if nextOpID == "" {
		a.Notify(app.SeverityInfo, "nothing to redo", time.Now())
		return
	}
	_, err := p.Service.OpRestore(ctx, nextOpID)
	if err != nil {
		severity, msg, _, _ := classifyFailure(err)
		a.Notify(severity, msg, time.Now())
		return
	}
	a.MarkDirty(dirty.All)
	p.refreshAndNotify(ctx, a, "", app.SeveritySuccess, "Redone")
}
