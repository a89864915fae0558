// Package refresh implements the refresh orchestrator (spec.md §4.4): given
// the current DirtyFlags, re-read only what went stale, in a fixed
// dependency order, and clear each flag only once its re-read succeeds.
package refresh

import (
	"context"
	"fmt"
	"time"

	"github.com/nakamura-shuta/tij/internal/app"
	"github.com/nakamura-shuta/tij/internal/dirty"
	"github.com/nakamura-shuta/tij/internal/jj"
)

// DefaultLogLimit matches spec.md §4.4's "Log uses --limit 200 by default".
const DefaultLogLimit = 200

// Orchestrator re-reads dirty artifacts against a jj.Service and applies
// the results to an app.App. It holds no state of its own between calls.
type Orchestrator struct {
	Service *jj.Service
}

// New builds an Orchestrator over svc.
func New(svc *jj.Service) *Orchestrator {
	return &Orchestrator{Service: svc}
}

// Run processes a.Dirty in dirty.Order, issuing the minimum read for each
// set flag and clearing it on success. On the first failure, the flag
// responsible is left set (DirtyFlags monotonicity, spec.md §8) and Run
// returns that error immediately — later flags in the order remain
// whatever they were (most were already dirty, since union-set is the
// only way a flag becomes set).
func (o *Orchestrator) Run(ctx context.Context, a *app.App, revset string) error {
	snapshot := a.Dirty.Snapshot()

	for _, flag := range dirty.Order {
		if snapshot&flag == 0 {
			continue
		}
		if err := o.refreshOne(ctx, a, flag, revset); err != nil {
			return fmt.Errorf("refreshing %s: %w", flag, err)
		}
		a.Dirty.Clear(flag)
	}
	return nil
}

func (o *Orchestrator) refreshOne(ctx context.Context, a *app.App, flag dirty.Flag, revset string) error {
	switch flag {
	case dirty.OperationLog:
		ops, err := o.Service.OperationLog(ctx)
		if err != nil {
			return err
		}
		a.Operations = ops
		return o.refreshProtectedBookmarks(ctx, a)

	case dirty.Log:
		selected, hadSelection := a.SelectedCommit()
		graph, deprecations, err := o.Service.Log(ctx, revset)
		if err != nil {
			return err
		}
		a.Commits = graph
		for _, d := range deprecations {
			if a.NoteDeprecation(d) {
				a.Notify(app.SeverityInfo, d, time.Now())
			}
		}
		if hadSelection {
			a.SelectByChangeID(selected.ChangeID)
		}
		return nil

	case dirty.Bookmarks:
		bms, err := o.Service.Bookmarks(ctx)
		if err != nil {
			return err
		}
		a.Bookmarks = bms
		return nil

	case dirty.Status:
		st, err := o.Service.Status(ctx)
		if err != nil {
			return err
		}
		a.Status = st
		return nil

	case dirty.PreviewAll:
		a.Cache.Clear()
		return nil

	case dirty.Blame:
		// Blame content is fetched on demand by the tui layer when the
		// Blame view is actually open; clearing the flag here just
		// acknowledges the staleness was noticed.
		return nil

	case dirty.Evolog:
		top := a.Views.Top()
		if top.Kind != app.ViewEvolog || top.FocusChangeID == "" {
			return nil
		}
		graph, err := o.Service.Evolog(ctx, top.FocusChangeID)
		if err != nil {
			return err
		}
		a.Commits = graph
		return nil

	default:
		return nil
	}
}

func (o *Orchestrator) refreshProtectedBookmarks(ctx context.Context, a *app.App) error {
	cap, err := o.Service.RunConfigGet(ctx, "tij.protected-bookmarks")
	if err != nil {
		// Absent config key is not a failure; fall back silently.
		a.ProtectedBookmarks = nil
		return nil
	}
	a.ProtectedBookmarks = splitNonEmpty(cap)
	return nil
}

func splitNonEmpty(raw string) []string {
	var out []string
	cur := ""
	for _, r := range raw {
		switch r {
		case ',', '\n':
			if cur != "" {
				out = append(out, cur)
				cur = ""
			}
		case ' ', '\t', '\r':
			// skip
		default:
			cur += string(r)
		}
	}
	if cur != "" {
		out = append(out, cur)
	}
	return out
}
