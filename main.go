package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nakamura-shuta/tij/internal/app"
	"github.com/nakamura-shuta/tij/internal/applog"
	"github.com/nakamura-shuta/tij/internal/config"
	"github.com/nakamura-shuta/tij/internal/jj"
	"github.com/nakamura-shuta/tij/internal/protocol"
	"github.com/nakamura-shuta/tij/internal/refresh"
	"github.com/nakamura-shuta/tij/internal/tui"
	"github.com/nakamura-shuta/tij/internal/version"
	"github.com/nakamura-shuta/tij/internal/watch"
)

// Exit codes (spec.md §6): 0 ordinary quit, 1 usage/setup failure
// (no jj binary, path is not a jj repo), 2 the bubbletea program itself
// errored out.
const (
	exitOK = iota
	exitSetup
	exitRuntime
)

func main() {
	os.Exit(run())
}

func run() int {
	path := "."
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	debug := os.Getenv("TIJ_DEBUG") == "1"
	if err := applog.Init("", debug); err != nil {
		fmt.Fprintf(os.Stderr, "tij: could not open log file: %v\n", err)
		// Logging is ambient, not load-bearing; continue with the
		// discard logger applog.Logger already defaults to.
	}

	ctx := context.Background()

	repoRoot, err := jj.ResolveRoot(ctx, path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tij: %v\n", err)
		return exitSetup
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "tij: %v\n", err)
		cfg = &config.Config{}
	}

	runner := jj.NewRunner(repoRoot)
	svc := jj.NewService(runner)

	version.Query(ctx, svc.Version)

	a := app.New(repoRoot, cfg.GetPreviewCacheCapacity())
	a.ProtectedBookmarks = cfg.ExtraProtectedBookmarks()

	orch := refresh.New(svc)
	lockPath := filepath.Join(repoRoot, ".jj", "tij.lock")
	protocols := protocol.New(svc, orch, version.Global, lockPath)

	w, err := watch.New(repoRoot)
	if err != nil {
		applog.Logger.Debug("operation-log watcher unavailable", "error", err)
		w = nil
	}

	m := tui.New(ctx, a, svc, protocols, orch, cfg, w)
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "tij: %v\n", err)
		return exitRuntime
	}

	return exitOK
}
