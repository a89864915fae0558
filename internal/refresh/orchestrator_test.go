package refresh

import (
	"context"
	"errors"
	"testing"

	"github.com/nakamura-shuta/tij/internal/app"
	"github.com/nakamura-shuta/tij/internal/dirty"
	"github.com/nakamura-shuta/tij/internal/jj"
	"github.com/nakamura-shuta/tij/internal/model"
)

// fakeRunner replays canned responses keyed by the jj subcommand (args[0],
// or args[0]+" "+args[1] for two-word subcommands like "op log").
type fakeRunner struct {
	order    []string // subcommands invoked, in call order
	fail     map[string]error
	response map[string][]byte
}

func (f *fakeRunner) Run(ctx context.Context, args ...string) (jj.Captured, error) {
	key := subcommand(args)
	f.order = append(f.order, key)
	if err, ok := f.fail[key]; ok {
		return jj.Captured{}, err
	}
	return jj.Captured{Stdout: f.response[key]}, nil
}

func subcommand(args []string) string {
	if len(args) == 0 {
		return ""
	}
	switch args[0] {
	case "op":
		if len(args) > 1 {
			return "op " + args[1]
		}
	case "bookmark":
		if len(args) > 1 {
			return "bookmark " + args[1]
		}
	case "config":
		if len(args) > 1 {
			return "config " + args[1]
		}
	}
	return args[0]
}

func TestOrchestratorRunsInFixedDependencyOrder(t *testing.T) {
	runner := &fakeRunner{response: map[string][]byte{}}
	svc := jj.NewService(runner)
	orch := New(svc)
	a := app.New("/repo", 8)

	a.MarkDirty(dirty.Status | dirty.Log | dirty.OperationLog | dirty.Bookmarks)

	if err := orch.Run(context.Background(), a, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantPrefix := []string{"op log", "config get", "log", "bookmark list"}
	if len(runner.order) < len(wantPrefix) {
		t.Fatalf("expected at least %d calls, got %v", len(wantPrefix), runner.order)
	}
	for i, want := range wantPrefix {
		if runner.order[i] != want {
			t.Errorf("call %d: expected %q, got %q (full order %v)", i, want, runner.order[i], runner.order)
		}
	}

	// Status (diff --summary) comes after Bookmarks in dirty.Order.
	statusIdx, bookmarksIdx := -1, -1
	for i, c := range runner.order {
		if c == "diff" {
			statusIdx = i
		}
		if c == "bookmark list" {
			bookmarksIdx = i
		}
	}
	if statusIdx == -1 || bookmarksIdx == -1 || statusIdx < bookmarksIdx {
		t.Errorf("expected status to refresh after bookmarks, order=%v", runner.order)
	}
}

func TestOrchestratorClearsOnlySucceededFlags(t *testing.T) {
	runner := &fakeRunner{
		fail: map[string]error{"log": errors.New("boom")},
	}
	svc := jj.NewService(runner)
	orch := New(svc)
	a := app.New("/repo", 8)

	a.MarkDirty(dirty.OperationLog | dirty.Log | dirty.Bookmarks)

	err := orch.Run(context.Background(), a, "")
	if err == nil {
		t.Fatal("expected Run to propagate the Log refresh failure")
	}

	if a.Dirty.Has(dirty.OperationLog) {
		t.Error("expected OperationLog to have been cleared — it refreshed before Log failed")
	}
	if !a.Dirty.Has(dirty.Log) {
		t.Error("expected Log to remain dirty after its own refresh failed (monotonicity)")
	}
	if !a.Dirty.Has(dirty.Bookmarks) {
		t.Error("expected Bookmarks, ordered after the failing Log, to remain dirty (never attempted)")
	}
}

func TestOrchestratorPreviewAllClearsCache(t *testing.T) {
	runner := &fakeRunner{}
	svc := jj.NewService(runner)
	orch := New(svc)
	a := app.New("/repo", 8)
	a.Cache.Insert("some-change", model.PreviewEntry{ChangeID: "some-change", CommitID: "c1"})

	a.MarkDirty(dirty.PreviewAll)
	if err := orch.Run(context.Background(), a, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Dirty.Has(dirty.PreviewAll) {
		t.Error("expected PreviewAll to be cleared after a successful pass")
	}
	if a.Cache.Len() != 0 {
		t.Errorf("expected the preview cache to be emptied, got %d entries", a.Cache.Len())
	}
}

func TestOrchestratorRefreshesProtectedBookmarksOnOperationLog(t *testing.T) {
	runner := &fakeRunner{response: map[string][]byte{
		"config get": []byte("main, release/1.0\nmaster\n"),
	}}
	svc := jj.NewService(runner)
	orch := New(svc)
	a := app.New("/repo", 8)

	a.MarkDirty(dirty.OperationLog)
	if err := orch.Run(context.Background(), a, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"main", "release/1.0", "master"}
	if len(a.ProtectedBookmarks) != len(want) {
		t.Fatalf("expected %v, got %v", want, a.ProtectedBookmarks)
	}
	for i, w := range want {
		if a.ProtectedBookmarks[i] != w {
			t.Errorf("ProtectedBookmarks[%d] = %q, want %q", i, a.ProtectedBookmarks[i], w)
		}
	}
}

func TestOrchestratorMissingProtectedBookmarkConfigFallsBackSilently(t *testing.T) {
	runner := &fakeRunner{fail: map[string]error{"config get": errors.New("no such key")}}
	svc := jj.NewService(runner)
	orch := New(svc)
	a := app.New("/repo", 8)

	a.MarkDirty(dirty.OperationLog)
	if err := orch.Run(context.Background(), a, ""); err != nil {
		t.Fatalf("expected a missing config key to degrade silently, got error: %v", err)
	}
	if a.ProtectedBookmarks != nil {
		t.Errorf("expected ProtectedBookmarks to fall back to nil, got %v", a.ProtectedBookmarks)
	}
}

func TestOrchestratorPreservesSelectionAcrossLogRefresh(t *testing.T) {
	logOutput := "@  <<<JJ>>>{\"change_id\":\"aaa111111111\",\"commit_id\":\"c1\",\"author\":\"a\",\"email\":\"a@x\",\"timestamp\":\"2026-01-01T00:00:00+0000\",\"description\":\"\",\"bookmarks\":[],\"parents\":[],\"is_working\":true,\"is_empty\":false,\"is_conflict\":false,\"immutable\":false}\n" +
		"o  <<<JJ>>>{\"change_id\":\"bbb222222222\",\"commit_id\":\"c2\",\"author\":\"a\",\"email\":\"a@x\",\"timestamp\":\"2026-01-01T00:00:00+0000\",\"description\":\"\",\"bookmarks\":[],\"parents\":[],\"is_working\":false,\"is_empty\":false,\"is_conflict\":false,\"immutable\":false}\n"

	runner := &fakeRunner{response: map[string][]byte{"log": []byte(logOutput)}}
	svc := jj.NewService(runner)
	orch := New(svc)
	a := app.New("/repo", 8)

	// Simulate an existing graph where "bbb222222222" is selected; the
	// refresh below rebuilds Commits entirely but must restore the
	// selection by change id rather than leaving it at a stale index.
	a.Commits = model.CommitGraph{Commits: []model.Commit{
		{ChangeID: "bbb222222222"},
	}}
	a.Views.Top().Selection = 0

	a.MarkDirty(dirty.Log)
	if err := orch.Run(context.Background(), a, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(a.Commits.Commits) != 2 {
		t.Fatalf("expected the refreshed graph to hold 2 commits, got %d", len(a.Commits.Commits))
	}
	if a.Views.Top().Selection != 1 {
		t.Errorf("expected selection to follow change id bbb222222222 to its new index 1, got %d", a.Views.Top().Selection)
	}
}
