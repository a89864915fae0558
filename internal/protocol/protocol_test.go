package protocol

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nakamura-shuta/tij/internal/app"
	"github.com/nakamura-shuta/tij/internal/dirty"
	"github.com/nakamura-shuta/tij/internal/jj"
	"github.com/nakamura-shuta/tij/internal/refresh"
	"github.com/nakamura-shuta/tij/internal/version"
)

// fakeRunner answers Run calls from a pre-loaded queue, recording every
// argv it was asked to execute so tests can assert what each protocol step
// actually sent to jj.
type fakeRunner struct {
	calls     [][]string
	responses []fakeResponse
}

type fakeResponse struct {
	out jj.Captured
	err error
}

func (f *fakeRunner) Run(ctx context.Context, args ...string) (jj.Captured, error) {
	f.calls = append(f.calls, append([]string(nil), args...))
	if len(f.responses) == 0 {
		return jj.Captured{}, nil
	}
	r := f.responses[0]
	f.responses = f.responses[1:]
	return r.out, r.err
}

func newTestProtocols(t *testing.T, runner *fakeRunner) *Protocols {
	t.Helper()
	svc := jj.NewService(runner)
	orch := refresh.New(svc)
	lockPath := filepath.Join(t.TempDir(), "tij.lock")
	return New(svc, orch, &version.JJVersion{}, lockPath)
}

func TestPushRemoteConsistency(t *testing.T) {
	runner := &fakeRunner{responses: []fakeResponse{
		{out: jj.Captured{Stdout: []byte("Would push to origin\n")}}, // dry-run
		{out: jj.Captured{Stdout: []byte("Pushed to origin\n")}},     // real push
	}}
	p := newTestProtocols(t, runner)
	a := app.New("/repo", 8)

	p.InitiatePush(context.Background(), a, []string{"main"}, "origin", "", false)
	if a.Mode.Pending.Remote != "origin" {
		t.Fatalf("expected pending remote \"origin\", got %q", a.Mode.Pending.Remote)
	}

	p.ConfirmPush(context.Background(), a)

	var pushCalls [][]string
	for _, c := range runner.calls {
		if len(c) >= 2 && c[0] == "git" && c[1] == "push" {
			pushCalls = append(pushCalls, c)
		}
	}
	if len(pushCalls) != 2 {
		t.Fatalf("expected exactly 2 `git push` invocations (dry-run + real), got %d: %v", len(pushCalls), runner.calls)
	}
	dryRunRemote := remoteArg(pushCalls[0])
	realRemote := remoteArg(pushCalls[1])
	if dryRunRemote != "origin" || realRemote != "origin" {
		t.Errorf("expected both invocations to target the same remote the dry-run read, got dry-run=%q real=%q", dryRunRemote, realRemote)
	}
}

func remoteArg(args []string) string {
	for i, a := range args {
		if a == "--remote" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func TestRebaseFallbackLadderWarnsNotSucceeds(t *testing.T) {
	runner := &fakeRunner{responses: []fakeResponse{
		{out: jj.Captured{Stdout: []byte("dry run ok\n")}}, // InitiateRebase's own dry-run
		{err: &jj.Error{Kind: jj.KindFlagUnsupported, Command: "rebase", Flag: "--skip-emptied"}}, // first real attempt
		{out: jj.Captured{Stdout: []byte("Rebased 1 commit\n")}},                                  // fallback retry succeeds
	}}
	p := newTestProtocols(t, runner)
	a := app.New("/repo", 8)

	p.InitiateRebase(context.Background(), a, []string{"abc"}, "main", "-r", true)
	if !a.Mode.Pending.SkipEmptied {
		t.Fatal("expected SkipEmptied to remain requested after a successful dry-run")
	}

	p.ConfirmRebase(context.Background(), a)

	notif, ok := a.Notif.Current()
	if !ok {
		t.Fatal("expected a notification after the fallback path")
	}
	if notif.Severity != app.SeverityWarn {
		t.Errorf("expected a fallback rebase to notify at warn severity, got %v (%q)", notif.Severity, notif.Message)
	}
	if !strings.Contains(notif.Message, "--skip-emptied") {
		t.Errorf("expected the fallback notification to name the dropped flag, got %q", notif.Message)
	}

	if len(runner.calls) < 3 {
		t.Fatalf("expected at least 3 jj invocations (dry-run, failed attempt, fallback retry), got %d: %v", len(runner.calls), runner.calls)
	}
	retryCall := runner.calls[2]
	for _, arg := range retryCall {
		if arg == "--skip-emptied" {
			t.Errorf("expected the fallback retry to drop --skip-emptied, got %v", retryCall)
		}
	}
}

func TestDuplicatePrefixSelectFindsNewChange(t *testing.T) {
	logOutput := "@  <<<JJ>>>{\"change_id\":\"newchangeid1\",\"commit_id\":\"cccccccccccc\",\"author\":\"A\",\"email\":\"a@x.com\",\"timestamp\":\"2026-01-01T00:00:00+0000\",\"description\":\"dup\",\"bookmarks\":[],\"parents\":[],\"is_working\":true,\"is_empty\":false,\"is_conflict\":false,\"immutable\":false}\n"

	runner := &fakeRunner{responses: []fakeResponse{
		{out: jj.Captured{Stdout: []byte("newchangeid1\n")}},       // duplicate
		{out: jj.Captured{Stdout: []byte(logOutput)}},              // refresh's Log read
	}}
	p := newTestProtocols(t, runner)
	a := app.New("/repo", 8)

	p.InitiateDuplicate(a, "origchange1", "")
	p.ConfirmDuplicate(context.Background(), a, func(stdout string) string {
		return strings.TrimSpace(stdout)
	})

	notif, ok := a.Notif.Current()
	if !ok {
		t.Fatal("expected a notification after duplicate")
	}
	if notif.Severity != app.SeveritySuccess || !strings.Contains(notif.Message, "newchangeid1") {
		t.Errorf("expected a success notification naming the new change, got %+v", notif)
	}
	if idx := a.Commits.IndexOf("newchangeid1"); idx != 0 {
		t.Errorf("expected the selection to resolve to the new change, got index %d", idx)
	}
}

func TestDuplicatePrefixSelectNotInRevset(t *testing.T) {
	runner := &fakeRunner{responses: []fakeResponse{
		{out: jj.Captured{Stdout: []byte("newchangeid1\n")}}, // duplicate
		{out: jj.Captured{Stdout: []byte("")}},                // refresh's Log read: empty revset
	}}
	p := newTestProtocols(t, runner)
	a := app.New("/repo", 8)

	p.InitiateDuplicate(a, "origchange1", "")
	p.ConfirmDuplicate(context.Background(), a, func(stdout string) string {
		return strings.TrimSpace(stdout)
	})

	notif, ok := a.Notif.Current()
	if !ok {
		t.Fatal("expected a notification after duplicate")
	}
	if notif.Severity != app.SeveritySuccess || strings.Contains(notif.Message, "newchangeid1") {
		t.Errorf("expected a generic success notification when the new change isn't in the current revset, got %+v", notif)
	}
}

func TestParallelizeNothingToParallelizeSkipsRefresh(t *testing.T) {
	runner := &fakeRunner{responses: []fakeResponse{
		{out: jj.Captured{Stdout: []byte("Nothing to parallelize\n")}},
	}}
	p := newTestProtocols(t, runner)
	a := app.New("/repo", 8)

	p.InitiateParallelize(a, "a", "b")
	p.ConfirmParallelize(context.Background(), a)

	if len(runner.calls) != 1 {
		t.Fatalf("expected no refresh reads when nothing was parallelized, got %d calls: %v", len(runner.calls), runner.calls)
	}
	notif, ok := a.Notif.Current()
	if !ok || notif.Severity != app.SeverityInfo {
		t.Errorf("expected an info notification, got %+v ok=%v", notif, ok)
	}
	if a.Dirty.Has(dirty.Log) {
		t.Error("expected dirty.Log to remain unset when nothing was parallelized")
	}
}

func TestParallelizeSuccessRefreshes(t *testing.T) {
	runner := &fakeRunner{responses: []fakeResponse{
		{out: jj.Captured{Stdout: []byte("Parallelized 2 commits\n")}},
		{out: jj.Captured{Stdout: []byte("")}}, // refresh's Log read
	}}
	p := newTestProtocols(t, runner)
	a := app.New("/repo", 8)

	p.InitiateParallelize(a, "a", "b")
	p.ConfirmParallelize(context.Background(), a)

	if len(runner.calls) != 2 {
		t.Fatalf("expected the parallelize call plus one refresh read, got %d calls: %v", len(runner.calls), runner.calls)
	}
	notif, ok := a.Notif.Current()
	if !ok || notif.Severity != app.SeveritySuccess {
		t.Errorf("expected a success notification, got %+v ok=%v", notif, ok)
	}
}
