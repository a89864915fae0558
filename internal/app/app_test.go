package app

import (
	"testing"
	"time"

	"github.com/nakamura-shuta/tij/internal/dirty"
	"github.com/nakamura-shuta/tij/internal/model"
)

func TestHandleEscConsumesModeBeforeViewStack(t *testing.T) {
	a := New("/repo", 8)
	a.Views.Push(ViewDiff, "")
	a.Mode = Mode{Kind: ModeRevset, Buffer: "author(bob)"}

	if !a.HandleEsc() {
		t.Fatal("expected HandleEsc to report it consumed the key")
	}
	if !a.Mode.None() {
		t.Error("expected HandleEsc to reset Mode to None")
	}
	if a.Views.Len() != 2 {
		t.Errorf("expected Esc to leave the view stack untouched, got depth %d", a.Views.Len())
	}
}

func TestHandleEscNoopWhenModeIsNone(t *testing.T) {
	a := New("/repo", 8)
	a.Views.Push(ViewDiff, "")

	if a.HandleEsc() {
		t.Error("expected HandleEsc to report false when no mode is active")
	}
	if a.Views.Len() != 2 {
		t.Error("expected the view stack to be untouched")
	}
}

func TestBackPopsOnlyWhenModeIsNone(t *testing.T) {
	a := New("/repo", 8)
	a.Views.Push(ViewDiff, "")
	a.Mode = Mode{Kind: ModeSearch}

	if a.Back() {
		t.Error("expected Back to refuse to pop while a mode is active")
	}
	if a.Views.Len() != 2 {
		t.Fatal("expected the view stack to be untouched while a mode is active")
	}

	a.Mode = Reset()
	if !a.Back() {
		t.Fatal("expected Back to pop once Mode is None")
	}
	if a.Views.Len() != 1 {
		t.Errorf("expected the stack to return to just the root, got depth %d", a.Views.Len())
	}
}

func TestBackReportsFalseAtRoot(t *testing.T) {
	a := New("/repo", 8)
	if a.Back() {
		t.Error("expected Back at the root view to report false (caller treats this as quit)")
	}
}

func TestMarkDirtyUnionsFlags(t *testing.T) {
	a := New("/repo", 8)
	a.MarkDirty(dirty.Log)
	a.MarkDirty(dirty.Status)

	if !a.Dirty.Has(dirty.Log) || !a.Dirty.Has(dirty.Status) {
		t.Errorf("expected both flags set, got snapshot %v", a.Dirty.Snapshot())
	}
	if a.Dirty.Has(dirty.Bookmarks) {
		t.Error("expected Bookmarks to remain unset")
	}
}

func TestNotifyPostsToNotificationCenter(t *testing.T) {
	a := New("/repo", 8)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a.Notify(SeverityWarn, "careful", now)

	got, ok := a.Notif.Current()
	if !ok {
		t.Fatal("expected a current notification")
	}
	if got.Severity != SeverityWarn || got.Message != "careful" || !got.PostedAt.Equal(now) {
		t.Errorf("unexpected notification: %+v", got)
	}
}

func TestSelectedCommitUsesTopViewSelection(t *testing.T) {
	a := New("/repo", 8)
	a.Commits = model.CommitGraph{Commits: []model.Commit{
		{ChangeID: "aaa"},
		{ChangeID: "bbb"},
	}}
	a.Views.Top().Selection = 1

	c, ok := a.SelectedCommit()
	if !ok || c.ChangeID != "bbb" {
		t.Errorf("expected selected commit bbb, got %+v ok=%v", c, ok)
	}
}

func TestSelectedCommitOutOfRange(t *testing.T) {
	a := New("/repo", 8)
	a.Commits = model.CommitGraph{Commits: []model.Commit{{ChangeID: "aaa"}}}
	a.Views.Top().Selection = 5

	if _, ok := a.SelectedCommit(); ok {
		t.Error("expected SelectedCommit to report false when selection is out of range")
	}
}

func TestSelectByChangeIDMovesSelection(t *testing.T) {
	a := New("/repo", 8)
	a.Commits = model.CommitGraph{Commits: []model.Commit{
		{ChangeID: "aaa"},
		{ChangeID: "bbb"},
		{ChangeID: "ccc"},
	}}

	a.SelectByChangeID("ccc")
	if a.Views.Top().Selection != 2 {
		t.Errorf("expected selection 2, got %d", a.Views.Top().Selection)
	}

	// An absent change id leaves the current selection untouched.
	a.SelectByChangeID("missing")
	if a.Views.Top().Selection != 2 {
		t.Errorf("expected selection to stay at 2 for an unresolved change id, got %d", a.Views.Top().Selection)
	}
}

func TestNoteDeprecationFiresOncePerSession(t *testing.T) {
	a := New("/repo", 8)
	if !a.NoteDeprecation("the `jj foo` command is deprecated") {
		t.Error("expected the first occurrence to report true")
	}
	if a.NoteDeprecation("the `jj foo` command is deprecated") {
		t.Error("expected a repeat occurrence to report false")
	}
}

func TestViewStackRootNeverPops(t *testing.T) {
	s := NewViewStack()
	if s.Len() != 1 || !s.AtRoot() {
		t.Fatalf("expected a fresh stack to hold just the root, got len=%d", s.Len())
	}
	if _, ok := s.Pop(); ok {
		t.Error("expected popping the root to report false")
	}
	if s.Len() != 1 {
		t.Errorf("expected the root to survive a failed pop, got len=%d", s.Len())
	}
}

func TestViewStackPushPopSymmetry(t *testing.T) {
	s := NewViewStack()
	s.Push(ViewDiff, "abc")
	s.Push(ViewStatus, "")

	if s.Len() != 3 {
		t.Fatalf("expected depth 3, got %d", s.Len())
	}
	if s.Top().Kind != ViewStatus {
		t.Errorf("expected top view Status, got %v", s.Top().Kind)
	}

	popped, ok := s.Pop()
	if !ok || popped.Kind != ViewStatus {
		t.Fatalf("expected to pop Status, got %+v ok=%v", popped, ok)
	}
	if s.Top().Kind != ViewDiff || s.Top().FocusChangeID != "abc" {
		t.Errorf("expected Diff view focused on abc to resurface, got %+v", s.Top())
	}

	popped, ok = s.Pop()
	if !ok || popped.Kind != ViewDiff {
		t.Fatalf("expected to pop Diff, got %+v ok=%v", popped, ok)
	}
	if !s.AtRoot() {
		t.Error("expected the stack to be back at the root")
	}
}

func TestModeNoneAndReset(t *testing.T) {
	m := Mode{Kind: ModeSearch, Buffer: "foo"}
	if m.None() {
		t.Error("expected a non-ModeNone mode to report None()==false")
	}

	reset := Reset()
	if !reset.None() {
		t.Error("expected Reset() to produce a None mode")
	}
	if reset.Buffer != "" || reset.Pending.Kind != PendingNone {
		t.Errorf("expected Reset() to discard buffer/pending state, got %+v", reset)
	}
}

func TestNotificationCenterSingleSlotReplace(t *testing.T) {
	var n NotificationCenter
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	n.Post(SeverityInfo, "first", now)
	n.Post(SeverityError, "second", now.Add(time.Second))

	got, ok := n.Current()
	if !ok || got.Message != "second" {
		t.Errorf("expected the newer notification to supersede the older, got %+v ok=%v", got, ok)
	}
}

func TestNotificationCenterDismiss(t *testing.T) {
	var n NotificationCenter
	n.Post(SeverityInfo, "hello", time.Now())
	n.Dismiss()
	if _, ok := n.Current(); ok {
		t.Error("expected Dismiss to clear the current notification")
	}
}

func TestNotificationCenterExpireOlderThan(t *testing.T) {
	var n NotificationCenter
	posted := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	n.Post(SeverityInfo, "old news", posted)

	n.ExpireOlderThan(posted.Add(-time.Minute))
	if _, ok := n.Current(); !ok {
		t.Error("expected ExpireOlderThan to leave a notification newer than the cutoff")
	}

	n.ExpireOlderThan(posted.Add(time.Minute))
	if _, ok := n.Current(); ok {
		t.Error("expected ExpireOlderThan to clear a notification older than the cutoff")
	}
}
