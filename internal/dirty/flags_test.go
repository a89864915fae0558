package dirty

import "testing"

func TestSetUnionAndHas(t *testing.T) {
	var s Set
	s.Union(Log)
	s.Union(Status)

	if !s.Has(Log) {
		t.Error("expected Log to be set")
	}
	if !s.Has(Status) {
		t.Error("expected Status to be set")
	}
	if s.Has(Bookmarks) {
		t.Error("expected Bookmarks to be unset")
	}
	if !s.Has(Log | Status) {
		t.Error("expected Has to report true for a combination that is fully set")
	}
	if s.Has(Log | Bookmarks) {
		t.Error("expected Has to report false when only part of the combination is set")
	}
}

func TestSetAny(t *testing.T) {
	var s Set
	if s.Any() {
		t.Error("expected zero-value Set to report clean")
	}
	s.Union(Evolog)
	if !s.Any() {
		t.Error("expected Any to report true once a flag is set")
	}
}

func TestSetClearIsIndividual(t *testing.T) {
	var s Set
	s.Union(Log | Bookmarks | Status)
	s.Clear(Bookmarks)

	if s.Has(Bookmarks) {
		t.Error("expected Bookmarks to be cleared")
	}
	if !s.Has(Log) || !s.Has(Status) {
		t.Error("expected Clear to leave other flags untouched")
	}
}

func TestSetClearAll(t *testing.T) {
	var s Set
	s.Union(All)
	s.ClearAll()
	if s.Any() {
		t.Error("expected ClearAll to reset the set to clean")
	}
}

func TestSetSnapshot(t *testing.T) {
	var s Set
	s.Union(Log | Blame)
	if got, want := s.Snapshot(), Log|Blame; got != want {
		t.Errorf("Snapshot() = %v, want %v", got, want)
	}
}

// TestSetMonotonicFailureRepair models the refresh orchestrator's
// monotonicity property (spec.md §8): a flag must only be cleared after a
// successful re-read; a failed refresh re-unions the flag rather than
// leaving it cleared, so a later retry still sees it as dirty.
func TestSetMonotonicFailureRepair(t *testing.T) {
	var s Set
	s.Union(Log)

	refreshFails := true
	s.Clear(Log)
	if refreshFails {
		s.Union(Log)
	}

	if !s.Has(Log) {
		t.Error("expected a failed refresh to leave Log dirty for the next attempt")
	}
}

func TestOrderCoversEveryFlagExactlyOnce(t *testing.T) {
	all := []Flag{Log, Bookmarks, Status, PreviewAll, OperationLog, Evolog, Blame}

	if len(Order) != len(all) {
		t.Fatalf("expected Order to list %d flags, got %d", len(all), len(Order))
	}

	seen := make(map[Flag]bool)
	for _, f := range Order {
		if seen[f] {
			t.Errorf("flag %v appears more than once in Order", f)
		}
		seen[f] = true
	}
	for _, f := range all {
		if !seen[f] {
			t.Errorf("flag %v is missing from Order", f)
		}
	}
}

func TestOrderStartsWithOperationLog(t *testing.T) {
	if len(Order) == 0 || Order[0] != OperationLog {
		t.Fatalf("expected OperationLog to run first so refreshed protected bookmarks are visible downstream, got %v", Order)
	}
}

func TestFlagString(t *testing.T) {
	cases := map[Flag]string{
		Log:          "log",
		Bookmarks:    "bookmarks",
		Status:       "status",
		PreviewAll:   "preview-all",
		OperationLog: "operation-log",
		Evolog:       "evolog",
		Blame:        "blame",
		Flag(1 << 15): "unknown",
	}
	for f, want := range cases {
		if got := f.String(); got != want {
			t.Errorf("Flag(%d).String() = %q, want %q", f, got, want)
		}
	}
}
