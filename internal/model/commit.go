// Package model holds the records produced by the executor/parser layer:
// commits, bookmarks, operations, file statuses and conflicts, plus the
// small value types (dirty flags excluded, see internal/dirty) that the
// rest of tij is built from.
package model

import "time"

// Commit is a single change in the jj log, keyed by ChangeID.
//
// ChangeID is stable across amend/rebase; CommitID changes whenever the
// commit's content or metadata changes. GraphPrefix is jj's own rendered
// ASCII-art column for this row and must be carried verbatim across
// refreshes so the DAG renders stably.
type Commit struct {
	ChangeID    string
	CommitID    string
	Author      string
	Email       string
	Timestamp   time.Time
	Description string
	Bookmarks   []string
	Parents     []string
	IsWorking   bool
	IsEmpty     bool
	IsConflict  bool
	Immutable   bool
	GraphPrefix string
}

// ShortChangeID returns the conventional 12-character display prefix,
// or the whole id if it is shorter (e.g. the "?" placeholder).
func (c Commit) ShortChangeID() string {
	return shortenID(c.ChangeID, 12)
}

// ShortCommitID returns an 8-character display prefix of the commit id.
func (c Commit) ShortCommitID() string {
	return shortenID(c.CommitID, 8)
}

func shortenID(id string, n int) string {
	if len(id) <= n {
		return id
	}
	return id[:n]
}

// Unparseable reports whether this record is a placeholder produced
// because a log line failed to parse (see internal/jj.ParseCommits).
func (c Commit) Unparseable() bool {
	return c.ChangeID == "?"
}

// CommitGraph is the full result of a log query: the ordered commit rows
// plus a parent/child adjacency view used by the graph renderer.
type CommitGraph struct {
	Commits     []Commit
	Connections map[string][]string // change id -> child change ids
}

// WorkingCopy returns the commit currently checked out (@), if present.
// The spec's uniqueness invariant means there is at most one.
func (g CommitGraph) WorkingCopy() (Commit, bool) {
	for _, c := range g.Commits {
		if c.IsWorking {
			return c, true
		}
	}
	return Commit{}, false
}

// ByChangeID returns the commit with the given change id, if present.
func (g CommitGraph) ByChangeID(changeID string) (Commit, bool) {
	for _, c := range g.Commits {
		if c.ChangeID == changeID {
			return c, true
		}
	}
	return Commit{}, false
}

// IndexOf returns the index of the commit with the given change id, or -1.
func (g CommitGraph) IndexOf(changeID string) int {
	for i, c := range g.Commits {
		if c.ChangeID == changeID {
			return i
		}
	}
	return -1
}
