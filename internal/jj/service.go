package jj

import (
	"context"
	"strings"

	"github.com/nakamura-shuta/tij/internal/model"
)

// Service is the typed façade mutation protocols and refresh orchestration
// are built on (spec.md §4.2 "high-level operations"). It owns no mutable
// state of its own beyond the Runner; every method is a pure request/response
// round-trip, matching spec.md §5's "process spawned fresh per call".
//
// Grounded on madicen-jj-tui's internal/jj.Service method set, generalized
// from its hard-coded GitHub-flow operations to the full jj vocabulary named
// in spec.md's Mutation Protocols section.
type Service struct {
	runner Runner
}

// NewService wraps an existing Runner. Use jj.NewRunner + jj.ResolveRoot to
// build one rooted at the repository.
func NewService(r Runner) *Service {
	return &Service{runner: r}
}

// --- reads -----------------------------------------------------------

// Log runs `jj log` over revset and returns the parsed commit graph. An
// empty revset means jj's configured default, capped at --limit 200; a
// non-empty revset is passed without a limit. Parsing is total: see
// ParseCommits.
func (s *Service) Log(ctx context.Context, revset string) (model.CommitGraph, []string, error) {
	args := []string{"log", "-T", logTemplate}
	args = append(args, graphArgs()...)
	if revset != "" {
		args = append(args, "-r", revset)
	} else {
		args = append(args, "--limit", "200")
	}
	cap, err := s.runner.Run(ctx, args...)
	if err != nil {
		return model.CommitGraph{}, nil, err
	}
	return ParseCommits(cap.Stdout), cap.Deprecation, nil
}

// graphArgs returns extra graph-rendering flags for Log. It returns none:
// jj renders the ASCII graph column by default, and ParseCommits splits it
// off the front of each line at the marker.
func graphArgs() []string { return nil }

// Bookmarks lists local and remote bookmarks.
func (s *Service) Bookmarks(ctx context.Context) ([]model.Bookmark, error) {
	cap, err := s.runner.Run(ctx, "bookmark", "list", "--all-remotes", "-T", bookmarkTemplate)
	if err != nil {
		return nil, err
	}
	return ParseBookmarks(cap.Stdout), nil
}

// OperationLog lists recent operations, newest first.
func (s *Service) OperationLog(ctx context.Context) ([]model.Operation, error) {
	cap, err := s.runner.Run(ctx, "op", "log", "-T", opLogTemplate, "--no-graph")
	if err != nil {
		return nil, err
	}
	return ParseOperations(cap.Stdout), nil
}

// Status returns the working copy's changed files.
func (s *Service) Status(ctx context.Context) ([]model.FileStatus, error) {
	cap, err := s.runner.Run(ctx, "diff", "--summary", "-r", "@")
	if err != nil {
		return nil, err
	}
	return ParseFileStatuses(cap.Stdout), nil
}

// Show renders the textual preview (diff + description) for a change.
func (s *Service) Show(ctx context.Context, changeID string) (string, error) {
	cap, err := s.runner.Run(ctx, "show", changeID)
	if err != nil {
		return "", err
	}
	return string(cap.Stdout), nil
}

// Diff renders the diff between two revisions (interdiff when both given).
func (s *Service) Diff(ctx context.Context, from, to string) (string, error) {
	args := []string{"diff"}
	if from != "" {
		args = append(args, "--from", from)
	}
	if to != "" {
		args = append(args, "--to", to)
	}
	cap, err := s.runner.Run(ctx, args...)
	if err != nil {
		return "", err
	}
	return string(cap.Stdout), nil
}

// Evolog returns the evolution history of a single change.
func (s *Service) Evolog(ctx context.Context, changeID string) (model.CommitGraph, error) {
	cap, err := s.runner.Run(ctx, "evolog", "-T", logTemplate, "--no-graph", "-r", changeID)
	if err != nil {
		return model.CommitGraph{}, err
	}
	return ParseCommits(cap.Stdout), nil
}

// ConflictedFiles lists the files jj currently considers conflicted.
func (s *Service) ConflictedFiles(ctx context.Context) ([]model.Conflict, error) {
	cap, err := s.runner.Run(ctx, "resolve", "--list")
	if err != nil {
		// jj exits non-zero with "no conflicts" — not a real failure.
		if je, ok := err.(*Error); ok && strings.Contains(je.Stderr, "No conflict") {
			return nil, nil
		}
		return nil, err
	}
	return ParseConflicts(cap.Stdout), nil
}

// GitRemotes lists configured git remotes.
func (s *Service) GitRemotes(ctx context.Context) ([]string, error) {
	cap, err := s.runner.Run(ctx, "git", "remote", "list")
	if err != nil {
		return nil, err
	}
	var remotes []string
	for _, line := range strings.Split(string(cap.Stdout), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if name, _, ok := strings.Cut(line, " "); ok {
			remotes = append(remotes, name)
		} else {
			remotes = append(remotes, line)
		}
	}
	return remotes, nil
}

// --- dry-run / execute mutation primitives ----------------------------
//
// The methods below that jj can preview (Squash, Abandon, Absorb, Rebase,
// GitPush) take a dryRun bool rather than exposing two separate entry
// points: mutation protocols (internal/protocol) can call the same method
// twice — once with dryRun=true to gather a risk classification, once with
// dryRun=false after confirmation — matching spec.md §7's Gather → Dry-run →
// Classify → Confirm → Execute → Refresh template. The other methods have
// no dry-run form.

func withDryRun(args []string, dryRun bool) []string {
	if dryRun {
		return append(args, "--dry-run")
	}
	return args
}

// Describe sets a change's description inline via `jj describe -m`.
func (s *Service) Describe(ctx context.Context, changeID, message string) (Captured, error) {
	return s.runner.Run(ctx, "describe", changeID, "-m", message)
}

// Edit switches the working copy to an existing change.
func (s *Service) Edit(ctx context.Context, changeID string) (Captured, error) {
	return s.runner.Run(ctx, "edit", changeID)
}

// New creates a new empty working-copy change on top of parents.
func (s *Service) New(ctx context.Context, parents ...string) (Captured, error) {
	args := append([]string{"new"}, parents...)
	return s.runner.Run(ctx, args...)
}

// Commit finalizes @ with a description, creating a new working-copy child.
func (s *Service) Commit(ctx context.Context, message string) (Captured, error) {
	return s.runner.Run(ctx, "commit", "-m", message)
}

// Squash moves changes from source into its parent (or --into destination).
func (s *Service) Squash(ctx context.Context, source, into string, dryRun bool) (Captured, error) {
	args := []string{"squash"}
	if source != "" {
		args = append(args, "-r", source)
	}
	if into != "" {
		args = append(args, "--into", into)
	}
	return s.runner.Run(ctx, withDryRun(args, dryRun)...)
}

// Abandon discards a change.
func (s *Service) Abandon(ctx context.Context, changeID string, dryRun bool) (Captured, error) {
	return s.runner.Run(ctx, withDryRun([]string{"abandon", changeID}, dryRun)...)
}

// Duplicate creates a sibling copy of a change. destination is the target
// bookmark/revset prefix when the caller resolved an explicit branch to
// duplicate onto; empty duplicates in place.
func (s *Service) Duplicate(ctx context.Context, changeID, destination string) (Captured, error) {
	args := []string{"duplicate", changeID}
	if destination != "" {
		args = append(args, "--destination", destination)
	}
	return s.runner.Run(ctx, args...)
}

// Restore reverts a path (or the whole change) back to its parent's state.
func (s *Service) Restore(ctx context.Context, changeID string, paths []string) (Captured, error) {
	args := []string{"restore"}
	if changeID != "" {
		args = append(args, "--changes-in", changeID)
	}
	args = append(args, paths...)
	return s.runner.Run(ctx, args...)
}

// Absorb distributes working-copy changes into their introducing ancestors.
func (s *Service) Absorb(ctx context.Context, dryRun bool) (Captured, error) {
	return s.runner.Run(ctx, withDryRun([]string{"absorb"}, dryRun)...)
}

// Parallelize makes the given changes siblings instead of a linear chain.
func (s *Service) Parallelize(ctx context.Context, revisions []string) (Captured, error) {
	args := append([]string{"parallelize"}, revisions...)
	return s.runner.Run(ctx, args...)
}

// SimplifyParents drops redundant parent edges from a change.
func (s *Service) SimplifyParents(ctx context.Context, changeID string) (Captured, error) {
	return s.runner.Run(ctx, "simplify-parents", "-r", changeID)
}

// Rebase moves revisions onto destination. skipEmptied requests
// --skip-emptied, which mutation protocols fall back off of when the
// installed jj is too old (see internal/version).
func (s *Service) Rebase(ctx context.Context, revisions []string, destination string, skipEmptied, dryRun bool) (Captured, error) {
	args := []string{"rebase"}
	for _, r := range revisions {
		args = append(args, "-r", r)
	}
	args = append(args, "-d", destination)
	if skipEmptied {
		args = append(args, "--skip-emptied")
	}
	return s.runner.Run(ctx, withDryRun(args, dryRun)...)
}

// Undo reverts the repository to the state before the given operation (or
// the most recent operation when opID is empty).
func (s *Service) Undo(ctx context.Context, opID string) (Captured, error) {
	args := []string{"op", "undo"}
	if opID != "" {
		args = append(args, opID)
	}
	return s.runner.Run(ctx, args...)
}

// OpRestore restores the repository to a prior operation's state
// (`jj op restore <opID>`), which is how Redo is implemented: restoring
// to the operation that Undo most recently moved past.
func (s *Service) OpRestore(ctx context.Context, opID string) (Captured, error) {
	return s.runner.Run(ctx, "op", "restore", opID)
}

// BookmarkSet moves (or creates) a bookmark to target.
func (s *Service) BookmarkSet(ctx context.Context, name, target string, allowBackwards bool) (Captured, error) {
	args := []string{"bookmark", "set", name, "-r", target}
	if allowBackwards {
		args = append(args, "--allow-backwards")
	}
	return s.runner.Run(ctx, args...)
}

// BookmarkDelete deletes a local bookmark.
func (s *Service) BookmarkDelete(ctx context.Context, name string) (Captured, error) {
	return s.runner.Run(ctx, "bookmark", "delete", name)
}

// BookmarkTrack/Untrack toggle remote tracking for name@remote.
func (s *Service) BookmarkTrack(ctx context.Context, name, remote string) (Captured, error) {
	return s.runner.Run(ctx, "bookmark", "track", name+"@"+remote)
}

func (s *Service) BookmarkUntrack(ctx context.Context, name, remote string) (Captured, error) {
	return s.runner.Run(ctx, "bookmark", "untrack", name+"@"+remote)
}

// GitPush pushes the given bookmarks (or all tracked bookmarks when empty)
// to remote. dryRun surfaces exactly what would move without moving it,
// which protocol.Push uses to classify risk before confirming.
func (s *Service) GitPush(ctx context.Context, remote string, bookmarks []string, allowNew, dryRun bool) (Captured, error) {
	args := []string{"git", "push"}
	if remote != "" {
		args = append(args, "--remote", remote)
	}
	for _, b := range bookmarks {
		args = append(args, "-b", b)
	}
	if allowNew {
		args = append(args, "--allow-new")
	}
	return s.runner.Run(ctx, withDryRun(args, dryRun)...)
}

// GitFetch fetches from remote (all configured remotes when empty).
func (s *Service) GitFetch(ctx context.Context, remote string) (Captured, error) {
	args := []string{"git", "fetch"}
	if remote != "" {
		args = append(args, "--remote", remote)
	}
	return s.runner.Run(ctx, args...)
}

// Resolve runs `jj resolve <path>`, which opens jj's configured merge tool
// for that conflicted path.
func (s *Service) Resolve(ctx context.Context, path string) (Captured, error) {
	return s.runner.Run(ctx, "resolve", path)
}

// Split opens jj's interactive split workflow for changeID, dividing it
// into two changes along whatever hunks the editor selects.
func (s *Service) Split(ctx context.Context, changeID string) (Captured, error) {
	return s.runner.Run(ctx, "split", "-r", changeID)
}

// DiffEdit opens jj's diff-edit workflow for changeID.
func (s *Service) DiffEdit(ctx context.Context, changeID string) (Captured, error) {
	return s.runner.Run(ctx, "diffedit", "-r", changeID)
}

// Version returns the installed jj's version string (`jj --version`
// output), used by internal/version to gate flag fallbacks.
func (s *Service) Version(ctx context.Context) (string, error) {
	cap, err := s.runner.Run(ctx, "--version")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(cap.Stdout)), nil
}

// RunConfigGet reads a single jj config key (e.g. "tij.protected-bookmarks"),
// returning its raw trimmed value. Used by the refresh orchestrator to
// re-read the protected-bookmark list on every operation-log change
// (spec.md §9 "Protected bookmark list").
func (s *Service) RunConfigGet(ctx context.Context, key string) (string, error) {
	cap, err := s.runner.Run(ctx, "config", "get", key)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(cap.Stdout)), nil
}
