package jj

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// Captured is the raw result of one jj invocation (spec.md §4.1).
type Captured struct {
	Stdout      []byte
	Stderr      []byte
	Exit        int
	Deprecation []string // stripped "... is deprecated" lines from stderr
}

// Runner is a typed façade over the jj CLI. Grounded on omarkohl-jip's
// internal/jj.Runner — an interface rather than a concrete struct keeps
// the executor mockable so protocols and parsers can be tested without a
// real jj binary or repository on disk.
type Runner interface {
	// Run spawns `jj <args...>` and returns its captured output, or a
	// typed *Error on failure. realRunner prepends the stable
	// --color=never --no-pager prefix itself; callers pass only the
	// subcommand and its arguments.
	Run(ctx context.Context, args ...string) (Captured, error)
}

// stablePrefix is prepended to every invocation per spec.md §4.1.
var stablePrefix = []string{"--color=never", "--no-pager"}

// realRunner spawns jj as a fresh child process per call; no long-lived
// daemon, matching spec.md §5's "process is spawned fresh per call".
type realRunner struct {
	repoRoot string
}

// NewRunner creates a Runner rooted at repoRoot, which must already be
// resolved to the repository root (see ResolveRoot).
func NewRunner(repoRoot string) Runner {
	return &realRunner{repoRoot: repoRoot}
}

func (r *realRunner) Run(ctx context.Context, args ...string) (Captured, error) {
	full := make([]string, 0, len(stablePrefix)+len(args))
	full = append(full, stablePrefix...)
	full = append(full, args...)

	cmd := exec.CommandContext(ctx, "jj", full...)
	cmd.Dir = r.repoRoot
	// Close stdin so jj never blocks on an interactive prompt (spec.md §4.1).
	cmd.Stdin = bytes.NewReader(nil)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	exitCode := 0
	if runErr != nil {
		if ee, ok := runErr.(*exec.ExitError); ok {
			exitCode = ee.ExitCode()
		} else {
			return Captured{}, fmt.Errorf("spawning jj: %w", runErr)
		}
	}

	deprecations := deprecationWarnings(stderr.String())

	if exitCode != 0 {
		return Captured{Stdout: stdout.Bytes(), Stderr: stderr.Bytes(), Exit: exitCode},
			classify(strings.Join(args, " "), stderr.String())
	}

	return Captured{
		Stdout:      stdout.Bytes(),
		Stderr:      stderr.Bytes(),
		Exit:        0,
		Deprecation: deprecations,
	}, nil
}

// ResolveRoot finds the jj workspace root starting from dir, per
// spec.md §6 ("Working directory is the repository root resolved once
// at startup"). Grounded on madicen-jj-tui's isJJRepo / gastown's
// hasJjRepo directory-walk, but asking jj itself rather than hand-rolling
// the on-disk layout, since the on-disk layout is explicitly out of this
// tool's scope (spec.md §1 Non-goals).
func ResolveRoot(ctx context.Context, dir string) (string, error) {
	if _, err := exec.LookPath("jj"); err != nil {
		return "", &Error{Kind: KindJjAbsent, Command: "workspace root"}
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	cmd := exec.CommandContext(ctx, "jj", "--color=never", "--no-pager", "workspace", "root")
	cmd.Dir = abs
	cmd.Stdin = bytes.NewReader(nil)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", &Error{Kind: KindNotAJjRepo, Command: "workspace root", Stderr: stderr.String()}
	}
	return strings.TrimSpace(stdout.String()), nil
}
