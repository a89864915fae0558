// Package version tracks tij's own build version and gates jj-version-
// dependent behavior — primarily which rebase flags are safe to
// try first instead of always discovering unsupported ones the hard way
// via a failed invocation (internal/jj's FlagUnsupported error).
//
// Repurposed from madicen-jj-tui's internal/version, which instead checked
// tij's own GitHub releases for self-updates; that concern has no home in
// this spec (no packaging/release plumbing, spec.md §1), so the package
// keeps its shape — a small cached-check facility — but points it at the
// installed jj binary's version using golang.org/x/mod/semver instead.
package version

import (
	"context"
	"regexp"
	"strings"
	"sync"

	"golang.org/x/mod/semver"
)

// Version is tij's own build version, set at build time via
// -ldflags "-X .../internal/version.Version=v1.0.0".
var Version = "dev"

// Flag is a jj CLI flag whose support is gated on a minimum jj version.
type Flag struct {
	Name       string
	MinVersion string // semver, e.g. "v0.28.0"
}

// Known flag/version gates. Extend as jj grows or drops flags; the rebase
// protocol consults FlagSkipEmptied via Supports before trying that flag.
var (
	FlagSkipEmptied = Flag{Name: "--skip-emptied", MinVersion: "v0.25.0"}
	FlagInsertAfter = Flag{Name: "-A", MinVersion: "v0.23.0"}
	FlagInsertBefore = Flag{Name: "-B", MinVersion: "v0.23.0"}
)

var versionRe = regexp.MustCompile(`\d+\.\d+\.\d+`)

// JJVersion caches the installed jj's parsed semver, queried once at
// startup via Service.Version and stored here for the lifetime of the
// process (jj itself cannot change version mid-session).
type JJVersion struct {
	mu  sync.RWMutex
	raw string
	sv  string // normalized to semver's "vX.Y.Z" form, "" if unparseable
}

// Parse extracts a semver string from `jj --version` output (e.g.
// "jj 0.28.2" or "jujutsu 0.28.2-abcdef") and stores it.
func (v *JJVersion) Parse(raw string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.raw = raw
	if m := versionRe.FindString(raw); m != "" {
		v.sv = "v" + m
	} else {
		v.sv = ""
	}
}

// Raw returns the unparsed `jj --version` output, for display.
func (v *JJVersion) Raw() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.raw
}

// Supports reports whether the installed jj version satisfies flag's
// minimum. An unparseable or not-yet-queried version optimistically
// returns true — the flag-fallback retry ladder still catches a real
// mismatch, this is purely a fast-path to skip a doomed first attempt.
func (v *JJVersion) Supports(flag Flag) bool {
	v.mu.RLock()
	sv := v.sv
	v.mu.RUnlock()
	if sv == "" {
		return true
	}
	return semver.Compare(sv, flag.MinVersion) >= 0
}

// Global is the process-wide jj version cache, populated once during
// startup (see main.go) before the TUI opens.
var Global = &JJVersion{}

// Query runs versionFn (typically (*jj.Service).Version) and stores the
// result in Global. Accepts a function rather than a *jj.Service directly
// to avoid an import cycle between internal/version and internal/jj.
func Query(ctx context.Context, versionFn func(context.Context) (string, error)) {
	raw, err := versionFn(ctx)
	if err != nil {
		return
	}
	Global.Parse(strings.TrimSpace(raw))
}
