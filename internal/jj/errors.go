package jj

import (
	"regexp"
	"strings"
)

// Kind classifies a failed jj invocation, per spec.md §4.1's error
// taxonomy. The executor's job is to turn raw stderr text into one of
// these so callers (mutation protocols) can react without re-parsing
// prose on every call site.
type Kind int

const (
	KindOther Kind = iota
	KindNotAJjRepo
	KindJjAbsent
	KindFlagUnsupported
	KindImmutable
	KindConflict
	KindProtected
	KindSnapshotRefused
)

// Error is the typed failure returned by Runner methods. Flag/Name/Paths
// carry the offending detail so callers can act on it (e.g. retry without
// Flag) without re-parsing Stderr themselves.
type Error struct {
	Kind    Kind
	Command string
	Stderr  string
	Flag    string   // set when Kind == KindFlagUnsupported
	Name    string   // set when Kind == KindImmutable or KindProtected
	Paths   []string // set when Kind == KindSnapshotRefused
}

func (e *Error) Error() string {
	msg := firstMeaningfulLine(e.Stderr)
	if msg == "" {
		msg = e.Stderr
	}
	return "jj " + e.Command + ": " + msg
}

// classifier is an ordered pattern table; first match wins. Grounded on
// madicen-jj-tui's extractErrorMessage and chatter-chado's jj.Error, but
// producing a typed Kind instead of a bare string so mutation protocols
// can switch on it.
var classifier = []struct {
	kind Kind
	re   *regexp.Regexp
}{
	{KindImmutable, regexp.MustCompile(`(?i)commit [0-9a-z]+ is immutable`)},
	{KindProtected, regexp.MustCompile(`(?i)(bookmark|branch) .* is protected|refusing to.*protected`)},
	{KindConflict, regexp.MustCompile(`(?i)non-fast-forward|would (diverge|move backwards)|refs? conflict`)},
	{KindFlagUnsupported, regexp.MustCompile(`(?i)unrecognized argument|unexpected argument|no such option|unknown flag`)},
	{KindSnapshotRefused, regexp.MustCompile(`(?i)refused to snapshot`)},
}

// classify inspects stderr text and returns a typed *Error for command.
// realRunner calls it only when jj exits non-zero, so a "Refused to
// snapshot" warning on a command that exits 0 is not classified.
func classify(command string, stderr string) *Error {
	e := &Error{Command: command, Stderr: stderr}
	for _, c := range classifier {
		if loc := c.re.FindString(stderr); loc != "" {
			e.Kind = c.kind
			switch c.kind {
			case KindFlagUnsupported:
				e.Flag = extractFlag(stderr)
			case KindImmutable, KindProtected:
				e.Name = extractQuoted(stderr)
			case KindSnapshotRefused:
				e.Paths = extractSnapshotPaths(stderr)
			}
			return e
		}
	}
	e.Kind = KindOther
	return e
}

var flagRe = regexp.MustCompile(`(?:unrecognized argument|unexpected argument|no such option|unknown flag)[:\s]*'?(-{1,2}[\w-]+)'?`)

func extractFlag(stderr string) string {
	if m := flagRe.FindStringSubmatch(stderr); len(m) > 1 {
		return m[1]
	}
	return ""
}

var quotedRe = regexp.MustCompile(`['"]([^'"]+)['"]`)

func extractQuoted(stderr string) string {
	if m := quotedRe.FindStringSubmatch(stderr); len(m) > 1 {
		return m[1]
	}
	return ""
}

func extractSnapshotPaths(stderr string) []string {
	var paths []string
	for _, line := range strings.Split(stderr, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "Refused to snapshot") {
			continue
		}
		if line != "" && strings.Contains(line, "/") {
			paths = append(paths, line)
		}
	}
	return paths
}

// firstMeaningfulLine extracts the primary message from jj's stderr,
// preferring an explicit "Error:" line and otherwise the first
// non-empty, non-hint, non-warning line. Deprecation warnings
// ("... is deprecated") are treated as noise here, per spec.md §9 —
// they never cause a command to fail, so stripping them from error
// text keeps the surfaced message focused on the actual failure.
func firstMeaningfulLine(stderr string) string {
	for _, line := range strings.Split(stderr, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "Error:") {
			return strings.TrimSpace(strings.TrimPrefix(line, "Error:"))
		}
	}
	for _, line := range strings.Split(stderr, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "Warning:") || strings.HasPrefix(line, "Hint:") {
			continue
		}
		if strings.Contains(line, "is deprecated") {
			continue
		}
		return line
	}
	return ""
}

// deprecationWarnings pulls out "... is deprecated" lines from stderr so
// callers can surface them once per session as an info notification
// instead of silently dropping them (spec.md §9).
func deprecationWarnings(stderr string) []string {
	var warnings []string
	for _, line := range strings.Split(stderr, "\n") {
		line = strings.TrimSpace(line)
		if strings.Contains(line, "is deprecated") {
			warnings = append(warnings, line)
		}
	}
	return warnings
}
