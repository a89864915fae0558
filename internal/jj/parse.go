package jj

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/nakamura-shuta/tij/internal/model"
)

// commitLine mirrors the JSON shape produced by logTemplate.
type commitLine struct {
	ChangeID    string   `json:"change_id"`
	CommitID    string   `json:"commit_id"`
	Author      string   `json:"author"`
	Email       string   `json:"email"`
	Timestamp   string   `json:"timestamp"`
	Description string   `json:"description"`
	Bookmarks   []string `json:"bookmarks"`
	Parents     []string `json:"parents"`
	IsWorking   bool     `json:"is_working"`
	IsEmpty     bool     `json:"is_empty"`
	IsConflict  bool     `json:"is_conflict"`
	Immutable   bool     `json:"immutable"`
}

// ParseCommits parses the raw stdout of a `jj log -T logTemplate`
// invocation into a model.CommitGraph. Parsing is total (spec.md §8):
// a line whose JSON payload fails to decode becomes a placeholder commit
// instead of being dropped, so the log never goes silently blank.
func ParseCommits(raw []byte) model.CommitGraph {
	lines := strings.Split(string(raw), "\n")
	commits := make([]model.Commit, 0, len(lines))
	connections := make(map[string][]string)

	var pendingGraphLines []string

	for _, line := range lines {
		if line == "" {
			continue
		}

		idx := strings.Index(line, logMarker)
		if idx == -1 {
			// A graph-only connector line belongs to the previous commit.
			if g := strings.TrimRight(line, " "); g != "" {
				pendingGraphLines = append(pendingGraphLines, g)
			}
			continue
		}

		if len(commits) > 0 && len(pendingGraphLines) > 0 {
			commits[len(commits)-1].GraphPrefix += "\n" + strings.Join(pendingGraphLines, "\n")
			pendingGraphLines = nil
		}

		graphPrefix := line[:idx]
		payload := line[idx+len(logMarker):]

		commit := decodeCommitLine(graphPrefix, payload)
		commits = append(commits, commit)

		for _, p := range commit.Parents {
			connections[p] = append(connections[p], commit.ChangeID)
		}
	}

	if len(commits) > 0 && len(pendingGraphLines) > 0 {
		commits[len(commits)-1].GraphPrefix += "\n" + strings.Join(pendingGraphLines, "\n")
	}

	return model.CommitGraph{Commits: commits, Connections: connections}
}

func decodeCommitLine(graphPrefix, payload string) model.Commit {
	var cl commitLine
	if err := json.Unmarshal([]byte(payload), &cl); err != nil {
		return model.Commit{
			ChangeID:    "?",
			Description: "<unparseable: " + strings.TrimSpace(payload) + ">",
			GraphPrefix: graphPrefix,
		}
	}

	ts, _ := time.Parse("2006-01-02T15:04:05-0700", cl.Timestamp)

	return model.Commit{
		ChangeID:    cl.ChangeID,
		CommitID:    cl.CommitID,
		Author:      cl.Author,
		Email:       cl.Email,
		Timestamp:   ts,
		Description: cl.Description,
		Bookmarks:   cl.Bookmarks,
		Parents:     cl.Parents,
		IsWorking:   cl.IsWorking,
		IsEmpty:     cl.IsEmpty,
		IsConflict:  cl.IsConflict,
		Immutable:   cl.Immutable,
		GraphPrefix: graphPrefix,
	}
}

type bookmarkLine struct {
	Name       string `json:"name"`
	Remote     string `json:"remote"`
	Present    bool   `json:"present"`
	Conflict   bool   `json:"conflict"`
	Target     string `json:"target"`
	ChangeID   string `json:"change_id"`
	Tracked    bool   `json:"tracked"`
	Ahead      int    `json:"ahead"`
	Behind     int    `json:"behind"`
}

// ParseBookmarks merges jj's one-row-per-(name,remote) bookmark list
// output into one model.Bookmark per local name, folding remote rows
// into RemoteTargets/TrackedRemotes. The "git" internal remote (jj's
// colocated-repo bookkeeping remote) is always filtered out.
func ParseBookmarks(raw []byte) []model.Bookmark {
	byName := make(map[string]*model.Bookmark)
	var order []string

	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var bl bookmarkLine
		if err := json.Unmarshal([]byte(line), &bl); err != nil {
			continue
		}
		if bl.Remote == "git" {
			continue
		}

		b, ok := byName[bl.Name]
		if !ok {
			b = &model.Bookmark{
				Name:           bl.Name,
				RemoteTargets:  make(map[string]string),
				TrackedRemotes: make(map[string]bool),
			}
			byName[bl.Name] = b
			order = append(order, bl.Name)
		}

		if bl.Remote == "" {
			b.TargetChangeID = bl.ChangeID
			b.Conflicted = bl.Conflict
			b.LocalDeleted = !bl.Present
			continue
		}

		b.RemoteTargets[bl.Remote] = bl.ChangeID
		b.TrackedRemotes[bl.Remote] = bl.Tracked
		if bl.Tracked {
			b.Ahead = bl.Ahead
			b.Behind = bl.Behind
		}
	}

	out := make([]model.Bookmark, 0, len(order))
	for _, name := range order {
		out = append(out, *byName[name])
	}
	return out
}

type opLine struct {
	ID          string   `json:"id"`
	Timestamp   string   `json:"timestamp"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// ParseOperations parses `jj op log -T opLogTemplate` output.
func ParseOperations(raw []byte) []model.Operation {
	var ops []model.Operation
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var ol opLine
		if err := json.Unmarshal([]byte(line), &ol); err != nil {
			ops = append(ops, model.Operation{ID: "?", Description: "<unparseable: " + line + ">"})
			continue
		}
		ops = append(ops, model.Operation{
			ID:          ol.ID,
			Timestamp:   ol.Timestamp,
			Description: ol.Description,
			Tags:        ol.Tags,
		})
	}
	return ops
}

// ParseFileStatuses parses `jj diff --summary` output: one "<letter>
// <path>" line per file. Grounded on madicen-jj-tui's GetChangedFiles.
func ParseFileStatuses(raw []byte) []model.FileStatus {
	var files []model.FileStatus
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, " ", 2)
		if len(parts) < 2 {
			continue
		}
		fs := model.FileStatus{Path: parts[1]}
		switch parts[0] {
		case "A":
			fs.Kind = model.FileAdded
		case "M":
			fs.Kind = model.FileModified
		case "D":
			fs.Kind = model.FileDeleted
		case "R":
			fs.Kind = model.FileRenamed
			if from, to, ok := strings.Cut(parts[1], " => "); ok {
				fs.Path = from
				fs.RenameTo = to
			}
		case "C":
			fs.Kind = model.FileConflicted
		default:
			fs.Kind = model.FileModified
		}
		files = append(files, fs)
	}
	return files
}

// ParseConflicts parses `jj resolve --list` output: one "<path>
// <N>-sided conflict" line per conflicted file. Marker ranges are not
// derivable from --list alone and are left empty; a future `jj file show`
// read can fill them in on demand.
func ParseConflicts(raw []byte) []model.Conflict {
	var conflicts []model.Conflict
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		c := model.Conflict{Path: fields[0], Sides: 2}
		for _, f := range fields[1:] {
			if n, ok := strings.CutSuffix(f, "-sided"); ok {
				if v := atoiSafe(n); v > 0 {
					c.Sides = v
				}
			}
		}
		conflicts = append(conflicts, c)
	}
	return conflicts
}

func atoiSafe(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}
