package jj

// The JSON-line templates below are the caller-chosen `-T <template>`
// flags referenced in spec.md §4.1/§6. Grounded on omarkohl-jip's
// logTemplate/bookmarkListTemplate: jj's own json() template function
// already solves the "tab-in-field" hazard that the distilled spec
// documents as a historical limitation (spec.md §9) — a description or
// author name containing a literal tab no longer needs a field-count
// heuristic to reassemble, since json() escapes it for us.
//
// The log template cannot carry the graph-prefix glyphs (they are
// rendered by jj outside of any template value), so ParseCommits still
// splits the pre-template ASCII-art column off the front of each raw
// line using the "<<<JJ>>>" marker technique from madicen-jj-tui's
// getCommitGraph.
const logMarker = "<<<JJ>>>"

const logTemplate = `concat(
	"` + logMarker + `",
	"{",
	"\"change_id\":", json(change_id.short(12)),
	",\"commit_id\":", json(commit_id.short(40)),
	",\"author\":", json(author.name()),
	",\"email\":", json(author.email()),
	",\"timestamp\":", json(author.timestamp().format("%Y-%m-%dT%H:%M:%S%z")),
	",\"description\":", json(description),
	",\"bookmarks\":[", bookmarks.map(|b| json(b.name())).join(","), "]",
	",\"parents\":[", parents.map(|p| json(p.change_id().short(12))).join(","), "]",
	",\"is_working\":", if(self.contained_in("@"), "true", "false"),
	",\"is_empty\":", if(empty, "true", "false"),
	",\"is_conflict\":", if(self.conflict(), "true", "false"),
	",\"immutable\":", if(immutable, "true", "false"),
	"}\n"
)`

const bookmarkTemplate = `concat(
	"{",
	"\"name\":", json(name),
	",\"remote\":", if(remote, json(remote), "null"),
	",\"present\":", if(present, "true", "false"),
	",\"conflict\":", if(conflict, "true", "false"),
	",\"target\":", if(present && !conflict, json(normal_target.commit_id().short(12)), "\"\""),
	",\"change_id\":", if(present && !conflict, json(normal_target.change_id().short(12)), "\"\""),
	",\"tracked\":", if(remote && tracked, "true", "false"),
	",\"ahead\":", if(remote && tracked && tracking_ahead_count.exact(), tracking_ahead_count.exact(), "0"),
	",\"behind\":", if(remote && tracked && tracking_behind_count.exact(), tracking_behind_count.exact(), "0"),
	"}\n"
)`

const opLogTemplate = `concat(
	"{",
	"\"id\":", json(self.id().short(12)),
	",\"timestamp\":", json(self.time().start().format("%Y-%m-%dT%H:%M:%S%z")),
	",\"description\":", json(self.description()),
	",\"tags\":[", self.tags().map(|k, v| json(k ++ "=" ++ v)).join(","), "]",
	"}\n"
)`
