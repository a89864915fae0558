package app

// ModeKind enumerates the mutually-exclusive input modes attached to the
// current view (spec.md §3/§4.5). Exactly one is active at any time;
// ModeNone means "no modal input, keys reach the view/global handlers".
type ModeKind int

const (
	ModeNone ModeKind = iota
	ModeRevset
	ModeSearch
	ModeRename
	ModeCreate
	ModeConfirmYN
	ModeSelectRemote
	ModeSelectBranch
	ModeSelectDiffFrom
	ModeSelectDiffTo
	ModeDescribe
	ModePushBulkMode
	ModeFetchBranchSelect
	ModeRebaseDestination
)

// PendingKind tags the action a ModeConfirmYN (or Select*) mode will run on
// confirmation. Per spec.md §9 ("Protocol closures"), this is an enum tag
// plus a small parameter struct rather than a live closure capturing
// mutable state — the state machine dispatches on the tag itself.
type PendingKind int

const (
	PendingNone PendingKind = iota
	PendingAbandon
	PendingSquash
	PendingRebase
	PendingDuplicate
	PendingRestore
	PendingAbsorb
	PendingParallelize
	PendingSimplifyParents
	PendingBookmarkMove
	PendingBookmarkDelete
	PendingBookmarkTrack
	PendingBookmarkUntrack
	PendingPush
	PendingFetch
	PendingUndo
	PendingRedo
	PendingResolve
	PendingDiffEdit
)

// PendingAction is the parameter struct accompanying a PendingKind. Fields
// are filled in by whichever protocol step (Gather/Dry-run/Classify)
// populated them; only the fields relevant to Kind are meaningful.
type PendingAction struct {
	Kind PendingKind

	ChangeID    string
	Destination string
	Revisions   []string

	Bookmark string
	Remote   string

	Force          bool // force-push / allow-backwards already classified as required
	SkipEmptied    bool
	RebaseModeFlag string // "-s", "-b", "-A", "-B", "-r"

	BulkMode string // "", "all", "tracked", "deleted" — push axis
}

// Mode is the active input mode plus whatever state it is accumulating.
type Mode struct {
	Kind ModeKind

	Buffer string // text being typed (Revset/Search/Rename/Create/Describe)
	Cursor int

	TargetChangeID string // e.g. Create's "branch from this change"

	Items         []string // Select* mode's resolved candidate list
	SelectedIndex int

	Pending PendingAction

	// DryRunPreview holds the rendered --dry-run output shown alongside
	// a ConfirmYN/Select* prompt, set by the protocol's Dry-run step.
	DryRunPreview string
	// Warning elevates a ConfirmYN prompt to a force/protected warning
	// variant (spec.md §4.6 "Classify risk").
	Warning string
}

// None reports whether no modal input is active.
func (m Mode) None() bool { return m.Kind == ModeNone }

// Reset returns the mode to ModeNone, discarding any in-progress buffer or
// pending action. This is what Esc does (spec.md §4.5's Esc-precedence
// invariant): it never pops the view stack.
func Reset() Mode { return Mode{Kind: ModeNone} }
