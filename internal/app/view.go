// Package app implements tij's state machine: the view stack, the
// mutually-exclusive input modes, and the notification system described in
// spec.md §3/§4.5. It owns no jj-invocation logic itself — that lives in
// internal/jj and internal/protocol — only the in-memory shape of "what is
// the UI currently showing and what is the user currently typing".
package app

// ViewKind enumerates the views tij can push onto its stack (spec.md §3).
type ViewKind int

const (
	ViewLog ViewKind = iota
	ViewDiff
	ViewStatus
	ViewBookmark
	ViewOpLog
	ViewEvolog
	ViewBlame
	ViewHelp
	ViewResolve
)

func (k ViewKind) String() string {
	switch k {
	case ViewLog:
		return "log"
	case ViewDiff:
		return "diff"
	case ViewStatus:
		return "status"
	case ViewBookmark:
		return "bookmark"
	case ViewOpLog:
		return "oplog"
	case ViewEvolog:
		return "evolog"
	case ViewBlame:
		return "blame"
	case ViewHelp:
		return "help"
	case ViewResolve:
		return "resolve"
	default:
		return "unknown"
	}
}

// ViewState is one entry of the view stack. Each view owns its own
// selection, scroll offset, and optional filter — pushing a new view never
// disturbs the state of the view beneath it (spec.md §3).
type ViewState struct {
	Kind ViewKind

	Selection int // index into the view's current result set
	Scroll    int

	Revset      string // active log-view filter, "" = jj's default
	SearchQuery string
	Reversed    bool

	// DiffFrom/DiffTo carry the two endpoints for a ViewDiff entry;
	// DiffTo empty means "diff of DiffFrom against its parent".
	DiffFrom string
	DiffTo   string

	// FocusChangeID is set when a view is pushed to focus a specific
	// change (e.g. blame→log, or opening diff from a log row) rather
	// than starting at selection 0.
	FocusChangeID string
}

// ViewStack is a stack of ViewState. Push does not cap its depth. The
// bottom entry is always a ViewLog pushed at startup and is never popped.
type ViewStack struct {
	stack []ViewState
}

// NewViewStack returns a stack with a single root Log view.
func NewViewStack() *ViewStack {
	return &ViewStack{stack: []ViewState{{Kind: ViewLog}}}
}

// Top returns the current (topmost) view. The stack is never empty.
func (s *ViewStack) Top() *ViewState {
	return &s.stack[len(s.stack)-1]
}

// Push opens a new view on top of the current one. focusChangeID may be
// empty; when set, the new view starts with that change focused/selected
// rather than at the top of its result set (spec.md §4.5's "carries the
// selected change id" rule for log→diff and blame→log transitions).
func (s *ViewStack) Push(kind ViewKind, focusChangeID string) {
	s.stack = append(s.stack, ViewState{Kind: kind, FocusChangeID: focusChangeID})
}

// Pop removes the current view, unless it is the single root view — the
// log view at the bottom of the stack is never popped; the caller (tui
// shell) treats a Pop on a len-1 stack as "quit" instead.
func (s *ViewStack) Pop() (popped ViewState, ok bool) {
	if len(s.stack) <= 1 {
		return ViewState{}, false
	}
	top := s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
	return top, true
}

// Len reports the stack depth, including the root.
func (s *ViewStack) Len() int { return len(s.stack) }

// AtRoot reports whether only the root Log view remains.
func (s *ViewStack) AtRoot() bool { return len(s.stack) == 1 }
