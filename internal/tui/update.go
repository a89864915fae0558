package tui

import (
	"regexp"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nakamura-shuta/tij/internal/app"
	"github.com/nakamura-shuta/tij/internal/dirty"
	"github.com/nakamura-shuta/tij/internal/model"
)

// Update is bubbletea's event-loop entry point. It implements spec.md
// §4.5's Esc-precedence invariant: a non-None input mode always gets
// first look at a key, and only an unhandled key reaches the view/global
// handlers.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil

	case refreshDoneMsg:
		if msg.err != nil {
			m.App.Notify(app.SeverityError, msg.err.Error(), time.Now())
		}
		m.syncViewports()
		return m, nil

	case watchEventMsg:
		m.App.MarkDirty(dirty.OperationLog)
		return m, tea.Batch(m.refreshCmd(), m.watchCmd())

	case previewFetchedMsg:
		if msg.requestID != m.previewRequestID {
			return m, nil // stale background result, discarded (spec.md §5)
		}
		if msg.err == nil {
			m.App.Cache.Insert(msg.changeID, model.PreviewEntry{
				ChangeID: msg.changeID,
				CommitID: msg.commitID,
				Text:     msg.text,
			})
			m.syncViewports()
		}
		return m, nil

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.logVP, cmd = m.logVP.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEsc && m.App.HandleEsc() {
		return m, nil
	}

	if !m.App.Mode.None() {
		return m.handleModeKey(msg)
	}

	if _, ok := m.App.Notif.Current(); ok {
		m.App.Notif.Dismiss()
	}
	return m.handleGlobalKey(msg)
}

// handleModeKey routes a key to the active input mode's small FSM
// (spec.md §4.5). Enter submits; everything else edits the buffer/list.
func (m *Model) handleModeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.App.Mode.Kind {
	case app.ModeConfirmYN:
		switch msg.String() {
		case "y", "Y":
			m.confirmPending()
		case "n", "N":
			m.App.Mode = app.Reset()
		}
		return m, nil

	case app.ModeRevset, app.ModeSearch, app.ModeRename, app.ModeCreate, app.ModeRebaseDestination:
		return m.handleTextInputKey(msg)

	case app.ModeDescribe:
		return m.handleDescribeKey(msg)

	case app.ModeSelectRemote, app.ModeSelectBranch, app.ModeFetchBranchSelect:
		return m.handleSelectKey(msg)

	case app.ModePushBulkMode:
		switch msg.String() {
		case "a":
			m.App.Mode.Pending.BulkMode = "all"
		case "t":
			m.App.Mode.Pending.BulkMode = "tracked"
		case "d":
			m.App.Mode.Pending.BulkMode = "deleted"
		case "enter":
			m.confirmPending()
		}
	}
	return m, nil
}

func (m *Model) handleTextInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEnter {
		return m.submitTextMode(), nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.App.Mode.Buffer = m.input.Value()
	return m, cmd
}

func (m *Model) submitTextMode() tea.Model {
	value := m.input.Value()
	kind := m.App.Mode.Kind
	target := m.App.Mode.TargetChangeID
	m.App.Mode = app.Reset()
	m.input.SetValue("")

	switch kind {
	case app.ModeRevset:
		m.App.Views.Top().Revset = value
		m.App.MarkDirty(dirty.Log)
		return m
	case app.ModeSearch:
		m.App.Views.Top().SearchQuery = value
	case app.ModeRename:
		m.Protocols.InitiateBookmarkMove(m.App, target, value, false)
	case app.ModeCreate:
		if target == "@" {
			m.Protocols.Commit(m.ctx, m.App, value)
		} else {
			m.Protocols.DescribeQuick(m.ctx, m.App, target, value)
		}
	case app.ModeRebaseDestination:
		m.Protocols.InitiateRebase(m.ctx, m.App, []string{target}, value, "-r", true)
	}
	m.syncViewports()
	return m
}

func (m *Model) handleDescribeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEnter && msg.Alt {
		// Alt+Enter submits the textarea buffer through DescribeQuick.
		// ctrl+e's describe edits the description in this in-app
		// textarea; no $EDITOR process is spawned.
		changeID := m.App.Mode.TargetChangeID
		buffer := m.describe.Value()
		m.App.Mode = app.Reset()
		m.describe.SetValue("")
		m.Protocols.DescribeQuick(m.ctx, m.App, changeID, buffer)
		return m, nil
	}
	var cmd tea.Cmd
	m.describe, cmd = m.describe.Update(msg)
	return m, cmd
}

func (m *Model) handleSelectKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEnter {
		if item, ok := m.selector.SelectedItem().(selectItem); ok {
			m.App.Mode.Pending.Remote = string(item)
			m.confirmPending()
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.selector, cmd = m.selector.Update(msg)
	return m, cmd
}

// confirmPending dispatches the pending action's Confirm* protocol step.
func (m *Model) confirmPending() {
	switch m.App.Mode.Pending.Kind {
	case app.PendingAbandon:
		m.Protocols.ConfirmAbandon(m.ctx, m.App)
	case app.PendingSquash:
		m.Protocols.ConfirmSquash(m.ctx, m.App)
	case app.PendingRestore:
		m.Protocols.ConfirmRestore(m.ctx, m.App)
	case app.PendingRebase:
		m.Protocols.ConfirmRebase(m.ctx, m.App)
	case app.PendingDuplicate:
		m.Protocols.ConfirmDuplicate(m.ctx, m.App, extractDuplicatedChangeID)
	case app.PendingParallelize:
		m.Protocols.ConfirmParallelize(m.ctx, m.App)
	case app.PendingBookmarkMove:
		m.Protocols.ConfirmBookmarkMove(m.ctx, m.App)
	case app.PendingBookmarkDelete:
		m.Protocols.ConfirmBookmarkDelete(m.ctx, m.App)
	case app.PendingPush:
		m.Protocols.ConfirmPush(m.ctx, m.App)
	}
	m.syncViewports()
}

// changeIDRe matches a jj change/commit id token at the start of one of
// `jj duplicate`'s summary lines, e.g. "  kmxyzabc def01234 (no description set)".
var changeIDRe = regexp.MustCompile(`(?m)^\s*([a-z]{8,})\s`)

func extractDuplicatedChangeID(stdout string) string {
	match := changeIDRe.FindStringSubmatch(stdout)
	if match == nil {
		return ""
	}
	return match[1]
}

// --- global key map (spec.md §6) ---------------------------------------

func (m *Model) handleGlobalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		if !m.App.Back() {
			m.quitting = true
			return m, tea.Quit
		}
		m.syncViewports()
		return m, nil
	case "j", "down":
		m.moveSelection(1)
		return m, m.maybeFetchPreview()
	case "k", "up":
		m.moveSelection(-1)
		return m, m.maybeFetchPreview()
	case "g":
		m.App.Views.Top().Selection = 0
		return m, m.maybeFetchPreview()
	case "G":
		m.App.Views.Top().Selection = len(m.App.Commits.Commits) - 1
		return m, m.maybeFetchPreview()
	case "tab":
		m.cycleView()
		return m, nil
	case "enter":
		return m.openDiff()
	case "?":
		m.App.PushView(app.ViewHelp, "")
		return m, nil
	case "/":
		m.beginTextMode(app.ModeSearch, "")
		return m, nil
	case "r":
		m.beginTextMode(app.ModeRevset, "")
		return m, nil
	case "V":
		m.App.Views.Top().Reversed = !m.App.Views.Top().Reversed
		m.App.MarkDirty(dirty.Log)
		return m, m.refreshCmd()
	case "]", "[":
		return m, nil // reserved: next/prev change, spec.md §6
	case "e":
		if c, ok := m.App.SelectedCommit(); ok {
			m.Protocols.Edit(m.ctx, m.App, c.ChangeID)
		}
		return m, nil
	case "d":
		if c, ok := m.App.SelectedCommit(); ok {
			m.beginTextMode(app.ModeCreate, c.ChangeID)
			m.input.SetValue(c.Description)
		}
		return m, nil
	case "ctrl+e":
		if c, ok := m.App.SelectedCommit(); ok {
			m.beginDescribeEditor(c.ChangeID, c.Description)
		}
		return m, nil
	case "N":
		if c, ok := m.App.SelectedCommit(); ok {
			m.Protocols.New(m.ctx, m.App, c.ChangeID)
		}
		return m, nil
	case "c":
		m.beginTextMode(app.ModeCreate, "@")
		return m, nil
	case "s":
		if c, ok := m.App.SelectedCommit(); ok && len(c.Parents) > 0 {
			m.Protocols.InitiateSquash(m.App, c.ChangeID, c.Parents[0])
		}
		return m, nil
	case "A":
		if c, ok := m.App.SelectedCommit(); ok {
			m.Protocols.InitiateAbandon(m.App, c.ChangeID)
		}
		return m, nil
	case "S":
		if c, ok := m.App.SelectedCommit(); ok {
			m.Protocols.Split(m.ctx, m.App, c.ChangeID)
		}
		return m, nil
	case "R":
		if c, ok := m.App.SelectedCommit(); ok {
			m.beginTextMode(app.ModeRebaseDestination, c.ChangeID)
		}
		return m, nil
	case "P":
		m.Protocols.InitiatePush(m.ctx, m.App, nil, "", "tracked", false)
		return m, nil
	case "F":
		m.Protocols.Fetch(m.ctx, m.App, "")
		return m, nil
	case "Y":
		if c, ok := m.App.SelectedCommit(); ok {
			m.Protocols.InitiateDuplicate(m.App, c.ChangeID, "")
		}
		return m, nil
	case "u":
		m.Protocols.Undo(m.ctx, m.App, "")
		return m, nil
	case "ctrl+r":
		m.Protocols.Redo(m.ctx, m.App, m.nextRedoOpID())
		return m, nil
	case "M":
		m.App.PushView(app.ViewBookmark, "")
		return m, nil
	case "m":
		m.cycleDiffFormat()
		return m, nil
	}
	return m, nil
}

func (m *Model) beginTextMode(kind app.ModeKind, target string) {
	m.App.Mode = app.Mode{Kind: kind, TargetChangeID: target}
	m.input.SetValue("")
	m.input.Focus()
}

func (m *Model) beginDescribeEditor(changeID, current string) {
	m.App.Mode = app.Mode{Kind: app.ModeDescribe, TargetChangeID: changeID}
	m.describe.SetValue(current)
	m.describe.Focus()
}

func (m *Model) moveSelection(delta int) {
	v := m.App.Views.Top()
	n := len(m.App.Commits.Commits)
	if n == 0 {
		return
	}
	v.Selection += delta
	if v.Selection < 0 {
		v.Selection = 0
	}
	if v.Selection >= n {
		v.Selection = n - 1
	}
}

// maybeFetchPreview returns a command to fetch the selected commit's
// preview only on a cache miss (spec.md §4.3's LRU discipline).
func (m *Model) maybeFetchPreview() tea.Cmd {
	c, ok := m.App.SelectedCommit()
	if !ok {
		return nil
	}
	if _, hit := m.App.Cache.Validate(c.ChangeID, c.CommitID); hit {
		m.syncViewports()
		return nil
	}
	return m.previewFetchCmd(c.ChangeID, c.CommitID)
}

func (m *Model) cycleView() {
	switch m.App.Views.Top().Kind {
	case app.ViewLog:
		m.App.PushView(app.ViewStatus, "")
	case app.ViewStatus:
		m.App.PushView(app.ViewBookmark, "")
	case app.ViewBookmark:
		m.App.PushView(app.ViewOpLog, "")
	default:
		m.App.Back()
	}
}

func (m *Model) openDiff() (tea.Model, tea.Cmd) {
	c, ok := m.App.SelectedCommit()
	if !ok {
		return m, nil
	}
	m.App.PushView(app.ViewDiff, c.ChangeID)
	return m, m.previewFetchCmd(c.ChangeID, c.CommitID)
}

func (m *Model) cycleDiffFormat() {
	switch m.Config.GetDiffFormat() {
	case "git":
		m.Config.DiffFormat = "stat"
	default:
		m.Config.DiffFormat = "git"
	}
}

// nextRedoOpID returns the operation immediately after the current @
// entry in the operation log — the one `jj op restore` would bring back.
// Operations is newest-first, so that is index 1.
func (m *Model) nextRedoOpID() string {
	if len(m.App.Operations) < 2 {
		return ""
	}
	return m.App.Operations[1].ID
}

func (m *Model) syncViewports() {
	m.logVP.SetContent(m.renderLog())
	m.previewVP.SetContent(m.renderPreview())
}

func (m *Model) layout() {
	half := m.height / 2
	if half < 1 {
		half = 1
	}
	m.logVP.Width = m.width
	m.logVP.Height = m.height - half - 2
	m.previewVP.Width = m.width
	m.previewVP.Height = half
	m.selector.SetSize(m.width, m.height-4)
	m.describe.SetWidth(m.width)
	m.describe.SetHeight(half)
	m.syncViewports()
}
