package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nakamura-shuta/tij/internal/app"
	"github.com/nakamura-shuta/tij/internal/model"
)

// View renders the active view plus any input-mode overlay and the
// notification banner. bubbletea calls this after every Update.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var body string
	switch m.App.Views.Top().Kind {
	case app.ViewBookmark:
		body = m.renderBookmarks()
	case app.ViewOpLog:
		body = m.renderOperations()
	case app.ViewStatus:
		body = m.renderStatus()
	case app.ViewHelp:
		body = m.renderHelp()
	default:
		body = lipgloss.JoinVertical(lipgloss.Left, m.logVP.View(), SeparatorStyle.Render(strings.Repeat("─", m.width)), m.previewVP.View())
	}

	sections := []string{m.renderTitleBar(), body, m.renderOverlay(), m.renderStatusBar()}
	return m.zones.Scan(strings.Join(nonEmpty(sections), "\n"))
}

func nonEmpty(ss []string) []string {
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (m *Model) renderTitleBar() string {
	v := m.App.Views.Top()
	title := fmt.Sprintf("tij — %s", v.Kind)
	if v.Revset != "" {
		title += fmt.Sprintf(" [%s]", v.Revset)
	}
	return TitleStyle.Render(title)
}

func (m *Model) renderLog() string {
	if len(m.App.Commits.Commits) == 0 {
		return StatusBarStyle.Render("(no commits)")
	}
	v := m.App.Views.Top()
	var b strings.Builder
	for i, c := range m.App.Commits.Commits {
		row := m.renderCommitRow(c)
		if i == v.Selection {
			row = CommitSelectedStyle.Render(row)
		}
		b.WriteString(m.zones.Mark(zoneNameForCommit(c.ChangeID), row))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func zoneNameForCommit(changeID string) string { return "commit:" + changeID }

func (m *Model) renderCommitRow(c model.Commit) string {
	marker := " "
	switch {
	case c.IsWorking:
		marker = WorkingCopyStyle.Render("@")
	case c.IsConflict:
		marker = ConflictStyle.Render("×")
	default:
		marker = CommitStyle.Render("○")
	}

	id := CommitIDStyle.Render(c.ShortChangeID())
	desc := c.Description
	if desc == "" {
		desc = StatusBarStyle.Render("(no description set)")
	}
	if c.Unparseable() {
		desc = NotifyWarnStyle.Render(desc)
	}

	var bookmarks string
	if len(c.Bookmarks) > 0 {
		bookmarks = " " + BookmarkStyle.Render(strings.Join(c.Bookmarks, " "))
	}

	graph := c.GraphPrefix
	if graph == "" {
		graph = marker
	}
	return fmt.Sprintf("%s %s %s%s", graph, id, desc, bookmarks)
}

func (m *Model) renderPreview() string {
	c, ok := m.App.SelectedCommit()
	if !ok {
		return ""
	}
	entry, hit := m.App.Cache.Peek(c.ChangeID)
	if !hit || entry.CommitID != c.CommitID {
		return StatusBarStyle.Render("loading preview…")
	}
	return entry.Text
}

func (m *Model) renderBookmarks() string {
	if len(m.App.Bookmarks) == 0 {
		return StatusBarStyle.Render("(no bookmarks)")
	}
	var b strings.Builder
	for _, bm := range m.App.Bookmarks {
		name := BookmarkStyle.Render(bm.Name)
		if model.IsProtected(bm.Name, protectedBookmarksOrDefault(m.App)) {
			name += NotifyWarnStyle.Render(" [protected]")
		}
		line := fmt.Sprintf("%s -> %s", name, CommitIDStyle.Render(shortID(bm.TargetChangeID)))
		if bm.Conflicted {
			line += ConflictStyle.Render(" (conflicted)")
		}
		b.WriteString(m.zones.Mark("bookmark:"+bm.Name, line))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func protectedBookmarksOrDefault(a *app.App) []string {
	if len(a.ProtectedBookmarks) > 0 {
		return a.ProtectedBookmarks
	}
	return model.DefaultProtectedBookmarks
}

func shortID(id string) string {
	if len(id) <= 12 {
		return id
	}
	return id[:12]
}

func (m *Model) renderOperations() string {
	if len(m.App.Operations) == 0 {
		return StatusBarStyle.Render("(empty operation log)")
	}
	var b strings.Builder
	for _, op := range m.App.Operations {
		b.WriteString(fmt.Sprintf("%s  %s  %s\n", CommitIDStyle.Render(shortID(op.ID)), op.Timestamp, op.Description))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) renderStatus() string {
	if len(m.App.Status) == 0 {
		return StatusBarStyle.Render("(clean working copy)")
	}
	var b strings.Builder
	for _, fs := range m.App.Status {
		glyph := fileStatusGlyph(fileKindLetter(fs.Kind))
		line := fmt.Sprintf("%s %s", glyph, fs.Path)
		if fs.Kind == model.FileRenamed {
			line += " -> " + fs.RenameTo
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func fileKindLetter(k model.FileKind) string {
	switch k {
	case model.FileAdded:
		return "A"
	case model.FileModified:
		return "M"
	case model.FileDeleted:
		return "D"
	case model.FileRenamed:
		return "R"
	case model.FileConflicted:
		return "C"
	default:
		return "?"
	}
}

func (m *Model) renderHelp() string {
	rows := [][2]string{
		{"j/k", "move selection"},
		{"g/G", "jump to top/bottom"},
		{"tab", "cycle view"},
		{"enter", "open diff"},
		{"/", "search"},
		{"r", "set revset"},
		{"V", "toggle reversed log"},
		{"d", "describe (quick)"},
		{"ctrl+e", "describe (multi-line, alt+enter submits)"},
		{"N", "new change"},
		{"c", "commit @"},
		{"s", "squash into parent"},
		{"A", "abandon"},
		{"R", "rebase"},
		{"Y", "duplicate"},
		{"P", "push"},
		{"F", "fetch"},
		{"u", "undo"},
		{"ctrl+r", "redo"},
		{"M", "bookmarks"},
		{"m", "cycle diff format"},
		{"q", "back / quit"},
		{"esc", "cancel input"},
	}
	var b strings.Builder
	for _, r := range rows {
		b.WriteString(HelpKeyStyle.Render(fmt.Sprintf("%-8s", r[0])))
		b.WriteString(HelpDescStyle.Render(r[1]))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderOverlay draws the active input mode's prompt, if any.
func (m *Model) renderOverlay() string {
	mode := m.App.Mode
	switch mode.Kind {
	case app.ModeNone:
		return ""
	case app.ModeConfirmYN:
		prompt := InputPromptStyle.Render("confirm? [y/n]")
		if mode.Warning != "" {
			prompt = NotifyWarnStyle.Render("! "+mode.Warning) + "  " + prompt
		}
		if mode.DryRunPreview != "" {
			prompt = mode.DryRunPreview + "\n" + prompt
		}
		return prompt
	case app.ModeRevset:
		return InputPromptStyle.Render("revset: ") + m.input.View()
	case app.ModeSearch:
		return InputPromptStyle.Render("search: ") + m.input.View()
	case app.ModeRename:
		return InputPromptStyle.Render("new bookmark name: ") + m.input.View()
	case app.ModeCreate:
		return InputPromptStyle.Render("description: ") + m.input.View()
	case app.ModeRebaseDestination:
		return InputPromptStyle.Render("rebase onto: ") + m.input.View()
	case app.ModeDescribe:
		return m.describe.View()
	case app.ModeSelectRemote, app.ModeSelectBranch, app.ModeFetchBranchSelect:
		return m.selector.View()
	case app.ModePushBulkMode:
		return InputPromptStyle.Render("push: [a]ll [t]racked [d]eleted")
	default:
		return ""
	}
}

func (m *Model) renderStatusBar() string {
	if n, ok := m.App.Notif.Current(); ok {
		style := NotifyInfoStyle
		switch n.Severity {
		case app.SeveritySuccess:
			style = NotifySuccessStyle
		case app.SeverityWarn:
			style = NotifyWarnStyle
		case app.SeverityError:
			style = NotifyErrorStyle
		}
		return style.Render(n.Message)
	}
	return StatusBarStyle.Render("? for help")
}
