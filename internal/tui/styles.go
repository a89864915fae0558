package tui

import "github.com/charmbracelet/lipgloss"

// Palette reused from madicen-jj-tui's internal/tui/view/styles.go — the
// same Dracula-leaning palette, kept because it already reads well on both
// light and dark terminal themes in that repo's screenshots.
var (
	ColorPrimary   = lipgloss.Color("#BD93F9")
	ColorSecondary = lipgloss.Color("#50FA7B")
	ColorMuted     = lipgloss.Color("#6272A4")
	ColorWarn      = lipgloss.Color("#F1FA8C")
	ColorError     = lipgloss.Color("#FF5555")
	ColorInfo      = lipgloss.Color("#8BE9FD")
)

var (
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)

	CommitStyle         = lipgloss.NewStyle()
	CommitSelectedStyle = lipgloss.NewStyle().Reverse(true)
	CommitIDStyle       = lipgloss.NewStyle().Foreground(ColorMuted)
	WorkingCopyStyle    = lipgloss.NewStyle().Foreground(ColorSecondary).Bold(true)
	ConflictStyle       = lipgloss.NewStyle().Foreground(ColorError)
	BookmarkStyle       = lipgloss.NewStyle().Foreground(ColorInfo)

	HelpKeyStyle  = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
	HelpDescStyle = lipgloss.NewStyle().Foreground(ColorMuted)

	StatusBarStyle = lipgloss.NewStyle().Foreground(ColorMuted)

	NotifyInfoStyle    = lipgloss.NewStyle().Foreground(ColorInfo)
	NotifySuccessStyle = lipgloss.NewStyle().Foreground(ColorSecondary)
	NotifyWarnStyle    = lipgloss.NewStyle().Foreground(ColorWarn)
	NotifyErrorStyle   = lipgloss.NewStyle().Foreground(ColorError).Bold(true)

	InputPromptStyle = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)

	SeparatorStyle = lipgloss.NewStyle().Foreground(ColorMuted)
)

// fileStatusGlyph mirrors madicen-jj-tui's GetStatusStyle: a single
// colored character per FileKind.
func fileStatusGlyph(kindLetter string) string {
	style := lipgloss.NewStyle()
	switch kindLetter {
	case "A":
		style = style.Foreground(ColorSecondary)
	case "M":
		style = style.Foreground(ColorWarn)
	case "D":
		style = style.Foreground(ColorError)
	case "R":
		style = style.Foreground(ColorInfo)
	case "C":
		style = style.Foreground(ColorError).Bold(true)
	}
	return style.Render(kindLetter)
}
