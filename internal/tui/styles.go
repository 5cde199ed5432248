package tui

import "github.com/charmbracelet/lipgloss"

var (
	Primary = lipgloss.Color("#101F38")
	Accent  = lipgloss.Color("#8BC34A")
	Muted   = lipgloss.Color("#8a93a3")
	Warning = lipgloss.Color("#FFC107")
	Danger  = lipgloss.Color("#e53935")
)

type Styles struct {
	Title       lipgloss.Style
	Tab         lipgloss.Style
	ActiveTab   lipgloss.Style
	Question    lipgloss.Style
	Focused     lipgloss.Style
	Complete    lipgloss.Style
	Option      lipgloss.Style
	Cursor      lipgloss.Style
	Selected    lipgloss.Style
	Summary     lipgloss.Style
	Text        lipgloss.Style
	Status      lipgloss.Style
	Error       lipgloss.Style
	Help        lipgloss.Style
	PanelBorder lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Title:       lipgloss.NewStyle().Bold(true).Foreground(Accent),
		Tab:         lipgloss.NewStyle().Padding(0, 1).Foreground(Muted),
		ActiveTab:   lipgloss.NewStyle().Padding(0, 1).Bold(true).Underline(true).Foreground(Accent),
		Question:    lipgloss.NewStyle(),
		Focused:     lipgloss.NewStyle().Bold(true),
		Complete:    lipgloss.NewStyle().Foreground(Accent),
		Option:      lipgloss.NewStyle().Padding(0, 1),
		Cursor:      lipgloss.NewStyle().Padding(0, 1).Reverse(true),
		Selected:    lipgloss.NewStyle().Padding(0, 1).Bold(true).Foreground(Accent),
		Summary:     lipgloss.NewStyle().Foreground(Muted).PaddingLeft(4),
		Text:        lipgloss.NewStyle().PaddingLeft(4).Italic(true),
		Status:      lipgloss.NewStyle().Foreground(Muted),
		Error:       lipgloss.NewStyle().Foreground(Danger),
		Help:        lipgloss.NewStyle().Foreground(Muted).Faint(true),
		PanelBorder: lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).BorderForeground(Muted).Padding(0, 1),
	}
}
