package output

import "github.com/charmbracelet/lipgloss"

// Styles are the lipgloss styles used in text mode.
type Styles struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Label    lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style
	Info     lipgloss.Style
	Muted    lipgloss.Style
	Enabled  lipgloss.Style
	Disabled lipgloss.Style
}

// NewStyles creates styles bound to lr, so color output follows the
// renderer's color profile.
func NewStyles(lr *lipgloss.Renderer) *Styles {
	return &Styles{
		Title:    lr.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Subtitle: lr.NewStyle().Bold(true),
		Label:    lr.NewStyle().Foreground(lipgloss.Color("245")),
		Success:  lr.NewStyle().Foreground(lipgloss.Color("10")),
		Warning:  lr.NewStyle().Foreground(lipgloss.Color("11")),
		Error:    lr.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Info:     lr.NewStyle().Foreground(lipgloss.Color("14")),
		Muted:    lr.NewStyle().Foreground(lipgloss.Color("241")),
		Enabled:  lr.NewStyle().Foreground(lipgloss.Color("10")),
		Disabled: lr.NewStyle().Foreground(lipgloss.Color("241")),
	}
}
