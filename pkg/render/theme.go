package render

import "github.com/charmbracelet/lipgloss"

// Theme holds the styles used for terminal output.
type Theme struct {
	Title    lipgloss.Style
	Muted    lipgloss.Style
	Box      lipgloss.Style
	Info     lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style
	Pending  lipgloss.Style
	Running  lipgloss.Style
	Complete lipgloss.Style
	Aborted  lipgloss.Style
	Failed   lipgloss.Style
}

func DefaultTheme() Theme {
	secondary := lipgloss.Color("#06B6D4") // Cyan
	success := lipgloss.Color("#22C55E")   // Green
	warning := lipgloss.Color("#EAB308")   // Yellow
	errorC := lipgloss.Color("#EF4444")    // Red
	muted := lipgloss.Color("#6B7280")     // Gray
	text := lipgloss.Color("#F9FAFB")      // White
	textDim := lipgloss.Color("#9CA3AF")   // Light gray

	return Theme{
		Title: lipgloss.NewStyle().Bold(true).Foreground(text),
		Muted: lipgloss.NewStyle().Foreground(textDim),
		Box: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(muted).
			Padding(0, 1),

		Info:    lipgloss.NewStyle().Bold(true).Foreground(secondary),
		Success: lipgloss.NewStyle().Bold(true).Foreground(success),
		Warning: lipgloss.NewStyle().Bold(true).Foreground(warning),
		Error:   lipgloss.NewStyle().Bold(true).Foreground(errorC),

		Pending:  lipgloss.NewStyle().Foreground(muted),
		Running:  lipgloss.NewStyle().Foreground(secondary),
		Complete: lipgloss.NewStyle().Foreground(success),
		Aborted:  lipgloss.NewStyle().Foreground(warning),
		Failed:   lipgloss.NewStyle().Foreground(errorC),
	}
}
