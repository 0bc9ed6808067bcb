package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles holds all the styles for the application
type Styles struct {
	Theme Theme

	// Layout
	Header    lipgloss.Style
	InputArea lipgloss.Style

	// Messages
	UserMessage      lipgloss.Style
	AssistantMessage lipgloss.Style
	SystemMessage    lipgloss.Style
	ErrorMessage     lipgloss.Style
	Timestamp        lipgloss.Style

	// History overlay
	HistoryTitle lipgloss.Style
	HistoryEntry lipgloss.Style
	ImageMarker  lipgloss.Style

	// UI Elements
	Attachment lipgloss.Style
	Help       lipgloss.Style
	Spinner    lipgloss.Style
}

// NewStyles creates a new styles instance with the given theme
func NewStyles(theme Theme) *Styles {
	s := &Styles{
		Theme: theme,
	}

	s.Header = lipgloss.NewStyle().
		Foreground(theme.Text).
		Bold(true)

	s.InputArea = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Primary).
		Padding(0, 1)

	s.UserMessage = lipgloss.NewStyle().
		Foreground(theme.Primary)

	s.AssistantMessage = lipgloss.NewStyle().
		Foreground(theme.Text)

	s.SystemMessage = lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Italic(true)

	s.ErrorMessage = lipgloss.NewStyle().
		Foreground(theme.Error).
		Bold(true)

	s.Timestamp = lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Italic(true)

	s.HistoryTitle = lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true)

	s.HistoryEntry = lipgloss.NewStyle().
		Foreground(theme.Text)

	s.ImageMarker = lipgloss.NewStyle().
		Foreground(theme.Success)

	s.Attachment = lipgloss.NewStyle().
		Foreground(theme.Warning)

	s.Help = lipgloss.NewStyle().
		Foreground(theme.TextDim)

	s.Spinner = lipgloss.NewStyle().
		Foreground(theme.Secondary)

	return s
}
