package chat

import "github.com/charmbracelet/lipgloss"

// Palette
var (
	Primary     = lipgloss.Color("#101F38")
	Accent      = lipgloss.Color("#8BC34A")
	Muted       = lipgloss.Color("#6b7280")
	Destructive = lipgloss.Color("#e53935")
)

// Styles holds the styled components of the chat view.
type Styles struct {
	Header    lipgloss.Style
	Footer    lipgloss.Style
	UserInput lipgloss.Style
	Reply     lipgloss.Style
	Error     lipgloss.Style
	Status    lipgloss.Style
	Spinner   lipgloss.Style
	Input     lipgloss.Style
}

// DefaultStyles returns the chat styles.
func DefaultStyles() Styles {
	return Styles{
		Header: lipgloss.NewStyle().
			Background(Primary).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 2).
			Bold(true),

		Footer: lipgloss.NewStyle().
			Foreground(Muted).
			Padding(0, 2),

		UserInput: lipgloss.NewStyle().
			Foreground(Accent).
			Bold(true),

		Reply: lipgloss.NewStyle().
			PaddingLeft(2),

		Error: lipgloss.NewStyle().
			Foreground(Destructive).
			Bold(true),

		Status: lipgloss.NewStyle().
			Foreground(Muted).
			Italic(true),

		Spinner: lipgloss.NewStyle().
			Foreground(Accent),

		Input: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Accent).
			Padding(0, 1),
	}
}
