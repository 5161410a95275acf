// Package styles holds the lipgloss styles of the dictation client.
package styles

import "github.com/charmbracelet/lipgloss"

var (
	ContentWidth = 54
)

var (
	AccentColor = lipgloss.Color("#B39DDB")
	HintColor   = lipgloss.Color("#545454")

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(AccentColor).
			Padding(0, 1)

	ResultLabelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FFFFFF")).
				Background(AccentColor).
				Bold(true).
				Padding(0, 1).
				MarginRight(1)

	ResultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#333333", Dark: "#E0E0E0"}).
			BorderLeft(true).
			BorderStyle(lipgloss.ThickBorder()).
			BorderForeground(AccentColor)

	TranscriptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true).
			PaddingLeft(2)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF9A9A")).
			Bold(true)

	StatusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A5D6A7"))

	RecordingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#E57373")).
			Bold(true).
			Padding(0, 1)

	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(AccentColor).
			Padding(0, 1)

	WelcomeSubtitleStyle = lipgloss.NewStyle().
				Foreground(HintColor).
				Italic(true)

	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(AccentColor).
			Padding(1, 2)

	ModalTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(AccentColor).
			Width(ContentWidth).
			MarginBottom(1)

	ModalItemStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Width(ContentWidth)

	ModalSelectedStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Width(ContentWidth).
				Background(lipgloss.Color("#5C5C7A")).
				Foreground(lipgloss.Color("#FFFFFF"))
)

// ModeColors gives each mode its badge color
var ModeColors = map[string]string{
	"text":      "#81D4FA",
	"email":     "#A5D6A7",
	"command":   "#FFCC80",
	"social":    "#F48FB1",
	"translate": "#CE93D8",
}

// ModeBadge renders the bottom bar badge of a mode
func ModeBadge(mode, label string) string {
	color, ok := ModeColors[mode]
	if !ok {
		color = ModeColors["text"]
	}
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color(color)).
		Padding(0, 1).
		Render(label)
}
