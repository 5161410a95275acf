package ui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/vibeflow/vibeflow/domain/entities"
	"github.com/vibeflow/vibeflow/internal/styles"
)

// NewModel builds the client model. ctx bounds every call the model starts.
func NewModel(ctx context.Context, deps Deps, opts Options) *Model {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	ti := textinput.New()
	ti.Placeholder = "Type the text to translate..."
	ti.Prompt = "❯ "
	ti.CharLimit = 4000
	ti.Width = 60
	ti.PromptStyle = lipgloss.NewStyle().Foreground(styles.AccentColor).Bold(true)

	key := textinput.New()
	key.Placeholder = "Gemini API key"
	key.EchoMode = textinput.EchoPassword
	key.EchoCharacter = '•'
	key.Width = styles.ContentWidth - 16

	path := textinput.New()
	path.Placeholder = "Image path (empty: path from clipboard)"
	path.Prompt = "❯ "
	path.Width = styles.ContentWidth - 4

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.AccentColor)

	mode := opts.Mode
	if mode == "" {
		mode = entities.ModeText
	}
	style := opts.ReplyStyle
	if style == "" {
		style = entities.StyleFriendly
	}

	m := &Model{
		deps:              deps,
		ctx:               ctx,
		Mode:              mode,
		ReplyStyle:        style,
		Flow:              entities.NewTranslationFlow(),
		TranslateText:     ti,
		APIKeyInput:       key,
		PathInput:         path,
		Viewport:          viewport.New(60, 15),
		Spinner:           sp,
		initialScreenshot: opts.Screenshot,
	}
	if mode == entities.ModeTranslate {
		m.TranslateText.Focus()
	}
	m.UpdateViewport()
	return m
}

// Init starts the spinner and loads the screenshot given on the command line
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.Spinner.Tick, textinput.Blink}
	if m.initialScreenshot != "" {
		cmds = append(cmds, loadScreenshotCmd(m.initialScreenshot))
	}
	return tea.Batch(cmds...)
}

// NewProgram runs the model in the alternate screen
func NewProgram(m *Model) *tea.Program {
	return tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
}
