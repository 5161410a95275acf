package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/vibeflow/vibeflow/domain/entities"
	"github.com/vibeflow/vibeflow/internal/styles"
)

// UpdateViewport renders the message list, newest last
func (m *Model) UpdateViewport() {
	processing := m.deps.Dictation.State() == entities.RecordingProcessing
	if len(m.Messages) == 0 && !processing {
		m.Viewport.SetContent(welcomeScreen())
		return
	}

	parts := make([]string, 0, len(m.Messages)+1)
	for _, msg := range m.Messages {
		parts = append(parts, m.FormatMessage(msg))
	}
	if processing {
		parts = append(parts, fmt.Sprintf("%s Transcribing...", m.Spinner.View()))
	}
	m.Viewport.SetContent(strings.Join(parts, "\n\n"))
	m.Viewport.GotoBottom()
}

// FormatMessage renders one result with its transcript echo
func (m *Model) FormatMessage(msg entities.Message) string {
	content := msg.Result
	if m.Renderer != nil {
		if rendered, err := m.Renderer.Render(msg.Result); err == nil {
			content = strings.TrimSpace(rendered)
		}
	}

	lines := []string{
		styles.ResultLabelStyle.Render("RESULT"),
		styles.ResultStyle.Render(content),
	}
	if msg.Transcription != "" {
		lines = append(lines, styles.TranscriptStyle.Render("heard: "+msg.Transcription))
	}
	return strings.Join(lines, "\n")
}

func welcomeScreen() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		styles.TitleStyle.Render("Ready to dictate"),
		styles.WelcomeSubtitleStyle.Render("space: record / stop • tab: mode • h: history • ,: settings • q: quit"),
	)
}

func (m *Model) View() string {
	var body string
	if m.Mode == entities.ModeTranslate {
		body = m.RenderTranslatePanel()
	} else {
		body = m.Viewport.View()
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.TitleStyle.Render("VIBEFLOW"),
		"",
		body,
		"",
		m.RenderSelector(),
		m.RenderStatusLine(),
		m.RenderBottomBar(),
	)

	var modal string
	switch {
	case m.HistoryOpen:
		modal = m.RenderHistorySelector()
	case m.SettingsOpen:
		modal = m.RenderSettings()
	case m.ScreenshotOpen:
		modal = m.RenderScreenshotPrompt()
	default:
		return content
	}

	modal = styles.ModalStyle.Width(ModalWidth).Render(modal)
	return lipgloss.Place(m.WindowWidth, m.WindowHeight, lipgloss.Center, lipgloss.Center, modal)
}

// RenderSelector shows the modes and what the current one takes along
func (m *Model) RenderSelector() string {
	items := make([]string, 0, len(entities.Modes))
	for i, mode := range entities.Modes {
		label := fmt.Sprintf("%d %s", i+1, mode.Label())
		if mode == m.Mode {
			items = append(items, styles.ModeBadge(string(mode), label))
		} else {
			items = append(items, lipgloss.NewStyle().Foreground(styles.HintColor).Padding(0, 1).Render(label))
		}
	}
	line := lipgloss.JoinHorizontal(lipgloss.Top, items...)

	hint := lipgloss.NewStyle().Foreground(styles.HintColor)
	switch m.Mode {
	case entities.ModeSocial:
		shot := "no screenshot (i: attach)"
		if m.Screenshot != nil {
			shot = fmt.Sprintf("screenshot %s (d: remove)", TruncateRunes(m.ScreenshotPath, 30))
		}
		return line + "\n" + hint.Render(fmt.Sprintf("style: %s (s) • %s", m.ReplyStyle, shot))
	case entities.ModeCommand:
		selected := "no selected text (p: paste from clipboard)"
		if m.SelectedText != "" {
			selected = "selected: " + TruncateRunes(strings.Join(strings.Fields(m.SelectedText), " "), 50)
		}
		return line + "\n" + hint.Render(selected)
	}
	return line
}

// RenderStatusLine shows the error, else the last status
func (m *Model) RenderStatusLine() string {
	if m.Err != "" {
		return styles.ErrorStyle.Render("Error: " + m.Err)
	}
	if m.Status != "" {
		return styles.StatusStyle.Render(m.Status)
	}
	return ""
}

func (m *Model) RenderBottomBar() string {
	state := "IDLE"
	stateStyle := lipgloss.NewStyle().Foreground(styles.HintColor).Padding(0, 1)
	switch m.deps.Dictation.State() {
	case entities.RecordingActive:
		state, stateStyle = "● REC", styles.RecordingStyle
	case entities.RecordingProcessing:
		state = "PROCESSING"
	}

	settings := m.deps.Dictation.Settings()
	info := lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Render(
		fmt.Sprintf("lang %s • clarify %s • sound %s", settings.OutputLanguage.Name(), onOff(settings.ClarifyText), onOff(settings.SoundEnabled)))

	hints := lipgloss.NewStyle().Foreground(styles.HintColor).Render("c: copy • h: history • ,: settings • q: quit")

	return lipgloss.JoinHorizontal(lipgloss.Center,
		styles.ModeBadge(string(m.Mode), strings.ToUpper(m.Mode.Label())),
		stateStyle.Render(state),
		" ",
		info,
		"  ",
		hints,
	)
}

// RenderTranslatePanel draws the translate-then-reply flow
func (m *Model) RenderTranslatePanel() string {
	f := m.Flow
	hint := lipgloss.NewStyle().Foreground(styles.HintColor)
	var lines []string

	switch phase := f.Phase(); phase {
	case entities.PhaseInput:
		lines = append(lines,
			fmt.Sprintf("Translate to: %s", styles.TitleStyle.Render(entities.TranslationLanguages[m.LanguageIdx])),
			m.TranslateText.View(),
			hint.Render("enter: translate • ctrl+l: language • tab: mode"),
		)
	case entities.PhaseTranslating:
		lines = append(lines, fmt.Sprintf("%s Translating to %s...", m.Spinner.View(), f.TargetLanguage))
	default:
		lines = append(lines,
			hint.Render(fmt.Sprintf("From %s to %s", f.Result.FromLanguageName, f.TargetLanguage)),
			styles.ResultStyle.Render(f.Result.Translation),
			"",
		)
		switch phase {
		case entities.PhaseTranslated:
			lines = append(lines, hint.Render(fmt.Sprintf("space: record a reply in %s • c: copy • n: new", f.TargetLanguage)))
		case entities.PhaseRecording:
			lines = append(lines, styles.RecordingStyle.Render("● REC")+hint.Render(" space: stop • n: discard"))
		case entities.PhaseTranslatingReply:
			lines = append(lines, fmt.Sprintf("%s Translating your reply to %s...", m.Spinner.View(), f.Result.FromLanguageName))
		case entities.PhaseDone:
			lines = append(lines,
				styles.ResultLabelStyle.Render("REPLY"),
				styles.ResultStyle.Render(f.Reply),
				hint.Render("c: copy reply • n: new"),
			)
		}
	}

	if f.Err != nil {
		lines = append(lines, styles.ErrorStyle.Render("Error: "+ErrorText(f.Err)))
	}
	return styles.PanelStyle.Width(m.Viewport.Width).Render(strings.Join(lines, "\n"))
}

func (m *Model) RenderHistorySelector() string {
	title := styles.ModalTitleStyle.Render(fmt.Sprintf("History (%d)", len(m.HistoryItems)))

	var body string
	switch {
	case m.HistoryErr != nil:
		body = styles.ErrorStyle.Render(fmt.Sprintf("Error: %v", m.HistoryErr))
	case len(m.HistoryItems) == 0:
		body = styles.ModalItemStyle.Render(lipgloss.NewStyle().Foreground(styles.HintColor).Render("Nothing yet"))
	default:
		// keep the selection in a window of ten rows
		start := 0
		if m.HistorySelectedIdx >= 10 {
			start = m.HistorySelectedIdx - 9
		}
		end := start + 10
		if end > len(m.HistoryItems) {
			end = len(m.HistoryItems)
		}

		items := make([]string, 0, end-start)
		for i := start; i < end; i++ {
			item := m.HistoryItems[i]
			isSelected := i == m.HistorySelectedIdx
			cursor := "  "
			if isSelected {
				cursor = "> "
			}
			timeStr := RelativeTime(time.UnixMilli(item.Timestamp))
			label := fmt.Sprintf("[%s] ", item.Mode.Label())
			available := styles.ContentWidth - 2 - len(cursor) - len(label) - 1 - len(timeStr)
			preview := TruncateRunes(strings.Join(strings.Fields(item.Result), " "), available)

			itemContent := fmt.Sprintf("%s%s%s %s", cursor, label, preview, lipgloss.NewStyle().Foreground(styles.HintColor).Render(timeStr))
			if isSelected {
				items = append(items, styles.ModalSelectedStyle.Render(itemContent))
			} else {
				items = append(items, styles.ModalItemStyle.Render(itemContent))
			}
		}
		body = lipgloss.JoinVertical(lipgloss.Left, items...)
	}

	hint := lipgloss.NewStyle().
		Foreground(styles.HintColor).
		Width(styles.ContentWidth).
		PaddingTop(1).
		Render("↑/↓: navigate • Enter: load • D: clear all • Esc: close")

	return lipgloss.JoinVertical(lipgloss.Left, title, body, hint)
}

func (m *Model) RenderSettings() string {
	title := styles.ModalTitleStyle.Render("Settings")
	d := m.SettingsDraft

	keyValue := MaskKey(d.APIKey)
	if m.SettingsIdx == settingAPIKey {
		keyValue = m.APIKeyInput.View()
	}
	rows := []string{
		"API key    " + keyValue,
		"Language   ‹ " + d.OutputLanguage.Name() + " ›",
		"Sound      " + onOff(d.SoundEnabled),
		"Clarify    " + onOff(d.ClarifyText),
	}

	items := make([]string, 0, len(rows))
	for i, row := range rows {
		if i == m.SettingsIdx {
			items = append(items, styles.ModalSelectedStyle.Render("> "+row))
		} else {
			items = append(items, styles.ModalItemStyle.Render("  "+row))
		}
	}

	hint := lipgloss.NewStyle().
		Foreground(styles.HintColor).
		Width(styles.ContentWidth).
		PaddingTop(1).
		Render("↑/↓: field • ←/→/space: change • Enter: save • Esc: cancel")

	return lipgloss.JoinVertical(lipgloss.Left, title, lipgloss.JoinVertical(lipgloss.Left, items...), hint)
}

func (m *Model) RenderScreenshotPrompt() string {
	title := styles.ModalTitleStyle.Render("Attach screenshot")
	hint := lipgloss.NewStyle().
		Foreground(styles.HintColor).
		Width(styles.ContentWidth).
		PaddingTop(1).
		Render("Enter: attach • Esc: cancel")
	return lipgloss.JoinVertical(lipgloss.Left, title, m.PathInput.View(), hint)
}
