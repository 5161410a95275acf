package ui

import (
	"encoding/base64"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/vibeflow/vibeflow/domain"
	"github.com/vibeflow/vibeflow/domain/entities"
	"github.com/vibeflow/vibeflow/domain/repositories"
	"github.com/vibeflow/vibeflow/internal/sound"
	"github.com/vibeflow/vibeflow/internal/styles"
	"github.com/vibeflow/vibeflow/usecase"
)

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		if m.Busy() {
			m.UpdateViewport()
		}
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)

	case recordingStartedMsg:
		m.starting = false
		if msg.Err != nil {
			m.Err = ErrorText(msg.Err)
			m.Status = ""
			return m, nil
		}
		m.SessionID = msg.SessionID
		m.Err = ""
		m.Status = "Recording... press space to stop"
		return m, nil

	case recordingStoppedMsg:
		if msg.SessionID != m.SessionID {
			return m, nil
		}
		if msg.Err != nil {
			m.Err = ErrorText(msg.Err)
			m.Status = ""
			return m, nil
		}
		m.Status = "Processing..."
		m.UpdateViewport()
		return m, m.submitCmd(msg.SessionID, msg.Clip, m.selection())

	case resultMsg:
		return m.handleResult(msg)

	case translatedMsg:
		var result entities.TranslationResult
		if msg.Result != nil {
			result = *msg.Result
		}
		if err := m.Flow.TranslateDone(msg.RequestID, result, msg.Err); err != nil {
			// the panel was reset while the call was out
			m.deps.Logger.Debug("Discarding translation", zap.Error(err))
			return m, nil
		}
		if msg.Err != nil {
			m.playCue(sound.CueError)
			m.TranslateText.Focus()
			return m, nil
		}
		m.playCue(sound.CueSuccess)
		return m, nil

	case replyRecordingMsg:
		if msg.Err != nil {
			if err := m.Flow.AbortRecording(msg.RequestID, msg.Err); err == nil {
				m.playCue(sound.CueError)
			}
			return m, nil
		}
		if !m.Flow.Current(msg.RequestID) || m.Flow.Phase() != entities.PhaseRecording {
			// reset before the microphone opened
			return m, m.discardCaptureCmd()
		}
		m.playCue(sound.CueStart)
		return m, nil

	case replyTranslatedMsg:
		if err := m.Flow.ReplyDone(msg.RequestID, msg.Reply, msg.Err); err != nil {
			m.deps.Logger.Debug("Discarding reply translation", zap.Error(err))
			return m, nil
		}
		if msg.Err != nil {
			m.playCue(sound.CueError)
			return m, nil
		}
		m.playCue(sound.CueSuccess)
		return m, m.notifyCmd(msg.Reply)

	case historyLoadedMsg:
		m.HistoryItems = msg.Items
		m.HistoryErr = msg.Err
		if m.HistorySelectedIdx >= len(m.HistoryItems) {
			m.HistorySelectedIdx = 0
		}
		return m, nil

	case historyClearedMsg:
		if msg.Err != nil {
			m.HistoryErr = msg.Err
			return m, nil
		}
		m.HistoryItems = nil
		m.HistorySelectedIdx = 0
		m.HistoryErr = nil
		return m, nil

	case settingsSavedMsg:
		if msg.Err != nil {
			m.Err = "Failed to save settings: " + msg.Err.Error()
			return m, nil
		}
		m.deps.Dictation.UpdateSettings(msg.Settings)
		if m.deps.Cues != nil {
			m.deps.Cues.SetEnabled(msg.Settings.SoundEnabled)
		}
		m.SettingsOpen = false
		m.APIKeyInput.Blur()
		m.Err = ""
		m.Status = "Settings saved"
		return m, nil

	case copiedMsg:
		if msg.Err != nil {
			m.Err = msg.Err.Error()
			return m, nil
		}
		m.Status = "Copied to clipboard"
		return m, nil

	case selectionMsg:
		if msg.Err != nil {
			m.Err = msg.Err.Error()
			return m, nil
		}
		m.SelectedText = msg.Text
		if msg.Text == "" {
			m.Status = "Clipboard is empty; no selected text"
		} else {
			m.Status = "Selected text taken from the clipboard"
		}
		return m, nil

	case screenshotMsg:
		if msg.Err != nil {
			m.Err = "Screenshot: " + msg.Err.Error()
			return m, nil
		}
		// any acquisition replaces the current screenshot
		m.Screenshot = msg.Data
		m.ScreenshotPath = msg.Path
		m.ScreenshotOpen = false
		m.PathInput.Blur()
		m.Err = ""
		m.Status = "Screenshot attached"
		return m, nil
	}

	return m, nil
}

func (m *Model) resize(msg tea.WindowSizeMsg) {
	m.WindowWidth = msg.Width
	m.WindowHeight = msg.Height

	width := ModalWidth
	if msg.Width-10 < width {
		width = msg.Width - 10
	}
	if width < 30 {
		width = 30
	}
	styles.ContentWidth = width - 6

	m.Viewport.Width = msg.Width - 4
	m.Viewport.Height = msg.Height - 10
	if m.Viewport.Height < 5 {
		m.Viewport.Height = 5
	}
	m.TranslateText.Width = msg.Width - 12

	glamourStyle := "dark"
	if !lipgloss.HasDarkBackground() {
		glamourStyle = "light"
	}
	m.Renderer, _ = glamour.NewTermRenderer(
		glamour.WithStylePath(glamourStyle),
		glamour.WithWordWrap(m.Viewport.Width-4),
	)
	m.UpdateViewport()
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch {
	case m.HistoryOpen:
		return m.handleHistoryKey(msg)
	case m.SettingsOpen:
		return m.handleSettingsKey(msg)
	case m.ScreenshotOpen:
		return m.handleScreenshotKey(msg)
	case m.Mode == entities.ModeTranslate:
		return m.handleTranslateKey(msg)
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case " ", "enter":
		return m, m.toggleRecording()
	case "esc", "x":
		m.cancelProcessing()
		return m, nil
	}
	return m, m.handleCommonKey(msg)
}

// handleCommonKey serves the keys shared by the dictation view and the
// non-input phases of the translate panel
func (m *Model) handleCommonKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "tab":
		m.setMode(CycleMode(m.Mode, 1))
	case "shift+tab":
		m.setMode(CycleMode(m.Mode, -1))
	case "1", "2", "3", "4", "5":
		m.setMode(entities.Modes[int(msg.String()[0]-'1')])
	case "s":
		if m.Mode == entities.ModeSocial {
			m.ReplyStyle = CycleStyle(m.ReplyStyle)
			m.playCue(sound.CueClick)
		}
	case "p":
		if m.Mode == entities.ModeCommand {
			return m.selectionCmd()
		}
	case "i":
		if m.Mode == entities.ModeSocial {
			m.ScreenshotOpen = true
			m.PathInput.SetValue("")
			return m.PathInput.Focus()
		}
	case "d":
		if m.Mode == entities.ModeSocial && m.Screenshot != nil {
			m.Screenshot = nil
			m.ScreenshotPath = ""
			m.Status = "Screenshot removed"
		}
	case "c":
		if text := m.copyTarget(); text != "" {
			return m.copyCmd(text)
		}
	case "h":
		m.HistoryOpen = true
		m.HistorySelectedIdx = 0
		return m.loadHistoryCmd()
	case ",":
		m.openSettings()
		return m.APIKeyInput.Focus()
	case "up", "k":
		m.Viewport.LineUp(1)
	case "down", "j":
		m.Viewport.LineDown(1)
	}
	return nil
}

func (m *Model) setMode(mode entities.Mode) {
	if mode == m.Mode {
		return
	}
	m.Mode = mode
	m.playCue(sound.CueClick)
	if mode == entities.ModeTranslate && m.Flow.Phase() == entities.PhaseInput {
		m.TranslateText.Focus()
	} else {
		m.TranslateText.Blur()
	}
}

func (m *Model) toggleRecording() tea.Cmd {
	if m.starting {
		return nil
	}
	switch m.deps.Dictation.State() {
	case entities.RecordingIdle:
		m.starting = true
		m.Err = ""
		m.Status = "Starting..."
		return m.startCmd()
	case entities.RecordingActive:
		m.Status = "Stopping..."
		return m.stopCmd(m.SessionID)
	default:
		m.Err = ErrorText(entities.ErrInvalidTransition)
		return nil
	}
}

// cancelProcessing abandons the request in flight; its answer becomes stale
func (m *Model) cancelProcessing() {
	if m.deps.Dictation.State() != entities.RecordingProcessing {
		return
	}
	if err := m.deps.Dictation.Cancel(m.SessionID); err != nil {
		m.Err = ErrorText(err)
		return
	}
	m.SessionID = ""
	m.Status = "Cancelled"
	m.UpdateViewport()
}

func (m *Model) handleResult(msg resultMsg) (tea.Model, tea.Cmd) {
	if msg.SessionID != m.SessionID || errors.Is(msg.Err, entities.ErrStaleSession) {
		m.deps.Logger.Debug("Discarding stale result", zap.String("session_id", msg.SessionID))
		return m, nil
	}
	m.Status = ""
	defer m.UpdateViewport()

	if msg.Err != nil {
		m.Err = ErrorText(msg.Err)
		return m, nil
	}

	resp := msg.Outcome.Response
	if !resp.Success {
		m.Err = resp.Error
		return m, nil
	}
	m.Err = ""
	m.Messages = AppendMessage(m.Messages, entities.Message{
		Result:        resp.Result,
		Transcription: resp.Transcription,
	})
	return m, m.notifyCmd(resp.Result)
}

func (m *Model) selection() usecase.Selection {
	return usecase.Selection{
		Mode:         m.Mode,
		ReplyStyle:   m.ReplyStyle,
		SelectedText: m.SelectedText,
		Screenshot:   m.Screenshot,
	}
}

// copyTarget is the newest text on screen
func (m *Model) copyTarget() string {
	if m.Mode == entities.ModeTranslate {
		switch m.Flow.Phase() {
		case entities.PhaseDone:
			return m.Flow.Reply
		case entities.PhaseTranslated, entities.PhaseRecording:
			return m.Flow.Result.Translation
		}
		return ""
	}
	if len(m.Messages) == 0 {
		return ""
	}
	return m.Messages[len(m.Messages)-1].Result
}

func (m *Model) handleTranslateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	phase := m.Flow.Phase()

	if phase == entities.PhaseInput {
		switch msg.String() {
		case "tab", "shift+tab":
			return m, m.handleCommonKey(msg)
		case "ctrl+l":
			m.LanguageIdx = (m.LanguageIdx + 1) % len(entities.TranslationLanguages)
			return m, nil
		case "enter":
			text := strings.TrimSpace(m.TranslateText.Value())
			if text == "" {
				return m, nil
			}
			target := entities.TranslationLanguages[m.LanguageIdx]
			id, err := m.Flow.BeginTranslate(text, target)
			if err != nil {
				return m, nil
			}
			m.TranslateText.Blur()
			return m, m.translateCmd(id, text, target)
		}
		var cmd tea.Cmd
		m.TranslateText, cmd = m.TranslateText.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "n", "esc":
		return m, m.resetTranslation()
	case " ", "enter":
		switch phase {
		case entities.PhaseTranslated:
			id, err := m.Flow.BeginRecording()
			if err != nil {
				return m, nil
			}
			return m, m.replyStartCmd(id)
		case entities.PhaseRecording:
			id := m.Flow.RequestID()
			if err := m.Flow.EndRecording(); err != nil {
				return m, nil
			}
			return m, m.replyStopCmd(id, m.Flow.Result.FromLanguageName)
		}
		return m, nil
	}
	return m, m.handleCommonKey(msg)
}

// resetTranslation returns the panel to input from any phase, releasing the
// microphone if a reply was being recorded
func (m *Model) resetTranslation() tea.Cmd {
	recording := m.Flow.Phase() == entities.PhaseRecording
	m.Flow.Reset()
	m.TranslateText.SetValue("")
	focus := m.TranslateText.Focus()
	if !recording {
		return focus
	}
	return tea.Batch(focus, m.discardCaptureCmd())
}

func (m *Model) handleHistoryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "h", "q":
		m.HistoryOpen = false
	case "up", "k":
		if m.HistorySelectedIdx > 0 {
			m.HistorySelectedIdx--
		}
	case "down", "j":
		if m.HistorySelectedIdx < len(m.HistoryItems)-1 {
			m.HistorySelectedIdx++
		}
	case "enter":
		if m.HistorySelectedIdx < len(m.HistoryItems) {
			m.LoadHistoryItem(m.HistoryItems[m.HistorySelectedIdx])
		}
	case "D":
		return m, m.clearHistoryCmd()
	}
	return m, nil
}

// LoadHistoryItem replaces the display with item and switches to its mode
func (m *Model) LoadHistoryItem(item entities.HistoryItem) {
	m.Messages = []entities.Message{{Result: item.Result}}
	m.HistoryOpen = false
	m.Err = ""
	m.setMode(entities.ParseMode(string(item.Mode)))
	m.UpdateViewport()
}

func (m *Model) openSettings() {
	m.SettingsOpen = true
	m.SettingsIdx = settingAPIKey
	m.SettingsDraft = m.deps.Dictation.Settings()
	m.APIKeyInput.SetValue(m.SettingsDraft.APIKey)
}

func (m *Model) handleSettingsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.SettingsOpen = false
		m.APIKeyInput.Blur()
		return m, nil
	case "enter":
		m.SettingsDraft.APIKey = strings.TrimSpace(m.APIKeyInput.Value())
		return m, m.saveSettingsCmd(m.SettingsDraft)
	case "up", "shift+tab":
		m.SettingsIdx = (m.SettingsIdx + settingCount - 1) % settingCount
		return m, m.focusSettingsRow()
	case "down", "tab":
		m.SettingsIdx = (m.SettingsIdx + 1) % settingCount
		return m, m.focusSettingsRow()
	}

	if m.SettingsIdx == settingAPIKey {
		var cmd tea.Cmd
		m.APIKeyInput, cmd = m.APIKeyInput.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "left", "right", " ":
		delta := 1
		if msg.String() == "left" {
			delta = -1
		}
		switch m.SettingsIdx {
		case settingLanguage:
			m.SettingsDraft.OutputLanguage = CycleLanguage(m.SettingsDraft.OutputLanguage, delta)
		case settingSound:
			m.SettingsDraft.SoundEnabled = !m.SettingsDraft.SoundEnabled
		case settingClarify:
			m.SettingsDraft.ClarifyText = !m.SettingsDraft.ClarifyText
		}
	}
	return m, nil
}

func (m *Model) focusSettingsRow() tea.Cmd {
	if m.SettingsIdx == settingAPIKey {
		return m.APIKeyInput.Focus()
	}
	m.APIKeyInput.Blur()
	return nil
}

func (m *Model) handleScreenshotKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.ScreenshotOpen = false
		m.PathInput.Blur()
		return m, nil
	case "enter":
		path := strings.TrimSpace(m.PathInput.Value())
		if path == "" && m.deps.Clipboard != nil {
			return m, m.clipboardScreenshotCmd()
		}
		return m, loadScreenshotCmd(path)
	}
	var cmd tea.Cmd
	m.PathInput, cmd = m.PathInput.Update(msg)
	return m, cmd
}

func (m *Model) playCue(cue sound.Cue) {
	if m.deps.Cues != nil {
		m.deps.Cues.Play(cue)
	}
}

// Busy reports whether a spinner is on screen
func (m *Model) Busy() bool {
	if m.Mode == entities.ModeTranslate {
		phase := m.Flow.Phase()
		return phase == entities.PhaseTranslating || phase == entities.PhaseTranslatingReply
	}
	return m.deps.Dictation.State() == entities.RecordingProcessing
}

func (m *Model) startCmd() tea.Cmd {
	d, ctx := m.deps.Dictation, m.ctx
	return func() tea.Msg {
		id, err := d.Start(ctx)
		return recordingStartedMsg{SessionID: id, Err: err}
	}
}

func (m *Model) stopCmd(sessionID string) tea.Cmd {
	d := m.deps.Dictation
	return func() tea.Msg {
		clip, err := d.Stop(sessionID)
		return recordingStoppedMsg{SessionID: sessionID, Clip: clip, Err: err}
	}
}

func (m *Model) submitCmd(sessionID string, clip repositories.Clip, sel usecase.Selection) tea.Cmd {
	d, ctx := m.deps.Dictation, m.ctx
	return func() tea.Msg {
		outcome, err := d.Submit(ctx, sessionID, clip, sel)
		return resultMsg{SessionID: sessionID, Outcome: outcome, Err: err}
	}
}

func (m *Model) translateCmd(id, text, target string) tea.Cmd {
	tr, ctx, apiKey := m.deps.Translator, m.ctx, m.deps.Dictation.Settings().APIKey
	return func() tea.Msg {
		result, err := tr.TranslateText(ctx, domain.TranslateRequest{Text: text, TargetLanguage: target}, apiKey)
		return translatedMsg{RequestID: id, Result: result, Err: err}
	}
}

func (m *Model) replyStartCmd(id string) tea.Cmd {
	capture, ctx := m.deps.Capture, m.ctx
	return func() tea.Msg {
		if capture == nil {
			return replyRecordingMsg{RequestID: id, Err: errors.New("no microphone available")}
		}
		return replyRecordingMsg{RequestID: id, Err: capture.Start(ctx)}
	}
}

func (m *Model) discardCaptureCmd() tea.Cmd {
	capture, logger := m.deps.Capture, m.deps.Logger
	if capture == nil {
		return nil
	}
	return func() tea.Msg {
		if _, err := capture.Stop(); err != nil {
			logger.Debug("Discarded reply recording", zap.Error(err))
		}
		return nil
	}
}

// replyStopCmd finalizes the reply clip and translates it back into the
// language the original text was written in
func (m *Model) replyStopCmd(id, target string) tea.Cmd {
	capture, tr, ctx, cues := m.deps.Capture, m.deps.Translator, m.ctx, m.deps.Cues
	apiKey := m.deps.Dictation.Settings().APIKey
	return func() tea.Msg {
		clip, err := capture.Stop()
		if cues != nil {
			cues.Play(sound.CueStop)
		}
		if err != nil {
			return replyTranslatedMsg{RequestID: id, Err: err}
		}
		reply, err := tr.TranslateReply(ctx, domain.TranslateReplyRequest{
			Audio:          base64.StdEncoding.EncodeToString(clip.Data),
			TargetLanguage: target,
			AudioMIMEType:  clip.MIMEType,
		}, apiKey)
		return replyTranslatedMsg{RequestID: id, Reply: reply, Err: err}
	}
}

func (m *Model) loadHistoryCmd() tea.Cmd {
	store, ctx := m.deps.History, m.ctx
	return func() tea.Msg {
		if store == nil {
			return historyLoadedMsg{}
		}
		items, err := store.List(ctx)
		return historyLoadedMsg{Items: items, Err: err}
	}
}

func (m *Model) clearHistoryCmd() tea.Cmd {
	store, ctx := m.deps.History, m.ctx
	return func() tea.Msg {
		if store == nil {
			return historyClearedMsg{}
		}
		return historyClearedMsg{Err: store.Clear(ctx)}
	}
}

func (m *Model) saveSettingsCmd(settings entities.Settings) tea.Cmd {
	store, ctx := m.deps.Settings, m.ctx
	return func() tea.Msg {
		if store == nil {
			return settingsSavedMsg{Settings: settings}
		}
		return settingsSavedMsg{Settings: settings, Err: store.Save(ctx, settings)}
	}
}

func (m *Model) copyCmd(text string) tea.Cmd {
	clip := m.deps.Clipboard
	return func() tea.Msg {
		if clip == nil {
			return copiedMsg{Err: errors.New("clipboard unavailable")}
		}
		return copiedMsg{Err: clip.Copy(text)}
	}
}

func (m *Model) selectionCmd() tea.Cmd {
	clip := m.deps.Clipboard
	return func() tea.Msg {
		if clip == nil {
			return selectionMsg{Err: errors.New("clipboard unavailable")}
		}
		text, err := clip.Selection()
		return selectionMsg{Text: text, Err: err}
	}
}

// clipboardScreenshotCmd treats the clipboard text as an image path
func (m *Model) clipboardScreenshotCmd() tea.Cmd {
	clip := m.deps.Clipboard
	return func() tea.Msg {
		path, err := clip.Selection()
		if err != nil {
			return screenshotMsg{Err: err}
		}
		data, err := LoadScreenshot(path)
		return screenshotMsg{Path: path, Data: data, Err: err}
	}
}

func loadScreenshotCmd(path string) tea.Cmd {
	return func() tea.Msg {
		data, err := LoadScreenshot(path)
		return screenshotMsg{Path: path, Data: data, Err: err}
	}
}

func (m *Model) notifyCmd(text string) tea.Cmd {
	n := m.deps.Notifier
	if n == nil || text == "" {
		return nil
	}
	return func() tea.Msg {
		n.Notify(text)
		return nil
	}
}

var _ tea.Model = (*Model)(nil)
