package ui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"

	"github.com/vibeflow/vibeflow/domain"
	"github.com/vibeflow/vibeflow/domain/entities"
	"github.com/vibeflow/vibeflow/domain/repositories"
	"github.com/vibeflow/vibeflow/internal/sound"
	"github.com/vibeflow/vibeflow/usecase"
)

const (
	ModalWidth = 60

	// MaxMessages is how many results stay on screen
	MaxMessages = 4
)

// Dictation is the recorder driven by the record key
type Dictation interface {
	State() entities.RecordingState
	Settings() entities.Settings
	UpdateSettings(settings entities.Settings)
	Start(ctx context.Context) (string, error)
	Stop(sessionID string) (repositories.Clip, error)
	Submit(ctx context.Context, sessionID string, clip repositories.Clip, sel usecase.Selection) (*usecase.Outcome, error)
	Cancel(sessionID string) error
}

// Translator backs the translate panel
type Translator interface {
	TranslateText(ctx context.Context, req domain.TranslateRequest, apiKey string) (*entities.TranslationResult, error)
	TranslateReply(ctx context.Context, req domain.TranslateReplyRequest, apiKey string) (string, error)
}

// HistoryStore lists and clears past results
type HistoryStore interface {
	List(ctx context.Context) ([]entities.HistoryItem, error)
	Clear(ctx context.Context) error
}

// SettingsStore persists the settings on explicit save
type SettingsStore interface {
	Save(ctx context.Context, settings entities.Settings) error
}

// Cues plays feedback sounds and follows the sound preference
type Cues interface {
	Play(cue sound.Cue)
	SetEnabled(enabled bool)
}

// Clipboard copies results and provides the selected text
type Clipboard interface {
	Copy(text string) error
	Selection() (string, error)
}

// Notifier reports finished results outside the terminal
type Notifier interface {
	Notify(message string)
}

// Deps are the collaborators of the model. Dictation is required; Capture is
// only used by the translate panel since dictation owns its own.
type Deps struct {
	Dictation  Dictation
	Translator Translator
	History    HistoryStore
	Settings   SettingsStore
	Capture    repositories.AudioCapture
	Cues       Cues
	Clipboard  Clipboard
	Notifier   Notifier
	Logger     *zap.Logger
}

// Options are the initial selector values
type Options struct {
	Mode       entities.Mode
	ReplyStyle entities.ReplyStyle
	Screenshot string
}

type (
	recordingStartedMsg struct {
		SessionID string
		Err       error
	}
	recordingStoppedMsg struct {
		SessionID string
		Clip      repositories.Clip
		Err       error
	}
	resultMsg struct {
		SessionID string
		Outcome   *usecase.Outcome
		Err       error
	}

	translatedMsg struct {
		RequestID string
		Result    *entities.TranslationResult
		Err       error
	}
	replyRecordingMsg struct {
		RequestID string
		Err       error
	}

	replyTranslatedMsg struct {
		RequestID string
		Reply     string
		Err       error
	}

	historyLoadedMsg struct {
		Items []entities.HistoryItem
		Err   error
	}
	historyClearedMsg struct{ Err error }

	settingsSavedMsg struct {
		Settings entities.Settings
		Err      error
	}
	copiedMsg struct{ Err error }

	selectionMsg struct {
		Text string
		Err  error
	}
	screenshotMsg struct {
		Path string
		Data []byte
		Err  error
	}
)

// settings modal rows
const (
	settingAPIKey = iota
	settingLanguage
	settingSound
	settingClarify
	settingCount
)

// Model is the bubbletea model of the dictation client
type Model struct {
	deps Deps
	ctx  context.Context

	initialScreenshot string
	starting          bool

	Mode           entities.Mode
	ReplyStyle     entities.ReplyStyle
	SelectedText   string
	Screenshot     []byte
	ScreenshotPath string

	SessionID string
	Messages  []entities.Message
	Status    string
	Err       string

	Flow          *entities.TranslationFlow
	TranslateText textinput.Model
	LanguageIdx   int

	HistoryOpen        bool
	HistoryItems       []entities.HistoryItem
	HistorySelectedIdx int
	HistoryErr         error

	SettingsOpen  bool
	SettingsDraft entities.Settings
	SettingsIdx   int
	APIKeyInput   textinput.Model

	ScreenshotOpen bool
	PathInput      textinput.Model

	Viewport     viewport.Model
	Spinner      spinner.Model
	Renderer     *glamour.TermRenderer
	WindowWidth  int
	WindowHeight int
}
