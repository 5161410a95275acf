package entities

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Mode selects the transcription/transformation behaviour
type Mode string

const (
	ModeText      Mode = "text"
	ModeEmail     Mode = "email"
	ModeCommand   Mode = "command"
	ModeSocial    Mode = "social"
	ModeTranslate Mode = "translate"
)

// Modes lists the selectable modes in selector order
var Modes = []Mode{ModeText, ModeEmail, ModeCommand, ModeSocial, ModeTranslate}

// Label returns the short selector label of the mode
func (m Mode) Label() string {
	switch m {
	case ModeEmail:
		return "Email"
	case ModeCommand:
		return "Command"
	case ModeSocial:
		return "Social"
	case ModeTranslate:
		return "Translate"
	default:
		return "Text"
	}
}

// ParseMode maps free text to a Mode, falling back to text
func ParseMode(s string) Mode {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Modes {
		if m == known {
			return m
		}
	}
	return ModeText
}

// OutputLanguage is the language the result must be written in
type OutputLanguage string

const (
	LanguageEnglish    OutputLanguage = "en"
	LanguagePortuguese OutputLanguage = "pt"
	LanguageSpanish    OutputLanguage = "es"
)

// OutputLanguages lists the supported output languages
var OutputLanguages = []OutputLanguage{LanguageEnglish, LanguagePortuguese, LanguageSpanish}

// Name resolves the language code; anything unknown is English
func (l OutputLanguage) Name() string {
	switch l {
	case LanguagePortuguese:
		return "Portuguese"
	case LanguageSpanish:
		return "Spanish"
	default:
		return "English"
	}
}

// ParseOutputLanguage returns the matching language or English
func ParseOutputLanguage(s string) OutputLanguage {
	switch OutputLanguage(strings.ToLower(strings.TrimSpace(s))) {
	case LanguagePortuguese:
		return LanguagePortuguese
	case LanguageSpanish:
		return LanguageSpanish
	default:
		return LanguageEnglish
	}
}

// ReplyStyle is a tone used in social mode
type ReplyStyle string

const (
	StyleFlirty       ReplyStyle = "flirty"
	StyleEngaging     ReplyStyle = "engaging"
	StyleProfessional ReplyStyle = "professional"
	StyleFriendly     ReplyStyle = "friendly"
	StyleWitty        ReplyStyle = "witty"
	StyleAssertive    ReplyStyle = "assertive"
	StyleSupportive   ReplyStyle = "supportive"
)

// ReplyStyles lists the styles offered by the selector
var ReplyStyles = []ReplyStyle{
	StyleFlirty,
	StyleEngaging,
	StyleProfessional,
	StyleFriendly,
	StyleWitty,
	StyleAssertive,
	StyleSupportive,
}

// Settings holds the user preferences persisted on the client
type Settings struct {
	APIKey         string         `json:"apiKey"`
	OutputLanguage OutputLanguage `json:"outputLanguage"`
	ClarifyText    bool           `json:"clarifyText"`
	SoundEnabled   bool           `json:"soundEnabled"`
}

// DefaultSettings returns the settings used before anything was saved
func DefaultSettings() Settings {
	return Settings{
		OutputLanguage: LanguageEnglish,
		SoundEnabled:   true,
	}
}

// HistoryItem is one past successful result
type HistoryItem struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"timestamp"` // unix milliseconds
	Result    string `json:"result"`
	Mode      Mode   `json:"mode"`
}

// NewHistoryItem creates an item with a time-ordered id
func NewHistoryItem(result string, mode Mode, now time.Time) HistoryItem {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return HistoryItem{
		ID:        id.String(),
		Timestamp: now.UnixMilli(),
		Result:    result,
		Mode:      mode,
	}
}

// Validate checks the item before it is stored
func (h *HistoryItem) Validate() error {
	if h.ID == "" {
		return errors.New("id is required")
	}
	if strings.TrimSpace(h.Result) == "" {
		return errors.New("result is required")
	}
	return nil
}

// Message is one rendered exchange in the display list
type Message struct {
	Result        string
	Transcription string
}
