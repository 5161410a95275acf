package ui

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/vibeflow/vibeflow/domain/entities"
	"github.com/vibeflow/vibeflow/usecase"
)

// ErrNotAnImage is returned when a screenshot file does not sniff as an image
var ErrNotAnImage = errors.New("file is not an image")

// AppendMessage adds msg and keeps the newest MaxMessages
func AppendMessage(messages []entities.Message, msg entities.Message) []entities.Message {
	messages = append(messages, msg)
	if len(messages) > MaxMessages {
		messages = append([]entities.Message(nil), messages[len(messages)-MaxMessages:]...)
	}
	return messages
}

// CycleMode steps through the selector, wrapping at both ends
func CycleMode(current entities.Mode, delta int) entities.Mode {
	idx := 0
	for i, mode := range entities.Modes {
		if mode == current {
			idx = i
			break
		}
	}
	n := len(entities.Modes)
	return entities.Modes[((idx+delta)%n+n)%n]
}

// CycleStyle returns the reply style after current
func CycleStyle(current entities.ReplyStyle) entities.ReplyStyle {
	for i, style := range entities.ReplyStyles {
		if style == current {
			return entities.ReplyStyles[(i+1)%len(entities.ReplyStyles)]
		}
	}
	return entities.ReplyStyles[0]
}

// CycleLanguage steps through the output languages
func CycleLanguage(current entities.OutputLanguage, delta int) entities.OutputLanguage {
	idx := 0
	for i, lang := range entities.OutputLanguages {
		if lang == current {
			idx = i
			break
		}
	}
	n := len(entities.OutputLanguages)
	return entities.OutputLanguages[((idx+delta)%n+n)%n]
}

// LoadScreenshot reads an image file. Anything that does not sniff as an
// image is rejected.
func LoadScreenshot(path string) ([]byte, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("no screenshot path")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read screenshot: %w", err)
	}
	if !strings.HasPrefix(http.DetectContentType(data), "image/") {
		return nil, ErrNotAnImage
	}
	return data, nil
}

// ErrorText is what the status line shows for err
func ErrorText(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, entities.ErrInvalidTransition):
		return "Still processing the previous recording"
	default:
		return usecase.ErrorMessage(err)
	}
}

// MaskKey hides all but the last four characters of an API key
func MaskKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 4 {
		return strings.Repeat("•", len(key))
	}
	return strings.Repeat("•", 8) + key[len(key)-4:]
}

func TruncateRunes(s string, max int) string {
	r := []rune(s)
	if max <= 0 {
		return ""
	}
	if len(r) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	return string(r[:max-1]) + "…"
}

func RelativeTime(t time.Time) string {
	d := time.Since(t)
	if d < 0 {
		d = -d
	}
	if d < time.Minute {
		return "just now"
	}
	if d < time.Hour {
		mins := int(d.Minutes())
		if mins == 1 {
			return "1 min ago"
		}
		return fmt.Sprintf("%d mins ago", mins)
	}
	if d < 24*time.Hour {
		hrs := int(d.Hours())
		if hrs == 1 {
			return "1 hr ago"
		}
		return fmt.Sprintf("%d hrs ago", hrs)
	}
	days := int(d.Hours() / 24)
	if days == 1 {
		return "1 day ago"
	}
	return fmt.Sprintf("%d days ago", days)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
