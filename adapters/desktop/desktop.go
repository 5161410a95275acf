// Package desktop reaches the parts of the desktop the dictation client
// touches outside its own window.
package desktop

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/gen2brain/beeep"
	"go.uber.org/zap"
)

// Clipboard copies results and reads the current selection
type Clipboard struct{}

// Copy writes text to the system clipboard
func (Clipboard) Copy(text string) error {
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("copy to clipboard: %w", err)
	}
	return nil
}

// Selection returns the clipboard text, used as selected text in command mode
func (Clipboard) Selection() (string, error) {
	text, err := clipboard.ReadAll()
	if err != nil {
		return "", fmt.Errorf("read clipboard: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// Notifier shows desktop notifications. Failures are logged only.
type Notifier struct {
	title  string
	logger *zap.Logger
}

// NewNotifier creates a notifier titled title
func NewNotifier(title string, logger *zap.Logger) *Notifier {
	return &Notifier{title: title, logger: logger}
}

// Notify shows message, shortened to a single line
func (n *Notifier) Notify(message string) {
	if err := beeep.Notify(n.title, Summary(message, 120), ""); err != nil {
		n.logger.Debug("Notification failed", zap.Error(err))
	}
}

// Summary flattens text to one line of at most max runes
func Summary(text string, max int) string {
	line := strings.Join(strings.Fields(text), " ")
	runes := []rune(line)
	if max <= 0 || len(runes) <= max {
		return line
	}
	if max == 1 {
		return "…"
	}
	return string(runes[:max-1]) + "…"
}
