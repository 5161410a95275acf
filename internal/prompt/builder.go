package prompt

import (
	"fmt"
	"strings"

	"github.com/vibeflow/vibeflow/domain/entities"
	"github.com/vibeflow/vibeflow/domain/repositories"
)

// DefaultAudioMIMEType is the container produced by the browser recorder
const DefaultAudioMIMEType = "audio/webm"

const clarifyDirective = `

CLARITY AND ORGANIZATION:
- Reorganize confusing sentences to be clear and logical
- Fix agreement and grammar errors
- Remove unnecessary repetitions
- Structure text cohesively
- If speech is confusing, interpret the intent and write clearly`

const (
	socialWithScreenshotInstruction    = "Analyze the conversation in the screenshot above. The audio contains my thoughts or specific instructions for the reply. Generate the perfect response based on the requested style."
	socialWithoutScreenshotInstruction = "The user wants help with a social reply. Listen to their voice input and help craft a response. If they describe a conversation, generate an appropriate reply."
	transcribeInstruction              = "Transcribe and format my voice input according to your instructions."
)

// Options are the request fields that shape the system instruction
type Options struct {
	Mode           entities.Mode
	ReplyStyle     entities.ReplyStyle
	ClarifyText    bool
	OutputLanguage entities.OutputLanguage
}

// SystemInstruction assembles the mode template, the optional style and clarify
// directives, and the output language directive, in that order.
func SystemInstruction(opts Options) string {
	var b strings.Builder
	b.WriteString(ConfigFor(opts.Mode).Prompt)

	if opts.Mode == entities.ModeSocial && opts.ReplyStyle != "" {
		fmt.Fprintf(&b, "\n\nREPLY STYLE: %s\n%s\n\nGenerate a reply that embodies this style perfectly.",
			strings.ToUpper(string(opts.ReplyStyle)), StyleDescription(opts.ReplyStyle))
	}

	if opts.ClarifyText {
		b.WriteString(clarifyDirective)
	}

	b.WriteString(LanguageDirective(opts.OutputLanguage))
	return b.String()
}

// LanguageDirective names exactly one output language and overrides everything before it
func LanguageDirective(lang entities.OutputLanguage) string {
	name := lang.Name()
	return fmt.Sprintf(`

OUTPUT LANGUAGE (CRITICAL):
You MUST output the result in %s.
The user may speak in any language, but your response MUST be in %s.
Translate naturally and professionally if the input is in a different language.`, name, name)
}

// ImageMIMEType sniffs the image type from the start of its base64 text
func ImageMIMEType(b64 string) string {
	switch {
	case strings.HasPrefix(b64, "/9j/"):
		return "image/jpeg"
	case strings.HasPrefix(b64, "R0lGOD"):
		return "image/gif"
	default:
		return "image/png"
	}
}

// Input is the decoded media of a generate call
type Input struct {
	Mode          entities.Mode
	Audio         []byte
	AudioMIMEType string
	Screenshot    []byte
	ScreenshotB64 string
	SelectedText  string
}

// Parts orders the content parts: the screenshot (social only), the audio, then
// one trailing instruction text part.
func Parts(in Input) []repositories.Part {
	parts := make([]repositories.Part, 0, 3)

	hasScreenshot := len(in.Screenshot) > 0
	if in.Mode == entities.ModeSocial && hasScreenshot {
		parts = append(parts, repositories.InlinePart(ImageMIMEType(in.ScreenshotB64), in.Screenshot))
	}

	audioType := in.AudioMIMEType
	if audioType == "" {
		audioType = DefaultAudioMIMEType
	}
	parts = append(parts, repositories.InlinePart(audioType, in.Audio))

	parts = append(parts, repositories.TextPart(Instruction(in.Mode, hasScreenshot, in.SelectedText)))
	return parts
}

// Instruction returns the trailing text part for mode
func Instruction(mode entities.Mode, hasScreenshot bool, selectedText string) string {
	switch {
	case mode == entities.ModeSocial && hasScreenshot:
		return socialWithScreenshotInstruction
	case mode == entities.ModeSocial:
		return socialWithoutScreenshotInstruction
	case mode == entities.ModeCommand && selectedText != "":
		return fmt.Sprintf("[SELECTED TEXT]\n%s\n\nTransform this text according to my voice command.", selectedText)
	default:
		return transcribeInstruction
	}
}

// TranslateTextParts builds the single text part of a text translation call
func TranslateTextParts(text, targetLanguage string) []repositories.Part {
	return []repositories.Part{
		repositories.TextPart(fmt.Sprintf("Target language: %s\n\nText:\n%s", targetLanguage, text)),
	}
}

// TranslateReplyParts builds the parts of a spoken reply translation call
func TranslateReplyParts(audio []byte, audioMIMEType, targetLanguage string) []repositories.Part {
	if audioMIMEType == "" {
		audioMIMEType = DefaultAudioMIMEType
	}
	return []repositories.Part{
		repositories.InlinePart(audioMIMEType, audio),
		repositories.TextPart(fmt.Sprintf("Transcribe my reply and translate it into %s.", targetLanguage)),
	}
}
