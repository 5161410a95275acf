package prompt

import (
	"regexp"
	"strings"
)

var (
	fenceLine = regexp.MustCompile("(?m)^[ \t]*```[A-Za-z0-9_+.-]*[ \t]*$\n?")
	// inline fences such as ```js const a = 1```
	inlineFence = regexp.MustCompile("```[A-Za-z0-9_+.-]*[ \t]+|```")

	// a line of its own announcing the output, optionally after an acknowledgement
	preambleLine = regexp.MustCompile(`(?i)^(?:(?:sure|certainly|of course|okay|ok|absolutely|claro|certo|por supuesto)[!.,]*\s+)?(?:here(?:'s| is| are)|aqui está|aquí está|aqui estão)([^\n:]{0,80}):[ \t]*\n\s*`)
	// the header must name the model's own output, not the dictated content
	outputNoun = regexp.MustCompile(`(?i)\b(formatted|cleaned|clean|polished|rewritten|revised|corrected|improved|edited|transcri\w*|translat\w*|traducción|tradução|version|versión|versão|output|result|resultado|response|reply|resposta|respuesta)\b`)
)

// Clean post-processes a model reply: fence markers and a model preamble line
// are removed and the text is trimmed.
func Clean(text string) string {
	text = StripCodeFences(text)
	text = StripPreamble(text)
	return strings.TrimSpace(text)
}

// StripCodeFences removes ``` markers and their language tags, keeping the content
func StripCodeFences(text string) string {
	text = fenceLine.ReplaceAllString(text, "")
	return inlineFence.ReplaceAllString(text, "")
}

// StripPreamble drops a leading "Here is the formatted email:" style line.
// Openers that could have been dictated ("Okay, ...", "Here is the agenda:")
// stay.
func StripPreamble(text string) string {
	text = strings.TrimSpace(text)
	m := preambleLine.FindStringSubmatchIndex(text)
	if m == nil || m[1] >= len(text) {
		return text
	}
	if !outputNoun.MatchString(text[m[2]:m[3]]) {
		return text
	}
	return strings.TrimSpace(text[m[1]:])
}
