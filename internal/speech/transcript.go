package speech

import (
	"regexp"
	"strings"
)

var (
	// "[00:00:00.000 --> 00:00:05.000]" segment stamps.
	timestamp = regexp.MustCompile(`\[\d{2}:\d{2}:\d{2}[.,]\d{3}\s*-->\s*\d{2}:\d{2}:\d{2}[.,]\d{3}\]`)
	// Environmental annotations: "[BLANK_AUDIO]", "(dog barking)", "*music*".
	annotation = regexp.MustCompile(`\[[^\]]*\]|\([^)]*\)|\*[^*]*\*`)
	spaces     = regexp.MustCompile(`\s+`)
)

// whisper emits these on silence.
var hallucinations = map[string]bool{
	"...":                     true,
	"you":                     true,
	"thank you.":              true,
	"thank you":               true,
	"thanks for watching!":    true,
	"thank you for watching.": true,
	"bye.":                    true,
	"bye!":                    true,
	"the end.":                true,
}

// CleanTranscript turns raw recognizer output into a search query:
// segment stamps and annotations are removed, whitespace collapsed, a
// lone hallucination discarded, and sentence punctuation trimmed from
// the ends.
func CleanTranscript(s string) string {
	s = timestamp.ReplaceAllString(s, " ")
	s = annotation.ReplaceAllString(s, " ")
	s = strings.TrimSpace(spaces.ReplaceAllString(s, " "))

	if hallucinations[strings.ToLower(s)] {
		return ""
	}

	return strings.Trim(s, " .,!?;:")
}
