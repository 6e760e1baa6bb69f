package research

import (
	"strings"
)

const maxFilenameLength = 50

// SanitizeFilename turns a topic into a file name stem: characters that are
// unsafe in file names are dropped, spaces become underscores and the result is
// capped at 50 characters. An empty result becomes "research".
func SanitizeFilename(topic string) string {
	var sb strings.Builder
	n := 0
	for _, r := range topic {
		if n == maxFilenameLength {
			break
		}
		switch r {
		case '<', '>', ':', '"', '/', '\\', '|', '?', '*':
			continue
		case ' ':
			r = '_'
		}
		sb.WriteRune(r)
		n++
	}

	if sb.Len() == 0 {
		return "research"
	}
	return sb.String()
}
