package conversation

import (
	"fmt"
	"io"
	"strings"
)

const historyPreviewLength = 100

// FormatHistory writes a numbered listing of turns, cutting long contents short.
func FormatHistory(w io.Writer, turns Conversation) error {
	for i, t := range turns {
		content := t.Content
		if r := []rune(content); len(r) > historyPreviewLength {
			content = string(r[:historyPreviewLength]) + "..."
		}
		_, err := fmt.Fprintf(w, "%d. [%s]: %s\n", i+1, strings.ToUpper(string(t.Role)), content)
		if err != nil {
			return err
		}
	}
	return nil
}
