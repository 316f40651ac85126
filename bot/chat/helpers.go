package chat

import (
	"strconv"
	"strings"
)

// MatchNumberToOffered converts a number string ("1", "2", ...) to the
// corresponding offered selection id. Returns empty string if no match.
func MatchNumberToOffered(text string, offered []string) string {
	text = strings.TrimSpace(text)
	num, err := strconv.Atoi(text)
	if err != nil || num < 1 || num > len(offered) {
		return ""
	}
	return offered[num-1]
}

// IsKeyword reports whether text equals one of the keywords, ignoring case
// and surrounding whitespace.
func IsKeyword(text string, keywords []string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	for _, k := range keywords {
		if strings.EqualFold(text, k) {
			return true
		}
	}
	return false
}
