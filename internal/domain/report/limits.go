// Package report holds the pure pieces of the report pipeline: claim limits,
// error bounding, brief construction, style inference, prompt text and the
// structured report schema.
package report

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	// DefaultClaimLimit is used when the requested limit is absent or invalid.
	DefaultClaimLimit = 5
	// MaxClaimLimit caps a single claim.
	MaxClaimLimit = 50
	// MaxErrorLength bounds a job's stored last_error, in characters.
	MaxErrorLength = 160
)

// ParseClaimLimit turns a raw query value into a claim size in [1, MaxClaimLimit].
// Leading integer digits are honoured ("12abc" is 12); anything unparsable or
// non-positive yields DefaultClaimLimit.
func ParseClaimLimit(raw string) int {
	n, ok := leadingInt(strings.TrimSpace(raw))
	if !ok || n <= 0 {
		return DefaultClaimLimit
	}
	if n > MaxClaimLimit {
		return MaxClaimLimit
	}
	return n
}

func leadingInt(s string) (int, bool) {
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		// Overflow: a huge positive value still means "as many as allowed".
		if s[0] != '-' {
			return MaxClaimLimit, true
		}
		return 0, false
	}
	return n, true
}

// TruncateError renders err for storage: at most MaxErrorLength runes and never empty.
func TruncateError(err error) string {
	msg := ""
	if err != nil {
		msg = strings.TrimSpace(err.Error())
	}
	if msg == "" {
		msg = "unknown error"
	}
	return TruncateMessage(msg, MaxErrorLength)
}

// TruncateMessage cuts msg to at most limit runes without splitting a UTF-8 sequence.
func TruncateMessage(msg string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if utf8.RuneCountInString(msg) <= limit {
		return msg
	}
	count := 0
	for i := range msg {
		if count == limit {
			return msg[:i]
		}
		count++
	}
	return msg
}
