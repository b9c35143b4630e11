package report

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestParseClaimLimit(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"", DefaultClaimLimit},
		{"abc", DefaultClaimLimit},
		{"0", DefaultClaimLimit},
		{"-3", DefaultClaimLimit},
		{"1", 1},
		{" 12 ", 12},
		{"12abc", 12},
		{"50", 50},
		{"51", MaxClaimLimit},
		{"999999999999999999999999", MaxClaimLimit},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseClaimLimit(tt.raw))
		})
	}
}

func TestTruncateError(t *testing.T) {
	long := strings.Repeat("x", 400)
	assert.Len(t, TruncateError(errors.New(long)), MaxErrorLength)
	assert.Equal(t, "short", TruncateError(errors.New("short")))
	assert.Equal(t, "unknown error", TruncateError(nil))
	assert.Equal(t, "unknown error", TruncateError(errors.New("   ")))

	exact := strings.Repeat("y", MaxErrorLength)
	assert.Equal(t, exact, TruncateError(errors.New(exact)))
}

func TestTruncateMessage_MultiByte(t *testing.T) {
	msg := strings.Repeat("é", 200)
	got := TruncateMessage(msg, MaxErrorLength)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, MaxErrorLength, utf8.RuneCountInString(got))
}
