package coach

import (
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

func truncationNotice(maxChars int) string {
	return fmt.Sprintf("[earlier content truncated; showing the most recent %d characters]\n\n", maxChars)
}

// TruncateTail caps text at maxChars characters, keeping the tail: the most
// recent content of notes and reviews matters more than the oldest. A notice
// naming the budget is prepended. The operation is idempotent: re-truncating
// already-truncated text at the same budget returns it unchanged, without
// duplicating the notice.
func TruncateTail(text string, maxChars int) string {
	if maxChars <= 0 || utf8.RuneCountInString(text) <= maxChars {
		return text
	}
	notice := truncationNotice(maxChars)
	if strings.HasPrefix(text, notice) && utf8.RuneCountInString(text[len(notice):]) <= maxChars {
		return text
	}
	return notice + tailChars(text, maxChars)
}

// tailChars returns the last n characters of s without splitting a rune.
func tailChars(s string, n int) string {
	i := len(s)
	for ; n > 0 && i > 0; n-- {
		_, size := utf8.DecodeLastRuneInString(s[:i])
		i -= size
	}
	return s[i:]
}

// TruncateFields applies TruncateTail to every value in a prompt-variable
// map, returning a new map.
func TruncateFields(vars map[string]string, maxChars int) map[string]string {
	out := make(map[string]string, len(vars))
	for k, v := range vars {
		out[k] = TruncateTail(v, maxChars)
	}
	return out
}

var (
	tokenizerOnce sync.Once
	tokenizer     *tiktoken.Tiktoken
)

// EstimateTokens approximates the token count of text using the cl100k_base
// encoding. When the encoding is unavailable it falls back to the 4-chars-
// per-token heuristic, so callers can always log a usable estimate.
func EstimateTokens(text string) int {
	tokenizerOnce.Do(func() {
		tokenizer, _ = tiktoken.GetEncoding("cl100k_base")
	})
	if tokenizer == nil {
		return (len(text) + charsPerToken - 1) / charsPerToken
	}
	return len(tokenizer.Encode(text, nil, nil))
}
