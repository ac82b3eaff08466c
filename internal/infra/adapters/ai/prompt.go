package ai

import (
	"strings"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"

	"telegram-chat-stats/internal/infra/metrics"
)

// TokenCounter estimates the token cost of a piece of text.
type TokenCounter interface {
	Count(text string) int
}

type tiktokenCounter struct {
	enc *tiktoken.Tiktoken
}

func (c tiktokenCounter) Count(text string) int { return len(c.enc.Encode(text, nil, nil)) }

// runeCounter is the fallback when the BPE ranks cannot be loaded: about four runes per token.
type runeCounter struct{}

func (runeCounter) Count(text string) int { return utf8.RuneCountInString(text)/4 + 1 }

// NewTokenCounter returns a cl100k_base counter, or a rough rune-based estimate
// when the encoding is unavailable (it is downloaded on first use).
func NewTokenCounter() TokenCounter {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return runeCounter{}
	}
	return tiktokenCounter{enc: enc}
}

// BuildPrompt joins instructions and messages, keeping messages in the given order
// (newest first) until maxTokens is reached. maxTokens <= 0 disables the budget.
func BuildPrompt(counter TokenCounter, instructions string, messages []string, maxTokens int) string {
	var b strings.Builder
	b.WriteString(instructions)

	used := counter.Count(instructions)
	kept := 0
	for _, m := range messages {
		cost := counter.Count(m)
		if maxTokens > 0 && used+cost > maxTokens && kept > 0 {
			break
		}
		b.WriteString("\n")
		b.WriteString(m)
		used += cost
		kept++
	}
	metrics.ObservePromptMessages(kept)
	return b.String()
}
