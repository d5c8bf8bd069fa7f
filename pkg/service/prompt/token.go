package prompt

import (
	"log/slog"
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
	"github.com/plugsmith/plugsmith/pkg/utils/logging"
)

// DefaultEncoding is the tiktoken encoding used for prompt size estimates
const DefaultEncoding = "cl100k_base"

// charsPerToken approximates English text when no encoding is available
const charsPerToken = 4

// TokenCounter estimates the token count of a prompt for logging
type TokenCounter struct {
	encoding string

	once sync.Once
	enc  *tiktoken.Tiktoken
}

// TokenCounterOption configures a TokenCounter
type TokenCounterOption func(*TokenCounter)

// WithEncoding sets the tiktoken encoding name
func WithEncoding(name string) TokenCounterOption {
	return func(c *TokenCounter) {
		c.encoding = name
	}
}

// NewTokenCounter creates a counter. The encoding is loaded lazily on first use.
func NewTokenCounter(opts ...TokenCounterOption) *TokenCounter {
	c := &TokenCounter{encoding: DefaultEncoding}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CountTokens returns the token count of text. If the encoding cannot be
// loaded it falls back to a character based estimate.
func (c *TokenCounter) CountTokens(text string) int {
	c.once.Do(func() {
		enc, err := tiktoken.GetEncoding(c.encoding)
		if err != nil {
			logging.Default().Warn("tiktoken encoding unavailable, using character estimate",
				slog.String("encoding", c.encoding),
				slog.String("error", err.Error()),
			)
			return
		}
		c.enc = enc
	})

	if c.enc == nil {
		return EstimateTokens(text)
	}
	return len(c.enc.Encode(text, nil, nil))
}

// EstimateTokens approximates a token count from the rune count
func EstimateTokens(text string) int {
	n := utf8.RuneCountInString(text)
	return (n + charsPerToken - 1) / charsPerToken
}
