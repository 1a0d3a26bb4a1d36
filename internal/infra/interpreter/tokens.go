package interpreter

import (
	"github.com/pkoukk/tiktoken-go"
)

const fallbackEncoding = "cl100k_base"

// TokenCounter measures and trims text in model tokens.
type TokenCounter interface {
	Count(text string) int
	Truncate(text string, limit int) string
}

type tiktokenCounter struct {
	enc *tiktoken.Tiktoken
}

// NewTokenCounter returns a tiktoken counter for model, or a character based
// estimate when no encoding can be loaded.
func NewTokenCounter(model string) (TokenCounter, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding(fallbackEncoding)
	}
	if err != nil {
		return approxCounter{}, err
	}
	return &tiktokenCounter{enc: enc}, nil
}

func (c *tiktokenCounter) Count(text string) int {
	return len(c.enc.Encode(text, nil, nil))
}

func (c *tiktokenCounter) Truncate(text string, limit int) string {
	tokens := c.enc.Encode(text, nil, nil)
	if len(tokens) <= limit {
		return text
	}
	return c.enc.Decode(tokens[:limit])
}

// approxCounter assumes roughly four characters per token.
type approxCounter struct{}

const charsPerToken = 4

func (approxCounter) Count(text string) int {
	n := len([]rune(text))
	return (n + charsPerToken - 1) / charsPerToken
}

func (approxCounter) Truncate(text string, limit int) string {
	runes := []rune(text)
	maxRunes := limit * charsPerToken
	if len(runes) <= maxRunes {
		return text
	}
	return string(runes[:maxRunes])
}
