package gemini

import (
	"context"

	"google.golang.org/genai"
	"google.golang.org/genai/tokenizer"
)

var _ TokenCounter = (*LocalTokenCounter)(nil)

// LocalTokenCounter counts tokens offline using the Gemini tokenizer.
type LocalTokenCounter struct {
	tok *tokenizer.LocalTokenizer
}

// NewTokenCounter creates a LocalTokenCounter for the given model.
func NewTokenCounter(model string) (*LocalTokenCounter, error) {
	tok, err := tokenizer.NewLocalTokenizer(model)
	if err != nil {
		return nil, err
	}
	return &LocalTokenCounter{tok: tok}, nil
}

// CountTokens counts the number of tokens in the given text.
func (tc *LocalTokenCounter) CountTokens(ctx context.Context, text string) (int, error) {
	if text == "" {
		return 0, nil
	}

	contents := []*genai.Content{
		genai.NewContentFromText(text, "user"),
	}

	result, err := tc.tok.CountTokens(contents, nil)
	if err != nil {
		return 0, err
	}

	return int(result.TotalTokens), nil
}
