// Package gemini implements structured article extraction and reference
// image generation on top of the Google Gemini API.
package gemini

import (
	"context"
	"sync"

	"github.com/fwojciec/readlater"
	"google.golang.org/genai"
)

// Default models.
const (
	DefaultModel      = "gemini-2.5-flash"
	DefaultImageModel = "imagen-4.0-generate-001"
)

// Client is a lazily initialized handle to the Gemini API. The underlying
// genai.Client is created at most once, on first use, and is safe for
// concurrent use afterwards.
type Client struct {
	get func() (*genai.Client, error)
}

// NewClient returns a Client that connects with apiKey on first use.
func NewClient(apiKey string) *Client {
	return &Client{
		get: sync.OnceValues(func() (*genai.Client, error) {
			if apiKey == "" {
				return nil, readlater.Errorf(readlater.EINVALID, "Gemini API key required")
			}
			client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
				APIKey:  apiKey,
				Backend: genai.BackendGeminiAPI,
			})
			if err != nil {
				return nil, readlater.WrapError(readlater.EINTERNAL, err, "creating Gemini client")
			}
			return client, nil
		}),
	}
}

// NewClientFrom wraps an existing genai.Client.
func NewClientFrom(client *genai.Client) *Client {
	return &Client{
		get: func() (*genai.Client, error) { return client, nil },
	}
}

// GenAI returns the shared genai.Client, creating it on first call.
// Initialization errors are returned on every call.
func (c *Client) GenAI() (*genai.Client, error) {
	return c.get()
}
