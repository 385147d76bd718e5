package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fwojciec/readlater"
	"google.golang.org/genai"
)

// DefaultExtractTimeout bounds a single structured extraction call.
const DefaultExtractTimeout = 90 * time.Second

// MaxHTMLChars is how much of a page's HTML is sent to the model.
const MaxHTMLChars = 100_000

// OriginalReferenceText labels the reference pointing back at the source.
const OriginalReferenceText = "Original article"

// TokenCounter counts model tokens in text.
type TokenCounter interface {
	CountTokens(ctx context.Context, text string) (int, error)
}

// Extraction is the structured object the model is asked to return.
type Extraction struct {
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	MainImageURL *string `json:"mainImageUrl"`
	Content      string  `json:"content"`
}

// Ensure Extractor implements readlater.Strategy at compile time.
var _ readlater.Strategy = (*Extractor)(nil)

// Extractor is an extraction strategy that fetches a page and asks Gemini
// for a schema-validated article object.
type Extractor struct {
	client    *Client
	fetcher   readlater.Fetcher
	model     string
	timeout   time.Duration
	counter   TokenCounter
	maxTokens int
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithModel sets the model used for extraction.
func WithModel(model string) Option {
	return func(e *Extractor) {
		e.model = model
	}
}

// WithTimeout bounds the model call. Fetching is bounded by the fetcher.
func WithTimeout(d time.Duration) Option {
	return func(e *Extractor) {
		e.timeout = d
	}
}

// WithTokenBudget shrinks the HTML excerpt until the prompt fits in
// maxTokens as counted by counter.
func WithTokenBudget(counter TokenCounter, maxTokens int) Option {
	return func(e *Extractor) {
		e.counter = counter
		e.maxTokens = maxTokens
	}
}

// NewExtractor creates a new Extractor.
func NewExtractor(client *Client, fetcher readlater.Fetcher, opts ...Option) *Extractor {
	e := &Extractor{
		client:  client,
		fetcher: fetcher,
		model:   DefaultModel,
		timeout: DefaultExtractTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name identifies the strategy.
func (e *Extractor) Name() string {
	return "gemini"
}

// Attempt fetches target and extracts it with the model.
func (e *Extractor) Attempt(ctx context.Context, target readlater.Target) readlater.Attempt {
	page, err := e.fetcher.Fetch(ctx, target.URL)
	if err != nil {
		return readlater.Failed(readlater.ENETWORK, err)
	}

	client, err := e.client.GenAI()
	if err != nil {
		return readlater.Failed(readlater.EINTERNAL, err)
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	prompt := FitPrompt(ctx, e.counter, e.maxTokens, target, page.HTML)
	result, err := client.Models.GenerateContent(ctx, e.model, genai.Text(prompt), BuildConfig())
	if err != nil {
		if ctx.Err() != nil {
			return readlater.Failed(readlater.ENETWORK, err)
		}
		return readlater.Failed(readlater.EINTERNAL, err)
	}
	if result == nil {
		return readlater.Failed(readlater.EINTERNAL, readlater.Errorf(readlater.EINTERNAL, "gemini returned nil result"))
	}

	extraction, err := ParseResponse(result.Text())
	if err != nil {
		return readlater.Failed(readlater.ESCHEMA, err)
	}
	return readlater.Succeeded(extraction.Draft(target))
}

// FitPrompt builds the prompt for target and, while counter reports more
// than maxTokens, shrinks the HTML excerpt and rebuilds it. Counting errors
// leave the prompt as it is.
func FitPrompt(ctx context.Context, counter TokenCounter, maxTokens int, target readlater.Target, html string) string {
	prompt := BuildPrompt(target, html)
	if counter == nil || maxTokens <= 0 {
		return prompt
	}
	excerpt := truncateRunes(html, MaxHTMLChars)
	for range 4 {
		n, err := counter.CountTokens(ctx, prompt)
		if err != nil || n <= maxTokens {
			return prompt
		}
		keep := len(excerpt) * maxTokens / n * 9 / 10
		excerpt = truncateBytes(excerpt, keep)
		prompt = BuildPrompt(target, excerpt)
	}
	return prompt
}

// BuildConfig returns the GenerateContentConfig for extraction calls. The
// response is constrained to the Extraction JSON schema.
func BuildConfig() *genai.GenerateContentConfig {
	temp := float32(0.1)
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{
				Text: "You extract the main article from web pages. Never translate: every field stays in the language of the source document.",
			}},
		},
		Temperature:      &temp,
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"title": {
					Type:        genai.TypeString,
					Description: "The article title.",
				},
				"description": {
					Type:        genai.TypeString,
					Description: "A short description of the article, at most 300 characters.",
				},
				"mainImageUrl": {
					Type:        genai.TypeString,
					Nullable:    genai.Ptr(true),
					Description: "The main image URL (og:image, twitter:image or the first large content image), made absolute using the page origin. Null if there is none.",
				},
				"content": {
					Type:        genai.TypeString,
					Description: "The full article body as clean Markdown: # headings, paragraphs separated by blank lines, **bold**, *italic*, - and 1. lists. No HTML.",
				},
			},
			Required:         []string{"title", "description", "mainImageUrl", "content"},
			PropertyOrdering: []string{"title", "description", "mainImageUrl", "content"},
		},
	}
}

// BuildPrompt builds the user prompt for target with at most MaxHTMLChars
// characters of html.
func BuildPrompt(target readlater.Target, html string) string {
	var sb strings.Builder
	sb.WriteString("Extract the main content of this web article.\n\n")
	fmt.Fprintf(&sb, "URL: %s\n", target.URL)
	fmt.Fprintf(&sb, "Origin: %s\n\n", target.Origin)
	sb.WriteString("IMPORTANT: keep the original language of the article. Do NOT translate anything.\n\n")
	sb.WriteString("Instructions:\n")
	sb.WriteString("1. Extract the title.\n")
	sb.WriteString("2. Extract a short description (at most 300 characters).\n")
	sb.WriteString("3. Find the main image in og:image, twitter:image or the first large <img>. ")
	fmt.Fprintf(&sb, "Turn /path into %s/path and //host/path into https://host/path.\n", target.Origin)
	sb.WriteString("4. Extract the complete content as Markdown. Leave out navigation, menus, footers and ads.\n\n")
	fmt.Fprintf(&sb, "HTML (first %d characters):\n", MaxHTMLChars)
	sb.WriteString(truncateRunes(html, MaxHTMLChars))
	return sb.String()
}

// ParseResponse decodes and validates the model's JSON response.
// Returns ESCHEMA if the response is not a valid Extraction.
func ParseResponse(text string) (*Extraction, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimSuffix(strings.TrimPrefix(text, "```"), "```")

	var e Extraction
	if err := json.Unmarshal([]byte(text), &e); err != nil {
		return nil, readlater.WrapError(readlater.ESCHEMA, err, "invalid extraction response")
	}
	if strings.TrimSpace(e.Title) == "" {
		return nil, readlater.Errorf(readlater.ESCHEMA, "extraction response has no title")
	}
	if strings.TrimSpace(e.Content) == "" {
		return nil, readlater.Errorf(readlater.ESCHEMA, "extraction response has no content")
	}
	return &e, nil
}

// Draft converts the extraction into a draft for target. A relative main
// image is resolved against the target URL.
func (e *Extraction) Draft(target readlater.Target) readlater.Draft {
	title := strings.TrimSpace(e.Title)
	draft := readlater.Draft{
		Title:      title,
		Excerpt:    truncateRunes(strings.TrimSpace(e.Description), readlater.MaxExcerptLength),
		Content:    e.Content,
		References: []readlater.ArticleReference{{Text: OriginalReferenceText, URL: target.URL}},
	}
	if e.MainImageURL != nil {
		if img := readlater.ResolveImageURL(*e.MainImageURL, target.URL); img != "" {
			draft.ImageURL = img
			draft.Images = []readlater.ArticleImage{{URL: img, Alt: title}}
		}
	}
	return draft
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// truncateBytes cuts s to at most n bytes without splitting a rune.
func truncateBytes(s string, n int) string {
	if n >= len(s) {
		return s
	}
	if n <= 0 {
		return ""
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
