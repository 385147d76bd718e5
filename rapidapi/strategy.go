// Package rapidapi implements an extraction strategy backed by a hosted
// article extraction API on RapidAPI.
package rapidapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fwojciec/readlater"
	"golang.org/x/time/rate"
)

// DefaultHost is the RapidAPI host of the article extraction API.
const DefaultHost = "article-extractor-and-summarizer.p.rapidapi.com"

// DefaultTimeout bounds a single extraction request.
const DefaultTimeout = 30 * time.Second

// DefaultRateLimit is the request rate allowed by the smallest API plan.
const DefaultRateLimit = rate.Limit(1)

// maxResponseSize caps the decoded response body.
const maxResponseSize = 16 << 20

// Ensure Strategy implements readlater.Strategy at compile time.
var _ readlater.Strategy = (*Strategy)(nil)

// Strategy extracts articles by asking the extraction API for a URL.
type Strategy struct {
	apiKey     string
	host       string
	baseURL    string
	timeout    time.Duration
	limiter    *rate.Limiter
	normalizer readlater.Normalizer
	client     *http.Client
}

// Option configures a Strategy.
type Option func(*Strategy)

// WithHost sets the RapidAPI host. The request goes to https://<host>
// unless WithBaseURL is also given.
func WithHost(host string) Option {
	return func(s *Strategy) {
		s.host = host
	}
}

// WithBaseURL overrides the endpoint base URL.
func WithBaseURL(baseURL string) Option {
	return func(s *Strategy) {
		s.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithTimeout bounds a single request, including time spent waiting for
// the rate limiter.
func WithTimeout(d time.Duration) Option {
	return func(s *Strategy) {
		s.timeout = d
	}
}

// WithRateLimit sets the sustained request rate and burst size.
func WithRateLimit(r rate.Limit, burst int) Option {
	return func(s *Strategy) {
		s.limiter = rate.NewLimiter(r, burst)
	}
}

// NewStrategy creates a Strategy authenticating with apiKey. HTML returned
// by the API is converted to Markdown with normalizer.
func NewStrategy(apiKey string, normalizer readlater.Normalizer, opts ...Option) *Strategy {
	s := &Strategy{
		apiKey:     strings.TrimSpace(apiKey),
		host:       DefaultHost,
		timeout:    DefaultTimeout,
		limiter:    rate.NewLimiter(DefaultRateLimit, 1),
		normalizer: normalizer,
		client:     &http.Client{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.baseURL == "" {
		s.baseURL = "https://" + s.host
	}
	return s
}

// Name identifies the strategy.
func (s *Strategy) Name() string {
	return "rapidapi"
}

// Attempt queries the extraction API for target.
func (s *Strategy) Attempt(ctx context.Context, target readlater.Target) readlater.Attempt {
	if s.apiKey == "" {
		return readlater.Failed(readlater.EINVALID, readlater.Errorf(readlater.EINVALID, "RapidAPI credentials not configured"))
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.query(ctx, target.URL)
	if err != nil {
		return readlater.Failed(readlater.ENETWORK, err)
	}

	draft, err := s.draft(resp, target)
	if err != nil {
		return readlater.Failed(readlater.ESCHEMA, err)
	}
	return readlater.Succeeded(draft)
}

func (s *Strategy) query(ctx context.Context, rawURL string) (*Response, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, readlater.WrapError(readlater.ENETWORK, err, "extraction API rate limit")
	}

	endpoint := s.baseURL + "/extract?" + url.Values{"url": {rawURL}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, readlater.WrapError(readlater.EINVALID, err, "building extraction API request")
	}
	req.Header.Set("X-RapidAPI-Key", s.apiKey)
	req.Header.Set("X-RapidAPI-Host", s.host)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, readlater.WrapError(readlater.ENETWORK, err, "extraction API request for %s", rawURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, readlater.HTTPErrorf(resp.StatusCode, "RapidAPI error: %d", resp.StatusCode)
	}

	var out Response
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&out); err != nil {
		if ctx.Err() != nil {
			return nil, readlater.WrapError(readlater.ENETWORK, err, "reading extraction API response")
		}
		return nil, readlater.WrapError(readlater.ESCHEMA, err, "decoding extraction API response")
	}
	return &out, nil
}

// draft maps the API response onto a draft. HTML content takes precedence
// over plain text and is converted to Markdown.
func (s *Strategy) draft(resp *Response, target readlater.Target) (readlater.Draft, error) {
	content := firstNonEmpty(resp.Text, resp.Content)
	if html := firstNonEmpty(resp.HTML, resp.ContentHTML); html != "" {
		content = s.normalizer.Normalize(html)
	}
	if strings.TrimSpace(content) == "" {
		return readlater.Draft{}, readlater.Errorf(readlater.ESCHEMA, "extraction API returned no content for %s", target.URL)
	}

	title := strings.TrimSpace(resp.Title)
	image := strings.TrimSpace(resp.Image)

	var images []readlater.ArticleImage
	if image != "" {
		alt := title
		if alt == "" {
			alt = "Article image"
		}
		images = append(images, readlater.ArticleImage{URL: image, Alt: alt})
	}
	for _, img := range resp.Images {
		if img.URL != "" && img.URL != image {
			images = append(images, readlater.ArticleImage{URL: img.URL, Alt: "Article image", Caption: img.Caption})
		}
	}

	refs := []readlater.ArticleReference{{Text: "Original article", URL: target.URL}}
	for _, link := range resp.Links {
		if link.URL != "" && link.Text != "" && link.URL != target.URL {
			refs = append(refs, readlater.ArticleReference{Text: link.Text, URL: link.URL})
		}
	}

	return readlater.Draft{
		Title:      title,
		Excerpt:    strings.TrimSpace(firstNonEmpty(resp.Excerpt, resp.Description)),
		Content:    content,
		ImageURL:   image,
		Images:     images,
		References: refs,
	}, nil
}

// Response is the extraction API payload. Every field is optional and
// image entries may be plain strings or objects.
type Response struct {
	Title       string  `json:"title"`
	Text        string  `json:"text"`
	Content     string  `json:"content"`
	HTML        string  `json:"html"`
	ContentHTML string  `json:"content_html"`
	Excerpt     string  `json:"excerpt"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	Images      []Image `json:"images"`
	Links       []Link  `json:"links"`
}

// Image is an image entry of Response.
type Image struct {
	URL     string
	Caption string
}

// UnmarshalJSON accepts "url", {"url": ...} or {"src": ...}. Entries of any
// other shape decode to an empty Image.
func (img *Image) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		img.URL = strings.TrimSpace(s)
		return nil
	}
	var obj struct {
		URL     string `json:"url"`
		Src     string `json:"src"`
		Caption string `json:"caption"`
	}
	if err := json.Unmarshal(data, &obj); err == nil {
		img.URL = strings.TrimSpace(firstNonEmpty(obj.URL, obj.Src))
		img.Caption = strings.TrimSpace(obj.Caption)
	}
	return nil
}

// Link is a link entry of Response.
type Link struct {
	Text string
	URL  string
}

// UnmarshalJSON accepts {"text", "url"} or {"text", "href"} objects.
// Entries of any other shape decode to an empty Link.
func (l *Link) UnmarshalJSON(data []byte) error {
	var obj struct {
		Text string `json:"text"`
		URL  string `json:"url"`
		Href string `json:"href"`
	}
	if err := json.Unmarshal(data, &obj); err == nil {
		l.Text = strings.TrimSpace(obj.Text)
		l.URL = strings.TrimSpace(firstNonEmpty(obj.URL, obj.Href))
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
