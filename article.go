package readlater

import (
	"context"
	"time"
)

// MaxExcerptLength is the maximum excerpt length in characters.
const MaxExcerptLength = 300

// ArticleImage is an image attached to an article.
// URL is absolute or an inline data URL once the pipeline has run.
type ArticleImage struct {
	URL     string `json:"url"`
	Alt     string `json:"alt,omitempty"`
	Caption string `json:"caption,omitempty"`
}

// ArticleReference is a link cited by an article.
type ArticleReference struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

// Draft is the in-memory result of the extraction pipeline before it is
// persisted. Content is Markdown; Excerpt is plain text.
type Draft struct {
	Title      string             `json:"title"`
	Excerpt    string             `json:"excerpt"`
	Content    string             `json:"content"`
	ImageURL   string             `json:"imageUrl,omitempty"`
	Images     []ArticleImage     `json:"images"`
	References []ArticleReference `json:"references"`
}

// Article represents a saved article.
type Article struct {
	ID          string             `json:"id"`
	OwnerID     string             `json:"ownerId"`
	URL         string             `json:"url"`
	Domain      string             `json:"domain"`
	Title       string             `json:"title"`
	Excerpt     string             `json:"excerpt"`
	Content     string             `json:"content"`
	ContentHash string             `json:"contentHash"`
	ImageURL    string             `json:"imageUrl,omitempty"`
	Images      []ArticleImage     `json:"images"`
	References  []ArticleReference `json:"references"`
	ReadingTime int                `json:"readingTime"`
	SavedAt     time.Time          `json:"savedAt"`
	Bookmarked  bool               `json:"bookmarked"`
	Archived    bool               `json:"archived"`
	FolderID    string             `json:"folderId,omitempty"`
	IsVideo     bool               `json:"isVideo"`
	VideoID     string             `json:"videoId,omitempty"`
}

// Validate returns an error if the article contains invalid fields.
func (a *Article) Validate() error {
	if a.OwnerID == "" {
		return Errorf(EINVALID, "article owner ID required")
	}
	if a.URL == "" {
		return Errorf(EINVALID, "article URL required")
	}
	if a.Title == "" {
		return Errorf(EINVALID, "article title required")
	}
	if a.ReadingTime < 1 {
		return Errorf(EINVALID, "article reading time must be at least one minute")
	}
	if a.IsVideo && a.VideoID == "" {
		return Errorf(EINVALID, "video article requires a video ID")
	}
	return nil
}

// ArticleService represents a service for managing articles.
type ArticleService interface {
	// CreateArticle creates a new article. The ID, SavedAt and ContentHash
	// fields are set by the implementation.
	CreateArticle(ctx context.Context, article *Article) error

	// FindArticleByID retrieves an article by ID.
	// Returns ENOTFOUND if article does not exist.
	FindArticleByID(ctx context.Context, id string) (*Article, error)

	// FindArticles retrieves articles matching the filter, newest first.
	FindArticles(ctx context.Context, filter ArticleFilter) ([]*Article, error)

	// DeleteArticle permanently removes an article.
	// Returns ENOTFOUND if article does not exist.
	DeleteArticle(ctx context.Context, id string) error
}

// ArticleFilter represents a filter for FindArticles.
type ArticleFilter struct {
	ID       *string `json:"id"`
	OwnerID  *string `json:"ownerId"`
	URL      *string `json:"url"`
	Archived *bool   `json:"archived"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// ArticleExporter writes an article somewhere outside the record store.
type ArticleExporter interface {
	// Export writes article and returns where it was written.
	Export(article *Article) (string, error)
}
