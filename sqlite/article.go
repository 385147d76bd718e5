package sqlite

import (
	"context"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/readlater"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ readlater.ArticleService = (*ArticleService)(nil)

const articleColumns = `id, owner_id, url, domain, title, excerpt, content, content_hash,
	image_url, images, refs, reading_time, saved_at, bookmarked, archived,
	folder_id, is_video, video_id`

// ArticleService implements readlater.ArticleService using SQLite.
type ArticleService struct {
	db *DB
}

// NewArticleService creates a new ArticleService.
func NewArticleService(db *DB) *ArticleService {
	return &ArticleService{db: db}
}

// hashContent computes xxHash of content and returns hex string.
func hashContent(content string) string {
	h := xxhash.Sum64String(content)
	b := make([]byte, 8)
	for i := range b {
		b[i] = byte(h >> (56 - 8*i))
	}
	return hex.EncodeToString(b)
}

// CreateArticle creates a new article.
func (s *ArticleService) CreateArticle(ctx context.Context, article *readlater.Article) error {
	if err := article.Validate(); err != nil {
		return err
	}

	images, err := json.Marshal(nonNil(article.Images))
	if err != nil {
		return readlater.WrapError(readlater.EINTERNAL, err, "encoding images")
	}
	refs, err := json.Marshal(nonNil(article.References))
	if err != nil {
		return readlater.WrapError(readlater.EINTERNAL, err, "encoding references")
	}

	id := uuid.New().String()
	savedAt := time.Now().UTC()
	hash := hashContent(article.Content)

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO articles (`+articleColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, article.OwnerID, article.URL, article.Domain, article.Title, article.Excerpt,
		article.Content, hash, article.ImageURL, string(images), string(refs),
		article.ReadingTime, formatTime(savedAt), article.Bookmarked, article.Archived,
		article.FolderID, article.IsVideo, article.VideoID)
	if err != nil {
		return err
	}

	article.ID = id
	article.SavedAt = savedAt
	article.ContentHash = hash
	return nil
}

// FindArticleByID retrieves an article by ID.
func (s *ArticleService) FindArticleByID(ctx context.Context, id string) (*readlater.Article, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+articleColumns+` FROM articles WHERE id = ?`, id)
	article, err := scanArticle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, readlater.Errorf(readlater.ENOTFOUND, "article not found")
	}
	if err != nil {
		return nil, err
	}
	return article, nil
}

// FindArticles retrieves articles matching the filter, newest first.
func (s *ArticleService) FindArticles(ctx context.Context, filter readlater.ArticleFilter) ([]*readlater.Article, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT " + articleColumns + " FROM articles WHERE 1=1")

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.OwnerID != nil {
		query.WriteString(" AND owner_id = ?")
		args = append(args, *filter.OwnerID)
	}
	if filter.URL != nil {
		query.WriteString(" AND url = ?")
		args = append(args, *filter.URL)
	}
	if filter.Archived != nil {
		query.WriteString(" AND archived = ?")
		args = append(args, *filter.Archived)
	}

	query.WriteString(" ORDER BY saved_at DESC, rowid DESC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var articles []*readlater.Article
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, article)
	}

	return articles, rows.Err()
}

// DeleteArticle permanently removes an article.
func (s *ArticleService) DeleteArticle(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM articles WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return readlater.Errorf(readlater.ENOTFOUND, "article not found")
	}

	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanArticle(row scanner) (*readlater.Article, error) {
	var a readlater.Article
	var images, refs, savedAt string

	if err := row.Scan(&a.ID, &a.OwnerID, &a.URL, &a.Domain, &a.Title, &a.Excerpt,
		&a.Content, &a.ContentHash, &a.ImageURL, &images, &refs, &a.ReadingTime,
		&savedAt, &a.Bookmarked, &a.Archived, &a.FolderID, &a.IsVideo, &a.VideoID); err != nil {
		return nil, err
	}

	var err error
	if a.SavedAt, err = parseRFC3339(savedAt, "saved_at"); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(images), &a.Images); err != nil {
		return nil, readlater.WrapError(readlater.EINTERNAL, err, "decoding images of article %s", a.ID)
	}
	if err := json.Unmarshal([]byte(refs), &a.References); err != nil {
		return nil, readlater.WrapError(readlater.EINTERNAL, err, "decoding references of article %s", a.ID)
	}
	return &a, nil
}

// nonNil makes sure empty lists are stored as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
