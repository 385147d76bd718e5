package mock

import (
	"context"

	"github.com/fwojciec/readlater"
)

var _ readlater.ArticleService = (*ArticleService)(nil)

// ArticleService is a mock implementation of readlater.ArticleService.
type ArticleService struct {
	CreateArticleFn   func(ctx context.Context, article *readlater.Article) error
	FindArticleByIDFn func(ctx context.Context, id string) (*readlater.Article, error)
	FindArticlesFn    func(ctx context.Context, filter readlater.ArticleFilter) ([]*readlater.Article, error)
	DeleteArticleFn   func(ctx context.Context, id string) error
}

func (s *ArticleService) CreateArticle(ctx context.Context, article *readlater.Article) error {
	return s.CreateArticleFn(ctx, article)
}

func (s *ArticleService) FindArticleByID(ctx context.Context, id string) (*readlater.Article, error) {
	return s.FindArticleByIDFn(ctx, id)
}

func (s *ArticleService) FindArticles(ctx context.Context, filter readlater.ArticleFilter) ([]*readlater.Article, error) {
	return s.FindArticlesFn(ctx, filter)
}

func (s *ArticleService) DeleteArticle(ctx context.Context, id string) error {
	return s.DeleteArticleFn(ctx, id)
}

var _ readlater.ArticleExporter = (*ArticleExporter)(nil)

// ArticleExporter is a mock implementation of readlater.ArticleExporter.
type ArticleExporter struct {
	ExportFn func(article *readlater.Article) (string, error)
}

func (e *ArticleExporter) Export(article *readlater.Article) (string, error) {
	return e.ExportFn(article)
}
