package sqlite_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/fwojciec/readlater"
	"github.com/fwojciec/readlater/sqlite"
	"github.com/stretchr/testify/require"
)

// BenchmarkCreateArticle measures saving articles of typical size to a
// file-based database.
func BenchmarkCreateArticle(b *testing.B) {
	db := sqlite.NewDB(filepath.Join(b.TempDir(), "bench.db"))
	require.NoError(b, db.Open())
	defer db.Close()

	svc := sqlite.NewArticleService(db)
	ctx := context.Background()

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		a := &readlater.Article{
			OwnerID:     "bench",
			URL:         fmt.Sprintf("https://example.com/news/%d", i),
			Domain:      "example.com",
			Title:       fmt.Sprintf("Article %d", i),
			Content:     fmt.Sprintf("# Article %d\n\nLorem ipsum dolor sit amet, consectetur adipiscing elit.", i),
			Images:      []readlater.ArticleImage{{URL: "https://example.com/a.jpg"}},
			ReadingTime: 1,
		}
		if err := svc.CreateArticle(ctx, a); err != nil {
			b.Fatal(err)
		}
	}
}
