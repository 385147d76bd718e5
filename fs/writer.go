// Package fs exports saved articles as Markdown files.
package fs

import (
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/fwojciec/readlater"
	"github.com/gabriel-vasile/mimetype"
	"github.com/vincent-petithory/dataurl"
)

// maxSlugLength bounds generated file names, in runes.
const maxSlugLength = 80

// Slug converts an article URL path to a file name stem.
// Example: https://example.com/news/2024/bike-lanes.html → news-2024-bike-lanes
func Slug(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}

	path := strings.Trim(u.Path, "/")
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm", ".php", ".asp", ".aspx":
		path = strings.TrimSuffix(path, filepath.Ext(path))
	}

	slug := slugify(path)
	if slug == "" {
		return "index", nil
	}
	return slug, nil
}

// slugify lowercases s and collapses every run of characters that are not
// letters or digits into a single dash.
func slugify(s string) string {
	var b strings.Builder
	dash := false
	n := 0
	for _, r := range strings.ToLower(s) {
		if n >= maxSlugLength {
			break
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			n++
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
			n++
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// FormatArticle formats an article with YAML front matter. image is the
// value written to the image field; an empty image omits it.
func FormatArticle(a *readlater.Article, image string) string {
	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("source: ")
	b.WriteString(a.URL)
	b.WriteString("\ntitle: ")
	b.WriteString(strconv.Quote(a.Title))
	b.WriteString("\nsaved: ")
	b.WriteString(a.SavedAt.Format("2006-01-02"))
	b.WriteString("\nreading_time: ")
	b.WriteString(strconv.Itoa(a.ReadingTime))
	if image != "" {
		b.WriteString("\nimage: ")
		b.WriteString(image)
	}
	b.WriteString("\n---\n\n")
	b.WriteString(a.Content)
	if !strings.HasSuffix(a.Content, "\n") {
		b.WriteString("\n")
	}
	return b.String()
}

// Ensure Writer implements readlater.ArticleExporter at compile time.
var _ readlater.ArticleExporter = (*Writer)(nil)

// Writer writes articles as Markdown files under a base directory, one
// subdirectory per domain.
type Writer struct {
	baseDir string
}

// NewWriter creates a Writer rooted at baseDir.
func NewWriter(baseDir string) *Writer {
	return &Writer{baseDir: baseDir}
}

// Path returns where article would be written.
func (w *Writer) Path(article *readlater.Article) (string, error) {
	if article == nil || article.URL == "" {
		return "", readlater.Errorf(readlater.EINVALID, "article URL required")
	}

	var slug string
	if article.IsVideo && article.VideoID != "" {
		slug = "video-" + slugify(article.VideoID)
	} else {
		s, err := Slug(article.URL)
		if err != nil {
			return "", readlater.WrapError(readlater.EINVALID, err, "invalid article URL")
		}
		slug = s
	}

	return filepath.Join(w.baseDir, domainDir(article), slug+".md"), nil
}

// Export writes article to <dir>/<domain>/<slug>.md and returns the path.
// An inline generated image is written next to the Markdown file.
func (w *Writer) Export(article *readlater.Article) (string, error) {
	path, err := w.Path(article)
	if err != nil {
		return "", err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", readlater.WrapError(readlater.EINTERNAL, err, "creating %s", dir)
	}

	image := article.ImageURL
	if strings.HasPrefix(image, "data:") {
		name, err := writeInlineImage(strings.TrimSuffix(path, ".md"), image)
		if err != nil {
			return "", err
		}
		image = name
	}

	if err := writeFileAtomic(path, []byte(FormatArticle(article, image))); err != nil {
		return "", readlater.WrapError(readlater.EINTERNAL, err, "writing %s", path)
	}
	return path, nil
}

// writeInlineImage decodes a data URL and writes it to stem plus the
// extension sniffed from its bytes. It returns the file's base name.
func writeInlineImage(stem, raw string) (string, error) {
	du, err := dataurl.DecodeString(raw)
	if err != nil {
		return "", readlater.WrapError(readlater.EINVALID, err, "decoding inline image")
	}

	path := stem + mimetype.Detect(du.Data).Extension()
	if err := writeFileAtomic(path, du.Data); err != nil {
		return "", readlater.WrapError(readlater.EINTERNAL, err, "writing %s", path)
	}
	return filepath.Base(path), nil
}

// writeFileAtomic writes data to a temp file in the target directory and
// renames it into place.
func writeFileAtomic(path string, data []byte) error {
	f, err := os.CreateTemp(filepath.Dir(path), ".export-*")
	if err != nil {
		return err
	}
	tmp := f.Name()

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

func domainDir(article *readlater.Article) string {
	domain := article.Domain
	if domain == "" {
		if u, err := url.Parse(article.URL); err == nil {
			domain = u.Hostname()
		}
	}
	domain = strings.TrimPrefix(strings.ToLower(domain), "www.")

	var b strings.Builder
	for _, r := range domain {
		if r == '.' || r == '-' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	d := strings.Trim(b.String(), ".")
	if d == "" {
		return "unknown"
	}
	return d
}
