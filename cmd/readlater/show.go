package main

import (
	"fmt"
	"strings"

	"github.com/fwojciec/readlater"
)

// Run executes the show command.
func (c *ShowCmd) Run(deps *Dependencies) error {
	article, err := findArticle(deps, c.ID)
	if err != nil {
		return err
	}

	fmt.Fprintf(deps.Stdout, "%s\n%s\n", article.Title, article.URL)
	fmt.Fprintf(deps.Stdout, "Saved %s, %d min read\n", article.SavedAt.Format("2006-01-02"), article.ReadingTime)
	switch {
	case strings.HasPrefix(article.ImageURL, "data:"):
		fmt.Fprintln(deps.Stdout, "Image: generated (use 'readlater export' to save it)")
	case article.ImageURL != "":
		fmt.Fprintf(deps.Stdout, "Image: %s\n", article.ImageURL)
	}
	fmt.Fprintf(deps.Stdout, "\n%s\n", article.Content)

	if len(article.References) > 0 {
		fmt.Fprintln(deps.Stdout, "\nReferences:")
		for _, ref := range article.References {
			fmt.Fprintf(deps.Stdout, "  - %s: %s\n", ref.Text, ref.URL)
		}
	}

	return nil
}

// findArticle looks up id within the configured owner's articles. Articles
// of other owners are reported as not found.
func findArticle(deps *Dependencies, id string) (*readlater.Article, error) {
	article, err := deps.Articles.FindArticleByID(deps.Ctx, id)
	if err == nil && article.OwnerID != deps.Owner {
		err = readlater.Errorf(readlater.ENOTFOUND, "article %q not found", id)
	}
	if err != nil {
		if readlater.ErrorCode(err) == readlater.ENOTFOUND {
			fmt.Fprintf(deps.Stderr, "error: article %q not found. Use 'readlater list' to see saved articles.\n", id)
		} else {
			fmt.Fprintf(deps.Stderr, "error: %s\n", readlater.ErrorMessage(err))
		}
		return nil, err
	}
	return article, nil
}
