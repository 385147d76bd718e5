package main

import (
	"fmt"

	"github.com/fwojciec/readlater"
)

// Run executes the list command.
func (c *ListCmd) Run(deps *Dependencies) error {
	articles, err := deps.Articles.FindArticles(deps.Ctx, readlater.ArticleFilter{
		OwnerID:  &deps.Owner,
		Archived: &c.Archived,
	})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", readlater.ErrorMessage(err))
		return err
	}

	if len(articles) == 0 {
		if c.Archived {
			fmt.Fprintln(deps.Stdout, "No archived articles.")
			return nil
		}
		fmt.Fprintln(deps.Stdout, "No articles saved. Use 'readlater add <url>' to save one.")
		return nil
	}

	for _, a := range articles {
		fmt.Fprintf(deps.Stdout, "%s  %s  %2d min  %s\n     %s\n",
			a.ID, a.SavedAt.Format("2006-01-02"), a.ReadingTime, a.Title, a.URL)
	}

	return nil
}
