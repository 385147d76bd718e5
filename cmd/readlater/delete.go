package main

import (
	"fmt"

	"github.com/fwojciec/readlater"
)

// Run executes the delete command.
func (c *DeleteCmd) Run(deps *Dependencies) error {
	if !c.Force {
		fmt.Fprintf(deps.Stderr, "error: use --force to confirm deletion\n")
		return readlater.Errorf(readlater.EINVALID, "use --force to confirm deletion")
	}

	article, err := findArticle(deps, c.ID)
	if err != nil {
		return err
	}

	if err := deps.Articles.DeleteArticle(deps.Ctx, article.ID); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", readlater.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Deleted %q\n", article.Title)
	return nil
}
