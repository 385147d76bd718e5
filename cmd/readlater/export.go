package main

import (
	"fmt"

	"github.com/fwojciec/readlater"
)

// Run executes the export command.
func (c *ExportCmd) Run(deps *Dependencies) error {
	article, err := findArticle(deps, c.ID)
	if err != nil {
		return err
	}

	path, err := deps.Exporter(c.Dir).Export(article)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", readlater.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Exported %q to %s\n", article.Title, path)
	return nil
}
