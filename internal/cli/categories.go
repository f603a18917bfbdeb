package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/shelf/internal/catalog"
)

// CategoriesResult is the output of the categories command.
type CategoriesResult struct {
	Categories []string `json:"categories"`
}

// NewCategoriesCommand creates the categories command.
func NewCategoriesCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List catalog categories",
		Long: `List the catalog's category slugs, "all" first.

Examples:
  shelf categories
  shelf categories --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := opts.formatter(cmd)

			names, err := opts.client().Categories(cmd.Context())
			if err != nil {
				opts.Logger.Warn("category list failed", "error", err)
				_ = out.Error(CodeCatalog, "could not load categories", nil)
				return reported(WrapExitError(ExitFailure, "could not load categories", err))
			}
			return out.Success(CategoriesResult{Categories: catalog.CategoryList(names)})
		},
	}
}

// WriteText prints one category per line.
func (r CategoriesResult) WriteText(w io.Writer) error {
	for _, c := range r.Categories {
		fmt.Fprintln(w, c)
	}
	return nil
}
