package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/shelf/internal/catalog"
	"github.com/roach88/shelf/internal/fetch"
	"github.com/roach88/shelf/internal/ledger"
	"github.com/roach88/shelf/internal/query"
	"github.com/roach88/shelf/internal/session"
)

// ProductsOptions holds flags for the products command.
type ProductsOptions struct {
	*RootOptions
	Category string
	Limit    int
	Skip     int
	SortBy   string
	Order    string
	Search   string
}

// ProductsResult is the output of the products command.
type ProductsResult struct {
	Query    query.Descriptor  `json:"query"`
	Search   string            `json:"search,omitempty"`
	Fetched  int               `json:"fetched"`
	Products []catalog.Product `json:"products"`
}

// NewProductsCommand creates the products command.
func NewProductsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProductsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "products",
		Short: "List one page of products",
		Long: `Fetch one page of products from the catalog and print it.

The query starts from the configured defaults; flags override them.
--search narrows the fetched page locally by title or category and never
changes the request.

Examples:
  shelf products
  shelf products --category smartphones --sort-by price --order desc
  shelf products --limit 50 --skip 50 --search phone --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProducts(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Category, "category", "", "category slug (\"all\" for every category)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "page size")
	cmd.Flags().IntVar(&opts.Skip, "skip", 0, "page offset")
	cmd.Flags().StringVar(&opts.SortBy, "sort-by", "", "sort key (title|price|rating)")
	cmd.Flags().StringVar(&opts.Order, "order", "", "sort direction (asc|desc)")
	cmd.Flags().StringVar(&opts.Search, "search", "", "local filter on title or category")

	return cmd
}

// descriptor merges the flags that were set over the configured defaults.
func (o *ProductsOptions) descriptor(cmd *cobra.Command) (query.Descriptor, error) {
	d := o.Config.Descriptor()
	flags := cmd.Flags()

	if flags.Changed("category") {
		d.Category = o.Category
	}
	if flags.Changed("limit") {
		d.Limit = o.Limit
	}
	if flags.Changed("skip") {
		d.Skip = o.Skip
	}
	if flags.Changed("sort-by") {
		k, err := query.ParseSortKey(o.SortBy)
		if err != nil {
			return d, err
		}
		d.SortBy = k
	}
	if flags.Changed("order") {
		order, err := query.ParseOrder(o.Order)
		if err != nil {
			return d, err
		}
		d.Order = order
	}
	return d, d.Validate()
}

func runProducts(ctx context.Context, opts *ProductsOptions, cmd *cobra.Command) error {
	out := opts.formatter(cmd)

	d, err := opts.descriptor(cmd)
	if err != nil {
		_ = out.Error(CodeUsage, err.Error(), nil)
		return reported(WrapExitError(ExitCommandError, "invalid query", err))
	}

	client := opts.client()
	orch := fetch.New(client, fetch.WithLogger(opts.Logger))
	go func() { _ = orch.Run(ctx) }()

	// The cart is not touched here; an in-memory ledger satisfies the session.
	sess := session.New(orch, client.Composer(), ledger.New(nil, nil), d, session.WithLogger(opts.Logger))
	defer sess.Close()

	out.VerboseLog("fetching %s", d.String())
	gen := sess.Start()

	st, err := orch.Await(ctx, gen)
	if err != nil && !errors.Is(err, fetch.ErrStopped) {
		return WrapExitError(ExitFailure, "fetch interrupted", err)
	}
	if st.Status != fetch.Success {
		_ = out.Error(CodeCatalog, fetch.UserMessage, nil)
		return reported(NewExitError(ExitFailure, fetch.UserMessage))
	}

	sess.SetSearch(opts.Search)
	visible := sess.Visible()
	if visible == nil {
		visible = []catalog.Product{}
	}

	return out.Success(ProductsResult{
		Query:    d,
		Search:   opts.Search,
		Fetched:  len(st.Products),
		Products: visible,
	})
}

// WriteText renders the product list as aligned columns.
func (r ProductsResult) WriteText(w io.Writer) error {
	fmt.Fprintf(w, "Query: %s\n", r.Query.String())
	if r.Search != "" {
		fmt.Fprintf(w, "Search: %q (%d of %d)\n", r.Search, len(r.Products), r.Fetched)
	}
	fmt.Fprintln(w)

	if len(r.Products) == 0 {
		fmt.Fprintln(w, "  (no products)")
		return nil
	}
	for _, p := range r.Products {
		fmt.Fprintf(w, "  %5d  %-40s %10s  %s\n", p.ID, truncate(p.Title, 40), catalog.FormatPrice(p.Price), p.Category)
	}
	return nil
}

// truncate shortens s to at most n runes, marking the cut with "…".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
