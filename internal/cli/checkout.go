package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/shelf/internal/catalog"
)

// CheckoutResult is the checkout summary.
type CheckoutResult struct {
	Items int    `json:"items"`
	Total string `json:"total"`
}

// WriteText renders the summary.
func (r CheckoutResult) WriteText(w io.Writer) error {
	if r.Items == 0 {
		fmt.Fprintln(w, "Cart is empty, nothing to check out")
		return nil
	}
	fmt.Fprintln(w, "=== Checkout ===")
	fmt.Fprintf(w, "  Items: %d\n", r.Items)
	fmt.Fprintf(w, "  Total: %s\n", r.Total)
	return nil
}

// NewCheckoutCommand creates the checkout command.
func NewCheckoutCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "checkout",
		Short: "Summarize the cart",
		Long: `Print the number of items in the cart and their total.

Checkout makes no network call and leaves the cart unchanged.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := opts.formatter(cmd)

			cart, closeFn := opts.openCart(cmd.Context())
			defer closeFn()

			s := cart.Summary()
			return out.Success(CheckoutResult{
				Items: s.Items,
				Total: catalog.FormatPrice(s.Total),
			})
		},
	}
}
