package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/shelf/internal/catalog"
	"github.com/roach88/shelf/internal/catalogapi"
	"github.com/roach88/shelf/internal/ledger"
)

// CartResult is the cart as printed by every cart subcommand.
type CartResult struct {
	Lines []CartLineView `json:"lines"`
	Items int            `json:"items"`
	Total string         `json:"total"`
}

// CartLineView is one cart line with its rounded subtotal.
type CartLineView struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Price    string `json:"price"`
	Qty      int    `json:"qty"`
	Subtotal string `json:"subtotal"`
}

func newCartResult(l *ledger.Ledger) CartResult {
	lines := l.Lines()
	views := make([]CartLineView, 0, len(lines))
	for _, line := range lines {
		views = append(views, CartLineView{
			ID:       line.ID,
			Title:    line.Title,
			Price:    catalog.FormatPrice(line.Price),
			Qty:      line.Qty,
			Subtotal: catalog.FormatPrice(line.Subtotal()),
		})
	}
	return CartResult{
		Lines: views,
		Items: l.TotalItems(),
		Total: catalog.FormatPrice(l.TotalPrice()),
	}
}

// WriteText renders the cart as aligned columns with a total line.
func (r CartResult) WriteText(w io.Writer) error {
	if len(r.Lines) == 0 {
		fmt.Fprintln(w, "Cart is empty")
		return nil
	}
	for _, l := range r.Lines {
		fmt.Fprintf(w, "  %5d  %-40s %10s x %-3d %10s\n", l.ID, truncate(l.Title, 40), l.Price, l.Qty, l.Subtotal)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Items: %d\n", r.Items)
	fmt.Fprintf(w, "Total: %s\n", r.Total)
	return nil
}

// NewCartCommand creates the cart command and its subcommands.
func NewCartCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Inspect and edit the persistent cart",
		Long: `Inspect and edit the cart kept in the configured store.

Examples:
  shelf cart show
  shelf cart add 12
  shelf cart qty 12 --delta -1
  shelf cart remove 12
  shelf cart clear`,
	}

	cmd.AddCommand(newCartShowCommand(opts))
	cmd.AddCommand(newCartAddCommand(opts))
	cmd.AddCommand(newCartRemoveCommand(opts))
	cmd.AddCommand(newCartQtyCommand(opts))
	cmd.AddCommand(newCartClearCommand(opts))

	return cmd
}

// withCart opens the cart, runs fn and prints the resulting cart.
func withCart(opts *RootOptions, cmd *cobra.Command, fn func(ctx context.Context, cart *ledger.Ledger) error) error {
	ctx := cmd.Context()
	out := opts.formatter(cmd)

	cart, closeFn := opts.openCart(ctx)
	defer func() {
		if cerr := closeFn(); cerr != nil {
			opts.Logger.Warn("closing cart store", "error", cerr)
		}
	}()

	if fn != nil {
		if err := fn(ctx, cart); err != nil {
			return err
		}
	}
	return out.Success(newCartResult(cart))
}

// saved logs a ledger write failure and drops it. The change stays applied
// to the in-memory cart that is printed, but it is not on disk.
func saved(logger *slog.Logger, op string, err error) error {
	if err != nil {
		logger.Warn("cart change was not saved", "op", op, "error", err)
	}
	return nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, NewExitError(ExitCommandError, fmt.Sprintf("invalid product id %q", s))
	}
	return id, nil
}

func newCartShowCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show",
		Short:         "Print the cart",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCart(opts, cmd, nil)
		},
	}
}

func newCartAddCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <product-id>",
		Short: "Add one unit of a product",
		Long: `Look the product up in the catalog and add one unit of it to the cart.
Adding a product already in the cart increases its quantity.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			out := opts.formatter(cmd)

			p, err := opts.client().Product(cmd.Context(), id)
			if catalogapi.IsNotFound(err) {
				_ = out.Error(CodeNotFound, fmt.Sprintf("product %d not found", id), nil)
				return reported(NewExitError(ExitCommandError, fmt.Sprintf("product %d not found", id)))
			}
			if err != nil {
				_ = out.Error(CodeCatalog, "could not load product", nil)
				return reported(WrapExitError(ExitFailure, "could not load product", err))
			}

			return withCart(opts, cmd, func(ctx context.Context, cart *ledger.Ledger) error {
				out.VerboseLog("adding %d %q", p.ID, p.Title)
				return saved(opts.Logger, "add", cart.Add(ctx, p))
			})
		},
	}
}

func newCartRemoveCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "remove <product-id>",
		Short:         "Remove a product's line",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withCart(opts, cmd, func(ctx context.Context, cart *ledger.Ledger) error {
				return saved(opts.Logger, "remove", cart.Remove(ctx, id))
			})
		},
	}
}

func newCartQtyCommand(opts *RootOptions) *cobra.Command {
	var delta int

	cmd := &cobra.Command{
		Use:   "qty <product-id>",
		Short: "Change a line's quantity",
		Long: `Change a line's quantity by --delta. The quantity never drops below 1;
use "cart remove" to delete a line.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			out := opts.formatter(cmd)
			return withCart(opts, cmd, func(ctx context.Context, cart *ledger.Ledger) error {
				if _, ok := cart.Line(id); !ok {
					_ = out.Error(CodeNotFound, fmt.Sprintf("product %d is not in the cart", id), nil)
					return reported(NewExitError(ExitCommandError, fmt.Sprintf("product %d is not in the cart", id)))
				}
				return saved(opts.Logger, "qty", cart.ChangeQty(ctx, id, delta))
			})
		},
	}

	cmd.Flags().IntVar(&delta, "delta", 1, "amount to add (negative to subtract)")
	return cmd
}

func newCartClearCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "clear",
		Short:         "Empty the cart",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCart(opts, cmd, func(ctx context.Context, cart *ledger.Ledger) error {
				return saved(opts.Logger, "clear", cart.Clear(ctx))
			})
		},
	}
}
