package cli

import (
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/roach88/shelf/internal/tui"
)

// NewBrowseCommand creates the browse command.
func NewBrowseCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse the catalog interactively",
		Long: `Open the interactive catalog browser.

Logs are written to <data-dir>/shelf.log so they do not draw over the
screen. The cart is loaded from the configured store and saved after every
change.

Example:
  shelf browse
  shelf browse --store badger --verbose`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowse(opts, cmd)
		},
	}
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func runBrowse(opts *RootOptions, cmd *cobra.Command) error {
	if !isTerminal(cmd.OutOrStdout()) {
		return NewExitError(ExitCommandError, "browse needs an interactive terminal; use the products and cart commands instead")
	}

	logFile, err := openLogFile(opts.Config.LogPath())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open log file", err)
	}
	defer logFile.Close()

	// Everything from here on logs to the file
	opts.Logger = newLogger(logFile, "text", opts.level())
	slog.SetDefault(opts.Logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cart, closeFn := opts.openCart(ctx)
	defer func() {
		if cerr := closeFn(); cerr != nil {
			opts.Logger.Warn("closing cart store", "error", cerr)
		}
	}()

	client := opts.client()
	err = tui.Run(ctx, tui.Config{
		Source:   client,
		Composer: client.Composer(),
		Cart:     cart,
		Initial:  opts.Config.Descriptor(),
		Logger:   opts.Logger,
		Input:    cmd.InOrStdin(),
		Output:   cmd.OutOrStdout(),
	})
	if err != nil && ctx.Err() == nil {
		return WrapExitError(ExitFailure, "browser failed", err)
	}
	return nil
}
