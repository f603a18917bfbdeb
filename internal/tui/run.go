package tui

import (
	"context"
	"io"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/roach88/shelf/internal/fetch"
	"github.com/roach88/shelf/internal/ledger"
	"github.com/roach88/shelf/internal/query"
	"github.com/roach88/shelf/internal/queryurl"
	"github.com/roach88/shelf/internal/session"
)

// Config is what Run needs to assemble a browsing session.
type Config struct {
	Source   fetch.Source
	Composer *queryurl.Composer
	Cart     *ledger.Ledger
	Initial  query.Descriptor
	Logger   *slog.Logger

	// Input and Output default to the process terminal.
	Input  io.Reader
	Output io.Writer
}

// Run starts the orchestrator loop and the Bubble Tea program and blocks
// until the user quits or ctx is done.
func Run(ctx context.Context, cfg Config) error {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// notify runs on the orchestrator loop goroutine, which is started
	// only after program is assigned.
	var program *tea.Program
	orch := fetch.New(cfg.Source,
		fetch.WithLogger(logger),
		fetch.WithNotify(func(st fetch.State) {
			program.Send(StateMsg{State: st})
		}),
	)

	sess := session.New(orch, cfg.Composer, cfg.Cart, cfg.Initial, session.WithLogger(logger))

	popts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}
	if cfg.Input != nil {
		popts = append(popts, tea.WithInput(cfg.Input))
	}
	if cfg.Output != nil {
		popts = append(popts, tea.WithOutput(cfg.Output))
	}
	program = tea.NewProgram(NewModel(ctx, sess), popts...)

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		if err := orch.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("fetch loop exited", "error", err)
		}
	}()

	gen := sess.Start()
	logger.Info("browser started", "generation", gen, "query", sess.Descriptor().String())

	_, err := program.Run()

	sess.Close()
	<-loopDone
	logger.Info("browser stopped", "cart_items", sess.CartItems())
	return err
}
