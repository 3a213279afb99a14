package cli

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/sniper/internal/bidding"
	"github.com/roach88/sniper/internal/service"
)

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the bidding engine",
		Long: `Start the bidding engine as a log follower and run until
interrupted or until a service loop fails.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(rootOpts)
		},
	}
}

func runRun(opts *RootOptions) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}

	level := cfg.SlogLevel()
	if opts.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	b, err := openBackend(cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	engine := bidding.NewEngine(b.states, b.log, logger)
	control := service.NewControl(logger)
	follower := control.SpawnLogFollower(b.conn, b.tracker, b.log, engine,
		service.WithBatchSize(cfg.ReadBatch),
		service.WithReadTimeout(cfg.PollTimeout()),
	)

	logger.Info("sniper running", "database", cfg.Database)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)

	select {
	case s := <-sig:
		logger.Info("shutting down", "signal", s.String())
		control.Stop()
	case <-follower.Done():
		// The loop stopped on its own; Join surfaces the failure.
	}

	return follower.Join()
}
