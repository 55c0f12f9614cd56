package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tabrun/tabfetch/internal/clock/system"
	"github.com/tabrun/tabfetch/internal/config"
	"github.com/tabrun/tabfetch/internal/dispatcher"
	"github.com/tabrun/tabfetch/internal/fetcher/collyfetch"
	"github.com/tabrun/tabfetch/internal/logging"
	"github.com/tabrun/tabfetch/internal/metrics"
	"github.com/tabrun/tabfetch/internal/parser/csvparse"
	"github.com/tabrun/tabfetch/internal/processor"
	"github.com/tabrun/tabfetch/internal/progress"
	"github.com/tabrun/tabfetch/internal/progress/sinks"
	"github.com/tabrun/tabfetch/internal/server"
)

// newRunCmd creates the 'run' subcommand, which executes one full
// pipeline run: preload, drain, cancel, summary.
func newRunCmd() *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch and parse all configured locators once",
		Long: `Preloads the shared queue with the configured locator list, drains it
through the worker pool, and exits once every item is marked done.
Individual fetch or parse failures are logged and do not affect the
exit status. Use --workers=1 for a sequential run.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPipeline(cmd.Context(), workers)
		},
	}

	cmd.Flags().IntVar(&workers, "workers", 0, "worker pool size (overrides pool.workers)")

	return cmd
}

func runPipeline(ctx context.Context, workersOverride int) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if workersOverride > 0 {
		cfg.Pool.Workers = workersOverride
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	metrics.Init()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	promSink, err := sinks.NewPrometheusSink(prometheus.DefaultRegisterer)
	if err != nil {
		return fmt.Errorf("build prometheus sink: %w", err)
	}
	hub := progress.NewHub(progress.Config{Logger: logger},
		sinks.NewLogSink(logger.Named("progress")),
		promSink,
	)
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := hub.Close(closeCtx); err != nil {
			logger.Warn("progress hub close failed", zap.Error(err))
		}
	}()

	if cfg.Server.Enabled {
		obs := server.New(cfg.Server.Port, logger)
		obs.Start()
		defer func() {
			shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := obs.Shutdown(shutCtx); err != nil {
				logger.Warn("observability shutdown failed", zap.Error(err))
			}
		}()
	}

	fetcher := collyfetch.New(collyfetch.Config{
		UserAgent: cfg.HTTP.UserAgent,
		Timeout:   cfg.FetchTimeout(),
	})
	defer fetcher.Close()

	d := dispatcher.New(
		fetcher,
		csvparse.New(),
		system.New(),
		hub,
		dispatcher.Config{
			Workers: cfg.Pool.Workers,
			Processor: processor.Config{
				ParseDelay:    cfg.ParseDelay(),
				PreviewFields: cfg.Report.PreviewFields,
				Options:       cfg.Parse,
			},
		},
		logger,
	)

	if err := d.Run(ctx, cfg.Locators()); err != nil {
		return fmt.Errorf("pipeline run: %w", err)
	}
	return nil
}
