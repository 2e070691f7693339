package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/dogebot/bot"
	"github.com/rustyeddy/dogebot/broker/bybit"
	"github.com/rustyeddy/dogebot/config"
	"github.com/rustyeddy/dogebot/executor"
	"github.com/rustyeddy/dogebot/fees"
	"github.com/rustyeddy/dogebot/indicators"
	"github.com/rustyeddy/dogebot/ledger"
	"github.com/rustyeddy/dogebot/metrics"
	"github.com/rustyeddy/dogebot/notify"
	"github.com/rustyeddy/dogebot/position"
	"github.com/rustyeddy/dogebot/strategies"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the trading loop from a config file",
	Long: `Run the polling trade loop using settings from a configuration file.

The config file specifies the symbol, fee schedule, strategy thresholds,
and ledger locations. With dry_run set, orders are simulated and only the
ledger is written.

Example:
  dogebot run --config dogebot.yaml`,
	RunE: runRun,
}

var runConfigPath string

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to config file (YAML or JSON) (required)")
	runCmd.MarkFlagRequired("config")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(runConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(log)

	fmt.Printf("Running dogebot with config: %s\n", runConfigPath)
	fmt.Printf("  Symbol: %s (dry_run=%v, interval=%s)\n", cfg.Symbol, cfg.DryRun, cfg.PollInterval)
	fmt.Printf("  Balance: %.6f (virtual)\n", cfg.Account.StartingBalance)
	fmt.Printf("  Ledger: %s\n", cfg.Ledger.Dir)
	fmt.Println()

	var mirror *ledger.SQLite
	if cfg.Ledger.SQLitePath != "" {
		mirror, err = ledger.NewSQLite(cfg.Ledger.SQLitePath)
		if err != nil {
			return fmt.Errorf("open sqlite mirror: %w", err)
		}
		defer mirror.Close()
	}

	led, err := ledger.New(ledger.Options{
		Dir:             cfg.Ledger.Dir,
		Symbol:          cfg.Symbol,
		StartingBalance: cfg.Account.StartingBalance,
		RawPath:         cfg.Ledger.RawPath,
		Mirror:          mirror,
		Logger:          log,
	})
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	fmt.Printf("  Recovered balance: %.6f\n", led.Balance())
	metrics.SetBalance(led.Balance())

	var notifier notify.Notifier = notify.Log{}
	if cfg.Notify.WebhookURL != "" {
		notifier = notify.NewWebhook(cfg.Notify.WebhookURL)
	}

	exchange := bybit.New(cfg.Symbol, log)

	exec := executor.New(executor.Options{
		Prices:   exchange,
		Orders:   exchange,
		Ledger:   led,
		Fees:     fees.Schedule{MakerRate: cfg.Fees.MakerRate, TakerRate: cfg.Fees.TakerRate},
		Symbol:   cfg.Symbol,
		DryRun:   cfg.DryRun,
		Strict:   cfg.Orders.Strict,
		Notifier: notifier,
		Logger:   log,
	})

	strategies.Register(&strategies.RSIDepth{
		BuyThreshold:   cfg.Strategy.BuyThreshold,
		SellThreshold:  cfg.Strategy.SellThreshold,
		ExitLong:       cfg.Strategy.ExitLong,
		ExitShort:      cfg.Strategy.ExitShort,
		DepthThreshold: cfg.Strategy.DepthThreshold,
		TakerThreshold: cfg.Strategy.TakerThreshold,
		OrderSize:      cfg.OrderSize,
	})

	strat := strategies.Get(cfg.Strategy.Name)
	if strat == nil {
		return fmt.Errorf("unknown strategy: %s", cfg.Strategy.Name)
	}
	fmt.Printf("  Strategy: %s\n", strat.Name())

	interval, err := cfg.PollDuration()
	if err != nil {
		return fmt.Errorf("poll interval: %w", err)
	}

	runner := bot.NewRunner(bot.Options{
		Exchange: exchange,
		Tracker:  position.NewTracker(log),
		Executor: exec,
		Pipeline: indicators.NewPipeline(
			cfg.Strategy.RSIPeriod, cfg.Strategy.SMAFast, cfg.Strategy.SMASlow,
			cfg.Strategy.WindowCap),
		Strategy: strat,
		Interval: interval,
		Logger:   log,
	})

	if cfg.Metrics.Addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		go func() {
			log.Info("metrics listening", "addr", cfg.Metrics.Addr)
			if err := http.ListenAndServe(cfg.Metrics.Addr, mux); err != nil {
				log.Error("metrics server stopped", "err", err)
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runner.Run(ctx)
}
