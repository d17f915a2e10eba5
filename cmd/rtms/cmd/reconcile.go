package cmd

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/raptorfin/rtms/internal/application/service/recon"
	interfaces "github.com/raptorfin/rtms/internal/domain/interfaces"
	"github.com/raptorfin/rtms/internal/infrastructure/feed"
	refinfra "github.com/raptorfin/rtms/internal/infrastructure/reference"
	tradinginfra "github.com/raptorfin/rtms/internal/infrastructure/trading"
)

var (
	feedPath string
	feedDate string
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile the daily trade-confirm feed into trades and orders",
	RunE:  runReconcile,
}

func init() {
	reconcileCmd.Flags().StringVar(&feedPath, "feed", "", "explicit trade-confirm file, bypassing the drop directory")
	reconcileCmd.Flags().StringVar(&feedDate, "date", "", "run date as YYYYMMDD (default today)")
	rootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if feedPath != "" {
		cfg.Feed.Path = feedPath
	}
	if feedDate != "" {
		cfg.Feed.Date = feedDate
	}
	if err := cfg.ValidateFeed(); err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	var source interfaces.FeedSource
	if cfg.Feed.Path != "" {
		source = feed.LocalSource{Path: cfg.Feed.Path}
	} else {
		source = feed.DirSource{Dir: cfg.Feed.Dir, Account: cfg.Feed.Account, Date: cfg.Feed.DateOrToday()}
	}
	path, err := source.Resolve(ctx)
	if errors.Is(err, interfaces.ErrNoConfirmFile) {
		logger.WithField("date", cfg.Feed.DateOrToday()).Info("no trade confirms found, exiting")
		return nil
	}
	if err != nil {
		return err
	}

	lines, err := feed.ParseFile(path)
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		logger.Info("no new trades for today")
		return nil
	}

	refRepo, err := refinfra.NewRepository(ctx, cfg.Postgres.DSN)
	if err != nil {
		return fmt.Errorf("init reference repo: %w", err)
	}
	defer refRepo.Close()

	tradingRepo, err := tradinginfra.NewRepository(ctx, cfg.Postgres.DSN)
	if err != nil {
		return fmt.Errorf("init trading repo: %w", err)
	}
	defer tradingRepo.Close()

	runner, err := recon.NewRunner(ctx, refRepo, tradingRepo, logger)
	if err != nil {
		return err
	}

	summary, err := runner.Run(ctx, lines)
	if err != nil {
		logger.WithFields(summary.Fields()).WithError(err).Error("reconciliation aborted")
		return err
	}
	if summary.Failed() {
		for _, reason := range summary.SkipReasons {
			logger.Warn(reason)
		}
		return fmt.Errorf("%d feed lines skipped", summary.LinesSkipped)
	}
	return nil
}
