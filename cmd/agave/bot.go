package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"agave/internal/notifier"
	"agave/internal/recorder"
	"agave/internal/scheduler"
)

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the Telegram bot and the scheduled catalog report",
	Long: `Starts long-polling for chat commands and schedules the catalog report
on schedule.report_cron. Set RUN_ON_START=true to send a report at startup.`,
	Args: cobra.NoArgs,
	RunE: runBot,
}

func runBot(cmd *cobra.Command, args []string) error {
	if err := cfg.ValidateBot(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	logger.Info("AGAVE bot starting")

	src, err := newSource()
	if err != nil {
		return err
	}
	logger.Info("catalog source", zap.String("source", src.Name()))

	tn := notifier.NewTelegramNotifier(cfg.Telegram.APIBase, cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, logger)

	rec := openRecorder()
	defer rec.Close()

	svc, err := newService(rec, recorder.SourceChat)
	if err != nil {
		return err
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sched := scheduler.NewScheduler(ctx, src, svc, tn, rec, logger)
	if err := sched.RegisterAll(cfg.Schedule.ReportCron); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	go tn.StartPolling(ctx, sched.HandleCommand)
	logger.Info("telegram polling started")

	if os.Getenv("RUN_ON_START") == "true" {
		logger.Info("RUN_ON_START enabled, executing catalog task now")
		go sched.RunCatalogNow()
	}

	logger.Info("AGAVE bot is running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		logger.Info("shutdown signal received, stopping")
	case <-ctx.Done():
	}
	cancel()
	return nil
}
