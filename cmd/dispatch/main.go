// Command dispatch is the salah-notify operational CLI: it runs one-shot
// dispatch sweeps and previews content without going through the API server.
//
// Usage:
//
//	salah-dispatch prayer
//	salah-dispatch scheduled
//	salah-dispatch wisdom preview --date 2026-09-01
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ibadahth/salah-notify/internal/aladhan"
	"github.com/ibadahth/salah-notify/internal/config"
	"github.com/ibadahth/salah-notify/internal/db"
	"github.com/ibadahth/salah-notify/internal/line"
	"github.com/ibadahth/salah-notify/internal/notify"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:   "salah-dispatch",
		Short: "Salah notification dispatch CLI",
	}

	root.AddCommand(prayerCmd())
	root.AddCommand(scheduledCmd())
	root.AddCommand(wisdomCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// dispatch commands
// --------------------------------------------------------------------------

func prayerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prayer",
		Short: "Run one prayer-reminder dispatch sweep",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSweep(func(ctx context.Context, d *notify.Dispatcher) *notify.Result {
				return d.DispatchPrayers(ctx)
			})
		},
	}
}

func scheduledCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scheduled",
		Short: "Run one fixed-hour broadcast dispatch sweep",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSweep(func(ctx context.Context, d *notify.Dispatcher) *notify.Result {
				return d.DispatchScheduled(ctx)
			})
		},
	}
}

func runSweep(sweep func(context.Context, *notify.Dispatcher) *notify.Result) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	pool, err := db.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	store := notify.NewPGStore(pool.Pool)
	lineClient := line.New(cfg.LineChannelToken, cfg.LineChannelSecret)
	prayerAPI := aladhan.NewClient(cfg.AladhanBaseURL, cfg.AladhanMethod)
	dispatcher := notify.NewDispatcher(store, prayerAPI, lineClient, logger)

	start := time.Now()
	result := sweep(ctx, dispatcher)
	logger.Info("Sweep finished",
		"duration", time.Since(start).Round(time.Millisecond),
		"sent", result.Sent, "failed", result.Failed)
	for _, e := range result.Errors {
		logger.Error("dispatch error", "error", e)
	}
	return nil
}

// --------------------------------------------------------------------------
// wisdom command
// --------------------------------------------------------------------------

func wisdomCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wisdom",
		Short: "Daily wisdom utilities",
	}
	cmd.AddCommand(wisdomPreviewCmd())
	return cmd
}

func wisdomPreviewCmd() *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Show which wisdom entry a date would select",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			day, err := time.Parse("2006-01-02", date)
			if err != nil {
				return fmt.Errorf("bad --date: %w", err)
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			pool, err := db.New(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			store := notify.NewPGStore(pool.Pool)
			w, err := notify.PreviewWisdom(ctx, store, day)
			if err != nil {
				return err
			}
			logger.Info("Selected wisdom", "id", w.ID, "source", w.Source)
			fmt.Println(w.TextTH)
			fmt.Println(w.TextEN)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", time.Now().Format("2006-01-02"), "Local date to preview (YYYY-MM-DD)")
	return cmd
}
