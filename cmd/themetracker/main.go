package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"theme-tracker/internal/config"
	"theme-tracker/internal/models"
	"theme-tracker/internal/monitoring"
	"theme-tracker/internal/scheduler"
	"theme-tracker/internal/server"
	"theme-tracker/internal/tracker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	tr := tracker.New(cfg)

	if len(os.Args) > 1 && os.Args[1] == "--once" {
		if err := runOnce(ctx, cfg, tr); err != nil {
			log.Fatalf("Run failed: %v", err)
		}
		return
	}

	if err := tr.Initialize(); err != nil {
		log.Fatalf("Failed to initialize tracker: %v", err)
	}

	monitor := monitoring.NewMonitor()

	if cfg.Schedule != "" {
		s := scheduler.New(cfg.Schedule, tr, monitor)
		go func() {
			if err := s.Start(ctx); err != nil && ctx.Err() == nil {
				log.Printf("Scheduler stopped with error: %v", err)
			}
		}()
	}

	srv := server.New(tr, monitor, cfg.Server.Port)
	if err := srv.Run(ctx); err != nil {
		log.Fatalf("HTTP server failed: %v", err)
	}
}

// runOnce mines every window, generates themes for the configured cohort from
// the combined corpus, and prints them.
func runOnce(ctx context.Context, cfg *config.Config, tr *tracker.Tracker) error {
	fmt.Println("Running one mining and generation pass...")

	if err := tr.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize tracker: %w", err)
	}

	report := tr.MineAll(ctx)
	fmt.Printf("Mining: %s\n", report.Summary())
	if len(report.Succeeded) == 0 {
		return fmt.Errorf("all mining windows failed: %w", report.Err())
	}

	cohort := models.AgeCohort(cfg.Cohort)
	themes, err := tr.GenerateThemes(ctx, models.SourceCombined, cohort)
	if err != nil {
		return fmt.Errorf("theme generation failed: %w", err)
	}

	fmt.Printf("\nLecture themes for ages %s:\n\n", cohort)
	for i, theme := range themes {
		fmt.Printf("%d. %s\n   %s\n\n", i+1, theme.Title, theme.Rationale)
	}

	if tr.DigestConfigured() {
		if err := tr.EmailDigest(themes, cohort, models.SourceCombined); err != nil {
			log.Printf("Warning: failed to email digest: %v", err)
		} else {
			fmt.Println("Digest emailed.")
		}
	}

	return nil
}
