package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	zlog "github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ksred/tradervolt-migrate/internal/config"
	"github.com/ksred/tradervolt-migrate/internal/migration"
)

var cleanupFlags struct {
	prefix string
	dryRun bool
	delete bool
}

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete prefix-marked test entities from TraderVolt",
	Long: `cleanup scans every collection in reverse dependency order and removes
entities whose name carries the test-run marker prefix. Run with --dry-run
first to see what would go.`,
	RunE: runCleanup,
}

func init() {
	cleanupCmd.Flags().StringVar(&cleanupFlags.prefix, "prefix", "MIG_TEST_", "marker prefix to match")
	cleanupCmd.Flags().BoolVar(&cleanupFlags.dryRun, "dry-run", false, "list matches without deleting")
	cleanupCmd.Flags().BoolVar(&cleanupFlags.delete, "delete", false, "actually delete the matches")
}

func runCleanup(cmd *cobra.Command, args []string) error {
	if !cleanupFlags.dryRun && !cleanupFlags.delete {
		return errors.New("pass --dry-run to preview or --delete to remove matches")
	}
	if cleanupFlags.prefix == "" {
		return errors.New("refusing to clean with an empty prefix")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := newClient(cfg)
	if err := client.Session.EnsureAuthenticated(ctx); err != nil {
		return fmt.Errorf("cannot reach TraderVolt: %w", err)
	}

	cleaner := migration.NewCleaner(migration.CleanerConfig{
		Gateway: client.Gateway,
		DryRun:  cleanupFlags.dryRun,
		Logger:  zlog.Logger,
	})

	result, err := cleaner.Run(ctx, cleanupFlags.prefix)
	if result != nil {
		fmt.Println()
		fmt.Println("Cleanup summary")
		fmt.Println("===============")
		fmt.Printf("  found:   %d\n", result.Found)
		fmt.Printf("  deleted: %d\n", result.Deleted)
		fmt.Printf("  failed:  %d\n", result.Failed)
		fmt.Printf("  skipped: %d\n", result.Skipped)
		if cleanupFlags.dryRun {
			for _, candidate := range result.Candidates {
				fmt.Printf("  would delete %-15s %s (%s)\n", candidate.EntityType, candidate.Name, candidate.ServerID)
			}
		}
	}
	if err != nil {
		return err
	}
	if result.Failed > 0 {
		return fmt.Errorf("%d delete(s) failed", result.Failed)
	}
	return nil
}
