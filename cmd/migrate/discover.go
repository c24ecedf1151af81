package main

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	zlog "github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ksred/tradervolt-migrate/internal/config"
	"github.com/ksred/tradervolt-migrate/internal/migration"
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Survey the TraderVolt collection endpoints",
	Long: `discover lists every collection the migration touches, reporting its
status, how many entities it already holds, and the field names present on
existing records. Run it before a migration to spot data already there.`,
	RunE: runDiscover,
}

func runDiscover(cmd *cobra.Command, args []string) error {
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

	discoverer := migration.NewDiscoverer(client.Gateway, zlog.Logger)
	reports, err := discoverer.Run(ctx)

	fmt.Println()
	fmt.Println("Endpoint survey")
	fmt.Println("===============")
	for _, report := range reports {
		fmt.Printf("  %-15s status=%d count=%d\n", report.EntityType, report.Status, report.Count)
		if len(report.SampleKeys) > 0 {
			fmt.Printf("  %-15s fields: %s\n", "", strings.Join(report.SampleKeys, ", "))
		}
	}
	return err
}
