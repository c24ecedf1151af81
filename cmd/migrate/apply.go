package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ksred/tradervolt-migrate/internal/config"
	"github.com/ksred/tradervolt-migrate/internal/database"
	"github.com/ksred/tradervolt-migrate/internal/migration"
	"github.com/ksred/tradervolt-migrate/internal/types"
)

var applyFlags struct {
	plan         string
	test         bool
	apply        bool
	confirmWrite bool
	prefix       string
	limit        int
	onFailure    string
	includeDeals bool
}

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Import the migration plan into TraderVolt",
	Long: `apply imports the plan in dependency order: symbol groups, symbols,
trader groups, traders, orders, positions. Test mode prefixes entity names
so a later cleanup can find everything the run created.

A production run must be requested explicitly with both --apply and
--i-understand-this-will-write-to-tradervolt.`,
	RunE: runApply,
}

func init() {
	applyCmd.Flags().StringVar(&applyFlags.plan, "plan", "", "path to the migration plan JSON")
	applyCmd.Flags().BoolVar(&applyFlags.test, "test", false, "test mode: prefix entity names for later cleanup")
	applyCmd.Flags().BoolVar(&applyFlags.apply, "apply", false, "production mode: write real data")
	applyCmd.Flags().BoolVar(&applyFlags.confirmWrite, "i-understand-this-will-write-to-tradervolt", false,
		"second confirmation required for a production run")
	applyCmd.Flags().StringVar(&applyFlags.prefix, "prefix", "", "test-mode marker prefix (default MIG_TEST_<date>_)")
	applyCmd.Flags().IntVar(&applyFlags.limit, "limit", 0, "cap the number of records per entity type")
	applyCmd.Flags().StringVar(&applyFlags.onFailure, "on-failure", "", "what to do after failures: ask, continue or abort")
	applyCmd.Flags().BoolVar(&applyFlags.includeDeals, "include-deals", false, "also import deals")
}

func runApply(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	mergeApplyFlags(cmd, cfg)

	testMode := cfg.Migration.TestMode
	if !testMode && !(applyFlags.apply && applyFlags.confirmWrite) {
		return errors.New("refusing to run: pass --test for a test run, or both --apply and --i-understand-this-will-write-to-tradervolt for a production run")
	}

	prefix := cfg.Migration.TestPrefix
	if testMode && prefix == "" {
		prefix = fmt.Sprintf("MIG_TEST_%s_", time.Now().Format("20060102"))
	}

	plan, err := types.LoadPlan(cfg.Migration.PlanPath)
	if err != nil {
		return err
	}

	report := migration.ValidatePlan(plan)
	for _, warning := range report.Warnings {
		zlog.Warn().Msg(warning)
	}
	if !report.OK() {
		for _, problem := range report.Errors {
			zlog.Error().Msg(problem)
		}
		return fmt.Errorf("plan failed validation with %d error(s)", len(report.Errors))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := newClient(cfg)
	if err := client.Session.EnsureAuthenticated(ctx); err != nil {
		return fmt.Errorf("cannot reach TraderVolt: %w", err)
	}

	runID := uuid.New().String()
	var audit migration.Auditor
	var store *database.AuditStore
	if cfg.Audit.Enabled {
		store, err = database.NewAuditStore(cfg.Audit.Path)
		if err != nil {
			return fmt.Errorf("failed to open audit database: %w", err)
		}
		if err := store.StartRun(runID, testMode, prefix); err != nil {
			return fmt.Errorf("failed to record run start: %w", err)
		}
		audit = store
	}

	zlog.Info().
		Str("run_id", runID).
		Bool("test_mode", testMode).
		Str("prefix", prefix).
		Int("total_records", plan.Total()).
		Msg("starting migration run")

	executor := migration.NewExecutor(migration.ExecutorConfig{
		Gateway:      client.Gateway,
		Audit:        audit,
		RunID:        runID,
		OnFailure:    continuationPolicy(cfg.Migration.OnFailure),
		TestMode:     testMode,
		TestPrefix:   prefix,
		Limit:        cfg.Migration.Limit,
		IncludeDeals: cfg.Migration.IncludeDeals,
		Logger:       zlog.Logger,
	})

	result, execErr := executor.Execute(ctx, plan)

	if store != nil && result != nil {
		if err := store.FinishRun(runID, result.Stats, result.Aborted); err != nil {
			zlog.Warn().Err(err).Msg("failed to record run end")
		}
	}
	if result != nil {
		printSummary(runID, result)
	}
	if execErr != nil {
		return execErr
	}
	if result.Stats.Failed > 0 {
		return fmt.Errorf("%d record(s) failed to migrate", result.Stats.Failed)
	}
	return nil
}

// mergeApplyFlags layers the command-line flags over the loaded config.
// Flags win only when the operator set them.
func mergeApplyFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("plan") {
		cfg.Migration.PlanPath = applyFlags.plan
	}
	if cmd.Flags().Changed("test") {
		cfg.Migration.TestMode = applyFlags.test
	}
	if cmd.Flags().Changed("prefix") {
		cfg.Migration.TestPrefix = applyFlags.prefix
	}
	if cmd.Flags().Changed("limit") {
		cfg.Migration.Limit = applyFlags.limit
	}
	if cmd.Flags().Changed("on-failure") {
		cfg.Migration.OnFailure = applyFlags.onFailure
	}
	if cmd.Flags().Changed("include-deals") {
		cfg.Migration.IncludeDeals = applyFlags.includeDeals
	}
}

// continuationPolicy turns the on-failure setting into an executor policy.
// "ask" prompts on the terminal; anything unrecognized continues.
func continuationPolicy(mode string) migration.ContinuationPolicy {
	switch mode {
	case "abort":
		return migration.AbortOnFailure
	case "ask":
		return askToContinue
	default:
		return migration.ContinueAlways
	}
}

func askToContinue(entityType types.EntityType, failed int) bool {
	fmt.Fprintf(os.Stderr, "%d %s record(s) failed. Continue with the next entity type? [y/N] ", failed, entityType.DisplayName())
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func printSummary(runID string, result *migration.Result) {
	fmt.Println()
	fmt.Println("Migration summary")
	fmt.Println("=================")
	fmt.Printf("  run:      %s\n", runID)
	fmt.Printf("  created:  %d\n", result.Stats.Created)
	fmt.Printf("  verified: %d\n", result.Stats.Verified)
	fmt.Printf("  skipped:  %d\n", result.Stats.Skipped)
	fmt.Printf("  failed:   %d\n", result.Stats.Failed)
	if result.Aborted {
		fmt.Println("  run aborted after failures")
	}
	if len(result.Failures) > 0 {
		fmt.Println()
		fmt.Println("Failures:")
		for _, failure := range result.Failures {
			fmt.Printf("  %-15s %-30s status=%d %s\n", failure.EntityType, failure.Name, failure.Status, failure.Message)
		}
	}
}
