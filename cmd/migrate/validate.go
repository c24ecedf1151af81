package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ksred/tradervolt-migrate/internal/config"
	"github.com/ksred/tradervolt-migrate/internal/migration"
	"github.com/ksred/tradervolt-migrate/internal/types"
)

var validateFlags struct {
	plan string
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the migration plan without touching the network",
	RunE:  runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&validateFlags.plan, "plan", "", "path to the migration plan JSON")
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	planPath := cfg.Migration.PlanPath
	if cmd.Flags().Changed("plan") {
		planPath = validateFlags.plan
	}

	plan, err := types.LoadPlan(planPath)
	if err != nil {
		return err
	}

	fmt.Printf("Plan %s: %d record(s)\n", planPath, plan.Total())
	for _, entityType := range append(append([]types.EntityType{}, types.CreationOrder...), types.EntityTypeDeals) {
		if count := plan.Summary()[entityType]; count > 0 {
			fmt.Printf("  %-15s %d\n", entityType, count)
		}
	}

	report := migration.ValidatePlan(plan)
	for _, warning := range report.Warnings {
		fmt.Printf("  warning: %s\n", warning)
	}
	for _, problem := range report.Errors {
		fmt.Printf("  error: %s\n", problem)
	}
	if !report.OK() {
		return fmt.Errorf("plan failed validation with %d error(s)", len(report.Errors))
	}
	fmt.Println("Plan OK")
	return nil
}
