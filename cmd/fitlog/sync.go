package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/tjwilli6/Fitness/fitness"
)

var syncForce bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Bootstrap empty logs or bring them up to date",
	Long: `Fetch new calorie, weight and run records from the configured providers.

An empty calorie log is bootstrapped from bootstrap_start. Otherwise the last
calorie record decides what happens: a final record older than today fetches
the missing days; a provisional record is removed and re-fetched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		report, err := a.Update(context.Background(), fitness.SyncOptions{Force: syncForce})
		if report != nil {
			printSyncReport(report)
		}
		if err != nil {
			return fmt.Errorf("sync failed: %w", err)
		}
		return nil
	},
}

func printSyncReport(r *fitness.SyncReport) {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	fmt.Printf("\n%s\n", cyan("=== Sync ==="))

	statusColor := green
	switch r.Status() {
	case "partial":
		statusColor = yellow
	case "failed":
		statusColor = red
	}
	fmt.Printf("  State:    %s\n", r.State)
	fmt.Printf("  Status:   %s\n", statusColor(r.Status()))
	fmt.Printf("  Today:    %s\n", r.Today)
	if r.Removed != nil {
		fmt.Printf("  Removed:  provisional record for %s\n", r.Removed.Date)
	}
	fmt.Printf("  Appended: %d calorie, %d weight, %d run\n",
		r.Appended[fitness.KindCalories], r.Appended[fitness.KindWeight], r.Appended[fitness.KindRuns])
	for _, e := range r.Errors {
		fmt.Printf("  %s %s\n", red("✗"), e)
	}
	fmt.Printf("  %s\n\n", gray("run "+r.RunID))
}

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.Flags().BoolVar(&syncForce, "force", false, "Re-fetch today's provisional record")
}
