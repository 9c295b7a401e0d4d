package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/tjwilli6/Fitness/fitness"
	"github.com/tjwilli6/Fitness/generic"
)

var (
	reportStart string
	reportStop  string
	reportDays  int
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize calories, weight and runs over a window",
	Long: `Print calorie totals, the weight trend, BMI and run totals.

The window defaults to the last --days days ending today; --start/--stop
(YYYY-MM-DD) override it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		start := reportStart
		if start == "" {
			start = a.Today().AddDays(-reportDays).String()
		}
		period, err := generic.ParsePeriod(start, reportStop)
		if err != nil {
			return fmt.Errorf("invalid window: %w", err)
		}
		q := a.Tracker.Query

		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		yellow := color.New(color.FgYellow).SprintFunc()
		green := color.New(color.FgGreen).SprintFunc()
		red := color.New(color.FgRed).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		fmt.Printf("\n%s\n", cyan(fmt.Sprintf("=== Fitness Report %s ===", period)))
		fmt.Println()

		// Calories
		fmt.Printf("%s\n", yellow("Calories:"))
		cals, err := q.Calories(ctx, period)
		if err != nil {
			return fmt.Errorf("failed to read calorie log: %w", err)
		}
		cs := fitness.SummarizeCalories(cals)
		if cs.Days == 0 {
			fmt.Printf("  %s\n", gray("No calorie data"))
		} else {
			net := cs.Net()
			netColor := green
			if net < 0 {
				netColor = red
			}
			fmt.Printf("  Days:      %d (%d without data)\n", cs.Days, cs.NoDataDays)
			fmt.Printf("  Consumed:  %d (avg %d/day)\n", cs.Consumed, cs.Consumed/cs.Days)
			fmt.Printf("  Goal:      %d\n", cs.Goal)
			fmt.Printf("  Net:       %s\n", netColor(fmt.Sprintf("%+d", net)))
		}
		fmt.Println()

		// Weight
		fmt.Printf("%s\n", yellow("Weight:"))
		trend, err := q.WeightTrend(ctx, period)
		switch {
		case err == nil:
			slopeColor := green
			if trend.Slope > 0 {
				slopeColor = red
			}
			fmt.Printf("  Current:   %s lbs (as of %s)\n", trend.Current.Pounds, trend.AsOf())
			fmt.Printf("  Trend:     %s lbs/week\n", slopeColor(fmt.Sprintf("%+.2f", trend.Slope*7)))
		case errors.Is(err, generic.ErrInsufficientData), generic.IsNotFound(err):
			fmt.Printf("  %s\n", gray("Not enough weigh-ins for a trend"))
		default:
			return fmt.Errorf("failed to read weight log: %w", err)
		}
		if height, herr := a.Tracker.Height(); herr == nil {
			if bmi, _, berr := q.CurrentBMI(ctx, height); berr == nil {
				fmt.Printf("  BMI:       %s\n", bmi.StringFixed(1))
			}
		} else {
			fmt.Printf("  %s\n", gray("BMI: set height_inches in config"))
		}
		fmt.Println()

		// Runs
		fmt.Printf("%s\n", yellow("Runs:"))
		runs, err := q.Runs(ctx, period)
		if err != nil {
			return fmt.Errorf("failed to read run log: %w", err)
		}
		rs := fitness.SummarizeRuns(runs)
		if rs.Count == 0 {
			fmt.Printf("  %s\n", gray("No runs"))
		} else {
			fmt.Printf("  Count:     %d\n", rs.Count)
			fmt.Printf("  Distance:  %s\n", decimal.NewFromFloat(rs.Distance).StringFixed(2))
			fmt.Printf("  Pace:      %s/unit\n", formatPace(rs.Pace()))
		}
		fmt.Println()
		return nil
	},
}

func formatPace(secondsPerUnit float64) string {
	total := int(secondsPerUnit + 0.5)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringVar(&reportStart, "start", "", "Window start (YYYY-MM-DD)")
	reportCmd.Flags().StringVar(&reportStop, "stop", "", "Window stop (YYYY-MM-DD)")
	reportCmd.Flags().IntVar(&reportDays, "days", 30, "Window length when --start is not given")
}
