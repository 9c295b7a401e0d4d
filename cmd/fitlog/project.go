package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/tjwilli6/Fitness/fitness"
	"github.com/tjwilli6/Fitness/generic"
)

var (
	bmiWeight  string
	bmiTarget  string
	projDate   string
	projWeight float64
	projStart  string
	projStop   string
)

var bmiCmd = &cobra.Command{
	Use:   "bmi",
	Short: "BMI for a weight, or the weight for a BMI",
	Long: `Without flags, BMI of the latest weigh-in. --weight gives the BMI of that
weight; --target gives the weight that has that BMI. Uses height_inches.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		h, err := a.Tracker.Height()
		if err != nil {
			return fmt.Errorf("%w (set height_inches)", err)
		}
		height := decimal.NewFromFloat(h)

		if bmiTarget != "" {
			target, err := decimal.NewFromString(bmiTarget)
			if err != nil {
				return fmt.Errorf("invalid --target: %w", err)
			}
			fmt.Printf("BMI %s at %s in = %s lbs\n", target, height, fitness.WeightFromBMI(target, height).StringFixed(1))
			return nil
		}

		var lbs decimal.Decimal
		if bmiWeight != "" {
			lbs, err = decimal.NewFromString(bmiWeight)
			if err != nil {
				return fmt.Errorf("invalid --weight: %w", err)
			}
		} else {
			rec, err := a.Tracker.Query.WeightAsOf(context.Background(), a.Today())
			if err != nil {
				return fmt.Errorf("no weigh-in: %w", err)
			}
			lbs = rec.Pounds
		}
		bmi, err := fitness.BMI(lbs, height)
		if err != nil {
			return err
		}
		fmt.Printf("%s lbs at %s in = BMI %s\n", lbs, height, bmi.StringFixed(1))
		return nil
	},
}

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Project weight at a date, or the date a weight is reached",
	Long: `Extrapolate the endpoint weight trend over --start/--stop from the latest
weigh-in. Give exactly one of --date or --weight.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if (projDate == "") == (projWeight == 0) {
			return errors.New("give exactly one of --date or --weight")
		}
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		period, err := generic.ParsePeriod(projStart, projStop)
		if err != nil {
			return fmt.Errorf("invalid window: %w", err)
		}
		trend, err := a.Tracker.Query.WeightTrend(context.Background(), period)
		if err != nil {
			return fmt.Errorf("cannot compute trend: %w", err)
		}
		fmt.Printf("Trend %+.3f lbs/day from %s lbs on %s\n", trend.Slope, trend.Current.Pounds, trend.AsOf())

		if projDate != "" {
			target, err := generic.ParseDate(projDate)
			if err != nil {
				return fmt.Errorf("invalid --date: %w", err)
			}
			fmt.Printf("Projected weight on %s: %.1f lbs\n", target, trend.ProjectedWeight(target))
			return nil
		}
		when, err := trend.ProjectedDate(projWeight)
		if err != nil {
			return fmt.Errorf("%.1f lbs is never reached: %w", projWeight, err)
		}
		fmt.Printf("Projected date for %.1f lbs: %s\n", projWeight, when)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(bmiCmd)
	bmiCmd.Flags().StringVar(&bmiWeight, "weight", "", "Weight in lbs")
	bmiCmd.Flags().StringVar(&bmiTarget, "target", "", "Target BMI (prints the matching weight)")

	rootCmd.AddCommand(projectCmd)
	projectCmd.Flags().StringVar(&projDate, "date", "", "Target date (YYYY-MM-DD)")
	projectCmd.Flags().Float64Var(&projWeight, "weight", 0, "Target weight in lbs")
	projectCmd.Flags().StringVar(&projStart, "start", "", "Trend window start (YYYY-MM-DD)")
	projectCmd.Flags().StringVar(&projStop, "stop", "", "Trend window stop (YYYY-MM-DD)")
}
