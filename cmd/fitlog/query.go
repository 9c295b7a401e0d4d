package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/spf13/cobra"
	"github.com/tjwilli6/Fitness/fitness"
	"github.com/tjwilli6/Fitness/generic"
)

var (
	queryStart  string
	queryStop   string
	queryAsOf   string
	queryBin    int
	queryBins   int
	queryReduce string
	queryMetric string
)

var queryCmd = &cobra.Command{
	Use:   "query <calories|weight|runs>",
	Short: "Print records or bins from one log",
	Long: `Print the records of one log in a window, the record as of a date, or
bins of one metric (--bin width in days, or --bins count).

Metrics: calories (consumed, goal, net), weight, runs (distance, elapsed).`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"calories", "weight", "runs"},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		kind := fitness.Kind(args[0])
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()
		q := a.Tracker.Query

		if queryAsOf != "" {
			date, err := generic.ParseDate(queryAsOf)
			if err != nil {
				return fmt.Errorf("invalid --asof: %w", err)
			}
			var rec any
			switch kind {
			case fitness.KindCalories:
				rec, err = q.CalorieAsOf(ctx, date)
			case fitness.KindWeight:
				rec, err = q.WeightAsOf(ctx, date)
			case fitness.KindRuns:
				rec, err = q.RunAsOf(ctx, date)
			default:
				return fmt.Errorf("unknown log %q", kind)
			}
			if err != nil {
				return err
			}
			fmt.Printf("%+v\n", rec)
			return nil
		}

		period, err := generic.ParsePeriod(queryStart, queryStop)
		if err != nil {
			return fmt.Errorf("invalid window: %w", err)
		}

		if queryBin > 0 || queryBins > 0 {
			metric := defaultMetric(kind)
			if queryMetric != "" {
				if metric, err = fitness.ParseMetric(queryMetric); err != nil {
					return err
				}
			}
			reducer, err := generic.ParseReducer(queryReduce)
			if err != nil {
				return err
			}
			var bins []generic.Bin
			if queryBin > 0 {
				bins, err = q.Binned(ctx, metric, period, queryBin, reducer)
			} else {
				bins, err = q.BinnedByCount(ctx, metric, period, queryBins, reducer)
			}
			if err != nil {
				return err
			}
			for _, b := range bins {
				v := "-"
				if !math.IsNaN(b.Value) {
					v = fmt.Sprintf("%.2f", b.Value)
				}
				fmt.Printf("%s  [%s .. %s]  n=%-3d %s\n", b.Center, b.Start, b.End, b.Count, v)
			}
			return nil
		}

		var recs any
		switch kind {
		case fitness.KindCalories:
			recs, err = q.Calories(ctx, period)
		case fitness.KindWeight:
			recs, err = q.Weights(ctx, period)
		case fitness.KindRuns:
			recs, err = q.Runs(ctx, period)
		default:
			return fmt.Errorf("unknown log %q", kind)
		}
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(recs); err != nil {
			return err
		}
		return nil
	},
}

func defaultMetric(k fitness.Kind) fitness.Metric {
	switch k {
	case fitness.KindWeight:
		return fitness.MetricWeight
	case fitness.KindRuns:
		return fitness.MetricDistance
	default:
		return fitness.MetricConsumed
	}
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringVar(&queryStart, "start", "", "Window start (YYYY-MM-DD)")
	queryCmd.Flags().StringVar(&queryStop, "stop", "", "Window stop (YYYY-MM-DD)")
	queryCmd.Flags().StringVar(&queryAsOf, "asof", "", "Print the record on or before this date")
	queryCmd.Flags().IntVar(&queryBin, "bin", 0, "Bin width in days")
	queryCmd.Flags().IntVar(&queryBins, "bins", 0, "Number of equal bins")
	queryCmd.Flags().StringVar(&queryReduce, "reduce", "mean", "Bin reducer: sum or mean")
	queryCmd.Flags().StringVar(&queryMetric, "metric", "", "Metric to bin")
}
