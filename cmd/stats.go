package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pedrolima/newsmood/internal/config"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print a one-shot sentiment snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(flagConfig)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		params, err := buildParams(cmd, cfg)
		if err != nil {
			return err
		}

		view, errs := fetchView(cfg, params)
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "  [warn] %v\n", e)
		}

		k := view.KPI
		fmt.Printf("Headlines: %d\n", k.Headlines)
		fmt.Printf("Avg compound: %+.3f\n", k.MeanCompound)
		fmt.Printf("Positive: %d  Neutral: %d  Negative: %d\n\n", k.Positive, k.Neutral, k.Negative)

		if len(view.Summaries) == 0 {
			fmt.Println("No headlines matched the current filters.")
			return nil
		}

		fmt.Printf("%-12s %5s %8s %8s %8s %4s %4s\n", "Source", "N", "Avg", "Min", "Max", "Pos", "Neg")
		for _, s := range view.Summaries {
			fmt.Printf("%-12s %5d %+8.3f %8.3f %8.3f %4d %4d\n",
				s.Source, s.Headlines, s.Mean, s.Min, s.Max, s.Positive, s.Negative)
		}
		return nil
	},
}

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List configured feed sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(flagConfig)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		for _, s := range cfg.Sources {
			state := "disabled"
			if s.Enabled {
				state = "enabled"
			}
			fmt.Printf("%-12s %-8s %-8s %s\n", s.Name, s.Type, state, s.URL)
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().StringVar(&flagKeyword, "keyword", "", "keyword filter (case-insensitive)")
	statsCmd.Flags().StringVar(&flagLookback, "lookback", "", "time window (e.g. 6h, 3d)")
	statsCmd.Flags().StringVar(&flagSources, "sources", "", "comma-separated source names (default all)")
}
