package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pedrolima/newsmood/internal/aggregate"
	"github.com/pedrolima/newsmood/internal/config"
	"github.com/pedrolima/newsmood/internal/export"
	"github.com/pedrolima/newsmood/internal/feed"
	"github.com/pedrolima/newsmood/internal/sentiment"
)

var (
	flagOut            string
	flagSources        string
	flagExcludeImputed bool
	flagNegCutoff      float64
	flagPosCutoff      float64
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Fetch, score and export headlines as CSV",
	Long: `Fetch the configured feeds once, score every headline, apply the same
filters the dashboard offers, and write the result as CSV to stdout or --out.`,
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

		out := os.Stdout
		if flagOut != "" {
			f, err := os.Create(flagOut)
			if err != nil {
				return fmt.Errorf("creating %s: %w", flagOut, err)
			}
			defer f.Close()
			out = f
		}

		if err := export.WriteCSV(out, view.Rows); err != nil {
			return fmt.Errorf("writing csv: %w", err)
		}
		if flagOut != "" {
			fmt.Fprintf(os.Stderr, "Wrote %d headline(s) to %s\n", len(view.Rows), flagOut)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&flagOut, "out", "", "write CSV to this file instead of stdout")
	exportCmd.Flags().StringVar(&flagKeyword, "keyword", "", "keyword filter (case-insensitive)")
	exportCmd.Flags().StringVar(&flagLookback, "lookback", "", "time window (e.g. 6h, 3d)")
	exportCmd.Flags().StringVar(&flagSources, "sources", "", "comma-separated source names (default all)")
	exportCmd.Flags().BoolVar(&flagExcludeImputed, "exclude-imputed", false, "drop undated items from the time series")
	exportCmd.Flags().Float64Var(&flagNegCutoff, "negative", 0, "override negative cutoff")
	exportCmd.Flags().Float64Var(&flagPosCutoff, "positive", 0, "override positive cutoff")
}

// buildParams assembles aggregate parameters from config plus any flag
// overrides.
func buildParams(cmd *cobra.Command, cfg *config.Config) (aggregate.Params, error) {
	p := aggregate.Params{
		Keyword:        flagKeyword,
		Lookback:       cfg.Lookback(),
		BinSize:        cfg.BinSizeDuration(),
		ExcludeImputed: flagExcludeImputed,
		Thresholds:     sentiment.Thresholds{Negative: cfg.Thresholds.Negative, Positive: cfg.Thresholds.Positive},
	}

	if flagLookback != "" {
		d, err := parseLookback(flagLookback)
		if err != nil {
			return p, fmt.Errorf("invalid --lookback value: %w", err)
		}
		p.Lookback = d
	}
	if flagSources != "" {
		for _, s := range strings.Split(flagSources, ",") {
			if s = strings.TrimSpace(s); s != "" {
				p.Sources = append(p.Sources, s)
			}
		}
	}
	if cmd.Flags().Changed("negative") {
		p.Thresholds.Negative = flagNegCutoff
	}
	if cmd.Flags().Changed("positive") {
		p.Thresholds.Positive = flagPosCutoff
	}
	if err := p.Thresholds.Validate(); err != nil {
		return p, err
	}
	return p, nil
}

// fetchView does one synchronous fetch-score-aggregate pass.
func fetchView(cfg *config.Config, params aggregate.Params) (aggregate.View, []error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result := feed.FetchAll(ctx, cfg.EnabledSources(), cfg.EntryCap())
	records := sentiment.NewScorer().ScoreAll(result.Headlines)
	return aggregate.Build(records, params), result.Errors
}
