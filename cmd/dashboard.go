package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pedrolima/newsmood/internal/cache"
	"github.com/pedrolima/newsmood/internal/config"
	"github.com/pedrolima/newsmood/internal/sentiment"
	"github.com/pedrolima/newsmood/internal/tui"
)

func runDashboard(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if len(cfg.EnabledSources()) == 0 {
		return fmt.Errorf("no sources enabled in config")
	}

	var lookback time.Duration
	if flagLookback != "" {
		lookback, err = parseLookback(flagLookback)
		if err != nil {
			return fmt.Errorf("invalid --lookback value: %w", err)
		}
	}

	return tui.Run(tui.RunOpts{
		Cfg:      cfg,
		Store:    cache.New[[]sentiment.Record](),
		Scorer:   sentiment.NewScorer(),
		Keyword:  flagKeyword,
		Lookback: lookback,
		Refresh:  flagRefresh,
		Version:  version,
	})
}

func parseLookback(s string) (time.Duration, error) {
	if len(s) > 1 && s[len(s)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(s, "%dd", &days); err == nil {
			return time.Duration(days) * 24 * time.Hour, nil
		}
	}
	return time.ParseDuration(s)
}
