package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	flagConfig   string
	flagKeyword  string
	flagLookback string
	flagRefresh  bool
)

var rootCmd = &cobra.Command{
	Use:   "newsmood",
	Short: "Terminal news sentiment dashboard",
	Long:  "newsmood pulls headlines from RSS feeds, scores their sentiment with a lexicon analyzer, and charts the mood per source in an interactive dashboard.",
	RunE:  runDashboard,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")
	rootCmd.Flags().StringVar(&flagKeyword, "keyword", "", "pre-set keyword filter (e.g. elections, climate)")
	rootCmd.Flags().StringVar(&flagLookback, "lookback", "", "time window to chart (e.g. 6h, 3d)")
	rootCmd.Flags().BoolVar(&flagRefresh, "refresh", false, "force a fetch on startup, bypassing the cache")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(sourcesCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("newsmood %s (commit: %s, built: %s)\n", version, commit, date)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}
