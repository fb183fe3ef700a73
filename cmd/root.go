package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/matheuskafuri/hnstories/internal/update"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	flagConfig string
	flagQuery  string
	flagDebug  bool
)

var rootCmd = &cobra.Command{
	Use:   "hnstories",
	Short: "Search Hacker News stories from the terminal",
	Long:  "hnstories searches Hacker News through the Algolia API, lists the matching stories and remembers your last search.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A .env next to the working directory may carry HNSTORIES_* overrides
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("loading .env: %w", err)
		}
		return nil
	},
	RunE: runTUI,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "write debug logs to the state directory")
	rootCmd.Flags().StringVarP(&flagQuery, "query", "q", "", "search term to start with (replaces the remembered one)")

	versionCmd.Flags().BoolVar(&flagCheckUpdate, "check", false, "check GitHub for a newer release")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(forgetCmd)
}

var flagCheckUpdate bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("hnstories %s (commit: %s, built: %s)\n", version, commit, date)
		if !flagCheckUpdate {
			return nil
		}
		res, err := update.Check(cmd.Context(), update.ReleasesURL, version)
		if err != nil {
			return err
		}
		if res == nil {
			fmt.Println("Up to date.")
		} else {
			fmt.Printf("Update available: v%s\n", res.LatestVersion)
		}
		return nil
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
