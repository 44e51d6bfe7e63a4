package cmd

import (
	"github.com/abhisek/acompana/internal/store"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "acompana",
	Short: "Questionnaires for family caregivers",
	Long:  "Acompaña: terminal runner for the caregiver onboarding and WHO-5 wellbeing questionnaires.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("db", "", "Path to SQLite database file (overrides ACOMPANA_DB env var)")
	pf.String("config", "", "Path to YAML config file (default $XDG_CONFIG_HOME/acompana/config.yaml)")
	pf.String("backend", "", "Questionnaire storage: sqlite or postgres")
	pf.String("user", "", "User ID sessions are recorded for")

	rootCmd.AddCommand(takeCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(guestCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then the configured path (ACOMPANA_DB or config file), then the default
// XDG path.
func resolveDBPath(cmd *cobra.Command, configured string) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if configured != "" {
		return configured, store.EnsureDir(configured)
	}
	return store.DefaultDBPath()
}
