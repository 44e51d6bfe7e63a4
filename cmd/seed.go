package cmd

import (
	"fmt"

	"github.com/abhisek/acompana/internal/seed"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Install the built-in questionnaires, replacing stored copies",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		repo, closeRepo, err := openRepo(cmd, cfg)
		if err != nil {
			return err
		}
		defer closeRepo()

		if err := seed.Install(cmd.Context(), repo); err != nil {
			return err
		}
		for _, rows := range seed.All() {
			fmt.Printf("installed %-12s %d questions\n", rows.Questionnaire.ID, len(rows.Questions))
		}
		return nil
	},
}
