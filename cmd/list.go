package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored questionnaires",
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

		qs, err := repo.ListQuestionnaires(cmd.Context())
		if err != nil {
			return err
		}
		if len(qs) == 0 {
			fmt.Println("No questionnaires stored. Run `acompana seed` to install the built-in ones.")
			return nil
		}

		fmt.Printf("%-16s  %-6s  %s\n", "ID", "Scored", "Title")
		fmt.Println(strings.Repeat("─", 60))
		for _, q := range qs {
			scored := "no"
			if q.Scored {
				scored = "yes"
			}
			fmt.Printf("%-16s  %-6s  %s\n", q.ID, scored, q.Title)
		}
		return nil
	},
}
