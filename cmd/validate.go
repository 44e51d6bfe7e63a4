package cmd

import (
	"errors"
	"fmt"

	"github.com/abhisek/acompana/internal/qgraph"
	"github.com/abhisek/acompana/internal/store"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <questionnaire>...",
	Short: "Check stored questionnaires for broken branches and rules",
	Args:  cobra.MinimumNArgs(1),
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

		failed := 0
		for _, id := range args {
			if err := validateOne(cmd, repo, id); err != nil {
				fmt.Printf("✗ %s\n", err)
				failed++
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d questionnaires failed validation", failed, len(args))
		}
		return nil
	},
}

func validateOne(cmd *cobra.Command, repo store.Repository, id string) error {
	rows, err := repo.LoadGraph(cmd.Context(), id)
	if err != nil {
		return err
	}
	g, err := qgraph.Build(rows)
	var die *qgraph.DataIntegrityError
	if errors.As(err, &die) {
		return die
	}
	if err != nil {
		return err
	}

	// Malformed rules are not fatal, they fail open, but authors should know.
	var warnings []string
	for _, q := range g.Ordered() {
		if q.Visibility != nil && !q.Visibility.Valid() {
			warnings = append(warnings, fmt.Sprintf("question %q: visibility rule ignored: %v", q.ID, q.Visibility.Err))
		}
	}

	shape := "branching"
	if g.IsLinear() {
		shape = "linear"
	}
	fmt.Printf("✓ %s: %d questions, %s\n", id, g.Len(), shape)
	for _, w := range warnings {
		fmt.Printf("  ! %s\n", w)
	}
	return nil
}
