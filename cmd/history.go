package cmd

import (
	"fmt"
	"strings"

	"github.com/abhisek/acompana/internal/qgraph"
	"github.com/abhisek/acompana/internal/seed"
	"github.com/abhisek/acompana/internal/store"
	"github.com/abhisek/acompana/internal/who5"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past sessions, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		questionnaire, _ := cmd.Flags().GetString("questionnaire")
		limit, _ := cmd.Flags().GetInt("limit")
		completed, _ := cmd.Flags().GetBool("completed")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		repo, closeRepo, err := openRepo(cmd, cfg)
		if err != nil {
			return err
		}
		defer closeRepo()

		sessions, err := repo.ListSessions(ctx, store.SessionFilter{
			UserID:          cfg.UserID,
			QuestionnaireID: questionnaire,
			CompletedOnly:   completed,
			Limit:           limit,
		})
		if err != nil {
			return err
		}
		if len(sessions) == 0 {
			fmt.Println("No sessions yet.")
			return nil
		}

		fmt.Printf("%-10s  %-12s  %-16s  %-16s  %5s  %s\n",
			"Session", "Questionnaire", "Started", "Completed", "Score", "Result")
		fmt.Println(strings.Repeat("─", 90))

		graphs := make(map[string]*qgraph.Graph)
		for _, s := range sessions {
			done, score, result := "-", "-", ""
			if s.CompletedAt != nil {
				done = s.CompletedAt.Local().Format("2006-01-02 15:04")
			}
			if s.Score != nil {
				score = fmt.Sprintf("%d", *s.Score)
			}

			if s.QuestionnaireID == seed.WHO5ID {
				g, ok := graphs[s.QuestionnaireID]
				if !ok {
					rows, err := repo.LoadGraph(ctx, s.QuestionnaireID)
					if err == nil {
						g, _ = qgraph.Build(rows)
					}
					graphs[s.QuestionnaireID] = g
				}
				if g != nil {
					result = rescore(cmd, repo, g, s)
				}
			}

			fmt.Printf("%-10s  %-12s  %-16s  %-16s  %5s  %s\n",
				shortID(s.ID), s.QuestionnaireID,
				s.StartedAt.Local().Format("2006-01-02 15:04"), done, score, result)
		}
		return nil
	},
}

// rescore recomputes the WHO-5 category from stored answers.
func rescore(cmd *cobra.Command, repo store.Repository, g *qgraph.Graph, s store.SessionRecord) string {
	rows, err := repo.LoadResponses(cmd.Context(), s.ID)
	if err != nil {
		return "?"
	}
	r, complete := who5.Rescore(g, rows)
	if !complete {
		return fmt.Sprintf("in progress (%d/%d)", len(rows), g.Len())
	}
	return r.Category.Label
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func init() {
	historyCmd.Flags().String("questionnaire", "", "Only sessions of this questionnaire")
	historyCmd.Flags().Int("limit", 20, "Maximum number of sessions (0 = all)")
	historyCmd.Flags().Bool("completed", false, "Only completed sessions")
}
