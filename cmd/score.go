package cmd

import (
	"fmt"
	"strconv"

	"github.com/abhisek/acompana/internal/ui/theme"
	"github.com/abhisek/acompana/internal/who5"
	"github.com/spf13/cobra"
)

var scoreCmd = &cobra.Command{
	Use:   "score v1 v2 v3 v4 v5",
	Short: "Score WHO-5 item values (0-5 each) without running a session",
	Args:  cobra.ExactArgs(who5.ItemCount),
	RunE: func(cmd *cobra.Command, args []string) error {
		values := make(map[string]int, len(args))
		for i, arg := range args {
			v, err := strconv.Atoi(arg)
			if err != nil {
				return fmt.Errorf("item %d: %q is not a number", i+1, arg)
			}
			if v < 0 || v > 5 {
				return fmt.Errorf("item %d: %d is outside 0-5", i+1, v)
			}
			values[fmt.Sprintf("item%d", i+1)] = v
		}

		r := who5.Score(values)
		fmt.Printf("Raw:   %d/25\n", r.Raw)
		fmt.Printf("Final: %d/100\n", r.Final)
		fmt.Println(theme.ToneStyle(string(r.Category.Tone)).Render(r.Category.Label))
		fmt.Println(r.Category.Description)
		return nil
	},
}
