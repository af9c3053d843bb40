package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/idw-coder/quizterm/internal/history"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print per-category accuracy",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, cleanup, err := bootstrap(cmd, false)
		if err != nil {
			return err
		}
		defer cleanup()

		ctx := cmd.Context()
		e.auth.Resolve(ctx)
		if err := e.hist.Refresh(ctx); err != nil {
			return fmt.Errorf("load history: %w", err)
		}

		answers := e.hist.Answers()
		if len(answers) == 0 {
			fmt.Println("No answers recorded yet.")
			return nil
		}

		names := make(map[int]string)
		if cats, err := e.catalog.Categories(ctx); err == nil {
			for _, c := range cats {
				names[c.ID] = c.CategoryName
			}
		}

		seen := make(map[int]bool)
		var ids []int
		for _, a := range answers {
			if !seen[a.CategoryID] {
				seen[a.CategoryID] = true
				ids = append(ids, a.CategoryID)
			}
		}
		sort.Ints(ids)

		fmt.Printf("%-24s %8s %8s %6s\n", "CATEGORY", "CORRECT", "TOTAL", "ACC")
		for _, id := range ids {
			acc := history.AccuracyForCategory(answers, id)
			name := names[id]
			if name == "" {
				name = fmt.Sprintf("category %d", id)
			}
			fmt.Printf("%-24s %8d %8d %5d%%\n", name, acc.CorrectCount, acc.TotalCount, acc.Percentage)
		}
		fmt.Printf("\n%d answers across %d quizzes.\n", len(answers), len(history.LatestByQuiz(answers)))
		return nil
	},
}
