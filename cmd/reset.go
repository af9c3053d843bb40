package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/idw-coder/quizterm/internal/auth"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete the recorded quiz history",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, cleanup, err := bootstrap(cmd, false)
		if err != nil {
			return err
		}
		defer cleanup()

		ctx := cmd.Context()
		state := e.auth.Resolve(ctx)

		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			target := "this machine's history"
			if state == auth.StateAuthenticated {
				target = "your account's history"
			}
			fmt.Printf("This deletes %s. Continue? [y/N] ", target)
			line, err := bufio.NewReader(os.Stdin).ReadString('\n')
			if err != nil {
				return err
			}
			if ans := strings.ToLower(strings.TrimSpace(line)); ans != "y" && ans != "yes" {
				fmt.Println("Aborted.")
				return nil
			}
		}

		if err := e.hist.ClearHistory(ctx); err != nil {
			return fmt.Errorf("clear history: %w", err)
		}
		fmt.Println("History cleared.")
		return nil
	},
}

func init() {
	resetCmd.Flags().Bool("yes", false, "Skip the confirmation prompt")
}
