package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/idw-coder/quizterm/internal/auth"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and sync local history to your account",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, cleanup, err := bootstrap(cmd, false)
		if err != nil {
			return err
		}
		defer cleanup()

		ctx := cmd.Context()

		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		reader := bufio.NewReader(os.Stdin)
		if email == "" {
			fmt.Print("Email: ")
			line, err := reader.ReadString('\n')
			if err != nil {
				return err
			}
			email = strings.TrimSpace(line)
		}
		if password == "" {
			fmt.Print("Password: ")
			line, err := reader.ReadString('\n')
			if err != nil {
				return err
			}
			password = strings.TrimRight(line, "\r\n")
		}

		// Settle the session first: with no usable token this lands on
		// the signed-out source, so the sign-in below is the transition
		// that migrates local history to the account.
		e.auth.Resolve(ctx)

		if err := e.auth.Login(ctx, email, password); err != nil {
			return fmt.Errorf("sign in: %w", err)
		}

		if err := e.hist.SyncError(); err != nil {
			fmt.Fprintln(os.Stderr, "Signed in, but history sync failed:", err)
			fmt.Fprintln(os.Stderr, "Your local answers are kept and will sync on the next sign-in.")
			return nil
		}

		if u := e.auth.User(); u != nil {
			fmt.Printf("Signed in as %s (%s)\n", u.Name, u.Email)
			if e.auth.Role().Can(auth.CapEditContent) {
				fmt.Println("Content editing is enabled for your role.")
			}
		} else {
			fmt.Println("Signed in.")
		}
		return nil
	},
}

func init() {
	loginCmd.Flags().String("email", "", "Account email")
	loginCmd.Flags().String("password", "", "Account password (prompted when omitted)")
}
