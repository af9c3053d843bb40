package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out of your account",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, cleanup, err := bootstrap(cmd, false)
		if err != nil {
			return err
		}
		defer cleanup()

		ctx := cmd.Context()
		if e.store.Token(ctx) == "" {
			fmt.Println("Not signed in.")
			return nil
		}

		e.auth.Logout(ctx)
		fmt.Println("Signed out. New answers will be recorded on this machine only.")
		return nil
	},
}
