package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/idw-coder/quizterm/internal/auth"
)

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List quiz tags",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, cleanup, err := bootstrap(cmd, false)
		if err != nil {
			return err
		}
		defer cleanup()

		tags, err := e.catalog.Tags(cmd.Context())
		if err != nil {
			return fmt.Errorf("list tags: %w", err)
		}
		if len(tags) == 0 {
			fmt.Println("No tags defined.")
			return nil
		}
		fmt.Printf("%-6s %-24s %s\n", "ID", "NAME", "SLUG")
		for _, t := range tags {
			fmt.Printf("%-6d %-24s %s\n", t.ID, t.TagName, t.Slug)
		}
		return nil
	},
}

var tagsAddCmd = &cobra.Command{
	Use:   "add <name> <slug>",
	Short: "Create a quiz tag",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, cleanup, err := tagEditorEnv(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		tag, err := e.catalog.CreateTag(cmd.Context(), args[0], args[1])
		if err != nil {
			return fmt.Errorf("create tag: %w", err)
		}
		fmt.Printf("Created tag #%d %s (%s)\n", tag.ID, tag.TagName, tag.Slug)
		return nil
	},
}

var tagsRenameCmd = &cobra.Command{
	Use:   "rename <id> <name> <slug>",
	Short: "Rename a quiz tag",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("tag id %q is not a number", args[0])
		}
		e, cleanup, err := tagEditorEnv(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		tag, err := e.catalog.UpdateTag(cmd.Context(), id, args[1], args[2])
		if err != nil {
			return fmt.Errorf("update tag: %w", err)
		}
		fmt.Printf("Updated tag #%d %s (%s)\n", tag.ID, tag.TagName, tag.Slug)
		return nil
	},
}

var tagsRemoveCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a quiz tag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("tag id %q is not a number", args[0])
		}
		e, cleanup, err := tagEditorEnv(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		if err := e.catalog.DeleteTag(cmd.Context(), id); err != nil {
			return fmt.Errorf("delete tag: %w", err)
		}
		fmt.Printf("Deleted tag #%d. Quizzes keep their other tags.\n", id)
		return nil
	},
}

// tagEditorEnv bootstraps a signed-in env and checks the manage-tags
// capability before a mutating tag call. The server enforces the role
// too; the client check just gives a clearer message than a 403.
func tagEditorEnv(cmd *cobra.Command) (*env, func(), error) {
	e, cleanup, err := bootstrap(cmd, false)
	if err != nil {
		return nil, nil, err
	}
	if e.auth.Resolve(cmd.Context()) != auth.StateAuthenticated {
		cleanup()
		return nil, nil, fmt.Errorf("sign in first: quizterm login")
	}
	if !e.auth.Role().Can(auth.CapManageTags) {
		cleanup()
		return nil, nil, fmt.Errorf("your role (%s) cannot manage tags", e.auth.Role())
	}
	return e, cleanup, nil
}

func init() {
	tagsCmd.AddCommand(tagsAddCmd)
	tagsCmd.AddCommand(tagsRenameCmd)
	tagsCmd.AddCommand(tagsRemoveCmd)
}
