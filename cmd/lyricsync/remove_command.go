package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRemoveCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rm <project-id>",
		Aliases: []string{"remove"},
		Short:   "Delete a project, its segments, and its assets",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer ctx.close()

			st, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			if err := st.DeleteProject(cmd.Context(), args[0]); err != nil {
				return err
			}
			assets, err := ctx.assets()
			if err != nil {
				return err
			}
			if err := assets.RemoveProjectAssets(args[0]); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed project %s\n", args[0])
			return nil
		},
	}
	return cmd
}
