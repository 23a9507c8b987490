package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <project-id>",
		Short: "Show a project and its caption segments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer ctx.close()

			st, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			project, err := st.GetProject(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			segments, err := st.Segments(cmd.Context(), project.ID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Project:  %s\n", project.ID)
			fmt.Fprintf(out, "Source:   %s\n", project.OriginalURI)
			if project.BurnedURI != "" {
				fmt.Fprintf(out, "Burned:   %s\n", project.BurnedURI)
			}
			fmt.Fprintf(out, "Created:  %s\n", project.CreatedAt.Local().Format("2006-01-02 15:04:05"))
			fmt.Fprintln(out)
			fmt.Fprintln(out, segmentsTable(segments))
			return nil
		},
	}
	return cmd
}
