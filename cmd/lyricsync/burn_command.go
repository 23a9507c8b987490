package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newBurnCommand(ctx *commandContext) *cobra.Command {
	var previewOnly bool

	cmd := &cobra.Command{
		Use:   "burn <project-id>",
		Short: "Render a project's captions into its source video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer ctx.close()

			pipeline, err := ctx.renderPipeline()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if previewOnly {
				document, err := pipeline.CompileDocument(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprint(out, document)
				return nil
			}

			output, err := pipeline.Burn(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Burned output: %s\n", output)
			return nil
		},
	}

	cmd.Flags().BoolVar(&previewOnly, "preview", false, "Print the compiled subtitle document instead of encoding")
	return cmd
}
