package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"lyricsync/internal/subtitle/ass"
)

func newStyleCommand(ctx *commandContext) *cobra.Command {
	var styleFile string

	cmd := &cobra.Command{
		Use:   "style <project-id>",
		Short: "Show or set a project's caption style",
		Long: `Without --file, print the project's stored style attributes.

With --file, replace them with the contents of a JSON file, for example:

  {"fontFamily": "Inter", "fontSizePx": 32, "color": "#ffcc00", "rotation": 5}`,
		Args: cobra.ExactArgs(1),
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
			out := cmd.OutOrStdout()

			if styleFile == "" {
				document, err := st.StyleDocument(cmd.Context(), project.ID)
				if err != nil {
					return err
				}
				if document == nil {
					fmt.Fprintln(out, "No style stored; burns use defaults.")
					return nil
				}
				fmt.Fprintln(out, string(document))
				return nil
			}

			payload, err := os.ReadFile(styleFile)
			if err != nil {
				return fmt.Errorf("read style file: %w", err)
			}
			var style ass.Style
			if err := json.Unmarshal(payload, &style); err != nil {
				return fmt.Errorf("parse style file: %w", err)
			}
			document, err := json.Marshal(style)
			if err != nil {
				return fmt.Errorf("encode style: %w", err)
			}
			if err := st.SetStyleDocument(cmd.Context(), project.ID, document); err != nil {
				return err
			}
			fmt.Fprintln(out, "Style updated")
			return nil
		},
	}

	cmd.Flags().StringVarP(&styleFile, "file", "f", "", "JSON file with the style attributes")
	return cmd
}
