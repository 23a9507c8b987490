package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"lyricsync/internal/store"
)

type segmentFileEntry struct {
	Seq   int64   `json:"seq"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

func newEditCommand(ctx *commandContext) *cobra.Command {
	var segmentsFile string

	cmd := &cobra.Command{
		Use:   "edit <project-id>",
		Short: "Replace a project's segments from a JSON file",
		Long: `Replace a project's caption segments with the contents of a JSON file.

The file holds an array of segments:

  [{"seq": 0, "start": 0.0, "end": 2.5, "text": "first line"}, ...]

The previous segment set is discarded in the same transaction.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer ctx.close()

			payload, err := os.ReadFile(segmentsFile)
			if err != nil {
				return fmt.Errorf("read segments file: %w", err)
			}
			var entries []segmentFileEntry
			if err := json.Unmarshal(payload, &entries); err != nil {
				return fmt.Errorf("parse segments file: %w", err)
			}

			st, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			project, err := st.GetProject(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			segments := make([]store.Segment, 0, len(entries))
			for _, entry := range entries {
				segments = append(segments, store.Segment{
					ProjectID: project.ID,
					Seq:       entry.Seq,
					Start:     entry.Start,
					End:       entry.End,
					Text:      entry.Text,
				})
			}
			if err := st.ReplaceSegments(cmd.Context(), project.ID, segments); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Replaced segments: %d\n", len(segments))
			return nil
		},
	}

	cmd.Flags().StringVarP(&segmentsFile, "file", "f", "", "JSON file with the replacement segments")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
