package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

func newTranscribeCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "transcribe <video-file>",
		Aliases: []string{"add"},
		Short:   "Ingest a local video and transcribe it into a caption project",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer ctx.close()

			source := strings.TrimSpace(args[0])
			absPath, err := filepath.Abs(source)
			if err != nil {
				return fmt.Errorf("resolve source path: %w", err)
			}
			info, err := os.Stat(absPath)
			if err != nil {
				return fmt.Errorf("stat source file: %w", err)
			}
			if info.IsDir() {
				return fmt.Errorf("source path %q is a directory", absPath)
			}

			pipeline, err := ctx.ingestPipeline()
			if err != nil {
				return err
			}
			file, err := os.Open(absPath)
			if err != nil {
				return fmt.Errorf("open source file: %w", err)
			}
			defer file.Close()

			result, err := pipeline.Ingest(cmd.Context(), filepath.Base(absPath), file)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Project:   %s\n", result.ProjectID)
			fmt.Fprintf(out, "Owner key: %s\n", result.OwnerKey)
			fmt.Fprintf(out, "Segments:  %d\n", result.SegmentCount)
			fmt.Fprintln(out, "Keep the owner key: API access to this project requires it.")
			return nil
		},
	}
	return cmd
}
