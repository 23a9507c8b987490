package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"lyricsync/internal/daemon"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the running daemon's status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			url := fmt.Sprintf("http://%s/api/status", cfg.Paths.APIBind)
			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, url, nil)
			if err != nil {
				return err
			}
			if cfg.Paths.APIToken != "" {
				req.Header.Set("Authorization", "Bearer "+cfg.Paths.APIToken)
			}

			client := &http.Client{Timeout: 5 * time.Second}
			resp, err := client.Do(req)
			if err != nil {
				return fmt.Errorf("daemon not reachable at %s; start it with `lyricsyncd`: %w", cfg.Paths.APIBind, err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("daemon returned %s", resp.Status)
			}

			var status daemon.Status
			if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
				return fmt.Errorf("decode status: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Running:  %s\n", yesNo(status.Running))
			fmt.Fprintf(out, "API:      %s\n", status.APIBind)
			fmt.Fprintf(out, "Engine:   %s\n", status.Engine)
			fmt.Fprintf(out, "Database: %s\n", status.DBPath)
			fmt.Fprintf(out, "Lock:     %s\n", status.LockFilePath)
			for _, dep := range status.Dependencies {
				fmt.Fprintf(out, "Tool %-8s available=%s", dep.Name, yesNo(dep.Available))
				if dep.Detail != "" {
					fmt.Fprintf(out, " (%s)", dep.Detail)
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}
	return cmd
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
