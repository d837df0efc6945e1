package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"xeroq/internal/api"
	"xeroq/internal/config"
)

func newCleanupCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var dryRun bool
	var yes bool

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Remove expired jobs and their files",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !dryRun && !yes {
				return fmt.Errorf("pass --yes to delete expired jobs, or --dry-run to preview")
			}
			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.Cleanup(cmd.Context(), api.CleanupRequest{DryRun: dryRun}, yes)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(resp)
				}
				if resp.DryRun {
					return writePlain("%d expired job(s) would be removed\n", resp.ExpiredCount)
				}
				return writePlain("removed %d expired job(s), %d blob delete error(s)\n", resp.ExpiredCount, resp.BlobDeleteErrors)
			})
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what would be removed without deleting")
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion")
	return cmd
}
