package main

import (
	"github.com/spf13/cobra"

	"xeroq/internal/api"
	"xeroq/internal/config"
)

func newStatsCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show job counts by status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.Stats(cmd.Context())
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(resp)
				}
				if err := writePlain("total: %d\n", resp.TotalJobs); err != nil {
					return err
				}
				if err := writePlain("pending: %d\n", resp.PendingJobs); err != nil {
					return err
				}
				return writePlain("completed: %d\n", resp.CompletedJobs)
			})
		},
	}
}

func newHealthCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server and database health",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.Health(cmd.Context())
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(resp)
				}
				return writePlain("%s (db: %s, jobs: %d)\n", resp.Status, resp.Database, resp.TotalJobs)
			})
		},
	}
}
