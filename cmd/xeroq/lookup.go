package main

import (
	"github.com/spf13/cobra"

	"xeroq/internal/api"
	"xeroq/internal/config"
)

func newLookupCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <otp>",
		Short: "Show the job registered under an OTP",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.Lookup(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(resp)
				}
				return writeJobDetail(resp)
			})
		},
	}
}
