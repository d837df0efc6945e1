package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"xeroq/internal/api"
	"xeroq/internal/config"
)

func newUploadCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var optionsJSON string

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a file and print its OTP",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			printOptions := map[string]any{}
			if optionsJSON != "" {
				if err := json.Unmarshal([]byte(optionsJSON), &printOptions); err != nil {
					return fmt.Errorf("invalid --options JSON: %w", err)
				}
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.Upload(cmd.Context(), filepath.Base(args[0]), f, printOptions)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(resp)
				}
				return writePlain("%s\n", resp.OTP)
			})
		},
	}

	cmd.Flags().StringVar(&optionsJSON, "options", "", "print options as a JSON object")
	return cmd
}
