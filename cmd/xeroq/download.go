package main

import (
	"os"

	"github.com/spf13/cobra"

	"xeroq/internal/api"
	"xeroq/internal/config"
)

func newDownloadCmd(cfg *config.Config) *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "download <otp>",
		Short: "Download the file registered under an OTP",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				if outputPath == "-" {
					_, _, err := client.Download(cmd.Context(), args[0], os.Stdout)
					return err
				}

				tmp, err := os.CreateTemp(".", ".xeroq-download-*")
				if err != nil {
					return err
				}
				defer os.Remove(tmp.Name())

				filename, _, err := client.Download(cmd.Context(), args[0], tmp)
				if closeErr := tmp.Close(); err == nil {
					err = closeErr
				}
				if err != nil {
					return err
				}

				dst := outputPath
				if dst == "" {
					dst = filename
				}
				if dst == "" {
					dst = args[0]
				}
				if err := os.Rename(tmp.Name(), dst); err != nil {
					return err
				}
				return writePlain("saved %s\n", dst)
			})
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output path (- for stdout)")
	return cmd
}
