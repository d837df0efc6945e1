package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"xeroq/internal/config"
)

func newRootCmd(cfg *config.Config) *cobra.Command {
	var jsonOutput bool
	var logLevel string

	cmd := &cobra.Command{
		Use:   "xeroq",
		Short: "Xeroq is an OTP-keyed print job drop box",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			warning, err := configureLoggerForCLI(logLevel, cfg.LogLevel)
			if err != nil {
				return err
			}
			if warning != "" {
				fmt.Fprintln(os.Stderr, warning)
			}
			return nil
		},
	}

	cmd.Version = version
	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output JSON")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	cmd.AddCommand(
		newSrvCmd(cfg),
		newUploadCmd(cfg, &jsonOutput),
		newLookupCmd(cfg, &jsonOutput),
		newDownloadCmd(cfg),
		newCompleteCmd(cfg, &jsonOutput),
		newCleanupCmd(cfg, &jsonOutput),
		newStatsCmd(cfg, &jsonOutput),
		newHealthCmd(cfg, &jsonOutput),
		newConfigCmd(cfg),
		newAdminCmd(),
	)

	return cmd
}
