package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"xeroq/internal/auth"
)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administrative helpers",
	}

	cmd.AddCommand(newAdminHashPasswordCmd())
	return cmd
}

func newAdminHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password",
		Short: "Hash an operator password for server.admin_password_hash",
		Long:  "Reads one line from stdin and prints its bcrypt hash.",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(os.Stderr, "password: ")
			reader := bufio.NewReader(os.Stdin)
			raw, err := reader.ReadString('\n')
			if err != nil && raw == "" {
				return err
			}

			hash, err := auth.HashPassword(strings.TrimRight(raw, "\r\n"))
			if err != nil {
				return err
			}
			return writePlain("%s\n", hash)
		},
	}
}
