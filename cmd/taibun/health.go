package main

import (
	"fmt"

	"github.com/example/go-taibun/internal/server"
	"github.com/spf13/cobra"
)

func newHealthCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check health endpoint of a running server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				cfg, err := requireConfig()
				if err != nil {
					return err
				}
				addr = cfg.Server.ListenAddr
			}

			if err := server.ProbeHTTP(addr); err != nil {
				return fmt.Errorf("health check %s: %w", addr, err)
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Server address (defaults to --server-listen-addr)")

	return cmd
}
