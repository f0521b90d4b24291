package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/thesyncim/obsctl"
)

func newProbeCmd(a *app) *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "probe [server]",
		Short: "Check that an RTMP ingest server accepts connections",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			server := a.cfg.Service.Server
			if len(args) == 1 {
				server = args[0]
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			start := time.Now()
			if err := obsctl.ProbeServer(ctx, server); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s reachable in %s\n", server, time.Since(start).Round(time.Millisecond))
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "dial and handshake timeout")
	return cmd
}
