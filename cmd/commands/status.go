package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/dohr-michael/taskboard/internal/config"
	"github.com/dohr-michael/taskboard/internal/heartbeat"
)

// NewStatusCommand returns the status subcommand.
func NewStatusCommand() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show taskboard gateway status",
		Action: func(_ context.Context, cmd *cli.Command) error {
			out := writer(cmd)
			status, hb, err := heartbeat.Check(config.HeartbeatPath(), heartbeat.DefaultMaxAge)
			if err != nil {
				return fmt.Errorf("check heartbeat: %w", err)
			}

			switch status {
			case heartbeat.StatusAlive:
				fmt.Fprintf(out, "Gateway: ALIVE (PID %d, uptime %s)\n", hb.PID, hb.Uptime)
				fmt.Fprintf(out, "  addr:    %s\n  storage: %s\n  tasks:   %d\n", hb.Addr, hb.Storage, hb.Tasks)
			case heartbeat.StatusStale:
				fmt.Fprintf(out, "Gateway: STALE (PID %d, last heartbeat %s ago)\n",
					hb.PID, time.Since(hb.Timestamp).Truncate(time.Second))
			case heartbeat.StatusDead:
				fmt.Fprintln(out, "Gateway: NOT RUNNING")
			}

			return nil
		},
	}
}
