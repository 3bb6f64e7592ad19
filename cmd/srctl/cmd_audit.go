package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jalapeno-net/srctl/pkg/audit"
	"github.com/jalapeno-net/srctl/pkg/cli"
)

var (
	auditUser      string
	auditOperation string
	auditPlatform  string
	auditFailed    bool
	auditLimit     int
	auditSince     time.Duration
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Query the audit log",
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := audit.Filter{
			User:        auditUser,
			Operation:   auditOperation,
			Platform:    auditPlatform,
			FailureOnly: auditFailed,
			Limit:       auditLimit,
		}
		if auditSince > 0 {
			filter.Since = time.Now().Add(-auditSince)
		}
		events, err := audit.Query(filter)
		if err != nil {
			return fmt.Errorf("querying audit log: %w", err)
		}
		if len(events) == 0 {
			fmt.Println("No audit events found.")
			return nil
		}

		table := cli.NewTable("TIME", "USER", "OPERATION", "PLATFORM", "ROUTES", "RESULT", "FILE")
		for _, e := range events {
			result := cli.Green("ok")
			if !e.Success {
				result = cli.Red("failed")
			}
			table.Row(
				e.Timestamp.Format(time.RFC3339),
				e.User,
				e.Operation,
				e.Platform,
				fmt.Sprintf("%d/%d", e.Succeeded, e.Routes),
				result,
				e.File,
			)
		}
		table.Flush()
		return nil
	},
}

func init() {
	auditCmd.Flags().StringVar(&auditUser, "user", "", "Filter by user")
	auditCmd.Flags().StringVar(&auditOperation, "operation", "", "Filter by operation (apply, delete)")
	auditCmd.Flags().StringVar(&auditPlatform, "platform", "", "Filter by platform (linux, vpp)")
	auditCmd.Flags().BoolVar(&auditFailed, "failed", false, "Show only failed operations")
	auditCmd.Flags().IntVar(&auditLimit, "limit", 0, "Limit number of events")
	auditCmd.Flags().DurationVar(&auditSince, "since", 0, "Show only events newer than this duration (e.g. 24h)")
}
