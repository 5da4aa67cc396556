package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/amalmborg97/cisco.ios/pkg/audit"
	"github.com/amalmborg97/cisco.ios/pkg/cli"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "View audit logs",
	Long: `View the audit log of reconcile runs, newest first.

Every run is logged with:
  - Timestamp
  - User who ran it
  - Device, feature and state
  - Commands generated and their plan fingerprint
  - Success/failure status

Examples:
  iosrecon audit list --device spine1
  iosrecon audit list --last 24h
  iosrecon audit list --feature evpn_global --changed
  iosrecon audit list --fingerprint <plan fingerprint>`,
}

var (
	auditDevice   string
	auditUser     string
	auditFeature  string
	auditState    string
	auditPlan     string
	auditLast     string
	auditLimit    int
	auditFailures bool
	auditChanged  bool
)

var auditListCmd = &cobra.Command{
	Use:   "list",
	Short: "List audit events",
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := audit.Filter{
			Device:      auditDevice,
			User:        auditUser,
			Feature:     auditFeature,
			Mode:        auditState,
			Fingerprint: auditPlan,
			Limit:       auditLimit,
			FailureOnly: auditFailures,
			ChangedOnly: auditChanged,
		}

		if auditLast != "" {
			duration, err := time.ParseDuration(auditLast)
			if err != nil {
				return fmt.Errorf("invalid duration: %s", auditLast)
			}
			filter.StartTime = time.Now().Add(-duration)
		}

		events, err := audit.Query(filter)
		if err != nil {
			return fmt.Errorf("querying audit log: %w", err)
		}

		if app.jsonOutput {
			return json.NewEncoder(os.Stdout).Encode(events)
		}

		if len(events) == 0 {
			fmt.Println("No audit events found")
			return nil
		}

		t := cli.NewTable("TIMESTAMP", "USER", "DEVICE", "FEATURE", "STATE", "COMMANDS", "PLAN", "STATUS")
		for _, event := range events {
			status := green("ok")
			switch {
			case !event.Success:
				status = red("failed")
			case !event.Changed:
				status = "no-op"
			}

			t.Row(
				event.Timestamp.Format("2006-01-02 15:04:05"),
				event.User,
				event.Device,
				event.Feature,
				event.Mode,
				strconv.Itoa(len(event.Commands)),
				shortFingerprint(event.Fingerprint),
				status,
			)
		}
		t.Flush()

		return nil
	},
}

func init() {
	auditListCmd.Flags().StringVar(&auditDevice, "device", "", "Filter by device")
	auditListCmd.Flags().StringVar(&auditUser, "user", "", "Filter by user")
	auditListCmd.Flags().StringVar(&auditFeature, "feature", "", "Filter by feature")
	auditListCmd.Flags().StringVar(&auditState, "state", "", "Filter by state")
	auditListCmd.Flags().StringVar(&auditPlan, "fingerprint", "", "Filter by plan fingerprint")
	auditListCmd.Flags().StringVar(&auditLast, "last", "", "Show events from last duration (e.g., 24h)")
	auditListCmd.Flags().IntVar(&auditLimit, "limit", 100, "Maximum events to show")
	auditListCmd.Flags().BoolVar(&auditFailures, "failures", false, "Show only failed runs")
	auditListCmd.Flags().BoolVar(&auditChanged, "changed", false, "Show only runs that produced commands")

	auditCmd.AddCommand(auditListCmd)
}
