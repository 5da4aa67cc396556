package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/amalmborg97/cisco.ios/pkg/cli"
	"github.com/amalmborg97/cisco.ios/pkg/model"
	"github.com/amalmborg97/cisco.ios/pkg/store"
)

var (
	historyDevice  string
	historyFeature string
	historyLimit   int
	historyLatest  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded reconcile snapshots",
	Long: `Show the snapshots recorded by 'reconcile --record' for a device feature,
newest first. --latest prints the most recent snapshot in full.

Examples:
  iosrecon history --device spine1
  iosrecon history --device spine1 --feature evpn_global --limit 5
  iosrecon history --device spine1 --latest`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if historyDevice == "" {
			return fmt.Errorf("device required: use --device <name>")
		}
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		if historyLatest {
			snap, err := st.Latest(cmd.Context(), historyDevice, historyFeature)
			if err != nil {
				return err
			}
			return printSnapshot(snap)
		}

		snaps, err := st.History(cmd.Context(), historyDevice, historyFeature, historyLimit)
		if err != nil {
			return err
		}

		if app.jsonOutput {
			return json.NewEncoder(os.Stdout).Encode(snaps)
		}
		if len(snaps) == 0 {
			fmt.Println("No snapshots recorded")
			return nil
		}

		t := cli.NewTable("TIMESTAMP", "STATE", "COMMANDS", "FINGERPRINT")
		for _, s := range snaps {
			t.Row(
				s.Timestamp.Local().Format("2006-01-02 15:04:05"),
				s.Mode,
				strconv.Itoa(len(s.Commands)),
				shortFingerprint(s.Fingerprint),
			)
		}
		t.Flush()
		return nil
	},
}

func printSnapshot(s *store.Snapshot) error {
	if app.jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}
	fmt.Printf("%s %s %s (%s)\n", bold(s.Device), s.Feature, s.Mode,
		s.Timestamp.Local().Format("2006-01-02 15:04:05"))
	fmt.Printf("Fingerprint: %s\n\n", s.Fingerprint)
	for _, l := range s.Commands {
		fmt.Println("  " + l)
	}
	if d, err := cli.UnifiedDiff(s.Before, s.After, "before", "after"); err == nil && d != "" {
		fmt.Println()
		fmt.Print(cli.ColorDiff(d))
	}
	return nil
}

func init() {
	historyCmd.Flags().StringVar(&historyDevice, "device", "", "Device name")
	historyCmd.Flags().StringVar(&historyFeature, "feature", model.FeatureBGPGlobal, "Feature")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum snapshots to show")
	historyCmd.Flags().BoolVar(&historyLatest, "latest", false, "Show the latest snapshot in full")
}
