package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/amalmborg97/cisco.ios/pkg/diff"
	"github.com/amalmborg97/cisco.ios/pkg/model"
	"github.com/amalmborg97/cisco.ios/pkg/reconcile"
)

var (
	parseFeature string
	parseRunning string
	parseIgnore  []string
)

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Parse running-config text into structured data",
	Long: `Parse the running configuration of one feature and print it as the YAML
config block a task would carry (or JSON with --json).

Examples:
  iosrecon parse --feature bgp_global --running spine1.cfg
  ssh spine1 show running-config | iosrecon parse --feature evpn_global --running -`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if parseRunning == "" {
			return fmt.Errorf("running config required: use --running <file> or --running -")
		}
		running, err := readInput(parseRunning)
		if err != nil {
			return fmt.Errorf("reading running config: %w", err)
		}

		res, err := newReconciler(parseIgnore).Reconcile(reconcile.Request{
			Feature: parseFeature,
			Running: running,
			Mode:    diff.Parsed,
		})
		if err != nil {
			return err
		}

		if app.jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(res.Parsed)
		}
		return printDocument(res.Parsed)
	},
}

// printDocument writes doc as YAML, or a note when it is empty.
func printDocument(doc model.Document) error {
	if doc == nil || doc.IsEmpty() {
		fmt.Println(yellow("  (not configured)"))
		return nil
	}
	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding %s: %w", doc.Feature(), err)
	}
	return enc.Close()
}

func init() {
	parseCmd.Flags().StringVar(&parseFeature, "feature", model.FeatureBGPGlobal, "Feature to parse")
	parseCmd.Flags().StringVar(&parseRunning, "running", "", "Running config file, - for stdin")
	parseCmd.Flags().StringArrayVar(&parseIgnore, "ignore-lines", nil, "Regexp of running-config lines to ignore")
}
