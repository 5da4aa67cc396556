package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amalmborg97/cisco.ios/pkg/cli"
	"github.com/amalmborg97/cisco.ios/pkg/ioscfg"
	"github.com/amalmborg97/cisco.ios/pkg/reconcile"
)

var featuresCmd = &cobra.Command{
	Use:   "features",
	Short: "List reconcilable features and their states",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		features := newReconciler(nil).Features()

		if app.jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(struct {
				Features     []reconcile.Feature `json:"features"`
				Capabilities ioscfg.Capabilities `json:"capabilities"`
			}{features, ioscfg.GetCapabilities()})
		}

		t := cli.NewTable("FEATURE", "STATES")
		for _, f := range features {
			modes := make([]string, len(f.Modes))
			for i, m := range f.Modes {
				modes[i] = string(m)
			}
			t.Row(f.Name, strings.Join(modes, ", "))
		}
		t.Flush()

		opts := ioscfg.SupportedOptions()
		fmt.Printf("\nLine diff: match %s; replace %s\n",
			strings.Join(opts.DiffMatch, ", "), strings.Join(opts.DiffReplace, ", "))
		return nil
	},
}
