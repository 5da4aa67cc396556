package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amalmborg97/cisco.ios/pkg/commands"
	"github.com/amalmborg97/cisco.ios/pkg/ioscfg"
)

var (
	diffCandidate string
	diffRunning   string
	diffMatch     string
	diffReplace   string
	diffPath      []string
	diffIgnore    []string
	diffDelimiter string
)

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Line-level diff of a candidate config against running",
	Long: `Compare a candidate configuration with the running configuration and
print the lines needed to apply it, followed by banner sessions for banners
whose text changed.

Match modes:
  line    a line is missing when its text and parents are absent (default)
  strict  a line differs when the line at the same position differs
  exact   a block differs when any of its lines differ
  none    every candidate line is emitted

Examples:
  iosrecon diff --candidate intended.cfg --running spine1.cfg
  iosrecon diff --candidate acl.cfg --running spine1.cfg --match exact
  iosrecon diff --candidate ntp.cfg --running spine1.cfg --path "router bgp 65000"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if diffCandidate == "" {
			return fmt.Errorf("candidate config required: use --candidate <file>")
		}
		candidate, err := readInput(diffCandidate)
		if err != nil {
			return fmt.Errorf("reading candidate config: %w", err)
		}
		running, err := readInput(diffRunning)
		if err != nil {
			return fmt.Errorf("reading running config: %w", err)
		}

		d, err := ioscfg.GetDiff(candidate, running, ioscfg.Options{
			Match:       ioscfg.Match(diffMatch),
			Replace:     ioscfg.Replace(diffReplace),
			Path:        diffPath,
			IgnoreLines: diffIgnore,
		})
		if err != nil {
			return err
		}

		if app.jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(d)
		}

		if d.ConfigDiff == "" && len(d.BannerDiff) == 0 {
			fmt.Println(green("No differences."))
			return nil
		}
		if d.ConfigDiff != "" {
			for _, l := range strings.Split(d.ConfigDiff, "\n") {
				if strings.HasPrefix(strings.TrimSpace(l), "no ") {
					fmt.Println(red(l))
				} else {
					fmt.Println(l)
				}
			}
		}
		if len(d.BannerDiff) > 0 {
			fmt.Println()
			fmt.Println(bold("Banners:"))
			for _, l := range commands.BannerSession(d.BannerDiff, diffDelimiter) {
				fmt.Println(l)
			}
		}
		return nil
	},
}

func init() {
	diffCmd.Flags().StringVar(&diffCandidate, "candidate", "", "Candidate config file, - for stdin")
	diffCmd.Flags().StringVar(&diffRunning, "running", "", "Running config file")
	diffCmd.Flags().StringVar(&diffMatch, "match", string(ioscfg.MatchLine), "Match mode: line, strict, exact, none")
	diffCmd.Flags().StringVar(&diffReplace, "replace", string(ioscfg.ReplaceLine), "Replace mode: line, block")
	diffCmd.Flags().StringArrayVar(&diffPath, "path", nil, "Parent path to restrict the diff to (repeatable)")
	diffCmd.Flags().StringArrayVar(&diffIgnore, "ignore-lines", nil, "Regexp of running-config lines to ignore")
	diffCmd.Flags().StringVar(&diffDelimiter, "banner-delimiter", commands.DefaultBannerDelimiter, "Banner delimiter character")
}
