// Iosrecon - Cisco IOS declarative configuration reconciliation
//
// Reads a desired feature configuration and a device's running
// configuration, and prints the ordered IOS commands that make the device
// match under one of the reconcile states:
//
//	merged      add and update what the task names, keep everything else
//	replaced    make every section the task names match exactly
//	overridden  make the whole feature match the task
//	deleted     remove the feature (or the named parts of it)
//	rendered    emit the task's commands without a running config
//	gathered    report the running config as structured data
//	parsed      parse running-config text into structured data
//
// Examples:
//
//	iosrecon reconcile -f spine1-bgp.yaml --running spine1.cfg
//	iosrecon reconcile -f spine1-bgp.yaml --state overridden --diff
//	iosrecon parse --feature bgp_global --running spine1.cfg
//	iosrecon diff --candidate intended.cfg --running spine1.cfg --match exact
//	iosrecon history --device spine1 --feature bgp_global
package main

import (
	"fmt"
	"io"
	"os"
	"os/user"

	"github.com/spf13/cobra"

	"github.com/amalmborg97/cisco.ios/pkg/audit"
	"github.com/amalmborg97/cisco.ios/pkg/cli"
	"github.com/amalmborg97/cisco.ios/pkg/reconcile"
	"github.com/amalmborg97/cisco.ios/pkg/settings"
	"github.com/amalmborg97/cisco.ios/pkg/store"
	"github.com/amalmborg97/cisco.ios/pkg/util"
	"github.com/amalmborg97/cisco.ios/pkg/version"
)

// App holds the global flags and the state shared by subcommands.
type App struct {
	verbose     bool
	jsonLog     bool
	jsonOutput  bool
	lenient     bool
	metricsFile string

	settings *settings.Settings
	metrics  *reconcile.Metrics
	user     string
}

var app = &App{}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:               "iosrecon",
	Short:             "Cisco IOS declarative configuration reconciliation",
	SilenceUsage:      true,
	SilenceErrors:     true,
	CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
	Long: `Iosrecon computes the IOS commands that move a device feature from its
running configuration to a desired configuration.

Nothing is sent to a device: commands are printed for review or for a
separate delivery tool.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Set log level: quiet by default, verbose on -v
		if app.verbose {
			util.SetLogLevel("debug")
		} else {
			util.SetLogLevel("warn")
		}
		if app.jsonLog {
			util.SetJSONFormat()
		}

		var err error
		app.settings, err = settings.Load()
		if err != nil {
			util.Warnf("Could not load settings: %v", err)
			app.settings = &settings.Settings{}
		}

		if isSettingsOrHelp(cmd) {
			return nil
		}

		// Flags win over settings
		if !cmd.Flags().Changed("lenient") {
			app.lenient = app.settings.LenientParse
		}
		if app.metricsFile == "" {
			app.metricsFile = app.settings.MetricsFile
		}
		if app.metricsFile != "" {
			app.metrics = reconcile.NewMetrics()
		}

		app.user = "unknown"
		if u, err := user.Current(); err == nil {
			app.user = u.Username
		}

		auditLogger, err := audit.NewFileLogger(app.settings.GetAuditLog(), audit.RotationConfig{
			MaxSize:    10 * 1024 * 1024, // 10MB
			MaxBackups: 10,
		})
		if err != nil {
			util.Debugf("Could not initialize audit logging: %v", err)
		} else {
			audit.SetDefaultLogger(auditLogger)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if app.metrics == nil || app.metricsFile == "" {
			return nil
		}
		if err := app.metrics.WriteToTextfile(app.metricsFile); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&app.jsonLog, "json-log", false, "Log in JSON format")
	rootCmd.PersistentFlags().BoolVar(&app.lenient, "lenient", false, "Skip unrecognized running-config lines")
	rootCmd.PersistentFlags().StringVar(&app.metricsFile, "metrics-file", "", "Write run metrics to this textfile")

	for _, cmd := range []*cobra.Command{reconcileCmd, parseCmd, diffCmd, featuresCmd, historyCmd, auditListCmd} {
		addOutputFlags(cmd)
	}

	rootCmd.AddGroup(
		&cobra.Group{ID: "config", Title: "Configuration Operations:"},
		&cobra.Group{ID: "meta", Title: "Configuration & Meta:"},
	)

	for _, cmd := range []*cobra.Command{reconcileCmd, parseCmd, diffCmd, historyCmd} {
		cmd.GroupID = "config"
		rootCmd.AddCommand(cmd)
	}
	for _, cmd := range []*cobra.Command{featuresCmd, settingsCmd, auditCmd, versionCmd} {
		cmd.GroupID = "meta"
		rootCmd.AddCommand(cmd)
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Line("iosrecon"))
	},
}

// newReconciler builds a Reconciler from the global flags.
func newReconciler(ignoreLines []string) *reconcile.Reconciler {
	return reconcile.New(reconcile.Options{
		Lenient:     app.lenient,
		IgnoreLines: ignoreLines,
		Metrics:     app.metrics,
	})
}

// openStore connects to the snapshot store named by the settings.
func openStore(cmd *cobra.Command) (*store.RedisStore, error) {
	s := store.NewRedisStore(app.settings.GetRedisAddr(), app.settings.RedisDB)
	if err := s.Ping(cmd.Context()); err != nil {
		s.Close()
		return nil, fmt.Errorf("connecting to snapshot store at %s: %w", app.settings.GetRedisAddr(), err)
	}
	return s, nil
}

// readInput reads a file, or stdin when path is "-".
func readInput(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// isSettingsOrHelp checks whether cmd (or any ancestor) is a settings, help, or version command.
func isSettingsOrHelp(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "help", "version", "settings":
			return true
		}
	}
	return false
}

// addOutputFlags registers --json as a local flag.
func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&app.jsonOutput, "json", false, "JSON output")
}

// Color helpers delegate to pkg/cli
func green(s string) string  { return cli.Green(s) }
func yellow(s string) string { return cli.Yellow(s) }
func red(s string) string    { return cli.Red(s) }
func bold(s string) string   { return cli.Bold(s) }
