package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/amalmborg97/cisco.ios/pkg/cli"
	"github.com/amalmborg97/cisco.ios/pkg/settings"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage persistent settings",
	Long: `Manage persistent settings stored in ~/.iosrecon/settings.json.

Settings provide defaults for flags:
  - default_state: State for tasks that name none (--state)
  - redis_addr:    Snapshot store address
  - redis_db:      Snapshot store database
  - audit_log:     Audit log file
  - metrics_file:  Metrics textfile (--metrics-file)
  - lenient_parse: Skip unrecognized running-config lines (--lenient)

Examples:
  iosrecon settings show
  iosrecon settings set default_state replaced
  iosrecon settings set redis_addr 10.0.0.5:6379
  iosrecon settings clear`,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := settings.Load()
		if err != nil {
			return fmt.Errorf("loading settings: %w", err)
		}

		fmt.Printf("Settings file: %s\n\n", settings.DefaultSettingsPath())

		t := cli.NewTable("SETTING", "VALUE", "EFFECTIVE")
		effective := map[string]string{
			"default_state": string(s.GetDefaultState()),
			"redis_addr":    s.GetRedisAddr(),
			"redis_db":      strconv.Itoa(s.RedisDB),
			"audit_log":     s.GetAuditLog(),
			"metrics_file":  s.MetricsFile,
			"lenient_parse": strconv.FormatBool(s.LenientParse),
		}
		for _, key := range settings.Keys {
			value, _ := s.Get(key)
			if value == "" {
				value = "(not set)"
			}
			t.Row(key, value, effective[key])
		}
		t.Flush()
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <setting> <value>",
	Short: "Set a setting value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		setting, value := args[0], args[1]

		s, err := settings.Load()
		if err != nil {
			s = &settings.Settings{}
		}
		if err := s.Set(setting, value); err != nil {
			return err
		}
		if err := s.Save(); err != nil {
			return fmt.Errorf("saving settings: %w", err)
		}
		fmt.Printf("%s set to: %s\n", setting, value)
		return nil
	},
}

var settingsGetCmd = &cobra.Command{
	Use:   "get <setting>",
	Short: "Get a setting value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := settings.Load()
		if err != nil {
			return fmt.Errorf("loading settings: %w", err)
		}

		value, err := s.Get(args[0])
		if err != nil {
			return err
		}
		if value == "" {
			fmt.Println("(not set)")
		} else {
			fmt.Println(value)
		}
		return nil
	},
}

var settingsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear all settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		s := &settings.Settings{}
		if err := s.Save(); err != nil {
			return fmt.Errorf("saving settings: %w", err)
		}
		fmt.Println("All settings cleared.")
		return nil
	},
}

var settingsPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show settings file path",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(settings.DefaultSettingsPath())
	},
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsClearCmd)
	settingsCmd.AddCommand(settingsPathCmd)
}
