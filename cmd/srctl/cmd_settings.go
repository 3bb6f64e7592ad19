package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jalapeno-net/srctl/pkg/cli"
	"github.com/jalapeno-net/srctl/pkg/settings"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage persistent settings",
	Long: `Manage persistent settings stored in ~/.srctl/settings.json.

Settings provide defaults for global flags:
  - api_server: Used when --api-server is not specified
  - registry:   Used when --registry is not specified
  - audit_log:  Overrides the default audit log path

Examples:
  srctl settings show
  srctl settings set api-server http://jalapeno:8000
  srctl settings set registry localhost:6379
  srctl settings clear`,
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

		t := cli.NewTable("SETTING", "VALUE")

		printSetting := func(name, value string) {
			if value == "" {
				value = "(not set)"
			}
			t.Row(name, value)
		}

		printSetting("api_server", s.APIServer)
		printSetting("registry", s.RegistryAddr)
		printSetting("audit_log", s.AuditLog)

		t.Flush()
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <setting> <value>",
	Short: "Set a setting value",
	Long: `Set a persistent setting value.

Available settings:
  api-server - Jalapeno API server address (--api-server flag default)
  registry   - Redis address for the route registry (--registry flag default)
  audit-log  - Audit log path

Examples:
  srctl settings set api-server http://jalapeno:8000
  srctl settings set registry localhost:6379`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		setting := args[0]
		value := args[1]

		s, err := settings.Load()
		if err != nil {
			s = &settings.Settings{}
		}

		switch setting {
		case "api-server", "api_server":
			s.APIServer = value
			fmt.Printf("API server set to: %s\n", value)
		case "registry":
			s.RegistryAddr = value
			fmt.Printf("Route registry set to: %s\n", value)
		case "audit-log", "audit_log":
			s.AuditLog = value
			fmt.Printf("Audit log path set to: %s\n", value)
		default:
			return fmt.Errorf("unknown setting: %s (valid: api-server, registry, audit-log)", setting)
		}

		if err := s.Save(); err != nil {
			return fmt.Errorf("saving settings: %w", err)
		}

		return nil
	},
}

var settingsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Reset all settings to defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := settings.Load()
		if err != nil {
			s = &settings.Settings{}
		}
		s.Clear()
		if err := s.Save(); err != nil {
			return fmt.Errorf("saving settings: %w", err)
		}
		fmt.Println("Settings cleared.")
		return nil
	},
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsClearCmd)
}
