// Srctl - Segment Routing Configuration Tool
//
// A CLI tool for programming SRv6 paths from declarative PathRequest
// documents:
//   - Resolves each route through the Jalapeno path computation API
//   - Programs the resulting SRv6 state into the Linux kernel or VPP
//   - Route registry and audit logging of all operations
//
// Examples:
//
//	srctl apply -f lax-rome.yaml                # Program all routes
//	srctl apply -f lax-rome.yaml -vv            # ...with full API output
//	srctl delete -f lax-rome.yaml               # Remove all routes
//	srctl get-paths -s xrd01 -d xrd07           # Inspect candidate paths
//	srctl routes                                # List programmed routes
//	srctl settings set api-server http://jalapeno:8000
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jalapeno-net/srctl/pkg/audit"
	"github.com/jalapeno-net/srctl/pkg/pathservice"
	"github.com/jalapeno-net/srctl/pkg/request"
	"github.com/jalapeno-net/srctl/pkg/settings"
	"github.com/jalapeno-net/srctl/pkg/state"
	"github.com/jalapeno-net/srctl/pkg/util"
	"github.com/jalapeno-net/srctl/pkg/version"
)

// apiServerEnv overrides the configured API server when set.
const apiServerEnv = "JALAPENO_API_SERVER"

var (
	// Global option flags
	apiServer    string // --api-server
	registryAddr string // --registry
	verbosity    int    // -v, counted

	// Global state
	userSettings *settings.Settings
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:               "srctl",
	Short:             "Segment Routing Configuration Tool",
	SilenceUsage:      true,
	SilenceErrors:     true,
	CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
	Long: `Srctl programs SRv6 paths from declarative PathRequest documents.

Each route in a document is resolved through the Jalapeno path
computation API and installed into the document's dataplane (Linux
kernel or VPP).

  srctl apply -f <file>     program routes
  srctl delete -f <file>    remove routes`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for certain commands
		if isSettingsOrHelp(cmd) {
			return nil
		}

		// Load user settings
		var err error
		userSettings, err = settings.Load()
		if err != nil {
			util.Warnf("Could not load settings: %v", err)
			userSettings = &settings.Settings{}
		}

		// Resolve the API server: flag > environment > settings > default
		if apiServer == "" {
			apiServer = os.Getenv(apiServerEnv)
		}
		if apiServer == "" {
			apiServer = userSettings.GetAPIServer()
		}
		if registryAddr == "" {
			registryAddr = userSettings.RegistryAddr
		}

		// Set log level: quiet by default, verbose on -v
		if verbosity > 0 {
			util.SetLogLevel("debug")
		} else {
			util.SetLogLevel("warn")
		}

		// Initialize audit logger
		auditPath := userSettings.AuditLog
		if auditPath == "" {
			home, err := os.UserHomeDir()
			if err == nil {
				auditPath = home + "/.srctl/audit.log"
			}
		}
		if auditPath != "" {
			auditLogger, err := audit.NewFileLogger(auditPath, audit.RotationConfig{
				MaxSize:    10 * 1024 * 1024, // 10MB
				MaxBackups: 10,
			})
			if err != nil {
				util.Warnf("Could not initialize audit logging: %v", err)
			} else {
				audit.SetDefaultLogger(auditLogger)
			}
		}

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiServer, "api-server", "", "Jalapeno API server address (env "+apiServerEnv+")")
	rootCmd.PersistentFlags().StringVar(&registryAddr, "registry", "", "Redis address for the route registry")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase output verbosity (-v for detailed, -vv for full output)")

	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(getPathsCmd)
	rootCmd.AddCommand(routesCmd)
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		if version.Version == "dev" {
			fmt.Println("srctl dev build (use 'make build' for version info)")
		} else {
			fmt.Printf("srctl %s (%s)\n", version.Version, version.GitCommit)
		}
	},
}

// newPathClient builds the path service client from the resolved server.
func newPathClient() *pathservice.Client {
	return pathservice.NewClient(apiServer)
}

// newProcessor builds a request processor, attaching the route registry
// when one is configured. The caller owns closing the returned registry.
func newProcessor() (*request.Processor, *state.Registry) {
	p := request.NewProcessor(newPathClient())
	if registryAddr == "" {
		return p, nil
	}
	reg := state.NewRegistry(registryAddr)
	p.WithRecorder(reg)
	return p, reg
}

// currentUser names the invoking user for audit events.
func currentUser() string {
	if u := os.Getenv("SUDO_USER"); u != "" {
		return u
	}
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "unknown"
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
