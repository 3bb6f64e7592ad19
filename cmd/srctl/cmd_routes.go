package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jalapeno-net/srctl/pkg/cli"
	"github.com/jalapeno-net/srctl/pkg/state"
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "List routes recorded in the registry",
	Long: `List the routes srctl has programmed, as recorded in the Redis route
registry. Requires --registry or a configured registry address.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if registryAddr == "" {
			return fmt.Errorf("no route registry configured: use --registry or 'srctl settings set registry <addr>'")
		}

		ctx := context.Background()
		registry := state.NewRegistry(registryAddr)
		defer registry.Close()
		if err := registry.Connect(ctx); err != nil {
			return fmt.Errorf("connecting to registry at %s: %w", registryAddr, err)
		}

		entries, err := registry.ListRoutes(ctx)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("No routes recorded.")
			return nil
		}

		table := cli.NewTable("NAME", "PLATFORM", "PREFIX", "TABLE", "SEGMENT", "PROGRAMMED")
		for _, e := range entries {
			table.Row(e.Name, e.Platform, e.DestinationPrefix, strconv.Itoa(e.TableID), e.Segment, e.ProgrammedAt)
		}
		table.Flush()
		return nil
	},
}
