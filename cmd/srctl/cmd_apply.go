package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jalapeno-net/srctl/pkg/audit"
	"github.com/jalapeno-net/srctl/pkg/request"
	"github.com/jalapeno-net/srctl/pkg/spec"
)

var applyFilename string

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply a configuration from file",
	Long: `Apply a PathRequest document: resolve every route through the path
service and program the resulting SRv6 state into the document's
dataplane.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := spec.LoadFile(applyFilename)
		if err != nil {
			return err
		}
		fmt.Printf("Loaded configuration from %s\n", applyFilename)

		processor, registry := newProcessor()
		if registry != nil {
			defer registry.Close()
		}

		start := time.Now()
		event := audit.NewEvent(currentUser(), audit.OperationApply, applyFilename).
			WithPlatform(doc.Spec.Platform)

		outcomes, err := processor.Apply(context.Background(), doc)
		if err != nil {
			audit.Log(event.WithError(err).WithDuration(time.Since(start)))
			return err
		}
		logOutcomes(event, outcomes, start)

		printApplyOutcomes(outcomes)
		return nil
	},
}

func init() {
	applyCmd.Flags().StringVarP(&applyFilename, "filename", "f", "", "YAML file containing the configuration")
	applyCmd.MarkFlagRequired("filename")
}

// logOutcomes records the walk's totals in the audit log.
func logOutcomes(event *audit.Event, outcomes []request.Outcome, start time.Time) {
	succeeded, failed := 0, 0
	for _, o := range outcomes {
		if o.Status == request.StatusSuccess {
			succeeded++
		} else {
			failed++
		}
	}
	audit.Log(event.WithCounts(len(outcomes), succeeded, failed).WithDuration(time.Since(start)))
}

// printApplyOutcomes renders apply results at the requested verbosity:
// one line per route by default, srv6 details at -v, the full path
// service response at -vv.
func printApplyOutcomes(outcomes []request.Outcome) {
	for _, o := range outcomes {
		if o.Status == request.StatusError {
			fmt.Fprintf(os.Stderr, "Error for %s: %s\n", o.Name, o.Error)
			continue
		}

		switch {
		case verbosity == 0:
			fmt.Printf("%s: %s %s\n", o.Name, outcomeUSID(o), o.RouteProgramming)
		case verbosity == 1:
			fmt.Printf("\n%s:\n", o.Name)
			fmt.Printf("  SRv6 USID: %s\n", outcomeUSID(o))
			fmt.Printf("  SID List: %v\n", outcomeSIDList(o))
			if o.RouteProgramming != "" {
				fmt.Printf("  Route Programming: %s\n", o.RouteProgramming)
			}
		default:
			fmt.Printf("\n%s:\n", o.Name)
			if dump, err := yaml.Marshal(o.Data); err == nil {
				fmt.Println(string(dump))
			}
			if o.RouteProgramming != "" {
				fmt.Printf("Route Programming: %s\n", o.RouteProgramming)
			}
		}
	}
}

func outcomeSRv6Data(o request.Outcome) map[string]interface{} {
	srv6Data, _ := o.Data["srv6_data"].(map[string]interface{})
	return srv6Data
}

func outcomeUSID(o request.Outcome) string {
	if usid, ok := outcomeSRv6Data(o)["srv6_usid"].(string); ok && usid != "" {
		return usid
	}
	return "N/A"
}

func outcomeSIDList(o request.Outcome) interface{} {
	if list, ok := outcomeSRv6Data(o)["srv6_sid_list"]; ok {
		return list
	}
	return []interface{}{}
}
