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

var deleteFilename string

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete a configuration from file",
	Long: `Delete the forwarding state described by a PathRequest document.
Removal is keyed on the document's prefixes, tables, and BSIDs; no path
service resolution happens.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := spec.LoadFile(deleteFilename)
		if err != nil {
			return err
		}
		fmt.Printf("Loaded configuration from %s\n", deleteFilename)

		processor, registry := newProcessor()
		if registry != nil {
			defer registry.Close()
		}

		start := time.Now()
		event := audit.NewEvent(currentUser(), audit.OperationDelete, deleteFilename).
			WithPlatform(doc.Spec.Platform)

		outcomes, err := processor.Delete(context.Background(), doc)
		if err != nil {
			audit.Log(event.WithError(err).WithDuration(time.Since(start)))
			return err
		}
		logOutcomes(event, outcomes, start)

		printDeleteOutcomes(outcomes)
		return nil
	},
}

func init() {
	deleteCmd.Flags().StringVarP(&deleteFilename, "filename", "f", "", "YAML file containing the configuration to delete")
	deleteCmd.MarkFlagRequired("filename")
}

func printDeleteOutcomes(outcomes []request.Outcome) {
	for _, o := range outcomes {
		if o.Status == request.StatusError {
			fmt.Fprintf(os.Stderr, "Error deleting %s: %s\n", o.Name, o.Error)
			continue
		}

		switch {
		case verbosity == 0:
			fmt.Printf("%s: %s\n", o.Name, o.Message)
		case verbosity == 1:
			fmt.Printf("\n%s:\n", o.Name)
			fmt.Printf("  Message: %s\n", o.Message)
		default:
			fmt.Printf("\n%s:\n", o.Name)
			if dump, err := yaml.Marshal(o); err == nil {
				fmt.Println(string(dump))
			}
		}
	}
}
