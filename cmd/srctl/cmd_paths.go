package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jalapeno-net/srctl/pkg/pathservice"
	"github.com/jalapeno-net/srctl/pkg/spec"
)

var (
	pathsFilename     string
	pathsSource       string
	pathsDestination  string
	pathsGraph        string
	pathsType         string
	pathsDirection    string
	pathsLimit        int
	pathsSameHopLimit int
	pathsPlusOneLimit int
)

var getPathsCmd = &cobra.Command{
	Use:   "get-paths",
	Short: "Get best paths between source and destination",
	Long: `Query the path service for candidate paths without programming
anything. Either name a source and destination directly, or point at a
PathRequest document to query every route it contains.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if pathsType != "best-paths" && pathsType != "next-best-path" {
			return fmt.Errorf("invalid path type %q: must be best-paths or next-best-path", pathsType)
		}

		client := newPathClient()
		ctx := context.Background()

		if pathsFilename != "" {
			return pathsFromFile(ctx, client)
		}

		if pathsSource == "" || pathsDestination == "" {
			return fmt.Errorf("both --source and --destination are required when not using a config file")
		}

		resp, err := client.GetPaths(ctx, pathservice.PathQuery{
			Graph:        pathsGraph,
			PathType:     pathsType,
			Source:       pathsSource,
			Destination:  pathsDestination,
			Direction:    pathsDirection,
			Limit:        pathsLimit,
			SameHopLimit: pathsSameHopLimit,
			PlusOneLimit: pathsPlusOneLimit,
		})
		name := fmt.Sprintf("%s-to-%s", pathsSource, pathsDestination)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error for %s: %v\n", name, err)
			return nil
		}
		printPaths(name, resp)
		return nil
	},
}

func init() {
	getPathsCmd.Flags().StringVarP(&pathsFilename, "filename", "f", "", "YAML file containing the path request configuration")
	getPathsCmd.Flags().StringVarP(&pathsSource, "source", "s", "", "Source node")
	getPathsCmd.Flags().StringVarP(&pathsDestination, "destination", "d", "", "Destination node")
	getPathsCmd.Flags().StringVarP(&pathsGraph, "graph", "g", "ipv6_graph", "Graph to use")
	getPathsCmd.Flags().StringVarP(&pathsType, "type", "t", "best-paths", "Type of paths to retrieve (best-paths or next-best-path)")
	getPathsCmd.Flags().StringVar(&pathsDirection, "direction", "outbound", "Direction of paths")
	getPathsCmd.Flags().IntVar(&pathsLimit, "limit", 0, "Limit number of paths (for best-paths)")
	getPathsCmd.Flags().IntVar(&pathsSameHopLimit, "same-hop-limit", 0, "Limit number of same-hop paths (for next-best-path)")
	getPathsCmd.Flags().IntVar(&pathsPlusOneLimit, "plus-one-limit", 0, "Limit number of plus-one-hop paths (for next-best-path)")
}

// pathsFromFile queries candidate paths for every route in a PathRequest
// document, default VRF first, then named VRFs.
func pathsFromFile(ctx context.Context, client *pathservice.Client) error {
	doc, err := spec.LoadFile(pathsFilename)
	if err != nil {
		return err
	}
	fmt.Printf("Loaded configuration from %s\n", pathsFilename)

	var routes []*spec.Route
	routes = append(routes, doc.Spec.DefaultVrf.IPv4.Routes...)
	routes = append(routes, doc.Spec.DefaultVrf.IPv6.Routes...)
	for _, vrf := range doc.Spec.Vrfs {
		routes = append(routes, vrf.IPv4.Routes...)
		routes = append(routes, vrf.IPv6.Routes...)
	}

	for _, r := range routes {
		name := r.Name
		if name == "" {
			name = "unknown"
		}
		resp, err := client.GetPaths(ctx, pathservice.PathQuery{
			Graph:        r.Graph,
			PathType:     pathsType,
			Source:       r.Source,
			Destination:  r.Destination,
			Direction:    pathsDirection,
			Limit:        pathsLimit,
			SameHopLimit: pathsSameHopLimit,
			PlusOneLimit: pathsPlusOneLimit,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error for %s: %v\n", name, err)
			continue
		}
		printPaths(name, resp)
	}
	return nil
}

// printPaths renders candidate paths at the requested verbosity.
func printPaths(name string, resp *pathservice.PathResponse) {
	paths, _ := resp.Raw["paths"].([]interface{})
	total := len(paths)
	if n, ok := resp.Raw["total_paths_found"].(float64); ok {
		total = int(n)
	}

	if verbosity >= 2 {
		fmt.Printf("\n%s:\n", name)
		if dump, err := yaml.Marshal(resp.Raw); err == nil {
			fmt.Println(string(dump))
		}
		return
	}

	fmt.Printf("\n%s (found %d paths):\n", name, total)
	for i, p := range paths {
		path, _ := p.(map[string]interface{})
		srv6Data, _ := path["srv6_data"].(map[string]interface{})
		usid, _ := srv6Data["srv6_usid"].(string)
		if usid == "" {
			usid = "N/A"
		}

		if verbosity == 0 {
			fmt.Printf("  Path %d SRv6 uSID: %s\n", i+1, usid)
			continue
		}

		fmt.Printf("  Path %d:\n", i+1)
		fmt.Printf("    SRv6 USID: %s\n", usid)
		if list, ok := srv6Data["srv6_sid_list"]; ok {
			fmt.Printf("    SID List: %v\n", list)
		} else {
			fmt.Printf("    SID List: []\n")
		}
		if hops, ok := path["hopcount"]; ok {
			fmt.Printf("    Hop Count: %v\n", hops)
		} else {
			fmt.Printf("    Hop Count: N/A\n")
		}
		if countries := flattenCountries(path["countries_traversed"]); len(countries) > 0 {
			fmt.Printf("    Countries: %s\n", strings.Join(countries, ", "))
		}
	}
}

// flattenCountries flattens the nested per-hop country lists the path
// service returns.
func flattenCountries(v interface{}) []string {
	outer, ok := v.([]interface{})
	if !ok {
		return nil
	}
	var countries []string
	for _, inner := range outer {
		list, ok := inner.([]interface{})
		if !ok {
			continue
		}
		for _, c := range list {
			if s, ok := c.(string); ok {
				countries = append(countries, s)
			}
		}
	}
	return countries
}
