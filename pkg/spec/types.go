// Package spec defines the PathRequest document model and its loader.
package spec

// KindPathRequest is the only resource kind srctl understands.
const KindPathRequest = "PathRequest"

// PathRequest is the top-level resource read from a YAML file.
// It is immutable once loaded.
type PathRequest struct {
	Kind string `yaml:"kind" json:"kind"`
	Spec Spec   `yaml:"spec" json:"spec"`
}

// Spec groups routes by VRF and address family. The default VRF is the
// node's main routing context (table id 0); named VRFs carry an explicit
// table id.
type Spec struct {
	Platform   string     `yaml:"platform" json:"platform"`
	DefaultVrf DefaultVrf `yaml:"defaultVrf" json:"defaultVrf"`
	Vrfs       []*Vrf     `yaml:"vrfs" json:"vrfs,omitempty"`
}

// DefaultVrf holds the route sets installed into table 0.
type DefaultVrf struct {
	IPv4 AddressFamilySet `yaml:"ipv4" json:"ipv4"`
	IPv6 AddressFamilySet `yaml:"ipv6" json:"ipv6"`
}

// Vrf holds the route sets for one named VRF. TableID is a pointer so a
// missing value is distinguishable from table 0; absence is a document
// validation error.
type Vrf struct {
	Name    string           `yaml:"name" json:"name"`
	TableID *int             `yaml:"tableId" json:"tableId"`
	IPv4    AddressFamilySet `yaml:"ipv4" json:"ipv4"`
	IPv6    AddressFamilySet `yaml:"ipv6" json:"ipv6"`
}

// AddressFamilySet is an ordered list of routes for one address family.
// The family itself is contextual (the ipv4/ipv6 key the set sits under),
// not stored on the route.
type AddressFamilySet struct {
	Routes []*Route `yaml:"routes" json:"routes,omitempty"`
}

// Route describes one path request: the path-service query (graph,
// source, destination, optional metric) and the forwarding state to
// install for the result. The routing table id is never part of the
// document; the request walker derives it from the enclosing VRF.
type Route struct {
	Name              string `yaml:"name" json:"name"`
	Graph             string `yaml:"graph" json:"graph"`
	Source            string `yaml:"source" json:"source"`
	Destination       string `yaml:"destination" json:"destination"`
	Metric            string `yaml:"metric,omitempty" json:"metric,omitempty"`
	DestinationPrefix string `yaml:"destination_prefix" json:"destination_prefix"`

	// Kernel dataplane only
	OutboundInterface string `yaml:"outbound_interface,omitempty" json:"outbound_interface,omitempty"`

	// Software dataplane only
	BSID string `yaml:"bsid,omitempty" json:"bsid,omitempty"`
}

// RouteCount returns the total number of routes across the default VRF
// and all named VRFs, both address families.
func (s *Spec) RouteCount() int {
	n := len(s.DefaultVrf.IPv4.Routes) + len(s.DefaultVrf.IPv6.Routes)
	for _, vrf := range s.Vrfs {
		n += len(vrf.IPv4.Routes) + len(vrf.IPv6.Routes)
	}
	return n
}
