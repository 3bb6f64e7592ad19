// Package request walks a PathRequest document route by route, resolves
// each route against the path service, and drives a dataplane backend to
// install or remove the resulting forwarding state. Every route produces
// exactly one outcome, in document order, and one failing route never
// stops the walk.
package request

import (
	"context"
	"fmt"

	"github.com/jalapeno-net/srctl/pkg/dataplane"
	"github.com/jalapeno-net/srctl/pkg/pathservice"
	"github.com/jalapeno-net/srctl/pkg/spec"
	"github.com/jalapeno-net/srctl/pkg/util"
)

// Outcome statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Outcome is the per-route result of an apply or delete walk.
type Outcome struct {
	Name   string `json:"name" yaml:"name"`
	Status string `json:"status" yaml:"status"`

	// Apply success: the full path service response plus the dataplane
	// confirmation message.
	Data             map[string]interface{} `json:"data,omitempty" yaml:"data,omitempty"`
	RouteProgramming string                 `json:"route_programming,omitempty" yaml:"route_programming,omitempty"`

	// Delete success.
	Message string `json:"message,omitempty" yaml:"message,omitempty"`

	// Any failure.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// PathClient resolves a route to a path. Satisfied by
// *pathservice.Client.
type PathClient interface {
	ShortestPath(ctx context.Context, graph, source, destination, metric string) (*pathservice.PathResponse, error)
}

// ProgrammerFactory builds a dataplane backend for a platform tag. A
// fresh backend is built per route so one route's backend failure cannot
// poison the rest of the walk.
type ProgrammerFactory func(platform string) (dataplane.Programmer, error)

// Recorder persists programmed-route state for later inspection. It is
// optional and advisory: recording failures are logged, never surfaced
// as route outcomes.
type Recorder interface {
	RecordRoute(ctx context.Context, platform string, route dataplane.Route, segment, name string) error
	RemoveRoute(ctx context.Context, route dataplane.Route) error
}

// Processor executes PathRequest documents.
type Processor struct {
	client     PathClient
	newBackend ProgrammerFactory
	recorder   Recorder
}

// NewProcessor creates a Processor using the real dataplane backends.
func NewProcessor(client PathClient) *Processor {
	return &Processor{client: client, newBackend: dataplane.New}
}

// WithProgrammerFactory overrides backend construction.
func (p *Processor) WithProgrammerFactory(f ProgrammerFactory) *Processor {
	p.newBackend = f
	return p
}

// WithRecorder attaches a route state recorder.
func (p *Processor) WithRecorder(r Recorder) *Processor {
	p.recorder = r
	return p
}

// boundRoute is a document route joined with the table id and address
// family of its enclosing VRF context.
type boundRoute struct {
	route   *spec.Route
	tableID int
	family  string
}

// flatten orders the document's routes: default VRF first (ipv4 then
// ipv6, table 0), then each named VRF in document order (ipv4 then
// ipv6). A VRF without a table id fails the whole document before any
// route is touched.
func flatten(s *spec.Spec) ([]boundRoute, error) {
	if s.Platform == "" {
		return nil, util.NewValidationError("platform must be specified in spec")
	}

	var bound []boundRoute
	add := func(routes []*spec.Route, tableID int, family string) {
		for _, r := range routes {
			bound = append(bound, boundRoute{route: r, tableID: tableID, family: family})
		}
	}

	add(s.DefaultVrf.IPv4.Routes, 0, "ipv4")
	add(s.DefaultVrf.IPv6.Routes, 0, "ipv6")
	for _, vrf := range s.Vrfs {
		if vrf.TableID == nil {
			return nil, util.NewValidationError(fmt.Sprintf("tableId must be specified for VRF %s", vrf.Name))
		}
		add(vrf.IPv4.Routes, *vrf.TableID, "ipv4")
		add(vrf.IPv6.Routes, *vrf.TableID, "ipv6")
	}
	return bound, nil
}

// routeName names a route in outcomes and logs, with a stable fallback
// for unnamed routes.
func routeName(r *spec.Route) string {
	if r.Name != "" {
		return r.Name
	}
	return "unknown"
}

// step performs one route's work and returns a success outcome or an
// error to be wrapped.
type step func(ctx context.Context, platform string, br boundRoute) (Outcome, error)

// walk validates the document, flattens it, and runs one step per route.
// A step error becomes that route's error outcome; the walk continues.
func (p *Processor) walk(ctx context.Context, doc *spec.PathRequest, fn step) ([]Outcome, error) {
	if doc.Kind != spec.KindPathRequest {
		return nil, util.NewValidationError(fmt.Sprintf("unsupported resource kind: %q", doc.Kind))
	}
	bound, err := flatten(&doc.Spec)
	if err != nil {
		return nil, err
	}

	outcomes := make([]Outcome, 0, len(bound))
	for _, br := range bound {
		name := routeName(br.route)
		outcome, err := fn(ctx, doc.Spec.Platform, br)
		if err != nil {
			util.WithRoute(name).Errorf("%v", err)
			outcome = Outcome{Name: name, Status: StatusError, Error: fmt.Sprintf("Error: %v", err)}
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes, nil
}

// Apply resolves every route through the path service and programs the
// result into the document's dataplane.
func (p *Processor) Apply(ctx context.Context, doc *spec.PathRequest) ([]Outcome, error) {
	return p.walk(ctx, doc, p.applyRoute)
}

func (p *Processor) applyRoute(ctx context.Context, platform string, br boundRoute) (Outcome, error) {
	r := br.route
	name := routeName(r)

	util.WithRoute(name).Debugf("resolving %s -> %s in graph %s", r.Source, r.Destination, r.Graph)
	resp, err := p.client.ShortestPath(ctx, r.Graph, r.Source, r.Destination, r.Metric)
	if err != nil {
		return Outcome{}, err
	}
	segment := resp.USID()
	if segment == "" {
		return Outcome{}, util.ErrNoSegmentIdentifier
	}

	backend, err := p.newBackend(platform)
	if err != nil {
		return Outcome{}, err
	}
	defer backend.Close()

	dpRoute := dataplane.Route{
		DestinationPrefix: r.DestinationPrefix,
		OutboundInterface: r.OutboundInterface,
		BSID:              r.BSID,
		TableID:           br.tableID,
	}
	ok, msg := backend.ProgramRoute(dpRoute, segment)
	if !ok {
		return Outcome{}, fmt.Errorf("route programming failed: %s", msg)
	}

	if p.recorder != nil {
		if err := p.recorder.RecordRoute(ctx, platform, dpRoute, segment, name); err != nil {
			util.WithRoute(name).Warnf("recording route state: %v", err)
		}
	}

	return Outcome{
		Name:             name,
		Status:           StatusSuccess,
		Data:             resp.Raw,
		RouteProgramming: msg,
	}, nil
}

// Delete removes every route's forwarding state. No path service
// resolution happens on delete; removal is keyed purely on the
// document's prefixes, tables, and BSIDs.
func (p *Processor) Delete(ctx context.Context, doc *spec.PathRequest) ([]Outcome, error) {
	return p.walk(ctx, doc, p.deleteRoute)
}

func (p *Processor) deleteRoute(ctx context.Context, platform string, br boundRoute) (Outcome, error) {
	r := br.route
	name := routeName(r)

	backend, err := p.newBackend(platform)
	if err != nil {
		return Outcome{}, err
	}
	defer backend.Close()

	dpRoute := dataplane.Route{
		DestinationPrefix: r.DestinationPrefix,
		OutboundInterface: r.OutboundInterface,
		BSID:              r.BSID,
		TableID:           br.tableID,
	}
	ok, msg := backend.RemoveRoute(dpRoute)
	if !ok {
		return Outcome{}, fmt.Errorf("route removal failed: %s", msg)
	}

	if p.recorder != nil {
		if err := p.recorder.RemoveRoute(ctx, dpRoute); err != nil {
			util.WithRoute(name).Warnf("removing recorded route state: %v", err)
		}
	}

	return Outcome{Name: name, Status: StatusSuccess, Message: msg}, nil
}
