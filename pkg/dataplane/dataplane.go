// Package dataplane programs SRv6 forwarding state into a concrete
// forwarding technology: the Linux kernel routing tables over netlink, or
// a VPP software dataplane over its binary API. Both backends honor one
// capability contract so the request walker never cares which one it is
// driving.
package dataplane

import (
	"fmt"
	"net"
	"strings"

	"github.com/jalapeno-net/srctl/pkg/util"
)

// Platform tags accepted by New.
const (
	PlatformLinux = "linux"
	PlatformVPP   = "vpp"
)

// Route is the per-route input to a Programmer. TableID is computed by
// the request walker from the enclosing VRF; the input document never
// carries it, and the walker passes it here instead of mutating the
// parsed route.
type Route struct {
	DestinationPrefix string
	OutboundInterface string
	BSID              string
	TableID           int
}

// Programmer is the capability contract both backends implement.
//
// ProgramRoute and RemoveRoute report expected failures (missing fields,
// malformed input, dataplane rejection) as ok=false with a human-readable
// message instead of an error, so one bad route never aborts a batch.
// Close releases the backend's scoped resource (routing socket or API
// connection) and must always be called, error or not.
type Programmer interface {
	ProgramRoute(route Route, segment string) (bool, string)
	RemoveRoute(route Route) (bool, string)
	Close() error
}

// New selects a backend by platform tag, case-insensitively. Backend
// construction acquires the underlying dataplane resource, so an
// unusable backend (no root, VPP not running) fails here, before any
// route is touched.
func New(platform string) (Programmer, error) {
	switch strings.ToLower(platform) {
	case PlatformLinux:
		return NewLinuxProgrammer()
	case PlatformVPP:
		return NewVPPProgrammer(DefaultVPPSocket)
	default:
		return nil, fmt.Errorf("%w: %s", util.ErrUnsupportedPlatform, platform)
	}
}

// validateDestination checks the always-required destination prefix and
// returns its canonical network form.
func validateDestination(route Route) (*net.IPNet, error) {
	if route.DestinationPrefix == "" {
		return nil, fmt.Errorf("destination_prefix is required")
	}
	return util.ParseDestinationPrefix(route.DestinationPrefix)
}

func failProgram(err error) string {
	return fmt.Sprintf("Failed to program route: %v", err)
}

func failRemove(err error) string {
	return fmt.Sprintf("Failed to remove route: %v", err)
}
