package dataplane

import (
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"

	"github.com/vishvananda/netlink"
	"github.com/vishvananda/netlink/nl"

	"github.com/jalapeno-net/srctl/pkg/srv6"
	"github.com/jalapeno-net/srctl/pkg/util"
)

// routeHandle is the slice of the netlink handle the programmer drives.
// Satisfied by *netlink.Handle.
type routeHandle interface {
	LinkByName(name string) (netlink.Link, error)
	RouteAdd(route *netlink.Route) error
	RouteDel(route *netlink.Route) error
	Close()
}

// LinuxProgrammer installs SRv6 encapsulation routes into the kernel
// routing tables. It owns one netlink routing socket for its lifetime.
type LinuxProgrammer struct {
	handle routeHandle
}

// NewLinuxProgrammer opens the netlink routing socket. Route programming
// needs CAP_NET_ADMIN; the effective-uid check runs before any socket is
// opened so the failure mode is immediate and explicit.
func NewLinuxProgrammer() (*LinuxProgrammer, error) {
	if os.Geteuid() != 0 {
		return nil, fmt.Errorf("%w: root privileges required for route programming", util.ErrPermissionDenied)
	}
	handle, err := netlink.NewHandle()
	if err != nil {
		return nil, fmt.Errorf("opening netlink socket: %w", err)
	}
	return &LinuxProgrammer{handle: handle}, nil
}

// ProgramRoute installs destination_prefix into the route's table with a
// seg6 encap directive carrying the expanded segment, bound to the
// outbound interface. Any pre-existing route to the same prefix/table is
// deleted first so repeated applies converge instead of failing with
// EEXIST.
func (p *LinuxProgrammer) ProgramRoute(route Route, segment string) (bool, string) {
	dst, err := validateDestination(route)
	if err != nil {
		return false, failProgram(err)
	}
	if route.OutboundInterface == "" {
		return false, failProgram(errors.New("outbound_interface is required"))
	}

	expanded, err := srv6.ExpandUSID(segment)
	if err != nil {
		return false, failProgram(err)
	}

	link, err := p.handle.LinkByName(route.OutboundInterface)
	if err != nil {
		return false, failProgram(fmt.Errorf("%w: %s", util.ErrInterfaceNotFound, route.OutboundInterface))
	}

	encap := &netlink.SEG6Encap{Mode: nl.SEG6_IPTUN_MODE_ENCAP}
	encap.Segments = []net.IP{net.ParseIP(expanded)}

	// Best-effort delete; a missing route is the common case.
	stale := &netlink.Route{Dst: dst, Table: route.TableID}
	if err := p.handle.RouteDel(stale); err == nil {
		util.WithPlatform(PlatformLinux).Debugf("deleted existing route to %s in table %d", dst, route.TableID)
	}

	newRoute := &netlink.Route{
		Dst:       dst,
		LinkIndex: link.Attrs().Index,
		Table:     route.TableID,
		Encap:     encap,
	}
	util.WithPlatform(PlatformLinux).Debugf("adding route to %s via seg6 encap %s in table %d", dst, expanded, route.TableID)
	if err := p.handle.RouteAdd(newRoute); err != nil {
		return false, failProgram(fmt.Errorf("adding route: %w", err))
	}

	return true, fmt.Sprintf("Route to %s via %s programmed successfully in table %d",
		route.DestinationPrefix, expanded, route.TableID)
}

// RemoveRoute deletes the route to destination_prefix from the route's
// table. A route that is already gone counts as removed.
func (p *LinuxProgrammer) RemoveRoute(route Route) (bool, string) {
	dst, err := validateDestination(route)
	if err != nil {
		return false, failRemove(err)
	}

	if err := p.handle.RouteDel(&netlink.Route{Dst: dst, Table: route.TableID}); err != nil && !routeNotFound(err) {
		return false, failRemove(err)
	}

	return true, fmt.Sprintf("Route to %s removed from table %d",
		route.DestinationPrefix, route.TableID)
}

// Close releases the netlink socket.
func (p *LinuxProgrammer) Close() error {
	p.handle.Close()
	return nil
}

// routeNotFound reports the kernel's no-such-route answers to a delete.
func routeNotFound(err error) bool {
	return errors.Is(err, syscall.ESRCH) || errors.Is(err, syscall.ENOENT)
}
