package dataplane

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"
	"testing"

	"github.com/vishvananda/netlink"

	"github.com/jalapeno-net/srctl/pkg/util"
)

// fakeRouteHandle scripts the netlink calls the kernel backend makes.
type fakeRouteHandle struct {
	link       netlink.Link
	linkErr    error
	addErr     error
	delErr     error
	added      []*netlink.Route
	deleted    []*netlink.Route
	closeCalls int
}

func (h *fakeRouteHandle) LinkByName(name string) (netlink.Link, error) {
	if h.linkErr != nil {
		return nil, h.linkErr
	}
	return h.link, nil
}

func (h *fakeRouteHandle) RouteAdd(route *netlink.Route) error {
	h.added = append(h.added, route)
	return h.addErr
}

func (h *fakeRouteHandle) RouteDel(route *netlink.Route) error {
	h.deleted = append(h.deleted, route)
	return h.delErr
}

func (h *fakeRouteHandle) Close() {
	h.closeCalls++
}

func eth0Handle() *fakeRouteHandle {
	return &fakeRouteHandle{
		link: &netlink.Dummy{LinkAttrs: netlink.LinkAttrs{Index: 7, Name: "eth0"}},
	}
}

func TestLinuxProgramRoute(t *testing.T) {
	handle := eth0Handle()
	// A fresh prefix has nothing to replace.
	handle.delErr = syscall.ESRCH
	p := &LinuxProgrammer{handle: handle}

	route := Route{DestinationPrefix: "10.0.0.2/32", OutboundInterface: "eth0", TableID: 0}
	ok, msg := p.ProgramRoute(route, "2001:db8:1::")
	if !ok {
		t.Fatalf("ProgramRoute failed: %s", msg)
	}
	if msg != "Route to 10.0.0.2/32 via 2001:db8:1:0:0:0:0:0 programmed successfully in table 0" {
		t.Errorf("msg = %q", msg)
	}

	if len(handle.deleted) != 1 {
		t.Fatalf("stale delete not attempted: %d deletes", len(handle.deleted))
	}
	if len(handle.added) != 1 {
		t.Fatalf("got %d adds, want 1", len(handle.added))
	}
	added := handle.added[0]
	if added.LinkIndex != 7 || added.Table != 0 {
		t.Errorf("added route = %+v", added)
	}
	encap, isSeg6 := added.Encap.(*netlink.SEG6Encap)
	if !isSeg6 {
		t.Fatalf("Encap = %T, want *netlink.SEG6Encap", added.Encap)
	}
	if len(encap.Segments) != 1 || !encap.Segments[0].Equal(net.ParseIP("2001:db8:1::")) {
		t.Errorf("Segments = %v", encap.Segments)
	}
}

func TestLinuxProgramRoute_InterfaceNotFound(t *testing.T) {
	handle := eth0Handle()
	handle.linkErr = errors.New("Link not found")
	p := &LinuxProgrammer{handle: handle}

	ok, msg := p.ProgramRoute(Route{DestinationPrefix: "10.0.0.2/32", OutboundInterface: "eth9"}, "fc00::")
	if ok {
		t.Fatal("ProgramRoute should fail for a missing interface")
	}
	if !strings.Contains(msg, util.ErrInterfaceNotFound.Error()) || !strings.Contains(msg, "eth9") {
		t.Errorf("msg = %q", msg)
	}
	if len(handle.added) != 0 {
		t.Error("no route should be added when the interface is missing")
	}
}

func TestLinuxRemoveRoute_MissingRouteIsSuccess(t *testing.T) {
	for _, errno := range []syscall.Errno{syscall.ESRCH, syscall.ENOENT} {
		t.Run(errno.Error(), func(t *testing.T) {
			handle := eth0Handle()
			handle.delErr = errno
			p := &LinuxProgrammer{handle: handle}

			ok, msg := p.RemoveRoute(Route{DestinationPrefix: "10.0.0.2/32", TableID: 100})
			if !ok {
				t.Fatalf("removing an absent route should succeed: %s", msg)
			}
			if msg != "Route to 10.0.0.2/32 removed from table 100" {
				t.Errorf("msg = %q", msg)
			}
		})
	}
}

func TestLinuxRemoveRoute_OtherErrorFails(t *testing.T) {
	handle := eth0Handle()
	handle.delErr = syscall.EPERM
	p := &LinuxProgrammer{handle: handle}

	ok, msg := p.RemoveRoute(Route{DestinationPrefix: "10.0.0.2/32"})
	if ok {
		t.Fatal("RemoveRoute should surface errors other than not-found")
	}
	if !strings.HasPrefix(msg, "Failed to remove route:") {
		t.Errorf("msg = %q", msg)
	}
}

func TestRouteNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "esrch", err: syscall.ESRCH, want: true},
		{name: "enoent", err: syscall.ENOENT, want: true},
		{name: "wrapped esrch", err: fmt.Errorf("deleting route: %w", syscall.ESRCH), want: true},
		{name: "eexist", err: syscall.EEXIST, want: false},
		{name: "plain error", err: errors.New("boom"), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := routeNotFound(tt.err); got != tt.want {
				t.Errorf("routeNotFound(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
