package dataplane

import (
	"errors"
	"fmt"
	"net"

	"go.fd.io/govpp/adapter/socketclient"
	"go.fd.io/govpp/api"
	"go.fd.io/govpp/binapi/ip_types"
	"go.fd.io/govpp/binapi/sr"
	"go.fd.io/govpp/binapi/sr_types"
	"go.fd.io/govpp/binapi/vpe"
	"go.fd.io/govpp/core"

	"github.com/jalapeno-net/srctl/pkg/srv6"
	"github.com/jalapeno-net/srctl/pkg/util"
)

// DefaultVPPSocket is the VPP binary API socket path.
const DefaultVPPSocket = socketclient.DefaultSocketName

// VPPProgrammer programs SR policies and steering rules through the VPP
// binary API. The connection and API channel are established at
// construction and are a prerequisite for any operation.
type VPPProgrammer struct {
	conn    *core.Connection
	channel api.Channel
	version string
}

// NewVPPProgrammer connects to the VPP API socket and verifies the
// session with a version handshake.
func NewVPPProgrammer(socket string) (*VPPProgrammer, error) {
	conn, err := core.Connect(socketclient.NewVppClient(socket))
	if err != nil {
		return nil, fmt.Errorf("%w: connecting to VPP at %s: %v", util.ErrBackendUnavailable, socket, err)
	}

	ch, err := conn.NewAPIChannel()
	if err != nil {
		conn.Disconnect()
		return nil, fmt.Errorf("%w: opening VPP API channel: %v", util.ErrBackendUnavailable, err)
	}

	reply := &vpe.ShowVersionReply{}
	if err := ch.SendRequest(&vpe.ShowVersion{}).ReceiveReply(reply); err != nil {
		ch.Close()
		conn.Disconnect()
		return nil, fmt.Errorf("%w: VPP version handshake: %v", util.ErrBackendUnavailable, err)
	}
	util.WithPlatform(PlatformVPP).Debugf("connected to VPP version %s", reply.Version)

	return &VPPProgrammer{conn: conn, channel: ch, version: reply.Version}, nil
}

// Version returns the version string reported by the connected VPP.
func (p *VPPProgrammer) Version() string {
	return p.version
}

// ProgramRoute installs an SR policy keyed by the route's BSID carrying
// the expanded segment, then steers destination_prefix in the route's
// table to that BSID. The two API calls are one logical unit: if the
// steering rule is rejected the policy is torn down again and the route
// reports a single failure.
func (p *VPPProgrammer) ProgramRoute(route Route, segment string) (bool, string) {
	dst, err := validateDestination(route)
	if err != nil {
		return false, failProgram(err)
	}
	bsid, err := parseBSID(route.BSID)
	if err != nil {
		return false, failProgram(err)
	}
	expanded, err := srv6.ExpandUSID(segment)
	if err != nil {
		return false, failProgram(err)
	}

	var sids sr.Srv6SidList
	sids.NumSids = 1
	sids.Sids[0] = toIP6Address(net.ParseIP(expanded))

	policyAdd := &sr.SrPolicyAdd{
		BsidAddr: bsid,
		Weight:   1,
		IsEncap:  true,
		IsSpray:  false,
		FibTable: uint32(route.TableID),
		Sids:     sids,
	}
	util.WithPlatform(PlatformVPP).Debugf("sr_policy_add bsid=%s table=%d segment=%s", route.BSID, route.TableID, expanded)
	if err := p.channel.SendRequest(policyAdd).ReceiveReply(&sr.SrPolicyAddReply{}); err != nil {
		return false, failProgram(fmt.Errorf("sr_policy_add: %w", err))
	}

	steerAdd := &sr.SrSteeringAddDel{
		IsDel:       false,
		BsidAddr:    bsid,
		TableID:     uint32(route.TableID),
		Prefix:      toPrefix(dst),
		TrafficType: steerType(dst),
	}
	util.WithPlatform(PlatformVPP).Debugf("sr_steering_add_del prefix=%s table=%d bsid=%s", dst, route.TableID, route.BSID)
	if err := p.channel.SendRequest(steerAdd).ReceiveReply(&sr.SrSteeringAddDelReply{}); err != nil {
		// Don't leave a policy behind that nothing steers into.
		del := &sr.SrPolicyDel{BsidAddr: bsid}
		_ = p.channel.SendRequest(del).ReceiveReply(&sr.SrPolicyDelReply{})
		return false, failProgram(fmt.Errorf("sr_steering_add_del: %w", err))
	}

	return true, fmt.Sprintf("Route to %s via %s programmed successfully in table %d",
		route.DestinationPrefix, expanded, route.TableID)
}

// RemoveRoute unbinds the steering rule for destination_prefix and
// deletes the SR policy keyed by the route's BSID, symmetric with
// ProgramRoute. State that is already gone counts as removed.
func (p *VPPProgrammer) RemoveRoute(route Route) (bool, string) {
	dst, err := validateDestination(route)
	if err != nil {
		return false, failRemove(err)
	}
	bsid, err := parseBSID(route.BSID)
	if err != nil {
		return false, failRemove(err)
	}

	steerDel := &sr.SrSteeringAddDel{
		IsDel:       true,
		BsidAddr:    bsid,
		TableID:     uint32(route.TableID),
		Prefix:      toPrefix(dst),
		TrafficType: steerType(dst),
	}
	if err := p.channel.SendRequest(steerDel).ReceiveReply(&sr.SrSteeringAddDelReply{}); err != nil && !vppNotFound(err) {
		return false, failRemove(fmt.Errorf("sr_steering_add_del: %w", err))
	}

	policyDel := &sr.SrPolicyDel{BsidAddr: bsid}
	if err := p.channel.SendRequest(policyDel).ReceiveReply(&sr.SrPolicyDelReply{}); err != nil && !vppNotFound(err) {
		return false, failRemove(fmt.Errorf("sr_policy_del: %w", err))
	}

	return true, fmt.Sprintf("Route to %s removed from table %d",
		route.DestinationPrefix, route.TableID)
}

// Close releases the API channel and the connection.
func (p *VPPProgrammer) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Disconnect()
	}
	return nil
}

// parseBSID validates the binding SID required by the VPP backend.
func parseBSID(s string) (ip_types.IP6Address, error) {
	var bsid ip_types.IP6Address
	if s == "" {
		return bsid, errors.New("BSID is required for VPP routes")
	}
	ip, err := util.ParseIPv6(s)
	if err != nil {
		return bsid, fmt.Errorf("invalid BSID: %w", err)
	}
	copy(bsid[:], ip)
	return bsid, nil
}

func toIP6Address(ip net.IP) ip_types.IP6Address {
	var addr ip_types.IP6Address
	copy(addr[:], ip.To16())
	return addr
}

// toPrefix packs a network into the VPP prefix type, address-family
// aware: IPv4 networks pack 4 bytes, IPv6 networks 16.
func toPrefix(n *net.IPNet) ip_types.Prefix {
	ones, _ := n.Mask.Size()
	var addr ip_types.Address
	if ip4 := n.IP.To4(); ip4 != nil {
		var a ip_types.IP4Address
		copy(a[:], ip4)
		addr = ip_types.Address{Af: ip_types.ADDRESS_IP4, Un: ip_types.AddressUnionIP4(a)}
	} else {
		var a ip_types.IP6Address
		copy(a[:], n.IP.To16())
		addr = ip_types.Address{Af: ip_types.ADDRESS_IP6, Un: ip_types.AddressUnionIP6(a)}
	}
	return ip_types.Prefix{Address: addr, Len: uint8(ones)}
}

// steerType selects the L3 steering class matching the prefix family.
func steerType(n *net.IPNet) sr_types.SrSteer {
	if n.IP.To4() != nil {
		return sr_types.SR_STEER_API_IPV4
	}
	return sr_types.SR_STEER_API_IPV6
}

// vppNotFound reports replies that mean the object was already absent.
func vppNotFound(err error) bool {
	var apiErr api.VPPApiError
	if errors.As(err, &apiErr) {
		return apiErr == api.NO_SUCH_ENTRY || apiErr == api.NO_SUCH_FIB || apiErr == api.NO_SUCH_TABLE
	}
	return false
}
