package util

import (
	"fmt"
	"net"
)

// ParseDestinationPrefix parses a destination CIDR and returns the
// canonical network (host bits cleared). Both address families are
// accepted.
func ParseDestinationPrefix(cidr string) (*net.IPNet, error) {
	_, ipNet, err := net.ParseCIDR(cidr)
	if err != nil {
		return nil, fmt.Errorf("invalid destination prefix: %s", cidr)
	}
	return ipNet, nil
}

// IsIPv4Network reports whether the network is an IPv4 network.
func IsIPv4Network(n *net.IPNet) bool {
	return n.IP.To4() != nil
}

// ParseIPv6 parses a string that must be an IPv6 address (a BSID, a
// fully expanded segment). IPv4 and IPv4-in-IPv6 dotted forms are
// rejected.
func ParseIPv6(s string) (net.IP, error) {
	ip := net.ParseIP(s)
	if ip == nil || ip.To4() != nil {
		return nil, fmt.Errorf("invalid IPv6 address: %s", s)
	}
	return ip.To16(), nil
}
