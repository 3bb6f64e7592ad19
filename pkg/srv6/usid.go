// Package srv6 expands and validates compressed SRv6 segment identifiers.
//
// A uSID carrier like "fc00:0:40:41::" is shorthand for the full 128-bit
// segment "fc00:0:40:41:0:0:0:0". Expansion is trailing elision only:
// strip trailing separators and right-pad with zero groups until exactly
// eight groups exist. This is narrower than general IPv6 "::" compression
// and must stay that way.
package srv6

import (
	"fmt"
	"net"
	"strings"

	"github.com/jalapeno-net/srctl/pkg/util"
)

// groupCount is the number of 16-bit groups in a full IPv6 address.
const groupCount = 8

// ExpandUSID expands a compressed SRv6 uSID to its full 8-group form.
// Already-full identifiers pass through unchanged. The result is
// validated as an IPv6 address; anything that does not parse (malformed
// hex groups, more than 8 groups) fails with ErrInvalidSegmentID.
func ExpandUSID(usid string) (string, error) {
	trimmed := strings.TrimRight(usid, ":")
	if trimmed == "" {
		return "", fmt.Errorf("%w: %q", util.ErrInvalidSegmentID, usid)
	}

	groups := strings.Split(trimmed, ":")
	for len(groups) < groupCount {
		groups = append(groups, "0")
	}
	expanded := strings.Join(groups, ":")

	if ip := net.ParseIP(expanded); ip == nil || ip.To16() == nil {
		return "", fmt.Errorf("%w: %q", util.ErrInvalidSegmentID, usid)
	}
	return expanded, nil
}

// ExpandUSIDAddr expands a uSID and returns the segment as a net.IP.
func ExpandUSIDAddr(usid string) (net.IP, error) {
	expanded, err := ExpandUSID(usid)
	if err != nil {
		return nil, err
	}
	return net.ParseIP(expanded), nil
}
