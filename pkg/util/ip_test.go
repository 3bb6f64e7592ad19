package util

import (
	"testing"
)

func TestParseDestinationPrefix(t *testing.T) {
	tests := []struct {
		name     string
		cidr     string
		wantNet  string
		wantIPv4 bool
		wantErr  bool
	}{
		{
			name:     "ipv4 host route",
			cidr:     "10.0.0.2/32",
			wantNet:  "10.0.0.2/32",
			wantIPv4: true,
		},
		{
			name:     "ipv4 with host bits set",
			cidr:     "192.168.1.100/24",
			wantNet:  "192.168.1.0/24",
			wantIPv4: true,
		},
		{
			name:    "ipv6 prefix",
			cidr:    "fc00:0:1::/48",
			wantNet: "fc00:0:1::/48",
		},
		{
			name:    "ipv6 with host bits set",
			cidr:    "2001:db8::1/64",
			wantNet: "2001:db8::/64",
		},
		{
			name:    "missing mask",
			cidr:    "10.0.0.2",
			wantErr: true,
		},
		{
			name:    "garbage",
			cidr:    "not-a-prefix",
			wantErr: true,
		},
		{
			name:    "empty",
			cidr:    "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := ParseDestinationPrefix(tt.cidr)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDestinationPrefix(%q) error = %v, wantErr %v", tt.cidr, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if n.String() != tt.wantNet {
				t.Errorf("network = %s, want %s", n.String(), tt.wantNet)
			}
			if IsIPv4Network(n) != tt.wantIPv4 {
				t.Errorf("IsIPv4Network = %v, want %v", IsIPv4Network(n), tt.wantIPv4)
			}
		})
	}
}

func TestParseIPv6(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr bool
	}{
		{name: "full address", in: "2001:db8:1:0:0:0:0:0"},
		{name: "compressed", in: "fc00:0:40::1"},
		{name: "ipv4 rejected", in: "10.0.0.1", wantErr: true},
		{name: "empty", in: "", wantErr: true},
		{name: "garbage", in: "bsid", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseIPv6(tt.in)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseIPv6(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
		})
	}
}
