package spec

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jalapeno-net/srctl/pkg/util"
)

const sampleDoc = `
kind: PathRequest
spec:
  platform: linux
  defaultVrf:
    ipv4:
      routes:
        - name: r1
          graph: ipv4_graph
          source: xrd01
          destination: xrd07
          destination_prefix: 10.101.2.0/24
          outbound_interface: eth0
    ipv6:
      routes:
        - name: r2
          graph: ipv6_graph
          source: xrd01
          destination: xrd07
          metric: low-latency
          destination_prefix: fc00:0:107::/48
          outbound_interface: eth0
  vrfs:
    - name: carrots
      tableId: 100
      ipv4:
        routes:
          - name: r3
            graph: ipv4_graph
            source: xrd01
            destination: xrd05
            destination_prefix: 10.105.1.0/24
            outbound_interface: eth1
      ipv6:
        routes: []
`

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "request.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	req, err := LoadFile(writeTemp(t, sampleDoc))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	if req.Kind != KindPathRequest {
		t.Errorf("Kind = %q, want %q", req.Kind, KindPathRequest)
	}
	if req.Spec.Platform != "linux" {
		t.Errorf("Platform = %q, want linux", req.Spec.Platform)
	}
	if got := req.Spec.RouteCount(); got != 3 {
		t.Errorf("RouteCount = %d, want 3", got)
	}

	r1 := req.Spec.DefaultVrf.IPv4.Routes[0]
	if r1.Name != "r1" || r1.DestinationPrefix != "10.101.2.0/24" {
		t.Errorf("unexpected default-VRF ipv4 route: %+v", r1)
	}

	r2 := req.Spec.DefaultVrf.IPv6.Routes[0]
	if r2.Metric != "low-latency" {
		t.Errorf("Metric = %q, want low-latency", r2.Metric)
	}

	if len(req.Spec.Vrfs) != 1 {
		t.Fatalf("expected 1 VRF, got %d", len(req.Spec.Vrfs))
	}
	vrf := req.Spec.Vrfs[0]
	if vrf.Name != "carrots" {
		t.Errorf("VRF name = %q, want carrots", vrf.Name)
	}
	if vrf.TableID == nil || *vrf.TableID != 100 {
		t.Errorf("TableID = %v, want 100", vrf.TableID)
	}
}

func TestParse_WrongKind(t *testing.T) {
	_, err := Parse([]byte("kind: RoutePolicy\nspec:\n  platform: linux\n"))
	if err == nil {
		t.Fatal("expected error for wrong kind")
	}
	if !errors.Is(err, util.ErrValidationFailed) {
		t.Errorf("error should be a validation failure, got %v", err)
	}
	if !strings.Contains(err.Error(), "RoutePolicy") {
		t.Errorf("error should name the offending kind, got %q", err.Error())
	}
}

func TestParse_MissingKind(t *testing.T) {
	_, err := Parse([]byte("spec:\n  platform: vpp\n"))
	if err == nil {
		t.Fatal("expected error for missing kind")
	}
}

func TestParse_MalformedYAML(t *testing.T) {
	_, err := Parse([]byte("kind: PathRequest\nspec: [unbalanced"))
	if err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}

func TestLoadFile_NotFound(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

// A VRF without tableId parses; the walker, not the loader, rejects it.
// The absence must survive parsing as a nil pointer.
func TestParse_MissingTableIDIsNil(t *testing.T) {
	doc := `
kind: PathRequest
spec:
  platform: linux
  vrfs:
    - name: no-table
      ipv4:
        routes: []
`
	req, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if req.Spec.Vrfs[0].TableID != nil {
		t.Errorf("TableID = %v, want nil", *req.Spec.Vrfs[0].TableID)
	}
}

func TestRouteCount_Empty(t *testing.T) {
	var s Spec
	if s.RouteCount() != 0 {
		t.Errorf("RouteCount on empty spec = %d, want 0", s.RouteCount())
	}
}
