//go:build integration

package state

import (
	"context"
	"os"
	"testing"

	"github.com/jalapeno-net/srctl/pkg/dataplane"
)

// needsRedis connects to the Redis named by SRCTL_TEST_REDIS (default
// localhost:6379) and skips the test when none is reachable.
func needsRedis(t *testing.T) *Registry {
	t.Helper()
	addr := os.Getenv("SRCTL_TEST_REDIS")
	if addr == "" {
		addr = "localhost:6379"
	}
	reg := NewRegistry(addr)
	if err := reg.Connect(context.Background()); err != nil {
		t.Skipf("no Redis at %s: %v", addr, err)
	}
	t.Cleanup(func() { reg.Close() })
	return reg
}

func TestRegistryRoundTrip(t *testing.T) {
	reg := needsRedis(t)
	ctx := context.Background()

	route := dataplane.Route{
		DestinationPrefix: "10.255.255.0/24",
		TableID:           999,
		BSID:              "fc00:0:99::1",
	}
	t.Cleanup(func() { reg.RemoveRoute(ctx, route) })

	if err := reg.RecordRoute(ctx, "vpp", route, "fc00:0:40:41::", "it-route"); err != nil {
		t.Fatalf("RecordRoute: %v", err)
	}

	entries, err := reg.ListRoutes(ctx)
	if err != nil {
		t.Fatalf("ListRoutes: %v", err)
	}
	var found *RouteEntry
	for i := range entries {
		if entries[i].DestinationPrefix == route.DestinationPrefix && entries[i].TableID == 999 {
			found = &entries[i]
		}
	}
	if found == nil {
		t.Fatal("recorded route not listed")
	}
	if found.Name != "it-route" || found.Platform != "vpp" || found.Segment != "fc00:0:40:41::" || found.BSID != route.BSID {
		t.Errorf("entry = %+v", *found)
	}
	if found.ProgrammedAt == "" {
		t.Error("ProgrammedAt should be set")
	}

	if err := reg.RemoveRoute(ctx, route); err != nil {
		t.Fatalf("RemoveRoute: %v", err)
	}
	entries, err = reg.ListRoutes(ctx)
	if err != nil {
		t.Fatalf("ListRoutes: %v", err)
	}
	for _, e := range entries {
		if e.DestinationPrefix == route.DestinationPrefix && e.TableID == 999 {
			t.Error("route record should be gone after RemoveRoute")
		}
	}
}

func TestRemoveRoute_Missing(t *testing.T) {
	reg := needsRedis(t)
	route := dataplane.Route{DestinationPrefix: "203.0.113.0/24", TableID: 998}
	if err := reg.RemoveRoute(context.Background(), route); err != nil {
		t.Errorf("removing an absent record should succeed, got %v", err)
	}
}
