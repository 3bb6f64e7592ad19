// Package state persists programmed-route records in Redis so operators
// can inspect what srctl has installed without walking the dataplane.
// The registry is advisory bookkeeping: forwarding state lives in the
// kernel or VPP, never here.
package state

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/jalapeno-net/srctl/pkg/dataplane"
)

// keyPrefix namespaces registry keys so srctl shares a Redis instance
// cleanly with other tenants.
const keyPrefix = "srctl|route|"

// RouteEntry is one programmed route's record.
type RouteEntry struct {
	Name              string `json:"name"`
	Platform          string `json:"platform"`
	DestinationPrefix string `json:"destination_prefix"`
	TableID           int    `json:"table_id"`
	Segment           string `json:"segment"`
	BSID              string `json:"bsid,omitempty"`
	ProgrammedAt      string `json:"programmed_at"`
}

// Registry is a Redis-backed record of programmed routes. Keys are
// "srctl|route|<table>|<prefix>" hashes, so re-programming a route
// overwrites its record and delete drops exactly one key.
type Registry struct {
	client *redis.Client
}

// NewRegistry creates a registry against the Redis instance at addr.
func NewRegistry(addr string) *Registry {
	return &Registry{
		client: redis.NewClient(&redis.Options{Addr: addr}),
	}
}

// Connect tests the connection.
func (r *Registry) Connect(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the connection.
func (r *Registry) Close() error {
	return r.client.Close()
}

func routeKey(route dataplane.Route) string {
	return fmt.Sprintf("%s%d|%s", keyPrefix, route.TableID, route.DestinationPrefix)
}

// RecordRoute stores the record for a freshly programmed route.
func (r *Registry) RecordRoute(ctx context.Context, platform string, route dataplane.Route, segment, name string) error {
	fields := map[string]interface{}{
		"name":               name,
		"platform":           platform,
		"destination_prefix": route.DestinationPrefix,
		"table_id":           route.TableID,
		"segment":            segment,
		"programmed_at":      time.Now().UTC().Format(time.RFC3339),
	}
	if route.BSID != "" {
		fields["bsid"] = route.BSID
	}
	if err := r.client.HSet(ctx, routeKey(route), fields).Err(); err != nil {
		return fmt.Errorf("recording route %s: %w", route.DestinationPrefix, err)
	}
	return nil
}

// RemoveRoute drops the record for a removed route. Removing a record
// that does not exist is not an error.
func (r *Registry) RemoveRoute(ctx context.Context, route dataplane.Route) error {
	if err := r.client.Del(ctx, routeKey(route)).Err(); err != nil {
		return fmt.Errorf("removing route record %s: %w", route.DestinationPrefix, err)
	}
	return nil
}

// ListRoutes returns all recorded routes. SCAN keeps this non-blocking
// on a shared Redis instance.
func (r *Registry) ListRoutes(ctx context.Context) ([]RouteEntry, error) {
	var entries []RouteEntry
	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, keyPrefix+"*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("scanning route records: %w", err)
		}
		for _, key := range keys {
			vals, err := r.client.HGetAll(ctx, key).Result()
			if err != nil || len(vals) == 0 {
				continue
			}
			tableID, _ := strconv.Atoi(vals["table_id"])
			entries = append(entries, RouteEntry{
				Name:              vals["name"],
				Platform:          vals["platform"],
				DestinationPrefix: vals["destination_prefix"],
				TableID:           tableID,
				Segment:           vals["segment"],
				BSID:              vals["bsid"],
				ProgrammedAt:      vals["programmed_at"],
			})
		}
		cursor = next
		if cursor == 0 {
			return entries, nil
		}
	}
}
