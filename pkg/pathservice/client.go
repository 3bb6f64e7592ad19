// Package pathservice implements the client for the Jalapeno path
// computation API. The client asks for a shortest path between two nodes
// in a named graph and extracts the SRv6 uSID that steers traffic along
// it; it never computes paths itself.
package pathservice

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jalapeno-net/srctl/pkg/util"
)

// DefaultTimeout bounds a single path computation request.
const DefaultTimeout = 30 * time.Second

// Client talks to one path service instance.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the API server at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
	}
}

// PathResponse is the decoded body of a path service response. Raw holds
// the full response so callers can surface everything the service said,
// not just the fields srctl consumes.
type PathResponse struct {
	Raw map[string]interface{}
}

// USID returns the compressed segment identifier from the nested
// srv6_data.srv6_usid field, or "" when the service produced none.
func (r *PathResponse) USID() string {
	srv6Data, ok := r.Raw["srv6_data"].(map[string]interface{})
	if !ok {
		return ""
	}
	usid, _ := srv6Data["srv6_usid"].(string)
	return usid
}

// ShortestPath queries GET /api/v1/graphs/{graph}/shortest_path[/{metric}]
// with source and destination parameters. Any non-2xx answer becomes a
// PathServiceError carrying the status and body.
func (c *Client) ShortestPath(ctx context.Context, graph, source, destination, metric string) (*PathResponse, error) {
	endpoint := fmt.Sprintf("%s/api/v1/graphs/%s/shortest_path", c.baseURL, url.PathEscape(graph))
	if metric != "" {
		endpoint += "/" + url.PathEscape(metric)
	}

	params := url.Values{}
	params.Set("source", source)
	params.Set("destination", destination)

	return c.get(ctx, endpoint+"?"+params.Encode())
}

// PathQuery describes a GetPaths request.
type PathQuery struct {
	Graph       string
	PathType    string // "best-paths" or "next-best-path"
	Source      string
	Destination string
	Direction   string

	// best-paths only
	Limit int

	// next-best-path only
	SameHopLimit int
	PlusOneLimit int
}

// GetPaths queries GET /api/v1/graphs/{graph}/{path_type} and returns the
// candidate paths between source and destination without programming
// anything.
func (c *Client) GetPaths(ctx context.Context, q PathQuery) (*PathResponse, error) {
	endpoint := fmt.Sprintf("%s/api/v1/graphs/%s/%s",
		c.baseURL, url.PathEscape(q.Graph), url.PathEscape(q.PathType))

	params := url.Values{}
	params.Set("source", q.Source)
	params.Set("destination", q.Destination)
	if q.Direction != "" {
		params.Set("direction", q.Direction)
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.SameHopLimit > 0 {
		params.Set("same_hop_limit", strconv.Itoa(q.SameHopLimit))
	}
	if q.PlusOneLimit > 0 {
		params.Set("plus_one_limit", strconv.Itoa(q.PlusOneLimit))
	}

	return c.get(ctx, endpoint+"?"+params.Encode())
}

func (c *Client) get(ctx context.Context, fullURL string) (*PathResponse, error) {
	util.Debugf("path service request: %s", fullURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building path service request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrPathService, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading path service response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &util.PathServiceError{Status: resp.StatusCode, Body: string(body)}
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parsing path service response: %w", err)
	}
	return &PathResponse{Raw: raw}, nil
}
