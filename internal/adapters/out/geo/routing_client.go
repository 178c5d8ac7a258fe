// Package geo resolves road distances between coordinates. The primary
// source is an external routing service; when it is unreachable or slow the
// straight-line estimate keeps recalculations going.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"tracking/internal/core/domain/model/kernel"
)

// DefaultRequestTimeout bounds a single routing call. Distance resolution sits
// on the event ingest path, so a slow routing backend must not stall it.
const DefaultRequestTimeout = 2 * time.Second

// routeResponse mirrors the routing service reply.
type routeResponse struct {
	DistanceMeters float64 `json:"distance_meters"`
}

// RoutingClient queries an external routing service for road distance.
type RoutingClient struct {
	baseURL string
	client  *http.Client
}

// NewRoutingClient creates a client for the routing service at baseURL.
// A non-positive timeout falls back to DefaultRequestTimeout.
func NewRoutingClient(baseURL string, timeout time.Duration) (*RoutingClient, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("routing base URL is empty")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("routing base URL: %w", err)
	}
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	return &RoutingClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

// RouteDistanceMeters returns the road distance between two points.
func (c *RoutingClient) RouteDistanceMeters(
	ctx context.Context,
	from kernel.GeoPoint,
	to kernel.GeoPoint,
) (float64, error) {
	if err := from.Validate(); err != nil {
		return 0, err
	}
	if err := to.Validate(); err != nil {
		return 0, err
	}

	query := url.Values{}
	query.Set("from_lat", strconv.FormatFloat(from.Lat(), 'f', -1, 64))
	query.Set("from_lng", strconv.FormatFloat(from.Lng(), 'f', -1, 64))
	query.Set("to_lat", strconv.FormatFloat(to.Lat(), 'f', -1, 64))
	query.Set("to_lng", strconv.FormatFloat(to.Lng(), 'f', -1, 64))

	endpoint := c.baseURL + "/route?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("routing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("routing request: unexpected status %d", resp.StatusCode)
	}

	var body routeResponse
	if err = json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("routing response: %w", err)
	}
	if body.DistanceMeters < 0 {
		return 0, fmt.Errorf("routing response: negative distance %f", body.DistanceMeters)
	}

	return body.DistanceMeters, nil
}
