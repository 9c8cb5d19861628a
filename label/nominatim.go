package label

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const defaultNominatimBaseURL = "https://nominatim.openstreetmap.org"

// NominatimResolver resolves coordinates to place names against a
// Nominatim reverse-geocoding endpoint.
type NominatimResolver struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// NewNominatimResolver constructs a resolver. baseURL may be empty to use
// the public Nominatim instance; userAgent identifies the caller as the
// service requires.
func NewNominatimResolver(baseURL, userAgent string) *NominatimResolver {
	if baseURL == "" {
		baseURL = defaultNominatimBaseURL
	}
	return &NominatimResolver{
		baseURL:    baseURL,
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type nominatimResponse struct {
	DisplayName string `json:"display_name"`
	Address     struct {
		City    string `json:"city"`
		Town    string `json:"town"`
		Village string `json:"village"`
		County  string `json:"county"`
		State   string `json:"state"`
		Country string `json:"country"`
	} `json:"address"`
}

// Resolve reverse-geocodes each point in order. A point the service cannot
// name is returned with an empty Name rather than dropped, so positions in
// the result line up with the request.
func (r *NominatimResolver) Resolve(ctx context.Context, points []Point) ([]Point, error) {
	out := make([]Point, 0, len(points))
	for _, p := range points {
		name, err := r.reverseOne(ctx, p.LatitudeDeg, p.LongitudeDeg)
		if err != nil {
			return nil, err
		}
		p.Name = name
		out = append(out, p)
	}
	return out, nil
}

func (r *NominatimResolver) reverseOne(ctx context.Context, lat, lon float64) (string, error) {
	params := url.Values{}
	params.Set("lat", fmt.Sprintf("%.6f", lat))
	params.Set("lon", fmt.Sprintf("%.6f", lon))
	params.Set("format", "jsonv2")
	params.Set("zoom", "10")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/reverse?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("build reverse geocode request: %w", err)
	}
	if r.userAgent != "" {
		req.Header.Set("User-Agent", r.userAgent)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("reverse geocode call: %w", err)
	}
	defer resp.Body.Close()

	// Unresolvable coordinates (open ocean, rate limiting) are a normal
	// absence, not an error.
	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusTooManyRequests {
		return "", nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("reverse geocode status %d", resp.StatusCode)
	}

	var body nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("parse reverse geocode response: %w", err)
	}
	return pickName(body), nil
}

// pickName prefers the most local named place, falling back through
// progressively coarser divisions before using the raw display name.
func pickName(body nominatimResponse) string {
	for _, candidate := range []string{
		body.Address.City,
		body.Address.Town,
		body.Address.Village,
		body.Address.County,
		body.Address.State,
		body.Address.Country,
	} {
		if candidate != "" {
			return candidate
		}
	}
	return body.DisplayName
}
