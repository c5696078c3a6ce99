package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"visit-model-service/internal/domain"
	"visit-model-service/internal/platform/obs"
)

const (
	DefaultBaseURL = "https://api.openrouteservice.org"
	DefaultCountry = "SE"
)

// ErrNoMatch is returned when the geocoder has no result for an address.
var ErrNoMatch = errors.New("no geocode match")

type geocodeResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// ORSGeocoder resolves addresses through the OpenRouteService
// /geocode/search endpoint. It does no caching or pacing of its own;
// the address resolver owns both.
//
// The geocoder is safe for concurrent use.
type ORSGeocoder struct {
	session     *http.Client
	apiKey      string
	baseURL     string
	country     string
	maxAttempts int
	backoff     time.Duration
}

type Option func(*ORSGeocoder)

func WithBaseURL(u string) Option {
	return func(o *ORSGeocoder) {
		if u = strings.TrimRight(strings.TrimSpace(u), "/"); u != "" {
			o.baseURL = u
		}
	}
}

func WithCountry(c string) Option {
	return func(o *ORSGeocoder) { o.country = strings.TrimSpace(c) }
}

func WithHTTPClient(c *http.Client) Option {
	return func(o *ORSGeocoder) {
		if c != nil {
			o.session = c
		}
	}
}

// WithRetry sets the attempt count and the first backoff delay.
func WithRetry(attempts int, backoff time.Duration) Option {
	return func(o *ORSGeocoder) {
		if attempts > 0 {
			o.maxAttempts = attempts
		}
		if backoff > 0 {
			o.backoff = backoff
		}
	}
}

func NewORSGeocoder(apiKey string, opts ...Option) (*ORSGeocoder, error) {
	if apiKey == "" {
		return nil, errors.New("ORS api key is empty")
	}

	g := &ORSGeocoder{
		session:     &http.Client{Timeout: 10 * time.Second},
		apiKey:      apiKey,
		baseURL:     DefaultBaseURL,
		country:     DefaultCountry,
		maxAttempts: 4,
		backoff:     200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Geocode returns the best match for one address.
func (o *ORSGeocoder) Geocode(ctx context.Context, address string) (_ domain.Coordinates, err error) {
	defer obs.Time(ctx, "ors.Geocode")(&err)

	norm := strings.Join(strings.Fields(address), " ")
	if norm == "" {
		return domain.Coordinates{}, fmt.Errorf("geocode: empty address: %w", ErrNoMatch)
	}

	endpoint := o.baseURL + "/geocode/search"
	query := map[string]string{"text": norm, "size": "1"}
	if o.country != "" {
		query["boundary.country"] = o.country
	}

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		return o.newRequest(ctx, endpoint, query)
	})
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("geocode %q: %w", norm, err)
	}
	defer resp.Body.Close()

	var decoded geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Coordinates{}, fmt.Errorf("decode geocode response: %w", err)
	}

	if len(decoded.Features) == 0 {
		return domain.Coordinates{}, fmt.Errorf("geocode %q: %w", norm, ErrNoMatch)
	}

	coords := decoded.Features[0].Geometry.Coordinates
	if len(coords) != 2 {
		return domain.Coordinates{}, fmt.Errorf("invalid coordinate format for %q", norm)
	}

	return domain.Coordinates{Lon: coords[0], Lat: coords[1]}, nil
}
