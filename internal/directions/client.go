package directions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	perr "github.com/transit-daytable/internal/common/errors"
	"github.com/transit-daytable/internal/common/logger"
	"github.com/transit-daytable/pkg/timetable/models"
)

const (
	UserAgent   = "daytable/1.0"
	httpTimeout = 30 * time.Second
)

// Client calls the directions, geocoding and time zone APIs. It performs exactly
// one HTTP request per call; retrying is the caller's policy.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     logger.Logger
}

// DirectionsRequest asks for transit itineraries departing at or after DepartAt
type DirectionsRequest struct {
	Origin      models.Place
	Destination models.Place
	DepartAt    time.Time
	Language    string
}

// GeocodeResult is the first match for a place
type GeocodeResult struct {
	Address  string
	Location models.LatLng
}

// TimeZoneResult is the zone in effect at a location at a given instant
type TimeZoneResult struct {
	ID        string
	RawOffset int
	DstOffset int
}

// UTCOffset is the total offset from UTC in seconds
func (r TimeZoneResult) UTCOffset() int {
	return r.RawOffset + r.DstOffset
}

func NewClient(baseURL, apiKey string, timeout time.Duration, log logger.Logger) *Client {
	if timeout <= 0 {
		timeout = httpTimeout
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		logger:  log,
	}
}

// Directions returns every itinerary the service proposes for one departure instant
func (c *Client) Directions(ctx context.Context, req DirectionsRequest) ([]models.RawItinerary, error) {
	const op = "directions.Directions"

	params := url.Values{}
	params.Set("origin", req.Origin.String())
	params.Set("destination", req.Destination.String())
	params.Set("mode", "transit")
	params.Set("alternatives", "true")
	params.Set("departure_time", strconv.FormatInt(req.DepartAt.Unix(), 10))
	if req.Language != "" {
		params.Set("language", req.Language)
	}

	var resp directionsResponse
	if err := c.getJSON(ctx, op, "/directions/json", params, &resp); err != nil {
		return nil, err
	}

	switch resp.Status {
	case "OK":
	case "ZERO_RESULTS", "NOT_FOUND":
		return nil, perr.Newf(perr.KindNoTransitOptions, op, "no transit options from %s", req.DepartAt.Format(time.RFC3339))
	default:
		return nil, statusError(op, resp.Status, resp.ErrorMessage)
	}

	itineraries := make([]models.RawItinerary, 0, len(resp.Routes))
	for _, r := range resp.Routes {
		itineraries = append(itineraries, convertRoute(r))
	}

	c.logger.Debug("Directions fetched",
		"depart_at", req.DepartAt.Format(time.RFC3339),
		"routes", len(itineraries))

	return itineraries, nil
}

// Geocode resolves a place to its first match
func (c *Client) Geocode(ctx context.Context, place models.Place) (GeocodeResult, error) {
	const op = "directions.Geocode"

	params := url.Values{}
	params.Set("address", place.String())

	var resp geocodeResponse
	if err := c.getJSON(ctx, op, "/geocode/json", params, &resp); err != nil {
		return GeocodeResult{}, err
	}

	switch resp.Status {
	case "OK":
	case "ZERO_RESULTS":
		return GeocodeResult{}, perr.Newf(perr.KindGeocode, op, "place %q could not be resolved", place)
	default:
		return GeocodeResult{}, statusError(op, resp.Status, resp.ErrorMessage)
	}
	if len(resp.Results) == 0 {
		return GeocodeResult{}, perr.Newf(perr.KindGeocode, op, "place %q returned no results", place)
	}

	first := resp.Results[0]
	return GeocodeResult{
		Address:  first.FormattedAddress,
		Location: first.Geometry.Location.model(),
	}, nil
}

// TimeZone looks up the zone at loc for the instant at
func (c *Client) TimeZone(ctx context.Context, loc models.LatLng, at time.Time) (TimeZoneResult, error) {
	const op = "directions.TimeZone"

	params := url.Values{}
	params.Set("location", loc.String())
	params.Set("timestamp", strconv.FormatInt(at.Unix(), 10))

	var resp timeZoneResponse
	if err := c.getJSON(ctx, op, "/timezone/json", params, &resp); err != nil {
		return TimeZoneResult{}, err
	}

	switch resp.Status {
	case "OK":
	case "ZERO_RESULTS":
		return TimeZoneResult{}, perr.Newf(perr.KindGeocode, op, "no time zone for %s", loc)
	default:
		return TimeZoneResult{}, statusError(op, resp.Status, resp.ErrorMessage)
	}

	return TimeZoneResult{
		ID:        resp.TimeZoneID,
		RawOffset: resp.RawOffset,
		DstOffset: resp.DstOffset,
	}, nil
}

// Locality reverse geocodes loc and returns the name of its locality component
func (c *Client) Locality(ctx context.Context, loc models.LatLng) (string, error) {
	const op = "directions.Locality"

	params := url.Values{}
	params.Set("latlng", loc.String())

	var resp geocodeResponse
	if err := c.getJSON(ctx, op, "/geocode/json", params, &resp); err != nil {
		return "", err
	}
	if resp.Status != "OK" {
		if resp.Status == "ZERO_RESULTS" {
			return "", perr.Newf(perr.KindGeocode, op, "no address for %s", loc)
		}
		return "", statusError(op, resp.Status, resp.ErrorMessage)
	}

	for _, r := range resp.Results {
		for _, comp := range r.AddressComponents {
			for _, t := range comp.Types {
				if t == "locality" {
					return comp.LongName, nil
				}
			}
		}
	}
	return "", perr.Newf(perr.KindGeocode, op, "no locality component for %s", loc)
}

func (c *Client) getJSON(ctx context.Context, op, path string, params url.Values, out interface{}) error {
	params.Set("key", c.apiKey)
	reqURL := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return perr.Wrap(err, perr.KindConfig, op, "creating request")
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return perr.Wrap(err, perr.KindCanceled, op, "request canceled")
		}
		return perr.Wrap(err, perr.KindTransient, op, "executing request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Debug("API returned error status",
			"op", op,
			"status_code", resp.StatusCode,
			"response_body", string(body))
		return httpStatusError(op, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return perr.Wrap(err, perr.KindTransient, op, "decoding response")
	}
	return nil
}

func httpStatusError(op string, code int) error {
	switch {
	case code == http.StatusTooManyRequests || code >= 500:
		return perr.Newf(perr.KindTransient, op, "HTTP %d", code)
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return perr.Newf(perr.KindQuotaOrAuth, op, "HTTP %d", code)
	case code == http.StatusBadRequest:
		return perr.Newf(perr.KindConfig, op, "HTTP %d", code)
	default:
		return perr.Newf(perr.KindUnknown, op, "unexpected status code: %d", code)
	}
}

// statusError maps a non-OK API status onto the error taxonomy
func statusError(op, status, message string) error {
	msg := status
	if message != "" {
		msg = fmt.Sprintf("%s: %s", status, message)
	}
	switch status {
	case "OVER_DAILY_LIMIT", "REQUEST_DENIED":
		return perr.New(perr.KindQuotaOrAuth, op, msg)
	case "OVER_QUERY_LIMIT", "UNKNOWN_ERROR":
		return perr.New(perr.KindTransient, op, msg)
	case "INVALID_REQUEST", "MAX_ROUTE_LENGTH_EXCEEDED", "MAX_WAYPOINTS_EXCEEDED":
		return perr.New(perr.KindConfig, op, msg)
	default:
		return perr.New(perr.KindUnknown, op, msg)
	}
}
