package geocoder_adapter

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

	"listing-service/internal/contextkeys"
	"listing-service/internal/core/domain"
	"listing-service/internal/core/port"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"
)

const (
	maxCandidates = 5
	maxBodyBytes  = 1 << 20
)

// NominatimAdapter queries a Nominatim compatible /search endpoint.
// Requests are throttled so the public service's usage policy is respected.
type NominatimAdapter struct {
	baseURL   string
	userAgent string
	http      *retryablehttp.Client
	limiter   *rate.Limiter
}

type NominatimConfig struct {
	BaseURL   string
	UserAgent string
	// RequestsPerSecond <= 0 disables throttling.
	RequestsPerSecond float64
	Timeout           time.Duration
	RetryMax          int
}

func NewNominatimAdapter(cfg NominatimConfig) (*NominatimAdapter, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("geocoder base url cannot be empty")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 6 * time.Second
	}

	rc := retryablehttp.NewClient()
	rc.RetryWaitMin = 100 * time.Millisecond
	rc.RetryWaitMax = 900 * time.Millisecond
	rc.RetryMax = cfg.RetryMax
	rc.HTTPClient.Timeout = cfg.Timeout
	rc.Logger = nil
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	return &NominatimAdapter{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		http:      rc,
		limiter:   rate.NewLimiter(limit, 1),
	}, nil
}

type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

func (a *NominatimAdapter) Search(ctx context.Context, query string) ([]domain.GeoCandidate, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	adapterLogger := logger.WithFields(port.Fields{"component": "NominatimAdapter", "query": query})

	if err := a.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("geocoder rate limiter: %w", err)
	}

	q := url.Values{}
	q.Set("q", query)
	q.Set("format", "json")
	q.Set("limit", strconv.Itoa(maxCandidates))

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build geocoder request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if a.userAgent != "" {
		req.Header.Set("User-Agent", a.userAgent)
	}

	resp, err := a.http.Do(req)
	if err != nil {
		adapterLogger.Error("Geocoder request failed", err, nil)
		return nil, fmt.Errorf("geocoder request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("geocoder returned status %d", resp.StatusCode)
	}

	body, err := readAllLimit(resp.Body, maxBodyBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to read geocoder response: %w", err)
	}

	var places []nominatimPlace
	if err := json.Unmarshal(body, &places); err != nil {
		return nil, fmt.Errorf("failed to decode geocoder response: %w", err)
	}

	candidates := make([]domain.GeoCandidate, 0, len(places))
	for _, p := range places {
		lat, errLat := strconv.ParseFloat(p.Lat, 64)
		lon, errLon := strconv.ParseFloat(p.Lon, 64)
		if errLat != nil || errLon != nil || !domain.ValidCoordinates(lat, lon) {
			adapterLogger.Debug("Skipping malformed candidate", port.Fields{"lat": p.Lat, "lon": p.Lon})
			continue
		}
		candidates = append(candidates, domain.GeoCandidate{Lat: lat, Lon: lon, DisplayName: p.DisplayName})
	}
	return candidates, nil
}

func readAllLimit(r io.Reader, limit int64) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(b)) > limit {
		return nil, errors.New("payload too large")
	}
	return b, nil
}
