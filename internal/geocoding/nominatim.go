// Package geocoding resolves frame coordinates into postal addresses.
package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/exifnotes/logbook/internal/logging"
)

// AddressNotFound is returned in place of an address when lookup fails.
const AddressNotFound = "Address not found"

const (
	DefaultBaseURL   = "https://nominatim.openstreetmap.org"
	DefaultUserAgent = "exifnotes-logbook"
	DefaultThrottle  = time.Second
	DefaultCacheTTL  = 24 * time.Hour
)

var ErrNoAddress = errors.New("no address for coordinates")

// Config controls the Nominatim client.
type Config struct {
	BaseURL   string
	UserAgent string
	Language  string
	// Throttle is the minimum delay between two requests. Nominatim's usage
	// policy allows one request per second.
	Throttle time.Duration
	CacheTTL time.Duration
}

type nominatimAddress struct {
	Road        string `json:"road"`
	HouseNumber string `json:"house_number"`
	Postcode    string `json:"postcode"`
	City        string `json:"city"`
	Town        string `json:"town"`
	Village     string `json:"village"`
	Country     string `json:"country"`
}

type nominatimLocation struct {
	DisplayName string           `json:"display_name"`
	Address     nominatimAddress `json:"address"`
	Error       string           `json:"error"`
}

// Nominatim is a reverse geocoder backed by an OpenStreetMap Nominatim
// server. Requests are serialized and throttled; results are cached by
// coordinates rounded to about one meter.
type Nominatim struct {
	cfg    Config
	client *http.Client
	cache  *cache.Cache
	logger *zap.Logger

	mu          sync.Mutex
	lastRequest time.Time
}

// NewNominatim creates a geocoder. client may be nil.
func NewNominatim(cfg Config, client *http.Client, logger *zap.Logger) *Nominatim {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Language == "" {
		cfg.Language = "en"
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Nominatim{
		cfg:    cfg,
		client: client,
		cache:  cache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
		logger: logging.OrNop(logger),
	}
}

func cacheKey(lat, lng float64) string {
	return strconv.FormatFloat(lat, 'f', 5, 64) + "," + strconv.FormatFloat(lng, 'f', 5, 64)
}

// ReverseGeocode returns the display address for the coordinates. On failure
// it returns AddressNotFound together with the error.
func (n *Nominatim) ReverseGeocode(ctx context.Context, lat, lng float64) (string, error) {
	key := cacheKey(lat, lng)
	if v, ok := n.cache.Get(key); ok {
		return v.(string), nil
	}

	loc, err := n.fetch(ctx, lat, lng)
	if err != nil {
		n.logger.Warn("reverse geocoding failed",
			zap.Float64("lat", lat), zap.Float64("lng", lng), zap.Error(err))
		return AddressNotFound, err
	}
	address := formatAddress(loc)
	if address == "" {
		return AddressNotFound, ErrNoAddress
	}
	n.cache.SetDefault(key, address)
	return address, nil
}

func (n *Nominatim) wait(ctx context.Context) error {
	if n.cfg.Throttle <= 0 {
		return nil
	}
	delay := n.cfg.Throttle - time.Since(n.lastRequest)
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (n *Nominatim) fetch(ctx context.Context, lat, lng float64) (*nominatimLocation, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if err := n.wait(ctx); err != nil {
		return nil, err
	}
	n.lastRequest = time.Now()

	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lng, 'f', -1, 64))
	q.Set("addressdetails", "1")
	endpoint := n.cfg.BaseURL + "/reverse?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", n.cfg.UserAgent)
	req.Header.Set("Accept-Language", n.cfg.Language)

	n.logger.Debug("reverse geocoding", zap.String("url", endpoint))
	resp, err := n.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request nominatim: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("nominatim returned status %d", resp.StatusCode)
	}

	var loc nominatimLocation
	if err := json.NewDecoder(resp.Body).Decode(&loc); err != nil {
		return nil, fmt.Errorf("decode nominatim response: %w", err)
	}
	if loc.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrNoAddress, loc.Error)
	}
	return &loc, nil
}
