package geocoding

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBaseURL = "https://nominatim.test"

func newTestGeocoder(t *testing.T, throttle time.Duration) (*Nominatim, *httpmock.MockTransport) {
	t.Helper()
	transport := httpmock.NewMockTransport()
	client := &http.Client{Transport: transport}
	return NewNominatim(Config{BaseURL: testBaseURL, Throttle: throttle}, client, nil), transport
}

const lisbonResponse = `{
  "display_name": "12, Rua Augusta, Baixa, Santa Maria Maior, Lisboa, 1100-053, Portugal",
  "address": {
    "road": "Rua Augusta",
    "house_number": "12",
    "postcode": "1100-053",
    "city": "Lisboa",
    "country": "Portugal"
  }
}`

func TestReverseGeocode_FormatsAndCaches(t *testing.T) {
	geo, transport := newTestGeocoder(t, 0)
	transport.RegisterResponder(http.MethodGet, testBaseURL+"/reverse",
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "38.7107", req.URL.Query().Get("lat"))
			assert.Equal(t, "-9.1365", req.URL.Query().Get("lon"))
			assert.Equal(t, DefaultUserAgent, req.Header.Get("User-Agent"))
			return httpmock.NewStringResponse(http.StatusOK, lisbonResponse), nil
		})

	address, err := geo.ReverseGeocode(context.Background(), 38.7107, -9.1365)
	require.NoError(t, err)
	assert.Equal(t, "Rua Augusta 12, 1100-053 Lisboa, Portugal", address)

	again, err := geo.ReverseGeocode(context.Background(), 38.7107, -9.1365)
	require.NoError(t, err)
	assert.Equal(t, address, again)
	assert.Equal(t, 1, transport.GetTotalCallCount())
}

func TestReverseGeocode_FallsBackToDisplayName(t *testing.T) {
	geo, transport := newTestGeocoder(t, 0)
	transport.RegisterResponder(http.MethodGet, testBaseURL+"/reverse",
		httpmock.NewStringResponder(http.StatusOK, `{"display_name": "Atlantic Ocean", "address": {}}`))

	address, err := geo.ReverseGeocode(context.Background(), 30, -40)
	require.NoError(t, err)
	assert.Equal(t, "Atlantic Ocean", address)
}

func TestReverseGeocode_Failures(t *testing.T) {
	tests := []struct {
		name      string
		responder httpmock.Responder
	}{
		{"server error", httpmock.NewStringResponder(http.StatusInternalServerError, "")},
		{"unable to geocode", httpmock.NewStringResponder(http.StatusOK, `{"error": "Unable to geocode"}`)},
		{"malformed body", httpmock.NewStringResponder(http.StatusOK, `{`)},
		{"empty result", httpmock.NewStringResponder(http.StatusOK, `{"address": {}}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			geo, transport := newTestGeocoder(t, 0)
			transport.RegisterResponder(http.MethodGet, testBaseURL+"/reverse", tt.responder)

			address, err := geo.ReverseGeocode(context.Background(), 1, 2)
			assert.Error(t, err)
			assert.Equal(t, AddressNotFound, address)
			assert.Zero(t, geo.cache.ItemCount())
		})
	}
}

func TestReverseGeocode_Throttles(t *testing.T) {
	geo, transport := newTestGeocoder(t, 50*time.Millisecond)
	transport.RegisterResponder(http.MethodGet, testBaseURL+"/reverse",
		httpmock.NewStringResponder(http.StatusOK, lisbonResponse))

	start := time.Now()
	_, err := geo.ReverseGeocode(context.Background(), 1, 1)
	require.NoError(t, err)
	_, err = geo.ReverseGeocode(context.Background(), 2, 2)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
	assert.Equal(t, 2, transport.GetTotalCallCount())
}

func TestReverseGeocode_CancelledWhileThrottled(t *testing.T) {
	geo, transport := newTestGeocoder(t, time.Hour)
	transport.RegisterResponder(http.MethodGet, testBaseURL+"/reverse",
		httpmock.NewStringResponder(http.StatusOK, lisbonResponse))

	_, err := geo.ReverseGeocode(context.Background(), 1, 1)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	address, err := geo.ReverseGeocode(ctx, 2, 2)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, AddressNotFound, address)
}
