package openweather_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aireclaro/aireclaro/internal/collector/openweather"
)

const pollutionBody = `{
	"coord": {"lon": -73.626, "lat": 8.312},
	"list": [{
		"dt": 1717250400,
		"main": {"aqi": 2},
		"components": {
			"co": 220.3, "no": 0.1, "no2": 3.2, "o3": 48.6,
			"so2": 1.1, "pm2_5": 11.4, "pm10": 18.9, "nh3": 2.0
		}
	}]
}`

func newClient(baseURL string) *openweather.Client {
	return openweather.NewClient(openweather.ClientConfig{
		APIKey:          "test-key",
		BaseURL:         baseURL,
		Timeout:         2 * time.Second,
		MaxRetries:      2,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
	})
}

func TestCurrent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/air_pollution", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("appid"))
		assert.Equal(t, "8.312", r.URL.Query().Get("lat"))
		w.Write([]byte(pollutionBody))
	}))
	defer srv.Close()

	client := newClient(srv.URL)
	rec, err := client.Current(context.Background(), "aguachica_general", 8.312, -73.626)
	require.NoError(t, err)

	assert.Equal(t, "aguachica_general", rec.LocationID)
	assert.Equal(t, time.Unix(1717250400, 0).UTC(), rec.Timestamp)
	require.NotNil(t, rec.PM25)
	assert.InDelta(t, 11.4, *rec.PM25, 1e-9)
	require.NotNil(t, rec.NO2)
	assert.InDelta(t, 3.2, *rec.NO2, 1e-9)
	require.NotNil(t, rec.AQI)
	assert.Equal(t, 2, *rec.AQI)
}

func TestHistory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/air_pollution/history", r.URL.Path)
		assert.NotEmpty(t, r.URL.Query().Get("start"))
		assert.NotEmpty(t, r.URL.Query().Get("end"))
		w.Write([]byte(`{"list": [
			{"dt": 1717250400, "main": {"aqi": 1}, "components": {"pm2_5": 8.0}},
			{"dt": 1717254000, "main": {"aqi": 2}, "components": {"pm2_5": 12.5}}
		]}`))
	}))
	defer srv.Close()

	client := newClient(srv.URL)
	end := time.Now()
	recs, err := client.History(context.Background(), "bosque", 8.31, -73.61, end.Add(-24*time.Hour), end)
	require.NoError(t, err)

	require.Len(t, recs, 2)
	assert.Equal(t, "bosque", recs[0].LocationID)
	assert.InDelta(t, 12.5, *recs[1].PM25, 1e-9)
}

func TestHistory_DropsRecordsWithoutTimestamp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// dt 0 decodes but the second record carries usable data only.
		w.Write([]byte(`{"list": [
			{"main": {"aqi": 2}, "components": {"pm2_5": 9.0}, "dt": 1717250400},
			{"main": {}, "components": {"pm2_5": "not a number"}, "dt": 1717254000}
		]}`))
	}))
	defer srv.Close()

	client := newClient(srv.URL)
	recs, err := client.History(context.Background(), "bosque", 8.31, -73.61, time.Now().Add(-time.Hour), time.Now())
	require.NoError(t, err)

	// Both records have timestamps so both survive; the unusable pm2_5
	// field is simply absent.
	require.Len(t, recs, 2)
	assert.Nil(t, recs[1].PM25)
}

func TestRetriesTransientServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(pollutionBody))
	}))
	defer srv.Close()

	client := newClient(srv.URL)
	_, err := client.Current(context.Background(), "bosque", 8.31, -73.61)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := newClient(srv.URL)
	_, err := client.Current(context.Background(), "bosque", 8.31, -73.61)
	require.ErrorIs(t, err, openweather.ErrBadStatus)
	assert.Equal(t, int32(1), calls.Load())
}

func TestBreakerOpensAfterSustainedFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := newClient(srv.URL)
	for i := 0; i < 3; i++ {
		_, err := client.Current(context.Background(), "bosque", 8.31, -73.61)
		require.Error(t, err)
	}

	_, err := client.Current(context.Background(), "bosque", 8.31, -73.61)
	assert.ErrorIs(t, err, openweather.ErrCircuitOpen)
}
