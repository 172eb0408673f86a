package scrape

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Veraticus/lng-shipment-tracker/internal/common"
	"github.com/Veraticus/lng-shipment-tracker/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newSiteServer serves the listing and detail fixtures. The Pacific Breeze
// detail page fails and the Coral Energy page has no identifiers.
func newSiteServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/ports/CAKTM001", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, listingPage)
	})
	mux.HandleFunc("/vessels/details/9123456", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, detailPage)
	})
	mux.HandleFunc("/vessels/details/9234567", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream down", http.StatusInternalServerError)
	})
	mux.HandleFunc("/vessels/details/9456789", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, noIdentifierPage)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func testConfig(baseURL string) Config {
	config := DefaultConfig()
	config.BaseURL = baseURL
	config.RequestDelay = 0
	config.ListingTimeout = 2 * time.Second
	config.DetailTimeout = 2 * time.Second
	config.ListingRetries = 2
	return config
}

func newTestScraper(t *testing.T, baseURL string) *Scraper {
	t.Helper()
	client := NewClient(nil, NewThrottle(0), "", "", discardLogger())
	scraper, err := NewScraper(client, testConfig(baseURL), fixedClock, discardLogger())
	require.NoError(t, err)
	return scraper
}

func TestScraper_DepartedVessels(t *testing.T) {
	server := newSiteServer(t)
	scraper := newTestScraper(t, server.URL)

	var mu sync.Mutex
	var progressed []string
	result, err := scraper.DepartedVessels(context.Background(), func(done, total int, vessel string) {
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, 3, total)
		assert.Equal(t, len(progressed)+1, done)
		progressed = append(progressed, vessel)
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Arctic Voyager", "Pacific Breeze", "Coral Energy"}, progressed)
	assert.Equal(t, 8, result.Sections[model.SectionDepartures])
	assert.Equal(t, 2, result.ManualEntry)
	require.Len(t, result.Vessels, 3)

	arctic := result.Vessels[0]
	assert.Equal(t, "9123456", arctic.Detail.IMO.OrElse(""))
	assert.Equal(t, "Tokyo, Japan", arctic.Detail.DestinationPort.OrElse(""))
	assert.Empty(t, arctic.Notes)
	departed, ok := arctic.DepartureDate.Get()
	require.True(t, ok)
	assert.Equal(t, "2025-01-10", departed.Format(time.DateOnly))

	pacific := result.Vessels[1]
	assert.Equal(t, "Pacific Breeze", pacific.Detail.Name)
	assert.Equal(t, model.VesselTypeLNGTanker, pacific.Detail.VesselType)
	assert.False(t, pacific.Detail.IMO.Present())
	assert.Equal(t, NoteDetailMissing, pacific.Notes)

	coral := result.Vessels[2]
	assert.Equal(t, "MYSTERY GAS", coral.Detail.Name)
	assert.False(t, coral.Detail.IMO.Present())
	assert.Equal(t, NoteNoIdentifier, coral.Notes)
}

func TestScraper_ListingServerError(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := newTestScraper(t, server.URL).DepartedVessels(context.Background(), nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrFetchFailed))
	assert.True(t, errors.Is(err, common.ErrMaxRetries))
	assert.Equal(t, int32(2), hits.Load())
}

func TestScraper_ListingNotFoundIsNotRetried(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.NotFound(w, r)
	}))
	defer server.Close()

	_, err := newTestScraper(t, server.URL).DepartedVessels(context.Background(), nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrFetchFailed))
	assert.Equal(t, int32(1), hits.Load())
}

func TestScraper_FetchDetailWithoutLink(t *testing.T) {
	scraper := newTestScraper(t, "https://www.vesselfinder.com")

	detail, err := scraper.FetchDetail(context.Background(), model.VesselStub{Name: "Arctic Voyager", VesselType: model.VesselTypeLNGTanker})

	assert.True(t, errors.Is(err, common.ErrFetchFailed))
	assert.Equal(t, "Arctic Voyager", detail.Name)
}

func TestClient_SendsBrowserHeaders(t *testing.T) {
	var got http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		_, _ = io.WriteString(w, "<html><body><h1>ok</h1></body></html>")
	}))
	defer server.Close()

	client := NewClient(server.Client(), nil, "", "https://www.vesselfinder.com/", discardLogger())
	page, err := client.Fetch(context.Background(), server.URL, time.Second)

	require.NoError(t, err)
	assert.Equal(t, "ok", page.Find("h1")[0].Text())
	assert.Equal(t, DefaultUserAgent, got.Get("User-Agent"))
	assert.Equal(t, "https://www.vesselfinder.com/", got.Get("Referer"))
	assert.Contains(t, got.Get("Accept"), "text/html")
}

func TestClient_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer server.Close()

	client := NewClient(nil, nil, "", "", discardLogger())
	_, err := client.Fetch(context.Background(), server.URL, 20*time.Millisecond)

	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrFetchFailed))
}

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantErr   bool
		rateLimit bool
		retryable bool
	}{
		{name: "ok", status: http.StatusOK},
		{name: "rate limited", status: http.StatusTooManyRequests, wantErr: true, rateLimit: true, retryable: true},
		{name: "server error", status: http.StatusServiceUnavailable, wantErr: true, retryable: true},
		{name: "not found", status: http.StatusNotFound, wantErr: true},
		{name: "forbidden", status: http.StatusForbidden, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkStatus("https://www.vesselfinder.com/ports/CAKTM001", tt.status)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.rateLimit, errors.Is(err, common.ErrRateLimit))
			assert.Equal(t, tt.retryable, common.IsRetryable(err))
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	config := DefaultConfig()
	assert.NoError(t, config.Validate())
	assert.Equal(t, "https://www.vesselfinder.com/ports/CAKTM001", config.ListingURL())
	assert.Equal(t, "https://www.vesselfinder.com/vessels/details/9123456", config.DetailURLForIMO("9123456"))

	config.PortCode = ""
	assert.True(t, errors.Is(config.Validate(), common.ErrMissingConfig))

	config = DefaultConfig()
	config.RequestDelay = -time.Second
	assert.True(t, errors.Is(config.Validate(), common.ErrInvalidConfig))
}
