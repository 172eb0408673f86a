package scrape

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Veraticus/lng-shipment-tracker/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mooredPage = `<html><body>
<h1>ARCTIC VOYAGER</h1>
<div><div class="vilabel">Destination</div><a class="_npNa">Tokyo, Japan</a></div>
<span class="_mcol12ext">ETA: May 20, 08:00</span>
<table><tr><td>Navigation Status</td><td>Moored</td></tr></table>
</body></html>`

const ataPage = `<html><body>
<span class="_mcol12ext">ETA: May 20, 08:00</span>
<span class="_mcol12">ATA: May 19, 22:10</span>
<table><tr><td>Navigation Status</td><td>Under way</td></tr></table>
</body></html>`

func departedOn(day string) model.ShipmentRecord {
	departed, _ := time.Parse(time.DateOnly, day)
	return model.ShipmentRecord{
		VesselName:    "Arctic Voyager",
		IMONumber:     "9123456",
		DepartureDate: model.Some(departed),
	}
}

func TestExtractVoyageStatus(t *testing.T) {
	status := ExtractVoyageStatus(parse(t, ataPage), fixedNow, time.UTC)

	assert.Equal(t, model.Some("Under way"), status.NavigationStatus)
	assert.False(t, status.Destination.Present())

	eta, ok := status.ETA.Get()
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 5, 20, 8, 0, 0, 0, time.UTC), eta)

	ata, ok := status.ATA.Get()
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 5, 19, 22, 10, 0, 0, time.UTC), ata)
}

func TestDefaultArrivalPredicate(t *testing.T) {
	past := model.Some(fixedNow.Add(-time.Hour))
	future := model.Some(fixedNow.Add(time.Hour))

	tests := []struct {
		name   string
		status VoyageStatus
		want   bool
	}{
		{"ata shown", VoyageStatus{ATA: past}, true},
		{"moored after eta", VoyageStatus{ETA: past, NavigationStatus: model.Some("Moored")}, true},
		{"at anchor after eta", VoyageStatus{ETA: past, NavigationStatus: model.Some("At anchor")}, true},
		{"moored before eta", VoyageStatus{ETA: future, NavigationStatus: model.Some("Moored")}, false},
		{"moored without eta", VoyageStatus{NavigationStatus: model.Some("Moored")}, false},
		{"under way after eta", VoyageStatus{ETA: past, NavigationStatus: model.Some("Under way using engine")}, false},
		{"nothing known", VoyageStatus{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DefaultArrivalPredicate(tt.status, model.ShipmentRecord{}, fixedNow))
		})
	}
}

func TestSignal(t *testing.T) {
	record := departedOn("2025-05-01")

	tests := []struct {
		name    string
		record  model.ShipmentRecord
		arrived time.Time
		flag    bool
	}{
		{"normal voyage", record, time.Date(2025, 5, 20, 8, 0, 0, 0, time.UTC), false},
		{"too fast", record, time.Date(2025, 5, 2, 12, 0, 0, 0, time.UTC), true},
		{"before departure", record, time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC), true},
		{"exactly minimum", record, time.Date(2025, 5, 3, 0, 0, 0, 0, time.UTC), false},
		{"unknown departure", model.ShipmentRecord{IMONumber: "9123456"}, time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signal := Signal(tt.record, tt.arrived, DefaultMinVoyage)
			assert.True(t, signal.HasArrived)
			assert.Equal(t, model.Some(tt.arrived), signal.ActualArrival)
			assert.Equal(t, tt.flag, signal.ShouldFlag)
			if tt.flag {
				assert.NotEmpty(t, signal.Reason)
			}
		})
	}
}

func newDetectorServer(t *testing.T, body string) (*httptest.Server, *[]string) {
	t.Helper()
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(server.Close)
	return server, &paths
}

func newTestDetector(baseURL string, predicate ArrivalPredicate) *PageArrivalDetector {
	client := NewClient(nil, NewThrottle(0), "", "", discardLogger())
	return NewPageArrivalDetector(client, testConfig(baseURL), predicate, 0, fixedClock, discardLogger())
}

func TestPageArrivalDetector_Arrived(t *testing.T) {
	server, paths := newDetectorServer(t, mooredPage)

	signal, err := newTestDetector(server.URL, nil).CheckArrival(context.Background(), departedOn("2025-05-01"))

	require.NoError(t, err)
	assert.Equal(t, []string{"/vessels/details/9123456"}, *paths)
	assert.True(t, signal.HasArrived)
	assert.False(t, signal.ShouldFlag)
	assert.Equal(t, model.Some(time.Date(2025, 5, 20, 8, 0, 0, 0, time.UTC)), signal.ActualArrival)
}

func TestPageArrivalDetector_ATAPreferred(t *testing.T) {
	server, _ := newDetectorServer(t, ataPage)

	signal, err := newTestDetector(server.URL, nil).CheckArrival(context.Background(), departedOn("2025-05-18"))

	require.NoError(t, err)
	assert.True(t, signal.HasArrived)
	assert.True(t, signal.ShouldFlag)
	assert.Equal(t, model.Some(time.Date(2025, 5, 19, 22, 10, 0, 0, time.UTC)), signal.ActualArrival)
}

func TestPageArrivalDetector_StillEnRoute(t *testing.T) {
	server, _ := newDetectorServer(t, detailPage)

	signal, err := newTestDetector(server.URL, nil).CheckArrival(context.Background(), departedOn("2025-05-01"))

	require.NoError(t, err)
	assert.False(t, signal.HasArrived)
	assert.False(t, signal.ActualArrival.Present())
}

func TestPageArrivalDetector_CustomPredicate(t *testing.T) {
	server, _ := newDetectorServer(t, detailPage)
	always := func(VoyageStatus, model.ShipmentRecord, time.Time) bool { return true }

	signal, err := newTestDetector(server.URL, always).CheckArrival(context.Background(), departedOn("2025-05-01"))

	require.NoError(t, err)
	assert.True(t, signal.HasArrived)
	// The detail page ETA is in the past relative to the clock.
	assert.Equal(t, model.Some(time.Date(2025, 1, 25, 12, 0, 0, 0, time.UTC)), signal.ActualArrival)
	assert.True(t, signal.ShouldFlag)
}

func TestPageArrivalDetector_RequiresIMO(t *testing.T) {
	record := departedOn("2025-05-01")
	record.IMONumber = ""

	_, err := newTestDetector("https://www.vesselfinder.com", nil).CheckArrival(context.Background(), record)
	assert.Error(t, err)
}
