package scrape

import (
	"testing"
	"time"

	"github.com/Veraticus/lng-shipment-tracker/internal/dom"
	"github.com/stretchr/testify/require"
)

// listingPage mirrors the VesselFinder port page layout: section headings
// followed by tables of vessel rows.
const listingPage = `<!DOCTYPE html>
<html><head><title>Port of Kitimat</title></head><body>
<table>
  <tr><td><a href="/vessels/details/9000001">Early Bird LNG Tanker</a></td><td>Jan 3</td></tr>
</table>
<h2>Vessels in port</h2>
<table>
  <tr><td><a href="/vessels/details/9000002">Harbor Queen LNG Tanker</a></td><td>LNG Tanker</td></tr>
</table>
<h3>Expected arrivals</h3>
<table>
  <tr><td><a href="/vessels/details/9567890">Sunrise Gas LNG Tanker</a></td><td>ETA Jan 20</td></tr>
</table>
<h2>Recent departures</h2>
<table>
  <tr><th>Vessel</th><th>Departure</th></tr>
  <tr><td><a href="/vessels/details/9123456">Arctic Voyager LNG Tanker</a></td><td>Jan 10, 2025</td><td>Jan 12, 2025</td></tr>
  <tr><td><a href="/vessels/details/9234567">Pacific Breeze LNG Tanker</a></td><td>Feb 3</td></tr>
  <tr><td><a href="/vessels/details/9345678">Northern Lights Bulk Carrier</a></td><td>Jan 11, 2025</td></tr>
  <tr><td><a href="/vessels/details/1">Jan 5</a></td><td>LNG Tanker</td></tr>
  <tr><td><a href="/vessels/details/9123456">Arctic Voyager LNG Tanker</a></td><td>Jan 14, 2025</td></tr>
  <tr><td>Unnamed LNG Tanker</td><td>Jan 15, 2025</td></tr>
</table>
<h4>Weather</h4>
<table>
  <tr><td><a href="/vessels/details/9456789">Coral Energy LNG Tanker</a></td><td>Mar 1, 2025</td></tr>
</table>
</body></html>`

// detailPage mirrors a VesselFinder vessel page with every field present.
const detailPage = `<!DOCTYPE html>
<html><head><title>ARCTIC VOYAGER, LNG Tanker - Details and current position - IMO 9123456 - VesselFinder</title></head>
<body>
<h1>ARCTIC VOYAGER</h1>
<h2 class="vst">LNG Tanker, IMO 9123456</h2>
<div class="vi__r1">
  <div class="vilabel">Destination</div><a class="_npNa" href="/ports/JPTYO001">Tokyo, Japan</a>
</div>
<span class="_mcol12ext">ETA: Jan 25, 12:00</span>
<table class="aparams">
  <tr><td class="n3">IMO / MMSI</td><td class="v3 v3np">9123456 / 538001234</td></tr>
  <tr><td class="n3">Ship Type</td><td class="v3">LNG Tanker</td></tr>
  <tr><td class="n3">LNG Capacity</td><td class="v3">174,000 m³</td></tr>
  <tr><td class="n3">Gross Tonnage</td><td class="v3">113,000</td></tr>
  <tr><td class="n3">Navigation Status</td><td class="v3">Under way</td></tr>
</table>
</body></html>`

// noIdentifierPage is a detail page whose identifiers were not rendered.
const noIdentifierPage = `<html><head><title>Vessel - VesselFinder</title></head><body>
<h1>MYSTERY GAS</h1>
<table><tr><td class="n3">IMO / MMSI</td><td class="v3">- / -</td></tr></table>
</body></html>`

var fixedNow = time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time {
	return fixedNow
}

func parse(t *testing.T, html string) dom.Node {
	t.Helper()
	root, err := dom.ParseString(html)
	require.NoError(t, err)
	return root
}
