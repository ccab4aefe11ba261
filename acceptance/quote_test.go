package acceptance

import (
	"net/http"
	"testing"

	"github.com/davecgh/go-spew/spew"
)

type quoteReply struct {
	Lines []struct {
		Label  string  `json:"label"`
		Amount float64 `json:"amount"`
	} `json:"lines"`
	Total       float64 `json:"total"`
	PeakApplied bool    `json:"peakApplied"`
	Warning     string  `json:"warning"`
}

var eightHourQuote = map[string]interface{}{
	"locationId":    "loc1",
	"vehicleTypeId": "standard",
	"startTime":     "2024-06-01T14:00:00Z",
	"endTime":       "2024-06-01T22:00:00Z",
}

func TestQuoteOffPeak(t *testing.T) {
	ts := NewTestServer(t)

	w := ts.POST("/quotes", eightHourQuote, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var reply quoteReply
	decode(t, w, &reply)
	if reply.Total != 120.00 {
		t.Errorf("expected total 120.00, got %v", reply.Total)
	}
	if reply.PeakApplied {
		t.Error("peak must not apply at midday")
	}
	// Base fee and total only; no zero-amount lines.
	if len(reply.Lines) != 2 {
		t.Errorf("expected 2 lines, got %s", spew.Sdump(reply.Lines))
	}
}

func TestQuotePeakSurcharge(t *testing.T) {
	ts := NewPeakTestServer(t)

	w := ts.POST("/quotes", eightHourQuote, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var reply quoteReply
	decode(t, w, &reply)
	if !reply.PeakApplied {
		t.Fatal("expected peak to apply at 08:00")
	}
	// 120 base plus 120 x (1.5 - 1) surcharge.
	if reply.Total != 180.00 {
		t.Errorf("expected total 180.00, got %v", reply.Total)
	}
}

func TestQuoteWithServicesAndDiscount(t *testing.T) {
	ts := NewTestServer(t)

	req := map[string]interface{}{
		"locationId":    "loc1",
		"vehicleTypeId": "standard",
		"startTime":     "2024-06-01T14:00:00Z",
		"endTime":       "2024-06-01T22:00:00Z",
		"serviceIds":    []string{"valet", "charging"},
		"discountCode":  "weekend",
	}

	w := ts.POST("/quotes", req, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var reply quoteReply
	decode(t, w, &reply)
	// 120 base + 18 services - 10% of 138.
	if reply.Total != 124.20 {
		t.Errorf("expected total 124.20, got %v", reply.Total)
	}

	var labels []string
	for _, l := range reply.Lines {
		labels = append(labels, l.Label)
	}
	want := []string{"Base Parking Fee", "Additional Services", "Discount (10%)", "Total"}
	if len(labels) != len(want) {
		t.Fatalf("unexpected lines %s", spew.Sdump(reply.Lines))
	}
	for i := range want {
		if labels[i] != want[i] {
			t.Errorf("line %d: expected %q, got %q", i, want[i], labels[i])
		}
	}
}

func TestQuoteUnknownDiscountWarns(t *testing.T) {
	ts := NewTestServer(t)

	req := map[string]interface{}{
		"locationId":    "loc1",
		"vehicleTypeId": "standard",
		"startTime":     "2024-06-01T14:00:00Z",
		"endTime":       "2024-06-01T22:00:00Z",
		"discountCode":  "NOPE",
	}

	w := ts.POST("/quotes", req, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var reply quoteReply
	decode(t, w, &reply)
	if reply.Warning == "" {
		t.Error("expected a warning for an unknown discount code")
	}
	if reply.Total != 120.00 {
		t.Errorf("expected undiscounted total 120.00, got %v", reply.Total)
	}
}

func TestQuoteInvalidWindow(t *testing.T) {
	ts := NewTestServer(t)

	req := map[string]interface{}{
		"locationId":    "loc1",
		"vehicleTypeId": "standard",
		"startTime":     "2024-06-01T22:00:00Z",
		"endTime":       "2024-06-01T14:00:00Z",
	}

	w := ts.POST("/quotes", req, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestQuoteUnknownLocation(t *testing.T) {
	ts := NewTestServer(t)

	req := map[string]interface{}{
		"locationId":    "nowhere",
		"vehicleTypeId": "standard",
		"startTime":     "2024-06-01T14:00:00Z",
		"endTime":       "2024-06-01T22:00:00Z",
	}

	w := ts.POST("/quotes", req, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d: %s", w.Code, w.Body.String())
	}
}

func TestCatalogEndpointsArePublic(t *testing.T) {
	ts := NewTestServer(t)

	for _, path := range []string{
		"/catalog/locations",
		"/catalog/vehicle-types",
		"/catalog/services",
		"/catalog/shuttles",
	} {
		w := ts.GET(path, nil)
		if w.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, w.Code)
		}
	}
}
