// Package pricing computes deterministic price quotes for prospective
// bookings. The engine has no side effects: identical requests always
// produce identical breakdowns.
package pricing

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/tulshipandey/parkride-backend/catalog"
)

var (
	ErrInvalidWindow = errors.New("end time must be after start time")
	// ErrUnknownDiscount is non-fatal: Quote still returns a breakdown
	// computed with zero discount so callers can warn instead of block.
	ErrUnknownDiscount = errors.New("invalid discount code")
)

// Breakdown line labels, emitted in this order.
const (
	LabelBaseFee       = "Base Parking Fee"
	LabelPeakSurcharge = "Peak Hour Surcharge"
	LabelServices      = "Additional Services"
	LabelTotal         = "Total"
)

// Request describes a prospective booking to be priced. It is never
// persisted.
type Request struct {
	LocationID    string    `json:"locationId"`
	VehicleTypeID string    `json:"vehicleTypeId"`
	StartTime     time.Time `json:"startTime"`
	EndTime       time.Time `json:"endTime"`
	ServiceIDs    []string  `json:"serviceIds"`
	DiscountCode  string    `json:"discountCode"`
	// Peak is resolved by the caller against its own clock (see
	// InPeakWindow) so the engine itself never reads wall time.
	Peak bool `json:"peak"`
}

// Line is one labeled monetary amount in a breakdown. Amounts are
// rounded to two decimal places; discounts are negative.
type Line struct {
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
}

// Breakdown is the ordered line items of a quote. The last line is
// always labeled "Total" and equals the sum of the preceding lines.
type Breakdown struct {
	Lines []Line  `json:"lines"`
	Total float64 `json:"total"`
}

// Engine prices requests against a catalog.
type Engine struct {
	catalog *catalog.Catalog
}

func NewEngine(c *catalog.Catalog) *Engine {
	return &Engine{catalog: c}
}

// Quote computes the price breakdown for a request. Validation and
// catalog-resolution failures return a nil-breakdown error, except an
// unknown discount code: the breakdown is still returned, priced with
// zero discount, alongside ErrUnknownDiscount.
func (e *Engine) Quote(req Request) (Breakdown, error) {
	if !req.EndTime.After(req.StartTime) {
		return Breakdown{}, ErrInvalidWindow
	}

	loc, err := e.catalog.LocationByID(req.LocationID)
	if err != nil {
		return Breakdown{}, fmt.Errorf("location %q: %w", req.LocationID, err)
	}
	vt, err := e.catalog.VehicleTypeByID(req.VehicleTypeID)
	if err != nil {
		return Breakdown{}, fmt.Errorf("vehicle type %q: %w", req.VehicleTypeID, err)
	}

	var servicesTotal float64
	for _, id := range req.ServiceIDs {
		svc, err := e.catalog.ServiceByID(id)
		if err != nil {
			return Breakdown{}, fmt.Errorf("service %q: %w", id, err)
		}
		servicesTotal += svc.Fee
	}

	var discountPercent float64
	var warn error
	if req.DiscountCode != "" {
		d, err := e.catalog.DiscountByCode(req.DiscountCode)
		if err != nil {
			warn = ErrUnknownDiscount
		} else {
			discountPercent = d.Percent
		}
	}

	// All stages run on raw values; rounding happens once per emitted
	// line so rounding error never compounds.
	hours := req.EndTime.Sub(req.StartTime).Hours()
	basePrice := loc.BaseRate * vt.RateMultiplier * hours

	var peakSurcharge float64
	if req.Peak {
		peakSurcharge = basePrice * (loc.PeakMultiplier - 1)
	}

	subtotal := basePrice + peakSurcharge + servicesTotal
	discountAmount := subtotal * (discountPercent / 100)

	lines := []Line{{Label: LabelBaseFee, Amount: round2(basePrice)}}
	if peakSurcharge > 0 {
		lines = append(lines, Line{Label: LabelPeakSurcharge, Amount: round2(peakSurcharge)})
	}
	if servicesTotal > 0 {
		lines = append(lines, Line{Label: LabelServices, Amount: round2(servicesTotal)})
	}
	if d := round2(discountAmount); d > 0 {
		lines = append(lines, Line{
			Label:  fmt.Sprintf("Discount (%g%%)", discountPercent),
			Amount: -d,
		})
	}

	// The total is summed from the emitted lines, not the raw values,
	// so it always equals the sum the caller can recompute.
	var total float64
	for _, l := range lines {
		total += l.Amount
	}
	total = round2(total)
	lines = append(lines, Line{Label: LabelTotal, Amount: total})

	return Breakdown{Lines: lines, Total: total}, warn
}

// InPeakWindow reports whether t falls in a peak band (07:00-09:00 or
// 16:00-18:00 local time).
func InPeakWindow(t time.Time) bool {
	h := t.Hour()
	return (h >= 7 && h < 9) || (h >= 16 && h < 18)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
