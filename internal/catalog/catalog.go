// Package catalog holds the clinic's static treatment price list. Prices are
// read-only reference data: the booking flow captures them onto the
// appointment at create time and never consults the catalog again.
package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a treatment or option id is not in the catalog.
var ErrNotFound = errors.New("treatment not found in catalog")

// Price is a single catalog entry. Consultation marks options that carry no
// numeric price ("Consultation Required" on the menu); such bookings proceed
// unpriced and earn no referral discount.
type Price struct {
	TreatmentName string
	OptionName    string
	Amount        decimal.Decimal
	Consultation  bool
}

type entry struct {
	treatmentID   string
	treatmentName string
	optionID      string
	optionName    string
	price         string // decimal literal; empty means consultation required
}

// defaultEntries is the clinic menu. Option ids follow the website's slugs.
func defaultEntries() []entry {
	return []entry{
		{"hydrafacial", "HydraFacial", "express", "Express (30 min)", "95"},
		{"hydrafacial", "HydraFacial", "deluxe", "Deluxe (45 min)", "145"},
		{"hydrafacial", "HydraFacial", "platinum", "Platinum (60 min)", "195"},
		{"anti-wrinkle", "Anti-Wrinkle Injections", "one-area", "One Area", "180"},
		{"anti-wrinkle", "Anti-Wrinkle Injections", "two-areas", "Two Areas", "240"},
		{"anti-wrinkle", "Anti-Wrinkle Injections", "three-areas", "Three Areas", "300"},
		{"dermal-filler", "Dermal Filler", "half-ml", "0.5ml", "170"},
		{"dermal-filler", "Dermal Filler", "one-ml", "1ml", "250"},
		{"skin-booster", "Skin Booster", "single", "Single Session", "150"},
		{"skin-booster", "Skin Booster", "course-of-three", "Course of 3", "400"},
		{"chemical-peel", "Chemical Peel", "single", "Single Session", "120"},
		{"laser-hair-removal", "Laser Hair Removal", "small-area", "Small Area", "60"},
		{"laser-hair-removal", "Laser Hair Removal", "full-body", "Full Body", ""},
		{"prp-therapy", "PRP Therapy", "single", "Single Session", ""},
	}
}

// Catalog is an immutable price lookup keyed by treatment and option id.
type Catalog struct {
	prices map[string]Price
}

// New builds the catalog from the default clinic menu.
func New() *Catalog {
	return newFromEntries(defaultEntries())
}

func newFromEntries(entries []entry) *Catalog {
	prices := make(map[string]Price, len(entries))
	for _, e := range entries {
		p := Price{
			TreatmentName: e.treatmentName,
			OptionName:    e.optionName,
			Consultation:  e.price == "",
		}
		if !p.Consultation {
			p.Amount = decimal.RequireFromString(e.price)
		}
		prices[key(e.treatmentID, e.optionID)] = p
	}
	return &Catalog{prices: prices}
}

// key normalizes ids so lookups are case- and whitespace-insensitive.
func key(treatmentID, optionID string) string {
	return strings.ToLower(strings.TrimSpace(treatmentID)) + "/" + strings.ToLower(strings.TrimSpace(optionID))
}

// Lookup resolves a treatment+option pair to its price entry.
// Returns ErrNotFound for ids the menu does not carry. Callers must check
// Price.Consultation before using Amount.
func (c *Catalog) Lookup(treatmentID, optionID string) (Price, error) {
	p, ok := c.prices[key(treatmentID, optionID)]
	if !ok {
		return Price{}, fmt.Errorf("lookup %s/%s: %w", treatmentID, optionID, ErrNotFound)
	}
	return p, nil
}
