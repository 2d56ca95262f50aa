package leasing

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Listing is the snapshot a vehicle page hands to the configurator at form load.
type Listing struct {
	VehicleID            int64
	VehicleTitle         string
	ContactRoutingTarget string
	WatchingCount        int
	SubscriptionOptions  []SubscriptionRecord
	InsuranceOptions     []InsuranceRecord
	MileageOptions       []MileageRecord
}

// SubscriptionRecord is a stored subscription-length row.
type SubscriptionRecord struct {
	Months          int     `json:"months" yaml:"months"`
	BasePrice       float64 `json:"base_price" yaml:"base_price"`
	PriceAdjustment float64 `json:"price_adjustment" yaml:"price_adjustment"`
	Selected        bool    `json:"is_selected" yaml:"is_selected"`
	Recommended     bool    `json:"is_recommended" yaml:"is_recommended"`
	Description     string  `json:"description,omitempty" yaml:"description,omitempty"`
}

// InsuranceRecord is a stored insurance-tier row.
type InsuranceRecord struct {
	ID              string  `json:"id,omitempty" yaml:"id,omitempty"`
	Name            string  `json:"name" yaml:"name"`
	PriceAdjustment float64 `json:"price_adjustment" yaml:"price_adjustment"`
	Selected        bool    `json:"is_selected" yaml:"is_selected"`
	Recommended     bool    `json:"is_recommended" yaml:"is_recommended"`
	Description     string  `json:"description,omitempty" yaml:"description,omitempty"`
}

// MileageRecord is a stored monthly-mileage row.
type MileageRecord struct {
	Miles           int     `json:"miles" yaml:"miles"`
	PriceAdjustment float64 `json:"price_adjustment" yaml:"price_adjustment"`
	ExtraKmRate     string  `json:"extra_km_rate,omitempty" yaml:"extra_km_rate,omitempty"`
	Selected        bool    `json:"is_selected" yaml:"is_selected"`
	Recommended     bool    `json:"is_recommended" yaml:"is_recommended"`
	Description     string  `json:"description,omitempty" yaml:"description,omitempty"`
}

// Contact returns the routing target, falling back to FallbackContact.
func (l Listing) Contact() string {
	if c := strings.TrimSpace(l.ContactRoutingTarget); c != "" {
		return c
	}
	return FallbackContact
}

// Watching returns the display-only watching count, falling back to DefaultWatchingCount.
func (l Listing) Watching() int {
	if l.WatchingCount > 0 {
		return l.WatchingCount
	}
	return DefaultWatchingCount
}

// Catalog normalizes the stored records into a catalog. Rows without their key field are
// dropped; a category left empty falls back to the built-in defaults.
func (l Listing) Catalog(currency string) Catalog {
	lists := map[Category][]Option{
		CategorySubscription: subscriptionOptions(l.SubscriptionOptions, currency),
		CategoryInsurance:    insuranceOptions(l.InsuranceOptions, currency),
		CategoryMileage:      mileageOptions(l.MileageOptions, currency),
	}
	return NewCatalog(lists)
}

func subscriptionOptions(records []SubscriptionRecord, currency string) []Option {
	out := make([]Option, 0, len(records))
	for _, r := range records {
		if r.Months <= 0 {
			continue
		}
		price := roundAmount(r.BasePrice + r.PriceAdjustment)
		out = append(out, Option{
			ID:          strconv.Itoa(r.Months) + "months",
			Label:       strconv.Itoa(r.Months) + " months",
			Description: FormatAmount(price, currency) + "/month",
			Price:       price,
			Default:     r.Selected,
			Recommended: r.Recommended,
		})
	}
	return out
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// InsuranceID derives the option id of an insurance row: the explicit id when set, otherwise
// the lower-cased name with whitespace runs replaced by underscores.
func InsuranceID(r InsuranceRecord) string {
	if id := strings.TrimSpace(r.ID); id != "" {
		return id
	}
	return whitespaceRun.ReplaceAllString(strings.ToLower(r.Name), "_")
}

func insuranceOptions(records []InsuranceRecord, currency string) []Option {
	out := make([]Option, 0, len(records))
	for _, r := range records {
		if strings.TrimSpace(r.Name) == "" {
			continue
		}
		adj := roundAmount(r.PriceAdjustment)
		desc := "Included"
		if adj > 0 {
			desc = "+ " + FormatAmount(adj, currency) + "/month"
		}
		out = append(out, Option{
			ID:          InsuranceID(r),
			Label:       r.Name,
			Description: desc,
			Price:       adj,
			Default:     r.Selected,
			Recommended: r.Recommended,
		})
	}
	return out
}

func mileageOptions(records []MileageRecord, currency string) []Option {
	out := make([]Option, 0, len(records))
	for _, r := range records {
		if r.Miles <= 0 {
			continue
		}
		desc := strings.TrimSpace(r.Description)
		if desc == "" {
			rate := strings.TrimSpace(r.ExtraKmRate)
			if rate == "" {
				rate = "2.00"
			}
			desc = strings.TrimSpace(currency + " " + rate + " per additional km")
		}
		out = append(out, Option{
			ID:          strconv.Itoa(r.Miles),
			Label:       GroupDigits(int64(r.Miles)) + " km",
			Description: desc,
			Price:       roundAmount(r.PriceAdjustment),
			Default:     r.Selected,
			Recommended: r.Recommended,
		})
	}
	return out
}

func roundAmount(v float64) int64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int64(math.Round(v))
}
