package optionlist

import (
	"strconv"
	"strings"

	"github.com/alc/leasing-form/internal/leasing"
)

func (r Row) number(field string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(r.Value(field)), 64)
	if err != nil {
		return 0
	}
	return v
}

func (r Row) whole(field string) int {
	v := strings.TrimSpace(r.Value(field))
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return int(r.number(field))
}

func (r Row) flag(field string) bool { return r.Value(field) == "yes" }

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// SubscriptionRecords converts the rows to stored records, skipping rows without months.
func (l *List) SubscriptionRecords() []leasing.SubscriptionRecord {
	out := make([]leasing.SubscriptionRecord, 0, len(l.Rows))
	for _, r := range l.Rows {
		if strings.TrimSpace(r.Value("months")) == "" || r.whole("months") <= 0 {
			continue
		}
		out = append(out, leasing.SubscriptionRecord{
			Months:          r.whole("months"),
			BasePrice:       r.number("base_price"),
			PriceAdjustment: r.number("price_adjustment"),
			Selected:        r.flag("is_selected"),
			Recommended:     r.flag("is_recommended"),
			Description:     strings.TrimSpace(r.Value("description")),
		})
	}
	return out
}

// InsuranceRecords converts the rows to stored records, skipping rows without a name. A stored
// id is kept so renaming a tier does not change the option id forms refer to.
func (l *List) InsuranceRecords() []leasing.InsuranceRecord {
	out := make([]leasing.InsuranceRecord, 0, len(l.Rows))
	for _, r := range l.Rows {
		name := strings.TrimSpace(r.Value("name"))
		if name == "" {
			continue
		}
		out = append(out, leasing.InsuranceRecord{
			ID:              strings.TrimSpace(r.Value("id")),
			Name:            name,
			PriceAdjustment: r.number("price_adjustment"),
			Selected:        r.flag("is_selected"),
			Recommended:     r.flag("is_recommended"),
			Description:     strings.TrimSpace(r.Value("description")),
		})
	}
	return out
}

// MileageRecords converts the rows to stored records, skipping rows without miles.
func (l *List) MileageRecords() []leasing.MileageRecord {
	out := make([]leasing.MileageRecord, 0, len(l.Rows))
	for _, r := range l.Rows {
		if strings.TrimSpace(r.Value("miles")) == "" || r.whole("miles") <= 0 {
			continue
		}
		out = append(out, leasing.MileageRecord{
			Miles:           r.whole("miles"),
			PriceAdjustment: r.number("price_adjustment"),
			ExtraKmRate:     strings.TrimSpace(r.Value("extra_km_rate")),
			Selected:        r.flag("is_selected"),
			Recommended:     r.flag("is_recommended"),
			Description:     strings.TrimSpace(r.Value("description")),
		})
	}
	return out
}

// FromSubscriptionRecords builds an editable list from stored subscription records.
func FromSubscriptionRecords(records []leasing.SubscriptionRecord) *List {
	l := New(leasing.CategorySubscription)
	for _, rec := range records {
		l.Rows = append(l.Rows, Row{Values: map[string]string{
			"months":           strconv.Itoa(rec.Months),
			"base_price":       formatFloat(rec.BasePrice),
			"price_adjustment": formatFloat(rec.PriceAdjustment),
			"is_selected":      yesNo(rec.Selected),
			"is_recommended":   yesNo(rec.Recommended),
			"description":      rec.Description,
		}})
	}
	l.Reindex()
	return l
}

// FromInsuranceRecords builds an editable list from stored insurance records.
func FromInsuranceRecords(records []leasing.InsuranceRecord) *List {
	l := New(leasing.CategoryInsurance)
	for _, rec := range records {
		l.Rows = append(l.Rows, Row{Values: map[string]string{
			"id":               rec.ID,
			"name":             rec.Name,
			"price_adjustment": formatFloat(rec.PriceAdjustment),
			"is_selected":      yesNo(rec.Selected),
			"is_recommended":   yesNo(rec.Recommended),
			"description":      rec.Description,
		}})
	}
	l.Reindex()
	return l
}

// FromMileageRecords builds an editable list from stored mileage records.
func FromMileageRecords(records []leasing.MileageRecord) *List {
	l := New(leasing.CategoryMileage)
	for _, rec := range records {
		l.Rows = append(l.Rows, Row{Values: map[string]string{
			"miles":            strconv.Itoa(rec.Miles),
			"price_adjustment": formatFloat(rec.PriceAdjustment),
			"extra_km_rate":    rec.ExtraKmRate,
			"is_selected":      yesNo(rec.Selected),
			"is_recommended":   yesNo(rec.Recommended),
			"description":      rec.Description,
		}})
	}
	l.Reindex()
	return l
}
