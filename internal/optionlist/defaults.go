package optionlist

import "github.com/alc/leasing-form/internal/leasing"

// DefaultSubscriptionRecords prefill the editor for a vehicle without stored subscription rows.
func DefaultSubscriptionRecords() []leasing.SubscriptionRecord {
	return []leasing.SubscriptionRecord{
		{Months: 3, BasePrice: 1995, PriceAdjustment: 50, Description: "Short term option"},
		{Months: 6, BasePrice: 1945, PriceAdjustment: 25, Description: "Medium term option"},
		{Months: 9, BasePrice: 1895, PriceAdjustment: 0, Selected: true, Recommended: true, Description: "Standard option"},
		{Months: 12, BasePrice: 1845, PriceAdjustment: -25, Description: "Long term option"},
	}
}

// DefaultInsuranceRecords prefill the editor for a vehicle without stored insurance rows.
func DefaultInsuranceRecords() []leasing.InsuranceRecord {
	return []leasing.InsuranceRecord{
		{Name: "Basic", PriceAdjustment: 0, Selected: true, Description: "Third party coverage"},
		{Name: "Comprehensive", PriceAdjustment: 45, Recommended: true, Description: "Full coverage with higher deductible"},
		{Name: "Premium", PriceAdjustment: 75, Description: "Full coverage with low deductible"},
	}
}

// DefaultMileageRecords prefill the editor for a vehicle without stored mileage rows.
func DefaultMileageRecords() []leasing.MileageRecord {
	return []leasing.MileageRecord{
		{Miles: 500, PriceAdjustment: -25, Description: "Low mileage plan"},
		{Miles: 1000, PriceAdjustment: 0, Selected: true, Recommended: true, Description: "Standard mileage plan"},
		{Miles: 1500, PriceAdjustment: 35, Description: "High mileage plan"},
		{Miles: 2000, PriceAdjustment: 65, Description: "Unlimited mileage plan"},
	}
}

// EditorLists returns the three editable lists for a listing, substituting the admin
// defaults for categories with no stored rows.
func EditorLists(l leasing.Listing) map[leasing.Category]*List {
	subs := l.SubscriptionOptions
	if len(subs) == 0 {
		subs = DefaultSubscriptionRecords()
	}
	ins := l.InsuranceOptions
	if len(ins) == 0 {
		ins = DefaultInsuranceRecords()
	}
	miles := l.MileageOptions
	if len(miles) == 0 {
		miles = DefaultMileageRecords()
	}
	return map[leasing.Category]*List{
		leasing.CategorySubscription: FromSubscriptionRecords(subs),
		leasing.CategoryInsurance:    FromInsuranceRecords(ins),
		leasing.CategoryMileage:      FromMileageRecords(miles),
	}
}
