package leasing

// FallbackBasePrice anchors the total when no subscription is selected.
const FallbackBasePrice int64 = 1795

// FallbackContact is the messaging number used when a listing does not provide one.
const FallbackContact = "923105054025"

// DefaultWatchingCount is displayed when a listing does not provide a watching count.
const DefaultWatchingCount = 3

// DefaultOptions returns the built-in catalog used when a listing provides no options for a category.
func DefaultOptions() map[Category][]Option {
	return map[Category][]Option{
		CategorySubscription: {
			{ID: "3months", Label: "3 months", Description: "AED 1,895/month", Price: 1895},
			{ID: "6months", Label: "6 months", Description: "AED 1,845/month", Price: 1845},
			{ID: "9months", Label: "9 months", Description: "AED 1,795/month", Price: 1795, Default: true},
		},
		CategoryInsurance: {
			{ID: "standard", Label: "Standard cover", Description: "Included", Price: 0, Default: true},
			{ID: "full", Label: "Full cover", Description: "+ AED 105/month", Price: 105, Recommended: true},
		},
		CategoryMileage: {
			{ID: "2000", Label: "2,000 km", Description: "AED 2.50 per additional km", Price: 0},
			{ID: "3000", Label: "3,000 km", Description: "AED 2.25 per additional km", Price: 0, Default: true, Recommended: true},
			{ID: "4000", Label: "4,000 km", Description: "AED 2.00 per additional km", Price: 50},
			{ID: "5000", Label: "5,000 km", Description: "AED 1.75 per additional km", Price: 100},
		},
	}
}
