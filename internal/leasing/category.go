package leasing

import "strings"

// Category identifies one of the independent option groups of the configurator.
type Category string

const (
	// CategorySubscription groups subscription lengths; its options carry absolute monthly prices.
	CategorySubscription Category = "subscription"
	// CategoryInsurance groups insurance tiers; its options carry monthly deltas.
	CategoryInsurance Category = "insurance"
	// CategoryMileage groups monthly mileage allowances; its options carry monthly deltas.
	CategoryMileage Category = "mileage"
)

// Categories lists every category in display order.
var Categories = []Category{CategorySubscription, CategoryInsurance, CategoryMileage}

// ParseCategory resolves a category key such as "insurance". Unknown keys return false.
func ParseCategory(raw string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(raw)))
	switch c {
	case CategorySubscription, CategoryInsurance, CategoryMileage:
		return c, true
	default:
		return "", false
	}
}

// Heading returns the section heading shown above the category's cards.
func (c Category) Heading() string {
	switch c {
	case CategorySubscription:
		return "Subscription length"
	case CategoryInsurance:
		return "Insurance"
	case CategoryMileage:
		return "Monthly mileage allowance"
	default:
		return string(c)
	}
}

// SummaryLabel is the label used for the category in the handoff message.
func (c Category) SummaryLabel() string {
	switch c {
	case CategorySubscription:
		return "Subscription"
	case CategoryInsurance:
		return "Insurance"
	case CategoryMileage:
		return "Monthly mileage"
	default:
		return string(c)
	}
}

// Tooltip returns the help text attached to the category heading.
func (c Category) Tooltip() string {
	switch c {
	case CategorySubscription:
		return "Choose how long you want to subscribe to this vehicle."
	case CategoryInsurance:
		return "Choose the insurance coverage level for your subscription."
	case CategoryMileage:
		return "Maximum kilometers you can drive each month without additional charges."
	default:
		return ""
	}
}
