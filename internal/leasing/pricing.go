package leasing

import "fmt"

// DefaultCurrency is the display prefix used when none is configured.
const DefaultCurrency = "AED"

// Quote is the derived price of a selection. It is recomputed on every change, never stored.
type Quote struct {
	Currency    string
	Base        int64
	Total       int64
	Adjustments []Adjustment
}

// Adjustment records the effect of one Rule on a quote.
type Adjustment struct {
	Rule   string
	Amount int64
}

// Formatted renders the total with the currency label, e.g. "AED 2,000".
func (q Quote) Formatted() string {
	return FormatAmount(q.Total, q.Currency)
}

// Rule is a post-sum adjustment evaluated after the base total is computed. Rules are kept
// separate from option prices so each one can be audited and removed on its own.
type Rule interface {
	Name() string
	// Apply returns the amount to add to the total (negative for discounts) and whether the rule matched.
	Apply(selected map[Category]string) (int64, bool)
}

// ComboDiscount adjusts the total when one exact triple of options is selected together.
type ComboDiscount struct {
	Subscription string
	Insurance    string
	Mileage      string
	Amount       int64
}

// NineMonthFullCoverDiscount is the stock combination discount:
// 9 months + full cover + 5,000 km takes 50 off the monthly total.
func NineMonthFullCoverDiscount() ComboDiscount {
	return ComboDiscount{Subscription: "9months", Insurance: "full", Mileage: "5000", Amount: 50}
}

// Name identifies the rule in quotes and logs.
func (d ComboDiscount) Name() string {
	return fmt.Sprintf("combo:%s+%s+%s", d.Subscription, d.Insurance, d.Mileage)
}

// Apply matches only when all three categories hold the configured options.
func (d ComboDiscount) Apply(selected map[Category]string) (int64, bool) {
	if selected[CategorySubscription] != d.Subscription ||
		selected[CategoryInsurance] != d.Insurance ||
		selected[CategoryMileage] != d.Mileage {
		return 0, false
	}
	return -d.Amount, true
}

// Calculator derives quotes from a catalog and a selection.
type Calculator struct {
	currency     string
	fallbackBase int64
	rules        []Rule
}

// CalculatorOption customises a Calculator.
type CalculatorOption func(*Calculator)

// WithCurrency sets the display currency label.
func WithCurrency(currency string) CalculatorOption {
	return func(c *Calculator) {
		if currency != "" {
			c.currency = currency
		}
	}
}

// WithFallbackBase overrides the base price used when no subscription is selected.
func WithFallbackBase(amount int64) CalculatorOption {
	return func(c *Calculator) {
		if amount > 0 {
			c.fallbackBase = amount
		}
	}
}

// WithRules appends post-sum rules, evaluated in the given order.
func WithRules(rules ...Rule) CalculatorOption {
	return func(c *Calculator) {
		for _, r := range rules {
			if r != nil {
				c.rules = append(c.rules, r)
			}
		}
	}
}

// NewCalculator constructs a Calculator with the default currency and fallback base.
func NewCalculator(opts ...CalculatorOption) *Calculator {
	c := &Calculator{currency: DefaultCurrency, fallbackBase: FallbackBasePrice}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Currency returns the configured display currency.
func (c *Calculator) Currency() string { return c.currency }

// Quote sums the subscription price with the insurance and mileage deltas and then applies rules.
func (c *Calculator) Quote(catalog Catalog, selected map[Category]string) Quote {
	base := c.fallbackBase
	if opt, ok := catalog.Lookup(CategorySubscription, selected[CategorySubscription]); ok {
		base = opt.Price
	}
	for _, cat := range []Category{CategoryInsurance, CategoryMileage} {
		if opt, ok := catalog.Lookup(cat, selected[cat]); ok {
			base += opt.Price
		}
	}

	q := Quote{Currency: c.currency, Base: base, Total: base}
	for _, rule := range c.rules {
		amount, ok := rule.Apply(selected)
		if !ok || amount == 0 {
			continue
		}
		q.Total += amount
		q.Adjustments = append(q.Adjustments, Adjustment{Rule: rule.Name(), Amount: amount})
	}
	return q
}
