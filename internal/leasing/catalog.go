package leasing

// Option is one selectable choice within a category.
type Option struct {
	ID          string
	Label       string
	Description string
	// Price is the absolute monthly price for subscriptions and a signed monthly delta otherwise.
	Price       int64
	Default     bool
	Recommended bool
}

// Catalog holds the ordered option lists of one form. It is immutable once built.
type Catalog struct {
	options map[Category][]Option
}

// NewCatalog builds a catalog from per-category option lists. Empty lists fall back to
// the built-in defaults. Repeated ids keep only their first option, so pricing and the
// rendered cards agree. Each category ends up with exactly one Default option: the last
// flagged one when several are flagged, the first one when none is.
func NewCatalog(lists map[Category][]Option) Catalog {
	defaults := DefaultOptions()
	c := Catalog{options: make(map[Category][]Option, len(Categories))}
	for _, cat := range Categories {
		opts := lists[cat]
		if len(opts) == 0 {
			opts = defaults[cat]
		}
		c.options[cat] = resolveDefault(opts)
	}
	return c
}

// resolveDefault drops repeated ids and flags a single default. A flag on a dropped
// duplicate moves to the option that kept the id.
func resolveDefault(in []Option) []Option {
	out := make([]Option, 0, len(in))
	seen := make(map[string]int, len(in))
	winner := 0
	for _, opt := range in {
		pos, dup := seen[opt.ID]
		if !dup {
			pos = len(out)
			seen[opt.ID] = pos
			out = append(out, opt)
		}
		if opt.Default {
			winner = pos
		}
	}
	for i := range out {
		out[i].Default = i == winner
	}
	return out
}

// Options returns a copy of the category's options in catalog order.
func (c Catalog) Options(cat Category) []Option {
	src := c.options[cat]
	out := make([]Option, len(src))
	copy(out, src)
	return out
}

// Lookup finds an option by id within a category.
func (c Catalog) Lookup(cat Category, id string) (Option, bool) {
	for _, opt := range c.options[cat] {
		if opt.ID == id {
			return opt, true
		}
	}
	return Option{}, false
}

// DefaultID returns the id of the category's default option.
func (c Catalog) DefaultID(cat Category) string {
	for _, opt := range c.options[cat] {
		if opt.Default {
			return opt.ID
		}
	}
	return ""
}

// LowestSubscriptionPrice returns the cheapest subscription price, used as the "from" price on listings.
func (c Catalog) LowestSubscriptionPrice() int64 {
	opts := c.options[CategorySubscription]
	if len(opts) == 0 {
		return 0
	}
	lowest := opts[0].Price
	for _, opt := range opts[1:] {
		if opt.Price < lowest {
			lowest = opt.Price
		}
	}
	return lowest
}
