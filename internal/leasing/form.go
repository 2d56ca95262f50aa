package leasing

import "strings"

// Form is the state of one configurator instance: the listing snapshot, its catalog and the
// current selection. Forms share nothing, so several may be open side by side.
type Form struct {
	ID       string
	Listing  Listing
	catalog  Catalog
	calc     *Calculator
	selected map[Category]string
}

// NewForm initialises a form with every category set to its catalog default.
func NewForm(id string, listing Listing, calc *Calculator) *Form {
	if calc == nil {
		calc = NewCalculator()
	}
	catalog := listing.Catalog(calc.Currency())
	f := &Form{
		ID:       id,
		Listing:  listing,
		catalog:  catalog,
		calc:     calc,
		selected: make(map[Category]string, len(Categories)),
	}
	for _, cat := range Categories {
		f.selected[cat] = catalog.DefaultID(cat)
	}
	return f
}

// Restore re-applies previously stored selections. Entries that no longer resolve against the
// catalog are ignored, leaving that category on its default.
func (f *Form) Restore(selected map[Category]string) {
	for cat, id := range selected {
		f.Select(cat, id)
	}
}

// Select sets the category's selection. It is a no-op returning false when the category or
// option id is unknown; other categories are never touched.
func (f *Form) Select(cat Category, optionID string) bool {
	if _, ok := ParseCategory(string(cat)); !ok {
		return false
	}
	if _, ok := f.catalog.Lookup(cat, optionID); !ok {
		return false
	}
	f.selected[cat] = optionID
	return true
}

// SelectedID returns the id selected for the category.
func (f *Form) SelectedID(cat Category) string {
	return f.selected[cat]
}

// Selected resolves the selected option of a category.
func (f *Form) Selected(cat Category) (Option, bool) {
	return f.catalog.Lookup(cat, f.selected[cat])
}

// Selections returns a copy of the category to option id mapping.
func (f *Form) Selections() map[Category]string {
	out := make(map[Category]string, len(f.selected))
	for k, v := range f.selected {
		out[k] = v
	}
	return out
}

// Options returns the category's options in catalog order.
func (f *Form) Options(cat Category) []Option {
	return f.catalog.Options(cat)
}

// Catalog exposes the form's catalog.
func (f *Form) Catalog() Catalog { return f.catalog }

// Quote computes the current price.
func (f *Form) Quote() Quote {
	return f.calc.Quote(f.catalog, f.selected)
}

// Submission resolves the current selection into the labels used by the handoff message. An
// empty contact is left for the Messenger to resolve against its fallback.
func (f *Form) Submission(token string) Submission {
	s := Submission{
		Token:        token,
		VehicleID:    f.Listing.VehicleID,
		VehicleTitle: f.Listing.VehicleTitle,
		Contact:      strings.TrimSpace(f.Listing.ContactRoutingTarget),
		Quote:        f.Quote(),
		Labels:       make(map[Category]string, len(Categories)),
	}
	for _, cat := range Categories {
		if opt, ok := f.Selected(cat); ok {
			s.Labels[cat] = opt.Label
		}
	}
	return s
}
