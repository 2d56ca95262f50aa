// Package configurator renders the leasing configurator: one option grid per category, the
// running total and the submit form. Cards post to the form's select endpoint through htmx and
// the server answers with the re-rendered grid plus an out-of-band total.
package configurator

import (
	"encoding/json"
	"strconv"

	"github.com/alc/leasing-form/internal/leasing"
)

// NonceField is the form field carrying the security token on submit.
const NonceField = "leasing_form_nonce"

// Card is the view model for one option card.
type Card struct {
	Category    string
	OptionID    string
	Label       string
	Description string
	Price       int64
	Selected    bool
	Recommended bool
	// Vals is the hx-vals JSON posted when the card is clicked.
	Vals string
}

// Cards projects a category's options in catalog order. Exactly the card matching selectedID is
// marked selected.
func Cards(cat leasing.Category, options []leasing.Option, selectedID string) []Card {
	cards := make([]Card, 0, len(options))
	marked := false
	for _, opt := range options {
		selected := !marked && opt.ID == selectedID
		if selected {
			marked = true
		}
		cards = append(cards, Card{
			Category:    string(cat),
			OptionID:    opt.ID,
			Label:       opt.Label,
			Description: opt.Description,
			Price:       opt.Price,
			Selected:    selected,
			Recommended: opt.Recommended,
			Vals:        selectVals(cat, opt.ID),
		})
	}
	return cards
}

func selectVals(cat leasing.Category, optionID string) string {
	b, _ := json.Marshal(map[string]string{"category": string(cat), "option": optionID})
	return string(b)
}

// Grid is one category section. Its element id is stable per form so htmx can replace it whole.
type Grid struct {
	FormID    string
	Category  string
	Heading   string
	Tooltip   string
	GridID    string
	SelectURL string
	Cards     []Card
}

// GridID returns the element id of a category grid.
func GridID(formID string, cat leasing.Category) string {
	return "alc-grid-" + formID + "-" + string(cat)
}

// TotalID returns the element id of the total price.
func TotalID(formID string) string {
	return "alc-total-" + formID
}

// BuildGrid builds the grid of cat for form.
func BuildGrid(form *leasing.Form, cat leasing.Category, selectURL string) Grid {
	return Grid{
		FormID:    form.ID,
		Category:  string(cat),
		Heading:   cat.Heading(),
		Tooltip:   cat.Tooltip(),
		GridID:    GridID(form.ID, cat),
		SelectURL: selectURL,
		Cards:     Cards(cat, form.Options(cat), form.SelectedID(cat)),
	}
}

// Total is the total price element. OOB marks it for an out-of-band swap.
type Total struct {
	ID        string
	Amount    int64
	Formatted string
	OOB       bool
}

// BuildTotal renders the quote of form.
func BuildTotal(form *leasing.Form, oob bool) Total {
	q := form.Quote()
	return Total{
		ID:        TotalID(form.ID),
		Amount:    q.Total,
		Formatted: q.Formatted(),
		OOB:       oob,
	}
}

// Links are the per-form endpoints.
type Links struct {
	Select string
	Submit string
}

// Page is the full configurator.
type Page struct {
	FormID       string
	VehicleTitle string
	Watching     int
	Grids        []Grid
	Total        Total
	SubmitURL    string
	NonceField   string
	Token        string
	// HXHeaders carries the CSRF header for every htmx request issued inside the form.
	HXHeaders string
}

// BuildPage assembles the configurator for form. token is embedded as the submit nonce.
func BuildPage(form *leasing.Form, links Links, token string) Page {
	page := Page{
		FormID:       form.ID,
		VehicleTitle: form.Listing.VehicleTitle,
		Watching:     form.Listing.Watching(),
		Total:        BuildTotal(form, false),
		SubmitURL:    links.Submit,
		NonceField:   NonceField,
		Token:        token,
	}
	for _, cat := range leasing.Categories {
		page.Grids = append(page.Grids, BuildGrid(form, cat, links.Select))
	}
	if token != "" {
		b, _ := json.Marshal(map[string]string{"X-CSRF-Token": token})
		page.HXHeaders = string(b)
	}
	return page
}

// PriceAttr formats a price for the data-price attribute.
func PriceAttr(v int64) string {
	return strconv.FormatInt(v, 10)
}
