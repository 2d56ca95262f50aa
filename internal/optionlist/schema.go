// Package optionlist models the admin editor for a vehicle's option rows: an ordered list of
// rows, each carrying an explicit index that is rewritten after every add, remove or move.
package optionlist

import "github.com/alc/leasing-form/internal/leasing"

// FieldKind controls how a field is rendered in the editor.
type FieldKind string

const (
	KindText   FieldKind = "text"
	KindNumber FieldKind = "number"
	KindToggle FieldKind = "toggle"
	KindHidden FieldKind = "hidden"
)

// Field describes one input of an option row.
type Field struct {
	Name     string
	Label    string
	Kind     FieldKind
	Required bool
	Default  string
	Step     string
}

// Schema lists the fields of a category's rows. KeyField is the field a row cannot be saved without.
type Schema struct {
	Category leasing.Category
	Title    string
	Help     string
	AddLabel string
	KeyField string
	Fields   []Field
}

var (
	priceAdjustmentField = Field{Name: "price_adjustment", Label: "Price Adjustment", Kind: KindNumber, Default: "0", Step: "0.01"}
	selectedField        = Field{Name: "is_selected", Label: "Selected by default", Kind: KindToggle, Default: "no"}
	recommendedField     = Field{Name: "is_recommended", Label: "Recommended", Kind: KindToggle, Default: "no"}
	descriptionField     = Field{Name: "description", Label: "Description", Kind: KindText}
)

var schemas = map[leasing.Category]Schema{
	leasing.CategorySubscription: {
		Category: leasing.CategorySubscription,
		Title:    "Subscription Length Options",
		Help:     "Define the subscription length options available for this vehicle.",
		AddLabel: "Add Subscription Option",
		KeyField: "months",
		Fields: []Field{
			{Name: "months", Label: "Months", Kind: KindNumber, Required: true, Step: "1"},
			{Name: "base_price", Label: "Base Price", Kind: KindNumber, Required: true, Step: "0.01"},
			priceAdjustmentField,
			selectedField,
			recommendedField,
			descriptionField,
		},
	},
	leasing.CategoryInsurance: {
		Category: leasing.CategoryInsurance,
		Title:    "Insurance Options",
		Help:     "Define the insurance options available for this vehicle.",
		AddLabel: "Add Insurance Option",
		KeyField: "name",
		Fields: []Field{
			{Name: "id", Label: "ID", Kind: KindHidden},
			{Name: "name", Label: "Name", Kind: KindText, Required: true},
			priceAdjustmentField,
			selectedField,
			recommendedField,
			descriptionField,
		},
	},
	leasing.CategoryMileage: {
		Category: leasing.CategoryMileage,
		Title:    "Monthly Mileage Options",
		Help:     "Define the monthly mileage options available for this vehicle.",
		AddLabel: "Add Mileage Option",
		KeyField: "miles",
		Fields: []Field{
			{Name: "miles", Label: "Kilometers", Kind: KindNumber, Required: true, Step: "1"},
			priceAdjustmentField,
			{Name: "extra_km_rate", Label: "Extra km rate", Kind: KindNumber, Step: "0.01"},
			selectedField,
			recommendedField,
			descriptionField,
		},
	},
}

// SchemaFor returns the row schema of a category.
func SchemaFor(cat leasing.Category) (Schema, bool) {
	s, ok := schemas[cat]
	return s, ok
}
