package storefront

import (
	"html/template"

	"github.com/alc/leasing-form/internal/leasing"
	"github.com/alc/leasing-form/internal/vehicles"
)

type pageData struct {
	Title    string
	Page     string
	Vehicles []vehicleSummary
	Vehicle  vehicleDetail
	Form     template.HTML
}

type vehicleSummary struct {
	ID         int64
	Title      string
	URL        string
	ImageURL   string
	Categories []string
	FromPrice  string
}

type vehicleDetail struct {
	ID          int64
	Title       string
	ImageURL    string
	Categories  []string
	Description template.HTML
}

func summarize(v vehicles.Vehicle, currency string) vehicleSummary {
	from := v.Listing().Catalog(currency).LowestSubscriptionPrice()
	return vehicleSummary{
		ID:         v.ID,
		Title:      v.Title,
		URL:        "/vehicles/" + v.Slug,
		ImageURL:   v.ImageURL,
		Categories: v.Categories,
		FromPrice:  leasing.FormatAmount(from, currency),
	}
}

func detail(v vehicles.Vehicle) vehicleDetail {
	return vehicleDetail{
		ID:          v.ID,
		Title:       v.Title,
		ImageURL:    v.ImageURL,
		Categories:  v.Categories,
		Description: vehicles.RenderDescription(v.Description),
	}
}
