// Package vehicles stores the vehicle listings that feed the configurator: identity, content,
// contact routing and the per-vehicle option rows kept as key/value metadata.
package vehicles

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/alc/leasing-form/internal/leasing"
)

// ErrNotFound is returned when a vehicle does not exist.
var ErrNotFound = errors.New("vehicle not found")

// Vehicle is one leasable vehicle.
type Vehicle struct {
	ID             int64                        `yaml:"id"`
	Slug           string                       `yaml:"slug"`
	Title          string                       `yaml:"title"`
	Description    string                       `yaml:"description"`
	Categories     []string                     `yaml:"categories"`
	ImageURL       string                       `yaml:"image_url"`
	BasePrice      float64                      `yaml:"base_price"`
	WatchingCount  int                          `yaml:"watching_count"`
	WhatsAppNumber string                       `yaml:"whatsapp_number"`
	Subscription   []leasing.SubscriptionRecord `yaml:"subscription_options"`
	Insurance      []leasing.InsuranceRecord    `yaml:"insurance_options"`
	Mileage        []leasing.MileageRecord      `yaml:"mileage_options"`
	UpdatedAt      time.Time                    `yaml:"updated_at"`
}

// Listing returns the snapshot handed to a configurator form.
func (v Vehicle) Listing() leasing.Listing {
	return leasing.Listing{
		VehicleID:            v.ID,
		VehicleTitle:         v.Title,
		ContactRoutingTarget: v.WhatsAppNumber,
		WatchingCount:        v.WatchingCount,
		SubscriptionOptions:  v.Subscription,
		InsuranceOptions:     v.Insurance,
		MileageOptions:       v.Mileage,
	}
}

// Repository persists vehicles.
type Repository interface {
	List(ctx context.Context) ([]Vehicle, error)
	Get(ctx context.Context, id int64) (Vehicle, error)
	GetBySlug(ctx context.Context, slug string) (Vehicle, error)
	Save(ctx context.Context, v Vehicle) (Vehicle, error)
}

// Slugify derives a URL slug from a title.
func Slugify(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
