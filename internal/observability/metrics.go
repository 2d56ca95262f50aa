// Package observability wires logging, metrics and tracing shared by the HTTP surfaces.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// FormsOpened counts configurator forms created from a vehicle page.
	FormsOpened = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "leasing_forms_opened_total",
			Help: "Total number of configurator forms opened",
		},
	)

	// Selections counts select requests by category and outcome (applied, ignored).
	Selections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leasing_selections_total",
			Help: "Total number of option selections",
		},
		[]string{"category", "outcome"},
	)

	// Handoffs counts submissions by outcome (redirected, missing_token, invalid_token).
	Handoffs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leasing_handoffs_total",
			Help: "Total number of messaging handoff attempts",
		},
		[]string{"outcome"},
	)

	// QuoteTotal observes computed monthly totals.
	QuoteTotal = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "leasing_quote_total_amount",
			Help:    "Monthly totals produced by the price calculator",
			Buckets: prometheus.LinearBuckets(500, 500, 10),
		},
	)

	// OptionListSaves counts admin option list saves by outcome (saved, invalid).
	OptionListSaves = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leasing_option_list_saves_total",
			Help: "Total number of admin option list saves",
		},
		[]string{"outcome"},
	)
)

// MetricsHandler exposes the default registry.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
