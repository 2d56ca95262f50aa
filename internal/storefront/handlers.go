// Package storefront serves the public vehicle pages and the configurator endpoints.
package storefront

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/alc/leasing-form/internal/configurator"
	"github.com/alc/leasing-form/internal/forms"
	"github.com/alc/leasing-form/internal/leasing"
	custommw "github.com/alc/leasing-form/internal/middleware"
	"github.com/alc/leasing-form/internal/observability"
	"github.com/alc/leasing-form/internal/vehicles"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Dependencies collects the collaborators required by the storefront handlers.
type Dependencies struct {
	Vehicles   vehicles.Repository
	Forms      forms.Store
	Calculator *leasing.Calculator
	Messenger  leasing.Messenger
	Renderer   *configurator.Renderer
	Now        func() time.Time
}

// Handlers exposes the storefront pages and configurator fragments.
type Handlers struct {
	vehicles  vehicles.Repository
	forms     forms.Store
	calc      *leasing.Calculator
	messenger leasing.Messenger
	renderer  *configurator.Renderer
	pages     *template.Template
	now       func() time.Time
}

// NewHandlers wires the storefront handler set. Missing collaborators fall back to in-memory
// implementations seeded with the bundled vehicles.
func NewHandlers(deps Dependencies) (*Handlers, error) {
	repo := deps.Vehicles
	if repo == nil {
		seed, err := vehicles.DefaultSeed()
		if err != nil {
			return nil, err
		}
		repo = vehicles.NewStaticRepository(seed)
	}
	store := deps.Forms
	if store == nil {
		store = forms.NewMemoryStore(forms.DefaultTTL)
	}
	calc := deps.Calculator
	if calc == nil {
		calc = leasing.NewCalculator()
	}
	renderer := deps.Renderer
	if renderer == nil {
		r, err := configurator.NewRenderer()
		if err != nil {
			return nil, err
		}
		renderer = r
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	pages, err := template.New("storefront").Funcs(template.FuncMap{
		"join": strings.Join,
	}).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse storefront templates: %w", err)
	}

	return &Handlers{
		vehicles:  repo,
		forms:     store,
		calc:      calc,
		messenger: deps.Messenger,
		renderer:  renderer,
		pages:     pages,
		now:       now,
	}, nil
}

// Routes mounts the storefront on r.
func (h *Handlers) Routes(r chi.Router) {
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/vehicles", http.StatusFound)
	})
	r.Get("/vehicles", h.Archive)
	r.Get("/vehicles/{slug}", h.VehiclePage)
	r.Route("/forms/{formID}", func(r chi.Router) {
		r.Use(custommw.NoStore())
		r.Post("/select", h.Select)
		r.Post("/submit", h.Submit)
	})
}

// IsSubmitPath reports whether r targets the submit endpoint, which checks its nonce itself.
func IsSubmitPath(r *http.Request) bool {
	return r.Method == http.MethodPost &&
		strings.HasPrefix(r.URL.Path, "/forms/") &&
		strings.HasSuffix(r.URL.Path, "/submit")
}

// Links returns the endpoints of formID.
func Links(formID string) configurator.Links {
	return configurator.Links{
		Select: "/forms/" + formID + "/select",
		Submit: "/forms/" + formID + "/submit",
	}
}

// Archive lists every vehicle with its lowest monthly price.
func (h *Handlers) Archive(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.FromContext(ctx)

	list, err := h.vehicles.List(ctx)
	if err != nil {
		logger.Error("storefront: list vehicles failed", zap.Error(err))
		custommw.WriteError(w, r, http.StatusInternalServerError, "vehicles are unavailable")
		return
	}

	data := pageData{Title: "Vehicles for lease", Page: "archive"}
	for _, v := range list {
		data.Vehicles = append(data.Vehicles, summarize(v, h.calc.Currency()))
	}
	h.renderPage(w, r, data)
}

// VehiclePage opens a new configurator form for the vehicle and renders the single page.
func (h *Handlers) VehiclePage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.FromContext(ctx)

	v, err := h.vehicles.GetBySlug(ctx, chi.URLParam(r, "slug"))
	if errors.Is(err, vehicles.ErrNotFound) {
		custommw.WriteError(w, r, http.StatusNotFound, "vehicle not found")
		return
	}
	if err != nil {
		logger.Error("storefront: load vehicle failed", zap.Error(err))
		custommw.WriteError(w, r, http.StatusInternalServerError, "vehicle is unavailable")
		return
	}

	form := leasing.NewForm(forms.NewID(), v.Listing(), h.calc)
	if err := h.forms.Put(ctx, forms.Capture(form, h.now().UTC())); err != nil {
		logger.Error("storefront: store form failed", zap.Error(err), zap.Int64("vehicle_id", v.ID))
		custommw.WriteError(w, r, http.StatusServiceUnavailable, "configurator is unavailable")
		return
	}
	observability.FormsOpened.Inc()

	token := custommw.CSRFTokenFromContext(ctx)
	formHTML, err := h.renderer.PageHTML(configurator.BuildPage(form, Links(form.ID), token))
	if err != nil {
		logger.Error("storefront: render configurator failed", zap.Error(err))
		custommw.WriteError(w, r, http.StatusInternalServerError, "render failed")
		return
	}

	h.renderPage(w, r, pageData{
		Title:   v.Title,
		Page:    "vehicle",
		Vehicle: detail(v),
		Form:    formHTML,
	})
}

// Select applies one card click and returns the category grid plus the out-of-band total.
// An unknown option id re-renders the unchanged grid.
func (h *Handlers) Select(w http.ResponseWriter, r *http.Request) {
	ctx, span := observability.StartSpan(r.Context(), "configurator.select")
	defer span.End()
	logger := observability.FromContext(ctx)

	if err := r.ParseForm(); err != nil {
		custommw.WriteError(w, r, http.StatusBadRequest, "invalid form submission")
		return
	}
	cat, ok := leasing.ParseCategory(r.PostFormValue("category"))
	if !ok {
		observability.Selections.WithLabelValues("unknown", "rejected").Inc()
		custommw.WriteError(w, r, http.StatusBadRequest, "unknown category")
		return
	}
	optionID := strings.TrimSpace(r.PostFormValue("option"))
	span.SetAttributes(attribute.String("category", string(cat)), attribute.String("option", optionID))

	state, form, ok := h.loadForm(ctx, w, r)
	if !ok {
		return
	}

	before := form.SelectedID(cat)
	outcome := "ignored"
	if form.Select(cat, optionID) {
		outcome = "applied"
	}
	if form.SelectedID(cat) != before {
		next := forms.Capture(form, h.now().UTC())
		next.CreatedAt = state.CreatedAt
		if err := h.forms.Put(ctx, next); err != nil {
			observability.RecordError(span, err)
			logger.Error("storefront: store selection failed", zap.Error(err), zap.String("form_id", form.ID))
			custommw.WriteError(w, r, http.StatusServiceUnavailable, "selection could not be saved")
			return
		}
	}
	observability.Selections.WithLabelValues(string(cat), outcome).Inc()
	if outcome == "ignored" {
		logger.Debug("storefront: unknown option ignored",
			zap.String("form_id", form.ID),
			zap.String("category", string(cat)),
			zap.String("option", optionID),
		)
	}

	total := configurator.BuildTotal(form, true)
	observability.QuoteTotal.Observe(float64(total.Amount))

	var buf bytes.Buffer
	grid := configurator.BuildGrid(form, cat, Links(form.ID).Select)
	if err := h.renderer.SelectResponse(&buf, grid, total); err != nil {
		observability.RecordError(span, err)
		logger.Error("storefront: render selection failed", zap.Error(err))
		custommw.WriteError(w, r, http.StatusInternalServerError, "render failed")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// Submit resolves the form to a messaging handoff and redirects the browser to it. A missing
// nonce aborts without any redirect; a nonce that does not belong to the session is refused.
func (h *Handlers) Submit(w http.ResponseWriter, r *http.Request) {
	ctx, span := observability.StartSpan(r.Context(), "configurator.submit")
	defer span.End()
	logger := observability.FromContext(ctx)

	if err := r.ParseForm(); err != nil {
		custommw.WriteError(w, r, http.StatusBadRequest, "invalid form submission")
		return
	}

	_, form, ok := h.loadForm(ctx, w, r)
	if !ok {
		return
	}
	token := strings.TrimSpace(r.PostFormValue(configurator.NonceField))

	handoff, err := h.messenger.Handoff(form.Submission(token))
	if errors.Is(err, leasing.ErrMissingToken) {
		observability.Handoffs.WithLabelValues("missing_token").Inc()
		logger.Warn("storefront: submission without security token",
			zap.String("form_id", form.ID),
			zap.Int64("vehicle_id", form.Listing.VehicleID),
		)
		custommw.WriteError(w, r, http.StatusBadRequest, "security token missing")
		return
	}
	if err != nil {
		observability.RecordError(span, err)
		logger.Error("storefront: build handoff failed", zap.Error(err))
		custommw.WriteError(w, r, http.StatusInternalServerError, "handoff failed")
		return
	}
	if !custommw.ValidCSRFToken(ctx, token) {
		observability.Handoffs.WithLabelValues("invalid_token").Inc()
		logger.Warn("storefront: submission with invalid security token", zap.String("form_id", form.ID))
		custommw.WriteError(w, r, http.StatusForbidden, "invalid security token")
		return
	}

	observability.Handoffs.WithLabelValues("redirected").Inc()
	quote := form.Quote()
	logger.Info("storefront: handoff",
		zap.String("form_id", form.ID),
		zap.Int64("vehicle_id", form.Listing.VehicleID),
		zap.Int64("total", quote.Total),
		zap.String("contact", handoff.Contact),
	)
	custommw.Redirect(w, r, handoff.URL)
}

// loadForm restores the form named in the route. It writes the error response itself and
// reports false when the form cannot be used.
func (h *Handlers) loadForm(ctx context.Context, w http.ResponseWriter, r *http.Request) (forms.State, *leasing.Form, bool) {
	logger := observability.FromContext(ctx)
	formID := chi.URLParam(r, "formID")
	if !forms.ValidID(formID) {
		custommw.WriteError(w, r, http.StatusNotFound, "form not found")
		return forms.State{}, nil, false
	}

	state, err := h.forms.Get(ctx, formID)
	if errors.Is(err, forms.ErrNotFound) {
		// The page is stale; have htmx reload it so a fresh form is issued.
		w.Header().Set("HX-Refresh", "true")
		custommw.WriteError(w, r, http.StatusNotFound, "form expired")
		return forms.State{}, nil, false
	}
	if err != nil {
		logger.Error("storefront: load form failed", zap.Error(err), zap.String("form_id", formID))
		custommw.WriteError(w, r, http.StatusServiceUnavailable, "form is unavailable")
		return forms.State{}, nil, false
	}

	v, err := h.vehicles.Get(ctx, state.VehicleID)
	if err != nil {
		logger.Warn("storefront: vehicle for form unavailable", zap.Error(err), zap.Int64("vehicle_id", state.VehicleID))
		w.Header().Set("HX-Refresh", "true")
		custommw.WriteError(w, r, http.StatusNotFound, "vehicle not found")
		return forms.State{}, nil, false
	}
	return state, state.Restore(v.Listing(), h.calc), true
}

func (h *Handlers) renderPage(w http.ResponseWriter, r *http.Request, data pageData) {
	var buf bytes.Buffer
	if err := h.pages.ExecuteTemplate(&buf, "base", data); err != nil {
		observability.FromContext(r.Context()).Error("storefront: render page failed", zap.Error(err))
		custommw.WriteError(w, r, http.StatusInternalServerError, "render failed")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
