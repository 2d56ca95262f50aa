// Package admin serves the operator screens: the vehicle list and the per-vehicle option editor.
package admin

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/alc/leasing-form/internal/leasing"
	custommw "github.com/alc/leasing-form/internal/middleware"
	"github.com/alc/leasing-form/internal/observability"
	"github.com/alc/leasing-form/internal/vehicles"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Dependencies collects external services required by the admin handlers.
type Dependencies struct {
	Vehicles      vehicles.Repository
	Authenticator custommw.Authenticator
	BasePath      string
	Currency      string
	SecureCookies bool
}

// Handlers exposes the admin pages and editor fragments.
type Handlers struct {
	vehicles      vehicles.Repository
	authenticator custommw.Authenticator
	basePath      string
	loginPath     string
	currency      string
	secure        bool
	tmpl          *template.Template
}

// NewHandlers wires the admin handler set.
func NewHandlers(deps Dependencies) (*Handlers, error) {
	if deps.Vehicles == nil {
		return nil, errors.New("admin: vehicle repository is required")
	}
	if deps.Authenticator == nil {
		return nil, errors.New("admin: authenticator is required")
	}
	tmpl, err := template.New("admin").ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse admin templates: %w", err)
	}
	base := NormalizeBasePath(deps.BasePath)
	currency := deps.Currency
	if currency == "" {
		currency = leasing.DefaultCurrency
	}
	return &Handlers{
		vehicles:      deps.Vehicles,
		authenticator: deps.Authenticator,
		basePath:      base,
		loginPath:     base + "/login",
		currency:      currency,
		secure:        deps.SecureCookies,
		tmpl:          tmpl,
	}, nil
}

// BasePath returns the normalised mount point.
func (h *Handlers) BasePath() string { return h.basePath }

// Routes mounts the admin under its base path.
func (h *Handlers) Routes(router chi.Router) {
	router.Route(h.basePath, func(r chi.Router) {
		r.Use(custommw.NoStore())
		r.Get("/login", h.LoginForm)
		r.Post("/login", h.LoginSubmit)
		r.Post("/logout", h.Logout)

		r.Group(func(r chi.Router) {
			r.Use(custommw.Auth(h.authenticator, h.loginPath))
			r.Get("/", func(w http.ResponseWriter, r *http.Request) {
				http.Redirect(w, r, h.basePath+"/vehicles", http.StatusFound)
			})
			r.Get("/vehicles", h.VehicleList)
			r.Get("/vehicles/{vehicleID}/edit", h.EditVehicle)
			r.Post("/vehicles/{vehicleID}", h.SaveVehicle)
			r.Route("/vehicles/{vehicleID}/options/{category}/rows", func(r chi.Router) {
				r.Use(custommw.RequireHTMX())
				r.Post("/", h.AddRow)
				r.Post("/{index}/remove", h.RemoveRow)
				r.Post("/{index}/move", h.MoveRow)
			})
		})
	})
}

// NormalizeBasePath cleans a configured mount point; empty means "/admin".
func NormalizeBasePath(path string) string {
	p := strings.TrimSpace(path)
	if p == "" {
		return "/admin"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	p = strings.TrimRight(p, "/")
	if p == "" {
		return "/admin"
	}
	return p
}

// LoginForm renders the token login screen.
func (h *Handlers) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.renderLogin(w, r, r.URL.Query().Get("next"), "", http.StatusOK)
}

// LoginSubmit verifies the posted token and stores it in the admin cookie.
func (h *Handlers) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	logger := observability.FromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		h.renderLogin(w, r, "", "The form could not be read. Please try again.", http.StatusBadRequest)
		return
	}
	next := r.PostFormValue("next")
	token := strings.TrimSpace(r.PostFormValue("token"))
	if token == "" {
		h.renderLogin(w, r, next, "Enter the admin token.", http.StatusBadRequest)
		return
	}
	user, err := h.authenticator.Authenticate(r, token)
	if err != nil || user == nil {
		logger.Warn("admin login failed", zap.Error(err))
		h.renderLogin(w, r, next, "The token was not accepted.", http.StatusUnauthorized)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     custommw.AdminTokenCookie,
		Value:    token,
		Path:     h.basePath,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	logger.Info("admin login", zap.String("uid", user.UID))
	custommw.Redirect(w, r, h.redirectTarget(next))
}

// Logout clears the admin cookie.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     custommw.AdminTokenCookie,
		Value:    "",
		Path:     h.basePath,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
	custommw.Redirect(w, r, h.loginPath)
}

// VehicleList renders every vehicle with its base price.
func (h *Handlers) VehicleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	data := VehicleListData{Shell: h.shell(r, "Vehicles")}

	list, err := h.vehicles.List(ctx)
	if err != nil {
		observability.FromContext(ctx).Error("admin: list vehicles failed", zap.Error(err))
		data.Error = "Vehicles could not be loaded. Please try again later."
	}
	for _, v := range list {
		data.Rows = append(data.Rows, vehicleRow(h.basePath, h.currency, v))
	}
	h.render(w, r, data.Shell, "vehicle_list", data, http.StatusOK)
}

func (h *Handlers) shell(r *http.Request, title string) Shell {
	_, signedIn := custommw.UserFromContext(r.Context())
	return newShell(title, h.basePath, custommw.CSRFTokenFromContext(r.Context()), signedIn)
}

func (h *Handlers) renderLogin(w http.ResponseWriter, r *http.Request, next, msg string, status int) {
	data := LoginPageData{
		Shell:  h.shell(r, "Sign in"),
		Action: h.loginPath,
		Next:   next,
		Error:  msg,
	}
	h.render(w, r, data.Shell, "login", data, status)
}

func (h *Handlers) render(w http.ResponseWriter, r *http.Request, shell Shell, name string, data any, status int) {
	page := layout(h.tmpl, shell, component(h.tmpl, name, data))
	templ.Handler(page, templ.WithStatus(status)).ServeHTTP(w, r)
}

func (h *Handlers) renderFragment(w http.ResponseWriter, r *http.Request, name string, data any) {
	templ.Handler(component(h.tmpl, name, data)).ServeHTTP(w, r)
}

// redirectTarget keeps post-login redirects inside the admin.
func (h *Handlers) redirectTarget(next string) string {
	fallback := h.basePath + "/vehicles"
	next = strings.TrimSpace(next)
	if next == "" {
		return fallback
	}
	u, err := url.Parse(next)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, h.basePath+"/") {
		return fallback
	}
	if u.Path == h.loginPath {
		return fallback
	}
	return u.RequestURI()
}

func vehicleIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "vehicleID"), 10, 64)
	return id, err == nil && id > 0
}
