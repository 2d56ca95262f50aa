package admin

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/alc/leasing-form/internal/leasing"
	custommw "github.com/alc/leasing-form/internal/middleware"
	"github.com/alc/leasing-form/internal/observability"
	"github.com/alc/leasing-form/internal/optionlist"
	"github.com/alc/leasing-form/internal/vehicles"
)

// EditVehicle renders the option editor, prefilled with the admin default rows for categories
// the vehicle has not stored yet.
func (h *Handlers) EditVehicle(w http.ResponseWriter, r *http.Request) {
	v, ok := h.loadVehicle(w, r)
	if !ok {
		return
	}
	lists := optionlist.EditorLists(v.Listing())
	data := h.editorData(r, v, lists, nil)
	data.BasePrice = formatNumber(v.BasePrice)
	if v.WatchingCount > 0 {
		data.WatchingCount = strconv.Itoa(v.WatchingCount)
	}
	data.WhatsApp = v.WhatsAppNumber
	data.Saved = r.URL.Query().Get("saved") == "1"
	h.render(w, r, data.Shell, "editor", data, http.StatusOK)
}

// SaveVehicle validates and stores the posted option lists and vehicle meta. Any invalid field
// rejects the whole save and re-renders the editor with the offending inputs marked.
func (h *Handlers) SaveVehicle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.FromContext(ctx)

	v, ok := h.loadVehicle(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		custommw.WriteError(w, r, http.StatusBadRequest, "invalid form submission")
		return
	}

	lists := make(map[leasing.Category]*optionlist.List, len(leasing.Categories))
	rowErrs := make(map[leasing.Category][]optionlist.FieldError)
	invalidRows := 0
	for _, cat := range leasing.Categories {
		l := optionlist.Parse(cat, r.PostForm)
		lists[cat] = l
		if errs := l.Validate(); len(errs) > 0 {
			rowErrs[cat] = errs
			invalidRows += len(errs)
		}
	}

	basePrice := strings.TrimSpace(r.PostFormValue("base_price"))
	watching := strings.TrimSpace(r.PostFormValue("watching_count"))
	whatsapp := strings.TrimSpace(r.PostFormValue("whatsapp_number"))
	fieldErrs := map[string]string{}

	var price float64
	if basePrice != "" {
		p, err := strconv.ParseFloat(basePrice, 64)
		if err != nil || p < 0 {
			fieldErrs["base_price"] = "Base price must be a positive number"
		}
		price = p
	}
	var watchingCount int
	if watching != "" {
		n, err := strconv.Atoi(watching)
		if err != nil || n < 0 {
			fieldErrs["watching_count"] = "Watching count must be a whole number"
		}
		watchingCount = n
	}
	if !validPhone(whatsapp) {
		fieldErrs["whatsapp_number"] = "WhatsApp number may only contain digits"
	}

	if invalidRows > 0 || len(fieldErrs) > 0 {
		observability.OptionListSaves.WithLabelValues("invalid").Inc()
		logger.Info("admin: option list save rejected",
			zap.Int64("vehicle_id", v.ID),
			zap.Int("row_errors", invalidRows),
			zap.Int("field_errors", len(fieldErrs)),
		)
		data := h.editorData(r, v, lists, rowErrs)
		data.BasePrice = basePrice
		data.WatchingCount = watching
		data.WhatsApp = whatsapp
		data.FieldErrors = fieldErrs
		data.Invalid = true
		h.render(w, r, data.Shell, "editor", data, http.StatusUnprocessableEntity)
		return
	}

	v.Subscription = lists[leasing.CategorySubscription].SubscriptionRecords()
	v.Insurance = lists[leasing.CategoryInsurance].InsuranceRecords()
	v.Mileage = lists[leasing.CategoryMileage].MileageRecords()
	v.BasePrice = price
	v.WatchingCount = watchingCount
	v.WhatsAppNumber = whatsapp

	if _, err := h.vehicles.Save(ctx, v); err != nil {
		observability.OptionListSaves.WithLabelValues("failed").Inc()
		logger.Error("admin: save vehicle failed", zap.Error(err), zap.Int64("vehicle_id", v.ID))
		custommw.WriteError(w, r, http.StatusInternalServerError, "the vehicle could not be saved")
		return
	}
	observability.OptionListSaves.WithLabelValues("saved").Inc()
	logger.Info("admin: option lists saved",
		zap.Int64("vehicle_id", v.ID),
		zap.Int("subscription_rows", len(v.Subscription)),
		zap.Int("insurance_rows", len(v.Insurance)),
		zap.Int("mileage_rows", len(v.Mileage)),
	)
	custommw.Redirect(w, r, vehicleURL(h.basePath, v.ID)+"/edit?saved=1")
}

// AddRow appends a blank row to the posted list of one category.
func (h *Handlers) AddRow(w http.ResponseWriter, r *http.Request) {
	h.editList(w, r, func(l *optionlist.List) error {
		l.Append()
		return nil
	})
}

// RemoveRow deletes one row and renumbers the rest.
func (h *Handlers) RemoveRow(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		custommw.WriteError(w, r, http.StatusBadRequest, "invalid row index")
		return
	}
	h.editList(w, r, func(l *optionlist.List) error {
		return l.Remove(index)
	})
}

// MoveRow moves one row to the posted position and renumbers every row.
func (h *Handlers) MoveRow(w http.ResponseWriter, r *http.Request) {
	from, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		custommw.WriteError(w, r, http.StatusBadRequest, "invalid row index")
		return
	}
	h.editList(w, r, func(l *optionlist.List) error {
		to, err := strconv.Atoi(r.PostFormValue("to"))
		if err != nil {
			return optionlist.ErrIndexOutOfRange
		}
		return l.Move(from, to)
	})
}

// editList rebuilds the category list from the posted rows, applies op and re-renders the list
// container. Nothing is persisted until the editor is saved.
func (h *Handlers) editList(w http.ResponseWriter, r *http.Request, op func(*optionlist.List) error) {
	id, ok := vehicleIDParam(r)
	if !ok {
		custommw.WriteError(w, r, http.StatusNotFound, "vehicle not found")
		return
	}
	cat, ok := leasing.ParseCategory(chi.URLParam(r, "category"))
	if !ok {
		custommw.WriteError(w, r, http.StatusNotFound, "unknown category")
		return
	}
	if err := r.ParseForm(); err != nil {
		custommw.WriteError(w, r, http.StatusBadRequest, "invalid form submission")
		return
	}

	l := optionlist.Parse(cat, r.PostForm)
	if err := op(l); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, optionlist.ErrIndexOutOfRange) {
			status = http.StatusBadRequest
		}
		custommw.WriteError(w, r, status, err.Error())
		return
	}
	h.renderFragment(w, r, "option_list", buildOptionList(h.basePath, id, l, nil))
}

func (h *Handlers) loadVehicle(w http.ResponseWriter, r *http.Request) (vehicles.Vehicle, bool) {
	id, ok := vehicleIDParam(r)
	if !ok {
		custommw.WriteError(w, r, http.StatusNotFound, "vehicle not found")
		return vehicles.Vehicle{}, false
	}
	v, err := h.vehicles.Get(r.Context(), id)
	if errors.Is(err, vehicles.ErrNotFound) {
		custommw.WriteError(w, r, http.StatusNotFound, "vehicle not found")
		return vehicles.Vehicle{}, false
	}
	if err != nil {
		observability.FromContext(r.Context()).Error("admin: load vehicle failed", zap.Error(err), zap.Int64("vehicle_id", id))
		custommw.WriteError(w, r, http.StatusInternalServerError, "vehicle could not be loaded")
		return vehicles.Vehicle{}, false
	}
	return v, true
}

func (h *Handlers) editorData(r *http.Request, v vehicles.Vehicle, lists map[leasing.Category]*optionlist.List, errs map[leasing.Category][]optionlist.FieldError) EditorData {
	data := EditorData{
		Shell:        h.shell(r, "Edit "+v.Title),
		VehicleID:    v.ID,
		VehicleTitle: v.Title,
		ActionURL:    vehicleURL(h.basePath, v.ID),
		PreviewURL:   "/vehicles/" + url.PathEscape(v.Slug),
	}
	for _, cat := range leasing.Categories {
		if l, ok := lists[cat]; ok {
			data.Lists = append(data.Lists, buildOptionList(h.basePath, v.ID, l, errs[cat]))
		}
	}
	return data
}

func validPhone(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
