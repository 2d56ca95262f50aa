package admin

import (
	"context"
	"encoding/json"
	"html/template"
	"io"
	"math"
	"strconv"

	"github.com/a-h/templ"

	"github.com/alc/leasing-form/internal/leasing"
	"github.com/alc/leasing-form/internal/optionlist"
	"github.com/alc/leasing-form/internal/vehicles"
)

// csrfField is the hidden form field read by the CSRF middleware on non-htmx posts.
const csrfField = "csrf_token"

// Shell is the data shared by every admin page.
type Shell struct {
	Title     string
	BasePath  string
	CSRFToken string
	CSRFField string
	SignedIn  bool
	HXHeaders string
}

func newShell(title, basePath, token string, signedIn bool) Shell {
	s := Shell{Title: title, BasePath: basePath, CSRFToken: token, CSRFField: csrfField, SignedIn: signedIn}
	if token != "" {
		b, _ := json.Marshal(map[string]string{"X-CSRF-Token": token})
		s.HXHeaders = string(b)
	}
	return s
}

// LoginPageData drives the login screen.
type LoginPageData struct {
	Shell
	Action string
	Next   string
	Error  string
}

// VehicleRow is one line of the vehicle list.
type VehicleRow struct {
	ID       int64
	Title    string
	Slug     string
	Price    string
	Watching int
	EditURL  string
}

// VehicleListData drives the vehicle list.
type VehicleListData struct {
	Shell
	Rows  []VehicleRow
	Error string
}

// EditorData drives the per-vehicle option editor.
type EditorData struct {
	Shell
	VehicleID     int64
	VehicleTitle  string
	ActionURL     string
	PreviewURL    string
	BasePrice     string
	WatchingCount string
	WhatsApp      string
	FieldErrors   map[string]string
	Lists         []OptionListView
	Saved         bool
	Invalid       bool
}

// OptionListView is one category editor. ContainerID is stable so row operations can swap it whole.
type OptionListView struct {
	Category    string
	Title       string
	Help        string
	AddLabel    string
	ContainerID string
	AddURL      string
	Rows        []OptionRowView
}

// OptionRowView is one numbered row of a category editor.
type OptionRowView struct {
	Index     int
	Number    int
	Fields    []FieldView
	RemoveURL string
	MoveURL   string
	UpVals    string
	DownVals  string
	First     bool
	Last      bool
}

// FieldView is one input of a row, with its name and id derived from the row index.
type FieldView struct {
	Name     string
	ID       string
	Label    string
	Kind     string
	Value    string
	Step     string
	Required bool
	Checked  bool
	Invalid  bool
}

func listContainerID(cat leasing.Category) string {
	return "option-list-" + string(cat)
}

func buildOptionList(basePath string, vehicleID int64, l *optionlist.List, errs []optionlist.FieldError) OptionListView {
	schema, _ := optionlist.SchemaFor(l.Category)
	rowsURL := vehicleURL(basePath, vehicleID) + "/options/" + string(l.Category) + "/rows"
	view := OptionListView{
		Category:    string(l.Category),
		Title:       schema.Title,
		Help:        schema.Help,
		AddLabel:    schema.AddLabel,
		ContainerID: listContainerID(l.Category),
		AddURL:      rowsURL,
	}
	for _, row := range l.Rows {
		rv := OptionRowView{
			Index:     row.Index,
			Number:    row.Number(),
			RemoveURL: rowsURL + "/" + strconv.Itoa(row.Index) + "/remove",
			MoveURL:   rowsURL + "/" + strconv.Itoa(row.Index) + "/move",
			UpVals:    moveVals(row.Index - 1),
			DownVals:  moveVals(row.Index + 1),
			First:     row.Index == 0,
			Last:      row.Index == l.Len()-1,
		}
		for _, f := range schema.Fields {
			value := row.Value(f.Name)
			rv.Fields = append(rv.Fields, FieldView{
				Name:     l.FieldName(row, f.Name),
				ID:       l.FieldID(row, f.Name),
				Label:    f.Label,
				Kind:     string(f.Kind),
				Value:    value,
				Step:     f.Step,
				Required: f.Required,
				Checked:  f.Kind == optionlist.KindToggle && value == "yes",
				Invalid:  optionlist.HasError(errs, row.Index, f.Name),
			})
		}
		view.Rows = append(view.Rows, rv)
	}
	return view
}

func moveVals(to int) string {
	b, _ := json.Marshal(map[string]string{"to": strconv.Itoa(to)})
	return string(b)
}

func vehicleURL(basePath string, id int64) string {
	return basePath + "/vehicles/" + strconv.FormatInt(id, 10)
}

func vehicleRow(basePath, currency string, v vehicles.Vehicle) VehicleRow {
	price := "-"
	if v.BasePrice > 0 {
		price = leasing.FormatAmount(int64(math.Round(v.BasePrice)), currency) + "/month"
	}
	return VehicleRow{
		ID:       v.ID,
		Title:    v.Title,
		Slug:     v.Slug,
		Price:    price,
		Watching: v.Listing().Watching(),
		EditURL:  vehicleURL(basePath, v.ID) + "/edit",
	}
}

func formatNumber(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// component adapts a named html/template to a templ.Component.
func component(tmpl *template.Template, name string, data any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return tmpl.ExecuteTemplate(w, name, data)
	})
}

// layout wraps body in the admin shell.
func layout(tmpl *template.Template, shell Shell, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := tmpl.ExecuteTemplate(w, "layout_open", shell); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		return tmpl.ExecuteTemplate(w, "layout_close", shell)
	})
}
