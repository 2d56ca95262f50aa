package storefront_test

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/alc/leasing-form/internal/configurator"
	"github.com/alc/leasing-form/internal/forms"
	"github.com/alc/leasing-form/internal/leasing"
	"github.com/alc/leasing-form/internal/middleware"
	"github.com/alc/leasing-form/internal/storefront"
	"github.com/alc/leasing-form/internal/testutil"
)

type harness struct {
	server *httptest.Server
	client *http.Client
	store  *forms.MemoryStore
}

func newHarness(t *testing.T, calc *leasing.Calculator) *harness {
	t.Helper()

	store := forms.NewMemoryStore(time.Hour)
	h, err := storefront.NewHandlers(storefront.Dependencies{
		Forms:      store,
		Calculator: calc,
		Messenger:  leasing.Messenger{BaseURL: "https://wa.me", FallbackContact: "971400000000"},
	})
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(middleware.HTMX())
	r.Use(middleware.Session(middleware.SessionConfig{SigningKey: []byte("test-signing-key")}))
	r.Use(middleware.CSRF(middleware.CSRFConfig{Exempt: storefront.IsSubmitPath}))
	h.Routes(r)

	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return &harness{server: ts, client: client, store: store}
}

type openedForm struct {
	doc    *goquery.Document
	formID string
	token  string
}

func (h *harness) open(t *testing.T, slug string) openedForm {
	t.Helper()
	resp, err := h.client.Get(h.server.URL + "/vehicles/" + slug)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	doc := testutil.ParseHTML(t, body)

	formID, ok := doc.Find(".alc-form-container").Attr("data-form-id")
	require.True(t, ok, "configurator should expose its form id")
	token := doc.Find(`input[name="` + configurator.NonceField + `"]`).AttrOr("value", "")
	return openedForm{doc: doc, formID: formID, token: token}
}

func (h *harness) post(t *testing.T, path string, values url.Values, headers map[string]string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, h.server.URL+path, strings.NewReader(values.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("HX-Request", "true")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := h.client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (h *harness) selectOption(t *testing.T, f openedForm, category, option string) (*http.Response, *goquery.Document) {
	t.Helper()
	resp := h.post(t, storefront.Links(f.formID).Select,
		url.Values{"category": {category}, "option": {option}},
		map[string]string{"X-CSRF-Token": f.token},
	)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, testutil.ParseHTML(t, body)
}

func TestArchiveListsVehiclesWithFromPrice(t *testing.T) {
	h := newHarness(t, nil)

	resp, err := h.client.Get(h.server.URL + "/vehicles")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	doc := testutil.ParseHTML(t, body)

	cards := doc.Find(".alc-vehicle-card")
	require.Equal(t, 3, cards.Length())
	require.Equal(t, "Nissan Patrol 2024", strings.TrimSpace(cards.Eq(0).Find(".alc-vehicle-link").Text()))
	require.Equal(t, "/vehicles/nissan-patrol-2024", cards.Eq(0).Find(".alc-vehicle-link").AttrOr("href", ""))
	require.Equal(t, "From AED 1,795/month", strings.TrimSpace(cards.Eq(0).Find(".alc-vehicle-price").Text()))
	require.Equal(t, "From AED 1,245/month", strings.TrimSpace(cards.Eq(1).Find(".alc-vehicle-price").Text()))
}

func TestVehiclePageRendersConfigurator(t *testing.T) {
	h := newHarness(t, nil)
	f := h.open(t, "nissan-patrol-2024")

	require.True(t, forms.ValidID(f.formID))
	require.NotEmpty(t, f.token)
	require.Equal(t, 1, h.store.Len())

	require.Equal(t, []string{"9months"}, testutil.Selected(f.doc, "subscription"))
	require.Equal(t, []string{"standard"}, testutil.Selected(f.doc, "insurance"))
	require.Equal(t, []string{"3000"}, testutil.Selected(f.doc, "mileage"))
	require.Equal(t, "AED 1,795", strings.TrimSpace(f.doc.Find("#"+configurator.TotalID(f.formID)).Text()))
	require.Equal(t, "7", f.doc.Find(".alc-watching-count").Text())
	require.Equal(t, 1, f.doc.Find(".alc-vehicle-description strong").Length(), "description markdown should be rendered")
}

func TestVehiclePageUnknownSlug(t *testing.T) {
	h := newHarness(t, nil)

	resp, err := h.client.Get(h.server.URL + "/vehicles/does-not-exist")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSelectUpdatesGridAndTotal(t *testing.T) {
	h := newHarness(t, nil)
	f := h.open(t, "nissan-patrol-2024")

	resp, doc := h.selectOption(t, f, "insurance", "full")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, []string{"full"}, testutil.Selected(doc, "insurance"))
	require.Equal(t, 0, doc.Find(`[data-category="subscription"]`).Length(), "only the touched grid is returned")

	total := doc.Find("#" + configurator.TotalID(f.formID))
	require.Equal(t, "true", total.AttrOr("hx-swap-oob", ""))
	require.Equal(t, "AED 1,900", strings.TrimSpace(total.Text()))

	_, doc = h.selectOption(t, f, "mileage", "5000")
	require.Equal(t, "2000", doc.Find("#"+configurator.TotalID(f.formID)).AttrOr("data-total", ""))

	state, err := h.store.Get(context.Background(), f.formID)
	require.NoError(t, err)
	require.Equal(t, "full", state.Selections["insurance"])
	require.Equal(t, "5000", state.Selections["mileage"])
}

func TestSelectWithComboDiscount(t *testing.T) {
	calc := leasing.NewCalculator(leasing.WithRules(leasing.NineMonthFullCoverDiscount()))
	h := newHarness(t, calc)
	f := h.open(t, "nissan-patrol-2024")

	h.selectOption(t, f, "insurance", "full")
	_, doc := h.selectOption(t, f, "mileage", "5000")
	require.Equal(t, "AED 1,950", strings.TrimSpace(doc.Find("#"+configurator.TotalID(f.formID)).Text()))
}

func TestSelectSameOptionTwiceIsIdempotent(t *testing.T) {
	h := newHarness(t, nil)
	f := h.open(t, "nissan-patrol-2024")
	wantTotal := f.doc.Find("#" + configurator.TotalID(f.formID)).AttrOr("data-total", "")

	for range 2 {
		resp, doc := h.selectOption(t, f, "subscription", "9months")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Len(t, testutil.Selected(doc, "subscription"), 1)
		require.Equal(t, []string{"9months"}, testutil.Selected(doc, "subscription"))
		require.Equal(t, wantTotal, doc.Find("#"+configurator.TotalID(f.formID)).AttrOr("data-total", ""))
	}

	state, err := h.store.Get(context.Background(), f.formID)
	require.NoError(t, err)
	require.Equal(t, "9months", state.Selections["subscription"])
}

func TestSelectUnknownOptionIsNoop(t *testing.T) {
	h := newHarness(t, nil)
	f := h.open(t, "nissan-patrol-2024")

	resp, doc := h.selectOption(t, f, "mileage", "999999")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, []string{"3000"}, testutil.Selected(doc, "mileage"))
	require.Equal(t, 4, doc.Find(".alc-option-card").Length())
	require.Equal(t, "AED 1,795", strings.TrimSpace(doc.Find("#"+configurator.TotalID(f.formID)).Text()))
}

func TestSelectUnknownCategoryIsRejected(t *testing.T) {
	h := newHarness(t, nil)
	f := h.open(t, "nissan-patrol-2024")

	resp, _ := h.selectOption(t, f, "colour", "red")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSelectWithoutCSRFHeaderIsForbidden(t *testing.T) {
	h := newHarness(t, nil)
	f := h.open(t, "nissan-patrol-2024")

	resp := h.post(t, storefront.Links(f.formID).Select, url.Values{"category": {"mileage"}, "option": {"4000"}}, nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestSelectExpiredFormAsksForRefresh(t *testing.T) {
	h := newHarness(t, nil)
	f := h.open(t, "nissan-patrol-2024")
	require.NoError(t, h.store.Delete(context.Background(), f.formID))

	resp, _ := h.selectOption(t, f, "mileage", "4000")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, "true", resp.Header.Get("HX-Refresh"))
}

func TestFormsDoNotInterfere(t *testing.T) {
	h := newHarness(t, nil)
	a := h.open(t, "nissan-patrol-2024")
	b := h.open(t, "nissan-patrol-2024")
	require.NotEqual(t, a.formID, b.formID)

	h.selectOption(t, a, "subscription", "3months")
	_, doc := h.selectOption(t, b, "mileage", "2000")
	require.Equal(t, "AED 1,795", strings.TrimSpace(doc.Find("#"+configurator.TotalID(b.formID)).Text()))

	state, err := h.store.Get(context.Background(), b.formID)
	require.NoError(t, err)
	require.Equal(t, "9months", state.Selections["subscription"])
}

func TestSubmitWithoutTokenDoesNotRedirect(t *testing.T) {
	h := newHarness(t, nil)
	f := h.open(t, "nissan-patrol-2024")

	resp := h.post(t, storefront.Links(f.formID).Submit, url.Values{}, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Empty(t, resp.Header.Get("HX-Redirect"))
	require.Empty(t, resp.Header.Get("Location"))
}

func TestSubmitWithForeignTokenIsForbidden(t *testing.T) {
	h := newHarness(t, nil)
	f := h.open(t, "nissan-patrol-2024")

	resp := h.post(t, storefront.Links(f.formID).Submit, url.Values{configurator.NonceField: {"not-the-session-token"}}, nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	require.Empty(t, resp.Header.Get("HX-Redirect"))
}

func TestSubmitRedirectsToMessaging(t *testing.T) {
	h := newHarness(t, nil)
	f := h.open(t, "nissan-patrol-2024")
	h.selectOption(t, f, "insurance", "full")
	h.selectOption(t, f, "mileage", "5000")

	resp := h.post(t, storefront.Links(f.formID).Submit, url.Values{configurator.NonceField: {f.token}}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	target := resp.Header.Get("HX-Redirect")
	require.True(t, strings.HasPrefix(target, "https://wa.me/971501234567?text="), target)
	require.Contains(t, target, "Nissan%20Patrol%202024")
	require.Contains(t, target, "AED%202%2C000")
	require.NotContains(t, target, "+")
}

func TestSubmitWithoutHTMXUsesSeeOther(t *testing.T) {
	h := newHarness(t, nil)
	f := h.open(t, "toyota-corolla-2022")

	req, err := http.NewRequest(http.MethodPost, h.server.URL+storefront.Links(f.formID).Submit,
		strings.NewReader(url.Values{configurator.NonceField: {f.token}}.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := h.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.True(t, strings.HasPrefix(resp.Header.Get("Location"), "https://wa.me/971400000000?text="))
}
