package server_test

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"github.com/alc/leasing-form/internal/configurator"
	"github.com/alc/leasing-form/internal/leasing"
	"github.com/alc/leasing-form/internal/storefront"
	"github.com/alc/leasing-form/internal/testutil"
)

func get(t *testing.T, client *http.Client, target string) (*http.Response, []byte) {
	t.Helper()
	resp, err := client.Get(target)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func htmxPost(t *testing.T, client *http.Client, target, token string, form url.Values) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("HX-Request", "true")
	if token != "" {
		req.Header.Set("X-CSRF-Token", token)
	}
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func openVehicle(t *testing.T, ts string, client *http.Client, slug string) (*goquery.Document, string, string) {
	t.Helper()
	resp, body := get(t, client, ts+"/vehicles/"+slug)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc := testutil.ParseHTML(t, body)
	formID := doc.Find(".alc-form-container").AttrOr("data-form-id", "")
	require.NotEmpty(t, formID)
	token := doc.Find(`input[name="` + configurator.NonceField + `"]`).AttrOr("value", "")
	return doc, formID, token
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	resp, body := get(t, http.DefaultClient, ts.URL+"/healthz")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "ok", string(body))

	failing := testutil.NewServer(t, testutil.WithReady(func() error { return errors.New("redis down") }))
	resp, _ = get(t, http.DefaultClient, failing.URL+"/healthz")
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestConfiguratorStartsWithOneSelectionPerCategory(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	doc, formID, token := openVehicle(t, ts.URL, testutil.NewClient(t), "toyota-corolla-2022")

	require.NotEmpty(t, token)
	for _, cat := range leasing.Categories {
		require.Len(t, testutil.Selected(doc, string(cat)), 1, "category %s", cat)
	}
	require.Equal(t, []string{"2000", "3000", "4000", "5000"}, doc.Find(`.alc-option-card[data-category="mileage"]`).Map(func(_ int, s *goquery.Selection) string {
		return s.AttrOr("data-option-id", "")
	}))
	require.Equal(t, "1795", doc.Find("#"+configurator.TotalID(formID)).AttrOr("data-total", ""))
	require.Equal(t, "3", doc.Find(".alc-watching-count").Text())
}

func TestSelectionFlowEndsInHandoff(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	client := testutil.NewClient(t)
	_, formID, token := openVehicle(t, ts.URL, client, "toyota-corolla-2022")
	links := storefront.Links(formID)

	resp, body := htmxPost(t, client, ts.URL+links.Select, token, url.Values{"category": {"insurance"}, "option": {"full"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc := testutil.ParseHTML(t, body)
	require.Equal(t, []string{"full"}, testutil.Selected(doc, "insurance"))

	resp, body = htmxPost(t, client, ts.URL+links.Select, token, url.Values{"category": {"mileage"}, "option": {"5000"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc = testutil.ParseHTML(t, body)
	require.Equal(t, "AED 2,000", strings.TrimSpace(doc.Find("#"+configurator.TotalID(formID)).Text()))

	resp, body = htmxPost(t, client, ts.URL+links.Select, token, url.Values{"category": {"mileage"}, "option": {"bogus"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc = testutil.ParseHTML(t, body)
	require.Equal(t, []string{"5000"}, testutil.Selected(doc, "mileage"))

	resp, _ = htmxPost(t, client, ts.URL+links.Submit, "", url.Values{configurator.NonceField: {token}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	target := resp.Header.Get("HX-Redirect")
	require.True(t, strings.HasPrefix(target, "https://wa.me/"+leasing.FallbackContact+"?text="), target)

	u, err := url.Parse(target)
	require.NoError(t, err)
	msg := u.Query().Get("text")
	require.Contains(t, msg, "Hello! I'm interested in leasing a Toyota Corolla 2022.")
	require.Contains(t, msg, "• Insurance: Full cover")
	require.Contains(t, msg, "• Monthly mileage: 5,000 km")
	require.Contains(t, msg, "• Total monthly price: AED 2,000")
}

func TestSubmitWithoutTokenSetsNoRedirect(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	client := testutil.NewClient(t)
	_, formID, _ := openVehicle(t, ts.URL, client, "nissan-patrol-2024")

	resp, _ := htmxPost(t, client, ts.URL+storefront.Links(formID).Submit, "", url.Values{})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Empty(t, resp.Header.Get("HX-Redirect"))
	require.Empty(t, resp.Header.Get("Location"))
}

func TestMetricsExposeHandoffs(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	client := testutil.NewClient(t)
	_, formID, token := openVehicle(t, ts.URL, client, "kia-sportage-2023")
	resp, _ := htmxPost(t, client, ts.URL+storefront.Links(formID).Submit, "", url.Values{configurator.NonceField: {token}})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := get(t, http.DefaultClient, ts.URL+"/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(body), `leasing_handoffs_total{outcome="redirected"}`)
	require.Contains(t, string(body), "leasing_forms_opened_total")
}

func TestAdminRemoveRenumbersRows(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	client := testutil.NewClient(t)

	resp, body := get(t, client, ts.URL+"/admin/login")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	csrf := testutil.ParseHTML(t, body).Find(`input[name="csrf_token"]`).First().AttrOr("value", "")

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/admin/login",
		strings.NewReader(url.Values{"token": {testutil.AdminToken}, "csrf_token": {csrf}}.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err = client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	form := url.Values{}
	for i, miles := range []string{"2000", "3000", "4000", "5000"} {
		form.Set(fieldName(i, "miles"), miles)
	}
	resp, body = htmxPost(t, client, ts.URL+"/admin/vehicles/1/options/mileage/rows/1/remove", csrf, form)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	doc := testutil.ParseHTML(t, body)
	var numbers []string
	doc.Find(".alc-row-number").Each(func(_ int, s *goquery.Selection) {
		numbers = append(numbers, strings.TrimSpace(s.Text()))
	})
	require.Equal(t, []string{"#1", "#2", "#3"}, numbers)
	require.Equal(t, "4000", doc.Find(`input[name="`+fieldName(1, "miles")+`"]`).AttrOr("value", ""))
}

func fieldName(i int, field string) string {
	return "mileage_options[" + string(rune('0'+i)) + "][" + field + "]"
}
