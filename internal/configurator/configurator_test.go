package configurator_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"github.com/alc/leasing-form/internal/configurator"
	"github.com/alc/leasing-form/internal/leasing"
	"github.com/alc/leasing-form/internal/testutil"
)

var links = configurator.Links{Select: "/forms/f1/select", Submit: "/forms/f1/submit"}

func renderPage(t *testing.T, form *leasing.Form, token string) *goquery.Document {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, configurator.MustRenderer().Page(&buf, configurator.BuildPage(form, links, token)))
	return testutil.ParseHTML(t, buf.Bytes())
}

func TestCardsMarkExactlyTheSelection(t *testing.T) {
	t.Parallel()

	options := leasing.DefaultOptions()[leasing.CategoryMileage]
	cards := configurator.Cards(leasing.CategoryMileage, options, "4000")
	require.Len(t, cards, 4)

	var selected []string
	for i, c := range cards {
		require.Equal(t, options[i].ID, c.OptionID, "catalog order is preserved")
		require.Equal(t, "mileage", c.Category)
		if c.Selected {
			selected = append(selected, c.OptionID)
		}
	}
	require.Equal(t, []string{"4000"}, selected)
	require.True(t, cards[1].Recommended)
	require.JSONEq(t, `{"category":"mileage","option":"4000"}`, cards[2].Vals)

	none := configurator.Cards(leasing.CategoryMileage, options, "retired")
	for _, c := range none {
		require.False(t, c.Selected)
	}
}

func TestCardsMarkOnlyFirstDuplicate(t *testing.T) {
	t.Parallel()

	options := []leasing.Option{{ID: "a", Label: "A"}, {ID: "a", Label: "A again"}}
	cards := configurator.Cards(leasing.CategoryInsurance, options, "a")
	require.True(t, cards[0].Selected)
	require.False(t, cards[1].Selected)
}

func TestPageRendersOneSelectedCardPerCategory(t *testing.T) {
	t.Parallel()

	form := leasing.NewForm("f1", leasing.Listing{VehicleTitle: "Nissan Patrol", WatchingCount: 9}, nil)
	doc := renderPage(t, form, "tok123")

	require.Equal(t, []string{"9months"}, testutil.Selected(doc, "subscription"))
	require.Equal(t, []string{"standard"}, testutil.Selected(doc, "insurance"))
	require.Equal(t, []string{"3000"}, testutil.Selected(doc, "mileage"))

	require.Equal(t, 3, doc.Find(".alc-option-group").Length())
	require.Equal(t, 1, doc.Find("#alc-grid-f1-subscription").Length())
	require.Equal(t, 3, doc.Find(".alc-check-svg").Length(), "check mark only on selected cards")

	total := doc.Find("#alc-total-f1")
	require.Equal(t, "AED 1,795", strings.TrimSpace(total.Text()))
	require.Equal(t, "1795", total.AttrOr("data-total", ""))
	_, oob := total.Attr("hx-swap-oob")
	require.False(t, oob)

	require.Equal(t, "9", doc.Find(".alc-watching-count").Text())
	require.Contains(t, doc.Find("h1").Text(), "Lease a Nissan Patrol")

	nonce := doc.Find(`input[name="leasing_form_nonce"]`)
	require.Equal(t, "tok123", nonce.AttrOr("value", ""))
	require.Equal(t, "/forms/f1/submit", doc.Find("form.alc-submit-form").AttrOr("hx-post", ""))
	require.JSONEq(t, `{"X-CSRF-Token":"tok123"}`, doc.Find("#alc-form-f1").AttrOr("hx-headers", ""))
}

func TestCardAttributes(t *testing.T) {
	t.Parallel()

	form := leasing.NewForm("f1", leasing.Listing{}, nil)
	doc := renderPage(t, form, "")

	card := doc.Find(`.alc-option-card[data-category="insurance"][data-option-id="full"]`)
	require.Equal(t, 1, card.Length())
	require.Equal(t, "105", card.AttrOr("data-price", ""))
	require.Equal(t, "/forms/f1/select", card.AttrOr("hx-post", ""))
	require.Equal(t, "#alc-grid-f1-insurance", card.AttrOr("hx-target", ""))
	require.Equal(t, "outerHTML", card.AttrOr("hx-swap", ""))
	require.JSONEq(t, `{"category":"insurance","option":"full"}`, card.AttrOr("hx-vals", ""))
	require.Equal(t, "Recommended", card.Find(".alc-recommended-tag").Text())
	require.Equal(t, "+ AED 105/month", card.Find(".alc-option-description").Text())

	heading := doc.Find("#alc-grid-f1-mileage .alc-info-icon")
	require.Equal(t, leasing.CategoryMileage.Tooltip(), heading.AttrOr("title", ""))

	_, hasHeaders := doc.Find("#alc-form-f1").Attr("hx-headers")
	require.False(t, hasHeaders)
}

func TestSelectResponseSwapsGridAndTotal(t *testing.T) {
	t.Parallel()

	form := leasing.NewForm("f1", leasing.Listing{}, nil)
	require.True(t, form.Select(leasing.CategoryInsurance, "full"))
	require.True(t, form.Select(leasing.CategoryMileage, "5000"))

	var buf bytes.Buffer
	renderer := configurator.MustRenderer()
	grid := configurator.BuildGrid(form, leasing.CategoryMileage, links.Select)
	require.NoError(t, renderer.SelectResponse(&buf, grid, configurator.BuildTotal(form, false)))

	doc := testutil.ParseHTML(t, buf.Bytes())
	require.Equal(t, 1, doc.Find(".alc-option-group").Length(), "only the affected grid is re-rendered")
	require.Equal(t, []string{"5000"}, testutil.Selected(doc, "mileage"))
	require.Equal(t, 4, doc.Find(".alc-option-card").Length())

	total := doc.Find("#alc-total-f1")
	require.Equal(t, "true", total.AttrOr("hx-swap-oob", ""))
	require.Equal(t, "AED 2,000", total.Text())
}

func TestPageHTMLEscapesListingContent(t *testing.T) {
	t.Parallel()

	form := leasing.NewForm("f1", leasing.Listing{VehicleTitle: `<script>alert(1)</script>`}, nil)
	html, err := configurator.MustRenderer().PageHTML(configurator.BuildPage(form, links, ""))
	require.NoError(t, err)
	require.NotContains(t, string(html), "<script>")
}
