package testutil

import (
	"bytes"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

// ParseHTML parses the provided HTML payload into a goquery document for assertions.
func ParseHTML(t testing.TB, body []byte) *goquery.Document {
	t.Helper()

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

// Selected returns the option ids of the selected cards in a category grid.
func Selected(doc *goquery.Document, category string) []string {
	var ids []string
	doc.Find(`.alc-option-card.alc-option-selected[data-category="` + category + `"]`).Each(func(_ int, s *goquery.Selection) {
		ids = append(ids, s.AttrOr("data-option-id", ""))
	})
	return ids
}
