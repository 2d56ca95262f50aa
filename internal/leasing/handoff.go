package leasing

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// DefaultMessagingBaseURL is the messaging service used for lead handoff.
const DefaultMessagingBaseURL = "https://wa.me"

// ErrMissingToken aborts a handoff that arrives without the collaborator's security token.
var ErrMissingToken = errors.New("leasing: security token missing")

// Submission is the final selection resolved to display labels.
type Submission struct {
	Token        string
	VehicleID    int64
	VehicleTitle string
	Contact      string
	Labels       map[Category]string
	Quote        Quote
}

// Handoff is the navigation target produced for a submission.
type Handoff struct {
	Contact string
	Message string
	URL     string
}

// Messenger builds handoff links against a messaging service.
type Messenger struct {
	BaseURL         string
	FallbackContact string
}

// Handoff builds the summary message and the messaging URL. It has no side effects; the
// caller performs the navigation.
func (m Messenger) Handoff(s Submission) (Handoff, error) {
	if strings.TrimSpace(s.Token) == "" {
		return Handoff{}, ErrMissingToken
	}
	contact := strings.TrimSpace(s.Contact)
	if contact == "" {
		contact = m.FallbackContact
	}
	if contact == "" {
		contact = FallbackContact
	}
	base := strings.TrimRight(strings.TrimSpace(m.BaseURL), "/")
	if base == "" {
		base = DefaultMessagingBaseURL
	}

	msg := SummaryMessage(s)
	return Handoff{
		Contact: contact,
		Message: msg,
		URL:     fmt.Sprintf("%s/%s?text=%s", base, url.PathEscape(contact), EncodeURIComponent(msg)),
	}, nil
}

// SummaryMessage renders the fixed lead message for a submission.
func SummaryMessage(s Submission) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello! I'm interested in leasing a %s.\n\n", s.VehicleTitle)
	b.WriteString("Selected options:\n")
	for _, cat := range Categories {
		fmt.Fprintf(&b, "• %s: %s\n", cat.SummaryLabel(), s.Labels[cat])
	}
	fmt.Fprintf(&b, "• Total monthly price: %s\n\n", s.Quote.Formatted())
	b.WriteString("Please contact me to finalize this subscription. Thank you!")
	return b.String()
}

var uriComponentUnescape = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// EncodeURIComponent escapes s the way browsers' encodeURIComponent does: spaces become %20
// and !'()* stay literal.
func EncodeURIComponent(s string) string {
	return uriComponentUnescape.Replace(url.QueryEscape(s))
}
