package main

import (
	"bytes"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestQuoteUsesCatalogDefaults(t *testing.T) {
	out, err := run(t, "quote", "--vehicle", "toyota-corolla-2022")
	require.NoError(t, err)
	require.Contains(t, out, "AED 1,795")
	require.Contains(t, out, "3,000 km")
}

func TestQuoteAppliesSelectionsAndDiscount(t *testing.T) {
	out, err := run(t, "quote", "--vehicle", "toyota-corolla-2022", "--insurance", "full", "--mileage", "5000")
	require.NoError(t, err)
	require.Contains(t, out, "AED 2,000")

	out, err = run(t, "quote", "--vehicle", "toyota-corolla-2022", "--insurance", "full", "--mileage", "5000", "--combo-discount")
	require.NoError(t, err)
	require.Contains(t, out, "AED 1,950")
	require.Contains(t, out, "combo:9months+full+5000")
}

func TestQuoteRejectsUnknownOption(t *testing.T) {
	_, err := run(t, "quote", "--vehicle", "toyota-corolla-2022", "--mileage", "123")
	require.ErrorContains(t, err, `unknown mileage option "123"`)

	_, err = run(t, "quote", "--vehicle", "no-such-car")
	require.Error(t, err)
}

func TestLinkRequiresToken(t *testing.T) {
	_, err := run(t, "link", "--vehicle", "nissan-patrol-2024")
	require.Error(t, err)
}

func TestLinkBuildsMessagingURL(t *testing.T) {
	out, err := run(t, "link", "--vehicle", "nissan-patrol-2024", "--token", "abc")
	require.NoError(t, err)

	link := strings.TrimSpace(out)
	require.True(t, strings.HasPrefix(link, "https://wa.me/971501234567?text="), link)
	u, err := url.Parse(link)
	require.NoError(t, err)
	require.Contains(t, u.Query().Get("text"), "Nissan Patrol 2024")
}

func TestVehiclesListsFromPrices(t *testing.T) {
	out, err := run(t, "vehicles")
	require.NoError(t, err)
	require.Contains(t, out, "kia-sportage-2023")
	require.Contains(t, out, "AED 1,245")
}
