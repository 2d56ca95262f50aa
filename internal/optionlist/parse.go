package optionlist

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/alc/leasing-form/internal/leasing"
)

// Parse rebuilds a category's list from posted form values. Rows are ordered by the index
// embedded in their field names and then renumbered densely.
func Parse(cat leasing.Category, form url.Values) *List {
	prefix := string(cat) + "_options["
	byIndex := map[int]map[string]string{}
	for key, values := range form {
		index, field, ok := splitFieldName(key, prefix)
		if !ok {
			continue
		}
		row, exists := byIndex[index]
		if !exists {
			row = map[string]string{}
			byIndex[index] = row
		}
		row[field] = lastValue(values)
	}

	indexes := make([]int, 0, len(byIndex))
	for i := range byIndex {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)

	l := New(cat)
	for _, i := range indexes {
		l.Rows = append(l.Rows, Row{Values: byIndex[i]})
	}
	l.Reindex()
	return l
}

// splitFieldName parses "<prefix><index>][<field>]".
func splitFieldName(key, prefix string) (int, string, bool) {
	if !strings.HasPrefix(key, prefix) || !strings.HasSuffix(key, "]") {
		return 0, "", false
	}
	rest := strings.TrimSuffix(strings.TrimPrefix(key, prefix), "]")
	idx, field, found := strings.Cut(rest, "][")
	if !found || field == "" {
		return 0, "", false
	}
	n, err := strconv.Atoi(idx)
	if err != nil || n < 0 {
		return 0, "", false
	}
	return n, field, true
}

// Toggle fields are rendered as a hidden "no" followed by a "yes" checkbox, so the last value wins.
func lastValue(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[len(values)-1])
}
