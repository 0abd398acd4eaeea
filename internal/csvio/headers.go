package csvio

import (
	"fmt"
	"sort"
	"strings"
)

// column describes one logical field and the header spellings that map to it,
// in priority order. Matching is case-insensitive; the first synonym found in
// the header row wins.
type column struct {
	field    string
	synonyms []string
	required bool
}

var performanceColumns = []column{
	{field: "date", synonyms: []string{"date", "day"}, required: true},
	{field: "campaign", synonyms: []string{"campaign order name", "campaign name", "campaign", "name"}, required: true},
	{field: "impressions", synonyms: []string{"impressions", "imps", "impr"}, required: true},
	{field: "clicks", synonyms: []string{"clicks", "total clicks"}, required: true},
	{field: "revenue", synonyms: []string{"revenue", "total revenue"}, required: true},
	{field: "spend", synonyms: []string{"spend", "total spend", "cost"}},
	{field: "transactions", synonyms: []string{"transactions", "orders", "conversions"}},
	{field: "advertiser", synonyms: []string{"advertiser", "advertiser name"}},
	{field: "agency", synonyms: []string{"agency", "agency name"}},
}

var contractColumns = []column{
	{field: "name", synonyms: []string{"name", "campaign name", "campaign", "campaign order name"}, required: true},
	{field: "start", synonyms: []string{"start date", "start", "flight start", "begin date"}, required: true},
	{field: "end", synonyms: []string{"end date", "end", "flight end"}, required: true},
	{field: "budget", synonyms: []string{"budget", "total budget"}},
	{field: "cpm", synonyms: []string{"cpm", "rate", "cpm rate"}},
	{field: "goal", synonyms: []string{"impressions goal", "impression goal", "contracted impressions", "goal"}},
}

// resolveHeaders maps each logical field to its column index, or -1 when the
// header is absent. A missing required field aborts the whole import with an
// error naming every missing field at once.
func resolveHeaders(header []string, cols []column) (map[string]int, error) {
	norm := make([]string, len(header))
	for i, h := range header {
		norm[i] = strings.ToLower(strings.TrimSpace(h))
	}
	idx := make(map[string]int, len(cols))
	var missing []string
	for _, c := range cols {
		idx[c.field] = -1
		for _, syn := range c.synonyms {
			if j := indexOf(norm, syn); j >= 0 {
				idx[c.field] = j
				break
			}
		}
		if idx[c.field] < 0 && c.required {
			missing = append(missing, c.synonyms[0])
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return idx, nil
}

func indexOf(ss []string, want string) int {
	for i, s := range ss {
		if s == want {
			return i
		}
	}
	return -1
}

// cell returns the value at idx or "" when the column was not found or the
// record is short.
func cell(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return record[idx]
}
