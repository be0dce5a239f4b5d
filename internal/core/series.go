package core

import "sort"

// Observation is one data point of an INEGI series. Value is nil when the
// upstream OBS_VALUE could not be parsed as a finite number. GeoCoverage and
// Unit are kept only when the upstream response carried them.
type Observation struct {
	Period      string   `json:"period"`
	Value       *float64 `json:"value"`
	GeoCoverage string   `json:"geo_coverage,omitempty"`
	Unit        string   `json:"unit,omitempty"`
}

// Series is an ordered collection of observations for one indicator,
// ascending by Period. Periods are canonical "YYYY/MM" strings, so plain
// string comparison is also chronological comparison.
type Series []Observation

// Sort orders the series ascending by period. Fetch code calls this once
// before a series is handed out or cached; nothing downstream re-sorts.
func (s Series) Sort() {
	sort.SliceStable(s, func(i, j int) bool { return s[i].Period < s[j].Period })
}

// From returns the observations with period >= from, preserving order.
// The receiver must already be sorted ascending. The result shares the
// backing array; callers only read it, the cached series is never mutated.
func (s Series) From(from string) Series {
	if len(s) == 0 {
		return s
	}
	i := sort.Search(len(s), func(i int) bool { return s[i].Period >= from })
	return s[i:]
}

// FilterSeries applies a free-form date filter to a series: the filter input
// is normalized via NormalizeFilter and used as an inclusive lower bound.
func FilterSeries(s Series, filterInput string) Series {
	return s.From(NormalizeFilter(filterInput))
}
