package location

import (
	"context"
	"sort"
	"strings"
)

// StaticSearch serves fixed candidates keyed by lower-cased query. A query
// with no exact entry matches every entry whose key contains it.
type StaticSearch struct {
	entries    map[string][]Candidate
	maxResults int
}

var _ LocationSearch = (*StaticSearch)(nil)

// NewStaticSearch creates a StaticSearch over entries. A nil map selects the
// built-in gazetteer.
func NewStaticSearch(entries map[string][]Candidate) *StaticSearch {
	if entries == nil {
		entries = defaultGazetteer
	}
	normalized := make(map[string][]Candidate, len(entries))
	for k, v := range entries {
		normalized[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return &StaticSearch{entries: normalized, maxResults: DefaultMaxResults}
}

// Search returns the configured answer for query.
func (s *StaticSearch) Search(ctx context.Context, query string) ([]Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q, err := NormalizeQuery(query)
	if err != nil {
		return nil, err
	}
	key := strings.ToLower(q)

	if exact, ok := s.entries[key]; ok {
		return limit(append([]Candidate(nil), exact...), s.maxResults), nil
	}

	var out []Candidate
	for _, k := range sortedKeys(s.entries) {
		if strings.Contains(k, key) {
			out = append(out, s.entries[k]...)
		}
	}
	return limit(out, s.maxResults), nil
}

var defaultGazetteer = map[string][]Candidate{
	"new york":      {{Label: "New York, United States", Latitude: 40.7128, Longitude: -74.006}},
	"london":        {{Label: "London, Greater London, England, United Kingdom", Latitude: 51.5074, Longitude: -0.1278}},
	"paris":         {{Label: "Paris, Île-de-France, France", Latitude: 48.8566, Longitude: 2.3522}},
	"berlin":        {{Label: "Berlin, Germany", Latitude: 52.52, Longitude: 13.405}},
	"sydney":        {{Label: "Sydney, New South Wales, Australia", Latitude: -33.8688, Longitude: 151.2093}},
	"tokyo":         {{Label: "Tokyo, Japan", Latitude: 35.6762, Longitude: 139.6503}},
	"san francisco": {{Label: "San Francisco, California, United States", Latitude: 37.7749, Longitude: -122.4194}},
	"boston":        {{Label: "Boston, Massachusetts, United States", Latitude: 42.3601, Longitude: -71.0589}},
}

func sortedKeys(m map[string][]Candidate) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
