package explorer

import (
	"strings"
	"time"

	"explorer-backend/domain/exploration"
)

// SearchMatch is one matched entity within a domain.
type SearchMatch struct {
	Entity     string                 `json:"entity"`
	MatchType  string                 `json:"match_type"`
	MatchValue string                 `json:"match_value,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
}

// SearchResult groups matches by domain with a running total.
type SearchResult struct {
	SearchTerm      string                               `json:"search_term"`
	ResultsByDomain map[exploration.Domain][]SearchMatch `json:"results_by_domain"`
	TotalMatches    int                                  `json:"total_matches"`
	Timestamp       time.Time                            `json:"timestamp"`
}

// Search performs a case-insensitive substring scan over every domain and
// entity in a snapshot. A key match counts as a "name" match; otherwise the
// first string attribute containing the term wins and scanning of that
// entity stops.
func (e *Engine) Search(term string) SearchResult {
	result := SearchResult{
		SearchTerm:      term,
		ResultsByDomain: make(map[exploration.Domain][]SearchMatch),
		Timestamp:       time.Now().UTC(),
	}

	needle := strings.ToLower(term)
	snap := e.store.Snapshot()

	for _, domain := range exploration.AllDomains {
		var matches []SearchMatch

		for _, entity := range snap.Domains[domain] {
			if strings.Contains(strings.ToLower(entity.Key()), needle) {
				matches = append(matches, SearchMatch{
					Entity:    entity.Key(),
					MatchType: "name",
					Details:   attributeMap(entity),
				})
				continue
			}
			for _, attr := range entity.Attributes() {
				if attr.Kind != exploration.AttributeString {
					continue
				}
				if strings.Contains(strings.ToLower(attr.String), needle) {
					matches = append(matches, SearchMatch{
						Entity:     entity.Key(),
						MatchType:  attr.Name,
						MatchValue: attr.String,
					})
					break
				}
			}
		}

		if len(matches) > 0 {
			result.ResultsByDomain[domain] = matches
			result.TotalMatches += len(matches)
		}
	}

	return result
}

func attributeMap(entity exploration.Entity) map[string]interface{} {
	attrs := entity.Attributes()
	details := make(map[string]interface{}, len(attrs))
	for _, attr := range attrs {
		details[attr.Name] = exploration.AttributeValue(attr)
	}
	return details
}
