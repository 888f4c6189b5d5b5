package graph

import (
	"context"
	"strings"

	"graphite/backend/internal/constants"
)

// ============================================================================
// Search Operations
// ============================================================================

// MatchesQuery reports whether a person's name, title or current company
// contains the query, case-insensitively. A blank query matches nobody.
func MatchesQuery(person Person, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return false
	}
	return strings.Contains(strings.ToLower(person.Name), q) ||
		strings.Contains(strings.ToLower(person.Title), q) ||
		strings.Contains(strings.ToLower(person.CurrentCompany), q)
}

// SearchPeople matches query against name, title and current company.
// An empty eventID searches everyone.
func (r *Repository) SearchPeople(ctx context.Context, eventID, query string, limit int) ([]Person, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	if limit < 1 {
		limit = constants.DefaultSearchLimit
	}

	match := "MATCH (p:Person)"
	if eventID != "" {
		match = "MATCH (p:Person)-[:ATTENDING]->(:Event {id: $eventID})"
	}
	searchQuery := match + `
		WHERE toLower(p.name) CONTAINS toLower($query)
		   OR toLower(coalesce(p.title, '')) CONTAINS toLower($query)
		   OR toLower(coalesce(p.current_company, '')) CONTAINS toLower($query)
		RETURN ` + personColumns + `
		ORDER BY p.name, p.id
		LIMIT $limit
	`

	records, err := r.collect(ctx, "search people", searchQuery, map[string]interface{}{
		"eventID": eventID,
		"query":   strings.TrimSpace(query),
		"limit":   limit,
	})
	if err != nil {
		return nil, err
	}

	results := make([]Person, 0, len(records))
	for _, record := range records {
		results = append(results, personFromRecord(record))
	}
	return results, nil
}
