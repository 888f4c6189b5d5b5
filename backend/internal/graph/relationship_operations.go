package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// ============================================================================
// Person-to-Person Relationship Operations
// ============================================================================

// UpsertAcquaintance connects two people with a single CONNECTED_TO edge.
// The edge is stored from the smaller id to the larger one and matched in
// either direction, so argument order never produces a second edge.
func (r *Repository) UpsertAcquaintance(ctx context.Context, personA, personB string) (bool, error) {
	if personA == personB {
		return false, ErrSelfAcquaintance{PersonID: personA}
	}
	edge := NewAcquaintance(personA, personB)

	session := r.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	query := `
		MATCH (a:Person {id: $a})
		MATCH (b:Person {id: $b})
		OPTIONAL MATCH (a)-[existing:CONNECTED_TO]-(b)
		WITH a, b, count(existing) AS found
		FOREACH (_ IN CASE WHEN found = 0 THEN [1] ELSE [] END |
			CREATE (a)-[:CONNECTED_TO {created_at: datetime()}]->(b)
		)
		RETURN found = 0 AS created
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"a": edge.A,
		"b": edge.B,
	})
	if err != nil {
		return false, r.wrap("upsert acquaintance", err)
	}
	if !result.Next(ctx) {
		if err := result.Err(); err != nil {
			return false, r.wrap("upsert acquaintance", err)
		}
		return false, ErrMissingPerson{PersonID: edge.A + "|" + edge.B}
	}
	return getBoolFromRecord(result.Record(), "created"), nil
}

// ListConnectionsOf returns the ids of a person's acquaintances
func (r *Repository) ListConnectionsOf(ctx context.Context, personID string) ([]string, error) {
	records, err := r.collect(ctx, "list connections", `
		MATCH (p:Person {id: $id})-[:CONNECTED_TO]-(o:Person)
		RETURN DISTINCT o.id AS id
		ORDER BY id
	`, map[string]interface{}{"id": personID})
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(records))
	for _, record := range records {
		ids = append(ids, getStringFromRecord(record, "id"))
	}
	return ids, nil
}

// ============================================================================
// Portfolio Operations
// ============================================================================

// SetPortfolio replaces a viewer's INTERESTED_IN edges
func (r *Repository) SetPortfolio(ctx context.Context, viewerID string, companies []string) error {
	p := NewPortfolio(viewerID, companies)
	entries := make([]map[string]interface{}, 0, p.Len())
	for i, name := range p.Names() {
		entries = append(entries, map[string]interface{}{
			"key":  NormalizeCompany(name),
			"name": name,
			"rank": i,
		})
	}

	query := `
		MERGE (v:VC {id: $viewerID})
		WITH v
		OPTIONAL MATCH (v)-[old:INTERESTED_IN]->(:Company)
		DELETE old
		WITH DISTINCT v
		UNWIND $entries AS entry
		MERGE (c:Company {key: entry.key})
		ON CREATE SET c.name = entry.name
		MERGE (v)-[i:INTERESTED_IN]->(c)
		SET i.rank = entry.rank, i.name = entry.name
	`
	return r.run(ctx, "set portfolio", query, map[string]interface{}{
		"viewerID": viewerID,
		"entries":  entries,
	})
}

// AddToPortfolio appends a company to a viewer's portfolio if absent
func (r *Repository) AddToPortfolio(ctx context.Context, viewerID, company string) error {
	key := NormalizeCompany(company)
	if key == "" {
		return nil
	}
	query := `
		MERGE (v:VC {id: $viewerID})
		MERGE (c:Company {key: $key})
		ON CREATE SET c.name = $name
		MERGE (v)-[i:INTERESTED_IN]->(c)
		ON CREATE SET i.name = $name,
		              i.rank = COUNT { (v)-[:INTERESTED_IN]->(:Company) }
	`
	return r.run(ctx, "add to portfolio", query, map[string]interface{}{
		"viewerID": viewerID,
		"key":      key,
		"name":     company,
	})
}

// ListPortfolio returns the viewer's companies in the order they were set
func (r *Repository) ListPortfolio(ctx context.Context, viewerID string) ([]string, error) {
	records, err := r.collect(ctx, "list portfolio", `
		MATCH (:VC {id: $viewerID})-[i:INTERESTED_IN]->(c:Company)
		RETURN coalesce(i.name, c.name) AS name
		ORDER BY i.rank, c.key
	`, map[string]interface{}{"viewerID": viewerID})
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(records))
	for _, record := range records {
		names = append(names, getStringFromRecord(record, "name"))
	}
	return names, nil
}
