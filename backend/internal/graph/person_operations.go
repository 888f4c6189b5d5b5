package graph

import (
	"context"
	"fmt"
	"strings"

	apperrors "graphite/backend/pkg/errors"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// ============================================================================
// Person and Company Operations
// ============================================================================

// UpsertPerson creates or replaces a person node
func (r *Repository) UpsertPerson(ctx context.Context, person Person) error {
	query := `
		MERGE (p:Person {id: $id})
		ON CREATE SET p.created_at = datetime()
		SET p.name = $name,
		    p.name_lower = toLower($name),
		    p.title = $title,
		    p.current_company = $currentCompany,
		    p.profile_url = $profileURL
	`
	return r.run(ctx, "upsert person", query, map[string]interface{}{
		"id":             person.ID,
		"name":           person.Name,
		"title":          person.Title,
		"currentCompany": person.CurrentCompany,
		"profileURL":     person.ProfileURL,
	})
}

// UpsertCompany merges a company on its normalized key
func (r *Repository) UpsertCompany(ctx context.Context, company Company) error {
	key := company.Key
	if key == "" {
		key = NormalizeCompany(company.Name)
	}
	query := `
		MERGE (c:Company {key: $key})
		ON CREATE SET c.name = $name, c.industry = $industry
		ON MATCH SET c.industry = CASE
			WHEN coalesce(c.industry, '') = '' THEN $industry
			ELSE c.industry
		END
	`
	return r.run(ctx, "upsert company", query, map[string]interface{}{
		"key":      key,
		"name":     strings.TrimSpace(company.Name),
		"industry": company.Industry,
	})
}

// UpsertEmployment merges a WORKS_AT (current) or WORKED_AT (ended) edge,
// creating the company on first reference
func (r *Repository) UpsertEmployment(ctx context.Context, employment Employment) error {
	key := employment.CompanyKey
	if key == "" {
		key = NormalizeCompany(employment.Company)
	}

	// Relationship types cannot be parameterised
	rel := "WORKED_AT {from: $from, to: $to}"
	if employment.IsCurrent() {
		rel = "WORKS_AT {from: $from}"
	}
	query := fmt.Sprintf(`
		MATCH (p:Person {id: $personID})
		MERGE (c:Company {key: $key})
		ON CREATE SET c.name = $company
		MERGE (p)-[w:%s]->(c)
		ON CREATE SET w.created_at = datetime()
		SET w.title = $title
		RETURN p.id AS id
	`, rel)

	session := r.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	result, err := session.Run(ctx, query, map[string]interface{}{
		"personID": employment.PersonID,
		"key":      key,
		"company":  strings.TrimSpace(employment.Company),
		"title":    employment.Title,
		"from":     employment.From,
		"to":       employment.To,
	})
	if err != nil {
		return r.wrap("upsert employment", err)
	}
	records, err := result.Collect(ctx)
	if err != nil {
		return r.wrap("upsert employment", err)
	}
	if len(records) == 0 {
		return ErrMissingPerson{PersonID: employment.PersonID}
	}
	return nil
}

// UpsertAttendance binds a person to an event, creating the event if needed.
// seq records binding order so attendee listings are stable.
func (r *Repository) UpsertAttendance(ctx context.Context, personID, eventID string) error {
	query := `
		MATCH (p:Person {id: $personID})
		MERGE (e:Event {id: $eventID})
		ON CREATE SET e.name = $eventID, e.date = '', e.created_at = datetime()
		MERGE (p)-[a:ATTENDING]->(e)
		ON CREATE SET a.joined_at = datetime(),
		              a.seq = COUNT { (:Person)-[:ATTENDING]->(e) }
		RETURN p.id AS id
	`
	session := r.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	result, err := session.Run(ctx, query, map[string]interface{}{
		"personID": personID,
		"eventID":  eventID,
	})
	if err != nil {
		return r.wrap("upsert attendance", err)
	}
	records, err := result.Collect(ctx)
	if err != nil {
		return r.wrap("upsert attendance", err)
	}
	if len(records) == 0 {
		return ErrMissingPerson{PersonID: personID}
	}
	return nil
}

// ============================================================================
// Person Reads
// ============================================================================

// GetPerson returns a person with history and acquaintances
func (r *Repository) GetPerson(ctx context.Context, personID string) (*PersonDetail, error) {
	query := `
		MATCH (p:Person {id: $id})` + fmt.Sprintf(historyCollect, "") + `
		OPTIONAL MATCH (p)-[:CONNECTED_TO]-(o:Person)
		WITH p, history, o ORDER BY o.name, o.id
		WITH p, history, collect(CASE WHEN o IS NULL THEN NULL ELSE {
			id: o.id, name: o.name, title: o.title, current_company: o.current_company
		} END) AS connections
		RETURN ` + personColumns + `, history, connections
	`
	records, err := r.collect(ctx, "get person", query, map[string]interface{}{"id": personID})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, apperrors.NewPersonNotFound(personID)
	}
	record := records[0]

	detail := &PersonDetail{
		Person:      personFromRecord(record),
		WorkHistory: []WorkHistoryEntry{},
		Connections: []Person{},
	}
	for _, e := range historyFromRecord(record, "history", personID) {
		detail.WorkHistory = append(detail.WorkHistory, WorkHistoryEntry{
			Company:   e.Company,
			Title:     e.Title,
			From:      e.From,
			To:        e.To,
			IsCurrent: e.IsCurrent(),
		})
	}
	for _, m := range getMapSliceFromRecord(record, "connections") {
		detail.Connections = append(detail.Connections, Person{
			ID:             getStringFromMap(m, "id", ""),
			Name:           getStringFromMap(m, "name", ""),
			Title:          getStringFromMap(m, "title", ""),
			CurrentCompany: getStringFromMap(m, "current_company", ""),
		})
	}
	return detail, nil
}

// ListAttendees returns the attendees of an event in binding order
func (r *Repository) ListAttendees(ctx context.Context, eventID string) ([]Attendee, error) {
	query := `
		MATCH (p:Person)-[a:ATTENDING]->(:Event {id: $eventID})` +
		fmt.Sprintf(historyCollect, "a,") + `
		RETURN ` + personColumns + `, history
		ORDER BY a.seq, a.joined_at, p.id
	`
	records, err := r.collect(ctx, "list attendees", query, map[string]interface{}{"eventID": eventID})
	if err != nil {
		return nil, err
	}
	return attendeesFromRecords(records), nil
}

// ListPeopleAtCompanies returns everyone with any employment at one of the companies
func (r *Repository) ListPeopleAtCompanies(ctx context.Context, companyKeys []string) ([]Attendee, error) {
	if len(companyKeys) == 0 {
		return nil, nil
	}
	query := `
		MATCH (p:Person)-[:WORKS_AT|WORKED_AT]->(k:Company)
		WHERE k.key IN $keys
		WITH DISTINCT p` + fmt.Sprintf(historyCollect, "") + `
		RETURN ` + personColumns + `, history
		ORDER BY p.created_at, p.id
	`
	records, err := r.collect(ctx, "list people at companies", query, map[string]interface{}{"keys": companyKeys})
	if err != nil {
		return nil, err
	}
	return attendeesFromRecords(records), nil
}

func attendeesFromRecords(records []*neo4j.Record) []Attendee {
	attendees := make([]Attendee, 0, len(records))
	for _, record := range records {
		person := personFromRecord(record)
		attendees = append(attendees, Attendee{
			Person:  person,
			History: historyFromRecord(record, "history", person.ID),
		})
	}
	return attendees
}

// GetCompanies returns the known companies among the given keys
func (r *Repository) GetCompanies(ctx context.Context, companyKeys []string) ([]Company, error) {
	if len(companyKeys) == 0 {
		return []Company{}, nil
	}
	records, err := r.collect(ctx, "get companies", `
		MATCH (c:Company)
		WHERE c.key IN $keys
		RETURN c.key AS key, c.name AS name, c.industry AS industry
		ORDER BY c.key
	`, map[string]interface{}{"keys": companyKeys})
	if err != nil {
		return nil, err
	}
	companies := make([]Company, 0, len(records))
	for _, record := range records {
		companies = append(companies, Company{
			Key:      getStringFromRecord(record, "key"),
			Name:     getStringFromRecord(record, "name"),
			Industry: getStringFromRecord(record, "industry"),
		})
	}
	return companies, nil
}

// Snapshot reads the whole graph. Each section is a separate read, so the
// result is not a transactionally consistent view under concurrent writes.
func (r *Repository) Snapshot(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{}

	events, err := r.ListEvents(ctx)
	if err != nil {
		return nil, err
	}
	snap.Events = events

	records, err := r.collect(ctx, "snapshot people", `
		MATCH (p:Person)`+fmt.Sprintf(historyCollect, "")+`
		RETURN `+personColumns+`, history
		ORDER BY p.created_at, p.id
	`, nil)
	if err != nil {
		return nil, err
	}
	for _, a := range attendeesFromRecords(records) {
		snap.People = append(snap.People, a.Person)
		snap.Employments = append(snap.Employments, a.History...)
	}

	records, err = r.collect(ctx, "snapshot companies", `
		MATCH (c:Company)
		RETURN c.key AS key, c.name AS name, c.industry AS industry
		ORDER BY c.key
	`, nil)
	if err != nil {
		return nil, err
	}
	for _, record := range records {
		snap.Companies = append(snap.Companies, Company{
			Key:      getStringFromRecord(record, "key"),
			Name:     getStringFromRecord(record, "name"),
			Industry: getStringFromRecord(record, "industry"),
		})
	}

	records, err = r.collect(ctx, "snapshot acquaintances", `
		MATCH (a:Person)-[:CONNECTED_TO]->(b:Person)
		RETURN a.id AS a_id, b.id AS b_id
		ORDER BY a_id, b_id
	`, nil)
	if err != nil {
		return nil, err
	}
	for _, record := range records {
		snap.Acquaintances = append(snap.Acquaintances,
			NewAcquaintance(getStringFromRecord(record, "a_id"), getStringFromRecord(record, "b_id")))
	}

	records, err = r.collect(ctx, "snapshot attendance", `
		MATCH (p:Person)-[a:ATTENDING]->(e:Event)
		RETURN p.id AS person_id, e.id AS event_id
		ORDER BY e.id, a.seq, p.id
	`, nil)
	if err != nil {
		return nil, err
	}
	for _, record := range records {
		snap.Attendances = append(snap.Attendances, Attendance{
			PersonID: getStringFromRecord(record, "person_id"),
			EventID:  getStringFromRecord(record, "event_id"),
		})
	}

	return snap, nil
}
