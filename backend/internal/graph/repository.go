package graph

import (
	"context"
	"time"

	apperrors "graphite/backend/pkg/errors"
	"graphite/backend/pkg/logger"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

// Repository is a Store backed by Neo4j
type Repository struct {
	driver   neo4j.DriverWithContext
	database string
	logger   *zap.Logger
}

// NewRepository creates a new graph repository. database may be empty to
// use the server default.
func NewRepository(driver neo4j.DriverWithContext, database string) *Repository {
	return &Repository{
		driver:   driver,
		database: database,
		logger:   logger.Named("neo4j"),
	}
}

var _ Store = (*Repository)(nil)

// NewDriver opens a driver and verifies connectivity
func NewDriver(ctx context.Context, uri, user, password string) (neo4j.DriverWithContext, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""),
		func(c *neo4j.Config) {
			c.MaxConnectionLifetime = 3 * time.Hour
			c.MaxConnectionPoolSize = 50
			c.ConnectionAcquisitionTimeout = 2 * time.Minute
		},
	)
	if err != nil {
		return nil, apperrors.NewGraphConnectionFailed(uri, err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, apperrors.NewGraphConnectionFailed(uri, err)
	}
	return driver, nil
}

func (r *Repository) session(ctx context.Context, mode neo4j.AccessMode) neo4j.SessionWithContext {
	return r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: mode, DatabaseName: r.database})
}

// wrap classifies a driver error so callers can tell an unreachable
// backend apart from a failed statement
func (r *Repository) wrap(operation string, err error) error {
	if err == nil {
		return nil
	}
	r.logger.Error("Neo4j operation failed", zap.String("operation", operation), zap.Error(err))
	if neo4j.IsConnectivityError(err) {
		return apperrors.NewGraphConnectionFailed("neo4j", err)
	}
	return apperrors.NewGraphQueryFailed(operation, err)
}

// run executes a write statement and discards the result
func (r *Repository) run(ctx context.Context, operation, query string, params map[string]interface{}) error {
	session := r.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	result, err := session.Run(ctx, query, params)
	if err != nil {
		return r.wrap(operation, err)
	}
	if _, err := result.Consume(ctx); err != nil {
		return r.wrap(operation, err)
	}
	return nil
}

// collect executes a read statement and returns all records
func (r *Repository) collect(ctx context.Context, operation, query string, params map[string]interface{}) ([]*neo4j.Record, error) {
	session := r.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	result, err := session.Run(ctx, query, params)
	if err != nil {
		return nil, r.wrap(operation, err)
	}
	records, err := result.Collect(ctx)
	if err != nil {
		return nil, r.wrap(operation, err)
	}
	return records, nil
}

// Ping checks connectivity
func (r *Repository) Ping(ctx context.Context) error {
	if err := r.driver.VerifyConnectivity(ctx); err != nil {
		return apperrors.NewGraphConnectionFailed("neo4j", err)
	}
	return nil
}

// Close closes the Neo4j driver connection
func (r *Repository) Close(ctx context.Context) error {
	return r.driver.Close(ctx)
}

// EnsureSchema creates the uniqueness constraints the merge statements rely on
func (r *Repository) EnsureSchema(ctx context.Context) error {
	statements := []string{
		"CREATE CONSTRAINT person_id IF NOT EXISTS FOR (p:Person) REQUIRE p.id IS UNIQUE",
		"CREATE CONSTRAINT company_key IF NOT EXISTS FOR (c:Company) REQUIRE c.key IS UNIQUE",
		"CREATE CONSTRAINT event_id IF NOT EXISTS FOR (e:Event) REQUIRE e.id IS UNIQUE",
		"CREATE CONSTRAINT vc_id IF NOT EXISTS FOR (v:VC) REQUIRE v.id IS UNIQUE",
		"CREATE INDEX person_name IF NOT EXISTS FOR (p:Person) ON (p.name)",
	}
	for _, stmt := range statements {
		if err := r.run(ctx, "ensure schema", stmt, nil); err != nil {
			return err
		}
	}
	r.logger.Info("Neo4j schema ensured", zap.Int("statements", len(statements)))
	return nil
}

// Purge deletes every node and relationship. Constraints stay.
func (r *Repository) Purge(ctx context.Context) error {
	if err := r.run(ctx, "purge", "MATCH (n) DETACH DELETE n", nil); err != nil {
		return err
	}
	r.logger.Warn("All nodes and relationships deleted")
	return nil
}

// ============================================================================
// Event Operations
// ============================================================================

// UpsertEvent creates the event or updates its name and date
func (r *Repository) UpsertEvent(ctx context.Context, event Event) error {
	query := `
		MERGE (e:Event {id: $id})
		ON CREATE SET
			e.name = CASE WHEN $name <> '' THEN $name ELSE $id END,
			e.date = $date,
			e.created_at = datetime()
		ON MATCH SET
			e.name = CASE WHEN $name <> '' THEN $name ELSE e.name END,
			e.date = CASE WHEN $date <> '' THEN $date ELSE e.date END
	`
	return r.run(ctx, "upsert event", query, map[string]interface{}{
		"id":   event.ID,
		"name": event.Name,
		"date": event.Date,
	})
}

const eventProjection = `
		OPTIONAL MATCH (p:Person)-[:ATTENDING]->(e)
		WITH e, count(DISTINCT p) AS attendee_count
		RETURN e.id AS id, e.name AS name, e.date AS date, attendee_count
`

// GetEvent returns the event with a freshly counted attendee total
func (r *Repository) GetEvent(ctx context.Context, eventID string) (*Event, error) {
	records, err := r.collect(ctx, "get event", `MATCH (e:Event {id: $id})`+eventProjection,
		map[string]interface{}{"id": eventID})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, apperrors.NewEventNotFound(eventID)
	}
	event := eventFromRecord(records[0])
	return &event, nil
}

// ListEvents returns all events in creation order
func (r *Repository) ListEvents(ctx context.Context) ([]Event, error) {
	records, err := r.collect(ctx, "list events",
		`MATCH (e:Event)`+eventProjection+` ORDER BY e.created_at, e.id`, nil)
	if err != nil {
		return nil, err
	}
	events := make([]Event, 0, len(records))
	for _, record := range records {
		events = append(events, eventFromRecord(record))
	}
	return events, nil
}

// DeleteEvent removes the event and its attendance edges
func (r *Repository) DeleteEvent(ctx context.Context, eventID string) error {
	session := r.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	result, err := session.Run(ctx, `
		MATCH (e:Event {id: $id})
		DETACH DELETE e
		RETURN count(*) AS deleted
	`, map[string]interface{}{"id": eventID})
	if err != nil {
		return r.wrap("delete event", err)
	}
	record, err := result.Single(ctx)
	if err != nil {
		return r.wrap("delete event", err)
	}
	if getIntFromRecord(record, "deleted") == 0 {
		return apperrors.NewEventNotFound(eventID)
	}
	return nil
}

// CountAttendees counts attendance edges and caches the total on the event
// node. The cached value is informational; reads always recount.
func (r *Repository) CountAttendees(ctx context.Context, eventID string) (int, error) {
	session := r.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	result, err := session.Run(ctx, `
		MATCH (e:Event {id: $id})
		OPTIONAL MATCH (p:Person)-[:ATTENDING]->(e)
		WITH e, count(DISTINCT p) AS n
		SET e.attendee_count = n
		RETURN n
	`, map[string]interface{}{"id": eventID})
	if err != nil {
		return 0, r.wrap("count attendees", err)
	}
	if !result.Next(ctx) {
		if err := result.Err(); err != nil {
			return 0, r.wrap("count attendees", err)
		}
		return 0, nil
	}
	return getIntFromRecord(result.Record(), "n"), nil
}

func eventFromRecord(record *neo4j.Record) Event {
	return Event{
		ID:            getStringFromRecord(record, "id"),
		Name:          getStringFromRecord(record, "name"),
		Date:          getStringFromRecord(record, "date"),
		AttendeeCount: getIntFromRecord(record, "attendee_count"),
	}
}
