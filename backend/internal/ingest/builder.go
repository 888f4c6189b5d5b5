package ingest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"graphite/backend/internal/constants"
	"graphite/backend/internal/graph"
	"graphite/backend/internal/metrics"
	"graphite/backend/pkg/config"
	apperrors "graphite/backend/pkg/errors"
	"graphite/backend/pkg/logger"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
)

// Record is one raw attendee row
type Record struct {
	Name           string      `json:"name" yaml:"name"`
	Title          string      `json:"title" yaml:"title"`
	CurrentCompany string      `json:"currentCompany" yaml:"currentCompany"`
	ProfileURL     string      `json:"linkedinUrl" yaml:"linkedinUrl"`
	WorkHistory    WorkHistory `json:"workHistory" yaml:"workHistory"`
}

// BuildResult summarises one ingestion
type BuildResult struct {
	EventID            string   `json:"eventId"`
	Added              int      `json:"count"`
	Skipped            int      `json:"skipped"`
	ConnectionsCreated int      `json:"connectionsCreated"`
	AttendeeCount      int      `json:"attendeeCount"`
	PersonIDs          []string `json:"personIds"`
}

// Builder turns attendee rosters into graph writes
type Builder struct {
	store  graph.Store
	scope  string
	logger *zap.Logger
	newID  func() (string, error)
}

// NewBuilder creates a builder. scope is config.ConnectScopeBatch to only
// connect people within a roster; anything else also connects them to
// everyone already stored at a shared company.
func NewBuilder(store graph.Store, scope string) *Builder {
	return &Builder{
		store:  store,
		scope:  scope,
		logger: logger.Named("ingest"),
		newID:  newPersonID,
	}
}

func newPersonID() (string, error) {
	id, err := gonanoid.New(constants.PersonIDLength)
	if err != nil {
		return "", err
	}
	return constants.PersonIDPrefix + id, nil
}

// prepared is a validated record with its parsed history
type prepared struct {
	person  graph.Person
	history []graph.Employment
}

// BuildGraph writes a roster into the store for an event. A nil roster is
// rejected before anything is written. Records without a name are skipped.
func (b *Builder) BuildGraph(ctx context.Context, eventID string, records []Record) (*BuildResult, error) {
	if records == nil {
		return nil, apperrors.NewInvalidRoster("attendees must be a list")
	}
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return nil, apperrors.NewInvalidRoster("event id is required")
	}

	start := time.Now()
	defer func() { metrics.IngestDuration.Observe(time.Since(start).Seconds()) }()

	result := &BuildResult{EventID: eventID, PersonIDs: []string{}}

	existing, err := b.store.ListAttendees(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load current attendees: %w", err)
	}
	matcher := newIdentityMatcher(existing)

	var batch []prepared
	for _, record := range records {
		p, ok := prepare(record)
		if !ok {
			result.Skipped++
			continue
		}
		if id, found := matcher.match(p.person); found {
			p.person.ID = id
		} else {
			id, err := b.newID()
			if err != nil {
				return nil, fmt.Errorf("failed to generate person id: %w", err)
			}
			p.person.ID = id
		}
		for i := range p.history {
			p.history[i].PersonID = p.person.ID
		}
		batch = append(batch, p)
	}

	if err := b.store.UpsertEvent(ctx, graph.Event{ID: eventID}); err != nil {
		return nil, fmt.Errorf("failed to upsert event: %w", err)
	}

	for _, p := range batch {
		if err := ctx.Err(); err != nil {
			return nil, apperrors.NewContextCancelled("build graph", err)
		}
		if err := b.writePerson(ctx, eventID, p); err != nil {
			return nil, err
		}
		result.PersonIDs = append(result.PersonIDs, p.person.ID)
	}
	result.Added = len(batch)

	created, err := b.autoConnect(ctx, batch)
	if err != nil {
		return nil, err
	}
	result.ConnectionsCreated = created

	count, err := b.store.CountAttendees(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to count attendees: %w", err)
	}
	result.AttendeeCount = count

	metrics.AttendeesIngested.WithLabelValues(metrics.OutcomeAdded).Add(float64(result.Added))
	metrics.AttendeesIngested.WithLabelValues(metrics.OutcomeSkipped).Add(float64(result.Skipped))
	metrics.ConnectionsCreated.Add(float64(created))

	b.logger.Info("Roster ingested",
		zap.String("event_id", eventID),
		zap.Int("added", result.Added),
		zap.Int("skipped", result.Skipped),
		zap.Int("connections_created", created),
		zap.Int("attendee_count", count),
		zap.Duration("took", time.Since(start)),
	)
	return result, nil
}

// Normalize validates the record and derives the person with their
// employment history. Neither carries a person id yet.
func (r Record) Normalize() (graph.Person, []graph.Employment, bool) {
	p, ok := prepare(r)
	return p.person, p.history, ok
}

// prepare validates a record and derives its employment history
func prepare(record Record) (prepared, bool) {
	name := strings.TrimSpace(record.Name)
	if name == "" {
		return prepared{}, false
	}

	entries := record.WorkHistory.Entries()
	title := strings.TrimSpace(record.Title)
	current := strings.TrimSpace(record.CurrentCompany)
	if current == "" {
		for _, e := range entries {
			if e.To == "" {
				current = e.Company
				break
			}
		}
	}

	if len(entries) == 0 && current != "" {
		entries = []HistoryEntry{{Company: current, Title: title, From: constants.BaselineYear}}
	}

	var history []graph.Employment
	hasCurrent := false
	for _, e := range entries {
		if e.To == "" && graph.NormalizeCompany(e.Company) == graph.NormalizeCompany(current) {
			hasCurrent = true
		}
		history = append(history, graph.Employment{
			CompanyKey: graph.NormalizeCompany(e.Company),
			Company:    e.Company,
			Title:      e.Title,
			From:       e.From,
			To:         e.To,
		})
	}
	if current != "" && !hasCurrent {
		history = append(history, graph.Employment{
			CompanyKey: graph.NormalizeCompany(current),
			Company:    current,
			Title:      title,
			From:       constants.BaselineYear,
		})
	}

	return prepared{
		person: graph.Person{
			Name:           name,
			Title:          title,
			CurrentCompany: current,
			ProfileURL:     strings.TrimSpace(record.ProfileURL),
		},
		history: history,
	}, true
}

func (b *Builder) writePerson(ctx context.Context, eventID string, p prepared) error {
	if err := b.store.UpsertPerson(ctx, p.person); err != nil {
		return fmt.Errorf("failed to upsert person %s: %w", p.person.ID, err)
	}

	seen := make(map[string]struct{})
	for _, e := range p.history {
		if _, ok := seen[e.CompanyKey]; !ok {
			seen[e.CompanyKey] = struct{}{}
			if err := b.store.UpsertCompany(ctx, graph.Company{Key: e.CompanyKey, Name: e.Company}); err != nil {
				return fmt.Errorf("failed to upsert company %s: %w", e.Company, err)
			}
		}
		if err := b.store.UpsertEmployment(ctx, e); err != nil {
			return fmt.Errorf("failed to upsert employment of %s: %w", p.person.ID, err)
		}
	}

	if err := b.store.UpsertAttendance(ctx, p.person.ID, eventID); err != nil {
		return fmt.Errorf("failed to bind %s to %s: %w", p.person.ID, eventID, err)
	}
	return nil
}

// autoConnect links every pair of people sharing a company, current or
// past. Returns the number of edges that did not exist before.
func (b *Builder) autoConnect(ctx context.Context, batch []prepared) (int, error) {
	groups := newCompanyGroups()
	for _, p := range batch {
		for _, e := range p.history {
			groups.add(e.CompanyKey, p.person.ID)
		}
	}

	if b.scope != config.ConnectScopeBatch && len(groups.order) > 0 {
		others, err := b.store.ListPeopleAtCompanies(ctx, groups.order)
		if err != nil {
			return 0, fmt.Errorf("failed to list people at shared companies: %w", err)
		}
		for _, a := range others {
			for _, e := range a.History {
				groups.join(e.CompanyKey, a.ID)
			}
		}
	}

	created := 0
	for _, key := range groups.order {
		members := groups.members[key]
		for i := 0; i < len(members)-1; i++ {
			for j := i + 1; j < len(members); j++ {
				ok, err := b.store.UpsertAcquaintance(ctx, members[i], members[j])
				if err != nil {
					return created, fmt.Errorf("failed to connect %s and %s: %w", members[i], members[j], err)
				}
				if ok {
					created++
				}
			}
		}
	}
	return created, nil
}

// companyGroups collects people per company key in first-seen order
type companyGroups struct {
	order   []string
	members map[string][]string
	seen    map[string]map[string]struct{}
}

func newCompanyGroups() *companyGroups {
	return &companyGroups{
		members: make(map[string][]string),
		seen:    make(map[string]map[string]struct{}),
	}
}

// join adds personID to an existing group only
func (g *companyGroups) join(key, personID string) {
	if _, ok := g.seen[key]; ok {
		g.add(key, personID)
	}
}

func (g *companyGroups) add(key, personID string) {
	if key == "" {
		return
	}
	set, ok := g.seen[key]
	if !ok {
		set = make(map[string]struct{})
		g.seen[key] = set
		g.order = append(g.order, key)
	}
	if _, dup := set[personID]; dup {
		return
	}
	set[personID] = struct{}{}
	g.members[key] = append(g.members[key], personID)
}
