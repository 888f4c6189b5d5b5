package graph

import (
	"context"
	"sort"
	"strings"
	"sync"

	"graphite/backend/internal/constants"
	apperrors "graphite/backend/pkg/errors"
	"graphite/backend/pkg/logger"

	"go.uber.org/zap"
)

// MemoryStore is a volatile Store. Construct it once at startup, hand it to
// the engines and Close it at shutdown; after Close every call fails with
// ErrStoreClosed.
type MemoryStore struct {
	mu     sync.RWMutex
	closed bool
	logger *zap.Logger

	events     map[string]Event
	eventOrder []string

	people      map[string]Person
	peopleOrder []string

	companies map[string]Company

	// personID -> employment edges in insertion order
	employment    map[string][]Employment
	employmentKey map[string]struct{}

	// eventID -> attendee ids in binding order
	attendance map[string][]string
	attending  map[string]map[string]struct{}

	acquaintances     []Acquaintance
	acquaintanceIndex map[Acquaintance]struct{}
	adjacency         map[string][]string

	portfolios map[string][]string
}

// NewMemoryStore creates an empty in-memory graph store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		logger:            logger.Named("memory_store"),
		events:            make(map[string]Event),
		people:            make(map[string]Person),
		companies:         make(map[string]Company),
		employment:        make(map[string][]Employment),
		employmentKey:     make(map[string]struct{}),
		attendance:        make(map[string][]string),
		attending:         make(map[string]map[string]struct{}),
		acquaintanceIndex: make(map[Acquaintance]struct{}),
		adjacency:         make(map[string][]string),
		portfolios:        make(map[string][]string),
	}
}

var _ Store = (*MemoryStore)(nil)

// ============================================================================
// Events
// ============================================================================

// UpsertEvent creates the event or updates its name and date
func (s *MemoryStore) UpsertEvent(ctx context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return apperrors.ErrStoreClosed
	}

	existing, ok := s.events[event.ID]
	if !ok {
		s.eventOrder = append(s.eventOrder, event.ID)
		existing = Event{ID: event.ID, Name: event.ID}
	}
	if event.Name != "" {
		existing.Name = event.Name
	}
	if event.Date != "" {
		existing.Date = event.Date
	}
	s.events[event.ID] = existing
	return nil
}

// GetEvent returns the event with its derived attendee count
func (s *MemoryStore) GetEvent(ctx context.Context, eventID string) (*Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, apperrors.ErrStoreClosed
	}

	event, ok := s.events[eventID]
	if !ok {
		return nil, apperrors.NewEventNotFound(eventID)
	}
	event.AttendeeCount = len(s.attendance[eventID])
	return &event, nil
}

// ListEvents returns all events in creation order
func (s *MemoryStore) ListEvents(ctx context.Context) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, apperrors.ErrStoreClosed
	}

	events := make([]Event, 0, len(s.eventOrder))
	for _, id := range s.eventOrder {
		event := s.events[id]
		event.AttendeeCount = len(s.attendance[id])
		events = append(events, event)
	}
	return events, nil
}

// DeleteEvent removes the event and its attendance edges. People stay.
func (s *MemoryStore) DeleteEvent(ctx context.Context, eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return apperrors.ErrStoreClosed
	}

	if _, ok := s.events[eventID]; !ok {
		return apperrors.NewEventNotFound(eventID)
	}
	delete(s.events, eventID)
	delete(s.attendance, eventID)
	delete(s.attending, eventID)
	for i, id := range s.eventOrder {
		if id == eventID {
			s.eventOrder = append(s.eventOrder[:i], s.eventOrder[i+1:]...)
			break
		}
	}
	return nil
}

// CountAttendees counts the attendance edges of an event
func (s *MemoryStore) CountAttendees(ctx context.Context, eventID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, apperrors.ErrStoreClosed
	}
	return len(s.attendance[eventID]), nil
}

// ============================================================================
// Entities and edges
// ============================================================================

// UpsertPerson creates or replaces a person
func (s *MemoryStore) UpsertPerson(ctx context.Context, person Person) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return apperrors.ErrStoreClosed
	}

	if _, ok := s.people[person.ID]; !ok {
		s.peopleOrder = append(s.peopleOrder, person.ID)
	}
	s.people[person.ID] = person
	return nil
}

// UpsertCompany creates the company if its key is new. An industry given
// later fills in a missing one; the first spelling of the name is kept.
func (s *MemoryStore) UpsertCompany(ctx context.Context, company Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return apperrors.ErrStoreClosed
	}
	s.upsertCompanyLocked(company)
	return nil
}

func (s *MemoryStore) upsertCompanyLocked(company Company) string {
	key := company.Key
	if key == "" {
		key = NormalizeCompany(company.Name)
	}
	existing, ok := s.companies[key]
	if !ok {
		s.companies[key] = Company{Key: key, Name: strings.TrimSpace(company.Name), Industry: company.Industry}
		return key
	}
	if existing.Industry == "" && company.Industry != "" {
		existing.Industry = company.Industry
		s.companies[key] = existing
	}
	return key
}

// UpsertEmployment adds an employment edge, creating the company on first reference
func (s *MemoryStore) UpsertEmployment(ctx context.Context, employment Employment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return apperrors.ErrStoreClosed
	}

	if _, ok := s.people[employment.PersonID]; !ok {
		return ErrMissingPerson{PersonID: employment.PersonID}
	}
	employment.CompanyKey = s.upsertCompanyLocked(Company{Key: employment.CompanyKey, Name: employment.Company})
	employment.Company = s.companies[employment.CompanyKey].Name

	key := employment.Key()
	if _, dup := s.employmentKey[key]; dup {
		return nil
	}
	s.employmentKey[key] = struct{}{}
	s.employment[employment.PersonID] = append(s.employment[employment.PersonID], employment)
	return nil
}

// UpsertAttendance binds a person to an event, creating the event if needed
func (s *MemoryStore) UpsertAttendance(ctx context.Context, personID, eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return apperrors.ErrStoreClosed
	}

	if _, ok := s.people[personID]; !ok {
		return ErrMissingPerson{PersonID: personID}
	}
	if _, ok := s.events[eventID]; !ok {
		s.events[eventID] = Event{ID: eventID, Name: eventID}
		s.eventOrder = append(s.eventOrder, eventID)
	}
	set, ok := s.attending[eventID]
	if !ok {
		set = make(map[string]struct{})
		s.attending[eventID] = set
	}
	if _, dup := set[personID]; dup {
		return nil
	}
	set[personID] = struct{}{}
	s.attendance[eventID] = append(s.attendance[eventID], personID)
	return nil
}

// UpsertAcquaintance connects two people. The pair is unordered.
func (s *MemoryStore) UpsertAcquaintance(ctx context.Context, personA, personB string) (bool, error) {
	if personA == personB {
		return false, ErrSelfAcquaintance{PersonID: personA}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, apperrors.ErrStoreClosed
	}

	for _, id := range []string{personA, personB} {
		if _, ok := s.people[id]; !ok {
			return false, ErrMissingPerson{PersonID: id}
		}
	}

	edge := NewAcquaintance(personA, personB)
	if _, dup := s.acquaintanceIndex[edge]; dup {
		return false, nil
	}
	s.acquaintanceIndex[edge] = struct{}{}
	s.acquaintances = append(s.acquaintances, edge)
	s.adjacency[edge.A] = append(s.adjacency[edge.A], edge.B)
	s.adjacency[edge.B] = append(s.adjacency[edge.B], edge.A)
	return true, nil
}

// ============================================================================
// Portfolios
// ============================================================================

// SetPortfolio replaces a viewer's portfolio
func (s *MemoryStore) SetPortfolio(ctx context.Context, viewerID string, companies []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return apperrors.ErrStoreClosed
	}

	p := NewPortfolio(viewerID, companies)
	for _, name := range p.Names() {
		s.upsertCompanyLocked(Company{Name: name})
	}
	s.portfolios[viewerID] = p.Names()
	return nil
}

// AddToPortfolio appends a company to a viewer's portfolio if absent
func (s *MemoryStore) AddToPortfolio(ctx context.Context, viewerID, company string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return apperrors.ErrStoreClosed
	}

	current := s.portfolios[viewerID]
	if NewPortfolio(viewerID, current).Contains(company) || NormalizeCompany(company) == "" {
		return nil
	}
	s.upsertCompanyLocked(Company{Name: company})
	s.portfolios[viewerID] = append(current, strings.TrimSpace(company))
	return nil
}

// ListPortfolio returns the viewer's companies, empty if none were set
func (s *MemoryStore) ListPortfolio(ctx context.Context, viewerID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, apperrors.ErrStoreClosed
	}

	out := make([]string, len(s.portfolios[viewerID]))
	copy(out, s.portfolios[viewerID])
	return out, nil
}

// ============================================================================
// Reads
// ============================================================================

// GetPerson returns a person with history and acquaintances
func (s *MemoryStore) GetPerson(ctx context.Context, personID string) (*PersonDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, apperrors.ErrStoreClosed
	}

	person, ok := s.people[personID]
	if !ok {
		return nil, apperrors.NewPersonNotFound(personID)
	}

	detail := &PersonDetail{
		Person:      person,
		WorkHistory: []WorkHistoryEntry{},
		Connections: []Person{},
	}
	for _, e := range s.employment[personID] {
		detail.WorkHistory = append(detail.WorkHistory, WorkHistoryEntry{
			Company:   e.Company,
			Title:     e.Title,
			From:      e.From,
			To:        e.To,
			IsCurrent: e.IsCurrent(),
		})
	}
	for _, id := range s.adjacency[personID] {
		if other, ok := s.people[id]; ok {
			detail.Connections = append(detail.Connections, other)
		}
	}
	return detail, nil
}

// ListAttendees returns the attendees of an event in binding order
func (s *MemoryStore) ListAttendees(ctx context.Context, eventID string) ([]Attendee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, apperrors.ErrStoreClosed
	}

	ids := s.attendance[eventID]
	attendees := make([]Attendee, 0, len(ids))
	for _, id := range ids {
		if a, ok := s.attendeeLocked(id); ok {
			attendees = append(attendees, a)
		}
	}
	return attendees, nil
}

// ListPeopleAtCompanies returns everyone with any employment at one of the companies
func (s *MemoryStore) ListPeopleAtCompanies(ctx context.Context, companyKeys []string) ([]Attendee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, apperrors.ErrStoreClosed
	}

	wanted := make(map[string]struct{}, len(companyKeys))
	for _, k := range companyKeys {
		wanted[k] = struct{}{}
	}

	var out []Attendee
	for _, id := range s.peopleOrder {
		for _, e := range s.employment[id] {
			if _, ok := wanted[e.CompanyKey]; ok {
				if a, ok := s.attendeeLocked(id); ok {
					out = append(out, a)
				}
				break
			}
		}
	}
	return out, nil
}

func (s *MemoryStore) attendeeLocked(personID string) (Attendee, bool) {
	person, ok := s.people[personID]
	if !ok {
		return Attendee{}, false
	}
	history := make([]Employment, len(s.employment[personID]))
	copy(history, s.employment[personID])
	return Attendee{Person: person, History: history}, true
}

// ListConnectionsOf returns the ids of a person's acquaintances
func (s *MemoryStore) ListConnectionsOf(ctx context.Context, personID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, apperrors.ErrStoreClosed
	}

	out := make([]string, len(s.adjacency[personID]))
	copy(out, s.adjacency[personID])
	return out, nil
}

// GetCompanies returns the known companies among the given keys
func (s *MemoryStore) GetCompanies(ctx context.Context, companyKeys []string) ([]Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, apperrors.ErrStoreClosed
	}

	out := make([]Company, 0, len(companyKeys))
	for _, k := range companyKeys {
		if c, ok := s.companies[k]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

// SearchPeople matches query against name, title and current company.
// An empty eventID searches everyone.
func (s *MemoryStore) SearchPeople(ctx context.Context, eventID, query string, limit int) ([]Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, apperrors.ErrStoreClosed
	}

	if limit < 1 {
		limit = constants.DefaultSearchLimit
	}
	ids := s.peopleOrder
	if eventID != "" {
		ids = s.attendance[eventID]
	}

	var results []Person
	for _, id := range ids {
		person, ok := s.people[id]
		if !ok || !MatchesQuery(person, query) {
			continue
		}
		results = append(results, person)
		if len(results) >= limit {
			break
		}
	}
	return results, nil
}

// Snapshot copies the whole graph
func (s *MemoryStore) Snapshot(ctx context.Context) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, apperrors.ErrStoreClosed
	}

	snap := &Snapshot{}
	for _, id := range s.eventOrder {
		event := s.events[id]
		event.AttendeeCount = len(s.attendance[id])
		snap.Events = append(snap.Events, event)
		for _, pid := range s.attendance[id] {
			snap.Attendances = append(snap.Attendances, Attendance{PersonID: pid, EventID: id})
		}
	}
	for _, id := range s.peopleOrder {
		snap.People = append(snap.People, s.people[id])
		snap.Employments = append(snap.Employments, s.employment[id]...)
	}
	keys := make([]string, 0, len(s.companies))
	for k := range s.companies {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		snap.Companies = append(snap.Companies, s.companies[k])
	}
	snap.Acquaintances = append(snap.Acquaintances, s.acquaintances...)
	return snap, nil
}

// ============================================================================
// Lifecycle
// ============================================================================

// Ping reports whether the store is usable
func (s *MemoryStore) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return apperrors.ErrStoreClosed
	}
	return nil
}

// Close tears the store down and drops its contents
func (s *MemoryStore) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.logger.Info("Memory store closed",
		zap.Int("people", len(s.people)),
		zap.Int("events", len(s.events)),
		zap.Int("acquaintances", len(s.acquaintances)),
	)
	s.people = nil
	s.events = nil
	s.employment = nil
	s.attendance = nil
	s.attending = nil
	s.adjacency = nil
	s.acquaintanceIndex = nil
	return nil
}
