package graph

import (
	"context"
	"fmt"
)

// Store holds the attendee graph. Writes have merge semantics: repeating a
// write with the same arguments leaves the graph unchanged.
type Store interface {
	// Events
	UpsertEvent(ctx context.Context, event Event) error
	GetEvent(ctx context.Context, eventID string) (*Event, error)
	ListEvents(ctx context.Context) ([]Event, error)
	DeleteEvent(ctx context.Context, eventID string) error
	CountAttendees(ctx context.Context, eventID string) (int, error)

	// Entities and edges
	UpsertPerson(ctx context.Context, person Person) error
	UpsertCompany(ctx context.Context, company Company) error
	UpsertEmployment(ctx context.Context, employment Employment) error
	UpsertAttendance(ctx context.Context, personID, eventID string) error
	// UpsertAcquaintance reports whether a new edge was created
	UpsertAcquaintance(ctx context.Context, personA, personB string) (bool, error)

	// Portfolios
	SetPortfolio(ctx context.Context, viewerID string, companies []string) error
	AddToPortfolio(ctx context.Context, viewerID, company string) error
	ListPortfolio(ctx context.Context, viewerID string) ([]string, error)

	// Reads
	GetPerson(ctx context.Context, personID string) (*PersonDetail, error)
	ListAttendees(ctx context.Context, eventID string) ([]Attendee, error)
	ListPeopleAtCompanies(ctx context.Context, companyKeys []string) ([]Attendee, error)
	ListConnectionsOf(ctx context.Context, personID string) ([]string, error)
	GetCompanies(ctx context.Context, companyKeys []string) ([]Company, error)
	SearchPeople(ctx context.Context, eventID, query string, limit int) ([]Person, error)
	Snapshot(ctx context.Context) (*Snapshot, error)

	// Lifecycle
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Errors

// ErrSelfAcquaintance is returned when asked to connect a person to themselves
type ErrSelfAcquaintance struct {
	PersonID string
}

func (e ErrSelfAcquaintance) Error() string {
	return fmt.Sprintf("cannot connect person to themselves: %s", e.PersonID)
}

// ErrMissingPerson is returned when an edge references an unknown person
type ErrMissingPerson struct {
	PersonID string
}

func (e ErrMissingPerson) Error() string {
	return fmt.Sprintf("person not found: %s", e.PersonID)
}
