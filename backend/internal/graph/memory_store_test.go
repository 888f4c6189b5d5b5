package graph

import (
	"context"
	"testing"

	apperrors "graphite/backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedPeople(t *testing.T, s Store, ids ...string) {
	t.Helper()
	ctx := context.Background()
	for _, id := range ids {
		require.NoError(t, s.UpsertPerson(ctx, Person{ID: id, Name: "Person " + id}))
	}
}

func TestMemoryStore_AcquaintanceDeduplicated(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	seedPeople(t, s, "p-1", "p-2")

	created, err := s.UpsertAcquaintance(ctx, "p-1", "p-2")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = s.UpsertAcquaintance(ctx, "p-2", "p-1")
	require.NoError(t, err)
	assert.False(t, created, "reversed pair must not create a second edge")

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Acquaintances, 1)

	ids, err := s.ListConnectionsOf(ctx, "p-2")
	require.NoError(t, err)
	assert.Equal(t, []string{"p-1"}, ids)
}

func TestMemoryStore_AcquaintanceRejectsSelf(t *testing.T) {
	s := NewMemoryStore()
	seedPeople(t, s, "p-1")

	_, err := s.UpsertAcquaintance(context.Background(), "p-1", "p-1")
	assert.ErrorAs(t, err, &ErrSelfAcquaintance{})
}

func TestMemoryStore_EmploymentUpsertsCompany(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	seedPeople(t, s, "p-1", "p-2")

	require.NoError(t, s.UpsertEmployment(ctx, Employment{PersonID: "p-1", Company: "Stripe", From: "2020"}))
	require.NoError(t, s.UpsertEmployment(ctx, Employment{PersonID: "p-2", Company: "  stripe ", From: "2019", To: "2021"}))
	// repeated write is a no-op
	require.NoError(t, s.UpsertEmployment(ctx, Employment{PersonID: "p-1", Company: "Stripe", From: "2020"}))

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Companies, 1)
	assert.Equal(t, "stripe", snap.Companies[0].Key)
	assert.Equal(t, "Stripe", snap.Companies[0].Name)
	assert.Len(t, snap.Employments, 2)

	err = s.UpsertEmployment(ctx, Employment{PersonID: "ghost", Company: "Stripe"})
	assert.ErrorAs(t, err, &ErrMissingPerson{})
}

func TestMemoryStore_AttendeeCountDerived(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	seedPeople(t, s, "p-1", "p-2")

	require.NoError(t, s.UpsertEvent(ctx, Event{ID: "event-1", Name: "Demo Day", AttendeeCount: 999}))
	require.NoError(t, s.UpsertAttendance(ctx, "p-1", "event-1"))
	require.NoError(t, s.UpsertAttendance(ctx, "p-2", "event-1"))
	require.NoError(t, s.UpsertAttendance(ctx, "p-1", "event-1"))

	event, err := s.GetEvent(ctx, "event-1")
	require.NoError(t, err)
	assert.Equal(t, 2, event.AttendeeCount, "derived count wins over the supplied counter")

	attendees, err := s.ListAttendees(ctx, "event-1")
	require.NoError(t, err)
	require.Len(t, attendees, 2)
	assert.Equal(t, "p-1", attendees[0].ID)
	assert.Equal(t, "p-2", attendees[1].ID)
}

func TestMemoryStore_EventLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.GetEvent(ctx, "missing")
	var notFound *apperrors.ErrEventNotFound
	assert.ErrorAs(t, err, &notFound)

	require.NoError(t, s.UpsertEvent(ctx, Event{ID: "e1", Name: "One", Date: "Jan 1"}))
	require.NoError(t, s.UpsertEvent(ctx, Event{ID: "e2", Name: "Two"}))
	require.NoError(t, s.UpsertEvent(ctx, Event{ID: "e1", Date: "Jan 2"}))

	events, err := s.ListEvents(ctx)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "One", events[0].Name)
	assert.Equal(t, "Jan 2", events[0].Date)

	require.NoError(t, s.DeleteEvent(ctx, "e1"))
	events, err = s.ListEvents(ctx)
	require.NoError(t, err)
	assert.Len(t, events, 1)
	assert.ErrorAs(t, s.DeleteEvent(ctx, "e1"), &notFound)
}

func TestMemoryStore_Portfolio(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	names, err := s.ListPortfolio(ctx, "vc-1")
	require.NoError(t, err)
	assert.Empty(t, names)

	require.NoError(t, s.SetPortfolio(ctx, "vc-1", []string{"Stripe", "stripe", "", "Figma"}))
	require.NoError(t, s.AddToPortfolio(ctx, "vc-1", "Notion"))
	require.NoError(t, s.AddToPortfolio(ctx, "vc-1", "FIGMA"))

	names, err = s.ListPortfolio(ctx, "vc-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Stripe", "Figma", "Notion"}, names)
}

func TestMemoryStore_GetPerson(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.UpsertPerson(ctx, Person{ID: "p-1", Name: "Alex Rivera", CurrentCompany: "Stripe"}))
	require.NoError(t, s.UpsertPerson(ctx, Person{ID: "p-2", Name: "Taylor Kim", CurrentCompany: "Vercel"}))
	require.NoError(t, s.UpsertEmployment(ctx, Employment{PersonID: "p-1", Company: "Stripe", From: "2022"}))
	require.NoError(t, s.UpsertEmployment(ctx, Employment{PersonID: "p-1", Company: "Google", From: "2019", To: "2022"}))
	_, err := s.UpsertAcquaintance(ctx, "p-1", "p-2")
	require.NoError(t, err)

	detail, err := s.GetPerson(ctx, "p-1")
	require.NoError(t, err)
	require.Len(t, detail.WorkHistory, 2)
	assert.True(t, detail.WorkHistory[0].IsCurrent)
	assert.False(t, detail.WorkHistory[1].IsCurrent)
	require.Len(t, detail.Connections, 1)
	assert.Equal(t, "Taylor Kim", detail.Connections[0].Name)

	_, err = s.GetPerson(ctx, "nobody")
	var notFound *apperrors.ErrPersonNotFound
	assert.ErrorAs(t, err, &notFound)
}

func TestMemoryStore_SearchPeople(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.UpsertPerson(ctx, Person{ID: "p-1", Name: "Alex Rivera", Title: "Engineer", CurrentCompany: "Stripe"}))
	require.NoError(t, s.UpsertPerson(ctx, Person{ID: "p-2", Name: "Jordan Lee", Title: "PM", CurrentCompany: "Figma"}))
	require.NoError(t, s.UpsertAttendance(ctx, "p-2", "event-1"))

	results, err := s.SearchPeople(ctx, "", "stripe", 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "p-1", results[0].ID)

	results, err = s.SearchPeople(ctx, "event-1", "alex", 10)
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = s.SearchPeople(ctx, "", "  ", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestMemoryStore_ClosedReportsUnavailable(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Close(ctx))

	_, err := s.ListAttendees(ctx, "event-1")
	assert.True(t, apperrors.IsUnavailable(err))
	assert.Error(t, s.Ping(ctx))
}
