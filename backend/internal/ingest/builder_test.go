package ingest

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"graphite/backend/internal/graph"
	"graphite/backend/pkg/config"
	apperrors "graphite/backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBuilder(store graph.Store, scope string) *Builder {
	b := NewBuilder(store, scope)
	n := 0
	b.newID = func() (string, error) {
		n++
		return fmt.Sprintf("person-%03d", n), nil
	}
	return b
}

func roster() []Record {
	return []Record{
		{Name: "Alex Rivera", Title: "Engineer", CurrentCompany: "Stripe"},
		{Name: "Jordan Lee", Title: "PM", CurrentCompany: "Acme", WorkHistory: WorkHistory{Raw: "Acme:PM:2022,Stripe:PM:2019:2022"}},
		{Name: "Sam Park", CurrentCompany: "Figma"},
		{Name: "   "},
	}
}

func TestBuildGraph_CreatesOnePersonPerValidRecord(t *testing.T) {
	ctx := context.Background()
	store := graph.NewMemoryStore()
	b := newTestBuilder(store, config.ConnectScopeFull)

	result, err := b.BuildGraph(ctx, "event-1", roster())
	require.NoError(t, err)

	assert.Equal(t, 3, result.Added)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 3, result.AttendeeCount)
	assert.Equal(t, []string{"person-001", "person-002", "person-003"}, result.PersonIDs)

	snap, err := store.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.People, 3)

	event, err := store.GetEvent(ctx, "event-1")
	require.NoError(t, err)
	assert.Equal(t, 3, event.AttendeeCount)
}

func TestBuildGraph_SharedCompanyConnects(t *testing.T) {
	ctx := context.Background()
	store := graph.NewMemoryStore()
	b := newTestBuilder(store, config.ConnectScopeFull)

	result, err := b.BuildGraph(ctx, "event-1", roster())
	require.NoError(t, err)
	assert.Equal(t, 1, result.ConnectionsCreated)

	// Alex and Jordan share Stripe; Sam shares nothing
	ids, err := store.ListConnectionsOf(ctx, "person-001")
	require.NoError(t, err)
	assert.Equal(t, []string{"person-002"}, ids)

	ids, err = store.ListConnectionsOf(ctx, "person-003")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestBuildGraph_ReingestionIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := graph.NewMemoryStore()
	b := newTestBuilder(store, config.ConnectScopeFull)

	_, err := b.BuildGraph(ctx, "event-1", roster())
	require.NoError(t, err)
	first, err := store.Snapshot(ctx)
	require.NoError(t, err)

	result, err := b.BuildGraph(ctx, "event-1", roster())
	require.NoError(t, err)
	assert.Equal(t, 0, result.ConnectionsCreated)
	assert.Equal(t, 3, result.AttendeeCount)

	second, err := store.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, second.People, len(first.People))
	assert.Len(t, second.Acquaintances, len(first.Acquaintances))
	assert.Len(t, second.Employments, len(first.Employments))
}

func TestBuildGraph_DuplicateNamesStayDistinct(t *testing.T) {
	ctx := context.Background()
	store := graph.NewMemoryStore()
	b := newTestBuilder(store, config.ConnectScopeBatch)

	records := []Record{
		{Name: "Chris Wong", CurrentCompany: "Notion"},
		{Name: "Chris Wong", CurrentCompany: "Notion"},
	}
	result, err := b.BuildGraph(ctx, "event-1", records)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Added)
	assert.Equal(t, 2, result.AttendeeCount)
}

func TestBuildGraph_ProfileURLIdentity(t *testing.T) {
	ctx := context.Background()
	store := graph.NewMemoryStore()
	b := newTestBuilder(store, config.ConnectScopeFull)

	_, err := b.BuildGraph(ctx, "event-1", []Record{{Name: "Alex Rivera", CurrentCompany: "Stripe", ProfileURL: "https://linkedin.com/in/alex"}})
	require.NoError(t, err)

	// Changed company, same profile: same person
	result, err := b.BuildGraph(ctx, "event-1", []Record{{Name: "Alex Rivera", CurrentCompany: "Plaid", ProfileURL: "https://linkedin.com/in/alex/"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"person-001"}, result.PersonIDs)
	assert.Equal(t, 1, result.AttendeeCount)

	detail, err := store.GetPerson(ctx, "person-001")
	require.NoError(t, err)
	assert.Equal(t, "Plaid", detail.CurrentCompany)
}

func TestBuildGraph_ScopeFullReachesEarlierRosters(t *testing.T) {
	ctx := context.Background()

	for _, tt := range []struct {
		scope string
		want  int
	}{
		{config.ConnectScopeFull, 1},
		{config.ConnectScopeBatch, 0},
	} {
		t.Run(tt.scope, func(t *testing.T) {
			store := graph.NewMemoryStore()
			b := newTestBuilder(store, tt.scope)

			_, err := b.BuildGraph(ctx, "event-1", []Record{{Name: "Early", CurrentCompany: "Vercel"}})
			require.NoError(t, err)
			result, err := b.BuildGraph(ctx, "event-2", []Record{{Name: "Late", WorkHistory: WorkHistory{Raw: "Vercel:Eng:2019:2021"}}})
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.ConnectionsCreated)
		})
	}
}

func TestBuildGraph_EmploymentEdges(t *testing.T) {
	ctx := context.Background()
	store := graph.NewMemoryStore()
	b := newTestBuilder(store, config.ConnectScopeFull)

	_, err := b.BuildGraph(ctx, "event-1", []Record{
		{Name: "Jordan Lee", Title: "PM", WorkHistory: WorkHistory{Raw: "Acme:PM:2022,Stripe:PM:2019:2022"}},
	})
	require.NoError(t, err)

	attendees, err := store.ListAttendees(ctx, "event-1")
	require.NoError(t, err)
	require.Len(t, attendees, 1)
	assert.Equal(t, "Acme", attendees[0].CurrentCompany, "current company derived from history")
	require.Len(t, attendees[0].History, 2)
	past := attendees[0].PastEmployment()
	require.Len(t, past, 1)
	assert.Equal(t, "stripe", past[0].CompanyKey)
}

func TestBuildGraph_SyntheticCurrentEntry(t *testing.T) {
	p, ok := prepare(Record{Name: "Sam", Title: "Designer", CurrentCompany: "Figma"})
	require.True(t, ok)
	require.Len(t, p.history, 1)
	assert.Equal(t, graph.Employment{CompanyKey: "figma", Company: "Figma", Title: "Designer", From: "2020"}, p.history[0])
}

func TestBuildGraph_MalformedHistoryKeepsRecord(t *testing.T) {
	ctx := context.Background()
	store := graph.NewMemoryStore()
	b := newTestBuilder(store, config.ConnectScopeFull)

	result, err := b.BuildGraph(ctx, "event-1", []Record{
		{Name: "Broken", WorkHistory: WorkHistory{Raw: `[{"company":`}},
		{Name: "Fine", CurrentCompany: "Linear"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Added)
}

func TestBuildGraph_RejectsNilRosterBeforeWriting(t *testing.T) {
	ctx := context.Background()
	store := graph.NewMemoryStore()
	b := newTestBuilder(store, config.ConnectScopeFull)

	_, err := b.BuildGraph(ctx, "event-1", nil)
	var invalid *apperrors.ErrInvalidRoster
	require.ErrorAs(t, err, &invalid)

	events, err := store.ListEvents(ctx)
	require.NoError(t, err)
	assert.Empty(t, events)

	// An empty list is valid and still creates the event
	result, err := b.BuildGraph(ctx, "event-1", []Record{})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Added)
}

func TestBuildGraph_StoreClosed(t *testing.T) {
	ctx := context.Background()
	store := graph.NewMemoryStore()
	require.NoError(t, store.Close(ctx))
	b := newTestBuilder(store, config.ConnectScopeFull)

	_, err := b.BuildGraph(ctx, "event-1", roster())
	assert.True(t, apperrors.IsUnavailable(err))
}

func TestNewPersonID(t *testing.T) {
	id, err := newPersonID()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(id, "person-"))
	assert.Len(t, id, len("person-")+8)
}
