package ingest

import (
	"strings"

	"graphite/backend/internal/graph"
)

// identityMatcher maps re-ingested records onto attendees the event already
// has, so ingesting the same roster twice reuses the same people. Each
// existing attendee is handed out at most once.
type identityMatcher struct {
	byURL  map[string][]string
	byName map[string][]string
	used   map[string]struct{}
}

func newIdentityMatcher(existing []graph.Attendee) *identityMatcher {
	m := &identityMatcher{
		byURL:  make(map[string][]string),
		byName: make(map[string][]string),
		used:   make(map[string]struct{}),
	}
	for _, a := range existing {
		if url := profileKey(a.ProfileURL); url != "" {
			m.byURL[url] = append(m.byURL[url], a.ID)
		}
		k := nameKey(a.Person)
		m.byName[k] = append(m.byName[k], a.ID)
	}
	return m
}

// match returns the id of an unused attendee with the same profile URL or,
// when the record has none, the same name and current company
func (m *identityMatcher) match(p graph.Person) (string, bool) {
	if url := profileKey(p.ProfileURL); url != "" {
		return m.take(m.byURL[url])
	}
	return m.take(m.byName[nameKey(p)])
}

func (m *identityMatcher) take(candidates []string) (string, bool) {
	for _, id := range candidates {
		if _, ok := m.used[id]; ok {
			continue
		}
		m.used[id] = struct{}{}
		return id, true
	}
	return "", false
}

func profileKey(url string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(url)), "/")
}

func nameKey(p graph.Person) string {
	return graph.NormalizeName(p.Name) + "|" + graph.NormalizeCompany(p.CurrentCompany)
}
