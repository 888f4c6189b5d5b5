package graph

import (
	"context"
	"fmt"
)

// EventView is the slice of the graph one event's consumers need: its
// attendees, the acquaintance edges among them and the companies they name.
type EventView struct {
	EventID     string
	Attendees   []Attendee
	Connections []Acquaintance
	Companies   map[string]Company
}

// Neighbors returns the acquaintances of personID within the view, in the
// order the edges were loaded
func (v *EventView) Neighbors(personID string) []string {
	var out []string
	for _, c := range v.Connections {
		if other := c.Other(personID); other != "" {
			out = append(out, other)
		}
	}
	return out
}

// LoadEventView reads an event's attendees and the acquaintance edges that
// have both ends among them
func LoadEventView(ctx context.Context, store Store, eventID string) (*EventView, error) {
	attendees, err := store.ListAttendees(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendees: %w", err)
	}

	view := &EventView{
		EventID:   eventID,
		Attendees: attendees,
		Companies: make(map[string]Company),
	}

	present := make(map[string]struct{}, len(attendees))
	for _, a := range attendees {
		present[a.ID] = struct{}{}
	}

	seen := make(map[Acquaintance]struct{})
	for _, a := range attendees {
		ids, err := store.ListConnectionsOf(ctx, a.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list connections of %s: %w", a.ID, err)
		}
		for _, other := range ids {
			if _, ok := present[other]; !ok {
				continue
			}
			edge := NewAcquaintance(a.ID, other)
			if _, dup := seen[edge]; dup {
				continue
			}
			seen[edge] = struct{}{}
			view.Connections = append(view.Connections, edge)
		}
	}

	keys := view.companyKeys()
	companies, err := store.GetCompanies(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("failed to load companies: %w", err)
	}
	for _, c := range companies {
		view.Companies[c.Key] = c
	}
	return view, nil
}

func (v *EventView) companyKeys() []string {
	seen := make(map[string]struct{})
	var keys []string
	add := func(name string) {
		key := NormalizeCompany(name)
		if key == "" {
			return
		}
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	for _, a := range v.Attendees {
		add(a.CurrentCompany)
		for _, e := range a.PastEmployment() {
			add(e.Company)
		}
	}
	return keys
}

// ProjectEventGraph turns a view into the node-link graph handed to
// consumers. Person nodes come first in attendee order, then company nodes
// in first-reference order, then WORKS_AT/WORKED_AT links and finally
// CONNECTED_TO links.
func ProjectEventGraph(view *EventView, portfolio Portfolio) GraphData {
	data := GraphData{Nodes: []GraphNode{}, Links: []GraphLink{}}

	type companyRef struct {
		name string
		key  string
	}
	var companies []companyRef
	companySeen := make(map[string]struct{})
	addCompany := func(name string) string {
		key := NormalizeCompany(name)
		if _, ok := companySeen[key]; !ok {
			companySeen[key] = struct{}{}
			companies = append(companies, companyRef{name: name, key: key})
		}
		return CompanyNodeID(name)
	}

	linkSeen := make(map[GraphLink]struct{})
	addLink := func(link GraphLink) {
		if _, ok := linkSeen[link]; ok {
			return
		}
		linkSeen[link] = struct{}{}
		data.Links = append(data.Links, link)
	}

	for _, a := range view.Attendees {
		data.Nodes = append(data.Nodes, GraphNode{
			ID:    a.ID,
			Name:  a.Name,
			Type:  NodePerson,
			Title: a.Title,
		})

		if NormalizeCompany(a.CurrentCompany) != "" {
			addLink(GraphLink{Source: a.ID, Target: addCompany(a.CurrentCompany), Type: LinkWorksAt})
		}
		for _, e := range a.PastEmployment() {
			if NormalizeCompany(e.Company) == "" {
				continue
			}
			addLink(GraphLink{Source: a.ID, Target: addCompany(e.Company), Type: LinkWorkedAt})
		}
	}

	for _, c := range companies {
		node := GraphNode{
			ID:       CompanyNodeID(c.name),
			Name:     c.name,
			Type:     NodeCompany,
			IsTarget: portfolio.Contains(c.name),
		}
		if stored, ok := view.Companies[c.key]; ok {
			node.Name = stored.Name
			node.Industry = stored.Industry
		}
		data.Nodes = append(data.Nodes, node)
	}

	for _, c := range view.Connections {
		addLink(GraphLink{Source: c.A, Target: c.B, Type: LinkConnectedTo})
	}

	return data
}

// GetEventGraph loads an event and projects it for a viewer
func GetEventGraph(ctx context.Context, store Store, eventID, viewerID string) (GraphData, error) {
	view, err := LoadEventView(ctx, store, eventID)
	if err != nil {
		return GraphData{}, err
	}
	names, err := store.ListPortfolio(ctx, viewerID)
	if err != nil {
		return GraphData{}, fmt.Errorf("failed to load portfolio: %w", err)
	}
	return ProjectEventGraph(view, NewPortfolio(viewerID, names)), nil
}
