package graph

import "graphite/backend/internal/constants"

// ============================================================================
// Graph Entities
// ============================================================================

// Person is an attendee. ID is an opaque generated identifier; two people
// with the same display name are never merged.
type Person struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Title          string `json:"title"`
	CurrentCompany string `json:"currentCompany"`
	ProfileURL     string `json:"linkedinUrl,omitempty"`
}

// Company is keyed by its normalized name. Name keeps the first-seen spelling.
type Company struct {
	Key      string `json:"key"`
	Name     string `json:"name"`
	Industry string `json:"industry,omitempty"`
}

// Event is something people attend. AttendeeCount is always derived from
// attendance edges when read back from a store.
type Event struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Date          string `json:"date"`
	AttendeeCount int    `json:"attendeeCount"`
}

// Employment links a person to a company. An empty To means current.
type Employment struct {
	PersonID   string `json:"personId,omitempty"`
	CompanyKey string `json:"companyKey,omitempty"`
	Company    string `json:"company"`
	Title      string `json:"title"`
	From       string `json:"from"`
	To         string `json:"to,omitempty"`
}

// IsCurrent reports whether the employment has no end period
func (e Employment) IsCurrent() bool {
	return e.To == ""
}

// Key identifies the edge for merge purposes
func (e Employment) Key() string {
	return e.PersonID + "|" + e.CompanyKey + "|" + e.From + "|" + e.To
}

// Acquaintance is an undirected person-to-person edge. A is always the
// smaller id once built through NewAcquaintance.
type Acquaintance struct {
	A string `json:"a"`
	B string `json:"b"`
}

// NewAcquaintance orders the pair so that (x, y) and (y, x) compare equal
func NewAcquaintance(x, y string) Acquaintance {
	if y < x {
		x, y = y, x
	}
	return Acquaintance{A: x, B: y}
}

// Other returns the opposite end of the edge, or "" if id is not an endpoint
func (a Acquaintance) Other(id string) string {
	switch id {
	case a.A:
		return a.B
	case a.B:
		return a.A
	}
	return ""
}

// Attendance binds a person to an event
type Attendance struct {
	PersonID string `json:"personId"`
	EventID  string `json:"eventId"`
}

// Attendee is a person together with their employment history
type Attendee struct {
	Person
	History []Employment `json:"workHistory"`
}

// PastEmployment returns the ended entries of the history
func (a Attendee) PastEmployment() []Employment {
	var past []Employment
	for _, e := range a.History {
		if !e.IsCurrent() {
			past = append(past, e)
		}
	}
	return past
}

// WorkHistoryEntry is the read-side view of an employment edge
type WorkHistoryEntry struct {
	Company   string `json:"company"`
	Title     string `json:"title"`
	From      string `json:"from"`
	To        string `json:"to,omitempty"`
	IsCurrent bool   `json:"isCurrent"`
}

// PersonDetail is a person with their history and direct acquaintances
type PersonDetail struct {
	Person
	WorkHistory []WorkHistoryEntry `json:"workHistory"`
	Connections []Person           `json:"connections"`
}

// Snapshot is a full copy of the graph
type Snapshot struct {
	Events        []Event        `json:"events"`
	People        []Person       `json:"people"`
	Companies     []Company      `json:"companies"`
	Employments   []Employment   `json:"employments"`
	Acquaintances []Acquaintance `json:"acquaintances"`
	Attendances   []Attendance   `json:"attendances"`
}

// ============================================================================
// Exchanged Graph
// ============================================================================

// NodeType tags a node in an exchanged graph
type NodeType string

const (
	NodePerson  NodeType = "person"
	NodeCompany NodeType = "company"
)

// LinkType tags a link in an exchanged graph
type LinkType string

const (
	LinkWorksAt     LinkType = constants.RelWorksAt
	LinkWorkedAt    LinkType = constants.RelWorkedAt
	LinkConnectedTo LinkType = constants.RelConnectedTo
)

// GraphNode is a node of the graph handed to consumers
type GraphNode struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Type     NodeType `json:"type"`
	Title    string   `json:"title,omitempty"`
	IsTarget bool     `json:"isTarget,omitempty"`
	Industry string   `json:"industry,omitempty"`
}

// GraphLink is a link of the graph handed to consumers
type GraphLink struct {
	Source string   `json:"source"`
	Target string   `json:"target"`
	Type   LinkType `json:"type"`
}

// GraphData is the node-link graph of one event as seen by one viewer
type GraphData struct {
	Nodes []GraphNode `json:"nodes"`
	Links []GraphLink `json:"links"`
}

// CompanyNodeID returns the exchanged node id of a company
func CompanyNodeID(name string) string {
	return constants.CompanyNodePrefix + NormalizeCompany(name)
}
