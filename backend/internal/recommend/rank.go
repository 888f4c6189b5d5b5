package recommend

import (
	"fmt"
	"sort"
	"strings"

	"graphite/backend/internal/graph"
)

// ReasonType classifies why someone is worth meeting
type ReasonType string

const (
	ReasonWorksAtTarget     ReasonType = "works_at_target"
	ReasonFormerTarget      ReasonType = "former_target"
	ReasonConnectedToTarget ReasonType = "connected_to_target"
)

// rank orders reason types; lower comes first
func (r ReasonType) rank() int {
	switch r {
	case ReasonWorksAtTarget:
		return 0
	case ReasonFormerTarget:
		return 1
	default:
		return 2
	}
}

// Recommendation names one attendee and the portfolio company behind it
type Recommendation struct {
	Person          graph.Person `json:"person"`
	Reason          string       `json:"reason"`
	ReasonType      ReasonType   `json:"reasonType"`
	TargetCompany   string       `json:"targetCompany"`
	ConnectedPerson string       `json:"connectedPerson,omitempty"`
}

// Rank classifies each attendee of the view into at most one category and
// orders the result by category, keeping attendee order within one.
//
// When several former employers qualify, the one with the earliest start
// wins, then the smallest company key. When several acquaintances qualify,
// the smallest company key wins, then the acquaintance's name, then id.
func Rank(view *graph.EventView, portfolio graph.Portfolio) []Recommendation {
	recs := []Recommendation{}
	if portfolio.Empty() {
		return recs
	}

	byID := make(map[string]graph.Attendee, len(view.Attendees))
	for _, a := range view.Attendees {
		byID[a.ID] = a
	}

	for _, a := range view.Attendees {
		if rec, ok := worksAtTarget(a, portfolio); ok {
			recs = append(recs, rec)
			continue
		}
		if rec, ok := formerTarget(a, portfolio); ok {
			recs = append(recs, rec)
			continue
		}
		if rec, ok := connectedToTarget(a, view, byID, portfolio); ok {
			recs = append(recs, rec)
		}
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].ReasonType.rank() < recs[j].ReasonType.rank()
	})
	return recs
}

func worksAtTarget(a graph.Attendee, portfolio graph.Portfolio) (Recommendation, bool) {
	if !portfolio.Contains(a.CurrentCompany) {
		return Recommendation{}, false
	}
	return Recommendation{
		Person:        a.Person,
		Reason:        "Works at " + a.CurrentCompany,
		ReasonType:    ReasonWorksAtTarget,
		TargetCompany: a.CurrentCompany,
	}, true
}

func formerTarget(a graph.Attendee, portfolio graph.Portfolio) (Recommendation, bool) {
	var best *graph.Employment
	for _, e := range a.PastEmployment() {
		if !portfolio.Contains(e.Company) {
			continue
		}
		if best == nil || earlier(e, *best) {
			best = &e
		}
	}
	if best == nil {
		return Recommendation{}, false
	}
	return Recommendation{
		Person:        a.Person,
		Reason:        "Former " + best.Company,
		ReasonType:    ReasonFormerTarget,
		TargetCompany: best.Company,
	}, true
}

func earlier(x, y graph.Employment) bool {
	fx, fy := strings.TrimSpace(x.From), strings.TrimSpace(y.From)
	if fx != fy {
		return fx < fy
	}
	return graph.NormalizeCompany(x.Company) < graph.NormalizeCompany(y.Company)
}

func connectedToTarget(a graph.Attendee, view *graph.EventView, byID map[string]graph.Attendee, portfolio graph.Portfolio) (Recommendation, bool) {
	var best *graph.Attendee
	for _, id := range view.Neighbors(a.ID) {
		other, ok := byID[id]
		if !ok || !portfolio.Contains(other.CurrentCompany) {
			continue
		}
		if best == nil || preferred(other, *best) {
			best = &other
		}
	}
	if best == nil {
		return Recommendation{}, false
	}
	return Recommendation{
		Person:          a.Person,
		Reason:          fmt.Sprintf("Connected to %s at %s", best.Name, best.CurrentCompany),
		ReasonType:      ReasonConnectedToTarget,
		TargetCompany:   best.CurrentCompany,
		ConnectedPerson: best.Name,
	}, true
}

func preferred(x, y graph.Attendee) bool {
	kx, ky := graph.NormalizeCompany(x.CurrentCompany), graph.NormalizeCompany(y.CurrentCompany)
	if kx != ky {
		return kx < ky
	}
	if x.Name != y.Name {
		return x.Name < y.Name
	}
	return x.ID < y.ID
}
