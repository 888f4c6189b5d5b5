package graph

import (
	"strings"
)

// NormalizeCompany returns the primary key of a company name: trimmed,
// lowercased, with internal whitespace collapsed to single spaces.
func NormalizeCompany(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// NormalizeName is the matching form of a person's display name
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// Portfolio is a viewer's set of target companies
type Portfolio struct {
	ViewerID string
	names    []string
	keys     map[string]string
}

// NewPortfolio builds a portfolio from company names. Blank and duplicate
// names (after normalization) are dropped; the first spelling wins.
func NewPortfolio(viewerID string, names []string) Portfolio {
	p := Portfolio{ViewerID: viewerID, keys: make(map[string]string, len(names))}
	for _, name := range names {
		key := NormalizeCompany(name)
		if key == "" {
			continue
		}
		if _, dup := p.keys[key]; dup {
			continue
		}
		p.keys[key] = strings.TrimSpace(name)
		p.names = append(p.names, strings.TrimSpace(name))
	}
	return p
}

// Contains reports whether the company is a target for this viewer
func (p Portfolio) Contains(company string) bool {
	if len(p.keys) == 0 {
		return false
	}
	_, ok := p.keys[NormalizeCompany(company)]
	return ok
}

// Empty reports whether the portfolio has no companies
func (p Portfolio) Empty() bool {
	return len(p.names) == 0
}

// Names returns the companies in insertion order
func (p Portfolio) Names() []string {
	out := make([]string, len(p.names))
	copy(out, p.names)
	return out
}

// Len returns the number of companies
func (p Portfolio) Len() int {
	return len(p.names)
}
