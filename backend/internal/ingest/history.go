package ingest

import (
	"bytes"
	"encoding/json"
	"strings"

	"graphite/backend/internal/constants"
	"graphite/backend/internal/graph"

	"gopkg.in/yaml.v3"
)

// HistoryEntry is one employment line of an attendee record
type HistoryEntry struct {
	Company string `json:"company" yaml:"company"`
	Title   string `json:"title" yaml:"title"`
	From    string `json:"from" yaml:"from"`
	To      string `json:"to,omitempty" yaml:"to,omitempty"`
}

// UnmarshalJSON accepts years as strings or numbers
func (e *HistoryEntry) UnmarshalJSON(data []byte) error {
	var raw struct {
		Company string `json:"company"`
		Title   string `json:"title"`
		From    year   `json:"from"`
		To      year   `json:"to"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*e = HistoryEntry{Company: raw.Company, Title: raw.Title, From: string(raw.From), To: string(raw.To)}
	return nil
}

type year string

func (y *year) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*y = year(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*y = year(n.String())
	return nil
}

// decodeEntries decodes a JSON array entry by entry. Entries that do not
// decode are dropped; a document that is not an array yields nil.
func decodeEntries(data []byte) []HistoryEntry {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil
	}
	var list []HistoryEntry
	for _, item := range items {
		var e HistoryEntry
		if err := json.Unmarshal(item, &e); err != nil {
			continue
		}
		list = append(list, e)
	}
	return list
}

// WorkHistory accepts either a list of entries or a flat string. The raw
// text is kept as given; Entries parses it.
type WorkHistory struct {
	Raw  string
	List []HistoryEntry
}

// UnmarshalJSON accepts a JSON array of entries or a string. Anything else
// yields an empty history.
func (w *WorkHistory) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	switch data[0] {
	case '[':
		w.List = decodeEntries(data)
	case '"':
		_ = json.Unmarshal(data, &w.Raw)
	}
	return nil
}

// MarshalJSON writes the parsed entries
func (w WorkHistory) MarshalJSON() ([]byte, error) {
	return json.Marshal(w.Entries())
}

// UnmarshalYAML accepts a sequence of entries or a scalar string
func (w *WorkHistory) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		for _, item := range node.Content {
			var e HistoryEntry
			if err := item.Decode(&e); err != nil {
				continue
			}
			w.List = append(w.List, e)
		}
	case yaml.ScalarNode:
		w.Raw = node.Value
	}
	return nil
}

// Entries returns the parsed history. Malformed text degrades to nil.
func (w WorkHistory) Entries() []HistoryEntry {
	if len(w.List) > 0 {
		return cleanEntries(w.List)
	}
	return ParseWorkHistory(w.Raw)
}

// ParseWorkHistory parses either a JSON array of entries or the flat
// "Company:Title:From:To,Company:Title:From" form. A JSON object is
// malformed and yields nil. Missing titles are empty,
// a missing start is the baseline year and a missing end means current.
// Entries without a company are dropped.
func ParseWorkHistory(text string) []HistoryEntry {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	if strings.HasPrefix(text, "[") {
		return cleanEntries(decodeEntries([]byte(text)))
	}
	if strings.HasPrefix(text, "{") {
		return nil
	}

	var entries []HistoryEntry
	for _, chunk := range strings.Split(text, ",") {
		fields := strings.Split(chunk, ":")
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		entry := HistoryEntry{Company: fields[0]}
		if len(fields) > 1 {
			entry.Title = fields[1]
		}
		if len(fields) > 2 {
			entry.From = fields[2]
		}
		if len(fields) > 3 {
			entry.To = fields[3]
		}
		entries = append(entries, entry)
	}
	return cleanEntries(entries)
}

func cleanEntries(list []HistoryEntry) []HistoryEntry {
	var out []HistoryEntry
	for _, e := range list {
		e.Company = strings.TrimSpace(e.Company)
		if graph.NormalizeCompany(e.Company) == "" {
			continue
		}
		e.Title = strings.TrimSpace(e.Title)
		e.From = strings.TrimSpace(e.From)
		e.To = strings.TrimSpace(e.To)
		if e.From == "" {
			e.From = constants.BaselineYear
		}
		out = append(out, e)
	}
	return out
}
