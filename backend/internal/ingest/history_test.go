package ingest

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseWorkHistory(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []HistoryEntry
	}{
		{
			name: "flat with all fields",
			in:   "Stripe:Engineer:2021, Google:SWE:2018:2021",
			want: []HistoryEntry{
				{Company: "Stripe", Title: "Engineer", From: "2021"},
				{Company: "Google", Title: "SWE", From: "2018", To: "2021"},
			},
		},
		{
			name: "missing title and start",
			in:   "Figma",
			want: []HistoryEntry{{Company: "Figma", From: "2020"}},
		},
		{
			name: "entries without company dropped",
			in:   ":PM:2019,  ,Notion:PM",
			want: []HistoryEntry{{Company: "Notion", Title: "PM", From: "2020"}},
		},
		{
			name: "json list",
			in:   `[{"company":"Stripe","title":"EM","from":"2019","to":"2023"},{"company":""}]`,
			want: []HistoryEntry{{Company: "Stripe", Title: "EM", From: "2019", To: "2023"}},
		},
		{
			name: "json list with numeric years",
			in:   `[{"company":"Stripe","from":2018,"to":2020},{"company":"Acme","from":2020}]`,
			want: []HistoryEntry{
				{Company: "Stripe", From: "2018", To: "2020"},
				{Company: "Acme", From: "2020"},
			},
		},
		{
			name: "undecodable entry dropped, rest kept",
			in:   `[{"company":"Stripe","title":42},"Ben",null,{"company":"Figma","from":"2019"}]`,
			want: []HistoryEntry{{Company: "Figma", From: "2019"}},
		},
		{
			name: "json object is malformed",
			in:   `{"company":"X"}`,
			want: nil,
		},
		{
			name: "empty json object",
			in:   "{}",
			want: nil,
		},
		{
			name: "malformed json degrades to empty",
			in:   `[{"company": "Stripe"`,
			want: nil,
		},
		{
			name: "blank",
			in:   "   ",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseWorkHistory(tt.in))
		})
	}
}

func TestWorkHistory_UnmarshalJSON(t *testing.T) {
	var records []Record
	payload := `[
		{"name": "A", "workHistory": "Stripe:Engineer:2021"},
		{"name": "B", "workHistory": [{"company": "Figma", "title": "PM", "from": "2018", "to": "2020"}]},
		{"name": "C", "workHistory": 42},
		{"name": "D"}
	]`
	require.NoError(t, json.Unmarshal([]byte(payload), &records))
	require.Len(t, records, 4)

	assert.Equal(t, []HistoryEntry{{Company: "Stripe", Title: "Engineer", From: "2021"}}, records[0].WorkHistory.Entries())
	assert.Equal(t, []HistoryEntry{{Company: "Figma", Title: "PM", From: "2018", To: "2020"}}, records[1].WorkHistory.Entries())
	assert.Empty(t, records[2].WorkHistory.Entries())
	assert.Empty(t, records[3].WorkHistory.Entries())
}

func TestRecord_NumericYearsKeepFormerEmployment(t *testing.T) {
	var rec Record
	payload := `{"name": "Ada", "currentCompany": "Acme", "workHistory": [{"company": "Stripe", "from": 2018, "to": 2020}, {"company": "Acme", "from": 2020}]}`
	require.NoError(t, json.Unmarshal([]byte(payload), &rec))

	assert.Equal(t, []HistoryEntry{
		{Company: "Stripe", From: "2018", To: "2020"},
		{Company: "Acme", From: "2020"},
	}, rec.WorkHistory.Entries())

	_, history, ok := rec.Normalize()
	require.True(t, ok)
	var companies []string
	for _, e := range history {
		companies = append(companies, e.Company)
	}
	assert.Contains(t, companies, "Stripe")
}

func TestWorkHistory_UnmarshalYAML(t *testing.T) {
	var records []Record
	payload := `
- name: A
  workHistory: "Stripe:Engineer:2021"
- name: B
  workHistory:
    - company: Figma
      from: "2018"
      to: "2020"
`
	require.NoError(t, yaml.Unmarshal([]byte(payload), &records))
	require.Len(t, records, 2)

	assert.Equal(t, "Stripe", records[0].WorkHistory.Entries()[0].Company)
	assert.Equal(t, []HistoryEntry{{Company: "Figma", From: "2018", To: "2020"}}, records[1].WorkHistory.Entries())
}
