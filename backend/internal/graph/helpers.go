package graph

import (
	"sort"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// ============================================================================
// Helper Functions
// ============================================================================

func getStringFromRecord(record *neo4j.Record, key string) string {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return ""
	}
	if str, ok := val.(string); ok {
		return str
	}
	return ""
}

func getIntFromRecord(record *neo4j.Record, key string) int {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return 0
	}
	if i, ok := val.(int64); ok {
		return int(i)
	}
	if i, ok := val.(int); ok {
		return i
	}
	return 0
}

func getBoolFromRecord(record *neo4j.Record, key string) bool {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return false
	}
	b, _ := val.(bool)
	return b
}

func getStringSliceFromRecord(record *neo4j.Record, key string) []string {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return []string{}
	}
	if slice, ok := val.([]interface{}); ok {
		result := make([]string, 0, len(slice))
		for _, v := range slice {
			if str, ok := v.(string); ok {
				result = append(result, str)
			}
		}
		return result
	}
	return []string{}
}

func getMapSliceFromRecord(record *neo4j.Record, key string) []map[string]interface{} {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return nil
	}
	slice, ok := val.([]interface{})
	if !ok {
		return nil
	}
	result := make([]map[string]interface{}, 0, len(slice))
	for _, v := range slice {
		if m, ok := v.(map[string]interface{}); ok {
			result = append(result, m)
		}
	}
	return result
}

func getStringFromMap(m map[string]interface{}, key, defaultValue string) string {
	val, ok := m[key]
	if !ok || val == nil {
		return defaultValue
	}
	if str, ok := val.(string); ok {
		return str
	}
	return defaultValue
}

// personFromRecord reads the p_* columns produced by personColumns
func personFromRecord(record *neo4j.Record) Person {
	return Person{
		ID:             getStringFromRecord(record, "p_id"),
		Name:           getStringFromRecord(record, "p_name"),
		Title:          getStringFromRecord(record, "p_title"),
		CurrentCompany: getStringFromRecord(record, "p_current_company"),
		ProfileURL:     getStringFromRecord(record, "p_profile_url"),
	}
}

// historyFromRecord reads a collected list of employment maps
func historyFromRecord(record *neo4j.Record, key, personID string) []Employment {
	maps := getMapSliceFromRecord(record, key)
	history := make([]Employment, 0, len(maps))
	for _, m := range maps {
		company := getStringFromMap(m, "company", "")
		if company == "" {
			continue
		}
		history = append(history, Employment{
			PersonID:   personID,
			CompanyKey: getStringFromMap(m, "key", NormalizeCompany(company)),
			Company:    company,
			Title:      getStringFromMap(m, "title", ""),
			From:       getStringFromMap(m, "from", ""),
			To:         getStringFromMap(m, "to", ""),
		})
	}
	// collect() order is unspecified
	sort.SliceStable(history, func(i, j int) bool {
		if history[i].From != history[j].From {
			return history[i].From < history[j].From
		}
		if history[i].CompanyKey != history[j].CompanyKey {
			return history[i].CompanyKey < history[j].CompanyKey
		}
		return history[i].To < history[j].To
	})
	return history
}

const personColumns = `
	p.id AS p_id, p.name AS p_name, p.title AS p_title,
	p.current_company AS p_current_company, p.profile_url AS p_profile_url`

// historyCollect gathers a person's employment edges; expects p bound
const historyCollect = `
	OPTIONAL MATCH (p)-[w:WORKS_AT|WORKED_AT]->(c:Company)
	WITH p, %s collect(CASE WHEN c IS NULL THEN NULL ELSE {
		company: c.name, key: c.key, title: w.title, from: w.from, to: w.to
	} END) AS history`
