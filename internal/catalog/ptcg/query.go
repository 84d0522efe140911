package ptcg

import (
	"strings"
)

// buildQuery renders SearchParams into the API's Lucene-like q grammar,
// e.g. `name:"dark charizard" set.id:base4 rarity:"rare holo"`.
// Multi-word values are quoted; single tokens are left bare to allow the
// server's wildcard handling.
func buildQuery(name, setID, rarity, supertype string, types []string) string {
	var clauses []string

	if name != "" {
		clauses = append(clauses, clause("name", name))
	}
	if setID != "" {
		clauses = append(clauses, clause("set.id", setID))
	}
	if rarity != "" {
		clauses = append(clauses, clause("rarity", rarity))
	}
	if supertype != "" {
		clauses = append(clauses, clause("supertype", supertype))
	}
	for _, t := range types {
		if t != "" {
			clauses = append(clauses, clause("types", t))
		}
	}

	return strings.Join(clauses, " ")
}

// clause renders one field:value term, quoting values with whitespace.
func clause(field, value string) string {
	value = strings.TrimSpace(value)
	if strings.ContainsAny(value, " \t") {
		// Strip embedded quotes rather than escaping; the API has no
		// escape syntax.
		value = strings.ReplaceAll(value, `"`, "")
		return field + `:"` + value + `"`
	}
	return field + ":" + value
}
