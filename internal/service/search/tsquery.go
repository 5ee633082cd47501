package search

import "strings"

// BuildTSQuery turns free text into a to_tsquery expression with OR
// semantics: a document matches if it contains any of the words. Each token
// is single-quoted so user input cannot inject tsquery operators; inside a
// quoted lexeme both backslashes and quotes are escape characters, so each
// is doubled.
func BuildTSQuery(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return ""
	}

	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		escaped := strings.ReplaceAll(f, `\`, `\\`)
		escaped = strings.ReplaceAll(escaped, "'", "''")
		terms = append(terms, "'"+escaped+"'")
	}
	return strings.Join(terms, " | ")
}
