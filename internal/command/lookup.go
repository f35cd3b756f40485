package command

import (
	"sort"
	"strings"
)

// reverseTable builds a name→code map from a code→name table. Codes are
// visited in ascending order so duplicate names resolve to the lowest
// code deterministically. Names are uppercased for case-insensitive
// lookup.
func reverseTable(table map[string]string) map[string]string {
	codes := make([]string, 0, len(table))
	for code := range table {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	out := make(map[string]string, len(table))
	for _, code := range codes {
		name := strings.ToUpper(table[code])
		if _, exists := out[name]; !exists {
			out[name] = code
		}
	}
	return out
}

// tableNames returns the distinct names of a code→name table in code
// order, for stable presentation lists.
func tableNames(table map[string]string) []string {
	codes := make([]string, 0, len(table))
	for code := range table {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	seen := make(map[string]bool, len(table))
	names := make([]string, 0, len(table))
	for _, code := range codes {
		name := table[code]
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}
