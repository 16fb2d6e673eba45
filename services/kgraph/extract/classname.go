package extract

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/h7lu/modkg/services/kgraph/config"
)

// looksLikeClassName implements the Phase 2 value-admission filter (§4.1):
// reject numbers, booleans, and anything containing whitespace or angle
// brackets; otherwise require a letter/underscore start and either a dot
// (already "qualified enough" to trust) or a PascalCase heuristic match.
func looksLikeClassName(value string, h config.ClassNameHeuristics) bool {
	if value == "" {
		return false
	}
	if strings.ContainsAny(value, " \t\n\r<>") {
		return false
	}
	if _, err := strconv.ParseFloat(value, 64); err == nil {
		return false
	}
	if value == "true" || value == "false" {
		return false
	}

	first := rune(value[0])
	if !unicode.IsLetter(first) && first != '_' {
		return false
	}
	if strings.Contains(value, ".") {
		return true
	}
	return matchesPascalCaseHeuristic(value, h)
}

func matchesPascalCaseHeuristic(value string, h config.ClassNameHeuristics) bool {
	for _, prefix := range h.KnownPrefixes {
		if strings.HasPrefix(value, prefix) {
			return true
		}
	}
	for _, suffix := range h.KnownSuffixes {
		if strings.HasSuffix(value, suffix) {
			return true
		}
	}
	return isPascalCase(value) && len(value) >= 3
}

func isPascalCase(value string) bool {
	r := []rune(value)
	if len(r) == 0 || !unicode.IsUpper(r[0]) {
		return false
	}
	for _, c := range r {
		if !unicode.IsLetter(c) && !unicode.IsDigit(c) && c != '_' {
			return false
		}
	}
	return true
}

// normalizeClassName resolves a bare (undotted) class name to its
// fully-qualified form via the namespace table (§4.1 Phase 2). Already-
// dotted names pass through unchanged.
func normalizeClassName(value string, ns config.NamespaceConfig) string {
	if strings.Contains(value, ".") {
		return value
	}
	for prefix, namespace := range ns.Prefixes {
		if strings.HasPrefix(value, prefix) {
			return namespace + "." + value
		}
	}
	for suffix, namespace := range ns.Suffixes {
		if strings.HasSuffix(value, suffix) {
			return namespace + "." + value
		}
	}
	def := ns.Default
	if def == "" {
		def = "RimWorld"
	}
	return def + "." + value
}
