package query

import (
	"regexp"
	"strings"

	"github.com/antzucaro/matchr"

	"github.com/h7lu/modkg/services/kgraph/graph"
)

// partSplitter is the character class query parts are split on: colon,
// dot, space, angle brackets, and hyphen. The exact set and the weights
// below are tunable constants exposed for test-driven calibration, not a
// contract — they are not principled, just what the heuristic was
// calibrated against.
var partSplitter = regexp.MustCompile(`[:.\s<>-]+`)

const (
	jaroWinklerWeight = 0.3
	lengthRatioWeight = 0.3
	exactPartWeight   = 0.4
)

// ResolveFuzzy implements C7: a score-based fallback invoked when exact
// lookup fails.
func ResolveFuzzy(g *graph.Graph, ref string) (string, bool) {
	if strings.HasPrefix(ref, "xml:") {
		return resolveXMLPrefix(g, ref)
	}
	return resolveByParts(g, ref)
}

func resolveXMLPrefix(g *graph.Graph, ref string) (string, bool) {
	for _, id := range g.Nodes.IDs() {
		if strings.HasPrefix(id, ref) {
			return id, true
		}
	}
	return "", false
}

func resolveByParts(g *graph.Graph, ref string) (string, bool) {
	queryParts := splitParts(ref)
	if len(queryParts) == 0 {
		return "", false
	}
	lowerRef := strings.ToLower(ref)

	var bestID string
	var bestScore float64
	found := false

	for _, id := range g.Nodes.IDs() {
		lowerID := strings.ToLower(id)
		if !allPartsMatch(lowerID, queryParts) {
			continue
		}

		keyParts := splitParts(id)

		s1 := matchr.JaroWinkler(lowerRef, lowerID) * jaroWinklerWeight

		var partLenSum int
		for _, p := range queryParts {
			partLenSum += len(p)
		}
		ratio := 1.0
		if len(lowerID) > 0 {
			ratio = float64(partLenSum) / float64(len(lowerID))
		}
		if ratio > 1 {
			ratio = 1
		}
		s2 := ratio * lengthRatioWeight

		exact := 0
		for _, qp := range queryParts {
			for _, kp := range keyParts {
				if strings.EqualFold(qp, kp) {
					exact++
					break
				}
			}
		}
		s3 := (float64(exact) / float64(len(queryParts))) * exactPartWeight

		total := s1 + s2 + s3
		if !found || total > bestScore {
			bestID, bestScore, found = id, total, true
		}
	}

	return bestID, found
}

func splitParts(s string) []string {
	raw := partSplitter.Split(s, -1)
	parts := make([]string, 0, len(raw))
	for _, p := range raw {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

func allPartsMatch(lowerKey string, queryParts []string) bool {
	for _, p := range queryParts {
		if !strings.Contains(lowerKey, strings.ToLower(p)) {
			return false
		}
	}
	return true
}
