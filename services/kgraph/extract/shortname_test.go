package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShortNameIndex_ExactMatch(t *testing.T) {
	idx := newShortNameIndex()
	idx.add("RimWorld.Pawn.TakeDamage", "TakeDamage")

	matches := idx.resolve("TakeDamage")
	assert.Equal(t, []string{"RimWorld.Pawn.TakeDamage"}, matches)
}

func TestShortNameIndex_DottedSuffixFallback(t *testing.T) {
	idx := newShortNameIndex()
	idx.add("RimWorld.Pawn.TakeDamage", "TakeDamage")

	matches := idx.resolve("Pawn.TakeDamage")
	assert.Equal(t, []string{"RimWorld.Pawn.TakeDamage"}, matches)
}

func TestShortNameIndex_NoMatchReturnsNil(t *testing.T) {
	idx := newShortNameIndex()
	idx.add("RimWorld.Pawn.TakeDamage", "TakeDamage")

	assert.Nil(t, idx.resolve("NothingLikeThis"))
	assert.Nil(t, idx.resolve("Other.NothingLikeThis"))
}

func TestShortNameIndex_DedupesRepeatedAdds(t *testing.T) {
	idx := newShortNameIndex()
	idx.add("A.Foo", "Foo")
	idx.add("A.Foo", "Foo")

	assert.Equal(t, []string{"A.Foo"}, idx.byName["Foo"])
}

func TestLastSegment(t *testing.T) {
	cases := map[string]string{
		"RimWorld.Pawn.TakeDamage(DamageInfo)": "TakeDamage",
		"RimWorld.Pawn":                        "Pawn",
		"RimWorld.List`1":                      "List",
		"Pawn":                                 "Pawn",
	}
	for input, want := range cases {
		assert.Equal(t, want, lastSegment(input), "input %q", input)
	}
}
