package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/h7lu/modkg/services/kgraph/chunk"
	"github.com/h7lu/modkg/services/kgraph/config"
	"github.com/h7lu/modkg/services/kgraph/graph"
)

func testConfig() *config.Config {
	cfg, _ := config.Default()
	return cfg
}

func TestExtractXMLToCode_ThingClassBindsClass(t *testing.T) {
	codeChunks := []chunk.Record{{ID: "RimWorld.Building_Wall", Language: chunk.Code, SymbolName: "Building_Wall"}}
	codeIdx := buildShortNameIndex(codeChunks)
	fields := newLinkableFieldSet(testConfig())
	cache := newResolutionCache()

	xmlChunk := chunk.Record{
		ID:       "xml:ThingDef:Wall",
		Language: chunk.XML,
		DefType:  "ThingDef",
		Text:     `<ThingDef><defName>Wall</defName><thingClass>Building_Wall</thingClass></ThingDef>`,
	}

	edges := extractXMLToCode(xmlChunk, fields, codeIdx, cache, testConfig())
	assert.Contains(t, edges, graph.Edge{Src: "xml:ThingDef:Wall", Dst: "RimWorld.Building_Wall", Kind: graph.XmlBindsClass})
}

func TestExtractXMLToCode_CompsLiClassUsesComp(t *testing.T) {
	codeChunks := []chunk.Record{{ID: "RimWorld.CompProperties_Heater", Language: chunk.Code, SymbolName: "CompProperties_Heater"}}
	codeIdx := buildShortNameIndex(codeChunks)
	fields := newLinkableFieldSet(testConfig())
	cache := newResolutionCache()

	xmlChunk := chunk.Record{
		ID:       "xml:ThingDef:Heater",
		Language: chunk.XML,
		DefType:  "ThingDef",
		Text:     `<ThingDef><comps><li Class="CompProperties_Heater"/></comps></ThingDef>`,
	}

	edges := extractXMLToCode(xmlChunk, fields, codeIdx, cache, testConfig())
	assert.Contains(t, edges, graph.Edge{Src: "xml:ThingDef:Heater", Dst: "RimWorld.CompProperties_Heater", Kind: graph.XmlUsesComp})
}

func TestExtractXMLToCode_NonClassLikeTextIsIgnored(t *testing.T) {
	codeChunks := []chunk.Record{{ID: "RimWorld.Building_Wall", Language: chunk.Code, SymbolName: "Building_Wall"}}
	codeIdx := buildShortNameIndex(codeChunks)
	fields := newLinkableFieldSet(testConfig())
	cache := newResolutionCache()

	xmlChunk := chunk.Record{
		ID:       "xml:ThingDef:Wall",
		Language: chunk.XML,
		DefType:  "ThingDef",
		Text:     `<ThingDef><thingClass>123</thingClass></ThingDef>`,
	}

	edges := extractXMLToCode(xmlChunk, fields, codeIdx, cache, testConfig())
	assert.Empty(t, edges)
}

func TestLinkableFieldSet_DiscoverAddsNewField(t *testing.T) {
	set := newLinkableFieldSet(&config.Config{})
	assert.False(t, set.has("customField"))
	set.discover("customField")
	assert.True(t, set.has("CustomField"))
}
