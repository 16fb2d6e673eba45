package chunk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadJSONL(t *testing.T) {
	input := `{"id":"A.B","language":"code","text":"class B {}","symbol_name":"B","span_start":0,"span_end":10,"path":"a.cs"}
{"id":"xml:ThingDef:Wall","language":"xml","text":"<ThingDef></ThingDef>","symbol_name":"Wall","def_type":"ThingDef","span_start":0,"span_end":22,"path":"defs.xml"}
`
	records, err := ReadJSONL(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "A.B", records[0].ID)
	assert.False(t, records[0].IsXML())
	assert.True(t, records[1].IsXML())
	assert.Equal(t, "ThingDef", records[1].DefType)
}

func TestReadJSONL_MalformedLineReportsLineNumber(t *testing.T) {
	input := "{\"id\":\"ok\"}\n{not json}\n"
	_, err := ReadJSONL(strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestReadJSONL_SkipsBlankLines(t *testing.T) {
	input := "{\"id\":\"A\"}\n\n{\"id\":\"B\"}\n"
	records, err := ReadJSONL(strings.NewReader(input))
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestRecord_Span(t *testing.T) {
	r := Record{Text: "0123456789", SpanStart: 2, SpanEnd: 5}
	assert.Equal(t, "234", r.Span())
}

func TestRecord_Span_OutOfRangeFallsBackToText(t *testing.T) {
	r := Record{Text: "short", SpanStart: 2, SpanEnd: 999}
	assert.Equal(t, "short", r.Span())
}

func TestRecord_Span_NegativeStartFallsBackToText(t *testing.T) {
	r := Record{Text: "short", SpanStart: -1, SpanEnd: 3}
	assert.Equal(t, "short", r.Span())
}
