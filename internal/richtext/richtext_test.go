package richtext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBold(t *testing.T) {
	got := Parse("join **BECon** today")
	require.Len(t, got, 1)
	assert.Equal(t, []Run{
		{Kind: RunPlain, Text: "join "},
		{Kind: RunBold, Text: "BECon"},
		{Kind: RunPlain, Text: " today"},
	}, got[0].Runs)
}

func TestParseItalic(t *testing.T) {
	got := Parse("a *big* deal")
	require.Len(t, got, 1)
	assert.Equal(t, []Run{
		{Kind: RunPlain, Text: "a "},
		{Kind: RunItalic, Text: "big"},
		{Kind: RunPlain, Text: " deal"},
	}, got[0].Runs)
}

func TestParseLink(t *testing.T) {
	got := Parse("see https://becon.example/schedule for times")
	require.Len(t, got, 1)
	assert.Equal(t, []Run{
		{Kind: RunPlain, Text: "see "},
		{Kind: RunLink, Text: "https://becon.example/schedule", Href: "https://becon.example/schedule"},
		{Kind: RunPlain, Text: " for times"},
	}, got[0].Runs)
}

func TestParseLinkAtEnd(t *testing.T) {
	got := Parse("tickets: http://becon.example")
	require.Len(t, got, 1)
	last := got[0].Runs[len(got[0].Runs)-1]
	assert.Equal(t, RunLink, last.Kind)
	assert.Equal(t, "http://becon.example", last.Href)
}

func TestParseParagraphsAndBreaks(t *testing.T) {
	got := Parse("first line\nsecond line\n\nnew paragraph")
	require.Len(t, got, 2)

	assert.Equal(t, []Run{
		{Kind: RunPlain, Text: "first line"},
		{Kind: RunBreak},
		{Kind: RunPlain, Text: "second line"},
	}, got[0].Runs)
	assert.Equal(t, []Run{{Kind: RunPlain, Text: "new paragraph"}}, got[1].Runs)
}

func TestUnclosedMarkersStayLiteral(t *testing.T) {
	got := Parse("a **dangling marker")
	require.Len(t, got, 1)
	require.Len(t, got[0].Runs, 1)
	assert.Equal(t, RunPlain, got[0].Runs[0].Kind)
	assert.Equal(t, "a **dangling marker", got[0].Runs[0].Text)
}

func TestParseEmpty(t *testing.T) {
	assert.Empty(t, Parse(""))
	assert.Empty(t, Parse("\n\n\n"))
}

func TestBoldThenItalicSameLine(t *testing.T) {
	got := Parse("**b** and *i*")
	require.Len(t, got, 1)
	assert.Equal(t, []Run{
		{Kind: RunBold, Text: "b"},
		{Kind: RunPlain, Text: " and "},
		{Kind: RunItalic, Text: "i"},
	}, got[0].Runs)
}
