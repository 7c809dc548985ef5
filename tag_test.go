package xmlvet

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScanStartTagAttributes(t *testing.T) {
	ctx := newTestCtx(`<r a="1" b='2' c = "3"/>`)
	tok := ctx.nextToken()
	require.Equal(t, EmptyElementTagToken, tok.Type, "empty-element tag")
	require.Equal(t, "r", tok.Name, "tag name matches")
	require.Empty(t, ctx.diags, "well-formed tag produced no diagnostics")

	require.Len(t, tok.Attributes, 3, "all attributes collected in order")
	require.Equal(t, "a", tok.Attributes[0].Name)
	require.Equal(t, "1", tok.Attributes[0].Value)
	require.Equal(t, '"', tok.Attributes[0].Quote)
	require.Equal(t, "b", tok.Attributes[1].Name)
	require.Equal(t, '\'', tok.Attributes[1].Quote, "single quotes work too")
	require.Equal(t, "c", tok.Attributes[2].Name, "blanks around '=' are fine")
	require.Equal(t, "3", tok.Attributes[2].Value)
}

func TestTagDefectsReportedLeftToRight(t *testing.T) {
	ctx := newTestCtx(`<r id=1 id="2" 9bad="x"/>`)
	tok := ctx.nextToken()
	require.Equal(t, EmptyElementTagToken, tok.Type, "scan still produces the tag")

	require.Len(t, ctx.diags, 3, "every defect in the tag is reported: %v", ctx.diags)
	require.Equal(t, MalformedAttribute, ctx.diags[0].Kind, "unquoted value first")
	require.Equal(t, DuplicateAttribute, ctx.diags[1].Kind, "duplicate next")
	require.Equal(t, InvalidName, ctx.diags[2].Kind, "bad name last")
	for _, d := range ctx.diags {
		require.Equal(t, "r", d.Context, "context names the tag")
	}
}

func TestUnquotedValueStillCollected(t *testing.T) {
	ctx := newTestCtx(`<product id=101>`)
	tok := ctx.nextToken()
	require.Equal(t, StartTagToken, tok.Type, "tag survives the defect")
	require.Len(t, tok.Attributes, 1, "the attribute is still collected")
	require.Equal(t, "id", tok.Attributes[0].Name)
	require.Equal(t, "101", tok.Attributes[0].Value, "bare value consumed for recovery")
	require.Equal(t, rune(0), tok.Attributes[0].Quote, "no quote character recorded")
}

func TestAttributeMissingEquals(t *testing.T) {
	ctx := newTestCtx(`<r standalone/>`)
	tok := ctx.nextToken()
	require.Equal(t, EmptyElementTagToken, tok.Type, "scan recovers to the tag end")
	require.Len(t, ctx.diags, 1, "one diagnostic: %v", ctx.diags)
	require.Equal(t, MalformedAttribute, ctx.diags[0].Kind, "value-less attribute is malformed")
}

func TestAttributeReferences(t *testing.T) {
	inputs := map[string]ErrorKind{
		`<r a="x &undefined; y"/>`: UndefinedEntity,
		`<r a="broken &amp x"/>`:   UndefinedEntity,
		`<r a="&#0;"/>`:            InvalidCharacterReference,
		`<r a="&#xFFFE;"/>`:        InvalidCharacterReference,
	}

	for input, kind := range inputs {
		res := Validate(SourceText{Text: input})
		diags := res.Diagnostics()
		require.Len(t, diags, 1, "one diagnostic for '%s': %v", input, diags)
		require.Equal(t, kind, diags[0].Kind, "kind matches for '%s'", input)
		require.Equal(t, "r", diags[0].Context, "context names the tag for '%s'", input)
	}

	res := Validate(SourceText{Text: `<r a="x &amp; y &#65;"/>`})
	require.True(t, res.IsValid(), "references that resolve are fine: %v", res.Diagnostics())
}

func TestDuplicateAttributePosition(t *testing.T) {
	ctx := newTestCtx(`<r id="1" id="2"/>`)
	ctx.nextToken()
	require.Len(t, ctx.diags, 1, "one diagnostic: %v", ctx.diags)
	require.Equal(t, DuplicateAttribute, ctx.diags[0].Kind, "kind matches")
	require.Equal(t, Position{Line: 1, Column: 11}, ctx.diags[0].Pos, "position is the second occurrence")
}
