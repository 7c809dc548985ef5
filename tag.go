package xmlvet

import (
	"strings"

	"github.com/lestrrat-go/pdebug"
)

/*
 * [40] STag ::= '<' Name (S Attribute)* S? '>'
 * [41] Attribute ::= Name Eq AttValue
 * [44] EmptyElemTag ::= '<' Name (S Attribute)* S? '/>'
 *
 * All attribute-level defects in one tag are reported, left to right;
 * the parser resynchronizes inside the tag instead of giving up at the
 * first bad attribute.
 */
func (ctx *validatorCtx) scanStartTag(pos Position) Token {
	if pdebug.Enabled {
		g := pdebug.Marker("validatorCtx.scanStartTag")
		defer g.End()
	}

	ctx.curAdvance(1) // <

	name, ok := ctx.parseName()
	if !ok {
		ctx.diag(InvalidName, pos, "tag name expected after '<'", ctx.contextName())
		if !ctx.skipPastGt() {
			ctx.fail(pos, "tag is never closed")
			return Token{Type: EOFToken, Pos: pos}
		}
		return Token{Type: noToken}
	}

	tok := Token{Type: StartTagToken, Pos: pos, Name: name}
	seen := map[string]struct{}{}
	for {
		ctx.skipBlanks()
		if ctx.curDone() {
			ctx.fail(pos, "tag <"+name+"> is never closed")
			return Token{Type: EOFToken, Pos: pos}
		}
		if ctx.curConsumePrefix(">") {
			return tok
		}
		if ctx.curConsumePrefix("/>") {
			tok.Type = EmptyElementTagToken
			return tok
		}
		if ctx.curPeek(1) == '/' {
			ctx.diag(MalformedAttribute, ctx.position(), "expected '/>' to close tag", name)
			ctx.curAdvance(1)
			continue
		}

		attr, ok := ctx.parseAttribute(name)
		if !ok {
			if ctx.instate == stateFailed {
				return Token{Type: EOFToken, Pos: pos}
			}
			ctx.skipAttributeJunk()
			continue
		}

		if _, dup := seen[attr.Name]; dup {
			ctx.diag(DuplicateAttribute, attr.Pos, "attribute '"+attr.Name+"' appears more than once", name)
		} else {
			seen[attr.Name] = struct{}{}
		}
		ctx.checkAttrReferences(attr, name)
		tok.Attributes = append(tok.Attributes, attr)
	}
}

func (ctx *validatorCtx) parseAttribute(tag string) (Attribute, bool) {
	pos := ctx.position()

	name, ok := ctx.parseName()
	if !ok {
		ctx.diag(InvalidName, pos, "invalid attribute name", tag)
		return Attribute{}, false
	}
	// parseName stops at the first character outside the name grammar; if
	// that character cannot legally follow a name, the name itself is bad.
	if c := ctx.curPeek(1); ctx.curHasChars(1) && !isBlankCh(c) && c != '=' && c != '>' && c != '/' {
		ctx.diag(InvalidName, pos, "attribute name '"+name+"' contains an invalid character", tag)
		return Attribute{}, false
	}

	ctx.skipBlanks()
	if !ctx.curConsumePrefix("=") {
		ctx.diag(MalformedAttribute, pos, "expected '=' after attribute '"+name+"'", tag)
		return Attribute{}, false
	}
	ctx.skipBlanks()

	q := ctx.curPeek(1)
	if q != '"' && q != '\'' {
		ctx.diag(MalformedAttribute, pos, "value of attribute '"+name+"' is missing quotes", tag)
		return Attribute{Name: name, Value: ctx.consumeBareValue(), Pos: pos}, true
	}
	ctx.curAdvance(1)

	i := 1
	for ctx.curHasChars(i) && ctx.curPeek(i) != q {
		i++
	}
	if !ctx.curHasChars(i) {
		ctx.fail(pos, "value of attribute '"+name+"' is never closed")
		return Attribute{}, false
	}
	val := ctx.curConsume(i - 1)
	ctx.curAdvance(1) // closing quote

	return Attribute{Name: name, Value: val, Quote: q, Pos: pos}, true
}

// consumeBareValue swallows an unquoted attribute value so scanning can
// carry on past the defect.
func (ctx *validatorCtx) consumeBareValue() string {
	i := 1
	for ctx.curHasChars(i) {
		c := ctx.curPeek(i)
		if isBlankCh(c) || c == '>' || c == '/' {
			break
		}
		i++
	}
	return ctx.curConsume(i - 1)
}

// skipAttributeJunk realigns the cursor after an unparseable attribute:
// everything up to the next blank or tag delimiter is discarded.
func (ctx *validatorCtx) skipAttributeJunk() {
	for ctx.curHasChars(1) {
		c := ctx.curPeek(1)
		if isBlankCh(c) || c == '>' || c == '/' {
			return
		}
		ctx.curAdvance(1)
	}
}

// checkAttrReferences validates entity and character references occurring
// inside an attribute value, the same checks content gets.
func (ctx *validatorCtx) checkAttrReferences(attr Attribute, tag string) {
	v := attr.Value
	for {
		amp := strings.IndexByte(v, '&')
		if amp < 0 {
			return
		}
		rest := v[amp+1:]
		semi := strings.IndexByte(rest, ';')
		if semi < 0 {
			ctx.diag(UndefinedEntity, attr.Pos, "invalid entity reference in attribute '"+attr.Name+"'", tag)
			return
		}

		ref := rest[:semi]
		if strings.HasPrefix(ref, "#") {
			r, ok := parseCharRefValue(ref[1:])
			if !ok || !isLegalCharRef(r) {
				ctx.diag(InvalidCharacterReference, attr.Pos, "character reference '&"+ref+";' in attribute '"+attr.Name+"' is not a legal XML character", tag)
			}
		} else if !isPredefinedEntity(ref) {
			ctx.diag(UndefinedEntity, attr.Pos, "undefined entity '&"+ref+";' in attribute '"+attr.Name+"'", tag)
		}

		v = rest[semi+1:]
	}
}
