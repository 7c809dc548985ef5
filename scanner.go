package xmlvet

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/lestrrat-go/pdebug"
)

func (ctx *validatorCtx) curHasChars(n int) bool {
	return ctx.cursor.PeekN(n) != utf8.RuneError
}

func (ctx *validatorCtx) curDone() bool {
	return ctx.cursor.Done()
}

func (ctx *validatorCtx) curAdvance(n int) {
	ctx.cursor.Advance(n)
}

func (ctx *validatorCtx) curPeek(n int) rune {
	return ctx.cursor.PeekN(n)
}

func (ctx *validatorCtx) curConsume(n int) string {
	var sb strings.Builder
	for i := 1; i <= n; i++ {
		r := ctx.cursor.PeekN(i)
		if r == utf8.RuneError {
			break
		}
		sb.WriteRune(r)
	}
	ctx.cursor.Advance(n)
	return sb.String()
}

func (ctx *validatorCtx) curConsumePrefix(s string) bool {
	return ctx.cursor.ConsumeString(s)
}

func (ctx *validatorCtx) curHasPrefix(s string) bool {
	return ctx.cursor.HasPrefixString(s)
}

// position reports where the next character would be read from.
func (ctx *validatorCtx) position() Position {
	return Position{
		Line:   ctx.cursor.LineNumber(),
		Column: ctx.cursor.Column(),
	}
}

func isBlankCh(c rune) bool {
	return c == 0x20 || (0x9 <= c && c <= 0xa) || c == 0xd
}

func isBlank(s string) bool {
	for _, c := range s {
		if !isBlankCh(c) {
			return false
		}
	}
	return true
}

// isChar reports whether r matches the Char production of XML 1.0.
func isChar(r rune) bool {
	if r == utf8.RuneError {
		return false
	}

	c := uint32(r)
	if c < 0x100 {
		return (0x9 <= c && c <= 0xa) || c == 0xd || 0x20 <= c
	}
	return (0x100 <= c && c <= 0xd7ff) || (0xe000 <= c && c <= 0xfffd) || (0x10000 <= c && c <= 0x10ffff)
}

func isNameStartChar(r rune) bool {
	return r == '_' || r == ':' || unicode.IsLetter(r)
}

func isNameChar(r rune) bool {
	return r == '.' || r == '-' || r == '_' || r == ':' ||
		unicode.IsLetter(r) || unicode.IsDigit(r) ||
		unicode.In(r, unicode.Extender)
}

// isLegalCharRef reports whether r may be referenced via &#N;. The legal
// ranges exclude NUL, control characters other than tab/CR/LF, surrogate
// code points and anything past U+10FFFF.
func isLegalCharRef(r rune) bool {
	switch {
	case r == 0x9 || r == 0xa || r == 0xd:
		return true
	case 0x20 <= r && r <= 0xd7ff:
		return true
	case 0xe000 <= r && r <= 0xfffd:
		return true
	case 0x10000 <= r && r <= 0x10ffff:
		return true
	}
	return false
}

func isPredefinedEntity(name string) bool {
	switch name {
	case "lt", "gt", "amp", "apos", "quot":
		return true
	}
	return false
}

func (ctx *validatorCtx) skipBlanks() {
	i := 1
	for ctx.curHasChars(i) && isBlankCh(ctx.curPeek(i)) {
		i++
	}
	if i > 1 {
		ctx.curAdvance(i - 1)
	}
}

// skipPastGt discards characters up to and including the next '>'. It
// reports false when end of input arrives first.
func (ctx *validatorCtx) skipPastGt() bool {
	for ctx.curHasChars(1) {
		if ctx.curConsumePrefix(">") {
			return true
		}
		ctx.curAdvance(1)
	}
	return false
}

/*
 * parse an XML name.
 *
 * [4] NameChar ::= Letter | Digit | '.' | '-' | '_' | ':' |
 *                  CombiningChar | Extender
 *
 * [5] Name ::= (Letter | '_' | ':') (NameChar)*
 */
func (ctx *validatorCtx) parseName() (string, bool) {
	if !ctx.curHasChars(1) || !isNameStartChar(ctx.curPeek(1)) {
		return "", false
	}

	i := 1
	for ctx.curHasChars(i+1) && isNameChar(ctx.curPeek(i+1)) {
		i++
	}
	if i > MaxNameLength {
		return "", false
	}

	return ctx.curConsume(i), true
}

// nextToken returns the next lexical construct. It only returns EOFToken
// when the input is exhausted or an unterminated construct forced the
// scan to stop; in the latter case the context is already in stateFailed
// and the defect has been recorded.
func (ctx *validatorCtx) nextToken() Token {
	if pdebug.Enabled {
		g := pdebug.Marker("validatorCtx.nextToken")
		defer g.End()
	}

	for {
		pos := ctx.position()
		if ctx.curDone() {
			return Token{Type: EOFToken, Pos: pos}
		}

		var tok Token
		switch {
		case ctx.curHasPrefix("<!--"):
			tok = ctx.scanComment(pos)
		case ctx.curHasPrefix("<![CDATA["):
			tok = ctx.scanCDSect(pos)
		case ctx.curHasPrefix("<!DOCTYPE"):
			tok = ctx.scanDoctype(pos)
		case ctx.curHasPrefix("<!"):
			ctx.diag(InvalidName, pos, "expected comment, CDATA section or DOCTYPE after '<!'", ctx.contextName())
			if !ctx.skipPastGt() {
				ctx.fail(pos, "markup declaration is never closed")
				return Token{Type: EOFToken, Pos: pos}
			}
			continue
		case ctx.curHasPrefix("</"):
			tok = ctx.scanEndTag(pos)
		case ctx.curHasPrefix("<?"):
			tok = ctx.scanPI(pos)
		case ctx.curPeek(1) == '<':
			tok = ctx.scanStartTag(pos)
		case ctx.curPeek(1) == '&':
			tok = ctx.scanReference(pos)
		default:
			tok = ctx.scanText(pos)
		}

		if tok.Type == noToken {
			continue
		}
		return tok
	}
}

func (ctx *validatorCtx) scanComment(pos Position) Token {
	ctx.curAdvance(4) // <!--

	i := 1
	for ctx.curHasChars(i) {
		if ctx.curPeek(i) == '-' && ctx.curPeek(i+1) == '-' && ctx.curPeek(i+2) == '>' {
			raw := ctx.curConsume(i - 1)
			ctx.curAdvance(3)
			return Token{Type: CommentToken, Pos: pos, Raw: raw}
		}
		i++
	}

	ctx.fail(pos, "comment is never closed")
	return Token{Type: EOFToken, Pos: pos}
}

func (ctx *validatorCtx) scanCDSect(pos Position) Token {
	ctx.curAdvance(9) // <![CDATA[

	i := 1
	for ctx.curHasChars(i) {
		if ctx.curPeek(i) == ']' && ctx.curPeek(i+1) == ']' && ctx.curPeek(i+2) == '>' {
			raw := ctx.curConsume(i - 1)
			ctx.curAdvance(3)
			return Token{Type: CDataToken, Pos: pos, Raw: raw}
		}
		i++
	}

	ctx.fail(pos, "CDATA section is never closed")
	return Token{Type: EOFToken, Pos: pos}
}

// scanDoctype skips a <!DOCTYPE ...> section, including a bracketed
// internal subset. The contents are not validated; DTDs are out of scope.
func (ctx *validatorCtx) scanDoctype(pos Position) Token {
	ctx.curAdvance(9) // <!DOCTYPE

	depth := 0
	var quote rune
	for ctx.curHasChars(1) {
		c := ctx.curPeek(1)
		if quote != 0 {
			// inside a SYSTEM/PUBLIC literal, nothing is structural
			if c == quote {
				quote = 0
			}
			ctx.curAdvance(1)
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '[':
			depth++
		case ']':
			depth--
		case '>':
			if depth <= 0 {
				ctx.curAdvance(1)
				return Token{Type: DoctypeToken, Pos: pos}
			}
		}
		ctx.curAdvance(1)
	}

	ctx.fail(pos, "DOCTYPE section is never closed")
	return Token{Type: EOFToken, Pos: pos}
}

// scanPI lexes a processing instruction. A PI whose target is exactly
// "xml" is the document declaration; whether it is allowed where it
// appears is the structural validator's call.
func (ctx *validatorCtx) scanPI(pos Position) Token {
	ctx.curAdvance(2) // <?

	name, ok := ctx.parseName()
	if !ok {
		ctx.diag(InvalidName, pos, "processing instruction target expected after '<?'", ctx.contextName())
	}

	i := 1
	for ctx.curHasChars(i) {
		if ctx.curPeek(i) == '?' && ctx.curPeek(i+1) == '>' {
			raw := ctx.curConsume(i - 1)
			ctx.curAdvance(2)
			typ := ProcessingInstructionToken
			if name == "xml" {
				typ = DeclarationToken
			}
			return Token{Type: typ, Pos: pos, Name: name, Raw: raw}
		}
		i++
	}

	ctx.fail(pos, "processing instruction is never closed")
	return Token{Type: EOFToken, Pos: pos}
}

func (ctx *validatorCtx) scanEndTag(pos Position) Token {
	ctx.curAdvance(2) // </

	name, ok := ctx.parseName()
	if !ok {
		ctx.diag(InvalidName, pos, "tag name expected after '</'", ctx.contextName())
	}
	ctx.skipBlanks()
	if !ctx.curConsumePrefix(">") {
		if ok {
			ctx.diag(InvalidName, pos, "unexpected characters in closing tag </"+name+">", name)
		}
		if !ctx.skipPastGt() {
			ctx.fail(pos, "closing tag is never closed")
			return Token{Type: EOFToken, Pos: pos}
		}
	}
	if !ok {
		return Token{Type: noToken}
	}

	return Token{Type: EndTagToken, Pos: pos, Name: name}
}

/*
 * [66] CharRef ::= '&#' [0-9]+ ';' |
 *                  '&#x' [0-9a-fA-F]+ ';'
 * [68] EntityRef ::= '&' Name ';'
 */
func (ctx *validatorCtx) scanReference(pos Position) Token {
	if ctx.curConsumePrefix("&#") {
		i := 1
		for ctx.curHasChars(i) && ctx.curPeek(i) != ';' && isRefDigit(ctx.curPeek(i)) {
			i++
		}
		digits := ctx.curConsume(i - 1)
		terminated := ctx.curConsumePrefix(";")
		val, ok := parseCharRefValue(digits)
		return Token{
			Type:       CharRefToken,
			Pos:        pos,
			Raw:        "&#" + digits,
			Value:      val,
			Unresolved: !ok || !terminated,
		}
	}

	ctx.curAdvance(1) // &
	name, ok := ctx.parseName()
	if !ok || !ctx.curConsumePrefix(";") {
		return Token{Type: EntityRefToken, Pos: pos, Raw: "&" + name, Name: name, Unresolved: true}
	}

	return Token{
		Type:       EntityRefToken,
		Pos:        pos,
		Raw:        "&" + name + ";",
		Name:       name,
		Unresolved: !isPredefinedEntity(name),
	}
}

func isRefDigit(c rune) bool {
	return (c >= '0' && c <= '9') ||
		(c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F') ||
		c == 'x' || c == 'X'
}

// parseCharRefValue turns the digit part of a character reference (with a
// leading 'x' for hexadecimal) into a code point. Values past U+10FFFF
// are clamped so oversized references stay out of the legal ranges
// without overflowing.
func parseCharRefValue(s string) (rune, bool) {
	if s == "" {
		return 0, false
	}

	base := rune(10)
	if s[0] == 'x' || s[0] == 'X' {
		base = 16
		s = s[1:]
		if s == "" {
			return 0, false
		}
	}

	var val rune
	for _, c := range s {
		var d rune
		switch {
		case c >= '0' && c <= '9':
			d = c - '0'
		case base == 16 && c >= 'a' && c <= 'f':
			d = c - 'a' + 10
		case base == 16 && c >= 'A' && c <= 'F':
			d = c - 'A' + 10
		default:
			return 0, false
		}
		if val <= 0x10ffff {
			val = val*base + d
		}
	}
	return val, true
}

func (ctx *validatorCtx) scanText(pos Position) Token {
	i := 1
	for ctx.curHasChars(i) {
		c := ctx.curPeek(i)
		if c == '<' || c == '&' {
			break
		}
		i++
	}

	return Token{Type: TextToken, Pos: pos, Raw: ctx.curConsume(i - 1)}
}
