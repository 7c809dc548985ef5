package xmlvet

import (
	"strings"

	"github.com/lestrrat-go/pdebug"
	"github.com/lestrrat-go/strcursor"
)

// Validate checks that src is a well-formed XML 1.0 document and returns
// every defect found, not just the first. Each call owns its own cursor,
// element stack and diagnostic list, so concurrent calls over different
// documents need no coordination.
func Validate(src SourceText) *Result {
	if pdebug.Enabled {
		g := pdebug.Marker("xmlvet.Validate")
		defer g.End()
	}

	ctx := &validatorCtx{
		cursor:    strcursor.NewRuneCursor(strings.NewReader(src.Text)),
		instate:   stateProlog,
		lineCount: countLines(src.Text),
		encoding:  src.Encoding,
	}
	ctx.run()
	return ctx.result()
}

// countLines treats a trailing newline as a terminator, not as starting
// an extra empty line.
func countLines(s string) int {
	if s == "" {
		return 0
	}
	n := strings.Count(s, "\n")
	if !strings.HasSuffix(s, "\n") {
		n++
	}
	return n
}

func (ctx *validatorCtx) run() {
	for {
		tok := ctx.nextToken()
		if ctx.instate == stateFailed {
			// scanner hit end of input inside a construct; whatever was
			// collected so far is the final answer
			return
		}
		if tok.Type == EOFToken {
			ctx.finish(tok.Pos)
			return
		}
		ctx.handleToken(tok)
	}
}

func (ctx *validatorCtx) handleToken(tok Token) {
	switch tok.Type {
	case DeclarationToken:
		ctx.handleDeclaration(tok)
	case StartTagToken:
		ctx.handleStartTag(tok, false)
	case EmptyElementTagToken:
		ctx.handleStartTag(tok, true)
	case EndTagToken:
		ctx.handleEndTag(tok)
	case TextToken:
		if ctx.instate == stateAfterRoot && !isBlank(tok.Raw) {
			ctx.diag(ContentAfterRoot, tok.Pos, "trailing content after document element", "")
		}
	case CDataToken:
		if ctx.instate == stateAfterRoot {
			ctx.diag(ContentAfterRoot, tok.Pos, "trailing content after document element", "")
		}
	case EntityRefToken:
		if ctx.instate == stateAfterRoot {
			ctx.diag(ContentAfterRoot, tok.Pos, "trailing content after document element", "")
			return
		}
		if tok.Unresolved {
			msg := "undefined entity '" + tok.Raw + "'"
			if tok.Name == "" {
				msg = "invalid entity reference"
			}
			ctx.diag(UndefinedEntity, tok.Pos, msg, ctx.contextName())
		}
	case CharRefToken:
		if ctx.instate == stateAfterRoot {
			ctx.diag(ContentAfterRoot, tok.Pos, "trailing content after document element", "")
			return
		}
		if tok.Unresolved || !isLegalCharRef(tok.Value) {
			ctx.diag(InvalidCharacterReference, tok.Pos, "character reference '"+tok.Raw+";' is not a legal XML character", ctx.contextName())
		}
	case CommentToken, ProcessingInstructionToken, DoctypeToken:
		// structurally inert
	case EOFToken, noToken:
		// handled by run / nextToken
	}
}

func (ctx *validatorCtx) handleDeclaration(tok Token) {
	if ctx.instate != stateProlog || ctx.hasDecl {
		ctx.diag(MisplacedDeclaration, tok.Pos, "XML declaration allowed only at the start of the document", ctx.contextName())
		return
	}
	ctx.hasDecl = true
}

func (ctx *validatorCtx) handleStartTag(tok Token, empty bool) {
	ctx.elemCount++

	frame := &ElementFrame{
		Name:       tok.Name,
		OpenPos:    tok.Pos,
		NSPrefixes: declaredPrefixes(tok.Attributes),
	}
	ctx.checkNamespaces(tok, frame)

	switch ctx.instate {
	case stateAfterRoot:
		ctx.diag(ContentAfterRoot, tok.Pos, "multiple root elements", tok.Name)
		return
	case stateProlog:
		if empty {
			// the root element opened and closed in one tag
			ctx.instate = stateAfterRoot
			return
		}
		ctx.instate = stateInDocument
	case stateInDocument:
		if empty {
			return
		}
	}

	ctx.pushFrame(frame)
}

func (ctx *validatorCtx) handleEndTag(tok Token) {
	if len(ctx.elements) == 0 {
		ctx.diag(UnexpectedClosingTag, tok.Pos, "closing tag </"+tok.Name+"> has no matching start tag", tok.Name)
		return
	}

	top := ctx.peekFrame()
	if top.Name == tok.Name {
		ctx.popFrame()
	} else {
		ctx.diag(TagMismatch, tok.Pos, "Expected </"+top.Name+">", tok.Name)
		// best-effort resynchronization: discard frames until one matches
		// the closing tag (closing it too), or the stack empties
		matched := -1
		for i := len(ctx.elements) - 1; i >= 0; i-- {
			if ctx.elements[i].Name == tok.Name {
				matched = i
				break
			}
		}
		if matched >= 0 {
			ctx.elements = ctx.elements[:matched]
		} else {
			ctx.elements = ctx.elements[:0]
		}
	}

	if len(ctx.elements) == 0 && ctx.instate == stateInDocument {
		ctx.instate = stateAfterRoot
	}
}

// finish runs the end-of-input checks for the states that have them.
func (ctx *validatorCtx) finish(pos Position) {
	switch ctx.instate {
	case stateProlog:
		ctx.diag(NoRootElement, pos, "no root element found", "")
	case stateInDocument:
		// innermost first, each citing where it was opened
		for i := len(ctx.elements) - 1; i >= 0; i-- {
			f := ctx.elements[i]
			ctx.diag(UnclosedElement, f.OpenPos, "element <"+f.Name+"> is never closed", f.Name)
		}
	}
}

func (ctx *validatorCtx) pushFrame(f *ElementFrame) {
	if pdebug.Enabled {
		pdebug.Printf(" --> push element %s", f.Name)
	}
	ctx.elements = append(ctx.elements, f)
}

func (ctx *validatorCtx) popFrame() *ElementFrame {
	f := ctx.peekFrame()
	if f == nil {
		return nil
	}
	if pdebug.Enabled {
		pdebug.Printf(" <-- pop element %s", f.Name)
	}
	ctx.elements = ctx.elements[:len(ctx.elements)-1]
	return f
}

func (ctx *validatorCtx) peekFrame() *ElementFrame {
	if n := len(ctx.elements); n > 0 {
		return ctx.elements[n-1]
	}
	return nil
}

// contextName is the name of the innermost open element, used as the
// context of diagnostics that have no more specific construct to cite.
func (ctx *validatorCtx) contextName() string {
	if f := ctx.peekFrame(); f != nil {
		return f.Name
	}
	return ""
}

func (ctx *validatorCtx) diag(kind ErrorKind, pos Position, msg, context string) {
	if pdebug.Enabled {
		pdebug.Printf("diagnostic %s at %d:%d: %s", kind, pos.Line, pos.Column, msg)
	}
	ctx.diags = append(ctx.diags, Diagnostic{
		Kind:    kind,
		Pos:     pos,
		Message: msg,
		Context: context,
	})
}

// fail records an unterminated-construct defect and stops the scan; with
// the input exhausted mid-construct there is nothing left to tokenize.
func (ctx *validatorCtx) fail(pos Position, msg string) {
	ctx.diag(UnterminatedConstruct, pos, msg, ctx.contextName())
	ctx.instate = stateFailed
}

func declaredPrefixes(attrs []Attribute) map[string]struct{} {
	var m map[string]struct{}
	for _, a := range attrs {
		if strings.HasPrefix(a.Name, "xmlns:") {
			if m == nil {
				m = map[string]struct{}{}
			}
			m[a.Name[len("xmlns:"):]] = struct{}{}
		}
	}
	return m
}

// prefixBound reports whether prefix is declared on the tag being opened
// or on any element still open around it. The xml and xmlns prefixes are
// always bound.
func (ctx *validatorCtx) prefixBound(prefix string, frame *ElementFrame) bool {
	switch prefix {
	case "xml", "xmlns":
		return true
	}
	if _, ok := frame.NSPrefixes[prefix]; ok {
		return true
	}
	for i := len(ctx.elements) - 1; i >= 0; i-- {
		if _, ok := ctx.elements[i].NSPrefixes[prefix]; ok {
			return true
		}
	}
	return false
}

func (ctx *validatorCtx) checkNamespaces(tok Token, frame *ElementFrame) {
	if prefix, _, ok := splitQName(tok.Name); ok && !ctx.prefixBound(prefix, frame) {
		ctx.diag(UnboundNamespacePrefix, tok.Pos, "namespace prefix '"+prefix+"' is not bound", tok.Name)
	}
	for _, a := range tok.Attributes {
		prefix, _, ok := splitQName(a.Name)
		if !ok || prefix == "xmlns" {
			continue
		}
		if !ctx.prefixBound(prefix, frame) {
			ctx.diag(UnboundNamespacePrefix, a.Pos, "namespace prefix '"+prefix+"' is not bound", tok.Name)
		}
	}
}

/*
 * [7] QName ::= (Prefix ':')? LocalPart
 *
 * ok is false for names with no colon, a leading or trailing colon, so
 * those never go through prefix resolution.
 */
func splitQName(name string) (prefix, local string, ok bool) {
	i := strings.IndexByte(name, ':')
	if i <= 0 || i == len(name)-1 {
		return "", name, false
	}
	return name[:i], name[i+1:], true
}
