package xmlvet

import "github.com/lestrrat-go/strcursor"

const Version = "0.1.0"

// MaxNameLength is the upper bound on tag and attribute names. Anything
// longer is reported as an invalid name instead of being scanned further.
const MaxNameLength = 50000

// scanState tracks where the structural validator is relative to the
// document's single root element.
type scanState int

const (
	// stateFailed is entered when the scanner hits end of input inside an
	// unterminated construct. No further tokens are requested.
	stateFailed scanState = iota - 1
	// stateProlog covers everything before the root element opens.
	stateProlog
	// stateInDocument means the root is open, possibly with descendants.
	stateInDocument
	// stateAfterRoot means the root element has closed.
	stateAfterRoot
)

// Position is a 1-based line/column location in the decoded text. A CR/LF
// pair counts as a single line break.
type Position struct {
	Line   int
	Column int
}

// TokenType enumerates the lexical constructs the scanner recognizes.
type TokenType int

const (
	// noToken is returned internally when a construct was consumed for
	// error recovery and produced nothing for the validator.
	noToken TokenType = iota - 1
	EOFToken
	StartTagToken
	EndTagToken
	EmptyElementTagToken
	TextToken
	CommentToken
	CDataToken
	DeclarationToken
	ProcessingInstructionToken
	DoctypeToken
	EntityRefToken
	CharRefToken
)

// Token is one lexical construct plus the position of its first character.
type Token struct {
	Type TokenType
	Pos  Position
	// Raw is the lexeme without its delimiters (comment body, text run,
	// reference name and so on).
	Raw string
	// Name is the tag name, PI target or entity name where applicable.
	Name       string
	Attributes []Attribute
	// Unresolved marks an EntityRefToken whose name is not one of the five
	// predefined XML entities, or a CharRefToken that did not parse as a
	// number. The structural validator decides what that means in context.
	Unresolved bool
	// Value is the code point of a CharRefToken.
	Value rune
}

// Attribute is one name/value pair from a start tag, in source order.
type Attribute struct {
	Name  string
	Value string
	// Quote is the quote character wrapping the value, or 0 when the value
	// was not quoted (which is itself reported as a defect).
	Quote rune
	Pos   Position
}

// ElementFrame is one entry of the open-element stack.
type ElementFrame struct {
	Name    string
	OpenPos Position
	// NSPrefixes holds the namespace prefixes declared by xmlns: attributes
	// on this element, nil when there are none.
	NSPrefixes map[string]struct{}
}

// SourceText is the decoded document handed to Validate, along with the
// name of the encoding that produced it. The encoding name is carried
// through to the Result untouched.
type SourceText struct {
	Text     string
	Encoding string
}

type validatorCtx struct {
	cursor    strcursor.Cursor
	instate   scanState
	elements  []*ElementFrame
	diags     []Diagnostic
	elemCount int
	lineCount int
	hasDecl   bool
	encoding  string
}
