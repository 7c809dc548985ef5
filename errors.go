package xmlvet

import "fmt"

// ErrorKind classifies a well-formedness defect. The set is closed: the
// structural validator dispatches over it exhaustively and the report
// renderer has a label for every kind.
type ErrorKind int

const (
	MalformedAttribute ErrorKind = iota + 1
	DuplicateAttribute
	UnboundNamespacePrefix
	InvalidName
	MisplacedDeclaration
	TagMismatch
	UnexpectedClosingTag
	ContentAfterRoot
	UndefinedEntity
	InvalidCharacterReference
	UnclosedElement
	NoRootElement
	UnterminatedConstruct
)

var errorKindNames = map[ErrorKind]string{
	MalformedAttribute:        "Malformed attribute",
	DuplicateAttribute:        "Duplicate attribute",
	UnboundNamespacePrefix:    "Unbound prefix",
	InvalidName:               "Invalid name",
	MisplacedDeclaration:      "Misplaced XML declaration",
	TagMismatch:               "Tag mismatch",
	UnexpectedClosingTag:      "Unexpected closing tag",
	ContentAfterRoot:          "Junk after document element",
	UndefinedEntity:           "Undefined entity",
	InvalidCharacterReference: "Bad character reference",
	UnclosedElement:           "Unclosed element",
	NoRootElement:             "No elements found",
	UnterminatedConstruct:     "Unclosed token",
}

func (k ErrorKind) String() string {
	if s, ok := errorKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("XML error %d", int(k))
}

// Diagnostic is one detected defect. Pos points at the first character of
// the offending construct, never at an internal scanner offset, so the
// location can be used directly in an editor. Context is the nearest tag
// or attribute name implicated, empty when there is none.
type Diagnostic struct {
	Kind    ErrorKind
	Pos     Position
	Message string
	Context string
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf(
		"%s: %s at line %d, column %d",
		d.Kind,
		d.Message,
		d.Pos.Line,
		d.Pos.Column,
	)
}
