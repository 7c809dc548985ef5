package xmlvet

// Result is the outcome of one validation call. It is immutable once
// returned; a second Validate over the same SourceText yields an equal
// Result.
type Result struct {
	diagnostics    []Diagnostic
	elementCount   int
	lineCount      int
	hasDeclaration bool
	encoding       string
}

func (ctx *validatorCtx) result() *Result {
	return &Result{
		diagnostics:    ctx.diags,
		elementCount:   ctx.elemCount,
		lineCount:      ctx.lineCount,
		hasDeclaration: ctx.hasDecl,
		encoding:       ctx.encoding,
	}
}

// IsValid holds exactly when no diagnostics were collected.
func (r *Result) IsValid() bool {
	return len(r.diagnostics) == 0
}

// Diagnostics returns every detected defect in detection order.
func (r *Result) Diagnostics() []Diagnostic {
	return r.diagnostics
}

// ElementCount is the number of start tags and empty-element tags seen.
func (r *Result) ElementCount() int {
	return r.elementCount
}

// LineCount is the number of lines in the source text.
func (r *Result) LineCount() int {
	return r.lineCount
}

// HasDeclaration reports whether the document opened with an XML
// declaration.
func (r *Result) HasDeclaration() bool {
	return r.hasDeclaration
}

// Encoding is the name of the encoding that produced the source text, as
// reported by the decoding collaborator.
func (r *Result) Encoding() string {
	return r.encoding
}
