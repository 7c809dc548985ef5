package xmlvet

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"
)

// FileInfo is the file metadata shown in the report header. It comes from
// the caller because the engine itself never touches the file system.
type FileInfo struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// Reporter renders a Result as the fixed two-mode text report: a success
// banner with document statistics, or a numbered list of defects. It does
// formatting only; all judgement happened in Validate.
type Reporter struct{}

type reportWriter struct {
	out io.Writer
	err error
}

func (w *reportWriter) printf(f string, args ...interface{}) {
	if w.err != nil {
		return
	}
	_, w.err = fmt.Fprintf(w.out, f, args...)
}

func (rp *Reporter) Report(out io.Writer, res *Result, fi FileInfo) error {
	w := &reportWriter{out: out}
	rule := strings.Repeat("-", 60)
	banner := strings.Repeat("=", 60)

	w.printf("File: %s\n", filepath.Base(fi.Path))
	w.printf("Path: %s\n", filepath.Dir(fi.Path))
	w.printf("%s\n", rule)
	w.printf("Size: %d bytes\n", fi.Size)
	if !fi.ModTime.IsZero() {
		w.printf("Modified: %s\n", fi.ModTime.Format(time.DateTime))
	}
	if res.Encoding() != "" {
		w.printf("Encoding detected: %s\n", res.Encoding())
	}
	w.printf("%s\n", rule)

	if res.IsValid() {
		w.printf("✓ XML is valid and well-formed.\n")
		w.printf("\n✓ VALIDATION SUCCESSFUL\n")
		w.printf("  Document lines: %d\n", res.LineCount())
		w.printf("  XML elements: %d\n", res.ElementCount())
		if res.HasDeclaration() {
			w.printf("  XML declaration: Present\n")
		}
		return w.err
	}

	w.printf("✗ XML VALIDATION ERRORS\n")
	w.printf("%s\n", banner)
	for i, d := range res.Diagnostics() {
		w.printf("\nERROR %d:\n", i+1)
		if d.Message != "" {
			w.printf("  Type:    %s: %s\n", d.Kind, d.Message)
		} else {
			w.printf("  Type:    %s\n", d.Kind)
		}
		if d.Pos.Line > 0 {
			w.printf("  Line:    %d\n", d.Pos.Line)
		}
		if d.Pos.Column > 0 {
			w.printf("  Column:  %d\n", d.Pos.Column)
		}
		if d.Context != "" {
			w.printf("  Context: %s\n", d.Context)
		}
	}
	w.printf("\n%s\n", banner)
	w.printf("\n✗ VALIDATION FAILED\n")
	w.printf("  Error count: %d\n", len(res.Diagnostics()))

	return w.err
}
