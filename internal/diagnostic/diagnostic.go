// Package diagnostic is the lifetime analyzer's error/warning sink.
//
// Every diagnostic the checker raises carries one primary span plus zero
// or more related spans (e.g. "used here" / "stored here" / "dropped
// here"). The message wording produced in messages.go is part of the
// analyzer's user contract (callers grep for these strings), so it is
// centralized here rather than inlined at each call site, and covered by
// exact-string tests.
package diagnostic

import (
	"fmt"
	"io"
	"strings"

	"github.com/fadedbee/zz/internal/ast"
	"github.com/fadedbee/zz/internal/srcview"
)

// Severity is one of the two severities the analyzer ever emits: Error
// counts toward the caller's abort decision, Warning never does.
type Severity uint8

const (
	Error Severity = iota
	Warning
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	default:
		return "unknown"
	}
}

// Span is one labeled location attached to a Diagnostic: the primary
// complaint, or a related note pointing at a declaration/mutation/drop
// site that explains it.
type Span struct {
	Loc   ast.Location
	Label string
}

// Diagnostic is a single emitted message: a severity, a stable message
// stem (see messages.go), and the spans that support it.
type Diagnostic struct {
	Severity Severity
	Message  string
	Spans    []Span
}

// Sink receives diagnostics as the checker produces them. It is the single
// seam the checker depends on, so driver-level tests can substitute a
// recording mock (internal/mocks) instead of asserting against formatted
// text.
type Sink interface {
	Emit(d Diagnostic)
}

// List is a Sink that simply collects every Diagnostic, tracking error
// counts so a caller can decide whether to abort without a process-global
// flag.
type List struct {
	items []Diagnostic
	errs  int
}

// NewList creates an empty List.
func NewList() *List { return &List{} }

// Emit implements Sink.
func (l *List) Emit(d Diagnostic) {
	l.items = append(l.items, d)
	if d.Severity == Error {
		l.errs++
	}
}

// Diagnostics returns every diagnostic emitted, in emission order.
func (l *List) Diagnostics() []Diagnostic { return l.items }

// ErrorCount returns the number of Error-severity diagnostics emitted.
func (l *List) ErrorCount() int { return l.errs }

// HasErrors reports whether any Error-severity diagnostic was emitted.
func (l *List) HasErrors() bool { return l.errs > 0 }

// Format renders every collected diagnostic as human-readable text,
// optionally annotated with a source snippet when src is non-empty.
func (l *List) Format(src string) string {
	var idx *srcview.Index
	if src != "" {
		idx = srcview.NewIndex(src)
	}
	var sb strings.Builder
	for _, d := range l.items {
		FormatInto(&sb, d, idx)
	}
	return sb.String()
}

// StdSink formats each diagnostic immediately to an io.Writer, in the same
// layout as FormatInto: the message line followed by one indented "-->"
// line per span, primary span first.
type StdSink struct {
	W   io.Writer
	Src string
}

// Emit implements Sink.
func (s StdSink) Emit(d Diagnostic) {
	var idx *srcview.Index
	if s.Src != "" {
		idx = srcview.NewIndex(s.Src)
	}
	var sb strings.Builder
	FormatInto(&sb, d, idx)
	fmt.Fprint(s.W, sb.String())
}

// FormatInto renders one diagnostic, appending to sb. idx may be nil, in
// which case no source snippet is printed.
func FormatInto(sb *strings.Builder, d Diagnostic, idx *srcview.Index) {
	if len(d.Spans) == 0 {
		fmt.Fprintf(sb, "%s: %s\n", d.Severity, d.Message)
		return
	}

	primary := d.Spans[0]
	fmt.Fprintf(sb, "%s: %s\n", d.Severity, d.Message)
	fmt.Fprintf(sb, "  --> %s: %s\n", primary.Loc, primary.Label)
	if line := idx.Line(primary.Loc.Start.Line); line != "" {
		fmt.Fprintf(sb, "   | %s\n", line)
	}
	for _, rel := range d.Spans[1:] {
		fmt.Fprintf(sb, "  --> %s: %s\n", rel.Loc, rel.Label)
		if line := idx.Line(rel.Loc.Start.Line); line != "" {
			fmt.Fprintf(sb, "   | %s\n", line)
		}
	}
}
