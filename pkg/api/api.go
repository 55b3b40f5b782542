// Package api provides the public API for the zz lifetime and
// pointer-safety analyzer.
//
// This package is intended for programmatic use of the analyzer against
// an already-parsed module. For CLI usage, see cmd/zzcheck.
package api

import (
	"github.com/fadedbee/zz/internal/ast"
	"github.com/fadedbee/zz/internal/config"
	"github.com/fadedbee/zz/internal/diagnostic"
	"github.com/fadedbee/zz/internal/driver"
)

// CheckOptions controls analysis behavior.
type CheckOptions struct {
	// Strict promotes warning-severity diagnostics to errors for the
	// purpose of CheckResult.HasErrors.
	Strict bool

	// IgnoreMessages suppresses any diagnostic whose Message starts with
	// one of these stems.
	IgnoreMessages []string
}

// CheckResult contains the outcome of checking a module.
type CheckResult struct {
	// Diagnostics holds every error/warning the analyzer produced, in
	// emission order, after IgnoreMessages filtering.
	Diagnostics []Diagnostic

	// ErrorCount counts diagnostics carrying Error severity, or Warning
	// severity when Strict was requested.
	ErrorCount int
}

// HasErrors reports whether the result should be treated as a failure.
func (r CheckResult) HasErrors() bool { return r.ErrorCount > 0 }

// Diagnostic mirrors internal/diagnostic.Diagnostic without exposing the
// internal package to callers of the façade.
type Diagnostic struct {
	Severity string
	Message  string
	Spans    []Span
}

// Span mirrors internal/diagnostic.Span.
type Span struct {
	File   string
	Line   int
	Column int
	Label  string
}

// Check runs the full lifetime and pointer-safety pass over module with
// default options: no diagnostic is suppressed and only Error-severity
// diagnostics count toward CheckResult.HasErrors.
func Check(module ast.Module) CheckResult {
	return CheckWithOptions(module, CheckOptions{})
}

// CheckWithOptions runs the full pass with custom options.
func CheckWithOptions(module ast.Module, opts CheckOptions) CheckResult {
	list := diagnostic.NewList()
	driver.Check(module, list)

	result := CheckResult{}
	for _, d := range list.Diagnostics() {
		if ignored(d.Message, opts.IgnoreMessages) {
			continue
		}

		severe := d.Severity == diagnostic.Error || (opts.Strict && d.Severity == diagnostic.Warning)
		if severe {
			result.ErrorCount++
		}
		result.Diagnostics = append(result.Diagnostics, toPublicDiagnostic(d))
	}

	return result
}

// CheckWithConfig runs the full pass using a resolved config.Options,
// letting a caller share the same zzcheck.json-derived settings the CLI
// uses.
func CheckWithConfig(module ast.Module, cfg config.Options) CheckResult {
	return CheckWithOptions(module, CheckOptions{
		Strict:         cfg.Strict,
		IgnoreMessages: cfg.IgnoreMessages,
	})
}

func ignored(message string, stems []string) bool {
	for _, stem := range stems {
		if stem != "" && len(message) >= len(stem) && message[:len(stem)] == stem {
			return true
		}
	}
	return false
}

func toPublicDiagnostic(d diagnostic.Diagnostic) Diagnostic {
	spans := make([]Span, len(d.Spans))
	for i, s := range d.Spans {
		spans[i] = Span{
			File:   s.Loc.File,
			Line:   s.Loc.Start.Line,
			Column: s.Loc.Start.Column,
			Label:  s.Label,
		}
	}
	return Diagnostic{
		Severity: d.Severity.String(),
		Message:  d.Message,
		Spans:    spans,
	}
}
