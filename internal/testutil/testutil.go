// Package testutil provides testing utilities for the lifetime analyzer.
//
// This follows esbuild's testing patterns with helper functions for
// diffs and common test patterns, kept alongside testify for the
// whole-diagnostic-list diffs testify's assertions don't print well.
package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/fadedbee/zz/internal/diagnostic"
)

// DiagnosticMessages extracts just the Message of each diagnostic, in
// emission order, for tests that only care about which diagnostics fired.
func DiagnosticMessages(ds []diagnostic.Diagnostic) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.Message
	}
	return out
}

// AssertDiagnosticsEqual compares the message list of got against want
// and shows a line-by-line diff if not, the same presentation
// AssertEqualWithDiff uses for strings.
func AssertDiagnosticsEqual(t *testing.T, got []diagnostic.Diagnostic, want []string) {
	t.Helper()
	gotMessages := DiagnosticMessages(got)
	if strings.Join(gotMessages, "\n") != strings.Join(want, "\n") {
		t.Errorf("\n%s", Diff(strings.Join(want, "\n"), strings.Join(gotMessages, "\n")))
	}
}

// AssertEqualWithDiff checks if two strings are equal and shows a diff if not.
func AssertEqualWithDiff(t *testing.T, actual, expected string) {
	t.Helper()
	if actual != expected {
		diff := Diff(expected, actual)
		t.Errorf("\n%s", diff)
	}
}

// Diff produces a line-by-line diff between two strings.
// Shows context around differences with +/- prefixes.
func Diff(expected, actual string) string {
	expectedLines := strings.Split(expected, "\n")
	actualLines := strings.Split(actual, "\n")

	var result strings.Builder
	result.WriteString("--- expected\n+++ actual\n")

	maxLines := len(expectedLines)
	if len(actualLines) > maxLines {
		maxLines = len(actualLines)
	}

	for i := 0; i < maxLines; i++ {
		var expLine, actLine string
		if i < len(expectedLines) {
			expLine = expectedLines[i]
		}
		if i < len(actualLines) {
			actLine = actualLines[i]
		}

		if expLine != actLine {
			if i < len(expectedLines) {
				result.WriteString(fmt.Sprintf("-%s\n", expLine))
			}
			if i < len(actualLines) {
				result.WriteString(fmt.Sprintf("+%s\n", actLine))
			}
		} else {
			result.WriteString(fmt.Sprintf(" %s\n", expLine))
		}
	}

	return result.String()
}
