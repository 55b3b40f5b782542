// Package srcview splits source text into lines for diagnostic snippets.
//
// The analyzer never sees byte offsets (ast.Location already carries
// resolved line/column from the front end), so the only job here is
// "give me the text of line N" for a code-frame render.
package srcview

import "strings"

// Index gives O(1) access to individual lines of a source file by their
// 1-based line number.
type Index struct {
	lines []string
}

// NewIndex splits source into an Index. Line endings are normalized so
// CRLF and LF sources index identically.
func NewIndex(source string) *Index {
	normalized := strings.ReplaceAll(source, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")
	return &Index{lines: strings.Split(normalized, "\n")}
}

// Line returns the text of the given 1-based line number, or "" if it is
// out of range (e.g. the Index was built without source text at all).
func (idx *Index) Line(n int) string {
	if idx == nil || n < 1 || n > len(idx.lines) {
		return ""
	}
	return idx.lines[n-1]
}

// LineCount returns the number of lines indexed.
func (idx *Index) LineCount() int {
	if idx == nil {
		return 0
	}
	return len(idx.lines)
}
