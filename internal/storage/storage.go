// Package storage implements the analyzer's storage arena and scope
// stack: an append-only vector of addressable Storage cells plus a stack
// of named scopes mapping source names to cell handles.
//
// This is the one package every other analyzer package sits on top of, so
// it is kept small and dependency-light: it knows about ast (locations,
// names, tags) and lifetime (the cell value domain) and diagnostic (the
// handful of errors that can only be detected at read time), and nothing
// about expressions, statements, or call sites.
package storage

import (
	"github.com/sirupsen/logrus"

	"github.com/fadedbee/zz/internal/ast"
	"github.com/fadedbee/zz/internal/diagnostic"
	"github.com/fadedbee/zz/internal/lifetime"
)

// Access distinguishes an lvalue request ("give me the address") from an
// rvalue request ("give me the content").
type Access uint8

const (
	// AccessStorage requests the cell's address: a Pointer(handle).
	AccessStorage Access = iota
	// AccessValue requests the cell's content, subject to the usual
	// dropped/unsafe/uninitialized/moved checks.
	AccessValue
)

// cell is one addressable storage location.
type cell struct {
	name       ast.Name
	declLoc    ast.Location
	changedLoc *ast.Location
	tags       ast.TagSet
	value      lifetime.Lifetime
}

type scope struct {
	name   string
	locals map[string]lifetime.Handle
}

// Stack is the combined arena + scope stack. The zero value is not usable;
// build one with New.
type Stack struct {
	cells  []cell
	scopes []scope
	sink   diagnostic.Sink
	log    *logrus.Entry
}

// New creates an empty Stack that reports read-time errors to sink.
func New(sink diagnostic.Sink) *Stack {
	return &Stack{
		sink: sink,
		log:  logrus.WithField("component", "storage"),
	}
}

// Push opens a new, empty scope.
func (s *Stack) Push(name string) {
	s.log.Debugf("scope %s", name)
	s.scopes = append(s.scopes, scope{name: name, locals: make(map[string]lifetime.Handle)})
}

// Pop closes the top scope. Every cell bound directly in that scope (not
// transitively reachable from it) transitions to Dropped, citing its own
// declaration site and dropLoc as the drop site.
func (s *Stack) Pop(dropLoc ast.Location) {
	n := len(s.scopes)
	top := s.scopes[n-1]
	s.scopes = s.scopes[:n-1]
	for _, h := range top.locals {
		c := &s.cells[h]
		c.value = lifetime.Dropped(c.declLoc, dropLoc)
	}
}

// Declare appends a fresh cell with Uninitialized value, binds name to it
// in the current (innermost) scope, and returns its handle.
func (s *Stack) Declare(name ast.Name, loc ast.Location, tags ast.TagSet) lifetime.Handle {
	h := lifetime.Handle(len(s.cells))
	s.cells = append(s.cells, cell{
		name:    name,
		declLoc: loc,
		tags:    tags.Clone(),
		value:   lifetime.Uninit(),
	})
	s.log.Debugf("let %s = %d", name, h)
	s.scopes[len(s.scopes)-1].locals[name.String()] = h
	return h
}

// Find looks up name starting at the innermost scope and walking outward;
// the first match wins, giving ordinary lexical shadowing.
func (s *Stack) Find(name ast.Name) (lifetime.Handle, bool) {
	key := name.String()
	for i := len(s.scopes) - 1; i >= 0; i-- {
		if h, ok := s.scopes[i].locals[key]; ok {
			return h, true
		}
	}
	return lifetime.InvalidHandle, false
}

// Read checks a cell access and returns the value that flows out of it:
// dropped cells always fail, a Storage access short-circuits to a Pointer
// at the cell, and a Value access then rejects unsafe, uninitialized and
// moved cells in that order. Apart from Peek, which skips every check, it
// is the only way a Lifetime value ever leaves the arena.
func (s *Stack) Read(h lifetime.Handle, usedAt ast.Location, access Access) lifetime.Lifetime {
	c := &s.cells[h]

	if c.value.Kind() == lifetime.DroppedKind {
		declAt, dropAt := c.value.DroppedLocs()
		s.sink.Emit(diagnostic.UseOfDropped(c.name.String(), usedAt, declAt, dropAt))
		return lifetime.Uninit()
	}

	if access == AccessStorage {
		return lifetime.Pointer(h)
	}

	if c.tags.Has(ast.TagUnsafe) {
		s.sink.Emit(diagnostic.UseOfUnsafe(c.name.String(), usedAt, c.declLoc))
		return lifetime.Uninit()
	}

	switch c.value.Kind() {
	case lifetime.Uninitialized:
		s.sink.Emit(diagnostic.UseOfUninitialized(c.name.String(), usedAt))
		return lifetime.Uninit()
	case lifetime.MovedKind:
		s.sink.Emit(diagnostic.UseOfMoved(c.name.String(), usedAt, c.value.MovedAt()))
		return lifetime.Uninit()
	default:
		return c.value
	}
}

// Write overwrites a cell's value and records usedAt as its new
// last-mutation site.
func (s *Stack) Write(h lifetime.Handle, val lifetime.Lifetime, usedAt ast.Location) lifetime.Lifetime {
	c := &s.cells[h]
	s.log.Debugf("%s <= %s", c.name, val)
	c.value = val
	loc := usedAt
	c.changedLoc = &loc
	return val
}

// Move marks a cell's value as transferred at loc. Unlike Write it does
// not record a last-mutation site: a move is an ownership transfer, not a
// write through the cell.
func (s *Stack) Move(h lifetime.Handle, loc ast.Location) {
	s.cells[h].value = lifetime.Moved(loc)
}

// Peek returns a cell's raw value without any of Read's diagnostics or
// access-mode handling. The call-argument checker needs this: its descent
// through a pointer chain reports a different, more specific diagnostic
// for each non-Pointer Kind it might encounter, so it cannot reuse Read.
func (s *Stack) Peek(h lifetime.Handle) lifetime.Lifetime {
	return s.cells[h].value
}

// Name returns a cell's declared/synthesized name.
func (s *Stack) Name(h lifetime.Handle) ast.Name { return s.cells[h].name }

// DeclLoc returns a cell's declaration site.
func (s *Stack) DeclLoc(h lifetime.Handle) ast.Location { return s.cells[h].declLoc }

// ChangedLoc returns a cell's last-mutation site, if any.
func (s *Stack) ChangedLoc(h lifetime.Handle) *ast.Location { return s.cells[h].changedLoc }

// HasTag reports whether a cell carries the given tag.
func (s *Stack) HasTag(h lifetime.Handle, tag string) bool {
	return s.cells[h].tags.Has(tag)
}

// Tags returns an independent copy of a cell's whole tag set, for
// return-chain resolution, which carries a cell's tags onto another cell
// wholesale rather than checking one at a time.
func (s *Stack) Tags(h lifetime.Handle) ast.TagSet {
	return s.cells[h].tags.Clone()
}

// TagLoc returns the location a tag was asserted at, if present.
func (s *Stack) TagLoc(h lifetime.Handle, tag string) (ast.Location, bool) {
	return s.cells[h].tags.Loc(tag)
}

// SetTag inserts or overwrites a tag on a cell (used by the "mark"
// statement).
func (s *Stack) SetTag(h lifetime.Handle, tag string, loc ast.Location) {
	if s.cells[h].tags == nil {
		s.cells[h].tags = ast.TagSet{}
	}
	s.cells[h].tags[tag] = loc
}

// RemoveTag deletes a tag from a cell ("mark expr : safe" clears "unsafe").
func (s *Stack) RemoveTag(h lifetime.Handle, tag string) {
	delete(s.cells[h].tags, tag)
}

// Len returns the number of cells ever declared (arena never shrinks).
func (s *Stack) Len() int { return len(s.cells) }
