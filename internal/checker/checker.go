// Package checker implements the expression, statement and call-argument
// checking rules: given a storage.Stack already populated with the
// current scope, it walks one function body (or any nested
// block/expression) and reports every lifetime violation it finds to a
// diagnostic.Sink.
//
// The module-level driver (internal/driver) owns pushing/popping the
// function's own scope and seeding its parameters; Checker only ever sees
// an already-open Stack.
package checker

import (
	"github.com/sirupsen/logrus"

	"github.com/fadedbee/zz/internal/ast"
	"github.com/fadedbee/zz/internal/diagnostic"
	"github.com/fadedbee/zz/internal/lifetime"
	"github.com/fadedbee/zz/internal/storage"
)

// Checker carries the Stack it checks against plus the small amount of
// per-function state a few rules need across statements.
type Checker struct {
	stack *storage.Stack
	sink  diagnostic.Sink
	log   *logrus.Entry

	currentReturnPtr  lifetime.Handle
	mustMoveBeforeRet map[lifetime.Handle]ast.Location
}

// New builds a Checker over an already-constructed Stack.
func New(stack *storage.Stack, sink diagnostic.Sink) *Checker {
	return &Checker{
		stack:             stack,
		sink:              sink,
		log:               logrus.WithField("component", "checker"),
		currentReturnPtr:  lifetime.InvalidHandle,
		mustMoveBeforeRet: map[lifetime.Handle]ast.Location{},
	}
}

// Stack exposes the underlying Stack so the driver can push scopes and
// declare parameters directly before handing control to the Checker.
func (c *Checker) Stack() *storage.Stack { return c.stack }

// BeginFunction resets the per-function bookkeeping the driver must clear
// before checking each new function body.
func (c *Checker) BeginFunction() {
	c.currentReturnPtr = lifetime.InvalidHandle
	c.mustMoveBeforeRet = map[lifetime.Handle]ast.Location{}
}

// SetCurrentReturnPtr records the innermost return-value cell the driver
// built for the enclosing function. Nothing downstream currently reads it
// back — the mustMoveBeforeRet mechanism it feeds is only half-built (see
// DESIGN.md) — but it is tracked in case a future rule needs it.
func (c *Checker) SetCurrentReturnPtr(h lifetime.Handle) {
	c.currentReturnPtr = h
}

func (c *Checker) emit(d diagnostic.Diagnostic) {
	c.sink.Emit(d)
}

// checkName resolves a name in the current scope and reads its cell,
// emitting "undefined name" if the lookup fails.
func (c *Checker) checkName(name ast.Name, usedAt ast.Location, access storage.Access) lifetime.Lifetime {
	h, ok := c.stack.Find(name)
	if !ok {
		c.emit(diagnostic.UndefinedName(name, usedAt))
		return lifetime.Static()
	}
	return c.stack.Read(h, usedAt, access)
}
