package checker

import (
	"github.com/fadedbee/zz/internal/ast"
	"github.com/fadedbee/zz/internal/diagnostic"
	"github.com/fadedbee/zz/internal/lifetime"
	"github.com/fadedbee/zz/internal/storage"
)

// checkCallArg is the subtlest routine in the analyzer: it takes the
// actual argument expression by value and, if it is a pointer, walks the
// formal parameter's declared pointer chain innermost-to-outermost,
// descending one level of indirection through the actual argument's
// storage for each level, checking mutability/move/unsafe discipline at
// every step.
func (c *Checker) checkCallArg(formal ast.NamedArg, callsite ast.Expression) {
	v := c.CheckExpr(callsite, storage.AccessValue)
	if v.Kind() != lifetime.PointerKind {
		// Not a pointer: fine, unless the callee actually declared one.
		if len(formal.Typed.Ptr) > 0 {
			c.emit(diagnostic.ExpectedPointer(v.String(), callsite.Loc()))
		}
		return
	}
	ptr := v.AsPointer()

	// formal.Typed.Ptr lists the pointer levels outermost-first (see
	// ast.TypeRef); checking proceeds innermost-first, hence the reverse
	// iteration.
	for i := len(formal.Typed.Ptr) - 1; i >= 0; i-- {
		level := formal.Typed.Ptr[i]

		if level.Tags.Has(ast.TagMutable) && !c.stack.HasTag(ptr, ast.TagMutable) {
			c.emit(diagnostic.ConstAsMut(callsite.Loc(), c.stack.DeclLoc(ptr)))
			return
		}

		if tagLoc, ok := level.Tags.Loc(ast.TagMove); ok {
			name := c.stack.Name(ptr).String()
			if c.stack.HasTag(ptr, ast.TagStack) {
				c.emit(diagnostic.CannotMoveStack(name, callsite.Loc()))
				return
			}
			if _, ok := c.stack.TagLoc(ptr, ast.TagBorrowed); ok {
				c.emit(diagnostic.CannotMoveBorrowed(name, callsite.Loc(), tagLoc, c.stack.DeclLoc(ptr)))
				return
			}
			// A move consumes the argument here; deeper levels of a
			// multi-level chain are not descended into.
			c.stack.Move(ptr, callsite.Loc())
			return
		}

		if level.Tags.Has(ast.TagUnsafe) {
			return
		}

		if c.stack.HasTag(ptr, ast.TagUnsafe) {
			c.emit(diagnostic.PassingUnsafeToSafe(callsite.Loc(), c.stack.DeclLoc(ptr)))
			return
		}

		val := c.stack.Peek(ptr)
		switch val.Kind() {
		case lifetime.PointerKind:
			ptr = val.AsPointer()

		case lifetime.Uninitialized:
			c.emit(diagnostic.UninitializedArgAsSafe(callsite.Loc(), c.stack.DeclLoc(ptr)))
			return

		case lifetime.DroppedKind:
			declAt, dropAt := val.DroppedLocs()
			c.emit(diagnostic.DroppedArgAsSafe(c.stack.Name(ptr).String(), callsite.Loc(), declAt, dropAt))
			return

		case lifetime.MovedKind:
			c.emit(diagnostic.MovedArgAsSafe(c.stack.Name(ptr).String(), callsite.Loc(), val.MovedAt()))
			return

		case lifetime.FunctionKind:
			c.emit(diagnostic.FunctionValueAsPointer(callsite.Loc()))
			return

		case lifetime.StaticKind:
			if changedAt := c.stack.ChangedLoc(ptr); changedAt != nil {
				c.emit(diagnostic.IncompatibleArgumentChanged(callsite.Loc(), *changedAt, formal.Typed.Loc))
			} else {
				c.emit(diagnostic.IncompatibleArgument(callsite.Loc(), formal.Typed.Loc))
			}
			return
		}
	}
}
