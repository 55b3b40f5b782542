package diagnostic

import (
	"fmt"

	"github.com/fadedbee/zz/internal/ast"
)

// One constructor per diagnostic the analyzer can emit. The message stems
// are a stable wording contract users grep for, so they live here and
// nowhere else, each with its fixed set of related spans.

// UndefinedName — checkName, name not found in any scope.
func UndefinedName(name ast.Name, usedAt ast.Location) Diagnostic {
	return Diagnostic{
		Severity: Error,
		Message:  fmt.Sprintf("undefined name '%s'", name),
		Spans:    []Span{{usedAt, fmt.Sprintf("'%s' is not defined in this scope", name)}},
	}
}

// UseOfDropped — storage.Read, cell value is Dropped.
func UseOfDropped(name string, usedAt, storedAt, droppedAt ast.Location) Diagnostic {
	return Diagnostic{
		Severity: Error,
		Message:  fmt.Sprintf("illegal read access to dropped value %s", name),
		Spans: []Span{
			{usedAt, "used here"},
			{storedAt, "points at this storage location"},
			{droppedAt, "which was dropped here"},
		},
	}
}

// UseOfUnsafe — storage.Read, cell tagged unsafe and access is Value.
func UseOfUnsafe(name string, usedAt, storedAt ast.Location) Diagnostic {
	return Diagnostic{
		Severity: Error,
		Message:  fmt.Sprintf("illegal read access to unsafe storage %s", name),
		Spans: []Span{
			{usedAt, "used here"},
			{storedAt, "suggestion: add a runtime check for this value and mark it safe"},
		},
	}
}

// UseOfUninitialized — storage.Read, cell value is Uninitialized.
func UseOfUninitialized(name string, usedAt ast.Location) Diagnostic {
	return Diagnostic{
		Severity: Error,
		Message:  fmt.Sprintf("illegal read access to unitialized variable %s", name),
		Spans:    []Span{{usedAt, "used here"}},
	}
}

// UseOfMoved — storage.Read, cell value is Moved.
func UseOfMoved(name string, usedAt, movedAt ast.Location) Diagnostic {
	return Diagnostic{
		Severity: Error,
		Message:  fmt.Sprintf("illegal read access of moved value %s", name),
		Spans: []Span{
			{usedAt, "use of moved value"},
			{movedAt, "was moved here"},
		},
	}
}

// ExpectedPointer — checkCallArg, argument has no pointer depth but one
// is declared.
func ExpectedPointer(got string, callAt ast.Location) Diagnostic {
	return Diagnostic{
		Severity: Error,
		Message:  "incompatible argument",
		Spans:    []Span{{callAt, fmt.Sprintf("expected a pointer instead of %s", got)}},
	}
}

// ConstAsMut — checkCallArg, mutable formal against a non-mutable cell.
func ConstAsMut(callAt, declAt ast.Location) Diagnostic {
	return Diagnostic{
		Severity: Error,
		Message:  "const pointer cannot be used as mut pointer in function call",
		Spans: []Span{
			{callAt, "this expression must yield a mutable pointer"},
			{declAt, "suggestion: change this declaration to mutable"},
		},
	}
}

// CannotMoveStack — checkCallArg, move formal against a stack-tagged cell.
func CannotMoveStack(name string, callAt ast.Location) Diagnostic {
	return Diagnostic{
		Severity: Error,
		Message:  "cannot move stack",
		Spans: []Span{
			{callAt, fmt.Sprintf("this expression would move '%s' out of scope, which is on the stack", name)},
		},
	}
}

// CannotMoveBorrowed — checkCallArg, move formal against a borrowed cell.
func CannotMoveBorrowed(name string, callAt, tagAt, declAt ast.Location) Diagnostic {
	return Diagnostic{
		Severity: Error,
		Message:  "cannot move borrowed pointer",
		Spans: []Span{
			{callAt, fmt.Sprintf("this expression would move '%s' out of scope", name)},
			{tagAt, "required because this call argument is move"},
			{declAt, "try changing this declaration to move"},
		},
	}
}

// PassingUnsafeToSafe — checkCallArg, safe formal against an unsafe cell.
func PassingUnsafeToSafe(callAt, declAt ast.Location) Diagnostic {
	return Diagnostic{
		Severity: Error,
		Message:  "passing unsafe pointer to safe function call",
		Spans: []Span{
			{callAt, "this expression must be safe"},
			{declAt, "suggestion: add a runtime check for this value and mark it safe"},
		},
	}
}

// UninitializedArgAsSafe — checkCallArg, descent hits an Uninitialized cell.
func UninitializedArgAsSafe(callAt, declAt ast.Location) Diagnostic {
	return Diagnostic{
		Severity: Error,
		Message:  "uninitialized pointer arg passed as safe pointer",
		Spans: []Span{
			{callAt, "this pointer must be safe"},
			{declAt, "but this value is unitialized"},
		},
	}
}

// DroppedArgAsSafe — checkCallArg, descent hits a Dropped cell.
func DroppedArgAsSafe(name string, callAt, storedAt, droppedAt ast.Location) Diagnostic {
	return Diagnostic{
		Severity: Error,
		Message:  fmt.Sprintf("passing dropped value as safe pointer %s", name),
		Spans: []Span{
			{callAt, "used here"},
			{storedAt, "points at this storage location"},
			{droppedAt, "which was dropped here"},
		},
	}
}

// MovedArgAsSafe — checkCallArg, descent hits a Moved cell.
func MovedArgAsSafe(name string, callAt, movedAt ast.Location) Diagnostic {
	return Diagnostic{
		Severity: Error,
		Message:  fmt.Sprintf("passing moved value '%s' as safe pointer", name),
		Spans: []Span{
			{callAt, "use of moved value"},
			{movedAt, "was moved here"},
		},
	}
}

// IncompatibleArgumentChanged — checkCallArg, descent hits Static with a
// recorded last-write site.
func IncompatibleArgumentChanged(callAt, changedAt, expectedAt ast.Location) Diagnostic {
	return Diagnostic{
		Severity: Error,
		Message:  "incompatible argument",
		Spans: []Span{
			{callAt, "this expression has a different pointer depth"},
			{changedAt, "value assigned here might not be a pointer"},
			{expectedAt, "expected this type"},
		},
	}
}

// IncompatibleArgument — checkCallArg, descent hits Static with no
// recorded last-write site.
func IncompatibleArgument(callAt, expectedAt ast.Location) Diagnostic {
	return Diagnostic{
		Severity: Error,
		Message:  "incompatible argument",
		Spans: []Span{
			{callAt, "this value has a different pointer depth"},
			{expectedAt, "expected this type"},
		},
	}
}

// CallArgCountMismatch — checkCall, argument count mismatch.
func CallArgCountMismatch(want int, nameAt ast.Location) Diagnostic {
	return Diagnostic{
		Severity: Error,
		Message:  "call argument count mismatch",
		Spans:    []Span{{nameAt, fmt.Sprintf("this function expects %d arguments", want)}},
	}
}

// LiteralAsLvalue — CheckExpr, a Literal used with AccessStorage.
func LiteralAsLvalue(loc ast.Location) Diagnostic {
	return Diagnostic{
		Severity: Error,
		Message:  "lvalue expression is not a storage location",
		Spans:    []Span{{loc, "literal cannot be used as lvalue"}},
	}
}

// ValueAsLvalue — CheckExpr, an InfixOperation used with AccessStorage.
func ValueAsLvalue(loc ast.Location) Diagnostic {
	return Diagnostic{
		Severity: Error,
		Message:  "value expression is not a storage location",
		Spans:    []Span{{loc, "this expression cannot be used as lvalue"}},
	}
}

// DereferenceNonPointer — CheckExpr, unary "*" whose inner value is not
// a Pointer.
func DereferenceNonPointer(loc ast.Location, changedAt *ast.Location) Diagnostic {
	spans := []Span{{loc, "cannot determine lifetime of expression"}}
	if changedAt != nil {
		spans = append(spans, Span{*changedAt, "this assignment does not make a valid pointer"})
	}
	return Diagnostic{
		Severity: Error,
		Message:  "dereferencing something that is not a pointer",
		Spans:    spans,
	}
}

// MarkOnNonStorage — checkMark, lhs did not resolve to storage.
func MarkOnNonStorage(loc ast.Location) Diagnostic {
	return Diagnostic{
		Severity: Error,
		Message:  "lvalue is not a storage location",
		Spans:    []Span{{loc, "left hand side doesn't name something with a lifetime"}},
	}
}

// UnknownRHSLifetime — checkVar, initializer evaluated to Uninitialized.
func UnknownRHSLifetime(loc ast.Location) Diagnostic {
	return Diagnostic{
		Severity: Warning,
		Message:  "rvalue has unknown lifetime",
		Spans:    []Span{{loc, "cannot determine lifetime of right hand side"}},
	}
}

// InvalidRHSLifetime — checkAssign, rhs evaluated to Uninitialized.
func InvalidRHSLifetime(loc ast.Location) Diagnostic {
	return Diagnostic{
		Severity: Warning,
		Message:  "rvalue has invalid lifetime",
		Spans:    []Span{{loc, "cannot determine lifetime of right hand side"}},
	}
}

// CannotAssignImmutable — checkAssign, lhs cell lacks the mutable tag.
func CannotAssignImmutable(loc, declAt ast.Location) Diagnostic {
	return Diagnostic{
		Severity: Error,
		Message:  "cannot assign to immutable storage",
		Spans: []Span{
			{loc, "lvalue expression must be mutable"},
			{declAt, "suggestion: change this declaration to mutable"},
		},
	}
}

// LvalueInvalidLifetime — checkAssign, lhs did not resolve to a Pointer.
func LvalueInvalidLifetime(loc ast.Location) Diagnostic {
	return Diagnostic{
		Severity: Error,
		Message:  "lvalue has invalid lifetime",
		Spans:    []Span{{loc, "cannot determine lifetime of left hand side"}},
	}
}

// OrphanedMovedReturn — checkReturn, a must-move-before-ret cell was
// never moved.
func OrphanedMovedReturn(callAt, returnAt ast.Location) Diagnostic {
	return Diagnostic{
		Severity: Error,
		Message:  "function returns orphaning moved pointer",
		Spans: []Span{
			{callAt, "the call moves a return value into scope"},
			{returnAt, "but will be orphaned here"},
		},
	}
}

// UndefinedMark — module driver, an unrecognized tag on a pointer level.
func UndefinedMark(mark string, loc ast.Location) Diagnostic {
	return Diagnostic{
		Severity: Error,
		Message:  fmt.Sprintf("undefined mark '%s'", mark),
		Spans:    []Span{{loc, "the meaning of this mark is not (yet) known"}},
	}
}

// FunctionValueAsPointer — checkCallArg, descent hits a Function cell.
// A function value can never sit behind a pointer dereference chain, so
// the message carries the ICE prefix, but it is still reported through
// the normal error path rather than a panic so the pass can finish.
func FunctionValueAsPointer(loc ast.Location) Diagnostic {
	return Diagnostic{
		Severity: Error,
		Message:  "ICE: trying to pass function as pointer",
		Spans:    []Span{{loc, "cannot determine lifetime of expression"}},
	}
}

// NotAFunction — checkCall, name resolved to something uncallable.
func NotAFunction(loc ast.Location) Diagnostic {
	return Diagnostic{
		Severity: Warning,
		Message:  "lvalue is not a valid function",
		Spans:    []Span{{loc, "this expression cannot be used as function"}},
	}
}
