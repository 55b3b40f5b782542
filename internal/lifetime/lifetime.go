// Package lifetime defines the analyzer's abstract value domain.
//
// Lifetime is the tagged union every storage cell's value is drawn from.
// Go has no native sum type, so this uses a closed Kind enum plus the
// union of fields any variant might need, with accessors that panic (as
// an ICE, via github.com/pkg/errors) if asked for a field a different
// Kind owns. A single concrete type to construct and compare keeps the
// checker's switches exhaustive in a way an interface + type-switch
// would not.
package lifetime

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/fadedbee/zz/internal/ast"
)

// Handle indexes a Storage cell in the arena. It is a plain integer, not
// a pointer, so the arena can grow without ever invalidating one: the
// arena is the single owner and handles are cheap copies, which is what
// lets pointer chains reference each other without ownership cycles.
type Handle int

// InvalidHandle never indexes a real cell.
const InvalidHandle Handle = -1

// Kind discriminates the Lifetime union.
type Kind uint8

const (
	Uninitialized Kind = iota
	StaticKind
	PointerKind
	FunctionKind
	MovedKind
	DroppedKind
)

func (k Kind) String() string {
	switch k {
	case Uninitialized:
		return "uninitialized"
	case StaticKind:
		return "static"
	case PointerKind:
		return "pointer"
	case FunctionKind:
		return "function"
	case MovedKind:
		return "moved"
	case DroppedKind:
		return "dropped"
	default:
		return "unknown"
	}
}

// Lifetime is the abstract value of a single Storage cell.
type Lifetime struct {
	kind Kind

	pointer Handle

	funcRet  *Lifetime
	funcArgs []ast.NamedArg

	movedAt ast.Location

	droppedDeclAt ast.Location
	droppedAt     ast.Location
}

// Kind returns the variant this Lifetime holds.
func (l Lifetime) Kind() Kind { return l.kind }

// Uninit is the value of a freshly declared cell.
func Uninit() Lifetime { return Lifetime{kind: Uninitialized} }

// Static is the value of a constant/global-lifetime cell.
func Static() Lifetime { return Lifetime{kind: StaticKind} }

// Pointer builds a Lifetime pointing at handle h.
func Pointer(h Handle) Lifetime { return Lifetime{kind: PointerKind, pointer: h} }

// Function builds a function-valued Lifetime. ret is nil for a void
// function.
func Function(ret *Lifetime, args []ast.NamedArg) Lifetime {
	return Lifetime{kind: FunctionKind, funcRet: ret, funcArgs: args}
}

// Moved builds the value of a cell whose ownership was transferred at loc.
func Moved(loc ast.Location) Lifetime {
	return Lifetime{kind: MovedKind, movedAt: loc}
}

// Dropped builds the value of a cell whose scope expired at dropLoc; declLoc
// is kept so "use of dropped value" diagnostics can still cite where the
// value was originally stored.
func Dropped(declLoc, dropLoc ast.Location) Lifetime {
	return Lifetime{kind: DroppedKind, droppedDeclAt: declLoc, droppedAt: dropLoc}
}

// AsPointer returns the handle of a PointerKind Lifetime. Calling it on any
// other Kind is an ICE: the checker must never ask a cell whose value it
// has not already discriminated by Kind.
func (l Lifetime) AsPointer() Handle {
	if l.kind != PointerKind {
		panic(errors.Errorf("ICE: not a pointer, got %s", l.kind))
	}
	return l.pointer
}

// MovedAt returns the location a MovedKind Lifetime was moved at.
func (l Lifetime) MovedAt() ast.Location {
	if l.kind != MovedKind {
		panic(errors.Errorf("ICE: not moved, got %s", l.kind))
	}
	return l.movedAt
}

// DroppedLocs returns the (declaration, drop) locations of a DroppedKind
// Lifetime.
func (l Lifetime) DroppedLocs() (decl, drop ast.Location) {
	if l.kind != DroppedKind {
		panic(errors.Errorf("ICE: not dropped, got %s", l.kind))
	}
	return l.droppedDeclAt, l.droppedAt
}

// FunctionSignature returns the (ret, args) of a FunctionKind Lifetime.
func (l Lifetime) FunctionSignature() (*Lifetime, []ast.NamedArg) {
	if l.kind != FunctionKind {
		panic(errors.Errorf("ICE: not a function, got %s", l.kind))
	}
	return l.funcRet, l.funcArgs
}

// String renders the Lifetime the way diagnostics interpolate it (e.g.
// "expected a pointer instead of %s").
func (l Lifetime) String() string {
	switch l.kind {
	case Uninitialized:
		return "uninitialized"
	case StaticKind:
		return "static"
	case PointerKind:
		return fmt.Sprintf("ptr->%d", l.pointer)
	case FunctionKind:
		return "function"
	case MovedKind:
		return "moved"
	case DroppedKind:
		return "dropped"
	default:
		return "?"
	}
}
