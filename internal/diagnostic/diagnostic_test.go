package diagnostic

import (
	"strings"
	"testing"

	"github.com/fadedbee/zz/internal/ast"
)

func loc(line int) ast.Location {
	return ast.Location{File: "t.zz", Start: ast.Position{Line: line, Column: 1}}
}

func TestMessageWordingStable(t *testing.T) {
	// These stems are part of the user-facing contract; users grep for
	// them, so pin the exact wording.
	cases := []struct {
		name string
		d    Diagnostic
		want string
	}{
		{"undefined-name", UndefinedName(ast.NameOf("x"), loc(1)), "undefined name 'x'"},
		{"dropped", UseOfDropped("p", loc(1), loc(1), loc(2)), "illegal read access to dropped value p"},
		{"unsafe", UseOfUnsafe("u", loc(1), loc(1)), "illegal read access to unsafe storage u"},
		{"uninit", UseOfUninitialized("x", loc(1)), "illegal read access to unitialized variable x"},
		{"moved", UseOfMoved("m", loc(1), loc(1)), "illegal read access of moved value m"},
		{"incompatible", IncompatibleArgument(loc(1), loc(1)), "incompatible argument"},
		{"expected-pointer", ExpectedPointer("static", loc(1)), "incompatible argument"},
		{"uninit-arg", UninitializedArgAsSafe(loc(1), loc(2)), "uninitialized pointer arg passed as safe pointer"},
		{"incompatible-changed", IncompatibleArgumentChanged(loc(1), loc(2), loc(3)), "incompatible argument"},
		{"dropped-arg", DroppedArgAsSafe("p", loc(1), loc(2), loc(3)), "passing dropped value as safe pointer p"},
		{"moved-arg", MovedArgAsSafe("m", loc(1), loc(2)), "passing moved value 'm' as safe pointer"},
		{"function-as-pointer", FunctionValueAsPointer(loc(1)), "ICE: trying to pass function as pointer"},
		{"const-as-mut", ConstAsMut(loc(1), loc(1)), "const pointer cannot be used as mut pointer in function call"},
		{"move-stack", CannotMoveStack("x", loc(1)), "cannot move stack"},
		{"move-borrowed", CannotMoveBorrowed("x", loc(1), loc(1), loc(1)), "cannot move borrowed pointer"},
		{"unsafe-to-safe", PassingUnsafeToSafe(loc(1), loc(1)), "passing unsafe pointer to safe function call"},
		{"deref", DereferenceNonPointer(loc(1), nil), "dereferencing something that is not a pointer"},
		{"immutable", CannotAssignImmutable(loc(1), loc(1)), "cannot assign to immutable storage"},
		{"orphan", OrphanedMovedReturn(loc(1), loc(2)), "function returns orphaning moved pointer"},
		{"undefined-mark", UndefinedMark("wat", loc(1)), "undefined mark 'wat'"},
		{"rhs-unknown", UnknownRHSLifetime(loc(1)), "rvalue has unknown lifetime"},
		{"rhs-invalid", InvalidRHSLifetime(loc(1)), "rvalue has invalid lifetime"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if c.d.Message != c.want {
				t.Errorf("got %q, want %q", c.d.Message, c.want)
			}
		})
	}
}

func TestListTracksErrorsOnly(t *testing.T) {
	l := NewList()
	l.Emit(UndefinedName(ast.NameOf("x"), loc(1)))
	l.Emit(UnknownRHSLifetime(loc(2)))

	if l.ErrorCount() != 1 {
		t.Fatalf("ErrorCount() = %d, want 1", l.ErrorCount())
	}
	if !l.HasErrors() {
		t.Fatalf("HasErrors() = false, want true")
	}
	if len(l.Diagnostics()) != 2 {
		t.Fatalf("len(Diagnostics()) = %d, want 2", len(l.Diagnostics()))
	}
}

func TestFormatIncludesRelatedSpans(t *testing.T) {
	l := NewList()
	l.Emit(UseOfDropped("p", loc(3), loc(1), loc(2)))
	out := l.Format("")
	for _, want := range []string{"used here", "points at this storage location", "which was dropped here"} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q:\n%s", want, out)
		}
	}
}

func TestFormatWithSourceSnippet(t *testing.T) {
	l := NewList()
	l.Emit(UndefinedName(ast.NameOf("x"), loc(2)))
	src := "let int a = 1;\nx;\n"
	out := l.Format(src)
	if !strings.Contains(out, "x;") {
		t.Errorf("expected source line in output:\n%s", out)
	}
}
