package checker

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fadedbee/zz/internal/ast"
	"github.com/fadedbee/zz/internal/diagnostic"
	"github.com/fadedbee/zz/internal/lifetime"
	"github.com/fadedbee/zz/internal/storage"
)

func loc(line int) ast.Location {
	return ast.Location{File: "t.zz", Start: ast.Position{Line: line, Column: 1}}
}

// S1: { let int* p; { let int x = 1; p = &x; } *p; } — dereferencing p
// after the inner block drops x is a use-after-drop.
func TestUseAfterDrop(t *testing.T) {
	sink := diagnostic.NewList()
	st := storage.New(sink)
	c := New(st, sink)

	st.Push("fn")
	pName := ast.NameOf("p")
	pHandle := st.Declare(pName, loc(1), ast.TagSet{})

	st.Push("block")
	xHandle := st.Declare(ast.NameOf("x"), loc(2), ast.TagSet{})
	st.Write(xHandle, lifetime.Static(), loc(2))
	st.Write(pHandle, lifetime.Pointer(xHandle), loc(3))
	st.Pop(loc(4)) // drops x

	deref := ast.NewUnaryPre(loc(5), "*", ast.NewName(loc(5), pName))
	got := c.CheckExpr(deref, storage.AccessValue)

	require.Equal(t, lifetime.Uninitialized, got.Kind())
	require.Equal(t, 1, sink.ErrorCount())
	require.Contains(t, sink.Diagnostics()[0].Message, "illegal read access to dropped value x")
}

// S2: fn f(int* move m) {} fn g() { let int x; f(&x); } — moving a
// stack-tagged storage location is rejected.
func TestCannotMoveStack(t *testing.T) {
	sink := diagnostic.NewList()
	st := storage.New(sink)
	c := New(st, sink)

	st.Push("fn")
	xHandle := st.Declare(ast.NameOf("x"), loc(1), ast.TagSet{ast.TagStack: loc(1)})
	st.Write(xHandle, lifetime.Static(), loc(1))

	formal := ast.NamedArg{
		Name: "m",
		Typed: ast.TypeRef{
			Ptr: []ast.PtrLevel{{Tags: ast.TagSet{ast.TagMove: loc(2)}, Loc: loc(2)}},
			Loc: loc(2),
		},
	}
	callsite := ast.NewUnaryPre(loc(3), "&", ast.NewName(loc(3), ast.NameOf("x")))
	c.checkCallArg(formal, callsite)

	require.Equal(t, 1, sink.ErrorCount())
	require.Equal(t, "cannot move stack", sink.Diagnostics()[0].Message)
}

// S3: fn f(int* p) {} fn g(int* unsafe u) { f(u); } — passing an
// unsafe-tagged pointer where the formal expects safe is rejected.
func TestPassingUnsafeToSafe(t *testing.T) {
	sink := diagnostic.NewList()
	st := storage.New(sink)
	c := New(st, sink)

	st.Push("fn")
	// "u" is declared "int* unsafe u": the unsafe tag lives on the cell u
	// points to, not on u's own cell, mirroring how the module driver
	// builds a parameter's pointer chain.
	pointee := st.Declare(ast.NameOf("__pointee"), loc(1), ast.TagSet{ast.TagUnsafe: loc(1)})
	st.Write(pointee, lifetime.Static(), loc(1))
	uHandle := st.Declare(ast.NameOf("u"), loc(1), ast.TagSet{})
	st.Write(uHandle, lifetime.Pointer(pointee), loc(1))

	formal := ast.NamedArg{
		Name:  "p",
		Typed: ast.TypeRef{Ptr: []ast.PtrLevel{{Tags: ast.TagSet{}, Loc: loc(2)}}, Loc: loc(2)},
	}
	callsite := ast.NewName(loc(3), ast.NameOf("u"))
	c.checkCallArg(formal, callsite)

	require.Equal(t, 1, sink.ErrorCount())
	require.Equal(t, "passing unsafe pointer to safe function call", sink.Diagnostics()[0].Message)
}

// S3b: fn f(int* mut m) {} fn g(int* u) { f(u); } — the formal wants a
// mutable pointer but the actual's pointee cell isn't tagged mutable.
func TestConstAsMut(t *testing.T) {
	sink := diagnostic.NewList()
	st := storage.New(sink)
	c := New(st, sink)

	st.Push("fn")
	pointee := st.Declare(ast.NameOf("__pointee"), loc(1), ast.TagSet{})
	st.Write(pointee, lifetime.Static(), loc(1))
	uHandle := st.Declare(ast.NameOf("u"), loc(1), ast.TagSet{})
	st.Write(uHandle, lifetime.Pointer(pointee), loc(1))

	formal := ast.NamedArg{
		Name: "m",
		Typed: ast.TypeRef{
			Ptr: []ast.PtrLevel{{Tags: ast.TagSet{ast.TagMutable: loc(2)}, Loc: loc(2)}},
			Loc: loc(2),
		},
	}
	callsite := ast.NewName(loc(3), ast.NameOf("u"))
	c.checkCallArg(formal, callsite)

	require.Equal(t, 1, sink.ErrorCount())
	require.Equal(t, "const pointer cannot be used as mut pointer in function call", sink.Diagnostics()[0].Message)
}

// S3c: fn f(int* move m) {} fn g(int* borrow b) { f(b); } — the actual's
// pointee cell is tagged borrowed, so moving it out is rejected.
func TestCannotMoveBorrowed(t *testing.T) {
	sink := diagnostic.NewList()
	st := storage.New(sink)
	c := New(st, sink)

	st.Push("fn")
	pointee := st.Declare(ast.NameOf("__pointee"), loc(1), ast.TagSet{ast.TagBorrowed: loc(1)})
	st.Write(pointee, lifetime.Static(), loc(1))
	bHandle := st.Declare(ast.NameOf("b"), loc(1), ast.TagSet{})
	st.Write(bHandle, lifetime.Pointer(pointee), loc(1))

	formal := ast.NamedArg{
		Name: "m",
		Typed: ast.TypeRef{
			Ptr: []ast.PtrLevel{{Tags: ast.TagSet{ast.TagMove: loc(2)}, Loc: loc(2)}},
			Loc: loc(2),
		},
	}
	callsite := ast.NewName(loc(3), ast.NameOf("b"))
	c.checkCallArg(formal, callsite)

	require.Equal(t, 1, sink.ErrorCount())
	require.Equal(t, "cannot move borrowed pointer", sink.Diagnostics()[0].Message)
}

// S3d: fn f(int* p) {} fn g(int* u) { f(u); } — u's pointee cell was
// declared but never written, so descending through it for a safe formal
// hits Uninitialized.
func TestUninitializedArgAsSafe(t *testing.T) {
	sink := diagnostic.NewList()
	st := storage.New(sink)
	c := New(st, sink)

	st.Push("fn")
	pointee := st.Declare(ast.NameOf("__pointee"), loc(1), ast.TagSet{})
	uHandle := st.Declare(ast.NameOf("u"), loc(1), ast.TagSet{})
	st.Write(uHandle, lifetime.Pointer(pointee), loc(1))

	formal := ast.NamedArg{
		Name:  "p",
		Typed: ast.TypeRef{Ptr: []ast.PtrLevel{{Tags: ast.TagSet{}, Loc: loc(2)}}, Loc: loc(2)},
	}
	callsite := ast.NewName(loc(3), ast.NameOf("u"))
	c.checkCallArg(formal, callsite)

	require.Equal(t, 1, sink.ErrorCount())
	require.Equal(t, "uninitialized pointer arg passed as safe pointer", sink.Diagnostics()[0].Message)
}

// S3e: fn f(int* p) {} fn g() { int* u; { let int x; u points at x; } f(u); }
// — u's pointee was dropped when the inner scope closed, so descending
// through it for a safe formal hits Dropped.
func TestDroppedArgAsSafe(t *testing.T) {
	sink := diagnostic.NewList()
	st := storage.New(sink)
	c := New(st, sink)

	st.Push("fn")
	uHandle := st.Declare(ast.NameOf("u"), loc(1), ast.TagSet{})
	st.Push("block")
	pointee := st.Declare(ast.NameOf("x"), loc(2), ast.TagSet{})
	st.Write(pointee, lifetime.Static(), loc(2))
	st.Write(uHandle, lifetime.Pointer(pointee), loc(3))
	st.Pop(loc(4)) // drops x

	formal := ast.NamedArg{
		Name:  "p",
		Typed: ast.TypeRef{Ptr: []ast.PtrLevel{{Tags: ast.TagSet{}, Loc: loc(5)}}, Loc: loc(5)},
	}
	callsite := ast.NewName(loc(6), ast.NameOf("u"))
	c.checkCallArg(formal, callsite)

	require.Equal(t, 1, sink.ErrorCount())
	require.Equal(t, "passing dropped value as safe pointer x", sink.Diagnostics()[0].Message)
}

// S3f: fn f(int* p) {} — u's pointee was already moved out, so descending
// through it for a safe formal hits Moved, citing the move site.
func TestMovedArgAsSafe(t *testing.T) {
	sink := diagnostic.NewList()
	st := storage.New(sink)
	c := New(st, sink)

	st.Push("fn")
	pointee := st.Declare(ast.NameOf("x"), loc(1), ast.TagSet{})
	st.Write(pointee, lifetime.Static(), loc(1))
	st.Move(pointee, loc(2))
	uHandle := st.Declare(ast.NameOf("u"), loc(1), ast.TagSet{})
	st.Write(uHandle, lifetime.Pointer(pointee), loc(1))

	formal := ast.NamedArg{
		Name:  "p",
		Typed: ast.TypeRef{Ptr: []ast.PtrLevel{{Tags: ast.TagSet{}, Loc: loc(3)}}, Loc: loc(3)},
	}
	callsite := ast.NewName(loc(4), ast.NameOf("u"))
	c.checkCallArg(formal, callsite)

	require.Equal(t, 1, sink.ErrorCount())
	require.Equal(t, "passing moved value 'x' as safe pointer", sink.Diagnostics()[0].Message)
	moved := sink.Diagnostics()[0].Spans[1]
	require.Equal(t, loc(2), moved.Loc)
}

// A function value can never sit behind a dereference chain; descending
// onto one is reported as an internal error but does not panic, so the
// rest of the pass still runs.
func TestFunctionValueAsPointerIsReported(t *testing.T) {
	sink := diagnostic.NewList()
	st := storage.New(sink)
	c := New(st, sink)

	st.Push("fn")
	pointee := st.Declare(ast.NameOf("x"), loc(1), ast.TagSet{})
	st.Write(pointee, lifetime.Function(nil, nil), loc(1))
	uHandle := st.Declare(ast.NameOf("u"), loc(1), ast.TagSet{})
	st.Write(uHandle, lifetime.Pointer(pointee), loc(1))

	formal := ast.NamedArg{
		Name:  "p",
		Typed: ast.TypeRef{Ptr: []ast.PtrLevel{{Tags: ast.TagSet{}, Loc: loc(2)}}, Loc: loc(2)},
	}
	callsite := ast.NewName(loc(3), ast.NameOf("u"))
	c.checkCallArg(formal, callsite)

	require.Equal(t, 1, sink.ErrorCount())
	require.Equal(t, "ICE: trying to pass function as pointer", sink.Diagnostics()[0].Message)
}

// fn f(int** p) {} fn g(int* u) { f(u); } — the descent runs out of
// pointer depth at u's pointee, whose last write is cited as the
// assignment that might not be a pointer.
func TestIncompatibleArgumentCitesLastWrite(t *testing.T) {
	sink := diagnostic.NewList()
	st := storage.New(sink)
	c := New(st, sink)

	st.Push("fn")
	pointee := st.Declare(ast.NameOf("x"), loc(1), ast.TagSet{})
	st.Write(pointee, lifetime.Static(), loc(2))
	uHandle := st.Declare(ast.NameOf("u"), loc(1), ast.TagSet{})
	st.Write(uHandle, lifetime.Pointer(pointee), loc(1))

	formal := ast.NamedArg{
		Name: "p",
		Typed: ast.TypeRef{
			Ptr: []ast.PtrLevel{
				{Tags: ast.TagSet{}, Loc: loc(3)},
				{Tags: ast.TagSet{}, Loc: loc(3)},
			},
			Loc: loc(3),
		},
	}
	callsite := ast.NewName(loc(4), ast.NameOf("u"))
	c.checkCallArg(formal, callsite)

	require.Equal(t, 1, sink.ErrorCount())
	require.Equal(t, "incompatible argument", sink.Diagnostics()[0].Message)
	changed := sink.Diagnostics()[0].Spans[1]
	require.Equal(t, loc(2), changed.Loc)
	require.Equal(t, "value assigned here might not be a pointer", changed.Label)
}

// S4: fn g() { let int x = 1; let int* p = &x; *p = 2; } — p was declared
// without "mut", so assigning through it is rejected.
func TestCannotAssignImmutable(t *testing.T) {
	sink := diagnostic.NewList()
	st := storage.New(sink)
	c := New(st, sink)

	st.Push("fn")
	xHandle := st.Declare(ast.NameOf("x"), loc(1), ast.TagSet{})
	st.Write(xHandle, lifetime.Static(), loc(1))
	pHandle := st.Declare(ast.NameOf("p"), loc(2), ast.TagSet{})
	st.Write(pHandle, lifetime.Pointer(xHandle), loc(2))

	assign := ast.NewAssign(loc(3),
		ast.NewUnaryPre(loc(3), "*", ast.NewName(loc(3), ast.NameOf("p"))),
		ast.NewLiteral(loc(3), "2"))
	c.CheckStmt(assign)

	require.Equal(t, 1, sink.ErrorCount())
	require.Equal(t, "cannot assign to immutable storage", sink.Diagnostics()[0].Message)
}

// S5: fn g(int* unsafe u) { mark u safe; let int v = *u; } — marking a
// cell safe clears the unsafe tag, so the following read succeeds.
func TestMarkSafeClearsUnsafeTag(t *testing.T) {
	sink := diagnostic.NewList()
	st := storage.New(sink)
	c := New(st, sink)

	st.Push("fn")
	pointee := st.Declare(ast.NameOf("__pointee"), loc(1), ast.TagSet{})
	st.Write(pointee, lifetime.Static(), loc(1))
	uHandle := st.Declare(ast.NameOf("u"), loc(1), ast.TagSet{ast.TagUnsafe: loc(1)})
	st.Write(uHandle, lifetime.Pointer(pointee), loc(1))

	mark := ast.NewMark(loc(2), ast.NewName(loc(2), ast.NameOf("u")), ast.MarkSafe)
	c.CheckStmt(mark)
	require.False(t, st.HasTag(uHandle, ast.TagUnsafe))

	v := ast.NewVar(loc(3), "v", ast.NewUnaryPre(loc(3), "*", ast.NewName(loc(3), ast.NameOf("u"))), ast.TagSet{})
	c.CheckStmt(v)

	require.Equal(t, 0, sink.ErrorCount())
}

// S6: a static int read from a function body reports no diagnostics.
func TestHappyPathNoDiagnostics(t *testing.T) {
	sink := diagnostic.NewList()
	st := storage.New(sink)
	c := New(st, sink)

	st.Push("static")
	xHandle := st.Declare(ast.NameOf("x"), loc(1), ast.TagSet{})
	st.Write(xHandle, lifetime.Static(), loc(1))

	st.Push("fn")
	body := ast.Block{
		Statements: []ast.Statement{
			ast.NewExprStmt(loc(2), ast.NewName(loc(2), ast.NameOf("x"))),
		},
		End: loc(3),
	}
	c.CheckBlock(body)
	st.Pop(loc(3))

	require.False(t, sink.HasErrors())
}

func TestUndefinedNameAborts(t *testing.T) {
	sink := diagnostic.NewList()
	st := storage.New(sink)
	c := New(st, sink)
	st.Push("fn")

	c.CheckExpr(ast.NewName(loc(1), ast.NameOf("nope")), storage.AccessValue)

	require.Equal(t, 1, sink.ErrorCount())
	require.Equal(t, "undefined name 'nope'", sink.Diagnostics()[0].Message)
}

func TestCallArgCountMismatch(t *testing.T) {
	sink := diagnostic.NewList()
	st := storage.New(sink)
	c := New(st, sink)
	st.Push("fn")

	fnHandle := st.Declare(ast.NameOf("f"), loc(1), ast.TagSet{})
	st.Write(fnHandle, lifetime.Function(nil, []ast.NamedArg{{Name: "a"}}), loc(1))

	call := ast.NewCall(loc(2), ast.NewName(loc(2), ast.NameOf("f")), nil)
	got := c.CheckExpr(call, storage.AccessValue)

	require.Equal(t, lifetime.Uninitialized, got.Kind())
	require.Equal(t, "call argument count mismatch", sink.Diagnostics()[0].Message)
}

func TestReturnWithoutPendingMovesEmitsNothing(t *testing.T) {
	sink := diagnostic.NewList()
	st := storage.New(sink)
	c := New(st, sink)
	st.Push("fn")

	c.CheckStmt(ast.NewReturn(loc(1), nil))
	require.False(t, sink.HasErrors())
}
