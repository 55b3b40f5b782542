package checker

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/fadedbee/zz/internal/ast"
	"github.com/fadedbee/zz/internal/diagnostic"
	"github.com/fadedbee/zz/internal/lifetime"
	"github.com/fadedbee/zz/internal/storage"
)

// CheckExpr evaluates expr under access (lvalue vs rvalue) and returns
// the Lifetime that flows out of it.
func (c *Checker) CheckExpr(expr ast.Expression, access storage.Access) lifetime.Lifetime {
	switch e := expr.(type) {

	case *ast.NameExpr:
		return c.checkName(e.Name, e.Loc(), access)

	case *ast.MemberAccessExpr:
		if e.Op == "->" {
			return c.CheckExpr(e.Lhs, storage.AccessValue)
		}
		return c.CheckExpr(e.Lhs, access)

	case *ast.ArrayAccessExpr:
		return c.CheckExpr(e.Lhs, access)

	case *ast.LiteralExpr:
		if access == storage.AccessStorage {
			c.emit(diagnostic.LiteralAsLvalue(e.Loc()))
			return lifetime.Uninit()
		}
		return lifetime.Static()

	case *ast.CallExpr:
		return c.checkCall(e)

	case *ast.InfixOperationExpr:
		if access == storage.AccessStorage {
			c.emit(diagnostic.ValueAsLvalue(e.Loc()))
			return lifetime.Uninit()
		}
		for _, term := range e.Rhs {
			c.CheckExpr(term.Expr, storage.AccessValue)
		}
		return c.CheckExpr(e.Lhs, storage.AccessValue)

	case *ast.CastExpr:
		return c.CheckExpr(e.Expr, access)

	case *ast.UnaryPostExpr:
		return lifetime.Uninit()

	case *ast.UnaryPreExpr:
		return c.checkUnaryPre(e, access)

	case *ast.StructInitExpr:
		return lifetime.Uninit()

	case *ast.ArrayInitExpr:
		return lifetime.Uninit()

	default:
		panic(errors.Errorf("ICE: unhandled expression node %T", expr))
	}
}

func (c *Checker) checkUnaryPre(e *ast.UnaryPreExpr, access storage.Access) lifetime.Lifetime {
	switch e.Op {
	case "&":
		return c.CheckExpr(e.Expr, storage.AccessStorage)

	case "*":
		v := c.CheckExpr(e.Expr, storage.AccessValue)
		switch v.Kind() {
		case lifetime.Uninitialized:
			return lifetime.Uninit()
		case lifetime.PointerKind:
			return c.stack.Read(v.AsPointer(), e.Expr.Loc(), access)
		default:
			vLf := c.CheckExpr(e.Expr, storage.AccessStorage)
			vPtr := vLf.AsPointer()
			changedAt := c.stack.ChangedLoc(vPtr)
			c.emit(diagnostic.DereferenceNonPointer(e.Expr.Loc(), changedAt))
			return lifetime.Uninit()
		}

	default:
		return lifetime.Uninit()
	}
}

// checkCall resolves the callee, validates argument count, checks every
// argument against its formal pointer chain, and threads the return
// type's pointer chain out through fresh call-site-local cells, one
// synthetic Storage cell per declared return pointer level.
func (c *Checker) checkCall(e *ast.CallExpr) lifetime.Lifetime {
	if e.Name.Name.IsLibc() {
		return lifetime.Static()
	}

	fn := c.checkName(e.Name.Name, e.Name.Loc(), storage.AccessValue)
	switch fn.Kind() {
	case lifetime.FunctionKind:
		ret, args := fn.FunctionSignature()
		if len(args) != len(e.Args) {
			c.emit(diagnostic.CallArgCountMismatch(len(args), e.Name.Loc()))
			return lifetime.Uninit()
		}
		c.log.Debugf("checking function call %s", e.Name.Name)
		for i := range args {
			c.checkCallArg(args[i], e.Args[i])
		}
		if ret == nil {
			return lifetime.Static()
		}
		return c.resolveReturnChain(*ret, e.Loc(), e.Name.Name)

	case lifetime.StaticKind:
		return lifetime.Static()

	default:
		c.emit(diagnostic.NotAFunction(e.Name.Loc()))
		return lifetime.Uninit()
	}
}

func (c *Checker) resolveReturnChain(ret lifetime.Lifetime, exprLoc ast.Location, fnName ast.Name) lifetime.Lifetime {
	returnScopeLf := ret
	callsiteLf := ret
	for {
		if returnScopeLf.Kind() != lifetime.PointerKind {
			return callsiteLf
		}
		returnScopePtr := returnScopeLf.AsPointer()
		tags := c.stack.Tags(returnScopePtr)
		returnScopeLf = c.stack.Peek(returnScopePtr)

		name := ast.NameOf(fmt.Sprintf("function call return %s at %s", fnName, exprLoc))
		h := c.stack.Declare(name, exprLoc, tags)
		c.stack.Write(h, callsiteLf, exprLoc)
		callsiteLf = lifetime.Pointer(h)
	}
}
