package checker

import (
	"github.com/pkg/errors"

	"github.com/fadedbee/zz/internal/ast"
	"github.com/fadedbee/zz/internal/diagnostic"
	"github.com/fadedbee/zz/internal/lifetime"
	"github.com/fadedbee/zz/internal/storage"
)

// CheckBlock checks every statement of body in order, against the
// currently open scope. It does not itself push or pop a scope: every
// caller that introduces a new block (BlockStmt, CondStmt, ForStmt, and
// the function body in internal/driver) owns its own Push/Pop pair so the
// drop site is exactly that block's closing brace.
func (c *Checker) CheckBlock(body ast.Block) {
	for _, stmt := range body.Statements {
		c.CheckStmt(stmt)
	}
}

// CheckStmt dispatches one statement to its checking rule.
func (c *Checker) CheckStmt(stmt ast.Statement) {
	switch s := stmt.(type) {

	case *ast.MarkStmt:
		c.checkMark(s)

	case *ast.BlockStmt:
		c.stack.Push("block")
		c.CheckBlock(s.Body)
		c.stack.Pop(s.Body.End)

	case *ast.CondStmt:
		c.stack.Push("if")
		if s.Expr != nil {
			c.CheckExpr(s.Expr, storage.AccessValue)
		}
		c.CheckBlock(s.Body)
		c.stack.Pop(s.Body.End)

	case *ast.ForStmt:
		c.stack.Push("for")
		if s.E1 != nil {
			c.CheckStmt(s.E1)
		}
		if s.E2 != nil {
			c.CheckStmt(s.E2)
		}
		if s.E3 != nil {
			c.CheckStmt(s.E3)
		}
		c.CheckBlock(s.Body)
		c.stack.Pop(s.Body.End)

	case *ast.ExprStmt:
		c.CheckExpr(s.Expr, storage.AccessValue)

	case *ast.VarStmt:
		c.checkVar(s)

	case *ast.AssignStmt:
		c.checkAssign(s)

	case *ast.ReturnStmt:
		c.checkReturn(s)

	case *ast.GotoStmt, *ast.LabelStmt:
		// No lifetime consequence; represented only to keep this switch
		// exhaustive over every ast.Statement variant.

	default:
		panic(errors.Errorf("ICE: unhandled statement node %T", stmt))
	}
}

func (c *Checker) checkMark(s *ast.MarkStmt) {
	lhs := c.CheckExpr(s.Lhs, storage.AccessStorage)
	if lhs.Kind() != lifetime.PointerKind {
		c.emit(diagnostic.MarkOnNonStorage(s.Lhs.Loc()))
		return
	}
	h := lhs.AsPointer()
	if s.Mark == ast.MarkSafe {
		c.stack.RemoveTag(h, ast.TagUnsafe)
	} else {
		c.stack.SetTag(h, s.Mark, s.Loc())
	}
}

func (c *Checker) checkVar(s *ast.VarStmt) {
	tags := s.Tags.With(ast.TagStack, s.Loc())
	h := c.stack.Declare(ast.NameOf(s.Name), s.Loc(), tags)

	if s.Assign == nil {
		return
	}
	rhs := c.CheckExpr(s.Assign, storage.AccessValue)
	if rhs.Kind() == lifetime.Uninitialized {
		c.emit(diagnostic.UnknownRHSLifetime(s.Assign.Loc()))
	}
	c.stack.Write(h, rhs, s.Loc())
}

func (c *Checker) checkAssign(s *ast.AssignStmt) {
	rhs := c.CheckExpr(s.Rhs, storage.AccessValue)
	if rhs.Kind() == lifetime.Uninitialized {
		c.emit(diagnostic.InvalidRHSLifetime(s.Rhs.Loc()))
	}

	lhs := c.CheckExpr(s.Lhs, storage.AccessStorage)
	if lhs.Kind() != lifetime.PointerKind {
		c.emit(diagnostic.LvalueInvalidLifetime(s.Lhs.Loc()))
		return
	}
	h := lhs.AsPointer()
	if !c.stack.HasTag(h, ast.TagMutable) {
		c.emit(diagnostic.CannotAssignImmutable(s.Lhs.Loc(), c.stack.DeclLoc(h)))
	}
	c.stack.Write(h, rhs, s.Lhs.Loc())
}

func (c *Checker) checkReturn(s *ast.ReturnStmt) {
	if s.Expr != nil {
		c.CheckExpr(s.Expr, storage.AccessValue)
	}

	pending := c.mustMoveBeforeRet
	c.mustMoveBeforeRet = map[lifetime.Handle]ast.Location{}
	for h, callAt := range pending {
		if c.stack.Peek(h).Kind() == lifetime.MovedKind {
			continue
		}
		c.emit(diagnostic.OrphanedMovedReturn(callAt, s.Loc()))
	}
}
