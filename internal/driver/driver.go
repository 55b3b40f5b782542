// Package driver walks a flattened module and drives the checker over
// each declaration in order: it seeds the static scope
// with C-imported names, gives every macro/static/function its own
// Storage cell, and — for a function — builds the synthetic pointer
// chain standing in for its parameters and return type before handing
// the body to internal/checker.
package driver

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/fadedbee/zz/internal/ast"
	"github.com/fadedbee/zz/internal/checker"
	"github.com/fadedbee/zz/internal/diagnostic"
	"github.com/fadedbee/zz/internal/lifetime"
	"github.com/fadedbee/zz/internal/storage"
)

// Check lifetime-checks every declaration of module in order, reporting
// diagnostics to sink. It never aborts early: every declaration is
// checked even once errors have been seen, so a single pass surfaces
// every problem; the caller decides whether to exit nonzero by
// inspecting sink's error count once Check returns.
func Check(module ast.Module, sink diagnostic.Sink) {
	log := logrus.WithField("component", "driver")
	log.Debugf("lifetime checking %s", module.Name)

	stack := storage.New(sink)
	c := checker.New(stack, sink)
	stack.Push("static")

	for _, cn := range module.CNames {
		h := stack.Declare(cn.Name, cn.Loc, ast.TagSet{})
		stack.Write(h, lifetime.Static(), cn.Loc)
	}

	for _, decl := range module.Decls {
		if decl.Include {
			continue
		}
		switch def := decl.Def.(type) {
		case ast.MacroDef:
			h := stack.Declare(ast.NameOf(decl.Name), decl.Loc, ast.TagSet{})
			stack.Write(h, lifetime.Static(), decl.Loc)

		case ast.StaticDef:
			h := stack.Declare(ast.NameOf(decl.Name), decl.Loc, def.Tags)
			stack.Write(h, lifetime.Static(), decl.Loc)

		case ast.FunctionDef:
			checkFunction(c, stack, sink, decl, def)

		case ast.OtherDef:
			// Skipped exactly like Include: nothing here has lifetime
			// consequences of its own.
		}
	}
}

// checkFunction builds a function's Storage cell, its return-value
// pointer chain, and a per-parameter pointer chain of synthetic cells,
// then checks its body and finally records the function's own Lifetime.
func checkFunction(c *checker.Checker, stack *storage.Stack, sink diagnostic.Sink, decl ast.Decl, def ast.FunctionDef) {
	fnHandle := stack.Declare(ast.NameOf(decl.Name), decl.Loc, ast.TagSet{})

	c.BeginFunction()

	var retPtr *lifetime.Lifetime
	if def.Ret != nil {
		rlf := lifetime.Static()
		for _, lvl := range def.Ret.Typed.Ptr {
			tags := lvl.Tags.Clone()
			if !tags.Has(ast.TagMove) {
				tags[ast.TagBorrowed] = def.Ret.Typed.Loc
			}
			h := stack.Declare(ast.NameOf(fmt.Sprintf("return value of %s", decl.Name)), def.Ret.Typed.Loc, tags)
			stack.Write(h, rlf, def.Ret.Typed.Loc)
			c.SetCurrentReturnPtr(h)
			rlf = lifetime.Pointer(h)
		}
		retPtr = &rlf
	}

	stack.Push(decl.Name)

	for _, arg := range def.Args {
		cell := stack.Declare(ast.NameOf(arg.Name), arg.Loc, arg.Tags)

		// arg.Typed.Ptr is declared outermost-first; the chain is built
		// innermost pointer level first, nearest the base type.
		for i := len(arg.Typed.Ptr) - 1; i >= 0; i-- {
			lvl := arg.Typed.Ptr[i]

			for mark, loc := range lvl.Tags {
				switch mark {
				case ast.TagMutable, ast.TagUnsafe, ast.TagMove:
				default:
					sink.Emit(diagnostic.UndefinedMark(mark, loc))
				}
			}

			bodyTags := lvl.Tags.Clone()
			if !bodyTags.Has(ast.TagMove) {
				bodyTags[ast.TagBorrowed] = arg.Loc
			}
			site := stack.Declare(ast.NameOf(fmt.Sprintf("__builtin::pointer_to_callsite::%d", cell)), arg.Loc, bodyTags)
			stack.Write(cell, lifetime.Pointer(site), arg.Loc)
			cell = site
		}

		site := stack.Declare(ast.NameOf(fmt.Sprintf("__builtin::callstack::%d", cell)), arg.Loc, arg.Tags)
		stack.Write(cell, lifetime.Pointer(site), arg.Loc)
	}

	c.CheckBlock(def.Body)

	stack.Write(fnHandle, lifetime.Function(retPtr, def.Args), decl.Loc)
	stack.Pop(def.Body.End)
	c.SetCurrentReturnPtr(lifetime.InvalidHandle)
}
