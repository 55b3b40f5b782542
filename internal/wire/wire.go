// Package wire decodes a flattened module from JSON into ast.Module.
//
// The analyzer core never parses source text; this package is the one
// place a front end's serialized output crosses into ast's closed node
// set. Plain encoding/json with a kind-discriminator field is enough
// here, the same way internal/config reads its files, so no schema
// library is involved.
package wire

import (
	"encoding/json"
	"fmt"

	"github.com/fadedbee/zz/internal/ast"
)

// DecodeModule decodes a JSON-encoded flattened module.
func DecodeModule(data []byte) (ast.Module, error) {
	var w moduleWire
	if err := json.Unmarshal(data, &w); err != nil {
		return ast.Module{}, fmt.Errorf("decode module: %w", err)
	}
	return w.toAST()
}

type locWire struct {
	File      string `json:"file"`
	StartLine int    `json:"startLine"`
	StartCol  int    `json:"startCol"`
	EndLine   int    `json:"endLine"`
	EndCol    int    `json:"endCol"`
}

func (l locWire) toAST() ast.Location {
	return ast.Location{
		File:  l.File,
		Start: ast.Position{Line: l.StartLine, Column: l.StartCol},
		End:   ast.Position{Line: l.EndLine, Column: l.EndCol},
	}
}

type nameWire struct {
	Absolute bool     `json:"absolute"`
	Segments []string `json:"segments"`
}

func (n nameWire) toAST() ast.Name {
	return ast.Name{Absolute: n.Absolute, Segments: n.Segments}
}

type tagsWire map[string]locWire

func (t tagsWire) toAST() ast.TagSet {
	out := make(ast.TagSet, len(t))
	for k, v := range t {
		out[k] = v.toAST()
	}
	return out
}

type ptrLevelWire struct {
	Tags tagsWire `json:"tags"`
	Loc  locWire  `json:"loc"`
}

func (p ptrLevelWire) toAST() ast.PtrLevel {
	return ast.PtrLevel{Tags: p.Tags.toAST(), Loc: p.Loc.toAST()}
}

type typeRefWire struct {
	Ptr []ptrLevelWire `json:"ptr"`
	Loc locWire        `json:"loc"`
}

func (t typeRefWire) toAST() ast.TypeRef {
	ptr := make([]ast.PtrLevel, len(t.Ptr))
	for i, p := range t.Ptr {
		ptr[i] = p.toAST()
	}
	return ast.TypeRef{Ptr: ptr, Loc: t.Loc.toAST()}
}

type namedArgWire struct {
	Name  string      `json:"name"`
	Typed typeRefWire `json:"typed"`
	Tags  tagsWire    `json:"tags"`
	Loc   locWire     `json:"loc"`
}

func (a namedArgWire) toAST() ast.NamedArg {
	return ast.NamedArg{Name: a.Name, Typed: a.Typed.toAST(), Tags: a.Tags.toAST(), Loc: a.Loc.toAST()}
}

// ----------------------------------------------------------------------------
// Expressions
// ----------------------------------------------------------------------------

func decodeExpr(raw json.RawMessage) (ast.Expression, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var head struct {
		Kind string  `json:"kind"`
		Loc  locWire `json:"loc"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, fmt.Errorf("decode expr header: %w", err)
	}
	loc := head.Loc.toAST()

	switch head.Kind {
	case "name":
		var v struct {
			Name nameWire `json:"name"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return ast.NewName(loc, v.Name.toAST()), nil

	case "member":
		var v struct {
			Lhs json.RawMessage `json:"lhs"`
			Op  string          `json:"op"`
			Rhs string          `json:"rhs"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		lhs, err := decodeExpr(v.Lhs)
		if err != nil {
			return nil, err
		}
		return ast.NewMemberAccess(loc, lhs, v.Op, v.Rhs), nil

	case "index":
		var v struct {
			Lhs json.RawMessage `json:"lhs"`
			Rhs json.RawMessage `json:"rhs"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		lhs, err := decodeExpr(v.Lhs)
		if err != nil {
			return nil, err
		}
		rhs, err := decodeExpr(v.Rhs)
		if err != nil {
			return nil, err
		}
		return ast.NewArrayAccess(loc, lhs, rhs), nil

	case "literal":
		var v struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return ast.NewLiteral(loc, v.Text), nil

	case "call":
		var v struct {
			Name nameWire          `json:"name"`
			Args []json.RawMessage `json:"args"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		args, err := decodeExprList(v.Args)
		if err != nil {
			return nil, err
		}
		return ast.NewCall(loc, ast.NewName(loc, v.Name.toAST()), args), nil

	case "infix":
		var v struct {
			Lhs json.RawMessage `json:"lhs"`
			Rhs []struct {
				Op   string          `json:"op"`
				Expr json.RawMessage `json:"expr"`
			} `json:"rhs"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		lhs, err := decodeExpr(v.Lhs)
		if err != nil {
			return nil, err
		}
		terms := make([]ast.InfixTerm, len(v.Rhs))
		for i, t := range v.Rhs {
			expr, err := decodeExpr(t.Expr)
			if err != nil {
				return nil, err
			}
			terms[i] = ast.InfixTerm{Op: t.Op, Expr: expr}
		}
		return ast.NewInfixOperation(loc, lhs, terms), nil

	case "cast":
		var v struct {
			Expr json.RawMessage `json:"expr"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		expr, err := decodeExpr(v.Expr)
		if err != nil {
			return nil, err
		}
		return ast.NewCast(loc, expr), nil

	case "unaryPre":
		var v struct {
			Op   string          `json:"op"`
			Expr json.RawMessage `json:"expr"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		expr, err := decodeExpr(v.Expr)
		if err != nil {
			return nil, err
		}
		return ast.NewUnaryPre(loc, v.Op, expr), nil

	case "unaryPost":
		var v struct {
			Op   string          `json:"op"`
			Expr json.RawMessage `json:"expr"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		expr, err := decodeExpr(v.Expr)
		if err != nil {
			return nil, err
		}
		return ast.NewUnaryPost(loc, v.Op, expr), nil

	case "structInit":
		var v struct {
			Typed  typeRefWire       `json:"typed"`
			Fields []json.RawMessage `json:"fields"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		fields, err := decodeExprList(v.Fields)
		if err != nil {
			return nil, err
		}
		return ast.NewStructInit(loc, v.Typed.toAST(), fields), nil

	case "arrayInit":
		var v struct {
			Fields []json.RawMessage `json:"fields"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		fields, err := decodeExprList(v.Fields)
		if err != nil {
			return nil, err
		}
		return ast.NewArrayInit(loc, fields), nil

	default:
		return nil, fmt.Errorf("decode expr: unknown kind %q", head.Kind)
	}
}

func decodeExprList(raws []json.RawMessage) ([]ast.Expression, error) {
	out := make([]ast.Expression, len(raws))
	for i, r := range raws {
		e, err := decodeExpr(r)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

// ----------------------------------------------------------------------------
// Statements
// ----------------------------------------------------------------------------

func decodeStmt(raw json.RawMessage) (ast.Statement, error) {
	var head struct {
		Kind string  `json:"kind"`
		Loc  locWire `json:"loc"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, fmt.Errorf("decode stmt header: %w", err)
	}
	loc := head.Loc.toAST()

	switch head.Kind {
	case "mark":
		var v struct {
			Lhs  json.RawMessage `json:"lhs"`
			Mark string          `json:"mark"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		lhs, err := decodeExpr(v.Lhs)
		if err != nil {
			return nil, err
		}
		return ast.NewMark(loc, lhs, v.Mark), nil

	case "block":
		var v struct {
			Body blockWire `json:"body"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		body, err := v.Body.toAST()
		if err != nil {
			return nil, err
		}
		return ast.NewBlockStmt(loc, body), nil

	case "cond":
		var v struct {
			Expr json.RawMessage `json:"expr"`
			Body blockWire       `json:"body"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		expr, err := decodeExpr(v.Expr)
		if err != nil {
			return nil, err
		}
		body, err := v.Body.toAST()
		if err != nil {
			return nil, err
		}
		return ast.NewCond(loc, expr, body), nil

	case "for":
		var v struct {
			E1   json.RawMessage `json:"e1"`
			E2   json.RawMessage `json:"e2"`
			E3   json.RawMessage `json:"e3"`
			Body blockWire       `json:"body"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		e1, err := decodeOptionalStmt(v.E1)
		if err != nil {
			return nil, err
		}
		e2, err := decodeOptionalStmt(v.E2)
		if err != nil {
			return nil, err
		}
		e3, err := decodeOptionalStmt(v.E3)
		if err != nil {
			return nil, err
		}
		body, err := v.Body.toAST()
		if err != nil {
			return nil, err
		}
		return ast.NewFor(loc, e1, e2, e3, body), nil

	case "expr":
		var v struct {
			Expr json.RawMessage `json:"expr"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		expr, err := decodeExpr(v.Expr)
		if err != nil {
			return nil, err
		}
		return ast.NewExprStmt(loc, expr), nil

	case "var":
		var v struct {
			Name   string          `json:"name"`
			Assign json.RawMessage `json:"assign"`
			Tags   tagsWire        `json:"tags"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		assign, err := decodeExpr(v.Assign)
		if err != nil {
			return nil, err
		}
		return ast.NewVar(loc, v.Name, assign, v.Tags.toAST()), nil

	case "assign":
		var v struct {
			Lhs json.RawMessage `json:"lhs"`
			Rhs json.RawMessage `json:"rhs"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		lhs, err := decodeExpr(v.Lhs)
		if err != nil {
			return nil, err
		}
		rhs, err := decodeExpr(v.Rhs)
		if err != nil {
			return nil, err
		}
		return ast.NewAssign(loc, lhs, rhs), nil

	case "return":
		var v struct {
			Expr json.RawMessage `json:"expr"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		expr, err := decodeExpr(v.Expr)
		if err != nil {
			return nil, err
		}
		return ast.NewReturn(loc, expr), nil

	case "goto":
		var v struct {
			Target string `json:"target"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return ast.NewGoto(loc, v.Target), nil

	case "label":
		var v struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return ast.NewLabel(loc, v.Name), nil

	default:
		return nil, fmt.Errorf("decode stmt: unknown kind %q", head.Kind)
	}
}

func decodeOptionalStmt(raw json.RawMessage) (ast.Statement, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	return decodeStmt(raw)
}

type blockWire struct {
	Statements []json.RawMessage `json:"statements"`
	End        locWire           `json:"end"`
}

func (b blockWire) toAST() (ast.Block, error) {
	stmts := make([]ast.Statement, len(b.Statements))
	for i, r := range b.Statements {
		s, err := decodeStmt(r)
		if err != nil {
			return ast.Block{}, err
		}
		stmts[i] = s
	}
	return ast.Block{Statements: stmts, End: b.End.toAST()}, nil
}

// ----------------------------------------------------------------------------
// Declarations / module
// ----------------------------------------------------------------------------

type declWire struct {
	Include bool            `json:"include"`
	Name    string          `json:"name"`
	Loc     locWire         `json:"loc"`
	Def     json.RawMessage `json:"def"`
}

func (d declWire) toAST() (ast.Decl, error) {
	out := ast.Decl{Include: d.Include, Name: d.Name, Loc: d.Loc.toAST()}
	if d.Include || len(d.Def) == 0 {
		return out, nil
	}

	var head struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(d.Def, &head); err != nil {
		return ast.Decl{}, fmt.Errorf("decode decl %q def header: %w", d.Name, err)
	}

	switch head.Kind {
	case "macro":
		var v struct {
			Args []string `json:"args"`
		}
		if err := json.Unmarshal(d.Def, &v); err != nil {
			return ast.Decl{}, err
		}
		out.Def = ast.MacroDef{Args: v.Args}

	case "static":
		var v struct {
			Typed typeRefWire `json:"typed"`
			Tags  tagsWire    `json:"tags"`
		}
		if err := json.Unmarshal(d.Def, &v); err != nil {
			return ast.Decl{}, err
		}
		out.Def = ast.StaticDef{Typed: v.Typed.toAST(), Tags: v.Tags.toAST()}

	case "function":
		var v struct {
			Args []namedArgWire `json:"args"`
			Ret  *namedArgWire  `json:"ret"`
			Body blockWire      `json:"body"`
		}
		if err := json.Unmarshal(d.Def, &v); err != nil {
			return ast.Decl{}, err
		}
		args := make([]ast.NamedArg, len(v.Args))
		for i, a := range v.Args {
			args[i] = a.toAST()
		}
		var ret *ast.NamedArg
		if v.Ret != nil {
			r := v.Ret.toAST()
			ret = &r
		}
		body, err := v.Body.toAST()
		if err != nil {
			return ast.Decl{}, err
		}
		out.Def = ast.FunctionDef{Args: args, Ret: ret, Body: body}

	case "other":
		var v struct {
			Kind string `json:"otherKind"`
		}
		if err := json.Unmarshal(d.Def, &v); err != nil {
			return ast.Decl{}, err
		}
		out.Def = ast.OtherDef{Kind: v.Kind}

	default:
		return ast.Decl{}, fmt.Errorf("decode decl %q: unknown def kind %q", d.Name, head.Kind)
	}

	return out, nil
}

type cNameWire struct {
	Name nameWire `json:"name"`
	Loc  locWire  `json:"loc"`
}

func (c cNameWire) toAST() ast.CName {
	return ast.CName{Name: c.Name.toAST(), Loc: c.Loc.toAST()}
}

type moduleWire struct {
	Name   string      `json:"name"`
	Decls  []declWire  `json:"decls"`
	CNames []cNameWire `json:"cnames"`
}

func (m moduleWire) toAST() (ast.Module, error) {
	decls := make([]ast.Decl, len(m.Decls))
	for i, d := range m.Decls {
		decl, err := d.toAST()
		if err != nil {
			return ast.Module{}, err
		}
		decls[i] = decl
	}
	cnames := make([]ast.CName, len(m.CNames))
	for i, c := range m.CNames {
		cnames[i] = c.toAST()
	}
	return ast.Module{Name: m.Name, Decls: decls, CNames: cnames}, nil
}
