// Copyright 2025 Magnus Pierre
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package sandbox

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/scanner"
	"go/token"
	"strings"

	"parqcel/datatable"
)

// Reserved identifiers of transformation programs.
const (
	DatasetName = "dataset"
	ResultName  = "result"
	PackageName = "tbl"
)

// allowedIdents are the only names a program may mention.
var allowedIdents = map[string]bool{
	DatasetName: true,
	PackageName: true,
	ResultName:  true,
	"true":      true,
	"false":     true,
	"nil":       true,
}

// callRoots are the names a call chain may start from.
var callRoots = map[string]bool{
	DatasetName: true,
	PackageName: true,
	ResultName:  true,
}

const (
	wrapPrefix = "package p\nfunc _() {\n"
	wrapSuffix = "\n}\n"
)

// Validate checks transformation code against the allow-list and returns the
// statements of the function body to run, the last one assigning result.
func Validate(code string) (string, error) {
	if err := scanForImports(code); err != nil {
		return "", err
	}

	src := wrapPrefix + code + wrapSuffix
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "transform.go", src, parser.SkipObjectResolution)
	if err != nil {
		return "", fmt.Errorf("%w: %s", datatable.ErrSandboxSyntax, trimPosition(err))
	}

	var body *ast.BlockStmt
	for _, decl := range file.Decls {
		if fn, ok := decl.(*ast.FuncDecl); ok && fn.Name.Name == "_" {
			body = fn.Body
		}
	}
	if body == nil || len(file.Decls) != 1 {
		return "", fmt.Errorf("%w: declarations are not allowed", datatable.ErrSandboxPolicy)
	}

	stmts := make([]ast.Stmt, 0, len(body.List))
	for _, s := range body.List {
		if _, empty := s.(*ast.EmptyStmt); !empty {
			stmts = append(stmts, s)
		}
	}
	if len(stmts) == 0 {
		return "", fmt.Errorf("%w: program is empty", datatable.ErrSandboxResult)
	}

	text := func(n ast.Node) string {
		return src[fset.Position(n.Pos()).Offset:fset.Position(n.End()).Offset]
	}

	var (
		out      strings.Builder
		assigned bool
	)
	for i, s := range stmts {
		last := i == len(stmts)-1
		switch st := s.(type) {
		case *ast.ExprStmt:
			if err := checkExpr(st.X); err != nil {
				return "", err
			}
			if last {
				fmt.Fprintf(&out, "%s = %s\n", ResultName, text(st.X))
				assigned = true
				continue
			}
			if _, call := st.X.(*ast.CallExpr); !call {
				return "", fmt.Errorf("%w: %s is evaluated but not used", datatable.ErrSandboxSyntax, text(st.X))
			}
			fmt.Fprintf(&out, "%s\n", text(st.X))

		case *ast.AssignStmt:
			if len(st.Lhs) != 1 || len(st.Rhs) != 1 {
				return "", fmt.Errorf("%w: only single assignments to %s are allowed", datatable.ErrSandboxPolicy, ResultName)
			}
			id, ok := st.Lhs[0].(*ast.Ident)
			if !ok || id.Name != ResultName {
				return "", fmt.Errorf("%w: assignment to %s; only %s may be assigned", datatable.ErrSandboxPolicy, text(st.Lhs[0]), ResultName)
			}
			if st.Tok != token.ASSIGN && st.Tok != token.DEFINE {
				return "", fmt.Errorf("%w: operator %s is not allowed", datatable.ErrSandboxPolicy, st.Tok)
			}
			if err := checkExpr(st.Rhs[0]); err != nil {
				return "", err
			}
			fmt.Fprintf(&out, "%s = %s\n", ResultName, text(st.Rhs[0]))
			assigned = true

		default:
			return "", fmt.Errorf("%w: %s statements are not allowed", datatable.ErrSandboxPolicy, stmtKind(s))
		}
	}
	if !assigned {
		return "", fmt.Errorf("%w: program does not produce %s", datatable.ErrSandboxResult, ResultName)
	}
	return out.String(), nil
}

// scanForImports rejects any import keyword, even in code that would not parse.
func scanForImports(code string) error {
	fset := token.NewFileSet()
	file := fset.AddFile("transform.go", fset.Base(), len(code))

	var s scanner.Scanner
	s.Init(file, []byte(code), func(token.Position, string) {}, 0)
	for {
		_, tok, _ := s.Scan()
		switch tok {
		case token.EOF:
			return nil
		case token.IMPORT:
			return fmt.Errorf("%w: imports are not allowed", datatable.ErrSandboxPolicy)
		}
	}
}

// checkExpr walks an expression and rejects anything outside the allow-list.
func checkExpr(e ast.Expr) error {
	switch x := e.(type) {
	case *ast.BasicLit:
		return nil
	case *ast.Ident:
		if !allowedIdents[x.Name] {
			return fmt.Errorf("%w: name %q is not available", datatable.ErrSandboxPolicy, x.Name)
		}
		return nil
	case *ast.ParenExpr:
		return checkExpr(x.X)
	case *ast.SelectorExpr:
		if !ast.IsExported(x.Sel.Name) {
			return fmt.Errorf("%w: %s is not exported", datatable.ErrSandboxPolicy, x.Sel.Name)
		}
		return checkExpr(x.X)
	case *ast.CallExpr:
		if x.Ellipsis.IsValid() {
			return fmt.Errorf("%w: variadic spreading is not allowed", datatable.ErrSandboxPolicy)
		}
		if _, ok := x.Fun.(*ast.SelectorExpr); !ok {
			return fmt.Errorf("%w: only methods of %s or %s may be called", datatable.ErrSandboxPolicy, DatasetName, PackageName)
		}
		if root := chainRoot(x.Fun); !callRoots[root] {
			return fmt.Errorf("%w: call on %q is not allowed", datatable.ErrSandboxPolicy, root)
		}
		if err := checkExpr(x.Fun); err != nil {
			return err
		}
		for _, arg := range x.Args {
			if err := checkExpr(arg); err != nil {
				return err
			}
		}
		return nil
	case *ast.UnaryExpr, *ast.BinaryExpr:
		if !isConstant(x) {
			return fmt.Errorf("%w: operators may only combine literals", datatable.ErrSandboxPolicy)
		}
		return nil
	}
	return fmt.Errorf("%w: %s expressions are not allowed", datatable.ErrSandboxPolicy, exprKind(e))
}

// chainRoot returns the identifier a selector/call chain starts from.
func chainRoot(e ast.Expr) string {
	for {
		switch x := e.(type) {
		case *ast.SelectorExpr:
			e = x.X
		case *ast.CallExpr:
			e = x.Fun
		case *ast.ParenExpr:
			e = x.X
		case *ast.Ident:
			return x.Name
		default:
			return exprKind(e)
		}
	}
}

func isConstant(e ast.Expr) bool {
	switch x := e.(type) {
	case *ast.BasicLit:
		return true
	case *ast.Ident:
		return x.Name == "true" || x.Name == "false"
	case *ast.ParenExpr:
		return isConstant(x.X)
	case *ast.UnaryExpr:
		switch x.Op {
		case token.SUB, token.ADD, token.NOT, token.XOR:
			return isConstant(x.X)
		}
		return false
	case *ast.BinaryExpr:
		return isConstant(x.X) && isConstant(x.Y)
	}
	return false
}

func exprKind(e ast.Expr) string {
	switch e.(type) {
	case *ast.FuncLit:
		return "function literal"
	case *ast.CompositeLit:
		return "composite literal"
	case *ast.IndexExpr, *ast.IndexListExpr:
		return "index"
	case *ast.SliceExpr:
		return "slice"
	case *ast.TypeAssertExpr:
		return "type assertion"
	case *ast.StarExpr:
		return "pointer"
	case *ast.KeyValueExpr:
		return "key/value"
	case *ast.ArrayType, *ast.MapType, *ast.ChanType, *ast.FuncType, *ast.InterfaceType, *ast.StructType:
		return "type"
	}
	return fmt.Sprintf("%T", e)
}

func stmtKind(s ast.Stmt) string {
	switch s.(type) {
	case *ast.ForStmt, *ast.RangeStmt:
		return "loop"
	case *ast.GoStmt:
		return "go"
	case *ast.DeferStmt:
		return "defer"
	case *ast.SendStmt, *ast.SelectStmt:
		return "channel"
	case *ast.DeclStmt:
		return "declaration"
	case *ast.IfStmt, *ast.SwitchStmt, *ast.TypeSwitchStmt:
		return "branching"
	case *ast.ReturnStmt:
		return "return"
	case *ast.BranchStmt, *ast.LabeledStmt:
		return "jump"
	case *ast.IncDecStmt:
		return "increment"
	case *ast.BlockStmt:
		return "block"
	}
	return fmt.Sprintf("%T", s)
}

// trimPosition drops the wrapper's file/line prefix and reports lines of the
// user's code.
func trimPosition(err error) string {
	list, ok := err.(scanner.ErrorList)
	if !ok || len(list) == 0 {
		return err.Error()
	}
	first := list[0]
	line := first.Pos.Line - strings.Count(wrapPrefix, "\n")
	if line < 1 {
		return first.Msg
	}
	return fmt.Sprintf("line %d: %s", line, first.Msg)
}
