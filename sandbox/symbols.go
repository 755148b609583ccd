package sandbox

import (
	"reflect"

	"github.com/traefik/yaegi/interp"

	"parqcel/sandbox/tbl"
)

// tblImportPath is the import path programs use for the tbl namespace.
const tblImportPath = "parqcel/sandbox/tbl"

// Symbols is the complete symbol table given to the interpreter. No other
// package, including the standard library, is importable.
var Symbols = interp.Exports{
	tblImportPath + "/tbl": {
		"Frame":   reflect.ValueOf((*tbl.Frame)(nil)),
		"Expr":    reflect.ValueOf((*tbl.Expr)(nil)),
		"Column":  reflect.ValueOf((*tbl.Column)(nil)),
		"SortKey": reflect.ValueOf((*tbl.SortKey)(nil)),
		"Col":     reflect.ValueOf(tbl.Col),
		"Lit":     reflect.ValueOf(tbl.Lit),
		"Asc":     reflect.ValueOf(tbl.Asc),
		"Desc":    reflect.ValueOf(tbl.Desc),
	},
}
