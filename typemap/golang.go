package typemap

import (
	"go/ast"
	"go/parser"
	"go/types"

	"github.com/broady/metaffi-idl/idl"
)

var goBasic = map[string]idl.MetaFFIType{
	"bool":    idl.Bool,
	"int":     idl.Int64,
	"int8":    idl.Int8,
	"int16":   idl.Int16,
	"int32":   idl.Int32,
	"rune":    idl.Int32,
	"int64":   idl.Int64,
	"uint":    idl.Uint64,
	"uint8":   idl.Uint8,
	"byte":    idl.Uint8,
	"uint16":  idl.Uint16,
	"uint32":  idl.Uint32,
	"uint64":  idl.Uint64,
	"uintptr": idl.Size,
	"float32": idl.Float32,
	"float64": idl.Float64,
	"string":  idl.String8,
	"any":     idl.Any,
}

// Go maps Go type expressions.
type Go struct{}

// Map implements Mapper. Unparsable expressions map to a handle.
func (g Go) Map(expr string) Mapping {
	e, err := parser.ParseExpr(expr)
	if err != nil {
		return handle(expr)
	}
	return g.MapExpr(e)
}

// MapExpr maps a parsed type expression.
func (Go) MapExpr(expr ast.Expr) Mapping {
	if expr == nil {
		return scalar(idl.Null)
	}
	dims := 0
	cur := expr
loop:
	for {
		switch t := cur.(type) {
		case *ast.ArrayType:
			dims++
			cur = t.Elt
		case *ast.Ellipsis:
			dims++
			cur = t.Elt
		case *ast.StarExpr:
			cur = t.X
		case *ast.ParenExpr:
			cur = t.X
		default:
			break loop
		}
	}
	m := mapGoBase(cur)
	m.Dimensions = dims
	return finish(m)
}

func mapGoBase(expr ast.Expr) Mapping {
	switch t := expr.(type) {
	case *ast.Ident:
		if typ, ok := goBasic[t.Name]; ok {
			return scalar(typ)
		}
		return handle(t.Name)
	case *ast.InterfaceType:
		if t.Methods == nil || len(t.Methods.List) == 0 {
			return scalar(idl.Any)
		}
	case *ast.FuncType:
		return scalar(idl.Callable)
	}
	// selectors, maps, channels, structs, generics and non-empty interfaces
	return handle(types.ExprString(expr))
}
