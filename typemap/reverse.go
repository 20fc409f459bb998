package typemap

import (
	"strings"

	"github.com/broady/metaffi-idl/idl"
)

var pythonAnnotations = map[idl.MetaFFIType]string{
	idl.Int8:     "int",
	idl.Int16:    "int",
	idl.Int32:    "int",
	idl.Int64:    "int",
	idl.Uint8:    "int",
	idl.Uint16:   "int",
	idl.Uint32:   "int",
	idl.Uint64:   "int",
	idl.Size:     "int",
	idl.Float32:  "float",
	idl.Float64:  "float",
	idl.String8:  "str",
	idl.String16: "str",
	idl.String32: "str",
	idl.Char8:    "str",
	idl.Char16:   "str",
	idl.Char32:   "str",
	idl.Bool:     "bool",
	idl.Any:      "Any",
	idl.Callable: "Any",
	idl.Null:     "None",
}

// PythonAnnotation renders a canonical type as a python3 annotation.
// An "_array" type with zero dimensions counts as one dimension.
func PythonAnnotation(typ idl.MetaFFIType, dims int, alias string) string {
	elem := typ.ElementType()
	base, ok := pythonAnnotations[elem]
	switch {
	case elem == idl.Handle:
		base = "Any"
		if alias != "" {
			base = alias
		}
	case !ok:
		base = "Any"
	}
	return wrap(base, effectiveDims(typ, dims), "List[", "]")
}

var goTypes = map[idl.MetaFFIType]string{
	idl.Int8:     "int8",
	idl.Int16:    "int16",
	idl.Int32:    "int32",
	idl.Int64:    "int64",
	idl.Uint8:    "uint8",
	idl.Uint16:   "uint16",
	idl.Uint32:   "uint32",
	idl.Uint64:   "uint64",
	idl.Size:     "uint64",
	idl.Float32:  "float32",
	idl.Float64:  "float64",
	idl.String8:  "string",
	idl.String16: "string",
	idl.String32: "string",
	idl.Char8:    "uint8",
	idl.Char16:   "uint16",
	idl.Char32:   "rune",
	idl.Bool:     "bool",
}

// GoType renders a canonical type as a Go type for host stubs. Handles,
// callables and dynamic values are carried as interface{}.
func GoType(typ idl.MetaFFIType, dims int) string {
	base, ok := goTypes[typ.ElementType()]
	if !ok {
		base = "interface{}"
	}
	return strings.Repeat("[]", effectiveDims(typ, dims)) + base
}

func effectiveDims(typ idl.MetaFFIType, dims int) int {
	if dims == 0 && typ.IsArrayType() {
		return 1
	}
	return dims
}

func wrap(s string, n int, open, close string) string {
	for i := 0; i < n; i++ {
		s = open + s + close
	}
	return s
}
