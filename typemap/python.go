package typemap

import (
	"strings"

	"github.com/broady/metaffi-idl/idl"
)

var pythonBasic = map[string]idl.MetaFFIType{
	"int":       idl.Int32,
	"float":     idl.Float64,
	"str":       idl.String8,
	"bool":      idl.Bool,
	"bytes":     idl.Uint8Array,
	"bytearray": idl.Uint8Array,
	"None":      idl.Null,
	"NoneType":  idl.Null,
	"Any":       idl.Any,
	"any":       idl.Any,
	"object":    idl.Handle,
	"list":      idl.HandleArray,
	"dict":      idl.Handle,
	"tuple":     idl.Handle,
	"set":       idl.Handle,
	"frozenset": idl.Handle,
	"complex":   idl.Handle,
	"type":      idl.Handle,
	"Callable":  idl.Handle,
}

// Python maps Python annotation text.
type Python struct{}

// Map implements Mapper.
func (Python) Map(expr string) Mapping {
	return finish(mapPython(expr))
}

func mapPython(expr string) Mapping {
	s := strings.TrimSpace(expr)
	s = strings.TrimPrefix(s, "typing.")
	if s == "" || s == "_empty" {
		return scalar(idl.Any)
	}

	// Optional and union types are not decomposed.
	if len(splitTopLevel(s, '|')) > 1 {
		return scalar(idl.Any)
	}

	name, args, ok := splitGeneric(s)
	if !ok {
		if t, found := pythonBasic[s]; found {
			if t.IsHandle() {
				return Mapping{Type: t, Alias: s}
			}
			return scalar(t)
		}
		return handle(s)
	}

	switch name {
	case "Optional", "Union":
		return scalar(idl.Any)
	case "List", "list":
		if len(args) != 1 {
			return Mapping{Type: idl.HandleArray, Alias: s}
		}
		inner := mapPython(args[0])
		inner.Dimensions++
		return inner
	}
	// Dict[...], Tuple[...], Callable[...] and user generics cross as handles.
	return handle(s)
}

// splitGeneric splits "Name[a, b]" into its name and top-level arguments.
func splitGeneric(s string) (string, []string, bool) {
	open := strings.IndexByte(s, '[')
	if open <= 0 || !strings.HasSuffix(s, "]") {
		return "", nil, false
	}
	name := strings.TrimPrefix(strings.TrimSpace(s[:open]), "typing.")
	return name, splitTopLevel(s[open+1:len(s)-1], ','), true
}

// splitTopLevel splits s on sep, ignoring separators nested in brackets.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[', '(':
			depth++
		case ']', ')':
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	return append(parts, strings.TrimSpace(s[start:]))
}
