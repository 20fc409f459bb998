// Package typemap converts between source-language type expressions and the
// canonical MetaFFI type vocabulary.
//
// Forward mappers never fail: an expression that cannot be resolved degrades
// to "any" or to an opaque handle carrying the expression as its alias.
package typemap

import "github.com/broady/metaffi-idl/idl"

// Mapping is the canonical form of a source type expression.
type Mapping struct {
	Type       idl.MetaFFIType
	Dimensions int
	// Alias is the source type name; only set for handle kinds.
	Alias string
}

// Mapper maps a source type expression to its canonical form.
type Mapper interface {
	Map(expr string) Mapping
}

// TypeInfo returns the runtime type info of the mapping.
func (m Mapping) TypeInfo() idl.TypeInfo {
	return idl.NewTypeInfo(m.Type, m.Dimensions, m.Alias)
}

// Arg builds an IR argument from the mapping.
func (m Mapping) Arg(name string) idl.ArgDefinition {
	return idl.NewArg(name, m.Type, m.Dimensions, m.Alias)
}

func handle(alias string) Mapping {
	return Mapping{Type: idl.Handle, Alias: alias}
}

func scalar(t idl.MetaFFIType) Mapping {
	return Mapping{Type: t}
}

// finish drops the alias of non-handle results.
func finish(m Mapping) Mapping {
	if !m.Type.IsHandle() {
		m.Alias = ""
	}
	return m
}
