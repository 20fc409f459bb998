// Package entitypath builds the key/value addresses that name entities inside
// a guest library. Boolean flags are present only when set and carry "true".
package entitypath

import "github.com/broady/metaffi-idl/idl"

// Address keys.
const (
	KeyCallable         = "callable"
	KeyAttribute        = "attribute"
	KeyGetter           = "getter"
	KeySetter           = "setter"
	KeyInstanceRequired = "instance_required"
	KeyVarargs          = "varargs"
	KeyNamedArgs        = "named_args"
	KeyGuestLib         = idl.GuestLibKey

	// Go guests address variables and struct fields with their own keys.
	KeyGlobal = "global"
	KeyField  = "field"
)

// ConstructorMarker names the constructor member of a class.
const ConstructorMarker = "__init__"

const flagTrue = "true"

// Function addresses a module-level function.
func Function(name string, varargs, namedArgs bool) idl.EntityPath {
	p := idl.EntityPath{KeyCallable: name}
	setCallFlags(p, varargs, namedArgs)
	return p
}

// Callable addresses a symbol by its plain name, without call flags.
func Callable(name string) idl.EntityPath {
	return idl.EntityPath{KeyCallable: name}
}

// Method addresses a class member function as "Class.name".
func Method(class, name string, instanceRequired, varargs, namedArgs bool) idl.EntityPath {
	p := idl.EntityPath{KeyCallable: class + "." + name}
	setFlag(p, KeyInstanceRequired, instanceRequired)
	setCallFlags(p, varargs, namedArgs)
	return p
}

// Constructor addresses the constructor of class.
func Constructor(class string, varargs, namedArgs bool) idl.EntityPath {
	p := idl.EntityPath{KeyCallable: class + "." + ConstructorMarker}
	setCallFlags(p, varargs, namedArgs)
	return p
}

// GlobalGetter addresses the read side of a module attribute.
func GlobalGetter(name string) idl.EntityPath {
	return idl.EntityPath{KeyAttribute: name, KeyGetter: flagTrue}
}

// GlobalSetter addresses the write side of a module attribute.
func GlobalSetter(name string) idl.EntityPath {
	return idl.EntityPath{KeyAttribute: name, KeySetter: flagTrue}
}

// FieldGetter addresses the read side of a class attribute.
func FieldGetter(class, name string, instanceRequired bool) idl.EntityPath {
	p := idl.EntityPath{KeyAttribute: class + "." + name, KeyGetter: flagTrue}
	setFlag(p, KeyInstanceRequired, instanceRequired)
	return p
}

// FieldSetter addresses the write side of a class attribute.
func FieldSetter(class, name string, instanceRequired bool) idl.EntityPath {
	p := idl.EntityPath{KeyAttribute: class + "." + name, KeySetter: flagTrue}
	setFlag(p, KeyInstanceRequired, instanceRequired)
	return p
}

// VariableGetter addresses the read side of a Go package variable or constant.
func VariableGetter(name string) idl.EntityPath {
	return idl.EntityPath{KeyGlobal: name, KeyGetter: flagTrue}
}

// VariableSetter addresses the write side of a Go package variable.
func VariableSetter(name string) idl.EntityPath {
	return idl.EntityPath{KeyGlobal: name, KeySetter: flagTrue}
}

// StructFieldGetter addresses the read side of a Go struct field.
func StructFieldGetter(class, name string) idl.EntityPath {
	return idl.EntityPath{KeyField: class + "." + name, KeyGetter: flagTrue}
}

// StructFieldSetter addresses the write side of a Go struct field.
func StructFieldSetter(class, name string) idl.EntityPath {
	return idl.EntityPath{KeyField: class + "." + name, KeySetter: flagTrue}
}

// Flag reports whether a boolean key is set on p.
func Flag(p idl.EntityPath, key string) bool {
	return p[key] == flagTrue
}

func setCallFlags(p idl.EntityPath, varargs, namedArgs bool) {
	setFlag(p, KeyVarargs, varargs)
	setFlag(p, KeyNamedArgs, namedArgs)
}

func setFlag(p idl.EntityPath, key string, on bool) {
	if on {
		p[key] = flagTrue
	}
}
