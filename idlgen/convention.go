package idlgen

import (
	"fmt"

	"github.com/broady/metaffi-idl/entitypath"
	"github.com/broady/metaffi-idl/extractor"
	"github.com/broady/metaffi-idl/idl"
	"github.com/broady/metaffi-idl/typemap"
)

// Convention holds the naming and addressing rules of one guest language.
type Convention interface {
	// TargetLanguage is written to target_language.
	TargetLanguage() string
	// Mapper returns the default type mapper of the language.
	Mapper() typemap.Mapper

	// IDLSource returns idl_source for a module extracted from a file with the given stem.
	IDLSource(info *extractor.ModuleInfo, stem string) string
	// GuestLib returns metaffi_guest_lib.
	GuestLib(idlSource, stem string) string
	// Module fills the module comment and external resources.
	Module(mod *idl.ModuleDefinition, info *extractor.ModuleInfo, fileName string)

	// VariadicInPath reports whether variadic parameters are carried by the
	// entity path flags instead of the parameter list.
	VariadicInPath() bool

	FunctionPath(fn *extractor.FunctionInfo) idl.EntityPath
	Constructor(class string, ctor *extractor.FunctionInfo) Entity
	// DefaultConstructor is used for a class that declares no constructor.
	DefaultConstructor(class string) extractor.FunctionInfo
	// Release returns the release entity of a class with a destructor, or nil.
	Release(class string) *Entity
	Method(class string, m *extractor.FunctionInfo) Entity
	FieldAccessors(class string, f *extractor.FieldInfo) (getter, setter Entity)
	GlobalAccessors(g *extractor.GlobalInfo) (getter, setter Entity)
}

// Entity names and addresses one generated function-like entity.
type Entity struct {
	Name             string
	Comment          string
	Path             idl.EntityPath
	InstanceRequired bool
}

// ForLanguage returns the convention registered for a target language.
func ForLanguage(lang string) (Convention, error) {
	switch lang {
	case "python3", "python":
		return &PythonConvention{}, nil
	case "go":
		return &GoConvention{}, nil
	default:
		return nil, idl.Errorf(idl.CodeInvalidOption, "no IDL convention for language %q", lang).WithDetail("language", lang)
	}
}

// PythonConvention generates IDL for Python 3 guest modules.
type PythonConvention struct {
	// DetectStaticMethods derives instance_required from @staticmethod and
	// @classmethod. When false every method requires an instance.
	DetectStaticMethods bool
}

func (*PythonConvention) TargetLanguage() string { return "python3" }

func (*PythonConvention) Mapper() typemap.Mapper { return typemap.Python{} }

func (*PythonConvention) IDLSource(_ *extractor.ModuleInfo, stem string) string { return stem }

func (*PythonConvention) GuestLib(idlSource, _ string) string { return idlSource }

func (*PythonConvention) Module(mod *idl.ModuleDefinition, _ *extractor.ModuleInfo, fileName string) {
	mod.Comment = "Generated from " + fileName
	mod.ExternalResources = []string{mod.Name}
}

func (*PythonConvention) VariadicInPath() bool { return true }

func (*PythonConvention) FunctionPath(fn *extractor.FunctionInfo) idl.EntityPath {
	return entitypath.Function(fn.Name, fn.HasVarargs, fn.HasNamedArgs)
}

func (*PythonConvention) Constructor(class string, ctor *extractor.FunctionInfo) Entity {
	comment := ctor.Comment
	if comment == "" {
		comment = "Constructor for " + class
	}
	return Entity{
		Name:    entitypath.ConstructorMarker,
		Comment: comment,
		Path:    entitypath.Constructor(class, ctor.HasVarargs, ctor.HasNamedArgs),
	}
}

func (*PythonConvention) DefaultConstructor(class string) extractor.FunctionInfo {
	return extractor.FunctionInfo{
		Name:        entitypath.ConstructorMarker,
		Comment:     "Default constructor",
		ReturnTypes: []string{class},
	}
}

func (*PythonConvention) Release(class string) *Entity {
	return &Entity{
		Name:             "release",
		Comment:          fmt.Sprintf("Release %s instance", class),
		Path:             entitypath.Method(class, "release", true, false, false),
		InstanceRequired: true,
	}
}

func (c *PythonConvention) Method(class string, m *extractor.FunctionInfo) Entity {
	instance := true
	if c.DetectStaticMethods {
		instance = !m.IsStatic
	}
	return Entity{
		Name:             m.Name,
		Comment:          m.Comment,
		Path:             entitypath.Method(class, m.Name, instance, m.HasVarargs, m.HasNamedArgs),
		InstanceRequired: instance,
	}
}

func (*PythonConvention) FieldAccessors(class string, f *extractor.FieldInfo) (getter, setter Entity) {
	getter = Entity{
		Name:             "get_" + f.Name,
		Comment:          "Get " + f.Name,
		Path:             entitypath.FieldGetter(class, f.Name, true),
		InstanceRequired: true,
	}
	setter = Entity{
		Name:             "set_" + f.Name,
		Comment:          "Set " + f.Name,
		Path:             entitypath.FieldSetter(class, f.Name, true),
		InstanceRequired: true,
	}
	return getter, setter
}

func (*PythonConvention) GlobalAccessors(g *extractor.GlobalInfo) (getter, setter Entity) {
	getter = Entity{
		Name:    "Get" + g.Name,
		Comment: "Get global variable " + g.Name,
		Path:    entitypath.GlobalGetter(g.Name),
	}
	setter = Entity{
		Name:    "Set" + g.Name,
		Comment: "Set global variable " + g.Name,
		Path:    entitypath.GlobalSetter(g.Name),
	}
	return getter, setter
}

// GoConvention generates IDL for Go guest packages.
type GoConvention struct{}

func (*GoConvention) TargetLanguage() string { return "go" }

func (*GoConvention) Mapper() typemap.Mapper { return typemap.Go{} }

func (*GoConvention) IDLSource(info *extractor.ModuleInfo, _ string) string { return info.Name }

func (*GoConvention) GuestLib(_, stem string) string { return stem + "_MetaFFIGuest" }

func (*GoConvention) Module(mod *idl.ModuleDefinition, info *extractor.ModuleInfo, _ string) {
	mod.Comment = info.Comment
}

func (*GoConvention) VariadicInPath() bool { return false }

func (*GoConvention) FunctionPath(fn *extractor.FunctionInfo) idl.EntityPath {
	return entitypath.Callable(fn.Name)
}

func (*GoConvention) Constructor(_ string, ctor *extractor.FunctionInfo) Entity {
	return Entity{
		Name:    ctor.Name,
		Comment: ctor.Comment,
		Path:    entitypath.Callable(ctor.Name),
	}
}

func (*GoConvention) DefaultConstructor(class string) extractor.FunctionInfo {
	return extractor.FunctionInfo{
		Name:        "New" + class,
		Comment:     "Default constructor",
		ReturnTypes: []string{"*" + class},
	}
}

// Release returns nil: Go values are released by the guest runtime.
func (*GoConvention) Release(string) *Entity { return nil }

func (*GoConvention) Method(class string, m *extractor.FunctionInfo) Entity {
	return Entity{
		Name:             m.Name,
		Comment:          m.Comment,
		Path:             entitypath.Callable(class + "." + m.Name),
		InstanceRequired: true,
	}
}

func (*GoConvention) FieldAccessors(class string, f *extractor.FieldInfo) (getter, setter Entity) {
	getter = Entity{
		Name:             "Get" + f.Name,
		Comment:          "Get " + f.Name,
		Path:             entitypath.StructFieldGetter(class, f.Name),
		InstanceRequired: true,
	}
	setter = Entity{
		Name:             "Set" + f.Name,
		Comment:          "Set " + f.Name,
		Path:             entitypath.StructFieldSetter(class, f.Name),
		InstanceRequired: true,
	}
	return getter, setter
}

func (*GoConvention) GlobalAccessors(g *extractor.GlobalInfo) (getter, setter Entity) {
	getter = Entity{
		Name:    "Get" + g.Name,
		Comment: g.Comment,
		Path:    entitypath.VariableGetter(g.Name),
	}
	setter = Entity{
		Name:    "Set" + g.Name,
		Comment: "Set " + g.Name,
		Path:    entitypath.VariableSetter(g.Name),
	}
	return getter, setter
}
