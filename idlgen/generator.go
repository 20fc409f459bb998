// Package idlgen converts an extracted module into an IDL definition.
package idlgen

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/broady/metaffi-idl/extractor"
	"github.com/broady/metaffi-idl/idl"
	"github.com/broady/metaffi-idl/typemap"
)

// Generator builds IDL definitions following a Convention.
type Generator struct {
	Convention Convention
	// Mapper overrides the convention's type mapper when set.
	Mapper typemap.Mapper
}

// New creates a Generator using the convention's default mapper.
func New(c Convention) *Generator {
	return &Generator{Convention: c}
}

// Generate builds the IDL definition of info. sourcePath names the extracted
// file or package and provides the idl_* metadata. The result is validated.
func (g *Generator) Generate(info *extractor.ModuleInfo, sourcePath string) (*idl.IDLDefinition, error) {
	if g.Convention == nil {
		return nil, idl.Errorf(idl.CodeInvalidOption, "generator has no convention")
	}
	if info == nil || info.Name == "" {
		return nil, idl.Errorf(idl.CodeExtraction, "module info has no name")
	}

	full, err := filepath.Abs(sourcePath)
	if err != nil {
		return nil, err
	}
	fileName := filepath.Base(full)
	ext := filepath.Ext(fileName)
	stem := strings.TrimSuffix(fileName, ext)

	c := g.Convention
	source := c.IDLSource(info, stem)
	def := &idl.IDLDefinition{
		IDLSource:                source,
		IDLExtension:             ext,
		IDLFilenameWithExtension: fileName,
		IDLFullPath:              full,
		MetaFFIGuestLib:          c.GuestLib(source, stem),
		TargetLanguage:           c.TargetLanguage(),
		Modules:                  []idl.ModuleDefinition{g.module(info, fileName)},
	}
	def.FinalizeConstruction()

	if err := def.ValidateStrict(); err != nil {
		return nil, err
	}
	return def, nil
}

// GenerateJSON is Generate followed by idl.Marshal.
func (g *Generator) GenerateJSON(info *extractor.ModuleInfo, sourcePath string) ([]byte, error) {
	def, err := g.Generate(info, sourcePath)
	if err != nil {
		return nil, err
	}
	return idl.Marshal(def)
}

func (g *Generator) mapper() typemap.Mapper {
	if g.Mapper != nil {
		return g.Mapper
	}
	return g.Convention.Mapper()
}

func (g *Generator) module(info *extractor.ModuleInfo, fileName string) idl.ModuleDefinition {
	c := g.Convention
	mod := idl.ModuleDefinition{
		Name:      info.Name,
		Tags:      map[string]string{},
		Functions: []idl.FunctionDefinition{},
		Classes:   []idl.ClassDefinition{},
		Globals:   []idl.GlobalDefinition{},
	}
	c.Module(&mod, info, fileName)
	if mod.ExternalResources == nil {
		mod.ExternalResources = []string{}
	}

	overloads := overloadCounter{}
	for i := range info.Functions {
		fn := &info.Functions[i]
		def := g.function(idl.KindFunction, Entity{
			Name:    fn.Name,
			Comment: fn.Comment,
			Path:    c.FunctionPath(fn),
		}, fn.Parameters, fn.ReturnTypes)
		def.OverloadIndex = overloads.next(def.Name)
		mod.Functions = append(mod.Functions, def)
	}

	// Globals are exposed as accessor functions.
	for i := range info.Globals {
		gl := &info.Globals[i]
		getter, setter := c.GlobalAccessors(gl)
		if gl.HasGetter {
			def := g.function(idl.KindFunction, getter, nil, []string{gl.Type})
			def.OverloadIndex = overloads.next(def.Name)
			mod.Functions = append(mod.Functions, def)
		}
		if gl.HasSetter {
			def := g.function(idl.KindFunction, setter, []extractor.ParameterInfo{{Name: "value", Type: gl.Type}}, nil)
			def.OverloadIndex = overloads.next(def.Name)
			mod.Functions = append(mod.Functions, def)
		}
	}

	for i := range info.Classes {
		mod.Classes = append(mod.Classes, g.class(&info.Classes[i]))
	}
	return mod
}

func (g *Generator) class(cls *extractor.ClassInfo) idl.ClassDefinition {
	c := g.Convention
	def := idl.ClassDefinition{
		Name:         cls.Name,
		Comment:      cls.Comment,
		Tags:         map[string]string{},
		EntityPath:   idl.EntityPath{},
		Constructors: []idl.FunctionDefinition{},
		Methods:      []idl.FunctionDefinition{},
		Fields:       []idl.FieldDefinition{},
	}

	ctors := cls.Constructors
	if len(ctors) == 0 {
		ctors = []extractor.FunctionInfo{c.DefaultConstructor(cls.Name)}
	}
	overloads := overloadCounter{}
	for i := range ctors {
		ctor := &ctors[i]
		returns := ctor.ReturnTypes
		if len(returns) == 0 {
			returns = []string{cls.Name}
		}
		fn := g.function(idl.KindConstructor, c.Constructor(cls.Name, ctor), ctor.Parameters, returns)
		// A constructor always yields the class handle first.
		if fn.ReturnValues[0].Type != idl.Handle {
			fn.ReturnValues = []idl.ArgDefinition{idl.NewArg("ret_0", idl.Handle, 0, cls.Name)}
		}
		fn.OverloadIndex = overloads.next(fn.Name)
		def.Constructors = append(def.Constructors, fn)
	}

	if cls.HasDestructor {
		if rel := c.Release(cls.Name); rel != nil {
			fn := g.function(idl.KindRelease, *rel, nil, nil)
			def.Release = &fn
		}
	}

	for i := range cls.Methods {
		m := &cls.Methods[i]
		fn := g.function(idl.KindMethod, c.Method(cls.Name, m), m.Parameters, m.ReturnTypes)
		fn.OverloadIndex = overloads.next(fn.Name)
		def.Methods = append(def.Methods, fn)
	}

	for i := range cls.Fields {
		f := &cls.Fields[i]
		field := idl.FieldDefinition{ArgDefinition: g.arg(f.Name, f.Type)}
		field.Comment = f.Comment
		getter, setter := c.FieldAccessors(cls.Name, f)
		if f.HasGetter {
			fn := g.function(idl.KindGetter, getter, nil, []string{f.Type})
			field.Getter = &fn
		}
		if f.HasSetter {
			fn := g.function(idl.KindSetter, setter, []extractor.ParameterInfo{{Name: "value", Type: f.Type}}, nil)
			field.Setter = &fn
		}
		def.Fields = append(def.Fields, field)
	}
	return def
}

func (g *Generator) function(kind idl.FunctionKind, e Entity, params []extractor.ParameterInfo, returns []string) idl.FunctionDefinition {
	fn := idl.FunctionDefinition{
		Kind:             kind,
		Name:             e.Name,
		Comment:          e.Comment,
		Tags:             map[string]string{},
		EntityPath:       e.Path,
		Parameters:       []idl.ArgDefinition{},
		ReturnValues:     []idl.ArgDefinition{},
		InstanceRequired: kind.MethodLike() && e.InstanceRequired,
	}
	variadicInPath := g.Convention.VariadicInPath()
	for _, p := range params {
		if variadicInPath && p.Kind != extractor.ParamPositional {
			continue
		}
		arg := g.arg(p.Name, p.Type)
		arg.IsOptional = p.HasDefault
		fn.Parameters = append(fn.Parameters, arg)
	}
	for i, r := range returns {
		fn.ReturnValues = append(fn.ReturnValues, g.arg(fmt.Sprintf("ret_%d", i), r))
	}
	return fn
}

func (g *Generator) arg(name, typ string) idl.ArgDefinition {
	return g.mapper().Map(typ).Arg(name)
}

// overloadCounter numbers same-named entities within one scope.
type overloadCounter map[string]int

func (o overloadCounter) next(name string) int {
	i := o[name]
	o[name] = i + 1
	return i
}
