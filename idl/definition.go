package idl

// FunctionKind discriminates the function-like entities of the IR.
// Shared behaviour switches on the kind instead of relying on type hierarchies.
type FunctionKind int

const (
	KindFunction FunctionKind = iota
	KindMethod
	KindConstructor
	KindRelease
	KindGetter
	KindSetter
)

func (k FunctionKind) String() string {
	switch k {
	case KindFunction:
		return "function"
	case KindMethod:
		return "method"
	case KindConstructor:
		return "constructor"
	case KindRelease:
		return "release"
	case KindGetter:
		return "getter"
	case KindSetter:
		return "setter"
	default:
		return "unknown"
	}
}

// MethodLike reports whether entities of this kind carry instance_required.
func (k FunctionKind) MethodLike() bool {
	switch k {
	case KindMethod, KindRelease, KindGetter, KindSetter:
		return true
	}
	return false
}

// ArgDefinition describes one parameter or return value.
type ArgDefinition struct {
	Name       string            `json:"name"`
	Type       MetaFFIType       `json:"type"`
	TypeAlias  string            `json:"type_alias"`
	Comment    string            `json:"comment"`
	Tags       map[string]string `json:"tags"`
	Dimensions int               `json:"dimensions"`
	IsOptional bool              `json:"is_optional,omitempty"`
}

// NewArg builds an argument. The alias is dropped unless typ is a handle kind.
func NewArg(name string, typ MetaFFIType, dims int, alias string) ArgDefinition {
	if !typ.IsHandle() {
		alias = ""
	}
	return ArgDefinition{
		Name:       name,
		Type:       typ,
		TypeAlias:  alias,
		Tags:       map[string]string{},
		Dimensions: dims,
	}
}

// TypeInfo returns the runtime type info of the argument.
func (a *ArgDefinition) TypeInfo() TypeInfo {
	return NewTypeInfo(a.Type, a.Dimensions, a.TypeAlias)
}

// FunctionDefinition is any callable entity: free function, method,
// constructor, release hook or attribute accessor.
type FunctionDefinition struct {
	Kind          FunctionKind      `json:"-"`
	Name          string            `json:"name"`
	Comment       string            `json:"comment"`
	Tags          map[string]string `json:"tags"`
	EntityPath    EntityPath        `json:"entity_path"`
	Parameters    []ArgDefinition   `json:"parameters"`
	ReturnValues  []ArgDefinition   `json:"return_values"`
	OverloadIndex int               `json:"overload_index"`

	// InstanceRequired is only meaningful for method-like kinds.
	InstanceRequired bool `json:"-"`
}

// FirstOptionalIndex returns the index of the first optional parameter, or -1.
func (f *FunctionDefinition) FirstOptionalIndex() int {
	for i, p := range f.Parameters {
		if p.IsOptional {
			return i
		}
	}
	return -1
}

// ParameterTypes returns the runtime type infos of the parameters.
func (f *FunctionDefinition) ParameterTypes() []TypeInfo {
	return typeInfos(f.Parameters)
}

// ReturnTypes returns the runtime type infos of the return values.
func (f *FunctionDefinition) ReturnTypes() []TypeInfo {
	return typeInfos(f.ReturnValues)
}

func typeInfos(args []ArgDefinition) []TypeInfo {
	out := make([]TypeInfo, len(args))
	for i := range args {
		out[i] = args[i].TypeInfo()
	}
	return out
}

// FieldDefinition is a class attribute exposed through accessors.
type FieldDefinition struct {
	ArgDefinition
	Getter *FunctionDefinition `json:"getter"`
	Setter *FunctionDefinition `json:"setter"`
}

// GlobalDefinition is a module attribute exposed through accessors.
type GlobalDefinition struct {
	ArgDefinition
	Getter *FunctionDefinition `json:"getter"`
	Setter *FunctionDefinition `json:"setter"`
}

// ClassDefinition describes a class and its members.
type ClassDefinition struct {
	Name         string               `json:"name"`
	Comment      string               `json:"comment"`
	Tags         map[string]string    `json:"tags"`
	EntityPath   EntityPath           `json:"entity_path"`
	Constructors []FunctionDefinition `json:"constructors"`
	Release      *FunctionDefinition  `json:"release"`
	Methods      []FunctionDefinition `json:"methods"`
	Fields       []FieldDefinition    `json:"fields"`
}

// ModuleDefinition groups the entities of one guest module.
type ModuleDefinition struct {
	Name              string               `json:"name"`
	Comment           string               `json:"comment"`
	Tags              map[string]string    `json:"tags"`
	Functions         []FunctionDefinition `json:"functions"`
	Classes           []ClassDefinition    `json:"classes"`
	Globals           []GlobalDefinition   `json:"globals"`
	ExternalResources []string             `json:"external_resources"`
}

// IDLDefinition is the root of the IR.
type IDLDefinition struct {
	IDLSource                string             `json:"idl_source"`
	IDLExtension             string             `json:"idl_extension"`
	IDLFilenameWithExtension string             `json:"idl_filename_with_extension"`
	IDLFullPath              string             `json:"idl_full_path"`
	MetaFFIGuestLib          string             `json:"metaffi_guest_lib"`
	TargetLanguage           string             `json:"target_language"`
	Modules                  []ModuleDefinition `json:"modules"`

	finalized bool
}

// assignKinds sets the discriminant of every function-like entity from its
// position in the tree. Decoded JSON carries no explicit kind.
func (d *IDLDefinition) assignKinds() {
	for mi := range d.Modules {
		m := &d.Modules[mi]
		for i := range m.Functions {
			m.Functions[i].Kind = KindFunction
			m.Functions[i].InstanceRequired = false
		}
		for i := range m.Globals {
			setAccessorKinds(m.Globals[i].Getter, m.Globals[i].Setter)
		}
		for ci := range m.Classes {
			c := &m.Classes[ci]
			for i := range c.Constructors {
				c.Constructors[i].Kind = KindConstructor
				c.Constructors[i].InstanceRequired = false
			}
			if c.Release != nil {
				c.Release.Kind = KindRelease
			}
			for i := range c.Methods {
				c.Methods[i].Kind = KindMethod
			}
			for i := range c.Fields {
				setAccessorKinds(c.Fields[i].Getter, c.Fields[i].Setter)
			}
		}
	}
}

func setAccessorKinds(getter, setter *FunctionDefinition) {
	if getter != nil {
		getter.Kind = KindGetter
	}
	if setter != nil {
		setter.Kind = KindSetter
	}
}

// Clone returns a deep copy of the definition.
func (d *IDLDefinition) Clone() *IDLDefinition {
	c := *d
	c.Modules = make([]ModuleDefinition, len(d.Modules))
	for i := range d.Modules {
		c.Modules[i] = d.Modules[i].Clone()
	}
	return &c
}

// Clone returns a deep copy of the module.
func (m *ModuleDefinition) Clone() ModuleDefinition {
	c := *m
	c.Tags = cloneTags(m.Tags)
	c.Functions = cloneFunctions(m.Functions)
	c.Classes = make([]ClassDefinition, len(m.Classes))
	for i := range m.Classes {
		c.Classes[i] = m.Classes[i].Clone()
	}
	c.Globals = make([]GlobalDefinition, len(m.Globals))
	for i, g := range m.Globals {
		c.Globals[i] = GlobalDefinition{
			ArgDefinition: g.ArgDefinition.Clone(),
			Getter:        g.Getter.clonePtr(),
			Setter:        g.Setter.clonePtr(),
		}
	}
	c.ExternalResources = append([]string(nil), m.ExternalResources...)
	return c
}

// Clone returns a deep copy of the class.
func (c *ClassDefinition) Clone() ClassDefinition {
	out := *c
	out.Tags = cloneTags(c.Tags)
	out.EntityPath = c.EntityPath.Clone()
	out.Constructors = cloneFunctions(c.Constructors)
	out.Release = c.Release.clonePtr()
	out.Methods = cloneFunctions(c.Methods)
	out.Fields = make([]FieldDefinition, len(c.Fields))
	for i, f := range c.Fields {
		out.Fields[i] = FieldDefinition{
			ArgDefinition: f.ArgDefinition.Clone(),
			Getter:        f.Getter.clonePtr(),
			Setter:        f.Setter.clonePtr(),
		}
	}
	return out
}

// Clone returns a deep copy of the function.
func (f *FunctionDefinition) Clone() FunctionDefinition {
	out := *f
	out.Tags = cloneTags(f.Tags)
	out.EntityPath = f.EntityPath.Clone()
	out.Parameters = cloneArgs(f.Parameters)
	out.ReturnValues = cloneArgs(f.ReturnValues)
	return out
}

func (f *FunctionDefinition) clonePtr() *FunctionDefinition {
	if f == nil {
		return nil
	}
	c := f.Clone()
	return &c
}

// Clone returns a deep copy of the argument.
func (a ArgDefinition) Clone() ArgDefinition {
	a.Tags = cloneTags(a.Tags)
	return a
}

func cloneFunctions(fs []FunctionDefinition) []FunctionDefinition {
	if fs == nil {
		return nil
	}
	out := make([]FunctionDefinition, len(fs))
	for i := range fs {
		out[i] = fs[i].Clone()
	}
	return out
}

func cloneArgs(args []ArgDefinition) []ArgDefinition {
	if args == nil {
		return nil
	}
	out := make([]ArgDefinition, len(args))
	for i := range args {
		out[i] = args[i].Clone()
	}
	return out
}

func cloneTags(tags map[string]string) map[string]string {
	if tags == nil {
		return nil
	}
	out := make(map[string]string, len(tags))
	for k, v := range tags {
		out[k] = v
	}
	return out
}
