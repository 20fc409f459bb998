// Package python3 renders python3 host stubs.
//
// A stub declares one cached entity per bound function, resolves all of them
// in bind_module_to_code, and exposes module-level wrappers, global accessors,
// constructor functions and handle-holding classes.
package python3

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/broady/metaffi-idl/host"
	"github.com/broady/metaffi-idl/idl"
	"github.com/broady/metaffi-idl/typemap"
)

// Language is the host language identifier.
const Language = "python3"

//go:embed templates/host.py.tmpl
var hostTemplate string

var tmpl = template.Must(template.New("host.py").Parse(hostTemplate))

func init() {
	host.Register(Generator{})
}

// Generator renders python3 stubs.
type Generator struct{}

func (Generator) Language() string { return Language }

// FileName returns "<base>_MetaFFIHost.py".
func (Generator) FileName(base string) string { return base + "_MetaFFIHost.py" }

// Generate renders the stub of mod.
func (Generator) Generate(ctx context.Context, def *idl.IDLDefinition, mod *idl.ModuleDefinition, opts host.HostOptions) ([]byte, error) {
	bindings, err := host.Bindings(def, mod)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data := build(def, mod, bindings, opts)
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render python3 stub for module %s: %w", mod.Name, err)
	}
	return buf.Bytes(), nil
}

type stub struct {
	IDLFile        string
	SDKPath        string
	TargetLanguage string
	Slots          []slot
	Globals        []string
	Functions      []function
	Classes        []class
}

type slot struct {
	Var     string
	Address string
	Params  string
	Returns string
}

type function struct {
	Name    string
	Params  string
	Returns string
	Doc     []string
	Caller  string
	Args    string
	HasRet  bool
}

type accessor struct {
	Name   string
	Type   string
	Caller string
}

type class struct {
	Name    string
	Doc     []string
	Ctors   []function
	Methods []method
	Getters []accessor
	Setters []accessor
	Orphans []accessor
	Release string
}

type method struct {
	function
	Static bool
}

func build(def *idl.IDLDefinition, mod *idl.ModuleDefinition, bindings []host.Binding, opts host.HostOptions) stub {
	idx := host.Index(bindings)
	s := stub{
		IDLFile:        def.IDLFilenameWithExtension,
		SDKPath:        sdkPath(opts.SDKSubdir),
		TargetLanguage: def.TargetLanguage,
	}
	for _, b := range bindings {
		s.Slots = append(s.Slots, slot{
			Var:     caller(b.Slot),
			Address: quote(b.Address),
			Params:  typeInfoTuple(b.Params),
			Returns: typeInfoTuple(b.Returns),
		})
		s.Globals = append(s.Globals, caller(b.Slot))
	}

	for i := range mod.Functions {
		fn := &mod.Functions[i]
		name := fn.Name
		if fn.OverloadIndex > 0 {
			name = fmt.Sprintf("%s_%d", name, fn.OverloadIndex)
		}
		s.Functions = append(s.Functions, newFunction(identifier(name), fn, idx[fn], "Generated stub for "+fn.Name))
	}
	for i := range mod.Globals {
		g := &mod.Globals[i]
		ann := typemap.PythonAnnotation(g.Type, g.Dimensions, g.TypeAlias)
		if g.Getter != nil {
			s.Functions = append(s.Functions, function{
				Name:    "get_" + g.Name,
				Returns: ann,
				Doc:     docLines(g.Comment, "Get "+g.Name),
				Caller:  caller(idx[g.Getter].Slot),
				HasRet:  true,
			})
		}
		if g.Setter != nil {
			s.Functions = append(s.Functions, function{
				Name:    "set_" + g.Name,
				Params:  "value: " + ann,
				Returns: "None",
				Doc:     docLines("", "Set "+g.Name),
				Caller:  caller(idx[g.Setter].Slot),
				Args:    "value",
			})
		}
	}

	for ci := range mod.Classes {
		cls := &mod.Classes[ci]
		c := class{
			Name: identifier(cls.Name),
			Doc:  docLines(cls.Comment, "Generated stub class for "+cls.Name),
		}
		for i := range cls.Constructors {
			ctor := &cls.Constructors[i]
			name := strings.ToLower(cls.Name)
			if name == cls.Name {
				// "class point" would rebind a "def point" emitted before it.
				name = "new_" + name
			}
			if ctor.OverloadIndex > 0 {
				name = fmt.Sprintf("%s_%d", name, ctor.OverloadIndex)
			}
			c.Ctors = append(c.Ctors, newFunction(identifier(name), ctor, idx[ctor], "Generated constructor for "+cls.Name))
		}
		for i := range cls.Methods {
			m := &cls.Methods[i]
			name := m.Name
			if m.OverloadIndex > 0 {
				name = fmt.Sprintf("%s_%d", name, m.OverloadIndex)
			}
			fn := newFunction(identifier(name), m, idx[m], "Generated stub method for "+m.Name)
			if m.InstanceRequired {
				fn.Args = joinArgs("self._handle", fn.Args)
			}
			c.Methods = append(c.Methods, method{function: fn, Static: !m.InstanceRequired})
		}
		for i := range cls.Fields {
			f := &cls.Fields[i]
			a := accessor{
				Name: identifier(f.Name),
				Type: typemap.PythonAnnotation(f.Type, f.Dimensions, f.TypeAlias),
			}
			if f.Getter != nil {
				g := a
				g.Caller = caller(idx[f.Getter].Slot)
				c.Getters = append(c.Getters, g)
			}
			if f.Setter != nil {
				st := a
				st.Caller = caller(idx[f.Setter].Slot)
				if f.Getter != nil {
					c.Setters = append(c.Setters, st)
				} else {
					// A property setter needs a getter to hang off.
					st.Name = "set_" + f.Name
					c.Orphans = append(c.Orphans, st)
				}
			}
		}
		if cls.Release != nil {
			c.Release = caller(idx[cls.Release].Slot)
		}
		s.Classes = append(s.Classes, c)
	}
	return s
}

func newFunction(name string, fn *idl.FunctionDefinition, b *host.Binding, fallbackDoc string) function {
	out := function{
		Name:    name,
		Doc:     docLines(fn.Comment, fallbackDoc),
		Caller:  caller(b.Slot),
		Returns: returnAnnotation(fn.ReturnValues),
		HasRet:  len(fn.ReturnValues) > 0,
	}
	var params, args []string
	optional := false
	for _, p := range fn.Parameters {
		pn := identifier(p.Name)
		decl := pn + ": " + typemap.PythonAnnotation(p.Type, p.Dimensions, p.TypeAlias)
		// Python rejects a required parameter after a defaulted one.
		optional = optional || p.IsOptional
		if optional {
			decl += " = None"
		}
		params = append(params, decl)
		args = append(args, pn)
	}
	out.Params = strings.Join(params, ", ")
	out.Args = strings.Join(args, ", ")
	return out
}

func returnAnnotation(rets []idl.ArgDefinition) string {
	switch len(rets) {
	case 0:
		return "None"
	case 1:
		return typemap.PythonAnnotation(rets[0].Type, rets[0].Dimensions, rets[0].TypeAlias)
	}
	anns := make([]string, len(rets))
	for i, r := range rets {
		anns[i] = typemap.PythonAnnotation(r.Type, r.Dimensions, r.TypeAlias)
	}
	return "Tuple[" + strings.Join(anns, ", ") + "]"
}

// typeInfoTuple renders type infos as a python tuple literal.
func typeInfoTuple(infos []idl.TypeInfo) string {
	if len(infos) == 0 {
		return "()"
	}
	parts := make([]string, len(infos))
	for i, ti := range infos {
		alias := "None"
		if ti.Alias != "" {
			alias = quote(ti.Alias)
		}
		parts[i] = fmt.Sprintf("metaffi_types.metaffi_type_info(metaffi_types.MetaFFITypes(%d), %s, %d)",
			ti.Code(), alias, ti.Dimensions)
	}
	if len(parts) == 1 {
		return "(" + parts[0] + ",)"
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// sdkPath renders a slash separated subdirectory as os.path.join arguments.
func sdkPath(subdir string) string {
	var parts []string
	for _, p := range strings.Split(subdir, "/") {
		if p != "" {
			parts = append(parts, "'"+strings.ReplaceAll(p, "'", "\\'")+"'")
		}
	}
	return strings.Join(parts, ", ")
}

func docLines(comment, fallback string) []string {
	if strings.TrimSpace(comment) == "" {
		comment = fallback
	}
	comment = strings.ReplaceAll(comment, `\`, `\\`)
	comment = strings.ReplaceAll(comment, `"""`, `\"\"\"`)
	return strings.Split(strings.TrimRight(comment, "\n"), "\n")
}

// caller names the slot variable; the suffix keeps it clear of keywords.
func caller(slot string) string { return slot + "_caller" }

func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)
	return `"` + r.Replace(s) + `"`
}

func joinArgs(first, rest string) string {
	if rest == "" {
		return first
	}
	return first + ", " + rest
}
