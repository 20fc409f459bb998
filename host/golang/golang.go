// Package golang renders Go host stubs that call guest entities through the
// MetaFFI Go SDK.
package golang

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"go/format"
	"strconv"
	"strings"
	"text/template"

	"github.com/broady/metaffi-idl/host"
	"github.com/broady/metaffi-idl/idl"
	"github.com/broady/metaffi-idl/typemap"
)

// Language is the host language identifier.
const Language = "go"

//go:embed templates/host.go.tmpl
var hostTemplate string

var tmpl = template.Must(template.New("host.go").Parse(hostTemplate))

func init() {
	host.Register(Generator{})
}

// Generator renders Go stubs.
type Generator struct{}

func (Generator) Language() string { return Language }

// FileName returns "<base>_MetaFFIHost.go". Dots in base are replaced so
// the go tool does not read them as build suffixes.
func (Generator) FileName(base string) string {
	return strings.ReplaceAll(base, ".", "_") + "_MetaFFIHost.go"
}

// Generate renders and gofmts the stub of mod.
func (Generator) Generate(ctx context.Context, def *idl.IDLDefinition, mod *idl.ModuleDefinition, opts host.HostOptions) ([]byte, error) {
	bindings, err := host.Bindings(def, mod)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data := newBuilder(def, mod, bindings, opts).build()

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render go stub for module %s: %w", mod.Name, err)
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("format go stub for module %s: %w", mod.Name, err)
	}
	return src, nil
}

type stub struct {
	IDLFile        string
	Package        string
	TargetLanguage string
	Slots          []slot
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
	Doc      []string
	Receiver string
	Name     string
	Params   string
	Caller   string
	Args     string
	Returns  []result
	// Release marks the release wrapper, which clears the handle once the
	// guest instance is freed.
	Release bool
}

// Results renders the named result list, always ending in err.
func (f function) Results() string {
	parts := make([]string, 0, len(f.Returns)+1)
	for _, r := range f.Returns {
		parts = append(parts, r.Name+" "+r.Type)
	}
	parts = append(parts, "err error")
	return strings.Join(parts, ", ")
}

type result struct {
	Name  string
	Type  string
	Class string
	Index int
}

type class struct {
	Name      string
	Doc       []string
	Functions []function
}

type builder struct {
	mod     *idl.ModuleDefinition
	index   map[*idl.FunctionDefinition]*host.Binding
	classes map[string]string
	// slots holds every slot name in use, including overload variants.
	slots map[string]bool
	out   stub
}

func newBuilder(def *idl.IDLDefinition, mod *idl.ModuleDefinition, bindings []host.Binding, opts host.HostOptions) *builder {
	b := &builder{
		mod:     mod,
		index:   host.Index(bindings),
		classes: make(map[string]string, len(mod.Classes)),
		slots:   make(map[string]bool, len(bindings)),
	}
	for _, bind := range bindings {
		b.slots[bind.Slot] = true
	}
	for _, c := range mod.Classes {
		b.classes[c.Name] = exported(c.Name)
	}
	b.out = stub{
		IDLFile:        def.IDLFilenameWithExtension,
		Package:        packageName(mod.Name),
		TargetLanguage: def.TargetLanguage,
	}
	if opts.Package != "" {
		b.out.Package = opts.Package
	}
	return b
}

func (b *builder) build() stub {
	for i := range b.mod.Functions {
		fn := &b.mod.Functions[i]
		name := exported(fn.Name)
		if b.collidesWithClass(name) {
			name += "Func"
		}
		b.out.Functions = append(b.out.Functions, b.variants("", name, fn, false)...)
	}
	for i := range b.mod.Globals {
		g := &b.mod.Globals[i]
		if g.Getter != nil {
			b.out.Functions = append(b.out.Functions, b.variants("", "Get"+exported(g.Name), g.Getter, false)...)
		}
		if g.Setter != nil {
			b.out.Functions = append(b.out.Functions, b.variants("", "Set"+exported(g.Name), g.Setter, false)...)
		}
	}

	for ci := range b.mod.Classes {
		cls := &b.mod.Classes[ci]
		c := class{
			Name: b.classes[cls.Name],
			Doc:  docLines(cls.Comment, cls.Name+" holds a "+cls.Name+" instance of the guest module."),
		}
		for i := range cls.Constructors {
			ctor := &cls.Constructors[i]
			name := exported(ctor.Name)
			if ctor.Name == "__init__" {
				name = "New" + c.Name
			}
			c.Functions = append(c.Functions, b.variants("", name, ctor, false)...)
		}
		for i := range cls.Methods {
			m := &cls.Methods[i]
			if m.InstanceRequired {
				c.Functions = append(c.Functions, b.variants(c.Name, exported(m.Name), m, true)...)
			} else {
				c.Functions = append(c.Functions, b.variants("", c.Name+exported(m.Name), m, false)...)
			}
		}
		for i := range cls.Fields {
			f := &cls.Fields[i]
			if f.Getter != nil {
				c.Functions = append(c.Functions, b.variants(c.Name, accessorName(f.Getter, "Get", f.Name), f.Getter, f.Getter.InstanceRequired)...)
			}
			if f.Setter != nil {
				c.Functions = append(c.Functions, b.variants(c.Name, accessorName(f.Setter, "Set", f.Name), f.Setter, f.Setter.InstanceRequired)...)
			}
		}
		if cls.Release != nil {
			for _, f := range b.variants(c.Name, "Release", cls.Release, true) {
				f.Release = true
				c.Functions = append(c.Functions, f)
			}
		}
		b.out.Classes = append(b.out.Classes, c)
	}
	return b.out
}

// variants renders fn and, when it has optional parameters, one
// "_overload<N>" wrapper per truncated parameter list. Each variant binds
// its own slot since the parameter type infos differ.
func (b *builder) variants(receiver, name string, fn *idl.FunctionDefinition, instance bool) []function {
	bind := b.index[fn]
	if fn.OverloadIndex > 0 {
		name = fmt.Sprintf("%s_%d", name, fn.OverloadIndex)
	}
	out := []function{b.function(receiver, name, bind.Slot, fn, fn.Parameters, instance)}
	b.addSlot(bind.Slot, bind.Address, bind.Params, bind.Returns)

	first := fn.FirstOptionalIndex()
	if first < 0 {
		return out
	}
	for i, j := first, 1; i < len(fn.Parameters); i, j = i+1, j+1 {
		suffix := "_overload" + strconv.Itoa(j)
		slotName := bind.Slot + suffix
		for n := 2; b.slots[slotName]; n++ {
			slotName = fmt.Sprintf("%s%s__%d", bind.Slot, suffix, n)
		}
		b.slots[slotName] = true
		params := fn.Parameters[:i]
		out = append(out, b.function(receiver, name+suffix, slotName, fn, params, instance))
		b.addSlot(slotName, bind.Address, bind.Params[:i], bind.Returns)
	}
	return out
}

func (b *builder) function(receiver, name, slotName string, fn *idl.FunctionDefinition, params []idl.ArgDefinition, instance bool) function {
	f := function{
		Doc:      docLines(fn.Comment, name+" calls "+fn.Name+" of the guest module."),
		Receiver: receiver,
		Name:     name,
		Caller:   callerVar(slotName),
	}

	var decls, args []string
	if instance {
		args = append(args, "this.handle")
	}
	for _, p := range params {
		pn := local(p.Name)
		typ, cls := b.goType(&p)
		decls = append(decls, pn+" "+typ)
		if cls != "" {
			args = append(args, pn+".MetaFFIHandle()")
		} else {
			args = append(args, pn)
		}
	}
	f.Params = strings.Join(decls, ", ")
	f.Args = strings.Join(args, ", ")

	for i := range fn.ReturnValues {
		typ, cls := b.goType(&fn.ReturnValues[i])
		f.Returns = append(f.Returns, result{
			Name:  "ret" + strconv.Itoa(i),
			Type:  typ,
			Class: cls,
			Index: i,
		})
	}
	return f
}

// goType returns the Go type of an argument, and the class name when the
// argument is a handle to a class of this module.
func (b *builder) goType(a *idl.ArgDefinition) (string, string) {
	if a.Type == idl.Handle && a.Dimensions == 0 {
		if cls, ok := b.classes[a.TypeAlias]; ok {
			return "*" + cls, cls
		}
	}
	return typemap.GoType(a.Type, a.Dimensions), ""
}

func (b *builder) addSlot(name, address string, params, returns []idl.TypeInfo) {
	b.out.Slots = append(b.out.Slots, slot{
		Var:     callerVar(name),
		Address: strconv.Quote(address),
		Params:  typeInfoSlice(params),
		Returns: typeInfoSlice(returns),
	})
}

func (b *builder) collidesWithClass(name string) bool {
	for _, c := range b.classes {
		if c == name {
			return true
		}
	}
	return false
}

func accessorName(fn *idl.FunctionDefinition, prefix, field string) string {
	if fn.Name != "" {
		return exported(fn.Name)
	}
	return prefix + exported(field)
}

func callerVar(slotName string) string {
	return "caller_" + slotName
}

func typeInfoSlice(infos []idl.TypeInfo) string {
	if len(infos) == 0 {
		return "nil"
	}
	parts := make([]string, len(infos))
	for i, ti := range infos {
		var sb strings.Builder
		fmt.Fprintf(&sb, "{StringType: %q, ", ti.String())
		if ti.Alias != "" {
			fmt.Fprintf(&sb, "Alias: %q, ", ti.Alias)
		}
		fmt.Fprintf(&sb, "Type: %d, Dimensions: %d}", ti.Code(), ti.Dimensions)
		parts[i] = sb.String()
	}
	return "[]IDL.MetaFFITypeInfo{" + strings.Join(parts, ", ") + "}"
}

func docLines(comment, fallback string) []string {
	if strings.TrimSpace(comment) == "" {
		comment = fallback
	}
	return strings.Split(strings.TrimRight(comment, "\n"), "\n")
}
