package host

import (
	"fmt"

	"github.com/broady/metaffi-idl/idl"
)

// Binding is one cached entity slot of a generated stub.
type Binding struct {
	// Slot is a language-neutral identifier, unique within the module:
	// "f", "g_getter", "C_ctor", "C_release", "C_m" or "C_f_setter". A name
	// already taken by an earlier entity gets a "__<n>" suffix.
	Slot string

	// Class is the owning class name, empty for module-level entities.
	Class string
	// Member is the function, global or field name.
	Member string

	Function *idl.FunctionDefinition
	Address  string
	Params   []idl.TypeInfo
	Returns  []idl.TypeInfo
}

// Bindings lists the entity slots of mod in stub order: functions, global
// accessors, then per class its constructors, release, methods and field
// accessors. Every address is resolved here, so an unresolvable key fails
// before any code is rendered.
func Bindings(def *idl.IDLDefinition, mod *idl.ModuleDefinition) ([]Binding, error) {
	var out []Binding
	taken := map[string]bool{}
	add := func(slot, class, member string, fn *idl.FunctionDefinition, addr string, err error) error {
		if err != nil {
			return err
		}
		if fn.OverloadIndex > 0 {
			slot = fmt.Sprintf("%s_%d", slot, fn.OverloadIndex)
		}
		slot = uniqueSlot(taken, slot)
		out = append(out, Binding{
			Slot:     slot,
			Class:    class,
			Member:   member,
			Function: fn,
			Address:  addr,
			Params:   fn.ParameterTypes(),
			Returns:  fn.ReturnTypes(),
		})
		return nil
	}

	for i := range mod.Functions {
		fn := &mod.Functions[i]
		addr, err := def.FunctionAddress(fn)
		if err := add(fn.Name, "", fn.Name, fn, addr, err); err != nil {
			return nil, err
		}
	}

	for i := range mod.Globals {
		g := &mod.Globals[i]
		if g.Getter != nil {
			addr, err := def.GlobalAddress(g, true)
			if err := add(g.Name+"_getter", "", g.Name, g.Getter, addr, err); err != nil {
				return nil, err
			}
		}
		if g.Setter != nil {
			addr, err := def.GlobalAddress(g, false)
			if err := add(g.Name+"_setter", "", g.Name, g.Setter, addr, err); err != nil {
				return nil, err
			}
		}
	}

	for ci := range mod.Classes {
		cls := &mod.Classes[ci]
		for i := range cls.Constructors {
			ctor := &cls.Constructors[i]
			addr, err := def.MethodAddress(cls, ctor)
			if err := add(cls.Name+"_"+ctor.Name, cls.Name, ctor.Name, ctor, addr, err); err != nil {
				return nil, err
			}
		}
		if cls.Release != nil {
			addr, err := def.MethodAddress(cls, cls.Release)
			if err := add(cls.Name+"_release", cls.Name, cls.Release.Name, cls.Release, addr, err); err != nil {
				return nil, err
			}
		}
		for i := range cls.Methods {
			m := &cls.Methods[i]
			addr, err := def.MethodAddress(cls, m)
			if err := add(cls.Name+"_"+m.Name, cls.Name, m.Name, m, addr, err); err != nil {
				return nil, err
			}
		}
		for i := range cls.Fields {
			f := &cls.Fields[i]
			if f.Getter != nil {
				addr, err := def.FieldAddress(cls, f, true)
				if err := add(cls.Name+"_"+f.Name+"_getter", cls.Name, f.Name, f.Getter, addr, err); err != nil {
					return nil, err
				}
			}
			if f.Setter != nil {
				addr, err := def.FieldAddress(cls, f, false)
				if err := add(cls.Name+"_"+f.Name+"_setter", cls.Name, f.Name, f.Setter, addr, err); err != nil {
					return nil, err
				}
			}
		}
	}
	return out, nil
}

// uniqueSlot reserves name, or the first free "name__<n>" when module
// function "C_m" and method C.m would otherwise share a slot.
func uniqueSlot(taken map[string]bool, name string) string {
	slot := name
	for n := 2; taken[slot]; n++ {
		slot = fmt.Sprintf("%s__%d", name, n)
	}
	taken[slot] = true
	return slot
}

// Index maps each bound function to its binding.
func Index(bindings []Binding) map[*idl.FunctionDefinition]*Binding {
	idx := make(map[*idl.FunctionDefinition]*Binding, len(bindings))
	for i := range bindings {
		idx[bindings[i].Function] = &bindings[i]
	}
	return idx
}
