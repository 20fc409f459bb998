package idl

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// GuestLibKey is the address key that falls back to IDLDefinition.MetaFFIGuestLib.
const GuestLibKey = "guest_lib"

// EntityPath is the key/value address of an entity inside a guest library.
// Values are always strings; boolean flags are stored as "true".
type EntityPath map[string]string

// Clone returns a copy of p.
func (p EntityPath) Clone() EntityPath {
	if p == nil {
		return nil
	}
	out := make(EntityPath, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Keys returns the keys of p in sorted order.
func (p EntityPath) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// UnmarshalJSON accepts string, boolean and numeric values and stores them as
// strings. Null values are dropped.
func (p *EntityPath) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*p = nil
		return nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(EntityPath, len(raw))
	for k, v := range raw {
		var val any
		dec := json.NewDecoder(bytes.NewReader(v))
		dec.UseNumber()
		if err := dec.Decode(&val); err != nil {
			return fmt.Errorf("entity_path[%q]: %w", k, err)
		}
		switch x := val.(type) {
		case nil:
			continue
		case string:
			out[k] = x
		case bool:
			out[k] = strconv.FormatBool(x)
		case json.Number:
			out[k] = x.String()
		default:
			return fmt.Errorf("entity_path[%q]: unsupported value %s", k, string(v))
		}
	}
	*p = out
	return nil
}

// Address renders the canonical address string of an entity.
// Keys are the union of own, parent and GuestLibKey, sorted. Each value comes
// from own first, then parent; guest_lib finally defaults to MetaFFIGuestLib.
// A key without a value is a CodeAddressResolution error.
func (d *IDLDefinition) Address(own, parent EntityPath) (string, error) {
	keys := map[string]bool{GuestLibKey: true}
	for k := range own {
		keys[k] = true
	}
	for k := range parent {
		keys[k] = true
	}
	sorted := make([]string, 0, len(keys))
	for k := range keys {
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)

	pairs := make([]string, 0, len(sorted))
	for _, k := range sorted {
		v, ok := own[k]
		if !ok {
			v, ok = parent[k]
		}
		if !ok && k == GuestLibKey && d.MetaFFIGuestLib != "" {
			v, ok = d.MetaFFIGuestLib, true
		}
		if !ok {
			return "", Errorf(CodeAddressResolution, "no value for address key %q", k).WithDetail("key", k)
		}
		pairs = append(pairs, k+"="+v)
	}
	return strings.Join(pairs, ","), nil
}

// FunctionAddress renders the address of a module-level function.
func (d *IDLDefinition) FunctionAddress(f *FunctionDefinition) (string, error) {
	addr, err := d.Address(f.EntityPath, nil)
	return addr, withEntity(err, f.Name)
}

// MethodAddress renders the address of a constructor, method or release
// entity using the class path as fallback.
func (d *IDLDefinition) MethodAddress(cls *ClassDefinition, m *FunctionDefinition) (string, error) {
	addr, err := d.Address(m.EntityPath, cls.EntityPath)
	return addr, withEntity(err, cls.Name+"."+m.Name)
}

// FieldAddress renders the address of a field getter or setter.
func (d *IDLDefinition) FieldAddress(cls *ClassDefinition, field *FieldDefinition, getter bool) (string, error) {
	acc, kind := field.Setter, "setter"
	if getter {
		acc, kind = field.Getter, "getter"
	}
	entity := cls.Name + "." + field.Name
	if acc == nil {
		return "", Errorf(CodeAddressResolution, "field has no %s", kind).WithEntity(entity)
	}
	addr, err := d.Address(acc.EntityPath, cls.EntityPath)
	return addr, withEntity(err, entity)
}

// GlobalAddress renders the address of a global getter or setter.
func (d *IDLDefinition) GlobalAddress(g *GlobalDefinition, getter bool) (string, error) {
	acc, kind := g.Setter, "setter"
	if getter {
		acc, kind = g.Getter, "getter"
	}
	if acc == nil {
		return "", Errorf(CodeAddressResolution, "global has no %s", kind).WithEntity(g.Name)
	}
	addr, err := d.Address(acc.EntityPath, nil)
	return addr, withEntity(err, g.Name)
}

func withEntity(err error, entity string) error {
	if e, ok := err.(*Error); ok && e.Entity == "" {
		return e.WithEntity(entity)
	}
	return err
}
