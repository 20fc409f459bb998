package idl

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// Parse decodes an IDL definition from JSON and finalizes it.
func Parse(data []byte) (*IDLDefinition, error) {
	var def IDLDefinition
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, Wrap(CodeValidation, err, "decode IDL JSON")
	}
	def.assignKinds()
	def.FinalizeConstruction()
	return &def, nil
}

// Load reads and parses an IDL JSON file. Read errors are returned unchanged.
func Load(path string) (*IDLDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// FinalizeConstruction expands environment variables in every module's
// external resources. Only the first call has an effect.
func (d *IDLDefinition) FinalizeConstruction() {
	if d.finalized {
		return
	}
	d.finalized = true
	for mi := range d.Modules {
		res := d.Modules[mi].ExternalResources
		for i := range res {
			res[i] = os.ExpandEnv(res[i])
		}
	}
}

// Marshal encodes def as two-space indented JSON. Absent tags and lists are
// rendered as empty objects and arrays so the output shape is stable.
func Marshal(def *IDLDefinition) ([]byte, error) {
	c := def.Clone()
	c.normalize()
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("encode IDL JSON: %w", err)
	}
	return buf.Bytes(), nil
}

// MarshalJSON writes instance_required after the common fields, and only
// for method-like kinds.
func (f FunctionDefinition) MarshalJSON() ([]byte, error) {
	type Alias FunctionDefinition
	if !f.Kind.MethodLike() {
		return json.Marshal(Alias(f))
	}
	return json.Marshal(struct {
		Alias
		InstanceRequired bool `json:"instance_required"`
	}{
		Alias:            Alias(f),
		InstanceRequired: f.InstanceRequired,
	})
}

// UnmarshalJSON reads instance_required, defaulting to true when absent.
func (f *FunctionDefinition) UnmarshalJSON(data []byte) error {
	type Alias FunctionDefinition
	aux := struct {
		*Alias
		InstanceRequired *bool `json:"instance_required"`
	}{Alias: (*Alias)(f)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	f.InstanceRequired = aux.InstanceRequired == nil || *aux.InstanceRequired
	return nil
}

func (d *IDLDefinition) normalize() {
	if d.Modules == nil {
		d.Modules = []ModuleDefinition{}
	}
	for mi := range d.Modules {
		m := &d.Modules[mi]
		m.Tags = nonNilTags(m.Tags)
		if m.Functions == nil {
			m.Functions = []FunctionDefinition{}
		}
		if m.Classes == nil {
			m.Classes = []ClassDefinition{}
		}
		if m.Globals == nil {
			m.Globals = []GlobalDefinition{}
		}
		if m.ExternalResources == nil {
			m.ExternalResources = []string{}
		}
		for i := range m.Functions {
			normalizeFunction(&m.Functions[i])
		}
		for i := range m.Globals {
			g := &m.Globals[i]
			g.Tags = nonNilTags(g.Tags)
			normalizeFunctionPtr(g.Getter)
			normalizeFunctionPtr(g.Setter)
		}
		for ci := range m.Classes {
			c := &m.Classes[ci]
			c.Tags = nonNilTags(c.Tags)
			if c.EntityPath == nil {
				c.EntityPath = EntityPath{}
			}
			if c.Constructors == nil {
				c.Constructors = []FunctionDefinition{}
			}
			if c.Methods == nil {
				c.Methods = []FunctionDefinition{}
			}
			if c.Fields == nil {
				c.Fields = []FieldDefinition{}
			}
			for i := range c.Constructors {
				normalizeFunction(&c.Constructors[i])
			}
			normalizeFunctionPtr(c.Release)
			for i := range c.Methods {
				normalizeFunction(&c.Methods[i])
			}
			for i := range c.Fields {
				f := &c.Fields[i]
				f.Tags = nonNilTags(f.Tags)
				normalizeFunctionPtr(f.Getter)
				normalizeFunctionPtr(f.Setter)
			}
		}
	}
}

func normalizeFunctionPtr(f *FunctionDefinition) {
	if f != nil {
		normalizeFunction(f)
	}
}

func normalizeFunction(f *FunctionDefinition) {
	f.Tags = nonNilTags(f.Tags)
	if f.EntityPath == nil {
		f.EntityPath = EntityPath{}
	}
	if f.Parameters == nil {
		f.Parameters = []ArgDefinition{}
	}
	if f.ReturnValues == nil {
		f.ReturnValues = []ArgDefinition{}
	}
	for i := range f.Parameters {
		f.Parameters[i].Tags = nonNilTags(f.Parameters[i].Tags)
	}
	for i := range f.ReturnValues {
		f.ReturnValues[i].Tags = nonNilTags(f.ReturnValues[i].Tags)
	}
}

func nonNilTags(tags map[string]string) map[string]string {
	if tags == nil {
		return map[string]string{}
	}
	return tags
}
