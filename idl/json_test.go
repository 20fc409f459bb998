package idl

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMarshal_RoundTrip(t *testing.T) {
	first, err := Marshal(sampleDefinition())
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	def, err := Parse(first)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	second, err := Marshal(def)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("round trip not byte-identical:\n%s\n---\n%s", first, second)
	}
}

func TestMarshal_Shape(t *testing.T) {
	out, err := Marshal(sampleDefinition())
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	s := string(out)
	for _, want := range []string{
		`"release": null`,
		`"setter": null`,
		`"is_optional": true`,
		`"instance_required": true`,
		`"globals": [`,
	} {
		if !strings.Contains(s, want) {
			t.Errorf("output missing %s", want)
		}
	}
	// top-level keys keep their schema order
	order := []string{`"idl_source"`, `"idl_extension"`, `"idl_filename_with_extension"`,
		`"idl_full_path"`, `"metaffi_guest_lib"`, `"target_language"`, `"modules"`}
	last := -1
	for _, k := range order {
		i := strings.Index(s, k)
		if i < last {
			t.Errorf("key %s out of order", k)
		}
		last = i
	}
	// free functions and constructors do not carry instance_required
	addStart := strings.Index(s, `"name": "add"`)
	addEnd := strings.Index(s[addStart:], `"overload_index"`)
	if strings.Contains(s[addStart:addStart+addEnd+60], "instance_required") {
		t.Error("free function carries instance_required")
	}
}

func TestParse_Kinds(t *testing.T) {
	data, err := Marshal(sampleDefinition())
	if err != nil {
		t.Fatal(err)
	}
	def, err := Parse(data)
	if err != nil {
		t.Fatal(err)
	}
	m := def.Modules[0]
	if m.Functions[0].Kind != KindFunction {
		t.Errorf("function kind = %s", m.Functions[0].Kind)
	}
	c := m.Classes[0]
	if c.Constructors[0].Kind != KindConstructor || c.Constructors[0].InstanceRequired {
		t.Errorf("constructor kind = %s, instance_required = %v", c.Constructors[0].Kind, c.Constructors[0].InstanceRequired)
	}
	if c.Methods[0].Kind != KindMethod || !c.Methods[0].InstanceRequired {
		t.Errorf("method kind = %s, instance_required = %v", c.Methods[0].Kind, c.Methods[0].InstanceRequired)
	}
	if c.Fields[0].Getter.Kind != KindGetter || c.Fields[0].Setter.Kind != KindSetter {
		t.Error("field accessor kinds not assigned")
	}
	if m.Globals[0].Getter.Kind != KindGetter || m.Globals[0].Setter != nil {
		t.Error("global accessor kinds not assigned")
	}
}

func TestParse_InstanceRequiredDefaultsTrue(t *testing.T) {
	data := `{"target_language": "python3", "metaffi_guest_lib": "X", "modules": [{"name": "m",
		"classes": [{"name": "C", "constructors": [], "methods": [
			{"name": "f", "entity_path": {"callable": "C.f"}, "parameters": [], "return_values": []}
		], "fields": []}]}]}`
	def, err := Parse([]byte(data))
	if err != nil {
		t.Fatal(err)
	}
	if !def.Modules[0].Classes[0].Methods[0].InstanceRequired {
		t.Error("instance_required should default to true")
	}
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte(`{"modules": 3}`))
	if !IsCode(err, CodeValidation) {
		t.Errorf("Parse() error = %v, want validation", err)
	}
}

func TestFinalizeConstruction_ExpandsOnce(t *testing.T) {
	t.Setenv("IDL_TEST_ROOT", "/opt/lib")
	def := &IDLDefinition{Modules: []ModuleDefinition{{
		Name:              "m",
		ExternalResources: []string{"$IDL_TEST_ROOT/m.so"},
	}}}
	def.FinalizeConstruction()
	if got := def.Modules[0].ExternalResources[0]; got != "/opt/lib/m.so" {
		t.Fatalf("resource = %q", got)
	}
	// a second call must not re-expand
	def.Modules[0].ExternalResources[0] = "$IDL_TEST_ROOT"
	def.FinalizeConstruction()
	if got := def.Modules[0].ExternalResources[0]; got != "$IDL_TEST_ROOT" {
		t.Errorf("resource re-expanded to %q", got)
	}
}

func TestLoad(t *testing.T) {
	data, err := Marshal(sampleDefinition())
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "sample.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	def, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if def.MetaFFIGuestLib != "X" {
		t.Errorf("MetaFFIGuestLib = %q", def.MetaFFIGuestLib)
	}

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	if err == nil || IsCode(err, CodeValidation) {
		t.Errorf("Load(missing) error = %v, want unwrapped I/O error", err)
	}
}

func TestClone_Independent(t *testing.T) {
	def := sampleDefinition()
	c := def.Clone()
	c.Modules[0].Functions[0].Name = "changed"
	c.Modules[0].Classes[0].Fields[0].Getter.EntityPath["attribute"] = "changed"
	if def.Modules[0].Functions[0].Name != "add" {
		t.Error("clone shares functions")
	}
	if def.Modules[0].Classes[0].Fields[0].Getter.EntityPath["attribute"] != "MyClass.name" {
		t.Error("clone shares entity paths")
	}
}

func TestFirstOptionalIndex(t *testing.T) {
	def := sampleDefinition()
	if got := def.Modules[0].Functions[0].FirstOptionalIndex(); got != -1 {
		t.Errorf("add FirstOptionalIndex() = %d, want -1", got)
	}
	if got := def.Modules[0].Classes[0].Methods[0].FirstOptionalIndex(); got != 0 {
		t.Errorf("get_value FirstOptionalIndex() = %d, want 0", got)
	}
}
