package host

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/broady/metaffi-idl/idl"
	"github.com/broady/metaffi-idl/sink"
)

type fakeGenerator struct {
	fail map[string]error
}

func (fakeGenerator) Language() string { return "fake" }

func (fakeGenerator) FileName(base string) string { return base + "_MetaFFIHost.txt" }

func (g fakeGenerator) Generate(ctx context.Context, def *idl.IDLDefinition, mod *idl.ModuleDefinition, opts HostOptions) ([]byte, error) {
	if err := g.fail[mod.Name]; err != nil {
		return nil, err
	}
	bindings, err := Bindings(def, mod)
	if err != nil {
		return nil, err
	}
	return []byte(fmt.Sprintf("%s:%d:%s", mod.Name, len(bindings), opts.SDKSubdir)), nil
}

// failingSink fails the write of one path.
type failingSink struct {
	*sink.MemorySink
	failPath string
}

func (s *failingSink) WriteFile(ctx context.Context, path string, content []byte) error {
	if path == s.failPath {
		return errors.New("disk full")
	}
	return s.MemorySink.WriteFile(ctx, path, content)
}

func loadSample(t *testing.T) *idl.IDLDefinition {
	t.Helper()
	def, err := idl.Load("testdata/sample_python.json")
	require.NoError(t, err)
	return def
}

func twoModules(t *testing.T) *idl.IDLDefinition {
	def := loadSample(t)
	second := def.Modules[0].Clone()
	second.Name = "other"
	def.Modules = append(def.Modules, second)
	return def
}

func TestBindings_Order(t *testing.T) {
	def := loadSample(t)
	bindings, err := Bindings(def, &def.Modules[0])
	require.NoError(t, err)

	var slots []string
	for _, b := range bindings {
		slots = append(slots, b.Slot)
	}
	assert.Equal(t, []string{
		"add",
		"collect",
		"GetMY_GLOBAL",
		"SetMY_GLOBAL",
		"Widget___init__",
		"Widget_release",
		"Widget_area",
		"Widget_create",
		"Widget_label_getter",
		"Widget_label_setter",
	}, slots)

	assert.Equal(t, "callable=add,guest_lib=sample", bindings[0].Address)
	assert.Len(t, bindings[0].Params, 2)
	assert.Equal(t, "Widget", bindings[4].Class)
	assert.Equal(t, "label", bindings[8].Member)
	assert.Equal(t, "attribute=Widget.label,guest_lib=sample,instance_required=true,setter=true", bindings[9].Address)

	idx := Index(bindings)
	assert.Equal(t, "Widget_area", idx[&def.Modules[0].Classes[0].Methods[0]].Slot)
}

func TestBindings_OverloadSlots(t *testing.T) {
	def := loadSample(t)
	mod := &def.Modules[0]
	dup := mod.Functions[0].Clone()
	dup.OverloadIndex = 1
	mod.Functions = append(mod.Functions, dup)

	bindings, err := Bindings(def, mod)
	require.NoError(t, err)
	assert.Equal(t, "add_1", bindings[4].Slot)
}

func TestBindings_AddressError(t *testing.T) {
	def := loadSample(t)
	def.MetaFFIGuestLib = ""
	_, err := Bindings(def, &def.Modules[0])

	require.Error(t, err)
	var e *idl.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, idl.CodeAddressResolution, e.Code)
	assert.Equal(t, "add", e.Entity)
}

func TestParseHostOptions(t *testing.T) {
	opts, err := ParseHostOptions(map[string]string{"package": "geo", "unknown": "x"})
	require.NoError(t, err)
	assert.Equal(t, "geo", opts.Package)
	assert.Equal(t, DefaultSDKSubdir, opts.SDKSubdir)

	_, err = ParseHostOptions(map[string]string{"package": "geo.shapes"})
	require.Error(t, err)
	assert.True(t, idl.IsCode(err, idl.CodeInvalidOption))

	_, err = ParseHostOptions(map[string]string{"sdk_subdir": `sdk\api`})
	assert.True(t, idl.IsCode(err, idl.CodeInvalidOption))
}

func TestCompile_WritesOneFilePerModule(t *testing.T) {
	def := twoModules(t)
	mem := sink.NewMemorySink()

	res, err := Compile(context.Background(), def, Options{
		Generator:   fakeGenerator{},
		Sink:        mem,
		HostOptions: map[string]string{"sdk_subdir": "lib/py"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"other/sample_MetaFFIHost.txt", "sample/sample_MetaFFIHost.txt"}, mem.Paths())
	assert.Equal(t, "sample:10:lib/py", string(mem.Get("sample/sample_MetaFFIHost.txt")))
	require.Len(t, res.Files, 2)
	assert.Equal(t, "sample", res.Files[0].Module)
	assert.Equal(t, "other", res.Files[1].Module)
}

func TestCompile_OutputName(t *testing.T) {
	def := loadSample(t)
	mem := sink.NewMemorySink()

	_, err := Compile(context.Background(), def, Options{Generator: fakeGenerator{}, Sink: mem, OutputName: "api"})
	require.NoError(t, err)
	assert.Equal(t, []string{"sample/api_MetaFFIHost.txt"}, mem.Paths())
}

func TestCompile_InvalidDefinitionWritesNothing(t *testing.T) {
	def := loadSample(t)
	def.TargetLanguage = ""
	mem := sink.NewMemorySink()

	_, err := Compile(context.Background(), def, Options{Generator: fakeGenerator{}, Sink: mem})
	require.Error(t, err)
	assert.True(t, idl.IsCode(err, idl.CodeValidation))
	assert.Empty(t, mem.Paths())
}

func TestCompile_RenderFailureWritesNothing(t *testing.T) {
	def := twoModules(t)
	mem := sink.NewMemorySink()
	boom := errors.New("boom")

	_, err := Compile(context.Background(), def, Options{
		Generator: fakeGenerator{fail: map[string]error{"other": boom}},
		Sink:      mem,
	})
	require.ErrorIs(t, err, boom)
	assert.Empty(t, mem.Paths())
}

func TestCompile_WriteFailure(t *testing.T) {
	tests := []struct {
		name      string
		atomic    bool
		wantPaths []string
	}{
		{"sequential keeps earlier files", false, []string{"sample/sample_MetaFFIHost.txt"}},
		{"atomic rolls back", true, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := twoModules(t)
			fs := &failingSink{MemorySink: sink.NewMemorySink(), failPath: "other/sample_MetaFFIHost.txt"}

			_, err := Compile(context.Background(), def, Options{
				Generator: fakeGenerator{},
				Sink:      fs,
				Atomic:    tt.atomic,
			})
			require.Error(t, err)
			assert.Equal(t, tt.wantPaths, fs.Paths())
		})
	}
}

func TestCompile_UnknownLanguage(t *testing.T) {
	_, err := Compile(context.Background(), loadSample(t), Options{Language: "cobol", Sink: sink.NewMemorySink()})
	require.Error(t, err)
	assert.True(t, idl.IsCode(err, idl.CodeInvalidOption))
}

func TestCompile_RequiresOutput(t *testing.T) {
	_, err := Compile(context.Background(), loadSample(t), Options{Generator: fakeGenerator{}})
	require.Error(t, err)
	assert.True(t, idl.IsCode(err, idl.CodeInvalidOption))
}

func TestRegistry(t *testing.T) {
	Register(fakeGenerator{})
	g, err := Lookup("fake")
	require.NoError(t, err)
	assert.Equal(t, "fake", g.Language())
	assert.Contains(t, Languages(), "fake")
	assert.Panics(t, func() { Register(fakeGenerator{}) })
}

func TestBindings_SlotCollision(t *testing.T) {
	def := loadSample(t)
	mod := &def.Modules[0]
	fn := mod.Functions[0].Clone()
	fn.Name = "Widget_area"
	fn.EntityPath = idl.EntityPath{"callable": "Widget_area"}
	mod.Functions = append(mod.Functions, fn)

	bindings, err := Bindings(def, mod)
	if err != nil {
		t.Fatalf("Bindings: %v", err)
	}

	seen := map[string]string{}
	for _, b := range bindings {
		if prev, ok := seen[b.Slot]; ok {
			t.Fatalf("slot %q bound to both %q and %q", b.Slot, prev, b.Address)
		}
		seen[b.Slot] = b.Address
	}
	if got := seen["Widget_area"]; got != "callable=Widget_area,guest_lib=sample" {
		t.Errorf("slot Widget_area = %q, want the module function", got)
	}
	if got := seen["Widget_area__2"]; got != "callable=Widget.area,guest_lib=sample,instance_required=true" {
		t.Errorf("slot Widget_area__2 = %q, want the method", got)
	}
}
