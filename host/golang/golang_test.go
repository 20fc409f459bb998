package golang

import (
	"context"
	"go/parser"
	"go/token"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/broady/metaffi-idl/host"
	"github.com/broady/metaffi-idl/idl"
)

func load(t *testing.T, name string) *idl.IDLDefinition {
	t.Helper()
	def, err := idl.Load("../testdata/" + name)
	require.NoError(t, err)
	return def
}

func render(t *testing.T, def *idl.IDLDefinition, raw map[string]string) string {
	t.Helper()
	opts, err := host.ParseHostOptions(raw)
	require.NoError(t, err)
	out, err := Generator{}.Generate(context.Background(), def, &def.Modules[0], opts)
	require.NoError(t, err)
	_, err = parser.ParseFile(token.NewFileSet(), "stub.go", out, parser.AllErrors)
	require.NoError(t, err, "generated source must parse:\n%s", out)
	return string(out)
}

func TestGenerate_Header(t *testing.T) {
	out := render(t, load(t, "shapes_go.json"), nil)

	assert.True(t, strings.HasPrefix(out, "// Code generated by MetaFFI. DO NOT EDIT.\n// Host code for shapes.go\n\npackage shapes\n"))
	assert.Contains(t, out, `api "github.com/MetaFFI/sdk/api/go"`)
	assert.Contains(t, out, `"github.com/MetaFFI/sdk/idl_entities/go/IDL"`)
	assert.Contains(t, out, `os.Getenv("METAFFI_SOURCE_ROOT") == "" && os.Getenv("METAFFI_HOME") == ""`)
	assert.Contains(t, out, `panic("Neither METAFFI_SOURCE_ROOT nor METAFFI_HOME`)
	assert.Contains(t, out, `runtime := api.NewMetaFFIRuntime("go")`)
}

func TestGenerate_Slots(t *testing.T) {
	out := render(t, load(t, "shapes_go.json"), nil)

	for _, slot := range []string{
		"caller_Sum",
		"caller_Divide",
		"caller_GetCounter",
		"caller_SetCounter",
		"caller_GetVersion",
		"caller_Point_NewPoint",
		"caller_Point_Norm",
		"caller_Point_X_getter",
		"caller_Point_X_setter",
	} {
		assert.Regexp(t, `\n\t`+slot+`\s+func\(\.\.\.interface\{\}\) \(\[\]interface\{\}, error\)\n`, out, slot)
		assert.Equal(t, 1, strings.Count(out, "\t"+slot+", err = module.LoadWithInfo("), slot)
	}

	assert.Contains(t, out, `caller_Sum, err = module.LoadWithInfo("callable=Sum,guest_lib=shapes_MetaFFIGuest", []IDL.MetaFFITypeInfo{{StringType: "int64_packed_array", Type: 33620000, Dimensions: 1}}, []IDL.MetaFFITypeInfo{{StringType: "int64", Type: 32, Dimensions: 0}})`)
	assert.Contains(t, out, `{StringType: "handle", Alias: "error", Type: 32768, Dimensions: 0}`)
	assert.Contains(t, out, `caller_GetCounter, err = module.LoadWithInfo("getter=true,global=Counter,guest_lib=shapes_MetaFFIGuest", nil,`)
	assert.Contains(t, out, `module.LoadWithInfo("field=Point.X,getter=true,guest_lib=shapes_MetaFFIGuest", nil,`)
}

func TestGenerate_Functions(t *testing.T) {
	out := render(t, load(t, "shapes_go.json"), nil)

	assert.Contains(t, out, "// Sum adds all values.\nfunc Sum(values []int64) (ret0 int64, err error) {\n\tres, err := caller_Sum(values)\n")
	assert.Contains(t, out, "\tif ret0, err = metaffiResult[int64](res, 0); err != nil {\n")
	assert.Contains(t, out, "func Divide(a int64, b int64) (ret0 int64, ret1 interface{}, err error) {")
	assert.Contains(t, out, "\tif ret1, err = metaffiResult[interface{}](res, 1); err != nil {\n")
	assert.Contains(t, out, "func SetCounter(value int64) (err error) {\n\t_, err = caller_SetCounter(value)\n\treturn\n}")
	assert.Contains(t, out, "func GetVersion() (ret0 string, err error) {")
}

func TestGenerate_Class(t *testing.T) {
	out := render(t, load(t, "shapes_go.json"), nil)

	assert.Contains(t, out, "// Point is a 2D point.\ntype Point struct {\n\thandle interface{}\n}")
	assert.Contains(t, out, "func (this *Point) MetaFFIHandle() interface{} {")
	assert.Contains(t, out, "func NewPoint() (ret0 *Point, err error) {")
	assert.Contains(t, out, "\tret0 = &Point{handle: h0}\n")
	assert.Contains(t, out, "func (this *Point) Norm() (ret0 float64, err error) {\n\tres, err := caller_Point_Norm(this.handle)\n")
	assert.Contains(t, out, "func (this *Point) GetX() (ret0 int32, err error) {\n\tres, err := caller_Point_X_getter(this.handle)\n")
	assert.Contains(t, out, "func (this *Point) SetX(value int32) (err error) {\n\t_, err = caller_Point_X_setter(this.handle, value)\n")
	assert.NotContains(t, out, "Release")
}

func TestGenerate_PythonGuest(t *testing.T) {
	out := render(t, load(t, "sample_python.json"), nil)

	assert.Contains(t, out, "package sample\n")
	assert.Contains(t, out, "func NewWidget(count int64) (ret0 *Widget, err error) {")
	assert.Contains(t, out, "func (this *Widget) Release() (err error) {\n"+
		"\tif this == nil || this.handle == nil {\n\t\treturn nil\n\t}\n"+
		"\tif _, err = caller_Widget_release(this.handle); err != nil {\n\t\treturn\n\t}\n"+
		"\tthis.handle = nil\n\treturn\n}")
	assert.Equal(t, 1, strings.Count(out, "caller_Widget_release(this.handle)"))
	assert.Contains(t, out, "func (this *Widget) Get_Label() (ret0 string, err error) {")
	assert.Contains(t, out, `runtime := api.NewMetaFFIRuntime("python3")`)
}

func TestGenerate_OptionalOverloads(t *testing.T) {
	def := load(t, "sample_python.json")
	out := render(t, def, nil)

	// add(a, b=...) yields Add and Add_overload1 without b.
	assert.Contains(t, out, "func Add(a int64, b int64) (ret0 int64, err error) {")
	assert.Contains(t, out, "func Add_overload1(a int64) (ret0 int64, err error) {\n\tres, err := caller_add_overload1(a)\n")
	assert.Contains(t, out, `caller_add_overload1, err = module.LoadWithInfo("callable=add,guest_lib=sample", []IDL.MetaFFITypeInfo{{StringType: "int64", Type: 32, Dimensions: 0}},`)
}

func TestGenerate_Names(t *testing.T) {
	def := load(t, "shapes_go.json")
	mod := &def.Modules[0]
	mod.Functions[1].Parameters[0].Name = "func"
	mod.Functions[1].Parameters[1].Name = "err"
	mod.Functions[0].Name = "point"
	out := render(t, def, nil)

	assert.Contains(t, out, "func Divide(func__ int64, err__ int64) (")
	assert.Contains(t, out, "caller_Divide(func__, err__)")
	assert.Contains(t, out, "func PointFunc(values []int64) (")
}

func TestGenerate_PackageOption(t *testing.T) {
	def := load(t, "shapes_go.json")
	def.Modules[0].Name = "geo.shapes"

	out := render(t, def, nil)
	assert.Contains(t, out, "\npackage geo_shapes\n")

	out = render(t, def, map[string]string{"package": "mygeo"})
	assert.Contains(t, out, "\npackage mygeo\n")
}

func TestGenerate_NoEntities(t *testing.T) {
	def := load(t, "shapes_go.json")
	def.Modules[0].Functions = nil
	def.Modules[0].Classes = nil
	out := render(t, def, nil)

	assert.NotContains(t, out, "idl_entities")
	assert.Contains(t, out, "func Load(modulePath string) error {")
}

func TestExported(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"sum", "Sum"},
		{"get_label", "Get_Label"},
		{"MY_GLOBAL", "MY_GLOBAL"},
		{"_private", "U_Private"},
		{"__init__", "U_Init__"},
		{"NewPoint", "NewPoint"},
	}
	for _, tt := range tests {
		if got := exported(tt.in); got != tt.want {
			t.Errorf("exported(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFileName(t *testing.T) {
	if got := (Generator{}).FileName("geo.shapes"); got != "geo_shapes_MetaFFIHost.go" {
		t.Errorf("FileName = %q, want geo_shapes_MetaFFIHost.go", got)
	}
}
