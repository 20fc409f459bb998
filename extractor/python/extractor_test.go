package python

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/broady/metaffi-idl/extractor"
	"github.com/broady/metaffi-idl/idl"
)

func extractSample(t *testing.T) *extractor.ModuleInfo {
	t.Helper()
	info, err := New().Extract(context.Background(), filepath.Join("testdata", "sample.py"))
	require.NoError(t, err)
	return info
}

func functionNamed(t *testing.T, fns []extractor.FunctionInfo, name string) extractor.FunctionInfo {
	t.Helper()
	for _, f := range fns {
		if f.Name == name {
			return f
		}
	}
	t.Fatalf("function %q not found", name)
	return extractor.FunctionInfo{}
}

func TestExtract_Module(t *testing.T) {
	info := extractSample(t)
	assert.Equal(t, "sample", info.Name)
	assert.Equal(t, "Sample module for extraction tests.", info.Comment)

	var names []string
	for _, f := range info.Functions {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"square", "add", "greet", "collect", "maybe", "forward"}, names)

	require.Len(t, info.Globals, 3)
	assert.Equal(t, extractor.GlobalInfo{Name: "MY_GLOBAL", Type: "int", HasGetter: true, HasSetter: true}, info.Globals[0])
	assert.Equal(t, "float", info.Globals[1].Type)
	assert.Equal(t, "list", info.Globals[2].Type)

	require.Len(t, info.Classes, 2)
	assert.Equal(t, "Widget", info.Classes[0].Name)
	assert.Equal(t, "Plain", info.Classes[1].Name)
}

func TestExtract_Functions(t *testing.T) {
	info := extractSample(t)

	add := functionNamed(t, info.Functions, "add")
	assert.Equal(t, "Add two integers.\n\nReturns the sum.", add.Comment)
	assert.Equal(t, []extractor.ParameterInfo{
		{Name: "a", Type: "int"},
		{Name: "b", Type: "int"},
	}, add.Parameters)
	assert.Equal(t, []string{"int"}, add.ReturnTypes)

	greet := functionNamed(t, info.Functions, "greet")
	assert.Empty(t, greet.ReturnTypes, "-> None yields no return values")
	assert.True(t, greet.Parameters[1].HasDefault)

	collect := functionNamed(t, info.Functions, "collect")
	assert.True(t, collect.HasVarargs)
	assert.True(t, collect.HasNamedArgs)
	require.Len(t, collect.Parameters, 2)
	assert.Equal(t, extractor.ParamVarPositional, collect.Parameters[0].Kind)
	assert.Equal(t, "args", collect.Parameters[0].Name)
	assert.Equal(t, extractor.ParamVarKeyword, collect.Parameters[1].Kind)
	assert.Empty(t, collect.ReturnTypes, "no annotation yields no return values")

	maybe := functionNamed(t, info.Functions, "maybe")
	assert.Equal(t, "any", maybe.Parameters[0].Type, "top-level union collapses")
	assert.Equal(t, []string{"Optional[str]"}, maybe.ReturnTypes)

	forward := functionNamed(t, info.Functions, "forward")
	assert.Equal(t, "any", forward.Parameters[0].Type, "forward reference collapses")
	assert.Equal(t, []string{"List[List[float]]"}, forward.ReturnTypes)

	square := functionNamed(t, info.Functions, "square")
	require.Len(t, square.Parameters, 2)
	assert.Equal(t, "any", square.Parameters[0].Type)
	assert.True(t, square.Parameters[1].HasDefault)
}

func TestExtract_Class(t *testing.T) {
	w := extractSample(t).Classes[0]
	assert.Equal(t, "A widget.", w.Comment)
	assert.True(t, w.HasDestructor)

	require.Len(t, w.Constructors, 1)
	ctor := w.Constructors[0]
	assert.Equal(t, "__init__", ctor.Name)
	assert.Equal(t, []string{"Widget"}, ctor.ReturnTypes)
	assert.Equal(t, []extractor.ParameterInfo{
		{Name: "size", Type: "int"},
		{Name: "color", Type: "str", HasDefault: true},
	}, ctor.Parameters)

	require.Len(t, w.Methods, 2)
	assert.Equal(t, "area", w.Methods[0].Name)
	assert.Equal(t, "Compute the area.", w.Methods[0].Comment)
	assert.False(t, w.Methods[0].IsStatic)
	assert.Equal(t, "create", w.Methods[1].Name)
	assert.True(t, w.Methods[1].IsStatic)

	require.Len(t, w.Fields, 3)
	assert.Equal(t, extractor.FieldInfo{Name: "count", Type: "int", HasGetter: true, HasSetter: true}, w.Fields[0])
	assert.Equal(t, "label", w.Fields[1].Name)
	assert.Equal(t, "str", w.Fields[1].Type)
	assert.Equal(t, "name", w.Fields[2].Name)
	assert.Equal(t, "str", w.Fields[2].Type)
	assert.True(t, w.Fields[2].HasGetter)
	assert.True(t, w.Fields[2].HasSetter)
}

func TestExtract_DefaultConstructor(t *testing.T) {
	p := extractSample(t).Classes[1]
	require.Len(t, p.Constructors, 1)
	assert.Equal(t, "Default constructor", p.Constructors[0].Comment)
	assert.Empty(t, p.Constructors[0].Parameters)
	assert.Equal(t, []string{"Plain"}, p.Constructors[0].ReturnTypes)
	assert.False(t, p.HasDestructor)
}

func TestExtract_Package(t *testing.T) {
	info, err := New().Extract(context.Background(), filepath.Join("testdata", "pkg"))
	require.NoError(t, err)
	assert.Equal(t, "pkg", info.Name)
	assert.Equal(t, "A package.", info.Comment)

	require.Len(t, info.Classes, 1)
	ctor := info.Classes[0].Constructors[0]
	assert.Equal(t, "Dataclass constructor", ctor.Comment)
	assert.Equal(t, []extractor.ParameterInfo{
		{Name: "x", Type: "float"},
		{Name: "y", Type: "float", HasDefault: true},
	}, ctor.Parameters)
	assert.Equal(t, []string{"Point"}, functionNamed(t, info.Functions, "origin").ReturnTypes)
}

func TestExtract_Errors(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"missing file", filepath.Join("testdata", "nope.py")},
		{"syntax error", filepath.Join("testdata", "broken.py")},
		{"directory without __init__", "testdata/empty-dir-does-not-exist"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New().Extract(context.Background(), tt.source)
			require.Error(t, err)
			assert.True(t, idl.IsCode(err, idl.CodeExtraction), "error = %v", err)
		})
	}
}

func TestExtract_SyntaxErrorPosition(t *testing.T) {
	_, err := New().Extract(context.Background(), filepath.Join("testdata", "broken.py"))
	var e *idl.Error
	require.ErrorAs(t, err, &e)
	assert.Contains(t, e.Message, "syntax error")
	line, ok := e.Details["line"].(int)
	require.True(t, ok)
	assert.GreaterOrEqual(t, line, 4)
}

func TestCleanDoc(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"One line.", "One line."},
		{"  Leading space.", "Leading space."},
		{"\n    Indented.\n      More.\n    ", "Indented.\n  More."},
		{"Title.\n\n    Body line.\n    ", "Title.\n\nBody line."},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cleanDoc(tt.in))
	}
}

func TestStringValue(t *testing.T) {
	assert.Equal(t, "doc", stringValue(`"""doc"""`))
	assert.Equal(t, "doc", stringValue(`r'doc'`))
	assert.Equal(t, "x", stringValue(`"x"`))
}
