package idl

import "testing"

func TestMetaFFIType_Code(t *testing.T) {
	tests := []struct {
		typ  MetaFFIType
		want uint64
	}{
		{Float64, 1},
		{Int32, 16},
		{String8, 4096},
		{Handle, 32768},
		{Callable, 16777216},
		{Int64Array, 32 | CodeArray},
		{HandleArray, 32768 | CodeArray},
		{"int64_packed_array", 32 | CodeArray | CodePacked},
		{"MyClass", 32768},
	}
	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			if got := tt.typ.Code(); got != tt.want {
				t.Errorf("Code() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMetaFFIType_Predicates(t *testing.T) {
	if !Int8Array.IsArrayType() || Int8.IsArrayType() {
		t.Error("IsArrayType mismatch")
	}
	if Int8Array.ElementType() != Int8 {
		t.Errorf("ElementType() = %q", Int8Array.ElementType())
	}
	if MetaFFIType("bool_packed_array").ElementType() != Bool {
		t.Error("packed suffix not stripped")
	}
	if Float32.ArrayOf() != Float32Array || Float32Array.ArrayOf() != Float32Array {
		t.Error("ArrayOf mismatch")
	}
	if !HandleArray.IsHandle() || Any.IsHandle() {
		t.Error("IsHandle mismatch")
	}
	if MetaFFIType("widget").IsKnown() {
		t.Error("widget should not be known")
	}
	for _, s := range Scalars() {
		if !s.IsKnown() || !s.ArrayOf().IsKnown() {
			t.Errorf("%s should be known", s)
		}
	}
}

func TestNewTypeInfo_Packed(t *testing.T) {
	tests := []struct {
		name       string
		typ        MetaFFIType
		dims       int
		wantDims   int
		wantPacked bool
		wantString string
	}{
		{"int64 1-D", Int64, 1, 1, true, "int64_packed_array"},
		{"int64 2-D", Int64, 2, 2, false, "int64_array"},
		{"int64 scalar", Int64, 0, 0, false, "int64"},
		{"array suffix dims 0", Uint8Array, 0, 1, true, "uint8_packed_array"},
		{"string8 1-D", String8, 1, 1, true, "string8_packed_array"},
		{"string16 1-D", String16, 1, 1, false, "string16_array"},
		{"char8 1-D", Char8, 1, 1, false, "char8_array"},
		{"any 1-D", Any, 1, 1, false, "any_array"},
		{"handle 1-D", HandleArray, 1, 1, true, "handle_packed_array"},
		{"callable 1-D", Callable, 1, 1, true, "callable_packed_array"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ti := NewTypeInfo(tt.typ, tt.dims, "")
			if ti.Dimensions != tt.wantDims {
				t.Errorf("Dimensions = %d, want %d", ti.Dimensions, tt.wantDims)
			}
			if ti.Packed != tt.wantPacked {
				t.Errorf("Packed = %v, want %v", ti.Packed, tt.wantPacked)
			}
			if got := ti.String(); got != tt.wantString {
				t.Errorf("String() = %q, want %q", got, tt.wantString)
			}
		})
	}
}

func TestTypeInfo_Code(t *testing.T) {
	packed := NewTypeInfo(Int64, 1, "")
	if got, want := packed.Code(), uint64(32)|CodeArray|CodePacked; got != want {
		t.Errorf("packed Code() = %d, want %d", got, want)
	}
	nested := NewTypeInfo(Int64, 2, "")
	if got, want := nested.Code(), uint64(32)|CodeArray; got != want {
		t.Errorf("nested Code() = %d, want %d", got, want)
	}
}

func TestNewTypeInfo_AliasOnlyForHandles(t *testing.T) {
	if ti := NewTypeInfo(Int32, 0, "numpy.int32"); ti.Alias != "" {
		t.Errorf("Alias = %q, want empty", ti.Alias)
	}
	if ti := NewTypeInfo(Handle, 0, "Widget"); ti.Alias != "Widget" {
		t.Errorf("Alias = %q, want Widget", ti.Alias)
	}
}
