package idl

import "strings"

// MetaFFIType is a canonical, language-neutral type name.
// The set is closed: every scalar below plus its "_array" variant.
type MetaFFIType string

const (
	Float64 MetaFFIType = "float64"
	Float32 MetaFFIType = "float32"

	Int8  MetaFFIType = "int8"
	Int16 MetaFFIType = "int16"
	Int32 MetaFFIType = "int32"
	Int64 MetaFFIType = "int64"

	Uint8  MetaFFIType = "uint8"
	Uint16 MetaFFIType = "uint16"
	Uint32 MetaFFIType = "uint32"
	Uint64 MetaFFIType = "uint64"

	Bool MetaFFIType = "bool"

	Char8  MetaFFIType = "char8"
	Char16 MetaFFIType = "char16"
	Char32 MetaFFIType = "char32"

	String8  MetaFFIType = "string8"
	String16 MetaFFIType = "string16"
	String32 MetaFFIType = "string32"

	Handle   MetaFFIType = "handle"
	Any      MetaFFIType = "any"
	Size     MetaFFIType = "size"
	Null     MetaFFIType = "null"
	Callable MetaFFIType = "callable"

	Float64Array  MetaFFIType = "float64_array"
	Float32Array  MetaFFIType = "float32_array"
	Int8Array     MetaFFIType = "int8_array"
	Int16Array    MetaFFIType = "int16_array"
	Int32Array    MetaFFIType = "int32_array"
	Int64Array    MetaFFIType = "int64_array"
	Uint8Array    MetaFFIType = "uint8_array"
	Uint16Array   MetaFFIType = "uint16_array"
	Uint32Array   MetaFFIType = "uint32_array"
	Uint64Array   MetaFFIType = "uint64_array"
	BoolArray     MetaFFIType = "bool_array"
	Char8Array    MetaFFIType = "char8_array"
	Char16Array   MetaFFIType = "char16_array"
	Char32Array   MetaFFIType = "char32_array"
	String8Array  MetaFFIType = "string8_array"
	String16Array MetaFFIType = "string16_array"
	String32Array MetaFFIType = "string32_array"
	HandleArray   MetaFFIType = "handle_array"
	AnyArray      MetaFFIType = "any_array"
	SizeArray     MetaFFIType = "size_array"
	NullArray     MetaFFIType = "null_array"
	CallableArray MetaFFIType = "callable_array"
)

const (
	arraySuffix       = "_array"
	packedArraySuffix = "_packed_array"
)

// Runtime type codes. Bit values match runtime/metaffi_primitives.h.
const (
	codeFloat64  uint64 = 1
	codeFloat32  uint64 = 2
	codeInt8     uint64 = 4
	codeInt16    uint64 = 8
	codeInt32    uint64 = 16
	codeInt64    uint64 = 32
	codeUint8    uint64 = 64
	codeUint16   uint64 = 128
	codeUint32   uint64 = 256
	codeUint64   uint64 = 512
	codeBool     uint64 = 1024
	codeString8  uint64 = 4096
	codeString16 uint64 = 8192
	codeString32 uint64 = 16384
	codeHandle   uint64 = 32768
	codeSize     uint64 = 262144
	codeChar8    uint64 = 524288
	codeChar16   uint64 = 1048576
	codeChar32   uint64 = 2097152
	codeAny      uint64 = 4194304
	codeNull     uint64 = 8388608
	codeCallable uint64 = 16777216

	// CodeArray is OR-ed onto an element code for array types.
	CodeArray uint64 = 65536
	// CodePacked is OR-ed onto an array code for packed 1-D arrays.
	CodePacked uint64 = 33554432
)

var scalarCodes = map[MetaFFIType]uint64{
	Float64:  codeFloat64,
	Float32:  codeFloat32,
	Int8:     codeInt8,
	Int16:    codeInt16,
	Int32:    codeInt32,
	Int64:    codeInt64,
	Uint8:    codeUint8,
	Uint16:   codeUint16,
	Uint32:   codeUint32,
	Uint64:   codeUint64,
	Bool:     codeBool,
	Char8:    codeChar8,
	Char16:   codeChar16,
	Char32:   codeChar32,
	String8:  codeString8,
	String16: codeString16,
	String32: codeString32,
	Handle:   codeHandle,
	Any:      codeAny,
	Size:     codeSize,
	Null:     codeNull,
	Callable: codeCallable,
}

// packable lists the element types that have a packed 1-D array representation.
var packable = map[MetaFFIType]bool{
	Float64:  true,
	Float32:  true,
	Int8:     true,
	Int16:    true,
	Int32:    true,
	Int64:    true,
	Uint8:    true,
	Uint16:   true,
	Uint32:   true,
	Uint64:   true,
	Bool:     true,
	String8:  true,
	Handle:   true,
	Callable: true,
}

// Scalars returns every scalar type of the vocabulary in declaration order.
func Scalars() []MetaFFIType {
	return []MetaFFIType{
		Float64, Float32,
		Int8, Int16, Int32, Int64,
		Uint8, Uint16, Uint32, Uint64,
		Bool,
		Char8, Char16, Char32,
		String8, String16, String32,
		Handle, Any, Size, Null, Callable,
	}
}

// IsArrayType reports whether t carries an array suffix.
func (t MetaFFIType) IsArrayType() bool {
	return strings.HasSuffix(string(t), arraySuffix)
}

// ElementType strips an "_array" or "_packed_array" suffix.
func (t MetaFFIType) ElementType() MetaFFIType {
	s := string(t)
	if strings.HasSuffix(s, packedArraySuffix) {
		return MetaFFIType(strings.TrimSuffix(s, packedArraySuffix))
	}
	return MetaFFIType(strings.TrimSuffix(s, arraySuffix))
}

// ArrayOf returns the array variant of t's element type.
func (t MetaFFIType) ArrayOf() MetaFFIType {
	return t.ElementType() + arraySuffix
}

// IsKnown reports whether t belongs to the canonical vocabulary.
func (t MetaFFIType) IsKnown() bool {
	_, ok := scalarCodes[MetaFFIType(strings.ToLower(string(t.ElementType())))]
	return ok
}

// IsHandle reports whether t is handle or handle_array.
func (t MetaFFIType) IsHandle() bool {
	return t.ElementType() == Handle
}

// IsPackable reports whether t's element type has a packed array form.
func (t MetaFFIType) IsPackable() bool {
	return packable[t.ElementType()]
}

// Code returns the runtime numeric code. Unknown types report the handle code,
// matching how the runtime treats unrecognized names.
func (t MetaFFIType) Code() uint64 {
	code, ok := scalarCodes[MetaFFIType(strings.ToLower(string(t.ElementType())))]
	if !ok {
		code = codeHandle
	}
	if t.IsArrayType() {
		code |= CodeArray
	}
	if strings.HasSuffix(string(t), packedArraySuffix) {
		code |= CodePacked
	}
	return code
}

// TypeInfo is the runtime-facing description of one parameter or return slot.
type TypeInfo struct {
	// Type is the canonical type as written in the IR.
	Type MetaFFIType
	// Alias is the source type name, only set for handle kinds.
	Alias string
	// Dimensions is the effective array dimension count.
	Dimensions int
	// Packed marks a 1-D array of a packable element type.
	Packed bool
}

// NewTypeInfo computes the TypeInfo of a canonical type, dimension count and alias.
// A type carrying the "_array" suffix with zero dimensions is treated as 1-D.
func NewTypeInfo(t MetaFFIType, dims int, alias string) TypeInfo {
	effective := dims
	if effective == 0 && t.IsArrayType() {
		effective = 1
	}
	packed := strings.HasSuffix(string(t), packedArraySuffix) ||
		(effective == 1 && packable[t.ElementType()])
	if !t.IsHandle() {
		alias = ""
	}
	return TypeInfo{
		Type:       t,
		Alias:      alias,
		Dimensions: effective,
		Packed:     packed,
	}
}

// IsArray reports whether the slot holds an array of any shape.
func (ti TypeInfo) IsArray() bool {
	return ti.Dimensions > 0
}

// Code returns the runtime numeric type code for the slot.
func (ti TypeInfo) Code() uint64 {
	code := ti.Type.ElementType().Code()
	if ti.IsArray() {
		code |= CodeArray
	}
	if ti.Packed {
		code |= CodePacked
	}
	return code
}

// String renders the canonical type name of the slot, using the
// "_packed_array" form for packed arrays.
func (ti TypeInfo) String() string {
	elem := ti.Type.ElementType()
	switch {
	case ti.Packed:
		return string(elem) + packedArraySuffix
	case ti.IsArray():
		return string(elem) + arraySuffix
	default:
		return string(elem)
	}
}
