// Package extractor defines the language-neutral interface tree produced by
// the source front ends.
package extractor

import "context"

// ParamKind describes how a parameter binds call arguments.
type ParamKind int

const (
	// ParamPositional is an ordinary parameter.
	ParamPositional ParamKind = iota
	// ParamVarPositional collects the remaining positional arguments.
	ParamVarPositional
	// ParamVarKeyword collects the remaining keyword arguments.
	ParamVarKeyword
)

// ModuleInfo is the public surface of one source module.
type ModuleInfo struct {
	Name      string
	Comment   string
	Functions []FunctionInfo
	Classes   []ClassInfo
	Globals   []GlobalInfo
}

// FunctionInfo describes a function, method or constructor.
type FunctionInfo struct {
	Name       string
	Comment    string
	Parameters []ParameterInfo
	// ReturnTypes holds one source type expression per return value.
	ReturnTypes  []string
	HasVarargs   bool
	HasNamedArgs bool
	// IsStatic marks methods that do not take an instance.
	IsStatic bool
	// ReceiverPtr marks Go methods declared on a pointer receiver.
	ReceiverPtr bool
	// Degraded marks members whose signature could not be read; their
	// parameter and return lists are empty.
	Degraded bool
}

// ParameterInfo describes one declared parameter. Variadic parameters are
// listed with their Kind and also raise the owning function's flags.
type ParameterInfo struct {
	Name       string
	Type       string
	HasDefault bool
	Kind       ParamKind
}

// ClassInfo describes a class or struct.
type ClassInfo struct {
	Name          string
	Comment       string
	Constructors  []FunctionInfo
	Methods       []FunctionInfo
	Fields        []FieldInfo
	HasDestructor bool
}

// FieldInfo describes an instance attribute.
type FieldInfo struct {
	Name      string
	Type      string
	Comment   string
	HasGetter bool
	HasSetter bool
}

// GlobalInfo describes a module-level attribute.
type GlobalInfo struct {
	Name      string
	Type      string
	Comment   string
	HasGetter bool
	HasSetter bool
}

// Extractor loads a source unit and returns its public surface.
// Sources that cannot be loaded or parsed fail with a CodeExtraction error.
type Extractor interface {
	Language() string
	Extract(ctx context.Context, source string) (*ModuleInfo, error)
}

// FindClass returns the class with the given name, or nil.
func (m *ModuleInfo) FindClass(name string) *ClassInfo {
	for i := range m.Classes {
		if m.Classes[i].Name == name {
			return &m.Classes[i]
		}
	}
	return nil
}
