package idl

import "fmt"

// ValidationError represents a structural issue in an IDL definition.
type ValidationError struct {
	Code string
	// Path locates the offending entity, e.g. "modules[0].classes[Foo].methods[bar]".
	Path    string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return e.Path + ": " + e.Message
}

// Validate checks the definition for structural issues.
// Returns all validation errors found (not just the first).
func (d *IDLDefinition) Validate() []error {
	var errs []*ValidationError
	add := func(code, path, format string, args ...any) {
		errs = append(errs, &ValidationError{
			Code:    code,
			Path:    path,
			Message: fmt.Sprintf(format, args...),
		})
	}

	if d.TargetLanguage == "" {
		add("missing_target_language", "", "target_language is required")
	}
	if d.MetaFFIGuestLib == "" {
		add("missing_guest_lib", "", "metaffi_guest_lib is required")
	}
	if len(d.Modules) == 0 {
		add("missing_modules", "", "at least one module is required")
	}

	for mi := range d.Modules {
		m := &d.Modules[mi]
		mpath := fmt.Sprintf("modules[%d]", mi)
		if m.Name == "" {
			add("missing_name", mpath, "module name is required")
		} else {
			mpath = fmt.Sprintf("modules[%s]", m.Name)
		}

		for i := range m.Functions {
			validateCallable(add, memberPath(mpath, "functions", i, m.Functions[i].Name), &m.Functions[i])
		}
		for i := range m.Globals {
			g := &m.Globals[i]
			validateAttribute(add, memberPath(mpath, "globals", i, g.Name), g.Name, g.Getter, g.Setter)
		}
		for ci := range m.Classes {
			c := &m.Classes[ci]
			cpath := memberPath(mpath, "classes", ci, c.Name)
			if c.Name == "" {
				add("missing_name", cpath, "class name is required")
			}
			if len(c.Constructors) == 0 {
				add("missing_constructor", cpath, "at least one constructor is required")
			}
			for i := range c.Constructors {
				validateCallable(add, memberPath(cpath, "constructors", i, c.Constructors[i].Name), &c.Constructors[i])
			}
			if c.Release != nil {
				validateCallable(add, cpath+".release", c.Release)
			}
			for i := range c.Methods {
				validateCallable(add, memberPath(cpath, "methods", i, c.Methods[i].Name), &c.Methods[i])
			}
			for i := range c.Fields {
				f := &c.Fields[i]
				validateAttribute(add, memberPath(cpath, "fields", i, f.Name), f.Name, f.Getter, f.Setter)
			}
		}
	}

	// Convert ValidationErrors to regular errors
	var result []error
	for _, e := range errs {
		result = append(result, e)
	}
	return result
}

// ValidateStrict returns the first validation error as a CodeValidation *Error.
func (d *IDLDefinition) ValidateStrict() error {
	errs := d.Validate()
	if len(errs) == 0 {
		return nil
	}
	ve := errs[0].(*ValidationError)
	return (&Error{
		Code:    CodeValidation,
		Message: ve.Message,
		Err:     ve,
	}).WithEntity(ve.Path).WithDetail("count", len(errs))
}

type addFunc func(code, path, format string, args ...any)

func validateCallable(add addFunc, path string, f *FunctionDefinition) {
	if f.Name == "" {
		add("missing_name", path, "%s name is required", f.Kind)
	}
	if len(f.EntityPath) == 0 {
		add("missing_entity_path", path, "%s entity_path must not be empty", f.Kind)
	}
}

func validateAttribute(add addFunc, path, name string, getter, setter *FunctionDefinition) {
	if name == "" {
		add("missing_name", path, "attribute name is required")
	}
	if getter == nil && setter == nil {
		add("missing_accessor", path, "at least one of getter or setter is required")
	}
	if getter != nil && len(getter.EntityPath) == 0 {
		add("missing_entity_path", path+".getter", "getter entity_path must not be empty")
	}
	if setter != nil && len(setter.EntityPath) == 0 {
		add("missing_entity_path", path+".setter", "setter entity_path must not be empty")
	}
}

func memberPath(parent, group string, index int, name string) string {
	if name == "" {
		return fmt.Sprintf("%s.%s[%d]", parent, group, index)
	}
	return fmt.Sprintf("%s.%s[%s]", parent, group, name)
}
