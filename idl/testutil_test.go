package idl

// sampleDefinition returns a small definition exercising every entity kind.
func sampleDefinition() *IDLDefinition {
	add := FunctionDefinition{
		Kind:       KindFunction,
		Name:       "add",
		Comment:    "Adds two numbers",
		Tags:       map[string]string{},
		EntityPath: EntityPath{"callable": "add"},
		Parameters: []ArgDefinition{
			NewArg("a", Int32, 0, ""),
			NewArg("b", Int32, 0, ""),
		},
		ReturnValues: []ArgDefinition{NewArg("ret_0", Int32, 0, "")},
	}
	opt := NewArg("scale", Float64, 0, "")
	opt.IsOptional = true
	getValue := FunctionDefinition{
		Kind:             KindMethod,
		Name:             "get_value",
		EntityPath:       EntityPath{"callable": "MyClass.get_value", "instance_required": "true"},
		Parameters:       []ArgDefinition{opt},
		ReturnValues:     []ArgDefinition{NewArg("ret_0", Int64, 1, "")},
		InstanceRequired: true,
	}
	return &IDLDefinition{
		IDLSource:                "sample",
		IDLExtension:             ".py",
		IDLFilenameWithExtension: "sample.py",
		IDLFullPath:              "/tmp/sample.py",
		MetaFFIGuestLib:          "X",
		TargetLanguage:           "python3",
		Modules: []ModuleDefinition{{
			Name:      "sample",
			Comment:   "Generated from sample.py",
			Functions: []FunctionDefinition{add},
			Globals: []GlobalDefinition{{
				ArgDefinition: NewArg("COUNT", Int64, 0, ""),
				Getter: &FunctionDefinition{
					Kind:         KindGetter,
					Name:         "GetCOUNT",
					EntityPath:   EntityPath{"attribute": "COUNT", "getter": "true"},
					ReturnValues: []ArgDefinition{NewArg("COUNT", Int64, 0, "")},
				},
			}},
			Classes: []ClassDefinition{{
				Name:       "MyClass",
				EntityPath: EntityPath{},
				Constructors: []FunctionDefinition{{
					Kind:         KindConstructor,
					Name:         "__init__",
					EntityPath:   EntityPath{"callable": "MyClass.__init__"},
					ReturnValues: []ArgDefinition{NewArg("ret_0", Handle, 0, "MyClass")},
				}},
				Methods: []FunctionDefinition{getValue},
				Fields: []FieldDefinition{{
					ArgDefinition: NewArg("name", String8, 0, ""),
					Getter: &FunctionDefinition{
						Kind:             KindGetter,
						Name:             "get_name",
						EntityPath:       EntityPath{"attribute": "MyClass.name", "getter": "true", "instance_required": "true"},
						ReturnValues:     []ArgDefinition{NewArg("ret_0", String8, 0, "")},
						InstanceRequired: true,
					},
					Setter: &FunctionDefinition{
						Kind:             KindSetter,
						Name:             "set_name",
						EntityPath:       EntityPath{"attribute": "MyClass.name", "setter": "true", "instance_required": "true"},
						Parameters:       []ArgDefinition{NewArg("value", String8, 0, "")},
						InstanceRequired: true,
					},
				}},
			}},
			ExternalResources: []string{"sample"},
		}},
	}
}
