package python

import (
	"log/slog"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/broady/metaffi-idl/extractor"
)

// classFields collects fields in declaration order. Annotated declarations
// override the type of a plain assignment of the same name.
type classFields struct {
	list      []extractor.FieldInfo
	index     map[string]int
	annotated map[string]bool
}

func (f *classFields) add(field extractor.FieldInfo, annotated bool) {
	if i, ok := f.index[field.Name]; ok {
		if annotated || (!f.annotated[field.Name] && field.Type != "any") {
			f.list[i].Type = field.Type
		}
		f.list[i].HasGetter = f.list[i].HasGetter || field.HasGetter
		f.list[i].HasSetter = f.list[i].HasSetter || field.HasSetter
		f.annotated[field.Name] = f.annotated[field.Name] || annotated
		return
	}
	f.index[field.Name] = len(f.list)
	f.annotated[field.Name] = annotated
	f.list = append(f.list, field)
}

func (w *walker) class(def *sitter.Node, decorators []string) extractor.ClassInfo {
	name := w.text(def.ChildByFieldName("name"))
	body := def.ChildByFieldName("body")
	cls := extractor.ClassInfo{
		Name:    name,
		Comment: w.docstring(body),
	}
	fields := &classFields{index: map[string]int{}, annotated: map[string]bool{}}
	// dataclass constructor parameters, in field order
	var dataParams []extractor.ParameterInfo
	logger := w.logger.With("class", name)

	if body != nil {
		for i := 0; i < int(body.NamedChildCount()); i++ {
			member, memberDecorators := w.unwrapDecorated(body.NamedChild(i))
			if member == nil {
				continue
			}
			switch member.Type() {
			case "function_definition":
				w.classMethod(&cls, fields, member, memberDecorators, logger)
			case "expression_statement":
				asg := assignmentOf(member)
				if asg == nil {
					continue
				}
				left := asg.ChildByFieldName("left")
				if left == nil || left.Type() != "identifier" {
					continue
				}
				fieldName := w.text(left)
				annotated := asg.ChildByFieldName("type") != nil
				typ := w.assignedType(asg)
				if annotated && strings.HasPrefix(typ, "ClassVar") {
					annotated = false
				} else if annotated {
					dataParams = append(dataParams, extractor.ParameterInfo{
						Name:       fieldName,
						Type:       typ,
						HasDefault: asg.ChildByFieldName("right") != nil,
					})
				}
				if isPrivate(fieldName) {
					continue
				}
				fields.add(extractor.FieldInfo{
					Name:      fieldName,
					Type:      typ,
					HasGetter: true,
					HasSetter: true,
				}, annotated)
			}
		}
	}
	cls.Fields = fields.list

	if len(cls.Constructors) == 0 {
		ctor := extractor.FunctionInfo{
			Name:        constructorName,
			Comment:     "Default constructor",
			ReturnTypes: []string{name},
		}
		if isDataclass(decorators) {
			ctor.Comment = "Dataclass constructor"
			ctor.Parameters = dataParams
		}
		cls.Constructors = append(cls.Constructors, ctor)
	}
	return cls
}

func (w *walker) classMethod(cls *extractor.ClassInfo, fields *classFields, def *sitter.Node, decorators []string, logger *slog.Logger) {
	name := w.text(def.ChildByFieldName("name"))
	switch {
	case name == constructorName:
		cls.Constructors = append(cls.Constructors, w.function(def, cls.Name))
		return
	case name == destructorName:
		cls.HasDestructor = true
		return
	case isPrivate(name):
		logger.Debug("skipping private member", slog.String("name", name))
		return
	}

	for _, d := range decorators {
		switch {
		case d == "property":
			typ := "any"
			if rt := def.ChildByFieldName("return_type"); rt != nil {
				typ = w.annotation(rt)
			}
			fields.add(extractor.FieldInfo{
				Name:      name,
				Type:      typ,
				Comment:   w.docstring(def.ChildByFieldName("body")),
				HasGetter: true,
			}, false)
			return
		case strings.HasSuffix(d, ".setter"):
			fields.add(extractor.FieldInfo{
				Name:      strings.TrimSuffix(d, ".setter"),
				Type:      "any",
				HasSetter: true,
			}, false)
			return
		case strings.HasSuffix(d, ".deleter"):
			return
		}
	}

	fn := w.function(def, cls.Name)
	for _, d := range decorators {
		if d == "staticmethod" || d == "classmethod" {
			fn.IsStatic = true
		}
	}
	cls.Methods = append(cls.Methods, fn)
}

func isDataclass(decorators []string) bool {
	for _, d := range decorators {
		if i := strings.IndexByte(d, '('); i >= 0 {
			d = d[:i]
		}
		if d == "dataclass" || d == "dataclasses.dataclass" {
			return true
		}
	}
	return false
}
