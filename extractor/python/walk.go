package python

import (
	"log/slog"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/broady/metaffi-idl/extractor"
)

const (
	constructorName = "__init__"
	destructorName  = "__del__"
)

type walker struct {
	src    []byte
	logger *slog.Logger
}

func (w *walker) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(w.src)
}

func isPrivate(name string) bool {
	return strings.HasPrefix(name, "_")
}

// unwrapDecorated returns the definition inside a decorated_definition and
// the decorator expressions applied to it.
func (w *walker) unwrapDecorated(n *sitter.Node) (*sitter.Node, []string) {
	if n.Type() != "decorated_definition" {
		return n, nil
	}
	var decorators []string
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c.Type() == "decorator" {
			decorators = append(decorators, strings.TrimSpace(strings.TrimPrefix(w.text(c), "@")))
		}
	}
	return n.ChildByFieldName("definition"), decorators
}

func (w *walker) module(root *sitter.Node) *extractor.ModuleInfo {
	info := &extractor.ModuleInfo{Comment: w.docstring(root)}

	// names bound to module-level defs and classes
	defined := map[string]bool{}
	for i := 0; i < int(root.NamedChildCount()); i++ {
		def, _ := w.unwrapDecorated(root.NamedChild(i))
		if def == nil {
			continue
		}
		switch def.Type() {
		case "function_definition", "class_definition":
			defined[w.text(def.ChildByFieldName("name"))] = true
		}
	}

	globals := map[string]int{}
	for i := 0; i < int(root.NamedChildCount()); i++ {
		stmt := root.NamedChild(i)
		def, decorators := w.unwrapDecorated(stmt)
		if def == nil {
			continue
		}
		switch def.Type() {
		case "function_definition":
			name := w.text(def.ChildByFieldName("name"))
			if isPrivate(name) {
				w.logger.Debug("skipping private function", slog.String("name", name))
				continue
			}
			info.Functions = append(info.Functions, w.function(def, ""))
		case "class_definition":
			name := w.text(def.ChildByFieldName("name"))
			if isPrivate(name) {
				w.logger.Debug("skipping private class", slog.String("name", name))
				continue
			}
			info.Classes = append(info.Classes, w.class(def, decorators))
		case "expression_statement":
			asg := assignmentOf(def)
			if asg == nil {
				continue
			}
			w.moduleAssignment(asg, info, defined, globals)
		}
	}
	return info
}

func assignmentOf(stmt *sitter.Node) *sitter.Node {
	if stmt.NamedChildCount() == 0 {
		return nil
	}
	c := stmt.NamedChild(0)
	if c.Type() != "assignment" {
		return nil
	}
	return c
}

func (w *walker) moduleAssignment(asg *sitter.Node, info *extractor.ModuleInfo, defined map[string]bool, globals map[string]int) {
	left := asg.ChildByFieldName("left")
	if left == nil || left.Type() != "identifier" {
		return
	}
	name := w.text(left)
	if isPrivate(name) {
		return
	}
	right := asg.ChildByFieldName("right")
	if right == nil {
		// a bare annotation binds no value
		return
	}
	if right.Type() == "lambda" {
		info.Functions = append(info.Functions, w.lambda(name, right))
		return
	}
	if right.Type() == "identifier" && defined[w.text(right)] {
		// alias of a function or class, not a value
		return
	}
	g := extractor.GlobalInfo{
		Name:      name,
		Type:      w.assignedType(asg),
		HasGetter: true,
		HasSetter: true,
	}
	if idx, ok := globals[name]; ok {
		// rebinding keeps the first position; an annotation wins
		if asg.ChildByFieldName("type") != nil || info.Globals[idx].Type == "any" {
			info.Globals[idx].Type = g.Type
		}
		return
	}
	globals[name] = len(info.Globals)
	info.Globals = append(info.Globals, g)
}

// assignedType is the annotation of an assignment if present, otherwise the
// type inferred from the assigned literal.
func (w *walker) assignedType(asg *sitter.Node) string {
	if t := asg.ChildByFieldName("type"); t != nil {
		return w.annotation(t)
	}
	return w.literalType(asg.ChildByFieldName("right"))
}

func (w *walker) literalType(n *sitter.Node) string {
	if n == nil {
		return "any"
	}
	switch n.Type() {
	case "integer":
		return "int"
	case "float":
		return "float"
	case "true", "false":
		return "bool"
	case "none":
		return "NoneType"
	case "string", "concatenated_string":
		if isBytesLiteral(w.text(n)) {
			return "bytes"
		}
		return "str"
	case "list", "list_comprehension":
		return "list"
	case "dictionary", "dictionary_comprehension":
		return "dict"
	case "tuple":
		return "tuple"
	case "set", "set_comprehension":
		return "set"
	case "unary_operator":
		return w.literalType(n.ChildByFieldName("argument"))
	case "parenthesized_expression":
		if n.NamedChildCount() == 1 {
			return w.literalType(n.NamedChild(0))
		}
	case "call":
		fn := n.ChildByFieldName("function")
		if fn != nil && fn.Type() == "identifier" {
			name := w.text(fn)
			if _, builtin := builtinConstructors[name]; builtin || startsUpper(name) {
				return name
			}
		}
	}
	return "any"
}

var builtinConstructors = map[string]struct{}{
	"int": {}, "float": {}, "str": {}, "bool": {}, "bytes": {}, "bytearray": {},
	"list": {}, "dict": {}, "tuple": {}, "set": {}, "frozenset": {}, "object": {},
}

func startsUpper(s string) bool {
	return s != "" && s[0] >= 'A' && s[0] <= 'Z'
}

func isBytesLiteral(lit string) bool {
	for _, r := range lit {
		switch r {
		case 'b', 'B':
			return true
		case '"', '\'':
			return false
		}
	}
	return false
}

// annotation renders a type annotation. Top-level unions and quoted forward
// references cannot be resolved statically and become "any".
func (w *walker) annotation(n *sitter.Node) string {
	if n == nil {
		return "any"
	}
	if n.Type() == "type" && n.NamedChildCount() > 0 {
		n = n.NamedChild(0)
	}
	switch n.Type() {
	case "string", "concatenated_string":
		return "any"
	case "none":
		return "None"
	case "binary_operator":
		if op := n.ChildByFieldName("operator"); op != nil && w.text(op) == "|" {
			return "any"
		}
	}
	text := strings.Join(strings.Fields(w.text(n)), " ")
	if text == "" {
		return "any"
	}
	return text
}

func (w *walker) function(def *sitter.Node, class string) extractor.FunctionInfo {
	name := w.text(def.ChildByFieldName("name"))
	fn := extractor.FunctionInfo{
		Name:    name,
		Comment: w.docstring(def.ChildByFieldName("body")),
	}
	params := def.ChildByFieldName("parameters")
	if params == nil {
		w.logger.Debug("signature unavailable", slog.String("name", name))
		fn.Degraded = true
		return fn
	}
	w.parameters(params, class != "", &fn)

	switch {
	case class != "" && name == constructorName:
		fn.ReturnTypes = []string{class}
	default:
		if rt := def.ChildByFieldName("return_type"); rt != nil {
			if t := w.annotation(rt); t != "None" {
				fn.ReturnTypes = []string{t}
			}
		}
	}
	return fn
}

func (w *walker) lambda(name string, n *sitter.Node) extractor.FunctionInfo {
	fn := extractor.FunctionInfo{Name: name}
	if params := n.ChildByFieldName("parameters"); params != nil {
		w.parameters(params, false, &fn)
	}
	return fn
}

// parameters fills fn from a parameters or lambda_parameters node. Inside a
// class the receiver named self or cls is skipped.
func (w *walker) parameters(params *sitter.Node, inClass bool, fn *extractor.FunctionInfo) {
	for i := 0; i < int(params.NamedChildCount()); i++ {
		p := params.NamedChild(i)
		var pi extractor.ParameterInfo
		switch p.Type() {
		case "identifier":
			pi = extractor.ParameterInfo{Name: w.text(p), Type: "any"}
		case "typed_parameter":
			inner := p.NamedChild(0)
			pi = extractor.ParameterInfo{Name: w.text(inner), Type: w.annotation(p.ChildByFieldName("type"))}
			switch inner.Type() {
			case "list_splat_pattern":
				pi.Name = w.splatName(inner)
				pi.Kind = extractor.ParamVarPositional
			case "dictionary_splat_pattern":
				pi.Name = w.splatName(inner)
				pi.Kind = extractor.ParamVarKeyword
			}
		case "default_parameter":
			pi = extractor.ParameterInfo{Name: w.text(p.ChildByFieldName("name")), Type: "any", HasDefault: true}
		case "typed_default_parameter":
			pi = extractor.ParameterInfo{
				Name:       w.text(p.ChildByFieldName("name")),
				Type:       w.annotation(p.ChildByFieldName("type")),
				HasDefault: true,
			}
		case "list_splat_pattern":
			pi = extractor.ParameterInfo{Name: w.splatName(p), Type: "any", Kind: extractor.ParamVarPositional}
		case "dictionary_splat_pattern":
			pi = extractor.ParameterInfo{Name: w.splatName(p), Type: "any", Kind: extractor.ParamVarKeyword}
		default:
			// keyword_separator, positional_separator, comments
			continue
		}
		if inClass && (pi.Name == "self" || pi.Name == "cls") && pi.Kind == extractor.ParamPositional {
			continue
		}
		switch pi.Kind {
		case extractor.ParamVarPositional:
			fn.HasVarargs = true
		case extractor.ParamVarKeyword:
			fn.HasNamedArgs = true
		}
		fn.Parameters = append(fn.Parameters, pi)
	}
}

func (w *walker) splatName(n *sitter.Node) string {
	if n.NamedChildCount() > 0 {
		return w.text(n.NamedChild(0))
	}
	return strings.TrimLeft(w.text(n), "*")
}
