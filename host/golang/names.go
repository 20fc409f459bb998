package golang

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var keywords = map[string]bool{
	"break": true, "case": true, "chan": true, "const": true, "continue": true,
	"default": true, "defer": true, "else": true, "fallthrough": true, "for": true,
	"func": true, "go": true, "goto": true, "if": true, "import": true,
	"interface": true, "map": true, "package": true, "range": true, "return": true,
	"select": true, "struct": true, "switch": true, "type": true, "var": true,
}

// Identifiers the generated wrapper bodies declare themselves.
var reservedLocals = map[string]bool{
	"res": true, "err": true, "this": true,
}

var titler = cases.Title(language.Und, cases.NoLower)

// exported converts a guest name to an exported Go name. Underscore
// separated words are title-cased and kept apart by "_"; a leading
// underscore becomes the "U_" prefix since Go would otherwise hide it.
func exported(name string) string {
	trimmed := strings.TrimLeft(name, "_")
	leading := len(name) - len(trimmed)
	core := strings.TrimRight(trimmed, "_")
	trailing := len(trimmed) - len(core)

	words := strings.Split(core, "_")
	for i, w := range words {
		words[i] = titler.String(w)
	}
	out := strings.Join(words, "_") + strings.Repeat("_", trailing)
	if leading > 0 {
		out = "U_" + out
	}
	return out
}

// local escapes a parameter name for use inside a wrapper.
func local(name string) string {
	if keywords[name] || reservedLocals[name] {
		return name + "__"
	}
	return name
}

// packageName derives the Go package of a module.
func packageName(module string) string {
	name := strings.ReplaceAll(module, ".", "_")
	if keywords[name] {
		return name + "__"
	}
	return name
}
