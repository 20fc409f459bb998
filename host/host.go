// Package host renders host-language stubs from an IDL definition. A stub
// binds every entity of one module through the runtime loader and wraps it
// in idiomatic functions and classes of the calling language.
package host

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/broady/metaffi-idl/idl"
)

// Generator renders the host stub of one module.
type Generator interface {
	// Language returns the host language identifier (e.g. "python3", "go").
	Language() string

	// FileName returns the stub file name for an output base name.
	FileName(base string) string

	// Generate renders the stub of mod. def provides the guest library used
	// for address resolution.
	Generate(ctx context.Context, def *idl.IDLDefinition, mod *idl.ModuleDefinition, opts HostOptions) ([]byte, error)
}

var (
	registryMu sync.RWMutex
	registry   = map[string]Generator{}
)

// Register makes a generator available by its language. Registering the
// same language twice panics.
func Register(g Generator) {
	registryMu.Lock()
	defer registryMu.Unlock()
	lang := g.Language()
	if _, dup := registry[lang]; dup {
		panic(fmt.Sprintf("host: Register called twice for language %q", lang))
	}
	registry[lang] = g
}

// Lookup returns the generator registered for lang.
func Lookup(lang string) (Generator, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	g, ok := registry[lang]
	if !ok {
		return nil, idl.Errorf(idl.CodeInvalidOption, "no host generator for language %q", lang).
			WithDetail("language", lang)
	}
	return g, nil
}

// Languages returns the registered host languages, sorted.
func Languages() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	langs := make([]string, 0, len(registry))
	for lang := range registry {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}
