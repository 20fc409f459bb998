// Package python extracts the public surface of a Python module by parsing
// its source with tree-sitter. The module is never imported or executed.
package python

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	tspython "github.com/smacker/go-tree-sitter/python"

	"github.com/broady/metaffi-idl/extractor"
	"github.com/broady/metaffi-idl/idl"
)

// Language is the language name reported by the extractor.
const Language = "python3"

// Extractor parses Python source files and packages.
type Extractor struct {
	// Logger receives debug records for skipped members. Nil uses slog.Default().
	Logger *slog.Logger
}

// New creates an Extractor.
func New() *Extractor {
	return &Extractor{}
}

// Language implements extractor.Extractor.
func (e *Extractor) Language() string { return Language }

// Extract implements extractor.Extractor. source is a .py file or a package
// directory containing __init__.py.
func (e *Extractor) Extract(ctx context.Context, source string) (*extractor.ModuleInfo, error) {
	path, name, err := resolveSource(source)
	if err != nil {
		return nil, err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, idl.Wrap(idl.CodeExtraction, err, "reading %s", path)
	}
	return e.ExtractSource(ctx, name, content)
}

// ExtractSource extracts a module from in-memory source.
func (e *Extractor) ExtractSource(ctx context.Context, moduleName string, content []byte) (*extractor.ModuleInfo, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(tspython.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, idl.Wrap(idl.CodeExtraction, err, "parsing module %s", moduleName)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, syntaxError(moduleName, root, content)
	}

	logger := e.Logger
	if logger == nil {
		logger = slog.Default()
	}
	w := &walker{
		src:    content,
		logger: logger.With("module", moduleName),
	}
	info := w.module(root)
	info.Name = moduleName
	return info, nil
}

func resolveSource(source string) (path, name string, err error) {
	fi, err := os.Stat(source)
	if err != nil {
		return "", "", idl.Wrap(idl.CodeExtraction, err, "loading %s", source)
	}
	if fi.IsDir() {
		initPath := filepath.Join(source, "__init__.py")
		if _, err := os.Stat(initPath); err != nil {
			return "", "", idl.Wrap(idl.CodeExtraction, err, "%s is not a Python package", source)
		}
		return initPath, filepath.Base(filepath.Clean(source)), nil
	}
	base := filepath.Base(source)
	return source, strings.TrimSuffix(base, filepath.Ext(base)), nil
}

// syntaxError locates the first error or missing node below root.
func syntaxError(module string, root *sitter.Node, src []byte) error {
	bad := firstErrorNode(root)
	if bad == nil {
		bad = root
	}
	pos := bad.StartPoint()
	line, col := int(pos.Row)+1, int(pos.Column)+1
	snippet := bad.Content(src)
	if i := strings.IndexByte(snippet, '\n'); i >= 0 {
		snippet = snippet[:i]
	}
	return idl.Errorf(idl.CodeExtraction, "syntax error at line %d, column %d near %q", line, col, snippet).
		WithEntity(module).
		WithDetail("line", line).
		WithDetail("column", col)
}

func firstErrorNode(n *sitter.Node) *sitter.Node {
	if n == nil {
		return nil
	}
	if n.Type() == "ERROR" || n.IsMissing() {
		return n
	}
	if !n.HasError() {
		return nil
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if bad := firstErrorNode(n.Child(i)); bad != nil {
			return bad
		}
	}
	return nil
}
