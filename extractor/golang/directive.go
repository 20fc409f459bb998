package golang

import (
	"fmt"
	"go/ast"
	"go/token"
	"strings"
)

const directivePrefix = "//metaffi:"

// directiveKind names a //metaffi: directive.
type directiveKind string

// directiveSkip excludes the following declaration from extraction.
const directiveSkip directiveKind = "skip"

type directive struct {
	kind directiveKind
	pos  token.Position
}

// directives holds the directives of one file keyed by the end of the
// comment group that carries them.
type directives map[token.Pos]directive

// parseDirectives scans the comments of f for //metaffi: directives.
func parseDirectives(fset *token.FileSet, f *ast.File) (directives, error) {
	found := directives{}
	for _, cg := range f.Comments {
		for _, c := range cg.List {
			if !strings.HasPrefix(c.Text, directivePrefix) {
				continue
			}
			parts := strings.Fields(strings.TrimPrefix(c.Text, directivePrefix))
			if len(parts) == 0 {
				continue
			}
			pos := fset.Position(c.Pos())
			switch directiveKind(parts[0]) {
			case directiveSkip:
				found[cg.End()] = directive{kind: directiveSkip, pos: pos}
			default:
				return nil, fmt.Errorf("%s: unknown directive %s%s", pos, directivePrefix, parts[0])
			}
		}
	}
	if err := found.checkAttached(f); err != nil {
		return nil, err
	}
	return found, nil
}

// skips reports whether doc carries a skip directive.
func (d directives) skips(doc *ast.CommentGroup) bool {
	if doc == nil {
		return false
	}
	dir, ok := d[doc.End()]
	return ok && dir.kind == directiveSkip
}

// checkAttached reports directives that do not document a declaration.
func (d directives) checkAttached(f *ast.File) error {
	if len(d) == 0 {
		return nil
	}
	docs := map[token.Pos]bool{}
	mark := func(cg *ast.CommentGroup) {
		if cg != nil {
			docs[cg.End()] = true
		}
	}
	for _, decl := range f.Decls {
		switch decl := decl.(type) {
		case *ast.FuncDecl:
			mark(decl.Doc)
		case *ast.GenDecl:
			mark(decl.Doc)
			for _, spec := range decl.Specs {
				switch spec := spec.(type) {
				case *ast.TypeSpec:
					mark(spec.Doc)
					if st, ok := spec.Type.(*ast.StructType); ok {
						for _, field := range st.Fields.List {
							mark(field.Doc)
						}
					}
				case *ast.ValueSpec:
					mark(spec.Doc)
				}
			}
		}
	}
	for end, dir := range d {
		if !docs[end] {
			return fmt.Errorf("%s: %s%s directive must be followed by a declaration", dir.pos, directivePrefix, dir.kind)
		}
	}
	return nil
}
