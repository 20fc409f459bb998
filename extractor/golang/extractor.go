// Package golang extracts the exported surface of a Go package using
// go/packages. Exported structs become classes, exported functions named
// NewX that return X or *X become constructors of X.
package golang

import (
	"context"
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/broady/metaffi-idl/extractor"
	"github.com/broady/metaffi-idl/idl"
)

// Language is the language name reported by the extractor.
const Language = "go"

// Extractor loads Go packages.
type Extractor struct {
	// Dir is the working directory used to resolve import paths. Empty uses
	// the process working directory.
	Dir string
	// Logger receives debug records for skipped declarations. Nil uses slog.Default().
	Logger *slog.Logger
}

// New creates an Extractor.
func New() *Extractor {
	return &Extractor{}
}

// Language implements extractor.Extractor.
func (e *Extractor) Language() string { return Language }

// Extract implements extractor.Extractor. source is a .go file, a package
// directory or an import path.
func (e *Extractor) Extract(ctx context.Context, source string) (*extractor.ModuleInfo, error) {
	dir, pattern := e.resolve(source)
	cfg := &packages.Config{
		Context: ctx,
		Dir:     dir,
		Mode:    packages.NeedName | packages.NeedFiles | packages.NeedSyntax | packages.NeedTypes | packages.NeedTypesInfo,
	}
	pkgs, err := packages.Load(cfg, pattern)
	if err != nil {
		return nil, idl.Wrap(idl.CodeExtraction, err, "loading package %s", source)
	}
	if len(pkgs) != 1 {
		return nil, idl.Errorf(idl.CodeExtraction, "expected one package for %s, got %d", source, len(pkgs))
	}
	pkg := pkgs[0]
	if len(pkg.Errors) > 0 {
		msgs := make([]string, len(pkg.Errors))
		for i, pe := range pkg.Errors {
			msgs[i] = pe.Error()
		}
		return nil, idl.Errorf(idl.CodeExtraction, "package %s has errors: %s", pkg.PkgPath, strings.Join(msgs, "; ")).
			WithDetail("errors", len(msgs))
	}

	logger := e.Logger
	if logger == nil {
		logger = slog.Default()
	}
	b := &builder{
		pkg:    pkg,
		qual:   types.RelativeTo(pkg.Types),
		logger: logger.With("package", pkg.PkgPath),
	}
	info, err := b.build()
	if err != nil {
		return nil, idl.Wrap(idl.CodeExtraction, err, "extracting %s", pkg.PkgPath)
	}
	return info, nil
}

func (e *Extractor) resolve(source string) (dir, pattern string) {
	if strings.HasSuffix(source, ".go") {
		return filepath.Dir(source), "."
	}
	if fi, err := os.Stat(source); err == nil && fi.IsDir() {
		return source, "."
	}
	return e.Dir, source
}

type builder struct {
	pkg    *packages.Package
	qual   types.Qualifier
	logger *slog.Logger

	info    extractor.ModuleInfo
	classes map[string]int
	methods map[string][]extractor.FunctionInfo
	funcs   []*ast.FuncDecl
}

func (b *builder) build() (*extractor.ModuleInfo, error) {
	b.info.Name = b.pkg.Name
	b.classes = map[string]int{}
	b.methods = map[string][]extractor.FunctionInfo{}

	for _, f := range b.pkg.Syntax {
		dirs, err := parseDirectives(b.pkg.Fset, f)
		if err != nil {
			return nil, err
		}
		if b.info.Comment == "" && f.Doc != nil {
			b.info.Comment = strings.TrimSpace(f.Doc.Text())
		}
		b.file(f, dirs)
	}

	for _, decl := range b.funcs {
		fn := b.signature(decl)
		if cls := b.constructorOf(decl); cls != nil {
			cls.Constructors = append(cls.Constructors, fn)
			continue
		}
		b.info.Functions = append(b.info.Functions, fn)
	}
	for i := range b.info.Classes {
		cls := &b.info.Classes[i]
		cls.Methods = b.methods[cls.Name]
		if len(cls.Constructors) == 0 {
			cls.Constructors = []extractor.FunctionInfo{{
				Name:        "New" + cls.Name,
				Comment:     "Default constructor",
				ReturnTypes: []string{"*" + cls.Name},
			}}
		}
	}
	return &b.info, nil
}

func (b *builder) file(f *ast.File, dirs directives) {
	for _, decl := range f.Decls {
		switch decl := decl.(type) {
		case *ast.FuncDecl:
			if !decl.Name.IsExported() || dirs.skips(decl.Doc) {
				continue
			}
			if decl.Recv == nil {
				b.funcs = append(b.funcs, decl)
				continue
			}
			recv, ok := receiverName(decl.Recv)
			if !ok {
				b.logger.Debug("skipping method on generic receiver", "method", decl.Name.Name)
				continue
			}
			b.methods[recv] = append(b.methods[recv], b.signature(decl))

		case *ast.GenDecl:
			if dirs.skips(decl.Doc) {
				continue
			}
			switch decl.Tok {
			case token.TYPE:
				for _, spec := range decl.Specs {
					b.typeSpec(decl, spec.(*ast.TypeSpec), dirs)
				}
			case token.VAR, token.CONST:
				for _, spec := range decl.Specs {
					b.valueSpec(decl, spec.(*ast.ValueSpec), dirs)
				}
			}
		}
	}
}

func (b *builder) typeSpec(decl *ast.GenDecl, spec *ast.TypeSpec, dirs directives) {
	if !spec.Name.IsExported() || dirs.skips(spec.Doc) {
		return
	}
	st, ok := spec.Type.(*ast.StructType)
	if !ok {
		b.logger.Debug("skipping non-struct type", "type", spec.Name.Name)
		return
	}
	if spec.TypeParams != nil && spec.TypeParams.NumFields() > 0 {
		b.logger.Debug("skipping generic type", "type", spec.Name.Name)
		return
	}

	cls := extractor.ClassInfo{
		Name:    spec.Name.Name,
		Comment: docText(spec.Doc, decl.Doc),
	}
	for _, field := range st.Fields.List {
		if len(field.Names) == 0 || dirs.skips(field.Doc) {
			continue
		}
		for _, name := range field.Names {
			if !name.IsExported() {
				continue
			}
			cls.Fields = append(cls.Fields, extractor.FieldInfo{
				Name:      name.Name,
				Type:      b.objectType(name),
				Comment:   docText(field.Doc, field.Comment),
				HasGetter: true,
				HasSetter: true,
			})
		}
	}
	b.classes[cls.Name] = len(b.info.Classes)
	b.info.Classes = append(b.info.Classes, cls)
}

func (b *builder) valueSpec(decl *ast.GenDecl, spec *ast.ValueSpec, dirs directives) {
	if dirs.skips(spec.Doc) {
		return
	}
	for _, name := range spec.Names {
		if !name.IsExported() {
			continue
		}
		b.info.Globals = append(b.info.Globals, extractor.GlobalInfo{
			Name:      name.Name,
			Type:      b.objectType(name),
			Comment:   docText(spec.Doc, spec.Comment, decl.Doc),
			HasGetter: true,
			HasSetter: decl.Tok == token.VAR,
		})
	}
}

// signature reads a function's parameters and results from the type checker.
// Unnamed parameters are called p<i>.
func (b *builder) signature(decl *ast.FuncDecl) extractor.FunctionInfo {
	fn := extractor.FunctionInfo{
		Name:    decl.Name.Name,
		Comment: docText(decl.Doc),
	}
	obj, ok := b.pkg.TypesInfo.Defs[decl.Name].(*types.Func)
	if !ok {
		fn.Degraded = true
		return fn
	}
	sig := obj.Type().(*types.Signature)
	if recv := sig.Recv(); recv != nil {
		_, fn.ReceiverPtr = recv.Type().(*types.Pointer)
	}

	params := sig.Params()
	for i := 0; i < params.Len(); i++ {
		p := params.At(i)
		name := p.Name()
		if name == "" || name == "_" {
			name = fmt.Sprintf("p%d", i)
		}
		pi := extractor.ParameterInfo{Name: name, Type: b.typeString(p.Type())}
		if sig.Variadic() && i == params.Len()-1 {
			pi.Kind = extractor.ParamVarPositional
			fn.HasVarargs = true
		}
		fn.Parameters = append(fn.Parameters, pi)
	}
	results := sig.Results()
	for i := 0; i < results.Len(); i++ {
		fn.ReturnTypes = append(fn.ReturnTypes, b.typeString(results.At(i).Type()))
	}
	return fn
}

// constructorOf returns the class a NewX function constructs, or nil.
func (b *builder) constructorOf(decl *ast.FuncDecl) *extractor.ClassInfo {
	name, ok := strings.CutPrefix(decl.Name.Name, "New")
	if !ok {
		return nil
	}
	idx, ok := b.classes[name]
	if !ok {
		return nil
	}
	obj, ok := b.pkg.TypesInfo.Defs[decl.Name].(*types.Func)
	if !ok {
		return nil
	}
	results := obj.Type().(*types.Signature).Results()
	if results.Len() == 0 {
		return nil
	}
	t := results.At(0).Type()
	if ptr, ok := t.(*types.Pointer); ok {
		t = ptr.Elem()
	}
	named, ok := t.(*types.Named)
	if !ok || named.Obj().Pkg() != b.pkg.Types || named.Obj().Name() != name {
		return nil
	}
	return &b.info.Classes[idx]
}

func (b *builder) objectType(ident *ast.Ident) string {
	obj := b.pkg.TypesInfo.Defs[ident]
	if obj == nil {
		return "interface{}"
	}
	return b.typeString(obj.Type())
}

// typeString renders t relative to the extracted package. Untyped constants
// use their default type.
func (b *builder) typeString(t types.Type) string {
	return types.TypeString(types.Default(t), b.qual)
}

func receiverName(recv *ast.FieldList) (string, bool) {
	if recv == nil || len(recv.List) == 0 {
		return "", false
	}
	t := recv.List[0].Type
	if star, ok := t.(*ast.StarExpr); ok {
		t = star.X
	}
	ident, ok := t.(*ast.Ident)
	if !ok {
		return "", false
	}
	return ident.Name, true
}

// docText returns the text of the first non-empty comment group.
func docText(groups ...*ast.CommentGroup) string {
	for _, cg := range groups {
		if cg == nil {
			continue
		}
		if text := strings.TrimSpace(cg.Text()); text != "" {
			return text
		}
	}
	return ""
}
