package host

import (
	"context"
	"log/slog"
	"path"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/broady/metaffi-idl/idl"
	"github.com/broady/metaffi-idl/sink"
)

// Options configures a host compilation.
type Options struct {
	// OutputDir is the directory the module subdirectories are created in.
	// Only used when Sink is nil.
	OutputDir string

	// OutputName is the base name of every stub file. Defaults to the
	// definition's idl_source.
	OutputName string

	// Language selects a registered generator. Ignored when Generator is set.
	Language string

	// Generator overrides the registry lookup.
	Generator Generator

	// Atomic removes the files written by this call if a later write
	// fails. Without it, earlier modules stay on disk.
	Atomic bool

	// HostOptions are raw emitter options, see HostOptions.
	HostOptions map[string]string

	// Sink receives the generated files. Defaults to a FilesystemSink
	// rooted at OutputDir.
	Sink sink.OutputSink

	Logger *slog.Logger
}

// File is one generated stub.
type File struct {
	Module string
	// Path is relative to the sink root.
	Path string
	Size int
}

// Result lists the files written, in module order.
type Result struct {
	Files []File
}

type rendered struct {
	module  string
	path    string
	content []byte
}

// Compile renders and writes the host stubs of every module of def.
// The definition is validated first; nothing is written when it is invalid.
func Compile(ctx context.Context, def *idl.IDLDefinition, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if def == nil {
		return nil, idl.Errorf(idl.CodeValidation, "nil IDL definition")
	}
	if err := def.ValidateStrict(); err != nil {
		return nil, err
	}

	gen := opts.Generator
	if gen == nil {
		var err error
		if gen, err = Lookup(opts.Language); err != nil {
			return nil, err
		}
	}
	hostOpts, err := ParseHostOptions(opts.HostOptions)
	if err != nil {
		return nil, err
	}

	out := opts.Sink
	if out == nil {
		if opts.OutputDir == "" {
			return nil, idl.Errorf(idl.CodeInvalidOption, "output directory is required").
				WithDetail("field", "OutputDir")
		}
		out = sink.NewFilesystemSink(opts.OutputDir)
	}

	base := opts.OutputName
	if base == "" {
		base = def.IDLSource
	}
	if base == "" {
		return nil, idl.Errorf(idl.CodeInvalidOption, "output name is required").
			WithDetail("field", "OutputName")
	}

	start := time.Now()
	logger.DebugContext(ctx, "host compile started",
		slog.String("language", gen.Language()),
		slog.Int("modules", len(def.Modules)))

	files := make([]rendered, len(def.Modules))
	g, gctx := errgroup.WithContext(ctx)
	for i := range def.Modules {
		mod := &def.Modules[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			content, err := gen.Generate(gctx, def, mod, hostOpts)
			if err != nil {
				return err
			}
			files[i] = rendered{
				module:  mod.Name,
				path:    path.Join(mod.Name, gen.FileName(base)),
				content: content,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{Files: make([]File, 0, len(files))}
	var written []string
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := out.WriteFile(ctx, f.path, f.content); err != nil {
			if opts.Atomic {
				rollback(ctx, logger, out, written)
			}
			return nil, err
		}
		written = append(written, f.path)
		res.Files = append(res.Files, File{Module: f.module, Path: f.path, Size: len(f.content)})
		logger.DebugContext(ctx, "host stub written",
			slog.String("module", f.module),
			slog.String("path", f.path))
	}

	logger.InfoContext(ctx, "host compile completed",
		slog.String("language", gen.Language()),
		slog.Int("files", len(res.Files)),
		slog.Duration("duration", time.Since(start)))
	return res, nil
}

func rollback(ctx context.Context, logger *slog.Logger, out sink.OutputSink, written []string) {
	rm, ok := out.(sink.Remover)
	if !ok {
		logger.WarnContext(ctx, "sink cannot remove files; partial output left behind",
			slog.Int("files", len(written)))
		return
	}
	for _, p := range written {
		if err := rm.RemoveFile(ctx, p); err != nil {
			logger.WarnContext(ctx, "rollback failed",
				slog.String("path", p),
				slog.Any("error", err))
		}
	}
}
