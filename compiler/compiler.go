// Package compiler wires extraction, IDL generation and host compilation
// into one pipeline.
package compiler

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/broady/metaffi-idl/extractor"
	"github.com/broady/metaffi-idl/extractor/golang"
	"github.com/broady/metaffi-idl/extractor/python"
	"github.com/broady/metaffi-idl/host"
	"github.com/broady/metaffi-idl/idl"
	"github.com/broady/metaffi-idl/idlgen"
	"github.com/broady/metaffi-idl/sink"

	// Host generators register themselves.
	_ "github.com/broady/metaffi-idl/host/golang"
	_ "github.com/broady/metaffi-idl/host/python3"
)

// Compiler runs the pipeline stages for one configuration.
type Compiler struct {
	cfg    *Config
	logger *slog.Logger
	sink   sink.OutputSink
}

// New creates a Compiler. Defaults are applied to cfg; it is validated
// when a stage runs.
func New(cfg Config) *Compiler {
	return &Compiler{
		cfg:    applyConfigDefaults(&cfg),
		logger: slog.Default(),
	}
}

// WithLogger sets the logger used for stage records.
func (c *Compiler) WithLogger(logger *slog.Logger) *Compiler {
	if logger != nil {
		c.logger = logger
	}
	return c
}

// WithSink replaces the filesystem output of CompileHost.
func (c *Compiler) WithSink(s sink.OutputSink) *Compiler {
	c.sink = s
	return c
}

// Config returns the effective configuration.
func (c *Compiler) Config() Config {
	return *c.cfg
}

// ExtractIDL extracts source and builds its IDL definition.
func (c *Compiler) ExtractIDL(ctx context.Context, source string) (*idl.IDLDefinition, error) {
	ctx, _ = withRun(ctx)
	if err := c.cfg.Validate(); err != nil {
		return nil, err
	}

	ex, err := c.extractor()
	if err != nil {
		return nil, err
	}
	conv, err := idlgen.ForLanguage(c.cfg.Language)
	if err != nil {
		return nil, err
	}
	if pc, ok := conv.(*idlgen.PythonConvention); ok {
		pc.DetectStaticMethods = c.cfg.DetectStaticMethods
	}

	var info *extractor.ModuleInfo
	err = logStage(ctx, c.logger, "extract", func() error {
		var err error
		info, err = ex.Extract(ctx, source)
		return err
	}, slog.String("language", ex.Language()), slog.String("source", source))
	if err != nil {
		return nil, err
	}

	var def *idl.IDLDefinition
	err = logStage(ctx, c.logger, "generate", func() error {
		var err error
		if def, err = idlgen.New(conv).Generate(info, source); err != nil {
			return err
		}
		if c.cfg.GuestLib != "" {
			def.MetaFFIGuestLib = c.cfg.GuestLib
		}
		if !c.cfg.StrictSchema {
			return nil
		}
		data, err := idl.Marshal(def)
		if err != nil {
			return err
		}
		return idl.CheckSchema(data)
	}, slog.String("module", info.Name))
	if err != nil {
		return nil, err
	}
	return def, nil
}

// LoadIDL reads an IDL JSON file, checking it against the CUE schema when
// StrictSchema is set.
func (c *Compiler) LoadIDL(ctx context.Context, path string) (*idl.IDLDefinition, error) {
	ctx, _ = withRun(ctx)
	var def *idl.IDLDefinition
	err := logStage(ctx, c.logger, "load", func() error {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if c.cfg.StrictSchema {
			if err := idl.CheckSchema(data); err != nil {
				return err
			}
		}
		def, err = idl.Parse(data)
		return err
	}, slog.String("path", path))
	return def, err
}

// Check validates an IDL JSON file against the CUE schema and the
// structural rules, reporting every structural violation.
func (c *Compiler) Check(ctx context.Context, path string) error {
	ctx, _ = withRun(ctx)
	return logStage(ctx, c.logger, "check", func() error {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if err := idl.CheckSchema(data); err != nil {
			return err
		}
		def, err := idl.Parse(data)
		if err != nil {
			return err
		}
		if errs := def.Validate(); len(errs) > 0 {
			return errors.Join(errs...)
		}
		return nil
	}, slog.String("path", path))
}

// CompileHost writes the host stubs of def.
func (c *Compiler) CompileHost(ctx context.Context, def *idl.IDLDefinition) (*host.Result, error) {
	ctx, _ = withRun(ctx)
	if err := c.cfg.Validate(); err != nil {
		return nil, err
	}
	var res *host.Result
	err := logStage(ctx, c.logger, "host", func() error {
		var err error
		res, err = host.Compile(ctx, def, host.Options{
			OutputDir:   c.cfg.OutputDir,
			OutputName:  c.cfg.OutputName,
			Language:    c.cfg.TargetHost,
			Atomic:      c.cfg.Atomic,
			HostOptions: c.cfg.HostOptions,
			Sink:        c.sink,
			Logger:      c.logger,
		})
		return err
	}, slog.String("host", c.cfg.TargetHost))
	return res, err
}

// Run extracts source and compiles its host stubs.
func (c *Compiler) Run(ctx context.Context, source string) (*idl.IDLDefinition, *host.Result, error) {
	ctx, _ = withRun(ctx)
	def, err := c.ExtractIDL(ctx, source)
	if err != nil {
		return nil, nil, err
	}
	res, err := c.CompileHost(ctx, def)
	if err != nil {
		return def, nil, err
	}
	return def, res, nil
}

func (c *Compiler) extractor() (extractor.Extractor, error) {
	switch c.cfg.Language {
	case "python3", "python":
		return &python.Extractor{Logger: c.logger}, nil
	case "go":
		return &golang.Extractor{Dir: c.cfg.WorkDir, Logger: c.logger}, nil
	}
	return nil, idl.Errorf(idl.CodeInvalidOption, "unsupported source language %q", c.cfg.Language).
		WithDetail("language", c.cfg.Language)
}
