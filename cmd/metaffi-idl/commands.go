package main

import (
	"fmt"
	"os"

	"github.com/broady/metaffi-idl/compiler"
	"github.com/broady/metaffi-idl/idl"
)

type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Println(Version())
	return nil
}

type IDLCmd struct {
	Source   string `arg:"" help:"Python file, Python package directory, Go package directory or Go import path."`
	Out      string `help:"Output file (default: stdout)." short:"o" type:"path"`
	Lang     string `help:"Source language: python3 or go."`
	GuestLib string `help:"Override metaffi_guest_lib." name:"guest-lib"`
}

func (c *IDLCmd) Run(e *env) error {
	cfg := e.config
	if c.Lang != "" {
		cfg.Language = c.Lang
	}
	if c.GuestLib != "" {
		cfg.GuestLib = c.GuestLib
	}

	def, err := compiler.New(cfg).WithLogger(e.logger).ExtractIDL(e.ctx, c.Source)
	if err != nil {
		return err
	}
	return writeIDL(def, c.Out)
}

type HostCmd struct {
	IDL     string            `arg:"" help:"IDL JSON file." type:"existingfile"`
	OutDir  string            `arg:"" help:"Output directory; one subdirectory per module." type:"path"`
	Name    string            `help:"Base name of the stub files (default: idl_source)."`
	Lang    string            `help:"Host language: python3 or go."`
	Atomic  bool              `help:"Remove written stubs when a later write fails."`
	Strict  bool              `help:"Check the IDL against the CUE schema first."`
	Options map[string]string `help:"Host option as key=value (package, sdk_subdir)." name:"option"`
}

func (c *HostCmd) Run(e *env) error {
	cfg := e.config
	cfg.OutputDir = c.OutDir
	applyHostFlags(&cfg, c.Name, c.Lang, c.Atomic, c.Options)
	cfg.StrictSchema = cfg.StrictSchema || c.Strict

	comp := compiler.New(cfg).WithLogger(e.logger)
	def, err := comp.LoadIDL(e.ctx, c.IDL)
	if err != nil {
		return err
	}
	res, err := comp.CompileHost(e.ctx, def)
	if err != nil {
		return err
	}
	for _, f := range res.Files {
		fmt.Println(f.Path)
	}
	return nil
}

type CompileCmd struct {
	Source   string            `arg:"" help:"Python file, Python package directory, Go package directory or Go import path."`
	OutDir   string            `arg:"" help:"Output directory; one subdirectory per module." type:"path"`
	Lang     string            `help:"Source language: python3 or go."`
	Host     string            `help:"Host language: python3 or go."`
	GuestLib string            `help:"Override metaffi_guest_lib." name:"guest-lib"`
	Name     string            `help:"Base name of the stub files (default: idl_source)."`
	Atomic   bool              `help:"Remove written stubs when a later write fails."`
	Options  map[string]string `help:"Host option as key=value (package, sdk_subdir)." name:"option"`
	WriteIDL string            `help:"Also write the intermediate IDL JSON to this file." name:"write-idl" type:"path"`
}

func (c *CompileCmd) Run(e *env) error {
	cfg := e.config
	cfg.OutputDir = c.OutDir
	if c.Lang != "" {
		cfg.Language = c.Lang
	}
	if c.GuestLib != "" {
		cfg.GuestLib = c.GuestLib
	}
	applyHostFlags(&cfg, c.Name, c.Host, c.Atomic, c.Options)

	def, res, err := compiler.New(cfg).WithLogger(e.logger).Run(e.ctx, c.Source)
	if err != nil {
		return err
	}
	if c.WriteIDL != "" {
		if err := writeIDL(def, c.WriteIDL); err != nil {
			return err
		}
	}
	for _, f := range res.Files {
		fmt.Println(f.Path)
	}
	return nil
}

type CheckCmd struct {
	IDL string `arg:"" help:"IDL JSON file." type:"existingfile"`
}

func (c *CheckCmd) Run(e *env) error {
	if err := compiler.New(e.config).WithLogger(e.logger).Check(e.ctx, c.IDL); err != nil {
		return err
	}
	fmt.Printf("✓ %s is valid\n", c.IDL)
	return nil
}

func applyHostFlags(cfg *compiler.Config, name, lang string, atomic bool, options map[string]string) {
	if name != "" {
		cfg.OutputName = name
	}
	if lang != "" {
		cfg.TargetHost = lang
	}
	cfg.Atomic = cfg.Atomic || atomic
	if len(options) > 0 {
		merged := make(map[string]string, len(cfg.HostOptions)+len(options))
		for k, v := range cfg.HostOptions {
			merged[k] = v
		}
		for k, v := range options {
			merged[k] = v
		}
		cfg.HostOptions = merged
	}
}

func writeIDL(def *idl.IDLDefinition, path string) error {
	data, err := idl.Marshal(def)
	if err != nil {
		return err
	}
	if path == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
