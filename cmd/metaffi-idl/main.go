package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"

	"github.com/broady/metaffi-idl/compiler"
)

type CLI struct {
	Config  string `help:"Project file (default: ./metaffi-idl.yaml when present)." type:"path" placeholder:"FILE"`
	Verbose bool   `help:"Enable debug logging." short:"v"`

	Version VersionCmd `cmd:"" help:"Print version information."`
	IDL     IDLCmd     `cmd:"" name:"idl" help:"Extract a source module into IDL JSON."`
	Host    HostCmd    `cmd:"" help:"Generate host stubs from IDL JSON."`
	Compile CompileCmd `cmd:"" help:"Extract a source module and generate its host stubs."`
	Check   CheckCmd   `cmd:"" help:"Validate IDL JSON against the schema and structural rules."`
}

// env is bound into every command's Run method.
type env struct {
	ctx    context.Context
	logger *slog.Logger
	config compiler.Config
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// loadConfig reads the explicit project file, or the default one when it
// exists in the working directory.
func loadConfig(path string) (compiler.Config, error) {
	if path == "" {
		if _, err := os.Stat(compiler.DefaultConfigFile); errors.Is(err, fs.ErrNotExist) {
			return compiler.Config{}, nil
		}
		path = compiler.DefaultConfigFile
	}
	cfg, err := compiler.LoadConfig(path)
	if err != nil {
		return compiler.Config{}, err
	}
	return *cfg, nil
}

func main() {
	cli := &CLI{}
	kctx := kong.Parse(cli,
		kong.Name("metaffi-idl"),
		kong.Description("Extract IDL from Python and Go sources and generate MetaFFI host stubs."),
		kong.UsageOnError(),
	)

	logger := newLogger(cli.Verbose)
	slog.SetDefault(logger)

	cfg, err := loadConfig(cli.Config)
	kctx.FatalIfErrorf(err)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err = kctx.Run(&env{ctx: ctx, logger: logger, config: cfg})
	kctx.FatalIfErrorf(err)
}
