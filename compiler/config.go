package compiler

import (
	"bytes"
	"errors"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/broady/metaffi-idl/idl"
)

// DefaultConfigFile is the project file looked up by the CLI.
const DefaultConfigFile = "metaffi-idl.yaml"

var validate = validator.New()

// Config holds the settings of a compilation.
type Config struct {
	// Language is the guest source language: "python3" (alias "python") or "go".
	// Default: "python3"
	Language string `yaml:"language" validate:"required,oneof=python3 python go"`

	// GuestLib overrides the metaffi_guest_lib of extracted definitions.
	GuestLib string `yaml:"guest_lib" validate:"omitempty,excludesall=0x2C="`

	// TargetHost is the language host stubs are generated for.
	// Default: "python3"
	TargetHost string `yaml:"target_host" validate:"required,oneof=python3 go"`

	// OutputDir receives one subdirectory per module.
	OutputDir string `yaml:"output_dir"`

	// OutputName is the base name of the stub files. Default: idl_source.
	OutputName string `yaml:"output_name" validate:"omitempty,excludesall=/\\"`

	// WorkDir resolves Go import paths. Default: the process working directory.
	WorkDir string `yaml:"work_dir"`

	// Atomic removes already written stubs when a later write fails.
	Atomic bool `yaml:"atomic"`

	// StrictSchema checks IDL JSON against the CUE schema before use.
	StrictSchema bool `yaml:"strict_schema"`

	// DetectStaticMethods marks python methods decorated with @staticmethod
	// or @classmethod as not requiring an instance.
	DetectStaticMethods bool `yaml:"detect_static_methods"`

	// HostOptions are passed to the host generator, e.g. "package".
	HostOptions map[string]string `yaml:"host_options"`
}

// Validate checks the configuration after defaults are applied.
func (c *Config) Validate() error {
	cfg := applyConfigDefaults(c)
	if err := validate.Struct(cfg); err != nil {
		return idl.FromValidationErrors(err)
	}
	return nil
}

func applyConfigDefaults(cfg *Config) *Config {
	// Make a copy to avoid mutating the input
	result := *cfg

	if result.Language == "" {
		result.Language = "python3"
	}
	if result.TargetHost == "" {
		result.TargetHost = "python3"
	}
	return &result
}

// LoadConfig reads a YAML project file. Unknown keys are rejected.
// Read errors are returned unchanged.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseConfig(data)
}

// ParseConfig decodes a YAML project file, applies defaults and validates it.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, idl.Wrap(idl.CodeInvalidOption, err, "decode config")
	}
	result := applyConfigDefaults(&cfg)
	if err := result.Validate(); err != nil {
		return nil, err
	}
	return result, nil
}
