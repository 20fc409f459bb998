package host

import (
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"

	"github.com/broady/metaffi-idl/idl"
)

var (
	validate      = validator.New()
	schemaDecoder = schema.NewDecoder()
)

func init() {
	schemaDecoder.IgnoreUnknownKeys(true)
}

// DefaultSDKSubdir is the python3 SDK location relative to the MetaFFI root.
const DefaultSDKSubdir = "sdk/api/python3"

// HostOptions are the emitter settings passed as key/value pairs on the
// command line or in the project file.
type HostOptions struct {
	// Package overrides the generated Go package name.
	Package string `schema:"package" validate:"omitempty,excludesall=./-"`
	// SDKSubdir is the path of the python3 SDK below METAFFI_SOURCE_ROOT
	// or METAFFI_HOME, using forward slashes.
	SDKSubdir string `schema:"sdk_subdir" validate:"omitempty,excludesall=\\"`
}

// ParseHostOptions decodes raw key/value options. Unknown keys are ignored.
func ParseHostOptions(raw map[string]string) (HostOptions, error) {
	values := make(map[string][]string, len(raw))
	for k, v := range raw {
		values[k] = []string{v}
	}
	var opts HostOptions
	if err := schemaDecoder.Decode(&opts, values); err != nil {
		return HostOptions{}, idl.Wrap(idl.CodeInvalidOption, err, "decode host options")
	}
	if err := validate.Struct(opts); err != nil {
		return HostOptions{}, idl.FromValidationErrors(err)
	}
	if opts.SDKSubdir == "" {
		opts.SDKSubdir = DefaultSDKSubdir
	}
	return opts, nil
}
