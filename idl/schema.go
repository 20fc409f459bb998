package idl

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaSource []byte

var (
	schemaOnce sync.Once
	schemaCtx  *cue.Context
	schemaDef  cue.Value
	schemaErr  error

	// cue values are not safe for concurrent use.
	schemaMu sync.Mutex
)

func loadSchema() (*cue.Context, cue.Value, error) {
	schemaOnce.Do(func() {
		schemaCtx = cuecontext.New()
		schema := schemaCtx.CompileBytes(schemaSource)
		if schema.Err() != nil {
			schemaErr = fmt.Errorf("compiling schema: %w", schema.Err())
			return
		}
		schemaDef = schema.LookupPath(cue.ParsePath("#IDL"))
		if schemaDef.Err() != nil {
			schemaErr = fmt.Errorf("looking up #IDL definition: %w", schemaDef.Err())
		}
	})
	return schemaCtx, schemaDef, schemaErr
}

// CheckSchema validates raw IDL JSON against the embedded CUE schema.
// It catches misspelled keys and wrong value kinds that plain decoding ignores.
func CheckSchema(data []byte) error {
	schemaMu.Lock()
	defer schemaMu.Unlock()
	ctx, def, err := loadSchema()
	if err != nil {
		return err
	}
	value := ctx.CompileBytes(data)
	if value.Err() != nil {
		return Wrap(CodeValidation, value.Err(), "compiling IDL JSON")
	}
	unified := def.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		var msgs []string
		for _, e := range cueerrors.Errors(err) {
			msgs = append(msgs, e.Error())
		}
		return (&Error{
			Code:    CodeValidation,
			Message: "schema validation failed: " + strings.Join(msgs, "; "),
			Err:     err,
		}).WithDetail("violations", len(msgs))
	}
	return nil
}
