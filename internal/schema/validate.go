// Package schema validates import documents and entity input against the
// CUE definitions in schema.cue before anything touches the store.
package schema

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cuejson "cuelang.org/go/encoding/json"
)

//go:embed schema.cue
var schemaCUE string

// Validator holds the compiled definitions. A cue.Context is not safe for
// concurrent use, so every validation takes the lock.
type Validator struct {
	mu   sync.Mutex
	ctx  *cue.Context
	root cue.Value
}

var (
	defaultOnce      sync.Once
	defaultValidator *Validator
	defaultErr       error
)

// Default returns the process-wide validator.
func Default() (*Validator, error) {
	defaultOnce.Do(func() {
		defaultValidator, defaultErr = New()
	})
	return defaultValidator, defaultErr
}

// New compiles the embedded schema.
func New() (*Validator, error) {
	ctx := cuecontext.New()
	root := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := root.Err(); err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Validator{ctx: ctx, root: root}, nil
}

// ValidateDocument checks raw JSON against #Document when wrapped is true
// (a top-level "data" field) or #Tables for a bare table mapping.
func (v *Validator) ValidateDocument(raw []byte, wrapped bool) Errors {
	v.mu.Lock()
	defer v.mu.Unlock()

	expr, err := cuejson.Extract("import.json", raw)
	if err != nil {
		return Errors{{Field: "", Message: err.Error(), Code: ErrMalformedInput}}
	}
	def := "#Tables"
	if wrapped {
		def = "#Document"
	}
	return v.check(def, v.ctx.BuildExpr(expr))
}

// ValidateCar checks car input.
func (v *Validator) ValidateCar(fields map[string]any) Errors {
	return v.validateEntity("#Car", fields)
}

// ValidateTrack checks track input.
func (v *Validator) ValidateTrack(fields map[string]any) Errors {
	return v.validateEntity("#Track", fields)
}

// ValidateStint checks stint input.
func (v *Validator) ValidateStint(fields map[string]any) Errors {
	return v.validateEntity("#Stint", fields)
}

// ValidateTire checks tire input, including that at least one wheel
// position is allowed.
func (v *Validator) ValidateTire(fields map[string]any) Errors {
	errs := v.validateEntity("#Tire", fields)
	allowed := false
	for _, pos := range []string{"allowedLf", "allowedRf", "allowedLr", "allowedRr"} {
		if b, ok := fields[pos].(bool); ok && b {
			allowed = true
		}
	}
	if !allowed {
		errs = append(errs, ValidationError{
			Field:   "allowed",
			Message: "at least one wheel position must be allowed",
			Code:    ErrNoAllowedPosition,
		})
	}
	return errs
}

func (v *Validator) validateEntity(def string, fields map[string]any) Errors {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.check(def, v.ctx.Encode(fields))
}

func (v *Validator) check(def string, data cue.Value) Errors {
	if err := data.Err(); err != nil {
		return Errors{{Message: err.Error(), Code: ErrMalformedInput}}
	}
	schema := v.root.LookupPath(cue.ParsePath(def))
	unified := schema.Unify(data)
	err := unified.Validate(cue.Concrete(true), cue.All())
	if err == nil {
		return nil
	}
	return convert(err)
}

// convert flattens CUE errors into ValidationErrors sorted by field, with
// duplicates (common for disjunctions) removed.
func convert(err error) Errors {
	seen := make(map[string]bool)
	var out Errors
	for _, e := range cueerrors.Errors(err) {
		format, args := e.Msg()
		msg := fmt.Sprintf(format, args...)
		field := strings.Join(e.Path(), ".")
		key := field + "\x00" + msg
		if seen[key] {
			continue
		}
		seen[key] = true

		ve := ValidationError{Field: field, Message: msg, Code: classify(msg)}
		if pos := e.Position(); pos.IsValid() && pos.Filename() == "import.json" {
			ve.Line = pos.Line()
		}
		out = append(out, ve)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out
}
