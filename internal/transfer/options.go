package transfer

import (
	"fmt"
	"strings"

	"github.com/OscarFredriksson/tire-logger/internal/sqlbuild"
)

// Mode selects how incoming rows combine with stored rows.
type Mode string

const (
	// ModeMerge updates matched rows field by field; empty incoming values
	// never overwrite.
	ModeMerge Mode = "merge"
	// ModeReplace overwrites every incoming column of a row with the same key.
	ModeReplace Mode = "replace"
	// ModeIgnore keeps the stored row when the key already exists.
	ModeIgnore Mode = "ignore"
	// ModeFail aborts the import when the key already exists.
	ModeFail Mode = "fail"
)

// Modes lists the accepted modes.
var Modes = []Mode{ModeMerge, ModeReplace, ModeIgnore, ModeFail}

// ParseMode accepts a mode name case-insensitively; "" means merge.
func ParseMode(s string) (Mode, error) {
	if s == "" {
		return ModeMerge, nil
	}
	m := Mode(strings.ToLower(s))
	if !m.Valid() {
		return "", newError(ErrCodeInvalidMode, "", -1,
			fmt.Sprintf("unknown mode %q (want merge, replace, ignore or fail)", s), nil)
	}
	return m, nil
}

// Valid reports whether m is one of Modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeMerge, ModeReplace, ModeIgnore, ModeFail:
		return true
	}
	return false
}

func (m Mode) conflict() sqlbuild.Conflict {
	switch m {
	case ModeReplace:
		return sqlbuild.ConflictReplace
	case ModeIgnore:
		return sqlbuild.ConflictIgnore
	default:
		return sqlbuild.ConflictFail
	}
}

// Options controls one import.
type Options struct {
	// Mode defaults to ModeMerge when empty.
	Mode Mode

	// ClearExisting deletes every row of the document's tables (children
	// first) before importing.
	ClearExisting bool

	// DryRun performs the import and rolls it back, reporting the counts
	// it would have produced.
	DryRun bool
}

func (o Options) normalized() (Options, error) {
	if o.Mode == "" {
		o.Mode = ModeMerge
	}
	if !o.Mode.Valid() {
		return o, newError(ErrCodeInvalidMode, "", -1, fmt.Sprintf("unknown mode %q", o.Mode), nil)
	}
	return o, nil
}
