package argline

import (
	"errors"
	"reflect"

	"github.com/dzonerzy/go-argline/middleware"
)

// ExitError requests a specific exit code from inside a target.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return "exit"
}

func (e *ExitError) Unwrap() error { return e.Err }

// ExitCodeDefaults holds common default codes.
type ExitCodeDefaults struct {
	Success         int // default: 0
	GeneralError    int // default: 1
	MisusageError   int // default: 2
	ValidationError int // default: 3
	ConfigError     int // default: 78 (EX_CONFIG)
}

func defaultExitDefaults() ExitCodeDefaults {
	return ExitCodeDefaults{Success: 0, GeneralError: 1, MisusageError: 2, ValidationError: 3, ConfigError: 78}
}

// ExitCodeManager maps errors and categories to process exit codes.
type ExitCodeManager struct {
	codesByType     map[reflect.Type]int
	codesByCategory map[ErrorType]int
	defaults        ExitCodeDefaults
}

// NewExitCodeManager returns a manager with the default mappings.
func NewExitCodeManager() *ExitCodeManager {
	m := &ExitCodeManager{
		codesByType:     make(map[reflect.Type]int),
		codesByCategory: make(map[ErrorType]int),
	}
	m.Default(defaultExitDefaults())
	m.codesByType[reflect.TypeOf(&middleware.RecoveryError{})] = m.defaults.GeneralError
	return m
}

// DefineError maps a concrete error value (by its dynamic type) to an exit
// code. It takes precedence over categories but not over an ExitError
// requested by the target.
func (e *ExitCodeManager) DefineError(err error, code int) *ExitCodeManager {
	if err == nil {
		return e
	}
	e.codesByType[reflect.TypeOf(err)] = code
	return e
}

// DefineCategory overrides the exit code used for an error category.
func (e *ExitCodeManager) DefineCategory(typ ErrorType, code int) *ExitCodeManager {
	e.codesByCategory[typ] = code
	return e
}

// Default replaces the default codes and the category mappings derived from
// them. Explicit DefineCategory calls made before are overwritten.
func (e *ExitCodeManager) Default(d ExitCodeDefaults) *ExitCodeManager {
	e.defaults = d
	for _, typ := range []ErrorType{
		ErrorTypeTokenize, ErrorTypeMissingArgument, ErrorTypeMissingValue,
		ErrorTypeTooManyPositional, ErrorTypeWrongCount, ErrorTypeUnexpectedToken,
		ErrorTypeUnknownArgument,
	} {
		e.codesByCategory[typ] = d.MisusageError
	}
	e.codesByCategory[ErrorTypeValidation] = d.ValidationError
	e.codesByCategory[ErrorTypeConfig] = d.ConfigError
	e.codesByCategory[ErrorTypeNoTarget] = d.GeneralError
	e.codesByCategory[ErrorTypeGUIUnavailable] = d.GeneralError
	return e
}

// Defaults returns the current default codes.
func (e *ExitCodeManager) Defaults() ExitCodeDefaults { return e.defaults }

// Resolve converts an error to an exit code.
// Precedence:
//  1. ExitError (requested code)
//  2. Concrete error type mapping (DefineError)
//  3. Category mapping (DefineCategory and defaults)
//  4. GeneralError
func (e *ExitCodeManager) Resolve(err error) int {
	if err == nil {
		return e.defaults.Success
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	for t, code := range e.codesByType {
		if errors.As(err, reflect.New(t).Interface()) {
			return code
		}
	}

	if code, ok := e.codesByCategory[Classify(err)]; ok {
		return code
	}
	return e.defaults.GeneralError
}
