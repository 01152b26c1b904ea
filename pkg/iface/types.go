// SPDX-License-Identifier: MPL-2.0

package iface

import (
	"errors"
	"fmt"
)

const (
	// DeclEnum identifies a declared enum type.
	DeclEnum DeclKind = "enum"
	// DeclRecord identifies a declared record type.
	DeclRecord DeclKind = "record"
	// DeclError identifies a declared error set.
	DeclError DeclKind = "error"
	// DeclObject identifies a declared object (opaque native handle) type.
	DeclObject DeclKind = "object"
	// DeclCallback identifies a declared callback interface.
	DeclCallback DeclKind = "callback"
	// DeclFunction identifies a free function (error reporting only;
	// functions are not referenceable types).
	DeclFunction DeclKind = "function"
	// DeclCSymbol identifies a flattened C symbol (error reporting only).
	DeclCSymbol DeclKind = "symbol"
)

var (
	// ErrUnknownType is the sentinel error wrapped by UnknownTypeError.
	ErrUnknownType = errors.New("unknown type")
	// ErrDuplicateSymbol is the sentinel error wrapped by DuplicateSymbolError.
	ErrDuplicateSymbol = errors.New("duplicate symbol")
	// ErrUnmappableType is the sentinel error wrapped by UnmappableTypeError.
	ErrUnmappableType = errors.New("type has no canonical mapping")
	// ErrInvalidSignature is the sentinel error wrapped by InvalidSignatureError.
	ErrInvalidSignature = errors.New("invalid signature")
)

type (
	// DeclKind classifies a user-defined type declaration.
	DeclKind string

	// Interface is the parsed interface definition: the single source of
	// truth for the native library's exported surface. Instances are
	// produced by Parse/ParseBytes and are immutable after validation.
	Interface struct {
		// Namespace prefixes every exported C symbol (e.g. "smartvaults").
		Namespace string `json:"namespace"`
		// Version is the contract version carried into generated code headers.
		Version string `json:"version,omitempty"`
		// Doc is an optional top-level description.
		Doc string `json:"doc,omitempty"`

		Enums     []Enum     `json:"enums,omitempty"`
		Records   []Record   `json:"records,omitempty"`
		Errors    []ErrorSet `json:"errors,omitempty"`
		Objects   []Object   `json:"objects,omitempty"`
		Callbacks []Callback `json:"callbacks,omitempty"`
		Functions []Function `json:"functions,omitempty"`

		// FilePath stores where this definition was loaded from (not in CUE).
		FilePath string `json:"-"`
	}

	// Enum is a closed set of named variants crossing the boundary as a
	// 32-bit ordinal (declaration order, zero-based).
	Enum struct {
		Name     string   `json:"name"`
		Doc      string   `json:"doc,omitempty"`
		Variants []string `json:"variants"`
	}

	// Record is a plain data aggregate serialized field-by-field in
	// declaration order.
	Record struct {
		Name   string  `json:"name"`
		Doc    string  `json:"doc,omitempty"`
		Fields []Field `json:"fields"`
	}

	// Field is one named, typed member of a record.
	Field struct {
		Name string `json:"name"`
		Type string `json:"type"`
		Doc  string `json:"doc,omitempty"`
	}

	// ErrorSet is a closed set of failure variants. Native calls report a
	// variant through the status out-parameter; generated bindings re-raise
	// it as the host language's idiomatic error mechanism.
	ErrorSet struct {
		Name     string   `json:"name"`
		Doc      string   `json:"doc,omitempty"`
		Variants []string `json:"variants"`
	}

	// Object is an opaque native handle with named constructors and
	// methods. The host side owns the handle it receives from a
	// constructor and must release it through the generated close/deinit
	// path, which calls the object's exported _free entry point.
	Object struct {
		Name         string     `json:"name"`
		Doc          string     `json:"doc,omitempty"`
		Constructors []Function `json:"constructors,omitempty"`
		Methods      []Function `json:"methods,omitempty"`
	}

	// Callback is a host-implemented interface invoked from native code.
	// Callback methods are one-way: they take parameters but return
	// nothing and cannot throw (failures on the host side must not
	// propagate back into the native caller).
	Callback struct {
		Name    string     `json:"name"`
		Doc     string     `json:"doc,omitempty"`
		Methods []Function `json:"methods"`
	}

	// Function describes one callable: a free function, an object
	// constructor or method, or a callback method. Constructors leave
	// Returns empty (they produce the enclosing object).
	Function struct {
		Name    string  `json:"name"`
		Doc     string  `json:"doc,omitempty"`
		Params  []Param `json:"params,omitempty"`
		Returns string  `json:"returns,omitempty"`
		Throws  string  `json:"throws,omitempty"`
	}

	// Param is one named, typed function parameter.
	Param struct {
		Name string `json:"name"`
		Type string `json:"type"`
	}

	// UnknownTypeError reports a type expression referencing a name that
	// no enum, record, error set, object, or callback declares.
	UnknownTypeError struct {
		// Symbol is the undeclared type name.
		Symbol string
		// Where locates the offending reference (e.g. "records[Vault].fields[policy]").
		Where string
	}

	// DuplicateSymbolError reports two declarations sharing one name.
	DuplicateSymbolError struct {
		Symbol string
		Kind   DeclKind
	}

	// UnmappableTypeError reports a type expression that parses but has no
	// canonical host-language mapping in the position it is used
	// (e.g. an object handle nested inside a record field).
	UnmappableTypeError struct {
		Symbol string
		Where  string
		Reason string
	}

	// InvalidSignatureError reports a function shape the generators cannot
	// express (e.g. a constructor with a return type, or a callback method
	// that throws).
	InvalidSignatureError struct {
		Symbol string
		Reason string
	}
)

// Error implements the error interface for UnknownTypeError.
func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("%s: unknown type %q", e.Where, e.Symbol)
}

// Unwrap returns ErrUnknownType for errors.Is() compatibility.
func (e *UnknownTypeError) Unwrap() error { return ErrUnknownType }

// Error implements the error interface for DuplicateSymbolError.
func (e *DuplicateSymbolError) Error() string {
	return fmt.Sprintf("duplicate %s declaration %q", e.Kind, e.Symbol)
}

// Unwrap returns ErrDuplicateSymbol for errors.Is() compatibility.
func (e *DuplicateSymbolError) Unwrap() error { return ErrDuplicateSymbol }

// Error implements the error interface for UnmappableTypeError.
func (e *UnmappableTypeError) Error() string {
	return fmt.Sprintf("%s: type %q has no canonical mapping: %s", e.Where, e.Symbol, e.Reason)
}

// Unwrap returns ErrUnmappableType for errors.Is() compatibility.
func (e *UnmappableTypeError) Unwrap() error { return ErrUnmappableType }

// Error implements the error interface for InvalidSignatureError.
func (e *InvalidSignatureError) Error() string {
	return fmt.Sprintf("%s: %s", e.Symbol, e.Reason)
}

// Unwrap returns ErrInvalidSignature for errors.Is() compatibility.
func (e *InvalidSignatureError) Unwrap() error { return ErrInvalidSignature }

// Decl looks up a user-defined type by name. The second return reports
// whether the name is declared.
func (i *Interface) Decl(name string) (DeclKind, bool) {
	for idx := range i.Enums {
		if i.Enums[idx].Name == name {
			return DeclEnum, true
		}
	}
	for idx := range i.Records {
		if i.Records[idx].Name == name {
			return DeclRecord, true
		}
	}
	for idx := range i.Errors {
		if i.Errors[idx].Name == name {
			return DeclError, true
		}
	}
	for idx := range i.Objects {
		if i.Objects[idx].Name == name {
			return DeclObject, true
		}
	}
	for idx := range i.Callbacks {
		if i.Callbacks[idx].Name == name {
			return DeclCallback, true
		}
	}
	return "", false
}

// Enum returns the enum declaration with the given name, or nil.
func (i *Interface) Enum(name string) *Enum {
	for idx := range i.Enums {
		if i.Enums[idx].Name == name {
			return &i.Enums[idx]
		}
	}
	return nil
}

// Record returns the record declaration with the given name, or nil.
func (i *Interface) Record(name string) *Record {
	for idx := range i.Records {
		if i.Records[idx].Name == name {
			return &i.Records[idx]
		}
	}
	return nil
}

// ErrorSet returns the error set declaration with the given name, or nil.
func (i *Interface) ErrorSet(name string) *ErrorSet {
	for idx := range i.Errors {
		if i.Errors[idx].Name == name {
			return &i.Errors[idx]
		}
	}
	return nil
}
