// SPDX-License-Identifier: MPL-2.0

package iface

import (
	"errors"
	"fmt"
	"strings"
)

const (
	KindBool TypeKind = iota
	KindU8
	KindI8
	KindU16
	KindI16
	KindU32
	KindI32
	KindU64
	KindI64
	KindF32
	KindF64
	KindString
	KindBytes
	KindOptional
	KindSequence
	KindNamed
)

// ErrBadTypeExpr is the sentinel error wrapped by TypeExprError.
var ErrBadTypeExpr = errors.New("malformed type expression")

// primitives maps a primitive type token to its kind.
var primitives = map[string]TypeKind{
	"bool":   KindBool,
	"u8":     KindU8,
	"i8":     KindI8,
	"u16":    KindU16,
	"i16":    KindI16,
	"u32":    KindU32,
	"i32":    KindI32,
	"u64":    KindU64,
	"i64":    KindI64,
	"f32":    KindF32,
	"f64":    KindF64,
	"string": KindString,
	"bytes":  KindBytes,
}

type (
	// TypeKind discriminates the shape of a parsed type expression.
	TypeKind uint8

	// TypeExpr is a parsed type expression. Scalar kinds stand alone;
	// KindOptional and KindSequence carry an element in Elem; KindNamed
	// carries the referenced declaration name in Name.
	TypeExpr struct {
		Kind TypeKind
		Elem *TypeExpr
		Name string
	}

	// TypeExprError reports a type expression that does not parse.
	TypeExprError struct {
		Expr   string
		Reason string
	}
)

// Error implements the error interface for TypeExprError.
func (e *TypeExprError) Error() string {
	return fmt.Sprintf("malformed type expression %q: %s", e.Expr, e.Reason)
}

// Unwrap returns ErrBadTypeExpr for errors.Is() compatibility.
func (e *TypeExprError) Unwrap() error { return ErrBadTypeExpr }

// ParseTypeExpr parses a type expression string into its tree form.
//
// The grammar is deliberately small:
//
//	expr := primitive | "string" | "bytes"
//	      | "optional" "<" expr ">"
//	      | "sequence" "<" expr ">"
//	      | TypeName
//
// TypeName references a declared enum, record, error set, object, or
// callback; resolution happens during Interface validation, not here.
func ParseTypeExpr(expr string) (*TypeExpr, error) {
	parsed, rest, err := parseTypeExpr(strings.TrimSpace(expr))
	if err != nil {
		return nil, &TypeExprError{Expr: expr, Reason: err.Error()}
	}
	if rest != "" {
		return nil, &TypeExprError{Expr: expr, Reason: fmt.Sprintf("unexpected trailing %q", rest)}
	}
	return parsed, nil
}

// parseTypeExpr consumes one expression from the front of s and returns
// it together with the unconsumed remainder.
func parseTypeExpr(s string) (*TypeExpr, string, error) {
	if s == "" {
		return nil, "", errors.New("empty expression")
	}

	head, rest := splitToken(s)
	if head == "" {
		return nil, "", fmt.Errorf("unexpected %q", s)
	}

	switch head {
	case "optional", "sequence":
		kind := KindOptional
		if head == "sequence" {
			kind = KindSequence
		}
		rest = strings.TrimSpace(rest)
		if !strings.HasPrefix(rest, "<") {
			return nil, "", fmt.Errorf("%s requires an element type, e.g. %s<string>", head, head)
		}
		elem, rest, err := parseTypeExpr(strings.TrimSpace(rest[1:]))
		if err != nil {
			return nil, "", err
		}
		rest = strings.TrimSpace(rest)
		if !strings.HasPrefix(rest, ">") {
			return nil, "", fmt.Errorf("missing closing '>' after %s element", head)
		}
		return &TypeExpr{Kind: kind, Elem: elem}, strings.TrimSpace(rest[1:]), nil
	default:
		if kind, ok := primitives[head]; ok {
			return &TypeExpr{Kind: kind}, strings.TrimSpace(rest), nil
		}
		if !isTypeName(head) {
			return nil, "", fmt.Errorf("invalid type token %q", head)
		}
		return &TypeExpr{Kind: KindNamed, Name: head}, strings.TrimSpace(rest), nil
	}
}

// splitToken splits the leading identifier token off s.
func splitToken(s string) (token, rest string) {
	for i, r := range s {
		if r == '<' || r == '>' || r == ' ' || r == '\t' {
			return s[:i], s[i:]
		}
	}
	return s, ""
}

// isTypeName reports whether s is a valid declared-type reference:
// an upper-camel-case identifier.
func isTypeName(s string) bool {
	if s == "" || s[0] < 'A' || s[0] > 'Z' {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

// IsScalar reports whether the expression is a fixed-width scalar
// (bool or a numeric type).
func (t *TypeExpr) IsScalar() bool {
	return t.Kind <= KindF64
}

// String renders the expression back to its canonical source form.
func (t *TypeExpr) String() string {
	switch t.Kind {
	case KindOptional:
		return "optional<" + t.Elem.String() + ">"
	case KindSequence:
		return "sequence<" + t.Elem.String() + ">"
	case KindNamed:
		return t.Name
	default:
		for tok, kind := range primitives {
			if kind == t.Kind {
				return tok
			}
		}
		return "<invalid>"
	}
}

// Walk calls fn for the expression and every nested element, outermost
// first. It stops at the first non-nil error and returns it.
func (t *TypeExpr) Walk(fn func(*TypeExpr) error) error {
	if err := fn(t); err != nil {
		return err
	}
	if t.Elem != nil {
		return t.Elem.Walk(fn)
	}
	return nil
}
