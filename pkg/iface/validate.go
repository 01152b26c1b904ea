// SPDX-License-Identifier: MPL-2.0

package iface

import (
	"fmt"
)

// exprPos identifies where a type expression appears; handle types
// (objects, callbacks) are only representable in some positions.
type exprPos uint8

const (
	posField exprPos = iota
	posParam
	posReturn
)

// fnRole identifies which signature rules apply to a function.
type fnRole uint8

const (
	roleFree fnRole = iota
	roleConstructor
	roleMethod
	roleCallbackMethod
)

// reservedFunctionNames would collide with the namespace-level support
// entry points every library exports.
var reservedFunctionNames = map[string]struct{}{
	"string_free":  {},
	"buffer_alloc": {},
	"buffer_free":  {},
}

// Validate runs semantic validation over a schema-checked definition:
// declaration uniqueness, type expression syntax, reference resolution,
// position rules for handle types, and signature rules. It returns the
// first violation found, as a typed error.
func (i *Interface) Validate() error {
	if err := i.checkDeclarations(); err != nil {
		return err
	}

	for idx := range i.Records {
		rec := &i.Records[idx]
		seen := map[string]struct{}{}
		for f := range rec.Fields {
			field := &rec.Fields[f]
			where := fmt.Sprintf("records[%s].fields[%s]", rec.Name, field.Name)
			if _, dup := seen[field.Name]; dup {
				return &DuplicateSymbolError{Symbol: rec.Name + "." + field.Name, Kind: DeclRecord}
			}
			seen[field.Name] = struct{}{}
			if err := i.checkExpr(field.Type, where, posField); err != nil {
				return err
			}
		}
	}

	for idx := range i.Functions {
		fn := &i.Functions[idx]
		where := fmt.Sprintf("functions[%s]", fn.Name)
		if err := i.checkFunction(fn, where, roleFree); err != nil {
			return err
		}
	}

	for idx := range i.Objects {
		obj := &i.Objects[idx]
		members := map[string]struct{}{}
		for c := range obj.Constructors {
			ctor := &obj.Constructors[c]
			where := fmt.Sprintf("objects[%s].constructors[%s]", obj.Name, ctor.Name)
			if _, dup := members[ctor.Name]; dup {
				return &DuplicateSymbolError{Symbol: obj.Name + "." + ctor.Name, Kind: DeclObject}
			}
			members[ctor.Name] = struct{}{}
			if err := i.checkFunction(ctor, where, roleConstructor); err != nil {
				return err
			}
		}
		for m := range obj.Methods {
			meth := &obj.Methods[m]
			where := fmt.Sprintf("objects[%s].methods[%s]", obj.Name, meth.Name)
			if _, dup := members[meth.Name]; dup {
				return &DuplicateSymbolError{Symbol: obj.Name + "." + meth.Name, Kind: DeclObject}
			}
			members[meth.Name] = struct{}{}
			if err := i.checkFunction(meth, where, roleMethod); err != nil {
				return err
			}
		}
	}

	for idx := range i.Callbacks {
		cb := &i.Callbacks[idx]
		seen := map[string]struct{}{}
		for m := range cb.Methods {
			meth := &cb.Methods[m]
			where := fmt.Sprintf("callbacks[%s].methods[%s]", cb.Name, meth.Name)
			if _, dup := seen[meth.Name]; dup {
				return &DuplicateSymbolError{Symbol: cb.Name + "." + meth.Name, Kind: DeclCallback}
			}
			seen[meth.Name] = struct{}{}
			if err := i.checkFunction(meth, where, roleCallbackMethod); err != nil {
				return err
			}
		}
	}

	return i.checkSymbolSpace()
}

// checkDeclarations verifies that every declared type name is unique
// across all declaration kinds and that enum/error variants are unique
// within their set.
func (i *Interface) checkDeclarations() error {
	seen := map[string]struct{}{}
	register := func(name string, kind DeclKind) error {
		if _, dup := seen[name]; dup {
			return &DuplicateSymbolError{Symbol: name, Kind: kind}
		}
		seen[name] = struct{}{}
		return nil
	}

	for idx := range i.Enums {
		e := &i.Enums[idx]
		if err := register(e.Name, DeclEnum); err != nil {
			return err
		}
		if err := uniqueVariants(e.Name, e.Variants, DeclEnum); err != nil {
			return err
		}
	}
	for idx := range i.Records {
		if err := register(i.Records[idx].Name, DeclRecord); err != nil {
			return err
		}
	}
	for idx := range i.Errors {
		e := &i.Errors[idx]
		if err := register(e.Name, DeclError); err != nil {
			return err
		}
		if err := uniqueVariants(e.Name, e.Variants, DeclError); err != nil {
			return err
		}
	}
	for idx := range i.Objects {
		if err := register(i.Objects[idx].Name, DeclObject); err != nil {
			return err
		}
	}
	for idx := range i.Callbacks {
		if err := register(i.Callbacks[idx].Name, DeclCallback); err != nil {
			return err
		}
	}

	fns := map[string]struct{}{}
	for idx := range i.Functions {
		name := i.Functions[idx].Name
		if _, dup := fns[name]; dup {
			return &DuplicateSymbolError{Symbol: name, Kind: DeclFunction}
		}
		fns[name] = struct{}{}
	}
	return nil
}

func uniqueVariants(owner string, variants []string, kind DeclKind) error {
	seen := map[string]struct{}{}
	for _, v := range variants {
		if _, dup := seen[v]; dup {
			return &DuplicateSymbolError{Symbol: owner + "." + v, Kind: kind}
		}
		seen[v] = struct{}{}
	}
	return nil
}

// checkFunction applies the signature rules for the function's role and
// validates every type expression it mentions.
func (i *Interface) checkFunction(fn *Function, where string, role fnRole) error {
	switch role {
	case roleFree:
		if _, reserved := reservedFunctionNames[fn.Name]; reserved {
			return &InvalidSignatureError{
				Symbol: where,
				Reason: fmt.Sprintf("%q collides with a namespace support entry point", fn.Name),
			}
		}
	case roleConstructor, roleMethod:
		if fn.Name == "free" {
			return &InvalidSignatureError{
				Symbol: where,
				Reason: `"free" collides with the generated destructor entry point`,
			}
		}
	}

	seen := map[string]struct{}{}
	for p := range fn.Params {
		param := &fn.Params[p]
		if _, dup := seen[param.Name]; dup {
			return &InvalidSignatureError{
				Symbol: where,
				Reason: fmt.Sprintf("duplicate parameter %q", param.Name),
			}
		}
		seen[param.Name] = struct{}{}
		pwhere := fmt.Sprintf("%s.params[%s]", where, param.Name)
		if err := i.checkExpr(param.Type, pwhere, posParam); err != nil {
			return err
		}
	}

	if fn.Returns != "" {
		if role == roleConstructor {
			return &InvalidSignatureError{
				Symbol: where,
				Reason: "constructors return the enclosing object implicitly and cannot declare a return type",
			}
		}
		if role == roleCallbackMethod {
			return &InvalidSignatureError{
				Symbol: where,
				Reason: "callback methods are one-way and cannot declare a return type",
			}
		}
		if err := i.checkExpr(fn.Returns, where+".returns", posReturn); err != nil {
			return err
		}
	}

	if fn.Throws != "" {
		if role == roleCallbackMethod {
			return &InvalidSignatureError{
				Symbol: where,
				Reason: "callback methods are one-way and cannot throw",
			}
		}
		kind, ok := i.Decl(fn.Throws)
		if !ok {
			return &UnknownTypeError{Symbol: fn.Throws, Where: where + ".throws"}
		}
		if kind != DeclError {
			return &InvalidSignatureError{
				Symbol: where,
				Reason: fmt.Sprintf("throws must name an error set, %q is a %s", fn.Throws, kind),
			}
		}
	}
	return nil
}

// checkExpr parses one type expression and verifies every name it
// references resolves to a declaration legal in that position.
func (i *Interface) checkExpr(expr, where string, pos exprPos) error {
	parsed, err := ParseTypeExpr(expr)
	if err != nil {
		return fmt.Errorf("%s: %w", where, err)
	}
	return i.checkExprTree(parsed, where, pos, true)
}

func (i *Interface) checkExprTree(t *TypeExpr, where string, pos exprPos, top bool) error {
	switch t.Kind {
	case KindOptional, KindSequence:
		return i.checkExprTree(t.Elem, where, pos, false)
	case KindNamed:
		kind, ok := i.Decl(t.Name)
		if !ok {
			return &UnknownTypeError{Symbol: t.Name, Where: where}
		}
		switch kind {
		case DeclError:
			return &UnmappableTypeError{
				Symbol: t.Name,
				Where:  where,
				Reason: "error sets may only appear in throws clauses",
			}
		case DeclObject:
			if pos == posField {
				return &UnmappableTypeError{
					Symbol: t.Name,
					Where:  where,
					Reason: "object handles cannot be stored in record fields",
				}
			}
			if !top {
				return &UnmappableTypeError{
					Symbol: t.Name,
					Where:  where,
					Reason: "object handles cannot be nested inside optional or sequence types",
				}
			}
		case DeclCallback:
			if pos != posParam || !top {
				return &UnmappableTypeError{
					Symbol: t.Name,
					Where:  where,
					Reason: "callback interfaces may only be passed as direct parameters",
				}
			}
		}
	}
	return nil
}

// checkSymbolSpace verifies that the flattened C symbol list is free of
// collisions. Distinct declarations can map to the same exported name
// (e.g. object "FooBar" method "baz" and object "Foo" method "bar_baz").
func (i *Interface) checkSymbolSpace() error {
	seen := map[string]struct{}{}
	for _, sym := range i.DeclaredSymbols() {
		if _, dup := seen[sym]; dup {
			return &DuplicateSymbolError{Symbol: sym, Kind: DeclCSymbol}
		}
		seen[sym] = struct{}{}
	}
	return nil
}
