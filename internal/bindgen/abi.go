// SPDX-License-Identifier: MPL-2.0

package bindgen

import (
	"fmt"
	"sort"

	"svbind-cli/pkg/iface"
)

// loweredKind classifies how a value crosses the C boundary.
type loweredKind uint8

const (
	// lowScalar crosses as a fixed-width C scalar.
	lowScalar loweredKind = iota
	// lowEnum crosses as an int32 declaration-order ordinal.
	lowEnum
	// lowObject crosses as an opaque handle pointer.
	lowObject
	// lowCallback crosses as a registered uint64 callback handle.
	lowCallback
	// lowBuffer crosses serialized inside a namespace buffer struct.
	lowBuffer
)

type (
	// boundType is a parsed type expression together with its boundary
	// representation.
	boundType struct {
		expr *iface.TypeExpr
		low  loweredKind
	}

	// boundParam is one resolved function parameter.
	boundParam struct {
		name string
		typ  boundType
	}

	// boundField is one resolved record field. Fields always cross
	// serialized, so no lowering is recorded.
	boundField struct {
		name string
		expr *iface.TypeExpr
	}

	// boundFn is a function resolved against the declaration set: every
	// type expression parsed and lowered, the throws clause resolved, and
	// the exported C symbol fixed. Emitters consume boundFn instead of
	// re-resolving iface.Function themselves.
	boundFn struct {
		fn     *iface.Function
		symbol string
		params []boundParam
		ret    *boundType      // nil when the function returns nothing
		throws *iface.ErrorSet // nil when the function cannot fail
	}
)

// lowered resolves the boundary representation of a type expression in
// direct parameter or return position.
func lowered(def *iface.Interface, t *iface.TypeExpr, where string) (loweredKind, error) {
	switch t.Kind {
	case iface.KindNamed:
		kind, ok := def.Decl(t.Name)
		if !ok {
			return 0, &iface.UnknownTypeError{Symbol: t.Name, Where: where}
		}
		switch kind {
		case iface.DeclEnum:
			return lowEnum, nil
		case iface.DeclRecord:
			return lowBuffer, nil
		case iface.DeclObject:
			return lowObject, nil
		case iface.DeclCallback:
			return lowCallback, nil
		default:
			return 0, &iface.UnmappableTypeError{
				Symbol: t.Name,
				Where:  where,
				Reason: "error sets may only appear in throws clauses",
			}
		}
	case iface.KindOptional, iface.KindSequence, iface.KindString, iface.KindBytes:
		return lowBuffer, nil
	default:
		return lowScalar, nil
	}
}

// bindFunction resolves one function's signature. where locates the
// function for error reporting, in the same notation Validate uses.
func bindFunction(def *iface.Interface, fn *iface.Function, symbol, where string) (*boundFn, error) {
	bound := &boundFn{fn: fn, symbol: symbol}

	for p := range fn.Params {
		param := &fn.Params[p]
		pwhere := fmt.Sprintf("%s.params[%s]", where, param.Name)
		typ, err := bindType(def, param.Type, pwhere)
		if err != nil {
			return nil, err
		}
		bound.params = append(bound.params, boundParam{name: param.Name, typ: *typ})
	}

	if fn.Returns != "" {
		rwhere := where + ".returns"
		typ, err := bindType(def, fn.Returns, rwhere)
		if err != nil {
			return nil, err
		}
		if typ.low == lowCallback {
			return nil, &iface.UnmappableTypeError{
				Symbol: typ.expr.Name,
				Where:  rwhere,
				Reason: "callback interfaces may only be passed as direct parameters",
			}
		}
		bound.ret = typ
	}

	if fn.Throws != "" {
		set := def.ErrorSet(fn.Throws)
		if set == nil {
			return nil, &iface.UnknownTypeError{Symbol: fn.Throws, Where: where + ".throws"}
		}
		bound.throws = set
	}

	return bound, nil
}

// bindType parses and lowers one type expression.
func bindType(def *iface.Interface, expr, where string) (*boundType, error) {
	parsed, err := iface.ParseTypeExpr(expr)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", where, err)
	}
	low, err := lowered(def, parsed, where)
	if err != nil {
		return nil, err
	}
	return &boundType{expr: parsed, low: low}, nil
}

// boundInterface is the fully resolved generation input: every function
// bound, plus the distinct optional/sequence expressions that need
// generated codec helpers, in canonical order.
type boundInterface struct {
	def       *iface.Interface
	functions []*boundFn              // free functions, declaration order
	records   map[string][]boundField // record name -> fields
	ctors     map[string][]*boundFn   // object name -> constructors
	methods   map[string][]*boundFn   // object name -> methods
	cbMethods map[string][]*boundFn   // callback name -> methods
	helpers   []*iface.TypeExpr       // sorted by canonical form
}

// bindInterface resolves the whole definition. Any reference to an
// undeclared or unserializable type fails here, naming the type and the
// use site, before a single byte of output exists.
func bindInterface(def *iface.Interface) (*boundInterface, error) {
	bound := &boundInterface{
		def:       def,
		records:   map[string][]boundField{},
		ctors:     map[string][]*boundFn{},
		methods:   map[string][]*boundFn{},
		cbMethods: map[string][]*boundFn{},
	}
	helpers := map[string]*iface.TypeExpr{}

	collectFn := func(fn *boundFn) error {
		for i := range fn.params {
			p := &fn.params[i]
			if p.typ.low != lowBuffer {
				continue
			}
			pwhere := fmt.Sprintf("%s.params[%s]", fn.symbol, p.name)
			if err := collectSerialized(def, p.typ.expr, pwhere, helpers); err != nil {
				return err
			}
		}
		if fn.ret != nil && fn.ret.low == lowBuffer {
			if err := collectSerialized(def, fn.ret.expr, fn.symbol+".returns", helpers); err != nil {
				return err
			}
		}
		return nil
	}

	for idx := range def.Records {
		rec := &def.Records[idx]
		fields := make([]boundField, 0, len(rec.Fields))
		for f := range rec.Fields {
			field := &rec.Fields[f]
			fwhere := fmt.Sprintf("records[%s].fields[%s]", rec.Name, field.Name)
			parsed, err := iface.ParseTypeExpr(field.Type)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", fwhere, err)
			}
			if err := collectSerialized(def, parsed, fwhere, helpers); err != nil {
				return nil, err
			}
			fields = append(fields, boundField{name: field.Name, expr: parsed})
		}
		bound.records[rec.Name] = fields
	}

	for idx := range def.Functions {
		fn := &def.Functions[idx]
		where := fmt.Sprintf("functions[%s]", fn.Name)
		b, err := bindFunction(def, fn, def.FunctionSymbol(fn), where)
		if err != nil {
			return nil, err
		}
		if err := collectFn(b); err != nil {
			return nil, err
		}
		bound.functions = append(bound.functions, b)
	}

	for idx := range def.Objects {
		obj := &def.Objects[idx]
		for c := range obj.Constructors {
			ctor := &obj.Constructors[c]
			where := fmt.Sprintf("objects[%s].constructors[%s]", obj.Name, ctor.Name)
			b, err := bindFunction(def, ctor, def.ObjectSymbol(obj, ctor.Name), where)
			if err != nil {
				return nil, err
			}
			if err := collectFn(b); err != nil {
				return nil, err
			}
			bound.ctors[obj.Name] = append(bound.ctors[obj.Name], b)
		}
		for m := range obj.Methods {
			meth := &obj.Methods[m]
			where := fmt.Sprintf("objects[%s].methods[%s]", obj.Name, meth.Name)
			b, err := bindFunction(def, meth, def.ObjectSymbol(obj, meth.Name), where)
			if err != nil {
				return nil, err
			}
			if err := collectFn(b); err != nil {
				return nil, err
			}
			bound.methods[obj.Name] = append(bound.methods[obj.Name], b)
		}
	}

	for idx := range def.Callbacks {
		cb := &def.Callbacks[idx]
		for m := range cb.Methods {
			meth := &cb.Methods[m]
			where := fmt.Sprintf("callbacks[%s].methods[%s]", cb.Name, meth.Name)
			b, err := bindFunction(def, meth, def.CallbackInitSymbol(cb), where)
			if err != nil {
				return nil, err
			}
			// Callback arguments all cross serialized in one args buffer,
			// so composite parameter types need helpers even when their
			// direct lowering is not a buffer.
			for i := range b.params {
				p := &b.params[i]
				if p.typ.low == lowObject || p.typ.low == lowCallback {
					continue // handles cross as raw u64 inside the buffer
				}
				pwhere := fmt.Sprintf("%s.params[%s]", where, p.name)
				if err := collectSerialized(def, p.typ.expr, pwhere, helpers); err != nil {
					return nil, err
				}
			}
			bound.cbMethods[cb.Name] = append(bound.cbMethods[cb.Name], b)
		}
	}

	keys := make([]string, 0, len(helpers))
	for k := range helpers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		bound.helpers = append(bound.helpers, helpers[k])
	}

	return bound, nil
}

// collectSerialized registers every optional/sequence expression nested
// in expr, verifying each layer serializes. Enum and record references
// get their helpers from their declarations, so only composite shapes
// accumulate here.
func collectSerialized(def *iface.Interface, expr *iface.TypeExpr, where string, helpers map[string]*iface.TypeExpr) error {
	switch expr.Kind {
	case iface.KindOptional, iface.KindSequence:
		if _, ok := helpers[expr.String()]; !ok {
			helpers[expr.String()] = expr
		}
		return collectSerialized(def, expr.Elem, where, helpers)
	case iface.KindNamed:
		kind, ok := def.Decl(expr.Name)
		if !ok {
			return &iface.UnknownTypeError{Symbol: expr.Name, Where: where}
		}
		switch kind {
		case iface.DeclEnum, iface.DeclRecord:
			return nil
		default:
			return &iface.UnmappableTypeError{
				Symbol: expr.Name,
				Where:  where,
				Reason: fmt.Sprintf("a %s cannot be serialized inside a buffer", kind),
			}
		}
	default:
		return nil
	}
}

// helperSuffix derives the per-expression codec helper suffix: the
// canonical expression rendered in UpperCamelCase, e.g.
// "sequence<optional<string>>" becomes "SequenceOptionalString".
func helperSuffix(t *iface.TypeExpr) string {
	switch t.Kind {
	case iface.KindOptional:
		return "Optional" + helperSuffix(t.Elem)
	case iface.KindSequence:
		return "Sequence" + helperSuffix(t.Elem)
	case iface.KindNamed:
		return t.Name
	default:
		return scalarSuffixes[t.Kind]
	}
}

// scalarSuffixes maps base kinds to their fixed codec method suffixes.
var scalarSuffixes = map[iface.TypeKind]string{
	iface.KindBool:   "Bool",
	iface.KindU8:     "U8",
	iface.KindI8:     "I8",
	iface.KindU16:    "U16",
	iface.KindI16:    "I16",
	iface.KindU32:    "U32",
	iface.KindI32:    "I32",
	iface.KindU64:    "U64",
	iface.KindI64:    "I64",
	iface.KindF32:    "F32",
	iface.KindF64:    "F64",
	iface.KindString: "String",
	iface.KindBytes:  "Bytes",
}

// cScalarTypes maps scalar kinds to the C types crossing the boundary.
var cScalarTypes = map[iface.TypeKind]string{
	iface.KindBool: "int8_t",
	iface.KindU8:   "uint8_t",
	iface.KindI8:   "int8_t",
	iface.KindU16:  "uint16_t",
	iface.KindI16:  "int16_t",
	iface.KindU32:  "uint32_t",
	iface.KindI32:  "int32_t",
	iface.KindU64:  "uint64_t",
	iface.KindI64:  "int64_t",
	iface.KindF32:  "float",
	iface.KindF64:  "double",
}
