// SPDX-License-Identifier: MPL-2.0

package iface

import (
	"strings"

	"golang.org/x/exp/slices"
)

// Exported symbol construction. Generators emit bindings against these
// names and bundle assembly verifies compiled libraries export them, so
// every consumer must derive names through this file.

// SnakeCase converts a declared upper-camel-case type name to its
// lower-snake-case symbol form: "SmartVaults" becomes "smart_vaults",
// "HTTPServer" becomes "http_server".
func SnakeCase(name string) string {
	var b strings.Builder
	b.Grow(len(name) + 4)
	runes := []rune(name)
	for i, r := range runes {
		if r >= 'A' && r <= 'Z' {
			prevLower := i > 0 && isLowerOrDigit(runes[i-1])
			nextLower := i+1 < len(runes) && runes[i+1] >= 'a' && runes[i+1] <= 'z'
			if i > 0 && (prevLower || nextLower) {
				b.WriteByte('_')
			}
			b.WriteRune(r - 'A' + 'a')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isLowerOrDigit(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}

// StringFreeSymbol names the entry point releasing strings the native
// side allocated and handed across the boundary.
func (i *Interface) StringFreeSymbol() string { return i.Namespace + "_string_free" }

// BufferAllocSymbol names the entry point allocating argument buffers
// owned by the native side.
func (i *Interface) BufferAllocSymbol() string { return i.Namespace + "_buffer_alloc" }

// BufferFreeSymbol names the entry point releasing buffers the native
// side allocated for serialized return values.
func (i *Interface) BufferFreeSymbol() string { return i.Namespace + "_buffer_free" }

// FunctionSymbol names the entry point for a free function.
func (i *Interface) FunctionSymbol(fn *Function) string {
	return i.Namespace + "_" + fn.Name
}

// ObjectSymbol names the entry point for an object constructor or method.
func (i *Interface) ObjectSymbol(obj *Object, member string) string {
	return i.Namespace + "_" + SnakeCase(obj.Name) + "_" + member
}

// ObjectFreeSymbol names the destructor entry point releasing an object
// handle.
func (i *Interface) ObjectFreeSymbol(obj *Object) string {
	return i.ObjectSymbol(obj, "free")
}

// CallbackInitSymbol names the entry point registering the host-side
// trampoline for a callback interface.
func (i *Interface) CallbackInitSymbol(cb *Callback) string {
	return i.Namespace + "_" + SnakeCase(cb.Name) + "_init"
}

// DeclaredSymbols enumerates every C symbol the compiled library must
// export for this definition, sorted lexicographically so the list is
// deterministic across runs and platforms. Bundle assembly compares
// this list against the symbol tables of built binaries.
func (i *Interface) DeclaredSymbols() []string {
	syms := []string{
		i.StringFreeSymbol(),
		i.BufferAllocSymbol(),
		i.BufferFreeSymbol(),
	}
	for idx := range i.Functions {
		syms = append(syms, i.FunctionSymbol(&i.Functions[idx]))
	}
	for idx := range i.Objects {
		obj := &i.Objects[idx]
		for c := range obj.Constructors {
			syms = append(syms, i.ObjectSymbol(obj, obj.Constructors[c].Name))
		}
		for m := range obj.Methods {
			syms = append(syms, i.ObjectSymbol(obj, obj.Methods[m].Name))
		}
		syms = append(syms, i.ObjectFreeSymbol(obj))
	}
	for idx := range i.Callbacks {
		syms = append(syms, i.CallbackInitSymbol(&i.Callbacks[idx]))
	}
	slices.Sort(syms)
	return syms
}
