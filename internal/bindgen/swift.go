// SPDX-License-Identifier: MPL-2.0

package bindgen

import (
	"fmt"
	"strings"

	"svbind-cli/pkg/iface"
)

// generateSwift emits the Apple binding set: a C header declaring every
// exported entry point, a clang module map so Swift can import it, and
// one Swift source file wrapping the C surface in idiomatic types. The
// header and module map ship inside the XCFramework; the Swift source
// ships as the package's source target.
func generateSwift(bound *boundInterface, opts Options) []File {
	ffiModule := bound.def.Namespace + "FFI"
	g := &swiftGen{bound: bound, def: bound.def, opts: opts}
	g.emit()

	return []File{
		{Path: "include/" + ffiModule + ".h", Data: []byte(renderCHeader(bound))},
		{Path: "include/module.modulemap", Data: []byte(renderModuleMap(ffiModule))},
		{Path: opts.SwiftModule + ".swift", Data: []byte(g.b.String())},
	}
}

// renderModuleMap emits the clang module map exposing the C header to
// Swift under a stable module name.
func renderModuleMap(ffiModule string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "module %s {\n", ffiModule)
	fmt.Fprintf(&b, "    header \"%s.h\"\n", ffiModule)
	b.WriteString("    export *\n}\n")
	return b.String()
}

// renderCHeader emits the C declarations for every exported symbol, in
// declaration order: support entry points, callback trampoline typedefs,
// free functions, object members, callback registrations.
func renderCHeader(bound *boundInterface) string {
	def := bound.def
	ns := def.Namespace
	guard := strings.ToUpper(ns) + "_FFI_H"

	var b strings.Builder
	for _, line := range headerLines(def) {
		fmt.Fprintf(&b, "// %s\n", line)
	}
	fmt.Fprintf(&b, "\n#ifndef %[1]s\n#define %[1]s\n\n#include <stdint.h>\n\n", guard)
	b.WriteString("#ifdef __cplusplus\nextern \"C\" {\n#endif\n\n")

	fmt.Fprintf(&b, `typedef struct %[1]s_buffer {
    uint8_t *data;
    uint64_t len;
} %[1]s_buffer_t;

typedef struct %[1]s_status {
    int32_t code;
    char *message;
} %[1]s_status_t;

`, ns)

	fmt.Fprintf(&b, "void %s(char *ptr);\n", def.StringFreeSymbol())
	fmt.Fprintf(&b, "%s_buffer_t %s(uint64_t len);\n", ns, def.BufferAllocSymbol())
	fmt.Fprintf(&b, "void %s(%s_buffer_t buf);\n\n", def.BufferFreeSymbol(), ns)

	for idx := range def.Callbacks {
		cb := &def.Callbacks[idx]
		fmt.Fprintf(&b, "typedef void (*%s)(uint64_t handle, int32_t method, %s_buffer_t args);\n",
			cTrampolineType(def, cb), ns)
	}
	if len(def.Callbacks) > 0 {
		b.WriteString("\n")
	}

	for _, fn := range bound.functions {
		writeCDecl(&b, def, fn, cDeclFree)
	}
	for idx := range def.Objects {
		obj := &def.Objects[idx]
		for _, ctor := range bound.ctors[obj.Name] {
			writeCDecl(&b, def, ctor, cDeclCtor)
		}
		for _, meth := range bound.methods[obj.Name] {
			writeCDecl(&b, def, meth, cDeclMethod)
		}
		fmt.Fprintf(&b, "void %s(void *self);\n", def.ObjectFreeSymbol(obj))
	}
	for idx := range def.Callbacks {
		cb := &def.Callbacks[idx]
		fmt.Fprintf(&b, "void %s(%s trampoline);\n", def.CallbackInitSymbol(cb), cTrampolineType(def, cb))
	}

	fmt.Fprintf(&b, "\n#ifdef __cplusplus\n}\n#endif\n\n#endif /* %s */\n", guard)
	return b.String()
}

// cTrampolineType names the function-pointer typedef for a callback's
// dispatch trampoline.
func cTrampolineType(def *iface.Interface, cb *iface.Callback) string {
	return def.Namespace + "_" + iface.SnakeCase(cb.Name) + "_trampoline_t"
}

type cDeclKind uint8

const (
	cDeclFree cDeclKind = iota
	cDeclCtor
	cDeclMethod
)

func writeCDecl(b *strings.Builder, def *iface.Interface, fn *boundFn, kind cDeclKind) {
	ret := "void"
	switch {
	case kind == cDeclCtor:
		ret = "void *"
	case fn.ret != nil:
		ret = cType(def, fn.ret)
	}
	if strings.HasSuffix(ret, "*") {
		fmt.Fprintf(b, "%s%s(", ret, fn.symbol)
	} else {
		fmt.Fprintf(b, "%s %s(", ret, fn.symbol)
	}
	if kind == cDeclMethod {
		b.WriteString("void *self, ")
	}
	for i := range fn.params {
		p := &fn.params[i]
		fmt.Fprintf(b, "%s %s, ", cType(def, &p.typ), cName(p.name))
	}
	fmt.Fprintf(b, "%s_status_t *status);\n", def.Namespace)
}

// cType maps a lowered type to its C boundary type.
func cType(def *iface.Interface, t *boundType) string {
	switch t.low {
	case lowEnum:
		return "int32_t"
	case lowObject:
		return "void *"
	case lowCallback:
		return "uint64_t"
	case lowBuffer:
		return def.Namespace + "_buffer_t"
	default:
		return cScalarTypes[t.expr.Kind]
	}
}

// cKeywords would shadow C or C++ keywords if used as prototype
// parameter names. C++ keywords matter because the header carries an
// extern "C" guard.
var cKeywords = map[string]bool{
	"auto": true, "bool": true, "break": true, "case": true,
	"catch": true, "char": true, "class": true, "const": true,
	"continue": true, "default": true, "delete": true, "do": true,
	"double": true, "else": true, "enum": true, "extern": true,
	"false": true, "float": true, "for": true, "friend": true,
	"goto": true, "if": true, "inline": true, "int": true,
	"long": true, "namespace": true, "new": true, "operator": true,
	"private": true, "protected": true, "public": true, "register": true,
	"restrict": true, "return": true, "short": true, "signed": true,
	"sizeof": true, "static": true, "struct": true, "switch": true,
	"template": true, "this": true, "throw": true, "true": true,
	"try": true, "typedef": true, "typename": true, "union": true,
	"unsigned": true, "virtual": true, "void": true, "volatile": true,
	"while": true,
}

func cName(s string) string {
	if cKeywords[s] {
		return s + "_"
	}
	return s
}

type swiftGen struct {
	b     strings.Builder
	bound *boundInterface
	def   *iface.Interface
	opts  Options
}

func (g *swiftGen) emit() {
	g.emitHeader()
	g.emitCodec()
	g.emitStatusHandling()
	g.emitEnums()
	g.emitRecords()
	g.emitHelpers()
	g.emitErrorSets()
	g.emitObjects()
	g.emitCallbacks()
	g.emitFunctions()
}

func (g *swiftGen) emitHeader() {
	for _, line := range headerLines(g.def) {
		fmt.Fprintf(&g.b, "// %s\n", line)
	}
	fmt.Fprintf(&g.b, "\nimport Foundation\nimport %sFFI\n", g.def.Namespace)
}

func (g *swiftGen) emitCodec() {
	ns := g.def.Namespace
	g.b.WriteString(`
internal struct NativeReader {
    private let data: [UInt8]
    private var offset = 0

    init(_ data: [UInt8]) {
        self.data = data
    }

    private mutating func take(_ n: Int) -> ArraySlice<UInt8> {
        precondition(offset + n <= data.count, "native buffer underflow")
        defer { offset += n }
        return data[offset..<offset + n]
    }

    private mutating func readBE(_ width: Int) -> UInt64 {
        var value: UInt64 = 0
        for byte in take(width) {
            value = (value << 8) | UInt64(byte)
        }
        return value
    }

    mutating func readBool() -> Bool { readBE(1) != 0 }
    mutating func readU8() -> UInt8 { UInt8(readBE(1)) }
    mutating func readI8() -> Int8 { Int8(bitPattern: UInt8(readBE(1))) }
    mutating func readU16() -> UInt16 { UInt16(readBE(2)) }
    mutating func readI16() -> Int16 { Int16(bitPattern: UInt16(readBE(2))) }
    mutating func readU32() -> UInt32 { UInt32(readBE(4)) }
    mutating func readI32() -> Int32 { Int32(bitPattern: UInt32(readBE(4))) }
    mutating func readU64() -> UInt64 { readBE(8) }
    mutating func readI64() -> Int64 { Int64(bitPattern: readBE(8)) }
    mutating func readF32() -> Float { Float(bitPattern: UInt32(readBE(4))) }
    mutating func readF64() -> Double { Double(bitPattern: readBE(8)) }

    mutating func readString() -> String {
        let n = Int(readI32())
        return String(decoding: take(n), as: UTF8.self)
    }

    mutating func readBytes() -> Data {
        let n = Int(readI32())
        return Data(take(n))
    }
}

internal struct NativeWriter {
    private(set) var bytes: [UInt8] = []

    private mutating func appendBE<T: FixedWidthInteger>(_ v: T) {
        withUnsafeBytes(of: v.bigEndian) { bytes.append(contentsOf: $0) }
    }

    mutating func writeBool(_ v: Bool) { bytes.append(v ? 1 : 0) }
    mutating func writeU8(_ v: UInt8) { bytes.append(v) }
    mutating func writeI8(_ v: Int8) { bytes.append(UInt8(bitPattern: v)) }
    mutating func writeU16(_ v: UInt16) { appendBE(v) }
    mutating func writeI16(_ v: Int16) { appendBE(v) }
    mutating func writeU32(_ v: UInt32) { appendBE(v) }
    mutating func writeI32(_ v: Int32) { appendBE(v) }
    mutating func writeU64(_ v: UInt64) { appendBE(v) }
    mutating func writeI64(_ v: Int64) { appendBE(v) }
    mutating func writeF32(_ v: Float) { appendBE(v.bitPattern) }
    mutating func writeF64(_ v: Double) { appendBE(v.bitPattern) }

    mutating func writeString(_ v: String) { writeBytes(Data(v.utf8)) }

    mutating func writeBytes(_ v: Data) {
        writeI32(Int32(v.count))
        bytes.append(contentsOf: v)
    }
}
`)
	fmt.Fprintf(&g.b, `
// consumeBuffer copies a native-owned return buffer, frees it, and
// wraps the copy for reading.
internal func consumeBuffer(_ buf: %[1]s_buffer_t) -> NativeReader {
    defer { %[2]s(buf) }
    guard let data = buf.data, buf.len > 0 else { return NativeReader([]) }
    return NativeReader([UInt8](UnsafeBufferPointer(start: data, count: Int(buf.len))))
}

// borrowBuffer copies a buffer the native side still owns, such as
// callback arguments, without freeing it.
internal func borrowBuffer(_ buf: %[1]s_buffer_t) -> NativeReader {
    guard let data = buf.data, buf.len > 0 else { return NativeReader([]) }
    return NativeReader([UInt8](UnsafeBufferPointer(start: data, count: Int(buf.len))))
}

// lowerBuffer copies serialized bytes into a native-allocated buffer.
// The called entry point takes ownership and frees it.
internal func lowerBuffer(_ bytes: [UInt8]) -> %[1]s_buffer_t {
    let buf = %[3]s(UInt64(bytes.count))
    if let data = buf.data, !bytes.isEmpty {
        data.update(from: bytes, count: bytes.count)
    }
    return buf
}
`, ns, g.def.BufferFreeSymbol(), g.def.BufferAllocSymbol())
}

func (g *swiftGen) emitStatusHandling() {
	fmt.Fprintf(&g.b, `
/// Reports a native panic or a status code outside the declared error set.
public struct InternalError: Error {
    public let message: String
}

internal func consumeStatusMessage(_ status: inout %[1]s_status_t) -> String {
    guard let ptr = status.message else { return "" }
    let message = String(cString: ptr)
    %[2]s(ptr)
    return message
}

// nativeCall invokes one entry point with a fresh status out-parameter
// and re-raises non-zero status as the lifted error.
internal func nativeCall<T>(_ liftError: ((Int32, String) -> Error)?, _ block: (UnsafeMutablePointer<%[1]s_status_t>) -> T) throws -> T {
    var status = %[1]s_status_t()
    let result = withUnsafeMutablePointer(to: &status) { block($0) }
    if status.code == 0 {
        return result
    }
    let message = consumeStatusMessage(&status)
    if status.code > 0, let liftError = liftError {
        throw liftError(status.code, message)
    }
    throw InternalError(message: message)
}
`, g.def.Namespace, g.def.StringFreeSymbol())
}

func (g *swiftGen) emitEnums() {
	for idx := range g.def.Enums {
		e := &g.def.Enums[idx]
		g.b.WriteString("\n")
		g.doc("", e.Doc)
		fmt.Fprintf(&g.b, "public enum %s: Int32 {\n", e.Name)
		for i, v := range e.Variants {
			fmt.Fprintf(&g.b, "    case %s = %d\n", swiftName(v), i)
		}
		g.b.WriteString("}\n")

		fmt.Fprintf(&g.b, `
internal func lift%[1]s(_ ordinal: Int32) -> %[1]s {
    guard let value = %[1]s(rawValue: ordinal) else {
        fatalError("invalid %[1]s ordinal \(ordinal)")
    }
    return value
}

internal func read%[1]s(_ r: inout NativeReader) -> %[1]s {
    lift%[1]s(r.readI32())
}

internal func write%[1]s(_ v: %[1]s, _ w: inout NativeWriter) {
    w.writeI32(v.rawValue)
}
`, e.Name)
	}
}

func (g *swiftGen) emitRecords() {
	for idx := range g.def.Records {
		rec := &g.def.Records[idx]
		fields := g.bound.records[rec.Name]
		g.b.WriteString("\n")
		g.doc("", rec.Doc)
		fmt.Fprintf(&g.b, "public struct %s: Equatable {\n", rec.Name)
		for f := range fields {
			g.doc("    ", rec.Fields[f].Doc)
			fmt.Fprintf(&g.b, "    public var %s: %s\n", swiftName(fields[f].name), g.swiftType(fields[f].expr))
		}

		if len(fields) == 0 {
			g.b.WriteString("\n    public init() {}\n")
		} else {
			g.b.WriteString("\n    public init(")
			for f := range fields {
				if f > 0 {
					g.b.WriteString(", ")
				}
				fmt.Fprintf(&g.b, "%s: %s", swiftName(fields[f].name), g.swiftType(fields[f].expr))
			}
			g.b.WriteString(") {\n")
			for f := range fields {
				name := swiftName(fields[f].name)
				fmt.Fprintf(&g.b, "        self.%s = %s\n", name, name)
			}
			g.b.WriteString("    }\n")
		}
		g.b.WriteString("}\n")

		fmt.Fprintf(&g.b, "\ninternal func read%[1]s(_ r: inout NativeReader) -> %[1]s {\n", rec.Name)
		if len(fields) == 0 {
			fmt.Fprintf(&g.b, "    %s()\n}\n", rec.Name)
		} else {
			fmt.Fprintf(&g.b, "    %s(\n", rec.Name)
			for f := range fields {
				sep := ","
				if f == len(fields)-1 {
					sep = ""
				}
				fmt.Fprintf(&g.b, "        %s: %s%s\n", swiftName(fields[f].name), g.readExpr(fields[f].expr, "r"), sep)
			}
			g.b.WriteString("    )\n}\n")
		}

		fmt.Fprintf(&g.b, "\ninternal func write%[1]s(_ v: %[1]s, _ w: inout NativeWriter) {\n", rec.Name)
		for f := range fields {
			fmt.Fprintf(&g.b, "    %s\n", g.writeStmt(fields[f].expr, "v."+swiftName(fields[f].name), "w"))
		}
		g.b.WriteString("}\n")
	}
}

func (g *swiftGen) emitHelpers() {
	for _, expr := range g.bound.helpers {
		suffix := helperSuffix(expr)
		elem := expr.Elem
		switch expr.Kind {
		case iface.KindOptional:
			fmt.Fprintf(&g.b, `
internal func read%[1]s(_ r: inout NativeReader) -> %[2]s {
    guard r.readBool() else { return nil }
    return %[3]s
}

internal func write%[1]s(_ v: %[2]s, _ w: inout NativeWriter) {
    guard let v = v else {
        w.writeBool(false)
        return
    }
    w.writeBool(true)
    %[4]s
}
`, suffix, g.swiftType(expr), g.readExpr(elem, "r"), g.writeStmt(elem, "v", "w"))
		case iface.KindSequence:
			fmt.Fprintf(&g.b, `
internal func read%[1]s(_ r: inout NativeReader) -> %[2]s {
    let n = Int(r.readI32())
    var items: %[2]s = []
    items.reserveCapacity(n)
    for _ in 0..<n {
        items.append(%[3]s)
    }
    return items
}

internal func write%[1]s(_ v: %[2]s, _ w: inout NativeWriter) {
    w.writeI32(Int32(v.count))
    for item in v {
        %[4]s
    }
}
`, suffix, g.swiftType(expr), g.readExpr(elem, "r"), g.writeStmt(elem, "item", "w"))
		}
	}
}

func (g *swiftGen) emitErrorSets() {
	for idx := range g.def.Errors {
		set := &g.def.Errors[idx]
		g.b.WriteString("\n")
		g.doc("", set.Doc)
		fmt.Fprintf(&g.b, "public enum %s: Error, Equatable {\n", set.Name)
		for _, v := range set.Variants {
			fmt.Fprintf(&g.b, "    case %s(message: String)\n", swiftName(v))
		}
		g.b.WriteString("}\n")

		fmt.Fprintf(&g.b, "\ninternal func lift%s(_ code: Int32, _ message: String) -> Error {\n", set.Name)
		g.b.WriteString("    switch code {\n")
		for i, v := range set.Variants {
			fmt.Fprintf(&g.b, "    case %d:\n        return %s.%s(message: message)\n", i+1, set.Name, swiftName(v))
		}
		g.b.WriteString("    default:\n        return InternalError(message: message)\n    }\n}\n")
	}
}

func (g *swiftGen) emitObjects() {
	for idx := range g.def.Objects {
		obj := &g.def.Objects[idx]
		g.b.WriteString("\n")
		g.doc("", obj.Doc)
		fmt.Fprintf(&g.b, `public final class %s {
    internal let handle: UnsafeMutableRawPointer

    internal init(handle: UnsafeMutableRawPointer) {
        self.handle = handle
    }

    deinit {
        %s(handle)
    }
`, obj.Name, g.def.ObjectFreeSymbol(obj))

		for _, ctor := range g.bound.ctors[obj.Name] {
			g.emitCallable(ctor, callableCtor, obj.Name)
		}
		for _, meth := range g.bound.methods[obj.Name] {
			g.emitCallable(meth, callableMethod, obj.Name)
		}
		g.b.WriteString("}\n")
	}
}

func (g *swiftGen) emitCallbacks() {
	for idx := range g.def.Callbacks {
		cb := &g.def.Callbacks[idx]
		methods := g.bound.cbMethods[cb.Name]
		g.b.WriteString("\n")
		g.doc("", cb.Doc)
		fmt.Fprintf(&g.b, "public protocol %s: AnyObject {\n", cb.Name)
		for _, meth := range methods {
			g.doc("    ", meth.fn.Doc)
			fmt.Fprintf(&g.b, "    func %s(", swiftName(meth.fn.Name))
			for i := range meth.params {
				p := &meth.params[i]
				if i > 0 {
					g.b.WriteString(", ")
				}
				fmt.Fprintf(&g.b, "%s: %s", swiftName(p.name), g.swiftType(p.typ.expr))
			}
			g.b.WriteString(")\n")
		}
		g.b.WriteString("}\n")

		hasArgs := false
		for _, meth := range methods {
			if len(meth.params) > 0 {
				hasArgs = true
			}
		}

		// Registered handlers stay reachable for the process lifetime;
		// the native side may invoke them long after registration.
		fmt.Fprintf(&g.b, `
internal final class %[1]sRegistry {
    static let shared = %[1]sRegistry()

    private var handlers: [UInt64: %[1]s] = [:]
    private var nextHandle: UInt64 = 1
    private let lock = NSLock()

    private init() {
        %[2]s { handle, method, args in
            %[1]sRegistry.shared.dispatch(handle: handle, method: method, args: args)
        }
    }

    func register(_ handler: %[1]s) -> UInt64 {
        lock.lock()
        defer { lock.unlock() }
        let handle = nextHandle
        nextHandle += 1
        handlers[handle] = handler
        return handle
    }

    func get(_ handle: UInt64) -> %[1]s? {
        lock.lock()
        defer { lock.unlock() }
        return handlers[handle]
    }

    private func dispatch(handle: UInt64, method: Int32, args: %[3]s_buffer_t) {
        guard let handler = get(handle) else { return }
`, cb.Name, g.def.CallbackInitSymbol(cb), g.def.Namespace)
		if hasArgs {
			g.b.WriteString("        var reader = borrowBuffer(args)\n")
		}
		g.b.WriteString("        switch method {\n")
		for m, meth := range methods {
			fmt.Fprintf(&g.b, "        case %d:\n", m)
			for i := range meth.params {
				g.emitCallbackArgLift(&meth.params[i], i)
			}
			fmt.Fprintf(&g.b, "            handler.%s(", swiftName(meth.fn.Name))
			for i := range meth.params {
				if i > 0 {
					g.b.WriteString(", ")
				}
				fmt.Fprintf(&g.b, "%s: arg%d", swiftName(meth.params[i].name), i)
			}
			g.b.WriteString(")\n")
		}
		g.b.WriteString("        default:\n            break\n        }\n    }\n}\n")
	}
}

// emitCallbackArgLift reads one dispatch argument into a local. Object
// and callback handles cross as raw u64 values inside the args buffer.
func (g *swiftGen) emitCallbackArgLift(p *boundParam, i int) {
	switch p.typ.low {
	case lowObject:
		fmt.Fprintf(&g.b, "            guard let ptr%d = UnsafeMutableRawPointer(bitPattern: UInt(reader.readU64())) else { return }\n", i)
		fmt.Fprintf(&g.b, "            let arg%d = %s(handle: ptr%d)\n", i, p.typ.expr.Name, i)
	case lowCallback:
		fmt.Fprintf(&g.b, "            guard let arg%d = %sRegistry.shared.get(reader.readU64()) else { return }\n", i, p.typ.expr.Name)
	default:
		fmt.Fprintf(&g.b, "            let arg%d = %s\n", i, g.readExpr(p.typ.expr, "reader"))
	}
}

func (g *swiftGen) emitFunctions() {
	for _, fn := range g.bound.functions {
		g.emitCallable(fn, callableFree, "")
	}
}

// emitCallable renders one public wrapper: lower arguments, invoke the
// entry point under status checking, lift the result. Functions without
// a throws clause surface as non-throwing; an internal failure there
// traps, since the caller declared no way to receive it.
func (g *swiftGen) emitCallable(fn *boundFn, kind callableKind, owner string) {
	indent := ""
	if kind != callableFree {
		indent = "    "
	}

	g.b.WriteString("\n")
	g.doc(indent, fn.fn.Doc)
	fmt.Fprintf(&g.b, "%spublic ", indent)
	if kind == callableCtor {
		g.b.WriteString("static ")
	}
	fmt.Fprintf(&g.b, "func %s(", swiftName(fn.fn.Name))
	for i := range fn.params {
		p := &fn.params[i]
		if i > 0 {
			g.b.WriteString(", ")
		}
		fmt.Fprintf(&g.b, "%s: %s", swiftName(p.name), g.swiftType(p.typ.expr))
	}
	g.b.WriteString(")")
	if fn.throws != nil {
		g.b.WriteString(" throws")
	}
	switch {
	case kind == callableCtor:
		fmt.Fprintf(&g.b, " -> %s", owner)
	case fn.ret != nil:
		fmt.Fprintf(&g.b, " -> %s", g.swiftType(fn.ret.expr))
	}
	g.b.WriteString(" {\n")

	for i := range fn.params {
		p := &fn.params[i]
		if p.typ.low != lowBuffer {
			continue
		}
		writer := camelCase(p.name) + "Writer"
		fmt.Fprintf(&g.b, "%s    var %s = NativeWriter()\n", indent, writer)
		fmt.Fprintf(&g.b, "%s    %s\n", indent, g.writeStmt(p.typ.expr, swiftName(p.name), writer))
	}

	lift := "nil"
	if fn.throws != nil {
		lift = "lift" + fn.throws.Name
	}
	try := "try!"
	if fn.throws != nil {
		try = "try"
	}
	assign := ""
	if fn.ret != nil || kind == callableCtor {
		assign = "let ret = "
	}
	fmt.Fprintf(&g.b, "%s    %s%s nativeCall(%s) { status in\n", indent, assign, try, lift)
	fmt.Fprintf(&g.b, "%s        %s(\n", indent, fn.symbol)
	if kind == callableMethod {
		fmt.Fprintf(&g.b, "%s            handle,\n", indent)
	}
	for i := range fn.params {
		p := &fn.params[i]
		fmt.Fprintf(&g.b, "%s            %s,\n", indent, g.lowerArg(p))
	}
	fmt.Fprintf(&g.b, "%s            status\n%s        )\n%s    }\n", indent, indent, indent)

	switch {
	case kind == callableCtor:
		fmt.Fprintf(&g.b, "%s    guard let ret = ret else {\n", indent)
		fmt.Fprintf(&g.b, "%s        fatalError(\"%s returned null\")\n%s    }\n", indent, fn.symbol, indent)
		fmt.Fprintf(&g.b, "%s    return %s(handle: ret)\n", indent, owner)
	case fn.ret != nil:
		g.emitLiftReturn(fn, indent)
	}
	fmt.Fprintf(&g.b, "%s}\n", indent)
}

func (g *swiftGen) lowerArg(p *boundParam) string {
	v := swiftName(p.name)
	switch p.typ.low {
	case lowEnum:
		return v + ".rawValue"
	case lowObject:
		return v + ".handle"
	case lowCallback:
		return fmt.Sprintf("%sRegistry.shared.register(%s)", p.typ.expr.Name, v)
	case lowBuffer:
		return fmt.Sprintf("lowerBuffer(%sWriter.bytes)", camelCase(p.name))
	default:
		if p.typ.expr.Kind == iface.KindBool {
			return fmt.Sprintf("Int8(%s ? 1 : 0)", v)
		}
		return v
	}
}

func (g *swiftGen) emitLiftReturn(fn *boundFn, indent string) {
	ret := fn.ret
	switch ret.low {
	case lowEnum:
		fmt.Fprintf(&g.b, "%s    return lift%s(ret)\n", indent, ret.expr.Name)
	case lowObject:
		fmt.Fprintf(&g.b, "%s    guard let ret = ret else {\n", indent)
		fmt.Fprintf(&g.b, "%s        fatalError(\"%s returned null\")\n%s    }\n", indent, fn.symbol, indent)
		fmt.Fprintf(&g.b, "%s    return %s(handle: ret)\n", indent, ret.expr.Name)
	case lowBuffer:
		fmt.Fprintf(&g.b, "%s    var reader = consumeBuffer(ret)\n", indent)
		fmt.Fprintf(&g.b, "%s    return %s\n", indent, g.readExpr(ret.expr, "reader"))
	default:
		if ret.expr.Kind == iface.KindBool {
			fmt.Fprintf(&g.b, "%s    return ret != 0\n", indent)
			return
		}
		fmt.Fprintf(&g.b, "%s    return ret\n", indent)
	}
}

// swiftType maps a type expression to its Swift surface type.
func (g *swiftGen) swiftType(t *iface.TypeExpr) string {
	switch t.Kind {
	case iface.KindOptional:
		return g.swiftType(t.Elem) + "?"
	case iface.KindSequence:
		return "[" + g.swiftType(t.Elem) + "]"
	case iface.KindNamed:
		return t.Name
	default:
		return swiftSurfaceScalar[t.Kind]
	}
}

var swiftSurfaceScalar = map[iface.TypeKind]string{
	iface.KindBool:   "Bool",
	iface.KindU8:     "UInt8",
	iface.KindI8:     "Int8",
	iface.KindU16:    "UInt16",
	iface.KindI16:    "Int16",
	iface.KindU32:    "UInt32",
	iface.KindI32:    "Int32",
	iface.KindU64:    "UInt64",
	iface.KindI64:    "Int64",
	iface.KindF32:    "Float",
	iface.KindF64:    "Double",
	iface.KindString: "String",
	iface.KindBytes:  "Data",
}

// readExpr renders the Swift expression reading one value from reader r.
func (g *swiftGen) readExpr(t *iface.TypeExpr, r string) string {
	switch t.Kind {
	case iface.KindOptional, iface.KindSequence:
		return fmt.Sprintf("read%s(&%s)", helperSuffix(t), r)
	case iface.KindNamed:
		return fmt.Sprintf("read%s(&%s)", t.Name, r)
	default:
		return fmt.Sprintf("%s.read%s()", r, scalarSuffixes[t.Kind])
	}
}

// writeStmt renders the Swift statement writing value v into writer w.
func (g *swiftGen) writeStmt(t *iface.TypeExpr, v, w string) string {
	switch t.Kind {
	case iface.KindOptional, iface.KindSequence:
		return fmt.Sprintf("write%s(%s, &%s)", helperSuffix(t), v, w)
	case iface.KindNamed:
		return fmt.Sprintf("write%s(%s, &%s)", t.Name, v, w)
	default:
		return fmt.Sprintf("%s.write%s(%s)", w, scalarSuffixes[t.Kind], v)
	}
}

// doc emits a documentation comment when the declaration carries one.
func (g *swiftGen) doc(indent, doc string) {
	if doc == "" {
		return
	}
	for _, line := range strings.Split(strings.TrimSpace(doc), "\n") {
		fmt.Fprintf(&g.b, "%s/// %s\n", indent, line)
	}
}
