// SPDX-License-Identifier: MPL-2.0

package bindgen

import (
	"fmt"
	"strings"

	"svbind-cli/pkg/iface"
)

// generatePython emits a single-module ctypes binding: the package
// __init__.py loads the shared library, declares every entry point
// signature, and wraps the C surface in dataclasses, IntEnums, and
// handle-owning classes.
func generatePython(bound *boundInterface, opts Options) []File {
	g := &pythonGen{bound: bound, def: bound.def, opts: opts}
	g.emit()
	return []File{
		{Path: opts.PythonPackage + "/__init__.py", Data: []byte(g.b.String())},
	}
}

type pythonGen struct {
	b     strings.Builder
	bound *boundInterface
	def   *iface.Interface
	opts  Options
}

func (g *pythonGen) emit() {
	g.emitHeader()
	g.emitExports()
	g.emitStructs()
	g.emitLoader()
	g.emitSignatures()
	g.emitStatusHandling()
	g.emitCodec()
	g.emitEnums()
	g.emitRecords()
	g.emitHelpers()
	g.emitErrorSets()
	g.emitObjects()
	g.emitCallbacks()
	g.emitFunctions()
}

func (g *pythonGen) emitHeader() {
	for _, line := range headerLines(g.def) {
		fmt.Fprintf(&g.b, "# %s\n", line)
	}
	g.b.WriteString(`
from __future__ import annotations

import abc
import ctypes
import dataclasses
import enum
import os
import platform
import struct
import threading
import typing
`)
}

// emitExports lists the public surface in declaration order.
func (g *pythonGen) emitExports() {
	names := []string{"InternalError"}
	for idx := range g.def.Enums {
		names = append(names, g.def.Enums[idx].Name)
	}
	for idx := range g.def.Records {
		names = append(names, g.def.Records[idx].Name)
	}
	for idx := range g.def.Errors {
		set := &g.def.Errors[idx]
		names = append(names, set.Name)
		for _, v := range set.Variants {
			names = append(names, set.Name+pascalCase(v))
		}
	}
	for idx := range g.def.Objects {
		names = append(names, g.def.Objects[idx].Name)
	}
	for idx := range g.def.Callbacks {
		names = append(names, g.def.Callbacks[idx].Name)
	}
	for idx := range g.def.Functions {
		names = append(names, pythonName(g.def.Functions[idx].Name))
	}

	g.b.WriteString("\n__all__ = [\n")
	for _, n := range names {
		fmt.Fprintf(&g.b, "    %q,\n", n)
	}
	g.b.WriteString("]\n")
}

func (g *pythonGen) emitStructs() {
	g.b.WriteString(`

class _NativeBuffer(ctypes.Structure):
    _fields_ = [
        ("data", ctypes.POINTER(ctypes.c_uint8)),
        ("len", ctypes.c_uint64),
    ]


class _NativeStatus(ctypes.Structure):
    # message stays a raw pointer so it can be handed back to the
    # native free; a c_char_p field would decay to bytes on access.
    _fields_ = [
        ("code", ctypes.c_int32),
        ("message", ctypes.c_void_p),
    ]
`)
}

func (g *pythonGen) emitLoader() {
	fmt.Fprintf(&g.b, `

def _library_name() -> str:
    system = platform.system()
    if system == "Windows":
        return "%[1]s.dll"
    if system == "Darwin":
        return "lib%[1]s.dylib"
    return "lib%[1]s.so"


def _load_library() -> ctypes.CDLL:
    name = _library_name()
    bundled = os.path.join(os.path.dirname(__file__), name)
    if os.path.exists(bundled):
        return ctypes.CDLL(bundled)
    return ctypes.CDLL(name)


_lib = _load_library()
`, g.opts.LibName)
}

// emitSignatures declares argtypes and restype for every entry point so
// ctypes marshals scalars, structs, and pointers with the right widths.
func (g *pythonGen) emitSignatures() {
	for idx := range g.def.Callbacks {
		cb := &g.def.Callbacks[idx]
		fmt.Fprintf(&g.b, "\n%s = ctypes.CFUNCTYPE(None, ctypes.c_uint64, ctypes.c_int32, _NativeBuffer)\n",
			pyTrampolineType(cb))
	}

	g.b.WriteString("\n")
	g.signature(g.def.StringFreeSymbol(), []string{"ctypes.c_void_p"}, "None")
	g.signature(g.def.BufferAllocSymbol(), []string{"ctypes.c_uint64"}, "_NativeBuffer")
	g.signature(g.def.BufferFreeSymbol(), []string{"_NativeBuffer"}, "None")

	for _, fn := range g.bound.functions {
		g.fnSignature(fn, cDeclFree)
	}
	for idx := range g.def.Objects {
		obj := &g.def.Objects[idx]
		for _, ctor := range g.bound.ctors[obj.Name] {
			g.fnSignature(ctor, cDeclCtor)
		}
		for _, meth := range g.bound.methods[obj.Name] {
			g.fnSignature(meth, cDeclMethod)
		}
		g.signature(g.def.ObjectFreeSymbol(obj), []string{"ctypes.c_void_p"}, "None")
	}
	for idx := range g.def.Callbacks {
		cb := &g.def.Callbacks[idx]
		g.signature(g.def.CallbackInitSymbol(cb), []string{pyTrampolineType(cb)}, "None")
	}
}

func (g *pythonGen) signature(symbol string, argtypes []string, restype string) {
	fmt.Fprintf(&g.b, "_lib.%s.argtypes = [%s]\n", symbol, strings.Join(argtypes, ", "))
	fmt.Fprintf(&g.b, "_lib.%s.restype = %s\n", symbol, restype)
}

func (g *pythonGen) fnSignature(fn *boundFn, kind cDeclKind) {
	var argtypes []string
	if kind == cDeclMethod {
		argtypes = append(argtypes, "ctypes.c_void_p")
	}
	for i := range fn.params {
		argtypes = append(argtypes, pyCType(&fn.params[i].typ))
	}
	argtypes = append(argtypes, "ctypes.POINTER(_NativeStatus)")

	restype := "None"
	switch {
	case kind == cDeclCtor:
		restype = "ctypes.c_void_p"
	case fn.ret != nil:
		restype = pyCType(fn.ret)
	}
	g.signature(fn.symbol, argtypes, restype)
}

// pyCType maps a lowered type to its ctypes boundary type.
func pyCType(t *boundType) string {
	switch t.low {
	case lowEnum:
		return "ctypes.c_int32"
	case lowObject:
		return "ctypes.c_void_p"
	case lowCallback:
		return "ctypes.c_uint64"
	case lowBuffer:
		return "_NativeBuffer"
	default:
		return pyScalarCTypes[t.expr.Kind]
	}
}

var pyScalarCTypes = map[iface.TypeKind]string{
	iface.KindBool: "ctypes.c_int8",
	iface.KindU8:   "ctypes.c_uint8",
	iface.KindI8:   "ctypes.c_int8",
	iface.KindU16:  "ctypes.c_uint16",
	iface.KindI16:  "ctypes.c_int16",
	iface.KindU32:  "ctypes.c_uint32",
	iface.KindI32:  "ctypes.c_int32",
	iface.KindU64:  "ctypes.c_uint64",
	iface.KindI64:  "ctypes.c_int64",
	iface.KindF32:  "ctypes.c_float",
	iface.KindF64:  "ctypes.c_double",
}

func pyTrampolineType(cb *iface.Callback) string {
	return "_" + cb.Name + "Trampoline"
}

func (g *pythonGen) emitStatusHandling() {
	fmt.Fprintf(&g.b, `

class InternalError(Exception):
    """Native panic or a status code outside the declared error set."""


def _consume_status_message(status: _NativeStatus) -> str:
    if not status.message:
        return ""
    message = ctypes.string_at(status.message).decode("utf-8", "replace")
    _lib.%s(status.message)
    return message


def _native_call(lift_error, fn, *args):
    status = _NativeStatus()
    result = fn(*args, ctypes.byref(status))
    if status.code == 0:
        return result
    message = _consume_status_message(status)
    if status.code > 0 and lift_error is not None:
        raise lift_error(status.code, message)
    raise InternalError(message)
`, g.def.StringFreeSymbol())
}

func (g *pythonGen) emitCodec() {
	g.b.WriteString(`

class _Writer:
    def __init__(self):
        self._buf = bytearray()

    def to_bytes(self) -> bytes:
        return bytes(self._buf)

    def write_bool(self, v):
        self._buf.append(1 if v else 0)

    def write_u8(self, v):
        self._buf += struct.pack(">B", v)

    def write_i8(self, v):
        self._buf += struct.pack(">b", v)

    def write_u16(self, v):
        self._buf += struct.pack(">H", v)

    def write_i16(self, v):
        self._buf += struct.pack(">h", v)

    def write_u32(self, v):
        self._buf += struct.pack(">I", v)

    def write_i32(self, v):
        self._buf += struct.pack(">i", v)

    def write_u64(self, v):
        self._buf += struct.pack(">Q", v)

    def write_i64(self, v):
        self._buf += struct.pack(">q", v)

    def write_f32(self, v):
        self._buf += struct.pack(">f", v)

    def write_f64(self, v):
        self._buf += struct.pack(">d", v)

    def write_string(self, v):
        self.write_bytes(v.encode("utf-8"))

    def write_bytes(self, v):
        self.write_i32(len(v))
        self._buf += v


class _Reader:
    def __init__(self, data: bytes):
        self._data = data
        self._offset = 0

    def _take(self, n: int) -> bytes:
        if self._offset + n > len(self._data):
            raise InternalError("native buffer underflow")
        start = self._offset
        self._offset += n
        return self._data[start:start + n]

    def _unpack(self, fmt: str, size: int):
        return struct.unpack(fmt, self._take(size))[0]

    def read_bool(self) -> bool:
        return self._take(1)[0] != 0

    def read_u8(self) -> int:
        return self._take(1)[0]

    def read_i8(self) -> int:
        return self._unpack(">b", 1)

    def read_u16(self) -> int:
        return self._unpack(">H", 2)

    def read_i16(self) -> int:
        return self._unpack(">h", 2)

    def read_u32(self) -> int:
        return self._unpack(">I", 4)

    def read_i32(self) -> int:
        return self._unpack(">i", 4)

    def read_u64(self) -> int:
        return self._unpack(">Q", 8)

    def read_i64(self) -> int:
        return self._unpack(">q", 8)

    def read_f32(self) -> float:
        return self._unpack(">f", 4)

    def read_f64(self) -> float:
        return self._unpack(">d", 8)

    def read_string(self) -> str:
        return self._take(self.read_i32()).decode("utf-8")

    def read_bytes(self) -> bytes:
        return bytes(self._take(self.read_i32()))
`)
	fmt.Fprintf(&g.b, `

def _consume_buffer(buf: _NativeBuffer) -> _Reader:
    data = ctypes.string_at(buf.data, buf.len) if buf.data and buf.len else b""
    _lib.%[1]s(buf)
    return _Reader(data)


def _borrow_buffer(buf: _NativeBuffer) -> _Reader:
    if not buf.data or not buf.len:
        return _Reader(b"")
    return _Reader(ctypes.string_at(buf.data, buf.len))


def _lower_buffer(data: bytes) -> _NativeBuffer:
    buf = _lib.%[2]s(len(data))
    if data:
        ctypes.memmove(buf.data, data, len(data))
    return buf
`, g.def.BufferFreeSymbol(), g.def.BufferAllocSymbol())
}

func (g *pythonGen) emitEnums() {
	for idx := range g.def.Enums {
		e := &g.def.Enums[idx]
		fmt.Fprintf(&g.b, "\n\nclass %s(enum.IntEnum):\n", e.Name)
		if g.docstring("    ", e.Doc) {
			g.b.WriteString("\n")
		}
		for i, v := range e.Variants {
			fmt.Fprintf(&g.b, "    %s = %d\n", screamingCase(v), i)
		}

		snake := iface.SnakeCase(e.Name)
		fmt.Fprintf(&g.b, `

def _read_%[1]s(r: _Reader) -> %[2]s:
    return %[2]s(r.read_i32())


def _write_%[1]s(v: %[2]s, w: _Writer):
    w.write_i32(int(v))
`, snake, e.Name)
	}
}

func (g *pythonGen) emitRecords() {
	for idx := range g.def.Records {
		rec := &g.def.Records[idx]
		fields := g.bound.records[rec.Name]
		fmt.Fprintf(&g.b, "\n\n@dataclasses.dataclass\nclass %s:\n", rec.Name)
		hasDoc := g.docstring("    ", rec.Doc)
		if len(fields) == 0 {
			if !hasDoc {
				g.b.WriteString("    pass\n")
			}
		} else {
			if hasDoc {
				g.b.WriteString("\n")
			}
			for f := range fields {
				fmt.Fprintf(&g.b, "    %s: %s\n", pythonName(fields[f].name), g.pyType(fields[f].expr))
			}
		}

		snake := iface.SnakeCase(rec.Name)
		fmt.Fprintf(&g.b, "\n\ndef _read_%s(r: _Reader) -> %s:\n", snake, rec.Name)
		if len(fields) == 0 {
			fmt.Fprintf(&g.b, "    return %s()\n", rec.Name)
		} else {
			fmt.Fprintf(&g.b, "    return %s(\n", rec.Name)
			for f := range fields {
				fmt.Fprintf(&g.b, "        %s,\n", g.readExpr(fields[f].expr, "r"))
			}
			g.b.WriteString("    )\n")
		}

		fmt.Fprintf(&g.b, "\n\ndef _write_%s(v: %s, w: _Writer):\n", snake, rec.Name)
		if len(fields) == 0 {
			g.b.WriteString("    pass\n")
		}
		for f := range fields {
			fmt.Fprintf(&g.b, "    %s\n", g.writeStmt(fields[f].expr, "v."+pythonName(fields[f].name), "w"))
		}
	}
}

func (g *pythonGen) emitHelpers() {
	for _, expr := range g.bound.helpers {
		snake := iface.SnakeCase(helperSuffix(expr))
		elem := expr.Elem
		switch expr.Kind {
		case iface.KindOptional:
			fmt.Fprintf(&g.b, `

def _read_%[1]s(r: _Reader) -> %[2]s:
    if not r.read_bool():
        return None
    return %[3]s


def _write_%[1]s(v: %[2]s, w: _Writer):
    if v is None:
        w.write_bool(False)
        return
    w.write_bool(True)
    %[4]s
`, snake, g.pyType(expr), g.readExpr(elem, "r"), g.writeStmt(elem, "v", "w"))
		case iface.KindSequence:
			fmt.Fprintf(&g.b, `

def _read_%[1]s(r: _Reader) -> %[2]s:
    return [%[3]s for _ in range(r.read_i32())]


def _write_%[1]s(v: %[2]s, w: _Writer):
    w.write_i32(len(v))
    for item in v:
        %[4]s
`, snake, g.pyType(expr), g.readExpr(elem, "r"), g.writeStmt(elem, "item", "w"))
		}
	}
}

func (g *pythonGen) emitErrorSets() {
	for idx := range g.def.Errors {
		set := &g.def.Errors[idx]
		fmt.Fprintf(&g.b, "\n\nclass %s(Exception):\n", set.Name)
		if !g.docstring("    ", set.Doc) {
			g.b.WriteString("    pass\n")
		}
		for _, v := range set.Variants {
			fmt.Fprintf(&g.b, "\n\nclass %s%s(%s):\n    pass\n", set.Name, pascalCase(v), set.Name)
		}

		fmt.Fprintf(&g.b, "\n\ndef _lift_%s(code: int, message: str) -> Exception:\n", iface.SnakeCase(set.Name))
		g.b.WriteString("    variants = (\n")
		for _, v := range set.Variants {
			fmt.Fprintf(&g.b, "        %s%s,\n", set.Name, pascalCase(v))
		}
		g.b.WriteString(`    )
    if 1 <= code <= len(variants):
        return variants[code - 1](message)
    return InternalError(message)
`)
	}
}

func (g *pythonGen) emitObjects() {
	for idx := range g.def.Objects {
		obj := &g.def.Objects[idx]
		fmt.Fprintf(&g.b, "\n\nclass %s:\n", obj.Name)
		if g.docstring("    ", obj.Doc) {
			g.b.WriteString("\n")
		}
		fmt.Fprintf(&g.b, `    def __init__(self, handle: int):
        """Internal: wraps a handle returned by a native constructor."""
        self._handle = handle

    def __del__(self):
        handle, self._handle = self._handle, None
        if handle is not None:
            _lib.%s(handle)
`, g.def.ObjectFreeSymbol(obj))

		for _, ctor := range g.bound.ctors[obj.Name] {
			g.emitCallable(ctor, callableCtor, obj.Name)
		}
		for _, meth := range g.bound.methods[obj.Name] {
			g.emitCallable(meth, callableMethod, obj.Name)
		}
	}
}

func (g *pythonGen) emitCallbacks() {
	for idx := range g.def.Callbacks {
		cb := &g.def.Callbacks[idx]
		methods := g.bound.cbMethods[cb.Name]
		fmt.Fprintf(&g.b, "\n\nclass %s(abc.ABC):\n", cb.Name)
		g.docstring("    ", cb.Doc)
		for _, meth := range methods {
			g.b.WriteString("\n")
			g.b.WriteString("    @abc.abstractmethod\n")
			fmt.Fprintf(&g.b, "    def %s(self", pythonName(meth.fn.Name))
			for i := range meth.params {
				p := &meth.params[i]
				fmt.Fprintf(&g.b, ", %s: %s", pythonName(p.name), g.pyType(p.typ.expr))
			}
			g.b.WriteString(") -> None:\n")
			g.docstring("        ", meth.fn.Doc)
			g.b.WriteString("        raise NotImplementedError\n")
		}

		hasArgs := false
		for _, meth := range methods {
			if len(meth.params) > 0 {
				hasArgs = true
			}
		}

		// Registered handlers stay reachable for the process lifetime;
		// the native side may invoke them long after registration.
		fmt.Fprintf(&g.b, `

class _%[1]sRegistry:
    def __init__(self):
        self._lock = threading.Lock()
        self._handlers = {}
        self._next_handle = 1
        self._trampoline = %[2]s(self._dispatch)
        _lib.%[3]s(self._trampoline)

    def register(self, handler: %[1]s) -> int:
        with self._lock:
            handle = self._next_handle
            self._next_handle += 1
            self._handlers[handle] = handler
            return handle

    def get(self, handle: int):
        with self._lock:
            return self._handlers.get(handle)

    def _dispatch(self, handle, method, args):
        try:
            handler = self.get(handle)
            if handler is None:
                return
`, cb.Name, pyTrampolineType(cb), g.def.CallbackInitSymbol(cb))
		if hasArgs {
			g.b.WriteString("            r = _borrow_buffer(args)\n")
		}
		for m, meth := range methods {
			cond := "elif"
			if m == 0 {
				cond = "if"
			}
			fmt.Fprintf(&g.b, "            %s method == %d:\n", cond, m)
			for i := range meth.params {
				g.emitCallbackArgLift(&meth.params[i], i)
			}
			fmt.Fprintf(&g.b, "                handler.%s(", pythonName(meth.fn.Name))
			for i := range meth.params {
				if i > 0 {
					g.b.WriteString(", ")
				}
				fmt.Fprintf(&g.b, "arg%d", i)
			}
			g.b.WriteString(")\n")
		}
		fmt.Fprintf(&g.b, `        except Exception:
            # One-way call: host failures must not cross into native code.
            pass


_%s_registry = _%sRegistry()
`, iface.SnakeCase(cb.Name), cb.Name)
	}
}

// emitCallbackArgLift reads one dispatch argument into a local. Object
// and callback handles cross as raw u64 values inside the args buffer.
func (g *pythonGen) emitCallbackArgLift(p *boundParam, i int) {
	switch p.typ.low {
	case lowObject:
		fmt.Fprintf(&g.b, "                arg%d = %s(r.read_u64())\n", i, p.typ.expr.Name)
	case lowCallback:
		fmt.Fprintf(&g.b, "                arg%d = _%s_registry.get(r.read_u64())\n", i, iface.SnakeCase(p.typ.expr.Name))
		fmt.Fprintf(&g.b, "                if arg%d is None:\n                    return\n", i)
	default:
		fmt.Fprintf(&g.b, "                arg%d = %s\n", i, g.readExpr(p.typ.expr, "r"))
	}
}

func (g *pythonGen) emitFunctions() {
	for _, fn := range g.bound.functions {
		g.emitCallable(fn, callableFree, "")
	}
}

// emitCallable renders one public wrapper: lower arguments, invoke the
// entry point under status checking, lift the result.
func (g *pythonGen) emitCallable(fn *boundFn, kind callableKind, owner string) {
	indent := ""
	self := ""
	if kind != callableFree {
		indent = "    "
		self = "self"
	}

	if kind == callableFree {
		g.b.WriteString("\n\n")
	} else {
		g.b.WriteString("\n")
	}
	if kind == callableCtor {
		fmt.Fprintf(&g.b, "%s@classmethod\n", indent)
		self = "cls"
	}
	fmt.Fprintf(&g.b, "%sdef %s(%s", indent, pythonName(fn.fn.Name), self)
	for i := range fn.params {
		p := &fn.params[i]
		if i > 0 || self != "" {
			g.b.WriteString(", ")
		}
		fmt.Fprintf(&g.b, "%s: %s", pythonName(p.name), g.pyType(p.typ.expr))
	}
	g.b.WriteString(")")
	switch {
	case kind == callableCtor:
		fmt.Fprintf(&g.b, " -> %s", owner)
	case fn.ret != nil:
		fmt.Fprintf(&g.b, " -> %s", g.pyType(fn.ret.expr))
	default:
		g.b.WriteString(" -> None")
	}
	g.b.WriteString(":\n")
	g.docstring(indent+"    ", fn.fn.Doc)

	for i := range fn.params {
		p := &fn.params[i]
		if p.typ.low != lowBuffer {
			continue
		}
		writer := pythonName(p.name) + "_writer"
		fmt.Fprintf(&g.b, "%s    %s = _Writer()\n", indent, writer)
		fmt.Fprintf(&g.b, "%s    %s\n", indent, g.writeStmt(p.typ.expr, pythonName(p.name), writer))
	}

	lift := "None"
	if fn.throws != nil {
		lift = "_lift_" + iface.SnakeCase(fn.throws.Name)
	}
	assign := ""
	if fn.ret != nil || kind == callableCtor {
		assign = "ret = "
	}
	fmt.Fprintf(&g.b, "%s    %s_native_call(\n", indent, assign)
	fmt.Fprintf(&g.b, "%s        %s,\n", indent, lift)
	fmt.Fprintf(&g.b, "%s        _lib.%s,\n", indent, fn.symbol)
	if kind == callableMethod {
		fmt.Fprintf(&g.b, "%s        self._handle,\n", indent)
	}
	for i := range fn.params {
		fmt.Fprintf(&g.b, "%s        %s,\n", indent, g.lowerArg(&fn.params[i]))
	}
	fmt.Fprintf(&g.b, "%s    )\n", indent)

	switch {
	case kind == callableCtor:
		fmt.Fprintf(&g.b, `%[1]s    if not ret:
%[1]s        raise InternalError("%[2]s returned NULL")
%[1]s    return cls(ret)
`, indent, fn.symbol)
	case fn.ret != nil:
		g.emitLiftReturn(fn, indent)
	}
}

func (g *pythonGen) lowerArg(p *boundParam) string {
	v := pythonName(p.name)
	switch p.typ.low {
	case lowEnum:
		return fmt.Sprintf("int(%s)", v)
	case lowObject:
		return v + "._handle"
	case lowCallback:
		return fmt.Sprintf("_%s_registry.register(%s)", iface.SnakeCase(p.typ.expr.Name), v)
	case lowBuffer:
		return fmt.Sprintf("_lower_buffer(%s_writer.to_bytes())", v)
	default:
		return v
	}
}

func (g *pythonGen) emitLiftReturn(fn *boundFn, indent string) {
	ret := fn.ret
	switch ret.low {
	case lowEnum:
		fmt.Fprintf(&g.b, "%s    return %s(ret)\n", indent, ret.expr.Name)
	case lowObject:
		fmt.Fprintf(&g.b, `%[1]s    if not ret:
%[1]s        raise InternalError("%[2]s returned NULL")
%[1]s    return %[3]s(ret)
`, indent, fn.symbol, ret.expr.Name)
	case lowBuffer:
		fmt.Fprintf(&g.b, "%s    r = _consume_buffer(ret)\n", indent)
		fmt.Fprintf(&g.b, "%s    return %s\n", indent, g.readExpr(ret.expr, "r"))
	default:
		if ret.expr.Kind == iface.KindBool {
			fmt.Fprintf(&g.b, "%s    return ret != 0\n", indent)
			return
		}
		fmt.Fprintf(&g.b, "%s    return ret\n", indent)
	}
}

// pyType maps a type expression to its Python annotation.
func (g *pythonGen) pyType(t *iface.TypeExpr) string {
	switch t.Kind {
	case iface.KindOptional:
		return "typing.Optional[" + g.pyType(t.Elem) + "]"
	case iface.KindSequence:
		return "typing.List[" + g.pyType(t.Elem) + "]"
	case iface.KindNamed:
		return t.Name
	default:
		return pySurfaceScalar[t.Kind]
	}
}

var pySurfaceScalar = map[iface.TypeKind]string{
	iface.KindBool:   "bool",
	iface.KindU8:     "int",
	iface.KindI8:     "int",
	iface.KindU16:    "int",
	iface.KindI16:    "int",
	iface.KindU32:    "int",
	iface.KindI32:    "int",
	iface.KindU64:    "int",
	iface.KindI64:    "int",
	iface.KindF32:    "float",
	iface.KindF64:    "float",
	iface.KindString: "str",
	iface.KindBytes:  "bytes",
}

// readExpr renders the Python expression reading one value from reader r.
func (g *pythonGen) readExpr(t *iface.TypeExpr, r string) string {
	switch t.Kind {
	case iface.KindOptional, iface.KindSequence:
		return fmt.Sprintf("_read_%s(%s)", iface.SnakeCase(helperSuffix(t)), r)
	case iface.KindNamed:
		return fmt.Sprintf("_read_%s(%s)", iface.SnakeCase(t.Name), r)
	default:
		return fmt.Sprintf("%s.read_%s()", r, strings.ToLower(scalarSuffixes[t.Kind]))
	}
}

// writeStmt renders the Python statement writing value v into writer w.
func (g *pythonGen) writeStmt(t *iface.TypeExpr, v, w string) string {
	switch t.Kind {
	case iface.KindOptional, iface.KindSequence:
		return fmt.Sprintf("_write_%s(%s, %s)", iface.SnakeCase(helperSuffix(t)), v, w)
	case iface.KindNamed:
		return fmt.Sprintf("_write_%s(%s, %s)", iface.SnakeCase(t.Name), v, w)
	default:
		return fmt.Sprintf("%s.write_%s(%s)", w, strings.ToLower(scalarSuffixes[t.Kind]), v)
	}
}

// docstring emits a docstring when the declaration carries one and
// reports whether it did.
func (g *pythonGen) docstring(indent, doc string) bool {
	if doc == "" {
		return false
	}
	lines := strings.Split(strings.TrimSpace(doc), "\n")
	if len(lines) == 1 {
		fmt.Fprintf(&g.b, "%s\"\"\"%s\"\"\"\n", indent, lines[0])
		return true
	}
	fmt.Fprintf(&g.b, "%s\"\"\"%s\n", indent, lines[0])
	for _, line := range lines[1:] {
		fmt.Fprintf(&g.b, "%s%s\n", indent, line)
	}
	fmt.Fprintf(&g.b, "%s\"\"\"\n", indent)
	return true
}
