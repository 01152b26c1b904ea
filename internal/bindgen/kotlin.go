// SPDX-License-Identifier: MPL-2.0

package bindgen

import (
	"fmt"
	"path"
	"strings"

	"svbind-cli/pkg/iface"
)

// generateKotlin emits one Kotlin source file backed by JNA: a Library
// interface binding every exported C symbol, a big-endian codec matching
// the native serialization, and idiomatic Kotlin surface types (enums,
// data classes, sealed exceptions, AutoCloseable handles).
func generateKotlin(bound *boundInterface, opts Options) []File {
	g := &kotlinGen{
		bound:    bound,
		def:      bound.def,
		opts:     opts,
		libClass: pascalCase(bound.def.Namespace) + "Lib",
	}
	g.emit()

	dir := strings.ReplaceAll(opts.KotlinPackage, ".", "/")
	file := path.Join(dir, pascalCase(bound.def.Namespace)+".kt")
	return []File{{Path: file, Data: []byte(g.b.String())}}
}

type kotlinGen struct {
	b        strings.Builder
	bound    *boundInterface
	def      *iface.Interface
	opts     Options
	libClass string
}

func (g *kotlinGen) emit() {
	g.emitHeader()
	g.emitFFIStructs()
	g.emitTrampolineTypes()
	g.emitLibrary()
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

func (g *kotlinGen) emitHeader() {
	for _, line := range headerLines(g.def) {
		fmt.Fprintf(&g.b, "// %s\n", line)
	}
	g.b.WriteString("\n@file:Suppress(\"unused\", \"MemberVisibilityCanBePrivate\", \"RedundantVisibilityModifier\")\n")
	fmt.Fprintf(&g.b, "\npackage %s\n\n", g.opts.KotlinPackage)
	g.b.WriteString(`import com.sun.jna.Callback
import com.sun.jna.Library
import com.sun.jna.Native
import com.sun.jna.Pointer
import com.sun.jna.Structure
import java.io.ByteArrayOutputStream
import java.io.DataOutputStream
import java.nio.ByteBuffer
import java.util.concurrent.ConcurrentHashMap
import java.util.concurrent.atomic.AtomicBoolean
import java.util.concurrent.atomic.AtomicLong
`)
}

func (g *kotlinGen) emitFFIStructs() {
	g.b.WriteString(`
@Structure.FieldOrder("data", "len")
internal open class NativeBuffer : Structure() {
    @JvmField var data: Pointer? = null
    @JvmField var len: Long = 0

    internal class ByValue : NativeBuffer(), Structure.ByValue
}

@Structure.FieldOrder("code", "message")
internal class NativeStatus : Structure() {
    @JvmField var code: Int = 0
    @JvmField var message: Pointer? = null
}
`)
}

// emitTrampolineTypes declares one JNA Callback interface per callback
// declaration; the native side dispatches every method of the interface
// through it by index.
func (g *kotlinGen) emitTrampolineTypes() {
	for idx := range g.def.Callbacks {
		cb := &g.def.Callbacks[idx]
		fmt.Fprintf(&g.b, "\ninternal interface %sTrampoline : Callback {\n", cb.Name)
		g.b.WriteString("    fun invoke(handle: Long, method: Int, args: NativeBuffer.ByValue)\n")
		g.b.WriteString("}\n")
	}
}

func (g *kotlinGen) emitLibrary() {
	fmt.Fprintf(&g.b, "\ninternal interface %s : Library {\n", g.libClass)
	fmt.Fprintf(&g.b, "    fun %s(ptr: Pointer)\n", g.def.StringFreeSymbol())
	fmt.Fprintf(&g.b, "    fun %s(len: Long): NativeBuffer.ByValue\n", g.def.BufferAllocSymbol())
	fmt.Fprintf(&g.b, "    fun %s(buf: NativeBuffer.ByValue)\n", g.def.BufferFreeSymbol())

	for _, fn := range g.bound.functions {
		g.emitLibraryEntry(fn, "")
	}
	for idx := range g.def.Objects {
		obj := &g.def.Objects[idx]
		for _, ctor := range g.bound.ctors[obj.Name] {
			g.emitLibraryEntry(ctor, obj.Name)
		}
		for _, meth := range g.bound.methods[obj.Name] {
			g.emitLibraryMethod(meth)
		}
		fmt.Fprintf(&g.b, "    fun %s(self: Pointer)\n", g.def.ObjectFreeSymbol(obj))
	}
	for idx := range g.def.Callbacks {
		cb := &g.def.Callbacks[idx]
		fmt.Fprintf(&g.b, "    fun %s(trampoline: %sTrampoline)\n", g.def.CallbackInitSymbol(cb), cb.Name)
	}

	g.b.WriteString("\n    companion object {\n")
	fmt.Fprintf(&g.b, "        val INSTANCE: %s by lazy { Native.load(%q, %s::class.java) }\n",
		g.libClass, g.opts.LibName, g.libClass)
	g.b.WriteString("    }\n}\n")
}

// emitLibraryEntry emits the Library signature for a free function or a
// constructor. Constructors (non-empty owner) return a raw handle.
func (g *kotlinGen) emitLibraryEntry(fn *boundFn, owner string) {
	fmt.Fprintf(&g.b, "    fun %s(", fn.symbol)
	g.emitLibraryParams(fn, false)
	switch {
	case owner != "":
		g.b.WriteString("): Pointer?\n")
	case fn.ret == nil:
		g.b.WriteString(")\n")
	default:
		fmt.Fprintf(&g.b, "): %s\n", g.jnaReturnType(fn.ret))
	}
}

func (g *kotlinGen) emitLibraryMethod(fn *boundFn) {
	fmt.Fprintf(&g.b, "    fun %s(", fn.symbol)
	g.emitLibraryParams(fn, true)
	if fn.ret == nil {
		g.b.WriteString(")\n")
		return
	}
	fmt.Fprintf(&g.b, "): %s\n", g.jnaReturnType(fn.ret))
}

func (g *kotlinGen) emitLibraryParams(fn *boundFn, method bool) {
	if method {
		g.b.WriteString("self: Pointer, ")
	}
	for i := range fn.params {
		p := &fn.params[i]
		fmt.Fprintf(&g.b, "%s: %s, ", camelCase(p.name), g.jnaType(&p.typ))
	}
	g.b.WriteString("status: NativeStatus")
}

// jnaType maps a lowered parameter type to the JNA-visible Kotlin type.
func (g *kotlinGen) jnaType(t *boundType) string {
	switch t.low {
	case lowEnum:
		return "Int"
	case lowObject:
		return "Pointer"
	case lowCallback:
		return "Long"
	case lowBuffer:
		return "NativeBuffer.ByValue"
	default:
		return kotlinScalarJNA[t.expr.Kind]
	}
}

func (g *kotlinGen) jnaReturnType(t *boundType) string {
	if t.low == lowObject {
		return "Pointer?"
	}
	return g.jnaType(t)
}

var kotlinScalarJNA = map[iface.TypeKind]string{
	iface.KindBool: "Byte",
	iface.KindU8:   "Byte",
	iface.KindI8:   "Byte",
	iface.KindU16:  "Short",
	iface.KindI16:  "Short",
	iface.KindU32:  "Int",
	iface.KindI32:  "Int",
	iface.KindU64:  "Long",
	iface.KindI64:  "Long",
	iface.KindF32:  "Float",
	iface.KindF64:  "Double",
}

func (g *kotlinGen) emitCodec() {
	g.b.WriteString(`
internal class NativeReader(bytes: ByteArray) {
    private val buf: ByteBuffer = ByteBuffer.wrap(bytes)

    fun readBool(): Boolean = buf.get().toInt() != 0
    fun readU8(): UByte = buf.get().toUByte()
    fun readI8(): Byte = buf.get()
    fun readU16(): UShort = buf.short.toUShort()
    fun readI16(): Short = buf.short
    fun readU32(): UInt = buf.int.toUInt()
    fun readI32(): Int = buf.int
    fun readU64(): ULong = buf.long.toULong()
    fun readI64(): Long = buf.long
    fun readF32(): Float = buf.float
    fun readF64(): Double = buf.double

    fun readString(): String = readBytes().decodeToString()

    fun readBytes(): ByteArray {
        val n = buf.int
        val bytes = ByteArray(n)
        buf.get(bytes)
        return bytes
    }
}

internal class NativeWriter {
    private val bytes = ByteArrayOutputStream()
    private val data = DataOutputStream(bytes)

    fun writeBool(v: Boolean) { data.writeByte(if (v) 1 else 0) }
    fun writeU8(v: UByte) { data.writeByte(v.toInt()) }
    fun writeI8(v: Byte) { data.writeByte(v.toInt()) }
    fun writeU16(v: UShort) { data.writeShort(v.toInt()) }
    fun writeI16(v: Short) { data.writeShort(v.toInt()) }
    fun writeU32(v: UInt) { data.writeInt(v.toInt()) }
    fun writeI32(v: Int) { data.writeInt(v) }
    fun writeU64(v: ULong) { data.writeLong(v.toLong()) }
    fun writeI64(v: Long) { data.writeLong(v) }
    fun writeF32(v: Float) { data.writeFloat(v) }
    fun writeF64(v: Double) { data.writeDouble(v) }

    fun writeString(v: String) { writeBytes(v.encodeToByteArray()) }

    fun writeBytes(v: ByteArray) {
        data.writeInt(v.size)
        data.write(v)
    }

    fun toByteArray(): ByteArray {
        data.flush()
        return bytes.toByteArray()
    }
}
`)
	fmt.Fprintf(&g.b, `
// consumeBuffer copies a native-owned return buffer, frees it, and
// wraps the copy for reading.
internal fun consumeBuffer(buf: NativeBuffer.ByValue): NativeReader {
    val bytes = buf.data?.getByteArray(0, buf.len.toInt()) ?: ByteArray(0)
    %[1]s.INSTANCE.%[2]s(buf)
    return NativeReader(bytes)
}

// borrowBuffer copies a buffer the native side still owns, such as
// callback arguments, without freeing it.
internal fun borrowBuffer(buf: NativeBuffer.ByValue): NativeReader {
    val bytes = buf.data?.getByteArray(0, buf.len.toInt()) ?: ByteArray(0)
    return NativeReader(bytes)
}

// lowerBuffer copies serialized bytes into a native-allocated buffer.
// The called entry point takes ownership and frees it.
internal fun lowerBuffer(bytes: ByteArray): NativeBuffer.ByValue {
    val buf = %[1]s.INSTANCE.%[3]s(bytes.size.toLong())
    if (bytes.isNotEmpty()) {
        buf.data?.write(0, bytes, 0, bytes.size)
    }
    return buf
}
`, g.libClass, g.def.BufferFreeSymbol(), g.def.BufferAllocSymbol())
}

func (g *kotlinGen) emitStatusHandling() {
	fmt.Fprintf(&g.b, `
// InternalException reports a native panic or a status code outside the
// declared error set.
public class InternalException(message: String) : Exception(message)

internal fun consumeStatusMessage(status: NativeStatus): String {
    val ptr = status.message ?: return ""
    val message = ptr.getString(0)
    %[1]s.INSTANCE.%[2]s(ptr)
    return message
}

// nativeCall invokes one entry point with a fresh status out-parameter
// and re-raises non-zero status as the lifted exception.
internal fun <T> nativeCall(liftError: ((Int, String) -> Exception)?, block: (NativeStatus) -> T): T {
    val status = NativeStatus()
    val result = block(status)
    if (status.code == 0) {
        return result
    }
    val message = consumeStatusMessage(status)
    if (status.code > 0 && liftError != null) {
        throw liftError(status.code, message)
    }
    throw InternalException(message)
}
`, g.libClass, g.def.StringFreeSymbol())
}

func (g *kotlinGen) emitEnums() {
	for idx := range g.def.Enums {
		e := &g.def.Enums[idx]
		g.b.WriteString("\n")
		g.kdoc("", e.Doc)
		fmt.Fprintf(&g.b, "public enum class %s {\n", e.Name)
		for _, v := range e.Variants {
			fmt.Fprintf(&g.b, "    %s,\n", screamingCase(v))
		}
		g.b.WriteString("}\n")

		fmt.Fprintf(&g.b, `
internal fun lift%[1]s(ordinal: Int): %[1]s {
    require(ordinal in %[1]s.entries.indices) { "invalid %[1]s ordinal $ordinal" }
    return %[1]s.entries[ordinal]
}

internal fun read%[1]s(r: NativeReader): %[1]s = lift%[1]s(r.readI32())

internal fun write%[1]s(v: %[1]s, w: NativeWriter) {
    w.writeI32(v.ordinal)
}
`, e.Name)
	}
}

func (g *kotlinGen) emitRecords() {
	for idx := range g.def.Records {
		rec := &g.def.Records[idx]
		fields := g.bound.records[rec.Name]
		g.b.WriteString("\n")
		g.kdoc("", rec.Doc)
		if len(fields) == 0 {
			fmt.Fprintf(&g.b, "public class %s\n", rec.Name)
		} else {
			fmt.Fprintf(&g.b, "public data class %s(\n", rec.Name)
			for f := range fields {
				g.kdoc("    ", rec.Fields[f].Doc)
				fmt.Fprintf(&g.b, "    val %s: %s,\n", kotlinName(fields[f].name), g.ktType(fields[f].expr))
			}
			g.b.WriteString(")\n")
		}

		fmt.Fprintf(&g.b, "\ninternal fun read%[1]s(r: NativeReader): %[1]s = %[1]s(\n", rec.Name)
		for f := range fields {
			fmt.Fprintf(&g.b, "    %s = %s,\n", kotlinName(fields[f].name), g.readExpr(fields[f].expr, "r"))
		}
		g.b.WriteString(")\n")

		fmt.Fprintf(&g.b, "\ninternal fun write%[1]s(v: %[1]s, w: NativeWriter) {\n", rec.Name)
		for f := range fields {
			fmt.Fprintf(&g.b, "    %s\n", g.writeStmt(fields[f].expr, "v."+kotlinName(fields[f].name), "w"))
		}
		g.b.WriteString("}\n")
	}
}

// emitHelpers generates the codec functions for every distinct
// optional/sequence expression the definition uses.
func (g *kotlinGen) emitHelpers() {
	for _, expr := range g.bound.helpers {
		suffix := helperSuffix(expr)
		elem := expr.Elem
		switch expr.Kind {
		case iface.KindOptional:
			fmt.Fprintf(&g.b, `
internal fun read%[1]s(r: NativeReader): %[2]s =
    if (r.readBool()) %[3]s else null

internal fun write%[1]s(v: %[2]s, w: NativeWriter) {
    if (v == null) {
        w.writeBool(false)
    } else {
        w.writeBool(true)
        %[4]s
    }
}
`, suffix, g.ktType(expr), g.readExpr(elem, "r"), g.writeStmt(elem, "v", "w"))
		case iface.KindSequence:
			fmt.Fprintf(&g.b, `
internal fun read%[1]s(r: NativeReader): %[2]s {
    val n = r.readI32()
    val items = ArrayList<%[3]s>(n)
    repeat(n) { items.add(%[4]s) }
    return items
}

internal fun write%[1]s(v: %[2]s, w: NativeWriter) {
    w.writeI32(v.size)
    for (item in v) {
        %[5]s
    }
}
`, suffix, g.ktType(expr), g.ktType(elem), g.readExpr(elem, "r"), g.writeStmt(elem, "item", "w"))
		}
	}
}

func (g *kotlinGen) emitErrorSets() {
	for idx := range g.def.Errors {
		set := &g.def.Errors[idx]
		exc := kotlinExceptionName(set.Name)
		g.b.WriteString("\n")
		g.kdoc("", set.Doc)
		fmt.Fprintf(&g.b, "public sealed class %s(message: String) : Exception(message) {\n", exc)
		for _, v := range set.Variants {
			fmt.Fprintf(&g.b, "    public class %s(message: String) : %s(message)\n", pascalCase(v), exc)
		}
		g.b.WriteString("}\n")

		fmt.Fprintf(&g.b, "\ninternal fun lift%s(code: Int, message: String): Exception = when (code) {\n", set.Name)
		for i, v := range set.Variants {
			fmt.Fprintf(&g.b, "    %d -> %s.%s(message)\n", i+1, exc, pascalCase(v))
		}
		g.b.WriteString("    else -> InternalException(message)\n}\n")
	}
}

func (g *kotlinGen) emitObjects() {
	for idx := range g.def.Objects {
		obj := &g.def.Objects[idx]
		g.b.WriteString("\n")
		g.kdoc("", obj.Doc)
		fmt.Fprintf(&g.b, "public class %s internal constructor(internal val handle: Pointer) : AutoCloseable {\n", obj.Name)
		g.b.WriteString("    private val closed = AtomicBoolean(false)\n")

		fmt.Fprintf(&g.b, `
    /** Releases the native handle. Calling other methods afterwards fails. */
    override fun close() {
        if (closed.compareAndSet(false, true)) {
            %s.INSTANCE.%s(handle)
        }
    }

    private fun checkOpen() = check(!closed.get()) { "%s is closed" }
`, g.libClass, g.def.ObjectFreeSymbol(obj), obj.Name)

		for _, meth := range g.bound.methods[obj.Name] {
			g.emitCallable(meth, "    ", callableMethod, "")
		}

		if ctors := g.bound.ctors[obj.Name]; len(ctors) > 0 {
			g.b.WriteString("\n    public companion object {\n")
			for _, ctor := range ctors {
				g.emitCallable(ctor, "        ", callableCtor, obj.Name)
			}
			g.b.WriteString("    }\n")
		}
		g.b.WriteString("}\n")
	}
}

func (g *kotlinGen) emitCallbacks() {
	for idx := range g.def.Callbacks {
		cb := &g.def.Callbacks[idx]
		g.b.WriteString("\n")
		g.kdoc("", cb.Doc)
		fmt.Fprintf(&g.b, "public interface %s {\n", cb.Name)
		for _, meth := range g.bound.cbMethods[cb.Name] {
			g.kdoc("    ", meth.fn.Doc)
			fmt.Fprintf(&g.b, "    public fun %s(", kotlinName(meth.fn.Name))
			for i := range meth.params {
				p := &meth.params[i]
				if i > 0 {
					g.b.WriteString(", ")
				}
				fmt.Fprintf(&g.b, "%s: %s", kotlinName(p.name), g.ktType(p.typ.expr))
			}
			g.b.WriteString(")\n")
		}
		g.b.WriteString("}\n")

		// Registered handlers stay reachable for the process lifetime;
		// the native side may invoke them long after registration.
		hasArgs := false
		for _, meth := range g.bound.cbMethods[cb.Name] {
			if len(meth.params) > 0 {
				hasArgs = true
			}
		}

		fmt.Fprintf(&g.b, `
internal object %[1]sRegistry {
    private val handlers = ConcurrentHashMap<Long, %[1]s>()
    private val nextHandle = AtomicLong(1)

    private val trampoline = object : %[1]sTrampoline {
        override fun invoke(handle: Long, method: Int, args: NativeBuffer.ByValue) {
            val handler = handlers[handle] ?: return
`, cb.Name)
		if hasArgs {
			g.b.WriteString("            val reader = borrowBuffer(args)\n")
		}
		g.b.WriteString("            try {\n                when (method) {\n")
		for m, meth := range g.bound.cbMethods[cb.Name] {
			fmt.Fprintf(&g.b, "                    %d -> handler.%s(", m, kotlinName(meth.fn.Name))
			for i := range meth.params {
				p := &meth.params[i]
				if i > 0 {
					g.b.WriteString(", ")
				}
				g.b.WriteString(g.liftCallbackArg(&p.typ))
			}
			g.b.WriteString(")\n")
		}
		fmt.Fprintf(&g.b, `                }
            } catch (_: Throwable) {
                // One-way call: host failures must not cross into native code.
            }
        }
    }

    init {
        %[1]s.INSTANCE.%[2]s(trampoline)
    }

    fun register(handler: %[3]s): Long {
        val handle = nextHandle.getAndIncrement()
        handlers[handle] = handler
        return handle
    }

    fun get(handle: Long): %[3]s? = handlers[handle]
}
`, g.libClass, g.def.CallbackInitSymbol(cb), cb.Name)
	}
}

// liftCallbackArg renders the dispatch-time read of one callback method
// argument from the borrowed args buffer. Object and callback handles
// cross as raw u64 values.
func (g *kotlinGen) liftCallbackArg(t *boundType) string {
	switch t.low {
	case lowObject:
		return fmt.Sprintf("%s(Pointer(reader.readU64().toLong()))", t.expr.Name)
	case lowCallback:
		return fmt.Sprintf("(%sRegistry.get(reader.readU64().toLong()) ?: return)", t.expr.Name)
	default:
		return g.readExpr(t.expr, "reader")
	}
}

func (g *kotlinGen) emitFunctions() {
	for _, fn := range g.bound.functions {
		g.emitCallable(fn, "", callableFree, "")
	}
}

type callableKind uint8

const (
	callableFree callableKind = iota
	callableCtor
	callableMethod
)

// emitCallable renders one public wrapper function: lower arguments,
// invoke the entry point under status checking, lift the result.
func (g *kotlinGen) emitCallable(fn *boundFn, indent string, kind callableKind, owner string) {
	g.b.WriteString("\n")
	g.kdoc(indent, fn.fn.Doc)
	if fn.throws != nil {
		fmt.Fprintf(&g.b, "%s@Throws(%s::class)\n", indent, kotlinExceptionName(fn.throws.Name))
	}
	if kind == callableCtor {
		fmt.Fprintf(&g.b, "%s@JvmStatic\n", indent)
	}

	fmt.Fprintf(&g.b, "%spublic fun %s(", indent, kotlinName(fn.fn.Name))
	for i := range fn.params {
		p := &fn.params[i]
		if i > 0 {
			g.b.WriteString(", ")
		}
		fmt.Fprintf(&g.b, "%s: %s", kotlinName(p.name), g.ktType(p.typ.expr))
	}
	g.b.WriteString(")")
	switch {
	case kind == callableCtor:
		fmt.Fprintf(&g.b, ": %s", owner)
	case fn.ret != nil:
		fmt.Fprintf(&g.b, ": %s", g.ktType(fn.ret.expr))
	}
	g.b.WriteString(" {\n")

	if kind == callableMethod {
		fmt.Fprintf(&g.b, "%s    checkOpen()\n", indent)
	}

	// Serialize buffer-lowered arguments first.
	for i := range fn.params {
		p := &fn.params[i]
		if p.typ.low != lowBuffer {
			continue
		}
		writer := camelCase(p.name) + "Writer"
		fmt.Fprintf(&g.b, "%s    val %s = NativeWriter()\n", indent, writer)
		fmt.Fprintf(&g.b, "%s    %s\n", indent, g.writeStmt(p.typ.expr, kotlinName(p.name), writer))
	}

	lift := "null"
	if fn.throws != nil {
		lift = "::lift" + fn.throws.Name
	}
	assign := ""
	if fn.ret != nil || kind == callableCtor {
		assign = "val ret = "
	}
	fmt.Fprintf(&g.b, "%s    %snativeCall(%s) { status ->\n", indent, assign, lift)
	fmt.Fprintf(&g.b, "%s        %s.INSTANCE.%s(\n", indent, g.libClass, fn.symbol)
	if kind == callableMethod {
		fmt.Fprintf(&g.b, "%s            handle,\n", indent)
	}
	for i := range fn.params {
		p := &fn.params[i]
		fmt.Fprintf(&g.b, "%s            %s,\n", indent, g.lowerArg(p))
	}
	fmt.Fprintf(&g.b, "%s            status,\n", indent)
	fmt.Fprintf(&g.b, "%s        )\n", indent)
	fmt.Fprintf(&g.b, "%s    }\n", indent)

	switch {
	case kind == callableCtor:
		fmt.Fprintf(&g.b, "%s    return %s(requireNotNull(ret) { \"%s returned null\" })\n", indent, owner, fn.symbol)
	case fn.ret != nil:
		g.emitLiftReturn(fn, indent)
	}
	fmt.Fprintf(&g.b, "%s}\n", indent)
}

// lowerArg renders the Kotlin expression passing one parameter to the
// entry point.
func (g *kotlinGen) lowerArg(p *boundParam) string {
	v := kotlinName(p.name)
	switch p.typ.low {
	case lowEnum:
		return v + ".ordinal"
	case lowObject:
		return v + ".handle"
	case lowCallback:
		return fmt.Sprintf("%sRegistry.register(%s)", p.typ.expr.Name, v)
	case lowBuffer:
		return fmt.Sprintf("lowerBuffer(%sWriter.toByteArray())", camelCase(p.name))
	default:
		return kotlinLowerScalar(p.typ.expr.Kind, v)
	}
}

func kotlinLowerScalar(kind iface.TypeKind, v string) string {
	switch kind {
	case iface.KindBool:
		return fmt.Sprintf("(if (%s) 1 else 0).toByte()", v)
	case iface.KindU8:
		return v + ".toByte()"
	case iface.KindU16:
		return v + ".toShort()"
	case iface.KindU32:
		return v + ".toInt()"
	case iface.KindU64:
		return v + ".toLong()"
	default:
		return v
	}
}

func (g *kotlinGen) emitLiftReturn(fn *boundFn, indent string) {
	ret := fn.ret
	switch ret.low {
	case lowEnum:
		fmt.Fprintf(&g.b, "%s    return lift%s(ret)\n", indent, ret.expr.Name)
	case lowObject:
		fmt.Fprintf(&g.b, "%s    return %s(requireNotNull(ret) { \"%s returned null\" })\n", indent, ret.expr.Name, fn.symbol)
	case lowBuffer:
		fmt.Fprintf(&g.b, "%s    val reader = consumeBuffer(ret)\n", indent)
		fmt.Fprintf(&g.b, "%s    return %s\n", indent, g.readExpr(ret.expr, "reader"))
	default:
		fmt.Fprintf(&g.b, "%s    return %s\n", indent, kotlinLiftScalar(ret.expr.Kind, "ret"))
	}
}

func kotlinLiftScalar(kind iface.TypeKind, v string) string {
	switch kind {
	case iface.KindBool:
		return v + ".toInt() != 0"
	case iface.KindU8:
		return v + ".toUByte()"
	case iface.KindU16:
		return v + ".toUShort()"
	case iface.KindU32:
		return v + ".toUInt()"
	case iface.KindU64:
		return v + ".toULong()"
	default:
		return v
	}
}

// ktType maps a type expression to its Kotlin surface type.
func (g *kotlinGen) ktType(t *iface.TypeExpr) string {
	switch t.Kind {
	case iface.KindOptional:
		return g.ktType(t.Elem) + "?"
	case iface.KindSequence:
		return "List<" + g.ktType(t.Elem) + ">"
	case iface.KindNamed:
		return t.Name
	default:
		return kotlinSurfaceScalar[t.Kind]
	}
}

var kotlinSurfaceScalar = map[iface.TypeKind]string{
	iface.KindBool:   "Boolean",
	iface.KindU8:     "UByte",
	iface.KindI8:     "Byte",
	iface.KindU16:    "UShort",
	iface.KindI16:    "Short",
	iface.KindU32:    "UInt",
	iface.KindI32:    "Int",
	iface.KindU64:    "ULong",
	iface.KindI64:    "Long",
	iface.KindF32:    "Float",
	iface.KindF64:    "Double",
	iface.KindString: "String",
	iface.KindBytes:  "ByteArray",
}

// readExpr renders the Kotlin expression reading one value from reader r.
func (g *kotlinGen) readExpr(t *iface.TypeExpr, r string) string {
	switch t.Kind {
	case iface.KindOptional, iface.KindSequence:
		return fmt.Sprintf("read%s(%s)", helperSuffix(t), r)
	case iface.KindNamed:
		return fmt.Sprintf("read%s(%s)", t.Name, r)
	default:
		return fmt.Sprintf("%s.read%s()", r, scalarSuffixes[t.Kind])
	}
}

// writeStmt renders the Kotlin statement writing value v into writer w.
func (g *kotlinGen) writeStmt(t *iface.TypeExpr, v, w string) string {
	switch t.Kind {
	case iface.KindOptional, iface.KindSequence:
		return fmt.Sprintf("write%s(%s, %s)", helperSuffix(t), v, w)
	case iface.KindNamed:
		return fmt.Sprintf("write%s(%s, %s)", t.Name, v, w)
	default:
		return fmt.Sprintf("%s.write%s(%s)", w, scalarSuffixes[t.Kind], v)
	}
}

// kdoc emits a KDoc comment when the declaration carries one.
func (g *kotlinGen) kdoc(indent, doc string) {
	if doc == "" {
		return
	}
	lines := strings.Split(strings.TrimSpace(doc), "\n")
	if len(lines) == 1 {
		fmt.Fprintf(&g.b, "%s/** %s */\n", indent, lines[0])
		return
	}
	fmt.Fprintf(&g.b, "%s/**\n", indent)
	for _, line := range lines {
		fmt.Fprintf(&g.b, "%s * %s\n", indent, line)
	}
	fmt.Fprintf(&g.b, "%s */\n", indent)
}

// kotlinExceptionName derives the exception class name for an error set:
// a trailing "Error" collapses into the "Exception" suffix, so VaultError
// surfaces as VaultException.
func kotlinExceptionName(set string) string {
	base := strings.TrimSuffix(set, "Error")
	if base == "" {
		base = set
	}
	return base + "Exception"
}
