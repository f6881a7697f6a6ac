//go:build unix

// Platform shim cgo glue: dlopen/dlsym/dlclose for loading sibling
// plugin binaries, and the five trampoline shapes used to
// invoke a target interface through a packed-argument pointer (plus an
// output buffer for the two struct shapes). Follows the same "typedef the expected C signature, cast the
// resolved void* to it, call through it" idiom used throughout
// AssetsArt-nylon-ring's sdk/c_bindings.go for its own vtable dispatch.
package platform

/*
#include <dlfcn.h>
#include <stdlib.h>
#include <stdint.h>

// Trampoline shapes: each target interface is invoked through
// exactly one of these five C function pointer types. The integer,
// float and double shapes take only the serialized parameter-pack block;
// the two struct shapes also take a caller-provided output buffer.
typedef int64_t (*pt_call_integer_fn)(void* pack);
typedef float   (*pt_call_float_fn)(void* pack);
typedef double  (*pt_call_double_fn)(void* pack);
typedef void    (*pt_call_struct_small_fn)(void* pack, void* out);
typedef void    (*pt_call_struct_large_fn)(void* pack, void* out);

static int64_t pt_invoke_integer(void* fn, void* pack) {
	return ((pt_call_integer_fn)fn)(pack);
}
static float pt_invoke_float(void* fn, void* pack) {
	return ((pt_call_float_fn)fn)(pack);
}
static double pt_invoke_double(void* fn, void* pack) {
	return ((pt_call_double_fn)fn)(pack);
}
static void pt_invoke_struct_small(void* fn, void* pack, void* out) {
	((pt_call_struct_small_fn)fn)(pack, out);
}
static void pt_invoke_struct_large(void* fn, void* pack, void* out) {
	((pt_call_struct_large_fn)fn)(pack, out);
}

// Metadata surface. Every
// target plugin is expected to export these ten well-known symbols so
// the dispatcher can introspect an arbitrary interface's calling shape
// without any compile-time coupling to it.
typedef const char* (*pt_plugin_name_fn)(void);
typedef const char* (*pt_plugin_version_fn)(void);
typedef int32_t     (*pt_interface_count_fn)(void);
typedef const char* (*pt_interface_name_fn)(int32_t idx);
typedef int32_t     (*pt_interface_param_count_fn)(int32_t idx);
typedef int32_t     (*pt_interface_variadic_fn)(int32_t idx);
typedef int32_t     (*pt_interface_min_param_count_fn)(int32_t idx);
typedef int32_t     (*pt_interface_return_class_fn)(int32_t idx);
typedef int32_t     (*pt_interface_return_size_fn)(int32_t idx);
typedef int32_t     (*pt_param_tag_fn)(int32_t ifaceIdx, int32_t paramIdx);

static const char* pt_call_plugin_name(void* fn) { return ((pt_plugin_name_fn)fn)(); }
static const char* pt_call_plugin_version(void* fn) { return ((pt_plugin_version_fn)fn)(); }
static int32_t pt_call_interface_count(void* fn) { return ((pt_interface_count_fn)fn)(); }
static const char* pt_call_interface_name(void* fn, int32_t idx) { return ((pt_interface_name_fn)fn)(idx); }
static int32_t pt_call_interface_param_count(void* fn, int32_t idx) { return ((pt_interface_param_count_fn)fn)(idx); }
static int32_t pt_call_interface_variadic(void* fn, int32_t idx) { return ((pt_interface_variadic_fn)fn)(idx); }
static int32_t pt_call_interface_min_param_count(void* fn, int32_t idx) { return ((pt_interface_min_param_count_fn)fn)(idx); }
static int32_t pt_call_interface_return_class(void* fn, int32_t idx) { return ((pt_interface_return_class_fn)fn)(idx); }
static int32_t pt_call_interface_return_size(void* fn, int32_t idx) { return ((pt_interface_return_size_fn)fn)(idx); }
static int32_t pt_call_param_tag(void* fn, int32_t ifaceIdx, int32_t paramIdx) { return ((pt_param_tag_fn)fn)(ifaceIdx, paramIdx); }

// pt_self_marker's address is used only as a known-good pointer lying
// inside this shared library's own mapped range, so dladdr can answer
// "what file did this address come from".
static int pt_self_marker;
static const char* pt_self_path(void) {
	Dl_info info;
	if (dladdr((void*)&pt_self_marker, &info) && info.dli_fname) {
		return info.dli_fname;
	}
	return 0;
}
*/
import "C"

import (
	"unsafe"

	"github.com/Qhunliv13/NexusPlugins-sub000/internal/errkind"
	"github.com/Qhunliv13/NexusPlugins-sub000/internal/rterr"
)

// OpenLibrary loads the shared library at path.
func OpenLibrary(path string) (Handle, error) {
	cpath := C.CString(path)
	defer C.free(unsafe.Pointer(cpath))

	h := C.dlopen(cpath, C.RTLD_NOW|C.RTLD_LOCAL)
	if h == nil {
		msg := C.GoString(C.dlerror())
		return 0, rterr.Newf(errkind.FileOpen, "dlopen %s: %s", path, msg)
	}
	return Handle(uintptr(unsafe.Pointer(h))), nil
}

// ResolveSymbol resolves name within handle.
func ResolveSymbol(h Handle, name string) (uintptr, error) {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))

	sym := C.dlsym(unsafe.Pointer(uintptr(h)), cname)
	if sym == nil {
		return 0, rterr.Newf(errkind.BadArg, "symbol %s not found", name)
	}
	return uintptr(sym), nil
}

// CloseLibrary releases handle.
func CloseLibrary(h Handle) error {
	if h == 0 {
		return nil
	}
	if C.dlclose(unsafe.Pointer(uintptr(h))) != 0 {
		msg := C.GoString(C.dlerror())
		return rterr.Newf(errkind.BadArg, "dlclose: %s", msg)
	}
	return nil
}

// InvokeInteger calls fn with
// packPtr and returns its int64 result.
func InvokeInteger(fn uintptr, packPtr uintptr) int64 {
	return int64(C.pt_invoke_integer(unsafe.Pointer(fn), unsafe.Pointer(packPtr)))
}

// InvokeFloat calls a float-classified target.
func InvokeFloat(fn uintptr, packPtr uintptr) float32 {
	return float32(C.pt_invoke_float(unsafe.Pointer(fn), unsafe.Pointer(packPtr)))
}

// InvokeDouble calls a double-classified target.
func InvokeDouble(fn uintptr, packPtr uintptr) float64 {
	return float64(C.pt_invoke_double(unsafe.Pointer(fn), unsafe.Pointer(packPtr)))
}

// InvokeStructSmall calls a small-struct-classified target, threading
// outPtr as the hidden output buffer.
func InvokeStructSmall(fn, packPtr, outPtr uintptr) {
	C.pt_invoke_struct_small(unsafe.Pointer(fn), unsafe.Pointer(packPtr), unsafe.Pointer(outPtr))
}

// InvokeStructLarge calls a large-struct-classified target the same
// way.
func InvokeStructLarge(fn, packPtr, outPtr uintptr) {
	C.pt_invoke_struct_large(unsafe.Pointer(fn), unsafe.Pointer(packPtr), unsafe.Pointer(outPtr))
}

// PluginName calls a resolved pt_plugin_name symbol.
func PluginName(fn uintptr) string {
	return C.GoString(C.pt_call_plugin_name(unsafe.Pointer(fn)))
}

// PluginVersion calls a resolved pt_plugin_version symbol.
func PluginVersion(fn uintptr) string {
	return C.GoString(C.pt_call_plugin_version(unsafe.Pointer(fn)))
}

// InterfaceCount calls a resolved pt_interface_count symbol.
func InterfaceCount(fn uintptr) int32 {
	return int32(C.pt_call_interface_count(unsafe.Pointer(fn)))
}

// InterfaceName calls a resolved pt_interface_name symbol.
func InterfaceName(fn uintptr, idx int32) string {
	return C.GoString(C.pt_call_interface_name(unsafe.Pointer(fn), C.int32_t(idx)))
}

// InterfaceParamCount calls a resolved pt_interface_param_count symbol.
func InterfaceParamCount(fn uintptr, idx int32) int32 {
	return int32(C.pt_call_interface_param_count(unsafe.Pointer(fn), C.int32_t(idx)))
}

// InterfaceVariadic calls a resolved pt_interface_variadic symbol.
func InterfaceVariadic(fn uintptr, idx int32) bool {
	return C.pt_call_interface_variadic(unsafe.Pointer(fn), C.int32_t(idx)) != 0
}

// InterfaceMinParamCount calls a resolved pt_interface_min_param_count symbol.
func InterfaceMinParamCount(fn uintptr, idx int32) int32 {
	return int32(C.pt_call_interface_min_param_count(unsafe.Pointer(fn), C.int32_t(idx)))
}

// InterfaceReturnClass calls a resolved pt_interface_return_class symbol.
func InterfaceReturnClass(fn uintptr, idx int32) int32 {
	return int32(C.pt_call_interface_return_class(unsafe.Pointer(fn), C.int32_t(idx)))
}

// InterfaceReturnSize calls a resolved pt_interface_return_size symbol.
func InterfaceReturnSize(fn uintptr, idx int32) int32 {
	return int32(C.pt_call_interface_return_size(unsafe.Pointer(fn), C.int32_t(idx)))
}

// ParamTag calls a resolved pt_param_tag symbol.
func ParamTag(fn uintptr, ifaceIdx, paramIdx int32) int32 {
	return int32(C.pt_call_param_tag(unsafe.Pointer(fn), C.int32_t(ifaceIdx), C.int32_t(paramIdx)))
}

// SelfPath resolves the filesystem path of this shared library itself
// via dladdr.
func SelfPath() (string, error) {
	p := C.pt_self_path()
	if p == nil {
		return "", rterr.New(errkind.FileOpen, "dladdr could not resolve this library's own path")
	}
	return C.GoString(p), nil
}
