//go:build !unix

// Non-POSIX stub: the engine's dlopen-based shim only has a concrete
// backend for unix targets.
package platform

import (
	"github.com/Qhunliv13/NexusPlugins-sub000/internal/errkind"
	"github.com/Qhunliv13/NexusPlugins-sub000/internal/rterr"
)

func notImplemented() error {
	return rterr.New(errkind.BadArg, "platform shim not implemented on this OS")
}

func OpenLibrary(path string) (Handle, error)          { return 0, notImplemented() }
func ResolveSymbol(h Handle, name string) (uintptr, error) { return 0, notImplemented() }
func CloseLibrary(h Handle) error                       { return notImplemented() }

func InvokeInteger(fn uintptr, packPtr uintptr) int64        { return 0 }
func InvokeFloat(fn uintptr, packPtr uintptr) float32         { return 0 }
func InvokeDouble(fn uintptr, packPtr uintptr) float64        { return 0 }
func InvokeStructSmall(fn, packPtr, outPtr uintptr)           {}
func InvokeStructLarge(fn, packPtr, outPtr uintptr)           {}

func PluginName(fn uintptr) string                  { return "" }
func PluginVersion(fn uintptr) string                { return "" }
func InterfaceCount(fn uintptr) int32                { return 0 }
func InterfaceName(fn uintptr, idx int32) string     { return "" }
func InterfaceParamCount(fn uintptr, idx int32) int32 { return 0 }
func InterfaceVariadic(fn uintptr, idx int32) bool   { return false }
func InterfaceMinParamCount(fn uintptr, idx int32) int32 { return 0 }
func InterfaceReturnClass(fn uintptr, idx int32) int32   { return 0 }
func InterfaceReturnSize(fn uintptr, idx int32) int32    { return 0 }
func ParamTag(fn uintptr, ifaceIdx, paramIdx int32) int32 { return 0 }

func SelfPath() (string, error) { return "", notImplemented() }
