// Command ptrouter is the engine's own c-shared entrypoint: it exposes
// TransferPointer and CallPlugin to whatever host process dlopen's
// this library, answers the same plugin-metadata surface every target
// must expose, and runs the entrypoint glue that locates its own rule
// file and chain-loads the rest on library load.
package main

/*
#include <stdint.h>
#include <stddef.h>
*/
import "C"

import (
	"unsafe"

	"go.uber.org/zap"

	"github.com/Qhunliv13/NexusPlugins-sub000/internal/engine"
	"github.com/Qhunliv13/NexusPlugins-sub000/internal/metadata"
	"github.com/Qhunliv13/NexusPlugins-sub000/internal/pathx"
	"github.com/Qhunliv13/NexusPlugins-sub000/internal/platform"
	"github.com/Qhunliv13/NexusPlugins-sub000/internal/rtlog"
)

var (
	eng *engine.Engine

	pluginNameC    = C.CString(metadata.PluginName)
	pluginVersionC = C.CString(metadata.PluginVersion)
	interfaceNamesC []*C.char
)

func init() {
	interfaceNamesC = make([]*C.char, len(metadata.Interfaces))
	for i, ifc := range metadata.Interfaces {
		interfaceNamesC[i] = C.CString(ifc.Name)
	}

	logger, _ := zap.NewProduction()
	if logger != nil {
		rtlog.SetLogger(logger)
	}

	selfPath, err := platform.SelfPath()
	if err != nil {
		rtlog.Warn("could not resolve own library path, skipping bootstrap", zap.Error(err))
		return
	}
	rulePath := pathx.RuleFilePath(selfPath)

	e, err := engine.Load(rulePath)
	if err != nil {
		rtlog.Warn("failed to load own rule file", zap.String("path", rulePath), zap.Error(err))
		return
	}
	eng = e

	if err := eng.Bootstrap(); err != nil {
		rtlog.Warn("bootstrap failed", zap.Error(err))
	}
}

//export TransferPointer
func TransferPointer(ptr unsafe.Pointer, typeTag C.int, typeName *C.char, size C.size_t) C.int {
	if eng == nil {
		return -1
	}
	name := ""
	if typeName != nil {
		name = C.GoString(typeName)
	}
	return C.int(eng.Dispatcher.TransferPointer(uintptr(ptr), int32(typeTag), name, uint64(size)))
}

//export CallPlugin
func CallPlugin(srcPlugin, srcIface *C.char, paramIndex C.int, valuePtr unsafe.Pointer) C.int {
	if eng == nil {
		return -1
	}
	return C.int(eng.Dispatcher.CallPlugin(C.GoString(srcPlugin), C.GoString(srcIface), int(paramIndex), uintptr(valuePtr)))
}

//export Shutdown
func Shutdown() {
	if eng != nil {
		eng.Close()
	}
}

//export pt_plugin_name
func pt_plugin_name() *C.char { return pluginNameC }

//export pt_plugin_version
func pt_plugin_version() *C.char { return pluginVersionC }

//export pt_interface_count
func pt_interface_count() C.int32_t { return C.int32_t(len(metadata.Interfaces)) }

//export pt_interface_name
func pt_interface_name(idx C.int32_t) *C.char {
	i := int(idx)
	if i < 0 || i >= len(interfaceNamesC) {
		return nil
	}
	return interfaceNamesC[i]
}

//export pt_interface_param_count
func pt_interface_param_count(idx C.int32_t) C.int32_t {
	if i := int(idx); i >= 0 && i < len(metadata.Interfaces) {
		return C.int32_t(len(metadata.Interfaces[i].ParamTags))
	}
	return 0
}

//export pt_interface_variadic
func pt_interface_variadic(idx C.int32_t) C.int32_t {
	if i := int(idx); i >= 0 && i < len(metadata.Interfaces) && metadata.Interfaces[i].Variadic {
		return 1
	}
	return 0
}

//export pt_interface_min_param_count
func pt_interface_min_param_count(idx C.int32_t) C.int32_t {
	if i := int(idx); i >= 0 && i < len(metadata.Interfaces) {
		return C.int32_t(metadata.Interfaces[i].MinParamCount)
	}
	return 0
}

//export pt_interface_return_class
func pt_interface_return_class(idx C.int32_t) C.int32_t {
	if i := int(idx); i >= 0 && i < len(metadata.Interfaces) {
		return C.int32_t(metadata.Interfaces[i].ReturnClass)
	}
	return 0
}

//export pt_interface_return_size
func pt_interface_return_size(idx C.int32_t) C.int32_t {
	if i := int(idx); i >= 0 && i < len(metadata.Interfaces) {
		return C.int32_t(metadata.Interfaces[i].ReturnSize)
	}
	return 0
}

//export pt_param_tag
func pt_param_tag(ifaceIdx, paramIdx C.int32_t) C.int32_t {
	return C.int32_t(metadata.ParamTag(int(ifaceIdx), int(paramIdx)))
}

func main() {
	// Built as a c-shared library; main is required but never called.
}
