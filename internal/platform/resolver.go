package platform

import (
	"runtime"

	"github.com/Qhunliv13/NexusPlugins-sub000/internal/abi"
	"github.com/Qhunliv13/NexusPlugins-sub000/internal/errkind"
	"github.com/Qhunliv13/NexusPlugins-sub000/internal/iface"
	"github.com/Qhunliv13/NexusPlugins-sub000/internal/rterr"
)

// metadata symbol names every target plugin is expected to export.
const (
	symPluginName          = "pt_plugin_name"
	symPluginVersion       = "pt_plugin_version"
	symInterfaceCount      = "pt_interface_count"
	symInterfaceName       = "pt_interface_name"
	symInterfaceParamCount = "pt_interface_param_count"
	symInterfaceVariadic   = "pt_interface_variadic"
	symInterfaceMinParams  = "pt_interface_min_param_count"
	symInterfaceReturnCls  = "pt_interface_return_class"
	symInterfaceReturnSize = "pt_interface_return_size"
	symParamTag            = "pt_param_tag"
)

// Resolver implements iface.Resolver over the platform shim: it
// resolves a target plugin's binary (cached by name), the callable
// symbol for the requested interface, and that interface's calling
// shape through the plugin's own metadata surface.
type Resolver struct {
	Handles *HandleCache
}

// NewResolver creates a Resolver backed by a fresh handle cache.
func NewResolver() *Resolver {
	return &Resolver{Handles: NewHandleCache()}
}

// Resolve implements iface.Resolver.
func (r *Resolver) Resolve(pluginName, pluginPath, ifaceName string) (iface.Signature, error) {
	handle, err := r.Handles.Get(pluginName, pluginPath)
	if err != nil {
		return iface.Signature{}, rterr.Wrapf(err, errkind.FileOpen, "loading plugin %s", pluginName)
	}

	fnPtr, err := ResolveSymbol(handle, ifaceName)
	if err != nil {
		return iface.Signature{}, rterr.Wrapf(err, errkind.BadArg, "resolving interface %s in plugin %s", ifaceName, pluginName)
	}

	idx, paramCount, variadic, minParams, returnClassRaw, returnSize, err := r.describeInterface(handle, ifaceName)
	if err != nil {
		return iface.Signature{}, err
	}

	paramTagFn, err := ResolveSymbol(handle, symParamTag)
	if err != nil {
		return iface.Signature{}, rterr.Wrapf(err, errkind.BadArg, "plugin %s missing %s", pluginName, symParamTag)
	}
	tags := make([]abi.Tag, paramCount)
	for p := 0; p < paramCount; p++ {
		tags[p] = abi.Tag(ParamTag(paramTagFn, idx, int32(p)))
	}

	return iface.Signature{
		FnPtr:         fnPtr,
		ParamTags:     tags,
		Variadic:      variadic,
		MinParamCount: minParams,
		ReturnClass:   classifyReturn(abi.ReturnClass(returnClassRaw), int(returnSize)),
		ReturnSize:    int(returnSize),
	}, nil
}

func (r *Resolver) describeInterface(handle Handle, ifaceName string) (idx, paramCount int, variadic bool, minParams int, returnClass, returnSize int32, err error) {
	countFn, err := ResolveSymbol(handle, symInterfaceCount)
	if err != nil {
		return 0, 0, false, 0, 0, 0, rterr.Wrapf(err, errkind.BadArg, "missing %s", symInterfaceCount)
	}
	nameFn, err := ResolveSymbol(handle, symInterfaceName)
	if err != nil {
		return 0, 0, false, 0, 0, 0, rterr.Wrapf(err, errkind.BadArg, "missing %s", symInterfaceName)
	}

	count := InterfaceCount(countFn)
	found := -1
	for i := int32(0); i < count; i++ {
		if InterfaceName(nameFn, i) == ifaceName {
			found = int(i)
			break
		}
	}
	if found < 0 {
		return 0, 0, false, 0, 0, 0, rterr.Newf(errkind.BadArg, "interface %s not found in plugin metadata", ifaceName)
	}

	paramCountFn, _ := ResolveSymbol(handle, symInterfaceParamCount)
	variadicFn, _ := ResolveSymbol(handle, symInterfaceVariadic)
	minParamsFn, _ := ResolveSymbol(handle, symInterfaceMinParams)
	returnClsFn, _ := ResolveSymbol(handle, symInterfaceReturnCls)
	returnSizeFn, _ := ResolveSymbol(handle, symInterfaceReturnSize)

	pc := int(InterfaceParamCount(paramCountFn, int32(found)))
	v := InterfaceVariadic(variadicFn, int32(found))
	mp := int(InterfaceMinParamCount(minParamsFn, int32(found)))
	rc := InterfaceReturnClass(returnClsFn, int32(found))
	rs := InterfaceReturnSize(returnSizeFn, int32(found))

	return found, pc, v, mp, rc, rs, nil
}

// classifyReturn re-classifies an initial struct_small guess into
// struct_large when the declared return size exceeds the host ABI's
// inline-struct threshold: 8 bytes on Windows x64, 16 bytes on SysV.
// Integer/float/double classifications pass through unchanged.
func classifyReturn(raw abi.ReturnClass, size int) abi.ReturnClass {
	if raw != abi.ReturnStructSmall {
		return raw
	}
	threshold := 16
	if runtime.GOOS == "windows" {
		threshold = 8
	}
	if size > threshold {
		return abi.ReturnStructLarge
	}
	return abi.ReturnStructSmall
}
