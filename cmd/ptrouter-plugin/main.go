// Command ptrouter-plugin is a minimal example target plugin: a
// c-shared library exporting the plugin-metadata surface every target
// must expose, plus one real interface, DoubleInt32, for manual
// end-to-end testing of the routing engine.
package main

/*
#include <stdint.h>
#include <stddef.h>

typedef struct {
	uint32_t tag;
	uint32_t _pad;
	uint64_t size;
	uint64_t payload;
} pt_slot_t;

typedef struct {
	int64_t    count;
	pt_slot_t* slots;
} pt_pack_header_t;
*/
import "C"

import "unsafe"

const (
	pluginName    = "ExamplePlugin"
	pluginVersion = "1.0.0"
)

// tag values mirror internal/abi's closed set; duplicated here rather
// than imported because this binary is a standalone target plugin, not
// a consumer of the engine's own packages.
const tagInt32 = 1

type interfaceDesc struct {
	name          string
	paramTags     []int32
	minParamCount int
	returnClass   int32
	returnSize    int32
}

var interfaces = []interfaceDesc{
	{name: "DoubleInt32", paramTags: []int32{tagInt32}, minParamCount: 1, returnClass: 0, returnSize: 4},
}

var (
	pluginNameC     = C.CString(pluginName)
	pluginVersionC  = C.CString(pluginVersion)
	interfaceNamesC []*C.char
)

func init() {
	interfaceNamesC = make([]*C.char, len(interfaces))
	for i, d := range interfaces {
		interfaceNamesC[i] = C.CString(d.name)
	}
}

//export pt_plugin_name
func pt_plugin_name() *C.char { return pluginNameC }

//export pt_plugin_version
func pt_plugin_version() *C.char { return pluginVersionC }

//export pt_interface_count
func pt_interface_count() C.int32_t { return C.int32_t(len(interfaces)) }

//export pt_interface_name
func pt_interface_name(idx C.int32_t) *C.char {
	if i := int(idx); i >= 0 && i < len(interfaceNamesC) {
		return interfaceNamesC[i]
	}
	return nil
}

//export pt_interface_param_count
func pt_interface_param_count(idx C.int32_t) C.int32_t {
	if i := int(idx); i >= 0 && i < len(interfaces) {
		return C.int32_t(len(interfaces[i].paramTags))
	}
	return 0
}

//export pt_interface_variadic
func pt_interface_variadic(idx C.int32_t) C.int32_t { return 0 }

//export pt_interface_min_param_count
func pt_interface_min_param_count(idx C.int32_t) C.int32_t {
	if i := int(idx); i >= 0 && i < len(interfaces) {
		return C.int32_t(interfaces[i].minParamCount)
	}
	return 0
}

//export pt_interface_return_class
func pt_interface_return_class(idx C.int32_t) C.int32_t {
	if i := int(idx); i >= 0 && i < len(interfaces) {
		return C.int32_t(interfaces[i].returnClass)
	}
	return 0
}

//export pt_interface_return_size
func pt_interface_return_size(idx C.int32_t) C.int32_t {
	if i := int(idx); i >= 0 && i < len(interfaces) {
		return C.int32_t(interfaces[i].returnSize)
	}
	return 0
}

//export pt_param_tag
func pt_param_tag(ifaceIdx, paramIdx C.int32_t) C.int32_t {
	i, p := int(ifaceIdx), int(paramIdx)
	if i < 0 || i >= len(interfaces) {
		return 0
	}
	tags := interfaces[i].paramTags
	if p < 0 || p >= len(tags) {
		return 0
	}
	return C.int32_t(tags[p])
}

// DoubleInt32 reads the single int32 argument out of the packed
// parameter block and returns it doubled, through the integer
// trampoline shape.
//
//export DoubleInt32
func DoubleInt32(packPtr unsafe.Pointer) C.int64_t {
	hdr := (*C.pt_pack_header_t)(packPtr)
	if hdr.count < 1 {
		return 0
	}
	slots := unsafe.Slice((*C.pt_slot_t)(unsafe.Pointer(hdr.slots)), int(hdr.count))
	v := int32(slots[0].payload)
	return C.int64_t(v * 2)
}

func main() {
	// Built as a c-shared library; main is required but never called.
}
