// Package metadata is this engine's own answer to the plugin-metadata
// surface it demands of every target it dispatches into.
package metadata

import "github.com/Qhunliv13/NexusPlugins-sub000/internal/abi"

// PluginName and PluginVersion are this engine's answers to the
// pt_plugin_name/pt_plugin_version metadata symbols.
const (
	PluginName    = "PointerTransferPlugin"
	PluginVersion = "1.0.0"
)

// Interface describes one of this engine's two exported entry points
// through the same shape the resolver expects of any target plugin.
type Interface struct {
	Name          string
	ParamTags     []abi.Tag
	Variadic      bool
	MinParamCount int
	ReturnClass   abi.ReturnClass
	ReturnSize    int
}

// Interfaces lists TransferPointer and CallPlugin, in the
// fixed order their index is exposed through pt_interface_name.
var Interfaces = []Interface{
	{
		Name:          "TransferPointer",
		ParamTags:     []abi.Tag{abi.TagPointer, abi.TagInt32, abi.TagString, abi.TagInt64},
		MinParamCount: 4,
		ReturnClass:   abi.ReturnInteger,
		ReturnSize:    4,
	},
	{
		Name:          "CallPlugin",
		ParamTags:     []abi.Tag{abi.TagString, abi.TagString, abi.TagInt32, abi.TagPointer},
		MinParamCount: 4,
		ReturnClass:   abi.ReturnInteger,
		ReturnSize:    4,
	},
}

// IndexOf returns the index of the named interface, or -1.
func IndexOf(name string) int {
	for i, ifc := range Interfaces {
		if ifc.Name == name {
			return i
		}
	}
	return -1
}

// ParamTag returns the tag of parameter paramIdx of interface ifaceIdx,
// or TagUnknown if either index is out of range.
func ParamTag(ifaceIdx, paramIdx int) abi.Tag {
	if ifaceIdx < 0 || ifaceIdx >= len(Interfaces) {
		return abi.TagUnknown
	}
	tags := Interfaces[ifaceIdx].ParamTags
	if paramIdx < 0 || paramIdx >= len(tags) {
		return abi.TagUnknown
	}
	return tags[paramIdx]
}
