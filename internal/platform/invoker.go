package platform

// Trampolines adapts the package-level invoke functions (cgo_unix.go /
// cgo_other.go) into dispatch.Invoker's method-set shape, so the engine
// can wire the platform shim in without the platform package needing to
// import the dispatcher.
type Trampolines struct{}

func (Trampolines) InvokeInteger(fn, packPtr uintptr) int64 { return InvokeInteger(fn, packPtr) }
func (Trampolines) InvokeFloat(fn, packPtr uintptr) float32 { return InvokeFloat(fn, packPtr) }
func (Trampolines) InvokeDouble(fn, packPtr uintptr) float64 { return InvokeDouble(fn, packPtr) }
func (Trampolines) InvokeStructSmall(fn, packPtr, outPtr uintptr) {
	InvokeStructSmall(fn, packPtr, outPtr)
}
func (Trampolines) InvokeStructLarge(fn, packPtr, outPtr uintptr) {
	InvokeStructLarge(fn, packPtr, outPtr)
}
