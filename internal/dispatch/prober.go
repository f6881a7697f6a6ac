package dispatch

import (
	"unsafe"

	"github.com/Qhunliv13/NexusPlugins-sub000/internal/abi"
	"github.com/Qhunliv13/NexusPlugins-sub000/internal/iface"
	"github.com/Qhunliv13/NexusPlugins-sub000/internal/pack"
)

// Prober implements validate.Prober over an Invoker: it builds an
// all-zero pack of the declared arity and calls through the trampoline
// for the declared return type, treating any non-zero result as
// failure.
type Prober struct {
	Invoker Invoker
}

// NewProber creates a Prober over invoker.
func NewProber(invoker Invoker) *Prober {
	return &Prober{Invoker: invoker}
}

// Probe implements validate.Prober.
func (p *Prober) Probe(sig iface.Signature) (bool, error) {
	slots := make([]pack.Slot, len(sig.ParamTags))
	for i, tag := range sig.ParamTags {
		slots[i] = pack.NewScalar(tag, 0, 8)
	}
	pk, err := pack.New(slots)
	if err != nil {
		return true, err
	}
	block, err := pack.Serialize(pk)
	if err != nil {
		return true, err
	}
	packPtr := uintptr(unsafe.Pointer(&block[0]))

	switch sig.ReturnClass {
	case abi.ReturnInteger:
		return p.Invoker.InvokeInteger(sig.FnPtr, packPtr) != 0, nil
	case abi.ReturnFloat:
		return p.Invoker.InvokeFloat(sig.FnPtr, packPtr) != 0, nil
	case abi.ReturnDouble:
		return p.Invoker.InvokeDouble(sig.FnPtr, packPtr) != 0, nil
	case abi.ReturnStructSmall, abi.ReturnStructLarge:
		size := sig.ReturnSize
		if size <= 0 {
			size = 16
		}
		out := make([]byte, size)
		outPtr := uintptr(unsafe.Pointer(&out[0]))
		if sig.ReturnClass == abi.ReturnStructSmall {
			p.Invoker.InvokeStructSmall(sig.FnPtr, packPtr, outPtr)
		} else {
			p.Invoker.InvokeStructLarge(sig.FnPtr, packPtr, outPtr)
		}
		for _, b := range out {
			if b != 0 {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, nil
	}
}
