package dispatch

import (
	"runtime"
	"unsafe"

	"go.uber.org/zap"

	"github.com/Qhunliv13/NexusPlugins-sub000/internal/abi"
	"github.com/Qhunliv13/NexusPlugins-sub000/internal/errkind"
	"github.com/Qhunliv13/NexusPlugins-sub000/internal/iface"
	"github.com/Qhunliv13/NexusPlugins-sub000/internal/pack"
	"github.com/Qhunliv13/NexusPlugins-sub000/internal/rterr"
	"github.com/Qhunliv13/NexusPlugins-sub000/internal/rtlog"
)

// invokeRow guards reentry, builds and serializes the pack, dispatches
// through the trampoline keyed on return classification, and re-routes
// the return value as a new source event.
func (d *Dispatcher) invokeRow(row *iface.Row, pluginPath string) error {
	if row.InUse {
		return rterr.Newf(errkind.BadArg, "reentry into row %s.%s while in use", row.Plugin, row.Interface)
	}

	if !row.ValidationDone {
		row.ValidationDone = true
		if err := d.Validator.Validate(pluginPath, row.Signature); err != nil {
			return rterr.Wrapf(err, errkind.ProbeFailed, "validating %s.%s", row.Plugin, row.Interface)
		}
	}

	row.InUse = true
	defer func() { row.InUse = false }()

	slots := make([]pack.Slot, 0, len(row.Params))
	for _, p := range row.Params {
		if p.Ready {
			slots = append(slots, p.Value)
		}
	}

	pk, err := pack.New(slots)
	if err != nil {
		return rterr.Wrap(err, errkind.BadArg, "building parameter pack")
	}
	block, err := pack.Serialize(pk)
	if err != nil {
		return rterr.Wrap(err, errkind.BadArg, "serializing parameter pack")
	}
	packPtr := uintptr(unsafe.Pointer(&block[0]))

	var (
		returnPtr  uintptr
		returnSize uint64
		returnBuf  []byte // kept alive until after the re-dispatch below reads through returnPtr
		logged     zap.Field
	)

	switch row.Signature.ReturnClass {
	case abi.ReturnInteger:
		ret := d.Invoker.InvokeInteger(row.Signature.FnPtr, packPtr)
		buf := make([]byte, 8)
		putLE64(buf, uint64(ret))
		returnPtr, returnSize, returnBuf = uintptr(unsafe.Pointer(&buf[0])), 8, buf
		logged = zap.Int64("return", ret)
	case abi.ReturnFloat:
		ret := d.Invoker.InvokeFloat(row.Signature.FnPtr, packPtr)
		buf := make([]byte, 4)
		putLE32(buf, floatBits(ret))
		returnPtr, returnSize, returnBuf = uintptr(unsafe.Pointer(&buf[0])), 4, buf
		logged = zap.Float32("return", ret)
	case abi.ReturnDouble:
		ret := d.Invoker.InvokeDouble(row.Signature.FnPtr, packPtr)
		buf := make([]byte, 8)
		putLE64(buf, doubleBits(ret))
		returnPtr, returnSize, returnBuf = uintptr(unsafe.Pointer(&buf[0])), 8, buf
		logged = zap.Float64("return", ret)
	case abi.ReturnStructSmall, abi.ReturnStructLarge:
		size := row.Signature.ReturnSize
		if size <= 0 {
			size = 16
		}
		out := make([]byte, size)
		outPtr := uintptr(unsafe.Pointer(&out[0]))
		if row.Signature.ReturnClass == abi.ReturnStructSmall {
			d.Invoker.InvokeStructSmall(row.Signature.FnPtr, packPtr, outPtr)
		} else {
			d.Invoker.InvokeStructLarge(row.Signature.FnPtr, packPtr, outPtr)
		}
		returnPtr, returnSize, returnBuf = outPtr, uint64(size), out
		logged = zap.Int("return_size", size)
	}

	rtlog.Info("invoked target interface",
		zap.String("plugin", row.Plugin),
		zap.String("interface", row.Interface),
		logged)

	row.Reset()

	d.dispatchEvent(row.Plugin, row.Interface, -1, returnPtr, returnSize)
	runtime.KeepAlive(returnBuf)

	return nil
}

func putLE64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
}

func putLE32(b []byte, v uint32) {
	for i := 0; i < 4; i++ {
		b[i] = byte(v >> (8 * i))
	}
}
