// Command ptrouter-bench is a micro-benchmark harness (mirrors the
// teacher's plugin-bench): it drives CallPlugin in a tight loop against
// an in-process loopback target and reports throughput, without
// needing a real compiled plugin binary on disk.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"
	"unsafe"

	"github.com/Qhunliv13/NexusPlugins-sub000/internal/abi"
	"github.com/Qhunliv13/NexusPlugins-sub000/internal/dispatch"
	"github.com/Qhunliv13/NexusPlugins-sub000/internal/iface"
	"github.com/Qhunliv13/NexusPlugins-sub000/internal/ruleset"
	"github.com/Qhunliv13/NexusPlugins-sub000/internal/validate"
)

func uintptrOf(p *int32) uintptr { return uintptr(unsafe.Pointer(p)) }

// loopbackResolver answers every interface-state resolve with a fixed
// single-int32 signature, so the harness never needs a real dlopen'd
// target binary to measure dispatch overhead.
type loopbackResolver struct{}

func (loopbackResolver) Resolve(pluginName, pluginPath, ifaceName string) (iface.Signature, error) {
	return iface.Signature{
		FnPtr:       1,
		ParamTags:   []abi.Tag{abi.TagInt32},
		ReturnClass: abi.ReturnInteger,
		ReturnSize:  4,
	}, nil
}

// loopbackInvoker stands in for the platform trampolines: it ignores
// the packed argument block and always returns a fixed result, the
// cheapest possible target for measuring the engine's own overhead
// rather than a real call's.
type loopbackInvoker struct{}

func (loopbackInvoker) InvokeInteger(fn, packPtr uintptr) int64        { return 0 }
func (loopbackInvoker) InvokeFloat(fn, packPtr uintptr) float32        { return 0 }
func (loopbackInvoker) InvokeDouble(fn, packPtr uintptr) float64       { return 0 }
func (loopbackInvoker) InvokeStructSmall(fn, packPtr, outPtr uintptr)  {}
func (loopbackInvoker) InvokeStructLarge(fn, packPtr, outPtr uintptr) {}

const ruleFile = `
[TransferRule_0]
SourcePlugin=bench
SourceInterface=emit
SourceParamIndex=0
TargetPlugin=benchtarget
TargetInterface=sink
TargetParamIndex=0
TransferMode=unicast
Enabled=true
`

func main() {
	iterations := flag.Int("n", 200000, "number of CallPlugin iterations to run")
	flag.Parse()

	tmp, err := os.CreateTemp("", "ptrouter-bench-*.nxpt")
	if err != nil {
		fmt.Fprintln(os.Stderr, "bench: create rule file:", err)
		os.Exit(1)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.WriteString(ruleFile); err != nil {
		fmt.Fprintln(os.Stderr, "bench: write rule file:", err)
		os.Exit(1)
	}
	tmp.Close()

	store := ruleset.New(1)
	if _, err := store.LoadRules(tmp.Name()); err != nil {
		fmt.Fprintln(os.Stderr, "bench: load rules:", err)
		os.Exit(1)
	}

	table := iface.New(loopbackResolver{}, 1)
	ignore := validate.NewIgnoreList(nil)
	validator := validate.New(nil, nil, ignore, false) // disabled, so fs/prober are never touched
	d := dispatch.New(store, table, loopbackInvoker{}, validator)

	var value int32 = 42

	start := time.Now()
	failures := 0
	for i := 0; i < *iterations; i++ {
		if rc := d.CallPlugin("bench", "emit", 0, uintptrOf(&value)); rc != 0 {
			failures++
		}
	}
	elapsed := time.Since(start)

	fmt.Printf("iterations: %d\n", *iterations)
	fmt.Printf("failures:   %d\n", failures)
	fmt.Printf("elapsed:    %s\n", elapsed)
	fmt.Printf("throughput: %.0f calls/sec\n", float64(*iterations)/elapsed.Seconds())
}
