package dispatch

import "math"

func floatBits(f float32) uint32  { return math.Float32bits(f) }
func doubleBits(f float64) uint64 { return math.Float64bits(f) }
