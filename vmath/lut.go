package vmath

import (
	"math"
)

// LUTSize is the angular resolution of the sin/cos tables
const (
	LUTSize = 1024
	LUTMask = LUTSize - 1
)

// SinLUT and CosLUT cover one full turn; indexed by turns, not radians
var (
	SinLUT [LUTSize]float64
	CosLUT [LUTSize]float64
)

func init() {
	for i := 0; i < LUTSize; i++ {
		rad := 2.0 * math.Pi * float64(i) / LUTSize
		SinLUT[i] = math.Sin(rad)
		CosLUT[i] = math.Cos(rad)
	}
}

// SinTurns returns sin of an angle expressed in turns (1.0 = full circle)
// Table lookup; adequate for particle orbits and pulsation, not for DSP
func SinTurns(turns float64) float64 {
	// Masking a negative index already lands on the positive residue
	return SinLUT[int(turns*LUTSize)&LUTMask]
}

// CosTurns returns cos of an angle expressed in turns
func CosTurns(turns float64) float64 {
	return CosLUT[int(turns*LUTSize)&LUTMask]
}
