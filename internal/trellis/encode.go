package trellis

import (
	"math/bits"

	"github.com/dbehnke/viterbi-decoder/internal/bitpack"
)

// Encode runs the reference convolutional encoder described by spec over
// nBits information bits read LSB-first from data, appending ConstraintLength-1
// zero-tail steps when spec.Terminate is set. It returns noise-free,
// BPSK-mapped (±1.0) soft samples, interleaved (muxed) one trellis step at a
// time. It is grounded on pkg/ysf/convolution.go's Encode: the same
// shift-register push-through, just emitting float32 ±1 symbols instead of
// packed output bits.
func Encode(spec Spec, data []byte, nBits int) []float32 {
	m := spec.delays()
	state := 0
	totalSteps := nBits
	if spec.Terminate {
		totalSteps += m
	}

	out := make([]float32, 0, totalSteps*len(spec.Generators))
	for i := 0; i < totalSteps; i++ {
		var d int
		if i < nBits {
			if bitpack.ReadBit(data, i) {
				d = 1
			}
		}
		// tail steps (i >= nBits) always use input 0

		full := (d << uint(m)) | state
		for _, g := range spec.Generators {
			if bits.OnesCount(uint(full&g))&1 == 1 {
				out = append(out, 1.0)
			} else {
				out = append(out, -1.0)
			}
		}

		if m > 0 {
			state = (d << uint(m-1)) | (state >> 1)
		}
	}
	return out
}
