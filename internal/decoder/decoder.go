// Package decoder implements the soft-decision Viterbi trellis traversal:
// the three-phase walk (ramp-up, steady state, termination tail), per-step
// metric accumulation with pruning, traceback maintenance over a full
// block, and a streaming output layer that can emit partial blocks. It
// consumes a pre-built TrellisView and emits bits; it does not build
// trellises, define code polynomials, or schedule I/O.
package decoder

import "fmt"

// Decoder is a single-threaded, synchronous soft-decision Viterbi decoder.
// An instance owns its state exclusively; calls on the same instance are
// not reentrant. Multiple instances may run concurrently on disjoint
// inputs — they share only the immutable TrellisView.
type Decoder struct {
	trellis TrellisView
	muxed   bool

	s, iComb, n, m, blockBits, totalSteps int
	terminate                             bool

	metrics *metricArrays
	active  *activeSet
	gr      *grid
	touched []bool

	saveBuffer     [][]byte
	savedBits      int
	savedBitsStart int

	fsmState  fsmState
	timeCount int
}

// New constructs a Decoder bound to trellis. samplePrecision is accepted
// only to validate construction inputs per spec.md §6 (it does not change
// decoding behavior: the decoder's metrics are plain float64 accumulations
// regardless of the nominal sample width). muxInputs selects whether
// Decode's inputs are a single interleaved stream or n parallel streams.
func New(trellis TrellisView, samplePrecision int, muxInputs bool) (*Decoder, error) {
	if trellis == nil {
		return nil, invalidArgument("trellis must not be nil")
	}
	if samplePrecision < 0 || samplePrecision > 32 {
		return nil, invalidArgument("sample_precision (%d) must be between 0 and 32", samplePrecision)
	}

	blockBits := trellis.BlockBits()
	if blockBits <= 0 {
		return nil, invalidArgument("block_bits must be positive, got %d", blockBits)
	}
	if blockBits > MaxBlockSizeBits {
		return nil, invalidArgument("block_bits (%d) exceeds MAX_BLOCK_SIZE_BITS (%d)", blockBits, MaxBlockSizeBits)
	}

	n := trellis.N()
	k := trellis.K()
	if k > MaxStreams {
		return nil, invalidArgument("k (%d) exceeds MAX_STREAMS (%d)", k, MaxStreams)
	}
	if !muxInputs && n > MaxStreams {
		return nil, invalidArgument("n (%d) exceeds MAX_STREAMS (%d) for non-muxed input", n, MaxStreams)
	}

	s := trellis.S()
	iComb := trellis.I()
	m := trellis.M()
	terminate := trellis.Terminate()

	if err := verifyRampUp(trellis, s, iComb, m); err != nil {
		return nil, err
	}

	totalSteps := blockBits
	if terminate {
		totalSteps += m
	}

	saveBuffer := make([][]byte, k)
	saveBufBytes := blockBits/BitsPerByte + 2
	for i := range saveBuffer {
		saveBuffer[i] = make([]byte, saveBufBytes)
	}

	d := &Decoder{
		trellis:    trellis,
		muxed:      muxInputs,
		s:          s,
		iComb:      iComb,
		n:          n,
		m:          m,
		blockBits:  blockBits,
		totalSteps: totalSteps,
		terminate:  terminate,
		metrics:    newMetricArrays(s),
		active:     newActiveSet(s),
		gr:         newGrid(s, totalSteps),
		touched:    make([]bool, s),
		saveBuffer: saveBuffer,
		fsmState:   fsmInit,
	}
	return d, nil
}

// verifyRampUp checks Q1 (spec.md §9): the UP phase's unconditional write is
// correct only if every to-state is touched at most once per UP step. This
// simulates ramp-up reachability purely from Branch() calls, starting from
// state 0, for up to m steps.
func verifyRampUp(trellis TrellisView, s, iComb, m int) error {
	active := []int{0}
	for step := 0; step < m; step++ {
		seen := make(map[int]bool, len(active)*iComb)
		next := make([]int, 0, len(active)*iComb)
		for _, from := range active {
			for q := 0; q < iComb; q++ {
				to, _ := trellis.Branch(from, q)
				if seen[to] {
					return invalidArgument(
						"trellis fails the UP-phase uniqueness requirement (Q1): state %d reached twice at ramp-up step %d",
						to, step)
				}
				seen[to] = true
				next = append(next, to)
			}
		}
		active = next
		if len(active) > s {
			return invalidArgument("trellis ramp-up reaches more than S=%d states at step %d", s, step)
		}
	}
	return nil
}

// Decode consumes soft symbols and produces decoded bits, honoring
// outputByteBudget per call (component H, streaming glue). inputs holds a
// single interleaved stream when the decoder was constructed with
// muxInputs=true, or trellis.N() parallel streams otherwise. outputs must
// hold trellis.K() byte slices of length >= outputByteBudget.
//
// It returns, per output stream, the number of bits actually produced, and
// per input stream, the number of symbols actually consumed. It never
// over-consumes or under-consumes input by more than one trellis step, and
// never blocks: it returns as soon as input is exhausted mid-block or the
// output budget is exhausted mid-OUTPUT.
func (d *Decoder) Decode(inputs [][]float32, outputByteBudget int, outputs [][]byte) (bitsProduced, symbolsConsumed []int) {
	k := d.trellis.K()
	if len(outputs) != k {
		illegalState("Decode called with %d output streams, trellis has k=%d", len(outputs), k)
	}

	bufNdx, bitShift, satisfied := d.drainSaveBuffer(outputs, outputByteBudget)

	cursor := newInputCursor(d.muxed, inputs, d.n)

	if !satisfied {
		for bufNdx < outputByteBudget {
			switch d.fsmState {
			case fsmInit:
				d.doInit()
			case fsmUp:
				if !d.stepUp(cursor) {
					goto done
				}
			case fsmMiddle:
				if !d.stepMiddle(cursor) {
					goto done
				}
			case fsmTerm:
				if !d.stepTerm(cursor) {
					goto done
				}
			case fsmOutput:
				bufNdx, bitShift = d.emitBlock(bufNdx, bitShift, outputByteBudget, outputs)
				d.fsmState = fsmInit
			default:
				illegalState("unknown fsm state %v", d.fsmState)
			}
		}
	}
done:

	bits := bufNdx*BitsPerByte + bitShift
	bitsProduced = make([]int, k)
	for i := range bitsProduced {
		bitsProduced[i] = bits
	}

	consumed := cursor.consumed()
	streamCount := len(inputs)
	symbolsConsumed = make([]int, streamCount)
	for i := range symbolsConsumed {
		symbolsConsumed[i] = consumed
	}

	return bitsProduced, symbolsConsumed
}

// String renders a compact, human-readable snapshot of the decoder's
// internal FSM position, useful for logging around a stuck or suspended
// call.
func (d *Decoder) String() string {
	return fmt.Sprintf("decoder{state=%s time=%d/%d saved_bits=%d}", d.fsmState, d.timeCount, d.totalSteps, d.savedBits)
}
