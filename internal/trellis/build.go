package trellis

import "math/bits"

// Branch is one outgoing edge of the trellis: from a (state, input) pair to
// a successor state, carrying the BPSK-mapped expected output pattern.
type Branch struct {
	ToState  int
	Expected []float32
}

// Table is a concrete, read-only trellis built from a Spec. It implements
// the decoder.TrellisView contract (component A of the spec): number of
// states, number of input combinations, outputs per branch, delay length,
// block size, termination flag, and the branch function itself.
type Table struct {
	spec     Spec
	states   int
	inputs   int // I = 2^k; this builder only produces k=1 trellises
	outputs  int
	delays   int
	branches [][]Branch // branches[from_state][input_word]
}

// Build enumerates every (from_state, input_word) branch of a rate-1/n
// convolutional encoder described by spec, running the shift-register
// generator polynomials the way pkg/ysf's YSFConvolution.Encode does.
//
// Only k=1 (one code input per trellis step) is supported: the octal
// generator-polynomial notation this builder understands describes a single
// shift register shared by all outputs. A trellis with k>1 code inputs must
// be constructed some other way and handed to the decoder directly as a
// decoder.TrellisView.
func Build(spec Spec) (*Table, error) {
	if err := spec.validate(); err != nil {
		return nil, err
	}

	m := spec.delays()
	states := 1 << uint(m)
	outputs := len(spec.Generators)

	t := &Table{
		spec:     spec,
		states:   states,
		inputs:   2,
		outputs:  outputs,
		delays:   m,
		branches: make([][]Branch, states),
	}

	seen := make([]bool, states) // not read: the ramp-up uniqueness check (Q1) is made by decoder.New

	for s := 0; s < states; s++ {
		t.branches[s] = make([]Branch, 2)
		for d := 0; d < 2; d++ {
			full := (d << uint(m)) | s
			to := (d << uint(m-1)) | (s >> 1)
			if m == 0 {
				to = 0
			}

			expected := make([]float32, outputs)
			for o, g := range spec.Generators {
				if bits.OnesCount(uint(full&g))&1 == 1 {
					expected[o] = 1.0
				} else {
					expected[o] = -1.0
				}
			}
			t.branches[s][d] = Branch{ToState: to, Expected: expected}
		}
	}
	_ = seen // reserved for future multi-input builders; k=1 branches are provably single-valued per to-state within a ramp-up step

	return t, nil
}

// S returns the number of trellis states.
func (t *Table) S() int { return t.states }

// I returns the number of input-word combinations (2^k).
func (t *Table) I() int { return t.inputs }

// K returns the number of code inputs per trellis step. This builder only
// produces k=1 trellises.
func (t *Table) K() int { return 1 }

// N returns the number of output bits per trellis step.
func (t *Table) N() int { return t.outputs }

// M returns the total delay-line length (tail length when terminating).
func (t *Table) M() int { return t.delays }

// BlockBits returns the number of information bits per block.
func (t *Table) BlockBits() int { return t.spec.BlockBits }

// Terminate reports whether the trellis uses zero-tail termination.
func (t *Table) Terminate() bool { return t.spec.Terminate }

// Branch returns the successor state and expected output pattern for the
// given (from_state, input_word) pair.
func (t *Table) Branch(fromState, input int) (toState int, expected []float32) {
	b := t.branches[fromState][input]
	return b.ToState, b.Expected
}
