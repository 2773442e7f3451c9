package decoder

// fsmState is the decoder's five-variant tagged enumeration (spec.md §4.E,
// §9): INIT -> UP -> MIDDLE -> TERM -> OUTPUT -> INIT. It is re-entrant — a
// single Decode call may suspend in UP/MIDDLE/TERM when input symbols run
// out, or leave OUTPUT having spilled a tail into the save buffer — and
// resumes in the same state on the next call.
type fsmState int

const (
	fsmInit fsmState = iota
	fsmUp
	fsmMiddle
	fsmTerm
	fsmOutput
)

func (s fsmState) String() string {
	switch s {
	case fsmInit:
		return "init"
	case fsmUp:
		return "up"
	case fsmMiddle:
		return "middle"
	case fsmTerm:
		return "term"
	case fsmOutput:
		return "output"
	default:
		return "unknown"
	}
}

// doInit resets the decoder to the start of a new block (spec.md §4.E,
// INIT). It is invoked on first use and after every completed OUTPUT.
func (d *Decoder) doInit() {
	d.metrics.g = 0
	d.active.seedInit()
	d.metrics.zeroFrom()
	d.timeCount = 0

	if d.m == 0 {
		d.fsmState = fsmMiddle
	} else {
		d.fsmState = fsmUp
	}
}

// stepUp runs one UP-phase trellis step (spec.md §4.E, UP): every currently
// active state is extended by all I input words. Because the trellis's
// construction guarantees (Q1, checked once at New) that each to-state is
// touched exactly once per UP step, the write is unconditional — no
// add-compare-select is needed here, unlike MIDDLE and TERM.
func (d *Decoder) stepUp(c *inputCursor) bool {
	if !c.available() {
		return false
	}

	prevActive := d.active.current()
	next := d.active.nextReset()
	from := d.metrics.from()
	to := d.metrics.to()

	for _, s := range prevActive {
		fm := from[s].metric
		for q := 0; q < d.iComb; q++ {
			toState, expected := d.trellis.Branch(s, q)
			metric := fm
			for j, e := range expected {
				metric += float64(c.sample(j)) * float64(e)
			}
			to[toState] = stateMetric{metric: metric, prevState: s, prevInput: q}
			next = append(next, toState)
			d.gr.set(d.timeCount+1, toState, s, q)
		}
	}
	d.active.sides[d.active.p^1] = next
	d.active.flip()
	d.metrics.flip()

	d.timeCount++
	c.advance()

	if d.timeCount == d.m {
		d.fsmState = fsmMiddle
	}
	return true
}

// stepMiddle runs one MIDDLE-phase trellis step (spec.md §4.E, MIDDLE): all
// S "from" states and all I inputs are add-compare-selected into the "to"
// states. Tie-breaking is deterministic: from_state ascending, then
// input_word ascending (the first-evaluated candidate wins exact ties).
func (d *Decoder) stepMiddle(c *inputCursor) bool {
	if !c.available() {
		return false
	}

	from := d.metrics.from()
	to := d.metrics.to()
	for i := range to {
		to[i] = stateMetric{metric: sentinelMetric}
	}

	bound := pruneBound(d.n, c.sampleFunc())

	for s := 0; s < d.s; s++ {
		fm := from[s].metric
		for q := 0; q < d.iComb; q++ {
			toState, expected := d.trellis.Branch(s, q)
			tm := to[toState].metric
			metric, skip := branchMetric(fm, tm, expected, c.sampleFunc(), bound)
			if skip {
				continue
			}
			if metric > tm {
				to[toState] = stateMetric{metric: metric, prevState: s, prevInput: q}
			}
		}
	}

	d.metrics.flip()
	newFrom := d.metrics.from()
	for st := 0; st < d.s; st++ {
		rec := newFrom[st]
		d.gr.set(d.timeCount+1, st, rec.prevState, rec.prevInput)
	}

	d.timeCount++
	c.advance()

	if d.timeCount == d.blockBits {
		if d.terminate {
			d.active.seedAll(d.s)
			d.fsmState = fsmTerm
		} else {
			d.fsmState = fsmOutput
		}
	}
	return true
}

// stepTerm runs one TERM-phase trellis step (spec.md §4.E, TERM): only the
// input-0 branch is evaluated per active state, forcing the encoder back
// toward state 0. Several predecessors can still collide on the same
// to-state (the active set contracts by a factor of I per step), so this
// remains an add-compare-select, just over a single input word.
func (d *Decoder) stepTerm(c *inputCursor) bool {
	if !c.available() {
		return false
	}

	prevActive := d.active.current()
	next := d.active.nextReset()
	from := d.metrics.from()
	to := d.metrics.to()
	for i := range to {
		to[i] = stateMetric{metric: sentinelMetric}
	}

	bound := pruneBound(d.n, c.sampleFunc())

	for _, s := range prevActive {
		toState, expected := d.trellis.Branch(s, 0)
		fm := from[s].metric
		tm := to[toState].metric
		metric, skip := branchMetric(fm, tm, expected, c.sampleFunc(), bound)
		if !skip && metric > tm {
			to[toState] = stateMetric{metric: metric, prevState: s, prevInput: 0}
		}
		if !d.touched[toState] {
			d.touched[toState] = true
			next = append(next, toState)
		}
	}
	for _, st := range next {
		d.touched[st] = false
	}
	d.active.sides[d.active.p^1] = next
	d.active.flip()
	d.metrics.flip()

	newFrom := d.metrics.from()
	for _, st := range d.active.current() {
		rec := newFrom[st]
		d.gr.set(d.timeCount+1, st, rec.prevState, rec.prevInput)
	}

	d.timeCount++
	c.advance()

	if d.timeCount == d.totalSteps {
		d.fsmState = fsmOutput
	}
	return true
}
