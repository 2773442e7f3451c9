package decoder

// inputCursor resolves the two input layouts component H supports —
// non-muxed (n parallel streams, one sample per stream per step) and muxed
// (one interleaved stream, n samples per step) — behind a single per-step
// accessor, and tracks how many trellis steps this call has consumed. It is
// local to a single Decode call: symbol position never persists across
// calls, only the FSM's own time_count does.
type inputCursor struct {
	muxed   bool
	streams [][]float32
	n       int
	step    int
}

func newInputCursor(muxed bool, streams [][]float32, n int) *inputCursor {
	return &inputCursor{muxed: muxed, streams: streams, n: n}
}

// available reports whether a full trellis step's worth of samples remains.
func (c *inputCursor) available() bool {
	if c.muxed {
		return (c.step+1)*c.n <= len(c.streams[0])
	}
	for _, s := range c.streams {
		if c.step >= len(s) {
			return false
		}
	}
	return true
}

// sample returns the jth output sample of the current trellis step.
func (c *inputCursor) sample(j int) float32 {
	if c.muxed {
		return c.streams[0][c.step*c.n+j]
	}
	return c.streams[j][c.step]
}

func (c *inputCursor) sampleFunc() sampleFunc {
	return c.sample
}

func (c *inputCursor) advance() { c.step++ }

// consumed returns the number of symbols consumed on each input stream this
// call (component H's symbols_consumed).
func (c *inputCursor) consumed() int {
	if c.muxed {
		return c.step * c.n
	}
	return c.step
}
