package decoder

// sentinelMetric is the large negative value a "to" state starts each step
// at; the first branch that lands on it always wins the add-compare-select
// (spec.md §4.B).
const sentinelMetric = -1e10

// stateMetric is a single state's path-metric record: the best metric seen
// so far at this time step, and the back-pointer (predecessor state, input
// label) that produced it.
type stateMetric struct {
	metric     float64
	prevState  int
	prevInput  int
}

// metricArrays is the ping-pong pair of per-state metric records (component
// B). g selects the "from" side; g^1 is always the "to" side being written
// during the current trellis step. Swapping sides is just flipping g — no
// data is ever copied.
type metricArrays struct {
	sides [2][]stateMetric
	g     int
}

func newMetricArrays(s int) *metricArrays {
	return &metricArrays{
		sides: [2][]stateMetric{
			make([]stateMetric, s),
			make([]stateMetric, s),
		},
	}
}

func (m *metricArrays) from() []stateMetric { return m.sides[m.g] }
func (m *metricArrays) to() []stateMetric   { return m.sides[m.g^1] }

func (m *metricArrays) flip() { m.g ^= 1 }

// resetTo sentinel-initializes the "to" side ahead of a step; the
// add-compare-select overwrites each entry on its first winning branch.
func (m *metricArrays) resetTo() {
	to := m.to()
	for i := range to {
		to[i] = stateMetric{metric: sentinelMetric}
	}
}

// zeroFrom resets the "from" side to the INIT condition: state 0 at metric
// 0, every other state sentinel-initialized and therefore never selected as
// a back-pointer (invariant I2).
func (m *metricArrays) zeroFrom() {
	from := m.from()
	for i := range from {
		from[i] = stateMetric{metric: sentinelMetric}
	}
	from[0] = stateMetric{metric: 0}
}

// activeSet is a ping-pong pair of state-index lists used only during
// ramp-up and termination (component C), where fewer than S states are
// reachable. MIDDLE never consults these — it scans all S states directly.
type activeSet struct {
	sides [2][]int
	p     int
}

func newActiveSet(s int) *activeSet {
	return &activeSet{
		sides: [2][]int{
			make([]int, 0, s),
			make([]int, 0, s),
		},
	}
}

func (a *activeSet) current() []int { return a.sides[a.p] }

func (a *activeSet) nextReset() []int {
	a.sides[a.p^1] = a.sides[a.p^1][:0]
	return a.sides[a.p^1]
}

func (a *activeSet) append(next []int, s int) []int {
	return append(next, s)
}

func (a *activeSet) flip() { a.p ^= 1 }

// seedInit resets the active set to {0}, the only reachable state at INIT.
func (a *activeSet) seedInit() {
	a.sides[0] = append(a.sides[0][:0], 0)
	a.sides[1] = a.sides[1][:0]
	a.p = 0
}

// seedAll marks every one of the s states active; MIDDLE leaves all S
// states reachable, so that is where TERM's active set starts.
func (a *activeSet) seedAll(s int) {
	cur := a.sides[a.p][:0]
	for i := 0; i < s; i++ {
		cur = append(cur, i)
	}
	a.sides[a.p] = cur
}
