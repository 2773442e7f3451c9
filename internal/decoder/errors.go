package decoder

import "fmt"

// InvalidArgumentError is returned by New when construction inputs violate
// the decoder's contract (spec.md §7): bad sample precision, a nil trellis,
// a block size or stream count out of range, or a trellis whose branch
// function cannot support the UP phase's unconditional write (Q1).
type InvalidArgumentError struct {
	msg string
}

func (e *InvalidArgumentError) Error() string { return e.msg }

func invalidArgument(format string, args ...interface{}) error {
	return &InvalidArgumentError{msg: fmt.Sprintf(format, args...)}
}

// illegalState signals an FSM invariant violation that should never occur
// in correct use (spec.md §7). It is a programmer error, not a recoverable
// runtime condition: the decoder panics rather than returning an error.
func illegalState(format string, args ...interface{}) {
	panic(fmt.Sprintf("viterbi decoder: illegal state: "+format, args...))
}
