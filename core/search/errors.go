package search

import "errors"

// ErrExhausted is reported by a heuristic when it cannot produce a candidate:
// no station has usable break time, or no infeasible driving event remains on
// a splittable rotation. It is an expected terminal condition, not a failure.
var ErrExhausted = errors.New("heuristic exhausted")

// ErrBadBias is returned when a trial bias lies outside [0,1].
var ErrBadBias = errors.New("bias must be within [0,1]")
