// Package nav holds the slide navigation state machine.
//
// Every transition is a pure function from one State to the next. Callers
// (the TUI, the robot output, tests) own the value and replace it with the
// result; nothing in this package keeps state of its own.
//
// Index is always inside [0, Total-1]. Next and Previous saturate at the
// ends instead of wrapping. GoTo rejects out-of-range targets: the state is
// returned unchanged together with an error wrapping ErrOutOfRange.
package nav

import (
	"errors"
	"fmt"
)

// ErrOutOfRange is returned by GoTo when the target is not a slide index.
var ErrOutOfRange = errors.New("slide index out of range")

// State is the presentation position.
type State struct {
	Index int `json:"index"`
	Total int `json:"total"`
}

// Initialize returns the starting state for a deck of total slides.
// A deck always has at least one slide, so total < 1 is treated as 1.
func Initialize(total int) State {
	if total < 1 {
		total = 1
	}
	return State{Index: 0, Total: total}
}

// Next advances one slide, staying on the last slide when already there.
func Next(s State) State {
	s = Clamp(s)
	if s.Index < s.Total-1 {
		s.Index++
	}
	return s
}

// Previous goes back one slide, staying on the first slide when already there.
func Previous(s State) State {
	s = Clamp(s)
	if s.Index > 0 {
		s.Index--
	}
	return s
}

// GoTo jumps directly to target.
func GoTo(s State, target int) (State, error) {
	s = Clamp(s)
	if target < 0 || target >= s.Total {
		return s, fmt.Errorf("%w: %d not in [0, %d]", ErrOutOfRange, target, s.Total-1)
	}
	s.Index = target
	return s, nil
}

// First jumps to the opening slide.
func First(s State) State {
	s = Clamp(s)
	s.Index = 0
	return s
}

// Last jumps to the closing slide.
func Last(s State) State {
	s = Clamp(s)
	s.Index = s.Total - 1
	return s
}

// Clamp repairs a state whose Total changed underneath it (deck reload) or
// that was built by hand.
func Clamp(s State) State {
	if s.Total < 1 {
		s.Total = 1
	}
	if s.Index < 0 {
		s.Index = 0
	}
	if s.Index > s.Total-1 {
		s.Index = s.Total - 1
	}
	return s
}

// HasPrevious reports whether the previous control should be shown.
func HasPrevious(s State) bool {
	return Clamp(s).Index > 0
}

// HasNext reports whether the next control should be shown.
func HasNext(s State) bool {
	s = Clamp(s)
	return s.Index < s.Total-1
}

// IsActive reports whether i is the current slide.
func IsActive(s State, i int) bool {
	return Clamp(s).Index == i
}

// Counter renders the "{current} / {total}" label, 1-based.
func Counter(s State) string {
	s = Clamp(s)
	return fmt.Sprintf("%d / %d", s.Index+1, s.Total)
}
