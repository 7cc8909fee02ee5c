package batch

import "slices"

// State is the result collection shown to a user.
//
// State is a value. Each transition returns the next State and leaves the
// receiver unchanged, so a holder swaps in the returned value.
type State struct {
	Results  []Result
	Failures []Failure
	Running  bool
	Progress Progress
}

// Begin starts a run of total images, discarding everything from the
// previous run.
func (s State) Begin(total int) State {
	return State{
		Running:  true,
		Progress: Progress{Total: total},
	}
}

// Record appends a successful result.
func (s State) Record(r Result) State {
	s.Results = append(slices.Clip(s.Results), r)
	return s
}

// Fail appends a failure annotation.
func (s State) Fail(f Failure) State {
	s.Failures = append(slices.Clip(s.Failures), f)
	return s
}

// Advance updates the progress counter.
func (s State) Advance(p Progress) State {
	s.Progress = p
	return s
}

// Finish marks the run complete.
func (s State) Finish() State {
	s.Running = false
	return s
}

// Clear returns the empty state.
func (s State) Clear() State {
	return State{}
}

// Empty reports whether there is nothing to show.
func (s State) Empty() bool {
	return len(s.Results) == 0 && len(s.Failures) == 0
}

// FromOutcome builds the completed state of a finished run.
func FromOutcome(o Outcome) State {
	return State{
		Results:  slices.Clone(o.Results),
		Failures: slices.Clone(o.Failures),
		Progress: o.Progress,
	}
}
