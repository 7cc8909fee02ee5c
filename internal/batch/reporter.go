package batch

// Reporter receives events while a batch runs. Calls are made from the
// goroutine running the batch, in order.
type Reporter interface {
	Extracted(r Result)
	Failed(f Failure)
	Progress(p Progress)
	Done(o Outcome)
}

// NopReporter discards all events.
type NopReporter struct{}

func (NopReporter) Extracted(Result) {}
func (NopReporter) Failed(Failure) {}
func (NopReporter) Progress(Progress) {}
func (NopReporter) Done(Outcome) {}

// Reporters fans each event out to every reporter in the slice.
type Reporters []Reporter

func (rs Reporters) Extracted(r Result) {
	for _, rep := range rs {
		rep.Extracted(r)
	}
}

func (rs Reporters) Failed(f Failure) {
	for _, rep := range rs {
		rep.Failed(f)
	}
}

func (rs Reporters) Progress(p Progress) {
	for _, rep := range rs {
		rep.Progress(p)
	}
}

func (rs Reporters) Done(o Outcome) {
	for _, rep := range rs {
		rep.Done(o)
	}
}
