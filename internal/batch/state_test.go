package batch

import (
	"errors"
	"testing"
)

func TestState_Transitions(t *testing.T) {
	var s State
	if !s.Empty() || s.Running {
		t.Fatal("zero State should be empty and idle")
	}

	s = s.Begin(2)
	if !s.Running || s.Progress.Total != 2 {
		t.Errorf("Begin: got %+v", s)
	}

	s = s.Record(Result{Index: 0, Filename: "a.png", Content: "A"})
	s = s.Advance(Progress{Done: 1, Total: 2})
	s = s.Fail(Failure{Index: 1, Filename: "b.png", Err: errors.New("bad")})
	s = s.Advance(Progress{Done: 2, Total: 2})
	s = s.Finish()

	if s.Running {
		t.Error("Finish should clear Running")
	}
	if len(s.Results) != 1 || len(s.Failures) != 1 {
		t.Errorf("got %d results, %d failures", len(s.Results), len(s.Failures))
	}
	if s.Progress.Fraction() != 1 {
		t.Errorf("Fraction: got %v", s.Progress.Fraction())
	}

	s = s.Clear()
	if !s.Empty() || s.Running || s.Progress.Total != 0 {
		t.Errorf("Clear should reset everything, got %+v", s)
	}
}

func TestState_BeginReplaces(t *testing.T) {
	s := State{}.Begin(1).Record(Result{Filename: "old.png"}).Finish()

	s = s.Begin(1)
	if len(s.Results) != 0 || len(s.Failures) != 0 {
		t.Fatalf("Begin should discard prior results, got %+v", s.Results)
	}

	s = s.Record(Result{Filename: "new.png"})
	if len(s.Results) != 1 || s.Results[0].Filename != "new.png" {
		t.Errorf("results: got %+v", s.Results)
	}
}

func TestState_ValueSemantics(t *testing.T) {
	base := State{}.Begin(3).Record(Result{Filename: "a"})

	left := base.Record(Result{Filename: "left"})
	right := base.Record(Result{Filename: "right"})

	if len(base.Results) != 1 {
		t.Errorf("base mutated: %+v", base.Results)
	}
	if left.Results[1].Filename != "left" || right.Results[1].Filename != "right" {
		t.Errorf("transitions share storage: left=%+v right=%+v", left.Results, right.Results)
	}
}

func TestFromOutcome(t *testing.T) {
	o := Outcome{
		Results:  []Result{{Filename: "a.png"}},
		Failures: []Failure{{Filename: "b.png", Err: errors.New("x")}},
		Progress: Progress{Done: 2, Total: 2},
	}
	s := FromOutcome(o)

	if s.Running || len(s.Results) != 1 || len(s.Failures) != 1 || s.Progress != o.Progress {
		t.Errorf("FromOutcome: got %+v", s)
	}

	o.Results[0].Filename = "changed"
	if s.Results[0].Filename != "a.png" {
		t.Error("FromOutcome should copy results")
	}
}
