package server

import (
	"bufio"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ironsheep/note-extract/internal/batch"
	"github.com/rs/zerolog"
)

type outputEvent struct {
	Type     string                 `json:"type"`
	Progress *progressPayload       `json:"progress,omitempty"`
	Payload  map[string]interface{} `json:"payload,omitempty"`
	Error    string                 `json:"error,omitempty"`
}

type progressPayload struct {
	Current int     `json:"current"`
	Total   int     `json:"total"`
	Percent float64 `json:"percent"`
	Message string  `json:"message"`
}

// eventWriter streams batch events as NDJSON, flushing after every line so
// the browser sees progress as it happens.
//
// A client that goes away does not stop the batch; the session still
// receives every result. Only the first write failure is logged.
type eventWriter struct {
	enc    *json.Encoder
	w      *bufio.Writer
	logger zerolog.Logger
	mu     sync.Mutex
	err    error
}

func newEventWriter(w *bufio.Writer, logger zerolog.Logger) *eventWriter {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &eventWriter{enc: enc, w: w, logger: logger}
}

func (e *eventWriter) emit(ev outputEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()

	err := e.enc.Encode(ev)
	if err == nil {
		err = e.w.Flush()
	}
	if err != nil && e.err == nil {
		e.err = err
		e.logger.Debug().Err(err).Str("event", ev.Type).Msg("event stream write failed")
	}
}

func (e *eventWriter) Progress(p batch.Progress) {
	e.emit(outputEvent{
		Type: "progress",
		Progress: &progressPayload{
			Current: p.Done,
			Total:   p.Total,
			Percent: p.Fraction() * 100.0,
			Message: fmt.Sprintf("Processed %d of %d images", p.Done, p.Total),
		},
	})
}

func (e *eventWriter) Extracted(r batch.Result) {
	e.emit(outputEvent{
		Type: "result",
		Payload: map[string]interface{}{
			"index":    r.Index,
			"filename": r.Filename,
		},
	})
}

func (e *eventWriter) Failed(f batch.Failure) {
	e.emit(outputEvent{
		Type: "error",
		Payload: map[string]interface{}{
			"index":    f.Index,
			"filename": f.Filename,
			"kind":     f.Kind(),
		},
		Error: failureText(f),
	})
}

func (e *eventWriter) Done(o batch.Outcome) {
	e.emit(outputEvent{
		Type: "done",
		Payload: map[string]interface{}{
			"results":  len(o.Results),
			"failures": len(o.Failures),
		},
	})
}

// failureText is the annotation shown for a failed image.
func failureText(f batch.Failure) string {
	return fmt.Sprintf("Error processing %s: %s", f.Filename, f.Message())
}
