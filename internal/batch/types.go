package batch

import (
	"errors"

	"github.com/ironsheep/note-extract/internal/extract"
	"github.com/ironsheep/note-extract/internal/imaging"
)

// Upload is one image submitted by the user.
type Upload struct {
	Filename  string
	MediaType string
	Data      []byte
}

// Result is the extracted text of one image.
type Result struct {
	// Index is the 0-based position of the image in the batch.
	Index int `json:"index"`

	Filename string `json:"filename"`

	// Content is the Markdown returned by the extractor.
	Content string `json:"content"`

	// Thumbnail is a JPEG data URI, set only when the runner renders previews.
	Thumbnail string `json:"thumbnail,omitempty"`
}

// Failure annotates an image that could not be processed.
type Failure struct {
	Index    int
	Filename string
	Err      error
}

// Message returns the text shown to the user.
func (f Failure) Message() string {
	if f.Err == nil {
		return ""
	}
	return f.Err.Error()
}

// Kind classifies the failure as "decode", "service" or "other".
func (f Failure) Kind() string {
	var decErr *imaging.DecodeError
	if errors.As(f.Err, &decErr) {
		return "decode"
	}
	var svcErr *extract.ServiceError
	if errors.As(f.Err, &svcErr) {
		return "service"
	}
	return "other"
}

// Progress counts attempted items.
type Progress struct {
	Done  int `json:"done"`
	Total int `json:"total"`
}

// Fraction returns Done/Total, or 0 for an empty batch.
func (p Progress) Fraction() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Done) / float64(p.Total)
}

// Outcome is everything a finished run produced.
type Outcome struct {
	Results  []Result
	Failures []Failure
	Progress Progress
}
