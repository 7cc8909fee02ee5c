package batch

import (
	"context"
	"time"

	"github.com/ironsheep/note-extract/internal/extract"
	"github.com/ironsheep/note-extract/internal/imaging"
	"github.com/rs/zerolog"
)

// NormalizeFunc converts raw upload bytes into a payload.
type NormalizeFunc func(data []byte) (*imaging.Payload, error)

// Runner processes batches against one extractor.
type Runner struct {
	normalize  NormalizeFunc
	extractor  extract.Extractor
	logger     zerolog.Logger
	thumbnails bool
}

// Option configures a Runner.
type Option func(*Runner)

// WithThumbnails makes every Result carry a preview data URI.
func WithThumbnails() Option {
	return func(r *Runner) {
		r.thumbnails = true
	}
}

// WithNormalizer replaces imaging.Normalize.
func WithNormalizer(fn NormalizeFunc) Option {
	return func(r *Runner) {
		r.normalize = fn
	}
}

// NewRunner creates a Runner that sends images to ex.
func NewRunner(ex extract.Extractor, logger zerolog.Logger, opts ...Option) *Runner {
	r := &Runner{
		normalize: imaging.Normalize,
		extractor: ex,
		logger:    logger.With().Str("component", "batch").Logger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run processes uploads sequentially, in order.
//
// Every item ends as exactly one Result or one Failure. Progress is reported
// after each item whether it succeeded or not, and Done is reported once
// after the last item. A nil reporter is allowed.
func (r *Runner) Run(ctx context.Context, uploads []Upload, rep Reporter) Outcome {
	if rep == nil {
		rep = NopReporter{}
	}

	out := Outcome{Progress: Progress{Total: len(uploads)}}
	start := time.Now()

	r.logger.Info().
		Int("images", len(uploads)).
		Str("provider", r.extractor.ProviderName()).
		Msg("batch started")

	for i, u := range uploads {
		log := r.logger.With().Int("index", i).Str("file", u.Filename).Logger()

		res, err := r.process(ctx, i, u)
		if err != nil {
			f := Failure{Index: i, Filename: u.Filename, Err: err}
			out.Failures = append(out.Failures, f)
			log.Warn().Err(err).Str("kind", f.Kind()).Msg("image failed")
			rep.Failed(f)
		} else {
			out.Results = append(out.Results, res)
			log.Debug().Int("chars", len(res.Content)).Msg("image extracted")
			rep.Extracted(res)
		}

		out.Progress.Done = i + 1
		rep.Progress(out.Progress)
	}

	r.logger.Info().
		Int("results", len(out.Results)).
		Int("failures", len(out.Failures)).
		Dur("elapsed", time.Since(start)).
		Msg("batch finished")

	rep.Done(out)
	return out
}

// process resolves a single upload to a result or an error.
func (r *Runner) process(ctx context.Context, index int, u Upload) (Result, error) {
	payload, err := r.normalize(u.Data)
	if err != nil {
		return Result{}, err
	}

	text, err := r.extractor.Extract(ctx, payload)
	if err != nil {
		return Result{}, err
	}

	res := Result{Index: index, Filename: u.Filename, Content: text}
	if r.thumbnails && payload.Image != nil {
		thumb, err := imaging.Thumbnail(payload.Image, imaging.ThumbnailWidth)
		if err != nil {
			r.logger.Warn().Err(err).Str("file", u.Filename).Msg("thumbnail failed")
		} else {
			res.Thumbnail = thumb
		}
	}
	return res, nil
}
