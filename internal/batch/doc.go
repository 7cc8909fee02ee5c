// Package batch runs a set of uploaded images through normalization and
// text extraction, one image at a time.
//
// A failure on one image never stops the batch. Each item resolves to either
// a Result or a Failure, progress is reported after every attempted item, and
// the final Outcome keeps upload order.
//
// State holds the results of the latest run for a presentation layer. A new
// run replaces the previous results rather than adding to them.
package batch
