// Package server implements the browser UI for note-extract.
//
// The UI is a single page served by fiber. A user uploads one or more images,
// starts extraction, watches a progress bar while images are processed one by
// one, and reads the Markdown of every image rendered as HTML.
//
// # Routes
//
//   - GET  /            the page: upload form, results, error annotations
//   - POST /extract     multipart field "images"; streams NDJSON events
//   - POST /clear       discard results, redirect to /
//   - GET  /results.md  download the results as one Markdown document
//   - GET  /healthz     liveness and active provider
//
// # Sessions
//
// Results belong to a browser session identified by a cookie. Each session
// holds one batch.State in memory; nothing is persisted. Starting a new run
// discards the session's previous results.
//
// # Progress Stream
//
// POST /extract answers with application/x-ndjson, one event per line:
//
//	{"type":"progress","progress":{"current":1,"total":3,"percent":33.3,"message":"..."}}
//	{"type":"result","payload":{"index":0,"filename":"a.png"}}
//	{"type":"error","payload":{"index":1,"filename":"b.heic","kind":"decode"},"error":"..."}
//	{"type":"done","payload":{"results":2,"failures":1}}
//
// The page script reads the stream, moves the progress bar, and reloads the
// page once "done" arrives.
package server
