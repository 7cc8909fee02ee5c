// Package extract sends normalized images to a text-extraction backend.
//
// Each call to Extractor.Extract performs exactly one request and returns the
// Markdown produced by the backend. There is no retry and no response cache:
// submitting the same image twice sends it twice.
//
// # Providers
//
//   - anthropic: Claude Messages API over HTTPS (default)
//   - openai: Chat Completions with an inline data URL image
//   - tesseract: local OCR through gosseract, built with -tags tesseract
//
// # Error Handling
//
// Every failure, whether network, authentication, HTTP status or an empty or
// malformed response body, is returned as *ServiceError carrying the message
// reported by the backend. Callers match it with errors.As.
//
// # Timeouts
//
// Requests are bounded by RequestTimeout. A stalled backend therefore fails
// one item instead of blocking a batch forever.
package extract
