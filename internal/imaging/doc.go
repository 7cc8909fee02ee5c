// Package imaging turns uploaded image bytes into a transport-ready payload.
//
// Every image that is sent for text extraction goes through Normalize first.
// Normalization is deterministic and keeps no state between calls:
//
//  1. Decode the bytes with whichever registered decoder recognises them
//     (PNG, JPEG, GIF, WebP, HEIC). JPEG EXIF orientation is applied.
//  2. Flatten to three-channel RGB. Transparent areas become white.
//  3. Downscale with a Lanczos filter when either side exceeds MaxDimension,
//     preserving aspect ratio. Images are never upscaled.
//  4. Re-encode as JPEG at JPEGQuality and base64 the result.
//
// # Supported Inputs
//
// Uploads are accepted by file extension (png, jpg, jpeg, heic, webp), but the
// decoder is chosen from the file contents. A .png that actually holds a JPEG
// decodes fine; a .heic full of garbage fails with *DecodeError.
//
// # Error Handling
//
// Any failure to parse the input is reported as *DecodeError so callers can
// tell bad uploads apart from encoding or I/O problems with errors.As.
//
// # Thumbnails
//
// Thumbnail renders a small JPEG data URI for preview purposes. It is derived
// from the normalized image and is unrelated to what is sent for extraction.
package imaging
