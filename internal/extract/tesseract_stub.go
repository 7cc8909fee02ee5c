//go:build !tesseract

package extract

import "errors"

var errTesseractUnavailable = errors.New("tesseract support not compiled in (rebuild with -tags tesseract)")

// NewTesseractProvider reports that this binary was built without Tesseract.
func NewTesseractProvider(language string) (Extractor, error) {
	return nil, errTesseractUnavailable
}
