// Package render formats extraction results as a Markdown document and as
// HTML for the browser UI.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/ironsheep/note-extract/internal/batch"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// EmptyMessage is shown when there are no results to display.
const EmptyMessage = "Upload one or more images and click 'Extract Text from All Images' to see the results here."

// Separator is the horizontal rule placed between results.
const Separator = "\n\n---\n\n"

// md renders GitHub-flavored Markdown. Raw HTML in the source is omitted
// since html.WithUnsafe is not set.
var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

// Heading returns the section title for the result at 0-based position i.
func Heading(i int, filename string) string {
	return fmt.Sprintf("Image %d: %s", i+1, filename)
}

// Markdown joins results into one document in the order given.
func Markdown(results []batch.Result) string {
	if len(results) == 0 {
		return ""
	}

	sections := make([]string, len(results))
	for i, r := range results {
		sections[i] = "## " + Heading(i, r.Filename) + "\n\n" + strings.TrimSpace(r.Content)
	}
	return strings.Join(sections, Separator) + "\n"
}

// HTML converts Markdown to HTML safe to embed in a page.
func HTML(markdown string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return template.HTML(buf.String()), nil
}
