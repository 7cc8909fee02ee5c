package server

import (
	"bufio"
	"context"
	"fmt"
	"html/template"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/ironsheep/note-extract/internal/batch"
	"github.com/ironsheep/note-extract/internal/imaging"
	"github.com/ironsheep/note-extract/internal/render"
)

// uploadField is the multipart field carrying the images.
const uploadField = "images"

type section struct {
	Title     string
	Filename  string
	Thumbnail template.URL
	Body      template.HTML
}

type pageData struct {
	Sections     []section
	Failures     []string
	Empty        bool
	EmptyMessage string
	Running      bool
	Accept       string
	Provider     string
}

func (s *Server) handleIndex(c *fiber.Ctx) error {
	state := s.sessions.Get(sessionID(c))

	data := pageData{
		Empty:        len(state.Results) == 0,
		EmptyMessage: render.EmptyMessage,
		Running:      state.Running,
		Accept:       acceptList(),
		Provider:     s.provider,
	}

	for i, r := range state.Results {
		body, err := render.HTML(r.Content)
		if err != nil {
			s.logger.Warn().Err(err).Str("file", r.Filename).Msg("markdown render failed")
			body = template.HTML("<pre>" + template.HTMLEscapeString(r.Content) + "</pre>")
		}
		data.Sections = append(data.Sections, section{
			Title:     render.Heading(i, r.Filename),
			Filename:  r.Filename,
			Thumbnail: template.URL(r.Thumbnail),
			Body:      body,
		})
	}
	for _, f := range state.Failures {
		data.Failures = append(data.Failures, failureText(f))
	}

	c.Type("html", "utf-8")
	return pageTemplate.Execute(c, data)
}

func (s *Server) handleExtract(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "expected a multipart form with field \""+uploadField+"\"")
	}

	files := form.File[uploadField]
	if len(files) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "no images uploaded")
	}

	var unsupported []string
	for _, fh := range files {
		if !imaging.SupportedExtension(fh.Filename) {
			unsupported = append(unsupported, fh.Filename)
		}
	}
	if len(unsupported) > 0 {
		return fiber.NewError(fiber.StatusBadRequest,
			fmt.Sprintf("unsupported file type: %s (accepted: %s)", strings.Join(unsupported, ", "), acceptList()))
	}

	// The request body is gone once the stream writer runs, so every file
	// is read up front.
	uploads := make([]batch.Upload, 0, len(files))
	for _, fh := range files {
		data, err := readFormFile(fh)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("failed to read %s: %v", fh.Filename, err))
		}
		mediaType := fh.Header.Get("Content-Type")
		if mediaType == "" || mediaType == "application/octet-stream" {
			mediaType = imaging.MediaTypeFor(fh.Filename)
		}
		uploads = append(uploads, batch.Upload{Filename: fh.Filename, MediaType: mediaType, Data: data})
	}

	id := sessionID(c)

	var busy bool
	s.sessions.Update(id, func(st batch.State) batch.State {
		if st.Running {
			busy = true
			return st
		}
		return st.Begin(len(uploads))
	})
	if busy {
		return fiber.NewError(fiber.StatusConflict, "an extraction is already running for this session")
	}

	s.logger.Info().Str("session", id).Int("images", len(uploads)).Msg("extraction requested")

	c.Set(fiber.HeaderContentType, "application/x-ndjson")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set("X-Accel-Buffering", "no")

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		rep := batch.Reporters{
			&sessionReporter{store: s.sessions, id: id},
			newEventWriter(w, s.logger.With().Str("session", id).Logger()),
		}
		// The fiber context is released before this runs; the batch is not
		// tied to the request.
		s.runner.Run(context.Background(), uploads, rep)
	})
	return nil
}

func (s *Server) handleClear(c *fiber.Ctx) error {
	id := sessionID(c)

	var busy bool
	s.sessions.Update(id, func(st batch.State) batch.State {
		if st.Running {
			busy = true
			return st
		}
		return st.Clear()
	})
	if busy {
		return fiber.NewError(fiber.StatusConflict, "cannot clear while an extraction is running")
	}

	return c.Redirect("/", fiber.StatusSeeOther)
}

func (s *Server) handleResultsMarkdown(c *fiber.Ctx) error {
	state := s.sessions.Get(sessionID(c))
	if len(state.Results) == 0 {
		return fiber.NewError(fiber.StatusNotFound, "no results")
	}

	c.Attachment("extracted-text.md")
	c.Set(fiber.HeaderContentType, "text/markdown; charset=utf-8")
	return c.SendString(render.Markdown(state.Results))
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":   "ok",
		"provider": s.provider,
	})
}

func readFormFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// acceptList is the value of the file input's accept attribute.
func acceptList() string {
	exts := make([]string, len(imaging.SupportedExtensions))
	for i, ext := range imaging.SupportedExtensions {
		exts[i] = "." + ext
	}
	return strings.Join(exts, ",")
}
