package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/ironsheep/note-extract/internal/batch"
	"github.com/ironsheep/note-extract/internal/config"
	"github.com/ironsheep/note-extract/internal/extract"
	"github.com/ironsheep/note-extract/internal/imaging"
	"github.com/ironsheep/note-extract/internal/logging"
	"github.com/ironsheep/note-extract/internal/mcp"
	"github.com/ironsheep/note-extract/internal/render"
	"github.com/ironsheep/note-extract/internal/server"
	"github.com/rs/zerolog"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// newExtractor is replaced in tests.
var newExtractor = extract.New

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd := "serve"
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "--version", "-v", "version":
		fmt.Fprintf(stdout, "note-extract %s\n", Version)
		fmt.Fprintf(stdout, "  Build time: %s\n", BuildTime)
		fmt.Fprintf(stdout, "  Git commit: %s\n", GitCommit)
		return 0
	case "--help", "-h", "help":
		printUsage(stdout)
		return 0
	}

	cfg := config.Load()
	logger := logging.Init(stderr, cfg.LogLevel)
	if !cfg.EnvFileLoaded {
		logger.Debug().Msg("no .env file found, using process environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case "serve":
		return runServe(ctx, cfg, logger)
	case "extract":
		return runExtract(ctx, cfg, logger, args, stdout, stderr)
	case "mcp":
		return runMCP(ctx, cfg, logger, stdin, stdout)
	default:
		fmt.Fprintf(stderr, "unknown command: %s\n\n", cmd)
		printUsage(stderr)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "note-extract - extract text from images as Markdown")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  note-extract [serve]                 Run the browser UI (default)")
	fmt.Fprintln(w, "  note-extract extract [-o out.md] FILE...")
	fmt.Fprintln(w, "                                       Extract text from files, write Markdown")
	fmt.Fprintln(w, "  note-extract mcp                     Run as an MCP server over stdin/stdout")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fmt.Fprintln(w, "  --version, -v    Print version information")
	fmt.Fprintln(w, "  --help, -h       Print this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment variables (also read from .env):")
	fmt.Fprintln(w, "  ANTHROPIC_API_KEY              Credential for the anthropic provider")
	fmt.Fprintln(w, "  OPENAI_API_KEY                 Credential for the openai provider")
	fmt.Fprintln(w, "  NOTE_EXTRACT_PROVIDER          anthropic (default), openai or tesseract")
	fmt.Fprintln(w, "  NOTE_EXTRACT_ADDR              Listen address, default :8501")
	fmt.Fprintln(w, "  NOTE_EXTRACT_LOG_LEVEL         debug, info, warn or error")
	fmt.Fprintln(w, "  NOTE_EXTRACT_MAX_UPLOAD_MB     Upload size limit, default 64")
	fmt.Fprintln(w, "  NOTE_EXTRACT_TESSERACT_LANG    Tesseract language, default eng")
}

func runServe(ctx context.Context, cfg *config.Config, logger zerolog.Logger) int {
	ex, err := newExtractor(cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("cannot create extractor")
		return 1
	}

	logger.Info().Str("version", Version).Str("commit", GitCommit).Msg("note-extract starting")

	runner := batch.NewRunner(ex, logger, batch.WithThumbnails())
	srv := server.New(cfg, runner, ex.ProviderName(), logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Listen(cfg.Addr)
	}()

	select {
	case err := <-errCh:
		logger.Error().Err(err).Msg("server stopped")
		return 1
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	if err := srv.Shutdown(); err != nil {
		logger.Error().Err(err).Msg("shutdown failed")
		return 1
	}
	return 0
}

func runMCP(ctx context.Context, cfg *config.Config, logger zerolog.Logger, stdin io.Reader, stdout io.Writer) int {
	ex, err := newExtractor(cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("cannot create extractor")
		return 1
	}

	logger.Debug().Str("version", Version).Str("provider", ex.ProviderName()).Msg("MCP server starting")

	srv := mcp.New(batch.NewRunner(ex, logger), Version, logger)
	if err := srv.Serve(ctx, stdin, stdout); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("MCP server error")
		return 1
	}
	return 0
}

func runExtract(ctx context.Context, cfg *config.Config, logger zerolog.Logger, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("extract", flag.ContinueOnError)
	fs.SetOutput(stderr)
	outPath := fs.String("o", "", "write Markdown to `file` instead of stdout")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	paths := fs.Args()
	if len(paths) == 0 {
		fmt.Fprintln(stderr, "usage: note-extract extract [-o out.md] FILE...")
		return 2
	}

	ex, err := newExtractor(cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("cannot create extractor")
		return 1
	}

	failed := 0
	var uploads []batch.Upload
	for _, p := range paths {
		if !imaging.SupportedExtension(p) {
			logger.Error().Str("file", p).Msg("unsupported file type")
			failed++
			continue
		}
		data, err := os.ReadFile(p)
		if err != nil {
			logger.Error().Err(err).Str("file", p).Msg("cannot read file")
			failed++
			continue
		}
		uploads = append(uploads, batch.Upload{
			Filename:  filepath.Base(p),
			MediaType: imaging.MediaTypeFor(p),
			Data:      data,
		})
	}

	out := batch.NewRunner(ex, logger).Run(ctx, uploads, &cliReporter{logger: logger})
	failed += len(out.Failures)

	doc := render.Markdown(out.Results)
	if *outPath != "" {
		if err := os.WriteFile(*outPath, []byte(doc), 0o644); err != nil {
			logger.Error().Err(err).Str("file", *outPath).Msg("cannot write output")
			return 1
		}
		logger.Info().Str("file", *outPath).Int("results", len(out.Results)).Msg("markdown written")
	} else if _, err := io.WriteString(stdout, doc); err != nil {
		logger.Error().Err(err).Msg("cannot write output")
		return 1
	}

	if failed > 0 {
		return 1
	}
	return 0
}

// cliReporter logs batch progress to stderr. Failures are logged by the
// runner itself.
type cliReporter struct {
	batch.NopReporter
	logger zerolog.Logger
}

func (r *cliReporter) Progress(p batch.Progress) {
	r.logger.Info().Msgf("processed %d/%d", p.Done, p.Total)
}
