package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Provider names accepted in NOTE_EXTRACT_PROVIDER.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderTesseract = "tesseract"
)

// Config holds process settings read from the environment.
type Config struct {
	AnthropicAPIKey string
	OpenAIAPIKey    string

	// Provider selects the extraction backend.
	Provider string

	// Addr is the listen address of the browser UI.
	Addr string

	LogLevel string

	// MaxUploadMB caps the request body of one upload batch.
	MaxUploadMB int

	TesseractLanguage string

	// EnvFileLoaded is false when no .env file was found.
	EnvFileLoaded bool
}

// Load reads a .env file if one exists and then the process environment.
// Values already set in the environment take precedence over .env entries.
func Load() *Config {
	loaded := godotenv.Load() == nil

	cfg := &Config{
		AnthropicAPIKey:   os.Getenv("ANTHROPIC_API_KEY"),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		Provider:          strings.ToLower(strings.TrimSpace(os.Getenv("NOTE_EXTRACT_PROVIDER"))),
		Addr:              os.Getenv("NOTE_EXTRACT_ADDR"),
		LogLevel:          os.Getenv("NOTE_EXTRACT_LOG_LEVEL"),
		TesseractLanguage: os.Getenv("NOTE_EXTRACT_TESSERACT_LANG"),
		EnvFileLoaded:     loaded,
	}

	if n, err := strconv.Atoi(os.Getenv("NOTE_EXTRACT_MAX_UPLOAD_MB")); err == nil && n > 0 {
		cfg.MaxUploadMB = n
	}

	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderAnthropic
	}
	if c.Addr == "" {
		c.Addr = ":8501"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.MaxUploadMB <= 0 {
		c.MaxUploadMB = 64
	}
	if c.TesseractLanguage == "" {
		c.TesseractLanguage = "eng"
	}
}

// MaxUploadBytes returns MaxUploadMB in bytes.
func (c *Config) MaxUploadBytes() int {
	return c.MaxUploadMB * 1024 * 1024
}
