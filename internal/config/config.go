// Package config builds the immutable process configuration from flags,
// environment variables and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
)

const (
	ScannerGemini = "gemini"
	ScannerOllama = "ollama"
)

// Config is built once at startup and read-only afterwards
type Config struct {
	Port               int
	ChannelAccessToken string
	ChannelSecret      string
	LineAPIEndpoint    string
	LineDataEndpoint   string
	Scanner            string
	GeminiAPIKey       string
	GeminiModel        string
	OllamaURL          string
	OllamaModel        string
	MetricsAddr        string
	ShowVersion        bool
}

// Addr returns the listen address for the webhook server
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func newFlagSet(cfg *Config) *ff.FlagSet {
	fs := ff.NewFlagSet("receipt-bot")
	fs.IntVar(&cfg.Port, 0, "port", 5000, "HTTP server port")
	fs.StringVar(&cfg.ChannelAccessToken, 0, "line-channel-access-token", "", "LINE channel access token")
	fs.StringVar(&cfg.ChannelSecret, 0, "line-channel-secret", "", "LINE channel secret used to verify webhook signatures")
	fs.StringVar(&cfg.LineAPIEndpoint, 0, "line-api-endpoint", "", "LINE Messaging API endpoint override")
	fs.StringVar(&cfg.LineDataEndpoint, 0, "line-data-endpoint", "", "LINE content API endpoint override")
	fs.StringVar(&cfg.Scanner, 0, "scanner", ScannerGemini, "Scanner type: 'gemini' or 'ollama'")
	fs.StringVar(&cfg.GeminiAPIKey, 0, "gemini-api-key", "", "Google Gemini API key")
	fs.StringVar(&cfg.GeminiModel, 0, "gemini-model", "gemini-2.0-flash", "Google Gemini model name")
	fs.StringVar(&cfg.OllamaURL, 0, "ollama-url", "http://localhost:11434", "Ollama API base URL")
	fs.StringVar(&cfg.OllamaModel, 0, "ollama-model", "llava", "Ollama model name (e.g., llava, qwen2-vl)")
	fs.StringVar(&cfg.MetricsAddr, 0, "metrics-addr", "", "Address for the Prometheus metrics listener (disabled when empty)")
	fs.BoolVar(&cfg.ShowVersion, 0, "version", "Show version information")
	return fs
}

// Parse reads flags and environment variables. Flag names map to variables
// by upper-casing and replacing dashes, so --line-channel-secret reads
// LINE_CHANNEL_SECRET and --port reads PORT.
func Parse(args []string) (Config, error) {
	var cfg Config
	fs := newFlagSet(&cfg)
	if err := ff.Parse(fs, args, ff.WithEnvVars()); err != nil {
		return Config{}, err
	}
	if cfg.ShowVersion {
		return cfg, nil
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Usage returns the flag help text
func Usage() string {
	return ffhelp.Flags(newFlagSet(&Config{})).String()
}

func (c Config) validate() error {
	var missing []string
	if c.ChannelAccessToken == "" {
		missing = append(missing, "LINE_CHANNEL_ACCESS_TOKEN")
	}
	if c.ChannelSecret == "" {
		missing = append(missing, "LINE_CHANNEL_SECRET")
	}

	switch c.Scanner {
	case ScannerGemini:
		if c.GeminiAPIKey == "" {
			missing = append(missing, "GEMINI_API_KEY")
		}
	case ScannerOllama:
	default:
		return fmt.Errorf("invalid scanner type %q: valid types are gemini or ollama", c.Scanner)
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

// LoadDotEnv loads variables from path without overriding the environment.
// A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}
