package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/joho/godotenv"
)

type Config struct {
	InputDir  string
	OutputDir string

	SourceEncoding string
	InputDelimiter string

	BuildingDefault  string
	WriteHeader      bool
	EmptyPlaceholder string
	FallbackSuffix   string
	WriteXLSX        bool

	Logging LoggingConfig
}

// LoggingConfig selects the log level (debug, info, warn, error), format
// (text, json) and output stream (stdout, stderr).
type LoggingConfig struct {
	Level  string
	Format string
	Output string
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		InputDir:  getEnv("INPUT_DIR", filepath.Join(cwd, "raw")),
		OutputDir: getEnv("OUTPUT_DIR", filepath.Join(cwd, "processed")),

		SourceEncoding: getEnv("SOURCE_ENCODING", "utf-8"),
		InputDelimiter: getEnv("INPUT_DELIMITER", ","),

		BuildingDefault:  getEnv("BUILDING_DEFAULT", "007_MRT"),
		WriteHeader:      getEnvBool("WRITE_HEADER", true),
		EmptyPlaceholder: getEnv("EMPTY_PLACEHOLDER", ""),
		FallbackSuffix:   getEnv("FALLBACK_SUFFIX", "_new"),
		WriteXLSX:        getEnvBool("WRITE_XLSX", false),

		Logging: LoggingConfig{
			Level:  firstNonEmpty(os.Getenv("LOG_LEVEL"), "info"),
			Format: firstNonEmpty(os.Getenv("LOG_FORMAT"), "text"),
			Output: firstNonEmpty(os.Getenv("LOG_OUTPUT"), "stderr"),
		},
	}

	return cfg, nil
}

// Delimiter returns the input delimiter as a rune. "\t" and "tab" both mean
// a tab character.
func (c Config) Delimiter() (rune, error) {
	d := c.InputDelimiter
	switch strings.ToLower(d) {
	case `\t`, "tab":
		return '\t', nil
	}
	if utf8.RuneCountInString(d) != 1 {
		return 0, fmt.Errorf("input delimiter must be a single character, got %q", d)
	}
	r, _ := utf8.DecodeRuneInString(d)
	if r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
		return 0, fmt.Errorf("invalid input delimiter %q", d)
	}
	return r, nil
}

func (c Config) Validate() error {
	var errs []string
	if strings.TrimSpace(c.InputDir) == "" {
		errs = append(errs, "input directory is required")
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		errs = append(errs, "output directory is required")
	}
	if _, err := c.Delimiter(); err != nil {
		errs = append(errs, err.Error())
	}
	if strings.TrimSpace(c.FallbackSuffix) == "" {
		errs = append(errs, "fallback suffix must not be empty")
	}
	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(key, "")))
	if value == "" {
		return fallback
	}
	if value == "1" || value == "true" || value == "yes" || value == "on" {
		return true
	}
	if value == "0" || value == "false" || value == "no" || value == "off" {
		return false
	}
	return fallback
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
