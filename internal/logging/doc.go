// Package logging provides structured logging for the converter.
//
// It wraps log/slog with a text or JSON handler, a minimum level and a
// default "service" and "version" attribute on every entry.
//
// Logging is configured from the environment:
//
//	LOG_LEVEL=info     # debug, info, warn, error
//	LOG_FORMAT=text    # text, json
//	LOG_OUTPUT=stderr  # stdout, stderr
//
// Prompts and the per-group conversion report are written to stdout by the
// CLI and are not log entries.
package logging
