// Package logging provides structured logging for cloudbridge.
//
// It wraps log/slog so every component logs the same way: JSON for
// production, text for development, with service and version attributes
// on every entry and level-based filtering.
//
// # Configuration
//
// Logging is configured via the logging section of config.yaml:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Info("starting service", "port", 8080)
//	logger.Error("failed to connect", "error", err)
//
// # Security
//
// Cloud credentials, tokens, API keys, and encryption keys must never be
// passed as log attributes. Where an identifying hint is needed, log a
// short prefix:
//
//	logger.Info("API key used", "key_prefix", key[:8]+"...")
package logging
