// Package logging provides structured logging for the SmartDom backend.
//
// It wraps Go's standard log/slog package so every component logs in the
// same shape: JSON for production, text for development, with the service
// name and version attached to every entry.
//
// Logging is configured via the LoggingConfig section of config.yaml:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// Usage:
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Info("starting service", "port", 8080)
//	logger.Error("failed to connect", "error", err)
//
// Never log secrets, tokens, or password hashes.
package logging
