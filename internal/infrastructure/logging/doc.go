// Package logging provides structured logging for AssetFlow.
//
// It wraps log/slog so every entry carries the service name and build
// version, with JSON output for production and text output for local work.
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr, discard
//
// Never log secrets, JWTs or Redis/InfluxDB credentials.
package logging
