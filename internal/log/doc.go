// Package log builds the slog loggers used by the server and the CLI.
//
// Every logger is wrapped in a SecureHandler that masks credentials before a
// record reaches the output: bearer and refresh tokens, cookies, passwords and
// anything shaped like a JWT. Analytics and AI comment warnings routinely carry
// request headers, so the redaction sits below every component logger.
//
//	logger := log.New(os.Stderr, log.Options{Format: "json", Level: "info"})
//	logger.Warn("flush failed", "authorization", "Bearer eyJ...") // authorization=***REDACTED***
package log
