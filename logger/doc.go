// Package logger provides structured logging for guardkit using zerolog.
//
// It supports JSON and console output, log level configuration, and
// component-scoped loggers with structured fields. A breaker takes a
// *logger.Logger as its optional sink; nil disables logging entirely.
//
// # Usage
//
//	log := logger.NewDefault("payments").WithComponent("breaker")
//	log.Info("circuit opened", logger.Fields(logger.FieldState, "open"))
package logger
