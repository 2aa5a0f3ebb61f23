// Package logger provides structured logging for gostream using zerolog.
//
// The engine logs through component loggers ("forkjoin", "node", "prefix",
// ...) and only at debug level on the hot path, so a default configuration
// stays silent.
//
// # Configuration
//
//	logging:
//	  level: "debug"
//	  format: "console"
//
// # Usage
//
//	log := logger.Get("forkjoin")
//	log.Debug("evaluation finished", logger.Fields("leaves", 16))
package logger
