// Package logging configures structured logging for mockwire.
//
// It wraps log/slog so that the engine, the transport and the CLI log the
// same way:
//
//	logger := logging.New(logging.Config{
//	    Level:  logging.LevelDebug,
//	    Format: logging.FormatText,
//	})
//	eng := engine.New(engine.WithLogger(logger))
//
// The engine logs every match decision at debug level and unmatched
// requests at warn level. Components that are not given a logger use
// logging.Nop().
package logging
