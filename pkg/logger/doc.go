// Package logger builds configured log/slog loggers for the client core.
//
// The session manager logs its best-effort paths (logout cleanup, refresh
// failures) through an injected *slog.Logger; this package is where the
// embedding application constructs one:
//
//	log := logger.New(logger.WithProduction("copratrack"))
//	logger.SetAsDefault(log)
//
//	manager, err := session.New(cfg, store, session.WithLogger(log))
package logger
