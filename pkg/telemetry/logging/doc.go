// Package logging configures structured logging for Verdict.
//
// All packages log through log/slog; this package builds the process-wide
// default logger from configuration:
//
//	logger, err := logging.New(cfg.Telemetry.Logging, os.Stderr)
//	if err != nil {
//	    return err
//	}
//	slog.SetDefault(logger)
//
// Components then pick up the default with their own component attribute:
//
//	slog.Default().With("component", "rules.engine")
package logging
