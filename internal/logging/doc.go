// Package logging provides structured logging for the contact form tools.
//
// This package wraps a package-level zap logger with convenience functions
// for the events the form core and the intake service care about.
//
// # Log Levels
//
//   - Debug: field and button state transitions
//   - Info: successful submissions, intake requests
//   - Warn: a single endpoint failed (fallback continues)
//   - Error: every endpoint failed
//
// # Configuration
//
// Logging is silent unless a level is passed to Initialize or the
// CONTACTFORM_LOG_LEVEL environment variable is set:
//
//	if err := logging.Initialize(""); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// CONTACTFORM_LOG_FILE (or InitializeWithOutput) sends output to a file,
// which the interactive form relies on to keep the terminal clean.
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. Replace the logger with
// SetLogger only during start-up or in tests.
package logging
