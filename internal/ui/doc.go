// Package ui renders styled terminal output for the contactform commands.
//
// These components follow a "print once and exit" pattern: headers, the
// per-endpoint attempt list and success/failure boxes used by the headless
// submit command. The interactive form lives in package tui.
//
// # Logging Integration
//
// zap logging is silent unless CONTACTFORM_LOG_LEVEL is set, so the curated
// output here is not interleaved with log lines. Set it to "debug", "info",
// "warn" or "error" to see the underlying events on stderr.
package ui
