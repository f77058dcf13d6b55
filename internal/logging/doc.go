// Package logging provides structured logging for the SID bridge.
//
// This package wraps zap logger with convenience functions for common logging
// patterns used throughout the bridge. Logging is silent until Initialize is
// called with a level or SIDBRIDGE_LOG_LEVEL is set.
//
// # Log Levels
//
//   - Debug: Every bus frame (hex and ASCII), reassembly progress
//   - Info: Display ownership changes, user messages, monitor clients
//   - Warn: Rejected writes, malformed frames, transport hiccups
//   - Error: Transport failures, startup failures
//
// # Usage
//
//	if err := logging.Initialize("debug"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
//	logging.Info("User message sent",
//	    zap.String("text", "NEXT TRACK"),
//	    zap.Duration("duration", 800*time.Millisecond),
//	)
//
//	logging.LogFrame("rx", frame.ID, frame.Data[:])
//
// Logs are written to stderr in console format so that command output on
// stdout stays machine readable.
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. Initialize and SetLogger
// are expected to run once at startup.
package logging
