// Package log provides structured logging helpers that keep the
// extraction-service credential out of log output.
package log
