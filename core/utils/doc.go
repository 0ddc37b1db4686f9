// Package utils provides small shared helpers for the note-updater
// application: pluralization and value formatting for log lines, and other
// shared logic that doesn't fit into domain-specific packages.
package utils
