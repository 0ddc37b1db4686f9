// Package server holds the HTTP server configuration.
//
// While the main application entry point handles the server startup, this package
// defines the configuration structures and valid values for server settings,
// such as the listen port, API key, and upload size limit.
//
// # Usage
//
// This package is primarily used by the core/config package to embed server
// settings and by the start command when building the Fiber application.
package server
