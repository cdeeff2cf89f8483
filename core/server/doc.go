// Package server holds the HTTP server configuration.
//
// The Config struct defines the HTTP port, the API key that protects the
// admin endpoints and the graceful shutdown timeout. The start command reads
// it to build the Fiber application.
package server
