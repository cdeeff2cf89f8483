// Package middleware contains HTTP middleware for the Fiber application.
//
// # Components
//
//   - auth: API key validation (X-API-Key) protecting the admin endpoints.
//   - rayid: assigns every request a RayID, stores it in the context and
//     echoes it in the X-Ray-ID response header for tracing.
//
// RayID is registered first so every later log line carries it.
package middleware
