// Package sync exposes the reconcile engine over HTTP and archives sweep
// reports in object storage.
//
// # Endpoints
//
//	POST /sync/:guild/members/:user   reconcile one member
//	POST /sync/:guild                 sweep every member of a community
//	GET  /sync/:guild/reports         list archived sweep reports
//	GET  /sync/:guild/reports/:name   download one archived report
//
// Sweeps of the same community are de-duplicated with singleflight: a second
// request while a sweep is running waits for it and receives the same report.
//
// # Archive
//
// When storage is enabled every sweep report is stored as
// reports/{guild}/{started_at}.json and the oldest reports beyond the
// configured retention are removed.
package sync
