// Package requestid correlates log records of one HTTP request, including
// the delivery attempts a dispatch request triggers.
//
//	log := logger.New(logger.WithContextExtractors(requestid.LoggerExtractor()))
//	r.Use(requestid.Middleware())
package requestid
