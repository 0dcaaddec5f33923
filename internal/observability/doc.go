// Package observability provides structured logging for the postboard API.
//
// Loggers are zap-based; the HTTP access log lives in the middleware
// package and reads the request ID set by chi.
package observability
