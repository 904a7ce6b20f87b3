// Package api implements the HTTP surface of the editorial scheduling
// core: request decoding and validation, the error-to-status mapping, and
// thin handlers that translate between HTTP and the service layer.
//
// Handlers never make authorization decisions themselves; they extract
// the caller established by the session middleware and pass it into the
// services, which consult the internal/authz policy.
package api
