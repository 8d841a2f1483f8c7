// Package kassa provides an authenticated client for a remote cash-register
// control API.
//
// The client signs every request over its canonicalized parameters, keeps the
// bearer token the service issues in a pluggable cache, and refreshes it
// transparently when the service signals expiry with a 401. Application-level
// rejections (400/422) are returned as response bodies, not errors; the
// caller inspects the body for error detail.
package kassa
