// Package cache provides the key-value store the client keeps issued
// tokens in between runs.
//
// It provides a Cache interface with an in-memory implementation for tests
// and a file-backed implementation used by default. Entries carry no TTL:
// the remote service is the sole authority on token validity and signals
// expiry over the wire.
package cache
