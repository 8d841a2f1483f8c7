// Package config loads client configuration from a YAML file.
//
// Credential-bearing values support ${VAR} environment references so signing
// secrets never have to live in the file itself; a reference to a missing
// variable is an error, not an empty string.
package config
