package sign

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"hash"
)

// ErrNilParams is returned when a nil parameter set is signed.
var ErrNilParams = errors.New("sign: params is nil")

// Canonical serializes params to the canonical wire form: compact JSON with
// keys sorted ascending and HTML escaping disabled, so non-ASCII text and
// characters like '&' pass through unchanged. encoding/json already emits
// map keys in sorted order, at every nesting level.
func Canonical(params map[string]any) ([]byte, error) {
	if params == nil {
		return nil, ErrNilParams
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(params); err != nil {
		return nil, fmt.Errorf("canonicalize params: %w", err)
	}

	// Encoder appends a newline after each value; the canonical form has none.
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Digest returns the hex signature of params under secret.
//
// The digest is computed over Canonical(params) + secret. newHash selects
// the algorithm; pass nil for the default (MD5, the algorithm the remote
// service verifies against).
func Digest(params map[string]any, secret string, newHash func() hash.Hash) (string, error) {
	if newHash == nil {
		newHash = md5.New
	}

	canonical, err := Canonical(params)
	if err != nil {
		return "", err
	}

	h := newHash()
	h.Write(canonical)
	h.Write([]byte(secret))
	return hex.EncodeToString(h.Sum(nil)), nil
}
