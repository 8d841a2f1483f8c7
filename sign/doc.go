// Package sign computes request signatures over canonicalized parameter sets.
//
// The canonical form is compact JSON with keys in ascending order and
// non-ASCII characters left unescaped. The signature is the hex digest of
// the canonical bytes concatenated with a shared secret. Both the canonical
// form and the default digest algorithm are a wire contract with the remote
// service and must not change between client and server.
package sign
