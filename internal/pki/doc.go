// Package pki implements the local cryptographic plumbing for anchorctl:
// private key generation and PEM parsing, certificate signing request
// generation from an existing key, certificate inspection and chain
// verification, and the self-managed local certificate authority.
//
// The private key is the long-lived secret of a target. Renewals derive a
// fresh CSR from it and never rotate it; everything in this package treats
// the key file as read-only once created.
package pki
