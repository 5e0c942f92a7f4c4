// Package digest computes content-addressed identities for xplain artifacts.
//
// Identities are SHA-256 over canonical JSON with a domain prefix:
//
//	SHA256(domain + 0x00 + canonical(data))
//
// Canonical JSON follows RFC 8785 ordering rules: object keys sorted by UTF-16
// code units, no HTML escaping, NFC-normalized strings. Floats and null are
// rejected so identical inputs always hash identically.
package digest
