// Package feed handles fetching, decrypting and decoding the upstream train
// and station feeds.
//
// Both endpoints return an encrypted payload: the base64 AES-CBC ciphertext
// of a JSON document followed by an 88-byte trailer that, decrypted with a
// fixed public key, yields the per-response content key. Decrypt reproduces
// that scheme; Client wraps it with a timeout-bounded HTTP fetch.
package feed
