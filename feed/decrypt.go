package feed

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/pbkdf2"
)

// The upstream response is the base64 ciphertext of the document followed by
// a fixed-length trailer. The trailer decrypts (under a published key) to a
// |-delimited string whose first field is the key for the document itself.
// Salt, IV, iteration count and key size all have to match the upstream
// scheme exactly; a mismatch produces garbage rather than an error, which is
// why Decrypt validates that the output is UTF-8 JSON before returning it.
const (
	masterSegment = 88
	keyIterations = 1000
	keyLength     = 16

	publicKey = "69af143c-e8cf-47f8-bf09-fc1f61e5cc33"
	saltHex   = "9a3686ac"
	ivHex     = "c6eb2f7f5c4740c1a2f708fefd947d39"
)

var (
	ErrPayloadTooShort = errors.New("payload shorter than key trailer")
	ErrCiphertext      = errors.New("malformed ciphertext")
	ErrNotJSON         = errors.New("decrypted payload is not valid JSON")
)

var (
	keySalt  = mustHex(saltHex)
	cipherIV = mustHex(ivHex)
)

func mustHex(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}

// Decrypt unwraps one feed response: it decrypts the trailer with the public
// key to recover the per-response content key, then decrypts the main content
// with that key. The result is the feed's JSON text.
func Decrypt(payload []byte) ([]byte, error) {
	if len(payload) < masterSegment {
		return nil, ErrPayloadTooShort
	}

	mainContent := payload[:len(payload)-masterSegment]
	trailer := payload[len(payload)-masterSegment:]

	keyBlock, err := decryptChunk(string(trailer), publicKey)
	if err != nil {
		return nil, fmt.Errorf("key trailer: %w", err)
	}
	contentKey, _, _ := strings.Cut(string(keyBlock), "|")

	doc, err := decryptChunk(string(mainContent), contentKey)
	if err != nil {
		return nil, fmt.Errorf("content: %w", err)
	}
	if !utf8.Valid(doc) || !json.Valid(doc) {
		return nil, ErrNotJSON
	}
	return doc, nil
}

// decryptChunk base64-decodes content and decrypts it with AES-CBC under a
// key derived from password by PBKDF2-SHA1 with the fixed salt.
func decryptChunk(content, password string) ([]byte, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCiphertext, err)
	}
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: length %d not a block multiple", ErrCiphertext, len(ciphertext))
	}

	key := pbkdf2.Key([]byte(password), keySalt, keyIterations, keyLength, sha1.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, cipherIV).CryptBlocks(plaintext, ciphertext)

	return pkcs7Unpad(plaintext)
}

func pkcs7Unpad(b []byte) ([]byte, error) {
	if len(b) == 0 {
		return nil, fmt.Errorf("%w: empty plaintext", ErrCiphertext)
	}
	pad := int(b[len(b)-1])
	if pad == 0 || pad > aes.BlockSize || pad > len(b) {
		return nil, fmt.Errorf("%w: bad padding", ErrCiphertext)
	}
	for _, c := range b[len(b)-pad:] {
		if int(c) != pad {
			return nil, fmt.Errorf("%w: bad padding", ErrCiphertext)
		}
	}
	return b[:len(b)-pad], nil
}
