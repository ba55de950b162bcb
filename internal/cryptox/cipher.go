// Package cryptox implements the field-level crypto primitives used by the
// member directory: an AES-CBC cipher with PKCS#7 padding for PII fields, and
// bcrypt password hashing.
package cryptox

import (
	"bytes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	"github.com/yuwenwww/membervault/internal/common"
)

// BlockFactory constructs a block cipher from raw key material. Passing the
// factory in explicitly keeps the cipher choice out of package-level state.
type BlockFactory func(key []byte) (cipher.Block, error)

// Cipher encrypts and decrypts single fields in CBC mode with PKCS#7 padding.
// It is stateless: every call is a pure function of (data, key, iv), and every
// Encrypt draws a fresh random IV.
type Cipher struct {
	newBlock BlockFactory
}

// NewCipher returns a Cipher backed by the given block factory.
func NewCipher(f BlockFactory) *Cipher {
	return &Cipher{newBlock: f}
}

// Encrypt encrypts plaintext under key and returns the ciphertext together
// with the random IV that produced it. The IV is never reused: CBC
// confidentiality depends on a unique IV per call, even for identical
// plaintext under the same key.
func (c *Cipher) Encrypt(plaintext, key []byte) (ciphertext, iv []byte, err error) {
	block, err := c.newBlock(key)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", common.ErrorEncryptionFailed, err)
	}

	bs := block.BlockSize()
	iv = make([]byte, bs)
	if _, err := rand.Read(iv); err != nil {
		return nil, nil, fmt.Errorf("%w: iv generation: %v", common.ErrorEncryptionFailed, err)
	}

	padded := pkcs7Pad(plaintext, bs)
	ciphertext = make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	return ciphertext, iv, nil
}

// Decrypt reverses Encrypt. It requires the exact IV produced for this
// ciphertext; a wrong key or IV surfaces as ErrorDecryptionFailed when the
// padding check fails. If padding happens to validate under a wrong key the
// garbage plaintext is returned as-is; detecting that case is out of scope.
func (c *Cipher) Decrypt(ciphertext, key, iv []byte) ([]byte, error) {
	block, err := c.newBlock(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorDecryptionFailed, err)
	}

	bs := block.BlockSize()
	if len(iv) != bs {
		return nil, fmt.Errorf("%w: iv length %d", common.ErrorDecryptionFailed, len(iv))
	}
	if len(ciphertext) == 0 || len(ciphertext)%bs != 0 {
		return nil, fmt.Errorf("%w: ciphertext length %d", common.ErrorDecryptionFailed, len(ciphertext))
	}

	padded := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(padded, ciphertext)

	plaintext, err := pkcs7Unpad(padded, bs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorDecryptionFailed, err)
	}
	return plaintext, nil
}

func pkcs7Pad(b []byte, blockSize int) []byte {
	n := blockSize - len(b)%blockSize
	return append(b, bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(b []byte, blockSize int) ([]byte, error) {
	if len(b) == 0 || len(b)%blockSize != 0 {
		return nil, fmt.Errorf("invalid padded length %d", len(b))
	}
	n := int(b[len(b)-1])
	if n == 0 || n > blockSize {
		return nil, fmt.Errorf("invalid padding byte %d", n)
	}
	for _, p := range b[len(b)-n:] {
		if int(p) != n {
			return nil, fmt.Errorf("inconsistent padding")
		}
	}
	return b[:len(b)-n], nil
}
