package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// Encrypt encrypts a single string value with AES-256-CBC and PKCS7 padding.
//
// A fresh random IV is generated per call, so two encryptions of the same
// plaintext never produce the same blob. The result is
// base64(IV ‖ ciphertext).
//
// An empty plaintext passes through unchanged. Settings frequently carry
// optional values; treating "no value set" as a crypto failure would mask
// the real condition from callers.
//
// Parameters:
//   - plaintext: Value to encrypt (may be empty)
//   - key: 32-byte symmetric key from EnsureKey
//
// Returns:
//   - string: Base64-encoded blob, or the empty string unchanged
//   - error: ErrEncrypt wrapping the underlying failure
func Encrypt(plaintext string, key []byte) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrEncrypt, err)
	}

	padded := pkcs7Pad([]byte(plaintext), block.BlockSize())

	// Blob layout: IV (one block) followed by the ciphertext.
	blob := make([]byte, block.BlockSize()+len(padded))
	iv := blob[:block.BlockSize()]
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("%w: generating IV: %w", ErrEncrypt, err)
	}

	cipher.NewCBCEncrypter(block, iv).CryptBlocks(blob[block.BlockSize():], padded)

	return base64.StdEncoding.EncodeToString(blob), nil
}

// Decrypt reverses Encrypt: it splits the leading IV from the blob,
// decrypts the remainder, and strips the PKCS7 padding.
//
// An empty blob passes through unchanged, mirroring Encrypt.
//
// Parameters:
//   - blob: Base64-encoded IV ‖ ciphertext (may be empty)
//   - key: 32-byte symmetric key from EnsureKey
//
// Returns:
//   - string: The original plaintext
//   - error: ErrDecrypt on malformed base64, truncated or misaligned
//     input, or padding validation failure
func Decrypt(blob string, key []byte) (string, error) {
	if blob == "" {
		return "", nil
	}

	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return "", fmt.Errorf("%w: invalid base64: %w", ErrDecrypt, err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDecrypt, err)
	}

	bs := block.BlockSize()
	if len(raw) < bs*2 {
		// Shortest valid blob is one IV block plus one ciphertext block.
		return "", fmt.Errorf("%w: blob truncated (%d bytes)", ErrDecrypt, len(raw))
	}

	iv, ciphertext := raw[:bs], raw[bs:]
	if len(ciphertext)%bs != 0 {
		return "", fmt.Errorf("%w: ciphertext not block aligned", ErrDecrypt)
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	unpadded, err := pkcs7Unpad(plaintext, bs)
	if err != nil {
		return "", err
	}

	return string(unpadded), nil
}

// pkcs7Pad extends data to a multiple of blockSize. A full block of
// padding is added when the input is already aligned.
func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+n)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(n)
	}
	return padded
}

// pkcs7Unpad validates and removes PKCS7 padding.
func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, fmt.Errorf("%w: invalid padded length", ErrDecrypt)
	}

	n := int(data[len(data)-1])
	if n == 0 || n > blockSize || n > len(data) {
		return nil, fmt.Errorf("%w: invalid padding", ErrDecrypt)
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, fmt.Errorf("%w: invalid padding", ErrDecrypt)
		}
	}

	return data[:len(data)-n], nil
}
