// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/argon2"
)

const (
	// rsaKeyBits sizes the member keypair. 2048 keeps fulfillment cheap
	// on low-end agents while staying above the deprecation floor.
	rsaKeyBits = 2048

	// sessionKeyLen is the AES-256 key length used for the hybrid layer.
	sessionKeyLen = 32

	saltLen = 16
)

// keyRing is the private implementation of [KeyRing].
type keyRing struct {
	privateKey *rsa.PrivateKey

	// Argon2id tuning parameters for the at-rest key wrap. Stored in
	// the struct so they can be adjusted per deployment target.
	argonTime    uint32
	argonMemory  uint32
	argonThreads uint8
	argonKeyLen  uint32
}

// NewKeyRing generates a fresh keypair and returns a [KeyRing] with the
// Argon2id parameters recommended by OWASP (2024):
//   - time cost:   1 iteration
//   - memory cost: 64 MiB
//   - parallelism: 4 threads
//   - key length:  32 bytes (256 bits)
func NewKeyRing() (KeyRing, error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, rsaKeyBits)
	if err != nil {
		return nil, fmt.Errorf("generate keypair: %w", err)
	}

	return newKeyRingWith(privateKey), nil
}

// LoadKeyRing reads the wrapped private key from path, unwraps it with
// a key derived from masterPassword, and returns the restored ring.
// Returns an error when the file is missing, corrupted, or the password
// is wrong (authentication-tag mismatch).
func LoadKeyRing(path, masterPassword string) (KeyRing, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keyring file: %w", err)
	}

	ring := newKeyRingWith(nil)

	if len(blob) < saltLen {
		return nil, fmt.Errorf("keyring file too short")
	}
	salt, wrapped := blob[:saltLen], blob[saltLen:]

	kek := ring.deriveKEK(masterPassword, salt)
	keyDER, err := gcmOpen(kek, wrapped)
	if err != nil {
		return nil, fmt.Errorf("unwrap private key: %w", err)
	}

	privateKey, err := x509.ParsePKCS8PrivateKey(keyDER)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	rsaKey, ok := privateKey.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("unexpected private key type %T", privateKey)
	}

	ring.privateKey = rsaKey
	return ring, nil
}

func newKeyRingWith(privateKey *rsa.PrivateKey) *keyRing {
	return &keyRing{
		privateKey:   privateKey,
		argonTime:    1,
		argonMemory:  64 * 1024, // 64 MiB
		argonThreads: 4,
		argonKeyLen:  32, // 256 bits
	}
}

// PublicKeyDER implements [KeyRing].
func (k *keyRing) PublicKeyDER() ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(&k.privateKey.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("marshal public key: %w", err)
	}
	return der, nil
}

// EncryptFor implements [KeyRing]. It seals plaintext with a fresh
// AES-256-GCM session key and wraps the session key with RSA-OAEP for
// the holder of publicKeyDER:
//
//	blob = wrappedKey (pub.Size() bytes) ‖ nonce ‖ ciphertext
//
// The wrapped-key length is implied by the target key size, so the
// decryption side can split the blob without extra framing.
func (k *keyRing) EncryptFor(publicKeyDER, plaintext []byte) ([]byte, error) {
	parsed, err := x509.ParsePKIXPublicKey(publicKeyDER)
	if err != nil {
		return nil, fmt.Errorf("parse target public key: %w", err)
	}
	publicKey, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("unexpected public key type %T", parsed)
	}

	sessionKey := make([]byte, sessionKeyLen)
	if _, err := io.ReadFull(rand.Reader, sessionKey); err != nil {
		return nil, err
	}

	wrappedKey, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, publicKey, sessionKey, nil)
	if err != nil {
		return nil, fmt.Errorf("wrap session key: %w", err)
	}

	sealed, err := gcmSeal(sessionKey, plaintext)
	if err != nil {
		return nil, err
	}

	return append(wrappedKey, sealed...), nil
}

// Decrypt implements [KeyRing]. It splits the blob produced by
// [keyRing.EncryptFor], unwraps the session key with the ring's private
// key, and opens the AES-GCM payload.
func (k *keyRing) Decrypt(blob []byte) ([]byte, error) {
	wrappedLen := k.privateKey.PublicKey.Size()
	if len(blob) < wrappedLen {
		return nil, fmt.Errorf("ciphertext too short")
	}
	wrappedKey, sealed := blob[:wrappedLen], blob[wrappedLen:]

	sessionKey, err := rsa.DecryptOAEP(sha256.New(), rand.Reader, k.privateKey, wrappedKey, nil)
	if err != nil {
		return nil, fmt.Errorf("unwrap session key: %w", err)
	}

	plaintext, err := gcmOpen(sessionKey, sealed)
	if err != nil {
		return nil, fmt.Errorf("decrypt payload: %w", err)
	}

	return plaintext, nil
}

// Reencrypt implements [KeyRing].
func (k *keyRing) Reencrypt(ownBlob, targetPublicKeyDER []byte) ([]byte, error) {
	plaintext, err := k.Decrypt(ownBlob)
	if err != nil {
		return nil, err
	}
	return k.EncryptFor(targetPublicKeyDER, plaintext)
}

// Save implements [KeyRing]. The file layout is:
//
//	salt (16 bytes) ‖ nonce ‖ wrapped PKCS#8 key
//
// where the wrap key is Argon2id(masterPassword, salt).
func (k *keyRing) Save(path, masterPassword string) error {
	keyDER, err := x509.MarshalPKCS8PrivateKey(k.privateKey)
	if err != nil {
		return fmt.Errorf("marshal private key: %w", err)
	}

	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return err
	}

	kek := k.deriveKEK(masterPassword, salt)
	wrapped, err := gcmSeal(kek, keyDER)
	if err != nil {
		return fmt.Errorf("wrap private key: %w", err)
	}

	return os.WriteFile(path, append(salt, wrapped...), 0o600)
}

// deriveKEK derives the at-rest wrap key from the master password and
// salt using Argon2id with the parameters stored in the receiver.
func (k *keyRing) deriveKEK(masterPassword string, salt []byte) []byte {
	return argon2.IDKey(
		[]byte(masterPassword),
		salt,
		k.argonTime,
		k.argonMemory,
		k.argonThreads,
		k.argonKeyLen,
	)
}

// gcmSeal encrypts plaintext with key using AES-256-GCM. A random
// 12-byte nonce is prepended so the decryption side can locate it:
// blob = nonce ‖ ciphertext.
func gcmSeal(key, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return append(nonce, gcm.Seal(nil, nonce, plaintext, nil)...), nil
}

// gcmOpen decrypts a blob produced by gcmSeal. An error almost always
// means the wrong key was supplied (authentication-tag mismatch).
func gcmOpen(key, blob []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonceSize := gcm.NonceSize()
	if len(blob) < nonceSize {
		return nil, fmt.Errorf("ciphertext too short")
	}
	nonce, ciphertext := blob[:nonceSize], blob[nonceSize:]

	return gcm.Open(nil, nonce, ciphertext, nil)
}
