// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package crypto implements the agent-side keyring of the circle
// re-encryption scheme. The server never sees plaintext: every secret
// copy stored server-side is encrypted for exactly one member's
// keypair, and members re-encrypt copies for each other on demand.
package crypto

//go:generate mockgen -source=interfaces.go -destination=../mock/keyring_mock.go -package=mock

// KeyRing owns one member's RSA keypair and performs every
// cryptographic operation the agent needs.
//
// Scheme:
//
//	PublicKeyDER() — published to the server once, advertised to encoders
//	EncryptFor     — hybrid RSA-OAEP + AES-GCM, sealed for a target key
//	Decrypt        — opens a blob sealed for the ring's own keypair
//	Reencrypt      — Decrypt + EncryptFor in one step, for encrypt jobs
//
// The private key never leaves the agent. At rest it is wrapped with a
// key derived from the master password via Argon2id (see Save/Load).
type KeyRing interface {
	// PublicKeyDER returns the PKIX/DER encoding of the public key,
	// suitable for uploading to the server and embedding in encrypt-job
	// advertisements.
	PublicKeyDER() ([]byte, error)

	// EncryptFor seals plaintext for the holder of publicKeyDER. The
	// output can only be opened by the matching private key.
	EncryptFor(publicKeyDER, plaintext []byte) ([]byte, error)

	// Decrypt opens a blob previously sealed for this ring's public key.
	// Fails when the blob was sealed for someone else or is corrupted.
	Decrypt(blob []byte) ([]byte, error)

	// Reencrypt opens ownBlob with the ring's private key and seals the
	// recovered plaintext for targetPublicKeyDER. This is the whole job
	// of an encoder fulfilling an encrypt-job advertisement.
	Reencrypt(ownBlob, targetPublicKeyDER []byte) ([]byte, error)

	// Save wraps the private key with a key derived from masterPassword
	// and writes the result to path. Safe to store on disk: without the
	// password the file is random noise.
	Save(path, masterPassword string) error
}
