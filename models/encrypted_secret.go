package models

import "time"

// UserEncryptedSecret is one user's ciphertext copy of a secret: the
// secret's plaintext encrypted with that user's public key. At most one
// row exists per (secret, user) pair. Rows are written either by the
// secret's creator at upload time or by a peer fulfilling an encrypt job;
// the server treats the blob as opaque.
type UserEncryptedSecret struct {
	// ID is the unique identifier of the ciphertext row.
	ID int64 `json:"id"`

	// SecretID references the secret this ciphertext is a copy of.
	SecretID int64 `json:"secret_id"`

	// UserID is the owner of this copy — the only principal whose
	// private key can decrypt the blob.
	UserID int64 `json:"user_id"`

	// Ciphertext is the opaque encrypted payload.
	Ciphertext []byte `json:"ciphertext"`

	// UpdatedAt is the timestamp of the last write (insert or
	// fulfillment overwrite).
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the name of the database table
// associated with the UserEncryptedSecret model.
func (u UserEncryptedSecret) TableName() string {
	return "user_encrypted_secrets"
}
