package models

import "time"

// EncryptJob is a pending request for some qualified encoder — a peer
// already holding a usable ciphertext copy of the secret — to re-encrypt
// that secret for a newly eligible user. A job exists only while pending:
// fulfillment and abort both delete the row, so "no row" covers never
// created, fulfilled, and aborted alike. At most one live job exists per
// (secret, user) pair, enforced by the job store.
type EncryptJob struct {
	// JobID is the unique identifier of the job row.
	JobID int64 `json:"id"`

	// Token is the opaque unique handle a peer presents when fulfilling
	// the job. Fresh per job; never reused.
	Token string `json:"token"`

	// SecretID references the secret to be re-encrypted.
	SecretID int64 `json:"secret_id"`

	// UserID is the target user the new ciphertext copy is for.
	UserID int64 `json:"user_id"`

	// PublicKey is a snapshot of the target user's public key taken at
	// job creation time. Encoders encrypt against the snapshot, so a key
	// rotated mid-flight does not change what an advertised job means.
	PublicKey []byte `json:"public_key"`

	// CreatedAt is the timestamp when the job was created. Used by the
	// janitor when a job TTL is configured.
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the name of the database table
// associated with the EncryptJob model.
func (j EncryptJob) TableName() string {
	return "encrypt_jobs"
}
