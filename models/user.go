package models

import "time"

// User represents an account entity used for authentication and access
// control. Besides identity attributes it carries the user's asymmetric
// public key, which other vault members use to re-encrypt secrets for
// this user. The matching private key never leaves the user's device.
type User struct {
	// UserID is the internal unique identifier of the user.
	UserID int64 `json:"id"`

	// Login is the unique user login identifier.
	// Typically used during authentication.
	Login string `json:"login"`

	// Name is the display name of the user.
	// It is non-sensitive and may be shown in UI.
	Name string `json:"name"`

	// AuthHash is the credential value stored for authentication.
	// This value MUST be a derived value (HMAC/KDF output), never a
	// plaintext password.
	AuthHash string `json:"auth_hash,omitempty"`

	// PublicKey is the DER-encoded public half of the user's keypair.
	// Empty until the user's device uploads one. A user without a public
	// key can neither receive re-encrypted secrets nor act as an encoder.
	PublicKey []byte `json:"public_key,omitempty"`

	// IsAdmin grants the elevated capability: an admin sees every
	// category regardless of ownership or group grants.
	IsAdmin bool `json:"is_admin"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the name of the database table
// associated with the User model.
func (u User) TableName() string {
	return "users"
}
