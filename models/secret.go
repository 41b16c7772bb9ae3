package models

import "time"

// Secret is a stored credential whose plaintext the server never retains.
// The server only ever sees per-user ciphertext copies (see
// [UserEncryptedSecret]); the secret row itself carries metadata only.
type Secret struct {
	// SecretID is the unique identifier of the secret.
	SecretID int64 `json:"id"`

	// Name is the display name of the secret (e.g. "prod db password").
	Name string `json:"name"`

	// CategoryID is the owning category. Zero means the secret is
	// uncategorized: only its creator (and explicit grants) can reach it.
	CategoryID int64 `json:"category_id,omitempty"`

	// CreatorID identifies the user who created the secret. The creator
	// uploads the first ciphertext copy and is the initial encoder.
	CreatorID int64 `json:"creator_id"`

	// CreatedAt is the timestamp when the secret was created.
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the name of the database table
// associated with the Secret model.
func (s Secret) TableName() string {
	return "secrets"
}
