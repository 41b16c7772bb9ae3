package service

import (
	"context"
	"time"

	"github.com/MKhiriev/go-vault-circle/models"
)

// AuthService handles user registration, credential verification, JWT
// token lifecycle, and the public-key prerequisite of the re-encryption
// protocol.
type AuthService interface {
	RegisterUser(ctx context.Context, user models.User) (models.User, error)
	Login(ctx context.Context, user models.User) (models.User, error)
	CreateToken(ctx context.Context, user models.User) (models.Token, error)
	ParseToken(ctx context.Context, tokenString string) (models.Token, error)

	// UploadPublicKey stores the user's DER-encoded public key and kicks
	// off job creation for every secret the user is eligible for but does
	// not yet hold.
	UploadPublicKey(ctx context.Context, userID int64, publicKey []byte) error
}

// CategoryService owns the category forest: structural mutations, read
// accessors, access grants, and the per-user visible pool.
type CategoryService interface {
	Create(ctx context.Context, name string, parentID, creatorID int64) (models.Category, error)
	Move(ctx context.Context, categoryID, newParentID int64) error
	Delete(ctx context.Context, categoryID int64) ([]int64, error)
	Get(ctx context.Context, categoryID int64) (models.Category, error)
	Children(ctx context.Context, categoryID int64) ([]models.Category, error)

	// Visible returns the user's visible pool reduced to its unique
	// maximal antichain: no returned category is a descendant of another.
	Visible(ctx context.Context, userID int64) ([]models.Category, error)

	GrantGroups(ctx context.Context, categoryID int64, groupIDs []int64) error
	SetResponsible(ctx context.Context, categoryID, userID int64) error
}

// GroupService manages groups and their memberships.
type GroupService interface {
	CreateGroup(ctx context.Context, group models.Group) (models.Group, error)
	AddMember(ctx context.Context, groupID, userID int64) error
}

// SecretService owns secret metadata and the per-user ciphertext reads.
type SecretService interface {
	CreateSecret(ctx context.Context, creatorID int64, req models.CreateSecretRequest) (models.Secret, error)
	GetSecret(ctx context.Context, secretID int64) (models.Secret, error)
	AssignCategory(ctx context.Context, actorID, secretID, categoryID int64) error
	DeleteSecret(ctx context.Context, actorID, secretID int64) error

	// GetMyCiphertext returns the caller's own ciphertext copy of the
	// secret. ErrNotAccessible when the secret is outside the caller's
	// reach, store.ErrCiphertextNotFound when reachable but not yet
	// re-encrypted for the caller.
	GetMyCiphertext(ctx context.Context, userID, secretID int64) (models.UserEncryptedSecret, error)
}

// EncoderService resolves who can re-encrypt a secret and who should
// eventually hold it.
type EncoderService interface {
	// EncodersFor returns every user holding a ciphertext copy of the
	// secret whose public key is set. Only they can decrypt and
	// re-encrypt for a newcomer.
	EncodersFor(ctx context.Context, secretID int64) ([]int64, error)

	// EligibleRecipients returns every user who should hold a ciphertext
	// copy: users reachable through the owning category's scope, or only
	// the creator for an uncategorized secret.
	EligibleRecipients(ctx context.Context, secretID int64) ([]int64, error)
}

// JobService coordinates asynchronous crowd re-encryption: it creates,
// advertises, fulfills, and retires encrypt jobs.
type JobService interface {
	// Create opens a job asking some encoder to re-encrypt the secret for
	// the user. It is a silent no-op when a live job already exists, when
	// the user already holds a ciphertext, or when the user has no public
	// key. Missing work is never an error here.
	Create(ctx context.Context, secretID, userID int64) error

	// Bulk triggers. Each resolves the affected (secret, user) pairs and
	// funnels every pair through Create.
	ForSecret(ctx context.Context, secretID int64) error
	ForUser(ctx context.Context, userID int64) error
	ForGroupMember(ctx context.Context, groupID, userID int64) error
	ForCategoryGroup(ctx context.Context, categoryID, groupID int64) error
	ForCategoryKeys(ctx context.Context, categoryID, userID int64) error

	// Fulfill accepts a re-encrypted blob for the job identified by
	// token: upserts the ciphertext, retires the job, and broadcasts an
	// abort notice for the token. ErrJobNotFound once the job is retired,
	// which makes retransmits safe.
	Fulfill(ctx context.Context, token string, ciphertext []byte) (models.FulfillResponse, error)

	// ReplayPending re-advertises every still-live job targeting the user
	// whose ciphertext is still missing. Returns how many jobs were
	// re-advertised.
	ReplayPending(ctx context.Context, userID int64) (int, error)

	// AbortForSecret retires every live job of the secret and broadcasts
	// abort notices for their tokens.
	AbortForSecret(ctx context.Context, secretID int64) error

	// RevokeStale is the downward half of reconciliation: it deletes the
	// ciphertext copies of users no longer eligible for the secret and
	// retires their live jobs. Called after a change that can shrink the
	// recipient set, e.g. a group grant withdrawal.
	RevokeStale(ctx context.Context, secretID int64) error

	// PurgeExpired retires jobs created before now-ttl. Returns how many
	// jobs were purged.
	PurgeExpired(ctx context.Context, ttl time.Duration) (int, error)
}

// NotificationChannel is the message-delivery collaborator of the job
// coordinator. Delivery is fire-and-forget and best-effort; no
// acknowledgment surfaces back, and both calls must never block.
type NotificationChannel interface {
	SendToUser(userID int64, topic string, payload any)
	Broadcast(topic string, payload any)
}

// TokenGenerator produces fresh opaque job tokens.
type TokenGenerator interface {
	Generate() string
}
