package store

import (
	"context"
	"time"

	"github.com/MKhiriev/go-vault-circle/models"
)

// UserRepository persists user accounts and their public keys. It doubles
// as the public-key lookup collaborator of the job coordinator.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindUserByLogin(ctx context.Context, login string) (models.User, error)
	GetUser(ctx context.Context, userID int64) (models.User, error)
	SetPublicKey(ctx context.Context, userID int64, publicKey []byte) error
	HasPublicKey(ctx context.Context, userID int64) (bool, error)
	PublicKeyOf(ctx context.Context, userID int64) ([]byte, error)
}

// GroupRepository persists groups and their memberships. It is the group
// membership collaborator of the access pool and the encoder resolver.
type GroupRepository interface {
	CreateGroup(ctx context.Context, group models.Group) (models.Group, error)
	AddMember(ctx context.Context, groupID, userID int64) error
	GroupsOf(ctx context.Context, userID int64) ([]int64, error)
	MembersOf(ctx context.Context, groupID int64) ([]int64, error)
}

// CategoryRepository is the write-through persistence of the in-memory
// category forest. The tree remains authoritative at runtime; every tree
// mutation is mirrored here so the forest survives restarts.
type CategoryRepository interface {
	GetAll(ctx context.Context) ([]models.Category, error)
	Insert(ctx context.Context, category models.Category) error
	UpdateParent(ctx context.Context, categoryID, parentID int64) error
	DeleteMany(ctx context.Context, categoryIDs []int64) error
	ReplaceGroups(ctx context.Context, categoryID int64, groupIDs []int64) error
	SetResponsible(ctx context.Context, categoryID, userID int64) error
}

// SecretRepository persists secret metadata rows. Ciphertext never lives
// here; see [EncryptedSecretRepository].
type SecretRepository interface {
	CreateSecret(ctx context.Context, secret models.Secret) (models.Secret, error)
	GetSecret(ctx context.Context, secretID int64) (models.Secret, error)
	DeleteSecret(ctx context.Context, secretID int64) error
	AssignCategory(ctx context.Context, secretID, categoryID int64) error
	SecretsByCreator(ctx context.Context, userID int64) ([]models.Secret, error)
	SecretsByCategories(ctx context.Context, categoryIDs []int64) ([]models.Secret, error)
	ClearCategory(ctx context.Context, categoryIDs []int64) error
}

// EncryptedSecretRepository persists per-user ciphertext copies. It is
// the secret-store collaborator of the job coordinator: fulfillment
// writes land here through UpsertCiphertext and nowhere else.
type EncryptedSecretRepository interface {
	UpsertCiphertext(ctx context.Context, secretID, userID int64, ciphertext []byte) error
	CiphertextExists(ctx context.Context, secretID, userID int64) (bool, error)
	GetCiphertext(ctx context.Context, secretID, userID int64) (models.UserEncryptedSecret, error)
	HolderIDs(ctx context.Context, secretID int64) ([]int64, error)
	DeleteBySecret(ctx context.Context, secretID int64) error
	DeleteByUserSecret(ctx context.Context, secretID, userID int64) error
}

// JobRepository persists live encrypt jobs. Retired jobs are deleted,
// so every stored row is live and a plain UNIQUE constraint on
// (secret_id, user_id) guarantees at most one live job per pair; Insert
// surfaces a violation as [ErrJobAlreadyExists].
type JobRepository interface {
	Insert(ctx context.Context, job models.EncryptJob) (models.EncryptJob, error)
	FindByToken(ctx context.Context, token string) (models.EncryptJob, error)
	DeleteByToken(ctx context.Context, token string) error
	LiveExists(ctx context.Context, secretID, userID int64) (bool, error)
	LiveByUser(ctx context.Context, userID int64) ([]models.EncryptJob, error)
	LiveBySecret(ctx context.Context, secretID int64) ([]models.EncryptJob, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) ([]string, error)
}
