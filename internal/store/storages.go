package store

import (
	"context"

	"github.com/MKhiriev/go-vault-circle/internal/config"
	"github.com/MKhiriev/go-vault-circle/internal/logger"
)

// Storages aggregates every repository of the application behind one
// container, constructed once at startup and injected into the service
// layer.
type Storages struct {
	UserRepository            UserRepository
	GroupRepository           GroupRepository
	CategoryRepository        CategoryRepository
	SecretRepository          SecretRepository
	EncryptedSecretRepository EncryptedSecretRepository
	JobRepository             JobRepository
}

// NewStorages connects to the database described by cfg, applies pending
// migrations, and wires every repository onto the shared connection pool.
func NewStorages(ctx context.Context, cfg config.Storage, logger *logger.Logger) (*Storages, error) {
	db, err := NewConnectPostgres(ctx, cfg.DB, logger)
	if err != nil {
		return nil, err
	}

	if err = db.Migrate(); err != nil {
		return nil, err
	}

	return &Storages{
		UserRepository:            NewUserRepository(db, logger),
		GroupRepository:           NewGroupRepository(db, logger),
		CategoryRepository:        NewCategoryRepository(db, logger),
		SecretRepository:          NewSecretRepository(db, logger),
		EncryptedSecretRepository: NewEncryptedSecretRepository(db, logger),
		JobRepository:             NewJobRepository(db, logger),
	}, nil
}
