package service

import (
	"github.com/MKhiriev/go-vault-circle/internal/config"
	"github.com/MKhiriev/go-vault-circle/internal/logger"
	"github.com/MKhiriev/go-vault-circle/internal/store"
	"github.com/MKhiriev/go-vault-circle/internal/tree"
	"github.com/MKhiriev/go-vault-circle/internal/utils"
)

type Services struct {
	AuthService     AuthService
	CategoryService CategoryService
	GroupService    GroupService
	SecretService   SecretService
	EncoderService  EncoderService
	JobService      JobService
}

// NewServices wires the service layer onto the repositories, the loaded
// category forest, and the notification channel. The forest must already
// be populated (see tree.Tree.Load) before any service call.
func NewServices(storages *store.Storages, forest *tree.Tree, channel NotificationChannel, cfg config.StructuredConfig, logger *logger.Logger) *Services {
	encoderService := NewEncoderService(forest, storages, logger)
	jobService := NewJobService(forest, storages, encoderService, channel, utils.NewUUIDGenerator(), logger)

	return &Services{
		AuthService:     NewAuthService(storages.UserRepository, jobService, cfg.App, logger),
		CategoryService: NewCategoryService(forest, storages, jobService, logger),
		GroupService:    NewGroupService(storages.GroupRepository, jobService, logger),
		SecretService:   NewSecretService(forest, storages, encoderService, jobService, logger),
		EncoderService:  encoderService,
		JobService:      jobService,
	}
}
