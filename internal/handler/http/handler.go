package http

import (
	"time"

	"github.com/MKhiriev/go-vault-circle/internal/logger"
	"github.com/MKhiriev/go-vault-circle/internal/notify"
	"github.com/MKhiriev/go-vault-circle/internal/service"
)

// defaultPollTimeout caps a notification long-poll request when the
// server configuration does not provide one.
const defaultPollTimeout = 30 * time.Second

// Handler bundles the service layer, the notification hub, and the
// logger behind the REST API routes.
type Handler struct {
	services    *service.Services
	hub         *notify.Hub
	pollTimeout time.Duration
	logger      *logger.Logger
}

// NewHandler returns a Handler wired to the given services and
// notification hub. pollTimeout bounds how long GET /api/notifications
// is held open waiting for a notice; zero selects the default.
func NewHandler(services *service.Services, hub *notify.Hub, pollTimeout time.Duration, logger *logger.Logger) *Handler {
	if pollTimeout <= 0 {
		pollTimeout = defaultPollTimeout
	}

	return &Handler{
		services:    services,
		hub:         hub,
		pollTimeout: pollTimeout,
		logger:      logger,
	}
}
