package handler

import (
	"github.com/MKhiriev/go-vault-circle/internal/config"
	"github.com/MKhiriev/go-vault-circle/internal/handler/http"
	"github.com/MKhiriev/go-vault-circle/internal/logger"
	"github.com/MKhiriev/go-vault-circle/internal/notify"
	"github.com/MKhiriev/go-vault-circle/internal/service"
)

type Handlers struct {
	HTTP *http.Handler
}

func NewHandlers(services *service.Services, hub *notify.Hub, cfg config.Server, logger *logger.Logger) (*Handlers, error) {
	logger.Info().Msg("creating new handlers...")

	handlers := &Handlers{}

	if cfg.HTTPAddress != "" {
		handlers.HTTP = http.NewHandler(services, hub, cfg.PollTimeout, logger)
	}

	if handlers.HTTP == nil {
		return nil, errNoHandlersAreCreated
	}

	return handlers, nil
}
