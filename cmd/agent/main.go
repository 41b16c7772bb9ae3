package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/MKhiriev/go-vault-circle/internal/adapter"
	"github.com/MKhiriev/go-vault-circle/internal/agent"
	"github.com/MKhiriev/go-vault-circle/internal/config"
	"github.com/MKhiriev/go-vault-circle/internal/crypto"
	"github.com/MKhiriev/go-vault-circle/internal/logger"
)

func main() {
	log := logger.NewAgentLogger("vault-circle-agent")

	cfg, err := config.GetAgentConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting agent configs")
	}

	keyring, err := loadOrCreateKeyRing(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error preparing keyring")
	}

	serverAdapter, err := adapter.NewHTTPServerAdapter(*cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server adapter")
	}

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
		syscall.SIGQUIT,
	)
	defer stop()

	a := agent.New(serverAdapter, keyring, cfg.Login, cfg.Password, cfg.PollInterval, log)

	if err := a.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("agent stopped with error")
	}

	log.Info().Msg("agent stopped")
}

// loadOrCreateKeyRing restores the wrapped keyring from disk, or
// generates and persists a fresh one on first run.
func loadOrCreateKeyRing(cfg *config.AgentConfig, log *logger.Logger) (crypto.KeyRing, error) {
	keyring, err := crypto.LoadKeyRing(cfg.KeyFile, cfg.KeyPassphrase)
	if err == nil {
		log.Info().Str("key_file", cfg.KeyFile).Msg("keyring restored")
		return keyring, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	keyring, err = crypto.NewKeyRing()
	if err != nil {
		return nil, err
	}
	if err = keyring.Save(cfg.KeyFile, cfg.KeyPassphrase); err != nil {
		return nil, err
	}

	log.Info().Str("key_file", cfg.KeyFile).Msg("fresh keyring generated")
	return keyring, nil
}
