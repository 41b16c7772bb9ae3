package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// AgentConfig is the configuration of the peer re-encryption agent
// (cmd/agent). The agent is configured from environment variables only:
// it runs headless, usually under a supervisor, so flag and file merging
// would be dead weight.
type AgentConfig struct {
	// ServerAddress is the base URL of the vault server API
	// (e.g. "http://localhost:8080").
	// Env: AGENT_SERVER_ADDRESS
	ServerAddress string `env:"SERVER_ADDRESS"`

	// Login and Password authenticate the agent's user account.
	// Env: AGENT_LOGIN, AGENT_PASSWORD
	Login    string `env:"LOGIN"`
	Password string `env:"PASSWORD"`

	// KeyFile is the path of the wrapped private keyring on disk.
	// Env: AGENT_KEY_FILE
	KeyFile string `env:"KEY_FILE"`

	// KeyPassphrase unwraps the keyring at startup.
	// Env: AGENT_KEY_PASSPHRASE
	KeyPassphrase string `env:"KEY_PASSPHRASE"`

	// PollInterval is the pause between notification polls when the
	// previous poll came back empty.
	// Env: AGENT_POLL_INTERVAL
	PollInterval time.Duration `env:"POLL_INTERVAL" envDefault:"5s"`

	// RequestTimeout bounds every outbound API call.
	// Env: AGENT_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
}

// GetAgentConfig loads and validates the agent configuration from
// AGENT_-prefixed environment variables.
func GetAgentConfig() (*AgentConfig, error) {
	cfg := &AgentConfig{}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: "AGENT_"}); err != nil {
		return nil, fmt.Errorf("error getting agent env configs: %w", err)
	}

	return cfg, cfg.validate()
}
