// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

// validate checks that the final merged [StructuredConfig] satisfies all
// application invariants before it is used at startup.
func (cfg *StructuredConfig) validate() error {
	if cfg.Storage.DB.DSN == "" {
		return ErrInvalidStorageConfigs
	}

	if cfg.App.TokenSignKey == "" || cfg.App.PasswordHashKey == "" {
		return ErrInvalidAppConfigs
	}

	if cfg.Workers.JobTTL != 0 && cfg.Workers.JanitorInterval == 0 {
		return ErrInvalidWorkerConfigs
	}

	return nil
}

// validate checks the agent configuration for the minimum the agent
// needs to reach the server and keep its keyring.
func (cfg *AgentConfig) validate() error {
	if cfg.ServerAddress == "" {
		return ErrInvalidAdapterConfigs
	}

	if cfg.KeyFile == "" {
		return ErrInvalidAgentConfigs
	}

	return nil
}
