package config

import (
	"flag"
	"time"
)

// ParseFlags parses all configuration flags.
//
// Flags:
//
//	-a server address in format [host]:[port]
//	-d database DSN
//	-c/-config json file path with configs
//	-password-hash-key password hash key
//	-token-sign-key token signing key
//	-token-issuer token issuer name
//	-token-duration token duration (e.g., "1h", "30m")
//	-request-timeout request timeout (e.g., "30s", "1m")
//	-poll-timeout notification long-poll timeout (e.g., "25s")
//	-job-ttl encrypt job time-to-live; 0 disables expiry
//	-janitor-interval expired-job sweep interval
func ParseFlags() *StructuredConfig {
	var serverAddress string
	var databaseDSN string
	var jsonConfigPath string
	var passwordHashKey string
	var tokenSignKey string
	var tokenIssuer string
	var tokenDuration time.Duration
	var requestTimeout time.Duration
	var pollTimeout time.Duration
	var jobTTL time.Duration
	var janitorInterval time.Duration

	flag.StringVar(&serverAddress, "a", "", "Net address host:port")
	flag.StringVar(&databaseDSN, "d", "", "Database DSN")
	flag.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flag.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	flag.StringVar(&passwordHashKey, "password-hash-key", "", "Password hash key")
	flag.StringVar(&tokenSignKey, "token-sign-key", "", "Token signing key")
	flag.StringVar(&tokenIssuer, "token-issuer", "", "Token issuer")
	flag.DurationVar(&tokenDuration, "token-duration", 0, "Token duration (e.g., 1h, 30m)")
	flag.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 30s, 1m)")
	flag.DurationVar(&pollTimeout, "poll-timeout", 0, "Notification long-poll timeout (e.g., 25s)")
	flag.DurationVar(&jobTTL, "job-ttl", 0, "Encrypt job time-to-live; 0 disables expiry")
	flag.DurationVar(&janitorInterval, "janitor-interval", 0, "Expired-job sweep interval")
	flag.Parse()

	return &StructuredConfig{
		App: App{
			PasswordHashKey: passwordHashKey,
			TokenSignKey:    tokenSignKey,
			TokenIssuer:     tokenIssuer,
			TokenDuration:   tokenDuration,
		},
		Storage: Storage{
			DB: DB{DSN: databaseDSN},
		},
		Server: Server{
			HTTPAddress:    serverAddress,
			RequestTimeout: requestTimeout,
			PollTimeout:    pollTimeout,
		},
		Workers: Workers{
			JobTTL:          jobTTL,
			JanitorInterval: janitorInterval,
		},
		JSONFilePath: jsonConfigPath,
	}
}
