// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides transport-layer abstractions for the
// re-encryption agent's communication with the vault server.
//
// The primary abstraction is [ServerAdapter], which decouples the agent
// loop from the underlying protocol. The package ships an HTTP/REST
// implementation ([NewHTTPServerAdapter]).
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic
// error handling (e.g. [ErrNotFound] for a retired job token).
package adapter

import (
	"context"

	"github.com/MKhiriev/go-vault-circle/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/server_adapter_mock.go -package=mock

// ServerAdapter defines transport-agnostic communication with the vault
// server. Implementations are responsible for serialisation,
// authentication header management, and mapping transport-level errors
// to the sentinel values defined in this package.
type ServerAdapter interface {
	// SetToken stores the bearer token that will be attached to all
	// subsequent authenticated requests. It should be called immediately
	// after a successful Register or Login.
	SetToken(token string)

	// Token returns the bearer token currently stored in the adapter, or
	// an empty string if no token has been set yet.
	Token() string

	// Register creates a new account. On success it stores the returned
	// bearer token via SetToken.
	Register(ctx context.Context, user models.User) error

	// Login authenticates with the server. On success it stores the
	// returned bearer token via SetToken.
	Login(ctx context.Context, user models.User) error

	// UploadPublicKey publishes the agent's DER-encoded public key,
	// making the account eligible to receive re-encrypted secret copies.
	UploadPublicKey(ctx context.Context, publicKey []byte) error

	// PollNotifications long-polls the notification endpoint and returns
	// the delivered batch. An empty batch (server timeout) is not an
	// error; it simply means nothing arrived within the poll window.
	PollNotifications(ctx context.Context) ([]models.Notice, error)

	// ReplayJobs asks the server to re-advertise every pending encrypt
	// job targeting this account. Returns how many were re-advertised.
	ReplayJobs(ctx context.Context) (int, error)

	// GetMyCiphertext fetches the agent's own encrypted copy of the
	// secret. Returns [ErrNotFound] (wrapped) when no copy exists yet.
	GetMyCiphertext(ctx context.Context, secretID int64) (models.UserEncryptedSecret, error)

	// FulfillJob submits a freshly re-encrypted copy for the job
	// identified by token. Returns [ErrNotFound] (wrapped) when the job
	// was already retired by another encoder.
	FulfillJob(ctx context.Context, token string, ciphertext []byte) (models.FulfillResponse, error)
}
