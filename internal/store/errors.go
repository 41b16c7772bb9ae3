package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrLoginAlreadyExists is returned when an attempt to register a new user
	// fails because a user with the same login already exists in the database.
	ErrLoginAlreadyExists = errors.New("login already exists")

	// ErrUserNotFound is returned when a query expected to match at least one
	// user record produces an empty result set.
	ErrUserNotFound = errors.New("user was not found")

	// ErrGroupNotFound is returned when a referenced group does not exist.
	ErrGroupNotFound = errors.New("group was not found")

	// ErrSecretNotFound is returned when a query or update targets a secret
	// that does not exist in the database.
	ErrSecretNotFound = errors.New("secret was not found")

	// ErrCiphertextNotFound is returned when no encrypted copy of a secret
	// exists for the requested user.
	ErrCiphertextNotFound = errors.New("encrypted secret was not found for user")

	// ErrJobNotFound is returned when a token does not resolve to a live
	// encrypt job. Fulfilled and aborted jobs are deleted, so a retransmitted
	// token lands here.
	ErrJobNotFound = errors.New("encrypt job was not found")

	// ErrJobAlreadyExists is returned when inserting a job violates the
	// uniqueness of live (secret_id, user_id) pairs. The job coordinator
	// treats it as "nothing to do", which closes the check-then-act race
	// between concurrent creations without changing observable behavior.
	ErrJobAlreadyExists = errors.New("live encrypt job already exists for secret and user")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain logic
// can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails (e.g. invalid argument count or unsupported type).
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT or similar
	// read-only query against the database fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrExecutingStatement is returned when executing a DML statement
	// (INSERT, UPDATE, DELETE) fails.
	ErrExecutingStatement = errors.New("failed to execute statement")

	// ErrScanningRow is returned when scanning column values from a single
	// result row into a destination struct fails.
	ErrScanningRow = errors.New("failed to scan row")

	// ErrScanningRows is returned when scanning column values during
	// multi-row iteration fails, typically mid-result-set.
	ErrScanningRows = errors.New("failed to scan rows")
)
