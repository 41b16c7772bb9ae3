package service

import "errors"

var (
	ErrInvalidDataProvided = errors.New("invalid data provided")
	ErrWrongPassword       = errors.New("wrong password")

	ErrTokenCreationFailed     = errors.New("token creation failed")
	ErrTokenIsExpiredOrInvalid = errors.New("token is expired or invalid")

	// ErrNotAccessible reports an operation on a secret or category
	// outside the caller's granted reach.
	ErrNotAccessible = errors.New("not accessible")

	// ErrJobNotFound reports a fulfillment token that matches no live
	// job. Returned both for unknown tokens and for jobs already retired
	// by an earlier fulfillment or abort.
	ErrJobNotFound = errors.New("job is not found")
)
