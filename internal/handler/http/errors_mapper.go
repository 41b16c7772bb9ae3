// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/go-vault-circle/internal/service"
	"github.com/MKhiriev/go-vault-circle/internal/store"
	"github.com/MKhiriev/go-vault-circle/internal/tree"
)

// errorStatusMap translates well-known service and storage errors into
// HTTP status codes. Errors absent from the map fall through to
// HTTP 500 in statusFromError.
var errorStatusMap = map[error]int{
	service.ErrInvalidDataProvided:     http.StatusBadRequest,
	service.ErrWrongPassword:           http.StatusUnauthorized,
	service.ErrTokenIsExpiredOrInvalid: http.StatusUnauthorized,
	service.ErrNotAccessible:           http.StatusForbidden,

	service.ErrJobNotFound:      http.StatusNotFound,
	tree.ErrCategoryNotFound:    http.StatusNotFound,
	store.ErrUserNotFound:       http.StatusNotFound,
	store.ErrGroupNotFound:      http.StatusNotFound,
	store.ErrSecretNotFound:     http.StatusNotFound,
	store.ErrCiphertextNotFound: http.StatusNotFound,
	store.ErrJobNotFound:        http.StatusNotFound,

	tree.ErrNameConflict:        http.StatusConflict,
	tree.ErrCycleConflict:       http.StatusConflict,
	store.ErrLoginAlreadyExists: http.StatusConflict,
	store.ErrJobAlreadyExists:   http.StatusConflict,
}

// statusFromError resolves err into an HTTP status code via
// errorStatusMap, unwrapping with errors.Is so wrapped service errors
// still match.
func statusFromError(err error) int {
	for sentinel, status := range errorStatusMap {
		if errors.Is(err, sentinel) {
			return status
		}
	}

	return http.StatusInternalServerError
}
