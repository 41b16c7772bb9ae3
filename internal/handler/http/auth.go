package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/MKhiriev/go-vault-circle/internal/logger"
	"github.com/MKhiriev/go-vault-circle/internal/service"
	"github.com/MKhiriev/go-vault-circle/internal/store"
	"github.com/MKhiriev/go-vault-circle/internal/utils"
	"github.com/MKhiriev/go-vault-circle/models"
)

// register creates a new user account and issues a JWT token in the
// "Authorization" response header.
func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	ctx := r.Context()

	var user models.User
	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		log.Err(err).Msg("error during unmarshalling user")
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	registeredUser, err := h.services.AuthService.RegisterUser(ctx, user)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidDataProvided):
			log.Err(err).Msg("invalid registration data")
			http.Error(w, service.ErrInvalidDataProvided.Error(), http.StatusBadRequest)
			return
		case errors.Is(err, store.ErrLoginAlreadyExists):
			log.Err(err).Msg("login already taken")
			http.Error(w, store.ErrLoginAlreadyExists.Error(), http.StatusConflict)
			return
		default:
			log.Err(err).Msg("error occurred during user registration")
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
	}

	token, err := h.services.AuthService.CreateToken(ctx, registeredUser)
	if err != nil {
		log.Err(err).Msg("error occurred during token creation")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Authorization", fmt.Sprintf("Bearer %s", token.SignedString))
	w.WriteHeader(http.StatusOK)
}

// login verifies credentials and issues a JWT token in the
// "Authorization" response header.
func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	ctx := r.Context()

	var user models.User
	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		log.Err(err).Msg("error during unmarshalling user")
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	foundUser, err := h.services.AuthService.Login(ctx, user)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidDataProvided):
			log.Err(err).Msg("invalid login data")
			http.Error(w, service.ErrInvalidDataProvided.Error(), http.StatusBadRequest)
			return
		case errors.Is(err, store.ErrUserNotFound), errors.Is(err, service.ErrWrongPassword):
			log.Err(err).Msg("wrong login or password")
			http.Error(w, service.ErrWrongPassword.Error(), http.StatusUnauthorized)
			return
		default:
			log.Err(err).Msg("error occurred during login")
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
	}

	token, err := h.services.AuthService.CreateToken(ctx, foundUser)
	if err != nil {
		log.Err(err).Msg("error occurred during token creation")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Authorization", fmt.Sprintf("Bearer %s", token.SignedString))
	w.WriteHeader(http.StatusOK)
}

// uploadPublicKey stores the caller's public key and opens catch-up
// encrypt jobs for every secret the caller should hold.
func (h *Handler) uploadPublicKey(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	ctx := r.Context()

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var request models.UploadPublicKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		log.Err(err).Msg("error during unmarshalling public key request")
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if len(request.PublicKey) == 0 {
		http.Error(w, service.ErrInvalidDataProvided.Error(), http.StatusBadRequest)
		return
	}

	if err := h.services.AuthService.UploadPublicKey(ctx, userID, request.PublicKey); err != nil {
		log.Err(err).Msg("error occurred during public key upload")
		http.Error(w, http.StatusText(statusFromError(err)), statusFromError(err))
		return
	}

	w.WriteHeader(http.StatusOK)
}
