package http

import (
	"encoding/json"
	"net/http"

	"github.com/MKhiriev/go-vault-circle/internal/logger"
	"github.com/MKhiriev/go-vault-circle/internal/utils"
	"github.com/MKhiriev/go-vault-circle/models"
)

// createSecret stores a new secret together with the creator's own
// encrypted copy and opens encrypt jobs for the other eligible
// recipients.
func (h *Handler) createSecret(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	ctx := r.Context()

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var request models.CreateSecretRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		log.Err(err).Msg("error during unmarshalling secret request")
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	secret, err := h.services.SecretService.CreateSecret(ctx, userID, request)
	if err != nil {
		log.Err(err).Str("name", request.Name).Msg("error occurred during secret creation")
		http.Error(w, err.Error(), statusFromError(err))
		return
	}

	if _, err := utils.WriteJSON(w, secret, http.StatusCreated); err != nil {
		log.Err(err).Msg("error writing response")
	}
}

// getSecret returns secret metadata by ID. The ciphertext is served
// separately by getMyCiphertext.
func (h *Handler) getSecret(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	ctx := r.Context()

	secretID, err := pathID(r, "secretID")
	if err != nil {
		http.Error(w, "invalid secret id", http.StatusBadRequest)
		return
	}

	secret, err := h.services.SecretService.GetSecret(ctx, secretID)
	if err != nil {
		log.Err(err).Int64("secret_id", secretID).Msg("error occurred during secret lookup")
		http.Error(w, err.Error(), statusFromError(err))
		return
	}

	if _, err := utils.WriteJSON(w, secret, http.StatusOK); err != nil {
		log.Err(err).Msg("error writing response")
	}
}

// getMyCiphertext returns the caller's own encrypted copy of the
// secret. Responds 404 when the copy has not been produced yet and 403
// when the secret is outside the caller's reach.
func (h *Handler) getMyCiphertext(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	ctx := r.Context()

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	secretID, err := pathID(r, "secretID")
	if err != nil {
		http.Error(w, "invalid secret id", http.StatusBadRequest)
		return
	}

	ciphertext, err := h.services.SecretService.GetMyCiphertext(ctx, userID, secretID)
	if err != nil {
		log.Err(err).Int64("secret_id", secretID).Msg("error occurred during ciphertext lookup")
		http.Error(w, err.Error(), statusFromError(err))
		return
	}

	if _, err := utils.WriteJSON(w, ciphertext, http.StatusOK); err != nil {
		log.Err(err).Msg("error writing response")
	}
}

// assignSecretCategory moves a secret into another category, or out of
// any category when the body carries a zero category ID.
func (h *Handler) assignSecretCategory(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	ctx := r.Context()

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	secretID, err := pathID(r, "secretID")
	if err != nil {
		http.Error(w, "invalid secret id", http.StatusBadRequest)
		return
	}

	var request models.AssignCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		log.Err(err).Msg("error during unmarshalling assign request")
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.services.SecretService.AssignCategory(ctx, userID, secretID, request.CategoryID); err != nil {
		log.Err(err).
			Int64("secret_id", secretID).
			Int64("category_id", request.CategoryID).
			Msg("error occurred during category assignment")
		http.Error(w, err.Error(), statusFromError(err))
		return
	}

	w.WriteHeader(http.StatusOK)
}

// deleteSecret removes a secret, its ciphertext copies, and every live
// encrypt job opened for it.
func (h *Handler) deleteSecret(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	ctx := r.Context()

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	secretID, err := pathID(r, "secretID")
	if err != nil {
		http.Error(w, "invalid secret id", http.StatusBadRequest)
		return
	}

	if err := h.services.SecretService.DeleteSecret(ctx, userID, secretID); err != nil {
		log.Err(err).Int64("secret_id", secretID).Msg("error occurred during secret deletion")
		http.Error(w, err.Error(), statusFromError(err))
		return
	}

	w.WriteHeader(http.StatusOK)
}
