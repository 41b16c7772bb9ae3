// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MKhiriev/go-vault-circle/internal/logger"
	"github.com/MKhiriev/go-vault-circle/internal/utils"
	"github.com/MKhiriev/go-vault-circle/models"
)

// fulfillJob accepts a re-encrypted copy produced for the job
// identified by the token in the URL. A token that matches no live job
// yields 404, which tells a racing encoder the work is already done.
func (h *Handler) fulfillJob(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	ctx := r.Context()

	token := chi.URLParam(r, "token")
	if token == "" {
		http.Error(w, "empty job token", http.StatusBadRequest)
		return
	}

	var request models.FulfillRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		log.Err(err).Msg("error during unmarshalling fulfill request")
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	response, err := h.services.JobService.Fulfill(ctx, token, request.EncryptedSecret)
	if err != nil {
		log.Err(err).Str("token", token).Msg("error occurred during job fulfillment")
		http.Error(w, err.Error(), statusFromError(err))
		return
	}

	if _, err := utils.WriteJSON(w, response, http.StatusOK); err != nil {
		log.Err(err).Msg("error writing response")
	}
}

// replayJobs re-advertises every live encrypt job targeting the caller
// whose ciphertext is still missing. Agents call it right after
// connecting to catch up on advertisements missed while offline.
func (h *Handler) replayJobs(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	ctx := r.Context()

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	replayed, err := h.services.JobService.ReplayPending(ctx, userID)
	if err != nil {
		log.Err(err).Msg("error occurred during job replay")
		http.Error(w, err.Error(), statusFromError(err))
		return
	}

	if _, err := utils.WriteJSON(w, map[string]int{"replayed": replayed}, http.StatusOK); err != nil {
		log.Err(err).Msg("error writing response")
	}
}

// pollNotifications is the long-poll notification endpoint. It
// subscribes the caller to the hub and waits for the first notice, the
// poll timeout, or client disconnect, whichever comes first. A timeout
// responds 204 so the agent simply polls again.
func (h *Handler) pollNotifications(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	ctx := r.Context()

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	subscription := h.hub.Subscribe(userID)
	defer subscription.Close()

	timeout := time.NewTimer(h.pollTimeout)
	defer timeout.Stop()

	var notices []models.Notice

	select {
	case notice := <-subscription.C:
		// Drain whatever else queued up while the client was away so one
		// poll carries a batch instead of one notice per round trip.
		notices = append(notices, notice)
		for {
			select {
			case extra := <-subscription.C:
				notices = append(notices, extra)
				continue
			default:
			}
			break
		}
	case <-timeout.C:
		w.WriteHeader(http.StatusNoContent)
		return
	case <-ctx.Done():
		return
	}

	if _, err := utils.WriteJSON(w, notices, http.StatusOK); err != nil {
		log.Err(err).Msg("error writing response")
	}
}
