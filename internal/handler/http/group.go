package http

import (
	"encoding/json"
	"net/http"

	"github.com/MKhiriev/go-vault-circle/internal/logger"
	"github.com/MKhiriev/go-vault-circle/internal/utils"
	"github.com/MKhiriev/go-vault-circle/models"
)

// createGroup creates a new access group.
func (h *Handler) createGroup(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	ctx := r.Context()

	var group models.Group
	if err := json.NewDecoder(r.Body).Decode(&group); err != nil {
		log.Err(err).Msg("error during unmarshalling group")
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	createdGroup, err := h.services.GroupService.CreateGroup(ctx, group)
	if err != nil {
		log.Err(err).Str("name", group.Name).Msg("error occurred during group creation")
		http.Error(w, err.Error(), statusFromError(err))
		return
	}

	if _, err := utils.WriteJSON(w, createdGroup, http.StatusCreated); err != nil {
		log.Err(err).Msg("error writing response")
	}
}

// addGroupMember adds a user to a group and opens catch-up encrypt
// jobs for every secret the group grants them.
func (h *Handler) addGroupMember(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	ctx := r.Context()

	groupID, err := pathID(r, "groupID")
	if err != nil {
		http.Error(w, "invalid group id", http.StatusBadRequest)
		return
	}

	var request models.AddGroupMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		log.Err(err).Msg("error during unmarshalling member request")
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.services.GroupService.AddMember(ctx, groupID, request.UserID); err != nil {
		log.Err(err).
			Int64("group_id", groupID).
			Int64("user_id", request.UserID).
			Msg("error occurred during member addition")
		http.Error(w, err.Error(), statusFromError(err))
		return
	}

	w.WriteHeader(http.StatusOK)
}
