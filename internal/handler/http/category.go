// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MKhiriev/go-vault-circle/internal/logger"
	"github.com/MKhiriev/go-vault-circle/internal/utils"
	"github.com/MKhiriev/go-vault-circle/models"
)

// createCategory creates a category under the parent named in the body.
// A zero parent ID creates a new root.
func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	ctx := r.Context()

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var request models.CreateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		log.Err(err).Msg("error during unmarshalling category request")
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	category, err := h.services.CategoryService.Create(ctx, request.Name, request.ParentID, userID)
	if err != nil {
		log.Err(err).Str("name", request.Name).Msg("error occurred during category creation")
		http.Error(w, err.Error(), statusFromError(err))
		return
	}

	if _, err := utils.WriteJSON(w, category, http.StatusCreated); err != nil {
		log.Err(err).Msg("error writing response")
	}
}

// moveCategory reparents a category subtree.
func (h *Handler) moveCategory(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	ctx := r.Context()

	var request models.MoveCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		log.Err(err).Msg("error during unmarshalling move request")
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.services.CategoryService.Move(ctx, request.ChildID, request.ParentID); err != nil {
		log.Err(err).
			Int64("category_id", request.ChildID).
			Int64("parent_id", request.ParentID).
			Msg("error occurred during category move")
		http.Error(w, err.Error(), statusFromError(err))
		return
	}

	w.WriteHeader(http.StatusOK)
}

// getCategory returns a single category by ID.
func (h *Handler) getCategory(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	ctx := r.Context()

	categoryID, err := pathID(r, "categoryID")
	if err != nil {
		http.Error(w, "invalid category id", http.StatusBadRequest)
		return
	}

	category, err := h.services.CategoryService.Get(ctx, categoryID)
	if err != nil {
		log.Err(err).Int64("category_id", categoryID).Msg("error occurred during category lookup")
		http.Error(w, err.Error(), statusFromError(err))
		return
	}

	if _, err := utils.WriteJSON(w, category, http.StatusOK); err != nil {
		log.Err(err).Msg("error writing response")
	}
}

// categoryChildren returns the direct children of a category.
func (h *Handler) categoryChildren(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	ctx := r.Context()

	categoryID, err := pathID(r, "categoryID")
	if err != nil {
		http.Error(w, "invalid category id", http.StatusBadRequest)
		return
	}

	children, err := h.services.CategoryService.Children(ctx, categoryID)
	if err != nil {
		log.Err(err).Int64("category_id", categoryID).Msg("error occurred during children lookup")
		http.Error(w, err.Error(), statusFromError(err))
		return
	}

	if _, err := utils.WriteJSON(w, children, http.StatusOK); err != nil {
		log.Err(err).Msg("error writing response")
	}
}

// visibleCategories returns the caller's visible pool reduced to its
// maximal antichain.
func (h *Handler) visibleCategories(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	ctx := r.Context()

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	categories, err := h.services.CategoryService.Visible(ctx, userID)
	if err != nil {
		log.Err(err).Msg("error occurred during visible categories lookup")
		http.Error(w, err.Error(), statusFromError(err))
		return
	}

	if _, err := utils.WriteJSON(w, categories, http.StatusOK); err != nil {
		log.Err(err).Msg("error writing response")
	}
}

// deleteCategory deletes a category subtree and returns the IDs of all
// removed categories.
func (h *Handler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	ctx := r.Context()

	categoryID, err := pathID(r, "categoryID")
	if err != nil {
		http.Error(w, "invalid category id", http.StatusBadRequest)
		return
	}

	deletedIDs, err := h.services.CategoryService.Delete(ctx, categoryID)
	if err != nil {
		log.Err(err).Int64("category_id", categoryID).Msg("error occurred during category deletion")
		http.Error(w, err.Error(), statusFromError(err))
		return
	}

	if _, err := utils.WriteJSON(w, deletedIDs, http.StatusOK); err != nil {
		log.Err(err).Msg("error writing response")
	}
}

// grantCategoryGroups replaces the category's granted group set and
// opens catch-up jobs for members of newly added groups.
func (h *Handler) grantCategoryGroups(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	ctx := r.Context()

	categoryID, err := pathID(r, "categoryID")
	if err != nil {
		http.Error(w, "invalid category id", http.StatusBadRequest)
		return
	}

	var request models.GrantGroupsRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		log.Err(err).Msg("error during unmarshalling grant request")
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.services.CategoryService.GrantGroups(ctx, categoryID, request.GroupIDs); err != nil {
		log.Err(err).Int64("category_id", categoryID).Msg("error occurred during group grant")
		http.Error(w, err.Error(), statusFromError(err))
		return
	}

	w.WriteHeader(http.StatusOK)
}

// setCategoryResponsible appoints a responsible user for the category
// and opens catch-up jobs for them across the subtree.
func (h *Handler) setCategoryResponsible(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	ctx := r.Context()

	categoryID, err := pathID(r, "categoryID")
	if err != nil {
		http.Error(w, "invalid category id", http.StatusBadRequest)
		return
	}

	var request models.SetResponsibleRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		log.Err(err).Msg("error during unmarshalling responsible request")
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.services.CategoryService.SetResponsible(ctx, categoryID, request.UserID); err != nil {
		log.Err(err).
			Int64("category_id", categoryID).
			Int64("user_id", request.UserID).
			Msg("error occurred during responsible assignment")
		http.Error(w, err.Error(), statusFromError(err))
		return
	}

	w.WriteHeader(http.StatusOK)
}

// pathID parses the named chi URL parameter as an int64 identifier.
func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}
