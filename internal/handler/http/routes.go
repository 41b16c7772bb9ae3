// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Init wires the REST API routes and returns the router.
//
// Registration and login are public; every other route requires a valid
// bearer token and runs with the authenticated user's ID in the request
// context.
func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()

	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID)
	router.Use(withLogging)

	router.Group(func(public chi.Router) {
		public.Post("/api/user/register", h.register)
		public.Post("/api/user/login", h.login)
	})

	router.Group(func(private chi.Router) {
		private.Use(h.auth)

		private.Post("/api/user/publickey", h.uploadPublicKey)

		private.Route("/api/categories", func(r chi.Router) {
			r.Get("/", h.visibleCategories)
			r.Post("/", h.createCategory)
			r.Post("/move", h.moveCategory)
			r.Get("/{categoryID}", h.getCategory)
			r.Delete("/{categoryID}", h.deleteCategory)
			r.Get("/{categoryID}/children", h.categoryChildren)
			r.Put("/{categoryID}/groups", h.grantCategoryGroups)
			r.Put("/{categoryID}/responsible", h.setCategoryResponsible)
		})

		private.Route("/api/secrets", func(r chi.Router) {
			r.Post("/", h.createSecret)
			r.Get("/{secretID}", h.getSecret)
			r.Delete("/{secretID}", h.deleteSecret)
			r.Get("/{secretID}/ciphertext", h.getMyCiphertext)
			r.Post("/{secretID}/category", h.assignSecretCategory)
		})

		private.Route("/api/groups", func(r chi.Router) {
			r.Post("/", h.createGroup)
			r.Post("/{groupID}/members", h.addGroupMember)
		})

		private.Post("/api/jobs/{token}/fulfill", h.fulfillJob)
		private.Post("/api/jobs/replay", h.replayJobs)

		private.Get("/api/notifications", h.pollNotifications)
	})

	return router
}
