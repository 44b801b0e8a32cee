package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"member_console/internal/api/middleware"
	"member_console/internal/app/service"
	"member_console/internal/common"

	"github.com/go-chi/chi/v5"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) RegisterRoutes(r chi.Router, gate *middleware.Gate) {
	r.Post("/register", h.register)
	r.Post("/login", h.login)

	// /me only needs the weak gate: a pending account may read its own state.
	r.Group(func(weakRouter chi.Router) {
		weakRouter.Use(gate.Authenticator)
		weakRouter.Get("/me", h.me)
	})
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	account, err := h.authService.Register(r.Context(), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, account)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	resp, err := h.authService.Login(r.Context(), req)
	if err != nil {
		var notApproved *common.NotApprovedError
		if errors.As(err, &notApproved) {
			// Identity is proven, so the 403 may say who is not approved.
			common.RespondWithJSON(w, http.StatusForbidden, struct {
				Error string                   `json:"error"`
				User  *common.NotApprovedError `json:"user"`
			}{Error: notApproved.Error(), User: notApproved})
			return
		}
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) me(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing account context")
		return
	}

	account, err := h.authService.GetSelf(r.Context(), accountID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, account)
}
