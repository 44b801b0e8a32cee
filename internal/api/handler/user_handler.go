package handler

import (
	"encoding/json"
	"net/http"

	"member_console/internal/api/middleware"
	"member_console/internal/app/service"
	"member_console/internal/common"

	"github.com/go-chi/chi/v5"
)

type UserHandler struct {
	accountService *service.AccountService
}

func NewUserHandler(accountService *service.AccountService) *UserHandler {
	return &UserHandler{accountService: accountService}
}

// RegisterRoutes puts the whole subtree behind the strong gate: listing and
// stats are open to any approved account, status changes to admins only.
func (h *UserHandler) RegisterRoutes(r chi.Router, gate *middleware.Gate) {
	r.Use(gate.Authenticator)
	r.Use(gate.RequireApproved)

	r.Get("/", h.list)       // GET /api/users?status=
	r.Get("/stats", h.stats) // GET /api/users/stats

	r.Group(func(adminRouter chi.Router) {
		adminRouter.Use(gate.AdminOnly)
		adminRouter.Patch("/{accountID}/status", h.changeStatus) // PATCH /api/users/{id}/status
	})
}

func (h *UserHandler) list(w http.ResponseWriter, r *http.Request) {
	filter := r.URL.Query().Get("status")

	accounts, err := h.accountService.List(r.Context(), filter)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, accounts)
}

func (h *UserHandler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.accountService.Stats(r.Context())
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, stats)
}

func (h *UserHandler) changeStatus(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountID")

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	account, err := h.accountService.ChangeStatus(r.Context(), accountID, req.Status)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, account)
}
