package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"member_console/internal/common"
	"member_console/internal/common/security"
	"member_console/internal/domain/model"
	"member_console/internal/domain/repository"

	"github.com/go-chi/jwtauth/v5"
)

type contextKey string

const (
	AccountIDCtxKey   contextKey = "accountID"
	AccountRoleCtxKey contextKey = "accountRole"
)

// Gate is the ordered authorization chain. The weak gate (Authenticator)
// only proves token validity; the strong gate (RequireApproved) re-reads
// role and status from storage on every request, so a rejected account
// loses access immediately even while its token is still signature-valid.
type Gate struct {
	accounts repository.AccountRepository
}

func NewGate(accounts repository.AccountRepository) *Gate {
	return &Gate{accounts: accounts}
}

// Authenticator is the weak gate: a valid bearer token is required.
// Verification detail (signature vs expiry vs malformed) is logged but
// never surfaced to the caller.
func (g *Gate) Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context()) // Extracts token from Authorization header

		if err != nil {
			if strings.Contains(err.Error(), "token not found") || token == nil {
				common.RespondWithError(w, http.StatusUnauthorized, "Authorization token required")
			} else {
				log.Printf("auth: token rejected: %v", err)
				common.RespondWithError(w, http.StatusUnauthorized, "Invalid token")
			}
			return
		}

		if token == nil {
			common.RespondWithError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		accountID, err := security.GetAccountIDFromClaims(claims)
		if err != nil {
			log.Printf("auth: token claims rejected: %v", err)
			common.RespondWithError(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		role, err := security.GetRoleFromClaims(claims)
		if err != nil {
			log.Printf("auth: token claims rejected: %v", err)
			common.RespondWithError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), AccountIDCtxKey, accountID)
		ctx = context.WithValue(ctx, AccountRoleCtxKey, role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireApproved is the strong gate. It must run after Authenticator.
// The account is re-fetched so the approval decision never trusts stale
// token claims, and the freshly read role replaces the token's role claim.
func (g *Gate) RequireApproved(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accountID, ok := GetAccountIDFromContext(r.Context())
		if !ok {
			common.RespondWithError(w, http.StatusUnauthorized, "Missing account context")
			return
		}

		account, err := g.accounts.FindByID(r.Context(), accountID)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				common.RespondWithError(w, http.StatusNotFound, "Account not found")
				return
			}
			log.Printf("auth: account lookup failed: %v", err)
			common.RespondWithError(w, http.StatusInternalServerError, "Failed to verify account")
			return
		}

		if account.Status != model.StatusApproved {
			common.RespondWithError(w, http.StatusForbidden, "Account not approved")
			return
		}

		ctx := context.WithValue(r.Context(), AccountRoleCtxKey, account.Role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AdminOnly must run after RequireApproved so the role comes from storage.
func (g *Gate) AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, ok := r.Context().Value(AccountRoleCtxKey).(string)
		if !ok || role != model.RoleAdmin {
			common.RespondWithError(w, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Helper to get account ID from context
func GetAccountIDFromContext(ctx context.Context) (string, bool) {
	accountID, ok := ctx.Value(AccountIDCtxKey).(string)
	return accountID, ok
}

// Helper to get account role from context
func GetAccountRoleFromContext(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(AccountRoleCtxKey).(string)
	return role, ok
}
