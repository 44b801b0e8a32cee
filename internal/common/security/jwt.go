package security

import (
	"context"
	"errors"
	"log"
	"time"

	"member_console/internal/common"
	"member_console/internal/platform/config"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

var TokenAuth *jwtauth.JWTAuth

func InitJWT() {
	TokenAuth = jwtauth.New("HS256", config.AppConfig.JWTKey, nil)
}

// GenerateToken issues a signed HS256 token carrying the account id and role.
// Expiry is fixed at creation time; there is no refresh operation.
func GenerateToken(accountID, role string) (string, error) {
	claims := jwt.MapClaims{
		"account_id": accountID,
		"role":       role,
		"exp":        time.Now().Add(config.AppConfig.JWTExp).Unix(),
		"iat":        time.Now().Unix(),
	}
	_, tokenString, err := TokenAuth.Encode(claims)
	return tokenString, err
}

// ParseToken verifies a token string and extracts its identity claims.
// Any failure (bad signature, expired, malformed) surfaces as the same
// unauthorized error; the underlying cause is only logged.
func ParseToken(tokenString string) (accountID, role string, err error) {
	token, err := jwtauth.VerifyToken(TokenAuth, tokenString)
	if err != nil {
		log.Printf("security: token rejected: %v", err)
		return "", "", common.ErrUnauthorized
	}
	claims, err := token.AsMap(context.Background())
	if err != nil {
		log.Printf("security: token claims unreadable: %v", err)
		return "", "", common.ErrUnauthorized
	}
	accountID, err = GetAccountIDFromClaims(claims)
	if err != nil {
		return "", "", common.ErrUnauthorized
	}
	role, err = GetRoleFromClaims(claims)
	if err != nil {
		return "", "", common.ErrUnauthorized
	}
	return accountID, role, nil
}

// Helper functions to extract claims, used by middleware and ParseToken.
func GetAccountIDFromClaims(claims jwt.MapClaims) (string, error) {
	id, ok := claims["account_id"].(string)
	if !ok {
		return "", errors.New("account_id claim is missing or not a string")
	}
	return id, nil
}

func GetRoleFromClaims(claims jwt.MapClaims) (string, error) {
	role, ok := claims["role"].(string)
	if !ok {
		return "", errors.New("role claim is missing or not a string")
	}
	return role, nil
}
