package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type contextKey string

const accountContextKey contextKey = "account"

// accountClaims is what a login puts into the bearer token.
type accountClaims struct {
	AccountID uuid.UUID
	Email     string
}

func (h *Handler) issueAccessToken(accountID uuid.UUID, email string) (string, error) {
	claims := jwt.MapClaims{
		"sub":   accountID.String(),
		"email": email,
		"exp":   time.Now().Add(h.tokenTTL).Unix(),
		"iat":   time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(h.signingKey)
}

func (h *Handler) parseAccessToken(tokenString string) (*accountClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return h.signingKey, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	sub, _ := claims["sub"].(string)
	accountID, err := uuid.Parse(sub)
	if err != nil {
		return nil, errors.New("invalid subject claim")
	}
	addr, _ := claims["email"].(string)

	return &accountClaims{AccountID: accountID, Email: addr}, nil
}

// requireAuth guards endpoints that operate on behalf of a logged-in account.
func (h *Handler) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		raw, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(raw) == "" {
			respondError(w, http.StatusUnauthorized, errors.New("missing bearer token"))
			return
		}

		claims, err := h.parseAccessToken(strings.TrimSpace(raw))
		if err != nil {
			respondError(w, http.StatusUnauthorized, errors.New("invalid token"))
			return
		}

		ctx := context.WithValue(r.Context(), accountContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func claimsFromContext(ctx context.Context) (*accountClaims, bool) {
	claims, ok := ctx.Value(accountContextKey).(*accountClaims)
	return claims, ok
}
