// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ctxKey is an unexported context key type to avoid collisions.
type ctxKey int

const userIDKey ctxKey = iota

// UserIDFromCtx returns the authenticated user's id placed in the context
// by RequireAuth. The zero UUID means the request was not authenticated.
func UserIDFromCtx(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(userIDKey).(uuid.UUID)
	return id
}

// RequireAuth validates the Bearer JWT issued by the external auth service
// and injects the subject claim (the user id) into the request context.
// Tokens must be HS256-signed with the shared secret; anything else is a
// 401. Ownership checks deeper in the stack rely solely on this id.
func RequireAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				writeAuthError(w, "missing bearer token")
				return
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			tok, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				writeAuthError(w, "invalid token")
				return
			}

			sub, err := tok.Claims.GetSubject()
			if err != nil || sub == "" {
				writeAuthError(w, "invalid claims")
				return
			}

			userID, err := uuid.Parse(sub)
			if err != nil {
				writeAuthError(w, "invalid claims")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeAuthError(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
