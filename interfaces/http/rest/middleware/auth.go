package middleware

import (
	"errors"
	"net/http"
	"strings"

	"questnote/pkg/auth"
	"questnote/pkg/common"

	"go.uber.org/zap"
)

// LocalIDHeader carries an anonymous actor's previously-issued local id.
// The scoping resolver turns it into a stable owner id, so anonymous
// sessions survive reloads without any account.
const LocalIDHeader = "X-Local-ID"

// Identify builds the actor for the request. A valid bearer token yields
// an authenticated actor; otherwise the local-id header, when present,
// yields an anonymous one. Requests with neither still pass through with
// an empty anonymous actor, for which the resolver mints a fresh id.
// Only a token that is present but invalid is rejected.
func Identify(validator *auth.JWTValidator, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := &auth.Actor{
				LocalID: strings.TrimSpace(r.Header.Get(LocalIDHeader)),
			}

			if token := extractToken(r); token != "" {
				claims, err := validator.ValidateToken(token)
				if err != nil {
					logger.Warn("token rejected",
						zap.String("path", r.URL.Path),
						zap.Error(err),
					)
					if errors.Is(err, auth.ErrExpiredToken) {
						common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "token has expired")
					} else {
						common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid token")
					}
					return
				}
				actor.ID = claims.UserID
				actor.Email = claims.Email
				actor.Authenticated = true
			}

			ctx := auth.SetActorInContext(r.Context(), actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken pulls a bearer token from the Authorization header.
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return parts[1]
	}
	return authHeader
}
