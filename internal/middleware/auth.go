package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"kivo/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type contextKey string

const (
	ProfileIDKey contextKey = "profile_id"
	IsAdminKey   contextKey = "is_admin"
)

// Principal is the resolved identity of an authenticated request
type Principal struct {
	ProfileID uuid.UUID
	IsAdmin   bool
}

// AuthMiddleware validates bearer tokens issued by the external identity
// provider and resolves the linked profile. The token's subject is the
// provider-side user id; the profile row carries the admin flag. Only the
// resolved {profile id, is_admin} pair is exposed downstream.
func AuthMiddleware(jwtSecret string, profileRepo repository.ProfileRepository, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Debug("Missing authorization header")
				RespondWithError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				logger.Debug("Invalid authorization header format")
				RespondWithError(w, http.StatusUnauthorized, "invalid authorization header format")
				return
			}

			tokenString := parts[1]

			token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})

			if err != nil {
				logger.Debug("Token validation failed", zap.Error(err))
				if errors.Is(err, jwt.ErrTokenExpired) {
					RespondWithError(w, http.StatusUnauthorized, "token expired")
				} else {
					RespondWithError(w, http.StatusUnauthorized, "invalid token")
				}
				return
			}

			if !token.Valid {
				logger.Debug("Invalid token")
				RespondWithError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				logger.Error("Failed to extract claims from token")
				RespondWithError(w, http.StatusUnauthorized, "invalid token claims")
				return
			}

			authID, ok := claims["sub"].(string)
			if !ok || authID == "" {
				logger.Error("Missing subject in token claims")
				RespondWithError(w, http.StatusUnauthorized, "invalid token claims")
				return
			}

			profile, err := profileRepo.FindByAuthID(r.Context(), authID)
			if err != nil {
				if errors.Is(err, repository.ErrProfileNotFound) {
					logger.Debug("No profile linked to token subject", zap.String("auth_id", authID))
					RespondWithError(w, http.StatusUnauthorized, "profile not found")
					return
				}
				logger.Error("Failed to resolve profile", zap.Error(err))
				RespondWithError(w, http.StatusInternalServerError, "failed to resolve profile")
				return
			}

			ctx := context.WithValue(r.Context(), ProfileIDKey, profile.ID)
			ctx = context.WithValue(ctx, IsAdminKey, profile.IsAdmin)

			logger.Debug("Request authenticated",
				zap.String("profile_id", profile.ID.String()),
				zap.Bool("is_admin", profile.IsAdmin),
			)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetPrincipal extracts the resolved principal from the request context
func GetPrincipal(ctx context.Context) (Principal, bool) {
	profileID, ok := ctx.Value(ProfileIDKey).(uuid.UUID)
	if !ok {
		return Principal{}, false
	}
	isAdmin, _ := ctx.Value(IsAdminKey).(bool)
	return Principal{ProfileID: profileID, IsAdmin: isAdmin}, true
}
