package middleware

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"collection-engine/internal/config"
	"collection-engine/internal/domain/actor"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the bearer token payload. The subject is the actor ID.
type Claims struct {
	Role   string `json:"role"`
	Region string `json:"region,omitempty"`
	RTOM   string `json:"rtom,omitempty"`
	jwt.RegisteredClaims
}

func (c Claims) Actor() actor.Actor {
	return actor.Actor{
		ID:     c.Subject,
		Role:   actor.Role(strings.ToLower(strings.TrimSpace(c.Role))),
		Region: c.Region,
		RTOM:   c.RTOM,
	}
}

// AuthMiddleware resolves the caller from the bearer token and stores it in the request
// context. With auth disabled every request runs as the system actor. An enabled
// middleware without a signing secret rejects everything.
func AuthMiddleware(cfg config.AuthConfig, logger *slog.Logger) func(http.Handler) http.Handler {
	if !cfg.Enabled {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				next.ServeHTTP(w, r.WithContext(actor.NewContext(r.Context(), actor.System())))
			})
		}
	}
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		logger.Error("AuthMiddleware: no JWT secret configured, rejecting all requests")
		return func(http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				writeError(w, http.StatusUnauthorized, "Unauthorized")
			})
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := validateJWT(r, cfg.JWTSecret)
			if err != nil {
				logger.WarnContext(r.Context(), "AuthMiddleware: rejected request", slog.Any("error", err))
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			who := claims.Actor()
			logger.DebugContext(r.Context(), "AuthMiddleware: authenticated request",
				slog.String("actor", who.ID), slog.String("role", string(who.Role)))
			next.ServeHTTP(w, r.WithContext(actor.NewContext(r.Context(), who)))
		})
	}
}

func validateJWT(r *http.Request, secret string) (*Claims, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, errors.New("missing Authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return nil, errors.New("invalid Authorization header format")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(parts[1], claims, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg(), jwt.SigningMethodHS384.Alg(), jwt.SigningMethodHS512.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"message": message},
	})
}
