package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"peoplenet/pkg/auth"
	"peoplenet/pkg/common"
	pkgerrors "peoplenet/pkg/errors"
)

// AuthConfig configures Authenticate
type AuthConfig struct {
	// JWT validates bearer tokens. When nil every request acts as DefaultUserID.
	JWT           *auth.JWTService
	DefaultUserID string

	// TrustGateway accepts the user headers set by an API Gateway authorizer
	TrustGateway bool

	// Limiter throttles each user to UserRateLimit requests per minute
	Limiter       *auth.KeyedRateLimiter
	UserRateLimit int

	Errors *pkgerrors.ErrorHandler
	Logger *zap.Logger
}

// Authenticate resolves the network owner for the request and applies the
// per-user rate limit.
func Authenticate(cfg AuthConfig) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := resolveUser(cfg, r)
			if err != nil {
				cfg.Errors.Handle(w, r, err)
				return
			}

			if cfg.Limiter != nil {
				allowed, err := cfg.Limiter.Allow(r.Context(), user.UserID)
				if err != nil {
					cfg.Logger.Warn("User rate limiter failed", zap.String("userID", user.UserID), zap.Error(err))
				} else if !allowed {
					cfg.Errors.Handle(w, r, pkgerrors.NewRateLimitError(cfg.UserRateLimit, time.Minute, time.Minute).
						WithCode("USER_RATE_LIMITED"))
					return
				}
			}

			ctx := auth.SetUserInContext(r.Context(), user)
			ctx = common.WithUserID(ctx, user.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func resolveUser(cfg AuthConfig, r *http.Request) (*auth.UserContext, error) {
	if cfg.TrustGateway && r.Header.Get("X-API-Gateway-Authorized") == "true" {
		if userID := r.Header.Get("X-User-ID"); userID != "" {
			return &auth.UserContext{
				UserID: userID,
				Email:  r.Header.Get("X-User-Email"),
				Roles:  splitRoles(r.Header.Get("X-User-Roles")),
			}, nil
		}
	}

	if cfg.JWT == nil {
		return &auth.UserContext{UserID: cfg.DefaultUserID, Roles: []string{"local"}}, nil
	}

	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, pkgerrors.NewUnauthorizedError("missing authorization header")
	}
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return nil, pkgerrors.NewUnauthorizedError("invalid authorization header format")
	}

	claims, err := cfg.JWT.ValidateToken("Bearer " + strings.TrimSpace(header[len("bearer "):]))
	if err != nil {
		message := "invalid token"
		if errors.Is(err, auth.ErrExpiredToken) {
			message = "token has expired"
		}
		return nil, pkgerrors.NewUnauthorizedError(message).WithCause(err)
	}
	return &auth.UserContext{UserID: claims.UserID, Email: claims.Email, Roles: claims.Roles}, nil
}

func splitRoles(raw string) []string {
	if raw == "" {
		return []string{"authenticated"}
	}
	var roles []string
	for _, role := range strings.Split(raw, ",") {
		if role = strings.TrimSpace(role); role != "" {
			roles = append(roles, role)
		}
	}
	return roles
}
