package authn

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	"lifecursor/internal/domain/models"
	"lifecursor/internal/lib/api/response"
	"lifecursor/internal/lib/logger/sl"
	"lifecursor/internal/services/auth"
)

const (
	userKey  = "authn.user"
	tokenKey = "authn.token"
)

type Resolver interface {
	Resolve(ctx context.Context, token string) (*models.User, error)
}

// New returns a middleware that resolves the bearer token to a user and
// rejects the request when that fails.
func New(log *slog.Logger, resolver Resolver) gin.HandlerFunc {
	log = log.With(slog.String("component", "middleware/authn"))

	return func(c *gin.Context) {
		token, ok := BearerToken(c.GetHeader("Authorization"))
		if !ok {
			response.NotAuthenticated(c)
			return
		}

		user, err := resolver.Resolve(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, auth.ErrUnauthorized) {
				response.InvalidToken(c)
				return
			}
			log.Error("failed to resolve identity", sl.Err(err))
			response.Internal(c)
			return
		}

		c.Set(tokenKey, token)
		c.Set(userKey, user)
		c.Next()
	}
}

// RequireBearer only checks that a bearer token is present.
func RequireBearer() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := BearerToken(c.GetHeader("Authorization"))
		if !ok {
			response.NotAuthenticated(c)
			return
		}

		c.Set(tokenKey, token)
		c.Next()
	}
}

// BearerToken extracts the credentials of an "Authorization: Bearer" header.
// The scheme is matched case-insensitively.
func BearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}

	return token, true
}

// User returns the user resolved by New. It panics if the middleware did not run.
func User(c *gin.Context) *models.User {
	return c.MustGet(userKey).(*models.User)
}

func Token(c *gin.Context) string {
	return c.GetString(tokenKey)
}
