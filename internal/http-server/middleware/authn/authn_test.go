package authn

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifecursor/internal/domain/models"
	"lifecursor/internal/lib/logger/handlers/slogdiscard"
	"lifecursor/internal/services/auth"
)

type resolverFunc func(ctx context.Context, token string) (*models.User, error)

func (f resolverFunc) Resolve(ctx context.Context, token string) (*models.User, error) {
	return f(ctx, token)
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{header: "Bearer abc.def.ghi", token: "abc.def.ghi", ok: true},
		{header: "bearer abc", token: "abc", ok: true},
		{header: "  Bearer   abc  ", token: "abc", ok: true},
		{header: "", ok: false},
		{header: "Bearer", ok: false},
		{header: "Bearer ", ok: false},
		{header: "Basic dXNlcjpwYXNz", ok: false},
		{header: "abc.def.ghi", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			token, ok := BearerToken(tt.header)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.token, token)
		})
	}
}

func TestNew(t *testing.T) {
	gin.SetMode(gin.TestMode)

	bob := &models.User{ID: 7, Username: "bob"}

	resolver := resolverFunc(func(_ context.Context, token string) (*models.User, error) {
		switch token {
		case "good":
			return bob, nil
		case "broken":
			return nil, errors.New("database is locked")
		default:
			return nil, auth.ErrUnauthorized
		}
	})

	router := gin.New()
	router.GET("/me", New(slogdiscard.NewDiscardLogger(), resolver), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"username": User(c).Username, "token": Token(c)})
	})

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{name: "valid", header: "Bearer good", status: http.StatusOK, body: `{"token":"good","username":"bob"}`},
		{name: "missing", header: "", status: http.StatusUnauthorized, body: `{"detail":"Not authenticated"}`},
		{name: "rejected", header: "Bearer bad", status: http.StatusUnauthorized, body: `{"detail":"Could not validate credentials"}`},
		{name: "infrastructure", header: "Bearer broken", status: http.StatusInternalServerError, body: `{"detail":"Internal server error"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			require.Equal(t, tt.status, rec.Code)
			assert.JSONEq(t, tt.body, rec.Body.String())
			if tt.status == http.StatusUnauthorized {
				assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
			}
		})
	}
}

func TestRequireBearer(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.POST("/logout", RequireBearer(), func(c *gin.Context) {
		c.String(http.StatusOK, Token(c))
	})

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.Header.Set("Authorization", "Bearer anything")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "anything", rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/logout", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
