package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"lifecursor/internal/domain/models"
	"lifecursor/internal/http-server/middleware/authn"
	"lifecursor/internal/lib/api/response"
	"lifecursor/internal/lib/logger/sl"
	"lifecursor/internal/lib/password"
	"lifecursor/internal/services/auth"
)

type Auth interface {
	Register(ctx context.Context, username, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (string, error)
	Logout(ctx context.Context, token string) error
}

// Credentials is accepted as JSON or as an OAuth2 password form.
type Credentials struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type Handler struct {
	log  *slog.Logger
	auth Auth
}

func New(log *slog.Logger, auth Auth) *Handler {
	return &Handler{
		log:  log,
		auth: auth,
	}
}

func (h *Handler) Register(c *gin.Context) {
	const op = "handlers.auth.Register"

	log := h.log.With(slog.String("op", op))

	var req Credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.auth.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserExists):
			response.Error(c, http.StatusConflict, "Username already registered")
		case errors.Is(err, auth.ErrEmptyCredentials):
			response.Error(c, http.StatusBadRequest, "Username and password are required")
		case errors.Is(err, password.ErrPasswordTooLong):
			response.Error(c, http.StatusBadRequest, "Password is too long")
		default:
			log.Error("failed to register user", sl.Err(err))
			response.Internal(c)
		}
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *Handler) Login(c *gin.Context) {
	const op = "handlers.auth.Login"

	log := h.log.With(slog.String("op", op))

	var req Credentials
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			response.Unauthorized(c, "Incorrect username or password")
			return
		}
		log.Error("failed to login", sl.Err(err))
		response.Internal(c)
		return
	}

	c.JSON(http.StatusOK, TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}

// Logout expects authn.RequireBearer to have run.
func (h *Handler) Logout(c *gin.Context) {
	const op = "handlers.auth.Logout"

	if err := h.auth.Logout(c.Request.Context(), authn.Token(c)); err != nil {
		h.log.Error("failed to logout", slog.String("op", op), sl.Err(err))
		response.Internal(c)
		return
	}

	c.JSON(http.StatusOK, response.Message{Message: "Successfully logged out"})
}

func (h *Handler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, authn.User(c))
}
