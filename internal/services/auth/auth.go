package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"lifecursor/internal/domain/models"
	"lifecursor/internal/lib/jwt"
	"lifecursor/internal/lib/logger/sl"
	"lifecursor/internal/lib/password"
	"lifecursor/internal/storage"
)

type Auth struct {
	log          *slog.Logger
	userSaver    UserSaver
	userProvider UserProvider
	revoker      Revoker
	issuer       *jwt.Issuer
	tokenTTL     time.Duration
}

type UserSaver interface {
	SaveUser(
		ctx context.Context,
		username string,
		passHash []byte,
	) (*models.User, error)
}

type UserProvider interface {
	User(
		ctx context.Context,
		username string,
	) (*models.User, error)
}

// Revoker is the registry of tokens invalidated before their natural expiry.
type Revoker interface {
	Revoke(ctx context.Context, token string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrUnauthorized       = errors.New("could not validate credentials")
	ErrEmptyCredentials   = errors.New("username and password are required")
)

// dummyHash is compared against when the user does not exist so that login
// takes the same time for unknown and known usernames.
var dummyHash = sync.OnceValue(func() []byte {
	hash, _ := password.Hash("lifecursor-dummy-password")
	return hash
})

// New returns a new instance of the Auth service.
func New(
	log *slog.Logger,
	userSaver UserSaver,
	userProvider UserProvider,
	revoker Revoker,
	issuer *jwt.Issuer,
	tokenTTL time.Duration,
) *Auth {
	return &Auth{
		log:          log,
		userSaver:    userSaver,
		userProvider: userProvider,
		revoker:      revoker,
		issuer:       issuer,
		tokenTTL:     tokenTTL,
	}
}

func (a *Auth) Register(
	ctx context.Context,
	username string,
	pass string,
) (*models.User, error) {
	const op = "auth.Register"

	log := a.log.With(
		slog.String("op", op),
		slog.String("username", username),
	)

	if username == "" || pass == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrEmptyCredentials)
	}

	log.Info("registering user")

	passHash, err := password.Hash(pass)
	if err != nil {
		log.Error("failed to generate password hash", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user, err := a.userSaver.SaveUser(ctx, username, passHash)
	if err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			log.Warn("user already exists", sl.Err(err))
			return nil, fmt.Errorf("%s: %w", op, ErrUserExists)
		}
		log.Error("failed to save user", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user registered", slog.Int64("userID", user.ID))

	return user, nil
}

// Login checks the user's credentials and returns a signed access token.
func (a *Auth) Login(
	ctx context.Context,
	username string,
	pass string,
) (string, error) {
	const op = "auth.Login"

	log := a.log.With(
		slog.String("op", op),
		slog.String("username", username),
	)

	log.Info("attempting to login user")

	user, err := a.userProvider.User(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			password.Verify(pass, dummyHash())
			log.Warn("user not found", sl.Err(err))
			return "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		log.Error("failed to get user", sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if !password.Verify(pass, user.PassHash) {
		log.Warn("invalid password")
		return "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	token, err := a.issuer.Issue(user.Username, a.tokenTTL)
	if err != nil {
		log.Error("failed to generate token", sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user logged in successfully", slog.Int64("userID", user.ID))

	return token, nil
}

// Logout revokes token until its natural expiry. Tokens that fail signature
// verification or have already expired can never be accepted, so they are
// not recorded and Logout still succeeds.
func (a *Auth) Logout(ctx context.Context, token string) error {
	const op = "auth.Logout"

	log := a.log.With(slog.String("op", op))

	expiresAt, err := a.issuer.Expiry(token)
	if err != nil {
		log.Debug("logout with unverifiable token", sl.Err(err))
		return nil
	}

	if err := a.revoker.Revoke(ctx, token, expiresAt); err != nil {
		log.Error("failed to revoke token", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("token revoked", slog.Time("expires_at", expiresAt))

	return nil
}

// Resolve validates token and returns the user it was issued to.
// Every check runs regardless of earlier outcomes and all rejections
// surface as ErrUnauthorized.
func (a *Auth) Resolve(ctx context.Context, token string) (*models.User, error) {
	const op = "auth.Resolve"

	log := a.log.With(slog.String("op", op))

	revoked, revokeErr := a.revoker.IsRevoked(ctx, token)

	var subject string
	claims, parseErr := a.issuer.Parse(token)
	if parseErr == nil {
		subject = claims.Subject
	}

	user, userErr := a.userProvider.User(ctx, subject)

	if revokeErr != nil {
		log.Error("failed to check revocation", sl.Err(revokeErr))
		return nil, fmt.Errorf("%s: %w", op, revokeErr)
	}
	if userErr != nil && !errors.Is(userErr, storage.ErrUserNotFound) {
		log.Error("failed to get user", sl.Err(userErr))
		return nil, fmt.Errorf("%s: %w", op, userErr)
	}

	if revoked || parseErr != nil || subject == "" || userErr != nil {
		log.Debug("token rejected",
			slog.Bool("revoked", revoked),
			slog.Bool("invalid", parseErr != nil),
			slog.Bool("no_subject", subject == ""),
		)
		return nil, ErrUnauthorized
	}

	return user, nil
}
