package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTTL is used when a token is issued without an explicit lifetime.
const DefaultTTL = 15 * time.Minute

var ErrInvalidToken = errors.New("invalid token")

var signingMethod = jwt.SigningMethodHS256

// Claims is the payload carried by access tokens.
type Claims struct {
	jwt.RegisteredClaims
}

// Issuer signs and verifies HS256 access tokens with a single server secret.
type Issuer struct {
	secret []byte
	now    func() time.Time
}

type Option func(*Issuer)

// WithClock replaces the time source used for both issuing and validation.
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) {
		i.now = now
	}
}

func NewIssuer(secret string, opts ...Option) *Issuer {
	i := &Issuer{
		secret: []byte(secret),
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(i)
	}

	return i
}

// Issue creates a token for subject valid for ttl. A non-positive ttl means DefaultTTL.
func (i *Issuer) Issue(subject string, ttl time.Duration) (string, error) {
	const op = "jwt.Issue"

	if ttl <= 0 {
		ttl = DefaultTTL
	}

	token := jwt.NewWithClaims(signingMethod, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(i.now().Add(ttl)),
			ID:        uuid.NewString(),
		},
	})

	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return signed, nil
}

// Parse verifies the signature and the expiry of tokenString and returns its claims.
func (i *Issuer) Parse(tokenString string) (*Claims, error) {
	return i.parse(tokenString,
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
}

// Expiry verifies only the signature of tokenString and returns its exp claim,
// which may already be in the past.
func (i *Issuer) Expiry(tokenString string) (time.Time, error) {
	claims, err := i.parse(tokenString, jwt.WithoutClaimsValidation())
	if err != nil {
		return time.Time{}, err
	}

	if claims.ExpiresAt == nil {
		return time.Time{}, fmt.Errorf("jwt.Expiry: %w", ErrInvalidToken)
	}

	return claims.ExpiresAt.Time, nil
}

func (i *Issuer) parse(tokenString string, opts ...jwt.ParserOption) (*Claims, error) {
	const op = "jwt.Parse"

	opts = append(opts, jwt.WithValidMethods([]string{signingMethod.Alg()}))

	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	return claims, nil
}
