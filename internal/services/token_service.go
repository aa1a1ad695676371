package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
)

// ErrInvalidToken is returned by Verify for every token that must not be
// trusted: bad signature, unexpected algorithm, missing claims or expiry.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the signed payload of an access token.
type Claims struct {
	UserID uint `json:"user_id"`
	jwt.StandardClaims
}

// TokenService issues and verifies HMAC-signed access tokens. It keeps no
// state besides its key, so verification never touches the database.
type TokenService struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService creates a TokenService. algorithm must be one of HS256,
// HS384 or HS512.
func NewTokenService(secret, algorithm string, ttl time.Duration) (*TokenService, error) {
	if secret == "" {
		return nil, errors.New("token secret must not be empty")
	}
	if ttl <= 0 {
		return nil, errors.New("token ttl must be positive")
	}

	method, ok := jwt.GetSigningMethod(algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported signing algorithm %q", algorithm)
	}

	return &TokenService{
		secret: []byte(secret),
		method: method,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// WithClock replaces the time source. Used by tests.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	s.now = now
	return s
}

// TTL returns how long issued tokens stay valid.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue returns a signed token for userID that expires after the configured
// TTL.
func (s *TokenService) Issue(userID uint) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(s.method, Claims{
		UserID: userID,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: now.Add(s.ttl).Unix(),
			IssuedAt:  now.Unix(),
		},
	})

	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// Verify checks the signature and expiry of tokenString and returns the user
// ID it carries. A token is valid only while now is strictly before its
// expiry.
func (s *TokenService) Verify(tokenString string) (uint, error) {
	parser := jwt.Parser{
		ValidMethods: []string{s.method.Alg()},
		// Expiry is checked below against s.now.
		SkipClaimsValidation: true,
	}

	var claims Claims
	token, err := parser.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}

	if claims.UserID == 0 || claims.ExpiresAt == 0 {
		return 0, ErrInvalidToken
	}
	if !s.now().Before(time.Unix(claims.ExpiresAt, 0)) {
		return 0, ErrInvalidToken
	}

	return claims.UserID, nil
}
