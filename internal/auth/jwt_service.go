package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultAccessTokenTTL is used when no token lifetime is configured.
const DefaultAccessTokenTTL = 15 * time.Minute

// JWTConfig configures token issuance. Clock is overridable for tests.
type JWTConfig struct {
	Secret         string
	Issuer         string
	AccessTokenTTL time.Duration
	Clock          func() time.Time
}

// Claims carries the application claims inside an access token. Roles travel
// in the token so middleware can authorize without a user lookup.
type Claims struct {
	UserID string   `json:"uid"`
	Roles  []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// AccessTokenInput names the parameters of a new access token.
type AccessTokenInput struct {
	UserID   string
	Roles    []string
	Audience []string
}

// JWTService issues and validates HS256 access tokens.
type JWTService struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

// NewJWTService validates the configuration and builds the service.
func NewJWTService(cfg JWTConfig) (*JWTService, error) {
	if cfg.Secret == "" {
		return nil, errors.New("jwt: secret must be provided")
	}

	svc := &JWTService{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    cfg.AccessTokenTTL,
		now:    cfg.Clock,
	}
	if svc.ttl <= 0 {
		svc.ttl = DefaultAccessTokenTTL
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	svc.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return svc.now() }),
	)
	return svc, nil
}

// GenerateAccessToken signs a token for the given user and roles.
func (s *JWTService) GenerateAccessToken(input AccessTokenInput) (string, error) {
	if input.UserID == "" {
		return "", errors.New("jwt: user id is required")
	}

	issuedAt := s.now()
	claims := &Claims{
		UserID: input.UserID,
		Roles:  append([]string(nil), input.Roles...),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   input.UserID,
			Issuer:    s.issuer,
			Audience:  input.Audience,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("jwt: sign token: %w", err)
	}
	return signed, nil
}

// ValidateAccessToken parses a signed token and returns its claims.
func (s *JWTService) ValidateAccessToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, errors.New("jwt: token string is empty")
	}

	claims := &Claims{}
	if _, err := s.parser.ParseWithClaims(tokenString, claims, s.keyFunc); err != nil {
		return nil, fmt.Errorf("jwt: parse token: %w", err)
	}
	if s.issuer != "" && claims.Issuer != s.issuer {
		return nil, errors.New("jwt: invalid issuer")
	}
	if claims.UserID == "" {
		return nil, errors.New("jwt: missing user id claim")
	}
	return claims, nil
}

func (s *JWTService) keyFunc(*jwt.Token) (interface{}, error) {
	return s.secret, nil
}
