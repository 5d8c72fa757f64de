package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// DefaultAccessTokenTTL applies when JWTConfig leaves AccessTokenTTL unset.
	DefaultAccessTokenTTL = 2 * time.Hour

	// AccessTokenAudience is stamped into every token and required on validation.
	AccessTokenAudience = "gymadmin-api"

	clockSkewLeeway = 30 * time.Second
)

// JWTConfig bundles the configuration required to build a JWTService.
type JWTConfig struct {
	Secret         string
	Issuer         string
	AccessTokenTTL time.Duration
	Clock          func() time.Time
}

// Claims carries the actor snapshot taken at login. Role and TableName are
// copied into the token so a request can be authorised without a database read.
type Claims struct {
	UserID    string `json:"uid"`
	SessionID string `json:"sid"`
	Username  string `json:"usr,omitempty"`
	Role      string `json:"role,omitempty"`
	TableName string `json:"tbl,omitempty"`
	jwt.RegisteredClaims
}

// AccessTokenInput identifies the session an access token is minted for.
type AccessTokenInput struct {
	UserID    string
	SessionID string
	Username  string
	Role      string
	TableName string
}

// JWTService signs and verifies HS256 access tokens bound to one issuer.
type JWTService struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

// NewJWTService validates cfg and builds the service.
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

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(svc.now),
		jwt.WithLeeway(clockSkewLeeway),
		jwt.WithAudience(AccessTokenAudience),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	}
	if svc.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(svc.issuer))
	}
	svc.parser = jwt.NewParser(parserOpts...)

	return svc, nil
}

// TTL reports how long issued tokens stay valid.
func (s *JWTService) TTL() time.Duration {
	return s.ttl
}

// GenerateAccessToken signs a token for the session in input. The session
// ID doubles as the token ID.
func (s *JWTService) GenerateAccessToken(input AccessTokenInput) (string, error) {
	if input.UserID == "" {
		return "", errors.New("jwt: user id is required")
	}
	if input.SessionID == "" {
		return "", errors.New("jwt: session id is required")
	}

	now := s.now()
	claims := &Claims{
		UserID:    input.UserID,
		SessionID: input.SessionID,
		Username:  input.Username,
		Role:      input.Role,
		TableName: input.TableName,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        input.SessionID,
			Subject:   input.UserID,
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{AccessTokenAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("jwt: sign token: %w", err)
	}
	return signed, nil
}

// ValidateAccessToken verifies signature, lifetime, issuer and audience.
// Failures wrap the jwt package sentinels such as jwt.ErrTokenExpired.
func (s *JWTService) ValidateAccessToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, errors.New("jwt: token string is empty")
	}

	var claims Claims
	_, err := s.parser.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("jwt: parse token: %w", err)
	}

	if claims.UserID == "" || claims.SessionID == "" || claims.Subject != claims.UserID {
		return nil, errors.New("jwt: missing subject claims")
	}
	return &claims, nil
}
