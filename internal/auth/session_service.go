package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/charlesng35/gymadmin/internal/cache"
	"github.com/charlesng35/gymadmin/internal/permissions"
	"github.com/charlesng35/gymadmin/pkg/metrics"
)

const sessionKeyPrefix = "auth:sessions:"

// DefaultSessionTTL is used when SessionConfig.TTL is not set.
const DefaultSessionTTL = 12 * time.Hour

var (
	// ErrSessionNotFound indicates the session was closed or has expired.
	ErrSessionNotFound = errors.New("session: not found")
	// ErrSessionInvalidToken is returned when the supplied token cannot be verified.
	ErrSessionInvalidToken = errors.New("session: invalid token")
	// ErrSessionMismatch means the token does not describe the stored session.
	ErrSessionMismatch = errors.New("session: token does not match session")
)

// SessionConfig describes tunable behaviour for the SessionService.
type SessionConfig struct {
	TTL   time.Duration
	Clock func() time.Time
}

// Subject is the authenticated account a session is opened for.
type Subject struct {
	UserID    string
	Username  string
	Role      string
	TableName string
}

// SessionMetadata captures contextual information about the client.
type SessionMetadata struct {
	IPAddress string
	UserAgent string
}

// Session is the server-side record of a login. It is the only place an
// actor's role and table name are fixed; both change only by logging in again.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Role      string    `json:"role,omitempty"`
	TableName string    `json:"table_name,omitempty"`
	IPAddress string    `json:"ip_address,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Actor returns the permission subject for this session.
func (s *Session) Actor() permissions.Actor {
	if s == nil {
		return permissions.Actor{}
	}
	return permissions.Actor{
		UserID:    s.UserID,
		Username:  s.Username,
		Role:      s.Role,
		TableName: s.TableName,
	}
}

// SessionService opens, resolves and closes login sessions.
type SessionService struct {
	store cache.Store
	jwt   *JWTService
	ttl   time.Duration
	now   func() time.Time
}

// NewSessionService constructs a session manager backed by the provided store and JWT service.
func NewSessionService(store cache.Store, jwtService *JWTService, cfg SessionConfig) (*SessionService, error) {
	if store == nil {
		return nil, errors.New("session service: store is required")
	}
	if jwtService == nil {
		return nil, errors.New("session service: jwt service is required")
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	clock := time.Now
	if cfg.Clock != nil {
		clock = cfg.Clock
	}

	return &SessionService{
		store: store,
		jwt:   jwtService,
		ttl:   ttl,
		now:   clock,
	}, nil
}

// Open creates a session for subject and returns its signed access token.
func (s *SessionService) Open(ctx context.Context, subject Subject, meta SessionMetadata) (string, *Session, error) {
	if strings.TrimSpace(subject.UserID) == "" {
		return "", nil, errors.New("session service: user id is required")
	}

	now := s.now()
	session := &Session{
		ID:        uuid.NewString(),
		UserID:    subject.UserID,
		Username:  strings.TrimSpace(subject.Username),
		Role:      strings.TrimSpace(subject.Role),
		TableName: strings.TrimSpace(subject.TableName),
		IPAddress: strings.TrimSpace(meta.IPAddress),
		UserAgent: strings.TrimSpace(meta.UserAgent),
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return "", nil, fmt.Errorf("session service: marshal: %w", err)
	}
	if err := s.store.Set(ctx, sessionKey(session.ID), payload, s.ttl); err != nil {
		return "", nil, fmt.Errorf("session service: store session: %w", err)
	}

	token, err := s.jwt.GenerateAccessToken(AccessTokenInput{
		UserID:    session.UserID,
		SessionID: session.ID,
		Username:  session.Username,
		Role:      session.Role,
		TableName: session.TableName,
	})
	if err != nil {
		_, _ = s.store.Delete(ctx, sessionKey(session.ID))
		return "", nil, fmt.Errorf("session service: generate access token: %w", err)
	}

	metrics.SessionEvents.WithLabelValues("opened").Inc()
	return token, session, nil
}

// Resolve verifies token and returns the live session it refers to.
func (s *SessionService) Resolve(ctx context.Context, token string) (*Session, error) {
	claims, err := s.jwt.ValidateAccessToken(strings.TrimSpace(token))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionInvalidToken, err)
	}

	session, err := s.Get(ctx, claims.SessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != claims.UserID {
		return nil, ErrSessionMismatch
	}
	return session, nil
}

// Get loads a session by identifier.
func (s *SessionService) Get(ctx context.Context, sessionID string) (*Session, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, ErrSessionNotFound
	}

	data, found, err := s.store.Get(ctx, sessionKey(sessionID))
	if err != nil {
		return nil, fmt.Errorf("session service: load session: %w", err)
	}
	if !found {
		return nil, ErrSessionNotFound
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("session service: decode: %w", err)
	}
	if !session.ExpiresAt.After(s.now()) {
		_, _ = s.store.Delete(ctx, sessionKey(sessionID))
		return nil, ErrSessionNotFound
	}
	return &session, nil
}

// Close ends a session. Closing an unknown session reports ErrSessionNotFound.
// Only the call that actually removes the session counts it as closed.
func (s *SessionService) Close(ctx context.Context, sessionID string) error {
	if _, err := s.Get(ctx, sessionID); err != nil {
		return err
	}
	removed, err := s.store.Delete(ctx, sessionKey(sessionID))
	if err != nil {
		return fmt.Errorf("session service: delete session: %w", err)
	}
	if removed == 0 {
		return ErrSessionNotFound
	}
	metrics.SessionEvents.WithLabelValues("closed").Inc()
	return nil
}

func sessionKey(id string) string {
	return sessionKeyPrefix + strings.TrimSpace(id)
}
