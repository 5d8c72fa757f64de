package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/charlesng35/gymadmin/internal/auth"
	"github.com/charlesng35/gymadmin/internal/models"
	"github.com/charlesng35/gymadmin/internal/permissions"
	"github.com/charlesng35/gymadmin/pkg/crypto"
	apperrors "github.com/charlesng35/gymadmin/pkg/errors"
	"github.com/charlesng35/gymadmin/pkg/logger"
	"github.com/charlesng35/gymadmin/pkg/metrics"
)

var (
	// ErrAccountExists is returned when the table already holds the username.
	ErrAccountExists = apperrors.New("ACCOUNT_EXISTS", "Account already exists", http.StatusConflict)
	// ErrAccountDisabled blocks logins for deactivated accounts.
	ErrAccountDisabled = apperrors.New("ACCOUNT_DISABLED", "Account is disabled", http.StatusForbidden)
)

// LoginInput carries the credentials submitted by a client.
type LoginInput struct {
	TableName string
	Username  string
	Password  string
	IPAddress string
	UserAgent string
}

// LoginResult is returned on a successful login.
type LoginResult struct {
	Token   string
	Session *auth.Session
	Account *models.Account
}

// CreateAccountInput describes a new account.
type CreateAccountInput struct {
	TableName   string
	Username    string
	Password    string
	Role        string
	DisplayName string
}

// AuthService verifies credentials and manages the sessions built from them.
type AuthService struct {
	db       *gorm.DB
	sessions *auth.SessionService
	resolver *permissions.Resolver
	now      func() time.Time
	log      *zap.Logger
}

// NewAuthService constructs an AuthService.
func NewAuthService(db *gorm.DB, sessions *auth.SessionService, resolver *permissions.Resolver) (*AuthService, error) {
	if db == nil {
		return nil, errors.New("auth service: db is required")
	}
	if sessions == nil {
		return nil, errors.New("auth service: session service is required")
	}
	return &AuthService{
		db:       db,
		sessions: sessions,
		resolver: resolver,
		now:      time.Now,
		log:      logger.WithModule("auth"),
	}, nil
}

// Login checks the credentials against the accounts of the requested table
// and opens a session for the account.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	ctx = ensureContext(ctx)
	trimmed(&input.TableName, &input.Username)

	if input.TableName == "" || input.Username == "" || input.Password == "" {
		metrics.AuthAttempts.WithLabelValues("invalid").Inc()
		return nil, apperrors.NewBadRequest("table name, username and password are required")
	}
	if len(input.Password) > crypto.MaxPasswordBytes {
		metrics.AuthAttempts.WithLabelValues("invalid").Inc()
		return nil, apperrors.NewBadRequest("password must be at most 72 bytes")
	}

	var account models.Account
	err := s.db.WithContext(ctx).
		Where("table_name = ? AND username = ?", input.TableName, input.Username).
		Take(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		crypto.VerifyDecoy(input.Password)
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("auth service: load account: %w", err)
	}

	if !crypto.VerifyPassword(account.Password, input.Password) {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, apperrors.ErrInvalidCredentials
	}
	if !account.IsActive {
		metrics.AuthAttempts.WithLabelValues("disabled").Inc()
		return nil, ErrAccountDisabled
	}

	token, session, err := s.sessions.Open(ctx, auth.Subject{
		UserID:    account.ID,
		Username:  account.Username,
		Role:      account.Role,
		TableName: account.Table,
	}, auth.SessionMetadata{
		IPAddress: input.IPAddress,
		UserAgent: input.UserAgent,
	})
	if err != nil {
		return nil, err
	}

	now := s.now()
	updates := map[string]any{
		"last_login_at": now,
		"last_login_ip": strings.TrimSpace(input.IPAddress),
	}
	if crypto.NeedsRehash(account.Password) {
		if hashed, hashErr := crypto.HashPassword(input.Password); hashErr == nil {
			updates["password"] = hashed
		}
	}
	if err := s.db.WithContext(ctx).Model(&account).Updates(updates).Error; err != nil {
		s.log.Warn("record login", zap.String("account_id", account.ID), zap.Error(err))
	}
	account.LastLoginAt = &now

	metrics.AuthAttempts.WithLabelValues("success").Inc()
	s.log.Info("login",
		zap.String("account_id", account.ID),
		zap.String("table", account.Table),
		zap.Bool("admin", s.resolver.IsAdmin(session.Actor())),
	)

	return &LoginResult{Token: token, Session: session, Account: &account}, nil
}

// Logout closes the session. Closing an already ended session is not an error.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	err := s.sessions.Close(ensureContext(ctx), sessionID)
	if errors.Is(err, auth.ErrSessionNotFound) {
		return nil
	}
	return err
}

// Authenticate resolves a bearer token into its session.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*auth.Session, error) {
	session, err := s.sessions.Resolve(ensureContext(ctx), token)
	switch {
	case err == nil:
		return session, nil
	case errors.Is(err, auth.ErrSessionNotFound):
		return nil, apperrors.ErrSessionClosed
	case errors.Is(err, auth.ErrSessionInvalidToken), errors.Is(err, auth.ErrSessionMismatch):
		return nil, apperrors.ErrUnauthorized.WithInternal(err)
	default:
		return nil, err
	}
}

// CreateAccount provisions an account with a hashed password.
func (s *AuthService) CreateAccount(ctx context.Context, input CreateAccountInput) (*models.Account, error) {
	ctx = ensureContext(ctx)
	trimmed(&input.TableName, &input.Username, &input.Role, &input.DisplayName)

	if input.TableName == "" {
		return nil, apperrors.NewBadRequest("table name is required")
	}
	if input.Username == "" {
		return nil, apperrors.NewBadRequest("username is required")
	}
	if strings.TrimSpace(input.Password) == "" {
		return nil, apperrors.NewBadRequest("password is required")
	}

	hashed, err := crypto.HashPassword(input.Password)
	if errors.Is(err, crypto.ErrPasswordTooLong) {
		return nil, apperrors.NewBadRequest("password must be at most 72 bytes")
	}
	if err != nil {
		return nil, fmt.Errorf("auth service: hash password: %w", err)
	}

	account := &models.Account{
		Username:    input.Username,
		Password:    hashed,
		Table:       input.TableName,
		Role:        input.Role,
		DisplayName: input.DisplayName,
		IsActive:    true,
	}
	if err := s.db.WithContext(ctx).Create(account).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrAccountExists
		}
		return nil, fmt.Errorf("auth service: create account: %w", err)
	}
	return account, nil
}

// EnsureAdmin creates the back-office administrator account when it is missing.
// The account lives in the resolver's admin table, which bypasses every back check.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, password string) (*models.Account, bool, error) {
	ctx = ensureContext(ctx)
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, false, nil
	}

	adminTable := s.resolver.AdminTable()
	if adminTable == "" {
		adminTable = permissions.DefaultAdminTable
	}

	var existing models.Account
	err := s.db.WithContext(ctx).
		Where("table_name = ? AND username = ?", adminTable, username).
		Take(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("auth service: load admin: %w", err)
	}

	account, err := s.CreateAccount(ctx, CreateAccountInput{
		TableName:   adminTable,
		Username:    username,
		Password:    password,
		DisplayName: "Administrator",
	})
	if err != nil {
		return nil, false, err
	}
	s.log.Info("bootstrap admin created", zap.String("username", username))
	return account, true, nil
}
