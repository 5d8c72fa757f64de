package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/gymadmin/internal/models"
	"github.com/charlesng35/gymadmin/internal/permissions"
	apperrors "github.com/charlesng35/gymadmin/pkg/errors"
)

func TestLoginOpensSessionWithActor(t *testing.T) {
	svc, db := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.CreateAccount(ctx, CreateAccountInput{
		TableName: "jiaolian",
		Username:  "coach",
		Password:  "s3cret!",
		Role:      "教练",
	})
	require.NoError(t, err)

	result, err := svc.Login(ctx, LoginInput{
		TableName: " jiaolian ",
		Username:  "coach",
		Password:  "s3cret!",
		IPAddress: "10.1.1.1",
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)
	require.Equal(t, permissions.Actor{
		UserID:    result.Account.ID,
		Username:  "coach",
		Role:      "教练",
		TableName: "jiaolian",
	}, result.Session.Actor())

	var stored models.Account
	require.NoError(t, db.Take(&stored, "id = ?", result.Account.ID).Error)
	require.NotNil(t, stored.LastLoginAt)
	require.Equal(t, "10.1.1.1", stored.LastLoginIP)

	session, err := svc.Authenticate(ctx, result.Token)
	require.NoError(t, err)
	require.Equal(t, result.Session.ID, session.ID)
}

func TestLoginIsScopedToTable(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.CreateAccount(ctx, CreateAccountInput{TableName: "yonghu", Username: "amy", Password: "pw"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginInput{TableName: "jiaolian", Username: "amy", Password: "pw"})
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.Login(ctx, LoginInput{TableName: "yonghu", Username: "amy", Password: "wrong"})
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.Login(ctx, LoginInput{TableName: "yonghu", Username: "amy"})
	require.Error(t, err)
	require.Equal(t, apperrors.ErrBadRequest.Code, apperrors.FromError(err).Code)
}

func TestLoginRejectsOverlongPassword(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	password := strings.Repeat("a", 72)
	_, err := svc.CreateAccount(ctx, CreateAccountInput{TableName: "yonghu", Username: "long", Password: password})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginInput{TableName: "yonghu", Username: "long", Password: password + "EXTRA-GARBAGE"})
	require.Error(t, err)
	appErr := apperrors.FromError(err)
	require.Equal(t, apperrors.ErrBadRequest.Code, appErr.Code)
	require.Equal(t, "password must be at most 72 bytes", appErr.Message)

	result, err := svc.Login(ctx, LoginInput{TableName: "yonghu", Username: "long", Password: password})
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)
}

func TestLoginRejectsDisabledAccount(t *testing.T) {
	svc, db := newTestAuthService(t)
	ctx := context.Background()

	account, err := svc.CreateAccount(ctx, CreateAccountInput{TableName: "yonghu", Username: "off", Password: "pw"})
	require.NoError(t, err)
	require.NoError(t, db.Model(account).Update("is_active", false).Error)

	_, err = svc.Login(ctx, LoginInput{TableName: "yonghu", Username: "off", Password: "pw"})
	require.ErrorIs(t, err, ErrAccountDisabled)
}

func TestLogoutEndsSession(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.CreateAccount(ctx, CreateAccountInput{TableName: "yonghu", Username: "amy", Password: "pw"})
	require.NoError(t, err)
	result, err := svc.Login(ctx, LoginInput{TableName: "yonghu", Username: "amy", Password: "pw"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, result.Session.ID))
	require.NoError(t, svc.Logout(ctx, result.Session.ID))

	_, err = svc.Authenticate(ctx, result.Token)
	require.ErrorIs(t, err, apperrors.ErrSessionClosed)

	_, err = svc.Authenticate(ctx, "garbage")
	require.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestCreateAccountRejectsDuplicates(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.CreateAccount(ctx, CreateAccountInput{TableName: "yonghu", Username: "amy", Password: "pw"})
	require.NoError(t, err)

	_, err = svc.CreateAccount(ctx, CreateAccountInput{TableName: "yonghu", Username: "amy", Password: "pw2"})
	require.ErrorIs(t, err, ErrAccountExists)

	_, err = svc.CreateAccount(ctx, CreateAccountInput{Username: "x", Password: "pw"})
	require.Error(t, err)
}

func TestEnsureAdminIsIdempotent(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	account, created, err := svc.EnsureAdmin(ctx, "root", "changeme")
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, permissions.DefaultAdminTable, account.Table)

	again, created, err := svc.EnsureAdmin(ctx, "root", "other")
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, account.ID, again.ID)

	none, created, err := svc.EnsureAdmin(ctx, "", "")
	require.NoError(t, err)
	require.False(t, created)
	require.Nil(t, none)

	result, err := svc.Login(ctx, LoginInput{TableName: "admin", Username: "root", Password: "changeme"})
	require.NoError(t, err)
	require.True(t, permissions.NewResolver(nil).IsBackAuth(result.Session.Actor(), "anything", "删除"))
}
