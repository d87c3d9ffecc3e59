package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/uni-timetable-api/internal/models"
	appErrors "github.com/noah-isme/uni-timetable-api/pkg/errors"
)

type mockUserRepo struct {
	users map[string]*models.User
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if user, ok := m.users[email]; ok {
		cp := *user
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	for _, user := range m.users {
		if user.ID == id {
			cp := *user
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func newAuthFixture(t *testing.T) (*AuthService, *mockUserRepo) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := &mockUserRepo{users: map[string]*models.User{
		"planner@uni.edu": {
			ID:           "u1",
			Email:        "planner@uni.edu",
			FullName:     "Head Planner",
			PasswordHash: string(hash),
			Role:         models.RolePlanner,
			Active:       true,
		},
		"gone@uni.edu": {
			ID:           "u2",
			Email:        "gone@uni.edu",
			PasswordHash: string(hash),
			Role:         models.RoleViewer,
			Active:       false,
		},
	}}

	svc := NewAuthService(repo, nil, nil, AuthConfig{
		AccessTokenSecret: "test-secret",
		AccessTokenExpiry: time.Hour,
		Issuer:            "uni-timetable-api",
	})
	return svc, repo
}

func TestLoginIssuesValidToken(t *testing.T) {
	svc, _ := newAuthFixture(t)

	result, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "planner@uni.edu",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.AccessToken)
	assert.Equal(t, "u1", result.User.ID)
	assert.Equal(t, models.RolePlanner, result.User.Role)

	claims, err := svc.ValidateToken(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, models.RolePlanner, claims.Role)
	assert.Equal(t, "uni-timetable-api", claims.Issuer)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "planner@uni.edu",
		Password: "wrong-password",
	})
	assertErrCode(t, err, appErrors.ErrInvalidCredentials.Code)
}

func TestLoginRejectsUnknownEmail(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "nobody@uni.edu",
		Password: "correct-horse",
	})
	assertErrCode(t, err, appErrors.ErrInvalidCredentials.Code)
}

func TestLoginRejectsInactiveAccount(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "gone@uni.edu",
		Password: "correct-horse",
	})
	assertErrCode(t, err, appErrors.ErrInactiveAccount.Code)
}

func TestValidateTokenRejectsForgedToken(t *testing.T) {
	svc, _ := newAuthFixture(t)

	other := NewAuthService(&mockUserRepo{}, nil, nil, AuthConfig{
		AccessTokenSecret: "different-secret",
		AccessTokenExpiry: time.Hour,
		Issuer:            "uni-timetable-api",
	})

	forged, _, err := other.generateAccessToken(&models.User{ID: "u1", Email: "planner@uni.edu", Role: models.RoleAdmin})
	require.NoError(t, err)

	_, err = svc.ValidateToken(forged)
	assertErrCode(t, err, appErrors.ErrUnauthorized.Code)
}
