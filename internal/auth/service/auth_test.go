package service

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/clinika/clinika-backend/internal/audit"
	"github.com/clinika/clinika-backend/internal/auth/jwt"
	"github.com/clinika/clinika-backend/internal/auth/repository"
	"github.com/clinika/clinika-backend/pkg/config"
	"github.com/clinika/clinika-backend/pkg/errors"
	"github.com/clinika/clinika-backend/pkg/testutil"
)

func newService(t *testing.T) (*AuthService, *testutil.MockDB) {
	t.Helper()
	mock := testutil.NewMockDB(t)

	manager := jwt.NewManager(&config.JWTConfig{
		Secret:        "test-secret",
		AccessExpiry:  15 * time.Minute,
		RefreshExpiry: 24 * time.Hour,
		Issuer:        "clinika-test",
	})

	svc := NewAuthService(
		repository.NewUserRepository(mock.DB),
		repository.NewSessionRepository(mock.DB),
		manager,
		audit.Nop{},
		mock.Logger,
	)
	return svc, mock
}

func userRow(passwordHash string) *sqlmock.Rows {
	return testutil.MockRows("id", "email", "name", "role", "password_hash", "created_at", "updated_at").
		AddRow("u-1", "admin@clinika.kg", "Админ", "admin", passwordHash, time.Now(), time.Now())
}

func TestLoginSuccess(t *testing.T) {
	svc, mock := newService(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("secret-pass"), bcrypt.MinCost)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT id, email, name, role, password_hash").
		WillReturnRows(userRow(string(hash)))
	mock.ExpectExec("INSERT INTO sessions").
		WillReturnResult(sqlmock.NewResult(1, 1))

	resp, err := svc.Login(context.Background(), &LoginRequest{
		Email:    "admin@clinika.kg",
		Password: "secret-pass",
	}, "ua", "127.0.0.1")
	require.NoError(t, err)

	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "u-1", resp.User.ID)
	mock.ExpectationsWereMet(t)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, mock := newService(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("right-pass"), bcrypt.MinCost)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT id, email, name, role, password_hash").
		WillReturnRows(userRow(string(hash)))

	_, err = svc.Login(context.Background(), &LoginRequest{
		Email:    "admin@clinika.kg",
		Password: "wrong-pass",
	}, "ua", "127.0.0.1")
	require.Error(t, err)

	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "INVALID_CREDENTIALS", appErr.Code)
}

func TestLoginUnknownEmailSameError(t *testing.T) {
	svc, mock := newService(t)

	mock.ExpectQuery("SELECT id, email, name, role, password_hash").
		WillReturnRows(testutil.MockRows("id"))

	_, err := svc.Login(context.Background(), &LoginRequest{
		Email:    "nobody@clinika.kg",
		Password: "whatever",
	}, "ua", "127.0.0.1")
	require.Error(t, err)

	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "INVALID_CREDENTIALS", appErr.Code)
}
