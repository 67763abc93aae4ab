package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lmis/internal/core/apperror"
	"lmis/internal/core/id"
)

// fakeUserRepo is an in-memory UserRepository.
type fakeUserRepo struct {
	users map[string]*User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *User) error {
	r.users[user.Username] = user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, userID id.ID) (*User, error) {
	for _, u := range r.users {
		if u.ID == userID {
			return u, nil
		}
	}
	return nil, apperror.NewNotFound("user", userID.String())
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*User, error) {
	if u, ok := r.users[username]; ok {
		return u, nil
	}
	return nil, apperror.NewNotFound("user", username)
}

func (r *fakeUserRepo) Update(_ context.Context, user *User) error {
	r.users[user.Username] = user
	return nil
}

func (r *fakeUserRepo) Exists(_ context.Context, username string) (bool, error) {
	_, ok := r.users[username]
	return ok, nil
}

func newTestService() (*Service, *fakeUserRepo) {
	repo := newFakeUserRepo()
	jwt := NewJWTService(DefaultJWTConfig("test-secret"))
	return NewService(repo, jwt), repo
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()

	user, err := service.Register(ctx, "nurse", "s3cret-pass", "HF01", "Health Facility One")
	require.NoError(t, err)
	assert.Equal(t, "HF01", user.FacilityCode)
	assert.True(t, user.IsActive)

	token, loggedIn, err := service.Login(ctx, Credentials{Username: "nurse", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.Equal(t, "Bearer", token.TokenType)
	assert.NotEmpty(t, token.AccessToken)

	userCtx, err := service.jwt.ValidateToken(token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "HF01", userCtx.FacilityCode)
	assert.Equal(t, "nurse", userCtx.Username)
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	service, _ := newTestService()

	_, err := service.Register(context.Background(), "nurse", "short", "HF01", "")
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()

	_, err := service.Register(ctx, "nurse", "s3cret-pass", "HF01", "")
	require.NoError(t, err)

	_, err = service.Register(ctx, "nurse", "other-pass99", "HF02", "")
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeDuplicate, appErr.Code)
}

func TestLoginWrongPasswordIsOpaque(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()

	_, err := service.Register(ctx, "nurse", "s3cret-pass", "HF01", "")
	require.NoError(t, err)

	_, _, err = service.Login(ctx, Credentials{Username: "nurse", Password: "wrong"})
	require.Error(t, err)
	wrongPass := err.Error()

	_, _, err = service.Login(ctx, Credentials{Username: "nobody", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, wrongPass, err.Error())
}

func TestLoginLocksAfterRepeatedFailures(t *testing.T) {
	ctx := context.Background()
	service, repo := newTestService()

	_, err := service.Register(ctx, "nurse", "s3cret-pass", "HF01", "")
	require.NoError(t, err)

	for i := 0; i < maxFailedLogins; i++ {
		_, _, err := service.Login(ctx, Credentials{Username: "nurse", Password: "wrong"})
		require.Error(t, err)
	}

	user := repo.users["nurse"]
	assert.True(t, user.IsLocked())

	// Correct password is still rejected while locked.
	_, _, err = service.Login(ctx, Credentials{Username: "nurse", Password: "s3cret-pass"})
	require.Error(t, err)
}

func TestLoginResetsFailureCountOnSuccess(t *testing.T) {
	ctx := context.Background()
	service, repo := newTestService()

	_, err := service.Register(ctx, "nurse", "s3cret-pass", "HF01", "")
	require.NoError(t, err)

	_, _, err = service.Login(ctx, Credentials{Username: "nurse", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, 1, repo.users["nurse"].FailedLoginAttempts)

	_, _, err = service.Login(ctx, Credentials{Username: "nurse", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.Equal(t, 0, repo.users["nurse"].FailedLoginAttempts)
	assert.NotNil(t, repo.users["nurse"].LastLoginAt)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	jwt := NewJWTService(DefaultJWTConfig("test-secret"))

	_, err := jwt.ValidateToken("not-a-token")
	require.Error(t, err)

	other := NewJWTService(DefaultJWTConfig("other-secret"))
	user := NewUser("nurse", "hash", "HF01")
	token, _, err := other.GenerateAccessToken(user)
	require.NoError(t, err)

	_, err = jwt.ValidateToken(token)
	require.Error(t, err)
}
