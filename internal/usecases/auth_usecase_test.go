package usecases_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"merovian.backend/internal/domain/entities"
	domainerrors "merovian.backend/internal/domain/errors"
	"merovian.backend/internal/usecases"
	"merovian.backend/pkg/crypto"
	"merovian.backend/pkg/jwt"
	"merovian.backend/pkg/redis"
)

func init() {
	crypto.Cost = bcrypt.MinCost
}

type authFixture struct {
	uow        *MockUnitOfWork
	identities *MockIdentityRepository
	profiles   *MockProfileRepository
	sessions   *MockSessionStore
	pub        *recordingPublisher
	jwt        *jwt.JWTService
	uc         *usecases.AuthUsecase
}

func newAuthFixture(withSessions bool) *authFixture {
	f := &authFixture{
		uow:        new(MockUnitOfWork),
		identities: new(MockIdentityRepository),
		profiles:   new(MockProfileRepository),
		sessions:   new(MockSessionStore),
		pub:        &recordingPublisher{},
		jwt:        jwt.NewJWTService("test-secret", time.Minute, time.Hour),
	}
	var store usecases.SessionStore
	if withSessions {
		store = f.sessions
	}
	f.uc = usecases.NewAuthUsecase(f.uow, f.identities, f.profiles, f.jwt, store, time.Hour, f.pub)
	return f
}

func hashed(t *testing.T, password string) string {
	h, err := crypto.HashPassword(password)
	require.NoError(t, err)
	return h
}

func TestAuthUsecase_Signup_CreatesIdentityAndProfile(t *testing.T) {
	f := newAuthFixture(false)
	ctx := context.Background()

	f.identities.On("GetByEmail", ctx, "ada@example.com").Return(nil, domainerrors.ErrNotFound)
	f.uow.On("Do", ctx, mock.Anything).Return(nil)
	f.identities.On("Create", ctx, mock.AnythingOfType("*entities.Identity")).Return(nil)
	f.profiles.On("Create", ctx, mock.AnythingOfType("*entities.Profile")).Return(nil)

	resp, err := f.uc.Signup(ctx, &entities.SignupInput{Email: " Ada@Example.com ", Password: "password1", FullName: "Ada"})
	require.NoError(t, err)

	assert.Equal(t, "ada@example.com", resp.User.Email)
	assert.Equal(t, resp.User.ID, resp.Profile.ID)
	assert.Equal(t, entities.RoleUser, resp.Profile.Role)
	assert.Equal(t, entities.KYCUnverified, resp.Profile.KYCStatus)
	assert.Equal(t, "Ada", resp.Profile.FullName.String)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.True(t, crypto.CheckPassword("password1", resp.User.PasswordHash))
	assert.Equal(t, []string{"profiles:INSERT"}, f.pub.tables())

	claims, err := f.jwt.ValidateAccessToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user", claims.Role)

	f.uow.AssertExpectations(t)
	f.identities.AssertExpectations(t)
	f.profiles.AssertExpectations(t)
}

func TestAuthUsecase_Signup_DuplicateEmail(t *testing.T) {
	f := newAuthFixture(false)
	ctx := context.Background()
	f.identities.On("GetByEmail", ctx, "ada@example.com").Return(&entities.Identity{ID: uuid.New()}, nil)

	_, err := f.uc.Signup(ctx, &entities.SignupInput{Email: "ada@example.com", Password: "password1"})
	require.Error(t, err)
	appErr := domainerrors.FromError(err)
	assert.Equal(t, 409, appErr.Status)
	assert.Equal(t, "User already registered", appErr.Message)
	f.uow.AssertNotCalled(t, "Do", mock.Anything, mock.Anything)
}

func TestAuthUsecase_Signup_ProfileFailureAbortsWithoutEvent(t *testing.T) {
	f := newAuthFixture(false)
	ctx := context.Background()
	f.identities.On("GetByEmail", ctx, "ada@example.com").Return(nil, domainerrors.ErrNotFound)
	f.uow.On("Do", ctx, mock.Anything).Return(nil)
	f.identities.On("Create", ctx, mock.Anything).Return(nil)
	f.profiles.On("Create", ctx, mock.Anything).Return(errors.New("db down"))

	_, err := f.uc.Signup(ctx, &entities.SignupInput{Email: "ada@example.com", Password: "password1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create profile")
	assert.Empty(t, f.pub.tables())
}

func TestAuthUsecase_Signup_HashError(t *testing.T) {
	defer usecases.SetHashPassword(func(string) (string, error) { return "", errors.New("hash failed") })()
	f := newAuthFixture(false)
	ctx := context.Background()
	f.identities.On("GetByEmail", ctx, "ada@example.com").Return(nil, domainerrors.ErrNotFound)

	_, err := f.uc.Signup(ctx, &entities.SignupInput{Email: "ada@example.com", Password: "password1"})
	assert.EqualError(t, err, "hash failed")
}

func TestAuthUsecase_Signup_LookupError(t *testing.T) {
	f := newAuthFixture(false)
	ctx := context.Background()
	f.identities.On("GetByEmail", ctx, "ada@example.com").Return(nil, errors.New("db down"))

	_, err := f.uc.Signup(ctx, &entities.SignupInput{Email: "ada@example.com", Password: "password1"})
	assert.EqualError(t, err, "db down")
}

func TestAuthUsecase_Login(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	identity := &entities.Identity{ID: id, Email: "ada@example.com", PasswordHash: hashed(t, "password1")}
	admin := entities.NewProfile(id, identity.Email, "", time.Now())
	admin.Role = entities.RoleAdmin

	t.Run("tokens carry the stored role", func(t *testing.T) {
		f := newAuthFixture(false)
		f.identities.On("GetByEmail", ctx, "ada@example.com").Return(identity, nil)
		f.profiles.On("GetByID", ctx, id).Return(admin, nil)

		resp, err := f.uc.Login(ctx, &entities.LoginInput{Email: "ADA@example.com", Password: "password1"})
		require.NoError(t, err)
		claims, err := f.jwt.ValidateAccessToken(resp.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "admin", claims.Role)
		assert.Empty(t, resp.SessionID)
	})

	t.Run("wrong password", func(t *testing.T) {
		f := newAuthFixture(false)
		f.identities.On("GetByEmail", ctx, "ada@example.com").Return(identity, nil)

		_, err := f.uc.Login(ctx, &entities.LoginInput{Email: "ada@example.com", Password: "nope"})
		assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		f := newAuthFixture(false)
		f.identities.On("GetByEmail", ctx, "who@example.com").Return(nil, domainerrors.ErrNotFound)

		_, err := f.uc.Login(ctx, &entities.LoginInput{Email: "who@example.com", Password: "password1"})
		assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
	})

	t.Run("session login hides tokens", func(t *testing.T) {
		defer usecases.SetGenerateSessionID(func() (string, error) { return "sess-1", nil })()
		f := newAuthFixture(true)
		f.identities.On("GetByEmail", ctx, "ada@example.com").Return(identity, nil)
		f.profiles.On("GetByID", ctx, id).Return(admin, nil)
		f.sessions.On("CreateSession", ctx, "sess-1", mock.MatchedBy(func(d *redis.SessionData) bool {
			return d.UserID == id.String() && d.AccessToken != ""
		}), time.Hour).Return(nil)

		resp, err := f.uc.Login(ctx, &entities.LoginInput{Email: "ada@example.com", Password: "password1", UseSession: true})
		require.NoError(t, err)
		assert.Equal(t, "sess-1", resp.SessionID)
		assert.Empty(t, resp.AccessToken)
		assert.Empty(t, resp.RefreshToken)
		f.sessions.AssertExpectations(t)
	})

	t.Run("session login without store", func(t *testing.T) {
		f := newAuthFixture(false)
		f.identities.On("GetByEmail", ctx, "ada@example.com").Return(identity, nil)
		f.profiles.On("GetByID", ctx, id).Return(admin, nil)

		_, err := f.uc.Login(ctx, &entities.LoginInput{Email: "ada@example.com", Password: "password1", UseSession: true})
		assert.ErrorIs(t, err, domainerrors.ErrUnavailable)
	})

	t.Run("session store failure", func(t *testing.T) {
		defer usecases.SetGenerateSessionID(func() (string, error) { return "sess-2", nil })()
		f := newAuthFixture(true)
		f.identities.On("GetByEmail", ctx, "ada@example.com").Return(identity, nil)
		f.profiles.On("GetByID", ctx, id).Return(admin, nil)
		f.sessions.On("CreateSession", ctx, "sess-2", mock.Anything, time.Hour).Return(errors.New("redis down"))

		_, err := f.uc.Login(ctx, &entities.LoginInput{Email: "ada@example.com", Password: "password1", UseSession: true})
		assert.ErrorContains(t, err, "create session")
	})
}

func TestAuthUsecase_RefreshToken(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(false)
	id := uuid.New()
	identity := &entities.Identity{ID: id, Email: "ada@example.com"}
	profile := entities.NewProfile(id, identity.Email, "", time.Now())

	pair, err := f.jwt.GenerateTokenPair(id, identity.Email, "admin")
	require.NoError(t, err)

	f.identities.On("GetByID", ctx, id).Return(identity, nil)
	f.profiles.On("GetByID", ctx, id).Return(profile, nil)

	next, err := f.uc.RefreshToken(ctx, pair.RefreshToken)
	require.NoError(t, err)
	claims, err := f.jwt.ValidateAccessToken(next.AccessToken)
	require.NoError(t, err)
	// The role comes from the row, not from the old token.
	assert.Equal(t, "user", claims.Role)

	_, err = f.uc.RefreshToken(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)

	_, err = f.uc.RefreshToken(ctx, "garbage")
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
}

func TestAuthUsecase_RefreshToken_DeletedIdentity(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(false)
	id := uuid.New()
	pair, err := f.jwt.GenerateTokenPair(id, "gone@example.com", "user")
	require.NoError(t, err)
	f.identities.On("GetByID", ctx, id).Return(nil, domainerrors.ErrNotFound)

	_, err = f.uc.RefreshToken(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
}

func TestAuthUsecase_Logout(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(true)
	f.sessions.On("DeleteSession", ctx, "sess-1").Return(nil)

	require.NoError(t, f.uc.Logout(ctx, "sess-1"))
	require.NoError(t, f.uc.Logout(ctx, ""))
	f.sessions.AssertNumberOfCalls(t, "DeleteSession", 1)

	require.NoError(t, newAuthFixture(false).uc.Logout(ctx, "sess-1"))
}
