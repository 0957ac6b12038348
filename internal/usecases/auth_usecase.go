package usecases

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"merovian.backend/internal/domain/entities"
	domainerrors "merovian.backend/internal/domain/errors"
	"merovian.backend/internal/domain/repositories"
	"merovian.backend/pkg/crypto"
	"merovian.backend/pkg/jwt"
	"merovian.backend/pkg/redis"
	"merovian.backend/pkg/utils"
)

var (
	hashPassword      = crypto.HashPassword
	generateSessionID = crypto.GenerateSessionID
)

// AuthUsecase handles authentication business logic
type AuthUsecase struct {
	uow           repositories.UnitOfWork
	identityRepo  repositories.IdentityRepository
	profileRepo   repositories.ProfileRepository
	jwtService    *jwt.JWTService
	sessions      SessionStore
	sessionExpiry time.Duration
	publisher     EventPublisher
}

// NewAuthUsecase creates a new auth usecase
func NewAuthUsecase(
	uow repositories.UnitOfWork,
	identityRepo repositories.IdentityRepository,
	profileRepo repositories.ProfileRepository,
	jwtService *jwt.JWTService,
	sessions SessionStore,
	sessionExpiry time.Duration,
	publisher EventPublisher,
) *AuthUsecase {
	return &AuthUsecase{
		uow:           uow,
		identityRepo:  identityRepo,
		profileRepo:   profileRepo,
		jwtService:    jwtService,
		sessions:      sessions,
		sessionExpiry: sessionExpiry,
		publisher:     publisherOrNoop(publisher),
	}
}

// Signup creates the identity and its profile in one unit of work and
// returns a fresh token pair.
func (u *AuthUsecase) Signup(ctx context.Context, input *entities.SignupInput) (*entities.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	_, err := u.identityRepo.GetByEmail(ctx, email)
	if err == nil {
		return nil, domainerrors.NewAppError(http.StatusConflict, domainerrors.CodeConflict, "User already registered", domainerrors.ErrAlreadyExists)
	}
	if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}

	passwordHash, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	identity := &entities.Identity{
		ID:           utils.GenerateUUIDv7(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	profile := entities.NewProfile(identity.ID, email, strings.TrimSpace(input.FullName), now)

	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		if err := u.identityRepo.Create(txCtx, identity); err != nil {
			return fmt.Errorf("create identity: %w", err)
		}
		if err := u.profileRepo.Create(txCtx, profile); err != nil {
			return fmt.Errorf("create profile: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, u.publisher, func() (entities.ChangeEvent, error) {
		return entities.ProfileChange(profile, entities.ChangeInsert)
	})

	pair, err := u.jwtService.GenerateTokenPair(identity.ID, identity.Email, string(profile.Role))
	if err != nil {
		return nil, err
	}
	return &entities.AuthResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    pair.ExpiresAt,
		User:         identity,
		Profile:      profile,
	}, nil
}

// Login authenticates a user and returns tokens, or a session id when the
// caller asked for a server side session.
func (u *AuthUsecase) Login(ctx context.Context, input *entities.LoginInput) (*entities.AuthResponse, error) {
	identity, err := u.identityRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !crypto.CheckPassword(input.Password, identity.PasswordHash) {
		return nil, domainerrors.ErrInvalidCredentials
	}

	profile, err := u.profileRepo.GetByID(ctx, identity.ID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	pair, err := u.jwtService.GenerateTokenPair(identity.ID, identity.Email, string(profile.Role))
	if err != nil {
		return nil, err
	}

	resp := &entities.AuthResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    pair.ExpiresAt,
		User:         identity,
		Profile:      profile,
	}
	if !input.UseSession {
		return resp, nil
	}
	if u.sessions == nil {
		return nil, domainerrors.ErrUnavailable
	}

	sessionID, err := generateSessionID()
	if err != nil {
		return nil, err
	}
	err = u.sessions.CreateSession(ctx, sessionID, &redis.SessionData{
		UserID:       identity.ID.String(),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		CreatedAt:    time.Now().UTC(),
	}, u.sessionExpiry)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	resp.SessionID = sessionID
	resp.AccessToken = ""
	resp.RefreshToken = ""
	return resp, nil
}

// RefreshToken issues a new pair from a refresh token. The role is read
// again from the profile row.
func (u *AuthUsecase) RefreshToken(ctx context.Context, refreshToken string) (*jwt.TokenPair, error) {
	claims, err := u.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, domainerrors.Unauthorized("Invalid refresh token")
	}

	identity, err := u.identityRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.Unauthorized("Invalid refresh token")
		}
		return nil, err
	}
	profile, err := u.profileRepo.GetByID(ctx, identity.ID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	return u.jwtService.GenerateTokenPair(identity.ID, identity.Email, string(profile.Role))
}

// Logout drops the server side session, if any.
func (u *AuthUsecase) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" || u.sessions == nil {
		return nil
	}
	return u.sessions.DeleteSession(ctx, sessionID)
}

// GetUserByID gets an identity by ID
func (u *AuthUsecase) GetUserByID(ctx context.Context, id uuid.UUID) (*entities.Identity, error) {
	return u.identityRepo.GetByID(ctx, id)
}
