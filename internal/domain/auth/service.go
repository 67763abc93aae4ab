package auth

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"lmis/internal/core/apperror"
	"lmis/internal/core/id"
	"lmis/pkg/logger"
)

const (
	maxFailedLogins = 5
	lockDuration    = 15 * time.Minute
	minPasswordLen  = 8
)

// Service provides authentication operations.
type Service struct {
	users UserRepository
	jwt   *JWTService
}

// NewService creates an auth service.
func NewService(users UserRepository, jwt *JWTService) *Service {
	return &Service{users: users, jwt: jwt}
}

// Login authenticates credentials and issues an access token. Failures
// never disclose whether the username or the password was wrong.
func (s *Service) Login(ctx context.Context, creds Credentials) (*Token, *User, error) {
	user, err := s.users.GetByUsername(ctx, creds.Username)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, nil, apperror.NewUnauthorized("invalid credentials")
		}
		return nil, nil, fmt.Errorf("get user: %w", err)
	}

	if err := user.CanLogin(); err != nil {
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		user.RecordFailedLogin(maxFailedLogins, lockDuration)
		if updateErr := s.users.Update(ctx, user); updateErr != nil {
			logger.Warn(ctx, "record failed login", "username", creds.Username, "error", updateErr)
		}
		return nil, nil, apperror.NewUnauthorized("invalid credentials")
	}

	user.RecordSuccessfulLogin()
	if err := s.users.Update(ctx, user); err != nil {
		logger.Warn(ctx, "record successful login", "username", creds.Username, "error", err)
	}

	tokenString, expiresAt, err := s.jwt.GenerateAccessToken(user)
	if err != nil {
		return nil, nil, fmt.Errorf("generate token: %w", err)
	}

	logger.Info(ctx, "user logged in",
		"user_id", user.ID,
		"username", user.Username,
		"facility_code", user.FacilityCode,
	)

	return &Token{
		AccessToken: tokenString,
		ExpiresAt:   expiresAt,
		TokenType:   "Bearer",
	}, user, nil
}

// Register creates a new facility user account.
func (s *Service) Register(ctx context.Context, username, password, facilityCode, facilityName string) (*User, error) {
	if len(password) < minPasswordLen {
		return nil, apperror.NewValidation("password too short").
			WithDetail("min_length", minPasswordLen)
	}

	taken, err := s.users.Exists(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if taken {
		return nil, apperror.NewDuplicate("user", "username", username)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := NewUser(username, string(hash), facilityCode)
	user.FacilityName = facilityName
	if err := user.Validate(ctx); err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	logger.Info(ctx, "user registered", "user_id", user.ID, "facility_code", facilityCode)
	return user, nil
}

// GetUserByID retrieves a user by ID.
func (s *Service) GetUserByID(ctx context.Context, userID id.ID) (*User, error) {
	return s.users.GetByID(ctx, userID)
}
