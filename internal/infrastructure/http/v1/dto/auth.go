package dto

import (
	"time"

	"lmis/internal/domain/auth"
)

// LoginRequest for POST /auth/login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ToCredentials converts the request to domain credentials.
func (r LoginRequest) ToCredentials() auth.Credentials {
	return auth.Credentials{
		Username: r.Username,
		Password: r.Password,
	}
}

// RegisterRequest for POST /auth/register.
type RegisterRequest struct {
	Username     string `json:"username" binding:"required"`
	Password     string `json:"password" binding:"required"`
	FacilityCode string `json:"facilityCode" binding:"required"`
	FacilityName string `json:"facilityName"`
}

// TokenResponse carries an issued access token.
type TokenResponse struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
	TokenType   string    `json:"tokenType"`
}

// FromToken creates TokenResponse from a domain token.
func FromToken(t *auth.Token) TokenResponse {
	return TokenResponse{
		AccessToken: t.AccessToken,
		ExpiresAt:   t.ExpiresAt,
		TokenType:   t.TokenType,
	}
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	FacilityCode string `json:"facilityCode"`
	FacilityName string `json:"facilityName,omitempty"`
	IsActive     bool   `json:"isActive"`
}

// FromUser creates UserResponse from a domain user.
func FromUser(u *auth.User) UserResponse {
	return UserResponse{
		ID:           u.ID.String(),
		Username:     u.Username,
		FacilityCode: u.FacilityCode,
		FacilityName: u.FacilityName,
		IsActive:     u.IsActive,
	}
}

// LoginResponse for POST /auth/login.
type LoginResponse struct {
	Token TokenResponse `json:"token"`
	User  UserResponse  `json:"user"`
}
