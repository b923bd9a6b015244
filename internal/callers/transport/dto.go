package transport

import (
	"time"

	"github.com/google/uuid"
)

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type SignOutRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type CreateCallerRequest struct {
	Email           string   `json:"email" validate:"required,email"`
	Name            string   `json:"name" validate:"required,min=2,max=100"`
	Password        string   `json:"password" validate:"required,min=10"`
	Roles           []string `json:"roles" validate:"omitempty,dive,oneof=caller closer admin"`
	BaseLatitude    *float64 `json:"baseLatitude" validate:"omitempty,min=-90,max=90"`
	BaseLongitude   *float64 `json:"baseLongitude" validate:"omitempty,min=-180,max=180"`
	DefaultRadiusKm int      `json:"defaultRadiusKm" validate:"omitempty,min=0,max=1000"`
}

type UpdateTerritoryRequest struct {
	BaseLatitude    *float64 `json:"baseLatitude" validate:"omitempty,min=-90,max=90"`
	BaseLongitude   *float64 `json:"baseLongitude" validate:"omitempty,min=-180,max=180"`
	DefaultRadiusKm int      `json:"defaultRadiusKm" validate:"min=0,max=1000"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=10"`
}

type CallerResponse struct {
	ID              uuid.UUID `json:"id"`
	Email           string    `json:"email"`
	Name            string    `json:"name"`
	Roles           []string  `json:"roles"`
	BaseLatitude    *float64  `json:"baseLatitude"`
	BaseLongitude   *float64  `json:"baseLongitude"`
	DefaultRadiusKm int       `json:"defaultRadiusKm"`
	CreatedAt       time.Time `json:"createdAt"`
}

type TokenPairResponse struct {
	AccessToken  string         `json:"accessToken"`
	RefreshToken string         `json:"refreshToken"`
	Caller       CallerResponse `json:"caller"`
}
