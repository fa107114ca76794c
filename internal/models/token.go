package models

import "time"

// RefreshTokenRecord is stored keyed by the token value itself. A record is
// live from issuance until it is rotated away or its expiry passes; a rotated
// or expired record is deleted, never reused.
type RefreshTokenRecord struct {
	Token     string    `json:"token"`
	UID       string    `json:"uid"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (r *RefreshTokenRecord) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

type AuthUser struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
}

type LoginResponse struct {
	User               AuthUser `json:"user"`
	AccessToken        string   `json:"accessToken"`
	RefreshToken       string   `json:"refreshToken"`
	RefreshTokenExpiry string   `json:"refreshTokenExpiry"`
}

type TokenResponse struct {
	AccessToken        string `json:"accessToken"`
	RefreshToken       string `json:"refreshToken"`
	RefreshTokenExpiry string `json:"refreshTokenExpiry"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (r *RefreshTokenRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.RefreshToken == "" {
		errors["refreshToken"] = "Refresh token is required"
	}

	return errors
}
