package models

import (
	"strings"
	"time"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Placeholder avatars, one per gender. The profile image is always derived
// from gender, never user-supplied.
const (
	MaleProfileImage   = "https://cloud.appwrite.io/v1/storage/buckets/67cbfeb8001cacdead02/files/67cc4f75002419fbfc11/view?project=67cbfcdd00313bbf5ea5&mode=admin"
	FemaleProfileImage = "https://cloud.appwrite.io/v1/storage/buckets/67cbfeb8001cacdead02/files/67cc4f8400007b439e24/view?project=67cbfcdd00313bbf5ea5&mode=admin"
)

func ProfileImageFor(g Gender) string {
	if g == GenderFemale {
		return FemaleProfileImage
	}
	return MaleProfileImage
}

func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale
}

type User struct {
	ID           string    `json:"id,omitempty"`
	UID          string    `json:"uid"`
	Email        string    `json:"email"`
	FullName     string    `json:"fullName"`
	Gender       Gender    `json:"gender"`
	ProfileImage string    `json:"profileImage"`
	CreatedAt    time.Time `json:"createdAt"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
	Gender   Gender `json:"gender"`
}

func (r *RegisterRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if strings.TrimSpace(r.Email) == "" {
		errors["email"] = "Email is required"
	}
	if r.Password == "" {
		errors["password"] = "Password is required"
	} else if len(r.Password) < 6 {
		errors["password"] = "Password must be at least 6 characters"
	}
	if strings.TrimSpace(r.FullName) == "" {
		errors["fullName"] = "Full name is required"
	}
	if !r.Gender.Valid() {
		errors["gender"] = "Gender must be 'male' or 'female'"
	}

	return errors
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if strings.TrimSpace(r.Email) == "" {
		errors["email"] = "Email is required"
	}
	if r.Password == "" {
		errors["password"] = "Password is required"
	}

	return errors
}

type ResetPasswordRequest struct {
	Email string `json:"email"`
}

// UpdateProfileRequest carries the mutable profile fields. Email and password
// changes go through the identity provider, not this API.
type UpdateProfileRequest struct {
	FullName *string `json:"fullName,omitempty"`
	Gender   *Gender `json:"gender,omitempty"`
}

func (r *UpdateProfileRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.FullName == nil && r.Gender == nil {
		errors["fullName"] = "At least one field is required"
	}
	if r.FullName != nil && strings.TrimSpace(*r.FullName) == "" {
		errors["fullName"] = "Full name cannot be empty"
	}
	if r.Gender != nil && !r.Gender.Valid() {
		errors["gender"] = "Gender must be 'male' or 'female'"
	}

	return errors
}
