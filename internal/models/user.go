package models

import (
	"fmt"
	"time"
)

type Role string

const (
	RoleTenant   Role = "tenant"
	RoleLandlord Role = "landlord"
	RoleAdmin    Role = "admin"
)

// ParseRole accepts only the three known roles.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

func (r Role) Valid() bool {
	switch r {
	case RoleTenant, RoleLandlord, RoleAdmin:
		return true
	}
	return false
}

func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

func (r Role) MarshalText() ([]byte, error) {
	return []byte(r), nil
}

// VerificationState tracks a user's progress through landlord verification.
type VerificationState string

const (
	VerificationUnverified VerificationState = "unverified"
	VerificationPending    VerificationState = "pending"
	VerificationVerified   VerificationState = "verified"
)

func (s VerificationState) Valid() bool {
	switch s {
	case VerificationUnverified, VerificationPending, VerificationVerified:
		return true
	}
	return false
}

type User struct {
	ID                string            `bson:"_id"`
	Username          string            `bson:"username"`
	Email             string            `bson:"email"`
	PasswordHash      string            `bson:"password_hash"`
	Role              Role              `bson:"role"`
	VerificationState VerificationState `bson:"verification_state"`
	CreatedAt         time.Time         `bson:"created_at"`
	UpdatedAt         time.Time         `bson:"updated_at"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// PublicUser is the projection of a user that may leave the server.
type PublicUser struct {
	ID                string            `json:"id"`
	Username          string            `json:"username"`
	Email             string            `json:"email"`
	Role              Role              `json:"role"`
	VerificationState VerificationState `json:"verificationState"`
	CreatedAt         time.Time         `json:"createdAt"`
}

func (u User) Public() PublicUser {
	return PublicUser{
		ID:                u.ID,
		Username:          u.Username,
		Email:             u.Email,
		Role:              u.Role,
		VerificationState: u.VerificationState,
		CreatedAt:         u.CreatedAt,
	}
}
