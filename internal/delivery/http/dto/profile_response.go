package dto

import (
	"time"

	"grant-compass/internal/domain/profile"

	"github.com/google/uuid"
)

type ProfileResponse struct {
	UserID       uuid.UUID `json:"user_id"`
	Occupation   string    `json:"occupation"`
	Birthdate    string    `json:"birthdate"`
	Income       *int64    `json:"income"`
	Demographic  string    `json:"demographic,omitempty"`
	Organization string    `json:"organization,omitempty"`
	Complete     bool      `json:"complete"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func NewProfileResponse(p profile.Profile) ProfileResponse {
	birthdate := ""
	if !p.Birthdate.IsZero() {
		birthdate = p.Birthdate.Format("2006-01-02")
	}
	return ProfileResponse{
		UserID:       p.UserID,
		Occupation:   p.Occupation,
		Birthdate:    birthdate,
		Income:       p.Income,
		Demographic:  string(p.Demographic),
		Organization: p.Organization,
		Complete:     p.Complete(),
		UpdatedAt:    p.UpdatedAt,
	}
}
