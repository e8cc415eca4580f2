package dto

import (
	"time"

	"grant-compass/internal/domain/application"

	"github.com/google/uuid"
)

type ApplicationResponse struct {
	ID        uuid.UUID              `json:"id"`
	GrantID   string                 `json:"grant_id"`
	Status    string                 `json:"status"`
	Percent   int                    `json:"percent"`
	History   []StatusChangeResponse `json:"history"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

type StatusChangeResponse struct {
	Status string    `json:"status"`
	Actor  string    `json:"actor,omitempty"`
	At     time.Time `json:"at"`
}

func NewApplicationResponse(a application.Application) ApplicationResponse {
	history := make([]StatusChangeResponse, 0, len(a.History))
	for _, ch := range a.History {
		history = append(history, StatusChangeResponse{
			Status: string(ch.Status),
			Actor:  ch.Actor,
			At:     ch.At,
		})
	}
	return ApplicationResponse{
		ID:        a.ID,
		GrantID:   a.GrantID,
		Status:    string(a.Status),
		Percent:   a.Percent(),
		History:   history,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func NewApplicationListResponse(apps []application.Application) []ApplicationResponse {
	out := make([]ApplicationResponse, 0, len(apps))
	for _, a := range apps {
		out = append(out, NewApplicationResponse(a))
	}
	return out
}
