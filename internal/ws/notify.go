package ws

import (
	"encoding/json"
	"time"

	"grant-compass/internal/domain/application"

	"github.com/google/uuid"
)

type ApplicationStatusEvent struct {
	Type          string `json:"type"`
	ApplicationID string `json:"application_id"`
	GrantID       string `json:"grant_id"`
	Status        string `json:"status"`
	Percent       int    `json:"percent"`
	Timestamp     string `json:"timestamp"`
}

// Notifier adapts the hub to the application tracker's notification port.
type Notifier struct {
	hub *Hub
}

func NewNotifier(hub *Hub) *Notifier {
	return &Notifier{hub: hub}
}

func (n *Notifier) NotifyApplicationStatus(userID uuid.UUID, a application.Application) {
	if n == nil || n.hub == nil {
		return
	}

	evt := ApplicationStatusEvent{
		Type:          "application_status",
		ApplicationID: a.ID.String(),
		GrantID:       a.GrantID,
		Status:        string(a.Status),
		Percent:       a.Percent(),
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	}
	b, err := json.Marshal(evt)
	if err != nil {
		return
	}

	n.hub.Send(userID, b)
}
