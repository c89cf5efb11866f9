package ws

import (
	"encoding/json"
	"time"
)

// Event is the wire shape broadcast to question subscribers.
type Event struct {
	Type       string    `json:"type"`
	QuestionID string    `json:"questionId"`
	ItemID     string    `json:"itemId,omitempty"`
	ItemType   string    `json:"itemType,omitempty"`
	UserID     string    `json:"userId,omitempty"`
	TotalLikes int       `json:"totalLikes,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Publish marshals the event and broadcasts it to the question's subscribers.
func (h *Hub) Publish(event Event) {
	if h == nil || event.QuestionID == "" {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	h.Broadcast(event.QuestionID, payload)
}
