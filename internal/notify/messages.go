package notify

import (
	"encoding/json"
	"time"
)

// ChangeMessage announces that a resource changed on the server. It carries
// only the coordinates of the change; consumers refetch through the normal
// read path instead of trusting the payload.
type ChangeMessage struct {
	Resource  string    `json:"resource"`
	ID        string    `json:"id,omitempty"`
	Operation string    `json:"operation"`
	Timestamp time.Time `json:"timestamp"`
}

func NewChangeMessage(resource, id, operation string) *ChangeMessage {
	return &ChangeMessage{
		Resource:  resource,
		ID:        id,
		Operation: operation,
		Timestamp: time.Now(),
	}
}

func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
