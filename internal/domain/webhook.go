package domain

import (
	"encoding/json"
	"time"
)

// WebhookEvent is a verified gateway event.
type WebhookEvent struct {
	ID         string                 `json:"id"`
	Type       string                 `json:"type"`
	APIVersion string                 `json:"api_version"`
	Livemode   bool                   `json:"livemode"`
	Created    time.Time              `json:"created"`
	Object     map[string]interface{} `json:"object,omitempty"`
	Raw        json.RawMessage        `json:"-"`
}

// ObjectID returns the id of the object the event refers to.
func (e *WebhookEvent) ObjectID() string {
	if e.Object == nil {
		return ""
	}
	id, _ := e.Object["id"].(string)
	return id
}

// Metadata returns the metadata attached to the event object.
func (e *WebhookEvent) Metadata() map[string]string {
	out := make(map[string]string)
	raw, ok := e.Object["metadata"].(map[string]interface{})
	if !ok {
		return out
	}
	for k, v := range raw {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}
