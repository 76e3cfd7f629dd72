// websocket/events.go
package websocket

import (
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"
)

// Event is a real-time notification pushed to connected clients.
type Event struct {
	Type      string      `json:"type"` // VALIDATION_UPDATED, AUDIT_RECORDED, KNOWLEDGE_CREATED
	TargetID  string      `json:"targetId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Broadcast sends an event to every connected client, dropping slow ones.
func Broadcast(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	data, err := json.Marshal(event)
	if err != nil {
		logrus.Warnf("Failed to marshal websocket event: %v", err)
		return
	}
	broadcast(data)
}

// SendValidationUpdated broadcasts a workflow status change.
func SendValidationUpdated(workflowID, itemID, oldStatus, newStatus string) {
	Broadcast(Event{
		Type:     "VALIDATION_UPDATED",
		TargetID: workflowID,
		Data: map[string]string{
			"knowledgeItem": itemID,
			"oldStatus":     oldStatus,
			"newStatus":     newStatus,
		},
	})
}

// SendAuditRecorded broadcasts a new audit entry to live audit views.
func SendAuditRecorded(entry interface{}) {
	Broadcast(Event{Type: "AUDIT_RECORDED", Data: entry})
}
