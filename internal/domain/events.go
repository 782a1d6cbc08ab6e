package domain

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// AuditEvent is the message published to the audit topic for every admin
// action. The admin_actions row is the source of truth; the event stream is a
// best-effort feed for external consumers.
type AuditEvent struct {
	EventID    uuid.UUID       `json:"event_id"`
	EventType  string          `json:"event_type"`
	ActorID    int64           `json:"actor_id"`
	TargetID   *int64          `json:"target_id,omitempty"`
	Payload    json.RawMessage `json:"payload"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// PartitionKey keys the event by actor so one admin's actions stay ordered.
func (e AuditEvent) PartitionKey() []byte {
	return []byte(strconv.FormatInt(e.ActorID, 10))
}

// NewAuditEvent creates the audit event for one admin action row.
func NewAuditEvent(action AdminAction) AuditEvent {
	payload, _ := json.Marshal(action)
	return AuditEvent{
		EventID:    uuid.New(),
		EventType:  "admin_action." + action.ActionType,
		ActorID:    action.AdminID,
		TargetID:   action.TargetID,
		Payload:    payload,
		OccurredAt: time.Now(),
	}
}
