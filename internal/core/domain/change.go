package domain

import "time"

type ChangeAction string

const (
	ChangeCreated ChangeAction = "created"
	ChangeUpdated ChangeAction = "updated"
	ChangeDeleted ChangeAction = "deleted"
)

// ChangeEvent describes one acknowledged mutation made through the dashboard.
type ChangeEvent struct {
	ID         string       `json:"id"`
	Resource   string       `json:"resource"`
	Action     ChangeAction `json:"action"`
	RecordID   ID           `json:"recordId"`
	OccurredAt time.Time    `json:"occurredAt"`
}
