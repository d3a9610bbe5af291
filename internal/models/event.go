package models

import "time"

type PassEventType string

const (
	EventPassRequested     PassEventType = "pass.requested"
	EventPassStatusChanged PassEventType = "pass.status_changed"
)

// PassEvent is published after every pass mutation.
type PassEvent struct {
	Type           PassEventType `json:"type"`
	PassID         string        `json:"passId"`
	Status         PassStatus    `json:"status"`
	PreviousStatus PassStatus    `json:"previousStatus,omitempty"`
	VisitorID      string        `json:"visitorId"`
	VisitorEmail   string        `json:"visitorEmail"`
	PassType       PassType      `json:"passType"`
	Timestamp      time.Time     `json:"timestamp"`
	Pass           GatePass      `json:"pass"`
}

func NewPassEvent(t PassEventType, pass GatePass, previous PassStatus, at time.Time) PassEvent {
	return PassEvent{
		Type:           t,
		PassID:         pass.ID,
		Status:         pass.Status,
		PreviousStatus: previous,
		VisitorID:      pass.VisitorID,
		VisitorEmail:   pass.VisitorEmail,
		PassType:       pass.Type,
		Timestamp:      at,
		Pass:           pass,
	}
}
