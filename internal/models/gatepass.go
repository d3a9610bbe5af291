package models

import "time"

type PassType string

const (
	PassTypeVisitor  PassType = "VISITOR"
	PassTypeMaterial PassType = "MATERIAL"
	PassTypeVehicle  PassType = "VEHICLE"
)

func (t PassType) Valid() bool {
	switch t {
	case PassTypeVisitor, PassTypeMaterial, PassTypeVehicle:
		return true
	}
	return false
}

type PassStatus string

const (
	StatusPending    PassStatus = "PENDING"
	StatusApproved   PassStatus = "APPROVED"
	StatusRejected   PassStatus = "REJECTED"
	StatusCheckedIn  PassStatus = "CHECKED_IN"
	StatusCheckedOut PassStatus = "CHECKED_OUT"
)

// AllStatuses lists statuses in lifecycle order.
var AllStatuses = []PassStatus{
	StatusPending,
	StatusApproved,
	StatusRejected,
	StatusCheckedIn,
	StatusCheckedOut,
}

func (s PassStatus) Valid() bool {
	for _, st := range AllStatuses {
		if s == st {
			return true
		}
	}
	return false
}

// Terminal statuses accept no further transitions.
func (s PassStatus) Terminal() bool {
	return s == StatusRejected || s == StatusCheckedOut
}

var transitions = map[PassStatus][]PassStatus{
	StatusPending:   {StatusApproved, StatusRejected},
	StatusApproved:  {StatusCheckedIn},
	StatusCheckedIn: {StatusCheckedOut},
}

// CanTransition reports whether a pass in status from may move to status to.
func CanTransition(from, to PassStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

const (
	GuestVisitorID    = "guest"
	DefaultDepartment = "Main Reception"
	ValidDateLayout   = "2006-01-02"
)

type GatePass struct {
	ID             string     `json:"id" bson:"id"`
	VisitorID      string     `json:"visitorId" bson:"visitor_id"`
	VisitorName    string     `json:"visitorName" bson:"visitor_name"`
	VisitorEmail   string     `json:"visitorEmail" bson:"visitor_email"`
	Purpose        string     `json:"purpose" bson:"purpose"`
	Department     string     `json:"department" bson:"department"`
	Type           PassType   `json:"type" bson:"type"`
	Status         PassStatus `json:"status" bson:"status"`
	RequestedAt    time.Time  `json:"requestedAt" bson:"requested_at"`
	ValidDate      string     `json:"validDate" bson:"valid_date"`
	CheckInTime    *time.Time `json:"checkInTime,omitempty" bson:"check_in_time,omitempty"`
	CheckOutTime   *time.Time `json:"checkOutTime,omitempty" bson:"check_out_time,omitempty"`
	PhotoURL       string     `json:"photoUrl,omitempty" bson:"photo_url,omitempty"`
	AIVerification string     `json:"aiVerification,omitempty" bson:"ai_verification,omitempty"`
}

// DashboardStats summarizes passes by status.
type DashboardStats struct {
	Total    int                `json:"total"`
	ByStatus map[PassStatus]int `json:"byStatus"`
	ByType   map[PassType]int   `json:"byType"`
	Recent   []GatePass         `json:"recent"`
}

// SecurityQueue is what the gate desk works from.
type SecurityQueue struct {
	AwaitingArrival []GatePass `json:"awaitingArrival"`
	OnSite          []GatePass `json:"onSite"`
}
