package services

import "gatepass-backend/internal/models"

type RegisterRequest struct {
	Name   string      `json:"name" validate:"required,min=1,max=100"`
	Email  string      `json:"email" validate:"required,email"`
	Role   models.Role `json:"role,omitempty" validate:"omitempty,oneof=ADMIN SECURITY VISITOR"`
	Avatar string      `json:"avatar,omitempty" validate:"omitempty,url"`
}

type LoginRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// CreatePassRequest is the typed pass request. VisitorName and VisitorEmail
// are only read when there is no session.
type CreatePassRequest struct {
	Purpose      string          `json:"purpose" validate:"required,min=1,max=500"`
	Type         models.PassType `json:"type" validate:"required,oneof=VISITOR MATERIAL VEHICLE"`
	Department   string          `json:"department,omitempty" validate:"max=100"`
	ValidDate    string          `json:"validDate" validate:"required,datetime=2006-01-02"`
	VisitorName  string          `json:"visitorName,omitempty" validate:"omitempty,max=100"`
	VisitorEmail string          `json:"visitorEmail,omitempty" validate:"omitempty,email"`
	PhotoURL     string          `json:"photoUrl,omitempty" validate:"omitempty,url"`
}

type UpdateStatusRequest struct {
	Status models.PassStatus `json:"status" validate:"required,oneof=PENDING APPROVED REJECTED CHECKED_IN CHECKED_OUT"`
}
