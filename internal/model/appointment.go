package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AppointmentStatus is the flat status field of an appointment. Any status may
// follow any other; admins correct bookings freely and the system does not
// enforce a transition graph.
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

// Valid reports whether s is one of the known appointment statuses.
func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Appointment represents a booked treatment. Price fields are captured from the
// catalog at booking time and never recomputed. BasePrice is null for
// consultation-required options; DiscountAmount is null unless a referral was
// applied. FinalPrice always reconciles with BasePrice - DiscountAmount.
type Appointment struct {
	ID                uuid.UUID           `json:"id"`
	CustomerID        uuid.UUID           `json:"customer_id"`
	TreatmentID       string              `json:"treatment_id"`
	TreatmentOptionID string              `json:"treatment_option_id"`
	Status            AppointmentStatus   `json:"status"`
	BasePrice         decimal.NullDecimal `json:"base_price"`
	ReferralCodeUsed  *string             `json:"referral_code_used,omitempty"`
	DiscountAmount    decimal.NullDecimal `json:"discount_amount"`
	FinalPrice        decimal.NullDecimal `json:"final_price"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

// CreateAppointmentRequest is the DTO for booking an appointment.
// ReferralCode is deliberately unvalidated here: a malformed or unknown code
// must still produce a booking, with the failure surfaced as a warning, so
// eligibility is decided in the service, never at the request gate.
type CreateAppointmentRequest struct {
	CustomerID        string `json:"customer_id" validate:"required,uuid4"`
	TreatmentID       string `json:"treatment_id" validate:"required,notblank,max=64"`
	TreatmentOptionID string `json:"treatment_option_id" validate:"required,notblank,max=64"`
	ReferralCode      string `json:"referral_code"`
}

// CreateAppointmentResponse is the API response DTO for POST /api/appointments.
// Warning carries a referral failure code when the booking proceeded without a
// discount; it is empty when the referral applied or no code was given.
type CreateAppointmentResponse struct {
	Appointment             *Appointment `json:"appointment"`
	ReferralRewardProcessed bool         `json:"referral_reward_processed"`
	DiscountAmount          *string      `json:"discount_amount,omitempty"`
	Warning                 string       `json:"warning,omitempty"`
}

// UpdateStatusRequest is the DTO for admin status changes.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed completed cancelled"`
}
