package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RewardStatus tracks the payout review state of a referral reward. The amount
// is fixed at creation; only the status ever changes.
type RewardStatus string

const (
	RewardPending  RewardStatus = "pending"
	RewardApproved RewardStatus = "approved"
	RewardRejected RewardStatus = "rejected"
	RewardRewarded RewardStatus = "rewarded"
)

// ReferralCode is the short token a customer shares. Codes are stored
// uppercase; lookups normalize before matching. One active code per owner.
type ReferralCode struct {
	Code        string    `json:"code"`
	OwnerUserID uuid.UUID `json:"owner_user_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// ReferralUsage records a redemption. A referred user appears here at most
// once ever; the table carries a UNIQUE constraint on referred_user_id.
type ReferralUsage struct {
	ReferredUserID uuid.UUID `json:"referred_user_id"`
	ReferrerUserID uuid.UUID `json:"referrer_user_id"`
	CodeUsed       string    `json:"code_used"`
	AppointmentID  uuid.UUID `json:"appointment_id"`
	CreatedAt      time.Time `json:"created_at"`
}

// Reward is the referrer's side of a redemption. Deleting the appointment does
// not delete this record; it is financial history.
type Reward struct {
	ReferrerUserID uuid.UUID       `json:"referrer_user_id"`
	ReferredUserID uuid.UUID       `json:"referred_user_id"`
	AppointmentID  uuid.UUID       `json:"appointment_id"`
	TreatmentName  string          `json:"treatment_name"`
	TreatmentCost  decimal.Decimal `json:"treatment_cost"`
	RewardAmount   decimal.Decimal `json:"reward_amount"`
	Status         RewardStatus    `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
}
