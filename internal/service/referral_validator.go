package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/salonbase/clinic-referrals/internal/model"
)

// ReferralReaderInterface defines the read-side ledger access the validator needs.
type ReferralReaderInterface interface {
	GetCodeByValue(ctx context.Context, code string) (*model.ReferralCode, error)
	HasUsageByReferredUser(ctx context.Context, referredUserID uuid.UUID) (bool, error)
}

// ReferralValidator resolves a claimed referral code to its owner and applies
// the eligibility rules. Validation is read-only and safely retryable; usage
// is recorded only when the owning appointment is durably created.
type ReferralValidator struct {
	ledger ReferralReaderInterface
}

// NewReferralValidator creates a ReferralValidator over the given ledger reader.
func NewReferralValidator(ledger ReferralReaderInterface) *ReferralValidator {
	return &ReferralValidator{ledger: ledger}
}

// NormalizeCode uppercases and trims a claimed referral code. Codes are stored
// uppercase, so matching is effectively case-insensitive.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Validate checks a claimed code for the booking customer. An empty or
// whitespace-only code is not a failure: it returns uuid.Nil with no error,
// meaning "no referral". Rules apply in order:
//  1. ErrCodeNotFound if no referral code record matches
//  2. ErrSelfReferral if the code's owner is the booking customer
//  3. ErrAlreadyReferred if the customer has a prior redemption
//
// On success it returns the referrer's user id.
func (v *ReferralValidator) Validate(ctx context.Context, claimedCode string, referredUserID uuid.UUID) (uuid.UUID, error) {
	code := NormalizeCode(claimedCode)
	if code == "" {
		return uuid.Nil, nil
	}

	record, err := v.ledger.GetCodeByValue(ctx, code)
	if err != nil {
		return uuid.Nil, fmt.Errorf("resolve referral code: %w", err)
	}
	if record == nil {
		return uuid.Nil, ErrCodeNotFound
	}

	if record.OwnerUserID == referredUserID {
		return uuid.Nil, ErrSelfReferral
	}

	used, err := v.ledger.HasUsageByReferredUser(ctx, referredUserID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("check prior referral usage: %w", err)
	}
	if used {
		return uuid.Nil, ErrAlreadyReferred
	}

	return record.OwnerUserID, nil
}
