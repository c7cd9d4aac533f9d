package service

import "errors"

var (
	// ErrCodeNotFound is returned when a claimed referral code matches no record
	ErrCodeNotFound = errors.New("referral code not found")

	// ErrSelfReferral is returned when a customer claims their own referral code
	ErrSelfReferral = errors.New("cannot use own referral code")

	// ErrAlreadyReferred is returned when the customer has already redeemed a
	// referral code on an earlier booking (first use only)
	ErrAlreadyReferred = errors.New("customer already used a referral code")

	// ErrPriceUnavailable is returned when a treatment option has no numeric
	// price, so no discount or reward can be computed
	ErrPriceUnavailable = errors.New("treatment price unavailable")

	// ErrAppointmentNotFound is returned when an appointment id matches no record
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrInvalidStatus is returned when a status update names an unknown status
	ErrInvalidStatus = errors.New("invalid appointment status")

	// ErrInvalidRequest is returned when request data is invalid or incomplete
	ErrInvalidRequest = errors.New("invalid request")
)

// IsReferralWarning reports whether err belongs to the recoverable referral
// taxonomy. These never block appointment creation; the booking degrades to
// full price and the failure is surfaced to the caller as a warning.
func IsReferralWarning(err error) bool {
	return errors.Is(err, ErrCodeNotFound) ||
		errors.Is(err, ErrSelfReferral) ||
		errors.Is(err, ErrAlreadyReferred) ||
		errors.Is(err, ErrPriceUnavailable)
}
