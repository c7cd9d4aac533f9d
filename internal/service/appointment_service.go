package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/salonbase/clinic-referrals/internal/catalog"
	"github.com/salonbase/clinic-referrals/internal/model"
	"github.com/salonbase/clinic-referrals/pkg/database"
)

// AppointmentRepositoryInterface defines the interface for appointment data access.
type AppointmentRepositoryInterface interface {
	Insert(ctx context.Context, tx database.TxQuerier, appt *model.Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus, updatedAt time.Time) (*model.Appointment, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// ReferralLedgerInterface defines the full ledger access for the booking flow:
// the validator's read side plus the transactional write side and the
// referral-portal list queries.
type ReferralLedgerInterface interface {
	ReferralReaderInterface
	GetCodeByOwner(ctx context.Context, ownerUserID uuid.UUID) (*model.ReferralCode, error)
	InsertUsage(ctx context.Context, tx database.TxQuerier, usage *model.ReferralUsage) error
	InsertReward(ctx context.Context, tx database.TxQuerier, reward *model.Reward) error
	ListUsagesByReferrer(ctx context.Context, referrerUserID uuid.UUID) ([]model.ReferralUsage, error)
	ListRewardsByReferrer(ctx context.Context, referrerUserID uuid.UUID) ([]model.Reward, error)
}

// PricingCatalogInterface defines the price lookup consumed at booking time.
type PricingCatalogInterface interface {
	Lookup(treatmentID, optionID string) (catalog.Price, error)
}

// TxBeginner defines the interface for beginning transactions.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// BookingResult is the outcome of creating an appointment. Warning carries a
// recoverable referral failure when the booking proceeded without a discount;
// it is nil when the referral applied or no code was supplied.
type BookingResult struct {
	Appointment             *model.Appointment
	ReferralRewardProcessed bool
	Warning                 error
}

// AppointmentService owns the appointment lifecycle: creation with referral
// processing, admin status changes, deletion, and the referral-portal reads.
type AppointmentService struct {
	pool        TxBeginner
	appts       AppointmentRepositoryInterface
	ledger      ReferralLedgerInterface
	prices      PricingCatalogInterface
	validator   *ReferralValidator
	ratePercent int64
}

// NewAppointmentService creates an AppointmentService with the given pool,
// repositories, and catalog. ratePercent is the referral rate (e.g. 5 for 5%).
func NewAppointmentService(pool *pgxpool.Pool, appts AppointmentRepositoryInterface, ledger ReferralLedgerInterface, prices PricingCatalogInterface, ratePercent int64) *AppointmentService {
	return NewAppointmentServiceWithTxBeginner(pool, appts, ledger, prices, ratePercent)
}

// NewAppointmentServiceWithTxBeginner creates an AppointmentService with a
// custom TxBeginner. Primarily used for testing.
func NewAppointmentServiceWithTxBeginner(pool TxBeginner, appts AppointmentRepositoryInterface, ledger ReferralLedgerInterface, prices PricingCatalogInterface, ratePercent int64) *AppointmentService {
	return &AppointmentService{
		pool:        pool,
		appts:       appts,
		ledger:      ledger,
		prices:      prices,
		validator:   NewReferralValidator(ledger),
		ratePercent: ratePercent,
	}
}

// Create books an appointment. A referral-validation failure never blocks the
// booking: the appointment is created at full price and the failure comes back
// as BookingResult.Warning. Only catalog misses and storage failures abort.
//
// When a referral applies, the appointment, the usage record, and the reward
// are written in a single transaction. Two concurrent bookings racing to be a
// customer's first redemption are arbitrated by the UNIQUE constraint on the
// usage table: the loser's transaction rolls back and the booking is retried
// once without referral fields.
func (s *AppointmentService) Create(ctx context.Context, req *model.CreateAppointmentRequest) (*BookingResult, error) {
	if req == nil {
		return nil, ErrInvalidRequest
	}
	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		return nil, ErrInvalidRequest
	}

	price, err := s.prices.Lookup(req.TreatmentID, req.TreatmentOptionID)
	if err != nil {
		return nil, fmt.Errorf("lookup price: %w", err)
	}

	referrerID, warning := s.validator.Validate(ctx, req.ReferralCode, customerID)
	if warning != nil && !IsReferralWarning(warning) {
		return nil, fmt.Errorf("validate referral: %w", warning)
	}

	now := time.Now().UTC()
	appt := &model.Appointment{
		ID:                uuid.New(),
		CustomerID:        customerID,
		TreatmentID:       req.TreatmentID,
		TreatmentOptionID: req.TreatmentOptionID,
		Status:            model.StatusPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if !price.Consultation {
		appt.BasePrice = decimal.NullDecimal{Decimal: price.Amount, Valid: true}
		appt.FinalPrice = decimal.NullDecimal{Decimal: price.Amount, Valid: true}
	}

	if warning != nil || referrerID == uuid.Nil {
		if err := s.insertPlain(ctx, appt); err != nil {
			return nil, err
		}
		return &BookingResult{Appointment: appt, Warning: warning}, nil
	}

	quote, quoteErr := QuoteReward(price.Amount, s.ratePercent)
	if quoteErr != nil {
		// Valid code, but the option carries no numeric price. Book it
		// unpriced and let the caller know no reward was processed.
		if err := s.insertPlain(ctx, appt); err != nil {
			return nil, err
		}
		return &BookingResult{Appointment: appt, Warning: ErrPriceUnavailable}, nil
	}

	code := NormalizeCode(req.ReferralCode)
	appt.ReferralCodeUsed = &code
	appt.DiscountAmount = decimal.NullDecimal{Decimal: quote.DiscountAmount, Valid: true}
	appt.FinalPrice = decimal.NullDecimal{Decimal: quote.FinalPrice, Valid: true}

	usage := &model.ReferralUsage{
		ReferredUserID: customerID,
		ReferrerUserID: referrerID,
		CodeUsed:       code,
		AppointmentID:  appt.ID,
		CreatedAt:      now,
	}
	reward := &model.Reward{
		ReferrerUserID: referrerID,
		ReferredUserID: customerID,
		AppointmentID:  appt.ID,
		TreatmentName:  price.TreatmentName,
		TreatmentCost:  price.Amount,
		RewardAmount:   quote.RewardAmount,
		Status:         model.RewardPending,
		CreatedAt:      now,
	}

	err = s.createWithReferral(ctx, appt, usage, reward)
	if errors.Is(err, ErrAlreadyReferred) {
		// Lost the first-use race to a concurrent booking. Strip the referral
		// fields and book at full price.
		appt.ReferralCodeUsed = nil
		appt.DiscountAmount = decimal.NullDecimal{}
		appt.FinalPrice = appt.BasePrice
		if err := s.insertPlain(ctx, appt); err != nil {
			return nil, err
		}
		return &BookingResult{Appointment: appt, Warning: ErrAlreadyReferred}, nil
	}
	if err != nil {
		return nil, err
	}

	return &BookingResult{Appointment: appt, ReferralRewardProcessed: true}, nil
}

// createWithReferral writes the appointment, usage, and reward atomically.
// Returns ErrAlreadyReferred when the usage insert hits the UNIQUE constraint.
func (s *AppointmentService) createWithReferral(ctx context.Context, appt *model.Appointment, usage *model.ReferralUsage, reward *model.Reward) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // Safe: no-op if committed

	if err := s.appts.Insert(ctx, tx, appt); err != nil {
		return fmt.Errorf("insert appointment: %w", err)
	}

	if err := s.ledger.InsertUsage(ctx, tx, usage); err != nil {
		if errors.Is(err, ErrAlreadyReferred) {
			return ErrAlreadyReferred
		}
		return fmt.Errorf("insert referral usage: %w", err)
	}

	if err := s.ledger.InsertReward(ctx, tx, reward); err != nil {
		return fmt.Errorf("insert reward: %w", err)
	}

	return tx.Commit(ctx)
}

// insertPlain writes an appointment with no referral bookkeeping.
func (s *AppointmentService) insertPlain(ctx context.Context, appt *model.Appointment) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := s.appts.Insert(ctx, tx, appt); err != nil {
		return fmt.Errorf("insert appointment: %w", err)
	}
	return tx.Commit(ctx)
}

// SetStatus applies an admin status change. Any status may replace any other;
// the transition set is deliberately unconstrained. Setting the current status
// again is not an error and still bumps updated_at.
func (s *AppointmentService) SetStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) (*model.Appointment, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	appt, err := s.appts.UpdateStatus(ctx, id, status, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	if appt == nil {
		return nil, ErrAppointmentNotFound
	}
	return appt, nil
}

// GetByID retrieves a single appointment.
func (s *AppointmentService) GetByID(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	appt, err := s.appts.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	if appt == nil {
		return nil, ErrAppointmentNotFound
	}
	return appt, nil
}

// Delete hard-removes an appointment. Referral usages and rewards that
// reference it are financial history and are never cascaded.
func (s *AppointmentService) Delete(ctx context.Context, id uuid.UUID) error {
	found, err := s.appts.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}
	if !found {
		return ErrAppointmentNotFound
	}
	return nil
}

// ListReferralUsages returns the redemptions credited to a referrer.
func (s *AppointmentService) ListReferralUsages(ctx context.Context, userID uuid.UUID) ([]model.ReferralUsage, error) {
	usages, err := s.ledger.ListUsagesByReferrer(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list referral usages: %w", err)
	}
	return usages, nil
}

// ListRewards returns the rewards earned by a referrer.
func (s *AppointmentService) ListRewards(ctx context.Context, userID uuid.UUID) ([]model.Reward, error) {
	rewards, err := s.ledger.ListRewardsByReferrer(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list rewards: %w", err)
	}
	return rewards, nil
}

// GetReferralCode returns a user's active referral code.
// Returns ErrCodeNotFound if the user has none.
func (s *AppointmentService) GetReferralCode(ctx context.Context, userID uuid.UUID) (*model.ReferralCode, error) {
	code, err := s.ledger.GetCodeByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get referral code: %w", err)
	}
	if code == nil {
		return nil, ErrCodeNotFound
	}
	return code, nil
}
