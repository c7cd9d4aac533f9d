package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/salonbase/clinic-referrals/internal/model"
	"github.com/salonbase/clinic-referrals/internal/service"
	"github.com/salonbase/clinic-referrals/pkg/database"
)

// uniqueViolation is the SQLSTATE pgx reports for UNIQUE constraint breaches.
const uniqueViolation = "23505"

// ReferralPoolInterface defines the database operations needed by ReferralRepository.
type ReferralPoolInterface interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// ReferralRepository is the durable referral ledger: codes, usages, and
// rewards. Reads go through the pool; writes take a transaction so they commit
// or roll back together with the owning appointment.
type ReferralRepository struct {
	pool ReferralPoolInterface
}

// NewReferralRepository creates a new ReferralRepository with the given pool.
func NewReferralRepository(pool *pgxpool.Pool) *ReferralRepository {
	return &ReferralRepository{pool: pool}
}

// NewReferralRepositoryWithPool creates a new ReferralRepository with a custom
// pool interface. This is primarily used for testing.
func NewReferralRepositoryWithPool(pool ReferralPoolInterface) *ReferralRepository {
	return &ReferralRepository{pool: pool}
}

// GetCodeByValue retrieves a referral code record. The caller is expected to
// have normalized the code; stored codes are uppercase.
// Returns nil, nil if no code matches (service layer handles this).
func (r *ReferralRepository) GetCodeByValue(ctx context.Context, code string) (*model.ReferralCode, error) {
	query := `SELECT code, owner_user_id, created_at FROM referral_codes WHERE code = $1`

	var rec model.ReferralCode
	err := r.pool.QueryRow(ctx, query, code).Scan(&rec.Code, &rec.OwnerUserID, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get referral code %s: %w", code, err)
	}
	return &rec, nil
}

// GetCodeByOwner retrieves a user's active referral code.
// Returns nil, nil if the user has none.
func (r *ReferralRepository) GetCodeByOwner(ctx context.Context, ownerUserID uuid.UUID) (*model.ReferralCode, error) {
	query := `SELECT code, owner_user_id, created_at FROM referral_codes WHERE owner_user_id = $1`

	var rec model.ReferralCode
	err := r.pool.QueryRow(ctx, query, ownerUserID).Scan(&rec.Code, &rec.OwnerUserID, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get referral code for owner %s: %w", ownerUserID, err)
	}
	return &rec, nil
}

// HasUsageByReferredUser reports whether a customer already redeemed any
// referral code. Redemption is first-use-only per customer.
func (r *ReferralRepository) HasUsageByReferredUser(ctx context.Context, referredUserID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM referral_usages WHERE referred_user_id = $1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, referredUserID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check referral usage for %s: %w", referredUserID, err)
	}
	return exists, nil
}

// InsertUsage records a redemption within a transaction. The UNIQUE constraint
// on referred_user_id arbitrates concurrent first-use races.
// Returns service.ErrAlreadyReferred when the customer already has a usage row.
func (r *ReferralRepository) InsertUsage(ctx context.Context, tx database.TxQuerier, usage *model.ReferralUsage) error {
	query := `INSERT INTO referral_usages (referred_user_id, referrer_user_id, code_used, appointment_id, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := tx.Exec(ctx, query,
		usage.ReferredUserID, usage.ReferrerUserID, usage.CodeUsed, usage.AppointmentID, usage.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return service.ErrAlreadyReferred
		}
		return fmt.Errorf("insert referral usage: %w", err)
	}
	return nil
}

// InsertReward records the referrer's reward within a transaction. The amount
// is fixed here; later admin review only ever changes the status column.
func (r *ReferralRepository) InsertReward(ctx context.Context, tx database.TxQuerier, reward *model.Reward) error {
	query := `INSERT INTO rewards (referrer_user_id, referred_user_id, appointment_id,
			treatment_name, treatment_cost, reward_amount, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := tx.Exec(ctx, query,
		reward.ReferrerUserID, reward.ReferredUserID, reward.AppointmentID,
		reward.TreatmentName, reward.TreatmentCost, reward.RewardAmount, reward.Status, reward.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert reward: %w", err)
	}
	return nil
}

// ListUsagesByReferrer retrieves all redemptions credited to a referrer,
// oldest first. On success, returns an empty slice (not nil) when none exist.
func (r *ReferralRepository) ListUsagesByReferrer(ctx context.Context, referrerUserID uuid.UUID) ([]model.ReferralUsage, error) {
	query := `SELECT referred_user_id, referrer_user_id, code_used, appointment_id, created_at
		FROM referral_usages WHERE referrer_user_id = $1 ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, referrerUserID)
	if err != nil {
		return nil, fmt.Errorf("list usages for referrer %s: %w", referrerUserID, err)
	}
	defer rows.Close()

	usages := []model.ReferralUsage{}
	for rows.Next() {
		var u model.ReferralUsage
		if err := rows.Scan(&u.ReferredUserID, &u.ReferrerUserID, &u.CodeUsed, &u.AppointmentID, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan referral usage: %w", err)
		}
		usages = append(usages, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate referral usages: %w", err)
	}
	return usages, nil
}

// ListRewardsByReferrer retrieves all rewards earned by a referrer, oldest
// first. On success, returns an empty slice (not nil) when none exist.
func (r *ReferralRepository) ListRewardsByReferrer(ctx context.Context, referrerUserID uuid.UUID) ([]model.Reward, error) {
	query := `SELECT referrer_user_id, referred_user_id, appointment_id,
			treatment_name, treatment_cost, reward_amount, status, created_at
		FROM rewards WHERE referrer_user_id = $1 ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, referrerUserID)
	if err != nil {
		return nil, fmt.Errorf("list rewards for referrer %s: %w", referrerUserID, err)
	}
	defer rows.Close()

	rewards := []model.Reward{}
	for rows.Next() {
		var rw model.Reward
		if err := rows.Scan(&rw.ReferrerUserID, &rw.ReferredUserID, &rw.AppointmentID,
			&rw.TreatmentName, &rw.TreatmentCost, &rw.RewardAmount, &rw.Status, &rw.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan reward: %w", err)
		}
		rewards = append(rewards, rw)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rewards: %w", err)
	}
	return rewards, nil
}
