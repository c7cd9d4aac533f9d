package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/salonbase/clinic-referrals/internal/model"
	"github.com/salonbase/clinic-referrals/pkg/database"
)

// AppointmentPoolInterface defines the database operations needed by
// AppointmentRepository. This allows for easier testing with mocks.
type AppointmentPoolInterface interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// AppointmentRepository provides data access for appointments using pgx.
type AppointmentRepository struct {
	pool AppointmentPoolInterface
}

// NewAppointmentRepository creates a new AppointmentRepository with the given pool.
func NewAppointmentRepository(pool *pgxpool.Pool) *AppointmentRepository {
	return &AppointmentRepository{pool: pool}
}

// NewAppointmentRepositoryWithPool creates a new AppointmentRepository with a
// custom pool interface. This is primarily used for testing.
func NewAppointmentRepositoryWithPool(pool AppointmentPoolInterface) *AppointmentRepository {
	return &AppointmentRepository{pool: pool}
}

const appointmentColumns = `id, customer_id, treatment_id, treatment_option_id, status,
	base_price, referral_code_used, discount_amount, final_price, created_at, updated_at`

// Insert writes a new appointment within a transaction. The caller supplies
// all fields, including any referral pricing captured at booking time.
func (r *AppointmentRepository) Insert(ctx context.Context, tx database.TxQuerier, appt *model.Appointment) error {
	query := `INSERT INTO appointments (` + appointmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := tx.Exec(ctx, query,
		appt.ID, appt.CustomerID, appt.TreatmentID, appt.TreatmentOptionID, appt.Status,
		appt.BasePrice, appt.ReferralCodeUsed, appt.DiscountAmount, appt.FinalPrice,
		appt.CreatedAt, appt.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert appointment %s: %w", appt.ID, err)
	}
	return nil
}

// GetByID retrieves an appointment by id.
// Returns nil, nil if the appointment is not found (service layer handles this).
func (r *AppointmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`

	appt, err := scanAppointment(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found - let service handle
		}
		return nil, fmt.Errorf("get appointment %s: %w", id, err)
	}
	return appt, nil
}

// UpdateStatus sets the status and bumps updated_at, returning the updated row.
// Returns nil, nil if no appointment matches the id.
func (r *AppointmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus, updatedAt time.Time) (*model.Appointment, error) {
	query := `UPDATE appointments SET status = $2, updated_at = $3 WHERE id = $1
		RETURNING ` + appointmentColumns

	appt, err := scanAppointment(r.pool.QueryRow(ctx, query, id, status, updatedAt))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("update appointment status %s: %w", id, err)
	}
	return appt, nil
}

// Delete hard-removes an appointment row. Referral usages and rewards are
// deliberately left untouched. Returns false when no row matched.
func (r *AppointmentRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete appointment %s: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanAppointment(row pgx.Row) (*model.Appointment, error) {
	var appt model.Appointment
	err := row.Scan(
		&appt.ID,
		&appt.CustomerID,
		&appt.TreatmentID,
		&appt.TreatmentOptionID,
		&appt.Status,
		&appt.BasePrice,
		&appt.ReferralCodeUsed,
		&appt.DiscountAmount,
		&appt.FinalPrice,
		&appt.CreatedAt,
		&appt.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &appt, nil
}
