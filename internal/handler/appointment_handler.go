package handler

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/salonbase/clinic-referrals/internal/catalog"
	"github.com/salonbase/clinic-referrals/internal/model"
	"github.com/salonbase/clinic-referrals/internal/service"
)

// AppointmentServiceInterface defines the interface for appointment business logic.
type AppointmentServiceInterface interface {
	Create(ctx context.Context, req *model.CreateAppointmentRequest) (*service.BookingResult, error)
	SetStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) (*model.Appointment, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// AppointmentHandler handles HTTP requests for booking and admin operations.
type AppointmentHandler struct {
	service   AppointmentServiceInterface
	validator *validator.Validate
}

// NewAppointmentHandler creates a new AppointmentHandler with the given service and validator.
func NewAppointmentHandler(svc AppointmentServiceInterface, v *validator.Validate) *AppointmentHandler {
	return &AppointmentHandler{service: svc, validator: v}
}

// warningCode maps a recoverable referral failure to the stable code the
// booking UI keys its "fix referral code or continue" flow on.
func warningCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, service.ErrCodeNotFound):
		return "code_not_found"
	case errors.Is(err, service.ErrSelfReferral):
		return "self_referral"
	case errors.Is(err, service.ErrAlreadyReferred):
		return "already_referred"
	case errors.Is(err, service.ErrPriceUnavailable):
		return "price_unavailable"
	}
	return "referral_invalid"
}

// formatBookingValidationError converts validator errors to user-facing messages.
func formatBookingValidationError(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			field := fe.Field()
			tag := fe.Tag()

			switch field {
			case "CustomerID":
				if tag == "required" {
					return "invalid request: customer_id is required"
				}
				return "invalid request: customer_id must be a valid uuid"
			case "TreatmentID":
				if tag == "required" || tag == "notblank" {
					return "invalid request: treatment_id is required"
				}
				return "invalid request: treatment_id is invalid"
			case "TreatmentOptionID":
				if tag == "required" || tag == "notblank" {
					return "invalid request: treatment_option_id is required"
				}
				return "invalid request: treatment_option_id is invalid"
			default:
				if tag == "required" {
					return "invalid request: " + field + " is required"
				}
				return "invalid request: " + field + " is invalid"
			}
		}
	}
	return "invalid request"
}

// CreateAppointment handles POST /api/appointments booking requests.
// A referral failure never turns into an error status: the booking is created
// at full price and the response carries a warning code instead.
func (h *AppointmentHandler) CreateAppointment(c *fiber.Ctx) error {
	var req model.CreateAppointmentRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	// Codes arrive straight from a text input; trim and uppercase here so
	// stray whitespace around a valid code never costs the discount.
	req.ReferralCode = service.NormalizeCode(req.ReferralCode)

	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatBookingValidationError(err)})
	}

	result, err := h.service.Create(c.Context(), &req)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown treatment or option"})
		}
		if errors.Is(err, service.ErrInvalidRequest) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
		}
		log.Error().
			Err(err).
			Str("request_id", c.GetRespHeader("X-Request-ID")).
			Str("customer_id", req.CustomerID).
			Str("treatment_id", req.TreatmentID).
			Msg("failed to create appointment")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	resp := model.CreateAppointmentResponse{
		Appointment:             result.Appointment,
		ReferralRewardProcessed: result.ReferralRewardProcessed,
		Warning:                 warningCode(result.Warning),
	}
	if result.ReferralRewardProcessed && result.Appointment.DiscountAmount.Valid {
		discount := result.Appointment.DiscountAmount.Decimal.StringFixed(2)
		resp.DiscountAmount = &discount
	}

	log.Info().
		Str("request_id", c.GetRespHeader("X-Request-ID")).
		Str("appointment_id", result.Appointment.ID.String()).
		Str("customer_id", req.CustomerID).
		Bool("referral_reward_processed", result.ReferralRewardProcessed).
		Str("warning", resp.Warning).
		Msg("appointment created")

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// UpdateStatus handles PATCH /api/appointments/:id/status admin requests.
func (h *AppointmentHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid appointment id"})
	}

	var req model.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request: status must be one of pending, confirmed, completed, cancelled"})
	}

	appt, err := h.service.SetStatus(c.Context(), id, model.AppointmentStatus(req.Status))
	if err != nil {
		if errors.Is(err, service.ErrAppointmentNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "appointment not found"})
		}
		if errors.Is(err, service.ErrInvalidStatus) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid appointment status"})
		}
		log.Error().
			Err(err).
			Str("request_id", c.GetRespHeader("X-Request-ID")).
			Str("appointment_id", id.String()).
			Str("status", req.Status).
			Msg("failed to update appointment status")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.JSON(appt)
}

// GetAppointment handles GET /api/appointments/:id requests.
func (h *AppointmentHandler) GetAppointment(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid appointment id"})
	}

	appt, err := h.service.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrAppointmentNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "appointment not found"})
		}
		log.Error().Err(err).Str("appointment_id", id.String()).Msg("failed to get appointment")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.JSON(appt)
}

// DeleteAppointment handles DELETE /api/appointments/:id admin requests.
// Referral usages and rewards referencing the appointment are kept.
func (h *AppointmentHandler) DeleteAppointment(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid appointment id"})
	}

	if err := h.service.Delete(c.Context(), id); err != nil {
		if errors.Is(err, service.ErrAppointmentNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "appointment not found"})
		}
		log.Error().Err(err).Str("appointment_id", id.String()).Msg("failed to delete appointment")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.Status(fiber.StatusNoContent).Send(nil)
}
