package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/salonbase/clinic-referrals/internal/model"
	"github.com/salonbase/clinic-referrals/internal/service"
)

// ReferralPortalInterface defines the read-only queries backing the referral portal.
type ReferralPortalInterface interface {
	ListReferralUsages(ctx context.Context, userID uuid.UUID) ([]model.ReferralUsage, error)
	ListRewards(ctx context.Context, userID uuid.UUID) ([]model.Reward, error)
	GetReferralCode(ctx context.Context, userID uuid.UUID) (*model.ReferralCode, error)
}

// ReferralHandler handles HTTP requests for the referral portal.
type ReferralHandler struct {
	service ReferralPortalInterface
}

// NewReferralHandler creates a new ReferralHandler with the given service.
func NewReferralHandler(svc ReferralPortalInterface) *ReferralHandler {
	return &ReferralHandler{service: svc}
}

// ListUsages handles GET /api/referrals/:userId/usages requests.
func (h *ReferralHandler) ListUsages(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("userId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid user id"})
	}

	usages, err := h.service.ListReferralUsages(c.Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("failed to list referral usages")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.JSON(fiber.Map{"usages": usages})
}

// ListRewards handles GET /api/referrals/:userId/rewards requests.
func (h *ReferralHandler) ListRewards(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("userId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid user id"})
	}

	rewards, err := h.service.ListRewards(c.Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("failed to list rewards")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.JSON(fiber.Map{"rewards": rewards})
}

// GetCode handles GET /api/referrals/:userId/code requests.
func (h *ReferralHandler) GetCode(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("userId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid user id"})
	}

	code, err := h.service.GetReferralCode(c.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrCodeNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "referral code not found"})
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("failed to get referral code")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.JSON(code)
}
