package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"trial-catalog-service/internal/app/service"
	"trial-catalog-service/internal/domain"
	"trial-catalog-service/internal/transport/httpserver/dto"
	"trial-catalog-service/internal/transport/httpserver/middleware"
	"trial-catalog-service/internal/validator"
)

// AlertHandler handles alert subscription HTTP requests. All routes
// require an authenticated viewer; alerts owned by someone else are
// indistinguishable from missing ones.
type AlertHandler struct {
	alerts    *service.AlertService
	validator *validator.Validator
	logger    *zap.Logger
}

// NewAlertHandler creates a new AlertHandler.
func NewAlertHandler(alerts *service.AlertService, v *validator.Validator, logger *zap.Logger) *AlertHandler {
	return &AlertHandler{
		alerts:    alerts,
		validator: v,
		logger:    logger,
	}
}

// Create handles POST /api/v1/alerts/trials
func (h *AlertHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateAlertRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_BODY",
		})
	}

	if err := h.validator.Validate(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   "validation failed",
			Code:    "VALIDATION_ERROR",
			Details: err,
		})
	}

	created, err := h.alerts.Create(c.Context(), middleware.ViewerID(c), req.ToDomain())
	if err != nil {
		h.logger.Error("create alert failed", zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: "failed to create alert",
			Code:  "INTERNAL_ERROR",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(dto.FromAlert(created))
}

// List handles GET /api/v1/alerts/trials
func (h *AlertHandler) List(c *fiber.Ctx) error {
	alerts, err := h.alerts.List(c.Context(), middleware.ViewerID(c))
	if err != nil {
		h.logger.Error("list alerts failed", zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: "failed to list alerts",
			Code:  "INTERNAL_ERROR",
		})
	}

	return c.JSON(dto.FromAlerts(alerts))
}

// Update handles PATCH /api/v1/alerts/trials/:id
func (h *AlertHandler) Update(c *fiber.Ctx) error {
	id := c.Params("id")

	var req dto.UpdateAlertRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_BODY",
		})
	}

	if err := h.validator.Validate(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   "validation failed",
			Code:    "VALIDATION_ERROR",
			Details: err,
		})
	}

	updated, err := h.alerts.Update(c.Context(), middleware.ViewerID(c), id, req.ToUpdate())
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmptyUpdate):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: "update carries no fields",
				Code:  "EMPTY_UPDATE",
			})
		case errors.Is(err, domain.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: "alert not found",
				Code:  "NOT_FOUND",
			})
		}
		h.logger.Error("update alert failed", zap.String("id", id), zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: "failed to update alert",
			Code:  "INTERNAL_ERROR",
		})
	}

	return c.JSON(dto.FromAlert(updated))
}

// Delete handles DELETE /api/v1/alerts/trials/:id
func (h *AlertHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")

	err := h.alerts.Delete(c.Context(), middleware.ViewerID(c), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: "alert not found",
				Code:  "NOT_FOUND",
			})
		}
		h.logger.Error("delete alert failed", zap.String("id", id), zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: "failed to delete alert",
			Code:  "INTERNAL_ERROR",
		})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
