// Package handler provides HTTP handlers for the API.
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

// TrialHandler handles trial catalog and bookmark HTTP requests.
type TrialHandler struct {
	trials    *service.TrialService
	saved     *service.SavedTrialService
	validator *validator.Validator
	logger    *zap.Logger
}

// NewTrialHandler creates a new TrialHandler.
func NewTrialHandler(
	trials *service.TrialService,
	saved *service.SavedTrialService,
	v *validator.Validator,
	logger *zap.Logger,
) *TrialHandler {
	return &TrialHandler{
		trials:    trials,
		saved:     saved,
		validator: v,
		logger:    logger,
	}
}

// Search handles GET /api/v1/trials
func (h *TrialHandler) Search(c *fiber.Ctx) error {
	var req dto.SearchRequest
	if err := c.QueryParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "invalid query parameters",
			Code:  "INVALID_PARAMS",
		})
	}

	if err := h.validator.Validate(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   "validation failed",
			Code:    "VALIDATION_ERROR",
			Details: err,
		})
	}

	filter := req.ToSearchFilter()
	result, err := h.trials.Search(c.Context(), filter, middleware.ViewerID(c))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidFilter) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: err.Error(),
				Code:  "INVALID_FILTER",
			})
		}
		h.logger.Error("search failed", zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: "search failed",
			Code:  "INTERNAL_ERROR",
		})
	}

	return c.JSON(dto.FromSearchResult(result))
}

// GetByID handles GET /api/v1/trials/:id
func (h *TrialHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "id is required",
			Code:  "MISSING_ID",
		})
	}

	trial, err := h.trials.GetByID(c.Context(), id, middleware.ViewerID(c))
	if err != nil {
		h.logger.Error("get trial failed", zap.String("id", id), zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: "failed to get trial",
			Code:  "INTERNAL_ERROR",
		})
	}

	if trial == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: "trial not found",
			Code:  "NOT_FOUND",
		})
	}

	return c.JSON(dto.FromDomainTrial(trial))
}

// Save handles POST /api/v1/trials/:id/save
func (h *TrialHandler) Save(c *fiber.Ctx) error {
	id := c.Params("id")

	var req dto.SaveTrialRequest
	if len(c.Body()) > 0 {
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
	}

	err := h.saved.Save(c.Context(), middleware.ViewerID(c), id, req.Notes)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadySaved) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: "trial already saved",
				Code:  "ALREADY_SAVED",
			})
		}
		h.logger.Error("save trial failed", zap.String("id", id), zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: "failed to save trial",
			Code:  "INTERNAL_ERROR",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"trial_id": id,
		"saved":    true,
	})
}

// Unsave handles DELETE /api/v1/trials/:id/save
func (h *TrialHandler) Unsave(c *fiber.Ctx) error {
	id := c.Params("id")

	err := h.saved.Unsave(c.Context(), middleware.ViewerID(c), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: "trial is not saved",
				Code:  "NOT_FOUND",
			})
		}
		h.logger.Error("unsave trial failed", zap.String("id", id), zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: "failed to unsave trial",
			Code:  "INTERNAL_ERROR",
		})
	}

	return c.JSON(fiber.Map{
		"trial_id": id,
		"saved":    false,
	})
}

// ListSaved handles GET /api/v1/users/me/saved-trials
func (h *TrialHandler) ListSaved(c *fiber.Ctx) error {
	items, err := h.saved.ListSaved(c.Context(), middleware.ViewerID(c))
	if err != nil {
		h.logger.Error("list saved trials failed", zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: "failed to list saved trials",
			Code:  "INTERNAL_ERROR",
		})
	}

	return c.JSON(dto.FromSavedItems(items))
}

// ExpressInterest handles POST /api/v1/trials/:id/interest
func (h *TrialHandler) ExpressInterest(c *fiber.Ctx) error {
	id := c.Params("id")

	var req dto.InterestRequest
	if len(c.Body()) > 0 {
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
	}

	interest, err := h.trials.ExpressInterest(c.Context(), middleware.ViewerID(c), id, req.Message)
	if err != nil {
		h.logger.Error("express interest failed", zap.String("id", id), zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: "failed to record interest",
			Code:  "INTERNAL_ERROR",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(dto.FromInterest(interest))
}
