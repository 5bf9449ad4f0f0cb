package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"trial-catalog-service/internal/app/service"
	"trial-catalog-service/internal/transport/httpserver/dto"
)

// AdminHandler handles operational HTTP requests.
type AdminHandler struct {
	syncService  *service.SyncService
	trialService *service.TrialService
	logger       *zap.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(syncSvc *service.SyncService, trialSvc *service.TrialService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		syncService:  syncSvc,
		trialService: trialSvc,
		logger:       logger,
	}
}

// SyncAll handles POST /api/v1/admin/sync
func (h *AdminHandler) SyncAll(c *fiber.Ctx) error {
	h.logger.Info("manual sync triggered")

	results := h.syncService.SyncAll(c.Context())

	return c.JSON(dto.FromSyncResults(results))
}

// SyncRegistry handles POST /api/v1/admin/sync/:registry
func (h *AdminHandler) SyncRegistry(c *fiber.Ctx) error {
	registryName := c.Params("registry")
	if registryName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "registry name is required",
			Code:  "MISSING_REGISTRY",
		})
	}

	h.logger.Info("manual registry sync triggered", zap.String("registry", registryName))

	result, err := h.syncService.SyncRegistry(c.Context(), registryName)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: err.Error(),
			Code:  "SYNC_FAILED",
		})
	}

	if result == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: "registry not found",
			Code:  "REGISTRY_NOT_FOUND",
		})
	}

	return c.JSON(dto.SyncResultResponse{
		Registry: result.Registry,
		Count:    result.Count,
		Duration: result.Duration.String(),
	})
}

// GetRegistries handles GET /api/v1/admin/registries
func (h *AdminHandler) GetRegistries(c *fiber.Ctx) error {
	registries := h.syncService.GetRegistryNames()
	return c.JSON(fiber.Map{
		"registries": registries,
	})
}

// Stats handles GET /api/v1/admin/stats
func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	total, err := h.trialService.Count(c.Context())
	if err != nil {
		h.logger.Error("stats query failed", zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: "failed to compute stats",
			Code:  "INTERNAL_ERROR",
		})
	}

	return c.JSON(fiber.Map{
		"total_trials": total,
	})
}
