package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/mathieu-neron/NichePulse/nichepulse-go/internal/middleware"
	"github.com/mathieu-neron/NichePulse/nichepulse-go/internal/service"
)

type QuotaHandler struct {
	quota *service.QuotaService
}

func NewQuotaHandler(quota *service.QuotaService) *QuotaHandler {
	return &QuotaHandler{quota: quota}
}

// GetStatus handles GET /api/quota/:feature?userId=X
func (h *QuotaHandler) GetStatus(c fiber.Ctx) error {
	feature, errMsg := middleware.ValidateFeature(c.Params("feature"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_PARAM", errMsg)
	}

	userID := fiber.Query[string](c, "userId")
	if userID == "" {
		userID = c.Get("X-User-ID")
	}
	userID, errMsg = middleware.ValidateUserID(userID)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_PARAM", errMsg)
	}

	status, err := h.quota.CheckQuota(c.Context(), userID, feature)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to read quota")
	}

	Metrics.QuotaChecks.WithLabelValues(status.APIStatus).Inc()
	return c.JSON(status)
}
