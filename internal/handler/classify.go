package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/mathieu-neron/NichePulse/nichepulse-go/internal/middleware"
	"github.com/mathieu-neron/NichePulse/nichepulse-go/internal/model"
	"github.com/mathieu-neron/NichePulse/nichepulse-go/internal/service"
)

type ClassifyHandler struct {
	classifier *service.ClassifierService
	quota      *service.QuotaService
}

func NewClassifyHandler(classifier *service.ClassifierService, quota *service.QuotaService) *ClassifyHandler {
	return &ClassifyHandler{classifier: classifier, quota: quota}
}

// Classify handles POST /api/classify
func (h *ClassifyHandler) Classify(c fiber.Ctx) error {
	var req model.ClassificationRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Request body must be valid JSON")
	}

	ref, errMsg := middleware.ValidateThumbnailRef(req.ThumbnailRef)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_PARAM", errMsg)
	}
	req.ThumbnailRef = ref

	userID := req.UserID
	if userID == "" {
		userID = c.Get("X-User-ID")
	}

	// Quota is consulted and echoed, never enforced: an exhausted caller
	// still gets an answer, the display layer decides what to show.
	var quotaStatus *model.QuotaStatus
	if status, err := h.quota.CheckQuota(c.Context(), userID, service.FeatureClassification); err == nil {
		quotaStatus = &status
		Metrics.QuotaChecks.WithLabelValues(status.APIStatus).Inc()
	}

	start := time.Now()
	result, err := h.classifier.Classify(c.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrVisionDisabled) {
			return middleware.ErrorResponse(c, fiber.StatusServiceUnavailable, "VISION_NOT_CONFIGURED",
				"Vision model credentials are not configured")
		}
		if service.IsMalformedResponse(err) {
			Metrics.VisionCallErrors.Inc()
			return middleware.ErrorResponse(c, fiber.StatusBadGateway, "UPSTREAM_MALFORMED",
				"Vision model returned an unusable response")
		}
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Classification failed")
	}

	Metrics.ClassificationsTotal.WithLabelValues(result.Method).Inc()
	switch result.Method {
	case model.MethodCache:
		Metrics.CacheHits.Inc()
	case model.MethodVisionModel:
		Metrics.CacheMisses.Inc()
		Metrics.VisionCallDuration.Observe(time.Since(start).Seconds())
	default:
		Metrics.CacheMisses.Inc()
	}

	// Cache hits are free; only fresh work counts against the quota.
	if result.Method != model.MethodCache {
		if err := h.quota.RecordUsage(c.Context(), userID, service.FeatureClassification, 1); err != nil {
			middleware.Logger.Warn().Err(err).Msg("quota: record usage failed")
		}
	}

	return c.JSON(model.ClassifyResponse{Result: result, Quota: quotaStatus})
}
