package handler

import (
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/mathieu-neron/NichePulse/nichepulse-go/internal/middleware"
	"github.com/mathieu-neron/NichePulse/nichepulse-go/internal/model"
	"github.com/mathieu-neron/NichePulse/nichepulse-go/internal/service"
)

type AnalysisHandler struct {
	analysis *service.AnalysisService
	filter   *service.FilterService
	quota    *service.QuotaService
}

func NewAnalysisHandler(analysis *service.AnalysisService, filter *service.FilterService, quota *service.QuotaService) *AnalysisHandler {
	return &AnalysisHandler{analysis: analysis, filter: filter, quota: quota}
}

// Run handles POST /api/analysis
func (h *AnalysisHandler) Run(c fiber.Ctx) error {
	var req model.AnalysisRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Request body must be valid JSON")
	}

	for _, v := range req.Videos {
		if _, errMsg := middleware.ValidateVideoID(v.VideoID); errMsg != "" {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_PARAM", errMsg)
		}
	}

	start := time.Now()
	resp, err := h.analysis.Run(c.Context(), req)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Analysis run failed")
	}
	Metrics.AnalysisDuration.Observe(time.Since(start).Seconds())

	if err := h.quota.RecordUsage(c.Context(), c.Get("X-User-ID"), service.FeatureNicheAnalysis, 1); err != nil {
		middleware.Logger.Warn().Err(err).Msg("quota: record usage failed")
	}

	return c.JSON(resp)
}

// Ingest handles POST /api/videos/snapshots
func (h *AnalysisHandler) Ingest(c fiber.Ctx) error {
	var req model.SnapshotBatchRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Request body must be valid JSON")
	}
	if len(req.Videos) == 0 {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "MISSING_PARAM", "videos must not be empty")
	}

	for _, v := range req.Videos {
		if _, errMsg := middleware.ValidateVideoID(v.VideoID); errMsg != "" {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_PARAM", errMsg)
		}
		if _, errMsg := middleware.ValidateChannelID(v.ChannelID); errMsg != "" {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_PARAM", errMsg)
		}
	}

	resp, err := h.analysis.IngestSnapshots(c.Context(), req)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to store snapshots")
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Presets handles GET /api/analysis/presets
func (h *AnalysisHandler) Presets(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"presets": h.filter.Presets()})
}
