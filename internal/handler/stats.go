package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/mathieu-neron/NichePulse/nichepulse-go/internal/middleware"
	"github.com/mathieu-neron/NichePulse/nichepulse-go/internal/repository"
)

type StatsHandler struct {
	videos *repository.VideoRepo
}

func NewStatsHandler(videos *repository.VideoRepo) *StatsHandler {
	return &StatsHandler{videos: videos}
}

// GetStats handles GET /api/stats
func (h *StatsHandler) GetStats(c fiber.Ctx) error {
	stats, err := h.videos.GetStats(c.Context())
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch statistics")
	}

	return c.JSON(stats)
}
