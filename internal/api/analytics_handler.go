package api

import (
	"net/http"

	"SportsSync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// AnalyticsHandler 统计接口
type AnalyticsHandler struct {
	analytics *service.AnalyticsService
	logger    *logrus.Logger
}

func NewAnalyticsHandler(analytics *service.AnalyticsService, logger *logrus.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics, logger: logger}
}

// HeadToHead GET /api/analytics/teams/head-to-head/:team1_id/:team2_id
func (h *AnalyticsHandler) HeadToHead(c *gin.Context) {
	stats, err := h.analytics.HeadToHead(c.Request.Context(), c.Param("team1_id"), c.Param("team2_id"))
	if err != nil {
		respondError(c, h.logger, "HeadToHead", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// TeamPerformance GET /api/analytics/teams/performance/:team_id?last_n_games=10
func (h *AnalyticsHandler) TeamPerformance(c *gin.Context) {
	lastN, err := intQuery(c, "last_n_games", 10, 1, 100)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	rows, err := h.analytics.TeamPerformanceTrend(c.Request.Context(), c.Param("team_id"), lastN)
	if err != nil {
		respondError(c, h.logger, "TeamPerformance", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"team_id": c.Param("team_id"), "games": rows})
}

// PlayerPerformance GET /api/analytics/players/performance/:player_id
func (h *AnalyticsHandler) PlayerPerformance(c *gin.Context) {
	trend, found, err := h.analytics.PlayerPerformanceTrend(c.Request.Context(), c.Param("player_id"))
	if err != nil {
		respondError(c, h.logger, "PlayerPerformance", err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "player not found"})
		return
	}
	c.JSON(http.StatusOK, trend)
}
