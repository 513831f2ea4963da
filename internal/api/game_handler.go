package api

import (
	"net/http"
	"time"

	"SportsSync/internal/model"
	"SportsSync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const maxGameDays = 30

// GameHandler 比赛查询接口
type GameHandler struct {
	reconcile *service.ReconcileService
	query     *service.QueryService
	logger    *logrus.Logger
	now       func() time.Time
}

func NewGameHandler(reconcile *service.ReconcileService, query *service.QueryService, logger *logrus.Logger) *GameHandler {
	return &GameHandler{reconcile: reconcile, query: query, logger: logger, now: time.Now}
}

// ListGames 按日期列出比赛，单日时先与数据源合并
// GET /api/games?date=2024-01-15&days=1
func (h *GameHandler) ListGames(c *gin.Context) {
	day := model.GameDay(h.now().UTC())
	if raw := c.Query("date"); raw != "" {
		d, err := model.ParseGameDay(raw)
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		day = d
	}
	days, err := intQuery(c, "days", 1, 1, maxGameDays)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	games, err := h.reconcile.GamesForDateRange(c.Request.Context(), day, days)
	if err != nil {
		respondError(c, h.logger, "ListGames", err)
		return
	}
	if games == nil {
		games = []*model.Game{}
	}
	c.JSON(http.StatusOK, games)
}

// GetGame GET /api/games/:game_id
func (h *GameHandler) GetGame(c *gin.Context) {
	game, err := h.query.GetGame(c.Request.Context(), c.Param("game_id"))
	if err != nil {
		respondError(c, h.logger, "GetGame", err)
		return
	}
	c.JSON(http.StatusOK, game)
}

// GetHighlights GET /api/games/:game_id/highlights
func (h *GameHandler) GetHighlights(c *gin.Context) {
	gameID := c.Param("game_id")
	link, err := h.query.Highlights(c.Request.Context(), gameID)
	if err != nil {
		respondError(c, h.logger, "GetHighlights", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"game_id": gameID, "highlight_video_link": link})
}
