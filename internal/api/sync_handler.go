package api

import (
	"net/http"
	"time"

	"SportsSync/internal/model"
	"SportsSync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type SyncHandler struct {
	reconcile *service.ReconcileService
	logger    *logrus.Logger
}

func NewSyncHandler(reconcile *service.ReconcileService, logger *logrus.Logger) *SyncHandler {
	return &SyncHandler{reconcile: reconcile, logger: logger}
}

// SyncGames 手动触发比赛同步
// @Summary 拉取并合并指定日期的比赛
// @Param date query string false "日期 2006-01-02（默认当天 UTC）"
// @Success 200 {object} service.GameSyncResult
// @Router /sync/games [post]
func (h *SyncHandler) SyncGames(c *gin.Context) {
	var date *time.Time
	if raw := c.Query("date"); raw != "" {
		d, err := model.ParseGameDay(raw)
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		date = &d
	}
	res, err := h.reconcile.SyncGames(c.Request.Context(), date)
	if err != nil {
		h.logger.Errorf("同步比赛失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

// SyncTeams 手动触发积分榜同步
// @Param conference query string false "分区（east/west），为空同步全部"
// @Success 200 {object} service.TeamSyncResult
// @Router /sync/teams [post]
func (h *SyncHandler) SyncTeams(c *gin.Context) {
	res, err := h.reconcile.SyncTeams(c.Request.Context(), c.Query("conference"))
	if err != nil {
		respondError(c, h.logger, "SyncTeams", err)
		return
	}
	c.JSON(http.StatusOK, res)
}
