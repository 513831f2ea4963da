package api

import (
	"net/http"

	"SportsSync/internal/model"
	"SportsSync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// TeamHandler 球队战绩接口
type TeamHandler struct {
	reconcile *service.ReconcileService
	query     *service.QueryService
	logger    *logrus.Logger
}

func NewTeamHandler(reconcile *service.ReconcileService, query *service.QueryService, logger *logrus.Logger) *TeamHandler {
	return &TeamHandler{reconcile: reconcile, query: query, logger: logger}
}

// ListTeams GET /api/teams?conference=EASTERN&skip=0&limit=10
func (h *TeamHandler) ListTeams(c *gin.Context) {
	skip, err := intQuery(c, "skip", 0, 0, 1<<20)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	limit, err := intQuery(c, "limit", 10, 1, 100)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	teams, err := h.query.ListTeams(c.Request.Context(), c.Query("conference"), skip, limit)
	if err != nil {
		respondError(c, h.logger, "ListTeams", err)
		return
	}
	c.JSON(http.StatusOK, nonNilTeams(teams))
}

// Standings 先与数据源合并再返回积分榜
// GET /api/teams/standings?conference=west
func (h *TeamHandler) Standings(c *gin.Context) {
	teams, err := h.reconcile.Standings(c.Request.Context(), c.Query("conference"))
	if err != nil {
		respondError(c, h.logger, "Standings", err)
		return
	}
	c.JSON(http.StatusOK, nonNilTeams(teams))
}

// SearchTeams GET /api/teams/search/:name
func (h *TeamHandler) SearchTeams(c *gin.Context) {
	teams, err := h.query.SearchTeams(c.Request.Context(), c.Param("name"), 0)
	if err != nil {
		respondError(c, h.logger, "SearchTeams", err)
		return
	}
	c.JSON(http.StatusOK, nonNilTeams(teams))
}

// GetTeam GET /api/teams/:team_name（也接受 team_id）
func (h *TeamHandler) GetTeam(c *gin.Context) {
	team, err := h.query.GetTeam(c.Request.Context(), c.Param("team_name"))
	if err != nil {
		respondError(c, h.logger, "GetTeam", err)
		return
	}
	c.JSON(http.StatusOK, team)
}

// TeamGames GET /api/teams/:team_name/games?start_date=&end_date=
func (h *TeamHandler) TeamGames(c *gin.Context) {
	dr, err := dateRangeQuery(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	rows, err := h.query.TeamGames(c.Request.Context(), c.Param("team_name"), dr)
	if err != nil {
		respondError(c, h.logger, "TeamGames", err)
		return
	}
	if rows == nil {
		rows = []*model.TeamGame{}
	}
	c.JSON(http.StatusOK, rows)
}

func nonNilTeams(teams []*model.Team) []*model.Team {
	if teams == nil {
		return []*model.Team{}
	}
	return teams
}
