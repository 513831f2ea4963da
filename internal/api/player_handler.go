package api

import (
	"net/http"
	"time"

	"SportsSync/internal/model"
	"SportsSync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// PlayerHandler 球员关系图接口
type PlayerHandler struct {
	players *service.PlayerService
	logger  *logrus.Logger
}

func NewPlayerHandler(players *service.PlayerService, logger *logrus.Logger) *PlayerHandler {
	return &PlayerHandler{players: players, logger: logger}
}

type createPlayerRequest struct {
	PlayerID    string `json:"player_id" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Position    string `json:"position"`
	SeasonStats string `json:"season_stats"`
}

type linkTeamRequest struct {
	TeamName string `json:"team_name" binding:"required"`
	Since    string `json:"since"` // 2006-01-02，缺省为当天
}

type recordGameRequest struct {
	GameID string `json:"game_id" binding:"required"`
	Stats  string `json:"stats"`
}

// ListPlayers GET /api/players?position=G&team_id=&skip=0&limit=10
func (h *PlayerHandler) ListPlayers(c *gin.Context) {
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
	filter := model.PlayerFilter{Position: c.Query("position"), TeamID: c.Query("team_id")}
	players, err := h.players.ListPlayers(c.Request.Context(), filter, skip, limit)
	if err != nil {
		respondError(c, h.logger, "ListPlayers", err)
		return
	}
	c.JSON(http.StatusOK, nonNilPlayers(players))
}

// playerDetail 球员详情，附带按 since 推断的当前球队
type playerDetail struct {
	*model.Player
	CurrentTeam *model.PlayerTeam `json:"current_team,omitempty"`
}

// GetPlayer GET /api/players/:player_id
func (h *PlayerHandler) GetPlayer(c *gin.Context) {
	player, err := h.players.GetPlayer(c.Request.Context(), c.Param("player_id"))
	if err != nil {
		respondError(c, h.logger, "GetPlayer", err)
		return
	}
	c.JSON(http.StatusOK, playerDetail{Player: player, CurrentTeam: player.CurrentTeam()})
}

// PlayerGames GET /api/players/:player_id/games?start_date=&end_date=
func (h *PlayerHandler) PlayerGames(c *gin.Context) {
	dr, err := dateRangeQuery(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	games, err := h.players.PlayerGames(c.Request.Context(), c.Param("player_id"), dr)
	if err != nil {
		respondError(c, h.logger, "PlayerGames", err)
		return
	}
	if games == nil {
		games = []model.PlayerGame{}
	}
	c.JSON(http.StatusOK, games)
}

// SearchPlayers GET /api/players/search/:name
func (h *PlayerHandler) SearchPlayers(c *gin.Context) {
	players, err := h.players.SearchPlayers(c.Request.Context(), c.Param("name"), 0)
	if err != nil {
		respondError(c, h.logger, "SearchPlayers", err)
		return
	}
	c.JSON(http.StatusOK, nonNilPlayers(players))
}

// CreatePlayer POST /api/players
func (h *PlayerHandler) CreatePlayer(c *gin.Context) {
	var req createPlayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	player, err := h.players.RegisterPlayer(c.Request.Context(), &model.Player{
		PlayerID:    req.PlayerID,
		Name:        req.Name,
		Position:    req.Position,
		SeasonStats: req.SeasonStats,
	})
	if err != nil {
		respondError(c, h.logger, "CreatePlayer", err)
		return
	}
	c.JSON(http.StatusCreated, player)
}

// LinkTeam POST /api/players/:player_id/teams
func (h *PlayerHandler) LinkTeam(c *gin.Context) {
	var req linkTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	var since time.Time
	if req.Since != "" {
		d, err := model.ParseGameDay(req.Since)
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		since = d
	}
	if err := h.players.LinkToTeam(c.Request.Context(), c.Param("player_id"), req.TeamName, since); err != nil {
		respondError(c, h.logger, "LinkTeam", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "linked"})
}

// RecordGame POST /api/players/:player_id/games
func (h *PlayerHandler) RecordGame(c *gin.Context) {
	var req recordGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := h.players.RecordGame(c.Request.Context(), c.Param("player_id"), req.GameID, req.Stats); err != nil {
		respondError(c, h.logger, "RecordGame", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "recorded"})
}

func nonNilPlayers(players []model.Player) []model.Player {
	if players == nil {
		return []model.Player{}
	}
	return players
}
