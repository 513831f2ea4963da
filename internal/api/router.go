package api

import "github.com/gin-gonic/gin"

// Handlers 全部业务接口
type Handlers struct {
	Games     *GameHandler
	Teams     *TeamHandler
	Players   *PlayerHandler
	Analytics *AnalyticsHandler
	Sync      *SyncHandler
	Users     *UserHandler
}

// RegisterRoutes 注册业务路由；/metrics 与 pprof 由 main 按配置挂载
func RegisterRoutes(r gin.IRouter, h *Handlers) {
	games := r.Group("/api/games")
	games.GET("", h.Games.ListGames)
	games.GET("/:game_id", h.Games.GetGame)
	games.GET("/:game_id/highlights", h.Games.GetHighlights)

	teams := r.Group("/api/teams")
	teams.GET("", h.Teams.ListTeams)
	teams.GET("/standings", h.Teams.Standings)
	teams.GET("/search/:name", h.Teams.SearchTeams)
	teams.GET("/:team_name", h.Teams.GetTeam)
	teams.GET("/:team_name/games", h.Teams.TeamGames)

	players := r.Group("/api/players")
	players.GET("", h.Players.ListPlayers)
	players.POST("", h.Players.CreatePlayer)
	players.GET("/search/:name", h.Players.SearchPlayers)
	players.GET("/:player_id", h.Players.GetPlayer)
	players.GET("/:player_id/games", h.Players.PlayerGames)
	players.POST("/:player_id/games", h.Players.RecordGame)
	players.POST("/:player_id/teams", h.Players.LinkTeam)

	analytics := r.Group("/api/analytics")
	analytics.GET("/teams/head-to-head/:team1_id/:team2_id", h.Analytics.HeadToHead)
	analytics.GET("/teams/performance/:team_id", h.Analytics.TeamPerformance)
	analytics.GET("/players/performance/:player_id", h.Analytics.PlayerPerformance)

	sync := r.Group("/sync")
	sync.POST("/games", h.Sync.SyncGames)
	sync.POST("/teams", h.Sync.SyncTeams)

	users := r.Group("/api/users")
	users.POST("", h.Users.CreateUser)
	users.POST("/:id/favorites", h.Users.AddFavorite)
	users.GET("/:id/notifications", h.Users.ListNotifications)
	users.POST("/:id/notifications/:nid/read", h.Users.MarkNotificationRead)
}
