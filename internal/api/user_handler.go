package api

import (
	"net/http"
	"strconv"

	"SportsSync/internal/model"
	"SportsSync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// UserHandler 用户、收藏与通知接口
type UserHandler struct {
	users  *service.UserService
	logger *logrus.Logger
}

func NewUserHandler(users *service.UserService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

type addFavoriteRequest struct {
	Kind model.FavoriteKind `json:"kind" binding:"required"`
	Ref  string             `json:"ref" binding:"required"`
}

// CreateUser POST /api/users
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req service.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	user, err := h.users.CreateUser(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, "CreateUser", err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// AddFavorite POST /api/users/:id/favorites
func (h *UserHandler) AddFavorite(c *gin.Context) {
	userID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req addFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	fav, err := h.users.AddFavorite(c.Request.Context(), userID, req.Kind, req.Ref)
	if err != nil {
		respondError(c, h.logger, "AddFavorite", err)
		return
	}
	c.JSON(http.StatusOK, fav)
}

// ListNotifications GET /api/users/:id/notifications?unread_only=true
func (h *UserHandler) ListNotifications(c *gin.Context) {
	userID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	unreadOnly, _ := strconv.ParseBool(c.DefaultQuery("unread_only", "false"))
	notes, err := h.users.ListNotifications(c.Request.Context(), userID, unreadOnly)
	if err != nil {
		respondError(c, h.logger, "ListNotifications", err)
		return
	}
	if notes == nil {
		notes = []*model.Notification{}
	}
	c.JSON(http.StatusOK, notes)
}

// MarkNotificationRead POST /api/users/:id/notifications/:nid/read
func (h *UserHandler) MarkNotificationRead(c *gin.Context) {
	userID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	nid, ok := uintParam(c, "nid")
	if !ok {
		return
	}
	if err := h.users.MarkNotificationRead(c.Request.Context(), userID, nid); err != nil {
		respondError(c, h.logger, "MarkNotificationRead", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}
