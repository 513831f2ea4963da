package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"SportsSync/internal/model"
	"SportsSync/internal/repository"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var ErrInvalidUser = errors.New("用户信息无效")

const minPasswordLen = 8

// CreateUserRequest 注册请求
type CreateUserRequest struct {
	Username    string                 `json:"username" binding:"required"`
	Email       string                 `json:"email" binding:"required"`
	Password    string                 `json:"password" binding:"required"`
	Preferences map[string]interface{} `json:"preferences"`
}

// gameNotificationPayload 通知里附带的比赛信息
type gameNotificationPayload struct {
	GameID    string `json:"game_id"`
	Date      string `json:"date"`
	Team1Name string `json:"team1_name"`
	Team2Name string `json:"team2_name"`
}

// UserService 用户、收藏与站内通知
type UserService struct {
	users      repository.UserRepository
	bcryptCost int
	logger     *logrus.Logger
}

func NewUserService(users repository.UserRepository, logger *logrus.Logger) *UserService {
	return &UserService{users: users, bcryptCost: bcrypt.DefaultCost, logger: logger}
}

func (s *UserService) CreateUser(ctx context.Context, req *CreateUserRequest) (*model.User, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, fmt.Errorf("%w: username 不能为空", ErrInvalidUser)
	}
	addr, err := mail.ParseAddress(req.Email)
	if err != nil {
		return nil, fmt.Errorf("%w: email 格式错误", ErrInvalidUser)
	}
	if len(req.Password) < minPasswordLen {
		return nil, fmt.Errorf("%w: 密码至少%d位", ErrInvalidUser, minPasswordLen)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("密码哈希失败: %w", err)
	}

	user := &model.User{
		Username:     username,
		Email:        strings.ToLower(addr.Address),
		PasswordHash: string(hash),
	}
	if len(req.Preferences) > 0 {
		prefs, err := json.Marshal(req.Preferences)
		if err != nil {
			return nil, fmt.Errorf("%w: preferences 无法序列化", ErrInvalidUser)
		}
		user.Preferences = datatypes.JSON(prefs)
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// CheckPassword 校验明文密码
func (s *UserService) CheckPassword(user *model.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}

// AddFavorite 收藏球队时 ref 为队名（规范空白），球员为 player_id
func (s *UserService) AddFavorite(ctx context.Context, userID uint64, kind model.FavoriteKind, ref string) (*model.Favorite, error) {
	if _, err := s.users.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}
	switch kind {
	case model.FavoriteTeam:
		ref = model.CleanName(ref)
	case model.FavoritePlayer:
		ref = strings.TrimSpace(ref)
	default:
		return nil, fmt.Errorf("%w: 未知收藏类型 %q", ErrInvalidUser, kind)
	}
	if ref == "" {
		return nil, fmt.Errorf("%w: ref 不能为空", ErrInvalidUser)
	}
	fav := &model.Favorite{UserID: userID, Kind: kind, Ref: ref}
	if err := s.users.AddFavorite(ctx, fav); err != nil {
		return nil, err
	}
	return fav, nil
}

func (s *UserService) ListFavorites(ctx context.Context, userID uint64) ([]*model.Favorite, error) {
	return s.users.ListFavorites(ctx, userID)
}

func (s *UserService) ListNotifications(ctx context.Context, userID uint64, unreadOnly bool) ([]*model.Notification, error) {
	return s.users.ListNotifications(ctx, userID, unreadOnly, 0)
}

func (s *UserService) MarkNotificationRead(ctx context.Context, userID, notificationID uint64) error {
	return s.users.MarkNotificationRead(ctx, userID, notificationID)
}

// NotifyGameInserted 给收藏了任一参赛球队的用户写一条通知
func (s *UserService) NotifyGameInserted(ctx context.Context, game *model.Game) error {
	ids, err := s.users.ListUserIDsByFavoriteTeams(ctx, []string{game.Team1Name, game.Team2Name})
	if err != nil {
		return fmt.Errorf("查询收藏用户失败: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}

	date := model.GameDay(game.Date).Format(model.DateLayout)
	payload, err := json.Marshal(gameNotificationPayload{
		GameID:    game.GameID,
		Date:      date,
		Team1Name: game.Team1Name,
		Team2Name: game.Team2Name,
	})
	if err != nil {
		return err
	}
	msg := fmt.Sprintf("Upcoming game: %s vs %s on %s", game.Team1Name, game.Team2Name, date)

	notes := make([]*model.Notification, 0, len(ids))
	for _, id := range ids {
		notes = append(notes, &model.Notification{UserID: id, Message: msg, Payload: datatypes.JSON(payload)})
	}
	if err := s.users.CreateNotifications(ctx, notes); err != nil {
		return err
	}
	s.logger.WithFields(logrus.Fields{"game_id": game.GameID, "users": len(ids)}).Info("已生成收藏球队比赛通知")
	return nil
}
