package repository

import (
	"context"
	"fmt"

	"SportsSync/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository 用户、收藏与站内通知（Postgres）
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id uint64) (*model.User, error)
	// AddFavorite 重复收藏视为成功
	AddFavorite(ctx context.Context, fav *model.Favorite) error
	ListFavorites(ctx context.Context, userID uint64) ([]*model.Favorite, error)
	// ListUserIDsByFavoriteTeams 收藏了任一球队的用户ID（去重）
	ListUserIDsByFavoriteTeams(ctx context.Context, teamNames []string) ([]uint64, error)
	CreateNotifications(ctx context.Context, notes []*model.Notification) error
	ListNotifications(ctx context.Context, userID uint64, unreadOnly bool, limit int) ([]*model.Notification, error)
	// MarkNotificationRead 只能标记属于该用户的通知
	MarkNotificationRead(ctx context.Context, userID, notificationID uint64) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) CreateUser(ctx context.Context, user *model.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("创建用户失败: %w", err)
	}
	return nil
}

func (r *userRepository) GetUserByID(ctx context.Context, id uint64) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &user, nil
}

func (r *userRepository) AddFavorite(ctx context.Context, fav *model.Favorite) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "kind"}, {Name: "ref"}},
		DoNothing: true,
	}).Create(fav).Error
	if err != nil {
		return fmt.Errorf("保存收藏失败: %w", err)
	}
	return nil
}

func (r *userRepository) ListFavorites(ctx context.Context, userID uint64) ([]*model.Favorite, error) {
	var favs []*model.Favorite
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&favs).Error; err != nil {
		return nil, err
	}
	return favs, nil
}

func (r *userRepository) ListUserIDsByFavoriteTeams(ctx context.Context, teamNames []string) ([]uint64, error) {
	if len(teamNames) == 0 {
		return nil, nil
	}
	var ids []uint64
	if err := r.db.WithContext(ctx).Model(&model.Favorite{}).
		Distinct("user_id").
		Where("kind = ? AND ref IN ?", model.FavoriteTeam, teamNames).
		Order("user_id ASC").
		Pluck("user_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *userRepository) CreateNotifications(ctx context.Context, notes []*model.Notification) error {
	if len(notes) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&notes).Error; err != nil {
		return fmt.Errorf("保存通知失败: %w", err)
	}
	return nil
}

func (r *userRepository) ListNotifications(ctx context.Context, userID uint64, unreadOnly bool, limit int) ([]*model.Notification, error) {
	_, limit = normalizePage(0, limit)
	db := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		db = db.Where("read = ?", false)
	}
	var notes []*model.Notification
	if err := db.Order("created_at DESC, id DESC").Limit(limit).Find(&notes).Error; err != nil {
		return nil, err
	}
	return notes, nil
}

func (r *userRepository) MarkNotificationRead(ctx context.Context, userID, notificationID uint64) error {
	res := r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
