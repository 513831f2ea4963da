package model

import (
	"time"

	"gorm.io/datatypes"
)

// FavoriteKind 收藏类型
type FavoriteKind string

const (
	FavoriteTeam   FavoriteKind = "team"
	FavoritePlayer FavoriteKind = "player"
)

type User struct {
	ID           uint64         `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID" json:"id"`
	Username     string         `gorm:"column:username;type:varchar(64);index;not null;comment:用户名" json:"username"`
	Email        string         `gorm:"column:email;type:varchar(128);uniqueIndex;not null;comment:邮箱" json:"email"`
	PasswordHash string         `gorm:"column:password_hash;type:varchar(128);not null;comment:bcrypt哈希" json:"-"`
	Preferences  datatypes.JSON `gorm:"column:preferences;type:jsonb;comment:用户偏好文档" json:"preferences,omitempty"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime;comment:创建时间" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime;comment:更新时间" json:"updated_at"`
}

// Favorite 用户收藏的球队/球员；ref 为队名或 player_id
type Favorite struct {
	ID        uint64       `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID    uint64       `gorm:"column:user_id;not null;uniqueIndex:uq_user_favorite,priority:1" json:"user_id"`
	Kind      FavoriteKind `gorm:"column:kind;type:varchar(16);not null;uniqueIndex:uq_user_favorite,priority:2;index:idx_favorite_ref,priority:1" json:"kind"`
	Ref       string       `gorm:"column:ref;type:varchar(128);not null;uniqueIndex:uq_user_favorite,priority:3;index:idx_favorite_ref,priority:2" json:"ref"`
	CreatedAt time.Time    `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// Notification 站内通知（只落库，不推送）
type Notification struct {
	ID        uint64         `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID    uint64         `gorm:"column:user_id;not null;index" json:"user_id"`
	Message   string         `gorm:"column:message;type:varchar(512);not null" json:"message"`
	Payload   datatypes.JSON `gorm:"column:payload;type:jsonb" json:"payload,omitempty"`
	Read      bool           `gorm:"column:read;default:false" json:"read"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`
}

func (User) TableName() string         { return "users" }
func (Favorite) TableName() string     { return "user_favorites" }
func (Notification) TableName() string { return "notifications" }
