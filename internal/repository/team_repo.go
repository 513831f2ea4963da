package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"SportsSync/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TeamFilter 球队列表筛选条件
type TeamFilter struct {
	Conference model.Conference // 为空表示不限
}

// TeamRepository 球队战绩文档库（Postgres）
type TeamRepository interface {
	// UpsertTeam 以 team_name 为唯一键：不存在则插入，存在则只覆盖 fields 指定的列（为空时覆盖全部战绩列）
	UpsertTeam(ctx context.Context, team *model.Team, fields ...string) error
	// GetTeamByName 按队名精确查询
	GetTeamByName(ctx context.Context, name string) (*model.Team, error)
	// GetTeamByTeamID 按 team_id 查询
	GetTeamByTeamID(ctx context.Context, teamID string) (*model.Team, error)
	// ListTeams 按分区分页，skip/limit 语义
	ListTeams(ctx context.Context, filter TeamFilter, skip, limit int) ([]*model.Team, error)
	// ListStandings 分区+排名排序的完整积分榜
	ListStandings(ctx context.Context, conference model.Conference) ([]*model.Team, error)
	// SearchTeams 队名不区分大小写包含匹配
	SearchTeams(ctx context.Context, name string, limit int) ([]*model.Team, error)
}

type teamRepository struct {
	db *gorm.DB
}

// NewTeamRepository 创建 TeamRepository 实例
func NewTeamRepository(db *gorm.DB) TeamRepository {
	return &teamRepository{db: db}
}

func (r *teamRepository) UpsertTeam(ctx context.Context, team *model.Team, fields ...string) error {
	if len(fields) == 0 {
		fields = model.TeamMutableColumns
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "team_name"}},
		DoUpdates: clause.AssignmentColumns(fields),
	}).Create(team).Error
	if err != nil {
		return fmt.Errorf("保存球队失败: %w, team: %s", err, team.TeamName)
	}
	return nil
}

func (r *teamRepository) GetTeamByName(ctx context.Context, name string) (*model.Team, error) {
	var team model.Team
	if err := r.db.WithContext(ctx).Where("team_name = ?", name).First(&team).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &team, nil
}

func (r *teamRepository) GetTeamByTeamID(ctx context.Context, teamID string) (*model.Team, error) {
	var team model.Team
	if err := r.db.WithContext(ctx).Where("team_id = ?", teamID).First(&team).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &team, nil
}

func (r *teamRepository) ListTeams(ctx context.Context, filter TeamFilter, skip, limit int) ([]*model.Team, error) {
	skip, limit = normalizePage(skip, limit)
	db := r.db.WithContext(ctx).Model(&model.Team{})
	if filter.Conference != "" {
		db = db.Where("conference = ?", filter.Conference)
	}
	var teams []*model.Team
	if err := db.Order("conference ASC, position ASC").Offset(skip).Limit(limit).Find(&teams).Error; err != nil {
		return nil, err
	}
	return teams, nil
}

func (r *teamRepository) ListStandings(ctx context.Context, conference model.Conference) ([]*model.Team, error) {
	db := r.db.WithContext(ctx).Model(&model.Team{})
	if conference != "" {
		db = db.Where("conference = ?", conference)
	}
	var teams []*model.Team
	if err := db.Order("conference ASC, position ASC").Find(&teams).Error; err != nil {
		return nil, err
	}
	return teams, nil
}

func (r *teamRepository) SearchTeams(ctx context.Context, name string, limit int) ([]*model.Team, error) {
	_, limit = normalizePage(0, limit)
	pattern := "%" + escapeLike(strings.ToLower(strings.TrimSpace(name))) + "%"
	var teams []*model.Team
	if err := r.db.WithContext(ctx).
		Where("LOWER(team_name) LIKE ? ESCAPE '\\'", pattern).
		Order("team_name ASC").
		Limit(limit).
		Find(&teams).Error; err != nil {
		return nil, err
	}
	return teams, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
