package repository

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"SportsSync/internal/config"

	"github.com/gocql/gocql"
	"github.com/sirupsen/logrus"
)

// 表结构：每次启动都执行，IF NOT EXISTS 保证幂等
const (
	createKeyspaceCQL = `CREATE KEYSPACE IF NOT EXISTS %s
		WITH replication = {'class': 'SimpleStrategy', 'replication_factor': %d}`

	createGameDetailsCQL = `CREATE TABLE IF NOT EXISTS gamedetails (
		date date,
		game_id uuid,
		stage text,
		team1_id uuid,
		team1_name text,
		team1_score int,
		team2_id uuid,
		team2_name text,
		team2_score int,
		highlight_video_link text,
		PRIMARY KEY ((date), game_id)
	)`

	createTeamGamesCQL = `CREATE TABLE IF NOT EXISTS teamgames (
		team_id uuid,
		date date,
		game_id uuid,
		opponent_team_id uuid,
		opponent_team_name text,
		team_score int,
		opponent_score int,
		highlight_video_link text,
		PRIMARY KEY ((team_id), date, game_id)
	) WITH CLUSTERING ORDER BY (date DESC, game_id ASC)`
)

var keyspacePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]{0,47}$`)

// cqlSession 对 gocql.Session 的最小封装，便于测试注入
type cqlSession interface {
	exec(ctx context.Context, stmt string, values ...interface{}) error
	iter(ctx context.Context, stmt string, values ...interface{}) rowIter
}

// rowIter 与 *gocql.Iter 方法一致
type rowIter interface {
	Scan(dest ...interface{}) bool
	Close() error
}

type gocqlSession struct {
	session *gocql.Session
}

func (s gocqlSession) exec(ctx context.Context, stmt string, values ...interface{}) error {
	return s.session.Query(stmt, values...).WithContext(ctx).Exec()
}

func (s gocqlSession) iter(ctx context.Context, stmt string, values ...interface{}) rowIter {
	return s.session.Query(stmt, values...).WithContext(ctx).Iter()
}

// ConnectCassandra 连接 Cassandra 并建库建表。
// 固定间隔重试 ConnectRetries 次，全部失败后返回错误（启动方应直接退出）
func ConnectCassandra(cfg config.CassandraConfig, logger *logrus.Logger) (*gocql.Session, error) {
	if !keyspacePattern.MatchString(cfg.Keyspace) {
		return nil, fmt.Errorf("非法的 keyspace 名称: %q", cfg.Keyspace)
	}
	return retryFixed(cfg.ConnectRetries, cfg.ConnectRetryDelay, logger, "Cassandra", func() (*gocql.Session, error) {
		return openCassandra(cfg)
	})
}

// retryFixed 固定间隔重试，最多 attempts 次
func retryFixed[T any](attempts int, delay time.Duration, logger *logrus.Logger, name string, fn func() (T, error)) (T, error) {
	var zero T
	if attempts <= 0 {
		attempts = 1
	}
	var lastErr error
	for i := 1; i <= attempts; i++ {
		v, err := fn()
		if err == nil {
			return v, nil
		}
		lastErr = err
		logger.WithError(err).WithFields(logrus.Fields{
			"attempt": i,
			"max":     attempts,
		}).Warnf("连接%s失败", name)
		if i < attempts {
			time.Sleep(delay)
		}
	}
	return zero, fmt.Errorf("连接%s失败，已重试%d次: %w", name, attempts, lastErr)
}

func openCassandra(cfg config.CassandraConfig) (*gocql.Session, error) {
	cluster := gocql.NewCluster(cfg.Hosts...)
	cluster.Timeout = cfg.Timeout
	cluster.ConnectTimeout = cfg.Timeout
	cluster.Consistency = parseConsistency(cfg.Consistency)
	if cfg.Username != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: cfg.Username,
			Password: cfg.Password,
		}
	}

	// 1. 先不带 keyspace 连接，创建 keyspace
	admin, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("创建会话失败: %w", err)
	}
	rf := cfg.ReplicationFactor
	if rf <= 0 {
		rf = 1
	}
	err = admin.Query(fmt.Sprintf(createKeyspaceCQL, cfg.Keyspace, rf)).Exec()
	admin.Close()
	if err != nil {
		return nil, fmt.Errorf("创建keyspace失败: %w", err)
	}

	// 2. 带 keyspace 重新连接并建表
	cluster.Keyspace = cfg.Keyspace
	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("连接keyspace %s失败: %w", cfg.Keyspace, err)
	}
	if err := ensureGameTables(context.Background(), gocqlSession{session: session}); err != nil {
		session.Close()
		return nil, err
	}
	return session, nil
}

func ensureGameTables(ctx context.Context, s cqlSession) error {
	for _, stmt := range []string{createGameDetailsCQL, createTeamGamesCQL} {
		if err := s.exec(ctx, stmt); err != nil {
			return fmt.Errorf("建表失败: %w", err)
		}
	}
	return nil
}

func parseConsistency(s string) gocql.Consistency {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "one":
		return gocql.One
	case "local_one":
		return gocql.LocalOne
	case "local_quorum":
		return gocql.LocalQuorum
	case "all":
		return gocql.All
	default:
		return gocql.Quorum
	}
}
