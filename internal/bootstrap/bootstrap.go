// Package bootstrap 组装三个存储、数据源与各业务服务，供 HTTP 服务和命令行共用
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"SportsSync/internal/adapter"
	_ "SportsSync/internal/adapter/filesource"
	_ "SportsSync/internal/adapter/serpapi"
	"SportsSync/internal/cache"
	"SportsSync/internal/config"
	"SportsSync/internal/interfaces"
	"SportsSync/internal/metrics"
	"SportsSync/internal/repository"
	"SportsSync/internal/service"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// App 已连接的存储与服务
type App struct {
	Reconcile *service.ReconcileService
	Query     *service.QueryService
	Players   *service.PlayerService
	Analytics *service.AnalyticsService
	Users     *service.UserService
	Metrics   *metrics.Metrics

	closers []func() error
}

// Build 按配置依次连接 Postgres、Cassandra、Dgraph 与数据源；reg 为 nil 时不采集指标
func Build(ctx context.Context, cfg *config.Config, logger *logrus.Logger, reg prometheus.Registerer) (*App, error) {
	app := &App{}
	ok := false
	defer func() {
		if !ok {
			app.Close(logger)
		}
	}()

	db, err := OpenPostgres(cfg.Postgres, logger)
	if err != nil {
		return nil, fmt.Errorf("连接PostgreSQL失败: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		app.closers = append(app.closers, sqlDB.Close)
	}

	session, err := repository.ConnectCassandra(cfg.Cassandra, logger)
	if err != nil {
		return nil, fmt.Errorf("连接Cassandra失败: %w", err)
	}
	app.closers = append(app.closers, func() error { session.Close(); return nil })

	dg, conn, err := repository.ConnectDgraph(cfg.Dgraph)
	if err != nil {
		return nil, fmt.Errorf("连接Dgraph失败: %w", err)
	}
	app.closers = append(app.closers, conn.Close)
	graph := repository.NewGraphRepository(dg)
	schemaCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	err = graph.ApplySchema(schemaCtx)
	cancel()
	if err != nil {
		return nil, err
	}
	logger.Info("Dgraph schema 已就绪")

	var rc interfaces.ResponseCache
	if cfg.Cache.Enabled {
		c, err := cache.Open(cfg.Cache)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, c.Close)
		rc = c
	}
	source, err := adapter.NewLiveSource(&cfg.Live, rc, logger)
	if err != nil {
		return nil, err
	}

	if reg != nil {
		app.Metrics = metrics.New(reg)
	}

	games := repository.NewGameRepository(session)
	teams := repository.NewTeamRepository(db)
	users := repository.NewUserRepository(db)

	app.Users = service.NewUserService(users, logger)
	app.Reconcile = service.NewReconcileService(source, games, teams, app.Users, app.Metrics, logger)
	app.Query = service.NewQueryService(games, teams)
	app.Players = service.NewPlayerService(graph, teams, games, logger)
	app.Analytics = service.NewAnalyticsService(games, graph, cfg.Analytics.TieRule, logger)

	ok = true
	return app, nil
}

// Close 逆序释放连接
func (a *App) Close(logger *logrus.Logger) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			logger.WithError(err).Warn("关闭连接失败")
		}
	}
	a.closers = nil
}
