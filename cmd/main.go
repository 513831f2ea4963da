package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"SportsSync/internal/api"
	"SportsSync/internal/bootstrap"
	"SportsSync/internal/config"
	"SportsSync/internal/service"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

func main() {
	// 1. 加载配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("加载配置文件失败: %v", err)
	}

	// 2. 初始化日志
	logrusLogger := logrus.New()
	logrusLogger.SetLevel(logrus.InfoLevel)
	logrusLogger.Info("配置文件加载成功")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. 连接三个存储与数据源（任一失败直接退出）
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	app, err := bootstrap.Build(ctx, cfg, logrusLogger, reg)
	if err != nil {
		logrusLogger.Fatalf("初始化失败: %v", err)
	}
	defer app.Close(logrusLogger)

	// 4. 定时同步
	if cfg.Sync.Enabled {
		poller := service.NewPoller(app.Reconcile, cfg.Sync.Interval, logrusLogger)
		poller.Start(ctx)
		defer poller.Stop()
	}

	// 5. 配置Gin运行模式（从配置读取：debug/release）
	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), app.Metrics.GinMiddleware())
	if cfg.Server.Mode == gin.DebugMode {
		// 注册pprof 方便调试和监测性能问题
		pprof.Register(r)
	}
	logrusLogger.Infof("Gin运行模式: %s", cfg.Server.Mode)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// 6. 注册API路由
	api.RegisterRoutes(r, &api.Handlers{
		Games:     api.NewGameHandler(app.Reconcile, app.Query, logrusLogger),
		Teams:     api.NewTeamHandler(app.Reconcile, app.Query, logrusLogger),
		Players:   api.NewPlayerHandler(app.Players, logrusLogger),
		Analytics: api.NewAnalyticsHandler(app.Analytics, logrusLogger),
		Sync:      api.NewSyncHandler(app.Reconcile, logrusLogger),
		Users:     api.NewUserHandler(app.Users, logrusLogger),
	})

	// 7. 启动服务（从配置读取端口），收到退出信号后优雅关闭
	srv := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Server.Port), Handler: r}
	go func() {
		logrusLogger.Infof("服务启动成功，端口：%d", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrusLogger.Fatalf("启动服务失败: %v", err)
		}
	}()

	<-ctx.Done()
	logrusLogger.Info("收到退出信号，正在关闭服务…")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrusLogger.WithError(err).Warn("关闭HTTP服务失败")
	}
}
