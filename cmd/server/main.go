package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"dhs-academy/backend/config"
	"dhs-academy/backend/internal/api/handler"
	"dhs-academy/backend/internal/api/router"
	"dhs-academy/backend/internal/job"
	"dhs-academy/backend/internal/repository"
	"dhs-academy/backend/internal/service"
	"dhs-academy/backend/pkg/database"
	"dhs-academy/backend/pkg/jwt"
	applogger "dhs-academy/backend/pkg/logger"
	"dhs-academy/backend/pkg/redis"
	"dhs-academy/backend/pkg/webhook"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load(os.Getenv("DHS_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 连接数据库
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}

	// 3.1 执行数据库迁移
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 4. 连接 Redis（可选：连接失败时降级运行，不中断启动）
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，Token 黑名单与限流将不可用", zap.Error(err))
		rdb = nil
	}

	// 5. 初始化 JWT 管理器与 Webhook 投递器
	jwtMgr := jwt.NewManager(&cfg.Auth)
	dispatcher := webhook.NewDispatcher(&cfg.Webhook, logger)

	// 6. 依赖注入: Repository → Service → Handler
	repo := repository.NewRepository(db)
	deps := service.Deps{
		Config:   cfg,
		Repo:     repo,
		JWT:      jwtMgr,
		Notifier: dispatcher,
		Logger:   logger,
	}
	// 避免将 nil *redis.Client 包装成非 nil 接口
	if rdb != nil {
		deps.Blacklist = rdb
	}
	svc := service.NewService(deps)
	h := handler.NewHandler(svc)

	// 7. 定时任务
	scheduler, err := job.NewScheduler(cfg.Job, repo, logger)
	if err != nil {
		logger.Fatal("初始化定时任务失败", zap.Error(err))
	}
	scheduler.Start()

	// 8. 初始化路由
	engine := router.Setup(cfg, h, jwtMgr, rdb, logger)

	// 9. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 10. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}
	scheduler.Stop(ctx)

	// 等待在途的审计写入与 Webhook 投递
	svc.Activity.Wait()
	dispatcher.Wait()

	if err := sqlDB.Close(); err != nil {
		logger.Error("关闭数据库连接失败", zap.Error(err))
	}
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}
