// dhsctl 运维命令行：数据库迁移、初始化管理员、登录记录清理与进度报表
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"dhs-academy/backend/config"
	"dhs-academy/backend/pkg/database"
	applogger "dhs-academy/backend/pkg/logger"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "dhsctl",
	Short:         "DHS Academy operator tool",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("DHS_CONFIG"), "config file (default: ./config.yaml if present)")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(createAdminCmd)
	rootCmd.AddCommand(cleanupLoginsCmd)
	rootCmd.AddCommand(progressCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		color.Red("错误: %v", err)
		os.Exit(1)
	}
}

// env 子命令共享的运行环境
type env struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *gorm.DB
}

// openEnv 加载配置并连接数据库；调用方负责 close
func openEnv() (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("加载配置失败: %w", err)
	}
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("初始化日志失败: %w", err)
	}
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		return nil, fmt.Errorf("数据库连接失败: %w", err)
	}
	return &env{cfg: cfg, logger: logger, db: db}, nil
}

func (e *env) close() {
	if sqlDB, err := e.db.DB(); err == nil {
		sqlDB.Close()
	}
	e.logger.Sync()
}
