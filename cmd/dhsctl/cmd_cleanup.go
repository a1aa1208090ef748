package main

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"dhs-academy/backend/internal/job"
	"dhs-academy/backend/internal/repository"
)

var retentionDays int

var cleanupLoginsCmd = &cobra.Command{
	Use:   "cleanup-logins",
	Short: "Delete login attempts older than the retention period",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.close()

		days := retentionDays
		if days <= 0 {
			days = e.cfg.Job.LoginAttemptRetention
		}
		deleted, err := job.CleanupLoginAttempts(cmd.Context(), repository.NewLoginAttemptRepo(e.db), days, e.logger)
		if err != nil {
			return err
		}
		color.Green("已删除 %d 条登录记录", deleted)
		return nil
	},
}

func init() {
	cleanupLoginsCmd.Flags().IntVar(&retentionDays, "days", 0, "retention in days (default: job.login_attempt_retention_days)")
}
