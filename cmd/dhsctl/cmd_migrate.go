package main

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"dhs-academy/backend/pkg/database"
)

var rollbackSteps int

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.close()

		sqlDB, err := e.db.DB()
		if err != nil {
			return err
		}
		if err := database.RunMigrations(sqlDB, e.logger); err != nil {
			return err
		}
		color.Green("迁移完成")
		return nil
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the last N migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.close()

		sqlDB, err := e.db.DB()
		if err != nil {
			return err
		}
		if err := database.RollbackMigrations(sqlDB, rollbackSteps, e.logger); err != nil {
			return err
		}
		color.Yellow("已回滚 %d 个版本", rollbackSteps)
		return nil
	},
}

func init() {
	migrateDownCmd.Flags().IntVar(&rollbackSteps, "steps", 1, "number of versions to roll back")
	migrateCmd.AddCommand(migrateDownCmd)
}
