package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"dhs-academy/backend/internal/model"
	"dhs-academy/backend/internal/repository"
	"dhs-academy/backend/pkg/credential"
)

var (
	adminIdentifier  string
	adminDisplayName string
)

// createAdminCmd 初始化第一个管理员账号，之后的账号通过 API 创建
var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an admin account with a temporary password",
	RunE: func(cmd *cobra.Command, args []string) error {
		if adminIdentifier == "" {
			return errors.New("--identifier 不能为空")
		}
		if adminDisplayName == "" {
			adminDisplayName = adminIdentifier
		}

		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.close()

		ctx := cmd.Context()
		users := repository.NewUserRepo(e.db)
		if _, err := users.GetByIdentifier(ctx, adminIdentifier); err == nil {
			return fmt.Errorf("标识 %q 已存在", adminIdentifier)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		password, err := credential.Password(e.cfg.Auth.TempPasswordLength)
		if err != nil {
			return err
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		user := &model.User{
			Identifier:         adminIdentifier,
			DisplayName:        adminDisplayName,
			PasswordHash:       string(hash),
			Role:               model.RoleAdmin,
			IsActive:           true,
			MustChangePassword: true,
		}
		if err := users.Create(ctx, user); err != nil {
			return err
		}

		color.Green("管理员已创建: %s", user.Identifier)
		fmt.Printf("临时密码（仅显示一次）: %s\n", password)
		return nil
	},
}

func init() {
	createAdminCmd.Flags().StringVar(&adminIdentifier, "identifier", "", "login identifier")
	createAdminCmd.Flags().StringVar(&adminDisplayName, "name", "", "display name (defaults to identifier)")
}
