package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"dhs-academy/backend/internal/dto"
	"dhs-academy/backend/internal/model"
)

func setupTestUserService() (UserService, *mockRepos, ActivityService) {
	repo, mocks := newMockRepository()
	activity := NewActivityService(repo, zap.NewNop())
	return NewUserService(testConfig(), repo, activity, zap.NewNop()), mocks, activity
}

func TestUserCreate_TempPassword(t *testing.T) {
	svc, mocks, activity := setupTestUserService()

	resp, err := svc.Create(context.Background(), &dto.CreateUserRequest{
		Identifier:  "a.dupont",
		DisplayName: "Alice Dupont",
		Role:        model.RoleInstructor,
	}, "admin-1", model.RoleAdmin)
	if err != nil {
		t.Fatalf("期望创建成功，实际错误: %v", err)
	}
	if len(resp.TempPassword) != 12 {
		t.Errorf("期望临时密码长度 12，实际: %d", len(resp.TempPassword))
	}
	if !resp.User.MustChangePassword {
		t.Error("期望 MustChangePassword 为 true")
	}

	stored := mocks.user.users[resp.User.ID]
	if bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte(resp.TempPassword)) != nil {
		t.Error("期望存储的哈希与临时密码匹配")
	}

	activity.Wait()
	if got := mocks.activity.actions(); len(got) != 1 || got[0] != "user:create" {
		t.Errorf("期望一条 user:create 审计日志，实际: %v", got)
	}
}

func TestUserCreate_DuplicateIdentifier(t *testing.T) {
	svc, mocks, _ := setupTestUserService()
	createTestUser(mocks, "a.dupont", "password123", model.RoleInstructor, true)

	_, err := svc.Create(context.Background(), &dto.CreateUserRequest{
		Identifier: "a.dupont", DisplayName: "Alice", Role: model.RoleInstructor,
	}, "admin-1", model.RoleAdmin)
	if !errors.Is(err, ErrIdentifierExists) {
		t.Errorf("期望 ErrIdentifierExists，实际: %v", err)
	}
}

func TestUserCreate_OnlyAdminCreatesAdmin(t *testing.T) {
	svc, _, _ := setupTestUserService()

	_, err := svc.Create(context.Background(), &dto.CreateUserRequest{
		Identifier: "boss", DisplayName: "Boss", Role: model.RoleAdmin,
	}, "dir-1", model.RoleDirection)
	if !errors.Is(err, ErrNoPermission) {
		t.Errorf("期望 ErrNoPermission，实际: %v", err)
	}
}

func TestAssignRole_Rules(t *testing.T) {
	svc, mocks, _ := setupTestUserService()
	admin := createTestUser(mocks, "root", "password123", model.RoleAdmin, true)
	staff := createTestUser(mocks, "staff", "password123", model.RoleInstructor, true)
	ctx := context.Background()

	tests := []struct {
		name       string
		id         string
		role       string
		callerID   string
		callerRole string
		wantErr    error
	}{
		{"修改自己", admin.UserID, model.RoleInstructor, admin.UserID, model.RoleAdmin, ErrUserSelfRoleChange},
		{"direction 授予 admin", staff.UserID, model.RoleAdmin, "dir-1", model.RoleDirection, ErrNoPermission},
		{"direction 降级 admin", admin.UserID, model.RoleInstructor, "dir-1", model.RoleDirection, ErrNoPermission},
		{"目标不存在", "missing", model.RoleDirection, admin.UserID, model.RoleAdmin, ErrUserNotFound},
		{"admin 提升 instructor", staff.UserID, model.RoleDirection, admin.UserID, model.RoleAdmin, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.AssignRole(ctx, tt.id, &dto.AssignRoleRequest{Role: tt.role}, tt.callerID, tt.callerRole)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("期望 %v，实际: %v", tt.wantErr, err)
			}
		})
	}

	if staff.Role != model.RoleDirection {
		t.Errorf("期望角色变为 direction，实际: %s", staff.Role)
	}
}

func TestUserUpdate_CannotDeactivateSelf(t *testing.T) {
	svc, mocks, _ := setupTestUserService()
	admin := createTestUser(mocks, "root", "password123", model.RoleAdmin, true)
	inactive := false

	_, err := svc.Update(context.Background(), admin.UserID, &dto.UpdateUserRequest{IsActive: &inactive}, admin.UserID)
	if !errors.Is(err, ErrUserSelfDeactivate) {
		t.Errorf("期望 ErrUserSelfDeactivate，实际: %v", err)
	}
}

func TestResetPassword(t *testing.T) {
	svc, mocks, _ := setupTestUserService()
	staff := createTestUser(mocks, "staff", "password123", model.RoleInstructor, true)

	resp, err := svc.ResetPassword(context.Background(), staff.UserID, "admin-1")
	if err != nil {
		t.Fatalf("期望重置成功，实际错误: %v", err)
	}
	if !staff.MustChangePassword {
		t.Error("期望 MustChangePassword 为 true")
	}
	if bcrypt.CompareHashAndPassword([]byte(staff.PasswordHash), []byte(resp.TempPassword)) != nil {
		t.Error("期望新哈希与临时密码匹配")
	}
}

func TestUserList_FilterByRole(t *testing.T) {
	svc, mocks, _ := setupTestUserService()
	createTestUser(mocks, "a", "password123", model.RoleInstructor, true)
	createTestUser(mocks, "b", "password123", model.RoleDirection, true)
	createTestUser(mocks, "c", "password123", model.RoleInstructor, true)

	list, total, err := svc.List(context.Background(), &dto.UserListRequest{Role: model.RoleInstructor})
	if err != nil {
		t.Fatalf("期望列表成功，实际错误: %v", err)
	}
	if total != 2 || len(list) != 2 {
		t.Errorf("期望 2 名 instructor，实际 total=%d len=%d", total, len(list))
	}
}
