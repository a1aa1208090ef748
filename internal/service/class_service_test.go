package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"dhs-academy/backend/internal/dto"
	"dhs-academy/backend/internal/model"
)

func setupTestClassService() (ClassService, *mockRepos, *mockNotifier) {
	repo, mocks := newMockRepository()
	notifier := &mockNotifier{}
	svc := NewClassService(repo, NewActivityService(repo, zap.NewNop()), notifier, zap.NewNop())
	return svc, mocks, notifier
}

func seedCandidates(mocks *mockRepos, ids ...string) {
	for _, id := range ids {
		mocks.candidate.candidates[id] = &model.Candidate{CandidateID: id, FirstName: id, LastName: "Test", Status: model.CandidateStatusActive}
	}
}

func TestClassCreate_DedupesAndNotifies(t *testing.T) {
	svc, mocks, notifier := setupTestClassService()
	instructor := createTestUser(mocks, "instr", "password123", model.RoleInstructor, true)
	seedCandidates(mocks, "c1", "c2")

	class, err := svc.Create(context.Background(), &dto.CreateClassRequest{
		Name:         "Promotion Alpha",
		InstructorID: instructor.UserID,
		CandidateIDs: []string{"c2", "c1", "c2"},
	}, "dir-1")
	if err != nil {
		t.Fatalf("期望创建成功，实际错误: %v", err)
	}
	if len(class.CandidateIDs) != 2 || class.CandidateIDs[0] != "c2" || class.CandidateIDs[1] != "c1" {
		t.Errorf("期望去重并保持顺序 [c2 c1]，实际: %v", class.CandidateIDs)
	}
	if class.Status != model.ClassStatusActive {
		t.Errorf("期望状态 active，实际: %s", class.Status)
	}
	if len(notifier.classes) != 1 || notifier.classes[0] != class.ClassID {
		t.Errorf("期望触发一次班级创建通知，实际: %v", notifier.classes)
	}
}

func TestClassCreate_Validation(t *testing.T) {
	svc, mocks, notifier := setupTestClassService()
	inactive := createTestUser(mocks, "gone", "password123", model.RoleInstructor, false)
	active := createTestUser(mocks, "instr", "password123", model.RoleInstructor, true)
	ctx := context.Background()

	if _, err := svc.Create(ctx, &dto.CreateClassRequest{Name: "X", InstructorID: inactive.UserID}, "dir-1"); !errors.Is(err, ErrInstructorNotFound) {
		t.Errorf("期望 ErrInstructorNotFound，实际: %v", err)
	}
	if _, err := svc.Create(ctx, &dto.CreateClassRequest{Name: "X", InstructorID: active.UserID, CandidateIDs: []string{"ghost"}}, "dir-1"); !errors.Is(err, ErrCandidateNotFound) {
		t.Errorf("期望 ErrCandidateNotFound，实际: %v", err)
	}
	if len(notifier.classes) != 0 {
		t.Error("创建失败时不应发送通知")
	}
}

func TestClassMembership(t *testing.T) {
	svc, mocks, _ := setupTestClassService()
	instructor := createTestUser(mocks, "instr", "password123", model.RoleInstructor, true)
	seedCandidates(mocks, "c1", "c2")
	ctx := context.Background()

	class, _ := svc.Create(ctx, &dto.CreateClassRequest{Name: "Bravo", InstructorID: instructor.UserID, CandidateIDs: []string{"c1"}}, "dir-1")

	if _, err := svc.AddCandidate(ctx, class.ClassID, "c1", "dir-1"); !errors.Is(err, ErrCandidateAlreadyInClass) {
		t.Errorf("期望 ErrCandidateAlreadyInClass，实际: %v", err)
	}
	updated, err := svc.AddCandidate(ctx, class.ClassID, "c2", "dir-1")
	if err != nil || len(updated.CandidateIDs) != 2 {
		t.Fatalf("期望加入成功，实际: %v, %v", updated, err)
	}
	if _, err := svc.RemoveCandidate(ctx, class.ClassID, "c9", "dir-1"); !errors.Is(err, ErrCandidateNotInClass) {
		t.Errorf("期望 ErrCandidateNotInClass，实际: %v", err)
	}
	updated, _ = svc.RemoveCandidate(ctx, class.ClassID, "c1", "dir-1")
	if len(updated.CandidateIDs) != 1 || updated.CandidateIDs[0] != "c2" {
		t.Errorf("期望剩余 [c2]，实际: %v", updated.CandidateIDs)
	}
}

func TestClassChangeStatus(t *testing.T) {
	svc, mocks, _ := setupTestClassService()
	instructor := createTestUser(mocks, "instr", "password123", model.RoleInstructor, true)
	seedCandidates(mocks, "c1")
	ctx := context.Background()

	class, _ := svc.Create(ctx, &dto.CreateClassRequest{Name: "Charlie", InstructorID: instructor.UserID}, "dir-1")

	if _, err := svc.ChangeStatus(ctx, class.ClassID, model.ClassStatusActive, "dir-1"); !errors.Is(err, ErrClassInvalidStatus) {
		t.Errorf("期望 ErrClassInvalidStatus，实际: %v", err)
	}
	if _, err := svc.ChangeStatus(ctx, class.ClassID, model.ClassStatusCompleted, "dir-1"); err != nil {
		t.Fatalf("期望结业成功，实际错误: %v", err)
	}
	// 终态不可逆，且不可再增减成员
	if _, err := svc.ChangeStatus(ctx, class.ClassID, model.ClassStatusCancelled, "dir-1"); !errors.Is(err, ErrClassInvalidStatus) {
		t.Errorf("期望 ErrClassInvalidStatus，实际: %v", err)
	}
	if _, err := svc.AddCandidate(ctx, class.ClassID, "c1", "dir-1"); !errors.Is(err, ErrClassNotActive) {
		t.Errorf("期望 ErrClassNotActive，实际: %v", err)
	}
}
