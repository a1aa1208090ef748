package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"dhs-academy/backend/internal/dto"
	"dhs-academy/backend/internal/model"
)

func setupTestApplicationService() (ApplicationService, *mockRepos) {
	repo, mocks := newMockRepository()
	svc := NewApplicationService(repo, NewActivityService(repo, zap.NewNop()), zap.NewNop())
	return svc, mocks
}

func newRecruitmentForm(t *testing.T, svc ApplicationService, open bool) *model.ApplicationForm {
	t.Helper()
	form, err := svc.CreateForm(context.Background(), &dto.CreateFormRequest{
		Title:  "Candidature DHS",
		IsOpen: open,
		Fields: []dto.FormFieldInput{
			{Key: "motivation", Label: "Motivation", Type: model.FieldTextarea, Required: true},
			{Key: "contact", Label: "E-mail", Type: model.FieldEmail, Required: true},
			{Key: "age", Label: "Âge", Type: model.FieldNumber},
			{Key: "agence", Label: "Agence", Type: model.FieldSelect, Options: []string{"LSPD", "BCSO"}},
			{Key: "reglement", Label: "J'accepte le règlement", Type: model.FieldCheckbox, Required: true},
			{Key: "dispo", Label: "Disponibilités", Type: model.FieldCheckbox, Options: []string{"Soir", "Week-end"}},
		},
	}, "dir-1")
	if err != nil {
		t.Fatalf("创建表单失败: %v", err)
	}
	return form
}

func validAnswers() map[string]interface{} {
	return map[string]interface{}{
		"motivation": "Servir et protéger",
		"contact":    " recrue@dhs.fr ",
		"age":        "23",
		"agence":     "BCSO",
		"reglement":  true,
		"dispo":      []interface{}{"Soir"},
		"inconnu":    "dropped",
	}
}

func TestCreateForm_Invalid(t *testing.T) {
	svc, _ := setupTestApplicationService()
	ctx := context.Background()

	tests := []struct {
		name   string
		fields []dto.FormFieldInput
	}{
		{"key 重复", []dto.FormFieldInput{{Key: "a", Label: "A", Type: model.FieldText}, {Key: "a", Label: "B", Type: model.FieldText}}},
		{"select 无选项", []dto.FormFieldInput{{Key: "s", Label: "S", Type: model.FieldSelect}}},
		{"空字段", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateForm(ctx, &dto.CreateFormRequest{Title: "X", Fields: tt.fields}, "dir-1")
			if !errors.Is(err, ErrFormInvalid) {
				t.Errorf("期望 ErrFormInvalid，实际: %v", err)
			}
		})
	}
}

func TestSubmitApplication_Valid(t *testing.T) {
	svc, mocks := setupTestApplicationService()
	form := newRecruitmentForm(t, svc, true)

	resp, err := svc.Submit(context.Background(), form.FormID, &dto.SubmitApplicationRequest{
		ApplicantName: "Paul Martin",
		ServerID:      "srv-7",
		Answers:       validAnswers(),
	})
	if err != nil {
		t.Fatalf("期望提交成功，实际错误: %v", err)
	}
	if resp.Status != model.ApplicationPending {
		t.Errorf("期望状态 pending，实际: %s", resp.Status)
	}

	stored := mocks.application.items[resp.ApplicationID]
	if _, ok := stored.Answers["inconnu"]; ok {
		t.Error("未定义的字段应被丢弃")
	}
	if stored.Answers["contact"] != "recrue@dhs.fr" {
		t.Errorf("期望邮箱去除空白，实际: %v", stored.Answers["contact"])
	}
	if stored.Answers["age"] != float64(23) {
		t.Errorf("期望数字字段转为 float64，实际: %#v", stored.Answers["age"])
	}
}

func TestSubmitApplication_FieldErrors(t *testing.T) {
	svc, _ := setupTestApplicationService()
	form := newRecruitmentForm(t, svc, true)

	tests := []struct {
		name   string
		mutate func(a map[string]interface{})
		field  string
	}{
		{"必填缺失", func(a map[string]interface{}) { delete(a, "motivation") }, "motivation"},
		{"必填为空白", func(a map[string]interface{}) { a["motivation"] = "   " }, "motivation"},
		{"文本过长", func(a map[string]interface{}) { a["motivation"] = strings.Repeat("x", 10001) }, "motivation"},
		{"邮箱非法", func(a map[string]interface{}) { a["contact"] = "pas-un-mail" }, "contact"},
		{"数字非法", func(a map[string]interface{}) { a["age"] = "vingt" }, "age"},
		{"选项非法", func(a map[string]interface{}) { a["agence"] = "FBI" }, "agence"},
		{"必填勾选未勾", func(a map[string]interface{}) { a["reglement"] = false }, "reglement"},
		{"多选含非法项", func(a map[string]interface{}) { a["dispo"] = []interface{}{"Soir", "Nuit"} }, "dispo"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			answers := validAnswers()
			tt.mutate(answers)
			_, err := svc.Submit(context.Background(), form.FormID, &dto.SubmitApplicationRequest{
				ApplicantName: "Paul Martin", ServerID: "srv-7", Answers: answers,
			})

			var verr *ApplicationValidationError
			if !errors.As(err, &verr) || !errors.Is(err, ErrApplicationInvalid) {
				t.Fatalf("期望 ApplicationValidationError，实际: %v", err)
			}
			if _, ok := verr.Fields[tt.field]; !ok || len(verr.Fields) != 1 {
				t.Errorf("期望仅字段 %s 出错，实际: %v", tt.field, verr.Fields)
			}
		})
	}
}

func TestSubmitApplication_ClosedForm(t *testing.T) {
	svc, _ := setupTestApplicationService()
	form := newRecruitmentForm(t, svc, false)

	_, err := svc.Submit(context.Background(), form.FormID, &dto.SubmitApplicationRequest{
		ApplicantName: "Paul", ServerID: "srv-7", Answers: validAnswers(),
	})
	if !errors.Is(err, ErrFormClosed) {
		t.Errorf("期望 ErrFormClosed，实际: %v", err)
	}
}

func TestAcceptApplication_CreatesCandidate(t *testing.T) {
	svc, mocks := setupTestApplicationService()
	form := newRecruitmentForm(t, svc, true)
	ctx := context.Background()
	email := "paul@dhs.fr"

	resp, _ := svc.Submit(ctx, form.FormID, &dto.SubmitApplicationRequest{
		ApplicantName: "Paul Martin", Email: &email, ServerID: "srv-7", Answers: validAnswers(),
	})

	app, err := svc.Accept(ctx, resp.ApplicationID, &dto.ReviewApplicationRequest{Note: "Profil solide"}, "dir-1")
	if err != nil {
		t.Fatalf("期望通过成功，实际错误: %v", err)
	}
	if app.CandidateID == nil {
		t.Fatal("期望回填 candidate_id")
	}
	c := mocks.candidate.candidates[*app.CandidateID]
	if c.FirstName != "Paul" || c.LastName != "Martin" || c.ServerID != "srv-7" || *c.ApplicationID != resp.ApplicationID {
		t.Errorf("候选人信息不符: %+v", c)
	}
	if stored := mocks.application.items[resp.ApplicationID]; stored.Status != model.ApplicationAccepted || *stored.CandidateID != c.CandidateID {
		t.Errorf("申请状态未更新: %+v", stored)
	}

	if _, err := svc.Reject(ctx, resp.ApplicationID, &dto.ReviewApplicationRequest{}, "dir-1"); !errors.Is(err, ErrApplicationAlreadyReviewed) {
		t.Errorf("期望 ErrApplicationAlreadyReviewed，实际: %v", err)
	}
}

func TestRejectApplication(t *testing.T) {
	svc, mocks := setupTestApplicationService()
	form := newRecruitmentForm(t, svc, true)
	ctx := context.Background()

	resp, _ := svc.Submit(ctx, form.FormID, &dto.SubmitApplicationRequest{ApplicantName: "Paul", ServerID: "srv-7", Answers: validAnswers()})
	app, err := svc.Reject(ctx, resp.ApplicationID, &dto.ReviewApplicationRequest{Note: "Incomplet"}, "dir-1")
	if err != nil {
		t.Fatalf("期望驳回成功，实际错误: %v", err)
	}
	if app.Status != model.ApplicationRejected || len(mocks.candidate.candidates) != 0 {
		t.Error("驳回不应创建候选人")
	}
	if _, err := svc.Accept(ctx, resp.ApplicationID, &dto.ReviewApplicationRequest{}, "dir-1"); !errors.Is(err, ErrApplicationAlreadyReviewed) {
		t.Errorf("期望 ErrApplicationAlreadyReviewed，实际: %v", err)
	}
}
