package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"dhs-academy/backend/internal/dto"
	"dhs-academy/backend/internal/model"
	"dhs-academy/backend/internal/repository"
	pkgerrors "dhs-academy/backend/pkg/errors"
)

// ── 申请模块业务错误 ──

var (
	ErrFormNotFound               = errors.New("表单不存在")
	ErrFormClosed                 = errors.New("表单未开放")
	ErrFormInvalid                = errors.New("表单字段定义不合法")
	ErrApplicationNotFound        = errors.New("申请不存在")
	ErrApplicationInvalid         = errors.New("申请内容校验失败")
	ErrApplicationAlreadyReviewed = errors.New("申请已审核")
)

// 文本字段长度上限
const (
	maxTextLength     = 1000
	maxTextareaLength = 10000
)

// ApplicationValidationError 携带逐字段错误信息，errors.Is 可匹配 ErrApplicationInvalid
type ApplicationValidationError struct {
	Fields map[string]string
}

func (e *ApplicationValidationError) Error() string {
	return fmt.Sprintf("%s: %d 个字段", ErrApplicationInvalid.Error(), len(e.Fields))
}

func (e *ApplicationValidationError) Unwrap() error { return ErrApplicationInvalid }

// ApplicationService 申请表单与申请审核
type ApplicationService interface {
	CreateForm(ctx context.Context, req *dto.CreateFormRequest, callerID string) (*model.ApplicationForm, error)
	GetForm(ctx context.Context, id string) (*model.ApplicationForm, error)
	ListForms(ctx context.Context, openOnly bool) ([]model.ApplicationForm, error)
	UpdateForm(ctx context.Context, id string, req *dto.UpdateFormRequest, callerID string) (*model.ApplicationForm, error)
	DeleteForm(ctx context.Context, id string, callerID string) error
	// GetOpenForm 公开接口，仅返回开放中的表单
	GetOpenForm(ctx context.Context, id string) (*model.ApplicationForm, error)

	Submit(ctx context.Context, formID string, req *dto.SubmitApplicationRequest) (*dto.SubmitApplicationResponse, error)
	GetByID(ctx context.Context, id string) (*model.Application, error)
	List(ctx context.Context, req *dto.ApplicationListRequest) ([]model.Application, int64, error)
	// Accept pending → accepted，同事务创建候选人并回填 candidate_id
	Accept(ctx context.Context, id string, req *dto.ReviewApplicationRequest, callerID string) (*model.Application, error)
	Reject(ctx context.Context, id string, req *dto.ReviewApplicationRequest, callerID string) (*model.Application, error)
}

type applicationService struct {
	repo     *repository.Repository
	activity ActivityService
	validate *validator.Validate
	logger   *zap.Logger
}

// NewApplicationService 创建 ApplicationService 实例
func NewApplicationService(repo *repository.Repository, activity ActivityService, logger *zap.Logger) ApplicationService {
	return &applicationService{
		repo:     repo,
		activity: activity,
		validate: validator.New(),
		logger:   logger,
	}
}

// ────────────────────── Forms ──────────────────────

func (s *applicationService) CreateForm(ctx context.Context, req *dto.CreateFormRequest, callerID string) (*model.ApplicationForm, error) {
	fields, err := buildFields(req.Fields)
	if err != nil {
		return nil, err
	}

	form := &model.ApplicationForm{
		Title:       req.Title,
		Description: req.Description,
		Fields:      fields,
		IsOpen:      req.IsOpen,
	}
	form.StampCreated(callerID)

	if err := s.repo.Form.Create(ctx, form); err != nil {
		s.logger.Error("创建表单失败", zap.Error(err))
		return nil, err
	}
	s.activity.Record(callerID, ActionCreate, EntityForm, form.FormID, map[string]interface{}{"title": form.Title})
	return form, nil
}

func (s *applicationService) GetForm(ctx context.Context, id string) (*model.ApplicationForm, error) {
	form, err := s.repo.Form.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFormNotFound
		}
		s.logger.Error("查询表单失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return form, nil
}

func (s *applicationService) GetOpenForm(ctx context.Context, id string) (*model.ApplicationForm, error) {
	form, err := s.GetForm(ctx, id)
	if err != nil {
		return nil, err
	}
	if !form.IsOpen {
		return nil, ErrFormClosed
	}
	return form, nil
}

func (s *applicationService) ListForms(ctx context.Context, openOnly bool) ([]model.ApplicationForm, error) {
	forms, err := s.repo.Form.List(ctx, openOnly)
	if err != nil {
		s.logger.Error("列出表单失败", zap.Error(err))
		return nil, err
	}
	return forms, nil
}

func (s *applicationService) UpdateForm(ctx context.Context, id string, req *dto.UpdateFormRequest, callerID string) (*model.ApplicationForm, error) {
	form, err := s.GetForm(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		form.Title = *req.Title
	}
	if req.Description != nil {
		form.Description = *req.Description
	}
	if req.Fields != nil {
		fields, err := buildFields(req.Fields)
		if err != nil {
			return nil, err
		}
		form.Fields = fields
	}
	if req.IsOpen != nil {
		form.IsOpen = *req.IsOpen
	}
	form.StampUpdated(callerID)

	if err := s.repo.Form.Update(ctx, form); err != nil {
		s.logger.Error("更新表单失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	s.activity.Record(callerID, ActionUpdate, EntityForm, id, nil)
	return form, nil
}

func (s *applicationService) DeleteForm(ctx context.Context, id string, callerID string) error {
	if _, err := s.GetForm(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Form.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除表单失败", zap.String("id", id), zap.Error(err))
		return err
	}
	s.activity.Record(callerID, ActionDelete, EntityForm, id, nil)
	return nil
}

// buildFields 校验字段 key 唯一、select 必须有选项
func buildFields(in []dto.FormFieldInput) ([]model.FormField, error) {
	if len(in) == 0 {
		return nil, ErrFormInvalid
	}
	seen := make(map[string]struct{}, len(in))
	fields := make([]model.FormField, 0, len(in))
	for _, f := range in {
		key := strings.TrimSpace(f.Key)
		if key == "" {
			return nil, ErrFormInvalid
		}
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w: key %q 重复", ErrFormInvalid, key)
		}
		seen[key] = struct{}{}
		if f.Type == model.FieldSelect && len(f.Options) == 0 {
			return nil, fmt.Errorf("%w: %q 缺少选项", ErrFormInvalid, key)
		}
		fields = append(fields, model.FormField{
			Key:      key,
			Label:    f.Label,
			Type:     f.Type,
			Required: f.Required,
			Options:  f.Options,
		})
	}
	return fields, nil
}

// ────────────────────── Submit ──────────────────────

func (s *applicationService) Submit(ctx context.Context, formID string, req *dto.SubmitApplicationRequest) (*dto.SubmitApplicationResponse, error) {
	form, err := s.GetOpenForm(ctx, formID)
	if err != nil {
		return nil, err
	}

	answers, err := s.validateAnswers(form.Fields, req.Answers)
	if err != nil {
		return nil, err
	}

	app := &model.Application{
		FormID:        formID,
		ApplicantName: strings.TrimSpace(req.ApplicantName),
		Email:         req.Email,
		ServerID:      req.ServerID,
		Answers:       answers,
		Status:        model.ApplicationPending,
		SubmittedAt:   time.Now(),
	}
	if err := s.repo.Application.Create(ctx, app); err != nil {
		s.logger.Error("提交申请失败", zap.String("form_id", formID), zap.Error(err))
		return nil, err
	}

	return &dto.SubmitApplicationResponse{ApplicationID: app.ApplicationID, Status: app.Status}, nil
}

// validateAnswers 按表单定义逐字段校验，未定义的 key 被丢弃
func (s *applicationService) validateAnswers(fields []model.FormField, raw map[string]interface{}) (map[string]interface{}, error) {
	clean := make(map[string]interface{}, len(fields))
	problems := make(map[string]string)

	for _, f := range fields {
		v, present := raw[f.Key]
		if !present || isEmptyAnswer(v) {
			if f.Required {
				problems[f.Key] = "Ce champ est obligatoire"
			}
			continue
		}

		normalized, msg := s.checkField(f, v)
		if msg != "" {
			problems[f.Key] = msg
			continue
		}
		clean[f.Key] = normalized
	}

	if len(problems) > 0 {
		return nil, &ApplicationValidationError{Fields: problems}
	}
	return clean, nil
}

func (s *applicationService) checkField(f model.FormField, v interface{}) (interface{}, string) {
	switch f.Type {
	case model.FieldText, model.FieldTextarea:
		str, ok := v.(string)
		if !ok {
			return nil, "Texte attendu"
		}
		limit := maxTextLength
		if f.Type == model.FieldTextarea {
			limit = maxTextareaLength
		}
		if err := s.validate.Var(str, "max="+strconv.Itoa(limit)); err != nil {
			return nil, "Texte trop long"
		}
		return strings.TrimSpace(str), ""

	case model.FieldEmail:
		str, ok := v.(string)
		if !ok || s.validate.Var(strings.TrimSpace(str), "email") != nil {
			return nil, "Adresse e-mail invalide"
		}
		return strings.TrimSpace(str), ""

	case model.FieldNumber:
		switch n := v.(type) {
		case float64:
			return n, ""
		case string:
			if s.validate.Var(strings.TrimSpace(n), "numeric") != nil {
				return nil, "Nombre attendu"
			}
			f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
			if err != nil {
				return nil, "Nombre attendu"
			}
			return f, ""
		}
		return nil, "Nombre attendu"

	case model.FieldSelect:
		str, ok := v.(string)
		if !ok || !containsString(f.Options, str) {
			return nil, "Option invalide"
		}
		return str, ""

	case model.FieldCheckbox:
		// 无选项时为单个勾选框，有选项时为多选
		if len(f.Options) == 0 {
			b, ok := v.(bool)
			if !ok {
				return nil, "Case à cocher invalide"
			}
			if f.Required && !b {
				return nil, "Ce champ est obligatoire"
			}
			return b, ""
		}
		list, ok := v.([]interface{})
		if !ok {
			return nil, "Liste d'options attendue"
		}
		selected := make([]string, 0, len(list))
		for _, item := range list {
			str, ok := item.(string)
			if !ok || !containsString(f.Options, str) {
				return nil, "Option invalide"
			}
			selected = append(selected, str)
		}
		return selected, ""
	}
	return nil, "Type de champ inconnu"
}

func isEmptyAnswer(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []interface{}:
		return len(t) == 0
	}
	return false
}

func containsString(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// ────────────────────── Review ──────────────────────

func (s *applicationService) GetByID(ctx context.Context, id string) (*model.Application, error) {
	app, err := s.repo.Application.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		s.logger.Error("查询申请失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return app, nil
}

func (s *applicationService) List(ctx context.Context, req *dto.ApplicationListRequest) ([]model.Application, int64, error) {
	filters := &repository.ApplicationListFilters{FormID: req.FormID, Status: req.Status}
	list, total, err := s.repo.Application.List(ctx, filters, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出申请失败", zap.Error(err))
		return nil, 0, err
	}
	return list, total, nil
}

func (s *applicationService) Accept(ctx context.Context, id string, req *dto.ReviewApplicationRequest, callerID string) (*model.Application, error) {
	app, err := s.pendingApplication(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	app.Status = model.ApplicationAccepted
	app.ReviewedBy = &callerID
	app.ReviewedAt = &now
	app.ReviewNote = req.Note

	err = s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		if err := tx.Application.Review(ctx, app); err != nil {
			return err
		}
		first, last := splitName(app.ApplicantName)
		c := &model.Candidate{
			FirstName:     first,
			LastName:      last,
			ServerID:      app.ServerID,
			Email:         app.Email,
			Status:        model.CandidateStatusActive,
			ApplicationID: &app.ApplicationID,
		}
		c.StampCreated(callerID)
		if err := tx.Candidate.Create(ctx, c); err != nil {
			return err
		}
		if err := tx.Application.SetCandidate(ctx, app.ApplicationID, c.CandidateID); err != nil {
			return err
		}
		app.CandidateID = &c.CandidateID
		return nil
	})
	if err != nil {
		if errors.Is(err, pkgerrors.ErrStaleState) {
			return nil, ErrApplicationAlreadyReviewed
		}
		s.logger.Error("通过申请失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	s.activity.Record(callerID, ActionAccept, EntityApplication, id, map[string]interface{}{
		"candidate_id": *app.CandidateID,
	})
	return app, nil
}

func (s *applicationService) Reject(ctx context.Context, id string, req *dto.ReviewApplicationRequest, callerID string) (*model.Application, error) {
	app, err := s.pendingApplication(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	app.Status = model.ApplicationRejected
	app.ReviewedBy = &callerID
	app.ReviewedAt = &now
	app.ReviewNote = req.Note

	if err := s.repo.Application.Review(ctx, app); err != nil {
		if errors.Is(err, pkgerrors.ErrStaleState) {
			return nil, ErrApplicationAlreadyReviewed
		}
		s.logger.Error("驳回申请失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	s.activity.Record(callerID, ActionReject, EntityApplication, id, nil)
	return app, nil
}

func (s *applicationService) pendingApplication(ctx context.Context, id string) (*model.Application, error) {
	app, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if app.Status != model.ApplicationPending {
		return nil, ErrApplicationAlreadyReviewed
	}
	return app, nil
}
