package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"dhs-academy/backend/internal/api/middleware"
	"dhs-academy/backend/internal/dto"
	"dhs-academy/backend/internal/model"
	"dhs-academy/backend/internal/service"
	"dhs-academy/backend/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock AuthService ──

type mockAuthService struct {
	loginResult      *dto.TokenResponse
	loginErr         error
	loginIP          string
	refreshResult    *dto.TokenResponse
	refreshErr       error
	logoutJTI        string
	logoutErr        error
	getCurrentResult *dto.UserResponse
	getCurrentErr    error
	changePassErr    error
}

func (m *mockAuthService) Login(_ context.Context, _ *dto.LoginRequest, ip string) (*dto.TokenResponse, error) {
	m.loginIP = ip
	return m.loginResult, m.loginErr
}
func (m *mockAuthService) RefreshToken(_ context.Context, _ string) (*dto.TokenResponse, error) {
	return m.refreshResult, m.refreshErr
}
func (m *mockAuthService) Logout(_ context.Context, jti string, _ time.Time) error {
	m.logoutJTI = jti
	return m.logoutErr
}
func (m *mockAuthService) GetCurrentUser(_ context.Context, _ string) (*dto.UserResponse, error) {
	return m.getCurrentResult, m.getCurrentErr
}
func (m *mockAuthService) ChangePassword(_ context.Context, _ string, _ *dto.ChangePasswordRequest) error {
	return m.changePassErr
}

// ── Mock CandidateService ──

type mockCandidateService struct {
	candidate    *model.Candidate
	err          error
	progress     *dto.CandidateProgressResponse
	score        *model.SubModuleScore
	eligible     []dto.EligibleCandidateResponse
	lastCallerID string
	lastScoreReq *dto.RecordScoreRequest
}

func (m *mockCandidateService) Create(_ context.Context, _ *dto.CreateCandidateRequest, callerID string) (*model.Candidate, error) {
	m.lastCallerID = callerID
	return m.candidate, m.err
}
func (m *mockCandidateService) GetByID(_ context.Context, _ string) (*model.Candidate, error) {
	return m.candidate, m.err
}
func (m *mockCandidateService) List(_ context.Context, _ *dto.CandidateListRequest) ([]model.Candidate, int64, error) {
	if m.candidate == nil {
		return nil, 0, m.err
	}
	return []model.Candidate{*m.candidate}, 1, m.err
}
func (m *mockCandidateService) Update(_ context.Context, _ string, _ *dto.UpdateCandidateRequest, _ string) (*model.Candidate, error) {
	return m.candidate, m.err
}
func (m *mockCandidateService) Delete(_ context.Context, _ string, _ string) error {
	return m.err
}
func (m *mockCandidateService) Progress(_ context.Context, _ string) (*dto.CandidateProgressResponse, error) {
	return m.progress, m.err
}
func (m *mockCandidateService) RecordScore(_ context.Context, _ string, req *dto.RecordScoreRequest, callerID string) (*model.SubModuleScore, error) {
	m.lastScoreReq = req
	m.lastCallerID = callerID
	return m.score, m.err
}
func (m *mockCandidateService) ListScores(_ context.Context, _ string) ([]model.SubModuleScore, error) {
	return nil, m.err
}
func (m *mockCandidateService) DeleteScore(_ context.Context, _, _, _ string) error {
	return m.err
}
func (m *mockCandidateService) SetAppreciation(_ context.Context, _ string, _ *dto.SetAppreciationRequest, _ string) (*model.ModuleAppreciation, error) {
	return nil, m.err
}
func (m *mockCandidateService) Certify(_ context.Context, _ string, callerID string) (*model.Candidate, error) {
	m.lastCallerID = callerID
	return m.candidate, m.err
}
func (m *mockCandidateService) ListEligible(_ context.Context) ([]dto.EligibleCandidateResponse, error) {
	return m.eligible, m.err
}

// ── Mock CompetitionService ──

type mockCompetitionService struct {
	participation *model.Participation
	result        *dto.ParticipationResultResponse
	err           error
	acceptReq     *dto.AcceptParticipationRequest
	participant   *service.Participant
}

func (m *mockCompetitionService) Create(_ context.Context, _ *dto.CreateCompetitionRequest, _ string) (*model.Competition, error) {
	return nil, m.err
}
func (m *mockCompetitionService) GetByID(_ context.Context, _ string) (*model.Competition, error) {
	return nil, m.err
}
func (m *mockCompetitionService) List(_ context.Context, _ *dto.CompetitionListRequest) ([]model.Competition, int64, error) {
	return nil, 0, m.err
}
func (m *mockCompetitionService) Update(_ context.Context, _ string, _ *dto.UpdateCompetitionRequest, _ string) (*model.Competition, error) {
	return nil, m.err
}
func (m *mockCompetitionService) Delete(_ context.Context, _ string, _ string) error {
	return m.err
}
func (m *mockCompetitionService) ChangeStatus(_ context.Context, _, _, _ string) (*model.Competition, error) {
	return nil, m.err
}
func (m *mockCompetitionService) AddQuestion(_ context.Context, _ string, _ *dto.QuestionRequest, _ string) (*model.Question, error) {
	return nil, m.err
}
func (m *mockCompetitionService) UpdateQuestion(_ context.Context, _ string, _ *dto.QuestionRequest, _ string) (*model.Question, error) {
	return nil, m.err
}
func (m *mockCompetitionService) DeleteQuestion(_ context.Context, _ string, _ string) error {
	return m.err
}
func (m *mockCompetitionService) ListParticipations(_ context.Context, _ string, _ *dto.ParticipationListRequest) ([]model.Participation, int64, error) {
	return nil, 0, m.err
}
func (m *mockCompetitionService) GetParticipation(_ context.Context, _ string) (*model.Participation, error) {
	return m.participation, m.err
}
func (m *mockCompetitionService) Accept(_ context.Context, _ string, req *dto.AcceptParticipationRequest, _ string) (*model.Participation, error) {
	m.acceptReq = req
	return m.participation, m.err
}
func (m *mockCompetitionService) Reject(_ context.Context, _ string, _ string) (*model.Participation, error) {
	return m.participation, m.err
}
func (m *mockCompetitionService) ListOpenPublic(_ context.Context) ([]dto.PublicCompetitionResponse, error) {
	return nil, m.err
}
func (m *mockCompetitionService) GetPublic(_ context.Context, _ string, p *service.Participant) (*dto.PublicCompetitionResponse, error) {
	m.participant = p
	return nil, m.err
}
func (m *mockCompetitionService) Submit(_ context.Context, _ string, _ *dto.SubmitParticipationRequest, p *service.Participant) (*dto.ParticipationResultResponse, error) {
	m.participant = p
	return m.result, m.err
}
func (m *mockCompetitionService) GetResult(_ context.Context, _ string) (*dto.ParticipationResultResponse, error) {
	return m.result, m.err
}

// ── Mock InvitationService ──

type mockInvitationService struct {
	issued   []dto.IssuedInvitation
	loginRes *dto.InvitationLoginResponse
	err      error
}

func (m *mockInvitationService) Issue(_ context.Context, _ string, _ *dto.IssueInvitationsRequest, _ string) ([]dto.IssuedInvitation, error) {
	return m.issued, m.err
}
func (m *mockInvitationService) List(_ context.Context, _ string) ([]model.Invitation, error) {
	return nil, m.err
}
func (m *mockInvitationService) Login(_ context.Context, _ *dto.InvitationLoginRequest) (*dto.InvitationLoginResponse, error) {
	return m.loginRes, m.err
}

// ── Mock ExportService ──

type mockExportService struct {
	buf      *bytes.Buffer
	filename string
	err      error
}

func (m *mockExportService) ExportCandidateProgress(_ context.Context) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}
func (m *mockExportService) ExportCompetitionResults(_ context.Context, _ string) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

// withAuth 模拟 JWTAuth 中间件注入的身份
func withAuth(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.CtxUserID, "test-user-id")
		c.Set(middleware.CtxRole, role)
		c.Set(middleware.CtxTokenJTI, "test-jti")
		c.Set(middleware.CtxTokenExp, time.Now().Add(15*time.Minute))
		c.Next()
	}
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func doJSON(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != nil {
		rd = jsonBody(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

// ═══════════════════════════════════════════════════════════
// AuthHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAuthHandler_Login_Success(t *testing.T) {
	mock := &mockAuthService{
		loginResult: &dto.TokenResponse{
			AccessToken:  "test-access-token",
			RefreshToken: "test-refresh-token",
			ExpiresIn:    900,
		},
	}
	h := NewAuthHandler(mock)

	r := gin.New()
	r.POST("/auth/login", h.Login)
	w := doJSON(r, "POST", "/auth/login", dto.LoginRequest{Identifier: "instructeur.martin", Password: "Secret123"})

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
	if mock.loginIP == "" {
		t.Error("expected client ip to be passed to the service")
	}
}

func TestAuthHandler_Login_BadJSON(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	r := gin.New()
	r.POST("/auth/login", h.Login)
	req := httptest.NewRequest("POST", "/auth/login", bytes.NewReader([]byte("invalid json")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAuthHandler_Login_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantHTTP int
		wantCode int
	}{
		{"invalid credentials", service.ErrInvalidCredentials, http.StatusUnauthorized, 11001},
		{"inactive", service.ErrUserInactive, http.StatusForbidden, 11002},
		{"too many attempts", service.ErrTooManyLoginAttempts, http.StatusTooManyRequests, 11003},
		{"unknown", context.DeadlineExceeded, http.StatusInternalServerError, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAuthHandler(&mockAuthService{loginErr: tt.err})
			r := gin.New()
			r.POST("/auth/login", h.Login)
			w := doJSON(r, "POST", "/auth/login", dto.LoginRequest{Identifier: "x", Password: "y"})

			if w.Code != tt.wantHTTP {
				t.Errorf("expected %d, got %d", tt.wantHTTP, w.Code)
			}
			if tt.wantCode != 0 {
				if resp := parseResponse(w); resp.Code != tt.wantCode {
					t.Errorf("expected code %d, got %d", tt.wantCode, resp.Code)
				}
			}
		})
	}
}

func TestAuthHandler_RefreshToken_MissingToken(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	r := gin.New()
	r.POST("/auth/refresh", h.RefreshToken)
	w := doJSON(r, "POST", "/auth/refresh", map[string]string{})

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAuthHandler_GetCurrentUser_Unauthenticated(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	r := gin.New()
	r.GET("/auth/me", h.GetCurrentUser)
	w := doJSON(r, "GET", "/auth/me", nil)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAuthHandler_GetCurrentUser_Deactivated(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{getCurrentErr: service.ErrUserInactive})

	r := gin.New()
	r.GET("/auth/me", withAuth(model.RoleInstructor), h.GetCurrentUser)
	w := doJSON(r, "GET", "/auth/me", nil)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

func TestAuthHandler_Logout_UsesTokenJTI(t *testing.T) {
	mock := &mockAuthService{}
	h := NewAuthHandler(mock)

	r := gin.New()
	r.POST("/auth/logout", withAuth(model.RoleAdmin), h.Logout)
	w := doJSON(r, "POST", "/auth/logout", nil)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if mock.logoutJTI != "test-jti" {
		t.Errorf("expected jti test-jti, got %q", mock.logoutJTI)
	}
}

// ═══════════════════════════════════════════════════════════
// CandidateHandler Tests
// ═══════════════════════════════════════════════════════════

func TestCandidateHandler_GetProgress(t *testing.T) {
	mock := &mockCandidateService{
		progress: &dto.CandidateProgressResponse{
			CandidateID: "c1",
			Progress:    dto.ProgressSummary{TotalScore: 8, MaxPossibleScore: 25, Percentage: 32},
		},
	}
	h := NewCandidateHandler(mock, &mockExportService{})

	r := gin.New()
	r.GET("/candidates/:id/progress", withAuth(model.RoleInstructor), h.GetProgress)
	w := doJSON(r, "GET", "/candidates/c1/progress", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body struct {
		Data dto.CandidateProgressResponse `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &body)
	if body.Data.Progress.Percentage != 32 || body.Data.Progress.MaxPossibleScore != 25 {
		t.Errorf("unexpected progress: %+v", body.Data.Progress)
	}
}

func TestCandidateHandler_GetCandidate_NotFound(t *testing.T) {
	h := NewCandidateHandler(&mockCandidateService{err: service.ErrCandidateNotFound}, &mockExportService{})

	r := gin.New()
	r.GET("/candidates/:id", withAuth(model.RoleInstructor), h.GetCandidate)
	w := doJSON(r, "GET", "/candidates/missing", nil)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 14001 {
		t.Errorf("expected code 14001, got %d", resp.Code)
	}
}

func TestCandidateHandler_RecordScore_MissingScore(t *testing.T) {
	mock := &mockCandidateService{}
	h := NewCandidateHandler(mock, &mockExportService{})

	r := gin.New()
	r.PUT("/candidates/:id/scores", withAuth(model.RoleInstructor), h.RecordScore)
	w := doJSON(r, "PUT", "/candidates/c1/scores", map[string]interface{}{
		"sub_module_id": "7b0e3f52-8a39-4a53-a5e4-5f4c1f5f6a01",
	})

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if mock.lastScoreReq != nil {
		t.Error("service must not be called when validation fails")
	}
}

func TestCandidateHandler_RecordScore_OutOfRange(t *testing.T) {
	h := NewCandidateHandler(&mockCandidateService{err: service.ErrScoreOutOfRange}, &mockExportService{})

	r := gin.New()
	r.PUT("/candidates/:id/scores", withAuth(model.RoleInstructor), h.RecordScore)
	score := 42.0
	w := doJSON(r, "PUT", "/candidates/c1/scores", dto.RecordScoreRequest{
		SubModuleID: "7b0e3f52-8a39-4a53-a5e4-5f4c1f5f6a01",
		Score:       &score,
	})

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 14004 {
		t.Errorf("expected code 14004, got %d", resp.Code)
	}
}

func TestCandidateHandler_Certify_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantHTTP int
		wantCode int
	}{
		{"not eligible", service.ErrCandidateNotEligible, http.StatusBadRequest, 14002},
		{"already certified", service.ErrCandidateAlreadyCertified, http.StatusConflict, 14003},
		{"not found", service.ErrCandidateNotFound, http.StatusNotFound, 14001},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewCandidateHandler(&mockCandidateService{err: tt.err}, &mockExportService{})
			r := gin.New()
			r.POST("/candidates/:id/certify", withAuth(model.RoleDirection), h.Certify)
			w := doJSON(r, "POST", "/candidates/c1/certify", nil)

			if w.Code != tt.wantHTTP {
				t.Errorf("expected %d, got %d", tt.wantHTTP, w.Code)
			}
			if resp := parseResponse(w); resp.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestCandidateHandler_Certify_PassesCaller(t *testing.T) {
	mock := &mockCandidateService{candidate: &model.Candidate{CandidateID: "c1", IsCertified: true}}
	h := NewCandidateHandler(mock, &mockExportService{})

	r := gin.New()
	r.POST("/candidates/:id/certify", withAuth(model.RoleDirection), h.Certify)
	w := doJSON(r, "POST", "/candidates/c1/certify", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if mock.lastCallerID != "test-user-id" {
		t.Errorf("expected caller test-user-id, got %q", mock.lastCallerID)
	}
}

func TestCandidateHandler_ExportProgress(t *testing.T) {
	exp := &mockExportService{buf: bytes.NewBufferString("xlsx-bytes"), filename: "progression.xlsx"}
	h := NewCandidateHandler(&mockCandidateService{}, exp)

	r := gin.New()
	r.GET("/candidates/export", withAuth(model.RoleDirection), h.ExportProgress)
	w := doJSON(r, "GET", "/candidates/export", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Errorf("unexpected content type %q", ct)
	}
	if w.Body.String() != "xlsx-bytes" {
		t.Errorf("unexpected body %q", w.Body.String())
	}
}

func TestCandidateHandler_ExportProgress_Empty(t *testing.T) {
	h := NewCandidateHandler(&mockCandidateService{}, &mockExportService{err: service.ErrExportNoCandidates})

	r := gin.New()
	r.GET("/candidates/export", withAuth(model.RoleDirection), h.ExportProgress)
	w := doJSON(r, "GET", "/candidates/export", nil)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// CompetitionHandler Tests
// ═══════════════════════════════════════════════════════════

func TestCompetitionHandler_Accept_WithoutBody(t *testing.T) {
	mock := &mockCompetitionService{participation: &model.Participation{ParticipationID: "p1", Status: "accepted", TotalScore: 15, MaxScore: 20}}
	h := NewCompetitionHandler(mock, &mockExportService{})

	r := gin.New()
	r.POST("/participations/:id/accept", withAuth(model.RoleDirection), h.AcceptParticipation)
	w := doJSON(r, "POST", "/participations/p1/accept", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if mock.acceptReq == nil || mock.acceptReq.Overrides != nil {
		t.Errorf("expected empty accept request, got %+v", mock.acceptReq)
	}
}

func TestCompetitionHandler_Accept_WithOverrides(t *testing.T) {
	mock := &mockCompetitionService{participation: &model.Participation{ParticipationID: "p1"}}
	h := NewCompetitionHandler(mock, &mockExportService{})

	r := gin.New()
	r.POST("/participations/:id/accept", withAuth(model.RoleDirection), h.AcceptParticipation)
	w := doJSON(r, "POST", "/participations/p1/accept", dto.AcceptParticipationRequest{
		Overrides: map[string]float64{"q3": 7},
	})

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got := mock.acceptReq.Overrides["q3"]; got != 7 {
		t.Errorf("expected override 7, got %v", got)
	}
}

func TestCompetitionHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantHTTP int
		wantCode int
	}{
		{"already resolved", service.ErrParticipationAlreadyResolved, http.StatusConflict, 19011},
		{"out of range", service.ErrCorrectionOutOfRange, http.StatusBadRequest, 19009},
		{"not found", service.ErrParticipationNotFound, http.StatusNotFound, 19010},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewCompetitionHandler(&mockCompetitionService{err: tt.err}, &mockExportService{})
			r := gin.New()
			r.POST("/participations/:id/reject", withAuth(model.RoleDirection), h.RejectParticipation)
			w := doJSON(r, "POST", "/participations/p1/reject", nil)

			if w.Code != tt.wantHTTP {
				t.Errorf("expected %d, got %d", tt.wantHTTP, w.Code)
			}
			if resp := parseResponse(w); resp.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestCompetitionHandler_Submit_AnonymousPublic(t *testing.T) {
	mock := &mockCompetitionService{result: &dto.ParticipationResultResponse{ParticipationID: "p1", Status: "pending"}}
	h := NewCompetitionHandler(mock, &mockExportService{})

	r := gin.New()
	r.POST("/public/competitions/:id/participations", h.Submit)
	w := doJSON(r, "POST", "/public/competitions/comp1/participations", dto.SubmitParticipationRequest{
		ParticipantName: "Jean Dupont",
		Answers:         []dto.AnswerInput{{QuestionID: "7b0e3f52-8a39-4a53-a5e4-5f4c1f5f6a01", Selected: []int{1}}},
	})

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	if mock.participant != nil {
		t.Error("anonymous submission must not carry a participant identity")
	}
}

func TestCompetitionHandler_Submit_WithParticipantIdentity(t *testing.T) {
	mock := &mockCompetitionService{result: &dto.ParticipationResultResponse{ParticipationID: "p1"}}
	h := NewCompetitionHandler(mock, &mockExportService{})

	r := gin.New()
	r.POST("/public/competitions/:id/participations", func(c *gin.Context) {
		c.Set(middleware.CtxCompetitionID, "comp1")
		c.Set(middleware.CtxInvitationID, "inv1")
		c.Next()
	}, h.Submit)
	w := doJSON(r, "POST", "/public/competitions/comp1/participations", dto.SubmitParticipationRequest{
		Answers: []dto.AnswerInput{{QuestionID: "7b0e3f52-8a39-4a53-a5e4-5f4c1f5f6a01", Text: "réponse"}},
	})

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	if mock.participant == nil || mock.participant.InvitationID != "inv1" {
		t.Errorf("expected participant inv1, got %+v", mock.participant)
	}
}

func TestCompetitionHandler_Submit_PrivateRequiresLogin(t *testing.T) {
	h := NewCompetitionHandler(&mockCompetitionService{err: service.ErrParticipantRequired}, &mockExportService{})

	r := gin.New()
	r.POST("/public/competitions/:id/participations", h.Submit)
	w := doJSON(r, "POST", "/public/competitions/comp1/participations", dto.SubmitParticipationRequest{
		Answers: []dto.AnswerInput{{QuestionID: "7b0e3f52-8a39-4a53-a5e4-5f4c1f5f6a01", Selected: []int{0}}},
	})

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// InvitationHandler Tests
// ═══════════════════════════════════════════════════════════

func TestInvitationHandler_Login_Success(t *testing.T) {
	mock := &mockInvitationService{loginRes: &dto.InvitationLoginResponse{
		ParticipantToken: "participant-token",
		CompetitionID:    "comp1",
		CandidateName:    "Jean Dupont",
	}}
	h := NewInvitationHandler(mock)

	r := gin.New()
	r.POST("/public/invitations/login", h.Login)
	w := doJSON(r, "POST", "/public/invitations/login", dto.InvitationLoginRequest{Identifier: "DHS-AB12CD", Password: "pw"})

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestInvitationHandler_Login_SecondUseRejected(t *testing.T) {
	h := NewInvitationHandler(&mockInvitationService{err: service.ErrInvitationUsed})

	r := gin.New()
	r.POST("/public/invitations/login", h.Login)
	w := doJSON(r, "POST", "/public/invitations/login", dto.InvitationLoginRequest{Identifier: "DHS-AB12CD", Password: "pw"})

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 20002 {
		t.Errorf("expected code 20002, got %d", resp.Code)
	}
}

func TestInvitationHandler_Issue_EmptyList(t *testing.T) {
	h := NewInvitationHandler(&mockInvitationService{})

	r := gin.New()
	r.POST("/competitions/:id/invitations", withAuth(model.RoleDirection), h.Issue)
	w := doJSON(r, "POST", "/competitions/comp1/invitations", dto.IssueInvitationsRequest{})

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestInvitationHandler_Issue_PublicCompetition(t *testing.T) {
	h := NewInvitationHandler(&mockInvitationService{err: service.ErrCompetitionNotPrivate})

	r := gin.New()
	r.POST("/competitions/:id/invitations", withAuth(model.RoleDirection), h.Issue)
	w := doJSON(r, "POST", "/competitions/comp1/invitations", dto.IssueInvitationsRequest{
		Invitees: []dto.InviteeInput{{Name: "Jean Dupont"}},
	})

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 20003 {
		t.Errorf("expected code 20003, got %d", resp.Code)
	}
}
