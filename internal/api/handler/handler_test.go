package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/TruongPersonal/HUSC-ResearchHub/internal/api/middleware"
	"github.com/TruongPersonal/HUSC-ResearchHub/internal/dto"
	"github.com/TruongPersonal/HUSC-ResearchHub/internal/lifecycle"
	"github.com/TruongPersonal/HUSC-ResearchHub/internal/service"
	pkgerrors "github.com/TruongPersonal/HUSC-ResearchHub/pkg/errors"
	"github.com/TruongPersonal/HUSC-ResearchHub/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock AuthService ──

type mockAuthService struct {
	loginResult   *dto.TokenResponse
	loginErr      error
	refreshErr    error
	logoutJTI     string
	logoutRefresh string
	currentResult *dto.UserResponse
	currentErr    error
	changePassErr error
}

func (m *mockAuthService) Login(_ context.Context, _ *dto.LoginRequest) (*dto.TokenResponse, error) {
	return m.loginResult, m.loginErr
}
func (m *mockAuthService) RefreshToken(_ context.Context, _ string) (*dto.TokenResponse, error) {
	return m.loginResult, m.refreshErr
}
func (m *mockAuthService) Logout(_ context.Context, jti string, _ time.Time, refresh string) error {
	m.logoutJTI, m.logoutRefresh = jti, refresh
	return nil
}
func (m *mockAuthService) GetCurrentUser(_ context.Context, _ string) (*dto.UserResponse, error) {
	return m.currentResult, m.currentErr
}
func (m *mockAuthService) ChangePassword(_ context.Context, _ string, _ *dto.ChangePasswordRequest) error {
	return m.changePassErr
}

// ── Mock TopicService ──

type mockTopicService struct {
	detail     *dto.TopicDetailResponse
	err        error
	lastCaller service.Caller
	lastUserID string
}

func (m *mockTopicService) Propose(_ context.Context, caller service.Caller, _ *dto.ProposeTopicRequest) (*dto.TopicDetailResponse, error) {
	m.lastCaller = caller
	return m.detail, m.err
}
func (m *mockTopicService) Register(_ context.Context, _ service.Caller, _ string) (*dto.TopicMemberResponse, error) {
	return &dto.TopicMemberResponse{}, m.err
}
func (m *mockTopicService) UpdateStatus(_ context.Context, _ service.Caller, _ string, _ *dto.UpdateTopicStatusRequest) (*dto.TopicDetailResponse, error) {
	return m.detail, m.err
}
func (m *mockTopicService) AssignAdvisor(_ context.Context, _ service.Caller, _, teacherID string) (*dto.TopicDetailResponse, error) {
	m.lastUserID = teacherID
	return m.detail, m.err
}
func (m *mockTopicService) AssignLeader(_ context.Context, _ service.Caller, _, studentID string) (*dto.TopicDetailResponse, error) {
	m.lastUserID = studentID
	return m.detail, m.err
}
func (m *mockTopicService) ApproveMember(_ context.Context, _ service.Caller, _, _ string) (*dto.TopicMemberResponse, error) {
	return &dto.TopicMemberResponse{}, m.err
}
func (m *mockTopicService) RejectMember(_ context.Context, _ service.Caller, _, _ string) (*dto.TopicMemberResponse, error) {
	return &dto.TopicMemberResponse{}, m.err
}
func (m *mockTopicService) Search(_ context.Context, _ service.Caller, _ *dto.TopicSearchRequest) ([]dto.TopicResponse, int64, error) {
	return nil, 0, m.err
}
func (m *mockTopicService) MyTopics(_ context.Context, _ service.Caller, _ *dto.TopicSearchRequest) ([]dto.TopicResponse, int64, error) {
	return nil, 0, m.err
}
func (m *mockTopicService) GetDetail(_ context.Context, _ service.Caller, _ string) (*dto.TopicDetailResponse, error) {
	return m.detail, m.err
}
func (m *mockTopicService) Update(_ context.Context, _ service.Caller, _ string, _ *dto.UpdateTopicRequest) (*dto.TopicDetailResponse, error) {
	return m.detail, m.err
}
func (m *mockTopicService) History(_ context.Context, _ string) ([]dto.TopicEventResponse, error) {
	return nil, m.err
}

// ── Mock ExportService ──

type mockExportService struct {
	buf      *bytes.Buffer
	filename string
	err      error
}

func (m *mockExportService) ExportTopics(_ context.Context, _ service.Caller, _, _ string) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func setAuth(c *gin.Context) {
	c.Set(middleware.CtxUserID, "test-user-id")
	c.Set(middleware.CtxRole, "assistant")
	c.Set(middleware.CtxDepartmentID, "test-dept-id")
	c.Set(middleware.CtxTokenJTI, "test-jti")
	c.Set(middleware.CtxTokenExp, time.Now().Add(15*time.Minute))
}

// serve 注册单条路由（可选注入身份）并执行请求
func serve(method, route, target string, body io.Reader, authed bool, h gin.HandlerFunc) *httptest.ResponseRecorder {
	r := gin.New()
	r.Handle(method, route, func(c *gin.Context) {
		if authed {
			setAuth(c)
		}
		h(c)
	})
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

// ═══════════════════════════════════════════════════════════
// respondError Tests
// ═══════════════════════════════════════════════════════════

func TestRespondError_KindMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"not found", service.ErrTopicNotFound, http.StatusNotFound, codeNotFound},
		{"forbidden", service.ErrNoPermission, http.StatusForbidden, codeForbidden},
		{"conflict", pkgerrors.ErrOptimisticLock, http.StatusConflict, codeConflict},
		{"invalid state", lifecycle.ErrTopicMembersPending, http.StatusBadRequest, codeInvalidState},
		{"session closed", lifecycle.ErrSessionClosed, http.StatusBadRequest, codeInvalidState},
		{"unknown", errors.New("db down"), http.StatusInternalServerError, 50000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve("GET", "/x", "/x", nil, false, func(c *gin.Context) { respondError(c, tt.err) })
			if w.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d", tt.wantStatus, w.Code)
			}
			if resp := parseResponse(w); resp.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, resp.Code)
			}
		})
	}
}

// ═══════════════════════════════════════════════════════════
// AuthHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAuthHandler_Login_Success(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{
		loginResult: &dto.TokenResponse{AccessToken: "a", RefreshToken: "r", ExpiresIn: 900},
	})

	w := serve("POST", "/auth/login", "/auth/login",
		jsonBody(dto.LoginRequest{Username: "sv01", Password: "password123"}), false, h.Login)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
}

func TestAuthHandler_Login_BadJSON(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	w := serve("POST", "/auth/login", "/auth/login", bytes.NewReader([]byte("invalid json")), false, h.Login)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{loginErr: service.ErrInvalidCredentials})

	w := serve("POST", "/auth/login", "/auth/login",
		jsonBody(dto.LoginRequest{Username: "sv01", Password: "wrong"}), false, h.Login)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 11001 {
		t.Errorf("expected error code 11001, got %d", resp.Code)
	}
}

func TestAuthHandler_RefreshToken_Revoked(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{refreshErr: service.ErrTokenRevoked})

	w := serve("POST", "/auth/refresh", "/auth/refresh",
		jsonBody(dto.RefreshTokenRequest{RefreshToken: "old"}), false, h.RefreshToken)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 11003 {
		t.Errorf("expected error code 11003, got %d", resp.Code)
	}
}

func TestAuthHandler_Logout_PassesTokenMeta(t *testing.T) {
	mock := &mockAuthService{}
	h := NewAuthHandler(mock)

	w := serve("POST", "/auth/logout", "/auth/logout",
		jsonBody(map[string]string{"refresh_token": "r"}), true, h.Logout)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if mock.logoutJTI != "test-jti" || mock.logoutRefresh != "r" {
		t.Errorf("expected jti=test-jti refresh=r, got %s %s", mock.logoutJTI, mock.logoutRefresh)
	}
}

func TestAuthHandler_GetCurrentUser_Unauthenticated(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	w := serve("GET", "/auth/me", "/auth/me", nil, false, h.GetCurrentUser)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAuthHandler_ChangePassword_OldWrong(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{changePassErr: service.ErrOldPasswordWrong})

	w := serve("PUT", "/auth/password", "/auth/password",
		jsonBody(dto.ChangePasswordRequest{OldPassword: "x", NewPassword: "newpass123"}), true, h.ChangePassword)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 11004 {
		t.Errorf("expected error code 11004, got %d", resp.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// TopicHandler Tests
// ═══════════════════════════════════════════════════════════

func TestTopicHandler_Propose_Created(t *testing.T) {
	mock := &mockTopicService{detail: &dto.TopicDetailResponse{}}
	h := NewTopicHandler(mock)

	w := serve("POST", "/topics", "/topics", jsonBody(map[string]string{
		"academic_year_id": "8a6e0804-2bd0-4672-b79d-d97027f9071a",
		"name":             "Hệ thống gợi ý",
	}), true, h.ProposeTopic)

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
	if mock.lastCaller.UserID != "test-user-id" || mock.lastCaller.DepartmentID != "test-dept-id" {
		t.Errorf("caller not propagated: %+v", mock.lastCaller)
	}
}

func TestTopicHandler_Propose_BudgetInvalid(t *testing.T) {
	h := NewTopicHandler(&mockTopicService{err: service.ErrTopicBudgetInvalid})

	w := serve("POST", "/topics", "/topics", jsonBody(map[string]interface{}{
		"academic_year_id": "8a6e0804-2bd0-4672-b79d-d97027f9071a",
		"name":             "x",
		"budget":           "-1",
	}), true, h.ProposeTopic)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 13001 {
		t.Errorf("expected error code 13001, got %d", resp.Code)
	}
}

func TestTopicHandler_UpdateStatus_Rejected(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
	}{
		{lifecycle.ErrTopicLeaderMissing, http.StatusBadRequest},
		{lifecycle.ErrSessionClosed, http.StatusBadRequest},
		{service.ErrNoPermission, http.StatusForbidden},
		{service.ErrTopicNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		h := NewTopicHandler(&mockTopicService{err: tt.err})
		w := serve("PUT", "/topics/:id/status", "/topics/t1/status",
			jsonBody(dto.UpdateTopicStatusRequest{Status: "approved"}), true, h.UpdateTopicStatus)
		if w.Code != tt.wantStatus {
			t.Errorf("%v: expected %d, got %d", tt.err, tt.wantStatus, w.Code)
		}
	}
}

func TestTopicHandler_UpdateStatus_BadTarget(t *testing.T) {
	h := NewTopicHandler(&mockTopicService{})

	w := serve("PUT", "/topics/:id/status", "/topics/t1/status",
		jsonBody(map[string]string{"status": "pending"}), true, h.UpdateTopicStatus)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestTopicHandler_AssignLeader_Unassign(t *testing.T) {
	mock := &mockTopicService{detail: &dto.TopicDetailResponse{}, lastUserID: "sentinel"}
	h := NewTopicHandler(mock)

	w := serve("PUT", "/topics/:id/leader", "/topics/t1/leader",
		jsonBody(map[string]interface{}{"user_id": nil}), true, h.AssignLeader)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if mock.lastUserID != "" {
		t.Errorf("null user_id should unassign, got %q", mock.lastUserID)
	}
}

func TestTopicHandler_Update_StaleVersion(t *testing.T) {
	h := NewTopicHandler(&mockTopicService{err: pkgerrors.ErrOptimisticLock})

	w := serve("PUT", "/topics/:id", "/topics/t1",
		jsonBody(map[string]interface{}{"version": 1, "name": "x"}), true, h.UpdateTopic)

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ExportHandler Tests
// ═══════════════════════════════════════════════════════════

func TestExportHandler_ExportTopics_Success(t *testing.T) {
	h := NewExportHandler(&mockExportService{
		buf:      bytes.NewBufferString("xlsx"),
		filename: "DeTai_CS_2024.xlsx",
	})

	w := serve("GET", "/export/topics", "/export/topics?academic_year_id=y1", nil, true, h.ExportTopics)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Errorf("unexpected content type %s", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); cd != "attachment; filename*=UTF-8''DeTai_CS_2024.xlsx" {
		t.Errorf("unexpected disposition %s", cd)
	}
}

func TestExportHandler_ExportTopics_Errors(t *testing.T) {
	h := NewExportHandler(&mockExportService{err: service.ErrExportNoTopics})

	w := serve("GET", "/export/topics", "/export/topics", nil, true, h.ExportTopics)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing academic_year_id: expected 400, got %d", w.Code)
	}

	w = serve("GET", "/export/topics", "/export/topics?academic_year_id=y1", nil, true, h.ExportTopics)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 16101 {
		t.Errorf("expected error code 16101, got %d", resp.Code)
	}

	h = NewExportHandler(&mockExportService{err: service.ErrNoDepartment})
	w = serve("GET", "/export/topics", "/export/topics?academic_year_id=y1", nil, true, h.ExportTopics)
	if w.Code != http.StatusBadRequest {
		t.Errorf("no department: expected 400, got %d", w.Code)
	}
}
