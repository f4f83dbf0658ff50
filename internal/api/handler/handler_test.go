package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"tudva/backend/internal/dto"
	"tudva/backend/internal/service"
	pkgerrors "tudva/backend/pkg/errors"
	"tudva/backend/pkg/response"
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
	logoutErr        error
	logoutJTI        string
	logoutExp        time.Time
	getCurrentResult *dto.UserResponse
	getCurrentErr    error
}

func (m *mockAuthService) Login(_ context.Context, _ *dto.LoginRequest) (*dto.TokenResponse, error) {
	return m.loginResult, m.loginErr
}
func (m *mockAuthService) Logout(_ context.Context, jti string, exp time.Time) error {
	m.logoutJTI, m.logoutExp = jti, exp
	return m.logoutErr
}
func (m *mockAuthService) GetCurrentUser(_ context.Context, _ string) (*dto.UserResponse, error) {
	return m.getCurrentResult, m.getCurrentErr
}

// ── Mock TimeSlotService ──

type mockTimeSlotService struct {
	result []dto.TimeSlotResponse
	err    error
}

func (m *mockTimeSlotService) List(_ context.Context) ([]dto.TimeSlotResponse, error) {
	return m.result, m.err
}

// ── Mock SchedulerService ──

type mockSchedulerService struct {
	scheduleResult  *dto.ScheduleResponse
	scheduleErr     error
	availableResult *dto.AvailableCoursesResponse
	availableErr    error
	availableReq    *dto.AvailableCoursesRequest
	addResult       *dto.ScheduledItemResponse
	addErr          error
	addLiveResult   *dto.ScheduleResponse
	addLiveErr      error
	updateErr       error
	updateID        string
	updateReq       *dto.UpdateScheduledItemRequest
	orderErr        error
	orderReq        *dto.UpdateItemsOrderRequest
	calledUserID    string
}

func (m *mockSchedulerService) GetSchedule(_ context.Context, userID string) (*dto.ScheduleResponse, error) {
	m.calledUserID = userID
	return m.scheduleResult, m.scheduleErr
}
func (m *mockSchedulerService) ListAvailableCourses(_ context.Context, userID string, req *dto.AvailableCoursesRequest) (*dto.AvailableCoursesResponse, error) {
	m.calledUserID = userID
	m.availableReq = req
	return m.availableResult, m.availableErr
}
func (m *mockSchedulerService) AddCourseItem(_ context.Context, userID string, _ *dto.AddCourseItemRequest) (*dto.ScheduledItemResponse, error) {
	m.calledUserID = userID
	return m.addResult, m.addErr
}
func (m *mockSchedulerService) AddLiveCourse(_ context.Context, userID, _ string) (*dto.ScheduleResponse, error) {
	m.calledUserID = userID
	return m.addLiveResult, m.addLiveErr
}
func (m *mockSchedulerService) UpdateScheduledItem(_ context.Context, userID, itemID string, req *dto.UpdateScheduledItemRequest) error {
	m.calledUserID = userID
	m.updateID = itemID
	m.updateReq = req
	return m.updateErr
}
func (m *mockSchedulerService) UpdateItemsOrder(_ context.Context, userID string, req *dto.UpdateItemsOrderRequest) error {
	m.calledUserID = userID
	m.orderReq = req
	return m.orderErr
}

// ── Mock ExportService ──

type mockExportService struct {
	buf      *bytes.Buffer
	filename string
	err      error
}

func (m *mockExportService) ExportSchedule(_ context.Context, _ string) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

const (
	testUserID = "test-user-id"
	courseUUID = "7f1c2a8e-4b5d-4c1e-9a3f-0d6b8e2f1a10"
	lessonUUID = "2b9e4d1c-8a7f-4e3b-b6c5-1f0a9d8e7c21"
	itemUUID   = "c3d4e5f6-a7b8-4c9d-8e0f-1a2b3c4d5e6f"
)

var testTokenExp = time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

func setAuth(c *gin.Context) {
	c.Set("user_id", testUserID)
	c.Set("role", "student")
	c.Set("token_jti", "test-jti")
	c.Set("token_exp", testTokenExp)
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

// serve 注册单个路由并执行请求；authed 为 true 时模拟 JWT 中间件注入身份
func serve(method, pattern, target string, body io.Reader, authed bool, h gin.HandlerFunc) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r := gin.New()
	r.Handle(method, pattern, func(c *gin.Context) {
		if authed {
			setAuth(c)
		}
		h(c)
	})
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	r.ServeHTTP(w, req)
	return w
}

// ═══════════════════════════════════════════════════════════
// AuthHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAuthHandler_Login_Success(t *testing.T) {
	mock := &mockAuthService{
		loginResult: &dto.TokenResponse{AccessToken: "test-access-token", ExpiresIn: 7200},
	}
	h := NewAuthHandler(mock)

	w := serve("POST", "/auth/login", "/auth/login", jsonBody(dto.LoginRequest{
		Email:    "student@tudva.test",
		Password: "password123",
	}), false, h.Login)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	resp := parseResponse(w)
	if !resp.Success || resp.Code != 0 {
		t.Errorf("expected success envelope, got %+v", resp)
	}
}

func TestAuthHandler_Login_BadJSON(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	w := serve("POST", "/auth/login", "/auth/login", strings.NewReader("invalid json"), false, h.Login)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Success || resp.Code != 10001 {
		t.Errorf("expected code 10001, got %+v", resp)
	}
}

func TestAuthHandler_Login_InvalidEmail(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	w := serve("POST", "/auth/login", "/auth/login", jsonBody(map[string]string{
		"email":    "not-an-email",
		"password": "x",
	}), false, h.Login)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{loginErr: service.ErrInvalidCredentials})

	w := serve("POST", "/auth/login", "/auth/login", jsonBody(dto.LoginRequest{
		Email:    "student@tudva.test",
		Password: "wrong",
	}), false, h.Login)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 11001 {
		t.Errorf("expected error code 11001, got %d", resp.Code)
	}
}

func TestAuthHandler_Logout_PassesTokenMeta(t *testing.T) {
	mock := &mockAuthService{}
	h := NewAuthHandler(mock)

	w := serve("POST", "/auth/logout", "/auth/logout", nil, true, h.Logout)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if mock.logoutJTI != "test-jti" {
		t.Errorf("expected jti test-jti, got %q", mock.logoutJTI)
	}
	if !mock.logoutExp.Equal(testTokenExp) {
		t.Errorf("expected exp %v, got %v", testTokenExp, mock.logoutExp)
	}
}

func TestAuthHandler_Logout_Unauthenticated(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	w := serve("POST", "/auth/logout", "/auth/logout", nil, false, h.Logout)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAuthHandler_Logout_ServiceError(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{logoutErr: errors.New("redis down")})

	w := serve("POST", "/auth/logout", "/auth/logout", nil, true, h.Logout)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
}

func TestAuthHandler_GetCurrentUser_Success(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{
		getCurrentResult: &dto.UserResponse{ID: testUserID, Name: "Test User"},
	})

	w := serve("GET", "/auth/me", "/auth/me", nil, true, h.GetCurrentUser)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestAuthHandler_GetCurrentUser_Unauthenticated(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	w := serve("GET", "/auth/me", "/auth/me", nil, false, h.GetCurrentUser)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAuthHandler_GetCurrentUser_NotFound(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{getCurrentErr: service.ErrUserNotFound})

	w := serve("GET", "/auth/me", "/auth/me", nil, true, h.GetCurrentUser)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// TimeSlotHandler Tests
// ═══════════════════════════════════════════════════════════

func TestTimeSlotHandler_List(t *testing.T) {
	h := NewTimeSlotHandler(&mockTimeSlotService{result: []dto.TimeSlotResponse{
		{ID: "slot_1", DisplayName: "第1时段", StartTime: "08:00", EndTime: "10:00"},
	}})

	w := serve("GET", "/time-slots", "/time-slots", nil, true, h.ListTimeSlots)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body struct {
		Data struct {
			TimeSlots []dto.TimeSlotResponse `json:"timeSlots"`
		} `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &body)
	if len(body.Data.TimeSlots) != 1 || body.Data.TimeSlots[0].ID != "slot_1" {
		t.Errorf("unexpected slots: %+v", body.Data.TimeSlots)
	}
}

func TestTimeSlotHandler_List_Error(t *testing.T) {
	h := NewTimeSlotHandler(&mockTimeSlotService{err: errors.New("db down")})

	w := serve("GET", "/time-slots", "/time-slots", nil, true, h.ListTimeSlots)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// SchedulerHandler Tests
// ═══════════════════════════════════════════════════════════

func TestSchedulerHandler_GetSchedule(t *testing.T) {
	mock := &mockSchedulerService{scheduleResult: &dto.ScheduleResponse{
		ScheduledItems: []dto.ScheduledItemResponse{{ID: itemUUID, Date: "2025-01-08", SlotID: "slot_1"}},
	}}
	h := NewSchedulerHandler(mock)

	w := serve("GET", "/scheduler/items", "/scheduler/items", nil, true, h.GetSchedule)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if mock.calledUserID != testUserID {
		t.Errorf("expected caller %s, got %s", testUserID, mock.calledUserID)
	}
	if !strings.Contains(w.Body.String(), `"scheduledItems"`) {
		t.Errorf("expected scheduledItems key, got %s", w.Body.String())
	}
}

func TestSchedulerHandler_GetSchedule_Unauthenticated(t *testing.T) {
	h := NewSchedulerHandler(&mockSchedulerService{})

	w := serve("GET", "/scheduler/items", "/scheduler/items", nil, false, h.GetSchedule)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestSchedulerHandler_ListAvailableCourses_BindsQuery(t *testing.T) {
	mock := &mockSchedulerService{availableResult: &dto.AvailableCoursesResponse{}}
	h := NewSchedulerHandler(mock)

	w := serve("GET", "/scheduler/available-courses", "/scheduler/available-courses?query=go&type=live", nil, true, h.ListAvailableCourses)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if mock.availableReq == nil || mock.availableReq.Query != "go" || mock.availableReq.Type != "live" {
		t.Errorf("unexpected request: %+v", mock.availableReq)
	}
}

func TestSchedulerHandler_ListAvailableCourses_BadType(t *testing.T) {
	h := NewSchedulerHandler(&mockSchedulerService{})

	w := serve("GET", "/scheduler/available-courses", "/scheduler/available-courses?type=video", nil, true, h.ListAvailableCourses)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func validAddRequest() dto.AddCourseItemRequest {
	return dto.AddCourseItemRequest{
		CourseID:     courseUUID,
		ItemID:       lessonUUID,
		Title:        "Intro",
		LessonNumber: 1,
		TotalLessons: 3,
		Type:         "recorded",
		Date:         "2025-01-08",
		SlotID:       "slot_1",
	}
}

func TestSchedulerHandler_AddCourseItem_Created(t *testing.T) {
	mock := &mockSchedulerService{addResult: &dto.ScheduledItemResponse{ID: itemUUID}}
	h := NewSchedulerHandler(mock)

	w := serve("POST", "/scheduler/items", "/scheduler/items", jsonBody(validAddRequest()), true, h.AddCourseItem)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	if !parseResponse(w).Success {
		t.Error("expected success")
	}
}

func TestSchedulerHandler_AddCourseItem_Validation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(r *dto.AddCourseItemRequest)
	}{
		{"bad course id", func(r *dto.AddCourseItemRequest) { r.CourseID = "c-1" }},
		{"missing item id", func(r *dto.AddCourseItemRequest) { r.ItemID = "" }},
		{"unknown type", func(r *dto.AddCourseItemRequest) { r.Type = "video" }},
		{"missing date", func(r *dto.AddCourseItemRequest) { r.Date = "" }},
		{"missing slot", func(r *dto.AddCourseItemRequest) { r.SlotID = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mock := &mockSchedulerService{}
			h := NewSchedulerHandler(mock)
			req := validAddRequest()
			tc.mutate(&req)

			w := serve("POST", "/scheduler/items", "/scheduler/items", jsonBody(req), true, h.AddCourseItem)

			if w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", w.Code)
			}
			if mock.calledUserID != "" {
				t.Error("service must not be called on invalid input")
			}
		})
	}
}

func TestSchedulerHandler_ErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   int
	}{
		{service.ErrInvalidDate, http.StatusBadRequest, 17001},
		{service.ErrWrongWeekday, http.StatusBadRequest, 17002},
		{service.ErrSlotNotFound, http.StatusBadRequest, 17003},
		{service.ErrCourseNotFound, http.StatusNotFound, 17004},
		{service.ErrNotEnrolled, http.StatusForbidden, 17005},
		{service.ErrItemNotInCourse, http.StatusBadRequest, 17006},
		{service.ErrTypeMismatch, http.StatusBadRequest, 17007},
		{service.ErrLiveSessionFixed, http.StatusBadRequest, 17010},
		{service.ErrAlreadyScheduled, http.StatusConflict, 17012},
		{service.ErrCellOccupied, http.StatusConflict, 17014},
		{fmt.Errorf("写入失败: %w", service.ErrCellOccupied), http.StatusConflict, 17014},
		{service.ErrLiveSlotConflict, http.StatusConflict, 17015},
		{errors.New("boom"), http.StatusInternalServerError, 50000},
	}
	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			h := NewSchedulerHandler(&mockSchedulerService{addErr: tc.err})

			w := serve("POST", "/scheduler/items", "/scheduler/items", jsonBody(validAddRequest()), true, h.AddCourseItem)

			if w.Code != tc.status {
				t.Errorf("expected %d, got %d", tc.status, w.Code)
			}
			resp := parseResponse(w)
			if resp.Success || resp.Code != tc.code {
				t.Errorf("expected code %d, got %+v", tc.code, resp)
			}
			if resp.Error == "" {
				t.Error("expected error message")
			}
		})
	}
}

func TestSchedulerHandler_CellOccupied_MessageShownToStudent(t *testing.T) {
	h := NewSchedulerHandler(&mockSchedulerService{addErr: service.ErrCellOccupied})

	w := serve("POST", "/scheduler/items", "/scheduler/items", jsonBody(validAddRequest()), true, h.AddCourseItem)

	if resp := parseResponse(w); resp.Error != service.ErrCellOccupied.Error() {
		t.Errorf("expected %q, got %q", service.ErrCellOccupied.Error(), resp.Error)
	}
}

func TestSchedulerHandler_AddLiveCourse(t *testing.T) {
	mock := &mockSchedulerService{addLiveResult: &dto.ScheduleResponse{}}
	h := NewSchedulerHandler(mock)

	w := serve("POST", "/scheduler/live-courses", "/scheduler/live-courses",
		jsonBody(dto.AddLiveCourseRequest{CourseID: courseUUID}), true, h.AddLiveCourse)

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
}

func TestSchedulerHandler_AddLiveCourse_NotLive(t *testing.T) {
	h := NewSchedulerHandler(&mockSchedulerService{addLiveErr: service.ErrNotLiveCourse})

	w := serve("POST", "/scheduler/live-courses", "/scheduler/live-courses",
		jsonBody(dto.AddLiveCourseRequest{CourseID: courseUUID}), true, h.AddLiveCourse)

	if resp := parseResponse(w); w.Code != http.StatusBadRequest || resp.Code != 17008 {
		t.Errorf("expected 400/17008, got %d/%d", w.Code, resp.Code)
	}
}

func TestSchedulerHandler_UpdateScheduledItem(t *testing.T) {
	mock := &mockSchedulerService{}
	h := NewSchedulerHandler(mock)
	date, slot := "2025-01-15", "slot_2"

	w := serve("PUT", "/scheduler/items/:id", "/scheduler/items/"+itemUUID,
		jsonBody(dto.UpdateScheduledItemRequest{NewDate: &date, NewSlotID: &slot}), true, h.UpdateScheduledItem)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if mock.updateID != itemUUID {
		t.Errorf("expected id %s, got %s", itemUUID, mock.updateID)
	}
	if mock.updateReq == nil || mock.updateReq.NewDate == nil || *mock.updateReq.NewDate != date {
		t.Errorf("unexpected request: %+v", mock.updateReq)
	}
}

func TestSchedulerHandler_UpdateScheduledItem_Remove(t *testing.T) {
	mock := &mockSchedulerService{}
	h := NewSchedulerHandler(mock)

	w := serve("PUT", "/scheduler/items/:id", "/scheduler/items/"+itemUUID,
		jsonBody(map[string]bool{"remove": true}), true, h.UpdateScheduledItem)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if mock.updateReq == nil || !mock.updateReq.Remove {
		t.Error("expected remove=true to reach the service")
	}
}

func TestSchedulerHandler_UpdateScheduledItem_BadID(t *testing.T) {
	mock := &mockSchedulerService{}
	h := NewSchedulerHandler(mock)

	w := serve("PUT", "/scheduler/items/:id", "/scheduler/items/not-a-uuid",
		jsonBody(map[string]bool{"remove": true}), true, h.UpdateScheduledItem)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if mock.updateID != "" {
		t.Error("service must not be called")
	}
}

func TestSchedulerHandler_UpdateScheduledItem_Conflicts(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   int
	}{
		{service.ErrLiveImmovable, http.StatusBadRequest, 17011},
		{service.ErrScheduledItemNotFound, http.StatusNotFound, 17016},
		{service.ErrEmptyUpdate, http.StatusBadRequest, 17017},
		{pkgerrors.ErrOptimisticLock, http.StatusConflict, 17019},
	}
	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			h := NewSchedulerHandler(&mockSchedulerService{updateErr: tc.err})

			w := serve("PUT", "/scheduler/items/:id", "/scheduler/items/"+itemUUID,
				jsonBody(map[string]string{}), true, h.UpdateScheduledItem)

			if resp := parseResponse(w); w.Code != tc.status || resp.Code != tc.code {
				t.Errorf("expected %d/%d, got %d/%d", tc.status, tc.code, w.Code, resp.Code)
			}
		})
	}
}

func TestSchedulerHandler_UpdateItemsOrder(t *testing.T) {
	mock := &mockSchedulerService{}
	h := NewSchedulerHandler(mock)

	w := serve("POST", "/scheduler/order", "/scheduler/order", jsonBody(dto.UpdateItemsOrderRequest{
		CourseID:       courseUUID,
		OrderedItemIDs: []string{itemUUID, lessonUUID},
	}), true, h.UpdateItemsOrder)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if mock.orderReq == nil || len(mock.orderReq.OrderedItemIDs) != 2 || mock.orderReq.OrderedItemIDs[0] != itemUUID {
		t.Errorf("unexpected request: %+v", mock.orderReq)
	}
}

func TestSchedulerHandler_UpdateItemsOrder_Validation(t *testing.T) {
	h := NewSchedulerHandler(&mockSchedulerService{})

	for name, body := range map[string]interface{}{
		"empty list": dto.UpdateItemsOrderRequest{CourseID: courseUUID, OrderedItemIDs: []string{}},
		"bad id":     dto.UpdateItemsOrderRequest{CourseID: courseUUID, OrderedItemIDs: []string{"x"}},
	} {
		t.Run(name, func(t *testing.T) {
			w := serve("POST", "/scheduler/order", "/scheduler/order", jsonBody(body), true, h.UpdateItemsOrder)
			if w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", w.Code)
			}
		})
	}
}

func TestSchedulerHandler_UpdateItemsOrder_Invalid(t *testing.T) {
	h := NewSchedulerHandler(&mockSchedulerService{orderErr: service.ErrInvalidOrder})

	w := serve("POST", "/scheduler/order", "/scheduler/order", jsonBody(dto.UpdateItemsOrderRequest{
		CourseID:       courseUUID,
		OrderedItemIDs: []string{itemUUID},
	}), true, h.UpdateItemsOrder)

	if resp := parseResponse(w); w.Code != http.StatusBadRequest || resp.Code != 17018 {
		t.Errorf("expected 400/17018, got %d/%d", w.Code, resp.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ExportHandler Tests
// ═══════════════════════════════════════════════════════════

func TestExportHandler_Success(t *testing.T) {
	h := NewExportHandler(&mockExportService{
		buf:      bytes.NewBufferString("xlsx-bytes"),
		filename: "课表_2025-01-08_2025-01-15.xlsx",
	})

	w := serve("GET", "/scheduler/export", "/scheduler/export", nil, true, h.ExportSchedule)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != xlsxMIME {
		t.Errorf("unexpected content type %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.HasPrefix(cd, "attachment; filename*=UTF-8''") {
		t.Errorf("unexpected content disposition %q", cd)
	}
	if w.Body.String() != "xlsx-bytes" {
		t.Errorf("unexpected body %q", w.Body.String())
	}
}

func TestExportHandler_NoItems(t *testing.T) {
	h := NewExportHandler(&mockExportService{err: service.ErrExportNoItems})

	w := serve("GET", "/scheduler/export", "/scheduler/export", nil, true, h.ExportSchedule)

	if resp := parseResponse(w); w.Code != http.StatusNotFound || resp.Code != 16101 {
		t.Errorf("expected 404/16101, got %d/%d", w.Code, resp.Code)
	}
}

func TestExportHandler_Unauthenticated(t *testing.T) {
	h := NewExportHandler(&mockExportService{})

	w := serve("GET", "/scheduler/export", "/scheduler/export", nil, false, h.ExportSchedule)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}
