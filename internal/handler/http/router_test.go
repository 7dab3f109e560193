package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/worktime"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/lock"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/mq"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/sse"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/storage"
	"github.com/cmlabs-hris/attendance-engine/internal/repository/memory"
	attendanceService "github.com/cmlabs-hris/attendance-engine/internal/service/attendance"
	employeeService "github.com/cmlabs-hris/attendance-engine/internal/service/employee"
	leaveService "github.com/cmlabs-hris/attendance-engine/internal/service/leave"
	settlementService "github.com/cmlabs-hris/attendance-engine/internal/service/settlement"
	worktimeService "github.com/cmlabs-hris/attendance-engine/internal/service/worktime"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const handlerTestSecret = "test-secret-key-for-jwt"

type testServer struct {
	router     *chi.Mux
	jwt        jwt.Service
	hub        *sse.Hub
	employeeID string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()
	loc, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)

	store := memory.NewStore()
	tx := memory.NewTransactor(store)
	employees := memory.NewEmployeeRepository(store)
	daily := memory.NewDailyAttendanceRepository(store)
	summaries := memory.NewSummaryRepository(store)
	rules := memory.NewRuleConfigRepository(store)
	periods := memory.NewPeriodRepository(store)

	_, err = rules.Create(ctx, worktime.DefaultRuleConfig(time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	emp, err := employees.Create(ctx, employee.Employee{FullName: "이재혁", HourlyRate: decimal.NewFromInt(10000)})
	require.NoError(t, err)

	archive, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	hub := sse.NewHub()
	t.Cleanup(func() { hub.Close() })

	ledger := memory.NewLedgerRepository(store)
	worktimeSvc := worktimeService.NewWorktimeService(tx, loc, daily, summaries, rules, memory.NewHolidayRepository(store), periods,
		leaveService.NewEarnedBank(ledger, summaries))
	attendanceSvc := attendanceService.NewAttendanceService(tx, loc, attendanceService.DefaultReconcileOptions(), employees,
		memory.NewEventRepository(store), daily, memory.NewImportBatchRepository(store), worktimeSvc, archive)
	settlementSvc := settlementService.NewSettlementService(tx, periods, memory.NewSettlementRepository(store),
		memory.NewNightPayRepository(store), summaries, rules, worktimeSvc, employees, lock.NewLocalLocker(), mq.Fanout{&mq.RecordingPublisher{}, hub}, archive)
	leaveSvc := leaveService.NewLeaveService(tx, ledger, summaries, employees)

	jwtSvc := jwt.NewJWTService(handlerTestSecret, "1h")
	router := NewRouter(RouterOptions{AppName: "attendance-engine-test", Env: "test"}, jwtSvc, Handlers{
		Employee:   NewEmployeeHandler(employeeService.NewEmployeeService(employees)),
		Attendance: NewAttendanceHandler(attendanceSvc),
		Worktime:   NewWorktimeHandler(worktimeSvc),
		Settlement: NewSettlementHandler(settlementSvc),
		Leave:      NewLeaveHandler(leaveSvc),
		Events:     NewEventsHandler(hub),
	})

	return &testServer{router: router, jwt: jwtSvc, hub: hub, employeeID: emp.ID}
}

func (s *testServer) token(t *testing.T, claims jwt.Claims) string {
	t.Helper()
	token, _, err := s.jwt.GenerateAccessToken(claims)
	require.NoError(t, err)
	return token
}

func (s *testServer) adminToken(t *testing.T) string {
	return s.token(t, jwt.Claims{Subject: "hr-admin", IsAdmin: true})
}

func (s *testServer) do(t *testing.T, method, path, token, contentType string, body []byte) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var payload map[string]interface{}
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	}
	return rec, payload
}

func data(t *testing.T, payload map[string]interface{}) map[string]interface{} {
	t.Helper()
	d, ok := payload["data"].(map[string]interface{})
	require.True(t, ok, "response has no data object: %v", payload)
	return d
}

func TestRouter_RequiresToken(t *testing.T) {
	s := newTestServer(t)

	rec, _ := s.do(t, http.MethodGet, "/api/v1/holidays", "", "", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_ImportThenReadSummary(t *testing.T) {
	s := newTestServer(t)
	admin := s.adminToken(t)

	payload := strings.Join([]string{
		"2025. 6. 19.\t오전 9:00:00\t이재혁\t\t사원\t정규\t출근\t웹",
		"2025. 6. 19.\t오후 4:30:00\t이재혁\t\t사원\t정규\t퇴근\t웹",
	}, "\n")
	rec, body := s.do(t, http.MethodPost, "/api/v1/attendance/imports", admin, "text/plain", []byte(payload))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	result := data(t, body)
	assert.Equal(t, float64(1), result["reconciled_days"])
	assert.Equal(t, float64(2), result["new_events"])

	rec, body = s.do(t, http.MethodGet, "/api/v1/worktime/summaries/"+s.employeeID+"/2025-06-19", admin, "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	summary := data(t, body)
	assert.Equal(t, "6.5", summary["basic_hours"])
	assert.Equal(t, "normal", summary["status"])

	rec, body = s.do(t, http.MethodGet, "/api/v1/attendance/daily/"+s.employeeID+"/2025-06-19", admin, "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, data(t, body)["events"], 2)
}

func TestRouter_SelfOrAdmin(t *testing.T) {
	s := newTestServer(t)
	own := s.employeeID
	self := s.token(t, jwt.Claims{Subject: "employee", EmployeeID: &own})

	rec, _ := s.do(t, http.MethodGet, "/api/v1/leave/balances/"+own, self, "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = s.do(t, http.MethodGet, "/api/v1/leave/balances/0188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b", self, "", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = s.do(t, http.MethodPost, "/api/v1/leave/balances/"+own+"/grant", self, "application/json", []byte(`{"kind":"annual","days":"15"}`))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRouter_MalformedIDIsNotFound(t *testing.T) {
	s := newTestServer(t)
	admin := s.adminToken(t)

	for _, path := range []string{
		"/api/v1/employees/not-a-uuid",
		"/api/v1/leave/balances/123",
		"/api/v1/worktime/monthly/abc?year=2025&month=6",
		"/api/v1/settlement/periods/42",
	} {
		rec, _ := s.do(t, http.MethodGet, path, admin, "", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
}

func TestRouter_LeaveDebitRejectionIsNotAnError(t *testing.T) {
	s := newTestServer(t)
	admin := s.adminToken(t)
	path := "/api/v1/leave/balances/" + s.employeeID

	rec, _ := s.do(t, http.MethodPost, path+"/grant", admin, "application/json", []byte(`{"kind":"annual","days":"1"}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec, body := s.do(t, http.MethodPost, path+"/debit", admin, "application/json", []byte(`{"kind":"annual","hours":"12"}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	result := data(t, body)
	assert.Equal(t, false, result["approved"])
	assert.Equal(t, "insufficient_balance", result["reason"])
}

func TestRouter_SettlementRunTwiceConflicts(t *testing.T) {
	s := newTestServer(t)
	admin := s.adminToken(t)

	rec, body := s.do(t, http.MethodPost, "/api/v1/settlement/periods", admin, "application/json",
		[]byte(`{"name":"2025 Q3","start_month":"2025-07","end_month":"2025-09"}`))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	periodID, _ := data(t, body)["id"].(string)
	require.NotEmpty(t, periodID)

	base := "/api/v1/settlement/periods/" + periodID
	rec, _ = s.do(t, http.MethodPost, base+"/run", admin, "", nil)
	assert.Equal(t, http.StatusConflict, rec.Code, "planned periods cannot be settled")

	rec, _ = s.do(t, http.MethodPost, base+"/activate", admin, "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec, _ = s.do(t, http.MethodPost, base+"/run", admin, "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec, _ = s.do(t, http.MethodPost, base+"/run", admin, "", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = s.do(t, http.MethodPost, "/api/v1/settlement/periods", admin, "application/json",
		[]byte(`{"name":"too long","start_month":"2025-10","end_month":"2026-03"}`))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestRouter_SettlementRequiresAdmin(t *testing.T) {
	s := newTestServer(t)
	own := s.employeeID
	self := s.token(t, jwt.Claims{Subject: "employee", EmployeeID: &own})

	rec, _ := s.do(t, http.MethodGet, "/api/v1/settlement/periods", self, "", nil)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRouter_SettlementEventStream(t *testing.T) {
	s := newTestServer(t)
	admin := s.adminToken(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/settlement/events?jwt="+admin, nil)
	stream := httptest.NewRecorder()
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.router.ServeHTTP(stream, req)
	}()
	require.Eventually(t, func() bool { return s.hub.SubscriberCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	rec, body := s.do(t, http.MethodPost, "/api/v1/settlement/periods", admin, "application/json",
		[]byte(`{"name":"2025 Q3","start_month":"2025-07","end_month":"2025-09"}`))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	periodID, _ := data(t, body)["id"].(string)
	base := "/api/v1/settlement/periods/" + periodID
	rec, _ = s.do(t, http.MethodPost, base+"/activate", admin, "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec, _ = s.do(t, http.MethodPost, base+"/run", admin, "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Closing the hub drains buffered events and ends the stream.
	require.NoError(t, s.hub.Close())
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not end after hub close")
	}

	out := stream.Body.String()
	assert.Equal(t, "text/event-stream", stream.Header().Get("Content-Type"))
	assert.Contains(t, out, "event: connected\n")
	assert.Contains(t, out, "event: settlement.completed\n")
	assert.Contains(t, out, `"period_id":"`+periodID+`"`)
}

func TestRouter_SettlementEventStreamRequiresAdmin(t *testing.T) {
	s := newTestServer(t)
	own := s.employeeID
	self := s.token(t, jwt.Claims{Subject: "employee", EmployeeID: &own})

	rec, _ := s.do(t, http.MethodGet, "/api/v1/settlement/events?jwt="+self, "", "", nil)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, 0, s.hub.SubscriberCount())
}
