package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/shift-engine/api"
	"github.com/warp/shift-engine/auth"
	"github.com/warp/shift-engine/exchange"
	"github.com/warp/shift-engine/schedule"
	"github.com/warp/shift-engine/schedule/store"
)

// =============================================================================
// TEST HARNESS
// =============================================================================

// The week of 2026-02-15 (Sunday) through 2026-02-21 (Saturday).
var (
	sunday   = schedule.MustDate("2026-02-15")
	monday   = schedule.MustDate("2026-02-16")
	tuesday  = schedule.MustDate("2026-02-17")
	thursday = schedule.MustDate("2026-02-19")
)

type harness struct {
	server *httptest.Server
	store  *store.Memory

	adminToken string
	aliceToken string
	adminID    schedule.StaffID
	aliceID    schedule.StaffID
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	mem := store.NewMemory()
	ctx := context.Background()

	hash, err := auth.HashPassword("hunter2hunter2")
	require.NoError(t, err)

	seed := func(username string, role schedule.Role) schedule.StaffID {
		s := &schedule.Staff{
			Username:     username,
			FullName:     username,
			Role:         role,
			JobTitle:     "Care Assistant",
			IsActive:     true,
			PasswordHash: hash,
		}
		require.NoError(t, mem.CreateStaff(ctx, s))
		return s.ID
	}

	h := &harness{store: mem}
	h.adminID = seed("admin", schedule.RoleAdmin)
	h.aliceID = seed("alice", schedule.RoleStaff)

	authSvc := auth.NewService(mem, auth.NewTokenIssuer([]byte("test-secret")))
	exchangeSvc := exchange.New(mem, nil, zerolog.Nop())
	handler := api.NewHandler(mem, exchangeSvc, authSvc, zerolog.Nop())
	h.server = httptest.NewServer(api.NewRouter(handler))
	t.Cleanup(h.server.Close)

	h.adminToken = h.login(t, "admin", "hunter2hunter2")
	h.aliceToken = h.login(t, "alice", "hunter2hunter2")
	return h
}

func (h *harness) login(t *testing.T, username, password string) string {
	t.Helper()
	resp := h.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotEmpty(t, body.Token)
	return body.Token
}

func (h *harness) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, h.server.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := h.server.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func (h *harness) assignShift(t *testing.T, date schedule.Date, typ schedule.ShiftType, staffID schedule.StaffID) schedule.ShiftID {
	t.Helper()
	id := staffID
	s := &schedule.Shift{Date: date, Type: typ, AssignedTo: &id, CreatedBy: h.adminID}
	require.NoError(t, h.store.CreateShift(context.Background(), s))
	return s.ID
}

// =============================================================================
// AUTH MAPPING
// =============================================================================

func TestLoginRejectsBadPassword(t *testing.T) {
	h := newHarness(t)

	resp := h.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "alice", "password": "wrong",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMissingTokenIsUnauthorized(t *testing.T) {
	h := newHarness(t)

	for _, path := range []string{"/api/auth/me", "/api/shifts/", "/api/dashboard"} {
		resp := h.do(t, http.MethodGet, path, "", nil)
		resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "GET %s", path)
	}

	resp := h.do(t, http.MethodGet, "/api/auth/me", "not-a-real-token", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAdminRoutesForbiddenForStaff(t *testing.T) {
	h := newHarness(t)

	resp := h.do(t, http.MethodPost, "/api/shifts/", h.aliceToken, api.CreateShiftRequest{
		Date: monday.String(), Type: "morning", IsOpen: true,
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = h.do(t, http.MethodPost, "/api/staff/", h.aliceToken, api.CreateStaffRequest{
		Username: "mallory", FullName: "Mallory",
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestMeReturnsCaller(t *testing.T) {
	h := newHarness(t)

	resp := h.do(t, http.MethodGet, "/api/auth/me", h.aliceToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	me := decode[api.StaffDTO](t, resp)
	assert.Equal(t, int64(h.aliceID), me.ID)
	assert.Equal(t, "alice", me.Username)
}

// =============================================================================
// STAFF ADMIN
// =============================================================================

func TestCreateStaffReturnsTempPassword(t *testing.T) {
	h := newHarness(t)

	resp := h.do(t, http.MethodPost, "/api/staff/", h.adminToken, api.CreateStaffRequest{
		Username: "bob", FullName: "Bob", JobTitle: "Care Assistant",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[api.CreateStaffResponse](t, resp)
	assert.NotEmpty(t, created.TempPassword)
	assert.Equal(t, "staff", created.Staff.Role)

	// The one-time password works and forces a change.
	loginResp := h.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "bob", "password": created.TempPassword,
	})
	require.Equal(t, http.StatusOK, loginResp.StatusCode)
	login := decode[api.LoginResponse](t, loginResp)
	assert.True(t, login.MustChangePassword)
}

func TestCreateStaffRejectsReservedUsername(t *testing.T) {
	h := newHarness(t)

	resp := h.do(t, http.MethodPost, "/api/staff/", h.adminToken, api.CreateStaffRequest{
		Username: schedule.OpenShiftUsername, FullName: "Sneaky",
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetStaffNotFound(t *testing.T) {
	h := newHarness(t)

	resp := h.do(t, http.MethodGet, "/api/staff/9999", h.aliceToken, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// =============================================================================
// DOMAIN ERROR MAPPING
// =============================================================================

func TestCreateShiftDuplicateSlotIsBadRequest(t *testing.T) {
	h := newHarness(t)
	body := api.CreateShiftRequest{Date: monday.String(), Type: "morning", IsOpen: true}

	resp := h.do(t, http.MethodPost, "/api/shifts/", h.adminToken, body)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = h.do(t, http.MethodPost, "/api/shifts/", h.adminToken, body)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCapExceededCarriesHourDetails(t *testing.T) {
	h := newHarness(t)

	// Alice at 36 hours; assigning a fourth overnight projects to 48.
	h.assignShift(t, sunday, schedule.ShiftOvernight, h.aliceID)
	h.assignShift(t, monday, schedule.ShiftOvernight, h.aliceID)
	h.assignShift(t, tuesday, schedule.ShiftOvernight, h.aliceID)

	aliceID := int64(h.aliceID)
	resp := h.do(t, http.MethodPost, "/api/shifts/", h.adminToken, api.CreateShiftRequest{
		Date: thursday.String(), Type: "overnight", AssignedTo: &aliceID,
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decode[struct {
		Error   string            `json:"error"`
		Details api.HoursCheckDTO `json:"details"`
	}](t, resp)
	assert.True(t, body.Details.WouldExceed)
	assert.Equal(t, "36.0", body.Details.CurrentHours)
	assert.Equal(t, "48.0", body.Details.ProjectedHours)
}

func TestTradeResponseByNonTargetIsForbidden(t *testing.T) {
	h := newHarness(t)
	mine := h.assignShift(t, monday, schedule.ShiftMorning, h.aliceID)
	theirs := h.assignShift(t, tuesday, schedule.ShiftMorning, h.adminID)

	resp := h.do(t, http.MethodPost, "/api/trade-requests/", h.aliceToken, api.CreateTradeRequest{
		RequesterShiftID: int64(mine), TargetShiftID: int64(theirs),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	trade := decode[api.TradeRequestDTO](t, resp)

	// Alice is the requester; she cannot answer her own proposal.
	resp = h.do(t, http.MethodPost, fmt.Sprintf("/api/trade-requests/%d/approve", trade.ID), h.aliceToken, api.DecisionRequest{})
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestApproveMissingShiftRequestIsNotFound(t *testing.T) {
	h := newHarness(t)

	resp := h.do(t, http.MethodPost, "/api/shift-requests/4242/approve", h.adminToken, api.DecisionRequest{})
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// =============================================================================
// REQUEST FLOW
// =============================================================================

func TestShiftRequestFlowOverHTTP(t *testing.T) {
	h := newHarness(t)

	resp := h.do(t, http.MethodPost, "/api/shifts/", h.adminToken, api.CreateShiftRequest{
		Date: monday.String(), Type: "morning", IsOpen: true,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	shift := decode[api.ShiftDTO](t, resp)

	resp = h.do(t, http.MethodPost, "/api/shift-requests/", h.aliceToken, api.CreateShiftRequestRequest{
		ShiftID: shift.ID,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	req := decode[api.ShiftRequestDTO](t, resp)
	assert.Equal(t, "pending", req.Status)

	// Staff cannot approve their own bid.
	resp = h.do(t, http.MethodPost, fmt.Sprintf("/api/shift-requests/%d/approve", req.ID), h.aliceToken, api.DecisionRequest{})
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = h.do(t, http.MethodPost, fmt.Sprintf("/api/shift-requests/%d/approve", req.ID), h.adminToken, api.DecisionRequest{Note: "ok"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	approved := decode[api.ShiftRequestDTO](t, resp)
	assert.Equal(t, "approved", approved.Status)

	// The calendar now shows the shift assigned and closed.
	resp = h.do(t, http.MethodGet, "/api/shifts/?from="+sunday.String()+"&to="+thursday.String(), h.aliceToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	shifts := decode[[]api.ShiftDTO](t, resp)
	require.Len(t, shifts, 1)
	assert.False(t, shifts[0].IsOpen)
	require.NotNil(t, shifts[0].AssignedTo)
	assert.Equal(t, int64(h.aliceID), *shifts[0].AssignedTo)
	assert.Equal(t, "8.0", shifts[0].RunningHours)
}

func TestStaffSeeOnlyTheirOwnRequests(t *testing.T) {
	h := newHarness(t)

	open := &schedule.Shift{Date: monday, Type: schedule.ShiftMorning, IsOpen: true, CreatedBy: h.adminID}
	require.NoError(t, h.store.CreateShift(context.Background(), open))
	open2 := &schedule.Shift{Date: tuesday, Type: schedule.ShiftMorning, IsOpen: true, CreatedBy: h.adminID}
	require.NoError(t, h.store.CreateShift(context.Background(), open2))

	resp := h.do(t, http.MethodPost, "/api/shift-requests/", h.aliceToken, api.CreateShiftRequestRequest{ShiftID: int64(open.ID)})
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp = h.do(t, http.MethodPost, "/api/shift-requests/", h.adminToken, api.CreateShiftRequestRequest{ShiftID: int64(open2.ID)})
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = h.do(t, http.MethodGet, "/api/shift-requests/", h.aliceToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	mine := decode[[]api.ShiftRequestDTO](t, resp)
	require.Len(t, mine, 1)
	assert.Equal(t, int64(h.aliceID), mine[0].RequesterID)

	resp = h.do(t, http.MethodGet, "/api/shift-requests/", h.adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	all := decode[[]api.ShiftRequestDTO](t, resp)
	assert.Len(t, all, 2)
}

// =============================================================================
// DASHBOARD
// =============================================================================

func TestDashboardIsRoleDependent(t *testing.T) {
	h := newHarness(t)

	open := &schedule.Shift{Date: monday, Type: schedule.ShiftMorning, IsOpen: true, CreatedBy: h.adminID}
	require.NoError(t, h.store.CreateShift(context.Background(), open))
	resp := h.do(t, http.MethodPost, "/api/shift-requests/", h.aliceToken, api.CreateShiftRequestRequest{ShiftID: int64(open.ID)})
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = h.do(t, http.MethodGet, "/api/dashboard", h.adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	adminDash := decode[api.AdminDashboardDTO](t, resp)
	assert.Equal(t, 1, adminDash.PendingShiftRequests)

	resp = h.do(t, http.MethodGet, "/api/dashboard", h.aliceToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	staffDash := decode[api.StaffDashboardDTO](t, resp)
	assert.Equal(t, "40.0", staffDash.WeeklyCap)
	assert.Equal(t, 1, staffDash.PendingRequests)
}
