package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"acqplan/internal/config"
	"acqplan/internal/model"
	"acqplan/internal/repository"
	"acqplan/internal/service"
	"acqplan/internal/testutil"
	"acqplan/internal/workflow"
)

type apiEnv struct {
	db     *gorm.DB
	svc    *service.Services
	router http.Handler

	deptA, deptB *model.Department
	requester    string
	manager      string
	otherManager string
	approver     string
	admin        string
	adminUser    *model.User
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()
	db := testutil.NewDB(t)
	cfg := &config.Config{
		JWT:  config.JWTConfig{Secret: testutil.JWTSecret, AccessTokenExpire: time.Hour, Issuer: "acqplan-test"},
		CORS: config.CORSConfig{AllowOrigins: []string{"http://localhost:5173"}},
	}
	svc := service.NewServices(db, nil, cfg.JWT, zap.NewNop())

	env := &apiEnv{
		db:     db,
		svc:    svc,
		router: NewRouter(cfg, zap.NewNop(), svc, repository.NewUserRepository(db)),
	}
	env.deptA = testutil.CreateDepartment(t, db, "A", nil)
	env.deptB = testutil.CreateDepartment(t, db, "B", nil)

	token := func(name string, role workflow.Role, dept *model.Department) (string, *model.User) {
		u := testutil.CreateUser(t, db, name, role, dept.ID)
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}).SignedString([]byte(testutil.JWTSecret))
		require.NoError(t, err)
		return signed, u
	}
	env.requester, _ = token("requester", workflow.RoleUser, env.deptA)
	env.manager, _ = token("manager", workflow.RoleManager, env.deptA)
	env.otherManager, _ = token("other-manager", workflow.RoleManager, env.deptB)
	env.approver, _ = token("approver", workflow.RoleApprover, env.deptB)
	env.admin, env.adminUser = token("admin", workflow.RoleAdmin, env.deptB)
	return env
}

func (e *apiEnv) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	return testutil.DoRequest(e.router, method, path, body, token)
}

func requestBody(items ...map[string]any) map[string]any {
	return map[string]any{
		"description":   "Monitors for the operations room",
		"justification": "Current screens are failing",
		"items":         items,
	}
}

func lineItem(name string, qty int, unit float64, acquisitionType string) map[string]any {
	return map[string]any{
		"item_name":        name,
		"quantity":         qty,
		"unit_value":       unit,
		"acquisition_type": acquisitionType,
	}
}

// createRequest posts a valid request as the requester and returns its id.
func (e *apiEnv) createRequest(t *testing.T) string {
	t.Helper()
	w := e.do(http.MethodPost, "/api/requests", requestBody(lineItem("Monitor", 2, 500, "PURCHASE")), e.requester)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var res service.RequestResponse
	testutil.Decode(t, w, &res)
	return res.ID
}

func assertError(t *testing.T, w *httptest.ResponseRecorder, status int) {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
	var body map[string]any
	testutil.Decode(t, w, &body)
	msg, ok := body["error"].(string)
	assert.True(t, ok, "error body must carry an error string: %s", w.Body.String())
	assert.NotEmpty(t, msg)
}

func TestHealthAndAuthGate(t *testing.T) {
	env := newAPIEnv(t)

	w := env.do(http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	assertError(t, env.do(http.MethodGet, "/api/requests", nil, ""), http.StatusUnauthorized)
	assertError(t, env.do(http.MethodGet, "/api/requests", nil, "garbage"), http.StatusUnauthorized)
}

func TestLoginSetsCookie(t *testing.T) {
	env := newAPIEnv(t)
	ctx := context.Background()

	_, err := env.svc.Users.CreateUser(ctx, testutil.ActorOf(env.adminUser), service.CreateUserRequest{
		Name:         "Ana",
		Email:        "Ana@Example.com",
		Password:     "secret123",
		Role:         "USER",
		DepartmentID: env.deptA.ID.String(),
	})
	require.NoError(t, err)

	w := env.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "ana@example.com", "password": "wrong-password"}, "")
	assertError(t, w, http.StatusUnauthorized)

	w = env.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "ana@example.com", "password": "secret123"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Header().Get("Set-Cookie"), "access_token=")

	var login service.LoginResponse
	testutil.Decode(t, w, &login)
	require.NotEmpty(t, login.Token)

	w = env.do(http.MethodGet, "/api/me", nil, login.Token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var me service.UserResponse
	testutil.Decode(t, w, &me)
	assert.Equal(t, "ana@example.com", me.Email)
	assert.Equal(t, env.deptA.ID, me.DepartmentID)
}

func TestCreateRequestValidation(t *testing.T) {
	env := newAPIEnv(t)

	tests := []struct {
		name string
		body map[string]any
	}{
		{"zero quantity", requestBody(lineItem("Monitor", 0, 500, "PURCHASE"))},
		{"unknown acquisition type", requestBody(lineItem("Monitor", 1, 500, "LEASE"))},
		{"negative unit value", requestBody(lineItem("Monitor", 1, -1, "PURCHASE"))},
		{"one bad item among good ones", requestBody(lineItem("Monitor", 1, 500, "PURCHASE"), lineItem("", 1, 10, "RENTAL"))},
		{"no items", requestBody()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertError(t, env.do(http.MethodPost, "/api/requests", tt.body, env.requester), http.StatusBadRequest)
		})
	}

	var count int64
	require.NoError(t, env.db.Model(&model.Request{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestRequestWorkflowOverHTTP(t *testing.T) {
	env := newAPIEnv(t)
	id := env.createRequest(t)
	base := "/api/requests/" + id

	// Invisible to a manager of another department.
	assertError(t, env.do(http.MethodGet, base, nil, env.otherManager), http.StatusNotFound)
	assertError(t, env.do(http.MethodPost, base+"/manager-approve", nil, env.otherManager), http.StatusForbidden)
	// Wrong stage.
	assertError(t, env.do(http.MethodPost, base+"/approve", nil, env.approver), http.StatusConflict)
	// Reason required.
	assertError(t, env.do(http.MethodPost, base+"/manager-reject", map[string]string{"reason": ""}, env.manager), http.StatusBadRequest)

	w := env.do(http.MethodPost, base+"/manager-approve", nil, env.manager)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res service.RequestResponse
	testutil.Decode(t, w, &res)
	assert.Equal(t, "PENDING_APPROVAL", res.Status)
	assert.Equal(t, "AUTHORIZE", res.ManagerStatus)

	w = env.do(http.MethodPost, base+"/approve", nil, env.approver)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	testutil.Decode(t, w, &res)
	assert.Equal(t, "APPROVED", res.Status)

	assertError(t, env.do(http.MethodPut, base+"/reopen", map[string]string{"reopenReason": "short"}, env.admin), http.StatusBadRequest)

	w = env.do(http.MethodPut, base+"/reopen", map[string]string{"reopenReason": "Supplier changed the price"}, env.admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	testutil.Decode(t, w, &res)
	assert.Equal(t, "REOPENED", res.Status)

	w = env.do(http.MethodGet, base+"/history", nil, env.requester)
	require.Equal(t, http.StatusOK, w.Code)
	var history []service.HistoryResponse
	testutil.Decode(t, w, &history)
	assert.Len(t, history, 4)
}

func TestRequestEditAndDeleteGates(t *testing.T) {
	env := newAPIEnv(t)
	id := env.createRequest(t)
	base := "/api/requests/" + id

	edit := requestBody(lineItem("Monitor", 3, 500, "PURCHASE"))
	assertError(t, env.do(http.MethodPut, base+"/edit", edit, env.manager), http.StatusForbidden)

	w := env.do(http.MethodPut, base+"/edit", edit, env.requester)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res service.RequestResponse
	testutil.Decode(t, w, &res)
	assert.True(t, decimal.NewFromInt(1500).Equal(res.TotalValue), res.TotalValue.String())

	require.Equal(t, http.StatusOK, env.do(http.MethodPost, base+"/manager-approve", nil, env.manager).Code)
	assertError(t, env.do(http.MethodDelete, base+"/delete", nil, env.requester), http.StatusConflict)

	w = env.do(http.MethodDelete, base+"/delete", nil, env.admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assertError(t, env.do(http.MethodGet, base, nil, env.admin), http.StatusNotFound)
}

func TestInvalidPathID(t *testing.T) {
	env := newAPIEnv(t)
	assertError(t, env.do(http.MethodGet, "/api/requests/not-a-uuid", nil, env.admin), http.StatusBadRequest)
}

func TestDepartmentRoutes(t *testing.T) {
	env := newAPIEnv(t)

	body := map[string]any{"code": "IT", "name": "Information Technology"}
	assertError(t, env.do(http.MethodPost, "/api/departments", body, env.requester), http.StatusForbidden)

	w := env.do(http.MethodPost, "/api/departments", body, env.admin)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var parent service.DepartmentResponse
	testutil.Decode(t, w, &parent)

	parentID := parent.ID
	w = env.do(http.MethodPost, "/api/departments", map[string]any{"code": "IT-OPS", "name": "Operations", "parent_id": parentID}, env.admin)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var child service.DepartmentResponse
	testutil.Decode(t, w, &child)

	childID := child.ID
	w = env.do(http.MethodPut, "/api/departments/"+parentID, map[string]any{"parent_id": childID}, env.admin)
	assertError(t, w, http.StatusConflict)
	assert.Contains(t, w.Body.String(), "loop")

	assertError(t, env.do(http.MethodPost, "/api/departments", body, env.admin), http.StatusConflict)

	w = env.do(http.MethodGet, "/api/departments?search=Operations", nil, env.requester)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Data  []service.DepartmentResponse `json:"data"`
		Total int64                        `json:"total"`
	}
	testutil.Decode(t, w, &list)
	assert.EqualValues(t, 1, list.Total)
}

func TestDepartmentImportRoute(t *testing.T) {
	env := newAPIEnv(t)

	rows := map[string]any{"rows": []map[string]any{
		{"code": "CHILD", "name": "Child", "parent_code": "ROOT"},
		{"code": "ROOT", "name": "Root"},
		{"code": "", "name": "Missing code"},
	}}
	w := env.do(http.MethodPost, "/api/departments/import", rows, env.admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result service.ImportResult
	testutil.Decode(t, w, &result)
	assert.False(t, result.Success)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 1, result.Skipped)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 4, result.Errors[0].Row)
}

func TestNotificationRoutes(t *testing.T) {
	env := newAPIEnv(t)
	env.createRequest(t)

	w := env.do(http.MethodGet, "/api/notifications/unread-count", nil, env.manager)
	require.Equal(t, http.StatusOK, w.Code)
	var count struct {
		Count int64 `json:"count"`
	}
	testutil.Decode(t, w, &count)
	assert.EqualValues(t, 1, count.Count)

	w = env.do(http.MethodGet, "/api/notifications?unreadOnly=true", nil, env.manager)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Data []service.NotificationResponse `json:"data"`
	}
	testutil.Decode(t, w, &list)
	require.Len(t, list.Data, 1)

	assertError(t, env.do(http.MethodPut, "/api/notifications/"+list.Data[0].ID+"/read", nil, env.requester), http.StatusNotFound)
	require.Equal(t, http.StatusOK, env.do(http.MethodPut, "/api/notifications/"+list.Data[0].ID+"/read", nil, env.manager).Code)

	w = env.do(http.MethodGet, "/api/notifications/unread-count", nil, env.manager)
	testutil.Decode(t, w, &count)
	assert.Zero(t, count.Count)

	require.Equal(t, http.StatusOK, env.do(http.MethodPut, "/api/notifications/read-all", nil, env.manager).Code)
}

func TestAdminOnlyRoutes(t *testing.T) {
	env := newAPIEnv(t)

	for _, path := range []string{"/api/audit-logs", "/api/settings"} {
		assertError(t, env.do(http.MethodGet, path, nil, env.manager), http.StatusForbidden)
		assert.Equal(t, http.StatusOK, env.do(http.MethodGet, path, nil, env.admin).Code, path)
	}
	assertError(t, env.do(http.MethodGet, "/api/audit-logs?from=yesterday", nil, env.admin), http.StatusBadRequest)

	w := env.do(http.MethodPut, "/api/settings", map[string]any{"settings": []map[string]string{{"key": "fiscal_year", "value": "2026"}}}, env.admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(http.MethodGet, "/api/dashboard", nil, env.requester)
	assert.Equal(t, http.StatusOK, w.Code)
}
