package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/shift-ledger/backend/internal/config"
	"github.com/sysu-ecnc-dev/shift-ledger/backend/internal/storage"
	"github.com/sysu-ecnc-dev/shift-ledger/backend/internal/store"
)

func TestMain(m *testing.M) {
	// 与线上各个二进制保持一致，金额输出为裸数字
	decimal.MarshalJSONWithoutQuotes = true
	os.Exit(m.Run())
}

type testResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestHandler(t *testing.T) *Handler {
	t.Helper()

	cfg := &config.Config{}
	cfg.Environment = "development"
	cfg.InitialAdmin.Username = "admin"
	cfg.InitialAdmin.Password = "123"
	cfg.InitialAdmin.Name = "系统管理员"
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.Expiration = 3600
	cfg.RabbitMQ.PublishTimeout = 1

	st := store.NewStore(cfg, storage.NewMemoryProvider())

	h, err := NewHandler(cfg, st, nil)
	require.NoError(t, err)
	h.RegisterRoutes()

	return h
}

func doJSON(t *testing.T, h *Handler, method string, path string, body string, cookies []*http.Cookie) (*httptest.ResponseRecorder, testResponse) {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	h.Mux.ServeHTTP(rec, req)

	resp := testResponse{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func login(t *testing.T, h *Handler, username string, password string) []*http.Cookie {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"`+username+`","password":"`+password+`"}`))
	rec := httptest.NewRecorder()
	h.Mux.ServeHTTP(rec, req)

	resp := testResponse{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success, "登录失败: %s", resp.Message)

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies
}

func TestLoginWrongPassword(t *testing.T) {
	h := newTestHandler(t)

	_, resp := doJSON(t, h, http.MethodPost, "/auth/login", `{"username":"admin","password":"wrong"}`, nil)
	assert.False(t, resp.Success)
	assert.Equal(t, "用户名不存在或密码错误", resp.Message)
}

func TestRequiresLogin(t *testing.T) {
	h := newTestHandler(t)

	_, resp := doJSON(t, h, http.MethodGet, "/users", "", nil)
	assert.False(t, resp.Success)
	assert.Equal(t, "用户未登录", resp.Message)
}

func TestSessionPointerLifecycle(t *testing.T) {
	h := newTestHandler(t)

	_, resp := doJSON(t, h, http.MethodGet, "/auth/session", "", nil)
	assert.False(t, resp.Success)

	cookies := login(t, h, "admin", "123")

	_, resp = doJSON(t, h, http.MethodGet, "/auth/session", "", nil)
	require.True(t, resp.Success)

	_, resp = doJSON(t, h, http.MethodPost, "/auth/logout", "", cookies)
	require.True(t, resp.Success)

	_, resp = doJSON(t, h, http.MethodGet, "/auth/session", "", nil)
	assert.False(t, resp.Success)
}

func TestCreateUserRequiresAdmin(t *testing.T) {
	h := newTestHandler(t)
	adminCookies := login(t, h, "admin", "123")

	_, resp := doJSON(t, h, http.MethodPost, "/users", `{"username":"wangwei1","name":"王伟","password":"123456","role":"收银员"}`, adminCookies)
	require.True(t, resp.Success, resp.Message)

	cashierCookies := login(t, h, "wangwei1", "123456")
	_, resp = doJSON(t, h, http.MethodPost, "/users", `{"username":"lijie2","name":"李杰","password":"123456","role":"收银员"}`, cashierCookies)
	assert.False(t, resp.Success)
	assert.Equal(t, "权限不足", resp.Message)
}

func TestCreateUserDuplicate(t *testing.T) {
	h := newTestHandler(t)
	cookies := login(t, h, "admin", "123")

	_, resp := doJSON(t, h, http.MethodPost, "/users", `{"username":"wangwei1","name":"王伟","password":"123456","role":"收银员"}`, cookies)
	require.True(t, resp.Success, resp.Message)

	_, resp = doJSON(t, h, http.MethodPost, "/users", `{"username":"wangwei1","name":"李杰","password":"123456","role":"收银员"}`, cookies)
	assert.False(t, resp.Success)
	assert.Equal(t, "用户名已存在", resp.Message)
}

func TestDeleteProtectedAdmin(t *testing.T) {
	h := newTestHandler(t)
	cookies := login(t, h, "admin", "123")

	_, resp := doJSON(t, h, http.MethodDelete, "/users/1", "", cookies)
	assert.False(t, resp.Success)
	assert.Equal(t, "禁止删除初始管理员", resp.Message)
}

func TestCreateShiftAndHistory(t *testing.T) {
	h := newTestHandler(t)
	cookies := login(t, h, "admin", "123")

	body := `{
		"startingCash": 500,
		"cashSales": 600,
		"cardSales": 400,
		"transferSales": 100,
		"expenses": 150,
		"externalSystemData": 1100,
		"actualCash": 900,
		"notes": "测试班次"
	}`
	_, resp := doJSON(t, h, http.MethodPost, "/shifts", body, cookies)
	require.True(t, resp.Success, resp.Message)

	var created struct {
		Shift struct {
			ID           string      `json:"id"`
			UserName     string      `json:"userName"`
			ExpectedCash json.Number `json:"expectedCash"`
			Discrepancy  json.Number `json:"discrepancy"`
		} `json:"shift"`
		MatchStatus string `json:"matchStatus"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &created))

	// expectedCash = 500 + 600 - 150 = 950; discrepancy = 900 - 950 = -50
	assert.Equal(t, "系统管理员", created.Shift.UserName)
	assert.Equal(t, "950", created.Shift.ExpectedCash.String())
	assert.Equal(t, "-50", created.Shift.Discrepancy.String())
	// systemTotal 1000 < external 1100，相对外部系统为短缺
	assert.Equal(t, "短缺", created.MatchStatus)

	_, resp = doJSON(t, h, http.MethodGet, "/shifts?userId=all", "", cookies)
	require.True(t, resp.Success, resp.Message)

	var history struct {
		Shifts []struct {
			ID string `json:"id"`
		} `json:"shifts"`
		Summary struct {
			TotalShortage json.Number `json:"totalShortage"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &history))
	require.Len(t, history.Shifts, 1)
	assert.Equal(t, created.Shift.ID, history.Shifts[0].ID)
	assert.Equal(t, "50", history.Summary.TotalShortage.String())
}

func TestImportBackup(t *testing.T) {
	h := newTestHandler(t)
	cookies := login(t, h, "admin", "123")

	// users 键缺失时判定备份无效，现有数据不被替换
	_, resp := doJSON(t, h, http.MethodPost, "/backup/import", `{"shifts": []}`, cookies)
	assert.False(t, resp.Success)
	assert.Equal(t, "备份文件无效，请确认文件正确且未被修改", resp.Message)

	doc := `{
		"users": [{"id": "1", "username": "admin", "name": "系统管理员", "password": "123", "role": "管理员"}],
		"exportDate": "2024-01-10T10:00:00Z",
		"systemVersion": "1.1"
	}`
	_, resp = doJSON(t, h, http.MethodPost, "/backup/import", doc, cookies)
	require.True(t, resp.Success, resp.Message)

	var result struct {
		UserCount  int `json:"userCount"`
		ShiftCount int `json:"shiftCount"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &result))
	assert.Equal(t, 1, result.UserCount)
	assert.Equal(t, 0, result.ShiftCount)
}

func TestExportBackupIsRawJSON(t *testing.T) {
	h := newTestHandler(t)
	cookies := login(t, h, "admin", "123")

	req := httptest.NewRequest(http.MethodGet, "/backup/export", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.Mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")

	var doc struct {
		Users         []json.RawMessage `json:"users"`
		Shifts        []json.RawMessage `json:"shifts"`
		SystemVersion string            `json:"systemVersion"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Len(t, doc.Users, 1)
	assert.Equal(t, "1.1", doc.SystemVersion)
}
