package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"projecttracker/internal/changefeed"
	"projecttracker/internal/database"
	"projecttracker/internal/domain"
	"projecttracker/internal/modules/live"
	"projecttracker/internal/modules/tracker"
	jwtsvc "projecttracker/internal/pkg/jwt"
	"projecttracker/internal/pkg/logger"
	"projecttracker/internal/repository"
)

const adminPassword = "letmein"

type E2ETestSuite struct {
	router *gin.Engine
	ctrl   *tracker.Controller
	live   *live.Hub
}

type TestResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *ErrorDetail    `json:"error,omitempty"`
}

type ErrorDetail struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func setupTestSuite(t *testing.T) *E2ETestSuite {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logger.Discard()

	db, err := database.Connect("file:"+uuid.NewString()+"?mode=memory&cache=shared", log)
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(db))

	hub := changefeed.NewHub()
	require.NoError(t, changefeed.RegisterGormHooks(db, hub))
	store := repository.NewStore(db)
	store.OnCommit(hub.Touch)

	ctrl := tracker.NewController(store, hub, log)
	require.NoError(t, ctrl.Start(context.Background()))

	liveHub := live.NewHub(log, nil)
	unwatch := liveHub.Watch(ctrl)

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.MinCost)
	require.NoError(t, err)

	t.Cleanup(func() {
		unwatch()
		liveHub.Close()
		_ = ctrl.Close()
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	return &E2ETestSuite{
		router: NewRouter(Deps{
			Controller: ctrl,
			Live:       liveHub,
			JWT:        jwtsvc.New("test_secret_key_32_characters_min", time.Hour),
			AdminHash:  hash,
			Log:        log,
		}),
		ctrl: ctrl,
		live: liveHub,
	}
}

func (s *E2ETestSuite) makeRequest(t *testing.T, method, path string, body any, token string) (*httptest.ResponseRecorder, *TestResponse) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var resp TestResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w, &resp
}

func decode[T any](t *testing.T, resp *TestResponse) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(resp.Data, &v), string(resp.Data))
	return v
}

// eventually polls GET path until ok accepts the body. Writes made through the API
// are also announced by the change feed, whose reloads land asynchronously.
func (s *E2ETestSuite) eventually(t *testing.T, path string, ok func(*TestResponse) bool) {
	t.Helper()
	require.Eventually(t, func() bool {
		w, resp := s.makeRequest(t, http.MethodGet, path, nil, "")
		return w.Code == http.StatusOK && ok(resp)
	}, 2*time.Second, 10*time.Millisecond)
}

func (s *E2ETestSuite) login(t *testing.T) string {
	t.Helper()
	w, resp := s.makeRequest(t, http.MethodPost, "/api/v1/admin/login", map[string]string{"password": adminPassword}, "")
	require.Equal(t, http.StatusOK, w.Code)
	out := decode[tracker.LoginResponse](t, resp)
	require.NotEmpty(t, out.Token)
	return out.Token
}

func TestHealth(t *testing.T) {
	s := setupTestSuite(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
	assert.Contains(t, w.Body.String(), string(tracker.StateReady))
}

func TestFlow_ProjectProgressRollsUp(t *testing.T) {
	s := setupTestSuite(t)

	var client domain.Client
	t.Run("POST /clients", func(t *testing.T) {
		w, resp := s.makeRequest(t, http.MethodPost, "/api/v1/clients", map[string]any{"name": "Acme", "location": "Austin"}, "")
		require.Equal(t, http.StatusCreated, w.Code)
		client = decode[domain.Client](t, resp)
		assert.NotEmpty(t, client.ID)
	})

	var supplier domain.Supplier
	t.Run("POST /suppliers", func(t *testing.T) {
		w, resp := s.makeRequest(t, http.MethodPost, "/api/v1/suppliers", map[string]any{"name": "Apex Steel", "rating": 4}, "")
		require.Equal(t, http.StatusCreated, w.Code)
		supplier = decode[domain.Supplier](t, resp)
	})

	var project domain.Project
	t.Run("POST /projects", func(t *testing.T) {
		w, resp := s.makeRequest(t, http.MethodPost, "/api/v1/projects", map[string]any{
			"name": "Tower", "clientId": client.ID, "status": domain.ProjectInProgress,
		}, "")
		require.Equal(t, http.StatusCreated, w.Code)
		project = decode[domain.Project](t, resp)
	})

	var order domain.PurchaseOrder
	t.Run("POST /purchase-orders", func(t *testing.T) {
		w, resp := s.makeRequest(t, http.MethodPost, "/api/v1/purchase-orders", map[string]any{
			"poNumber": "PO-1", "projectId": project.ID, "supplierId": supplier.ID,
			"parts": []map[string]any{
				{"name": "Bolt", "quantity": 10, "progress": 20},
				{"name": "Nut", "quantity": 10, "progress": 40},
			},
		}, "")
		require.Equal(t, http.StatusCreated, w.Code)
		order = decode[domain.PurchaseOrder](t, resp)
		require.Len(t, order.Parts, 2)
	})

	t.Run("GET /projects/:id/summary", func(t *testing.T) {
		var sum tracker.ProjectSummaryResponse
		s.eventually(t, "/api/v1/projects/"+project.ID+"/summary", func(resp *TestResponse) bool {
			sum = decode[tracker.ProjectSummaryResponse](t, resp)
			return sum.Project.Progress == 30
		})
		assert.Equal(t, 30, sum.Progress)
		assert.Equal(t, []string{"PO-1"}, sum.PONumbers)
		assert.Equal(t, 1, sum.PurchaseOrders)
	})

	t.Run("PATCH /purchase-orders/:id with parts", func(t *testing.T) {
		parts := order.Parts
		for i := range parts {
			parts[i].Progress = domain.Ptr(100)
		}
		w, _ := s.makeRequest(t, http.MethodPatch, "/api/v1/purchase-orders/"+order.ID, map[string]any{"parts": parts}, "")
		require.Equal(t, http.StatusOK, w.Code)

		s.eventually(t, "/api/v1/purchase-orders/"+order.ID, func(resp *TestResponse) bool {
			return decode[domain.PurchaseOrder](t, resp).ProgressOrZero() == 100
		})
		s.eventually(t, "/api/v1/projects/"+project.ID, func(resp *TestResponse) bool {
			return decode[domain.Project](t, resp).Progress == 100
		})
	})

	t.Run("DELETE /clients/:id with an active project", func(t *testing.T) {
		w, resp := s.makeRequest(t, http.MethodDelete, "/api/v1/clients/"+client.ID, nil, "")
		assert.Equal(t, http.StatusConflict, w.Code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "CLIENT_HAS_ACTIVE_PROJECTS", resp.Error.Code)
	})

	t.Run("DELETE /suppliers/:id still referenced", func(t *testing.T) {
		w, resp := s.makeRequest(t, http.MethodDelete, "/api/v1/suppliers/"+supplier.ID, nil, "")
		assert.Equal(t, http.StatusConflict, w.Code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "REFERENCE_VIOLATION", resp.Error.Code)
	})
}

func TestFlow_ValidationUsesJSONPaths(t *testing.T) {
	s := setupTestSuite(t)

	w, resp := s.makeRequest(t, http.MethodPost, "/api/v1/purchase-orders", map[string]any{
		"poNumber": "PO-1", "projectId": "p", "supplierId": "s",
		"parts": []map[string]any{{"name": "Bolt", "quantity": 0}},
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Contains(t, resp.Error.Details, "parts[0].quantity")
}

func TestFlow_AdminClearAll(t *testing.T) {
	s := setupTestSuite(t)
	w, _ := s.makeRequest(t, http.MethodPost, "/api/v1/clients", map[string]any{"name": "Acme"}, "")
	require.Equal(t, http.StatusCreated, w.Code)

	t.Run("wrong password", func(t *testing.T) {
		w, resp := s.makeRequest(t, http.MethodPost, "/api/v1/admin/login", map[string]string{"password": "nope"}, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "INVALID_CREDENTIALS", resp.Error.Code)
	})

	t.Run("no token", func(t *testing.T) {
		w, resp := s.makeRequest(t, http.MethodDelete, "/api/v1/admin/data", nil, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "AUTH_HEADER_MISSING", resp.Error.Code)
		assert.Len(t, s.ctrl.Clients(), 1)
	})

	t.Run("admin token", func(t *testing.T) {
		w, _ := s.makeRequest(t, http.MethodDelete, "/api/v1/admin/data", nil, s.login(t))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, s.ctrl.Clients())

		w, resp := s.makeRequest(t, http.MethodGet, "/api/v1/clients", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, decode[[]domain.Client](t, resp))
	})
}

func TestFlow_LiveEventsFollowMutations(t *testing.T) {
	s := setupTestSuite(t)
	srv := httptest.NewServer(s.router)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.Eventually(t, func() bool { return s.live.Count() == 1 }, time.Second, 5*time.Millisecond)

	w, _ := s.makeRequest(t, http.MethodPost, "/api/v1/clients", map[string]any{"name": "Acme"}, "")
	require.Equal(t, http.StatusCreated, w.Code)

	// the feed reload may announce the same table again; any clients event will do
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var e live.Event
		require.NoError(t, conn.ReadJSON(&e))
		if e.Collection == repository.TableClients {
			assert.Equal(t, live.EventCollectionChanged, e.Type)
			return
		}
	}
}
