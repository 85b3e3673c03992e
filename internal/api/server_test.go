package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mesob/internal/analytics"
	"mesob/internal/config"
	"mesob/internal/database"
	"mesob/internal/live"
	"mesob/internal/logger"
	"mesob/internal/models"
	"mesob/internal/monitoring"
	"mesob/internal/orders"
)

type apiFixture struct {
	t      *testing.T
	server *Server
	db     *gorm.DB
	doro   models.MenuItem
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	path := filepath.Join(t.TempDir(), "api.db")
	db, err := gorm.Open("sqlite3", path+"?_busy_timeout=5000")
	require.NoError(t, err)
	db.DB().SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.Seed(db))

	kitchen := models.Category{
		Name:    models.LocalizedName{EN: "Main Dishes"},
		Station: models.StationKitchen,
	}
	require.NoError(t, db.Create(&kitchen).Error)
	doro := models.MenuItem{
		Name:        models.LocalizedName{EN: "Doro Wat"},
		CategoryID:  kitchen.ID,
		Price:       250,
		IsAvailable: true,
	}
	require.NoError(t, db.Create(&doro).Error)

	cfg := &config.Config{
		Auth: config.AuthConfig{JWTSecret: "test-secret", ExpirySeconds: 3600},
	}
	log, err := logger.New(logger.FATAL, "")
	require.NoError(t, err)
	mon := monitoring.NewMonitor(prometheus.NewRegistry())
	hub := live.NewHub(mon, log)
	ordersSvc := orders.NewService(orders.NewGormStore(db), hub, orders.PolicyForwardOnly, mon, log)
	analyticsSvc := analytics.NewService(db)

	server := NewServer(db, ordersSvc, analyticsSvc, hub, cfg, log)
	return &apiFixture{t: t, server: server, db: db, doro: doro}
}

func (f *apiFixture) addUser(username string, role models.UserRole) models.User {
	f.t.Helper()
	user := models.User{Name: username, Username: username, Role: role}
	require.NoError(f.t, user.SetPIN("1234"))
	require.NoError(f.t, f.db.Create(&user).Error)
	return user
}

func (f *apiFixture) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	f.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(f.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.server.Router.ServeHTTP(w, req)
	return w
}

// login exercises the real endpoint instead of minting tokens directly.
func (f *apiFixture) login(username, pin string) string {
	f.t.Helper()
	w := f.do(http.MethodPost, "/api/v1/users/login", "", gin.H{"username": username, "pin": pin})
	require.Equal(f.t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(f.t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(f.t, resp.Token)
	return resp.Token
}

func TestLogin(t *testing.T) {
	f := newAPIFixture(t)
	f.addUser("almaz", models.RoleWaitress)

	t.Run("success", func(t *testing.T) {
		f.login("almaz", "1234")
	})

	t.Run("wrong pin", func(t *testing.T) {
		w := f.do(http.MethodPost, "/api/v1/users/login", "", gin.H{"username": "almaz", "pin": "9999"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("unknown user gets the same answer", func(t *testing.T) {
		w := f.do(http.MethodPost, "/api/v1/users/login", "", gin.H{"username": "nobody", "pin": "1234"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		wrong := f.do(http.MethodPost, "/api/v1/users/login", "", gin.H{"username": "almaz", "pin": "0001"})
		assert.JSONEq(t, w.Body.String(), wrong.Body.String())
	})

	t.Run("missing fields", func(t *testing.T) {
		w := f.do(http.MethodPost, "/api/v1/users/login", "", gin.H{"username": "almaz"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSeededOwnerCanLogIn(t *testing.T) {
	f := newAPIFixture(t)
	token := f.login("owner", "0000")

	w := f.do(http.MethodGet, "/api/v1/users/me", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"role":"Owner"`)
}

func TestOrderLifecycleOverHTTP(t *testing.T) {
	f := newAPIFixture(t)
	f.addUser("almaz", models.RoleWaitress)
	f.addUser("cook", models.RoleKitchen)
	waitress := f.login("almaz", "1234")
	cook := f.login("cook", "1234")
	owner := f.login("owner", "0000")

	w := f.do(http.MethodPost, "/api/v1/orders", waitress, gin.H{
		"items": []gin.H{{"menuItemId": f.doro.ID, "quantity": 2}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		Data struct {
			Order models.Order `json:"order"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	orderID := created.Data.Order.ID
	assert.Equal(t, 1, created.Data.Order.OrderNumber)
	assert.Equal(t, 500.0, created.Data.Order.TotalPrice)

	w = f.do(http.MethodGet, "/api/v1/orders/kds/Kitchen", cook, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"orderNumber":1`)

	w = f.do(http.MethodGet, "/api/v1/orders/my-orders", waitress, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"orderNumber":1`)

	w = f.do(http.MethodPatch, "/api/v1/orders/complete", waitress, gin.H{
		"orderId": orderID, "paymentMethod": "Cash",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"overallStatus":"Completed"`)

	// Voiding a paid order is a client error, not a server one.
	w = f.do(http.MethodPatch, "/api/v1/orders/void", owner, gin.H{"orderId": orderID})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouteAuthorization(t *testing.T) {
	f := newAPIFixture(t)
	f.addUser("almaz", models.RoleWaitress)
	f.addUser("cook", models.RoleKitchen)
	waitress := f.login("almaz", "1234")
	cook := f.login("cook", "1234")

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"no token", http.MethodGet, "/api/v1/orders/my-orders", "", http.StatusUnauthorized},
		{"kitchen cannot create orders", http.MethodPost, "/api/v1/orders", cook, http.StatusForbidden},
		{"waitress cannot read kds", http.MethodGet, "/api/v1/orders/kds/Kitchen", waitress, http.StatusForbidden},
		{"waitress cannot void", http.MethodPatch, "/api/v1/orders/void", waitress, http.StatusForbidden},
		{"waitress cannot reset kds", http.MethodPost, "/api/v1/system/reset-kds", waitress, http.StatusForbidden},
		{"waitress cannot list users", http.MethodGet, "/api/v1/users", waitress, http.StatusForbidden},
		{"kitchen cannot read analytics", http.MethodGet, "/api/v1/analytics/sales", cook, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(tt.method, tt.path, tt.token, gin.H{})
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestOrderErrorMapping(t *testing.T) {
	f := newAPIFixture(t)
	f.addUser("almaz", models.RoleWaitress)
	waitress := f.login("almaz", "1234")
	owner := f.login("owner", "0000")

	w := f.do(http.MethodPost, "/api/v1/orders", waitress, gin.H{"items": []gin.H{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(http.MethodPost, "/api/v1/orders", waitress, gin.H{
		"items": []gin.H{{"menuItemId": 9999, "quantity": 1}},
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(http.MethodPatch, "/api/v1/orders/void", owner, gin.H{"orderId": 9999})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestResetKds(t *testing.T) {
	f := newAPIFixture(t)
	f.addUser("almaz", models.RoleWaitress)
	f.addUser("cook", models.RoleKitchen)
	waitress := f.login("almaz", "1234")
	cook := f.login("cook", "1234")
	owner := f.login("owner", "0000")

	for i := 0; i < 2; i++ {
		w := f.do(http.MethodPost, "/api/v1/orders", waitress, gin.H{
			"items": []gin.H{{"menuItemId": f.doro.ID, "quantity": 1}},
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := f.do(http.MethodPost, "/api/v1/system/reset-kds", owner, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "2 active orders")

	w = f.do(http.MethodGet, "/api/v1/orders/kds/Kitchen", cook, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), `"orderNumber"`)
}

func TestUserAdministration(t *testing.T) {
	f := newAPIFixture(t)
	owner := f.login("owner", "0000")

	w := f.do(http.MethodPost, "/api/v1/users", owner, gin.H{
		"name": "Sara", "username": "sara", "pin": "4321", "role": "Waitress",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		Data struct {
			User models.User `json:"user"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotContains(t, w.Body.String(), "4321", "the PIN never leaves the server")

	w = f.do(http.MethodPost, "/api/v1/users", owner, gin.H{
		"name": "Other Sara", "username": "sara", "pin": "1111",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = f.do(http.MethodPost, "/api/v1/users", owner, gin.H{
		"name": "Short", "username": "short", "pin": "12",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	userPath := fmt.Sprintf("/api/v1/users/%s", created.Data.User.ID)
	w = f.do(http.MethodPatch, userPath, owner, gin.H{"role": "Kitchen"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"role":"Kitchen"`)

	w = f.do(http.MethodDelete, userPath, owner, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = f.do(http.MethodDelete, userPath, owner, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUnknownRoute(t *testing.T) {
	f := newAPIFixture(t)
	w := f.do(http.MethodGet, "/api/v2/orders", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "/api/v2/orders")
}
