package api

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"hostel-allocation-backend/internal/db"
	"hostel-allocation-backend/internal/model"
	"hostel-allocation-backend/internal/store"
)

func setupSubscriptionRouter(s store.Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.Default()
	handler := NewHandler(s, nil, nil, InventoryLimits{})
	r.PUT("/api/subscriptions", handler.PutSubscription)
	r.GET("/api/subscriptions", handler.GetSubscription)
	r.DELETE("/api/subscriptions", handler.DeleteSubscription)
	return r
}

func newSubscriptionStore(t *testing.T) store.Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	testDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(testDB))
	t.Cleanup(func() {
		sqlDB, _ := testDB.DB()
		sqlDB.Close()
	})
	return store.NewGormStore(testDB)
}

func TestPutSubscription(t *testing.T) {
	router := setupSubscriptionRouter(nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PUT", "/api/subscriptions", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"invalid request"}`, w.Body.String())
}

func TestSubscriptionRoundTrip(t *testing.T) {
	s := newSubscriptionStore(t)
	router := setupSubscriptionRouter(s)

	body := `{"endpoint":"https://push.example.com/abc+def","p256dh":"key","auth":"secret"}`
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PUT", "/api/subscriptions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	// Re-registering the same endpoint refreshes the keys instead of
	// failing the primary key.
	body = `{"endpoint":"https://push.example.com/abc+def","p256dh":"key2","auth":"secret2"}`
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("PUT", "/api/subscriptions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	var sub model.PushSubscription
	require.NoError(t, s.DB().First(&sub, "endpoint = ?", "https://push.example.com/abc+def").Error)
	assert.Equal(t, "key2", sub.P256DH)

	// Endpoint lookup must not decode the raw query: the "+" is part of
	// the endpoint, not an encoded space.
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/api/subscriptions?endpoint=https://push.example.com/abc+def", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("DELETE", "/api/subscriptions", strings.NewReader(`{"endpoint":"https://push.example.com/abc+def"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/api/subscriptions?endpoint=https://push.example.com/abc+def", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
