package di

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Samuel1505/Event-Ticketing/internal/clock"
	"github.com/Samuel1505/Event-Ticketing/internal/service"
	"github.com/Samuel1505/Event-Ticketing/pkg/logger"
	"github.com/Samuel1505/Event-Ticketing/pkg/middleware"
)

const testSecret = "test-signing-key"

var now = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) (*gin.Engine, *Container) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	c, err := NewContainer(context.Background(), &ContainerConfig{
		Clock:  clock.NewFixed(now),
		Logger: logger.Nop(),
	})
	require.NoError(t, err)

	router := gin.New()
	RegisterRoutes(router, c, &middleware.JWTConfig{Secret: testSecret})
	return router, c
}

func call(t *testing.T, router *gin.Engine, method, path, subject string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if subject != "" {
		token, err := middleware.SignToken(testSecret, "", subject)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestNewContainer_InMemory(t *testing.T) {
	_, c := newTestServer(t)
	assert.Nil(t, c.DB)
	assert.Nil(t, c.Relay)
	assert.Equal(t, uint64(0), c.HeadSeq)
	assert.NotNil(t, c.LedgerService)
	assert.NotNil(t, c.Metrics)
}

func TestNewContainer_WithPublisherBuildsRelay(t *testing.T) {
	c, err := NewContainer(context.Background(), &ContainerConfig{
		Publisher: service.NewNoOpNotificationPublisher(),
		Logger:    logger.Nop(),
	})
	require.NoError(t, err)
	assert.NotNil(t, c.Relay)
}

func TestRoutes_LedgerRejectsZeroValues(t *testing.T) {
	router, c := newTestServer(t)

	w := call(t, router, http.MethodGet, "/api/v1/events/0", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"kind":"NotFound"`)
	assert.Contains(t, w.Body.String(), "EVENT DOESNT EXIST")

	w = call(t, router, http.MethodPost, "/api/v1/events/0/register", "0xaddress1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = call(t, router, http.MethodPost, "/api/v1/events", "0xowner", map[string]interface{}{
		"title":    "pool party",
		"capacity": 2,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"kind":"InvalidSchedule"`)
	assert.Contains(t, w.Body.String(), "START DATE MUST BE IN FUTURE")

	records, err := c.Journal.Since(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestRoutes_EndToEnd(t *testing.T) {
	router, c := newTestServer(t)

	w := call(t, router, http.MethodPost, "/api/v1/events", "", map[string]interface{}{})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = call(t, router, http.MethodPost, "/api/v1/events", "0xowner", map[string]interface{}{
		"title":      "pool party",
		"start_time": now.Add(30 * time.Second).Unix(),
		"end_time":   now.Add(24 * time.Hour).Unix(),
		"fee":        1,
		"is_paid":    true,
		"capacity":   2,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = call(t, router, http.MethodPost, "/api/v1/events/1/register", "0xaddress1", map[string]interface{}{"payment": 1})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = call(t, router, http.MethodPost, "/api/v1/events/1/register", "0xaddress1", map[string]interface{}{"payment": 1})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = call(t, router, http.MethodPost, "/api/v1/events/1/register", "0xaddress2", map[string]interface{}{"payment": 0})
	assert.Equal(t, http.StatusPaymentRequired, w.Code)

	w = call(t, router, http.MethodPost, "/api/v1/events/1/tickets/1/verify", "0xaddress1", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = call(t, router, http.MethodPost, "/api/v1/events/1/tickets/1/verify", "0xowner", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = call(t, router, http.MethodGet, "/api/v1/events/1/tickets/1/verified", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"verified":true`)

	w = call(t, router, http.MethodGet, "/api/v1/events/count", "", nil)
	assert.Contains(t, w.Body.String(), `"event_count":1`)

	w = call(t, router, http.MethodGet, "/api/v1/notifications", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var feed struct {
		Data []struct {
			Seq  uint64 `json:"seq"`
			Type string `json:"type"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &feed))
	require.Len(t, feed.Data, 3)
	assert.Equal(t, "EventCreated", feed.Data[0].Type)
	assert.Equal(t, "RegisterEvent", feed.Data[1].Type)
	assert.Equal(t, "VerifiedTicket", feed.Data[2].Type)

	w = call(t, router, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = call(t, router, http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// rejected operations left no records behind
	records, err := c.Journal.Since(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Len(t, records, 3)
}
