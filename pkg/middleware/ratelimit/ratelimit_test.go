package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiterAllowsBurstThenBlocks(t *testing.T) {
	l := New(1, 2)
	fixed := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return fixed }

	assert.True(t, l.Allow("1.1.1.1"))
	assert.True(t, l.Allow("1.1.1.1"))
	assert.False(t, l.Allow("1.1.1.1"))
	assert.True(t, l.Allow("2.2.2.2"), "buckets are per client")

	fixed = fixed.Add(time.Minute)
	assert.True(t, l.Allow("1.1.1.1"))
}

func TestLimiterSweepsIdleClients(t *testing.T) {
	l := New(1, 1)
	fixed := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return fixed }

	require.True(t, l.Allow("1.1.1.1"))
	assert.Len(t, l.clients, 1)
	assert.Equal(t, fixed, l.lastSweep)

	fixed = fixed.Add(idleTTL + time.Second)
	require.True(t, l.Allow("2.2.2.2"))
	assert.Len(t, l.clients, 1)
	assert.Contains(t, l.clients, "2.2.2.2")
	assert.Equal(t, fixed, l.lastSweep)
}

func TestLimiterDisabled(t *testing.T) {
	l := New(0, 1)
	for i := 0; i < 50; i++ {
		require.True(t, l.Allow("ip"))
	}
}

func TestMiddlewareReturns429(t *testing.T) {
	gin.SetMode(gin.TestMode)
	l := New(1, 1)
	router := gin.New()
	router.POST("/book-slot", l.Middleware(nil), func(c *gin.Context) { c.Status(http.StatusCreated) })

	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/book-slot", nil))
	require.Equal(t, http.StatusCreated, first.Code)

	second := httptest.NewRecorder()
	router.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/book-slot", nil))
	require.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Contains(t, second.Body.String(), `"error"`)
}
