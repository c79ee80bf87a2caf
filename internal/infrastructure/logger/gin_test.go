package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func accessLine(t *testing.T, recorded *observer.ObservedLogs) observer.LoggedEntry {
	t.Helper()
	lines := recorded.FilterMessage("request completed").All()
	require.Len(t, lines, 1)
	return lines[0]
}

func fieldMap(entry observer.LoggedEntry) map[string]zapcore.Field {
	out := make(map[string]zapcore.Field, len(entry.Context))
	for _, f := range entry.Context {
		out[f.Key] = f
	}
	return out
}

func TestRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, recorded := observer.New(zapcore.DebugLevel)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("request_id", "req-42")
		c.Next()
	})
	router.Use(RequestLogger(zap.New(core)))
	router.GET("/projects/:projectId/feedback", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"items": []string{}})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/projects/p1/feedback?status=PENDING", nil))
	require.Equal(t, http.StatusOK, w.Code)

	entry := accessLine(t, recorded)
	assert.Equal(t, zapcore.InfoLevel, entry.Level)

	fields := fieldMap(entry)
	assert.Equal(t, "req-42", fields["request_id"].String)
	assert.Equal(t, "GET", fields["method"].String)
	assert.Equal(t, "/projects/p1/feedback", fields["path"].String)
	assert.Equal(t, int64(http.StatusOK), fields["status"].Integer)
	assert.Equal(t, "p1", fields["project_id"].String)
	assert.Equal(t, "status=PENDING", fields["query"].String)
	assert.Contains(t, fields, "latency")
	assert.Contains(t, fields, "client_ip")
}

func TestRequestLogger_LevelFollowsStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		status int
		level  zapcore.Level
	}{
		{name: "success", status: http.StatusCreated, level: zapcore.InfoLevel},
		{name: "client error", status: http.StatusNotFound, level: zapcore.WarnLevel},
		{name: "server error", status: http.StatusBadGateway, level: zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, recorded := observer.New(zapcore.DebugLevel)
			router := gin.New()
			router.Use(RequestLogger(zap.New(core)))
			router.GET("/x", func(c *gin.Context) {
				c.Status(tt.status)
			})

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

			assert.Equal(t, tt.level, accessLine(t, recorded).Level)
		})
	}
}

func TestRequestLogger_NoProjectFieldOutsideProjectRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, recorded := observer.New(zapcore.DebugLevel)

	router := gin.New()
	router.Use(RequestLogger(zap.New(core)))
	router.GET("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	fields := fieldMap(accessLine(t, recorded))
	assert.NotContains(t, fields, "project_id")
	assert.NotContains(t, fields, "query")
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, recorded := observer.New(zapcore.DebugLevel)

	router := gin.New()
	router.Use(Recovery(zap.New(core)))
	router.GET("/boom", func(c *gin.Context) {
		panic("kaboom")
	})

	w := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	lines := recorded.FilterMessage("handler panicked").All()
	require.Len(t, lines, 1)
	fields := fieldMap(lines[0])
	assert.Equal(t, "/boom", fields["path"].String)
}
