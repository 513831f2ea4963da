package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordReconcile(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordReconcile("games", 2, 1, 3, 0)
	m.RecordReconcile("games", 1, 0, 0, 1)
	m.IncPartialWrite()

	assert.Equal(t, 3.0, testutil.ToFloat64(m.reconciled.WithLabelValues("games", "inserted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reconciled.WithLabelValues("games", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.partialWrites))
	assert.Greater(t, testutil.ToFloat64(m.lastSyncSuccess.WithLabelValues("games")), 0.0)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordReconcile("teams", 1, 1, 1, 1)
		m.IncPartialWrite()
		m.ObserveFetch("serpapi", "games", "ok", time.Second)
	})
}

func TestGinMiddleware_UsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New(prometheus.NewRegistry())
	r := gin.New()
	r.Use(m.GinMiddleware())
	r.GET("/api/games/:game_id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	for _, id := range []string{"a", "b"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/games/"+id, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/games/:game_id", "404")))
}
