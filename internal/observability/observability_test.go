package observability

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoggerContextRoundTrip(t *testing.T) {
	require.Same(t, noopLogger, FromContext(context.Background()))

	logger := zap.NewExample()
	ctx := WithLogger(context.Background(), logger)
	require.Same(t, logger, FromContext(ctx))

	require.Same(t, noopLogger, FromContext(WithLogger(context.Background(), nil)))
}

func TestNewLoggerHonoursLevel(t *testing.T) {
	logger, err := NewLogger("warn")
	require.NoError(t, err)
	require.False(t, logger.Core().Enabled(zap.InfoLevel))
	require.True(t, logger.Core().Enabled(zap.WarnLevel))

	t.Setenv("LOG_LEVEL", "debug")
	logger, err = NewLogger("warn")
	require.NoError(t, err)
	require.False(t, logger.Core().Enabled(zap.DebugLevel), "the level argument is the only source")

	logger, err = NewLogger("verbose")
	require.NoError(t, err)
	require.True(t, logger.Core().Enabled(zap.InfoLevel))
	require.False(t, logger.Core().Enabled(zap.DebugLevel))
}

func TestMetricsHandlerExposesCounters(t *testing.T) {
	Handoffs.WithLabelValues("redirected").Inc()

	rr := httptest.NewRecorder()
	MetricsHandler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.True(t, strings.Contains(rr.Body.String(), `leasing_handoffs_total{outcome="redirected"}`))
}

func TestTraceMiddlewarePassesThrough(t *testing.T) {
	called := false
	handler := TraceMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		_, span := StartSpan(r.Context(), "inner")
		RecordError(span, errors.New("boom"))
		span.End()
		w.WriteHeader(http.StatusNoContent)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/vehicles", nil))
	require.True(t, called)
	require.Equal(t, http.StatusNoContent, rr.Code)
	require.Empty(t, TraceID(context.Background()))
}
