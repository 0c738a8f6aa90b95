package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"user-auth-service/pkg/logger"
)

func TestTracing(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	r := gin.New()
	r.Use(Tracing("test"))
	r.GET("/v1/users", func(c *gin.Context) {
		c.String(http.StatusOK, logger.GetTraceID(c.Request.Context()))
	})
	r.GET("/fail", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/v1/users", nil))
	serve(r, httptest.NewRequest(http.MethodGet, "/fail", nil))

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	assert.Equal(t, "GET /v1/users", spans[0].Name())
	assert.Equal(t, spans[0].SpanContext().TraceID().String(), w.Body.String())
	assert.Contains(t, spans[0].Attributes(), attribute.Int("http.response.status_code", http.StatusOK))

	assert.Equal(t, codes.Error, spans[1].Status().Code)
}
