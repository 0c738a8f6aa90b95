package logger

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"INFO", zapcore.InfoLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"unknown", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLogLevel(tt.input))
		})
	}
}

func TestNewWithConfig_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	l, err := NewWithConfig(Config{
		Level:       "debug",
		Format:      "json",
		OutputPath:  path,
		ServiceName: "user-auth-service",
		Environment: "test",
	})
	require.NoError(t, err)

	l.Info("hello")
	assert.NoError(t, l.Sync())
	assert.FileExists(t, path)
}

func TestWithContext_Fields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	base := zap.New(core)

	ctx := ContextWithRequestID(context.Background(), "req-1")
	ctx = ContextWithUserID(ctx, "user-1")
	ctx = context.WithValue(ctx, TraceIDKey, "trace-1")

	WithContext(ctx, base).Info("msg")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "user-1", fields["user_id"])
	assert.Equal(t, "trace-1", fields["trace_id"])
}

func TestWithContext_NoFields(t *testing.T) {
	base := zap.NewNop()
	assert.Same(t, base, WithContext(context.Background(), base))
}

func TestGetTraceID_FromSpanContext(t *testing.T) {
	traceID, err := trace.TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("0102030405060708")
	require.NoError(t, err)

	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	assert.Equal(t, "0102030405060708090a0b0c0d0e0f10", GetTraceID(ctx))
}

func TestRedactSQL(t *testing.T) {
	hash := "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"
	sql := `INSERT INTO "users" ("name","email","password_hash") VALUES ('Ann','a@x.com','` + hash + `')`

	redacted := RedactSQL(sql)

	assert.NotContains(t, redacted, hash)
	assert.Contains(t, redacted, "[REDACTED]")
	assert.Contains(t, redacted, "a@x.com")
	assert.Equal(t, "SELECT 1", RedactSQL("SELECT 1"))
}

func TestRequestIDInterceptor(t *testing.T) {
	interceptor := RequestIDInterceptor()
	info := &grpc.UnaryServerInfo{FullMethod: "/users.v1.UserService/Signin"}

	var seen string
	handler := func(ctx context.Context, req any) (any, error) {
		seen = GetRequestID(ctx)
		return "ok", nil
	}

	t.Run("generates id", func(t *testing.T) {
		_, err := interceptor(context.Background(), nil, info, handler)
		require.NoError(t, err)
		assert.Len(t, seen, 36)
	})

	t.Run("reuses incoming id", func(t *testing.T) {
		ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("x-request-id", "abc-123"))
		_, err := interceptor(ctx, nil, info, handler)
		require.NoError(t, err)
		assert.Equal(t, "abc-123", seen)
	})
}

func TestUnaryLoggingInterceptor(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	interceptor := UnaryLoggingInterceptor(zap.New(core))
	info := &grpc.UnaryServerInfo{FullMethod: "/users.v1.UserService/Signin"}

	t.Run("ok", func(t *testing.T) {
		resp, err := interceptor(context.Background(), nil, info, func(context.Context, any) (any, error) {
			return "ok", nil
		})
		require.NoError(t, err)
		assert.Equal(t, "ok", resp)
	})

	t.Run("client error", func(t *testing.T) {
		_, err := interceptor(context.Background(), nil, info, func(context.Context, any) (any, error) {
			return nil, status.Error(codes.NotFound, "email not found")
		})
		assert.Equal(t, codes.NotFound, status.Code(err))
	})

	t.Run("panic", func(t *testing.T) {
		resp, err := interceptor(context.Background(), nil, info, func(context.Context, any) (any, error) {
			panic("boom")
		})
		assert.Nil(t, resp)
		assert.Equal(t, codes.Internal, status.Code(err))
	})

	requests := logs.FilterMessage("grpc request").All()
	require.Len(t, requests, 3)
	assert.Equal(t, zapcore.InfoLevel, requests[0].Level)
	assert.Equal(t, zapcore.WarnLevel, requests[1].Level)
	assert.Equal(t, "NotFound", requests[1].ContextMap()["code"])
	assert.Equal(t, zapcore.ErrorLevel, requests[2].Level)
	assert.Equal(t, 1, logs.FilterMessage("panic recovered in grpc handler").Len())
}

func TestWithContext_SpanID(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	traceID, err := trace.TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("0102030405060708")
	require.NoError(t, err)
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID})

	WithContext(trace.ContextWithSpanContext(context.Background(), sc), zap.New(core)).Info("msg")

	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "0102030405060708090a0b0c0d0e0f10", fields["trace_id"])
	assert.Equal(t, "0102030405060708", fields["span_id"])
}

func TestNewRotatingFile_Defaults(t *testing.T) {
	lj := newRotatingFile("app.log", RotationConfig{MaxBackups: -1, MaxAgeDays: -1})
	assert.Equal(t, 100, lj.MaxSize)
	assert.Equal(t, 3, lj.MaxBackups)
	assert.Equal(t, 28, lj.MaxAge)
	assert.False(t, lj.Compress)

	lj = newRotatingFile("app.log", RotationConfig{MaxSizeMB: 5, MaxBackups: 0, MaxAgeDays: 7, Compress: true})
	assert.Equal(t, 5, lj.MaxSize)
	assert.Equal(t, 0, lj.MaxBackups)
	assert.Equal(t, 7, lj.MaxAge)
	assert.True(t, lj.Compress)
}

func TestNewGormLoggerWithConfig_Levels(t *testing.T) {
	tests := map[string]gormlogger.LogLevel{
		"silent": gormlogger.Silent,
		"ERROR":  gormlogger.Error,
		"warn":   gormlogger.Warn,
		"debug":  gormlogger.Info,
		"bogus":  gormlogger.Warn,
	}
	for in, want := range tests {
		assert.Equal(t, want, NewGormLoggerWithConfig(zap.NewNop(), 0, in).LogLevel, in)
	}
}

func TestGormLogger_Trace(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	gl := NewGormLoggerWithConfig(zap.New(core), 0.05, "info")
	hash := "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"
	insert := func() (string, int64) {
		return `INSERT INTO "users" VALUES ('` + hash + `')`, 1
	}
	ctx := context.Background()

	gl.Trace(ctx, time.Now(), insert, nil)
	gl.Trace(ctx, time.Now(), insert, gorm.ErrDuplicatedKey)
	gl.Trace(ctx, time.Now(), insert, errors.New("connection reset"))
	gl.Trace(ctx, time.Now(), insert, gorm.ErrRecordNotFound)
	gl.Trace(ctx, time.Now().Add(-time.Second), insert, nil)

	entries := logs.All()
	require.Len(t, entries, 5)
	assert.Equal(t, "gorm query", entries[0].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "gorm duplicate key", entries[1].Message)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
	assert.Equal(t, "gorm query", entries[3].Message)
	assert.Equal(t, "gorm slow query", entries[4].Message)

	for _, e := range entries {
		assert.NotContains(t, e.ContextMap()["sql"], hash)
	}
}

func TestGormLogger_TraceTruncatesAndSilences(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	gl := NewGormLoggerWithConfig(zap.New(core), 0, "info")
	long := func() (string, int64) { return strings.Repeat("x", 2*maxSQLLength), 0 }

	gl.Trace(context.Background(), time.Now(), long, nil)
	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, true, fields["sql_truncated"])
	assert.Len(t, fields["sql"], maxSQLLength+3)

	gl.LogMode(gormlogger.Silent).Trace(context.Background(), time.Now(), long, errors.New("ignored"))
	assert.Equal(t, 1, logs.Len())
}
