package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	grpcadapter "user-auth-service/internal/adapter/grpc"
	"user-auth-service/internal/config"
)

func testConfig(t *testing.T, mr *miniredis.Miniredis) *config.Config {
	return &config.Config{
		DB: config.DatabaseConfig{
			Driver:       "sqlite",
			SQLitePath:   filepath.Join(t.TempDir(), "users.db"),
			MaxIdleConns: 1,
			AutoMigrate:  true,
		},
		App: config.AppConfig{
			GRPCPort:               "0",
			HTTPPort:               "0",
			ShutdownTimeoutSeconds: 5,
		},
		Redis: config.RedisConfig{
			Enabled:  true,
			Host:     mr.Host(),
			Port:     mr.Port(),
			PoolSize: 2,
			CacheTTL: 60,
		},
		RateLimit: config.RateLimitConfig{
			Enabled:           true,
			RequestsPerSecond: 100,
			BurstCapacity:     100,
		},
		Auth: config.AuthConfig{
			JWTSecret:            "0123456789abcdef0123456789abcdef",
			JWTIssuer:            "user-auth-service",
			AccessTokenTTL:       time.Hour,
			BcryptCost:           4,
			UsersListRequireAuth: true,
		},
		Logger: config.LoggerConfig{
			Level:            "info",
			SlowQuerySeconds: 0.2,
			ServiceName:      "user-auth-service",
			ServiceVersion:   "test",
		},
		Tracing: config.TracingConfig{SampleRatio: 1},
	}
}

// AppIntegrationTestSuite drives the full application, both transports
// included, against sqlite and miniredis on ephemeral ports.
type AppIntegrationTestSuite struct {
	suite.Suite
	app *App
}

func TestAppIntegration(t *testing.T) {
	suite.Run(t, new(AppIntegrationTestSuite))
}

// SetupTest starts a fresh application with an empty database for every test.
func (s *AppIntegrationTestSuite) SetupTest() {
	t := s.T()
	mr := miniredis.RunT(t)
	ctx := context.Background()

	a, err := NewWithConfig(ctx, testConfig(t, mr), zaptest.NewLogger(t))
	s.Require().NoError(err)
	s.Require().NoError(a.Server.Listen(ctx))
	go func() { _ = a.Server.Serve() }()

	s.app = a
}

func (s *AppIntegrationTestSuite) TearDownTest() {
	if s.app != nil {
		s.NoError(s.app.shutdown())
		s.app = nil
	}
}

func loopback(t *testing.T, addr string) string {
	_, port, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	return net.JoinHostPort("127.0.0.1", port)
}

type httpClient struct {
	t    *testing.T
	base string
}

func (c httpClient) do(method, path, bearer string, body any) (int, map[string]any) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, c.base+path, &buf)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(c.t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func (s *AppIntegrationTestSuite) TestREST() {
	t := s.T()
	c := httpClient{t: t, base: "http://" + loopback(t, s.app.Server.HTTPAddr())}

	code, body := c.do(http.MethodGet, "/health", "", nil)
	s.Equal(http.StatusOK, code)
	s.Equal("healthy", body["status"])

	code, body = c.do(http.MethodGet, "/ready", "", nil)
	s.Equal(http.StatusOK, code)
	s.Equal("ready", body["status"])
	s.Equal(map[string]any{"database": "up", "redis": "up"}, body["checks"])

	code, body = c.do(http.MethodPost, "/v1/users/signup", "", map[string]string{
		"name": "Ann", "email": "A@X.com", "password": "secret",
	})
	s.Require().Equal(http.StatusCreated, code)
	s.Equal("Ann", body["name"])
	s.Equal("a@x.com", body["email"])
	s.NotEmpty(body["id"])
	s.NotContains(body, "password")

	code, body = c.do(http.MethodPost, "/v1/users/signup", "", map[string]string{
		"name": "Ann Again", "email": "a@x.com", "password": "secret2",
	})
	s.Equal(http.StatusConflict, code)
	s.Equal("already_exists", body["error"])

	code, body = c.do(http.MethodPost, "/v1/users/signup", "", map[string]string{
		"name": "Al", "email": "al@x.com", "password": "secret",
	})
	s.Equal(http.StatusBadRequest, code)
	s.Equal("validation_error", body["error"])

	code, body = c.do(http.MethodPost, "/v1/users/signin", "", map[string]string{
		"email": "b@x.com", "password": "secret",
	})
	s.Equal(http.StatusNotFound, code)
	s.Equal("email not found", body["message"])

	code, body = c.do(http.MethodPost, "/v1/users/signin", "", map[string]string{
		"email": "a@x.com", "password": "wrong",
	})
	s.Equal(http.StatusUnauthorized, code)
	s.Equal("password is incorrect", body["message"])

	// Twice, so the second lookup is served from the cache
	var jwtToken string
	for i := 0; i < 2; i++ {
		code, body = c.do(http.MethodPost, "/v1/users/signin", "", map[string]string{
			"email": "a@x.com", "password": "secret",
		})
		s.Require().Equal(http.StatusOK, code)
		s.Equal("Ann", body["name"])
		s.Equal("a@x.com", body["email"])
		jwtToken, _ = body["jwtToken"].(string)
		s.Require().NotEmpty(jwtToken)
	}

	code, _ = c.do(http.MethodGet, "/v1/users", "", nil)
	s.Equal(http.StatusUnauthorized, code)

	code, body = c.do(http.MethodGet, "/v1/users", jwtToken, nil)
	s.Require().Equal(http.StatusOK, code)
	users, _ := body["users"].([]any)
	s.Len(users, 1)
}

func (s *AppIntegrationTestSuite) TestGRPC() {
	t := s.T()
	conn, err := grpc.NewClient(loopback(t, s.app.Server.GRPCAddr()),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	s.Require().NoError(err)
	t.Cleanup(func() { _ = conn.Close() })

	client := grpcadapter.NewUserServiceClient(conn)
	ctx := context.Background()

	for _, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		in, err := structpb.NewStruct(map[string]any{"name": "User", "email": email, "password": "secret"})
		s.Require().NoError(err)
		_, err = client.Signup(ctx, in)
		s.Require().NoError(err)
	}

	in, err := structpb.NewStruct(map[string]any{"email": "a@x.com", "password": "nope!!"})
	s.Require().NoError(err)
	_, err = client.Signin(ctx, in)
	s.Equal(codes.Unauthenticated, status.Code(err))

	in, err = structpb.NewStruct(map[string]any{"email": "a@x.com", "password": "secret"})
	s.Require().NoError(err)
	var header metadata.MD
	out, err := client.Signin(ctx, in, grpc.Header(&header))
	s.Require().NoError(err)
	s.NotEmpty(header.Get("x-request-id"))

	jwtToken := out.GetFields()["jwtToken"].GetStringValue()
	s.Require().NotEmpty(jwtToken)

	_, err = client.FindAll(ctx, &structpb.Struct{})
	s.Equal(codes.Unauthenticated, status.Code(err))

	authCtx := metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+jwtToken)
	list, err := client.FindAll(authCtx, &structpb.Struct{})
	s.Require().NoError(err)
	s.Len(list.GetFields()["users"].GetListValue().GetValues(), 3)
}
