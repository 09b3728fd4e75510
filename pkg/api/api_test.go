package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/galxe/wallet-migrator/pkg/assets"
	"github.com/galxe/wallet-migrator/pkg/migration"
	"github.com/galxe/wallet-migrator/pkg/wallet"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) Assets() []assets.Asset {
	args := m.Called()
	return args.Get(0).([]assets.Asset)
}

func (m *mockService) Status(ctx context.Context, identity string) (*migration.MigrationStatus, error) {
	args := m.Called(ctx, identity)
	if v := args.Get(0); v != nil {
		return v.(*migration.MigrationStatus), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockService) Migrate(ctx context.Context, identity string, recipient ethcommon.Address) (*migration.Report, error) {
	args := m.Called(ctx, identity, recipient)
	if v := args.Get(0); v != nil {
		return v.(*migration.Report), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockService) RunState(identity string) migration.Run {
	args := m.Called(identity)
	return args.Get(0).(migration.Run)
}

type staticChains []uint64

func (c staticChains) ListChains() []uint64 { return c }

var recipient = ethcommon.HexToAddress("0x00000000000000000000000000000000000000bb")

// APITestSuite is the main test suite for API
type APITestSuite struct {
	suite.Suite
	server  *httptest.Server
	service *mockService
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APITestSuite))
}

// SetupTest runs before each test
func (s *APITestSuite) SetupTest() {
	s.service = new(mockService)
	r := chi.NewRouter()
	NewHandler(s.service, staticChains{1, 8453}).RegisterRoutes(r, RouterConfig{RateLimit: 100, RateBurst: 100})
	s.server = httptest.NewServer(r)
}

// TearDownTest runs after each test
func (s *APITestSuite) TearDownTest() {
	if s.server != nil {
		s.server.Close()
	}
}

func (s *APITestSuite) makeRequest(method, path string, body interface{}) (*http.Response, map[string]interface{}) {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, s.server.URL+path, reader)
	s.Require().NoError(err)
	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	var decoded map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func (s *APITestSuite) TestHealth() {
	resp, body := s.makeRequest(http.MethodGet, "/health", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("ok", body["status"])
	s.Len(body["chains"], 2)
}

func (s *APITestSuite) TestGetAssets() {
	s.service.On("Assets").Return([]assets.Asset{{Type: assets.TypeNative, ChainID: 1}})

	resp, err := http.Get(s.server.URL + "/api/v1/assets")
	s.Require().NoError(err)
	defer resp.Body.Close()

	var got []map[string]interface{}
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&got))
	s.Require().Len(got, 1)
	s.Equal("NATIVE", got[0]["type"])
	s.NotContains(got[0], "address")
}

func (s *APITestSuite) TestGetStatus() {
	s.service.On("Status", mock.Anything, "alice@example.com").Return(&migration.MigrationStatus{
		MigrationCompleted: true,
		AssetsToMigrate:    []assets.Asset{},
	}, nil)
	s.service.On("Status", mock.Anything, "bob@example.com").Return(nil, fmt.Errorf("rpc down"))

	resp, body := s.makeRequest(http.MethodGet, "/api/v1/migration/status?identity=alice@example.com", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal(true, body["migration_completed"])

	resp, _ = s.makeRequest(http.MethodGet, "/api/v1/migration/status?identity=bob@example.com", nil)
	s.Equal(http.StatusBadGateway, resp.StatusCode)

	resp, _ = s.makeRequest(http.MethodGet, "/api/v1/migration/status", nil)
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *APITestSuite) TestMigrate() {
	s.service.On("Migrate", mock.Anything, "alice@example.com", recipient).Return(&migration.Report{Recipient: recipient}, nil)
	s.service.On("Migrate", mock.Anything, "ghost@example.com", recipient).Return(nil, wallet.ErrAccountNotFound)
	s.service.On("Migrate", mock.Anything, "busy@example.com", recipient).Return(nil, migration.ErrMigrationInProgress)

	resp, body := s.makeRequest(http.MethodPost, "/api/v1/migration", MigrateRequest{Identity: "alice@example.com", Recipient: recipient.Hex()})
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal(true, body["completed"])

	resp, _ = s.makeRequest(http.MethodPost, "/api/v1/migration", MigrateRequest{Identity: "ghost@example.com", Recipient: recipient.Hex()})
	s.Equal(http.StatusNotFound, resp.StatusCode)

	resp, _ = s.makeRequest(http.MethodPost, "/api/v1/migration", MigrateRequest{Identity: "busy@example.com", Recipient: recipient.Hex()})
	s.Equal(http.StatusConflict, resp.StatusCode)

	resp, body = s.makeRequest(http.MethodPost, "/api/v1/migration", MigrateRequest{Identity: "alice@example.com", Recipient: "not-an-address"})
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.Equal("error", body["status"])
}

func (s *APITestSuite) TestGetRunState() {
	s.service.On("RunState", "alice@example.com").Return(migration.Run{State: migration.StatePending})

	resp, body := s.makeRequest(http.MethodGet, "/api/v1/migration/state?identity=alice@example.com", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("pending", body["state"])
}

func (s *APITestSuite) TestRateLimit() {
	r := chi.NewRouter()
	NewHandler(s.service, nil).RegisterRoutes(r, RouterConfig{RateLimit: 0.001, RateBurst: 1})
	srv := httptest.NewServer(r)
	defer srv.Close()
	s.service.On("Assets").Return([]assets.Asset{})

	first, err := http.Get(srv.URL + "/api/v1/assets")
	s.Require().NoError(err)
	first.Body.Close()
	s.Equal(http.StatusOK, first.StatusCode)

	second, err := http.Get(srv.URL + "/api/v1/assets")
	s.Require().NoError(err)
	second.Body.Close()
	s.Equal(http.StatusTooManyRequests, second.StatusCode)

	// health checks bypass the limiter
	health, err := http.Get(srv.URL + "/health")
	s.Require().NoError(err)
	health.Body.Close()
	s.Equal(http.StatusOK, health.StatusCode)
}

func (s *APITestSuite) TestGetRealIP() {
	rl := NewRateLimiter(1, 1)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	s.Equal("10.0.0.1", rl.getRealIP(req))

	req.Header.Set("X-Forwarded-For", "1.2.3.4, 10.0.0.1")
	s.Equal("1.2.3.4", rl.getRealIP(req))

	req.Header.Set("X-Real-IP", "5.6.7.8")
	s.Equal("5.6.7.8", rl.getRealIP(req))
}

func (s *APITestSuite) TestRequestDurationLabelledByRoutePattern() {
	resp, _ := s.makeRequest(http.MethodGet, "/health", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	resp, _ = s.makeRequest(http.MethodGet, "/api/v1/0xdeadbeef", nil)
	s.Equal(http.StatusNotFound, resp.StatusCode)

	endpoints := requestDurationEndpoints(s.T())
	s.Contains(endpoints, "/health")
	s.Contains(endpoints, unmatchedRoute)
	s.NotContains(endpoints, "/api/v1/0xdeadbeef")
}

func requestDurationEndpoints(t *testing.T) []string {
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	var endpoints []string
	for _, family := range families {
		if family.GetName() != "migrator_request_duration_seconds" {
			continue
		}
		for _, m := range family.GetMetric() {
			for _, label := range m.GetLabel() {
				if label.GetName() == "endpoint" {
					endpoints = append(endpoints, label.GetValue())
				}
			}
		}
	}
	return endpoints
}
