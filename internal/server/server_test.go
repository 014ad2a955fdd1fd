package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/opteama/wifi-aps/internal/inventory"
	"github.com/opteama/wifi-aps/internal/server"
)

const (
	serial1 = "Q2KD-23RT-XR3D"
	serial2 = "Q2KD-2F3G-V4LB"
	serial3 = "Q2KD-2UM5-CLUF"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// MockInventory is a mock implementation of server.Inventory.
type MockInventory struct {
	mock.Mock
}

func (m *MockInventory) ListAll(ctx context.Context) ([]inventory.AP, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	//nolint:errcheck,forcetypeassert // Mock type assertion is safe in tests
	return args.Get(0).([]inventory.AP), args.Error(1)
}

func (m *MockInventory) ListSite(ctx context.Context, site string) ([]inventory.AP, error) {
	args := m.Called(ctx, site)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	//nolint:errcheck,forcetypeassert // Mock type assertion is safe in tests
	return args.Get(0).([]inventory.AP), args.Error(1)
}

func (m *MockInventory) Get(ctx context.Context, site, serial string) (*inventory.AP, error) {
	args := m.Called(ctx, site, serial)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	//nolint:errcheck,forcetypeassert // Mock type assertion is safe in tests
	return args.Get(0).(*inventory.AP), args.Error(1)
}

func (m *MockInventory) Create(ctx context.Context, site string, in inventory.APInput) error {
	return m.Called(ctx, site, in).Error(0)
}

func (m *MockInventory) CreateMany(ctx context.Context, aps []inventory.APInput) error {
	return m.Called(ctx, aps).Error(0)
}

func (m *MockInventory) Update(ctx context.Context, site string, in inventory.APInput) error {
	return m.Called(ctx, site, in).Error(0)
}

func (m *MockInventory) Remove(ctx context.Context, site, serial string) error {
	return m.Called(ctx, site, serial).Error(0)
}

func newTestServer(t *testing.T, inv server.Inventory) http.Handler {
	t.Helper()

	doc, err := server.LoadDocument(context.Background(), "")
	require.NoError(t, err)

	validator, err := server.NewValidator(doc)
	require.NoError(t, err)

	return server.New(inv, validator, nil).Handler()
}

func do(t *testing.T, handler http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func ptr[T any](v T) *T { return &v }

var rejected = errors.Mark(errors.New("status=400"), inventory.ErrRejected)

func TestSites(t *testing.T) {
	t.Parallel()

	doc, err := server.LoadDocument(context.Background(), "")
	require.NoError(t, err)

	sites, err := server.Sites(doc)
	require.NoError(t, err)
	assert.Equal(t, []string{"TLS", "MLT"}, sites)
}

func TestSitesWithoutEnum(t *testing.T) {
	t.Parallel()

	path := t.TempDir() + "/openapi.yaml"
	content := `openapi: 3.0.3
info:
  title: t
  version: "1"
paths: {}
components:
  schemas:
    Site:
      type: string
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	doc, err := server.LoadDocument(context.Background(), path)
	require.NoError(t, err)

	_, err = server.Sites(doc)
	assert.Error(t, err)
}

func TestLoadDocumentMissingFile(t *testing.T) {
	t.Parallel()

	_, err := server.LoadDocument(context.Background(), t.TempDir()+"/absent.yaml")
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	t.Parallel()

	handler := newTestServer(t, &MockInventory{})

	rec := do(t, handler, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	handler := newTestServer(t, &MockInventory{})

	rec := do(t, handler, http.MethodGet, "/healthz", "")
	_, err := uuid.Parse(rec.Header().Get(server.RequestIDHeader))
	require.NoError(t, err, "a request id is assigned")

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(server.RequestIDHeader, id)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, id, rec.Header().Get(server.RequestIDHeader), "a valid caller id is kept")
}

func TestReads(t *testing.T) {
	t.Parallel()

	ap := inventory.AP{
		Name:     "TLS-AP-SKP-1c-1",
		Serial:   serial1,
		Lat:      ptr(21.0),
		Lng:      ptr(33.0),
		Site:     "TLS",
		Building: ptr("SKP"),
		Floor:    ptr("1c"),
	}

	tests := []struct {
		name       string
		target     string
		setup      func(*MockInventory)
		wantStatus int
		wantBody   string
	}{
		{
			name:   "all",
			target: "/aps",
			setup: func(m *MockInventory) {
				m.On("ListAll", mock.Anything).Return([]inventory.AP{ap}, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   `[{"name":"TLS-AP-SKP-1c-1","serial":"Q2KD-23RT-XR3D","lat":21,"lng":33,"site":"TLS","building":"SKP","floor":"1c"}]`,
		},
		{
			name:   "all fails",
			target: "/aps",
			setup: func(m *MockInventory) {
				m.On("ListAll", mock.Anything).Return(nil, inventory.ErrOrganizationNotFound)
			},
			wantStatus: http.StatusNotFound,
			wantBody:   "Organization not found",
		},
		{
			name:   "site",
			target: "/aps/TLS",
			setup: func(m *MockInventory) {
				m.On("ListSite", mock.Anything, "TLS").Return([]inventory.AP{}, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   `[]`,
		},
		{
			name:   "unknown site",
			target: "/aps/BOD",
			setup: func(m *MockInventory) {
				m.On("ListSite", mock.Anything, "BOD").Return(nil, inventory.ErrSiteNotFound)
			},
			wantStatus: http.StatusNotFound,
			wantBody:   "Site not found",
		},
		{
			name:   "serial",
			target: "/aps/TLS/" + serial1,
			setup: func(m *MockInventory) {
				m.On("Get", mock.Anything, "TLS", serial1).Return(&ap, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"name":"TLS-AP-SKP-1c-1","serial":"Q2KD-23RT-XR3D","lat":21,"lng":33,"site":"TLS","building":"SKP","floor":"1c"}`,
		},
		{
			name:   "unknown serial",
			target: "/aps/TLS/" + serial2,
			setup: func(m *MockInventory) {
				m.On("Get", mock.Anything, "TLS", serial2).Return(nil, inventory.ErrAPNotFound)
			},
			wantStatus: http.StatusNotFound,
			wantBody:   "AP not found",
		},
		{
			name:       "malformed serial",
			target:     "/aps/TLS/not-a-serial",
			setup:      func(*MockInventory) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "lowercase site",
			target:     "/aps/tls",
			setup:      func(*MockInventory) {},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			inv := &MockInventory{}
			tt.setup(inv)

			rec := do(t, newTestServer(t, inv), http.MethodGet, tt.target, "")
			assert.Equal(t, tt.wantStatus, rec.Code)

			switch {
			case tt.wantStatus == http.StatusOK:
				assert.JSONEq(t, tt.wantBody, rec.Body.String())
			case tt.wantBody != "":
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
			inv.AssertExpectations(t)
		})
	}
}

func TestWrites(t *testing.T) {
	t.Parallel()

	createBody := `{"serial":"Q2KD-23RT-XR3D","building":"SKP","floor":"1c","lat":21.0,"lng":33.0}`
	isSerial1 := mock.MatchedBy(func(in inventory.APInput) bool {
		return in.Serial == serial1 && in.Building == "SKP" && in.Floor == "1c"
	})

	tests := []struct {
		name       string
		method     string
		target     string
		body       string
		setup      func(*MockInventory)
		wantStatus int
		wantBody   string
	}{
		{
			name:   "create",
			method: http.MethodPost, target: "/aps/TLS", body: createBody,
			setup: func(m *MockInventory) {
				m.On("Create", mock.Anything, "TLS", isSerial1).Return(nil)
			},
			wantStatus: http.StatusCreated,
			wantBody:   "AP created",
		},
		{
			name:   "create rejected",
			method: http.MethodPost, target: "/aps/TLS", body: createBody,
			setup: func(m *MockInventory) {
				m.On("Create", mock.Anything, "TLS", isSerial1).Return(rejected)
			},
			wantStatus: http.StatusForbidden,
			wantBody:   "AP creation failed",
		},
		{
			name:   "create in unknown site",
			method: http.MethodPost, target: "/aps/BOD", body: createBody,
			setup: func(m *MockInventory) {
				m.On("Create", mock.Anything, "BOD", isSerial1).Return(errors.Wrap(inventory.ErrSiteNotFound, "BOD"))
			},
			wantStatus: http.StatusNotFound,
			wantBody:   "Site not found",
		},
		{
			name:   "create without floor",
			method: http.MethodPost, target: "/aps/TLS", body: `{"serial":"Q2KD-23RT-XR3D","building":"SKP"}`,
			setup:      func(*MockInventory) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "create with latitude out of range",
			method: http.MethodPost, target: "/aps/TLS", body: `{"serial":"Q2KD-23RT-XR3D","building":"SKP","floor":"1c","lat":91}`,
			setup:      func(*MockInventory) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "create many",
			method: http.MethodPost, target: "/aps",
			body: `[{"serial":"Q2KD-2F3G-V4LB","site":"TLS","building":"SKP","floor":"1c"},` +
				`{"serial":"Q2KD-2UM5-CLUF","site":"MLT","building":"COL","floor":"3a"}]`,
			setup: func(m *MockInventory) {
				m.On("CreateMany", mock.Anything, mock.MatchedBy(func(in []inventory.APInput) bool {
					return len(in) == 2 && in[0].Site == "TLS" && in[1].Serial == serial3
				})).Return(nil)
			},
			wantStatus: http.StatusCreated,
			wantBody:   "APs created",
		},
		{
			name:   "create many rejected",
			method: http.MethodPost, target: "/aps",
			body: `[{"serial":"Q2KD-2F3G-V4LB","site":"TLS","building":"SKP","floor":"1c"}]`,
			setup: func(m *MockInventory) {
				m.On("CreateMany", mock.Anything, mock.Anything).Return(rejected)
			},
			wantStatus: http.StatusForbidden,
			wantBody:   "APs creation failed",
		},
		{
			name:   "create many without site",
			method: http.MethodPost, target: "/aps",
			body:       `[{"serial":"Q2KD-2F3G-V4LB","building":"SKP","floor":"1c"}]`,
			setup:      func(*MockInventory) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "create many empty",
			method: http.MethodPost, target: "/aps", body: `[]`,
			setup:      func(*MockInventory) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "update",
			method: http.MethodPut, target: "/aps/TLS",
			body: `{"serial":"Q2KD-23RT-XR3D","building":"PKS","floor":"2"}`,
			setup: func(m *MockInventory) {
				m.On("Update", mock.Anything, "TLS", mock.MatchedBy(func(in inventory.APInput) bool {
					return in.Building == "PKS" && in.Floor == "2" && in.Lat == nil
				})).Return(nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   "AP updated",
		},
		{
			name:   "update rejected",
			method: http.MethodPut, target: "/aps/TLS",
			body: `{"serial":"Q2KD-23RT-XR3D","building":"PKS","floor":"2"}`,
			setup: func(m *MockInventory) {
				m.On("Update", mock.Anything, "TLS", mock.Anything).Return(rejected)
			},
			wantStatus: http.StatusForbidden,
			wantBody:   "AP update failed",
		},
		{
			name:   "update that cannot be named",
			method: http.MethodPut, target: "/aps/TLS", body: `{"serial":"Q2KD-23RT-XR3D"}`,
			setup: func(m *MockInventory) {
				m.On("Update", mock.Anything, "TLS", mock.Anything).
					Return(errors.Wrap(inventory.ErrInvalidAP, "building is required"))
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "remove",
			method: http.MethodDelete, target: "/aps/TLS/" + serial1,
			setup: func(m *MockInventory) {
				m.On("Remove", mock.Anything, "TLS", serial1).Return(nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   "AP removed",
		},
		{
			name:   "remove rejected",
			method: http.MethodDelete, target: "/aps/TLS/" + serial1,
			setup: func(m *MockInventory) {
				m.On("Remove", mock.Anything, "TLS", serial1).Return(rejected)
			},
			wantStatus: http.StatusForbidden,
			wantBody:   "AP removal failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			inv := &MockInventory{}
			tt.setup(inv)

			rec := do(t, newTestServer(t, inv), tt.method, tt.target, tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
			inv.AssertExpectations(t)
		})
	}
}

func TestAPJSONShape(t *testing.T) {
	t.Parallel()

	raw, err := json.Marshal(inventory.AP{Name: "ap-lobby", Serial: serial1, Site: "TLS"})
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"name":"ap-lobby","serial":"Q2KD-23RT-XR3D","lat":null,"lng":null,"site":"TLS","building":null,"floor":null}`,
		string(raw))
}
