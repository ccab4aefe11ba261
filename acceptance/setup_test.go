package acceptance

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tulshipandey/parkride-backend/api"
	"github.com/tulshipandey/parkride-backend/booking"
	"github.com/tulshipandey/parkride-backend/catalog"
	"github.com/tulshipandey/parkride-backend/customer"
	"github.com/tulshipandey/parkride-backend/internal/middleware"
	"github.com/tulshipandey/parkride-backend/internal/o11y"
	"github.com/tulshipandey/parkride-backend/pricing"
)

// testNow is the fixed clock used by every test server. Midday, so
// the peak surcharge never applies unless a test opts in.
var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type TestServer struct {
	Router    *gin.Engine
	Bookings  *booking.MemoryRepository
	Customers *customer.MemoryRepository
	Catalog   *catalog.Catalog
	Service   *booking.Service
}

func NewTestServer(t *testing.T) *TestServer {
	t.Helper()
	return newTestServer(t, testNow)
}

// NewPeakTestServer pins the clock inside the morning peak window.
func NewPeakTestServer(t *testing.T) *TestServer {
	t.Helper()
	return newTestServer(t, time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC))
}

func newTestServer(t *testing.T, now time.Time) *TestServer {
	t.Helper()

	gin.SetMode(gin.TestMode)

	cat := catalog.Default()
	bkr := booking.NewMemoryRepository()
	cr := customer.NewMemoryRepository()
	svc := booking.NewService(bkr, cat, time.Minute)

	obs := &o11y.Observability{
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Registry: prometheus.NewRegistry(),
	}

	a, err := api.New(api.Config{
		Catalog:   cat,
		Pricing:   pricing.NewEngine(cat),
		Lifecycle: svc,
		Bookings:  bkr,
		Customers: cr,
		Obs:       obs,
		Auth:      fakeAuthMiddleware(),
		Now:       func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("failed to build api: %v", err)
	}

	return &TestServer{
		Router:    a.Router(),
		Bookings:  bkr,
		Customers: cr,
		Catalog:   cat,
		Service:   svc,
	}
}

// fakeAuthMiddleware trusts the X-User-ID header instead of validating
// a JWT.
func fakeAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "message": "Authentication required"})
			c.Abort()
			return
		}
		middleware.SetUserID(c, userID)
		c.Next()
	}
}

func (ts *TestServer) Do(method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			panic(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	ts.Router.ServeHTTP(w, req)
	return w
}

func (ts *TestServer) GET(path string, headers map[string]string) *httptest.ResponseRecorder {
	return ts.Do(http.MethodGet, path, nil, headers)
}

func (ts *TestServer) POST(path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	return ts.Do(http.MethodPost, path, body, headers)
}

func (ts *TestServer) PUT(path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	return ts.Do(http.MethodPut, path, body, headers)
}

func (ts *TestServer) DELETE(path string, headers map[string]string) *httptest.ResponseRecorder {
	return ts.Do(http.MethodDelete, path, nil, headers)
}

func asUser(userID string) map[string]string {
	return map[string]string{"X-User-ID": userID}
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
}
