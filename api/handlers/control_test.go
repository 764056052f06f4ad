package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/vibeweb/sockethub/internal/registry"
	"github.com/vibeweb/sockethub/internal/trafficlog"
)

type fakeDisconnector struct {
	calls []string
	err   error
}

func (f *fakeDisconnector) ForceDisconnect(sid string) error {
	f.calls = append(f.calls, sid)
	return f.err
}

func setupRouter(reg *registry.Registry, traffic *trafficlog.Log, d Disconnector) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewDashboardHandler().RegisterRoutes(r)
	api := r.Group("/api")
	NewControlHandler(reg, traffic, d).RegisterRoutes(api)
	r.NoRoute(func(c *gin.Context) {
		c.String(http.StatusNotFound, "Not Found")
	})
	return r
}

func doRequest(t *testing.T, r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest(method, path, http.NoBody)
	if err != nil {
		t.Fatal(err)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestConnectionsSnapshot(t *testing.T) {
	reg := registry.New()
	reg.Add("sid-1", "203.0.113.1")
	reg.AddRoom("sid-1", "general")
	r := setupRouter(reg, trafficlog.New(10), &fakeDisconnector{})

	rr := doRequest(t, r, "GET", "/api/connections")

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var resp ConnectionsResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Count != 1 || len(resp.Connections) != 1 {
		t.Fatalf("unexpected snapshot: %+v", resp)
	}
	conn := resp.Connections[0]
	if conn.Sid != "sid-1" || conn.ClientIP != "203.0.113.1" {
		t.Errorf("unexpected connection: %+v", conn)
	}
	if len(conn.Rooms) != 1 || conn.Rooms[0] != "general" {
		t.Errorf("unexpected rooms: %v", conn.Rooms)
	}
	if conn.ConnectedAt == "" {
		t.Error("expected connected_at timestamp")
	}
}

func TestConnectionsSnapshotEmpty(t *testing.T) {
	r := setupRouter(registry.New(), trafficlog.New(10), &fakeDisconnector{})

	rr := doRequest(t, r, "GET", "/api/connections")

	var resp ConnectionsResponse
	json.Unmarshal(rr.Body.Bytes(), &resp)
	if resp.Count != 0 {
		t.Errorf("expected count 0, got %d", resp.Count)
	}
	if resp.Connections == nil {
		t.Error("expected empty array, not null")
	}
}

func TestLogsSnapshot(t *testing.T) {
	traffic := trafficlog.New(10)
	traffic.Log("message", "sid-1", "", "hello")
	traffic.Log("join_room", "sid-1", "general", nil)
	r := setupRouter(registry.New(), traffic, &fakeDisconnector{})

	rr := doRequest(t, r, "GET", "/api/logs")

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var resp LogsResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Count != 2 || len(resp.Logs) != 2 {
		t.Fatalf("unexpected logs response: %+v", resp)
	}
	if resp.Logs[0].Event != "message" || resp.Logs[0].From != "sid-1" {
		t.Errorf("unexpected entry: %+v", resp.Logs[0])
	}
	if resp.Logs[1].Room != "general" {
		t.Errorf("expected room field, got %+v", resp.Logs[1])
	}
}

func TestClearLogs(t *testing.T) {
	traffic := trafficlog.New(10)
	traffic.Log("message", "sid-1", "", nil)
	r := setupRouter(registry.New(), traffic, &fakeDisconnector{})

	rr := doRequest(t, r, "POST", "/api/logs/clear")

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"cleared"`) {
		t.Errorf("unexpected body: %s", rr.Body.String())
	}
	if traffic.Count() != 0 {
		t.Errorf("expected log cleared, got %d entries", traffic.Count())
	}
}

func TestDisconnectClient(t *testing.T) {
	reg := registry.New()
	reg.Add("sid-1", "")
	d := &fakeDisconnector{}
	r := setupRouter(reg, trafficlog.New(10), d)

	rr := doRequest(t, r, "POST", "/api/disconnect/sid-1")

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if len(d.calls) != 1 || d.calls[0] != "sid-1" {
		t.Errorf("expected force disconnect for sid-1, got %v", d.calls)
	}
	if !strings.Contains(rr.Body.String(), `"disconnected"`) {
		t.Errorf("unexpected body: %s", rr.Body.String())
	}

	// The control API never mutates the registry directly; removal happens
	// through the normal disconnect event.
	if reg.Count() != 1 {
		t.Errorf("expected registry untouched, got count %d", reg.Count())
	}
}

func TestDisconnectUnknownClient(t *testing.T) {
	d := &fakeDisconnector{}
	r := setupRouter(registry.New(), trafficlog.New(10), d)

	rr := doRequest(t, r, "POST", "/api/disconnect/ghost")

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Client not found") {
		t.Errorf("unexpected body: %s", rr.Body.String())
	}
	if len(d.calls) != 0 {
		t.Errorf("transport must not be asked for unknown sids, got %v", d.calls)
	}
}

func TestDisconnectWithoutTransport(t *testing.T) {
	reg := registry.New()
	reg.Add("sid-1", "")
	r := setupRouter(reg, trafficlog.New(10), nil)

	rr := doRequest(t, r, "POST", "/api/disconnect/sid-1")

	if rr.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Server not initialized") {
		t.Errorf("unexpected body: %s", rr.Body.String())
	}
}

func TestDisconnectTransportFailure(t *testing.T) {
	reg := registry.New()
	reg.Add("sid-1", "")
	d := &fakeDisconnector{err: errors.New("connection already gone")}
	r := setupRouter(reg, trafficlog.New(10), d)

	rr := doRequest(t, r, "POST", "/api/disconnect/sid-1")

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestDashboardPage(t *testing.T) {
	r := setupRouter(registry.New(), trafficlog.New(10), &fakeDisconnector{})

	for _, path := range []string{"/", "/dashboard"} {
		rr := doRequest(t, r, "GET", path)
		if rr.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, rr.Code)
		}
		if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
			t.Errorf("%s: expected html content type, got %q", path, ct)
		}
		if !strings.Contains(rr.Body.String(), "SocketHub Dashboard") {
			t.Errorf("%s: unexpected page body", path)
		}
	}
}

func TestUnmatchedPath(t *testing.T) {
	r := setupRouter(registry.New(), trafficlog.New(10), &fakeDisconnector{})

	rr := doRequest(t, r, "GET", "/nope")

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	if rr.Body.String() != "Not Found" {
		t.Errorf("expected plain-text not found, got %q", rr.Body.String())
	}
}
