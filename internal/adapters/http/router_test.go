package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kaju0475/samduk/internal/adapters/memory"
	"github.com/kaju0475/samduk/internal/adapters/security"
	"github.com/kaju0475/samduk/internal/application"
	"github.com/kaju0475/samduk/internal/domain"
)

type envelope struct {
	Status  string          `json:"status"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	repos := memory.NewRepositories()
	signer, err := security.NewJWTSigner("router-test-secret")
	if err != nil {
		t.Fatalf("init signer: %v", err)
	}
	svc := application.NewService(application.Dependencies{
		Cylinders: repos.Cylinders,
		History:   repos.History,
		Commits:   memory.NewCommitter(repos.Cylinders, repos.History),
		Customers: repos.Customers,
		Users:     repos.Users,
		Sessions:  memory.NewSessionStore(),
		QRTokens:  memory.NewQRTokenStore(),
		Hasher:    security.NewBcryptHasher(4),
		Signer:    signer,
	})
	if err := svc.EnsureUser(context.Background(), "admin", "관리자", domain.RoleAdmin, "secret-pw"); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	srv := httptest.NewServer(NewRouter(NewHandler(svc)))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, srv *httptest.Server, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, srv.URL+path, &buf)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode %s %s: %v", method, path, err)
	}
	return resp.StatusCode, env
}

func login(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	status, env := doJSON(t, srv, http.MethodPost, "/auth/v1/login", "", map[string]string{
		"username": "admin",
		"password": "secret-pw",
	})
	if status != http.StatusOK {
		t.Fatalf("login: status %d, body %+v", status, env)
	}
	var result struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatalf("decode login data: %v", err)
	}
	if result.Token == "" {
		t.Fatal("login returned empty token")
	}
	return result.Token
}

func TestAPIRequiresAuth(t *testing.T) {
	srv := newTestServer(t)

	status, env := doJSON(t, srv, http.MethodGet, "/api/master/cylinders", "", nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("want 401, got %d", status)
	}
	if env.Status != "error" || env.Code == "" {
		t.Fatalf("error envelope incomplete: %+v", env)
	}
}

func TestLoginWrongPasswordIs401(t *testing.T) {
	srv := newTestServer(t)

	status, env := doJSON(t, srv, http.MethodPost, "/auth/v1/login", "", map[string]string{
		"username": "admin",
		"password": "wrong",
	})
	if status != http.StatusUnauthorized {
		t.Fatalf("want 401, got %d (%+v)", status, env)
	}
}

func TestCylinderLifecycleOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	token := login(t, srv)

	status, env := doJSON(t, srv, http.MethodPost, "/api/master/cylinders", token, map[string]string{
		"serialNumber": "SN-001",
		"gasType":      "O2",
	})
	if status != http.StatusCreated {
		t.Fatalf("create: want 201, got %d (%+v)", status, env)
	}
	var created domain.Cylinder
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("decode cylinder: %v", err)
	}
	if created.Status != domain.StatusEmpty || created.ID == "" {
		t.Fatalf("unexpected created cylinder: %+v", created)
	}

	status, env = doJSON(t, srv, http.MethodPost, "/api/master/cylinders", token, map[string]string{
		"serialNumber": "SN-001",
		"gasType":      "O2",
	})
	if status != http.StatusConflict || env.Code != "CONFLICT" {
		t.Fatalf("duplicate serial: want 409 CONFLICT, got %d %s", status, env.Code)
	}

	work := func(path string, body map[string]any, wantProcessed bool) application.BatchResult {
		t.Helper()
		status, env := doJSON(t, srv, http.MethodPost, path, token, body)
		if status != http.StatusOK {
			t.Fatalf("%s: want 200, got %d (%+v)", path, status, env)
		}
		var result application.BatchResult
		if err := json.Unmarshal(env.Data, &result); err != nil {
			t.Fatalf("decode batch result: %v", err)
		}
		if result.Processed != wantProcessed {
			t.Fatalf("%s: processed=%v, want %v (%+v)", path, result.Processed, wantProcessed, result)
		}
		return result
	}

	work("/api/work/charging", map[string]any{"action": "START", "cylinderIds": []string{created.ID}}, true)
	work("/api/work/charging", map[string]any{"action": "COMPLETE", "cylinderIds": []string{created.ID}}, true)

	status, env = doJSON(t, srv, http.MethodPost, "/api/master/customers", token, map[string]string{
		"name": "거래처 A",
	})
	if status != http.StatusCreated {
		t.Fatalf("create customer: want 201, got %d (%+v)", status, env)
	}
	var customer domain.Customer
	if err := json.Unmarshal(env.Data, &customer); err != nil {
		t.Fatalf("decode customer: %v", err)
	}

	result := work("/api/work/delivery", map[string]any{
		"action":      "DELIVERY",
		"cylinderIds": []string{created.ID},
		"customerId":  customer.ID,
	}, true)
	if result.Cylinders[0].Status != domain.StatusDelivered {
		t.Fatalf("delivery item status: %+v", result.Cylinders[0])
	}

	status, env = doJSON(t, srv, http.MethodGet, "/api/history?cylinderId="+created.ID, token, nil)
	if status != http.StatusOK {
		t.Fatalf("history: want 200, got %d (%+v)", status, env)
	}
	var events []domain.Event
	if err := json.Unmarshal(env.Data, &events); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	wantActions := []domain.Action{domain.ActionCreate, domain.ActionStart, domain.ActionComplete, domain.ActionDelivery}
	if len(events) != len(wantActions) {
		t.Fatalf("want %d events, got %d: %+v", len(wantActions), len(events), events)
	}
	for i, want := range wantActions {
		if events[i].Action != want {
			t.Fatalf("event %d: want %s, got %s", i, want, events[i].Action)
		}
	}

	status, env = doJSON(t, srv, http.MethodGet, "/api/dashboard/stats", token, nil)
	if status != http.StatusOK {
		t.Fatalf("stats: want 200, got %d", status)
	}
	var stats application.DashboardStats
	if err := json.Unmarshal(env.Data, &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.Delivered != 1 || stats.Total != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	status, env = doJSON(t, srv, http.MethodGet, "/api/system/reports/long-term", token, nil)
	if status != http.StatusOK {
		t.Fatalf("report: want 200, got %d", status)
	}
	var report application.LongTermReport
	if err := json.Unmarshal(env.Data, &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.TotalCylinders != 1 || report.TotalsByAction[domain.ActionDelivery] != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestWorkBatchPartialFailureStays200(t *testing.T) {
	srv := newTestServer(t)
	token := login(t, srv)

	status, env := doJSON(t, srv, http.MethodPost, "/api/master/cylinders", token, map[string]string{
		"serialNumber": "SN-OK",
		"gasType":      "O2",
	})
	if status != http.StatusCreated {
		t.Fatalf("create: got %d (%+v)", status, env)
	}
	var created domain.Cylinder
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("decode cylinder: %v", err)
	}

	status, env = doJSON(t, srv, http.MethodPost, "/api/work/charging", token, map[string]any{
		"action":      "START",
		"cylinderIds": []string{created.ID, "cyl_missing"},
	})
	if status != http.StatusOK {
		t.Fatalf("partial batch: want 200, got %d (%+v)", status, env)
	}
	var result application.BatchResult
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatalf("decode batch: %v", err)
	}
	if result.Processed {
		t.Fatalf("batch with a failed item must not report processed: %+v", result)
	}
	if len(result.Cylinders) != 2 {
		t.Fatalf("want 2 item results, got %+v", result.Cylinders)
	}
	if result.Cylinders[0].Status != domain.StatusCharging {
		t.Fatalf("healthy item must still transition: %+v", result.Cylinders[0])
	}
	if result.Cylinders[1].ErrorCode != "NOT_FOUND" {
		t.Fatalf("missing item: want NOT_FOUND, got %+v", result.Cylinders[1])
	}
}

func TestWorkEndpointRejectsForeignAction(t *testing.T) {
	srv := newTestServer(t)
	token := login(t, srv)

	status, env := doJSON(t, srv, http.MethodPost, "/api/work/charging", token, map[string]any{
		"action":      "DELIVERY",
		"cylinderIds": []string{"cyl_1"},
	})
	if status != http.StatusBadRequest || env.Code != "INVALID_REQUEST" {
		t.Fatalf("want 400 INVALID_REQUEST, got %d %s", status, env.Code)
	}
}

func TestDuplicateIDsRejectedAsRequestError(t *testing.T) {
	srv := newTestServer(t)
	token := login(t, srv)

	status, env := doJSON(t, srv, http.MethodPost, "/api/work/charging", token, map[string]any{
		"action":      "START",
		"cylinderIds": []string{"cyl_1", "cyl_1"},
	})
	if status != http.StatusBadRequest {
		t.Fatalf("duplicate ids: want 400, got %d (%+v)", status, env)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	srv := newTestServer(t)
	token := login(t, srv)

	status, env := doJSON(t, srv, http.MethodPost, "/auth/v1/logout", token, nil)
	if status != http.StatusOK {
		t.Fatalf("logout: want 200, got %d (%+v)", status, env)
	}
	status, _ = doJSON(t, srv, http.MethodGet, "/api/master/cylinders", token, nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("revoked token: want 401, got %d", status)
	}
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	resp, err := srv.Client().Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz: want 200, got %d", resp.StatusCode)
	}
}
