package httpapi

import (
	"bytes"
	"context"
	"log/slog"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/sellingcar/internal/catalog"
	"github.com/dmitrijs2005/sellingcar/internal/logging"
	"github.com/dmitrijs2005/sellingcar/internal/server/auth"
	"github.com/dmitrijs2005/sellingcar/internal/server/config"
	"github.com/dmitrijs2005/sellingcar/internal/server/repositories/records"
	"github.com/dmitrijs2005/sellingcar/internal/server/seed"
	"github.com/dmitrijs2005/sellingcar/internal/server/services"
)

const secret = "test-secret"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	c, err := catalog.Default()
	require.NoError(t, err)
	repo := records.NewMemoryRepository()
	rs := services.NewRecordService(c, repo)
	require.NoError(t, seed.Load(context.Background(), c, rs, seed.Sample()))
	cs := services.NewCustomerService(repo, &config.Config{SecretKey: secret, TokenValidity: time.Hour})

	srv := httptest.NewServer(NewServer(":0", logging.Nop(), rs, cs, secret).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, body string, hdr ...string) (*http.Response, string) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, rd)
	require.NoError(t, err)
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(raw)
}

func decodeRows(t *testing.T, body string) []map[string]any {
	t.Helper()
	var rows []map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &rows))
	return rows
}

func TestList(t *testing.T) {
	srv := newTestServer(t)

	resp, body := do(t, http.MethodGet, srv.URL+"/api/agencies", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rows := decodeRows(t, body)
	require.Len(t, rows, 3)
	assert.Equal(t, "Tehran", rows[0]["city"])
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	resp, body = do(t, http.MethodGet, srv.URL+"/api/boats", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"message":"not found"}`, body)
}

func TestList_DerivedFields(t *testing.T) {
	srv := newTestServer(t)

	_, body := do(t, http.MethodGet, srv.URL+"/api/sellingplans", "")
	rows := decodeRows(t, body)
	require.Len(t, rows, 3)
	assert.Equal(t, "Iran Khodro", rows[0]["companyName"])
	assert.Equal(t, "Spot", rows[0]["planType"])
	assert.Equal(t, "Overbook", rows[1]["planType"])
	assert.Equal(t, "Installment", rows[2]["planType"])
}

func TestCreateUpdateDelete(t *testing.T) {
	srv := newTestServer(t)
	base := srv.URL + "/api/cars"

	resp, body := do(t, http.MethodPost, base, `{"model":"Saina","color":"red","productYear":null}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	assert.JSONEq(t, `{"id":4,"model":"Saina","color":"red","engineType":null,"productYear":null}`, body)

	resp, body = do(t, http.MethodPut, base+"/4", `{"color":"blue","productYear":2024}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)

	_, body = do(t, http.MethodGet, base, "")
	rows := decodeRows(t, body)
	require.Len(t, rows, 4)
	assert.Equal(t, "blue", rows[3]["color"])
	assert.Equal(t, float64(2024), rows[3]["productYear"])
	assert.Equal(t, "white", rows[0]["color"])

	resp, _ = do(t, http.MethodDelete, base+"/4", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, body = do(t, http.MethodDelete, base+"/4", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"message":"not found"}`, body)
}

func TestCompositeKey(t *testing.T) {
	srv := newTestServer(t)

	resp, body := do(t, http.MethodPut, srv.URL+"/api/loans/3/2", `{"dueDate":"2026-01-15"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Contains(t, body, `"dueDate":"2026-01-15"`)

	resp, _ = do(t, http.MethodDelete, srv.URL+"/api/participates/1/1", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = do(t, http.MethodDelete, srv.URL+"/api/participates/1", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestValidationAndConflict(t *testing.T) {
	srv := newTestServer(t)

	resp, body := do(t, http.MethodPost, srv.URL+"/api/cars", `{"productYear":"soon"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.JSONEq(t, `{"message":"productYear must be an integer"}`, body)

	resp, _ = do(t, http.MethodPost, srv.URL+"/api/cars", `not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = do(t, http.MethodPost, srv.URL+"/api/spotsales", `{"planId":1,"spotPrice":5}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.JSONEq(t, `{"message":"record already exists"}`, body)
}

func TestLogin(t *testing.T) {
	srv := newTestServer(t)

	resp, body := do(t, http.MethodPost, srv.URL+"/customers/login",
		`{"nationalId":"0012345678","phoneNumber":"09120000001"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)

	var out struct {
		User  map[string]any `json:"user"`
		Token string         `json:"token"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	assert.Equal(t, "Sara", out.User["name"])
	id, err := auth.CustomerIDFromToken(out.Token, []byte(secret))
	require.NoError(t, err)
	assert.Equal(t, "1", id)

	resp, _ = do(t, http.MethodGet, srv.URL+"/api/cars", "", "Authorization", "Bearer "+out.Token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = do(t, http.MethodPost, srv.URL+"/customers/login",
		`{"nationalId":"0012345678","phoneNumber":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.JSONEq(t, `{"message":"Invalid national ID or phone number"}`, body)
}

func TestAccessToken(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := do(t, http.MethodGet, srv.URL+"/api/cars", "", "Authorization", "Bearer garbage")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = do(t, http.MethodGet, srv.URL+"/api/cars", "", "Authorization", "Basic abc")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	expired, err := auth.GenerateToken("1", []byte(secret), -time.Minute)
	require.NoError(t, err)
	resp, _ = do(t, http.MethodGet, srv.URL+"/api/cars", "", "Authorization", "Bearer "+expired)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRequestIDEchoed(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := do(t, http.MethodGet, srv.URL+"/healthz", "", "X-Request-ID", "abc-123")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "abc-123", resp.Header.Get("X-Request-ID"))

	r1, _ := do(t, http.MethodGet, srv.URL+"/healthz", "")
	r2, _ := do(t, http.MethodGet, srv.URL+"/healthz", "")
	assert.Len(t, r1.Header.Get("X-Request-ID"), 26)
	assert.NotEqual(t, r1.Header.Get("X-Request-ID"), r2.Header.Get("X-Request-ID"))
}

func TestAccessLog_CarriesCustomerID(t *testing.T) {
	c, err := catalog.Default()
	require.NoError(t, err)
	repo := records.NewMemoryRepository()
	rs := services.NewRecordService(c, repo)
	cs := services.NewCustomerService(repo, &config.Config{SecretKey: secret, TokenValidity: time.Hour})
	var buf bytes.Buffer
	h := NewServer(":0", logging.NewJSONLogger(&buf, slog.LevelInfo), rs, cs, secret).Handler()

	token, err := auth.GenerateToken("42", []byte(secret), time.Minute)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/api/cars", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Request-ID", "req-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "request", line["msg"])
	assert.Equal(t, "req-1", line["request_id"])
	assert.Equal(t, "42", line["customer_id"])
}

func TestMetrics(t *testing.T) {
	srv := newTestServer(t)

	do(t, http.MethodGet, srv.URL+"/api/cars", "")
	resp, body := do(t, http.MethodGet, srv.URL+"/metrics", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `sellingcar_http_requests_total{method="GET",route="/api/:resource",status="200"} 1`)
	assert.Contains(t, body, "sellingcar_http_request_duration_seconds")
}

func TestRun_StopsOnCancel(t *testing.T) {
	c, err := catalog.Default()
	require.NoError(t, err)
	repo := records.NewMemoryRepository()
	s := NewServer("127.0.0.1:0", logging.Nop(), services.NewRecordService(c, repo),
		services.NewCustomerService(repo, &config.Config{SecretKey: secret, TokenValidity: time.Hour}), secret)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}
