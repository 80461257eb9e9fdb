package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/sundaram/internal/api"
	"github.com/dmitrijs2005/sundaram/internal/common"
	"github.com/dmitrijs2005/sundaram/internal/logging"
	"github.com/dmitrijs2005/sundaram/internal/server/auth"
	"github.com/dmitrijs2005/sundaram/internal/server/blobstore"
	"github.com/dmitrijs2005/sundaram/internal/server/metrics"
	"github.com/dmitrijs2005/sundaram/internal/server/repositories/history"
	"github.com/dmitrijs2005/sundaram/internal/server/repositories/users"
	"github.com/dmitrijs2005/sundaram/internal/server/services"
	"github.com/dmitrijs2005/sundaram/internal/signature"
)

type testServer struct {
	*httptest.Server
	t *testing.T
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()

	store, err := blobstore.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	ur, err := users.OpenFileRepository(ctx, store)
	require.NoError(t, err)
	hr := history.NewFileRepository(store)

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	locks := services.NewUserLocks()
	hist := services.NewHistoryService(hr, ur, locks, logging.Nop{})
	h := NewHandlers(
		services.NewUserService(ur, hist, locks, logging.Nop{}),
		services.NewSieveService(ur, hist, locks, 1_000_000, m, logging.Nop{}),
		hist,
		logging.Nop{},
	)
	router := NewRouter(h, auth.NewAuthenticator(ur, logging.Nop{}, m), logging.Nop{}, RouterOptions{
		BodyLimit:   1 << 10,
		CORSOrigins: []string{"*"},
		MetricsPath: "/metrics",
		Gatherer:    reg,
		Metrics:     m,
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, t: t}
}

// do sends body as JSON. A non-empty secret signs the canonical body with the
// current time.
func (s *testServer) do(method, path string, body any, secret, token string) (*http.Response, []byte) {
	s.t.Helper()

	var raw []byte
	if body != nil {
		var err error
		raw, err = json.Marshal(body)
		require.NoError(s.t, err)
	}
	req, err := http.NewRequest(method, s.URL+path, bytes.NewReader(raw))
	require.NoError(s.t, err)
	req.Header.Set("Content-Type", "application/json")

	if secret != "" {
		canonical, err := signature.CanonicalBody(raw)
		require.NoError(s.t, err)
		req.Header.Set(common.SignatureHeaderName, signature.Sign(secret, canonical, time.Now().Unix()))
	}
	if token != "" {
		req.Header.Set(common.SessionTokenHeaderName, token)
	}

	resp, err := s.Client().Do(req)
	require.NoError(s.t, err)
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(s.t, err)
	return resp, buf.Bytes()
}

func (s *testServer) register(login string) api.SessionResponse {
	s.t.Helper()
	resp, body := s.do(http.MethodPost, "/users/register", api.RegisterRequest{
		Login: login, Email: login + "@example.com", Password: "Secret!1",
	}, "", "")
	require.Equal(s.t, http.StatusOK, resp.StatusCode, string(body))

	var out api.SessionResponse
	require.NoError(s.t, json.Unmarshal(body, &out))
	return out
}

func decodeInto[T any](t *testing.T, body []byte) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(body, &out), string(body))
	return out
}

func TestEndToEnd(t *testing.T) {
	s := newTestServer(t)
	sess := s.register("alice")
	assert.Equal(t, api.MsgRegistered, sess.Message)
	assert.Len(t, sess.SessionSecret, 64)

	resp, body := s.do(http.MethodPost, "/users/authenticate", api.AuthenticateRequest{Login: "alice", Password: "Secret!1"}, "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	sess = decodeInto[api.SessionResponse](t, body)
	secret := sess.SessionSecret

	resp, body = s.do(http.MethodPost, "/sundaram/generate", api.GenerateRequest{Limit: 100}, secret, "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	gen := decodeInto[api.GenerateResponse](t, body)
	assert.Equal(t, 25, gen.Count)
	assert.Equal(t, "found 25 primes up to 100", gen.Message)
	assert.Equal(t, []int{2, 3, 5, 7, 11}, gen.Primes[:5])

	resp, body = s.do(http.MethodGet, "/sundaram/current", nil, secret, sess.SessionToken)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	cur := decodeInto[api.CurrentResponse](t, body)
	assert.Equal(t, api.Params{Limit: 100, Count: 25}, cur.Params)
	assert.Equal(t, gen.Primes, cur.Primes)

	resp, body = s.do(http.MethodPost, "/sundaram/save_params", api.SaveParamsRequest{Name: "small", Limit: 10}, secret, "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, 1, decodeInto[api.SaveParamsResponse](t, body).TotalSaved)

	resp, _ = s.do(http.MethodPost, "/sundaram/save_params", api.SaveParamsRequest{Name: "small", Limit: 20}, secret, "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, body = s.do(http.MethodGet, "/sundaram/saved_params", nil, secret, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	saved := decodeInto[api.SavedParamsResponse](t, body)
	require.Len(t, saved.Params, 1)
	assert.Equal(t, "small", saved.Params[0].Name)

	resp, body = s.do(http.MethodDelete, "/sundaram/saved_params/small", nil, secret, "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, api.DeleteSavedResponse{Message: api.MsgParamsDeleted, DeletedName: "small", Remaining: 0},
		decodeInto[api.DeleteSavedResponse](t, body))

	resp, _ = s.do(http.MethodDelete, "/sundaram/saved_params/small", nil, secret, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = s.do(http.MethodDelete, "/sundaram/current", nil, secret, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decodeInto[api.DeleteCurrentResponse](t, body).Primes)

	resp, body = s.do(http.MethodGet, "/sundaram/current", nil, secret, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.NotEmpty(t, decodeInto[api.ErrorResponse](t, body).Detail)

	resp, body = s.do(http.MethodGet, "/users/history", nil, secret, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	hist := decodeInto[api.HistoryResponse](t, body)
	ops := make([]string, 0, len(hist.History))
	for _, e := range hist.History {
		ops = append(ops, e.Operation)
	}
	assert.Equal(t, []string{
		"register", "auth", "sundaram_generate", "sundaram_get",
		"save_params", "delete_params", "sundaram_delete",
	}, ops)

	resp, _ = s.do(http.MethodDelete, "/users/history", nil, secret, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, body = s.do(http.MethodGet, "/users/history", nil, secret, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, api.MsgHistoryEmpty, decodeInto[api.HistoryResponse](t, body).Message)
}

func TestSignedRoutes_RejectBadSignatures(t *testing.T) {
	s := newTestServer(t)
	sess := s.register("alice")

	resp, body := s.do(http.MethodGet, "/sundaram/current", nil, "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "unauthorized: missing signature", decodeInto[api.ErrorResponse](t, body).Detail)

	resp, _ = s.do(http.MethodGet, "/sundaram/current", nil, strings.Repeat("0", 64), "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// the signature covers the body, so tampering invalidates it
	canonical, err := signature.CanonicalBody([]byte(`{"limit":10}`))
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, s.URL+"/sundaram/generate", strings.NewReader(`{"limit":11}`))
	require.NoError(t, err)
	req.Header.Set(common.SignatureHeaderName, signature.Sign(sess.SessionSecret, canonical, time.Now().Unix()))
	r, err := s.Client().Do(req)
	require.NoError(t, err)
	r.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, r.StatusCode)

	// a future timestamp is outside the window
	req, err = http.NewRequest(http.MethodGet, s.URL+"/sundaram/saved_params", nil)
	require.NoError(t, err)
	req.Header.Set(common.SignatureHeaderName, signature.Sign(sess.SessionSecret, signature.EmptyBody, time.Now().Unix()+30))
	r, err = s.Client().Do(req)
	require.NoError(t, err)
	r.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, r.StatusCode)
}

func TestSignedRoutes_InvalidJSON(t *testing.T) {
	s := newTestServer(t)
	sess := s.register("alice")

	req, err := http.NewRequest(http.MethodPost, s.URL+"/sundaram/generate", strings.NewReader(`{"limit":`))
	require.NoError(t, err)
	req.Header.Set(common.SignatureHeaderName, signature.Sign(sess.SessionSecret, "{}", time.Now().Unix()))
	resp, err := s.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestBodyLimit(t *testing.T) {
	s := newTestServer(t)
	resp, _ := s.do(http.MethodPost, "/users/register", api.RegisterRequest{
		Login: strings.Repeat("a", 2048), Email: "a@example.com", Password: "Secret!1",
	}, "", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRegister_Conflict(t *testing.T) {
	s := newTestServer(t)
	s.register("alice")

	resp, body := s.do(http.MethodPost, "/users/register", api.RegisterRequest{
		Login: "alice", Email: "other@example.com", Password: "Secret!1",
	}, "", "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "login already taken", decodeInto[api.ErrorResponse](t, body).Detail)
}

func TestAuthenticate_WrongPassword(t *testing.T) {
	s := newTestServer(t)
	s.register("alice")

	resp, _ := s.do(http.MethodPost, "/users/authenticate", api.AuthenticateRequest{Login: "alice", Password: "nope"}, "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestGenerate_LimitValidation(t *testing.T) {
	s := newTestServer(t)
	sess := s.register("alice")

	for _, limit := range []int{0, -5, 2_000_000} {
		resp, _ := s.do(http.MethodPost, "/sundaram/generate", api.GenerateRequest{Limit: limit}, sess.SessionSecret, "")
		assert.Equalf(t, http.StatusBadRequest, resp.StatusCode, "limit %d", limit)
	}
}

func TestChangePassword_RotatesSecret(t *testing.T) {
	s := newTestServer(t)
	sess := s.register("alice")

	resp, body := s.do(http.MethodPatch, "/users/password",
		api.ChangePasswordRequest{OldPassword: "Secret!1", NewPassword: "Better!2"}, sess.SessionSecret, "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	out := decodeInto[api.ChangePasswordResponse](t, body)
	assert.NotEqual(t, sess.SessionSecret, out.NewSessionSecret)

	resp, _ = s.do(http.MethodGet, "/sundaram/saved_params", nil, sess.SessionSecret, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = s.do(http.MethodGet, "/sundaram/saved_params", nil, out.NewSessionSecret, out.NewSessionToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = s.do(http.MethodPatch, "/users/password",
		api.ChangePasswordRequest{OldPassword: "wrong", NewPassword: "x"}, out.NewSessionSecret, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealthzAndMetrics(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.do(http.MethodGet, "/healthz", nil, "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", decodeInto[api.PingResponse](t, body).Status)

	resp, body = s.do(http.MethodGet, "/metrics", nil, "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "sundaram_http_requests_total")
}

func TestStatusFromError(t *testing.T) {
	cases := map[error]int{
		common.ErrInvalidSignature:                         http.StatusUnauthorized,
		common.Detail(common.ErrorConflict, "dup"):          http.StatusConflict,
		common.ErrorNotFound:                               http.StatusNotFound,
		common.Detail(common.ErrorBadRequest, "bad limit"): http.StatusBadRequest,
		common.ErrorInternal:                               http.StatusInternalServerError,
		assert.AnError:                                     http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, StatusFromError(err), err.Error())
	}
}

func TestServer_RunStopsOnCancel(t *testing.T) {
	srv := NewServer("127.0.0.1:0", http.NotFoundHandler(), time.Second, logging.Nop{})
	ctx, cancel := context.WithCancel(context.Background())

	errc := make(chan error, 1)
	go func() { errc <- srv.Run(ctx) }()
	cancel()

	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
