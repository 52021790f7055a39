package httpapp_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	httpapp "lifecursor/internal/app/http"
	authhandler "lifecursor/internal/http-server/handlers/auth"
	"lifecursor/internal/lib/jwt"
	"lifecursor/internal/lib/logger/handlers/slogdiscard"
	"lifecursor/internal/revocation"
	"lifecursor/internal/services/auth"
	"lifecursor/internal/services/memos"
	"lifecursor/internal/services/tasks"
	"lifecursor/internal/storage/sqlite"
)

const (
	testSecret     = "test-secret"
	tokenTTL       = time.Hour
	passDefaultLen = 10
)

type Suite struct {
	*testing.T
	Server  *httptest.Server
	Revoked *revocation.Memory
}

type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

func (r Response) Decode(t *testing.T, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.Body, v), string(r.Body))
}

func (r Response) Detail(t *testing.T) string {
	t.Helper()

	var body struct {
		Detail string `json:"detail"`
	}
	r.Decode(t, &body)

	return body.Detail
}

func NewSuite(t *testing.T) *Suite {
	t.Helper()
	t.Parallel()

	gin.SetMode(gin.TestMode)

	log := slogdiscard.NewDiscardLogger()

	storage, err := sqlite.New(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close() })

	_, err = storage.Migrate()
	require.NoError(t, err)

	revoked := revocation.NewMemory(log)
	authService := auth.New(log, storage, storage, revoked, jwt.NewIssuer(testSecret), tokenTTL)

	router := httpapp.NewRouter(log, []string{"http://localhost:5173"}, httpapp.Services{
		Auth:     authService,
		Resolver: authService,
		Tasks:    tasks.New(log, storage),
		Memos:    memos.New(log, storage),
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &Suite{
		T:       t,
		Server:  server,
		Revoked: revoked,
	}
}

// Do sends a JSON request; body may be nil and token may be empty.
func (s *Suite) Do(method, path string, body any, token string) Response {
	s.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, s.Server.URL+path, reader)
	require.NoError(s, err)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return s.send(req)
}

func (s *Suite) PostForm(path string, form url.Values) Response {
	s.Helper()

	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, s.Server.URL+path,
		strings.NewReader(form.Encode()))
	require.NoError(s, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return s.send(req)
}

func (s *Suite) send(req *http.Request) Response {
	s.Helper()

	resp, err := s.Server.Client().Do(req)
	require.NoError(s, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(s, err)

	return Response{Status: resp.StatusCode, Header: resp.Header, Body: raw}
}

// SignUp registers a fresh user and returns its credentials and token.
func (s *Suite) SignUp() (username, password, token string) {
	s.Helper()

	username = gofakeit.Username() + gofakeit.DigitN(6)
	password = randomPassword()

	resp := s.Do(http.MethodPost, "/api/auth/register", map[string]string{
		"username": username,
		"password": password,
	}, "")
	require.Equal(s, http.StatusOK, resp.Status, string(resp.Body))

	return username, password, s.Login(username, password)
}

func (s *Suite) Login(username, password string) string {
	s.Helper()

	resp := s.Do(http.MethodPost, "/api/auth/login", map[string]string{
		"username": username,
		"password": password,
	}, "")
	require.Equal(s, http.StatusOK, resp.Status, string(resp.Body))

	var body authhandler.TokenResponse
	resp.Decode(s.T, &body)
	require.Equal(s, "bearer", body.TokenType)
	require.NotEmpty(s, body.AccessToken)

	return body.AccessToken
}

func randomPassword() string {
	return gofakeit.Password(true, true, true, true, false, passDefaultLen)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
