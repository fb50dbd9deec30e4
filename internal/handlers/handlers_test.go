package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ahmedoumar/storify/internal/accounts"
	"github.com/ahmedoumar/storify/internal/auth"
	"github.com/ahmedoumar/storify/internal/email"
	"github.com/ahmedoumar/storify/internal/models"
	"github.com/ahmedoumar/storify/internal/stories"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type captureMailer struct {
	mu     sync.Mutex
	tokens map[email.Kind]string
	ch     chan struct{}
}

func newCaptureMailer() *captureMailer {
	return &captureMailer{tokens: make(map[email.Kind]string), ch: make(chan struct{}, 16)}
}

func (m *captureMailer) Deliver(_ context.Context, _, token string, kind email.Kind) error {
	m.mu.Lock()
	m.tokens[kind] = token
	m.mu.Unlock()
	m.ch <- struct{}{}
	return nil
}

func (m *captureMailer) token(t *testing.T, kind email.Kind) string {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		m.mu.Lock()
		token, ok := m.tokens[kind]
		m.mu.Unlock()
		if ok {
			return token
		}
		select {
		case <-m.ch:
		case <-deadline:
			t.Fatalf("no %s delivery within deadline", kind)
		}
	}
}

func newTestServer(t *testing.T) (*httptest.Server, *captureMailer) {
	t.Helper()

	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := database.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.AutoMigrate(&models.Account{}, &models.Story{}))

	mailer := newCaptureMailer()
	service := auth.NewService(accounts.NewStore(database), auth.NewBcryptHasher(bcrypt.MinCost), mailer)

	handler, err := New(service, stories.NewStore(database), Options{
		SigningKey: "test-signing-key",
		TokenTTL:   time.Minute,
	})
	require.NoError(t, err)

	srv := httptest.NewServer(handler.Router())
	t.Cleanup(srv.Close)
	return srv, mailer
}

func postJSON(t *testing.T, client *http.Client, url string, body any, bearer string) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := client.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestSignupConfirmLoginOverHTTP(t *testing.T) {
	srv, mailer := newTestServer(t)
	client := srv.Client()

	resp := postJSON(t, client, srv.URL+"/v1/auth/signup", map[string]string{"email": "a@x.com"}, "")
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	resp.Body.Close()

	token := mailer.token(t, email.KindConfirmation)

	// wrong token is rejected
	resp = postJSON(t, client, srv.URL+"/v1/auth/confirm", map[string]string{
		"email": "a@x.com", "token": "wrong", "password": "pw1", "confirm_password": "pw1",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// mismatched passwords never reach the core
	resp = postJSON(t, client, srv.URL+"/v1/auth/confirm", map[string]string{
		"email": "a@x.com", "token": token, "password": "pw1", "confirm_password": "pw2",
	}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, client, srv.URL+"/v1/auth/confirm", map[string]string{
		"email": "a@x.com", "token": token, "password": "pw1", "confirm_password": "pw1",
	}, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, client, srv.URL+"/v1/auth/login", map[string]string{
		"email": "a@x.com", "password": "pw1",
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.NotEmpty(t, body["access_token"])

	resp = postJSON(t, client, srv.URL+"/v1/auth/login", map[string]string{
		"email": "a@x.com", "password": "pw2",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestLoginFailureStatuses(t *testing.T) {
	srv, _ := newTestServer(t)
	client := srv.Client()

	resp := postJSON(t, client, srv.URL+"/v1/auth/login", map[string]string{
		"email": "nobody@x.com", "password": "pw",
	}, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, client, srv.URL+"/v1/auth/signup", map[string]string{"email": "b@x.com"}, "")
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	resp.Body.Close()

	// unconfirmed accounts are told so, enabling a resend action
	resp = postJSON(t, client, srv.URL+"/v1/auth/login", map[string]string{
		"email": "b@x.com", "password": "pw",
	}, "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
}

func TestSignupConflictOnActiveAccount(t *testing.T) {
	srv, mailer := newTestServer(t)
	client := srv.Client()

	resp := postJSON(t, client, srv.URL+"/v1/auth/signup", map[string]string{"email": "a@x.com"}, "")
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	resp.Body.Close()

	token := mailer.token(t, email.KindConfirmation)
	resp = postJSON(t, client, srv.URL+"/v1/auth/confirm", map[string]string{
		"email": "a@x.com", "token": token, "password": "pw1", "confirm_password": "pw1",
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, client, srv.URL+"/v1/auth/signup", map[string]string{"email": "a@x.com"}, "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

func TestPasswordResetOverHTTP(t *testing.T) {
	srv, mailer := newTestServer(t)
	client := srv.Client()

	resp := postJSON(t, client, srv.URL+"/v1/auth/signup", map[string]string{"email": "a@x.com"}, "")
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	resp.Body.Close()

	confirmToken := mailer.token(t, email.KindConfirmation)
	resp = postJSON(t, client, srv.URL+"/v1/auth/confirm", map[string]string{
		"email": "a@x.com", "token": confirmToken, "password": "pw1", "confirm_password": "pw1",
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, client, srv.URL+"/v1/auth/reset/request", map[string]string{"email": "a@x.com"}, "")
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	resp.Body.Close()

	resetToken := mailer.token(t, email.KindReset)
	resp = postJSON(t, client, srv.URL+"/v1/auth/reset", map[string]string{
		"email": "a@x.com", "token": resetToken, "new_password": "pw3", "confirm_password": "pw3",
	}, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// token is single-use
	resp = postJSON(t, client, srv.URL+"/v1/auth/reset", map[string]string{
		"email": "a@x.com", "token": resetToken, "new_password": "pw4", "confirm_password": "pw4",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, client, srv.URL+"/v1/auth/login", map[string]string{
		"email": "a@x.com", "password": "pw3",
	}, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestStoriesRequireAuth(t *testing.T) {
	srv, _ := newTestServer(t)
	client := srv.Client()

	resp, err := client.Get(srv.URL + "/v1/stories/")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestStoryLifecycleOverHTTP(t *testing.T) {
	srv, mailer := newTestServer(t)
	client := srv.Client()

	resp := postJSON(t, client, srv.URL+"/v1/auth/signup", map[string]string{"email": "a@x.com"}, "")
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	resp.Body.Close()

	token := mailer.token(t, email.KindConfirmation)
	resp = postJSON(t, client, srv.URL+"/v1/auth/confirm", map[string]string{
		"email": "a@x.com", "token": token, "password": "pw1", "confirm_password": "pw1",
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, client, srv.URL+"/v1/auth/login", map[string]string{
		"email": "a@x.com", "password": "pw1",
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	access, _ := decodeBody(t, resp)["access_token"].(string)
	require.NotEmpty(t, access)

	resp = postJSON(t, client, srv.URL+"/v1/stories/", map[string]any{
		"title": "The Lighthouse", "content": "Once upon a time...", "genre": "Mystery",
	}, access)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	storyID, _ := decodeBody(t, resp)["id"].(string)
	require.NotEmpty(t, storyID)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/v1/stories/"+storyID, nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+access)
	getResp, err := client.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, getResp.StatusCode)
	assert.Equal(t, "The Lighthouse", decodeBody(t, getResp)["title"])

	req, err = http.NewRequest(http.MethodDelete, srv.URL+"/v1/stories/"+storyID, nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+access)
	delResp, err := client.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, delResp.StatusCode)
	delResp.Body.Close()
}

func TestDeleteAccountOverHTTP(t *testing.T) {
	srv, mailer := newTestServer(t)
	client := srv.Client()

	resp := postJSON(t, client, srv.URL+"/v1/auth/signup", map[string]string{"email": "a@x.com"}, "")
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	resp.Body.Close()

	token := mailer.token(t, email.KindConfirmation)
	resp = postJSON(t, client, srv.URL+"/v1/auth/confirm", map[string]string{
		"email": "a@x.com", "token": token, "password": "pw1", "confirm_password": "pw1",
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, client, srv.URL+"/v1/auth/login", map[string]string{
		"email": "a@x.com", "password": "pw1",
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	access, _ := decodeBody(t, resp)["access_token"].(string)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/v1/auth/account", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+access)
	delResp, err := client.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, delResp.StatusCode)
	delResp.Body.Close()

	// account is gone
	resp, err = client.Get(srv.URL + "/v1/auth/exists?email=a@x.com")
	require.NoError(t, err)
	body := decodeBody(t, resp)
	assert.Equal(t, false, body["exists"])
}
