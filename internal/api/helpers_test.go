package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/patientlog/internal/db"
	"github.com/terraincognita07/patientlog/internal/i18n"
	"github.com/terraincognita07/patientlog/internal/identity"
	"github.com/terraincognita07/patientlog/internal/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var errProviderDown = errors.New("provider down")

type fakeVerifier struct {
	claims map[string]identity.Claims
}

func (verifier fakeVerifier) Verify(_ context.Context, accessToken string) (identity.Claims, error) {
	switch accessToken {
	case "":
		return identity.Claims{}, identity.ErrTokenEmpty
	case "provider-down":
		return identity.Claims{}, errProviderDown
	}
	claims, ok := verifier.claims[accessToken]
	if !ok {
		return identity.Claims{}, identity.ErrUnauthorized
	}
	return claims, nil
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (clock *testClock) Now() time.Time {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	return clock.now
}

func (clock *testClock) Advance(delta time.Duration) {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	clock.now = clock.now.Add(delta)
}

type testEnv struct {
	app      *fiber.App
	database *gorm.DB
	store    *storage.FilesystemStore
	clock    *testClock
}

var apiTestNow = time.Date(2026, time.April, 20, 10, 0, 0, 0, time.UTC)

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	tempDir := t.TempDir()
	database, err := db.OpenSQLite(filepath.Join(tempDir, "patientlog-api-test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("open sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	store, err := storage.NewFilesystemStore(filepath.Join(tempDir, "blobs"))
	if err != nil {
		t.Fatalf("init blob store: %v", err)
	}

	i18nManager, err := i18n.NewManager("en")
	if err != nil {
		t.Fatalf("init i18n: %v", err)
	}

	clock := &testClock{now: apiTestNow}
	handler, err := NewHandler(database, Options{
		SecretKey: "test-secret-key",
		Location:  time.UTC,
		I18n:      i18nManager,
		Verifier: fakeVerifier{claims: map[string]identity.Claims{
			"token-alice": {Subject: "sub-alice", Email: "alice@example.com", Name: "Alice"},
			"token-bob":   {Subject: "sub-bob", Email: "bob@example.com", Name: "Bob"},
		}},
		Mirror: storage.NewMirror(store, zap.NewNop()),
		Logger: zap.NewNop(),
		Now:    clock.Now,
	})
	if err != nil {
		t.Fatalf("init handler: %v", err)
	}

	return &testEnv{
		app:      NewApp(handler, AppOptions{}),
		database: database,
		store:    store,
		clock:    clock,
	}
}

func newRequest(t *testing.T, method string, path string) *http.Request {
	t.Helper()
	return httptest.NewRequest(method, path, nil)
}

// do sends a request with an optional JSON body and auth cookie header.
func (env *testEnv) do(t *testing.T, method string, path string, body any, authCookie string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	request := httptest.NewRequest(method, path, reader)
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if authCookie != "" {
		request.Header.Set("Cookie", authCookie)
	}

	response, err := env.app.Test(request, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	t.Cleanup(func() {
		_ = response.Body.Close()
	})
	return response
}

func (env *testEnv) login(t *testing.T, accessToken string) string {
	t.Helper()

	response := env.do(t, http.MethodPost, "/api/auth/login", map[string]any{"access_token": accessToken}, "")
	if response.StatusCode != http.StatusOK {
		t.Fatalf("login expected status 200, got %d", response.StatusCode)
	}
	value := responseCookieValue(response.Cookies(), authCookieName)
	if value == "" {
		t.Fatal("expected auth cookie after login")
	}
	return authCookieName + "=" + value
}

func expectStatus(t *testing.T, response *http.Response, expected int) {
	t.Helper()
	if response.StatusCode != expected {
		body, _ := io.ReadAll(response.Body)
		t.Fatalf("expected status %d, got %d: %s", expected, response.StatusCode, string(body))
	}
}

func decodeJSON(t *testing.T, response *http.Response, dest any) {
	t.Helper()
	if err := json.NewDecoder(response.Body).Decode(dest); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
}

func responseCookieValue(cookies []*http.Cookie, name string) string {
	for _, cookie := range cookies {
		if cookie.Name == name {
			return cookie.Value
		}
	}
	return ""
}

func readAPIError(t *testing.T, body io.Reader) string {
	t.Helper()

	payload := map[string]string{}
	raw, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
	return payload["error"]
}

func validLogBody() map[string]any {
	return map[string]any{
		"time":             "09:30",
		"symptoms":         []string{"Headache", "Fatigue"},
		"symptom_severity": 6,
		"sleep_quality":    "Poor",
		"activity_level":   "Light",
		"mood":             "🙁",
		"notes":            "rough morning",
	}
}

func uintString(value uint) string {
	return strconv.FormatUint(uint64(value), 10)
}
