package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/learnhub-api/api"
	"github.com/sahilchouksey/learnhub-api/database"
	"github.com/sahilchouksey/learnhub-api/database/dbtest"
	"github.com/sahilchouksey/learnhub-api/model"
	"github.com/sahilchouksey/learnhub-api/services"
	"github.com/sahilchouksey/learnhub-api/utils/auth"
	"github.com/sahilchouksey/learnhub-api/utils/logger"
	"gorm.io/gorm"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details []struct {
			Field string `json:"field"`
		} `json:"details"`
	} `json:"error"`
}

type testServer struct {
	app *fiber.App
	db  *gorm.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	auth.Cost = 4

	db := dbtest.New(t)
	jwtManager := auth.NewJWTManager(auth.JWTConfig{
		Secret:        "test-secret",
		Expiry:        time.Hour,
		RefreshExpiry: 24 * time.Hour,
		Issuer:        "learnhub-test",
	})
	registry := services.NewRegistry(services.RegistryConfig{
		DB:            db,
		JWT:           jwtManager,
		WebhookSecret: "hook-secret",
		Log:           logger.Nop(),
	})

	server := api.NewAPIServer(":0", logger.Nop())
	SetupRoutes(server.GetEngine(), Config{
		Store:          database.NewGORMStore(db, logger.Nop()),
		DB:             db,
		JWT:            jwtManager,
		AllowedOrigins: "http://localhost:3000",
		Log:            logger.Nop(),
	}, registry)

	return &testServer{app: server.GetEngine(), db: db}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("%s %s: decode body: %v", method, path, err)
	}
	return resp.StatusCode, env
}

// register creates an account through the API and returns its access token and id.
func (s *testServer) register(t *testing.T, username string) (string, uint) {
	t.Helper()
	status, env := s.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":    username + "@example.com",
		"username": username,
		"password": "correct-horse",
		"name":     username,
	})
	if status != http.StatusCreated {
		t.Fatalf("register %s: status %d", username, status)
	}
	var result struct {
		AccessToken string `json:"access_token"`
		User        struct {
			ID uint `json:"id"`
		} `json:"user"`
	}
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatalf("decode auth result: %v", err)
	}
	return result.AccessToken, result.User.ID
}

func decodeID(t *testing.T, raw json.RawMessage) uint {
	t.Helper()
	var v struct {
		ID uint `json:"id"`
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("decode id: %v", err)
	}
	return v.ID
}

func TestPing(t *testing.T) {
	s := newTestServer(t)
	status, env := s.do(t, http.MethodGet, "/ping", "", nil)
	if status != http.StatusOK || !env.Success {
		t.Fatalf("ping: status %d success %v", status, env.Success)
	}
}

func TestEnrollmentFlow(t *testing.T) {
	s := newTestServer(t)

	authorToken, authorID := s.register(t, "lecturer")
	studentToken, _ := s.register(t, "student")

	// students may not author courses
	status, _ := s.do(t, http.MethodPost, "/api/v1/courses", studentToken, map[string]interface{}{
		"title": "Nope", "price": 100,
	})
	if status != http.StatusForbidden {
		t.Fatalf("student create course: status %d, want 403", status)
	}

	if err := s.db.Model(&model.User{}).Where("id = ?", authorID).Update("role", model.RoleInstructor).Error; err != nil {
		t.Fatalf("promote: %v", err)
	}

	status, env := s.do(t, http.MethodPost, "/api/v1/courses", authorToken, map[string]interface{}{
		"title":        "Go Basics",
		"price":        1000,
		"is_published": true,
	})
	if status != http.StatusCreated {
		t.Fatalf("create course: status %d error %+v", status, env.Error)
	}
	courseID := decodeID(t, env.Data)

	status, env = s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/courses/%d/lessons", courseID), authorToken, map[string]interface{}{
		"title": "Intro", "position": 1,
	})
	if status != http.StatusCreated {
		t.Fatalf("create lesson: status %d error %+v", status, env.Error)
	}
	lessonID := decodeID(t, env.Data)

	// paid lesson content is gated
	status, _ = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/lessons/%d", lessonID), studentToken, nil)
	if status != http.StatusForbidden {
		t.Fatalf("lesson before enroll: status %d, want 403", status)
	}

	enrollPath := fmt.Sprintf("/api/v1/courses/%d/enroll", courseID)
	status, env = s.do(t, http.MethodPost, enrollPath, studentToken, map[string]interface{}{
		"payment": map[string]string{"method": "card", "transaction_id": "txn-1"},
	})
	if status != http.StatusCreated {
		t.Fatalf("enroll: status %d error %+v", status, env.Error)
	}

	status, env = s.do(t, http.MethodPost, enrollPath, studentToken, nil)
	if status != http.StatusConflict || env.Error == nil || env.Error.Code != "ALREADY_ENROLLED" {
		t.Fatalf("second enroll: status %d error %+v", status, env.Error)
	}

	progressPath := fmt.Sprintf("/api/v1/courses/%d/lessons/%d/progress", courseID, lessonID)
	status, env = s.do(t, http.MethodPut, progressPath, studentToken, map[string]interface{}{"percentage": 150})
	if status != http.StatusBadRequest || env.Error == nil || len(env.Error.Details) == 0 || env.Error.Details[0].Field != "percentage" {
		t.Fatalf("bad progress: status %d error %+v", status, env.Error)
	}

	status, _ = s.do(t, http.MethodPut, progressPath, studentToken, map[string]interface{}{"percentage": 100, "is_completed": true})
	if status != http.StatusOK {
		t.Fatalf("progress: status %d", status)
	}

	status, env = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/courses/%d/progress", courseID), studentToken, nil)
	if status != http.StatusOK {
		t.Fatalf("get progress: status %d", status)
	}
	var summary struct {
		CompletedLessons int     `json:"completed_lessons"`
		CompletionRate   float64 `json:"completion_rate"`
	}
	if err := json.Unmarshal(env.Data, &summary); err != nil {
		t.Fatalf("decode progress: %v", err)
	}
	if summary.CompletedLessons != 1 || summary.CompletionRate != 100 {
		t.Fatalf("summary = %+v", summary)
	}

	// provider confirms the payment
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhook",
		bytes.NewBufferString(`{"transaction_id":"txn-1","status":"completed"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Secret", "wrong")
	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatalf("webhook: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("webhook with wrong secret: status %d, want 401", resp.StatusCode)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/api/v1/enrollments", "/api/v1/notifications", "/api/v1/profile"} {
		status, env := s.do(t, http.MethodGet, path, "", nil)
		if status != http.StatusUnauthorized || env.Success {
			t.Errorf("GET %s without token: status %d", path, status)
		}
	}

	status, _ := s.do(t, http.MethodGet, "/api/v1/admin/users", "", nil)
	if status != http.StatusUnauthorized {
		t.Errorf("admin without token: status %d", status)
	}
}

func TestBearerTokenChecksBlacklist(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.register(t, "reader")

	status, env := s.do(t, http.MethodGet, "/api/v1/profile", token, nil)
	if status != http.StatusOK || !env.Success {
		t.Fatalf("profile: status %d error %+v", status, env.Error)
	}

	status, env = s.do(t, http.MethodPost, "/api/v1/auth/logout", token, nil)
	if status != http.StatusOK {
		t.Fatalf("logout: status %d error %+v", status, env.Error)
	}

	status, env = s.do(t, http.MethodGet, "/api/v1/profile", token, nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("profile after logout: status %d, want 401", status)
	}
	if env.Error == nil || env.Error.Message != "Token has been revoked" {
		t.Fatalf("profile after logout: error %+v", env.Error)
	}
}

func TestAnonymousCatalogHidesDrafts(t *testing.T) {
	s := newTestServer(t)
	token, id := s.register(t, "author")
	s.db.Model(&model.User{}).Where("id = ?", id).Update("role", model.RoleInstructor)

	for _, published := range []bool{true, false} {
		status, env := s.do(t, http.MethodPost, "/api/v1/courses", token, map[string]interface{}{
			"title": fmt.Sprintf("Course published=%v", published), "price": 0, "is_published": published,
		})
		if status != http.StatusCreated {
			t.Fatalf("create: status %d error %+v", status, env.Error)
		}
	}

	status, env := s.do(t, http.MethodGet, "/api/v1/courses", "", nil)
	if status != http.StatusOK {
		t.Fatalf("list: status %d", status)
	}
	var courses []model.Course
	if err := json.Unmarshal(env.Data, &courses); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(courses) != 1 || !courses[0].IsPublished {
		t.Fatalf("anonymous listing = %+v, want only the published course", courses)
	}

	status, env = s.do(t, http.MethodGet, "/api/v1/courses?mine=true", token, nil)
	if status != http.StatusOK {
		t.Fatalf("mine: status %d", status)
	}
	if err := json.Unmarshal(env.Data, &courses); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(courses) != 2 {
		t.Fatalf("own listing has %d courses, want 2", len(courses))
	}
}
