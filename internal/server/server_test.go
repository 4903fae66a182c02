package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"task-manager/internal/repository"
	"task-manager/internal/service"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	db, err := repository.NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	taskSvc := service.NewTaskService(repository.NewTaskRepository(db))
	userSvc := service.NewUserService(repository.NewUserRepository(db), "test-secret", time.Hour)

	ts := httptest.NewServer(New(taskSvc, userSvc).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	var decoded map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func doJSONList(t *testing.T, url, token string) (*http.Response, []map[string]interface{}) {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()

	var decoded []map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	return resp, decoded
}

func registerUser(t *testing.T, ts *httptest.Server, name, email string) string {
	t.Helper()
	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/users/register", "", map[string]string{
		"name":     name,
		"email":    email,
		"password": "password123",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register %s: status %d (%v)", email, resp.StatusCode, body)
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatalf("register %s: no token in response", email)
	}
	return token
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/health", "", nil)
	if resp.StatusCode != http.StatusOK || body["status"] != "ok" {
		t.Errorf("health = %d %v", resp.StatusCode, body)
	}
}

func TestTasksRequireAuth(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := doJSON(t, http.MethodGet, ts.URL+"/api/tasks", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("no token: status %d, expected 401", resp.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/api/tasks", "garbage-token", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("bad token: status %d, expected 401", resp.StatusCode)
	}
}

func TestTaskLifecycleWithDependencies(t *testing.T) {
	ts := newTestServer(t)
	token := registerUser(t, ts, "Alice", "alice@example.com")

	// Create A, then B depending on A.
	resp, a := doJSON(t, http.MethodPost, ts.URL+"/api/tasks", token, map[string]interface{}{
		"title": "Design schema",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create A: status %d (%v)", resp.StatusCode, a)
	}
	aID := a["id"].(string)

	resp, b := doJSON(t, http.MethodPost, ts.URL+"/api/tasks", token, map[string]interface{}{
		"title":        "Write migrations",
		"dependencies": []string{aID},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create B: status %d (%v)", resp.StatusCode, b)
	}
	bID := b["id"].(string)

	// B cannot be completed while A is not done.
	resp, body := doJSON(t, http.MethodPatch, ts.URL+"/api/tasks/"+bID, token, map[string]interface{}{
		"status": "done",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("complete B early: status %d, expected 400", resp.StatusCode)
	}
	tasks, _ := body["tasks"].([]interface{})
	if len(tasks) != 1 || tasks[0] != "Design schema" {
		t.Errorf("blocking tasks = %v, expected [Design schema]", tasks)
	}

	// A cannot be deleted while B depends on it.
	resp, body = doJSON(t, http.MethodDelete, ts.URL+"/api/tasks/"+aID, token, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("delete A with dependent: status %d, expected 400", resp.StatusCode)
	}
	tasks, _ = body["tasks"].([]interface{})
	if len(tasks) != 1 || tasks[0] != "Write migrations" {
		t.Errorf("dependent tasks = %v, expected [Write migrations]", tasks)
	}

	// Complete A, then B.
	if resp, _ := doJSON(t, http.MethodPatch, ts.URL+"/api/tasks/"+aID, token, map[string]interface{}{"status": "done"}); resp.StatusCode != http.StatusOK {
		t.Fatalf("complete A: status %d", resp.StatusCode)
	}
	if resp, _ := doJSON(t, http.MethodPatch, ts.URL+"/api/tasks/"+bID, token, map[string]interface{}{"status": "done"}); resp.StatusCode != http.StatusOK {
		t.Fatalf("complete B: status %d", resp.StatusCode)
	}

	// Delete B, then A.
	if resp, _ := doJSON(t, http.MethodDelete, ts.URL+"/api/tasks/"+bID, token, nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("delete B: status %d", resp.StatusCode)
	}
	if resp, _ := doJSON(t, http.MethodDelete, ts.URL+"/api/tasks/"+aID, token, nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("delete A: status %d", resp.StatusCode)
	}

	resp, list := doJSONList(t, ts.URL+"/api/tasks", token)
	if resp.StatusCode != http.StatusOK || len(list) != 0 {
		t.Errorf("expected an empty task list, got %d entries", len(list))
	}
}

func TestTaskStatusCodes(t *testing.T) {
	ts := newTestServer(t)
	token := registerUser(t, ts, "Bob", "bob@example.com")

	tests := []struct {
		name     string
		method   string
		path     string
		body     interface{}
		expected int
	}{
		{"malformed id on get", http.MethodGet, "/api/tasks/not-a-uuid", nil, http.StatusBadRequest},
		{"missing task on get", http.MethodGet, "/api/tasks/00000000-0000-0000-0000-000000000000", nil, http.StatusNotFound},
		{"malformed id on delete", http.MethodDelete, "/api/tasks/not-a-uuid", nil, http.StatusBadRequest},
		{"missing task on patch", http.MethodPatch, "/api/tasks/11111111-1111-1111-1111-111111111111", map[string]interface{}{"status": "done"}, http.StatusNotFound},
		{"create without title", http.MethodPost, "/api/tasks", map[string]interface{}{"description": "no title"}, http.StatusBadRequest},
		{"create with bad status", http.MethodPost, "/api/tasks", map[string]interface{}{"title": "x", "status": "finished"}, http.StatusBadRequest},
		{"empty patch", http.MethodPatch, "/api/tasks/22222222-2222-2222-2222-222222222222", map[string]interface{}{}, http.StatusBadRequest},
		{"recurring without pattern", http.MethodPost, "/api/tasks", map[string]interface{}{"title": "x", "isRecurring": true}, http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := doJSON(t, tc.method, ts.URL+tc.path, token, tc.body)
			if resp.StatusCode != tc.expected {
				t.Errorf("status %d, expected %d (%v)", resp.StatusCode, tc.expected, body)
			}
		})
	}
}

func TestUsersAreIsolated(t *testing.T) {
	ts := newTestServer(t)
	aliceToken := registerUser(t, ts, "Alice", "alice@example.com")
	bobToken := registerUser(t, ts, "Bob", "bob@example.com")

	resp, task := doJSON(t, http.MethodPost, ts.URL+"/api/tasks", aliceToken, map[string]interface{}{"title": "Private"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: status %d", resp.StatusCode)
	}
	taskID := task["id"].(string)

	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/api/tasks/"+taskID, bobToken, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("foreign get: status %d, expected 404", resp.StatusCode)
	}

	resp, list := doJSONList(t, ts.URL+"/api/tasks", bobToken)
	if resp.StatusCode != http.StatusOK || len(list) != 0 {
		t.Errorf("foreign list: expected empty, got %d entries", len(list))
	}

	resp, _ = doJSON(t, http.MethodDelete, ts.URL+"/api/tasks/"+taskID, bobToken, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("foreign delete: status %d, expected 404", resp.StatusCode)
	}
}

func TestProfile(t *testing.T) {
	ts := newTestServer(t)
	token := registerUser(t, ts, "Carol", "carol@example.com")

	resp, profile := doJSON(t, http.MethodGet, ts.URL+"/api/users/profile", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get profile: status %d", resp.StatusCode)
	}
	if profile["name"] != "Carol" || profile["email"] != "carol@example.com" {
		t.Errorf("profile = %v", profile)
	}
	if _, leaked := profile["passwordHash"]; leaked {
		t.Error("password hash leaked in profile response")
	}

	resp, updated := doJSON(t, http.MethodPut, ts.URL+"/api/users/profile", token, map[string]string{"name": "Caroline"})
	if resp.StatusCode != http.StatusOK || updated["name"] != "Caroline" {
		t.Errorf("update profile = %d %v", resp.StatusCode, updated)
	}

	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/api/users/login", "", map[string]string{
		"email":    "carol@example.com",
		"password": "wrong-password",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("bad login: status %d, expected 401", resp.StatusCode)
	}
}
