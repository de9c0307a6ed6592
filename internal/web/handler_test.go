package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"

	"github.com/Nisugi/lich-5-docs-minimax-test/internal/taskstore"
)

func newTestHandler(t *testing.T) (*Handler, *taskstore.Store, *mux.Router) {
	t.Helper()
	store := taskstore.NewStore()
	h, err := NewHandler(store)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	r := mux.NewRouter()
	h.RegisterRoutes(r)
	return h, store, r
}

func TestTaskListPage(t *testing.T) {
	_, store, r := newTestHandler(t)
	store.Create(&taskstore.Task{ID: "t1", FileName: "player.rb", Provider: "mock", Status: taskstore.StatusCompleted})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "player.rb") {
		t.Fatal("list page should show the task file name")
	}
	if !strings.Contains(body, "/task/t1") {
		t.Fatal("list page should link to the task detail")
	}
}

func TestTaskDetailPage(t *testing.T) {
	_, store, r := newTestHandler(t)
	store.Create(&taskstore.Task{ID: "t1", FileName: "player.rb", Path: "/src/player.rb", Provider: "mock", Status: taskstore.StatusFailed})
	store.AddLog("t1", "error", "extraction failed")

	req := httptest.NewRequest(http.MethodGet, "/task/t1", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "/src/player.rb") {
		t.Fatal("detail page should show the source path")
	}
	if !strings.Contains(body, "extraction failed") {
		t.Fatal("detail page should show log entries")
	}
}

func TestTaskDetailNotFound(t *testing.T) {
	_, _, r := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/task/nope", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	_, store, r := newTestHandler(t)
	store.Create(&taskstore.Task{ID: "a", Status: taskstore.StatusCompleted})
	store.Create(&taskstore.Task{ID: "b", Status: taskstore.StatusFailed})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var payload map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("health should return JSON: %v", err)
	}
	if payload["status"] != "ok" {
		t.Fatalf("payload = %v", payload)
	}
	if payload["completed"].(float64) != 1 || payload["failed"].(float64) != 1 {
		t.Fatalf("counts wrong: %v", payload)
	}
}
