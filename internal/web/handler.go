package web

import (
	"embed"
	"encoding/json"
	"html/template"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/Nisugi/lich-5-docs-minimax-test/internal/taskstore"
)

//go:embed templates/*
var templatesFS embed.FS

// Handler serves the progress dashboard for a documentation run.
type Handler struct {
	store     *taskstore.Store
	templates *template.Template
}

// NewHandler creates a new web handler
func NewHandler(store *taskstore.Store) (*Handler, error) {
	tmpl := template.New("").Funcs(template.FuncMap{
		"statusColor":   statusColor,
		"statusIcon":    statusIcon,
		"logLevelColor": logLevelColor,
	})
	tmpl, err := tmpl.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	return &Handler{
		store:     store,
		templates: tmpl,
	}, nil
}

// RegisterRoutes registers web UI routes
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/", h.handleTaskList).Methods("GET")
	r.HandleFunc("/task/{id}", h.handleTaskDetail).Methods("GET")
	r.HandleFunc("/health", h.handleHealth).Methods("GET")
}

// handleTaskList renders the task list page
func (h *Handler) handleTaskList(w http.ResponseWriter, r *http.Request) {
	tasks := h.store.List()
	counts := h.store.Counts()

	data := struct {
		Tasks     []*taskstore.Task
		Total     int
		Completed int
		Failed    int
		Running   int
	}{
		Tasks:     tasks,
		Total:     len(tasks),
		Completed: counts[taskstore.StatusCompleted],
		Failed:    counts[taskstore.StatusFailed],
		Running:   counts[taskstore.StatusRunning],
	}

	if err := h.templates.ExecuteTemplate(w, "task_list.html", data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// handleTaskDetail renders the task detail page
func (h *Handler) handleTaskDetail(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	taskID := vars["id"]

	task, ok := h.store.Get(taskID)
	if !ok {
		http.Error(w, "Task not found", http.StatusNotFound)
		return
	}

	data := struct {
		Task *taskstore.Task
	}{
		Task: task,
	}

	if err := h.templates.ExecuteTemplate(w, "task_detail.html", data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// handleHealth returns a JSON status summary
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	counts := h.store.Counts()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":    "ok",
		"tasks":     len(h.store.List()),
		"completed": counts[taskstore.StatusCompleted],
		"failed":    counts[taskstore.StatusFailed],
	})
}

// Helper functions for templates
func statusColor(status taskstore.TaskStatus) string {
	switch status {
	case taskstore.StatusPending:
		return "#6c757d"
	case taskstore.StatusRunning:
		return "#0d6efd"
	case taskstore.StatusCompleted:
		return "#198754"
	case taskstore.StatusSkipped:
		return "#6c757d"
	case taskstore.StatusFailed:
		return "#dc3545"
	default:
		return "#6c757d"
	}
}

func statusIcon(status taskstore.TaskStatus) string {
	switch status {
	case taskstore.StatusPending:
		return "○"
	case taskstore.StatusRunning:
		return "⟳"
	case taskstore.StatusCompleted:
		return "✓"
	case taskstore.StatusSkipped:
		return "⤼"
	case taskstore.StatusFailed:
		return "✗"
	default:
		return "○"
	}
}

func logLevelColor(level string) string {
	switch strings.ToLower(level) {
	case "error":
		return "#dc3545"
	case "success":
		return "#198754"
	case "info":
		return "#0d6efd"
	default:
		return "#6c757d"
	}
}
