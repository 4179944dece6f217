package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/xela07ax/robofleet/internal/domain"
	"github.com/xela07ax/robofleet/internal/fleet/service"
)

type TaskHandler struct {
	service *service.TaskService
}

func NewTaskHandler(s *service.TaskService) *TaskHandler {
	return &TaskHandler{service: s}
}

type createTaskRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
	RobotID     string `json:"robot_id"`
}

// Create — POST /api/tasks
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" || req.Description == "" || req.Status == "" || req.RobotID == "" {
		writeError(w, http.StatusBadRequest, "name, description, status and robot_id are required")
		return
	}

	task, err := h.service.Create(r.Context(), &domain.Task{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		RobotID:     req.RobotID,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, task)
}

// List — GET /api/tasks?page=&limit=
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.service.List(r.Context(), parseListOptions(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

// Get — GET /api/tasks/{id}
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	task, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// ListByRobot — GET /api/tasks/robot/{robotID}?order=&page=&limit=
func (h *TaskHandler) ListByRobot(w http.ResponseWriter, r *http.Request) {
	robotID := chi.URLParam(r, "robotID")

	tasks, err := h.service.ListByRobot(r.Context(), robotID, parseListOptions(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if len(tasks) == 0 {
		// Поведение исходного API: пустой список задач у робота — 404
		writeError(w, http.StatusNotFound, "there are no tasks for the specified robot")
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// Update — PUT /api/tasks/{id}
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var patch domain.TaskPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	task, err := h.service.Update(r.Context(), id, patch)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// Delete — DELETE /api/tasks/{id}
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
