package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/xela07ax/robofleet/internal/domain"
	"github.com/xela07ax/robofleet/internal/fleet/service"
)

type RobotHandler struct {
	service *service.RobotService
}

func NewRobotHandler(s *service.RobotService) *RobotHandler {
	return &RobotHandler{service: s}
}

type createRobotRequest struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	UserID string `json:"user_id"`
}

// Create — POST /api/robots
func (h *RobotHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRobotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" || req.Email == "" {
		writeError(w, http.StatusBadRequest, "name and email are required")
		return
	}

	robot, err := h.service.Create(r.Context(), &domain.Robot{
		Name:   req.Name,
		Email:  req.Email,
		UserID: req.UserID,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, robot)
}

// List — GET /api/robots?page=&limit=
func (h *RobotHandler) List(w http.ResponseWriter, r *http.Request) {
	robots, err := h.service.List(r.Context(), parseListOptions(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if robots == nil {
		robots = []domain.Robot{}
	}
	writeJSON(w, http.StatusOK, robots)
}

// Get — GET /api/robots/{id}
func (h *RobotHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	robot, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, robot)
}

// Update — PUT /api/robots/{id}. Частичное обновление: отсутствующее
// поле сохраняет прежнее значение.
func (h *RobotHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var patch domain.RobotPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	robot, err := h.service.Update(r.Context(), id, patch)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, robot)
}

// Delete — DELETE /api/robots/{id}
func (h *RobotHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// parseListOptions читает пагинацию из query. Мусорные значения молча
// заменяются дефолтами в Normalize.
func parseListOptions(r *http.Request) domain.ListOptions {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return domain.ListOptions{
		Page:  page,
		Limit: limit,
		Order: r.URL.Query().Get("order"),
	}
}
