package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/jaekwang-park/taskboard/internal/middleware"
	"github.com/jaekwang-park/taskboard/internal/model"
	"github.com/jaekwang-park/taskboard/internal/service"
)

const maxTaskBodySize = 64 << 10

type TaskHandler struct {
	svc *service.TaskService
}

func NewTaskHandler(svc *service.TaskService) *TaskHandler {
	return &TaskHandler{svc: svc}
}

// Register mounts the task routes on r. Both /tasks and /tasks/ serve the collection.
func (h *TaskHandler) Register(r *mux.Router) {
	r.HandleFunc("/tasks", h.List).Methods(http.MethodGet)
	r.HandleFunc("/tasks/", h.List).Methods(http.MethodGet)
	r.HandleFunc("/tasks", h.Create).Methods(http.MethodPost)
	r.HandleFunc("/tasks/", h.Create).Methods(http.MethodPost)
	r.HandleFunc("/tasks/{id}", h.Get).Methods(http.MethodGet)
	r.HandleFunc("/tasks/{id}", h.Replace).Methods(http.MethodPut)
	r.HandleFunc("/tasks/{id}", h.Delete).Methods(http.MethodDelete)
}

type taskRequest struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	DueDate     *string        `json:"due_date"`
	Completed   bool           `json:"completed"`
	Priority    model.Priority `json:"priority"`
	Tags        string         `json:"tags"`
	Pinned      bool           `json:"pinned"`
}

func (req taskRequest) toInput() (model.TaskInput, error) {
	in := model.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
		Priority:    req.Priority,
		Tags:        req.Tags,
		Pinned:      req.Pinned,
	}
	if req.DueDate != nil && strings.TrimSpace(*req.DueDate) != "" {
		d, err := model.ParseDate(strings.TrimSpace(*req.DueDate))
		if err != nil {
			return in, fmt.Errorf("%w: due_date must be YYYY-MM-DD", service.ErrInvalidInput)
		}
		in.DueDate = &d
	}
	return in, nil
}

func decodeTask(w http.ResponseWriter, r *http.Request) (model.TaskInput, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxTaskBodySize)
	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return model.TaskInput{}, false
	}
	in, err := req.toInput()
	if err != nil {
		handleServiceError(w, r, err)
		return model.TaskInput{}, false
	}
	return in, true
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	id := identity(r)
	tasks, err := h.svc.List(r.Context(), id.UserID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	WriteJSON(w, r, http.StatusOK, tasks)
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeTask(w, r)
	if !ok {
		return
	}
	task, err := h.svc.Create(r.Context(), identity(r).UserID, in)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	WriteJSON(w, r, http.StatusCreated, task)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	taskID, ok := taskIDFromPath(w, r)
	if !ok {
		return
	}
	task, err := h.svc.GetByID(r.Context(), identity(r).UserID, taskID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	WriteJSON(w, r, http.StatusOK, task)
}

func (h *TaskHandler) Replace(w http.ResponseWriter, r *http.Request) {
	taskID, ok := taskIDFromPath(w, r)
	if !ok {
		return
	}
	in, ok := decodeTask(w, r)
	if !ok {
		return
	}
	task, err := h.svc.Replace(r.Context(), identity(r).UserID, taskID, in)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	WriteJSON(w, r, http.StatusOK, task)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	taskID, ok := taskIDFromPath(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), identity(r).UserID, taskID); err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeMessage(w, r, http.StatusOK, "Task deleted")
}

func taskIDFromPath(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		WriteError(w, r, http.StatusNotFound, "NOT_FOUND", "Task not found")
		return 0, false
	}
	return id, true
}

// identity is set by the auth middleware on every non-public route.
func identity(r *http.Request) middleware.Identity {
	id, _ := middleware.GetIdentity(r)
	return id
}
