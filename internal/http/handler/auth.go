package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/jaekwang-park/taskboard/internal/service"
)

const maxAuthBodySize = 1 << 20

// AuthHandler handles authentication-related HTTP requests.
type AuthHandler struct {
	svc *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Register mounts /auth/register, /auth/refresh and /auth/me on r. Login is mounted
// by the router behind the rate limiter.
func (h *AuthHandler) Register(r *mux.Router) {
	r.HandleFunc("/auth/register", h.SignUp).Methods(http.MethodPost)
	r.HandleFunc("/auth/refresh", h.Refresh).Methods(http.MethodPost)
	r.HandleFunc("/auth/me", h.Me).Methods(http.MethodGet)
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func decodeCredentials(w http.ResponseWriter, r *http.Request) (service.CredentialsInput, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxAuthBodySize)
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return service.CredentialsInput{}, false
	}
	return service.CredentialsInput{Username: req.Username, Password: req.Password}, true
}

func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeCredentials(w, r)
	if !ok {
		return
	}
	if err := h.svc.Register(r.Context(), in); err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeMessage(w, r, http.StatusCreated, "User created successfully")
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeCredentials(w, r)
	if !ok {
		return
	}
	out, err := h.svc.Login(r.Context(), in)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	WriteJSON(w, r, http.StatusOK, out)
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.Refresh(r.Context(), identity(r).Username)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	WriteJSON(w, r, http.StatusOK, out)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, r, http.StatusOK, map[string]string{"username": identity(r).Username})
}
