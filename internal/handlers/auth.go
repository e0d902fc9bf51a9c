package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jobfolio/apiserver/internal/services"
	"github.com/jobfolio/apiserver/internal/store"
	"github.com/jobfolio/apiserver/internal/uploads"
	"github.com/jobfolio/apiserver/types"
)

const maxMultipartMemory = 32 << 20

// AuthHandler provides registration, login, and profile endpoints.
type AuthHandler struct {
	userService *services.UserService
	log         *slog.Logger
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(userService *services.UserService, log *slog.Logger) *AuthHandler {
	if log == nil {
		log = slog.Default()
	}
	return &AuthHandler{
		userService: userService,
		log:         log.With("component", "handlers"),
	}
}

// AuthRouter registers the registration/login/profile routes.
func AuthRouter(r chi.Router, userService *services.UserService, log *slog.Logger) {
	handler := NewAuthHandler(userService, log)

	r.Post("/register", handler.Register)
	r.Post("/login", handler.Login)
	r.Get("/dashboard", handler.Dashboard)
}

// Register accepts a multipart registration submission, with optional
// profile image and CV files, and creates the account.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	reg := services.Registration{
		FullName: strings.TrimSpace(r.FormValue("fullname")),
		Email:    strings.TrimSpace(r.FormValue("email")),
		Password: r.FormValue("password"),
	}
	if reg.FullName == "" || reg.Email == "" || reg.Password == "" {
		writeError(w, http.StatusBadRequest, "missing required fields")
		return
	}

	if ageStr := strings.TrimSpace(r.FormValue("age")); ageStr != "" {
		age, err := strconv.Atoi(ageStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "age must be an integer")
			return
		}
		reg.Age = &age
	}
	if gender := strings.TrimSpace(r.FormValue("gender")); gender != "" {
		if !types.ValidGender(gender) {
			writeError(w, http.StatusBadRequest, "gender must be male, female, or other")
			return
		}
		reg.Gender = &gender
	}

	if err := uploads.ValidateForm(r.MultipartForm); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	reg.Image = uploads.FileFor(r.MultipartForm, uploads.FieldImage)
	reg.CV = uploads.FileFor(r.MultipartForm, uploads.FieldCV)

	user, err := h.userService.Register(r.Context(), reg)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			writeError(w, http.StatusBadRequest, "email already registered")
			return
		}
		h.log.ErrorContext(r.Context(), "registration failed", "email", reg.Email, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to register user")
		return
	}

	writeJSON(w, http.StatusCreated, RegisterResponse{
		Message: "registration successful",
		UserID:  user.ID,
	})
}

// Login verifies credentials and returns the account without the hash.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing credentials")
		return
	}

	user, err := h.userService.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		h.log.ErrorContext(r.Context(), "login failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to authenticate")
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		Message: "login successful",
		User:    user,
	})
}

// Dashboard returns the profile for the userId query parameter.
// The parameter is not an authentication mechanism; see the design notes.
func (h *AuthHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimSpace(r.URL.Query().Get("userId"))
	if idStr == "" {
		writeError(w, http.StatusUnauthorized, "missing userId")
		return
	}
	id, err := strconv.Atoi(idStr)
	if err != nil || id < 1 {
		writeError(w, http.StatusUnauthorized, "invalid userId")
		return
	}

	user, err := h.userService.Profile(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		h.log.ErrorContext(r.Context(), "profile lookup failed", "user_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load user")
		return
	}

	writeJSON(w, http.StatusOK, DashboardResponse{User: user})
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	Message string `json:"message"`
	UserID  int    `json:"userId"`
}

type LoginResponse struct {
	Message string     `json:"message"`
	User    types.User `json:"user"`
}

type DashboardResponse struct {
	User types.User `json:"user"`
}
