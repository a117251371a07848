package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"gwi.com/study-assistant/internal/auth"
	"gwi.com/study-assistant/internal/core"
	"gwi.com/study-assistant/internal/logger"
	"gwi.com/study-assistant/internal/store"
)

type ctxKey string

const userIDKey ctxKey = "userID"

type HandlerOptions struct {
	UploadDir      string
	MaxUploadBytes int64
}

type APIHandler struct {
	log       *logger.Logger
	dbStore   *store.SQLiteStore
	synthesis *core.SynthesisService
	voice     *core.VoiceService
	library   *core.LibraryService
	opts      HandlerOptions
}

func NewAPIHandler(log *logger.Logger, db *store.SQLiteStore, synthesis *core.SynthesisService, voice *core.VoiceService, library *core.LibraryService, opts HandlerOptions) *APIHandler {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 25 << 20
	}
	return &APIHandler{
		log:       log.With("component", "api"),
		dbStore:   db,
		synthesis: synthesis,
		voice:     voice,
		library:   library,
		opts:      opts,
	}
}

func (h *APIHandler) JWTAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Authorization header is required", http.StatusUnauthorized)
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		userID, err := auth.ValidateJWT(tokenString)
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		user, err := h.dbStore.GetUserByID(userID)
		if err != nil {
			h.log.Error("Failed to load user in JWTAuthMiddleware", "user_id", userID, "error", err)
			http.Error(w, "Failed to process user identity", http.StatusInternalServerError)
			return
		}
		if user == nil {
			http.Error(w, "User not found", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, user.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userIDFrom(r *http.Request) string {
	id, _ := r.Context().Value(userIDKey).(string)
	return id
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string      `json:"token"`
	User  *store.User `json:"user"`
}

func (h *APIHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		http.Error(w, "Name, email and password are required", http.StatusBadRequest)
		return
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		h.log.Error("Error hashing password", "error", err)
		http.Error(w, "Failed to process password", http.StatusInternalServerError)
		return
	}

	user, err := h.dbStore.CreateUser(strings.TrimSpace(req.Name), req.Email, hashedPassword)
	if errors.Is(err, store.ErrDuplicateEmail) {
		http.Error(w, "User already exists", http.StatusConflict)
		return
	}
	if err != nil {
		h.log.Error("Error creating user", "error", err)
		http.Error(w, "Failed to create user", http.StatusInternalServerError)
		return
	}

	token, err := auth.GenerateJWT(user.ID)
	if err != nil {
		h.log.Error("Error generating JWT", "user_id", user.ID, "error", err)
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, AuthResponse{Token: token, User: user})
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		http.Error(w, "Email and password are required", http.StatusBadRequest)
		return
	}

	user, err := h.dbStore.GetUserByEmail(req.Email)
	if err != nil {
		h.log.Error("Error getting user by email", "error", err)
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}
	if user == nil || !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := auth.GenerateJWT(user.ID)
	if err != nil {
		h.log.Error("Error generating JWT", "user_id", user.ID, "error", err)
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, AuthResponse{Token: token, User: user})
}

func (h *APIHandler) MeHandler(w http.ResponseWriter, r *http.Request) {
	user, err := h.dbStore.GetUserByID(userIDFrom(r))
	if err != nil {
		h.log.Error("Error loading current user", "error", err)
		http.Error(w, "Failed to load user", http.StatusInternalServerError)
		return
	}
	if user == nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]*store.User{"user": user})
}

func (h *APIHandler) StatsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := h.library.Stats(userIDFrom(r))
	if err != nil {
		h.fail(w, err, "Failed to load stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// fail maps a service error onto a status code. Validation messages are
// shown to the caller; anything else is logged and replaced by msg.
func (h *APIHandler) fail(w http.ResponseWriter, err error, msg string) {
	var coreErr *core.Error
	switch core.KindOf(err) {
	case core.KindInvalidRequest:
		text := err.Error()
		if errors.As(err, &coreErr) && coreErr.Err != nil {
			text = coreErr.Err.Error()
		}
		http.Error(w, text, http.StatusBadRequest)
	case core.KindStorage:
		h.log.Error(msg, "error_kind", core.KindStorage, "error", err)
		http.Error(w, msg, http.StatusBadGateway)
	default:
		h.log.Error(msg, "error", err)
		http.Error(w, msg, http.StatusInternalServerError)
	}
}
