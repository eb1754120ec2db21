package account

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// Handler serves the registration and login endpoints.
type Handler struct {
	store    *Store
	tokens   *TokenIssuer
	validate *validator.Validate
	log      zerolog.Logger
}

// NewHandler wires the account HTTP surface.
func NewHandler(store *Store, tokens *TokenIssuer, log zerolog.Logger) *Handler {
	return &Handler{
		store:    store,
		tokens:   tokens,
		validate: validator.New(),
		log:      log.With().Str("component", "account").Logger(),
	}
}

// Register mounts the account routes on the given mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/register", h.handleRegister)
	mux.HandleFunc("/api/login", h.handleLogin)
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
	Age      *int   `json:"age" validate:"omitempty,gte=0"`
	Gender   string `json:"gender"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type userInfo struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Age      *int   `json:"age,omitempty"`
	Gender   string `json:"gender,omitempty"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, registerValidationMessage(err))
		return
	}

	hashed, err := HashPassword(req.Password)
	if err != nil {
		h.log.Error().Err(err).Msg("hashing password")
		writeError(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	userID, err := h.store.Register(req.Email, req.Username, hashed, req.Age, req.Gender)
	if err != nil {
		if errors.Is(err, ErrUserExists) {
			writeError(w, http.StatusConflict, "Email or username already exists")
			return
		}
		h.log.Error().Err(err).Msg("registering user")
		writeError(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	h.log.Info().Str("userId", userID).Msg("user registered")
	writeJSON(w, http.StatusCreated, map[string]any{
		"success":  true,
		"userId":   userID,
		"email":    req.Email,
		"username": req.Username,
	})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := h.store.FindByEmail(req.Email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		h.log.Error().Err(err).Msg("looking up user")
		writeError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	match, err := VerifyPassword(user.PasswordHash, req.Password)
	if err != nil || !match {
		if err != nil {
			h.log.Error().Err(err).Msg("verifying password")
		}
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := h.tokens.Generate(user.ID)
	if err != nil {
		h.log.Error().Err(err).Msg("signing token")
		writeError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user": userInfo{
			ID:       user.ID,
			Email:    user.Email,
			Username: user.Username,
			Age:      user.Age,
			Gender:   user.Gender,
		},
		"token": token,
	})
}

// registerValidationMessage maps validator failures onto the error texts the
// frontend already displays.
func registerValidationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if fe.Field() == "Password" && fe.Tag() == "min" {
				return "Password must be at least 8 characters long"
			}
		}
	}
	return "Email, username, and password are required"
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
