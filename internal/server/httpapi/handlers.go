package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
)

const (
	msgInvalidBody        = "Invalid request body"
	msgLoginRequired      = "Email and password are required"
	msgEmailTaken         = "Email already registered"
	msgInvalidCredentials = "Invalid credentials"
	msgUserNotFound       = "User not found"
	msgInternal           = "Internal server error"
)

// maxBodyBytes bounds auth request bodies.
const maxBodyBytes = 1 << 20

type handler struct {
	svc     UserService
	logger  logging.Logger
	metrics *Metrics
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decode(w, r, &req) {
		h.metrics.authAttempt(actionRegister, outcomeBadRequest)
		return
	}

	res, err := h.svc.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		var ve *services.ValidationError
		switch {
		case errors.As(err, &ve):
			h.metrics.authAttempt(actionRegister, outcomeBadRequest)
			writeError(w, http.StatusBadRequest, ve.Reason)
		case errors.Is(err, common.ErrEmailTaken):
			h.metrics.authAttempt(actionRegister, outcomeConflict)
			writeError(w, http.StatusConflict, msgEmailTaken)
		default:
			h.metrics.authAttempt(actionRegister, outcomeError)
			h.logger.Error(r.Context(), "register failed", "error", err)
			writeError(w, http.StatusInternalServerError, msgInternal)
		}
		return
	}

	h.metrics.authAttempt(actionRegister, outcomeSuccess)
	h.logger.Info(r.Context(), "user registered", "user_id", res.User.ID)
	writeJSON(w, http.StatusCreated, authResponse{Token: res.Token, User: toUserResponse(res.User)})
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decode(w, r, &req) {
		h.metrics.authAttempt(actionLogin, outcomeBadRequest)
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		h.metrics.authAttempt(actionLogin, outcomeBadRequest)
		writeError(w, http.StatusBadRequest, msgLoginRequired)
		return
	}

	res, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			h.metrics.authAttempt(actionLogin, outcomeRejected)
			writeError(w, http.StatusUnauthorized, msgInvalidCredentials)
			return
		}
		h.metrics.authAttempt(actionLogin, outcomeError)
		h.logger.Error(r.Context(), "login failed", "error", err)
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}

	h.metrics.authAttempt(actionLogin, outcomeSuccess)
	writeJSON(w, http.StatusOK, authResponse{Token: res.Token, User: toUserResponse(res.User)})
}

func (h *handler) me(w http.ResponseWriter, r *http.Request) {
	id, ok := userIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, msgHeaderRequired)
		return
	}

	user, err := h.svc.CurrentUser(r.Context(), id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			writeError(w, http.StatusNotFound, msgUserNotFound)
			return
		}
		h.logger.Error(r.Context(), "current user lookup failed", "error", err, "user_id", id)
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}

// decode reads a JSON body into v, answering 400 itself when it cannot.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return false
	}
	return true
}
