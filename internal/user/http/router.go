package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	commonhttp "github.com/avlasov/userhub/internal/common/http"
	"github.com/avlasov/userhub/internal/common/logger"
	"github.com/avlasov/userhub/internal/user/service"
	"github.com/avlasov/userhub/internal/user/service/dto"
)

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type userSummaryResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

type searchResponse struct {
	Users []userSummaryResponse `json:"users"`
}

type Handler struct {
	users    *service.UserService
	validate *validator.Validate
	errors   *commonhttp.ErrorHandler
	log      *logger.Logger
	timeout  time.Duration
}

func NewHandler(users *service.UserService, timeout time.Duration, log *logger.Logger) http.Handler {
	h := &Handler{
		users:    users,
		validate: validator.New(),
		errors:   commonhttp.NewErrorHandler(log),
		log:      log,
		timeout:  timeout,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", commonhttp.HealthHandler(log))
	mux.HandleFunc("/api/users/register", h.register)
	mux.HandleFunc("/api/users", h.search)
	mux.HandleFunc("/api/users/", h.getUser)
	return mux
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		commonhttp.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Warnf("register failed: invalid json: %v", err)
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid json", nil, "")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		h.log.Warnf("register failed: invalid payload: %v", err)
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeValidationFailed, validationDetails(err), nil, "")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	user, err := h.users.Register(ctx, service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusCreated, toUserResponse(user))
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		commonhttp.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	opaqueID, ok := extractOpaqueID(r.URL.Path)
	if !ok {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeUserIDRequired, "user id required", nil, "")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	user, err := h.users.GetProfile(ctx, opaqueID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		commonhttp.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	query := r.URL.Query().Get("q")
	if query == "" {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeBadRequest, "query is empty", nil, "")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	summaries, err := h.users.Search(ctx, query, 0)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp := searchResponse{Users: make([]userSummaryResponse, 0, len(summaries))}
	for _, s := range summaries {
		resp.Users = append(resp.Users, userSummaryResponse{
			ID:        s.ID,
			Username:  s.Username,
			CreatedAt: s.CreatedAt,
		})
	}

	commonhttp.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if vErr, ok := service.AsValidationError(err); ok {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeValidationFailed, vErr.Error(), nil, "")
		return
	}

	h.errors.HandleError(w, r, err)
}

func toUserResponse(user dto.User) userResponse {
	return userResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}

func extractOpaqueID(path string) (string, bool) {
	remaining := strings.TrimPrefix(path, "/api/users/")
	if remaining == path {
		return "", false
	}

	parts := strings.Split(remaining, "/")
	if len(parts) > 0 && parts[0] != "" && parts[0] != "register" {
		return parts[0], true
	}

	return "", false
}

func validationDetails(err error) string {
	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) || len(vErrs) == 0 {
		return "validation failed"
	}

	fields := make([]string, 0, len(vErrs))
	for _, fe := range vErrs {
		fields = append(fields, strings.ToLower(fe.Field()))
	}

	return "validation failed: " + strings.Join(fields, ", ")
}
