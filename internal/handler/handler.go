// Package handler содержит HTTP-обработчики API семейного трекера обязанностей.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/choreledger/internal/apierror"
	"github.com/mmeshcher/choreledger/internal/middleware"
	"github.com/mmeshcher/choreledger/internal/model"
	"github.com/mmeshcher/choreledger/internal/repository"
	"github.com/mmeshcher/choreledger/internal/service"
	"github.com/mmeshcher/choreledger/internal/validation"
)

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	Ping(ctx context.Context) error

	RegisterParent(ctx context.Context, email, password, name, familyName string) (string, error)
	Authenticate(ctx context.Context, email, password string) (string, error)

	ListKids(ctx context.Context, familyID string) ([]model.Kid, error)
	CreateKid(ctx context.Context, familyID string, p model.KidProfile) (*model.Kid, error)
	GetKid(ctx context.Context, familyID, kidID string) (*model.Kid, error)
	UpdateKidProfile(ctx context.Context, familyID, kidID string, p model.KidProfile) (*model.Kid, error)
	DeleteKid(ctx context.Context, familyID, kidID string) error
	ListRedemptions(ctx context.Context, familyID, kidID string) ([]model.RedeemedReward, error)

	CreateChore(ctx context.Context, familyID string, c model.Chore) (*model.Chore, error)
	ListChores(ctx context.Context, familyID string) ([]model.Chore, error)
	CreateReward(ctx context.Context, familyID string, r model.Reward) (*model.Reward, error)
	ListRewards(ctx context.Context, familyID string) ([]model.Reward, error)

	AssignChore(ctx context.Context, familyID, choreID, kidID string, dueDate time.Time) (*model.ChoreAssignment, error)
	ListAssignments(ctx context.Context, familyID, kidID string, day *time.Time) ([]model.ChoreAssignment, error)
	SettleAssignment(ctx context.Context, familyID, assignmentID string, status model.AssignmentStatus) (*model.Settlement, error)
	RedeemReward(ctx context.Context, familyID, rewardID, kidID string) (*model.RedeemedReward, error)
}

// Handler реализует HTTP-обработчики API.
type Handler struct {
	service        Service
	logger         *zap.Logger
	authMiddleware *middleware.AuthMiddleware
	loc            *time.Location
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
// Календарные даты без времени трактуются в локальном часовом поясе процесса.
func NewHandler(s Service, logger *zap.Logger, auth *middleware.AuthMiddleware) *Handler {
	return &Handler{
		service:        s,
		logger:         logger,
		authMiddleware: auth,
		loc:            time.Local,
	}
}

func (h *Handler) familyID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := middleware.GetFamilyIDFromContext(r.Context())
	if !ok {
		apierror.Write(w, http.StatusUnauthorized, apierror.KindUnauthorized, "authentication required")
	}
	return id, ok
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		apierror.Write(w, http.StatusBadRequest, apierror.KindValidation, "malformed JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError переводит ошибку сервиса в HTTP-ответ. Доменные ошибки
// возвращаются клиенту как есть, прочие логируются и скрываются за 500.
func (h *Handler) writeError(w http.ResponseWriter, err error, op string, fields ...zap.Field) {
	var ib *repository.InsufficientBalanceError

	switch {
	case errors.As(err, &ib):
		needed := ib.Needed()
		apierror.WriteBody(w, http.StatusBadRequest, apierror.Body{
			Error:   apierror.KindInsufficientBalance,
			Message: fmt.Sprintf("need %d more points", needed),
			Needed:  &needed,
		})
	case errors.Is(err, repository.ErrInsufficientBalance):
		apierror.Write(w, http.StatusBadRequest, apierror.KindInsufficientBalance, "not enough points")
	case errors.Is(err, repository.ErrNotFound):
		apierror.Write(w, http.StatusNotFound, apierror.KindNotFound, "not found")
	case errors.Is(err, repository.ErrInvalidTransition):
		apierror.Write(w, http.StatusConflict, apierror.KindInvalidTransition, "assignment is already settled")
	case errors.Is(err, repository.ErrParentExists):
		apierror.Write(w, http.StatusConflict, apierror.KindConflict, "email is already registered")
	case errors.Is(err, service.ErrInvalidCredentials):
		apierror.Write(w, http.StatusUnauthorized, apierror.KindUnauthorized, "invalid email or password")
	case errors.Is(err, validation.ErrInvalid):
		apierror.Write(w, http.StatusBadRequest, apierror.KindValidation, err.Error())
	case errors.Is(err, context.Canceled):
		h.logger.Warn(op+" canceled", fields...)
		apierror.Write(w, http.StatusServiceUnavailable, apierror.KindInternal, "request canceled")
	default:
		h.logger.Error(op+" error", append(fields, zap.Error(err))...)
		apierror.Write(w, http.StatusInternalServerError, apierror.KindInternal, http.StatusText(http.StatusInternalServerError))
	}
}

type healthResponse struct {
	Status string `json:"status"`
}

// Health проверяет доступность хранилища.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Ping(r.Context()); err != nil {
		h.logger.Warn("health check failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}
