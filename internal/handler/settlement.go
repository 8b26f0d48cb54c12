package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mmeshcher/choreledger/internal/apierror"
	"github.com/mmeshcher/choreledger/internal/validation"
)

type assignRequest struct {
	ChoreID string `json:"choreId"`
	KidID   string `json:"kidId"`
	DueDate string `json:"dueDate"`
}

// AssignChore назначает обязанность ребёнку на дату.
func (h *Handler) AssignChore(w http.ResponseWriter, r *http.Request) {
	familyID, ok := h.familyID(w, r)
	if !ok {
		return
	}

	var req assignRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.ChoreID == "" || req.KidID == "" || req.DueDate == "" {
		apierror.Write(w, http.StatusBadRequest, apierror.KindValidation, "choreId, kidId and dueDate are required")
		return
	}

	due, err := validation.ParseDate(req.DueDate, h.loc)
	if err != nil {
		h.writeError(w, err, "assign chore")
		return
	}

	a, err := h.service.AssignChore(r.Context(), familyID, req.ChoreID, req.KidID, due)
	if err != nil {
		h.writeError(w, err, "assign chore", zap.String("choreID", req.ChoreID), zap.String("kidID", req.KidID))
		return
	}

	writeJSON(w, http.StatusCreated, newAssignmentResponse(a))
}

// ListAssignments возвращает назначения семьи с необязательными фильтрами kidId и date.
func (h *Handler) ListAssignments(w http.ResponseWriter, r *http.Request) {
	familyID, ok := h.familyID(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()

	var day *time.Time
	if s := q.Get("date"); s != "" {
		d, err := validation.ParseDate(s, h.loc)
		if err != nil {
			h.writeError(w, err, "list assignments")
			return
		}
		day = &d
	}

	list, err := h.service.ListAssignments(r.Context(), familyID, q.Get("kidId"), day)
	if err != nil {
		h.writeError(w, err, "list assignments", zap.String("familyID", familyID))
		return
	}

	resp := make([]assignmentResponse, 0, len(list))
	for i := range list {
		resp = append(resp, newAssignmentResponse(&list[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

type settleRequest struct {
	Status string `json:"status"`
}

// SettleAssignment переводит назначение в COMPLETED или SKIPPED.
//
// Коды ответа: 200 при успехе, 400 при недопустимом статусе, 404 если
// назначение не найдено в семье, 409 если оно уже рассчитано.
func (h *Handler) SettleAssignment(w http.ResponseWriter, r *http.Request) {
	familyID, ok := h.familyID(w, r)
	if !ok {
		return
	}
	assignmentID := chi.URLParam(r, "id")

	var req settleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	status, err := validation.ParseSettlementStatus(req.Status)
	if err != nil {
		h.writeError(w, err, "settle assignment")
		return
	}

	res, err := h.service.SettleAssignment(r.Context(), familyID, assignmentID, status)
	if err != nil {
		h.writeError(w, err, "settle assignment",
			zap.String("assignmentID", assignmentID),
			zap.String("status", string(status)),
		)
		return
	}

	resp := newAssignmentResponse(&res.Assignment)
	if res.Kid != nil {
		kid := newKidResponse(res.Kid)
		resp.Kid = &kid
	}
	writeJSON(w, http.StatusOK, resp)
}

type redeemRequest struct {
	RewardID string `json:"rewardId"`
	KidID    string `json:"kidId"`
}

// RedeemReward обменивает баллы ребёнка на награду.
//
// Коды ответа: 201 при успехе, 400 без rewardId или kidId и при нехватке
// баллов, 404 если награда или ребёнок не найдены в семье.
func (h *Handler) RedeemReward(w http.ResponseWriter, r *http.Request) {
	familyID, ok := h.familyID(w, r)
	if !ok {
		return
	}

	var req redeemRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.RewardID == "" || req.KidID == "" {
		apierror.Write(w, http.StatusBadRequest, apierror.KindValidation, "rewardId and kidId are required")
		return
	}

	rec, err := h.service.RedeemReward(r.Context(), familyID, req.RewardID, req.KidID)
	if err != nil {
		h.writeError(w, err, "redeem reward", zap.String("rewardID", req.RewardID), zap.String("kidID", req.KidID))
		return
	}

	writeJSON(w, http.StatusCreated, newRedemptionResponse(rec))
}
