package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/mmeshcher/choreledger/internal/model"
)

const defaultBasePoints = 10

type choreRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Difficulty  string `json:"difficulty"`
	BasePoints  *int64 `json:"basePoints"`
	Recurring   string `json:"recurring"`
}

// CreateChore добавляет обязанность в каталог семьи.
func (h *Handler) CreateChore(w http.ResponseWriter, r *http.Request) {
	familyID, ok := h.familyID(w, r)
	if !ok {
		return
	}

	var req choreRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	points := int64(defaultBasePoints)
	if req.BasePoints != nil {
		points = *req.BasePoints
	}

	chore, err := h.service.CreateChore(r.Context(), familyID, model.Chore{
		Title:       req.Title,
		Description: req.Description,
		Icon:        req.Icon,
		Difficulty:  model.Difficulty(req.Difficulty),
		BasePoints:  points,
		Recurring:   model.Recurrence(req.Recurring),
		Active:      true,
	})
	if err != nil {
		h.writeError(w, err, "create chore", zap.String("familyID", familyID))
		return
	}

	writeJSON(w, http.StatusCreated, newChoreResponse(chore))
}

// ListChores возвращает каталог обязанностей семьи.
func (h *Handler) ListChores(w http.ResponseWriter, r *http.Request) {
	familyID, ok := h.familyID(w, r)
	if !ok {
		return
	}

	chores, err := h.service.ListChores(r.Context(), familyID)
	if err != nil {
		h.writeError(w, err, "list chores", zap.String("familyID", familyID))
		return
	}

	resp := make([]choreResponse, 0, len(chores))
	for i := range chores {
		resp = append(resp, newChoreResponse(&chores[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

type rewardRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Cost        int64  `json:"cost"`
	Icon        string `json:"icon"`
}

// CreateReward добавляет награду в каталог семьи.
func (h *Handler) CreateReward(w http.ResponseWriter, r *http.Request) {
	familyID, ok := h.familyID(w, r)
	if !ok {
		return
	}

	var req rewardRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	reward, err := h.service.CreateReward(r.Context(), familyID, model.Reward{
		Title:       req.Title,
		Description: req.Description,
		Cost:        req.Cost,
		Icon:        req.Icon,
		Active:      true,
	})
	if err != nil {
		h.writeError(w, err, "create reward", zap.String("familyID", familyID))
		return
	}

	writeJSON(w, http.StatusCreated, newRewardResponse(reward))
}

// ListRewards возвращает каталог наград семьи.
func (h *Handler) ListRewards(w http.ResponseWriter, r *http.Request) {
	familyID, ok := h.familyID(w, r)
	if !ok {
		return
	}

	rewards, err := h.service.ListRewards(r.Context(), familyID)
	if err != nil {
		h.writeError(w, err, "list rewards", zap.String("familyID", familyID))
		return
	}

	resp := make([]rewardResponse, 0, len(rewards))
	for i := range rewards {
		resp = append(resp, newRewardResponse(&rewards[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}
