package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mmeshcher/choreledger/internal/model"
)

type kidRequest struct {
	Name           string `json:"name"`
	Age            int    `json:"age"`
	AvatarID       string `json:"avatarId"`
	ThemeMode      string `json:"themeMode"`
	PrimaryColor   string `json:"primaryColor"`
	SecondaryColor string `json:"secondaryColor"`
}

func (req kidRequest) profile() model.KidProfile {
	return model.KidProfile{
		Name:           req.Name,
		Age:            req.Age,
		AvatarID:       req.AvatarID,
		ThemeMode:      model.ThemeMode(req.ThemeMode),
		PrimaryColor:   req.PrimaryColor,
		SecondaryColor: req.SecondaryColor,
	}
}

// ListKids возвращает детей семьи.
func (h *Handler) ListKids(w http.ResponseWriter, r *http.Request) {
	familyID, ok := h.familyID(w, r)
	if !ok {
		return
	}

	kids, err := h.service.ListKids(r.Context(), familyID)
	if err != nil {
		h.writeError(w, err, "list kids", zap.String("familyID", familyID))
		return
	}

	resp := make([]kidResponse, 0, len(kids))
	for i := range kids {
		resp = append(resp, newKidResponse(&kids[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateKid добавляет ребёнка в семью.
func (h *Handler) CreateKid(w http.ResponseWriter, r *http.Request) {
	familyID, ok := h.familyID(w, r)
	if !ok {
		return
	}

	var req kidRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	kid, err := h.service.CreateKid(r.Context(), familyID, req.profile())
	if err != nil {
		h.writeError(w, err, "create kid", zap.String("familyID", familyID))
		return
	}

	writeJSON(w, http.StatusCreated, newKidResponse(kid))
}

// GetKid возвращает ребёнка вместе с прогрессом по уровням.
func (h *Handler) GetKid(w http.ResponseWriter, r *http.Request) {
	familyID, ok := h.familyID(w, r)
	if !ok {
		return
	}
	kidID := chi.URLParam(r, "id")

	kid, err := h.service.GetKid(r.Context(), familyID, kidID)
	if err != nil {
		h.writeError(w, err, "get kid", zap.String("kidID", kidID))
		return
	}

	writeJSON(w, http.StatusOK, newKidResponse(kid))
}

// UpdateKid изменяет профиль ребёнка. Баллы и уровень этим запросом не меняются.
func (h *Handler) UpdateKid(w http.ResponseWriter, r *http.Request) {
	familyID, ok := h.familyID(w, r)
	if !ok {
		return
	}
	kidID := chi.URLParam(r, "id")

	var req kidRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	kid, err := h.service.UpdateKidProfile(r.Context(), familyID, kidID, req.profile())
	if err != nil {
		h.writeError(w, err, "update kid", zap.String("kidID", kidID))
		return
	}

	writeJSON(w, http.StatusOK, newKidResponse(kid))
}

// DeleteKid удаляет ребёнка вместе с его назначениями и историей обменов.
func (h *Handler) DeleteKid(w http.ResponseWriter, r *http.Request) {
	familyID, ok := h.familyID(w, r)
	if !ok {
		return
	}
	kidID := chi.URLParam(r, "id")

	if err := h.service.DeleteKid(r.Context(), familyID, kidID); err != nil {
		h.writeError(w, err, "delete kid", zap.String("kidID", kidID))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListRedemptions возвращает историю обменов ребёнка.
func (h *Handler) ListRedemptions(w http.ResponseWriter, r *http.Request) {
	familyID, ok := h.familyID(w, r)
	if !ok {
		return
	}
	kidID := chi.URLParam(r, "id")

	records, err := h.service.ListRedemptions(r.Context(), familyID, kidID)
	if err != nil {
		h.writeError(w, err, "list redemptions", zap.String("kidID", kidID))
		return
	}

	resp := make([]redemptionResponse, 0, len(records))
	for i := range records {
		resp = append(resp, newRedemptionResponse(&records[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}
