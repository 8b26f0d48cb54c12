package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/mmeshcher/choreledger/internal/apierror"
)

type registerRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	Name       string `json:"name"`
	FamilyName string `json:"familyName"`
}

type sessionResponse struct {
	FamilyID string `json:"familyId"`
}

// Register регистрирует семью вместе с первым родителем и открывает сессию.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Email == "" || req.Password == "" || req.Name == "" || req.FamilyName == "" {
		apierror.Write(w, http.StatusBadRequest, apierror.KindValidation, "email, password, name and familyName are required")
		return
	}

	familyID, err := h.service.RegisterParent(r.Context(), req.Email, req.Password, req.Name, req.FamilyName)
	if err != nil {
		h.writeError(w, err, "register parent")
		return
	}

	h.authMiddleware.SetAuthCookie(w, familyID)
	writeJSON(w, http.StatusCreated, sessionResponse{FamilyID: familyID})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login выполняет аутентификацию родителя и устанавливает cookie сессии.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Email == "" || req.Password == "" {
		apierror.Write(w, http.StatusBadRequest, apierror.KindValidation, "email and password are required")
		return
	}

	familyID, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, err, "login", zap.String("email", req.Email))
		return
	}

	h.authMiddleware.SetAuthCookie(w, familyID)
	writeJSON(w, http.StatusOK, sessionResponse{FamilyID: familyID})
}
