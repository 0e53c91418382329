package handler

import (
	"encoding/json"
	"net/http"

	"github.com/xela07ax/shariaai-compliance-prototype/internal/console/service"
	"github.com/xela07ax/shariaai-compliance-prototype/internal/domain"
)

type AuthHandler struct {
	service *service.AuthService
}

func NewAuthHandler(s *service.AuthService) *AuthHandler {
	return &AuthHandler{service: s}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", "")
		return
	}

	resp, err := h.service.GenerateToken(r.Context(), req.Username, req.Password)
	if err != nil {
		// не уточняем, что именно неверно (логин или пароль) для защиты от перебора
		writeError(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
